package hierarchy

import (
	"fmt"
	"sort"
)

type DropReason string

const (
	ReasonEmptyField       DropReason = "empty_field"
	ReasonInvalidCode      DropReason = "invalid_code"
	ReasonDuplicateCode    DropReason = "duplicate_code"
	ReasonUnresolvedParent DropReason = "unresolved_parent"
	ReasonSequenceOverflow DropReason = "sequence_overflow"
)

// Dropped is one input row excluded from the built hierarchy.
type Dropped struct {
	Level      Level      `json:"level"`
	Code       string     `json:"code"`
	ParentCode string     `json:"parent_code,omitempty"`
	Reason     DropReason `json:"reason"`
}

type DropReport []Dropped

func (d DropReport) Count(level Level, reason DropReason) int {
	n := 0
	for _, row := range d {
		if row.Level == level && row.Reason == reason {
			n++
		}
	}
	return n
}

// Summary counts dropped rows keyed by "<level>/<reason>".
func (d DropReport) Summary() map[string]int {
	if len(d) == 0 {
		return nil
	}
	out := make(map[string]int)
	for _, row := range d {
		out[fmt.Sprintf("%s/%s", row.Level, row.Reason)]++
	}
	return out
}

func (d DropReport) SortedKeys() []string {
	s := d.Summary()
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
