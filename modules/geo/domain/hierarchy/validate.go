package hierarchy

import (
	"strings"

	"github.com/go-faster/errors"
)

var ErrInvalidHierarchy = errors.New("invalid hierarchy")

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidHierarchy, format, args...)
}

// Validate re-checks the structural guarantees of a built hierarchy: dense
// ids, unique codes, resolvable parents, parent-prefixed codes and
// contiguous per-parent sequences starting at 01.
func (h *Hierarchy) Validate() error {
	provinces := make(map[int]Province, len(h.Provinces))
	codes := make(map[string]struct{}, len(h.Provinces)+len(h.Cantons)+len(h.Parishes))
	claim := func(code string) error {
		if _, dup := codes[code]; dup {
			return invalid("duplicate code %q", code)
		}
		codes[code] = struct{}{}
		return nil
	}

	for i, p := range h.Provinces {
		if p.ID != i+1 {
			return invalid("province %q has id %d, want %d", p.Code, p.ID, i+1)
		}
		if err := claim(p.Code); err != nil {
			return err
		}
		provinces[p.ID] = p
	}

	cantons := make(map[int]Canton, len(h.Cantons))
	nextCanton := make(map[int]int)
	for i, c := range h.Cantons {
		if c.ID != i+1 {
			return invalid("canton %q has id %d, want %d", c.Code, c.ID, i+1)
		}
		parent, ok := provinces[c.ProvinceID]
		if !ok {
			return invalid("canton %q references missing province id %d", c.Code, c.ProvinceID)
		}
		if c.ProvinceCode != parent.Code {
			return invalid("canton %q carries province code %q, want %q", c.Code, c.ProvinceCode, parent.Code)
		}
		nextCanton[parent.ID]++
		if want := childCode(parent.Code, nextCanton[parent.ID]); c.Code != want {
			return invalid("canton code %q out of sequence, want %q", c.Code, want)
		}
		if err := claim(c.Code); err != nil {
			return err
		}
		cantons[c.ID] = c
	}

	nextParish := make(map[int]int)
	for i, p := range h.Parishes {
		if p.ID != i+1 {
			return invalid("parish %q has id %d, want %d", p.Code, p.ID, i+1)
		}
		parent, ok := cantons[p.CantonID]
		if !ok {
			return invalid("parish %q references missing canton id %d", p.Code, p.CantonID)
		}
		if p.CantonCode != parent.Code || !strings.HasPrefix(p.Code, parent.Code) {
			return invalid("parish %q is not under canton %q", p.Code, parent.Code)
		}
		nextParish[parent.ID]++
		if want := childCode(parent.Code, nextParish[parent.ID]); p.Code != want {
			return invalid("parish code %q out of sequence, want %q", p.Code, want)
		}
		if err := claim(p.Code); err != nil {
			return err
		}
	}
	return nil
}
