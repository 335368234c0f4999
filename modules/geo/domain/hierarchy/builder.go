package hierarchy

import (
	"slices"
	"strings"
)

type parentRef struct {
	id   int
	code string
}

type childRow struct {
	code   string
	parent string
	name   string
}

type child struct {
	id         int
	parentID   int
	parentCode string
	code       string
	name       string
}

// Build turns raw rows into a validated hierarchy. Rows with an empty code or
// name, a province code that is not two digits, a repeated code, or a parent
// that cannot be resolved are excluded and recorded in Hierarchy.Dropped; they
// never consume an id, a code or a sequence slot.
// Output is a pure function of the input: the same rows always produce the
// same codes and ids regardless of input order.
func Build(rows Rows) *Hierarchy {
	h := &Hierarchy{}

	provinces := make([]ProvinceRow, len(rows.Provinces))
	for i, r := range rows.Provinces {
		provinces[i] = ProvinceRow{
			Code: NormalizeCode(r.Code, ProvinceCodeWidth),
			Name: strings.TrimSpace(r.Name),
		}
	}
	slices.SortStableFunc(provinces, func(a, b ProvinceRow) int { return compareCodes(a.Code, b.Code) })

	byProvince := make(map[string]parentRef, len(provinces))
	for _, r := range provinces {
		if r.Code == "" || r.Name == "" {
			h.Dropped = append(h.Dropped, Dropped{Level: LevelProvince, Code: r.Code, Reason: ReasonEmptyField})
			continue
		}
		if len(r.Code) != ProvinceCodeWidth || !isDigits(r.Code) {
			h.Dropped = append(h.Dropped, Dropped{Level: LevelProvince, Code: r.Code, Reason: ReasonInvalidCode})
			continue
		}
		if _, dup := byProvince[r.Code]; dup {
			h.Dropped = append(h.Dropped, Dropped{Level: LevelProvince, Code: r.Code, Reason: ReasonDuplicateCode})
			continue
		}
		p := Province{ID: len(h.Provinces) + 1, Code: r.Code, Name: r.Name}
		h.Provinces = append(h.Provinces, p)
		byProvince[p.Code] = parentRef{id: p.ID, code: p.Code}
	}

	cantonRows := make([]childRow, len(rows.Cantons))
	for i, r := range rows.Cantons {
		cantonRows[i] = childRow{
			code:   NormalizeCode(r.Code, CantonCodeWidth),
			parent: NormalizeCode(r.ProvinceCode, ProvinceCodeWidth),
			name:   strings.TrimSpace(r.Name),
		}
	}
	cantons, byCanton := buildChildren(LevelCanton, cantonRows, byProvince, &h.Dropped)
	for _, c := range cantons {
		h.Cantons = append(h.Cantons, Canton{
			ID:           c.id,
			ProvinceID:   c.parentID,
			ProvinceCode: c.parentCode,
			Code:         c.code,
			Name:         c.name,
		})
	}

	parishRows := make([]childRow, len(rows.Parishes))
	for i, r := range rows.Parishes {
		parishRows[i] = childRow{
			code:   NormalizeCode(r.Code, ParishCodeWidth),
			parent: NormalizeCode(r.CantonCode, CantonCodeWidth),
			name:   strings.TrimSpace(r.Name),
		}
	}
	parishes, _ := buildChildren(LevelParish, parishRows, byCanton, &h.Dropped)
	for _, p := range parishes {
		h.Parishes = append(h.Parishes, Parish{
			ID:         p.id,
			CantonID:   p.parentID,
			CantonCode: p.parentCode,
			Code:       p.code,
			Name:       p.name,
		})
	}

	return h
}

// buildChildren assigns composite codes one level below parents. The returned
// map is keyed by the normalized source code so the next level can resolve
// its parent references against it.
func buildChildren(level Level, rows []childRow, parents map[string]parentRef, report *DropReport) ([]child, map[string]parentRef) {
	slices.SortStableFunc(rows, func(a, b childRow) int { return compareCodes(a.code, b.code) })

	seen := make(map[string]struct{}, len(rows))
	counters := make(map[int]int)
	bySource := make(map[string]parentRef, len(rows))
	out := make([]child, 0, len(rows))

	for _, r := range rows {
		drop := func(reason DropReason) {
			*report = append(*report, Dropped{Level: level, Code: r.code, ParentCode: r.parent, Reason: reason})
		}
		if r.code == "" || r.name == "" || r.parent == "" {
			drop(ReasonEmptyField)
			continue
		}
		if _, dup := seen[r.code]; dup {
			drop(ReasonDuplicateCode)
			continue
		}
		parent, ok := parents[r.parent]
		if !ok {
			drop(ReasonUnresolvedParent)
			continue
		}
		if counters[parent.id] >= maxSiblings {
			drop(ReasonSequenceOverflow)
			continue
		}
		// only accepted rows claim a code
		seen[r.code] = struct{}{}
		counters[parent.id]++

		c := child{
			id:         len(out) + 1,
			parentID:   parent.id,
			parentCode: parent.code,
			code:       childCode(parent.code, counters[parent.id]),
			name:       r.name,
		}
		out = append(out, c)
		bySource[r.code] = parentRef{id: c.id, code: c.code}
	}
	return out, bySource
}
