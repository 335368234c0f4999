// Package hierarchy builds the province -> canton -> parish tree with
// composite codes and dense surrogate ids.
package hierarchy

type Level string

const (
	LevelProvince Level = "province"
	LevelCanton   Level = "canton"
	LevelParish   Level = "parish"
)

// Code widths per level. A canton code is its province code plus two digits,
// a parish code is its canton code plus two digits.
const (
	ProvinceCodeWidth = 2
	CantonCodeWidth   = 4
	ParishCodeWidth   = 6

	maxSiblings = 99
)

type ProvinceRow struct {
	Code string
	Name string
}

type CantonRow struct {
	Code         string
	ProvinceCode string
	Name         string
}

type ParishRow struct {
	Code       string
	CantonCode string
	Name       string
}

// Rows is the raw input of a build, one slice per level.
type Rows struct {
	Provinces []ProvinceRow
	Cantons   []CantonRow
	Parishes  []ParishRow
}

// Incomplete reports whether any level has no rows at all.
func (r Rows) Incomplete() bool {
	return len(r.Provinces) == 0 || len(r.Cantons) == 0 || len(r.Parishes) == 0
}

type Province struct {
	ID   int
	Code string
	Name string
}

type Canton struct {
	ID           int
	ProvinceID   int
	ProvinceCode string
	Code         string
	Name         string
}

type Parish struct {
	ID         int
	CantonID   int
	CantonCode string
	Code       string
	Name       string
}

type Hierarchy struct {
	Provinces []Province
	Cantons   []Canton
	Parishes  []Parish
	Dropped   DropReport
}

type Counts struct {
	Provinces int `json:"provinces"`
	Cantons   int `json:"cantons"`
	Parishes  int `json:"parishes"`
}

func (h *Hierarchy) Counts() Counts {
	return Counts{
		Provinces: len(h.Provinces),
		Cantons:   len(h.Cantons),
		Parishes:  len(h.Parishes),
	}
}

func (h *Hierarchy) ProvinceByCode(code string) (Province, bool) {
	for _, p := range h.Provinces {
		if p.Code == code {
			return p, true
		}
	}
	return Province{}, false
}

func (h *Hierarchy) CantonByCode(code string) (Canton, bool) {
	for _, c := range h.Cantons {
		if c.Code == code {
			return c, true
		}
	}
	return Canton{}, false
}

// CantonsOf returns the cantons of a province in code order.
func (h *Hierarchy) CantonsOf(provinceID int) []Canton {
	var out []Canton
	for _, c := range h.Cantons {
		if c.ProvinceID == provinceID {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hierarchy) ParishesOf(cantonID int) []Parish {
	var out []Parish
	for _, p := range h.Parishes {
		if p.CantonID == cantonID {
			out = append(out, p)
		}
	}
	return out
}
