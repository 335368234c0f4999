package csvio

import (
	"path/filepath"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
)

const (
	ProvincesFile = "provincias.csv"
	CantonsFile   = "cantones.csv"
	ParishesFile  = "parroquias.csv"

	ColCode         = "CODIGO"
	ColName         = "NOMBRE"
	ColProvinceCode = "PROVINCIA_CODIGO"
	ColCantonCode   = "CANTON_CODIGO"
)

var (
	provinceColumns = []string{ColCode, ColName}
	cantonColumns   = []string{ColCode, ColProvinceCode, ColName}
	parishColumns   = []string{ColCode, ColCantonCode, ColName}
)

// LoadRows reads the three hierarchy files from dir. Absent files simply
// produce empty levels; callers decide what an incomplete set means.
func LoadRows(dir string) (hierarchy.Rows, error) {
	var rows hierarchy.Rows

	provinces, err := Load(filepath.Join(dir, ProvincesFile), provinceColumns)
	if err != nil {
		return rows, err
	}
	for _, r := range provinces {
		rows.Provinces = append(rows.Provinces, hierarchy.ProvinceRow{Code: r[ColCode], Name: r[ColName]})
	}

	cantons, err := Load(filepath.Join(dir, CantonsFile), cantonColumns)
	if err != nil {
		return rows, err
	}
	for _, r := range cantons {
		rows.Cantons = append(rows.Cantons, hierarchy.CantonRow{
			Code:         r[ColCode],
			ProvinceCode: r[ColProvinceCode],
			Name:         r[ColName],
		})
	}

	parishes, err := Load(filepath.Join(dir, ParishesFile), parishColumns)
	if err != nil {
		return rows, err
	}
	for _, r := range parishes {
		rows.Parishes = append(rows.Parishes, hierarchy.ParishRow{
			Code:       r[ColCode],
			CantonCode: r[ColCantonCode],
			Name:       r[ColName],
		})
	}
	return rows, nil
}

// HierarchyFiles renders the built hierarchy as the three CSV intermediates,
// keyed by file name.
func HierarchyFiles(h *hierarchy.Hierarchy) (map[string][]byte, error) {
	provinces := make([][]string, 0, len(h.Provinces))
	for _, p := range h.Provinces {
		provinces = append(provinces, []string{p.Code, p.Name})
	}
	cantons := make([][]string, 0, len(h.Cantons))
	for _, c := range h.Cantons {
		cantons = append(cantons, []string{c.Code, c.ProvinceCode, c.Name})
	}
	parishes := make([][]string, 0, len(h.Parishes))
	for _, p := range h.Parishes {
		parishes = append(parishes, []string{p.Code, p.CantonCode, p.Name})
	}

	out := make(map[string][]byte, 3)
	for _, f := range []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{ProvincesFile, provinceColumns, provinces},
		{CantonsFile, cantonColumns, cantons},
		{ParishesFile, parishColumns, parishes},
	} {
		b, err := Encode(f.header, f.rows)
		if err != nil {
			return nil, err
		}
		out[f.name] = b
	}
	return out, nil
}
