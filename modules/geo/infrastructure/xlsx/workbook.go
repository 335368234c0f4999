// Package xlsx renders a built hierarchy as a review workbook.
package xlsx

import (
	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
)

const (
	SheetProvinces = "Provincias"
	SheetCantons   = "Cantones"
	SheetParishes  = "Parroquias"
	SheetDropped   = "Descartados"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

func sheets(h *hierarchy.Hierarchy) []sheet {
	provinces := sheet{name: SheetProvinces, header: []any{"ID", "CODIGO", "NOMBRE"}}
	for _, p := range h.Provinces {
		provinces.rows = append(provinces.rows, []any{p.ID, p.Code, p.Name})
	}
	cantons := sheet{name: SheetCantons, header: []any{"ID", "PROVINCIA_ID", "PROVINCIA_CODIGO", "CODIGO", "NOMBRE"}}
	for _, c := range h.Cantons {
		cantons.rows = append(cantons.rows, []any{c.ID, c.ProvinceID, c.ProvinceCode, c.Code, c.Name})
	}
	parishes := sheet{name: SheetParishes, header: []any{"ID", "CANTON_ID", "CANTON_CODIGO", "CODIGO", "NOMBRE"}}
	for _, p := range h.Parishes {
		parishes.rows = append(parishes.rows, []any{p.ID, p.CantonID, p.CantonCode, p.Code, p.Name})
	}
	out := []sheet{provinces, cantons, parishes}

	if len(h.Dropped) > 0 {
		dropped := sheet{name: SheetDropped, header: []any{"NIVEL", "CODIGO", "PADRE", "MOTIVO"}}
		for _, d := range h.Dropped {
			dropped.rows = append(dropped.rows, []any{string(d.Level), d.Code, d.ParentCode, string(d.Reason)})
		}
		out = append(out, dropped)
	}
	return out
}

// Render builds the workbook and returns it as XLSX bytes. Codes are written
// as text cells so leading zeros survive.
func Render(h *hierarchy.Hierarchy) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "header style")
	}

	for i, s := range sheets(h) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, errors.Wrapf(err, "rename sheet %s", s.name)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, errors.Wrapf(err, "new sheet %s", s.name)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return nil, errors.Wrapf(err, "sheet %s", s.name)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return err
	}
	if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
		return err
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.name, "A", last, 18); err != nil {
		return err
	}
	return f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
