package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
)

func TestRender_SheetsAndLeadingZeros(t *testing.T) {
	t.Parallel()

	h := hierarchy.Build(hierarchy.Rows{
		Provinces: []hierarchy.ProvinceRow{{Code: "2", Name: "Azuay"}},
		Cantons: []hierarchy.CantonRow{
			{Code: "201", ProvinceCode: "2", Name: "Cuenca"},
			{Code: "999", ProvinceCode: "77", Name: "Lost"},
		},
		Parishes: []hierarchy.ParishRow{{Code: "20101", CantonCode: "201", Name: "Baños"}},
	})

	b, err := Render(h)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, []string{SheetProvinces, SheetCantons, SheetParishes, SheetDropped}, f.GetSheetList())

	rows, err := f.GetRows(SheetProvinces)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"ID", "CODIGO", "NOMBRE"}, {"1", "02", "Azuay"}}, rows)

	rows, err = f.GetRows(SheetParishes)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "1", "0201", "020101", "Baños"}, rows[1])

	rows, err = f.GetRows(SheetDropped)
	require.NoError(t, err)
	require.Equal(t, []string{"canton", "0999", "77", "unresolved_parent"}, rows[1])
}
