package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
)

func azuay() *hierarchy.Hierarchy {
	return hierarchy.Build(hierarchy.Rows{
		Provinces: []hierarchy.ProvinceRow{{Code: "02", Name: "Azuay"}},
		Cantons: []hierarchy.CantonRow{
			{Code: "201", ProvinceCode: "02", Name: "Cuenca"},
			{Code: "202", ProvinceCode: "02", Name: "Gualaceo"},
		},
		Parishes: []hierarchy.ParishRow{
			{Code: "20101", CantonCode: "201", Name: "San Joaquín"},
			{Code: "20201", CantonCode: "202", Name: "D'Ávila"},
		},
	})
}

func TestLiteral(t *testing.T) {
	t.Parallel()

	name := "O'Brien"
	lat := -2.9
	var missing *string
	var noLat *float64

	require.Equal(t, "NULL", Literal(nil))
	require.Equal(t, "NULL", Literal(missing))
	require.Equal(t, "NULL", Literal(noLat))
	require.Equal(t, "''", Literal(""))
	require.Equal(t, "'O''Brien'", Literal(name))
	require.Equal(t, "'O''Brien'", Literal(&name))
	require.Equal(t, "-2.9", Literal(&lat))
	require.Equal(t, "42", Literal(42))
	require.Equal(t, "7", Literal(int64(7)))
}

func TestRenderGenerated_Layout(t *testing.T) {
	t.Parallel()

	got := string(RenderGenerated(azuay(), DefaultSchema()))
	lines := strings.Split(got, "\n")

	require.Equal(t, []string{
		generatedHeader,
		"DELETE FROM PARROQUIAS;",
		"DELETE FROM CANTONES;",
		"DELETE FROM PROVINCIAS;",
		"COMMIT;",
		"INSERT INTO PROVINCIAS (PROVINCIAID, CODIGO, NOMBRE) VALUES (1, '02', 'Azuay');",
		"",
		"INSERT INTO CANTONES (CANTONID, PROVINCIAID, CODIGO, NOMBRE) VALUES (1, 1, '0201', 'Cuenca');",
		"INSERT INTO CANTONES (CANTONID, PROVINCIAID, CODIGO, NOMBRE) VALUES (2, 1, '0202', 'Gualaceo');",
		"",
		"INSERT INTO PARROQUIAS (PARROQUIAID, CANTONID, CODIGO, NOMBRE) VALUES (1, 1, '020101', 'San Joaquín');",
		"INSERT INTO PARROQUIAS (PARROQUIAID, CANTONID, CODIGO, NOMBRE) VALUES (2, 2, '020201', 'D''Ávila');",
		"COMMIT;",
		"",
		"DECLARE",
	}, lines[:15])

	require.True(t, strings.HasSuffix(got, "END;\n/\n"))
	for _, seq := range []string{"SEQ_PROVINCIA", "SEQ_CANTON", "SEQ_PARROQUIA"} {
		require.Equal(t, 2, strings.Count(got, seq+".NEXTVAL"), seq)
	}
	require.Contains(t, got, "SELECT NVL(MAX(PARROQUIAID), 0) INTO v_target FROM PARROQUIAS;")
}

func TestRenderGenerated_Deterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t, RenderGenerated(azuay(), DefaultSchema()), RenderGenerated(azuay(), DefaultSchema()))
}

func TestRenderGenerated_CustomSchema(t *testing.T) {
	t.Parallel()

	s := DefaultSchema()
	s.Provinces = Table{Name: "GEO_PROVINCE", IDColumn: "ID", Sequence: "GEO_PROVINCE_SEQ"}
	got := string(RenderGenerated(azuay(), s))
	require.Contains(t, got, "DELETE FROM GEO_PROVINCE;")
	require.Contains(t, got, "INSERT INTO GEO_PROVINCE (ID, CODIGO, NOMBRE) VALUES (1, '02', 'Azuay');")
	require.Contains(t, got, "SELECT GEO_PROVINCE_SEQ.NEXTVAL INTO v_current FROM DUAL;")
}

func TestRenderManual(t *testing.T) {
	t.Parallel()

	got := string(RenderManual([]ManualFile{
		{Name: "insert_provincias.sql", Content: []byte("INSERT INTO PROVINCIAS VALUES (1);")},
		{Name: "insert_cantones.sql", Content: []byte("INSERT INTO CANTONES VALUES (1);\n")},
		{Name: "insert_parroquias.sql", Content: []byte("garbage that is not parsed")},
	}))

	require.Equal(t, manualHeader+"\n"+
		"-- Combining insert_provincias.sql\nINSERT INTO PROVINCIAS VALUES (1);\n"+
		"-- Combining insert_cantones.sql\nINSERT INTO CANTONES VALUES (1);\n"+
		"-- Combining insert_parroquias.sql\ngarbage that is not parsed\n", got)
	require.NotContains(t, got, "NEXTVAL")
}

func TestRenderMissing(t *testing.T) {
	t.Parallel()

	got := string(RenderMissing("data/raw/jerarquia"))
	require.Contains(t, got, "provincias.csv, cantones.csv and parroquias.csv")
	require.Contains(t, got, "data/raw/jerarquia")
	for _, line := range strings.Split(strings.TrimSpace(got), "\n") {
		require.True(t, strings.HasPrefix(line, "--"), line)
	}
}

func TestRenderCities(t *testing.T) {
	t.Parallel()

	prov := "Azuay"
	tz := "America/Guayaquil"
	lat, lon := -2.9, -79.0
	got := string(RenderCities([]City{
		{ID: 1, Name: "Cuenca", Province: &prov, Lat: &lat, Lon: &lon, Timezone: &tz},
		{ID: 2, Name: "Nowhere"},
	}))

	require.Contains(t, got, "DELETE FROM CIUDAD;\n")
	require.Contains(t, got, "VALUES (1, 'Cuenca', 'Azuay', -2.9, -79, 'America/Guayaquil');")
	require.Contains(t, got, "VALUES (2, 'Nowhere', NULL, NULL, NULL, NULL);")
	require.True(t, strings.HasSuffix(got, "COMMIT;\n"))
}
