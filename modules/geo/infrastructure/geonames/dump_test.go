package geonames

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func dumpLine(name, lat, lon, feature, admin1, tz string) string {
	cols := make([]string, 19)
	cols[0] = "1"
	cols[colName] = name
	cols[colLatitude] = lat
	cols[colLongitude] = lon
	cols[colFeatureCode] = feature
	cols[8] = "EC"
	cols[colAdmin1] = admin1
	cols[colTimezone] = tz
	return strings.Join(cols, "\t")
}

func sampleDump() string {
	return strings.Join([]string{
		dumpLine("Cuenca", "-2.90055", "-79.00453", "P", "02", "America/Guayaquil"),
		dumpLine("Cerro Cajas", "-2.8", "-79.2", "T", "02", "America/Guayaquil"),
		dumpLine("Puyo", "x", "-78.0", "P", "99", ""),
		dumpLine("Sin Provincia", "-1", "-78", "P", "", "America/Guayaquil"),
		dumpLine("  Gualaceo ", "-2.89", "-78.78", "P", "02", "America/Guayaquil"),
		"short\tline",
	}, "\n")
}

func TestParse(t *testing.T) {
	t.Parallel()

	admin1 := Admin1{"EC.02": "Azuay"}
	places, err := Parse(strings.NewReader(sampleDump()), "ec", admin1)
	require.NoError(t, err)
	require.Len(t, places, 4)

	cuenca := places[0]
	require.Equal(t, "Cuenca", cuenca.Name)
	require.Equal(t, "Azuay", *cuenca.Province)
	require.InDelta(t, -2.90055, *cuenca.Lat, 1e-9)
	require.InDelta(t, -79.00453, *cuenca.Lon, 1e-9)
	require.Equal(t, "America/Guayaquil", *cuenca.Timezone)

	puyo := places[1]
	require.Equal(t, "99", *puyo.Province)
	require.Nil(t, puyo.Lat)
	require.Nil(t, puyo.Lon)
	require.Nil(t, puyo.Timezone)

	require.Nil(t, places[2].Province)
	require.Equal(t, "Gualaceo", places[3].Name)
}

func TestLoadAdmin1(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), Admin1File)
	content := "EC.01\tAzuay\tAzuay\t3660434\nEC.02\tBolivar\tBolivar\t3660130\n\nbroken\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	a, err := LoadAdmin1(path)
	require.NoError(t, err)
	require.Equal(t, Admin1{"EC.01": "Azuay", "EC.02": "Bolivar"}, a)

	_, err = LoadAdmin1(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocateAndParseZip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.Empty(t, Locate(dir, "EC"))

	zipPath := filepath.Join(dir, "EC.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	readme, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = readme.Write([]byte(dumpLine("Wrong", "0", "0", "P", "", "")))
	require.NoError(t, err)
	member, err := zw.Create("EC.txt")
	require.NoError(t, err)
	_, err = member.Write([]byte(sampleDump()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	require.Equal(t, zipPath, Locate(dir, "ec"))
	places, err := ParseFile(zipPath, "EC", Admin1{})
	require.NoError(t, err)
	require.Len(t, places, 4)
	require.Equal(t, "Cuenca", places[0].Name)
	require.Equal(t, "02", *places[0].Province)

	txtPath := filepath.Join(dir, "EC.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(sampleDump()), 0o644))
	require.Equal(t, txtPath, Locate(dir, "EC"))
}
