package sqlgen

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
)

const sqliteSchema = `
CREATE TABLE PROVINCIAS (
	PROVINCIAID INTEGER PRIMARY KEY,
	CODIGO      TEXT NOT NULL UNIQUE,
	NOMBRE      TEXT NOT NULL
);
CREATE TABLE CANTONES (
	CANTONID    INTEGER PRIMARY KEY,
	PROVINCIAID INTEGER NOT NULL REFERENCES PROVINCIAS(PROVINCIAID),
	CODIGO      TEXT NOT NULL UNIQUE,
	NOMBRE      TEXT NOT NULL
);
CREATE TABLE PARROQUIAS (
	PARROQUIAID INTEGER PRIMARY KEY,
	CANTONID    INTEGER NOT NULL REFERENCES CANTONES(CANTONID),
	CODIGO      TEXT NOT NULL UNIQUE,
	NOMBRE      TEXT NOT NULL
);`

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)
	return db
}

// execPlainStatements runs the DELETE/INSERT part of a generated script.
// COMMIT markers and the PL/SQL block are Oracle-only and skipped.
func execPlainStatements(t *testing.T, db *sql.DB, script []byte) {
	t.Helper()
	for _, line := range strings.Split(string(script), "\n") {
		line = strings.TrimSpace(line)
		if line == "DECLARE" {
			return
		}
		if line == "" || strings.HasPrefix(line, "--") || line == "COMMIT;" {
			continue
		}
		_, err := db.Exec(line)
		require.NoError(t, err, line)
	}
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRenderGenerated_LoadsWithForeignKeys(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)
	h := hierarchy.Build(hierarchy.Rows{
		Provinces: []hierarchy.ProvinceRow{{Code: "1", Name: "Azuay"}, {Code: "2", Name: "Bolívar"}},
		Cantons: []hierarchy.CantonRow{
			{Code: "101", ProvinceCode: "1", Name: "Cuenca"},
			{Code: "201", ProvinceCode: "2", Name: "Guaranda"},
			{Code: "102", ProvinceCode: "1", Name: "Girón"},
		},
		Parishes: []hierarchy.ParishRow{
			{Code: "10101", CantonCode: "101", Name: "Baños"},
			{Code: "20101", CantonCode: "201", Name: "Salinas"},
			{Code: "10201", CantonCode: "102", Name: "La Asunción"},
		},
	})
	script := RenderGenerated(h, DefaultSchema())

	// twice: the script must be re-runnable against an already loaded schema
	execPlainStatements(t, db, script)
	execPlainStatements(t, db, script)

	require.Equal(t, 2, count(t, db, "PROVINCIAS"))
	require.Equal(t, 3, count(t, db, "CANTONES"))
	require.Equal(t, 3, count(t, db, "PARROQUIAS"))

	var orphans int
	require.NoError(t, db.QueryRow(`
		SELECT COUNT(*) FROM PARROQUIAS p
		JOIN CANTONES c ON c.CANTONID = p.CANTONID
		WHERE substr(p.CODIGO, 1, 4) <> c.CODIGO`).Scan(&orphans))
	require.Zero(t, orphans)

	var name string
	require.NoError(t, db.QueryRow(`SELECT NOMBRE FROM CANTONES WHERE CODIGO = '0102'`).Scan(&name))
	require.Equal(t, "Girón", name)
}
