package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/geodata/modules/geo/infrastructure/csvio"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/geonames"
	"github.com/iota-uz/geodata/pkg/artifact"
)

func writeRawDumps(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, RawProvincesFile,
		"INSERT INTO provincias (id, nombre) VALUES (1, 'Azuay'), (3, 'Ca\xf1ar');\n")
	writeFile(t, dir, RawCantonsFile,
		"-- cantones\nINSERT INTO cantones VALUES (101, 'Cuenca', 1), (102, 'Gir\xf3n', 1), (301, 'Azogues', 3), (999, 'Perdido', 77);\n")
	writeFile(t, dir, RawParishesFile,
		"INSERT INTO parroquias VALUES (10101, 'Ba\xf1os', 101), (10102, 'O''Brien', 101), (30101, 'Cojitambo', 301);\n")
}

func TestRawSourceService_BuildCSV(t *testing.T) {
	t.Parallel()

	raw := t.TempDir()
	writeRawDumps(t, raw)
	store := artifact.NewMemory()
	svc := NewRawSourceService(RawSourceOptions{Store: store})

	res, err := svc.BuildCSV(context.Background(), BuildCSVRequest{RawDir: raw, OutputDir: "csv"})
	require.NoError(t, err)
	require.Equal(t, 4, res.Extracted.Cantons)
	require.Equal(t, 2, res.Counts.Provinces)
	require.Equal(t, 3, res.Counts.Cantons)
	require.Equal(t, 3, res.Counts.Parishes)
	require.Equal(t, map[string]int{"canton/unresolved_parent": 1}, res.Dropped)
	require.Len(t, res.Files, 3)

	provinces, err := store.Get(context.Background(), filepath.Join("csv", csvio.ProvincesFile))
	require.NoError(t, err)
	require.Equal(t, "CODIGO,NOMBRE\n01,Azuay\n03,Cañar\n", string(provinces))

	parishes, err := store.Get(context.Background(), filepath.Join("csv", csvio.ParishesFile))
	require.NoError(t, err)
	require.Equal(t, "CODIGO,CANTON_CODIGO,NOMBRE\n010101,0101,Baños\n010102,0101,O'Brien\n030101,0301,Cojitambo\n", string(parishes))
}

func TestRawSourceService_MissingDump(t *testing.T) {
	t.Parallel()

	raw := t.TempDir()
	writeFile(t, raw, RawProvincesFile, "INSERT INTO provincias VALUES (1, 'Azuay');")
	svc := NewRawSourceService(RawSourceOptions{Store: artifact.NewMemory()})

	_, err := svc.BuildCSV(context.Background(), BuildCSVRequest{RawDir: raw, OutputDir: "csv"})
	require.ErrorIs(t, err, ErrSourceNotFound)
}

func cityLine(name, feature, admin1 string) string {
	cols := make([]string, 19)
	cols[0] = "1"
	cols[1] = name
	cols[4] = "-2.9"
	cols[5] = "-79.0"
	cols[6] = feature
	cols[10] = admin1
	cols[17] = "America/Guayaquil"
	return strings.Join(cols, "\t")
}

func TestCitiesService_Build(t *testing.T) {
	t.Parallel()

	raw := t.TempDir()
	writeFile(t, raw, "EC.txt", strings.Join([]string{
		cityLine("Zamora", "P", "01"),
		cityLine("Cuenca", "P", "01"),
		cityLine("CUENCA", "P", "01"),
		cityLine(" Cuenca  ", "P", "01"),
		cityLine("Ñauza", "P", "01"),
		cityLine("Nulti", "P", "01"),
		cityLine("Cajas", "T", "01"),
		cityLine("Azogues", "P", "03"),
	}, "\n"))
	writeFile(t, raw, geonames.Admin1File, "EC.01\tAzuay\tAzuay\t1\nEC.03\tCañar\tCanar\t3\n")

	store := artifact.NewMemory()
	svc := NewCitiesService(CitiesOptions{Store: store})
	res, err := svc.Build(context.Background(), CitiesRequest{CountryCode: "ec", RawDir: raw, OutputDir: "ciudades"})
	require.NoError(t, err)
	require.Equal(t, "EC", res.CountryCode)
	require.Equal(t, 7, res.Parsed)
	require.Equal(t, 5, res.Cities)

	csvBody, err := store.Get(context.Background(), "ciudades/ciudades_ec.csv")
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"ciudadid,nombre,provincia,latitud,longitud,zona_horaria",
		"1,Cuenca,Azuay,-2.9,-79,America/Guayaquil",
		"2,Nulti,Azuay,-2.9,-79,America/Guayaquil",
		"3,Ñauza,Azuay,-2.9,-79,America/Guayaquil",
		"4,Zamora,Azuay,-2.9,-79,America/Guayaquil",
		"5,Azogues,Cañar,-2.9,-79,America/Guayaquil",
	}, "\n")+"\n", string(csvBody))

	sqlBody, err := store.Get(context.Background(), "ciudades/"+DefaultCitiesArtifact)
	require.NoError(t, err)
	require.Contains(t, string(sqlBody), "VALUES (3, 'Ñauza', 'Azuay', -2.9, -79, 'America/Guayaquil');")
}

func TestCitiesService_MissingInputs(t *testing.T) {
	t.Parallel()

	raw := t.TempDir()
	svc := NewCitiesService(CitiesOptions{Store: artifact.NewMemory()})

	_, err := svc.Build(context.Background(), CitiesRequest{CountryCode: "EC", RawDir: raw, OutputDir: "out"})
	require.ErrorIs(t, err, ErrCityDumpMissing)

	writeFile(t, raw, "EC.txt", cityLine("Cuenca", "P", "01"))
	res, err := svc.Build(context.Background(), CitiesRequest{CountryCode: "EC", RawDir: raw, OutputDir: "out"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Cities)
}

func TestPlanService(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "scripts/sql/oltp/00_create_base_tables.sql", "SELECT 1 FROM DUAL;")
	store := artifact.NewMemory()
	svc := NewPlanService(PlanOptions{Store: store})

	res, err := svc.Build(context.Background(), PlanRequest{Root: root})
	require.NoError(t, err)
	require.Equal(t, DefaultSequence, res.Scripts)
	require.Len(t, res.Missing, len(DefaultSequence)-1)

	body, err := store.Get(context.Background(), DefaultPlanArtifact)
	require.NoError(t, err)
	plan := string(body)
	require.True(t, strings.HasPrefix(plan, "-- Execution plan"))
	require.Contains(t, plan, "SET DEFINE OFF;\nSET ECHO ON;\nSET FEEDBACK ON;\nSET SERVEROUTPUT ON;\nWHENEVER SQLERROR CONTINUE;\n")
	require.Contains(t, plan, "@scripts/sql/oltp/00_create_base_tables.sql\n@scripts/sql/oltp/00_require_base_tables.sql\n")
	require.Contains(t, plan, "SELECT * FROM VW_MAS_VENDIDO WHERE ROWNUM <= 5;")

	seq := writeFile(t, root, "plan.yaml", "scripts:\n  - a.sql\n  - data/output/jerarquia/insert_jerarquia.sql\n")
	res, err = svc.Build(context.Background(), PlanRequest{Root: root, SequenceFile: seq, Output: "custom.sql"})
	require.NoError(t, err)
	require.Equal(t, []string{"a.sql", "data/output/jerarquia/insert_jerarquia.sql"}, res.Scripts)

	bad := writeFile(t, root, "bad.yaml", "scripts: [a.sql]\nextra: true\n")
	_, err = svc.Build(context.Background(), PlanRequest{Root: root, SequenceFile: bad})
	require.Error(t, err)

	empty := writeFile(t, root, "empty.yaml", "scripts: []\n")
	_, err = LoadSequence(empty)
	require.Error(t, err)
}

func TestPipelineService_Run(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRawDumps(t, filepath.Join(root, "raw"))
	writeFile(t, root, "ciudades/EC.txt", cityLine("Cuenca", "P", "01"))

	store, err := artifact.NewFilesystem(root)
	require.NoError(t, err)
	svc := NewPipelineService(PipelineOptions{Store: store})

	req := PipelineRequest{
		Cities:   CitiesRequest{CountryCode: "EC", RawDir: filepath.Join(root, "ciudades"), OutputDir: "output/ciudades"},
		Extract:  BuildCSVRequest{RawDir: filepath.Join(root, "raw"), OutputDir: "csv"},
		Generate: GenerateRequest{SourceDir: filepath.Join(root, "csv"), Output: "output/jerarquia/insert_jerarquia.sql"},
		Plan:     PlanRequest{Root: root, Output: "output/plan.sql"},
	}
	res, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, res.Cities.Cities)
	require.Equal(t, 3, res.Extract.Counts.Parishes)
	require.Equal(t, StatusOK, res.Hierarchy.Status)
	require.Equal(t, 3, res.Hierarchy.Counts.Cantons)
	require.FileExists(t, filepath.Join(root, "output/plan.sql"))
	require.FileExists(t, filepath.Join(root, "output/ciudades/insert_ciudad.sql"))

	req.SkipCities = true
	req.SkipExtract = true
	res, err = svc.Run(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, res.Cities)
	require.Nil(t, res.Extract)
	require.Equal(t, 3, res.Hierarchy.Counts.Parishes)
}

func TestPipelineService_SkipCitiesNeedsCatalog(t *testing.T) {
	t.Parallel()

	svc := NewPipelineService(PipelineOptions{Store: artifact.NewMemory()})
	_, err := svc.Run(context.Background(), PipelineRequest{
		SkipCities: true,
		Cities:     CitiesRequest{OutputDir: "ciudades"},
	})
	require.ErrorIs(t, err, ErrSourceNotFound)
}
