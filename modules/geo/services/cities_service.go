package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/iota-uz/geodata/modules/geo/infrastructure/csvio"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/geonames"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/sqlgen"
	"github.com/iota-uz/geodata/pkg/artifact"
	"github.com/iota-uz/geodata/pkg/logging"
	"github.com/iota-uz/geodata/pkg/metrics"
)

const DefaultCitiesArtifact = "insert_ciudad.sql"

var cityColumns = []string{"ciudadid", "nombre", "provincia", "latitud", "longitud", "zona_horaria"}

type CitiesOptions struct {
	Store   artifact.Store
	Logger  *logrus.Entry
	Metrics *metrics.Run
}

type CitiesService struct {
	opts CitiesOptions
}

func NewCitiesService(opts CitiesOptions) *CitiesService {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRun()
	}
	return &CitiesService{opts: opts}
}

type CitiesRequest struct {
	CountryCode string
	// RawDir holds {CC}.txt or {CC}.zip and admin1CodesASCII.txt.
	RawDir string
	// OutputDir is the artifact key prefix for the CSV and SQL outputs.
	OutputDir string
}

type CitiesResult struct {
	CountryCode string          `json:"country"`
	Dump        string          `json:"dump"`
	Parsed      int             `json:"parsed"`
	Cities      int             `json:"cities"`
	Files       []artifact.Info `json:"files"`
	Elapsed     time.Duration   `json:"-"`
}

// Build parses the local GeoNames dump, deduplicates places by name and
// province and writes ciudades_{cc}.csv plus insert_ciudad.sql.
func (s *CitiesService) Build(ctx context.Context, req CitiesRequest) (*CitiesResult, error) {
	started := time.Now()
	cc := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if cc == "" {
		return nil, errors.New("country code is required")
	}
	logger := s.opts.Logger.WithField("country", cc)

	dump := geonames.Locate(req.RawDir, cc)
	if dump == "" {
		return nil, errors.Wrapf(ErrCityDumpMissing, "expected %s or %s",
			filepath.Join(req.RawDir, cc+".txt"), filepath.Join(req.RawDir, cc+".zip"))
	}

	admin1, err := geonames.LoadAdmin1(filepath.Join(req.RawDir, geonames.Admin1File))
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.WithField("path", filepath.Join(req.RawDir, geonames.Admin1File)).
			Warn("admin1 codes missing, provinces keep raw codes")
		admin1 = geonames.Admin1{}
	case err != nil:
		return nil, err
	}

	places, err := geonames.ParseFile(dump, cc, admin1)
	if err != nil {
		return nil, err
	}
	cities := dedupCities(places)
	res := &CitiesResult{CountryCode: cc, Dump: dump, Parsed: len(places), Cities: len(cities)}
	logger.WithFields(logrus.Fields{"parsed": res.Parsed, "cities": res.Cities}).Info("cities parsed")

	csvBody, err := csvio.Encode(cityColumns, cityRecords(cities))
	if err != nil {
		return nil, err
	}
	outputs := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"ciudades_" + strings.ToLower(cc) + ".csv", csvBody, artifact.ContentTypeCSV},
		{DefaultCitiesArtifact, sqlgen.RenderCities(cities), artifact.ContentTypeSQL},
	}
	for _, o := range outputs {
		key := filepath.Join(req.OutputDir, o.name)
		info, err := s.opts.Store.Put(ctx, key, o.body, artifact.PutOptions{ContentType: o.contentType})
		if err != nil {
			return nil, errors.Wrapf(err, "write %s", key)
		}
		s.opts.Metrics.Artifact(o.name, info.Size)
		res.Files = append(res.Files, info)
	}
	s.opts.Metrics.RowsEmitted("city", len(cities))
	res.Elapsed = time.Since(started)
	return res, nil
}

func foldKey(fold cases.Caser, s string) string {
	return fold.String(norm.NFC.String(strings.TrimSpace(s)))
}

// dedupCities keeps the first place per case-folded (name, province) pair,
// orders the result by province then name using Spanish collation and
// assigns ids from 1.
func dedupCities(places []geonames.Place) []sqlgen.City {
	fold := cases.Fold()
	seen := make(map[[2]string]struct{}, len(places))
	cities := make([]sqlgen.City, 0, len(places))
	for _, p := range places {
		province := ""
		if p.Province != nil {
			province = *p.Province
		}
		key := [2]string{foldKey(fold, p.Name), foldKey(fold, province)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, sqlgen.City{
			Name:     p.Name,
			Province: p.Province,
			Lat:      p.Lat,
			Lon:      p.Lon,
			Timezone: p.Timezone,
		})
	}

	coll := collate.New(language.Spanish)
	sort.SliceStable(cities, func(i, j int) bool {
		if c := coll.CompareString(deref(cities[i].Province), deref(cities[j].Province)); c != 0 {
			return c < 0
		}
		return coll.CompareString(cities[i].Name, cities[j].Name) < 0
	})
	for i := range cities {
		cities[i].ID = i + 1
	}
	return cities
}

func cityRecords(cities []sqlgen.City) [][]string {
	out := make([][]string, 0, len(cities))
	for _, c := range cities {
		out = append(out, []string{
			strconv.Itoa(c.ID),
			c.Name,
			deref(c.Province),
			formatFloat(c.Lat),
			formatFloat(c.Lon),
			deref(c.Timezone),
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
