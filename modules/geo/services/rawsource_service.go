package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/csvio"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/legacysql"
	"github.com/iota-uz/geodata/pkg/artifact"
	"github.com/iota-uz/geodata/pkg/logging"
	"github.com/iota-uz/geodata/pkg/metrics"
)

// Raw dump file names and their tuple arity.
const (
	RawProvincesFile = "provincias.sql"
	RawCantonsFile   = "cantones.sql"
	RawParishesFile  = "parroquias.sql"

	provinceArity = 2
	childArity    = 3
)

type RawSourceOptions struct {
	Store   artifact.Store
	Logger  *logrus.Entry
	Metrics *metrics.Run
}

type RawSourceService struct {
	opts RawSourceOptions
}

func NewRawSourceService(opts RawSourceOptions) *RawSourceService {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRun()
	}
	return &RawSourceService{opts: opts}
}

type BuildCSVRequest struct {
	// RawDir holds provincias.sql, cantones.sql and parroquias.sql.
	RawDir string
	// OutputDir is the artifact key prefix for the three CSV files.
	OutputDir string
	Encoding  string
}

type BuildCSVResult struct {
	Counts    hierarchy.Counts `json:"counts"`
	Extracted hierarchy.Counts `json:"extracted"`
	Dropped   map[string]int   `json:"dropped,omitempty"`
	Files     []artifact.Info  `json:"files"`
	Elapsed   time.Duration    `json:"-"`
}

// BuildCSV turns the legacy INSERT dumps into normalized CSV intermediates.
// Rows are normalized with the same rules as generation, so the CSV files
// already carry composite codes.
func (s *RawSourceService) BuildCSV(ctx context.Context, req BuildCSVRequest) (*BuildCSVResult, error) {
	started := time.Now()
	enc := req.Encoding
	if enc == "" {
		enc = legacysql.DefaultEncoding
	}
	logger := s.opts.Logger.WithFields(logrus.Fields{"raw_dir": req.RawDir, "encoding": enc})

	rows, err := s.extractRows(req.RawDir, enc)
	if err != nil {
		return nil, err
	}
	res := &BuildCSVResult{Extracted: hierarchy.Counts{
		Provinces: len(rows.Provinces),
		Cantons:   len(rows.Cantons),
		Parishes:  len(rows.Parishes),
	}}
	logger.WithFields(logrus.Fields{
		"provinces": res.Extracted.Provinces,
		"cantons":   res.Extracted.Cantons,
		"parishes":  res.Extracted.Parishes,
	}).Info("tuples extracted")

	h := hierarchy.Build(rows)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	res.Counts = h.Counts()
	res.Dropped = h.Dropped.Summary()
	for _, key := range h.Dropped.SortedKeys() {
		logger.WithFields(logrus.Fields{"group": key, "rows": res.Dropped[key]}).Warn("rows excluded from hierarchy")
	}
	for _, d := range h.Dropped {
		s.opts.Metrics.RowsDropped(string(d.Level), string(d.Reason), 1)
	}

	files, err := csvio.HierarchyFiles(h)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := filepath.Join(req.OutputDir, name)
		info, err := s.opts.Store.Put(ctx, key, files[name], artifact.PutOptions{ContentType: artifact.ContentTypeCSV})
		if err != nil {
			return nil, errors.Wrapf(err, "write %s", key)
		}
		s.opts.Metrics.Artifact(name, info.Size)
		res.Files = append(res.Files, info)
	}
	res.Elapsed = time.Since(started)

	logger.WithFields(logrus.Fields{
		"provinces": res.Counts.Provinces,
		"cantons":   res.Counts.Cantons,
		"parishes":  res.Counts.Parishes,
	}).Info("hierarchy CSV written")
	return res, nil
}

func (s *RawSourceService) extractRows(dir, enc string) (hierarchy.Rows, error) {
	var rows hierarchy.Rows

	provinces, err := extractRaw(dir, RawProvincesFile, provinceArity, enc)
	if err != nil {
		return rows, err
	}
	for _, t := range provinces {
		rows.Provinces = append(rows.Provinces, hierarchy.ProvinceRow{Code: t[0], Name: t[1]})
	}

	cantons, err := extractRaw(dir, RawCantonsFile, childArity, enc)
	if err != nil {
		return rows, err
	}
	for _, t := range cantons {
		rows.Cantons = append(rows.Cantons, hierarchy.CantonRow{Code: t[0], Name: t[1], ProvinceCode: t[2]})
	}

	parishes, err := extractRaw(dir, RawParishesFile, childArity, enc)
	if err != nil {
		return rows, err
	}
	for _, t := range parishes {
		rows.Parishes = append(rows.Parishes, hierarchy.ParishRow{Code: t[0], Name: t[1], CantonCode: t[2]})
	}
	return rows, nil
}

func extractRaw(dir, name string, arity int, enc string) ([]legacysql.Tuple, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrSourceNotFound, "raw dump %s", path)
	}
	return legacysql.ExtractFile(path, arity, enc)
}
