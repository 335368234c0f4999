package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/sqlgen"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/xlsx"
	"github.com/iota-uz/geodata/pkg/artifact"
	"github.com/iota-uz/geodata/pkg/logging"
	"github.com/iota-uz/geodata/pkg/metrics"
)

const (
	StatusOK      = "ok"
	StatusMissing = "missing"

	DefaultHierarchyArtifact = "insert_jerarquia.sql"
)

type HierarchyOptions struct {
	Store   artifact.Store
	Schema  sqlgen.Schema
	Logger  *logrus.Entry
	Metrics *metrics.Run
}

func (o *HierarchyOptions) setDefaults() {
	if o.Schema.Provinces.Name == "" {
		o.Schema = sqlgen.DefaultSchema()
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewRun()
	}
}

type HierarchyService struct {
	opts HierarchyOptions
}

func NewHierarchyService(opts HierarchyOptions) *HierarchyService {
	opts.setDefaults()
	return &HierarchyService{opts: opts}
}

type GenerateRequest struct {
	// SourceDir holds provincias.csv, cantones.csv and parroquias.csv.
	SourceDir string
	// SourceExplicit marks SourceDir as user supplied; it must then exist.
	// The default directory is created instead.
	SourceExplicit bool
	ManualDirs     []string
	// Output is the artifact key of the combined SQL script.
	Output string
}

type GenerateResult struct {
	RunID     uuid.UUID            `json:"run_id"`
	Status    string               `json:"status"`
	Mode      string               `json:"mode"`
	Counts    *hierarchy.Counts    `json:"counts,omitempty"`
	Dropped   map[string]int       `json:"dropped,omitempty"`
	Manual    []string             `json:"manual_files,omitempty"`
	SourceDir string               `json:"source"`
	Artifact  artifact.Info        `json:"artifact"`
	Elapsed   time.Duration        `json:"-"`
	Hierarchy *hierarchy.Hierarchy `json:"-"`
}

// Generate selects the mode for this run and writes exactly one SQL artifact:
// the manual scripts combined, the generated reload script, or the
// missing-data placeholder.
func (s *HierarchyService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	started := time.Now()
	res := &GenerateResult{RunID: uuid.New(), SourceDir: req.SourceDir}
	logger := s.opts.Logger.WithField("run_id", res.RunID.String())

	if err := prepareSourceDir(req.SourceDir, req.SourceExplicit); err != nil {
		return nil, err
	}
	output := req.Output
	if output == "" {
		output = DefaultHierarchyArtifact
	}

	mode, err := SelectMode(req.ManualDirs, req.SourceDir)
	if err != nil {
		return nil, err
	}
	res.Mode = mode.Name()
	logger = logger.WithField("mode", res.Mode)

	var body []byte
	switch m := mode.(type) {
	case ManualMode:
		files := make([]sqlgen.ManualFile, 0, len(m.Files))
		for _, path := range m.Files {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "read manual script %s", path)
			}
			files = append(files, sqlgen.ManualFile{Name: filepath.Base(path), Content: b})
		}
		body = sqlgen.RenderManual(files)
		res.Status = StatusOK
		res.Manual = m.Files
	case MissingDataMode:
		body = sqlgen.RenderMissing(m.SourceDir)
		res.Status = StatusMissing
		logger.WithField("path", m.SourceDir).Warn("hierarchy CSV inputs missing, writing placeholder")
	case GeneratedMode:
		h := hierarchy.Build(m.Rows)
		if err := h.Validate(); err != nil {
			return nil, err
		}
		s.reportDrops(logger, h.Dropped)
		body = sqlgen.RenderGenerated(h, s.opts.Schema)
		counts := h.Counts()
		res.Status = StatusOK
		res.Counts = &counts
		res.Dropped = h.Dropped.Summary()
		res.Hierarchy = h
		s.opts.Metrics.RowsEmitted(string(hierarchy.LevelProvince), counts.Provinces)
		s.opts.Metrics.RowsEmitted(string(hierarchy.LevelCanton), counts.Cantons)
		s.opts.Metrics.RowsEmitted(string(hierarchy.LevelParish), counts.Parishes)
	default:
		return nil, errors.Errorf("unexpected mode %T", mode)
	}

	info, err := s.opts.Store.Put(ctx, output, body, artifact.PutOptions{
		ContentType: artifact.ContentTypeSQL,
		Metadata:    map[string]string{"run_id": res.RunID.String(), "mode": res.Mode},
	})
	if err != nil {
		return nil, errors.Wrap(err, "write hierarchy artifact")
	}
	res.Artifact = info
	res.Elapsed = time.Since(started)
	s.opts.Metrics.Artifact(filepath.Base(output), info.Size)

	logger.WithFields(logrus.Fields{
		"status": res.Status,
		"path":   info.Location,
	}).Info("hierarchy artifact written")
	return res, nil
}

// Export renders the CSV hierarchy in sourceDir as a review workbook.
func (s *HierarchyService) Export(ctx context.Context, sourceDir, output string) (*hierarchy.Hierarchy, artifact.Info, error) {
	mode, err := SelectMode(nil, sourceDir)
	if err != nil {
		return nil, artifact.Info{}, err
	}
	gen, ok := mode.(GeneratedMode)
	if !ok {
		return nil, artifact.Info{}, errors.Wrapf(ErrSourceNotFound, "hierarchy CSV files in %s", sourceDir)
	}
	h := hierarchy.Build(gen.Rows)
	s.reportDrops(s.opts.Logger, h.Dropped)

	b, err := xlsx.Render(h)
	if err != nil {
		return nil, artifact.Info{}, err
	}
	info, err := s.opts.Store.Put(ctx, output, b, artifact.PutOptions{ContentType: artifact.ContentTypeXLSX})
	if err != nil {
		return nil, artifact.Info{}, errors.Wrap(err, "write workbook")
	}
	s.opts.Metrics.Artifact(filepath.Base(output), info.Size)
	return h, info, nil
}

func (s *HierarchyService) reportDrops(logger *logrus.Entry, dropped hierarchy.DropReport) {
	for _, d := range dropped {
		logger.WithFields(logrus.Fields{
			"level":       d.Level,
			"code":        d.Code,
			"parent_code": d.ParentCode,
			"reason":      d.Reason,
		}).Debug("row dropped")
	}
	summary := dropped.Summary()
	for _, key := range dropped.SortedKeys() {
		logger.WithFields(logrus.Fields{"group": key, "rows": summary[key]}).Warn("rows excluded from hierarchy")
	}
	counts := map[[2]string]int{}
	for _, d := range dropped {
		counts[[2]string{string(d.Level), string(d.Reason)}]++
	}
	for k, n := range counts {
		s.opts.Metrics.RowsDropped(k[0], k[1], n)
	}
}

func prepareSourceDir(dir string, explicit bool) error {
	st, err := os.Stat(dir)
	switch {
	case err == nil && !st.IsDir():
		return errors.Wrapf(ErrSourceNotFound, "%s is not a directory", dir)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return errors.Wrapf(err, "stat %s", dir)
	case explicit:
		return errors.Wrapf(ErrSourceNotFound, "hierarchy directory %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", dir)
	}
	return nil
}
