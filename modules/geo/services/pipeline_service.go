package services

import (
	"context"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/geodata/modules/geo/infrastructure/sqlgen"
	"github.com/iota-uz/geodata/pkg/artifact"
	"github.com/iota-uz/geodata/pkg/logging"
	"github.com/iota-uz/geodata/pkg/metrics"
)

type PipelineOptions struct {
	// Store receives the final artifacts: city catalog, hierarchy script and plan.
	Store artifact.Store
	// Intermediates receives the hierarchy CSV files, which the generation
	// step reads back from local disk.
	Intermediates artifact.Store
	Schema        sqlgen.Schema
	Logger        *logrus.Entry
	Metrics       *metrics.Run
}

type PipelineService struct {
	cities    *CitiesService
	raw       *RawSourceService
	hierarchy *HierarchyService
	plan      *PlanService
	store     artifact.Store
	logger    *logrus.Entry
}

func NewPipelineService(opts PipelineOptions) *PipelineService {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRun()
	}
	if opts.Intermediates == nil {
		opts.Intermediates = opts.Store
	}
	return &PipelineService{
		cities:    NewCitiesService(CitiesOptions{Store: opts.Store, Logger: opts.Logger, Metrics: opts.Metrics}),
		raw:       NewRawSourceService(RawSourceOptions{Store: opts.Intermediates, Logger: opts.Logger, Metrics: opts.Metrics}),
		hierarchy: NewHierarchyService(HierarchyOptions{Store: opts.Store, Schema: opts.Schema, Logger: opts.Logger, Metrics: opts.Metrics}),
		plan:      NewPlanService(PlanOptions{Store: opts.Store, Logger: opts.Logger, Metrics: opts.Metrics}),
		store:     opts.Store,
		logger:    opts.Logger,
	}
}

type PipelineRequest struct {
	SkipCities bool
	Cities     CitiesRequest

	SkipExtract bool
	Extract     BuildCSVRequest

	Generate GenerateRequest
	Plan     PlanRequest
}

type PipelineResult struct {
	Cities    *CitiesResult   `json:"cities,omitempty"`
	Extract   *BuildCSVResult `json:"extract,omitempty"`
	Hierarchy *GenerateResult `json:"hierarchy"`
	Plan      *PlanResult     `json:"plan"`
}

// Run executes the full preparation: city catalog, CSV rebuild, hierarchy
// script and execution plan. Skipping the city step requires the catalog
// script from an earlier run.
func (s *PipelineService) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	res := &PipelineResult{}

	if req.SkipCities {
		key := filepath.Join(req.Cities.OutputDir, DefaultCitiesArtifact)
		ok, err := s.store.Exists(ctx, key)
		if err != nil {
			return nil, errors.Wrapf(err, "check %s", key)
		}
		if !ok {
			return nil, errors.Wrapf(ErrSourceNotFound, "city catalog %s (run without --skip-cities or provide it)", key)
		}
		s.logger.WithField("path", key).Info("city step skipped, using existing catalog")
	} else {
		cities, err := s.cities.Build(ctx, req.Cities)
		if err != nil {
			return nil, errors.Wrap(err, "cities")
		}
		res.Cities = cities
	}

	if req.SkipExtract {
		s.logger.Info("CSV rebuild skipped, using existing files")
	} else {
		extracted, err := s.raw.BuildCSV(ctx, req.Extract)
		if err != nil {
			return nil, errors.Wrap(err, "extract")
		}
		res.Extract = extracted
	}

	generated, err := s.hierarchy.Generate(ctx, req.Generate)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}
	res.Hierarchy = generated

	plan, err := s.plan.Build(ctx, req.Plan)
	if err != nil {
		return nil, errors.Wrap(err, "plan")
	}
	res.Plan = plan
	return res, nil
}
