package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/services"
)

type pipelineOptions struct {
	skipCities  bool
	skipExtract bool
	cities      citiesOptions
	extract     extractOptions
	generate    generateOptions
	plan        planOptions
}

func newPipelineCmd(a *app) *cobra.Command {
	var opts pipelineOptions

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run cities, CSV rebuild, hierarchy generation and plan in one go",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			svc := services.NewPipelineService(services.PipelineOptions{
				Store:         a.store,
				Intermediates: a.local,
				Logger:        a.logger,
				Metrics:       a.metrics,
			})
			res, err := svc.Run(cmd.Context(), services.PipelineRequest{
				SkipCities:  opts.skipCities,
				Cities:      citiesRequest(a, opts.cities),
				SkipExtract: opts.skipExtract,
				Extract:     buildCSVRequest(a, opts.extract),
				Generate:    generateRequest(a, opts.generate),
				Plan:        planRequest(a, opts.plan),
			})
			if err != nil {
				return a.finish(cmd, started, "", "", nil, err)
			}
			return a.finish(cmd, started, res.Hierarchy.Mode, res.Hierarchy.Status, res, nil)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.skipCities, "skip-cities", false, "Reuse the existing city catalog script")
	f.BoolVar(&opts.skipExtract, "skip-extract", false, "Reuse the existing hierarchy CSV files")
	f.StringVar(&opts.cities.code, "code", "", "ISO country code")
	f.StringVar(&opts.cities.source, "source", "", "Directory with the GeoNames dump")
	f.StringVar(&opts.extract.rawDir, "raw-dir", "", "Directory with the legacy INSERT dumps")
	f.StringVar(&opts.generate.source, "jerarquia-source", "", "Directory with the hierarchy CSV files")
	f.StringVar(&opts.plan.output, "plan-output", "", "Artifact key of the plan file")
	f.StringVar(&opts.plan.sequence, "sequence", "", "YAML file listing the plan scripts")
	return cmd
}
