package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/services"
)

type citiesOptions struct {
	code      string
	source    string
	outputDir string
}

func newCitiesCmd(a *app) *cobra.Command {
	var opts citiesOptions

	cmd := &cobra.Command{
		Use:   "cities",
		Short: "Build the city catalog from a local GeoNames dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			svc := services.NewCitiesService(services.CitiesOptions{
				Store:   a.store,
				Logger:  a.logger,
				Metrics: a.metrics,
			})
			res, err := svc.Build(cmd.Context(), citiesRequest(a, opts))
			return a.finish(cmd, started, "", services.StatusOK, res, err)
		},
	}
	cmd.Flags().StringVar(&opts.code, "code", "", "ISO country code (default from GEODATA_COUNTRY_CODE)")
	cmd.Flags().StringVar(&opts.source, "source", "", "Directory with {CC}.txt or {CC}.zip and admin1CodesASCII.txt")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for the CSV and SQL files")
	return cmd
}

func citiesRequest(a *app, opts citiesOptions) services.CitiesRequest {
	return services.CitiesRequest{
		CountryCode: firstNonEmpty(opts.code, a.cfg.CountryCode),
		RawDir:      a.cfg.Path(firstNonEmpty(opts.source, a.cfg.Paths.CitiesRawDir)),
		OutputDir:   firstNonEmpty(opts.outputDir, a.cfg.Paths.CitiesOutputDir),
	}
}
