package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/services"
)

type extractOptions struct {
	rawDir    string
	outputDir string
	encoding  string
}

func newExtractCmd(a *app) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the legacy INSERT dumps into hierarchy CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.rawDir, "raw-dir", "", "Directory with provincias.sql, cantones.sql and parroquias.sql")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for the CSV files")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "Encoding of the dumps (latin1, windows-1252, utf-8)")
	return cmd
}

func runExtract(cmd *cobra.Command, a *app, opts extractOptions) error {
	started := time.Now()
	req := buildCSVRequest(a, opts)
	svc := services.NewRawSourceService(services.RawSourceOptions{
		Store:   a.local,
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	res, err := svc.BuildCSV(cmd.Context(), req)
	return a.finish(cmd, started, "", services.StatusOK, res, err)
}

func buildCSVRequest(a *app, opts extractOptions) services.BuildCSVRequest {
	return services.BuildCSVRequest{
		RawDir:    a.cfg.Path(firstNonEmpty(opts.rawDir, a.cfg.Paths.RawSQLDir)),
		OutputDir: firstNonEmpty(opts.outputDir, a.cfg.Paths.HierarchyCSVDir),
		Encoding:  firstNonEmpty(opts.encoding, a.cfg.RawEncoding),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
