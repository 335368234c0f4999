package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/services"
)

type generateOptions struct {
	source     string
	output     string
	manualDirs []string
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the hierarchy load script (manual, generated or placeholder)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "", "Directory with provincias.csv, cantones.csv and parroquias.csv")
	cmd.Flags().StringVar(&opts.output, "output", "", "Artifact key of the SQL script")
	cmd.Flags().StringArrayVar(&opts.manualDirs, "manual-dir", nil, "Directory searched for manual insert_*.sql scripts (repeatable)")
	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts generateOptions) error {
	started := time.Now()
	svc := services.NewHierarchyService(services.HierarchyOptions{
		Store:   a.store,
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	res, err := svc.Generate(cmd.Context(), generateRequest(a, opts))
	if err != nil {
		return a.finish(cmd, started, "", "", nil, err)
	}
	return a.finish(cmd, started, res.Mode, res.Status, res, nil)
}

func generateRequest(a *app, opts generateOptions) services.GenerateRequest {
	manual := opts.manualDirs
	if len(manual) == 0 {
		manual = a.cfg.Paths.ManualDirs
	}
	dirs := make([]string, 0, len(manual))
	for _, d := range manual {
		dirs = append(dirs, a.cfg.Path(d))
	}
	return services.GenerateRequest{
		SourceDir:      a.cfg.Path(firstNonEmpty(opts.source, a.cfg.Paths.HierarchyCSVDir)),
		SourceExplicit: opts.source != "",
		ManualDirs:     dirs,
		Output: firstNonEmpty(opts.output,
			filepath.Join(a.cfg.Paths.HierarchyOutputDir, services.DefaultHierarchyArtifact)),
	}
}
