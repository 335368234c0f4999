package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
	"github.com/iota-uz/geodata/modules/geo/services"
	"github.com/iota-uz/geodata/pkg/artifact"
)

const defaultWorkbook = "jerarquia.xlsx"

type exportResult struct {
	Counts   hierarchy.Counts `json:"counts"`
	Dropped  map[string]int   `json:"dropped,omitempty"`
	Artifact artifact.Info    `json:"artifact"`
}

func newExportCmd(a *app) *cobra.Command {
	var source, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the CSV hierarchy as an XLSX review workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			svc := services.NewHierarchyService(services.HierarchyOptions{
				Store:   a.store,
				Logger:  a.logger,
				Metrics: a.metrics,
			})
			h, info, err := svc.Export(cmd.Context(),
				a.cfg.Path(firstNonEmpty(source, a.cfg.Paths.HierarchyCSVDir)),
				firstNonEmpty(output, filepath.Join(a.cfg.Paths.HierarchyOutputDir, defaultWorkbook)))
			if err != nil {
				return a.finish(cmd, started, "", "", nil, err)
			}
			return a.finish(cmd, started, "", services.StatusOK, exportResult{
				Counts:   h.Counts(),
				Dropped:  h.Dropped.Summary(),
				Artifact: info,
			}, nil)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Directory with the hierarchy CSV files")
	cmd.Flags().StringVar(&output, "output", "", "Artifact key of the workbook")
	return cmd
}
