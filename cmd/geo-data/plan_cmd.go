package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/services"
)

type planOptions struct {
	output   string
	sequence string
}

func newPlanCmd(a *app) *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Write the SQL*Plus execution plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			svc := services.NewPlanService(services.PlanOptions{
				Store:   a.store,
				Logger:  a.logger,
				Metrics: a.metrics,
			})
			res, err := svc.Build(cmd.Context(), planRequest(a, opts))
			return a.finish(cmd, started, "", services.StatusOK, res, err)
		},
	}
	cmd.Flags().StringVar(&opts.output, "output", "", "Artifact key of the plan file")
	cmd.Flags().StringVar(&opts.sequence, "sequence", "", "YAML file listing the scripts to run, in order")
	return cmd
}

func planRequest(a *app, opts planOptions) services.PlanRequest {
	return services.PlanRequest{
		SequenceFile: a.cfg.Path(firstNonEmpty(opts.sequence, a.cfg.Paths.PlanSequence)),
		Root:         a.cfg.Paths.Root,
		Output:       firstNonEmpty(opts.output, a.cfg.Paths.PlanOutput),
	}
}
