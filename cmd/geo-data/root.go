package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/pkg/artifact"
	"github.com/iota-uz/geodata/pkg/configuration"
	"github.com/iota-uz/geodata/pkg/metrics"
)

// app is the per-invocation state shared by every subcommand. It is filled
// in by the root PersistentPreRunE.
type app struct {
	cfg     *configuration.Configuration
	logger  *logrus.Entry
	store   artifact.Store
	local   *artifact.FilesystemStore
	metrics *metrics.Run
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "geo-data",
		Short:         "Ecuador geography normalization: province, canton and parish load scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configuration.Load(envFiles)
			if err != nil {
				return withCode(exitUsage, err)
			}
			return a.init(cmd, cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cfg != nil {
				a.cfg.Unload()
			}
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env", ".env.local"}, "Dotenv files to load")

	cmd.AddCommand(newExtractCmd(a))
	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newCitiesCmd(a))
	cmd.AddCommand(newPlanCmd(a))
	cmd.AddCommand(newPipelineCmd(a))
	cmd.AddCommand(newArtifactsCmd(a))
	return cmd
}

func (a *app) init(cmd *cobra.Command, cfg *configuration.Configuration) error {
	a.cfg = cfg
	a.logger = logrus.NewEntry(cfg.Logger()).WithField("command", cmd.Name())
	a.metrics = metrics.NewRun()

	local, err := artifact.NewFilesystem(cfg.Paths.Root)
	if err != nil {
		return withCode(exitIO, err)
	}
	a.local = local

	store, err := artifact.Open(cmd.Context(), artifact.Options{
		Driver: artifact.Driver(cfg.Artifacts.Driver),
		Root:   cfg.Paths.Root,
		S3: artifact.S3Config{
			Bucket:    cfg.Artifacts.S3Bucket,
			Region:    cfg.Artifacts.S3Region,
			Endpoint:  cfg.Artifacts.S3Endpoint,
			Prefix:    cfg.Artifacts.S3Prefix,
			PathStyle: cfg.Artifacts.S3PathStyle,
		},
	})
	if err != nil {
		return withCode(exitIO, err)
	}
	a.store = store
	return nil
}

// finish records the run outcome, exports metrics and prints the summary
// line. The command error, if any, wins over a metrics export failure.
func (a *app) finish(cmd *cobra.Command, started time.Time, mode, status string, result any, runErr error) error {
	if runErr != nil {
		status = "error"
	}
	a.metrics.Finish(cmd.Name(), mode, status, time.Since(started))
	if err := a.metrics.WriteTextfile(a.cfg.Path(a.cfg.Metrics.Textfile)); err != nil {
		if runErr == nil {
			return withCode(exitIO, err)
		}
		a.logger.WithError(err).Warn("metrics export failed")
	}
	if runErr != nil {
		a.logger.WithError(runErr).Error("command failed")
		return classify(runErr)
	}
	return writeJSONLine(cmd.OutOrStdout(), summary{
		Command: cmd.Name(),
		Status:  status,
		Mode:    mode,
		Result:  result,
	})
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
