package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/geodata/modules/geo/services"
	"github.com/iota-uz/geodata/pkg/artifact"
)

type artifactList struct {
	Driver    artifact.Driver `json:"driver"`
	Prefix    string          `json:"prefix,omitempty"`
	Artifacts []artifact.Info `json:"artifacts"`
}

type artifactRemoval struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

// newArtifactsCmd inspects the configured artifact store, which is the only
// way to reach outputs written to the s3 or memory drivers.
func newArtifactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List, print or remove stored artifacts",
	}
	cmd.AddCommand(newArtifactsListCmd(a))
	cmd.AddCommand(newArtifactsCatCmd(a))
	cmd.AddCommand(newArtifactsRmCmd(a))
	return cmd
}

func newArtifactsListCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			infos, err := a.store.List(cmd.Context(), prefix)
			if infos == nil {
				infos = []artifact.Info{}
			}
			return a.finish(cmd, started, "", services.StatusOK, artifactList{
				Driver:    a.store.Driver(),
				Prefix:    prefix,
				Artifacts: infos,
			}, err)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list keys with this prefix")
	return cmd
}

func newArtifactsCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <key>",
		Short: "Write an artifact's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return classify(err)
			}
			if _, err := cmd.OutOrStdout().Write(b); err != nil {
				return withCode(exitIO, err)
			}
			return nil
		},
	}
}

func newArtifactsRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			removed, err := a.store.Delete(cmd.Context(), args[0])
			if err == nil && !removed {
				a.logger.WithField("key", args[0]).Warn("artifact not found, nothing removed")
			}
			return a.finish(cmd, started, "", services.StatusOK, artifactRemoval{Key: args[0], Removed: removed}, err)
		},
	}
}
