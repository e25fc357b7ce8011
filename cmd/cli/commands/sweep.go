package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/productbird/connector/internal/sweep"
)

// flag names
const (
	flagWatch    = "watch"
	flagInterval = "interval"
)

// GetSweepCmd returns the sweep command
func GetSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Poll every record holding a live job and reconcile its status",
		Long: `Sweep walks the generation records that still reference a live job,
polls the generation service for each one and applies the result. A single
pass runs by default; --watch keeps sweeping on an interval.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, records, err := buildEngine()
			if err != nil {
				return err
			}

			watch, _ := cmd.Flags().GetBool(flagWatch)
			interval, _ := cmd.Flags().GetDuration(flagInterval)

			runner := sweep.NewRunner(engine, records, interval)
			if watch {
				runner.WithStartDelay(0).Start(cmd.Context())
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			runner.RunOnce(ctx)
			return nil
		},
	}

	cmd.Flags().Bool(flagWatch, false, "Keep sweeping on an interval instead of running once")
	cmd.Flags().Duration(flagInterval, sweep.DefaultInterval, "Interval between sweeps with --watch")

	return cmd
}
