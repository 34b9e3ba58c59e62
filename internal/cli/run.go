package cli

import (
	"github.com/spf13/cobra"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/config"
	"github.com/born-ml/fncas/internal/function"
	"github.com/born-ml/fncas/internal/observability"
	"github.com/born-ml/fncas/internal/parallel"
	"github.com/born-ml/fncas/internal/parse"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Evaluate an expression at every point listed in a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}

			batch := &parallel.Batch{
				Config: *cfg.Parallel,
				Record: func(store *autodiff.Store) (*function.Recorded, error) {
					return parse.Record(store, cfg.Dimension, cfg.Expression, parse.WithVariables(cfg.Variables...))
				},
				Gradient: cfg.Gradient,
				Logger:   rootOpts.Logger(),
				Metrics:  observability.NewMetricsRecorder(),
			}
			results, err := batch.Run(cmd.Context(), cfg.Points)
			if err != nil {
				return WrapExitError(ExitFailure, "batch", err)
			}

			return newOutput(rootOpts, cmd).Write(results, func(p *Printer) {
				p.Printf("%d points\n", len(results))
				for i, r := range results {
					p.Printf("f(%s) = %s", formatPoint(cfg.Points[i]), formatFloat(r.Value))
					if r.Gradient != nil {
						p.Printf("  grad = [%s]", formatPoint(r.Gradient))
					}
					p.Printf("\n")
				}
			})
		},
	}
	return cmd
}
