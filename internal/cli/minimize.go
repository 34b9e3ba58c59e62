package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/fncas/internal/function"
	"github.com/born-ml/fncas/internal/optim"
)

// MinimizeResult is the structured output of minimize.
type MinimizeResult struct {
	Optimizer string `json:"optimizer" yaml:"optimizer"`
	optim.Result `yaml:",inline"`
}

// NewMinimizeCommand creates the minimize command.
func NewMinimizeCommand(rootOpts *RootOptions) *cobra.Command {
	e := &exprOptions{}
	var (
		method   string
		lr       float64
		momentum float64
		cfg      optim.MinimizeConfig
	)
	cmd := &cobra.Command{
		Use:   "minimize <expression>",
		Short: "Minimize an expression by gradient descent from a starting point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opt optim.Optimizer
			switch method {
			case "sgd":
				opt = optim.NewSGD(optim.SGDConfig{LR: lr, Momentum: momentum})
			case "adam":
				opt = optim.NewAdam(optim.AdamConfig{LR: lr})
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown optimizer %q: must be sgd or adam", method))
			}

			f, err := e.record(rootOpts, args[0])
			if err != nil {
				return err
			}
			g, err := function.NewGradient(f)
			if err != nil {
				return WrapExitError(ExitFailure, "differentiate", err)
			}
			res, err := optim.Minimize(cmd.Context(), g, e.At, opt, cfg)
			if err != nil && !errors.Is(err, optim.ErrDiverged) {
				return WrapExitError(ExitFailure, "minimize", err)
			}

			out := MinimizeResult{Optimizer: method, Result: res}
			if werr := newOutput(rootOpts, cmd).Write(out, func(p *Printer) {
				p.Printf("x = [%s]\n", formatPoint(res.X))
				p.Printf("f(x) = %s\n", formatFloat(res.Value))
				p.Printf("|grad| = %s after %d iterations", formatFloat(res.GradNorm), res.Iterations)
				if res.Converged {
					p.Printf(" (converged)")
				}
				p.Printf("\n")
			}); werr != nil {
				return werr
			}
			if err != nil {
				return WrapExitError(ExitFailure, "minimize", err)
			}
			return nil
		},
	}
	e.bind(cmd, true)
	cmd.Flags().StringVar(&method, "optimizer", "adam", "optimizer (sgd|adam)")
	cmd.Flags().Float64Var(&lr, "lr", 0, "learning rate (default: optimizer specific)")
	cmd.Flags().Float64Var(&momentum, "momentum", 0, "momentum for sgd")
	cmd.Flags().IntVar(&cfg.MaxIterations, "iterations", 1000, "maximum number of steps")
	cmd.Flags().Float64Var(&cfg.Tolerance, "tolerance", 1e-6, "stop once the gradient norm falls below this")
	return cmd
}
