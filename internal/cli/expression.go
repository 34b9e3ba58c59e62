package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/function"
	"github.com/born-ml/fncas/internal/parse"
)

// exprOptions are the flags shared by commands taking an expression argument.
type exprOptions struct {
	Dim  int
	Vars []string
	At   []float64
}

func (e *exprOptions) bind(cmd *cobra.Command, withPoint bool) {
	cmd.Flags().IntVar(&e.Dim, "dim", 0, "number of input variables (default: len(--vars) or len(--at))")
	cmd.Flags().StringSliceVar(&e.Vars, "vars", nil, "names for x[0], x[1], ...")
	if withPoint {
		cmd.Flags().Float64SliceVar(&e.At, "at", nil, "point to evaluate at, comma separated")
	}
}

func (e *exprOptions) dimension() int {
	if e.Dim > 0 {
		return e.Dim
	}
	if len(e.Vars) > 0 {
		return len(e.Vars)
	}
	return len(e.At)
}

// record parses src into a fresh store.
func (e *exprOptions) record(opts *RootOptions, src string) (*function.Recorded, error) {
	dim := e.dimension()
	if dim <= 0 {
		return nil, NewExitError(ExitCommandError, "cannot infer dimension: pass --dim, --vars or --at")
	}
	store := autodiff.NewStore(autodiff.WithLogger(opts.Logger()))
	f, err := parse.Record(store, dim, src, parse.WithVariables(e.Vars...))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid expression", err)
	}
	return f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatPoint(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ", ")
}

// EvalResult is the structured output of eval.
type EvalResult struct {
	Expression string    `json:"expression" yaml:"expression"`
	Point      []float64 `json:"point" yaml:"point"`
	Value      float64   `json:"value" yaml:"value"`
	Nodes      int       `json:"nodes" yaml:"nodes"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	e := &exprOptions{}
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression at a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.record(rootOpts, args[0])
			if err != nil {
				return err
			}
			v, err := f.Evaluate(e.At)
			if err != nil {
				return WrapExitError(ExitFailure, "evaluate", err)
			}
			res := EvalResult{Expression: f.String(), Point: e.At, Value: v, Nodes: f.ScratchSize()}
			return newOutput(rootOpts, cmd).Write(res, func(p *Printer) {
				p.Printf("f(%s) = %s\n", formatPoint(e.At), formatFloat(v))
				p.Printf("graph: %d nodes\n", res.Nodes)
			})
		},
	}
	e.bind(cmd, true)
	return cmd
}

// GradResult is the structured output of grad.
type GradResult struct {
	Point    []float64 `json:"point" yaml:"point"`
	Value    float64   `json:"value" yaml:"value"`
	Gradient []float64 `json:"gradient" yaml:"gradient"`
	Partials []string  `json:"partials,omitempty" yaml:"partials,omitempty"`
}

// NewGradCommand creates the grad command.
func NewGradCommand(rootOpts *RootOptions) *cobra.Command {
	e := &exprOptions{}
	var show bool
	cmd := &cobra.Command{
		Use:   "grad <expression>",
		Short: "Evaluate an expression and its gradient at a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.record(rootOpts, args[0])
			if err != nil {
				return err
			}
			g, err := function.NewGradient(f)
			if err != nil {
				return WrapExitError(ExitFailure, "differentiate", err)
			}
			v, grad, err := g.Evaluate(e.At)
			if err != nil {
				return WrapExitError(ExitFailure, "evaluate", err)
			}
			res := GradResult{Point: e.At, Value: v, Gradient: grad}
			if show {
				for i := 0; i < g.Dimension(); i++ {
					res.Partials = append(res.Partials, g.Partial(i).String())
				}
			}
			return newOutput(rootOpts, cmd).Write(res, func(p *Printer) {
				p.Printf("f(%s) = %s\n", formatPoint(e.At), formatFloat(v))
				for i, d := range grad {
					p.Printf("df/dx[%d] = %s\n", i, formatFloat(d))
					if show {
						p.Printf("  = %s\n", res.Partials[i])
					}
				}
			})
		},
	}
	e.bind(cmd, true)
	cmd.Flags().BoolVar(&show, "show", false, "print the derivative expressions")
	return cmd
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	e := &exprOptions{}
	var wrt []int
	cmd := &cobra.Command{
		Use:   "diff <expression>",
		Short: "Print the symbolic derivative of an expression",
		Long: `Print the symbolic derivative of an expression.

--wrt may be repeated for higher orders: --wrt 0,1 is d/dx[1] (d/dx[0] f).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.record(rootOpts, args[0])
			if err != nil {
				return err
			}
			if len(wrt) == 0 {
				return NewExitError(ExitCommandError, "--wrt is required")
			}
			d := f
			for _, v := range wrt {
				if d, err = d.Differentiate(v); err != nil {
					return WrapExitError(ExitCommandError, "differentiate", err)
				}
			}
			res := map[string]any{"wrt": wrt, "derivative": d.String(), "nodes": d.ScratchSize()}
			return newOutput(rootOpts, cmd).Write(res, func(p *Printer) {
				p.Printf("%s\n", d.String())
			})
		},
	}
	e.bind(cmd, false)
	cmd.Flags().IntSliceVar(&wrt, "wrt", nil, "variable indices to differentiate by, in order")
	return cmd
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	e := &exprOptions{}
	cmd := &cobra.Command{
		Use:   "dump <expression>",
		Short: "Print the recorded node list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.record(rootOpts, args[0])
			if err != nil {
				return err
			}
			snap, err := f.Snapshot()
			if err != nil {
				return WrapExitError(ExitFailure, "snapshot", err)
			}
			return newOutput(rootOpts, cmd).Write(snap, func(p *Printer) {
				p.Printf("dimension %d, %d nodes\n", snap.Dimension, len(snap.Nodes))
				for _, n := range snap.Nodes {
					p.Printf("%4d  %s\n", n.Index, describe(n))
				}
			})
		},
	}
	e.bind(cmd, false)
	return cmd
}

func describe(n autodiff.NodeInfo) string {
	switch {
	case n.Value != nil:
		return "const " + formatFloat(*n.Value)
	case n.Variable != nil:
		return fmt.Sprintf("x[%d]", *n.Variable)
	case n.Op != "":
		return fmt.Sprintf("%%%d %s %%%d", *n.LHS, n.Op, *n.RHS)
	case n.Func != "":
		return fmt.Sprintf("%s(%%%d)", n.Func, *n.LHS)
	default:
		return n.Kind
	}
}
