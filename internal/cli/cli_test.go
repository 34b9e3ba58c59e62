package cli

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/fncas/internal/parallel"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestEvalText(t *testing.T) {
	out, err := execute(t, "eval", "x[0] + x[1]*2", "--at", "1,3")
	require.NoError(t, err)
	assert.Equal(t, "f(1, 3) = 7\ngraph: 5 nodes\n", out)
}

func TestEvalJSON(t *testing.T) {
	out, err := execute(t, "eval", "a*b + sin(a)", "--vars", "a,b", "--at", "2,3", "--format", "json")
	require.NoError(t, err)

	var res EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "((x[0]*x[1])+sin(x[0]))", res.Expression)
	assert.Equal(t, []float64{2, 3}, res.Point)
	assert.InDelta(t, 6+math.Sin(2), res.Value, 1e-12)
	assert.Equal(t, 5, res.Nodes)
}

func TestEvalYAML(t *testing.T) {
	out, err := execute(t, "eval", "sqr(x[0])", "--at", "4", "--format", "yaml")
	require.NoError(t, err)

	var res EvalResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 16.0, res.Value, 0)
	assert.Equal(t, "sqr(x[0])", res.Expression)
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no dimension", []string{"eval", "1"}, ExitCommandError},
		{"bad expression", []string{"eval", "x[0] +", "--at", "1"}, ExitCommandError},
		{"unknown function", []string{"eval", "sinh(x[0])", "--at", "1"}, ExitCommandError},
		{"point too short", []string{"eval", "x[2]", "--dim", "3", "--at", "1,2"}, ExitFailure},
		{"bad format", []string{"eval", "x[0]", "--at", "1", "--format", "xml"}, ExitCommandError},
		{"missing argument", []string{"eval"}, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestGrad(t *testing.T) {
	out, err := execute(t, "grad", "a*b + sin(a)", "--vars", "a,b", "--at", "2,3", "--format", "json", "--show")
	require.NoError(t, err)

	var res GradResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 6+math.Sin(2), res.Value, 1e-12)
	require.Len(t, res.Gradient, 2)
	assert.InDelta(t, 3+math.Cos(2), res.Gradient[0], 1e-12)
	assert.InDelta(t, 2.0, res.Gradient[1], 1e-12)
	require.Len(t, res.Partials, 2)
	assert.Equal(t, "(((1*x[1])+(x[0]*0))+(cos(x[0])*1))", res.Partials[0])
}

func TestGradText(t *testing.T) {
	out, err := execute(t, "grad", "x[0]*x[0]", "--at", "3")
	require.NoError(t, err)
	assert.Equal(t, "f(3) = 9\ndf/dx[0] = 6\n", out)
}

func TestDiff(t *testing.T) {
	out, err := execute(t, "diff", "x[0]*x[1]", "--dim", "2", "--wrt", "0")
	require.NoError(t, err)
	assert.Equal(t, "((1*x[1])+(x[0]*0))\n", out)

	out, err = execute(t, "diff", "x[0]*x[1]", "--dim", "2", "--wrt", "0,1", "--format", "json")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []any{0.0, 1.0}, res["wrt"])
	assert.NotEmpty(t, res["derivative"])
}

func TestDiffErrors(t *testing.T) {
	_, err := execute(t, "diff", "x[0]", "--dim", "1")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "diff", "x[0]", "--dim", "1", "--wrt", "1")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDump(t *testing.T) {
	out, err := execute(t, "dump", "x[0] + 1", "--dim", "1")
	require.NoError(t, err)
	assert.Equal(t, "dimension 1, 3 nodes\n   0  x[0]\n   1  const 1\n   2  %0 + %1\n", out)

	out, err = execute(t, "dump", "sin(x[0])", "--dim", "1", "--format", "json")
	require.NoError(t, err)
	var snap struct {
		Dimension   int `json:"dimension"`
		ScratchSize int `json:"scratch_size"`
		Nodes       []struct {
			Kind string `json:"kind"`
			Func string `json:"func"`
			LHS  *int   `json:"lhs"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 2, snap.ScratchSize)
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, "function", snap.Nodes[1].Kind)
	assert.Equal(t, "sin", snap.Nodes[1].Func)
	require.NotNil(t, snap.Nodes[1].LHS)
	assert.Equal(t, 0, *snap.Nodes[1].LHS)
}

func TestMinimize(t *testing.T) {
	out, err := execute(t, "minimize", "sqr(a - 3) + sqr(b)", "--vars", "a,b", "--at", "0,0",
		"--optimizer", "sgd", "--lr", "0.1", "--format", "json")
	require.NoError(t, err)

	var res MinimizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "sgd", res.Optimizer)
	assert.True(t, res.Converged)
	require.Len(t, res.X, 2)
	assert.InDelta(t, 3.0, res.X[0], 1e-5)
	assert.InDelta(t, 0.0, res.X[1], 1e-5)
}

func TestMinimizeErrors(t *testing.T) {
	_, err := execute(t, "minimize", "sqr(x[0])", "--at", "1", "--optimizer", "lbfgs")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "minimize", "sqr(x[0])", "--at", "1", "--optimizer", "sgd", "--lr", "10", "--iterations", "100000")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "x = [")
}

func TestMinimizeDivergedJSON(t *testing.T) {
	out, err := execute(t, "minimize", "sqr(x[0]-3)", "--at", "0", "--optimizer", "sgd", "--lr", "10", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var res MinimizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Converged)
	require.Len(t, res.X, 1)
	assert.False(t, math.IsInf(res.X[0], 0) || math.IsNaN(res.X[0]))
	assert.False(t, math.IsInf(res.Value, 0) || math.IsNaN(res.Value))
}

func TestEvalNonFinite(t *testing.T) {
	out, err := execute(t, "eval", "log(x[0])", "--at=-1", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "--format text or yaml")
	assert.Empty(t, out)

	out, err = execute(t, "eval", "log(x[0])", "--at=-1", "--format", "yaml")
	require.NoError(t, err)
	var res EvalResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.True(t, math.IsNaN(res.Value))

	out, err = execute(t, "eval", "log(x[0])", "--at=-1")
	require.NoError(t, err)
	assert.Contains(t, out, "f(-1) = ")
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
expression: "a * b"
variables: [a, b]
gradient: true
points:
  - [2, 3]
  - [4, 5]
parallel:
  enabled: false
`), 0o600))

	out, err := execute(t, "run", path, "--format", "json")
	require.NoError(t, err)

	var results []parallel.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.InDelta(t, 6.0, results[0].Value, 0)
	assert.Equal(t, []float64{3, 2}, results[0].Gradient)
	assert.InDelta(t, 20.0, results[1].Value, 0)

	out, err = execute(t, "run", path)
	require.NoError(t, err)
	assert.Equal(t, "2 points\nf(2, 3) = 6  grad = [3, 2]\nf(4, 5) = 20  grad = [5, 4]\n", out)
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"expression": "x[0] +", "dimension": 1, "points": [[1]]}`), 0o600))
	_, err = execute(t, "run", path)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fncas "+Version+"\n", out)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "load", assert.AnError)))

	err := WrapExitError(ExitFailure, "evaluate", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "evaluate: "+assert.AnError.Error(), err.Error())
}
