package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/nettopo/matrix"
	"github.com/katalvlaran/nettopo/topology"
)

const divider = `
reference: "0"
branches:
  - {name: R1, from: "1", to: "0"}
  - {name: R2, from: "1", to: "2"}
  - {name: V1, from: "2", to: "0"}
`

func run(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	rootCmd := createRootCommand(ctx, &Input{}, "test")
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadMatrix(t *testing.T) {
	want := [][]float64{{1, 0, 1}, {0, 1, -1}}
	cases := map[string]string{
		"json document": `{"matrixA": [[1, 0, 1], [0, 1, -1]]}`,
		"json rows":     `[[1, 0, 1], [0, 1, -1]]`,
		"yaml rows":     "- [1, 0, 1]\n- [0, 1, -1]\n",
		"yaml document": "matrixA:\n  - [1, 0, 1]\n  - [0, 1, -1]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			rows, err := readMatrix(strings.NewReader(doc))
			require.NoError(t, err)
			assert.Equal(t, want, rows)
		})
	}

	for name, doc := range map[string]string{
		"empty":          "  \n",
		"scalar":         "42",
		"missing matrix": `{"matrix": [[1]]}`,
		"not numbers":    `[["a", "b"]]`,
		"broken json":    `{"matrixA": [[1, 0`,
	} {
		t.Run("error/"+name, func(t *testing.T) {
			_, err := readMatrix(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestWriteTable(t *testing.T) {
	a, err := matrix.FromRows([][]float64{{1, -0.5}, {0, 12}})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, a, []string{"n1"}, []string{"x", "y"}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"x", "y"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"n1", "1", "-0.5"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "0", "12"}, strings.Fields(lines[2]))

	assert.Equal(t, "0", formatEntry(math.Copysign(0, -1)))
	assert.Equal(t, "-1", formatEntry(-1))
}

func TestCompute_JSON(t *testing.T) {
	out, err := run(t, context.Background(), `{"matrixA": [[1,0,1],[0,1,-1]]}`, "compute", "--verify")
	require.NoError(t, err)

	var got struct {
		Tree []int       `json:"tree_indices_original"`
		B    [][]float64 `json:"B_matrix"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []int{1, 2}, got.Tree)
	assert.Equal(t, [][]float64{{-1, 1, 1}}, got.B)
}

func TestCompute_TextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- [-1, 1, 1, 0, 0, 0]\n- [0, -1, 0, 1, 1, 0]\n- [0, 0, -1, 0, -1, 1]\n"), 0o600))

	out, err := run(t, context.Background(), "", "compute", "-o", "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "tree:  b1 b2 b3\nlinks: b4 b5 b6\n")
	assert.Contains(t, out, "B (fundamental loops)")
	assert.Contains(t, out, "C (fundamental cutsets)")
}

func TestCompute_Errors(t *testing.T) {
	_, err := run(t, context.Background(), `[[1,1],[1,1]]`, "compute")
	assert.ErrorIs(t, err, topology.ErrInvalidTopology)

	_, err = run(t, context.Background(), `[[1,0,1],[0,1]]`, "compute")
	assert.ErrorIs(t, err, topology.ErrMalformedInput)

	_, err = run(t, context.Background(), `[[1,0,1,0]]`, "compute", "--max-branches", "3")
	assert.ErrorIs(t, err, topology.ErrMalformedInput)

	_, err = run(t, context.Background(), `[[1,0,1]]`, "compute", "-o", "xml")
	assert.ErrorContains(t, err, "xml")

	_, err = run(t, context.Background(), `[[1,0,1]]`, "compute", "--tolerance", "0")
	assert.ErrorContains(t, err, "tolerance")

	_, err = run(t, context.Background(), "", "compute", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNetlist(t *testing.T) {
	t.Run("print matrix", func(t *testing.T) {
		out, err := run(t, context.Background(), divider, "netlist", "--print-matrix", "-o", "yaml")
		require.NoError(t, err)
		var rows [][]float64
		require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
		assert.Equal(t, [][]float64{{1, 1, 0}, {0, -1, 1}}, rows)
	})
	t.Run("text uses branch names", func(t *testing.T) {
		out, err := run(t, context.Background(), divider, "netlist", "-o", "text", "--verify")
		require.NoError(t, err)
		assert.Contains(t, out, "tree:  R1 R2\nlinks: V1\n")
	})
	t.Run("invalid netlist", func(t *testing.T) {
		_, err := run(t, context.Background(), `branches: [{from: "1", to: "1"}]`, "netlist")
		assert.Error(t, err)
	})
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := run(t, ctx, "", "serve", "--addr", "127.0.0.1:0")
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, context.Background(), "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "nettopo version test\n", out)
}
