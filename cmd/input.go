package cmd

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Input contains the flag values of the root command and its subcommands.
type Input struct {
	configPath  string
	envFile     string
	verbose     bool
	logFormat   string
	tolerance   float64
	maxBranches int

	addr string

	output      string
	verify      bool
	printMatrix bool
}

// Output formats.
const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputText = "text"
)

// matrixDocument is the wire shape accepted by POST /calculate_topology.
type matrixDocument struct {
	MatrixA [][]float64 `yaml:"matrixA"`
}

// openInput returns the named file, or stdin for no argument or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", errors.Wrap(err, "open input")
	}
	return f, args[0], nil
}

// readMatrix decodes A from either {"matrixA": rows} or bare rows, in JSON or
// YAML. JSON is parsed as YAML flow syntax.
func readMatrix(r io.Reader) ([][]float64, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read matrix")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty matrix input")
	}

	var root yaml.Node
	if err = yaml.Unmarshal(raw, &root); err != nil {
		return nil, errors.Wrap(err, "decode matrix")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("decode matrix: no document")
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.MappingNode:
		var m matrixDocument
		if err = doc.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "decode matrixA")
		}
		if m.MatrixA == nil {
			return nil, errors.New("decode matrix: missing matrixA")
		}
		return m.MatrixA, nil
	case yaml.SequenceNode:
		var rows [][]float64
		if err = doc.Decode(&rows); err != nil {
			return nil, errors.Wrap(err, "decode matrix rows")
		}
		return rows, nil
	default:
		return nil, errors.Errorf("decode matrix: expected a mapping or a sequence at line %d", doc.Line)
	}
}
