package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/nettopo/matrix"
	"github.com/katalvlaran/nettopo/topology"
)

// writeResult prints r in the requested format. names, when non-nil, holds
// the branch names in original column order and replaces the "b<k>" labels
// in text output.
func writeResult(w io.Writer, format string, r *topology.Result, names []string) error {
	switch format {
	case outputJSON:
		return writeJSON(w, r)
	case outputYAML:
		return writeYAML(w, r)
	case outputText:
		return writeResultText(w, r, names)
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}

// writeMatrix prints a with optional row and column labels.
func writeMatrix(w io.Writer, format string, a *matrix.Dense, rowLabels, colLabels []string) error {
	switch format {
	case outputJSON:
		return writeJSON(w, a)
	case outputYAML:
		return writeYAML(w, a)
	case outputText:
		return writeTable(w, a, rowLabels, colLabels)
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode json")
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return errors.Wrap(enc.Close(), "encode yaml")
}

func writeResultText(w io.Writer, r *topology.Result, names []string) error {
	perm := r.Partition.Permutation()
	cols := make([]string, len(r.ColumnOrder))
	for j, label := range r.ColumnOrder {
		cols[j] = label
		if names != nil && j < len(perm) && perm[j] < len(names) {
			cols[j] = names[perm[j]]
		}
	}
	n := len(r.TreeIndices)

	if _, err := fmt.Fprintf(w, "tree:  %s\nlinks: %s\n", strings.Join(cols[:n], " "), strings.Join(cols[n:], " ")); err != nil {
		return err
	}
	sections := []struct {
		title string
		m     *matrix.Dense
		rows  []string
	}{
		{"A (reordered)", r.AReordered, nil},
		{"B (fundamental loops)", r.B, cols[n:]},
		{"C (fundamental cutsets)", r.C, cols[:n]},
	}
	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "\n%s\n", sec.title); err != nil {
			return err
		}
		if err := writeTable(w, sec.m, sec.rows, cols); err != nil {
			return err
		}
	}
	return nil
}

// writeTable right-aligns the entries of a under colLabels. Missing row
// labels default to 1-based row numbers.
func writeTable(w io.Writer, a *matrix.Dense, rowLabels, colLabels []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if colLabels != nil {
		fmt.Fprint(tw, "\t")
		for _, c := range colLabels {
			fmt.Fprintf(tw, "%s\t", c)
		}
		fmt.Fprintln(tw)
	}
	for i, row := range a.ToRows() {
		label := strconv.Itoa(i + 1)
		if i < len(rowLabels) {
			label = rowLabels[i]
		}
		fmt.Fprintf(tw, "%s\t", label)
		for _, v := range row {
			fmt.Fprintf(tw, "%s\t", formatEntry(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// formatEntry prints the shortest exact form of v and folds -0 into 0.
func formatEntry(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
