package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/nettopo/matrix"
	"github.com/katalvlaran/nettopo/topology"
)

func newComputeCommand(input *Input, s *session) *cobra.Command {
	computeCmd := &cobra.Command{
		Use:   "compute [file|-]",
		Short: "Compute B and C for a reduced incidence matrix read from a file or stdin",
		Long: `Compute reads A as {"matrixA": [[...]]} or as bare rows, in JSON or YAML,
and prints the tree/link split, the reordered A and the fundamental loop (B)
and cutset (C) matrices.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			rows, err := readMatrix(in)
			if err != nil {
				return errors.Wrap(err, name)
			}
			r, a, err := topology.ComputeRows(rows, s.cfg.TopologyOptions()...)
			if err != nil {
				return err
			}
			s.logger.WithField("input", name).Debugf("tree %v, links %v", r.TreeIndices, r.LinkIndices)
			return input.finish(cmd, s, a, r, nil)
		},
	}
	addResultFlags(computeCmd, input)
	return computeCmd
}

func addResultFlags(c *cobra.Command, input *Input) {
	c.Flags().StringVarP(&input.output, "output", "o", outputJSON, "output format: json, yaml or text")
	c.Flags().BoolVar(&input.verify, "verify", false, "check A·Bᵗ = 0 and B·Cᵗ = 0 before printing")
}

// finish verifies r when requested and prints it.
func (i *Input) finish(cmd *cobra.Command, s *session, a *matrix.Dense, r *topology.Result, names []string) error {
	if i.verify {
		if err := topology.Verify(a, r, verifyTolerance(s.cfg.Topology.Tolerance)); err != nil {
			return err
		}
		s.logger.Info("verified: A·Bᵗ = 0, B·Cᵗ = 0")
	}
	return writeResult(cmd.OutOrStdout(), i.output, r, names)
}

// verifyTolerance loosens the selection tolerance for products that
// accumulate rounding over whole rows.
func verifyTolerance(tol float64) float64 {
	const floor = 1e-9
	if tol < floor {
		return floor
	}
	return tol
}
