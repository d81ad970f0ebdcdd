package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/nettopo/netlist"
	"github.com/katalvlaran/nettopo/topology"
)

func newNetlistCommand(input *Input, s *session) *cobra.Command {
	netlistCmd := &cobra.Command{
		Use:   "netlist [file|-]",
		Short: "Build A from a branch list and compute its topology matrices",
		Long: `Netlist reads a YAML or JSON branch list:

  reference: "0"
  branches:
    - {name: R1, from: "1", to: "0"}
    - {name: R2, from: "1", to: "2"}

builds the reduced incidence matrix (one row per non-reference node, +1 where
a branch leaves a node, -1 where it enters) and computes B and C from it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			nl, err := netlist.Parse(in)
			if err != nil {
				return errors.Wrap(err, name)
			}
			a, err := nl.Incidence()
			if err != nil {
				return err
			}
			names := make([]string, len(nl.Branches))
			for j, b := range nl.Branches {
				names[j] = b.Name
			}
			s.logger.WithField("input", name).Debugf("%d nodes, %d branches, reference %q", a.Rows(), a.Cols(), nl.Reference)

			if input.printMatrix {
				return writeMatrix(cmd.OutOrStdout(), input.output, a, nl.Nodes(), names)
			}
			r, err := topology.Compute(a, s.cfg.TopologyOptions()...)
			if err != nil {
				return err
			}
			return input.finish(cmd, s, a, r, names)
		},
	}
	addResultFlags(netlistCmd, input)
	netlistCmd.Flags().BoolVar(&input.printMatrix, "print-matrix", false, "print the reduced incidence matrix and stop")
	return netlistCmd
}
