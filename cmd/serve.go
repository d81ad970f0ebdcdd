package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/nettopo/server"
)

func newServeCommand(ctx context.Context, input *Input, s *session) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /calculate_topology over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			srv := server.New(s.cfg.Server, s.logger, s.cfg.TopologyOptions()...)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			s.logger.Info("shutting down")
			return srv.Wait()
		},
	}
	serveCmd.Flags().StringVar(&input.addr, "addr", "", "listen address, overrides server.addr")
	return serveCmd
}
