package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arloliu/roster"
	"github.com/arloliu/roster/types"
)

func newHeartbeatCmd(opts *globalOptions) *cobra.Command {
	var worker string

	cmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "announce a worker as eligible until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if worker == "" {
				return fmt.Errorf("--worker is required")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger, err := opts.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			nc, err := opts.connect()
			if err != nil {
				return err
			}
			defer nc.Close()

			hb, err := roster.NewHeartbeat(ctx, nc, &cfg, types.Worker(worker), roster.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := hb.Start(ctx); err != nil {
				return err
			}
			logger.Info("heartbeat started", "worker", worker, "interval", cfg.HeartbeatInterval)

			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			return hb.Stop(stopCtx)
		},
	}

	cmd.Flags().StringVarP(&worker, "worker", "w", "", "worker id to announce")

	return cmd
}
