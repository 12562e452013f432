package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/arloliu/roster"
	"github.com/arloliu/roster/source"
	"github.com/arloliu/roster/types"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		partitions  []string
		workers     []string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a coordinator until interrupted",
		Long: "run joins the leader election and advances epochs on the configured interval. " +
			"Eligible workers come from heartbeats unless --workers is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			active, err := parsePartitions(partitions)
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

			var workerSource roster.WorkerSource
			if len(workers) > 0 {
				ids := make([]types.Worker, len(workers))
				for i, w := range workers {
					ids[i] = types.Worker(w)
				}
				workerSource = source.NewStaticWorkers(ids)
			} else {
				workerSource, err = roster.NewKVWorkerSource(ctx, nc, &cfg)
				if err != nil {
					return err
				}
			}

			reg := prometheus.NewRegistry()
			coord, err := roster.NewCoordinator(&cfg, nc, workerSource, source.NewStaticPartitions(active),
				roster.WithLogger(logger),
				roster.WithMetrics(roster.NewPrometheusMetrics(reg, "")),
			)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if err := coord.Start(ctx); err != nil {
				return err
			}

			results, cancel := coord.Subscribe()
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
					defer cancelStop()

					return coord.Stop(stopCtx)
				case res, ok := <-results:
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "epoch %d: pool=%d assigned=%d unassigned=%d churn=%d\n",
						res.Epoch, len(res.State.Pool), res.State.Len(), len(res.Unassigned), res.Diff.Churn())
				}
			}
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&partitions, "partitions", "p", nil, "active partition ids, comma separated")
	flags.StringSliceVar(&workers, "workers", nil, "static eligible workers in tie-break order (default: heartbeat discovery)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

func parsePartitions(raw []string) ([]types.PartitionID, error) {
	out := make([]types.PartitionID, 0, len(raw))
	for _, s := range raw {
		id, err := types.ParsePartitionID(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}

	return out, nil
}
