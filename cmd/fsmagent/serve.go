package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/fsmagent/pkg/adapters/http"
	"github.com/aretw0/fsmagent/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <graph>",
	Short: "Serve one workflow session over HTTP",
	Long: `Loads the graph and exposes the session as a JSON API:
GET /state, /guide, /graph, /tools, /events and POST /tools/{name}, /transition.
Prometheus metrics are served on /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		journalHooks, closeJournal, err := openJournal(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeJournal()

		agent, err := loadAgent(cmd, args[0])
		if err != nil {
			return err
		}

		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(promReg)

		hooks, err := eventHooks(cmd, metrics.Hooks(), journalHooks)
		if err != nil {
			return err
		}
		api := httpAdapter.NewHandler(agent.Machine(), agent.Registry(),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithLifecycleHooks(hooks),
		)

		r := chi.NewRouter()
		r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		r.Mount("/", api)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: r,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr, "graph", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", args[0], srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	addJournalFlags(serveCmd)
}
