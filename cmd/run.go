package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/google"
	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/logging"
	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/server"
)

func newRunCmd() *cobra.Command {
	var (
		once        bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll Gmail and book meeting invitations",
		Long: `Poll Gmail on the configured schedule, parse new meeting invitations and
book them on the first writable Google Calendar. Conflicting requests are
moved to the next free slot within work hours.

With --once a single cycle runs and its report is printed as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), once, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single poll cycle and exit")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", getEnvOrDefault("METRICS_ADDR", ""), "Serve /metrics and health probes on this address (e.g. :9090)")

	return cmd
}

func runRun(parent context.Context, once bool, metricsAddr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	s, err := loadSettings()
	if err != nil {
		return err
	}
	schedule, err := s.cfg.Schedule()
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to set up instrumentation: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush telemetry", logging.Err(err))
		}
	}()

	svc, err := buildServices(ctx, s, google.NewFileTokenProvider(), provider.Metrics(), provider.Audit(logger), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close store", logging.Err(err))
		}
	}()

	serverContext := server.NewServerContext(ctx)
	defer serverContext.Shutdown()
	health := server.NewHealthChecker(serverContext)

	poller, err := scheduler.NewPoller(scheduler.PollerConfig{
		Orchestrator: svc.orchestrator,
		Mail:         svc.mail,
		Checkpoints:  svc.store,
		Schedule:     schedule,
		Query:        s.cfg.MailQuery,
		MaxMessages:  s.cfg.MaxMessages,
		Account:      s.cfg.Account,
		Lookback:     s.cfg.Lookback(),
		OnCycle:      health.ObserveCycle,
		Metrics:      provider.Metrics(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	if once {
		report, err := poller.RunOnce(ctx)
		if err != nil {
			return err
		}
		return printJSON(report)
	}

	if metricsAddr != "" {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("polling for invitations",
		logging.Account(s.cfg.Account),
		slog.String("poll", s.cfg.Poll),
		slog.String("store", s.cfg.Store.Driver))
	return poller.Run(ctx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
