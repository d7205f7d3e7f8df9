package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/google"
	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/logging"
	"github.com/teemow/invitebooker/internal/tools/scheduling_tools"
)

func newServeCmd() *cobra.Command {
	var yolo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server over stdio. It exposes tools to parse invitations,
check a window for conflicts and propose free slots.

With --yolo and a stored Google token for the configured account the
process_message tool is added as well. It books events and emails
attendees without asking for confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), yolo)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "Expose process_message, which writes to your calendar")

	return cmd
}

func runServe(parent context.Context, yolo bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol.
	logger := slog.Default()

	s, err := loadSettings()
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
		_ = provider.Shutdown(context.Background())
	}()

	deps := scheduling_tools.Deps{
		Parser:   s.parser(nil),
		Location: s.loc,
		Slots:    s.slotOptions(),
		Metrics:  provider.Metrics(),
		Logger:   logger,
	}

	if yolo {
		tokens := google.NewFileTokenProvider()
		if !tokens.HasTokenForAccount(s.cfg.Account) {
			return fmt.Errorf("--yolo needs a Google token; run `invitebooker auth --account %s` first", s.cfg.Account)
		}
		svc, err := buildServices(ctx, s, tokens, provider.Metrics(), provider.Audit(logger), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.Warn("failed to close store", logging.Err(err))
			}
		}()
		deps.Processor = svc.orchestrator
	}

	mcpSrv := newMCPServer()
	if err := scheduling_tools.RegisterSchedulingTools(mcpSrv, deps); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	logger.Info("starting MCP server on stdio", slog.Bool("process_message", deps.Processor != nil))
	return runStdioServer(ctx, mcpSrv)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("invitebooker", version,
		mcpserver.WithToolCapabilities(true),
	)
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
