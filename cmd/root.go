package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/config"
	"github.com/teemow/invitebooker/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command for the invitebooker application
var rootCmd = &cobra.Command{
	Use:   "invitebooker",
	Short: "Books meeting invitations from Gmail onto Google Calendar",
	Long: `invitebooker reads meeting invitations from your Gmail inbox, works out
the requested time and books it on your Google Calendar. When the requested
time conflicts with an existing event it books the next free slot within
work hours and tells you what it did.

It can run as:
  - A polling service (run)
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - One-shot helpers for parsing invitations and proposing slots`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(os.Stderr, logLevel, logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "invitebooker version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("Config file (default: %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", getEnvOrDefault("LOG_FORMAT", "text"), "Log format: text or json")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
