package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/config"
	"github.com/multiplica-sam/sam/internal/ui/server"
	"github.com/multiplica-sam/sam/internal/version"
)

// options shared by every command
type options struct {
	envFile string
	apiURL  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "sam-ui",
		Short:        "SAM locality dashboard",
		Long:         `Web dashboard and command line client for the SAM (Sistema de Acompanhamento Musical) api`,
		Version:      version.Get().String(),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file loaded before reading the environment (default .env)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "SAM api base url, overrides SAM_API_BASE_URL")

	cmd.AddCommand(
		newServeCmd(opts),
		newLocalitiesCmd(opts),
		newLocalityCmd(opts),
		newStudentCmd(opts),
		newStudentsCmd(opts),
		newLogsCmd(opts),
		newStatsCmd(opts),
		newHealthCmd(opts),
		newPDFCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration and applies the flag overrides
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.APIBaseURL = o.apiURL
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid --api-url: %w", err)
		}
	}
	return cfg, nil
}

// apiClient builds the SAM api client for the cli commands and a context carrying the cli logger
func (o *options) apiClient(cmd *cobra.Command) (context.Context, *client.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	cliLogger := logger.InitCLILogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	ctx := logger.ContextWithRequestLogger(cmd.Context(), cliLogger)

	return ctx, client.NewClient(cfg.APIBaseURL, client.WithTimeout(cfg.APITimeout)), nil
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts)
		},
	}
}

func runServer(opts *options) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	serverLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(serverLogger)

	serverLogger.Info("Starting UI server", slog.String("version", version.Get().Version))
	serverLogger.Info("using SAM API", slog.String("api_base_url", cfg.APIBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := server.NewStore(ctx, cfg)
	if err != nil {
		serverLogger.Error("Failed to open session store", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			serverLogger.Warn("Failed to close session store", slog.String("error", err.Error()))
		}
	}()

	srv, err := server.NewServer(cfg, serverLogger, st)
	if err != nil {
		serverLogger.Error("Failed to create UI server", slog.String("error", err.Error()))
		return err
	}

	if err := srv.Start(ctx); err != nil {
		serverLogger.Error("UI server error", slog.String("error", err.Error()))
		return err
	}

	serverLogger.Info("UI server shutdown complete")
	return nil
}
