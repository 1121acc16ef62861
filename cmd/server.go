package cmd

import (
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bascanada/smartsearch/pkg/api"
	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/log"
	"github.com/bascanada/smartsearch/pkg/server"
)

var (
	port int
	host string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the smartsearch server",
	Long: `Starts an HTTP server exposing the parser, the autocomplete engine and the
query edits as a JSON API, for web front-ends. The OpenAPI document is served
at /openapi.yaml.`,
	PreRun: onCommandStart,
	Run: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if log.Enabled(log.LevelDebug) {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

		logger.Info("loading configuration", "path", configPath)
		cfg, path, err := loadConfig()
		if err != nil {
			// Provide a clearer, actionable message depending on the error type.
			switch {
			case errors.Is(err, config.ErrConfigNotFound):
				logger.Error("configuration file not found", "path", path, "hint", "run 'smartsearch configure' or drop --config")
			case errors.Is(err, config.ErrConfigParse):
				logger.Error("invalid configuration file format", "path", path, "err", err, "hint", "check YAML/JSON syntax and types")
			case errors.Is(err, config.ErrConfigInvalid):
				logger.Error("invalid configuration", "path", path, "err", err, "hint", "check the tag kinds and durations")
			default:
				logger.Error("failed to load configuration", "path", path, "err", err)
			}
			os.Exit(1)
		}

		s, err := server.NewServer(host, strconv.Itoa(port), cfg, path, logger, api.OpenAPISpec)
		if err != nil {
			logger.Error("failed to create server", "err", err)
			os.Exit(1)
		}

		if err := s.Start(); err != nil {
			logger.Error("server failed to start", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVarP(&host, "host", "H", "0.0.0.0", "Host to bind to")
}
