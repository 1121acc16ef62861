package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/log"
)

var (
	configPath string

	logger log.MyLoggerOptions

	jsonOutput bool
	noColor    bool
)

func onCommandStart(cmd *cobra.Command, args []string) {
	if err := log.ConfigureMyLogger(&logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logs: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing file at the default
// location falls back to the built-in tags, a missing explicit file is an
// error.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.Load(configPath)
	if err == nil {
		log.Debug("using config file %s", path)
		return cfg, path, nil
	}
	if errors.Is(err, config.ErrConfigNotFound) && configPath == "" && os.Getenv(config.EnvConfigPath) == "" {
		log.Info("no config at %s, using the built-in tags", path)
		return config.Default(), "", nil
	}
	return nil, path, err
}

// mustLoadEngine loads the config and assembles the autocomplete pipeline,
// exiting on failure.
func mustLoadEngine(opts config.EngineOptions) (*config.Config, string, *config.Engine) {
	cfg, path, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintln(os.Stderr, "Tip: Run 'smartsearch configure' to set up a configuration.")
		os.Exit(1)
	}

	engine, err := cfg.NewEngine(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating search engine: %v\n", err)
		os.Exit(1)
	}
	return cfg, path, engine
}
