// Package main is the talentrank entry point: an HTTP API server and a one-shot rank command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/config"
	logpkg "github.com/kailas-cloud/talentrank/internal/logger"
	"github.com/kailas-cloud/talentrank/internal/version"
)

var (
	configPath    string
	ensureIndexes bool
	ensureSchema  bool
)

var rootCmd = &cobra.Command{
	Use:           "talentrank",
	Short:         "Candidate and company relevance ranking",
	Long:          "talentrank ranks candidates or companies against exemplar profiles or structured filters by combining vector similarity, affinity and experience signals.",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the YAML config (default: config/<ENV>.yaml)")
	rootCmd.PersistentFlags().BoolVar(&ensureIndexes, "ensure-indexes", false,
		"Create missing vector namespace indexes before starting")
	rootCmd.PersistentFlags().BoolVar(&ensureSchema, "ensure-schema", false,
		"Create the entities table and indexes if missing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config when given, otherwise the file for ENV.
func loadConfig() (config.Config, string, error) {
	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, env, fmt.Errorf("load config: %w", err)
	}
	return cfg, env, nil
}

func newLogger(env string, cfg *config.Config) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
