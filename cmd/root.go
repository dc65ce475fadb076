// Package cmd implements the deal-filter command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/config"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug forces debug logging for every command.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "deal-filter",
		Short: "Rule-based visibility filter for deal listings",
		Long: `deal-filter hides listing items that match user rules: exclude/whitelist
expressions, blocked sources and authors, a price ceiling, a cold-score switch
and manually hidden ids.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml or ./config/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCommand(),
		newFilterCommand(),
		newRulesCommand(),
		newVersionCommand(),
	)
}

// deps are the dependencies every command needs.
type deps struct {
	cfg *config.Config
	log logger.Logger
}

func loadDeps(cmd *cobra.Command) (*deps, error) {
	v := config.NewViper(cfgFile)
	if err := v.BindPFlag("debug", cmd.Root().PersistentFlags().Lookup("debug")); err != nil {
		return nil, fmt.Errorf("bind debug flag: %w", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Debug})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &deps{cfg: cfg, log: log}, nil
}
