package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/speaker-cli/internal/config"
)

var cfg *config.Config

var (
	flagConfig   string
	flagLogLevel string
	flagDB       string
)

var rootCmd = &cobra.Command{
	Use:   "speaker-cli",
	Short: "Speaker profile consolidation engine",
	Long:  "Ingests speaker dumps from heterogeneous directory sources, normalizes free-text attributes onto closed taxonomies, and deduplicates records into canonical speaker profiles.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		applyRootFlags(cfg)

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyRootFlags layers command-line overrides on top of the loaded
// configuration. A --db value starting with a postgres scheme switches the
// driver; anything else is treated as a sqlite path.
func applyRootFlags(c *config.Config) {
	if flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}
	if flagDB != "" {
		c.Store.DatabaseURL = flagDB
		if strings.HasPrefix(flagDB, "postgres://") || strings.HasPrefix(flagDB, "postgresql://") {
			c.Store.Driver = "postgres"
		} else {
			c.Store.Driver = "sqlite"
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ./speaker-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database target: sqlite path or postgres URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
