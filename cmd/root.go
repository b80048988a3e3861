package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rzimmerman2022/healthplan-navigator/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "healthplan-navigator",
	Short: "Healthcare plan analysis and ranking",
	Long:  "Ingests marketplace plan documents, scores each plan against a client's providers, medications, and budget across six weighted metrics, and writes ranked reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
