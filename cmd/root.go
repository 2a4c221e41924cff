package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vendscout",
	Short: "Location viability scoring for vending machine placement",
	Long:  "Scores addresses and points of interest for vending machine viability per machine category, fusing review counts, POI density, transit proximity, census demographics, building classification, and nearby competing machines into a 0-100 composite with revenue estimates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if cfg.Scoring.ProfileOverrides != "" {
			overrides, err := category.LoadOverrides(cfg.Scoring.ProfileOverrides)
			if err != nil {
				return fmt.Errorf("load profile overrides: %w", err)
			}
			if err := overrides.Apply(); err != nil {
				return fmt.Errorf("apply profile overrides: %w", err)
			}
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
