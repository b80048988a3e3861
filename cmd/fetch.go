package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rzimmerman2022/healthplan-navigator/internal/cache"
	"github.com/rzimmerman2022/healthplan-navigator/internal/registry"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch marketplace plans for a ZIP code",
	Long: `Fetch available plans from the Healthcare.gov marketplace for a ZIP code
and write each one as a JSON plan document, ready for analyze to pick up.

Requires the marketplace registry to be enabled in configuration.`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.String("zipcode", "", "5-digit ZIP code (required)")
	f.Int("year", 0, "plan year (default: current year)")
	f.String("output", "", "directory for fetched plan files (default: config documents.plans_dir)")
	_ = fetchCmd.MarkFlagRequired("zipcode")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if !cfg.Registry.MarketplaceEnabled {
		return eris.New("fetch: marketplace lookups are disabled; set registry.marketplace_enabled (HPNAV_REGISTRY_MARKETPLACE_ENABLED=true)")
	}

	zipcode, _ := cmd.Flags().GetString("zipcode")
	year, _ := cmd.Flags().GetInt("year")
	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.Documents.PlansDir
	}

	lookupCache, err := cache.New(cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour)
	if err != nil {
		return err
	}
	defer lookupCache.Close()
	if err := lookupCache.Migrate(ctx); err != nil {
		return err
	}

	reg := registry.New(cfg.Registry, lookupCache)
	plans, err := reg.Plans.FetchPlans(ctx, zipcode, year)
	if err != nil {
		return eris.Wrapf(err, "fetch: zipcode %s", zipcode)
	}
	if len(plans) == 0 {
		fmt.Println("No plans returned for that location.")
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return eris.Wrapf(err, "fetch: create output dir %s", outputDir)
	}

	for _, p := range plans {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return eris.Wrapf(err, "fetch: marshal plan %s", p.PlanID)
		}
		path := filepath.Join(outputDir, fmt.Sprintf("healthcaregov_%s.json", p.PlanID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "fetch: write %s", path)
		}
	}

	zap.L().Info("marketplace plans saved",
		zap.String("zipcode", zipcode),
		zap.Int("plans", len(plans)),
		zap.String("output_dir", outputDir),
	)
	fmt.Printf("Saved %d plan(s) to %s\n", len(plans), outputDir)
	return nil
}
