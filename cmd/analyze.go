package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rzimmerman2022/healthplan-navigator/internal/analysis"
	"github.com/rzimmerman2022/healthplan-navigator/internal/docext"
	"github.com/rzimmerman2022/healthplan-navigator/internal/ingest"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
	"github.com/rzimmerman2022/healthplan-navigator/internal/report"
	"github.com/rzimmerman2022/healthplan-navigator/internal/score"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score and rank plans for a client",
	Long: `Parse every plan document in a directory, score each plan against the
client's providers, medications, and budget, and write ranked reports.

Examples:
  # Analyze every document in a directory
  analyze --client client.yaml --plans-dir ./plans

  # Analyze specific documents
  analyze --client client.yaml --plans gold.pdf --plans silver.json

  # Quick run with the built-in sample client
  analyze --sample-client --plans-dir ./plans --format summary

  # Weight the metrics by the client's stated priorities
  analyze --client client.yaml --mode priority`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("client", "", "path to a client profile (.json, .yaml, .yml)")
	f.Bool("sample-client", false, "use the built-in sample client profile")
	f.StringSlice("plans", nil, "individual plan document paths (repeatable)")
	f.String("plans-dir", "", "directory of plan documents (default: config documents.plans_dir)")
	f.String("output", "", "report output directory (default: config report.output_dir)")
	f.String("format", "", "report format: summary, csv, json, html, or all (default: config report.format)")
	f.String("mode", "", "scoring mode: fixed or priority (default: config scoring.mode)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := resolveClient(cmd)
	if err != nil {
		return err
	}

	planFiles, _ := cmd.Flags().GetStringSlice("plans")
	plansDir, _ := cmd.Flags().GetString("plans-dir")
	if len(planFiles) == 0 && plansDir == "" {
		plansDir = cfg.Documents.PlansDir
	}
	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.Report.OutputDir
	}
	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = cfg.Report.Format
	}
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = cfg.Scoring.Mode
	}

	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	parser := ingest.NewParser(
		docext.NewPdfToText(cfg.Documents.PdfToTextPath),
		docext.NewDocxReader(),
	)

	var plans []model.Plan
	if plansDir != "" {
		batch, err := parser.ParseBatch(ctx, plansDir)
		if err != nil {
			return eris.Wrapf(err, "analyze: parse plans from %s", plansDir)
		}
		plans = append(plans, batch...)
	}
	for _, path := range planFiles {
		plan, err := parser.ParseDocument(ctx, path)
		if err != nil {
			return eris.Wrapf(err, "analyze: parse plan %s", path)
		}
		plans = append(plans, *plan)
	}

	var engine *analysis.Engine
	switch mode {
	case "fixed":
		engine = analysis.New(score.DefaultWeights())
	case "priority":
		engine = analysis.NewForClient(client)
	default:
		return eris.Errorf("analyze: --mode must be fixed or priority (got %q)", mode)
	}

	rep, err := engine.AnalyzePlans(client, plans)
	if err != nil {
		return eris.Wrap(err, "analyze")
	}

	gen, err := report.NewGenerator(outputDir)
	if err != nil {
		return err
	}
	paths, err := gen.WriteAll(rep, format)
	if err != nil {
		return eris.Wrap(err, "analyze: write reports")
	}

	zap.L().Info("analysis reports written",
		zap.String("client", client.Personal.FullName),
		zap.Int("plans", len(rep.PlanAnalyses)),
		zap.Strings("paths", paths),
	)

	printAnalysisSummary(rep)
	return nil
}

func resolveClient(cmd *cobra.Command) (*model.Client, error) {
	clientPath, _ := cmd.Flags().GetString("client")
	useSample, _ := cmd.Flags().GetBool("sample-client")

	switch {
	case clientPath != "" && useSample:
		return nil, eris.New("analyze: --client and --sample-client are mutually exclusive")
	case clientPath != "":
		return model.LoadClient(clientPath)
	case useSample:
		c := model.SampleClient()
		return &c, nil
	default:
		return nil, eris.New("analyze: either --client or --sample-client is required")
	}
}

func printAnalysisSummary(rep *model.AnalysisReport) {
	summary := analysis.ComparisonSummary(rep)

	fmt.Printf("\nAnalyzed %d plans for %s\n\n", summary.TotalPlansAnalyzed, rep.Client.Personal.FullName)

	fmt.Println("Top recommendations:")
	for i, a := range rep.TopRecommendations {
		fmt.Printf("  %d. %s (%s): %.1f/10, est. $%.2f/yr\n",
			i+1, a.Plan.MarketingName, a.Plan.Issuer,
			a.Metrics.WeightedTotalScore, a.EstimatedAnnualCost)
	}

	if len(summary.KeyStrengths) > 0 {
		fmt.Println("\nKey strengths:")
		for _, s := range summary.KeyStrengths {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(summary.PotentialConcerns) > 0 {
		fmt.Println("\nPotential concerns:")
		for _, s := range summary.PotentialConcerns {
			fmt.Printf("  - %s\n", s)
		}
	}

	fmt.Printf("\nCost range: %s (lowest) to %s (highest), $%.2f savings vs highest\n",
		summary.CostComparison.LowestCostPlan,
		summary.CostComparison.HighestCostPlan,
		summary.CostComparison.CostSavingsVsHighest)

	printMatrix(os.Stdout, rep)
}

func printMatrix(w *os.File, rep *model.AnalysisReport) {
	rows := analysis.ScoringMatrix(rep)

	fmt.Fprintf(w, "\n%-4s %-32s %-20s %10s %12s %8s\n",
		"Rank", "Plan", "Issuer", "Premium", "Est. Annual", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 92))
	for _, r := range rows {
		fmt.Fprintf(w, "%-4s %-32s %-20s %10s %12s %8s\n",
			r.Rank, truncateName(r.PlanName, 32), r.Issuer, r.MonthlyPremium, r.EstimatedAnnualCost, r.OverallScore)
	}
}

// truncateName shortens a display name to at most max runes, never
// splitting a multibyte character.
func truncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
