// Package report renders a ranked analysis into the formats handed to
// clients: a markdown executive summary, a scoring matrix CSV, a full
// JSON export, and an HTML dashboard.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Format names one of the supported output formats.
type Format string

const (
	FormatSummary Format = "summary"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
	FormatAll     Format = "all"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSummary, FormatCSV, FormatJSON, FormatHTML, FormatAll:
		return Format(s), nil
	default:
		return "", eris.Errorf("report: unknown format %q", s)
	}
}

// Generator writes report files into a single output directory with
// timestamped names so repeated runs never clobber each other.
type Generator struct {
	outputDir string
	now       func() time.Time
}

// NewGenerator creates the output directory if needed.
func NewGenerator(outputDir string) (*Generator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create output dir %s", outputDir)
	}
	return &Generator{outputDir: outputDir, now: time.Now}, nil
}

func (g *Generator) timestamp() string {
	return g.now().Format("20060102_150405")
}

// WriteAll renders the requested format, or every format for
// FormatAll, and returns the written file paths.
func (g *Generator) WriteAll(report *model.AnalysisReport, format Format) ([]string, error) {
	type writer struct {
		format Format
		fn     func(*model.AnalysisReport) (string, error)
	}
	writers := []writer{
		{FormatSummary, g.WriteExecutiveSummary},
		{FormatCSV, g.WriteScoringMatrixCSV},
		{FormatJSON, g.WriteJSONExport},
		{FormatHTML, g.WriteHTMLDashboard},
	}

	var paths []string
	for _, w := range writers {
		if format != FormatAll && format != w.format {
			continue
		}
		path, err := w.fn(report)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("report: unknown format %q", format)
	}

	zap.L().Info("reports written",
		zap.String("format", string(format)),
		zap.Strings("paths", paths),
	)
	return paths, nil
}

// WriteExecutiveSummary renders the markdown summary to a file.
func (g *Generator) WriteExecutiveSummary(report *model.AnalysisReport) (string, error) {
	content, err := ExecutiveSummary(report)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.outputDir, fmt.Sprintf("summary_%s.md", g.timestamp()))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", eris.Wrap(err, "report: write summary")
	}
	return path, nil
}

// WriteScoringMatrixCSV writes the full per-plan scoring matrix.
func (g *Generator) WriteScoringMatrixCSV(report *model.AnalysisReport) (string, error) {
	path := filepath.Join(g.outputDir, fmt.Sprintf("scoring_matrix_%s.csv", g.timestamp()))
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrap(err, "report: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Rank", "Plan Name", "Plan ID", "Issuer", "Metal Level",
		"Monthly Premium", "Deductible", "Out-of-Pocket Max",
		"Estimated Annual Cost",
		"Provider Network Score", "Medication Coverage Score",
		"Total Cost Score", "Financial Protection Score",
		"Administrative Score", "Plan Quality Score", "OVERALL SCORE",
	}
	if err := w.Write(header); err != nil {
		return "", eris.Wrap(err, "report: write csv header")
	}

	for i, a := range report.PlanAnalyses {
		row := []string{
			fmt.Sprintf("%d", i+1),
			a.Plan.MarketingName,
			a.Plan.PlanID,
			a.Plan.Issuer,
			string(a.Plan.MetalLevel),
			formatMoney(a.Plan.MonthlyPremium, 2),
			formatMoney(a.Plan.Deductible, 2),
			formatMoney(a.Plan.OOPMax, 2),
			formatMoney(a.EstimatedAnnualCost, 2),
			fmt.Sprintf("%.1f", a.Metrics.ProviderNetworkScore),
			fmt.Sprintf("%.1f", a.Metrics.MedicationCoverageScore),
			fmt.Sprintf("%.1f", a.Metrics.TotalCostScore),
			fmt.Sprintf("%.1f", a.Metrics.FinancialProtectionScore),
			fmt.Sprintf("%.1f", a.Metrics.AdministrativeSimplicityScore),
			fmt.Sprintf("%.1f", a.Metrics.PlanQualityScore),
			fmt.Sprintf("%.1f", a.Metrics.WeightedTotalScore),
		}
		if err := w.Write(row); err != nil {
			return "", eris.Wrap(err, "report: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrap(err, "report: flush csv")
	}
	return path, nil
}

// WriteJSONExport writes the complete analysis as indented JSON.
func (g *Generator) WriteJSONExport(report *model.AnalysisReport) (string, error) {
	path := filepath.Join(g.outputDir, fmt.Sprintf("analysis_export_%s.json", g.timestamp()))

	data, err := json.MarshalIndent(BuildExport(report), "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "report: marshal export")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "report: write export")
	}
	return path, nil
}

// WriteHTMLDashboard renders the chart dashboard to a file.
func (g *Generator) WriteHTMLDashboard(report *model.AnalysisReport) (string, error) {
	content, err := HTMLDashboard(report)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.outputDir, fmt.Sprintf("dashboard_%s.html", g.timestamp()))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", eris.Wrap(err, "report: write dashboard")
	}
	return path, nil
}
