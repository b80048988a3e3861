// Package analysis scores a set of plans for a client and ranks them by
// weighted total score.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
	"github.com/rzimmerman2022/healthplan-navigator/internal/score"
)

// ErrNoPlans is returned when an analysis run has nothing to rank.
var ErrNoPlans = eris.New("analysis: no plans provided")

// Engine runs the scoring pipeline over a plan set and assembles the
// ranked report.
type Engine struct {
	scorer *score.Scorer
}

// New returns an Engine scoring with the given weights.
func New(weights score.Weights) *Engine {
	return &Engine{scorer: score.NewScorer(weights)}
}

// NewForClient returns an Engine whose weights are adjusted to the
// client's stated priorities.
func NewForClient(client *model.Client) *Engine {
	return New(score.WeightsFromPriorities(client.Priorities))
}

// AnalyzePlans scores every plan against the client and returns the
// report ranked by weighted total, best first. Plans with equal scores
// keep their input order.
func (e *Engine) AnalyzePlans(client *model.Client, plans []model.Plan) (*model.AnalysisReport, error) {
	if len(plans) == 0 {
		return nil, ErrNoPlans
	}

	analyses := make([]model.PlanAnalysis, 0, len(plans))
	for i := range plans {
		analyses = append(analyses, e.scorer.ScorePlan(client, &plans[i], plans))
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].Metrics.WeightedTotalScore > analyses[j].Metrics.WeightedTotalScore
	})

	top := len(analyses)
	if top > 3 {
		top = 3
	}
	report := &model.AnalysisReport{
		Client:             *client,
		PlanAnalyses:       analyses,
		GeneratedAt:        time.Now().UTC(),
		TopRecommendations: analyses[:top],
	}

	zap.L().Info("analysis complete",
		zap.Int("plans_ranked", len(analyses)),
		zap.String("top_plan", analyses[0].Plan.PlanID),
		zap.Float64("top_score", analyses[0].Metrics.WeightedTotalScore),
	)
	return report, nil
}

// MatrixRow is one plan's line in the scoring matrix, formatted for
// tabular display or CSV export.
type MatrixRow struct {
	Rank                string
	PlanName            string
	PlanID              string
	Issuer              string
	MetalLevel          string
	MonthlyPremium      string
	EstimatedAnnualCost string
	ProviderNetwork     string
	MedicationCoverage  string
	TotalCost           string
	FinancialProtection string
	AdminSimplicity     string
	PlanQuality         string
	OverallScore        string
}

// MatrixHeader lists the column names matching MatrixRow field order.
func MatrixHeader() []string {
	return []string{
		"Rank", "Plan Name", "Plan ID", "Issuer", "Metal Level",
		"Monthly Premium", "Estimated Annual Cost",
		"Provider Network Score", "Medication Coverage Score",
		"Total Cost Score", "Financial Protection Score",
		"Administrative Score", "Plan Quality Score", "OVERALL SCORE",
	}
}

// Fields returns the row's cells in MatrixHeader order.
func (r MatrixRow) Fields() []string {
	return []string{
		r.Rank, r.PlanName, r.PlanID, r.Issuer, r.MetalLevel,
		r.MonthlyPremium, r.EstimatedAnnualCost,
		r.ProviderNetwork, r.MedicationCoverage, r.TotalCost,
		r.FinancialProtection, r.AdminSimplicity, r.PlanQuality,
		r.OverallScore,
	}
}

// ScoringMatrix flattens a ranked report into display rows.
func ScoringMatrix(report *model.AnalysisReport) []MatrixRow {
	rows := make([]MatrixRow, 0, len(report.PlanAnalyses))
	for i, a := range report.PlanAnalyses {
		rows = append(rows, MatrixRow{
			Rank:                fmt.Sprintf("%d", i+1),
			PlanName:            a.Plan.MarketingName,
			PlanID:              a.Plan.PlanID,
			Issuer:              a.Plan.Issuer,
			MetalLevel:          string(a.Plan.MetalLevel),
			MonthlyPremium:      fmt.Sprintf("$%.2f", a.Plan.MonthlyPremium),
			EstimatedAnnualCost: fmt.Sprintf("$%.2f", a.EstimatedAnnualCost),
			ProviderNetwork:     fmt.Sprintf("%.1f/10", a.Metrics.ProviderNetworkScore),
			MedicationCoverage:  fmt.Sprintf("%.1f/10", a.Metrics.MedicationCoverageScore),
			TotalCost:           fmt.Sprintf("%.1f/10", a.Metrics.TotalCostScore),
			FinancialProtection: fmt.Sprintf("%.1f/10", a.Metrics.FinancialProtectionScore),
			AdminSimplicity:     fmt.Sprintf("%.1f/10", a.Metrics.AdministrativeSimplicityScore),
			PlanQuality:         fmt.Sprintf("%.1f/10", a.Metrics.PlanQualityScore),
			OverallScore:        fmt.Sprintf("%.1f/10", a.Metrics.WeightedTotalScore),
		})
	}
	return rows
}

// RecommendedPlan summarizes the top-ranked plan.
type RecommendedPlan struct {
	Name                string  `json:"name"`
	Issuer              string  `json:"issuer"`
	Score               float64 `json:"score"`
	MonthlyPremium      float64 `json:"monthly_premium"`
	EstimatedAnnualCost float64 `json:"estimated_annual_cost"`
}

// CostComparison identifies the cost extremes of the comparison set.
type CostComparison struct {
	LowestCostPlan       string  `json:"lowest_cost_plan"`
	HighestCostPlan      string  `json:"highest_cost_plan"`
	CostSavingsVsHighest float64 `json:"cost_savings_vs_highest"`
}

// Summary condenses a ranked report into the headline facts an
// advisor would relay first.
type Summary struct {
	TotalPlansAnalyzed int             `json:"total_plans_analyzed"`
	RecommendedPlan    RecommendedPlan `json:"recommended_plan"`
	KeyStrengths       []string        `json:"key_strengths"`
	PotentialConcerns  []string        `json:"potential_concerns"`
	CostComparison     CostComparison  `json:"cost_comparison"`
}

// ComparisonSummary builds the headline summary from a ranked report.
func ComparisonSummary(report *model.AnalysisReport) Summary {
	top := report.TopRecommendations[0]

	lowest, highest := &report.PlanAnalyses[0], &report.PlanAnalyses[0]
	for i := range report.PlanAnalyses {
		a := &report.PlanAnalyses[i]
		if a.EstimatedAnnualCost < lowest.EstimatedAnnualCost {
			lowest = a
		}
		if a.EstimatedAnnualCost > highest.EstimatedAnnualCost {
			highest = a
		}
	}

	return Summary{
		TotalPlansAnalyzed: len(report.PlanAnalyses),
		RecommendedPlan: RecommendedPlan{
			Name:                top.Plan.MarketingName,
			Issuer:              top.Plan.Issuer,
			Score:               top.Metrics.WeightedTotalScore,
			MonthlyPremium:      top.Plan.MonthlyPremium,
			EstimatedAnnualCost: top.EstimatedAnnualCost,
		},
		KeyStrengths:      planStrengths(&top),
		PotentialConcerns: planConcerns(&top),
		CostComparison: CostComparison{
			LowestCostPlan:       lowest.Plan.MarketingName,
			HighestCostPlan:      highest.Plan.MarketingName,
			CostSavingsVsHighest: highest.EstimatedAnnualCost - top.EstimatedAnnualCost,
		},
	}
}

// planStrengths names the metrics where a plan scores 8 or better.
func planStrengths(a *model.PlanAnalysis) []string {
	var out []string
	m := a.Metrics
	if m.ProviderNetworkScore >= 8 {
		out = append(out, "Excellent provider network coverage")
	}
	if m.MedicationCoverageScore >= 8 {
		out = append(out, "Strong medication formulary coverage")
	}
	if m.TotalCostScore >= 8 {
		out = append(out, "Very competitive total cost")
	}
	if m.FinancialProtectionScore >= 8 {
		out = append(out, "Strong financial protection with low deductible/OOPM")
	}
	if m.AdministrativeSimplicityScore >= 8 {
		out = append(out, "Simple administration with minimal barriers")
	}
	if m.PlanQualityScore >= 8 {
		out = append(out, "High plan quality rating")
	}
	return out
}

// planConcerns names the metrics where a plan scores 4 or worse.
func planConcerns(a *model.PlanAnalysis) []string {
	var out []string
	m := a.Metrics
	if m.ProviderNetworkScore <= 4 {
		out = append(out, "Limited provider network coverage")
	}
	if m.MedicationCoverageScore <= 4 {
		out = append(out, "Poor medication formulary coverage")
	}
	if m.TotalCostScore <= 4 {
		out = append(out, "Higher than average total cost")
	}
	if m.FinancialProtectionScore <= 4 {
		out = append(out, "High deductible or out-of-pocket maximum")
	}
	if m.AdministrativeSimplicityScore <= 4 {
		out = append(out, "Complex administration with potential barriers")
	}
	if m.PlanQualityScore <= 4 {
		out = append(out, "Below average plan quality rating")
	}
	return out
}
