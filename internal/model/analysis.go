package model

import "time"

// ScoringMetrics holds the six 0-10 sub-scores plus the weighted total for
// a single plan. Created fresh per scoring run and never mutated after.
type ScoringMetrics struct {
	ProviderNetworkScore          float64 `json:"provider_network_score"`
	MedicationCoverageScore       float64 `json:"medication_coverage_score"`
	TotalCostScore                float64 `json:"total_cost_score"`
	FinancialProtectionScore      float64 `json:"financial_protection_score"`
	AdministrativeSimplicityScore float64 `json:"administrative_simplicity_score"`
	PlanQualityScore              float64 `json:"plan_quality_score"`
	WeightedTotalScore            float64 `json:"weighted_total_score"` // rounded to 2 decimals
}

// PlanAnalysis pairs a plan with its scores and per-item coverage detail
// for one client. One per (client, plan) pair.
type PlanAnalysis struct {
	Plan                Plan              `json:"plan"`
	Metrics             ScoringMetrics    `json:"metrics"`
	EstimatedAnnualCost float64           `json:"estimated_annual_cost"`
	ProviderCoverage    map[string]bool   `json:"provider_coverage,omitempty"`
	MedicationCoverage  map[string]string `json:"medication_coverage,omitempty"`
	Notes               []string          `json:"notes,omitempty"`
}

// AnalysisReport is the ranked output of one analysis run, handed to the
// report layer as a read-only view.
type AnalysisReport struct {
	Client             Client         `json:"client"`
	PlanAnalyses       []PlanAnalysis `json:"plan_analyses"`        // descending by weighted total
	GeneratedAt        time.Time      `json:"generated_at"`
	TopRecommendations []PlanAnalysis `json:"top_recommendations"` // first 3 of PlanAnalyses
}
