package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Export is the machine-readable form of a full analysis run.
type Export struct {
	Metadata      Metadata       `json:"metadata"`
	ClientProfile ClientProfile  `json:"client_profile"`
	PlanAnalyses  []ExportedPlan `json:"plan_analyses"`
}

// Metadata identifies one analysis run.
type Metadata struct {
	ReportID           string    `json:"report_id"`
	GeneratedAt        time.Time `json:"generated_at"`
	TotalPlansAnalyzed int       `json:"total_plans_analyzed"`
	ClientName         string    `json:"client_name"`
}

// ClientProfile is the client view included in the export.
type ClientProfile struct {
	Personal    ExportedPersonal     `json:"personal"`
	Providers   []ExportedProvider   `json:"providers"`
	Medications []ExportedMedication `json:"medications"`
}

type ExportedPersonal struct {
	FullName      string  `json:"full_name"`
	HouseholdSize int     `json:"household_size"`
	AnnualIncome  float64 `json:"annual_income"`
	Zipcode       string  `json:"zipcode"`
}

type ExportedProvider struct {
	Name           string `json:"name"`
	Specialty      string `json:"specialty"`
	Priority       string `json:"priority"`
	VisitFrequency int    `json:"visit_frequency"`
}

type ExportedMedication struct {
	Name        string `json:"name"`
	Dosage      string `json:"dosage,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	AnnualDoses int    `json:"annual_doses"`
}

// ExportedPlan carries one ranked plan with its scores and coverage
// detail.
type ExportedPlan struct {
	Rank                int               `json:"rank"`
	Plan                ExportedPlanInfo  `json:"plan"`
	Scores              ExportedScores    `json:"scores"`
	EstimatedAnnualCost float64           `json:"estimated_annual_cost"`
	ProviderCoverage    map[string]bool   `json:"provider_coverage"`
	MedicationCoverage  map[string]string `json:"medication_coverage"`
}

type ExportedPlanInfo struct {
	PlanID         string  `json:"plan_id"`
	Issuer         string  `json:"issuer"`
	MarketingName  string  `json:"marketing_name"`
	MetalLevel     string  `json:"metal_level"`
	MonthlyPremium float64 `json:"monthly_premium"`
	Deductible     float64 `json:"deductible"`
	OOPMax         float64 `json:"oop_max"`
}

type ExportedScores struct {
	ProviderNetwork    float64 `json:"provider_network"`
	MedicationCoverage float64 `json:"medication_coverage"`
	TotalCost          float64 `json:"total_cost"`
	FinancialProtect   float64 `json:"financial_protection"`
	AdminSimplicity    float64 `json:"administrative_simplicity"`
	PlanQuality        float64 `json:"plan_quality"`
	OverallWeighted    float64 `json:"overall_weighted"`
}

// BuildExport flattens a ranked report into the export schema.
func BuildExport(report *model.AnalysisReport) Export {
	providers := make([]ExportedProvider, 0, len(report.Client.MedicalProfile.Providers))
	for _, p := range report.Client.MedicalProfile.Providers {
		providers = append(providers, ExportedProvider{
			Name:           p.Name,
			Specialty:      p.Specialty,
			Priority:       string(p.Priority),
			VisitFrequency: p.VisitFrequency,
		})
	}
	medications := make([]ExportedMedication, 0, len(report.Client.MedicalProfile.Medications))
	for _, m := range report.Client.MedicalProfile.Medications {
		medications = append(medications, ExportedMedication{
			Name:        m.Name,
			Dosage:      m.Dosage,
			Frequency:   m.Frequency,
			AnnualDoses: m.AnnualDoses,
		})
	}

	plans := make([]ExportedPlan, 0, len(report.PlanAnalyses))
	for i, a := range report.PlanAnalyses {
		plans = append(plans, ExportedPlan{
			Rank: i + 1,
			Plan: ExportedPlanInfo{
				PlanID:         a.Plan.PlanID,
				Issuer:         a.Plan.Issuer,
				MarketingName:  a.Plan.MarketingName,
				MetalLevel:     string(a.Plan.MetalLevel),
				MonthlyPremium: a.Plan.MonthlyPremium,
				Deductible:     a.Plan.Deductible,
				OOPMax:         a.Plan.OOPMax,
			},
			Scores: ExportedScores{
				ProviderNetwork:    a.Metrics.ProviderNetworkScore,
				MedicationCoverage: a.Metrics.MedicationCoverageScore,
				TotalCost:          a.Metrics.TotalCostScore,
				FinancialProtect:   a.Metrics.FinancialProtectionScore,
				AdminSimplicity:    a.Metrics.AdministrativeSimplicityScore,
				PlanQuality:        a.Metrics.PlanQualityScore,
				OverallWeighted:    a.Metrics.WeightedTotalScore,
			},
			EstimatedAnnualCost: a.EstimatedAnnualCost,
			ProviderCoverage:    a.ProviderCoverage,
			MedicationCoverage:  a.MedicationCoverage,
		})
	}

	return Export{
		Metadata: Metadata{
			ReportID:           uuid.NewString(),
			GeneratedAt:        report.GeneratedAt,
			TotalPlansAnalyzed: len(report.PlanAnalyses),
			ClientName:         report.Client.Personal.FullName,
		},
		ClientProfile: ClientProfile{
			Personal: ExportedPersonal{
				FullName:      report.Client.Personal.FullName,
				HouseholdSize: report.Client.Personal.HouseholdSize,
				AnnualIncome:  report.Client.Personal.AnnualIncome,
				Zipcode:       report.Client.Personal.Zipcode,
			},
			Providers:   providers,
			Medications: medications,
		},
		PlanAnalyses: plans,
	}
}
