package report

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

var summaryTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"money": func(v float64) string { return formatMoney(v, 2) },
	"score": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"medal": medal,
}).Parse(`# Health Insurance Plan Recommendation Report
Generated: {{.GeneratedAt.Format "2006-01-02 15:04"}}

## Executive Summary
Based on your medical profile and priorities, we recommend the **{{.Top.Plan.MarketingName}}** plan.
This plan offers the best balance of provider access, medication coverage, and total cost for your specific needs.

### Client Profile
- **Name**: {{.Client.Personal.FullName}}
- **Household Size**: {{.Client.Personal.HouseholdSize}}
- **Annual Income**: {{money .Client.Personal.AnnualIncome}}
- **ZIP Code**: {{.Client.Personal.Zipcode}}

### Key Findings
- **Overall Score**: {{score .Top.Metrics.WeightedTotalScore}}/10
- **Estimated Annual Cost**: {{money .Top.EstimatedAnnualCost}}
- **Monthly Premium**: {{money .Top.Plan.MonthlyPremium}}
- **Deductible**: {{money .Top.Plan.Deductible}}
- **Out-of-Pocket Maximum**: {{money .Top.Plan.OOPMax}}

### Scoring Breakdown
| Metric | Score | Weight |
|--------|-------|---------|
| Provider Network | {{score .Top.Metrics.ProviderNetworkScore}}/10 | 30% |
| Medication Coverage | {{score .Top.Metrics.MedicationCoverageScore}}/10 | 25% |
| Total Cost | {{score .Top.Metrics.TotalCostScore}}/10 | 20% |
| Financial Protection | {{score .Top.Metrics.FinancialProtectionScore}}/10 | 10% |
| Administrative Simplicity | {{score .Top.Metrics.AdministrativeSimplicityScore}}/10 | 10% |
| Plan Quality | {{score .Top.Metrics.PlanQualityScore}}/10 | 5% |

### Top {{len .Recommendations}} Recommendations
{{range $i, $rec := .Recommendations}}
{{medal $i}} **{{$rec.Plan.MarketingName}}**
- Score: {{score $rec.Metrics.WeightedTotalScore}}/10
- Monthly Premium: {{money $rec.Plan.MonthlyPremium}}
- Estimated Annual Cost: {{money $rec.EstimatedAnnualCost}}
- Issuer: {{$rec.Plan.Issuer}}
- Metal Level: {{$rec.Plan.MetalLevel}}
{{end}}
{{- if .Providers}}
### Provider Coverage Analysis
{{- range .Providers}}
- **{{.Name}}** ({{.Specialty}}): {{.Status}}
{{- end}}
{{end}}
{{- if .Medications}}
### Medication Coverage Analysis
{{- range .Medications}}
- **{{.Name}}**: {{.Coverage}}
{{- end}}
{{end}}
### Risk Analysis
- **Best Case Scenario**: {{money .BestCase}} (premiums only)
- **Worst Case Scenario**: {{money .WorstCase}} (max out-of-pocket + premiums)
- **Expected Cost**: {{money .Top.EstimatedAnnualCost}}

*This analysis is based on your current medical needs and utilization patterns. Actual costs may vary.*
`))

type summaryProvider struct {
	Name      string
	Specialty string
	Status    string
}

type summaryMedication struct {
	Name     string
	Coverage string
}

type summaryData struct {
	Client          model.Client
	GeneratedAt     time.Time
	Top             model.PlanAnalysis
	Recommendations []model.PlanAnalysis
	Providers       []summaryProvider
	Medications     []summaryMedication
	BestCase        float64
	WorstCase       float64
}

// ExecutiveSummary renders the markdown summary for a ranked report.
func ExecutiveSummary(report *model.AnalysisReport) (string, error) {
	if len(report.TopRecommendations) == 0 {
		return "", eris.New("report: no recommendations to summarize")
	}
	top := report.TopRecommendations[0]

	providers := make([]summaryProvider, 0, len(report.Client.MedicalProfile.Providers))
	for _, p := range report.Client.MedicalProfile.Providers {
		status := "OUT-OF-NETWORK"
		if top.ProviderCoverage[p.Name] {
			status = "IN-NETWORK"
		}
		providers = append(providers, summaryProvider{Name: p.Name, Specialty: p.Specialty, Status: status})
	}
	medications := make([]summaryMedication, 0, len(report.Client.MedicalProfile.Medications))
	for _, m := range report.Client.MedicalProfile.Medications {
		coverage, ok := top.MedicationCoverage[m.Name]
		if !ok {
			coverage = string(model.NotCovered)
		}
		medications = append(medications, summaryMedication{Name: m.Name, Coverage: coverage})
	}

	recs := report.TopRecommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}

	var b strings.Builder
	err := summaryTmpl.Execute(&b, summaryData{
		Client:          report.Client,
		GeneratedAt:     report.GeneratedAt,
		Top:             top,
		Recommendations: recs,
		Providers:       providers,
		Medications:     medications,
		BestCase:        top.Plan.MonthlyPremium * 12,
		WorstCase:       top.Plan.OOPMax + top.Plan.MonthlyPremium*12,
	})
	if err != nil {
		return "", eris.Wrap(err, "report: render summary")
	}
	return b.String(), nil
}

func medal(i int) string {
	switch i {
	case 0:
		return "1."
	case 1:
		return "2."
	default:
		return "3."
	}
}
