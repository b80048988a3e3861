package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/rotisserie/eris"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// chartData feeds the Plotly bar charts. Only the top ten plans are
// charted to keep the axes readable.
type chartData struct {
	Plans         []string  `json:"plans"`
	OverallScores []float64 `json:"overall_scores"`
	AnnualCosts   []float64 `json:"annual_costs"`
	Premiums      []float64 `json:"premiums"`
}

type dashboardRow struct {
	Rank       int
	Plan       model.Plan
	Metrics    model.ScoringMetrics
	AnnualCost string

	OverallClass  string
	ProviderClass string
	MedClass      string
	CostClass     string
	FinClass      string
	AdminClass    string
	QualityClass  string
}

type dashboardData struct {
	ClientName  string
	GeneratedAt string
	PlanCount   int
	Top         model.PlanAnalysis
	TopCost     string
	TopPremium  string
	Rows        []dashboardRow
	ChartJSON   template.JS
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"score": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>HealthPlan Navigator - Analysis Dashboard</title>
<script src="https://cdn.plot.ly/plotly-latest.min.js"></script>
<style>
body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; }
.card { background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.metric-card { display: inline-block; width: 150px; text-align: center; margin: 10px; padding: 15px; background: #e8f4fd; border-radius: 8px; }
.metric-value { font-size: 24px; font-weight: bold; color: #2196F3; }
.metric-label { font-size: 12px; color: #666; }
.recommendation { background: #e8f5e8; border-left: 4px solid #4CAF50; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 8px; text-align: left; border-bottom: 1px solid #ddd; }
th { background-color: #f2f2f2; }
.score-high { color: #4CAF50; font-weight: bold; }
.score-medium { color: #FF9800; font-weight: bold; }
.score-low { color: #f44336; font-weight: bold; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h1>HealthPlan Navigator Analysis</h1>
    <p><strong>Client:</strong> {{.ClientName}} |
       <strong>Generated:</strong> {{.GeneratedAt}} |
       <strong>Plans Analyzed:</strong> {{.PlanCount}}</p>
  </div>

  <div class="card recommendation">
    <h2>Top Recommendation: {{.Top.Plan.MarketingName}}</h2>
    <div class="metric-card"><div class="metric-value">{{score .Top.Metrics.WeightedTotalScore}}/10</div><div class="metric-label">Overall Score</div></div>
    <div class="metric-card"><div class="metric-value">{{.TopPremium}}</div><div class="metric-label">Monthly Premium</div></div>
    <div class="metric-card"><div class="metric-value">{{.TopCost}}</div><div class="metric-label">Est. Annual Cost</div></div>
    <div class="metric-card"><div class="metric-value">{{.Top.Plan.MetalLevel}}</div><div class="metric-label">Metal Level</div></div>
    <div class="metric-card"><div class="metric-value">{{.Top.Plan.Issuer}}</div><div class="metric-label">Issuer</div></div>
  </div>

  <div class="card">
    <h2>Score Comparison</h2>
    <div id="scoreChart" style="height: 400px;"></div>
  </div>

  <div class="card">
    <h2>Cost Analysis</h2>
    <div id="costChart" style="height: 400px;"></div>
  </div>

  <div class="card">
    <h2>Detailed Scoring Matrix</h2>
    <table>
      <thead>
        <tr>
          <th>Rank</th><th>Plan Name</th><th>Overall Score</th>
          <th>Provider Network</th><th>Medication Coverage</th>
          <th>Total Cost</th><th>Financial Protection</th>
          <th>Administrative</th><th>Plan Quality</th>
          <th>Est. Annual Cost</th>
        </tr>
      </thead>
      <tbody>
      {{- range .Rows}}
        <tr>
          <td>{{.Rank}}</td>
          <td><strong>{{.Plan.MarketingName}}</strong><br><small>{{.Plan.Issuer}}</small></td>
          <td class="{{.OverallClass}}">{{score .Metrics.WeightedTotalScore}}/10</td>
          <td class="{{.ProviderClass}}">{{score .Metrics.ProviderNetworkScore}}/10</td>
          <td class="{{.MedClass}}">{{score .Metrics.MedicationCoverageScore}}/10</td>
          <td class="{{.CostClass}}">{{score .Metrics.TotalCostScore}}/10</td>
          <td class="{{.FinClass}}">{{score .Metrics.FinancialProtectionScore}}/10</td>
          <td class="{{.AdminClass}}">{{score .Metrics.AdministrativeSimplicityScore}}/10</td>
          <td class="{{.QualityClass}}">{{score .Metrics.PlanQualityScore}}/10</td>
          <td>{{.AnnualCost}}</td>
        </tr>
      {{- end}}
      </tbody>
    </table>
  </div>
</div>

<script>
var chartData = {{.ChartJSON}};

Plotly.newPlot('scoreChart', [{
  x: chartData.plans,
  y: chartData.overall_scores,
  type: 'bar',
  name: 'Overall Score',
  marker: {color: '#2196F3'}
}], {
  title: 'Plan Scores (0-10 Scale)',
  xaxis: {title: 'Plans', tickangle: -45},
  yaxis: {title: 'Score', range: [0, 10]},
  margin: {b: 100}
});

Plotly.newPlot('costChart', [{
  x: chartData.plans,
  y: chartData.annual_costs,
  type: 'bar',
  name: 'Estimated Annual Cost',
  marker: {color: '#4CAF50'}
}, {
  x: chartData.plans,
  y: chartData.premiums,
  type: 'bar',
  name: 'Annual Premiums Only',
  marker: {color: '#FF9800'}
}], {
  title: 'Cost Comparison',
  xaxis: {title: 'Plans', tickangle: -45},
  yaxis: {title: 'Cost ($)'},
  margin: {b: 100},
  barmode: 'group'
});
</script>
</body>
</html>
`))

// HTMLDashboard renders the chart dashboard for a ranked report.
func HTMLDashboard(report *model.AnalysisReport) ([]byte, error) {
	if len(report.TopRecommendations) == 0 {
		return nil, eris.New("report: no recommendations to render")
	}
	top := report.TopRecommendations[0]

	rows := make([]dashboardRow, 0, len(report.PlanAnalyses))
	for i, a := range report.PlanAnalyses {
		m := a.Metrics
		rows = append(rows, dashboardRow{
			Rank:          i + 1,
			Plan:          a.Plan,
			Metrics:       m,
			AnnualCost:    formatMoney(a.EstimatedAnnualCost, 0),
			OverallClass:  scoreClass(m.WeightedTotalScore),
			ProviderClass: scoreClass(m.ProviderNetworkScore),
			MedClass:      scoreClass(m.MedicationCoverageScore),
			CostClass:     scoreClass(m.TotalCostScore),
			FinClass:      scoreClass(m.FinancialProtectionScore),
			AdminClass:    scoreClass(m.AdministrativeSimplicityScore),
			QualityClass:  scoreClass(m.PlanQualityScore),
		})
	}

	chartJSON, err := json.Marshal(buildChartData(report))
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal chart data")
	}

	var buf bytes.Buffer
	err = dashboardTmpl.Execute(&buf, dashboardData{
		ClientName:  report.Client.Personal.FullName,
		GeneratedAt: report.GeneratedAt.Format("2006-01-02 15:04"),
		PlanCount:   len(report.PlanAnalyses),
		Top:         top,
		TopCost:     formatMoney(top.EstimatedAnnualCost, 0),
		TopPremium:  formatMoney(top.Plan.MonthlyPremium, 0),
		Rows:        rows,
		ChartJSON:   template.JS(chartJSON),
	})
	if err != nil {
		return nil, eris.Wrap(err, "report: render dashboard")
	}
	return buf.Bytes(), nil
}

func buildChartData(report *model.AnalysisReport) chartData {
	analyses := report.PlanAnalyses
	if len(analyses) > 10 {
		analyses = analyses[:10]
	}

	data := chartData{
		Plans:         make([]string, 0, len(analyses)),
		OverallScores: make([]float64, 0, len(analyses)),
		AnnualCosts:   make([]float64, 0, len(analyses)),
		Premiums:      make([]float64, 0, len(analyses)),
	}
	for _, a := range analyses {
		data.Plans = append(data.Plans, chartLabel(a.Plan.MarketingName, 20))
		data.OverallScores = append(data.OverallScores, a.Metrics.WeightedTotalScore)
		data.AnnualCosts = append(data.AnnualCosts, a.EstimatedAnnualCost)
		data.Premiums = append(data.Premiums, a.Plan.MonthlyPremium*12)
	}
	return data
}

// chartLabel shortens a plan name to at most max runes for chart axes,
// never splitting a multibyte character.
func chartLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// scoreClass buckets a 0-10 score into a display color class.
func scoreClass(score float64) string {
	switch {
	case score >= 7:
		return "score-high"
	case score >= 4:
		return "score-medium"
	default:
		return "score-low"
	}
}
