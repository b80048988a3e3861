package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

func testReport() *model.AnalysisReport {
	client := model.Client{
		Personal: model.PersonalInfo{
			FullName: "Jordan Rivera", Zipcode: "85001",
			HouseholdSize: 2, AnnualIncome: 72000,
		},
		MedicalProfile: model.MedicalProfile{
			Providers: []model.Provider{
				{Name: "Dr. Smith", Specialty: "Primary Care", Priority: model.PriorityMustKeep, VisitFrequency: 4},
			},
			Medications: []model.Medication{{Name: "Metformin", AnnualDoses: 365}},
		},
		Priorities: model.DefaultPriorities(),
	}

	gold := model.PlanAnalysis{
		Plan: model.Plan{
			PlanID: "GOLD1", MarketingName: "Gold Choice", Issuer: "Cigna",
			MetalLevel: model.MetalGold, MonthlyPremium: 520,
			Deductible: 1200, OOPMax: 7000,
			Administrative: model.DefaultAdministrative(),
		},
		Metrics: model.ScoringMetrics{
			ProviderNetworkScore: 10, MedicationCoverageScore: 10,
			TotalCostScore: 10, FinancialProtectionScore: 4,
			AdministrativeSimplicityScore: 10, PlanQualityScore: 6,
			WeightedTotalScore: 9.2,
		},
		EstimatedAnnualCost: 12290,
		ProviderCoverage:    map[string]bool{"Dr. Smith": true},
		MedicationCoverage:  map[string]string{"Metformin": "TIER1"},
	}
	bronze := model.PlanAnalysis{
		Plan: model.Plan{
			PlanID: "BRONZE1", MarketingName: "Bronze Basic", Issuer: "Cigna",
			MetalLevel: model.MetalBronze, MonthlyPremium: 300,
			Deductible: 8000, OOPMax: 9000,
			Administrative: model.DefaultAdministrative(),
		},
		Metrics: model.ScoringMetrics{
			ProviderNetworkScore: 0, MedicationCoverageScore: 2,
			TotalCostScore: 0, FinancialProtectionScore: 0,
			AdministrativeSimplicityScore: 10, PlanQualityScore: 6,
			WeightedTotalScore: 2.8,
		},
		EstimatedAnnualCost: 12600,
		ProviderCoverage:    map[string]bool{"Dr. Smith": false},
		MedicationCoverage:  map[string]string{"Metformin": "NOT_COVERED"},
	}

	return &model.AnalysisReport{
		Client:             client,
		PlanAnalyses:       []model.PlanAnalysis{gold, bronze},
		GeneratedAt:        time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		TopRecommendations: []model.PlanAnalysis{gold, bronze},
	}
}

func TestExecutiveSummary(t *testing.T) {
	content, err := ExecutiveSummary(testReport())
	require.NoError(t, err)

	assert.Contains(t, content, "# Health Insurance Plan Recommendation Report")
	assert.Contains(t, content, "**Gold Choice**")
	assert.Contains(t, content, "Jordan Rivera")
	assert.Contains(t, content, "$72,000.00")
	assert.Contains(t, content, "9.2/10")
	assert.Contains(t, content, "**Dr. Smith** (Primary Care): IN-NETWORK")
	assert.Contains(t, content, "**Metformin**: TIER1")
	// Worst case: 7000 oop + 6240 premiums.
	assert.Contains(t, content, "$13,240.00")
}

func TestExecutiveSummaryNoRecommendations(t *testing.T) {
	_, err := ExecutiveSummary(&model.AnalysisReport{})
	require.Error(t, err)
}

func TestWriteScoringMatrixCSV(t *testing.T) {
	g, err := NewGenerator(t.TempDir())
	require.NoError(t, err)

	path, err := g.WriteScoringMatrixCSV(testReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "scoring_matrix_"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "OVERALL SCORE", rows[0][len(rows[0])-1])
	assert.Equal(t, []string{"1", "Gold Choice"}, rows[1][:2])
	assert.Equal(t, "$520.00", rows[1][5])
	assert.Equal(t, "9.2", rows[1][len(rows[1])-1])
}

func TestWriteJSONExport(t *testing.T) {
	g, err := NewGenerator(t.TempDir())
	require.NoError(t, err)

	path, err := g.WriteJSONExport(testReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal(data, &export))
	assert.NotEmpty(t, export.Metadata.ReportID)
	assert.Equal(t, 2, export.Metadata.TotalPlansAnalyzed)
	assert.Equal(t, "Jordan Rivera", export.Metadata.ClientName)
	require.Len(t, export.PlanAnalyses, 2)
	assert.Equal(t, 1, export.PlanAnalyses[0].Rank)
	assert.Equal(t, "GOLD1", export.PlanAnalyses[0].Plan.PlanID)
	assert.Equal(t, 9.2, export.PlanAnalyses[0].Scores.OverallWeighted)
	assert.Equal(t, true, export.PlanAnalyses[0].ProviderCoverage["Dr. Smith"])
}

func TestWriteHTMLDashboard(t *testing.T) {
	g, err := NewGenerator(t.TempDir())
	require.NoError(t, err)

	path, err := g.WriteHTMLDashboard(testReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Gold Choice")
	assert.Contains(t, html, "score-high")
	assert.Contains(t, html, "Plotly.newPlot")
	assert.Contains(t, html, `"overall_scores":[9.2,2.8]`)
}

func TestChartLabel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short unchanged", "Gold Choice", "Gold Choice"},
		{"long ascii", "A Very Long Plan Name Indeed", "A Very Long Plan Nam..."},
		{"multibyte not split", "Plan Médico Integral de Cobertura", "Plan Médico Integral..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := chartLabel(tc.in, 20)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestBuildChartDataTruncatesLongNames(t *testing.T) {
	rep := testReport()
	rep.PlanAnalyses[0].Plan.MarketingName = "Plan Médico Integral de Cobertura Ampliada"

	data := buildChartData(rep)
	require.Len(t, data.Plans, 2)
	assert.Equal(t, "Plan Médico Integral...", data.Plans[0])
	assert.True(t, utf8.ValidString(data.Plans[0]))
	assert.Equal(t, "Bronze Basic", data.Plans[1])
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGenerator(dir)
	require.NoError(t, err)

	paths, err := g.WriteAll(testReport(), FormatAll)
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	paths, err = g.WriteAll(testReport(), FormatJSON)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], ".json"))
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"summary", "csv", "json", "html", "all"} {
		got, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", formatMoney(1234567.89, 2))
	assert.Equal(t, "$0.00", formatMoney(0, 2))
	assert.Equal(t, "$950", formatMoney(950, 0))
	assert.Equal(t, "-$1,000.50", formatMoney(-1000.5, 2))
}
