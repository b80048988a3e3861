package analysis

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
	"github.com/rzimmerman2022/healthplan-navigator/internal/score"
)

func testClient() *model.Client {
	return &model.Client{
		Personal: model.PersonalInfo{FullName: "Test Client", Zipcode: "85001", HouseholdSize: 1},
		MedicalProfile: model.MedicalProfile{
			Providers: []model.Provider{
				{Name: "Dr. Smith", Specialty: "Primary Care", Priority: model.PriorityMustKeep, VisitFrequency: 4},
			},
			Medications: []model.Medication{{Name: "Metformin", AnnualDoses: 365}},
		},
		Priorities: model.DefaultPriorities(),
	}
}

func testPlans() []model.Plan {
	gold := model.Plan{
		PlanID: "GOLD1", MarketingName: "Gold Choice", Issuer: "Cigna",
		MetalLevel: model.MetalGold, PlanType: model.PlanPPO,
		MonthlyPremium: 520, Deductible: 1200, OOPMax: 7000,
		CopayPrimary: 25, CopaySpecialist: 50,
		Network:        map[string]model.NetworkStatus{"Dr. Smith": model.InNetwork},
		Formulary:      map[string]model.CoverageStatus{"Metformin": model.Tier1},
		Administrative: model.DefaultAdministrative(),
	}
	bronze := model.Plan{
		PlanID: "BRONZE1", MarketingName: "Bronze Basic", Issuer: "Cigna",
		MetalLevel: model.MetalBronze, PlanType: model.PlanPPO,
		MonthlyPremium: 300, Deductible: 8000, OOPMax: 9000,
		CopayPrimary: 40, CopaySpecialist: 80,
		Administrative: model.DefaultAdministrative(),
	}
	silver := model.Plan{
		PlanID: "SILVER1", MarketingName: "Silver Standard", Issuer: "Aetna",
		MetalLevel: model.MetalSilver, PlanType: model.PlanHMO,
		MonthlyPremium: 410, Deductible: 4500, OOPMax: 8500,
		CopayPrimary: 30, CopaySpecialist: 65, RequiresReferrals: true,
		Network:        map[string]model.NetworkStatus{"Dr. Smith": model.InNetwork},
		Formulary:      map[string]model.CoverageStatus{"Metformin": model.Tier2},
		Administrative: model.DefaultAdministrative(),
	}
	return []model.Plan{bronze, gold, silver}
}

func TestAnalyzePlansRanksDescending(t *testing.T) {
	e := New(score.DefaultWeights())
	report, err := e.AnalyzePlans(testClient(), testPlans())
	require.NoError(t, err)
	require.Len(t, report.PlanAnalyses, 3)

	for i := 1; i < len(report.PlanAnalyses); i++ {
		assert.GreaterOrEqual(t,
			report.PlanAnalyses[i-1].Metrics.WeightedTotalScore,
			report.PlanAnalyses[i].Metrics.WeightedTotalScore)
	}
	assert.Equal(t, "GOLD1", report.PlanAnalyses[0].Plan.PlanID)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestAnalyzePlansTopRecommendations(t *testing.T) {
	e := New(score.DefaultWeights())

	report, err := e.AnalyzePlans(testClient(), testPlans())
	require.NoError(t, err)
	require.Len(t, report.TopRecommendations, 3)
	assert.Equal(t, report.PlanAnalyses[0].Plan.PlanID, report.TopRecommendations[0].Plan.PlanID)

	report, err = e.AnalyzePlans(testClient(), testPlans()[:2])
	require.NoError(t, err)
	assert.Len(t, report.TopRecommendations, 2)
}

func TestAnalyzePlansEmpty(t *testing.T) {
	e := New(score.DefaultWeights())
	_, err := e.AnalyzePlans(testClient(), nil)
	assert.True(t, eris.Is(err, ErrNoPlans))
}

func TestAnalyzePlansStableForTies(t *testing.T) {
	// Two identical plans under different IDs score the same and must
	// keep their input order.
	plans := testPlans()[:1]
	twin := plans[0]
	twin.PlanID = "BRONZE2"
	plans = append(plans, twin)

	e := New(score.DefaultWeights())
	report, err := e.AnalyzePlans(testClient(), plans)
	require.NoError(t, err)
	assert.Equal(t, "BRONZE1", report.PlanAnalyses[0].Plan.PlanID)
	assert.Equal(t, "BRONZE2", report.PlanAnalyses[1].Plan.PlanID)
}

func TestNewForClientUsesPriorities(t *testing.T) {
	client := testClient()
	client.Priorities.MinimizeTotalCost = 5

	e := NewForClient(client)
	report, err := e.AnalyzePlans(client, testPlans())
	require.NoError(t, err)
	require.NotEmpty(t, report.PlanAnalyses)
}

func TestScoringMatrix(t *testing.T) {
	e := New(score.DefaultWeights())
	report, err := e.AnalyzePlans(testClient(), testPlans())
	require.NoError(t, err)

	rows := ScoringMatrix(report)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].Rank)
	assert.Equal(t, "Gold Choice", rows[0].PlanName)
	assert.Equal(t, "$520.00", rows[0].MonthlyPremium)
	assert.Contains(t, rows[0].OverallScore, "/10")
	assert.Len(t, rows[0].Fields(), len(MatrixHeader()))
}

func TestComparisonSummary(t *testing.T) {
	e := New(score.DefaultWeights())
	report, err := e.AnalyzePlans(testClient(), testPlans())
	require.NoError(t, err)

	s := ComparisonSummary(report)
	assert.Equal(t, 3, s.TotalPlansAnalyzed)
	assert.Equal(t, "Gold Choice", s.RecommendedPlan.Name)
	assert.NotEmpty(t, s.KeyStrengths)
	assert.NotEmpty(t, s.CostComparison.HighestCostPlan)
	assert.GreaterOrEqual(t, s.CostComparison.CostSavingsVsHighest, 0.0)
}
