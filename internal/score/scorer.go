package score

import (
	"math"
	"strings"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Per-fill medication cost estimates by formulary tier. Uncovered
// medications are assumed to be paid at full retail.
const (
	tier1DoseCost     = 10
	tier2DoseCost     = 50
	tier3DoseCost     = 100
	tier4DoseCost     = 300
	uncoveredDoseCost = 500
)

// unexpectedCareBuffer is a conservative annual allowance for care that
// cannot be predicted from the client profile.
const unexpectedCareBuffer = 1000

// primaryCareSpecialties bill at the primary care copay; everything
// else bills as a specialist visit.
var primaryCareSpecialties = map[string]bool{
	"primary care":      true,
	"family medicine":   true,
	"internal medicine": true,
}

// Scorer rates plans for a client using a fixed weight distribution.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer using the given weights. Zero-value
// weights fall back to the defaults.
func NewScorer(weights Weights) *Scorer {
	if weights.sum() == 0 {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// Weights returns the weight distribution the scorer applies.
func (s *Scorer) Weights() Weights { return s.weights }

// ScorePlan scores one plan against the client. allPlans is the
// comparison set used to normalize the cost metric and must contain
// the plan being scored.
func (s *Scorer) ScorePlan(client *model.Client, plan *model.Plan, allPlans []model.Plan) model.PlanAnalysis {
	metrics := model.ScoringMetrics{
		ProviderNetworkScore:          ScoreProviderNetwork(client, plan),
		MedicationCoverageScore:       ScoreMedicationCoverage(client, plan),
		FinancialProtectionScore:      ScoreFinancialProtection(plan),
		AdministrativeSimplicityScore: ScoreAdminSimplicity(plan),
		PlanQualityScore:              ScorePlanQuality(plan),
	}

	estimatedCost := AnnualCost(client, plan)
	metrics.TotalCostScore = scoreTotalCost(estimatedCost, client, allPlans)
	metrics.WeightedTotalScore = s.weightedTotal(metrics)

	return model.PlanAnalysis{
		Plan:                *plan,
		Metrics:             metrics,
		EstimatedAnnualCost: estimatedCost,
		ProviderCoverage:    providerCoverage(client, plan),
		MedicationCoverage:  medicationCoverage(client, plan),
	}
}

// ScoreQuickLook scores a plan in isolation. Without a comparison set
// the cost metric cannot be normalized, so it is pinned to 10 and the
// weighted total is not comparable across separate calls.
func (s *Scorer) ScoreQuickLook(client *model.Client, plan *model.Plan) model.PlanAnalysis {
	analysis := s.ScorePlan(client, plan, []model.Plan{*plan})
	return analysis
}

// ScoreProviderNetwork rates how well the network covers the client's
// must-keep providers. With no must-keep providers there is nothing to
// lose and the score is 10. Requiring referrals costs 2 points.
func ScoreProviderNetwork(client *model.Client, plan *model.Plan) float64 {
	score := 10.0
	mustKeep := client.MedicalProfile.MustKeepProviders()
	if len(mustKeep) > 0 {
		inNetwork := 0
		for _, p := range mustKeep {
			if plan.NetworkStatusFor(p.Name) == model.InNetwork {
				inNetwork++
			}
		}
		ratio := float64(inNetwork) / float64(len(mustKeep))
		switch {
		case ratio == 1.0:
			score = 10
		case ratio >= 0.8:
			score = 7
		case ratio >= 0.5:
			score = 4
		default:
			score = 0
		}
	}
	if plan.RequiresReferrals {
		score = math.Max(0, score-2)
	}
	return score
}

// ScoreMedicationCoverage averages per-medication coverage, then
// adjusts for plan-wide friction: +2 when prior auth is uncommon, -3
// when the plan routes specialty drugs through a copay maximizer.
func ScoreMedicationCoverage(client *model.Client, plan *model.Plan) float64 {
	meds := client.MedicalProfile.Medications
	if len(meds) == 0 {
		return 10
	}

	total := 0.0
	for _, med := range meds {
		switch {
		case plan.CoverageFor(med.Name).OnFormulary():
			total += 10
		case med.ManufacturerProgram != nil && med.ManufacturerProgram.Exists:
			total += 6
		}
	}
	score := total / float64(len(meds))

	if !plan.Administrative.PriorAuthCommon {
		score += 2
	}
	if plan.Administrative.UsesMaximizer {
		score -= 3
	}
	return clamp(score, 0, 10)
}

// AnnualCost estimates the client's total yearly spend on a plan:
// premiums, deductible, projected visit and medication costs, and a
// flat buffer for unexpected care. The estimate is capped at the
// out-of-pocket maximum plus annual premiums, which bounds what the
// client can actually be charged.
func AnnualCost(client *model.Client, plan *model.Plan) float64 {
	annualPremium := plan.MonthlyPremium * 12

	visitCosts := 0.0
	for _, p := range client.MedicalProfile.Providers {
		copay := plan.CopaySpecialist
		if primaryCareSpecialties[strings.ToLower(p.Specialty)] {
			copay = plan.CopayPrimary
		}
		visitCosts += float64(p.VisitFrequency) * copay
	}

	medCosts := 0.0
	for _, med := range client.MedicalProfile.Medications {
		if med.ManufacturerProgram != nil && med.ManufacturerProgram.Exists {
			medCosts += float64(med.AnnualDoses) * med.ManufacturerProgram.ExpectedCopay
			continue
		}
		perDose := uncoveredDoseCost
		switch plan.CoverageFor(med.Name) {
		case model.Tier1:
			perDose = tier1DoseCost
		case model.Tier2:
			perDose = tier2DoseCost
		case model.Tier3:
			perDose = tier3DoseCost
		case model.Tier4:
			perDose = tier4DoseCost
		}
		medCosts += float64(med.AnnualDoses * perDose)
	}

	total := annualPremium + plan.Deductible + visitCosts + medCosts + unexpectedCareBuffer
	return math.Min(total, plan.OOPMax+annualPremium)
}

// scoreTotalCost normalizes the plan's estimated cost against the
// comparison set: the cheapest plan scores 10, the most expensive 0.
// When every plan costs the same there is nothing to rank and all
// score 10.
func scoreTotalCost(estimatedCost float64, client *model.Client, allPlans []model.Plan) float64 {
	minCost := math.Inf(1)
	maxCost := math.Inf(-1)
	for i := range allPlans {
		c := AnnualCost(client, &allPlans[i])
		minCost = math.Min(minCost, c)
		maxCost = math.Max(maxCost, c)
	}
	if len(allPlans) == 0 || maxCost == minCost {
		return 10
	}
	return clamp(10*(maxCost-estimatedCost)/(maxCost-minCost), 0, 10)
}

// ScoreFinancialProtection rates exposure to a bad medical year from
// the deductible and out-of-pocket maximum alone.
func ScoreFinancialProtection(plan *model.Plan) float64 {
	d, oopm := plan.Deductible, plan.OOPMax
	switch {
	case d <= 500 && oopm <= 3000:
		return 10
	case d <= 1000 && oopm <= 5000:
		return 7
	case d <= 2000 && oopm <= 7000:
		return 4
	default:
		return 0
	}
}

// ScoreAdminSimplicity starts from 10 and deducts for each source of
// paperwork friction.
func ScoreAdminSimplicity(plan *model.Plan) float64 {
	score := 10.0
	if plan.RequiresReferrals {
		score -= 3
	}
	if plan.Administrative.PriorAuthCommon {
		score -= 2
	}
	if plan.Administrative.UsesMaximizer {
		score -= 2
	}
	if plan.Administrative.PlanRating < 3.0 {
		score -= 1
	}
	return math.Max(0, score)
}

// ScorePlanQuality converts the plan's star rating to the 0-10 scale.
// A marketplace global quality rating takes precedence when present;
// otherwise the administrative star rating (neutral 3.0 by default) is
// used.
func ScorePlanQuality(plan *model.Plan) float64 {
	rating := plan.Administrative.PlanRating
	if plan.QualityRating > 0 {
		rating = plan.QualityRating
	}
	return math.Min(10, rating*2)
}

func (s *Scorer) weightedTotal(m model.ScoringMetrics) float64 {
	total := m.ProviderNetworkScore*s.weights.ProviderNetwork +
		m.MedicationCoverageScore*s.weights.MedicationCoverage +
		m.TotalCostScore*s.weights.TotalCost +
		m.FinancialProtectionScore*s.weights.FinancialProtect +
		m.AdministrativeSimplicityScore*s.weights.AdminSimplicity +
		m.PlanQualityScore*s.weights.PlanQuality
	return math.Round(total*100) / 100
}

func providerCoverage(client *model.Client, plan *model.Plan) map[string]bool {
	details := make(map[string]bool, len(client.MedicalProfile.Providers))
	for _, p := range client.MedicalProfile.Providers {
		details[p.Name] = plan.NetworkStatusFor(p.Name) == model.InNetwork
	}
	return details
}

func medicationCoverage(client *model.Client, plan *model.Plan) map[string]string {
	details := make(map[string]string, len(client.MedicalProfile.Medications))
	for _, med := range client.MedicalProfile.Medications {
		details[med.Name] = string(plan.CoverageFor(med.Name))
	}
	return details
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
