package model

import "strings"

// MetalLevel is the marketplace plan categorization.
type MetalLevel string

const (
	MetalBronze       MetalLevel = "Bronze"
	MetalSilver       MetalLevel = "Silver"
	MetalGold         MetalLevel = "Gold"
	MetalPlatinum     MetalLevel = "Platinum"
	MetalCatastrophic MetalLevel = "Catastrophic"
)

// MetalLevelsDescending lists tiers from highest to lowest value. The
// extractor scans in this order so a document mentioning several tiers
// resolves to the highest one.
var MetalLevelsDescending = []MetalLevel{
	MetalPlatinum, MetalGold, MetalSilver, MetalBronze, MetalCatastrophic,
}

// ParseMetalLevel maps a string onto a MetalLevel. The second return is
// false when the input is not a recognized tier.
func ParseMetalLevel(s string) (MetalLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bronze":
		return MetalBronze, true
	case "silver":
		return MetalSilver, true
	case "gold":
		return MetalGold, true
	case "platinum":
		return MetalPlatinum, true
	case "catastrophic":
		return MetalCatastrophic, true
	default:
		return "", false
	}
}

// PlanType is the plan's network structure.
type PlanType string

const (
	PlanHMO  PlanType = "HMO"
	PlanPPO  PlanType = "PPO"
	PlanEPO  PlanType = "EPO"
	PlanPOS  PlanType = "POS"
	PlanHDHP PlanType = "HDHP"
)

// ParsePlanType maps a string onto a PlanType. The second return is false
// when the input is not a recognized type.
func ParsePlanType(s string) (PlanType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HMO":
		return PlanHMO, true
	case "PPO":
		return PlanPPO, true
	case "EPO":
		return PlanEPO, true
	case "POS":
		return PlanPOS, true
	case "HDHP":
		return PlanHDHP, true
	default:
		return "", false
	}
}

// NetworkStatus marks whether a provider participates in a plan's network.
type NetworkStatus string

const (
	InNetwork    NetworkStatus = "IN_NETWORK"
	OutOfNetwork NetworkStatus = "OUT_OF_NETWORK"
)

// CoverageStatus is a medication's position on a plan's formulary.
type CoverageStatus string

const (
	NotCovered CoverageStatus = "NOT_COVERED"
	Covered    CoverageStatus = "COVERED"
	Tier1      CoverageStatus = "TIER1"
	Tier2      CoverageStatus = "TIER2"
	Tier3      CoverageStatus = "TIER3"
	Tier4      CoverageStatus = "TIER4"
)

// OnFormulary reports whether the status represents any covered position.
func (c CoverageStatus) OnFormulary() bool {
	switch c {
	case Covered, Tier1, Tier2, Tier3, Tier4:
		return true
	default:
		return false
	}
}

// Administrative holds the plan attributes that drive administrative
// friction scoring.
type Administrative struct {
	PriorAuthCommon bool    `json:"prior_auth_common" yaml:"prior_auth_common"`
	UsesMaximizer   bool    `json:"uses_maximizer" yaml:"uses_maximizer"`
	PlanRating      float64 `json:"plan_rating" yaml:"plan_rating"` // 1-5 stars
}

// DefaultAdministrative returns an independent copy of the default
// administrative attributes. Every Plan owns its own copy; there is no
// shared mutable default instance.
func DefaultAdministrative() Administrative {
	return Administrative{PlanRating: 3.0}
}

// Plan is the canonical normalized plan record produced by ingestion.
//
// Deductible and OOPMax are the authoritative cost-sharing caps; the legacy
// deductible_individual / oop_max_individual input names are reconciled
// onto them exactly once, at construction time in the ingest package.
type Plan struct {
	PlanID            string                    `json:"plan_id"`
	Issuer            string                    `json:"issuer"`
	MarketingName     string                    `json:"marketing_name"`
	MetalLevel        MetalLevel                `json:"metal_level"`
	PlanType          PlanType                  `json:"plan_type"`
	MonthlyPremium    float64                   `json:"monthly_premium"`
	Deductible        float64                   `json:"deductible"`
	OOPMax            float64                   `json:"oop_max"`
	CopayPrimary      float64                   `json:"copay_primary"`
	CopaySpecialist   float64                   `json:"copay_specialist"`
	CopayER           float64                   `json:"copay_er"`
	Coinsurance       float64                   `json:"coinsurance"` // fraction, e.g. 0.2
	RequiresReferrals bool                      `json:"requires_referrals"`
	Network           map[string]NetworkStatus  `json:"network,omitempty"`
	Formulary         map[string]CoverageStatus `json:"formulary,omitempty"`
	Administrative    Administrative            `json:"administrative"`
	QualityRating     float64                   `json:"quality_rating"`
	CustomerRating    float64                   `json:"customer_rating"`

	// FieldsRecovered counts how many fields the extractor actually
	// recovered from source text, so downstream consumers can tell a
	// genuine zero-cost plan from an extraction failure.
	FieldsRecovered int `json:"fields_recovered"`

	// SourceFile records where the plan came from, for diagnostics.
	SourceFile string `json:"source_file,omitempty"`
}

// NetworkStatusFor returns the plan's network status for a provider name,
// defaulting to out-of-network when the provider is unknown to the plan.
func (p *Plan) NetworkStatusFor(providerName string) NetworkStatus {
	if s, ok := p.Network[providerName]; ok {
		return s
	}
	return OutOfNetwork
}

// CoverageFor returns the formulary status for a medication name,
// defaulting to not-covered when the drug is unknown to the plan.
func (p *Plan) CoverageFor(medicationName string) CoverageStatus {
	if s, ok := p.Formulary[medicationName]; ok {
		return s
	}
	return NotCovered
}
