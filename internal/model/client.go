// Package model defines the data shapes shared across the ingestion,
// scoring, and reporting layers: client profiles, normalized plans, and
// analysis results.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Priority expresses how important it is to a client that a specific
// provider stays in-network.
type Priority string

const (
	PriorityMustKeep   Priority = "must-keep"
	PriorityNiceToKeep Priority = "nice-to-keep"
)

// ParsePriority maps a string onto a Priority, defaulting to nice-to-keep.
func ParsePriority(s string) Priority {
	if strings.EqualFold(strings.TrimSpace(s), string(PriorityMustKeep)) {
		return PriorityMustKeep
	}
	return PriorityNiceToKeep
}

// PersonalInfo holds the demographic and financial facts about a client.
// Construct via NewPersonalInfo so the ZIP code invariant holds.
type PersonalInfo struct {
	FullName      string  `json:"full_name" yaml:"full_name"`
	DOB           string  `json:"dob" yaml:"dob"` // YYYY-MM-DD
	Zipcode       string  `json:"zipcode" yaml:"zipcode"`
	HouseholdSize int     `json:"household_size" yaml:"household_size"`
	AnnualIncome  float64 `json:"annual_income" yaml:"annual_income"`
	CSREligible   bool    `json:"csr_eligible" yaml:"csr_eligible"`
}

// NewPersonalInfo validates eagerly: a constructed PersonalInfo always
// carries a normalized 5-digit ZIP, a household of at least one, and a
// non-negative income.
func NewPersonalInfo(fullName, dob, zipcode string, householdSize int, annualIncome float64, csrEligible bool) (PersonalInfo, error) {
	zip, err := NormalizeZipcode(zipcode)
	if err != nil {
		return PersonalInfo{}, err
	}
	if householdSize < 1 {
		return PersonalInfo{}, eris.Errorf("model: household size must be >= 1, got %d", householdSize)
	}
	if annualIncome < 0 {
		return PersonalInfo{}, eris.Errorf("model: annual income must be >= 0, got %.2f", annualIncome)
	}
	return PersonalInfo{
		FullName:      fullName,
		DOB:           dob,
		Zipcode:       zip,
		HouseholdSize: householdSize,
		AnnualIncome:  annualIncome,
		CSREligible:   csrEligible,
	}, nil
}

// NormalizeZipcode strips non-digits and truncates to the first five
// digits. Inputs with fewer than five digits are rejected.
func NormalizeZipcode(s string) (string, error) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() < 5 {
		return "", eris.Errorf("model: invalid ZIP code %q", s)
	}
	return digits.String()[:5], nil
}

// Validate re-checks the PersonalInfo invariants. Useful for instances
// decoded straight from JSON or YAML without going through the constructor.
func (p PersonalInfo) Validate() error {
	_, err := NewPersonalInfo(p.FullName, p.DOB, p.Zipcode, p.HouseholdSize, p.AnnualIncome, p.CSREligible)
	return err
}

// Provider is a care provider the client wants to keep seeing.
type Provider struct {
	Name           string   `json:"name" yaml:"name"`
	Specialty      string   `json:"specialty" yaml:"specialty"`
	NPI            string   `json:"npi,omitempty" yaml:"npi,omitempty"`
	Priority       Priority `json:"priority" yaml:"priority"`
	VisitFrequency int      `json:"visit_frequency" yaml:"visit_frequency"` // per year
}

// ManufacturerProgram describes a drug-maker-funded copay reduction
// mechanism attached to a medication.
type ManufacturerProgram struct {
	Exists        bool    `json:"exists" yaml:"exists"`
	ProgramType   string  `json:"program_type,omitempty" yaml:"program_type,omitempty"` // "copay-card" or "rebate"
	MaxBenefit    float64 `json:"max_benefit,omitempty" yaml:"max_benefit,omitempty"`
	ExpectedCopay float64 `json:"expected_copay,omitempty" yaml:"expected_copay,omitempty"`
}

// Medication is a drug the client takes regularly.
type Medication struct {
	Name                string               `json:"name" yaml:"name"`
	RxNormCode          string               `json:"rxnorm_code,omitempty" yaml:"rxnorm_code,omitempty"`
	Dosage              string               `json:"dosage,omitempty" yaml:"dosage,omitempty"`
	Frequency           string               `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	AnnualDoses         int                  `json:"annual_doses" yaml:"annual_doses"`
	ManufacturerProgram *ManufacturerProgram `json:"manufacturer_program,omitempty" yaml:"manufacturer_program,omitempty"`
}

// SpecialTreatment is a recurring treatment outside regular provider visits.
type SpecialTreatment struct {
	Name        string  `json:"name" yaml:"name"`
	Frequency   int     `json:"frequency" yaml:"frequency"` // per year
	AllowedCost float64 `json:"allowed_cost" yaml:"allowed_cost"`
}

// MedicalProfile aggregates the client's providers, medications, and
// special treatments. Order is preserved for deterministic reporting but
// carries no semantic weight.
type MedicalProfile struct {
	Providers         []Provider         `json:"providers,omitempty" yaml:"providers,omitempty"`
	Medications       []Medication       `json:"medications,omitempty" yaml:"medications,omitempty"`
	SpecialTreatments []SpecialTreatment `json:"special_treatments,omitempty" yaml:"special_treatments,omitempty"`
}

// MustKeepProviders returns the providers flagged must-keep, in profile order.
func (m MedicalProfile) MustKeepProviders() []Provider {
	var out []Provider
	for _, p := range m.Providers {
		if p.Priority == PriorityMustKeep {
			out = append(out, p)
		}
	}
	return out
}

// Priorities captures client preference strength on a 1-5 scale.
// The scoring engine maps these onto metric weights when priority-adjusted
// mode is selected; fixed-weight mode ignores them.
type Priorities struct {
	KeepProviders     int `json:"keep_providers" yaml:"keep_providers"`
	MinimizeTotalCost int `json:"minimize_total_cost" yaml:"minimize_total_cost"`
	PredictableCosts  int `json:"predictable_costs" yaml:"predictable_costs"`
	AvoidPriorAuth    int `json:"avoid_prior_auth" yaml:"avoid_prior_auth"`
	SimpleAdmin       int `json:"simple_admin" yaml:"simple_admin"`
}

// DefaultPriorities returns the neutral 3-across-the-board preference set.
func DefaultPriorities() Priorities {
	return Priorities{
		KeepProviders:     3,
		MinimizeTotalCost: 3,
		PredictableCosts:  3,
		AvoidPriorAuth:    3,
		SimpleAdmin:       3,
	}
}

// Client is the full profile an analysis runs against. Treated as
// immutable for the duration of a run.
type Client struct {
	Personal       PersonalInfo   `json:"personal" yaml:"personal"`
	MedicalProfile MedicalProfile `json:"medical_profile" yaml:"medical_profile"`
	Priorities     Priorities     `json:"priorities" yaml:"priorities"`
}
