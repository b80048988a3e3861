package ingest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Money decodes a monetary amount from JSON that may arrive as a
// number, a currency string ("$1,500.00"), or null. Set reports
// whether the source carried a value at all.
type Money struct {
	Value float64
	Set   bool
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return eris.Wrap(err, "ingest: decode monetary string")
		}
		v, err := parseMoneyString(raw)
		if err != nil {
			return err
		}
		m.Value, m.Set = v, true
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "ingest: decode monetary value %q", s)
	}
	m.Value, m.Set = v, true
	return nil
}

func parseMoneyString(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, eris.New("ingest: empty monetary value")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: parse monetary value %q", raw)
	}
	return v, nil
}

// FlexBool accepts JSON booleans as well as the string spellings that
// show up in hand-edited batch files.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		*f = true
	case "false", "no", "n", "0", "", "null":
		*f = false
	default:
		return eris.Errorf("ingest: invalid boolean value %q", s)
	}
	return nil
}

// AdministrativeRecord mirrors model.Administrative with an optional
// rating so an absent value can fall back to the neutral default.
type AdministrativeRecord struct {
	PriorAuthCommon FlexBool `json:"prior_auth_common"`
	UsesMaximizer   FlexBool `json:"uses_maximizer"`
	PlanRating      *float64 `json:"plan_rating"`
}

// PlanRecord is the loosely typed shape of a structured plan entry.
// Legacy batch files spell the individual deductible and out-of-pocket
// maximum with an _individual suffix, both spellings are accepted.
type PlanRecord struct {
	PlanID            string                `json:"plan_id"`
	Issuer            string                `json:"issuer"`
	MarketingName     string                `json:"marketing_name"`
	MetalLevel        string                `json:"metal_level"`
	PlanType          string                `json:"plan_type"`
	MonthlyPremium    Money                 `json:"monthly_premium"`
	Deductible        Money                 `json:"deductible"`
	DeductibleLegacy  Money                 `json:"deductible_individual"`
	OOPMax            Money                 `json:"oop_max"`
	OOPMaxLegacy      Money                 `json:"oop_max_individual"`
	CopayPrimary      Money                 `json:"copay_primary"`
	CopaySpecialist   Money                 `json:"copay_specialist"`
	CopayER           Money                 `json:"copay_er"`
	Coinsurance       Money                 `json:"coinsurance"`
	RequiresReferrals FlexBool              `json:"requires_referrals"`
	Network           map[string]string     `json:"network"`
	Formulary         map[string]string     `json:"formulary"`
	Administrative    *AdministrativeRecord `json:"administrative"`
	QualityRating     Money                 `json:"quality_rating"`
	CustomerRating    Money                 `json:"customer_rating"`
	SourceFile        string                `json:"-"`
}

// Build normalizes the record into a model.Plan. Missing fields get the
// same defaults the text cascade uses, and the legacy field spellings
// are reconciled exactly once: the legacy value wins only when the
// modern field is zero or absent.
func (r PlanRecord) Build() (model.Plan, error) {
	if r.PlanID == "" {
		return model.Plan{}, eris.New("ingest: plan record missing plan_id")
	}

	metal := model.MetalSilver
	if r.MetalLevel != "" {
		m, ok := model.ParseMetalLevel(r.MetalLevel)
		if !ok {
			return model.Plan{}, eris.Errorf("ingest: invalid metal level %q", r.MetalLevel)
		}
		metal = m
	}
	planType := model.PlanPPO
	if r.PlanType != "" {
		pt, ok := model.ParsePlanType(r.PlanType)
		if !ok {
			return model.Plan{}, eris.Errorf("ingest: invalid plan type %q", r.PlanType)
		}
		planType = pt
	}

	deductible := r.Deductible
	if !deductible.Set || deductible.Value == 0 {
		if r.DeductibleLegacy.Set {
			deductible = r.DeductibleLegacy
		}
	}
	oopMax := r.OOPMax
	if !oopMax.Set || oopMax.Value == 0 {
		if r.OOPMaxLegacy.Set {
			oopMax = r.OOPMaxLegacy
		}
	}

	coinsurance := 0.2
	if r.Coinsurance.Set {
		coinsurance = r.Coinsurance.Value
	}

	admin := model.DefaultAdministrative()
	if r.Administrative != nil {
		admin.PriorAuthCommon = bool(r.Administrative.PriorAuthCommon)
		admin.UsesMaximizer = bool(r.Administrative.UsesMaximizer)
		if r.Administrative.PlanRating != nil {
			admin.PlanRating = *r.Administrative.PlanRating
		}
	}

	issuer := r.Issuer
	if issuer == "" {
		issuer = "Unknown Issuer"
	}
	name := r.MarketingName
	if name == "" {
		name = r.PlanID
	}

	network := make(map[string]model.NetworkStatus, len(r.Network))
	for npi, status := range r.Network {
		network[npi] = parseNetworkStatus(status)
	}
	formulary := make(map[string]model.CoverageStatus, len(r.Formulary))
	for rxcui, status := range r.Formulary {
		cs, err := parseCoverageStatus(status)
		if err != nil {
			return model.Plan{}, err
		}
		formulary[rxcui] = cs
	}

	return model.Plan{
		PlanID:            r.PlanID,
		Issuer:            issuer,
		MarketingName:     name,
		MetalLevel:        metal,
		PlanType:          planType,
		MonthlyPremium:    r.MonthlyPremium.Value,
		Deductible:        deductible.Value,
		OOPMax:            oopMax.Value,
		CopayPrimary:      r.CopayPrimary.Value,
		CopaySpecialist:   r.CopaySpecialist.Value,
		CopayER:           r.CopayER.Value,
		Coinsurance:       coinsurance,
		RequiresReferrals: bool(r.RequiresReferrals),
		Network:           network,
		Formulary:         formulary,
		Administrative:    admin,
		QualityRating:     r.QualityRating.Value,
		CustomerRating:    r.CustomerRating.Value,
		FieldsRecovered:   r.recoveredCount(),
		SourceFile:        r.SourceFile,
	}, nil
}

// recoveredCount mirrors the text cascade's confidence signal for
// structured sources: one point per core field the record carried.
func (r PlanRecord) recoveredCount() int {
	n := 0
	for _, present := range []bool{
		r.PlanID != "",
		r.Issuer != "",
		r.MarketingName != "",
		r.MetalLevel != "",
		r.MonthlyPremium.Set,
		r.Deductible.Set || r.DeductibleLegacy.Set,
		r.OOPMax.Set || r.OOPMaxLegacy.Set,
		r.CopayPrimary.Set,
		r.CopaySpecialist.Set,
		r.CopayER.Set,
	} {
		if present {
			n++
		}
	}
	return n
}

func parseNetworkStatus(s string) model.NetworkStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN", "IN_NETWORK", "IN-NETWORK":
		return model.InNetwork
	default:
		return model.OutOfNetwork
	}
}

func parseCoverageStatus(s string) (model.CoverageStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COVERED":
		return model.Covered, nil
	case "TIER1", "TIER_1":
		return model.Tier1, nil
	case "TIER2", "TIER_2":
		return model.Tier2, nil
	case "TIER3", "TIER_3":
		return model.Tier3, nil
	case "TIER4", "TIER_4":
		return model.Tier4, nil
	case "NOT", "NOT_COVERED", "NOT-COVERED", "":
		return model.NotCovered, nil
	default:
		return "", eris.Errorf("ingest: invalid coverage status %q", s)
	}
}

// recordFromRow builds a PlanRecord out of one tabular row, used by the
// CSV and XLSX paths. header maps lowercased column names to indexes.
func recordFromRow(header map[string]int, row []string) (PlanRecord, error) {
	cell := func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	moneyCell := func(name string) (Money, error) {
		raw := cell(name)
		if raw == "" {
			return Money{}, nil
		}
		v, err := parseMoneyString(raw)
		if err != nil {
			return Money{}, eris.Wrapf(err, "ingest: column %s", name)
		}
		return Money{Value: v, Set: true}, nil
	}

	rec := PlanRecord{
		PlanID:        cell("plan_id"),
		Issuer:        cell("issuer"),
		MarketingName: cell("marketing_name"),
		MetalLevel:    cell("metal_level"),
		PlanType:      cell("plan_type"),
	}
	var err error
	for _, f := range []struct {
		name string
		dst  *Money
	}{
		{"monthly_premium", &rec.MonthlyPremium},
		{"deductible", &rec.Deductible},
		{"deductible_individual", &rec.DeductibleLegacy},
		{"oop_max", &rec.OOPMax},
		{"oop_max_individual", &rec.OOPMaxLegacy},
		{"copay_primary", &rec.CopayPrimary},
		{"copay_specialist", &rec.CopaySpecialist},
		{"copay_er", &rec.CopayER},
		{"coinsurance", &rec.Coinsurance},
		{"quality_rating", &rec.QualityRating},
		{"customer_rating", &rec.CustomerRating},
	} {
		if *f.dst, err = moneyCell(f.name); err != nil {
			return PlanRecord{}, err
		}
	}
	if raw := cell("requires_referrals"); raw != "" {
		if err := rec.RequiresReferrals.UnmarshalJSON([]byte(raw)); err != nil {
			return PlanRecord{}, err
		}
	}
	return rec, nil
}
