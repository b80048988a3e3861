package ingest

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// money matches a dollar amount with optional thousands separators.
const money = `([0-9,]+(?:\.[0-9]{1,2})?)`

var (
	planIDLabelRe   = regexp.MustCompile(`(?i)Plan ID[:\s]+(\d+[A-Z]{2}\d+)`)
	planIDStateRe   = regexp.MustCompile(`(?i)(\d{5,}[A-Z]{2}\d{4,})`)
	planIDGenericRe = regexp.MustCompile(`(?i)Plan ID[:\s]+([A-Z0-9]+)`)
	planIDHashRe    = regexp.MustCompile(`(?i)ID#?\s*(\d{6,})`)
	fileDigitsRe    = regexp.MustCompile(`\d{6,}`)
	nonAlnumRe      = regexp.MustCompile(`[^A-Z0-9]`)

	issuerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(Ambetter)`),
		regexp.MustCompile(`(?i)(Blue Cross Blue Shield(?:\s+of\s+\w+)?)`),
		regexp.MustCompile(`(?i)(UnitedHealthcare|UnitedHealth)`),
		regexp.MustCompile(`(?i)(Banner Health)`),
		regexp.MustCompile(`(?i)(Oscar Health)`),
		regexp.MustCompile(`(?i)(Imperial Health)`),
		regexp.MustCompile(`(?i)(Aetna)`),
		regexp.MustCompile(`(?i)(Cigna)`),
		regexp.MustCompile(`(?i)(Humana)`),
	}

	// Carrier abbreviations that show up in downloaded file names.
	// Order matters, the first hit wins.
	issuerAbbrevs = []struct{ abbrev, name string }{
		{"bcbs", "Blue Cross Blue Shield"},
		{"amb", "Ambetter"},
		{"uhc", "UnitedHealthcare"},
		{"banner", "Banner Health"},
		{"imperial", "Imperial Health"},
		{"oscar", "Oscar Health"},
	}

	marketingLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Plan Name[:\s]+([^\n|]+)`),
		regexp.MustCompile(`(?i)Marketing Name[:\s]+([^\n|]+)`),
	}
	marketingTierRe = regexp.MustCompile(`(?i)((?:Standard\s+)?(?:Platinum|Gold|Silver|Bronze|Catastrophic)[^|\n]*?)\s*\|`)

	premiumRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Monthly premium\s*\$` + money),
		regexp.MustCompile(`(?i)Monthly Premium[:\s]+\$?` + money),
		regexp.MustCompile(`(?i)premium[:\s]*\$` + money),
		regexp.MustCompile(`(?i)\$` + money + `\s*(?:/month|per month)`),
		regexp.MustCompile(`(?i)Was\s*\$` + money),
	}
	deductibleRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Deductible\s*\$` + money + `\s*Individual`),
		regexp.MustCompile(`(?i)Individual Deductible[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)Annual Deductible[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)Deductible[:\s]*\$?` + money),
	}
	oopMaxRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Out[- ]of[- ]pocket maximum\s*\$` + money + `\s*Individual`),
		regexp.MustCompile(`(?i)Out[- ]of[- ]pocket maximum[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)Maximum Out[- ]of[- ]pocket[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)OOPM[:\s]*\$?` + money),
	}
	copayPrimaryRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Primary care visit[:\s]*\$` + money),
		regexp.MustCompile(`(?i)Primary Care[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)PCP[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)Doctor visit[:\s]*\$` + money),
	}
	copaySpecialistRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Specialist visit[:\s]*\$` + money),
		regexp.MustCompile(`(?i)Specialist[:\s]*\$?` + money),
		regexp.MustCompile(`(?i)Specialty Care[:\s]*\$?` + money),
	}
	copayERRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Emergency room[:\s]*\$` + money),
		regexp.MustCompile(`(?i)ER visit[:\s]*\$` + money),
		regexp.MustCompile(`(?i)Emergency[:\s]*\$?` + money),
	}

	referralRe = regexp.MustCompile(`(?i)referral.{0,40}(required|needed)`)
)

// TextFields holds what the regex cascade recovered from a document.
// Monetary fields stay pointers so that an absent value is
// distinguishable from a literal zero in the source text.
type TextFields struct {
	PlanID            string
	Issuer            string
	MetalLevel        model.MetalLevel
	MarketingName     string
	MonthlyPremium    *float64
	Deductible        *float64
	OOPMax            *float64
	CopayPrimary      *float64
	CopaySpecialist   *float64
	CopayER           *float64
	RequiresReferrals bool
	PriorAuthCommon   bool
	Recovered         int
}

// ExtractFields runs the recovery cascade over extracted document text.
// Every field has a fallback, so the result is always usable even for
// garbage input. Recovered counts how many fields came from the text
// itself rather than a filename or default fallback.
func ExtractFields(text, sourcePath string) TextFields {
	// Label captures stop at line boundaries; the flattened copy is
	// only for phrases a PDF extractor tends to break across lines.
	flat := strings.Join(strings.Fields(text), " ")
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))

	var tf TextFields
	tf.PlanID = extractPlanID(text, stem, &tf.Recovered)
	tf.Issuer = extractIssuer(text, stem, &tf.Recovered)
	tf.MetalLevel = extractMetalLevel(text, stem, &tf.Recovered)
	tf.MarketingName = extractMarketingName(text, stem, tf.MetalLevel, tf.Issuer, &tf.Recovered)

	tf.MonthlyPremium = extractMoney(text, premiumRes, &tf.Recovered)
	if tf.MonthlyPremium != nil && *tf.MonthlyPremium == 0 &&
		!strings.Contains(strings.ToLower(flat), "premium $0") {
		// A zero premium is real only when stated verbatim. Anything
		// else is the cascade matching a stray "$0" elsewhere.
		tf.MonthlyPremium = nil
		tf.Recovered--
	}
	tf.Deductible = extractMoney(text, deductibleRes, &tf.Recovered)
	tf.OOPMax = extractMoney(text, oopMaxRes, &tf.Recovered)
	tf.CopayPrimary = extractMoney(text, copayPrimaryRes, &tf.Recovered)
	tf.CopaySpecialist = extractMoney(text, copaySpecialistRes, &tf.Recovered)
	tf.CopayER = extractMoney(text, copayERRes, &tf.Recovered)

	tf.RequiresReferrals = referralRe.MatchString(flat)
	tf.PriorAuthCommon = strings.Contains(strings.ToLower(flat), "prior auth")
	return tf
}

// Plan collapses the extracted fields into a model.Plan, substituting
// defaults for anything the cascade could not recover.
func (tf TextFields) Plan(sourceFile string) model.Plan {
	admin := model.DefaultAdministrative()
	admin.PriorAuthCommon = tf.PriorAuthCommon
	return model.Plan{
		PlanID:            tf.PlanID,
		Issuer:            tf.Issuer,
		MarketingName:     tf.MarketingName,
		MetalLevel:        tf.MetalLevel,
		PlanType:          model.PlanPPO,
		MonthlyPremium:    deref(tf.MonthlyPremium),
		Deductible:        deref(tf.Deductible),
		OOPMax:            deref(tf.OOPMax),
		CopayPrimary:      deref(tf.CopayPrimary),
		CopaySpecialist:   deref(tf.CopaySpecialist),
		CopayER:           deref(tf.CopayER),
		Coinsurance:       0.2,
		RequiresReferrals: tf.RequiresReferrals,
		Administrative:    admin,
		FieldsRecovered:   tf.Recovered,
		SourceFile:        sourceFile,
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func extractPlanID(text, stem string, recovered *int) string {
	for _, re := range []*regexp.Regexp{planIDLabelRe, planIDStateRe, planIDGenericRe, planIDHashRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			*recovered++
			return strings.ToUpper(m[1])
		}
	}
	if m := fileDigitsRe.FindString(stem); m != "" {
		return m
	}
	sanitized := nonAlnumRe.ReplaceAllString(strings.ToUpper(stem), "")
	if len(sanitized) > 20 {
		sanitized = sanitized[:20]
	}
	if sanitized == "" {
		sanitized = "PLAN"
	}
	return sanitized
}

func extractIssuer(text, stem string, recovered *int) string {
	for _, re := range issuerPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			*recovered++
			return strings.TrimSpace(m[1])
		}
	}
	lower := strings.ToLower(stem)
	for _, a := range issuerAbbrevs {
		if strings.Contains(lower, a.abbrev) {
			return a.name
		}
	}
	if strings.Contains(lower, "eligibility") {
		return "Healthcare.gov"
	}
	return "Unknown Issuer"
}

func extractMetalLevel(text, stem string, recovered *int) model.MetalLevel {
	haystack := strings.ToLower(text)
	stemLower := strings.ToLower(stem)
	for _, level := range model.MetalLevelsDescending {
		keyword := strings.ToLower(string(level))
		if strings.Contains(haystack, keyword) || strings.Contains(stemLower, keyword) {
			*recovered++
			return level
		}
	}
	return model.MetalSilver
}

func extractMarketingName(text, stem string, metal model.MetalLevel, issuer string, recovered *int) string {
	for _, re := range marketingLabelRes {
		if m := re.FindStringSubmatch(text); m != nil {
			name := strings.Join(strings.Fields(m[1]), " ")
			if len(name) >= 5 && len(name) <= 100 {
				*recovered++
				return name
			}
		}
	}
	if m := marketingTierRe.FindStringSubmatch(text); m != nil {
		name := strings.Join(strings.Fields(m[1]), " ")
		if len(name) >= 5 && len(name) <= 100 {
			*recovered++
			return name
		}
	}
	// Synthesize from what the filename gave us.
	stemLower := strings.ToLower(stem)
	if strings.Contains(stemLower, strings.ToLower(string(metal))) && issuer != "Unknown Issuer" {
		return string(metal) + " " + issuer + " Plan"
	}
	name := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(stem)), " ")
	if name == "" {
		name = "Unnamed Plan"
	}
	return name
}

func extractMoney(text string, cascade []*regexp.Regexp, recovered *int) *float64 {
	for _, re := range cascade {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		*recovered++
		return &v
	}
	return nil
}
