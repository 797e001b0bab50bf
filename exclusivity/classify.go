package exclusivity

import "strings"

// prefixLabels is checked in order. NPP must come before NP.
var prefixLabels = []struct {
	prefix string
	label  string
}{
	{"NCE", "New Chemical Entity (5 years)"},
	{"NPP", "New Patient Population (3 years)"},
	{"NP", "New Product (3 years)"},
	{"ODE", "Orphan Drug (7 years)"},
	{"PED", "Pediatric (6 months)"},
	{"I-", "New Indication (3 years)"},
	{"D-", "New Dosage Form (3 years)"},
	{"RTO", "Right of Reference"},
}

// codeLabels covers the remaining codes published in the Orange Book
// exclusivity code table
var codeLabels = map[string]string{
	"NC":   "New Combination (3 years)",
	"NS":   "New Strength (3 years)",
	"NR":   "New Route (3 years)",
	"NDF":  "New Dosage Form (3 years)",
	"NE":   "New Ester or Salt (3 years)",
	"M":    "Miscellaneous (3 years)",
	"W":    "Waiver",
	"GAIN": "Generating Antibiotic Incentives Now (5 years)",
	"CGT":  "Competitive Generic Therapy (180 days)",
	"PC":   "Patent Challenge (180 days)",
	"PEC":  "Pediatric Exclusivity",
}

// ClassifyExclusivity maps an exclusivity code to a readable label. Unknown
// codes are returned as is.
func ClassifyExclusivity(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return ""
	}

	for _, rule := range prefixLabels {
		if strings.HasPrefix(normalized, rule.prefix) {
			return rule.label
		}
	}

	if label, ok := codeLabels[normalized]; ok {
		return label
	}

	return strings.TrimSpace(code)
}

// IsClassified reports whether ClassifyExclusivity knows the code
func IsClassified(code string) bool {
	return ClassifyExclusivity(code) != strings.TrimSpace(code)
}
