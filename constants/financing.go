package constants

import "strings"

// FinancingType is the canonical way the purchase is paid for.
type FinancingType string

const (
	FinancingCash         FinancingType = "cash"
	FinancingConventional FinancingType = "conventional"
	FinancingFHA          FinancingType = "fha"
	FinancingVA           FinancingType = "va"
	FinancingUSDA         FinancingType = "usda"
	FinancingSeller       FinancingType = "seller"
	FinancingAssumption   FinancingType = "assumption"
	FinancingOther        FinancingType = "other"
	FinancingUnspecified  FinancingType = "unspecified"
)

var allFinancingTypes = []FinancingType{
	FinancingCash,
	FinancingConventional,
	FinancingFHA,
	FinancingVA,
	FinancingUSDA,
	FinancingSeller,
	FinancingAssumption,
	FinancingOther,
	FinancingUnspecified,
}

// FinancingTypesAsStrings is the JSON-schema enum for financing types.
func FinancingTypesAsStrings() []string {
	result := make([]string, len(allFinancingTypes))
	for i, ft := range allFinancingTypes {
		result[i] = string(ft)
	}
	return result
}

// IsFinanced reports whether the type implies a financed portion.
func (f FinancingType) IsFinanced() bool {
	return f != FinancingCash && f != FinancingUnspecified
}

// CanonicalizeFinancing maps free text to a FinancingType. Blank input yields
// FinancingUnspecified with ok=true; unrecognized text yields ok=false.
func CanonicalizeFinancing(input string) (FinancingType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return FinancingUnspecified, true
	}

	synonyms := map[string]FinancingType{
		"all cash":                FinancingCash,
		"cash only":               FinancingCash,
		"third party financing":   FinancingConventional,
		"third party":             FinancingConventional,
		"conventional financing":  FinancingConventional,
		"conventional loan":       FinancingConventional,
		"fha insured":             FinancingFHA,
		"fha insured financing":   FinancingFHA,
		"fha loan":                FinancingFHA,
		"va guaranteed":           FinancingVA,
		"va guaranteed financing": FinancingVA,
		"va loan":                 FinancingVA,
		"usda guaranteed":         FinancingUSDA,
		"usda loan":               FinancingUSDA,
		"seller financing":        FinancingSeller,
		"seller financed":         FinancingSeller,
		"owner financing":         FinancingSeller,
		"loan assumption":         FinancingAssumption,
	}
	if ft, ok := synonyms[normalized]; ok {
		return ft, true
	}

	for _, ft := range allFinancingTypes {
		if normalized == string(ft) {
			return ft, true
		}
	}
	return FinancingOther, false
}
