package constants

import "strings"

// RiskLevel grades special provisions text. Levels are ordered
// ok < caution < high.
type RiskLevel string

const (
	RiskOK      RiskLevel = "ok"
	RiskCaution RiskLevel = "caution"
	RiskHigh    RiskLevel = "high"
)

var riskRank = map[RiskLevel]int{RiskOK: 1, RiskCaution: 2, RiskHigh: 3}

// RiskLevelsAsStrings is the JSON-schema enum for risk levels.
func RiskLevelsAsStrings() []string {
	return []string{string(RiskOK), string(RiskCaution), string(RiskHigh)}
}

// Rank is 0 for unknown levels.
func (r RiskLevel) Rank() int { return riskRank[r] }

func (r RiskLevel) Valid() bool { return r.Rank() > 0 }

// ParseRiskLevel accepts any casing and surrounding whitespace.
func ParseRiskLevel(in string) (RiskLevel, bool) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(in)))
	return r, r.Valid()
}

// MaxRisk returns the higher of two levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
