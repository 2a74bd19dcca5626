package constants

import "strings"

// Severity is the ordered impact level of an issue.
type Severity string

// Stable values (these exact strings are part of the issue JSON contract).
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// AllSeverities lists severities from most to least severe.
func AllSeverities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// Rank returns 5 for critical down to 1 for info, and 0 for unknown values.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// MoreSevere reports whether s outranks other.
func (s Severity) MoreSevere(other Severity) bool {
	return s.Rank() > other.Rank()
}

// ParseSeverity accepts any casing and surrounding whitespace.
func ParseSeverity(in string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(in)))
	return s, s.Valid()
}
