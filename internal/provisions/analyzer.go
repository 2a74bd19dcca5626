// Package provisions grades the free-text special provisions of a contract.
package provisions

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
	"github.com/joseph-ayodele/contracts-checker/internal/llm"
)

// Source names who decided the final level.
const (
	SourceNone       = "none"
	SourceHeuristic  = "heuristic"
	SourceClassifier = "classifier"
)

// Assessment is the combined verdict for one record.
type Assessment struct {
	Level      constants.RiskLevel `json:"level"`
	Source     string              `json:"source"`
	Flags      []string            `json:"flags,omitempty"`
	Reasons    []string            `json:"reasons,omitempty"`
	Confidence float32             `json:"confidence,omitempty"`
}

type redFlag struct {
	name string
	re   *regexp.Regexp
}

// Textual patterns that always warrant at least caution.
var redFlags = []redFlag{
	{"assignment", regexp.MustCompile(`(?i)\b(assign(?:able|ment|s)?|and/or\s+assigns)\b`)},
	{"as_is", regexp.MustCompile(`(?i)\bas[\s-]+is\b`)},
	{"waiver", regexp.MustCompile(`(?i)\bwaiv(?:e|es|ed|er)\b`)},
	{"sale_contingency", regexp.MustCompile(`(?i)\bcontingent\s+(?:up)?on\b`)},
	{"backup_contract", regexp.MustCompile(`(?i)\bback[\s-]?up\s+(?:contract|offer)\b`)},
	{"seller_financing", regexp.MustCompile(`(?i)\b(?:owner|seller)\s+(?:will\s+)?financ`)},
	{"leaseback", regexp.MustCompile(`(?i)\b(?:lease[\s-]?back|occupy\s+(?:the\s+)?property\s+after\s+closing)\b`)},
	{"repair_credit", regexp.MustCompile(`(?i)\b(?:credit|concession)s?\b[^.]{0,40}\b(?:closing|repairs?)\b`)},
	{"liability_release", regexp.MustCompile(`(?i)\b(?:release|hold\s+harmless|indemnif)`)},
}

// Flags returns the names of red-flag patterns found in text, in pattern order.
func Flags(text string) []string {
	var out []string
	for _, f := range redFlags {
		if f.re.MatchString(text) {
			out = append(out, f.name)
		}
	}
	return out
}

type Analyzer struct {
	classifier llm.Classifier
	logger     *slog.Logger
}

// NewAnalyzer accepts a nil classifier, in which case only heuristics run.
func NewAnalyzer(classifier llm.Classifier, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{classifier: classifier, logger: logger}
}

// Analyze grades the record's special provisions. The classifier's level is
// never allowed below the heuristic floor: any red flag means at least
// caution. A classifier failure leaves the heuristic verdict in place.
func (a *Analyzer) Analyze(ctx context.Context, c entity.Contract) Assessment {
	text := strings.TrimSpace(c.SpecialProvisions)
	if text == "" {
		return Assessment{Level: constants.RiskOK, Source: SourceNone}
	}

	flags := Flags(text)
	floor := constants.RiskOK
	if len(flags) > 0 {
		floor = constants.RiskCaution
	}
	out := Assessment{Level: floor, Source: SourceHeuristic, Flags: flags}

	if a.classifier == nil {
		return out
	}
	res, _, err := a.classifier.ClassifyProvisions(ctx, llm.ProvisionsRequest{
		Text:          text,
		FormVersion:   c.FormVersion,
		PropertyState: c.Property.State,
	})
	if err != nil {
		a.logger.Warn("provisions.classifier_failed", "error", err, "fallback", floor)
		return out
	}
	level, ok := constants.ParseRiskLevel(res.Level)
	if !ok {
		a.logger.Warn("provisions.classifier_level_invalid", "level", res.Level, "fallback", floor)
		return out
	}

	out.Reasons = res.Reasons
	out.Confidence = res.Confidence
	out.Level = constants.MaxRisk(level, floor)
	if out.Level == level {
		out.Source = SourceClassifier
	}
	a.logger.Debug("provisions.analyzed", "classifier", level, "floor", floor, "final", out.Level)
	return out
}

// Issue converts an assessment into a compliance issue. ok yields none.
func (a Assessment) Issue() (entity.Issue, bool) {
	var sev constants.Severity
	switch a.Level {
	case constants.RiskCaution:
		sev = constants.SeverityMedium
	case constants.RiskHigh:
		sev = constants.SeverityHigh
	default:
		return entity.Issue{}, false
	}
	data := map[string]any{"level": string(a.Level), "source": a.Source}
	if len(a.Flags) > 0 {
		data["flags"] = a.Flags
	}
	if len(a.Reasons) > 0 {
		data["reasons"] = a.Reasons
	}
	msg := "Special provisions need review"
	if len(a.Reasons) > 0 {
		msg += ": " + a.Reasons[0]
	} else if len(a.Flags) > 0 {
		msg += " (" + strings.Join(a.Flags, ", ") + ")"
	}
	return entity.Issue{
		ID:       "provisions.risk",
		Message:  msg + ".",
		Severity: sev,
		Cite:     "Para. 11 (Special Provisions)",
		Data:     data,
	}, true
}
