// Package rules evaluates declarative compliance rules against a typed
// contract record.
package rules

import (
	"fmt"
	"sort"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
)

// Rule is plain data plus pure functions over the record.
type Rule struct {
	ID          string
	Description string
	Severity    constants.Severity
	Cite        string
	// Predicate reports whether the issue exists.
	Predicate func(c entity.Contract) (bool, error)
	// Build optionally supplies a dynamic message or payload.
	Build func(c entity.Contract) Override
	// Debug optionally explains the evaluation for diagnostics.
	Debug func(c entity.Contract) map[string]any
}

// Override replaces the matching fields of the base issue when non-zero.
// Cite is a pointer so that the rule's citation survives unless the
// override sets one explicitly.
type Override struct {
	Message  string
	Severity constants.Severity
	Cite     *string
	Data     map[string]any
}

// ErrorSuffix marks the synthetic issue emitted when a rule fails to evaluate.
const ErrorSuffix = ".error"

// RunRules evaluates rules in order. A rule that errors or panics yields a
// low-severity "<id>.error" issue and evaluation continues with the next
// rule. Output order follows rule order.
func RunRules(c entity.Contract, rs []Rule) []entity.Issue {
	issues := make([]entity.Issue, 0, len(rs))
	for _, r := range rs {
		issue, fired, err := evaluate(r, c)
		if err != nil {
			issues = append(issues, errorIssue(r, err))
			continue
		}
		if fired {
			issues = append(issues, issue)
		}
	}
	return issues
}

// Trace is the diagnostic record of one rule evaluation.
type Trace struct {
	RuleID string         `json:"rule_id"`
	Fired  bool           `json:"fired"`
	Error  string         `json:"error,omitempty"`
	Debug  map[string]any `json:"debug,omitempty"`
}

// DebugRules evaluates every rule and reports what each one saw.
func DebugRules(c entity.Contract, rs []Rule) []Trace {
	out := make([]Trace, 0, len(rs))
	for _, r := range rs {
		_, fired, err := evaluate(r, c)
		t := Trace{RuleID: r.ID, Fired: fired}
		if err != nil {
			t.Error = err.Error()
		}
		if r.Debug != nil {
			t.Debug = safeDebug(r, c)
		}
		out = append(out, t)
	}
	return out
}

// SortBySeverity returns a copy ordered most severe first; ties keep their
// evaluation order.
func SortBySeverity(issues []entity.Issue) []entity.Issue {
	out := append([]entity.Issue(nil), issues...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}

func evaluate(r Rule, c entity.Contract) (issue entity.Issue, fired bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			issue, fired, err = entity.Issue{}, false, fmt.Errorf("panic: %v", p)
		}
	}()
	if r.Predicate == nil {
		return entity.Issue{}, false, fmt.Errorf("rule %s has no predicate", r.ID)
	}
	fired, err = r.Predicate(c)
	if err != nil || !fired {
		return entity.Issue{}, false, err
	}
	issue = entity.Issue{
		ID:       r.ID,
		Message:  r.Description,
		Severity: r.Severity,
		Cite:     r.Cite,
	}
	if r.Build != nil {
		issue = merge(issue, r.Build(c))
	}
	return issue, true, nil
}

func merge(base entity.Issue, o Override) entity.Issue {
	if o.Message != "" {
		base.Message = o.Message
	}
	if o.Severity != "" {
		base.Severity = o.Severity
	}
	if o.Cite != nil {
		base.Cite = *o.Cite
	}
	if o.Data != nil {
		base.Data = o.Data
	}
	return base
}

func errorIssue(r Rule, err error) entity.Issue {
	return entity.Issue{
		ID:       r.ID + ErrorSuffix,
		Message:  fmt.Sprintf("Rule %q could not be evaluated: %v", r.ID, err),
		Severity: constants.SeverityLow,
		Data:     map[string]any{"error": err.Error()},
	}
}

func safeDebug(r Rule, c entity.Contract) (out map[string]any) {
	defer func() {
		if p := recover(); p != nil {
			out = map[string]any{"panic": fmt.Sprint(p)}
		}
	}()
	return r.Debug(c)
}
