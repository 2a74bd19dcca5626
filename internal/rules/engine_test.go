package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
)

func fires(id string) Rule {
	return Rule{
		ID: id, Description: id + " fired", Severity: constants.SeverityMedium, Cite: "Para. " + id,
		Predicate: func(entity.Contract) (bool, error) { return true, nil },
	}
}

func TestRunRulesFaultBarrier(t *testing.T) {
	rs := []Rule{
		fires("first"),
		{ID: "boom", Severity: constants.SeverityCritical, Predicate: func(entity.Contract) (bool, error) {
			var m map[string]int
			m["x"] = 1
			return true, nil
		}},
		{ID: "failing", Severity: constants.SeverityHigh, Predicate: func(entity.Contract) (bool, error) {
			return false, errors.New("lookup failed")
		}},
		{ID: "bad.build", Severity: constants.SeverityHigh,
			Predicate: func(entity.Contract) (bool, error) { return true, nil },
			Build:     func(entity.Contract) Override { panic("builder exploded") },
		},
		{ID: "quiet", Predicate: func(entity.Contract) (bool, error) { return false, nil }},
		{ID: "no.predicate"},
		fires("last"),
	}

	issues := RunRules(entity.Contract{}, rs)
	ids := make([]string, len(issues))
	for i, is := range issues {
		ids[i] = is.ID
	}
	assert.Equal(t, []string{"first", "boom.error", "failing.error", "bad.build.error", "no.predicate.error", "last"}, ids)

	for _, is := range issues[1:5] {
		assert.Equal(t, constants.SeverityLow, is.Severity, is.ID)
		assert.NotEmpty(t, is.Data["error"], is.ID)
	}
	assert.Contains(t, issues[2].Message, "lookup failed")
	assert.Contains(t, issues[3].Message, "builder exploded")
}

func TestRunRulesDeterministic(t *testing.T) {
	c := cleanContract()
	c.Buyers = nil
	c.ClosingDate = "2025-02-08"
	rs := ContractRules(testRegistry(), constants.ResaleFormCode)

	first := RunRules(c, rs)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, RunRules(c, rs))
	}
}

func TestOverrideMerge(t *testing.T) {
	empty := ""
	custom := "Para. 99"
	tests := []struct {
		name     string
		override Override
		want     entity.Issue
	}{
		{
			name:     "no override keeps base",
			override: Override{},
			want:     entity.Issue{ID: "r", Message: "base", Severity: constants.SeverityHigh, Cite: "Para. 3"},
		},
		{
			name:     "message and data replace, cite kept",
			override: Override{Message: "dynamic", Data: map[string]any{"k": 1}},
			want:     entity.Issue{ID: "r", Message: "dynamic", Severity: constants.SeverityHigh, Cite: "Para. 3", Data: map[string]any{"k": 1}},
		},
		{
			name:     "explicit cite replaces",
			override: Override{Cite: &custom, Severity: constants.SeverityLow},
			want:     entity.Issue{ID: "r", Message: "base", Severity: constants.SeverityLow, Cite: "Para. 99"},
		},
		{
			name:     "explicit empty cite clears",
			override: Override{Cite: &empty},
			want:     entity.Issue{ID: "r", Message: "base", Severity: constants.SeverityHigh},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.override
			r := Rule{
				ID: "r", Description: "base", Severity: constants.SeverityHigh, Cite: "Para. 3",
				Predicate: func(entity.Contract) (bool, error) { return true, nil },
				Build:     func(entity.Contract) Override { return o },
			}
			issues := RunRules(entity.Contract{}, []Rule{r})
			require.Len(t, issues, 1)
			assert.Equal(t, tt.want, issues[0])
		})
	}
}

func TestDebugRules(t *testing.T) {
	rs := []Rule{
		fires("a"),
		{ID: "b", Predicate: func(entity.Contract) (bool, error) { return false, errors.New("nope") }},
		{ID: "c",
			Predicate: func(entity.Contract) (bool, error) { return false, nil },
			Debug:     func(entity.Contract) map[string]any { return map[string]any{"seen": true} },
		},
	}
	traces := DebugRules(entity.Contract{}, rs)
	require.Len(t, traces, 3)
	assert.Equal(t, Trace{RuleID: "a", Fired: true}, traces[0])
	assert.Equal(t, "nope", traces[1].Error)
	assert.Equal(t, map[string]any{"seen": true}, traces[2].Debug)
}

func TestSortBySeverity(t *testing.T) {
	in := []entity.Issue{
		{ID: "info", Severity: constants.SeverityInfo},
		{ID: "high1", Severity: constants.SeverityHigh},
		{ID: "critical", Severity: constants.SeverityCritical},
		{ID: "high2", Severity: constants.SeverityHigh},
	}
	out := SortBySeverity(in)
	ids := []string{}
	for _, is := range out {
		ids = append(ids, is.ID)
	}
	assert.Equal(t, []string{"critical", "high1", "high2", "info"}, ids)
	assert.Equal(t, "info", in[0].ID, "input is not reordered")
}
