package llm

import (
	"strings"
	"unicode/utf8"
)

// MaxPromptChars bounds the provisions text sent to the model.
const MaxPromptChars = 6000

// BuildSystemPrompt describes the grading scale and output rules.
func BuildSystemPrompt(req ProvisionsRequest) string {
	parts := []string{
		"You review the Special Provisions paragraph of a residential real estate purchase contract.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"Grade 'level' as: 'ok' for routine factual statements (items conveyed, repairs already agreed, dates);",
		"'caution' for business terms that belong in a promulgated addendum, contingencies, or waivers of statutory rights;",
		"'high' for terms that shift legal risk, such as assignment rights, disclaimers of disclosure duties, or practicing law by drafting bespoke remedies.",
		"List short 'reasons' (one sentence each, at most 10).",
		"Include 'confidence' between 0 and 1 if you can.",
		"Never output null. If a field is not present, omit it.",
	}
	if st := strings.TrimSpace(req.PropertyState); st != "" {
		parts = append(parts, "The property is in "+st+".")
	}
	if v := strings.TrimSpace(req.FormVersion); v != "" {
		parts = append(parts, "The contract form version is "+v+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt embeds the provisions text, truncated on a rune boundary.
func BuildUserPrompt(req ProvisionsRequest) string {
	var b strings.Builder
	b.WriteString("Special provisions text:\n")
	b.WriteString(truncateRunes(req.Text, MaxPromptChars))
	return b.String()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
