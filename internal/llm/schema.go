package llm

import "github.com/joseph-ayodele/contracts-checker/constants"

// BuildProvisionsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as an output constraint and also use it locally to validate.
func BuildProvisionsJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"level": map[string]any{"type": "string", "enum": constants.RiskLevelsAsStrings()},
			"reasons": map[string]any{
				"type":     "array",
				"maxItems": 10,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"level"},
	}
}
