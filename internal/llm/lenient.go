package llm

import (
	"encoding/json"
	"strings"
)

var allowedKeys = map[string]struct{}{"level": {}, "reasons": {}, "confidence": {}}

// SanitizeOptionalFields removes or normalizes optional fields that don't meet our stricter schema,
// so the overall document can still validate. The required level is only re-cased.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string

	for k := range m {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k)
		}
	}

	if v, ok := m["level"].(string); ok {
		m["level"] = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := m["confidence"]; ok {
		f, isNum := v.(float64)
		if !isNum || f < 0 || f > 1 {
			delete(m, "confidence")
			dropped = append(dropped, "confidence")
		}
	}

	if v, ok := m["reasons"]; ok {
		list, isList := v.([]any)
		if !isList {
			delete(m, "reasons")
			dropped = append(dropped, "reasons")
		} else {
			kept := make([]any, 0, len(list))
			for _, item := range list {
				s, isStr := item.(string)
				if s = strings.TrimSpace(s); isStr && s != "" {
					kept = append(kept, s)
				}
				if len(kept) == 10 {
					break
				}
			}
			if len(kept) != len(list) {
				dropped = append(dropped, "reasons[]")
			}
			m["reasons"] = kept
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
