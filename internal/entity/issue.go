package entity

import "github.com/joseph-ayodele/contracts-checker/constants"

// Issue is one compliance finding. It is created by rule evaluation and
// never mutated afterwards.
type Issue struct {
	ID       string             `json:"id"`
	Message  string             `json:"message"`
	Severity constants.Severity `json:"severity"`
	Cite     string             `json:"cite,omitempty"`
	Data     map[string]any     `json:"data,omitempty"`
}
