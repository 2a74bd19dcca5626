package llm

import "context"

// ProvisionsRequest carries the special provisions text plus context that
// helps the model judge it.
type ProvisionsRequest struct {
	Text          string
	FormVersion   string
	PropertyState string
}

// ProvisionsAssessment is the normalized shape we want from the LLM.
type ProvisionsAssessment struct {
	Level      string   `json:"level"` // ok | caution | high
	Reasons    []string `json:"reasons,omitempty"`
	Confidence float32  `json:"confidence,omitempty"` // optional (0..1)
}

// Classifier is the interface the provisions analyzer depends on.
type Classifier interface {
	ClassifyProvisions(ctx context.Context, req ProvisionsRequest) (ProvisionsAssessment, []byte /*rawJSON*/, error)
}
