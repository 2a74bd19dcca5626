package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/llm"
)

// ClassifyProvisions implements llm.Classifier using text-only chat/completions.
func (c *Client) ClassifyProvisions(ctx context.Context, req llm.ProvisionsRequest) (llm.ProvisionsAssessment, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.classify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	schema := llm.BuildProvisionsJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, httpErr := llm.PostClassification(ctx, c.http, llm.ClassifierCall{
		URL: endpoint, Payload: body, Headers: headers, RequestID: rid,
	}, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.classify.http_error",
			"req_id", rid, "status", status, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ProvisionsAssessment{}, raw, fmt.Errorf("openai: %w", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.classify.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ProvisionsAssessment{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.classify.no_choices",
			"req_id", rid, "elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ProvisionsAssessment{}, raw, fmt.Errorf("no choices in openai response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	content, err := c.validate(rid, schema, content)
	if err != nil {
		return llm.ProvisionsAssessment{}, content, err
	}

	var out llm.ProvisionsAssessment
	if err := json.Unmarshal(content, &out); err != nil {
		c.logger.Error("llm.classify.unmarshal_failed", "req_id", rid, "error", err)
		return llm.ProvisionsAssessment{}, content, fmt.Errorf("unmarshal assessment: %w", err)
	}

	c.logger.Info("llm.classify.ok",
		"req_id", rid,
		"level", out.Level,
		"reasons", len(out.Reasons),
		"confidence", out.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

// validate checks strictly first and, unless StrictSchema is set, retries
// once after sanitizing optional fields.
func (c *Client) validate(rid string, schema map[string]any, content []byte) ([]byte, error) {
	err := common.ValidateJSONAgainstSchema(schema, content)
	if err == nil {
		return content, nil
	}
	if c.cfg.StrictSchema {
		c.logger.Error("llm.classify.schema_validation_failed", "req_id", rid, "error", err, "content", string(content))
		return content, fmt.Errorf("schema validation failed: %w", err)
	}

	cleaned, dropped, sErr := llm.SanitizeOptionalFields(content)
	if sErr != nil {
		c.logger.Error("llm.classify.sanitize_failed", "req_id", rid, "error", sErr)
		return content, fmt.Errorf("sanitize failed: %w", sErr)
	}
	if vErr := common.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
		c.logger.Error("llm.classify.schema_validation_failed", "req_id", rid, "error", vErr, "content", string(cleaned))
		return cleaned, fmt.Errorf("schema validation failed: %w", vErr)
	}
	c.logger.Warn("llm.classify.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
	return cleaned, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
