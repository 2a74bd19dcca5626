package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxReplyBytes bounds how much of a classifier reply is buffered.
const maxReplyBytes = 4 << 20

// ClassifierCall is one JSON POST to a provisions classifier endpoint.
type ClassifierCall struct {
	URL     string
	Payload any
	Headers map[string]string
	// RequestID correlates transport logs with the caller's; generated when empty.
	RequestID string
}

// StatusError is returned when the classifier answers outside 2xx.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier endpoint answered %d", e.Status)
}

// PostClassification sends the call and returns the reply body and status.
// On a non-2xx answer the body is still returned alongside a *StatusError.
func PostClassification(ctx context.Context, client *http.Client, call ClassifierCall, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	rid := call.RequestID
	if rid == "" {
		rid = uuid.New().String()
	}
	log := logger.With("req_id", rid)
	start := time.Now()

	payload, err := json.Marshal(call.Payload)
	if err != nil {
		log.Error("provisions.classifier.encode_failed", "error", err)
		return nil, 0, fmt.Errorf("encode classifier payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, call.URL, bytes.NewReader(payload))
	if err != nil {
		log.Error("provisions.classifier.request_invalid", "error", err)
		return nil, 0, fmt.Errorf("classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range call.Headers {
		req.Header.Set(k, v)
	}

	log.Debug("provisions.classifier.dispatch", "url", call.URL, "payload_bytes", len(payload))
	resp, err := client.Do(req)
	if err != nil {
		log.Error("provisions.classifier.unreachable", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, fmt.Errorf("classifier unreachable: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warn("provisions.classifier.reply_close_failed", "error", cerr)
		}
	}()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		log.Error("provisions.classifier.reply_unreadable", "status", resp.StatusCode, "error", err)
		return nil, resp.StatusCode, fmt.Errorf("read classifier reply: %w", err)
	}
	log.Info("provisions.classifier.reply",
		"status", resp.StatusCode,
		"reply_bytes", len(reply),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return reply, resp.StatusCode, &StatusError{Status: resp.StatusCode}
	}
	return reply, resp.StatusCode, nil
}
