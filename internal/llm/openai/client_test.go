package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/llm"
)

func chatServer(t *testing.T, status int, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &captured)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestClient(url string, strict bool) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: url, Model: "test-model", StrictSchema: strict}, nil)
}

func TestClassifyProvisions(t *testing.T) {
	srv, captured := chatServer(t, http.StatusOK, `{"level":"caution","reasons":["Contingency not on an addendum"],"confidence":0.8}`)

	out, raw, err := newTestClient(srv.URL, false).ClassifyProvisions(context.Background(), llm.ProvisionsRequest{
		Text:          "Buyer's obligation is contingent on sale of Buyer's home.",
		PropertyState: "TX",
	})
	require.NoError(t, err)
	assert.Equal(t, "caution", out.Level)
	assert.Equal(t, []string{"Contingency not on an addendum"}, out.Reasons)
	assert.InDelta(t, 0.8, out.Confidence, 0.0001)
	assert.NotEmpty(t, raw)

	require.NotNil(t, *captured)
	assert.Equal(t, "test-model", (*captured)["model"])
	msgs, ok := (*captured)["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 3)
}

func TestClassifyProvisionsLenient(t *testing.T) {
	content := `{"level":" HIGH ","reasons":["Assignment allowed", "", 3],"confidence":7,"notes":"extra"}`

	t.Run("sanitized when lenient", func(t *testing.T) {
		srv, _ := chatServer(t, http.StatusOK, content)
		out, _, err := newTestClient(srv.URL, false).ClassifyProvisions(context.Background(), llm.ProvisionsRequest{Text: "x"})
		require.NoError(t, err)
		assert.Equal(t, "high", out.Level)
		assert.Equal(t, []string{"Assignment allowed"}, out.Reasons)
		assert.Zero(t, out.Confidence)
	})

	t.Run("rejected when strict", func(t *testing.T) {
		srv, _ := chatServer(t, http.StatusOK, content)
		_, _, err := newTestClient(srv.URL, true).ClassifyProvisions(context.Background(), llm.ProvisionsRequest{Text: "x"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrValidation))
	})
}

func TestClassifyProvisionsFailures(t *testing.T) {
	t.Run("unknown level", func(t *testing.T) {
		srv, _ := chatServer(t, http.StatusOK, `{"level":"maybe"}`)
		_, _, err := newTestClient(srv.URL, false).ClassifyProvisions(context.Background(), llm.ProvisionsRequest{Text: "x"})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv, _ := chatServer(t, http.StatusTooManyRequests, `{}`)
		_, _, err := newTestClient(srv.URL, false).ClassifyProvisions(context.Background(), llm.ProvisionsRequest{Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("not json content", func(t *testing.T) {
		srv, _ := chatServer(t, http.StatusOK, `I think it is fine`)
		_, _, err := newTestClient(srv.URL, false).ClassifyProvisions(context.Background(), llm.ProvisionsRequest{Text: "x"})
		require.Error(t, err)
	})
}
