package async

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
	"github.com/joseph-ayodele/contracts-checker/internal/pipeline"
)

type fakeProcessor struct {
	calls atomic.Int32
}

func (f *fakeProcessor) Process(ctx context.Context, doc []byte, _ pipeline.Options) (pipeline.Report, error) {
	f.calls.Add(1)
	if string(doc) == "bad" {
		return pipeline.Report{}, errors.New("bad document")
	}
	return pipeline.Report{
		RequestID: common.RequestIDFromContext(ctx),
		Issues:    []entity.Issue{{ID: common.DocumentIDFromContext(ctx)}},
	}, nil
}

type collector struct {
	mu      sync.Mutex
	results map[string]Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r.Job.DocumentID] = r
}

func TestProcessorQueue(t *testing.T) {
	dir := t.TempDir()
	onDisk := filepath.Join(dir, "c.pdf")
	require.NoError(t, os.WriteFile(onDisk, []byte("from disk"), 0o600))

	proc := &fakeProcessor{}
	col := &collector{results: map[string]Result{}}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(1), WithResultHandler(col.add))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{DocumentID: "a", Doc: []byte("ok"), TraceID: "trace-a"}))
	require.NoError(t, q.Enqueue(ctx, Job{DocumentID: "b", Doc: []byte("bad")}))
	require.NoError(t, q.Enqueue(ctx, Job{DocumentID: "c", Path: onDisk}))
	require.NoError(t, q.Enqueue(ctx, Job{DocumentID: "d", Path: filepath.Join(dir, "missing.pdf")}))

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	require.Len(t, col.results, 4)
	assert.Equal(t, int32(3), proc.calls.Load(), "unreadable files never reach the processor")

	a := col.results["a"]
	require.NoError(t, a.Err)
	assert.Equal(t, "trace-a", a.Report.RequestID)
	assert.Equal(t, "a", a.Report.Issues[0].ID)

	assert.EqualError(t, col.results["b"].Err, "bad document")
	assert.NoError(t, col.results["c"].Err)
	assert.ErrorIs(t, col.results["d"].Err, os.ErrNotExist)

	assert.ErrorIs(t, q.Enqueue(ctx, Job{DocumentID: "late"}), ErrQueueClosed)
	q.Shutdown(ctx)
}
