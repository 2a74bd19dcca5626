package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"

	"github.com/joseph-ayodele/contracts-checker/internal/app"
	"github.com/joseph-ayodele/contracts-checker/internal/async"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/export"
	"github.com/joseph-ayodele/contracts-checker/internal/ingest"
	"github.com/joseph-ayodele/contracts-checker/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to check contracts from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		registry   = flag.String("registry", "", "forms registry workbook (overrides REGISTRY_DRIVER/REGISTRY_SOURCE)")
		workers    = flag.Int("workers", 0, "worker count (defaults to BATCH_WORKERS)")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		debug      = flag.Bool("debug", false, "log at debug level")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "contract-issues.xlsx")
	}

	logger := app.NewLogger(*debug)
	cfg := common.LoadConfig()
	if *registry != "" {
		cfg.Registry.Driver = "xlsx"
		cfg.Registry.Source = *registry
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	proc, _, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	docs, stats, err := ingest.NewScanner(logger).ScanDirectory(ctx, *dir, *skipHidden)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	var (
		mu      sync.Mutex
		results []export.DocumentResult
	)
	collect := func(r export.DocumentResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	q := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(cfg.Batch.QueueSize),
		async.WithProcessTimeout(cfg.Batch.ProcessTimeout),
		async.WithPipelineOptions(pipeline.Options{}),
		async.WithResultHandler(func(r async.Result) {
			collect(export.DocumentResult{Source: r.Job.Path, Report: r.Report, Err: r.Err})
		}),
	)

	for _, d := range docs {
		if d.Deduplicated {
			continue
		}
		if d.Err != "" {
			collect(export.DocumentResult{Source: d.Path, Err: fmt.Errorf("%s", d.Err)})
			continue
		}
		if err := q.Enqueue(ctx, async.Job{DocumentID: d.HashHex, Path: d.Path}); err != nil {
			logger.Error("failed to enqueue document", "path", d.Path, "error", err)
			collect(export.DocumentResult{Source: d.Path, Err: err})
		}
	}

	// drains the queue; an interrupt stops waiting
	q.Shutdown(ctx)

	mu.Lock()
	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	final := append([]export.DocumentResult(nil), results...)
	mu.Unlock()

	xlsx, err := export.NewService(logger).ExportIssuesXLSX(final)
	if err != nil {
		logger.Error("failed to export issues", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	failures := 0
	for _, r := range final {
		if r.Err != nil {
			failures++
		}
	}
	logger.Info("batch processing complete",
		"documents", len(final),
		"failures", failures,
		"highest_severity", export.HighestSeverity(final),
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents checked: %d\n", len(final))
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}
