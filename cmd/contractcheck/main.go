package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/app"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
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
		registryPath  = flag.String("registry", "", "forms registry workbook (overrides REGISTRY_DRIVER/REGISTRY_SOURCE)")
		noOCR         = flag.Bool("no-ocr", false, "disable the OCR fallback")
		debug         = flag.Bool("debug", false, "attach per-rule traces and log at debug level")
		normalizeOnly = flag.Bool("normalize-only", false, "print the raw and normalized record and stop")
		failOn        = flag.String("fail-on", "", "exit 3 when an issue at or above this severity is raised")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: contractcheck [flags] <contract.pdf>\n")
		os.Exit(2)
	}
	var threshold constants.Severity
	if *failOn != "" {
		var ok bool
		if threshold, ok = constants.ParseSeverity(*failOn); !ok {
			printError("Error: invalid --fail-on severity %q\n", *failOn)
			os.Exit(2)
		}
	}

	logger := app.NewLogger(*debug)
	cfg := common.LoadConfig()
	if *registryPath != "" {
		cfg.Registry.Driver = "xlsx"
		cfg.Registry.Source = *registryPath
	}
	if *noOCR {
		cfg.OCR.Enabled = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	proc, _, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	path := flag.Arg(0)
	doc, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read document", "path", path, "error", err)
		os.Exit(1)
	}
	ctx = common.WithDocumentID(ctx, path)

	var out any
	var report pipeline.Report
	if *normalizeOnly {
		out, err = proc.ExtractAndNormalize(ctx, doc, pipeline.Options{})
	} else {
		report, err = proc.Process(ctx, doc, pipeline.Options{Debug: *debug})
		out = report
	}
	if err != nil {
		logger.Error("contract check failed", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	if threshold != "" {
		for _, is := range report.Issues {
			if is.Severity.Rank() >= threshold.Rank() {
				os.Exit(3)
			}
		}
	}
}
