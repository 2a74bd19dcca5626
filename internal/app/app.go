// Package app wires the pipeline from configuration for the binaries.
package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/extract"
	"github.com/joseph-ayodele/contracts-checker/internal/llm/openai"
	"github.com/joseph-ayodele/contracts-checker/internal/ocr"
	"github.com/joseph-ayodele/contracts-checker/internal/pipeline"
	"github.com/joseph-ayodele/contracts-checker/internal/provisions"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
	"github.com/joseph-ayodele/contracts-checker/internal/server"
)

// NewLogger returns the JSON logger the binaries share.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// Recognizer returns the OCR fallback, or nil when OCR is disabled.
func Recognizer(cfg common.OCRConfig, logger *slog.Logger) ocr.Recognizer {
	if !cfg.Enabled {
		logger.Info("OCR fallback disabled")
		return nil
	}
	return ocr.NewTesseract(ocr.Config{
		Pdftoppm:    cfg.Pdftoppm,
		Language:    cfg.Language,
		TessdataDir: cfg.TessdataDir,
		DPI:         cfg.DPI,
		MaxPages:    cfg.MaxPages,
	}, logger)
}

// Analyzer grades special provisions. Without an API key only the keyword
// heuristics run.
func Analyzer(cfg common.LLMConfig, logger *slog.Logger) *provisions.Analyzer {
	if cfg.APIKey == "" {
		logger.Warn("OpenAI API key not configured, provisions grading uses heuristics only")
		return provisions.NewAnalyzer(nil, logger)
	}
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}, logger)
	logger.Info("OpenAI client initialized", "model", cfg.Model)
	return provisions.NewAnalyzer(client, logger)
}

// Build loads the registry and returns a ready processor.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, registry.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	reg, err := server.LoadRegistry(ctx, cfg.Registry, logger)
	if err != nil {
		return nil, nil, err
	}
	opts := []pipeline.Option{pipeline.WithAnalyzer(Analyzer(cfg.LLM, logger))}
	if rec := Recognizer(cfg.OCR, logger); rec != nil {
		opts = append(opts, pipeline.WithRecognizer(rec))
	}
	proc := pipeline.NewProcessor(extract.NewPDFExtractor(logger), reg, logger, opts...)
	return proc, reg, nil
}
