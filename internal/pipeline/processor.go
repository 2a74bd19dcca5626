// Package pipeline runs extraction, normalization, and rule evaluation for
// one document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
	"github.com/joseph-ayodele/contracts-checker/internal/extract"
	"github.com/joseph-ayodele/contracts-checker/internal/normalize"
	"github.com/joseph-ayodele/contracts-checker/internal/ocr"
	"github.com/joseph-ayodele/contracts-checker/internal/provisions"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
	"github.com/joseph-ayodele/contracts-checker/internal/rules"
)

// Extractor is the first stage.
type Extractor interface {
	Extract(ctx context.Context, doc []byte, opts extract.Options) (extract.Result, error)
}

// Options are supplied per document.
type Options struct {
	// Recognizer overrides the processor's default recognizer.
	Recognizer ocr.Recognizer
	// Debug attaches per-rule traces to the report.
	Debug bool
}

// Normalized is the output of the first two stages.
type Normalized struct {
	Raw    entity.RawContract    `json:"raw"`
	Meta   entity.ExtractionMeta `json:"meta"`
	Record entity.Contract       `json:"record"`
}

// Report is the full result for one document.
type Report struct {
	RequestID  string                 `json:"request_id"`
	Meta       entity.ExtractionMeta  `json:"meta"`
	Record     entity.Contract        `json:"record"`
	Issues     []entity.Issue         `json:"issues"`
	Provisions *provisions.Assessment `json:"provisions,omitempty"`
	Traces     []rules.Trace          `json:"traces,omitempty"`
}

// Processor holds no per-document state and is safe for concurrent use.
type Processor struct {
	extractor  Extractor
	registry   registry.Registry
	recognizer ocr.Recognizer
	analyzer   *provisions.Analyzer
	logger     *slog.Logger
}

type Option func(*Processor)

// WithRecognizer sets the recognizer used when a call does not supply one.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(p *Processor) { p.recognizer = r }
}

// WithAnalyzer enables special provisions grading.
func WithAnalyzer(a *provisions.Analyzer) Option {
	return func(p *Processor) { p.analyzer = a }
}

func NewProcessor(ex Extractor, reg registry.Registry, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{extractor: ex, registry: reg, logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ExtractAndNormalize runs the extraction and normalization stages. A
// configuration or validation failure returns no partial record.
func (p *Processor) ExtractAndNormalize(ctx context.Context, doc []byte, opts Options) (Normalized, error) {
	rec := opts.Recognizer
	if rec == nil {
		rec = p.recognizer
	}
	res, err := p.extractor.Extract(ctx, doc, extract.Options{Recognizer: rec})
	if err != nil {
		return Normalized{}, fmt.Errorf("extract: %w", err)
	}
	record, err := normalize.Normalize(res.Raw)
	if err != nil {
		return Normalized{}, fmt.Errorf("normalize: %w", err)
	}
	return Normalized{Raw: res.Raw, Meta: res.Meta, Record: record}, nil
}

// Process runs every stage and returns the issues in rule order, followed
// by the provisions issue when one applies.
func (p *Processor) Process(ctx context.Context, doc []byte, opts Options) (Report, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	start := time.Now()
	log := p.logger.With("request_id", reqID)
	if docID := common.DocumentIDFromContext(ctx); docID != "" {
		log = log.With("document_id", docID)
	}

	n, err := p.ExtractAndNormalize(ctx, doc, opts)
	if err != nil {
		log.Error("pipeline.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Report{RequestID: reqID}, err
	}

	formCode := FormCodeFor(n.Record, n.Meta)
	ruleSet := rules.ContractRules(p.registry, formCode)
	issues := rules.RunRules(n.Record, ruleSet)

	report := Report{
		RequestID: reqID,
		Meta:      n.Meta,
		Record:    n.Record,
		Issues:    issues,
	}
	if opts.Debug {
		report.Traces = rules.DebugRules(n.Record, ruleSet)
	}
	if p.analyzer != nil {
		a := p.analyzer.Analyze(ctx, n.Record)
		report.Provisions = &a
		if is, ok := a.Issue(); ok {
			report.Issues = append(report.Issues, is)
		}
	}

	log.Info("pipeline.ok",
		"mode", n.Meta.Mode,
		"form_code", formCode,
		"form_version", n.Record.FormVersion,
		"issues", len(report.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// FormCodeFor picks the registry key for a record: the extracted code, then
// the detected form. Empty when neither is known, so no registry entry
// applies and the version is not judged against another form.
func FormCodeFor(c entity.Contract, meta entity.ExtractionMeta) string {
	if c.FormCode != "" {
		return c.FormCode
	}
	if meta.DetectedForm != "" && meta.DetectedForm != constants.FormUnknown {
		return meta.DetectedForm
	}
	return ""
}
