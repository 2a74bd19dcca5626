// Package extract turns contract documents into raw, mode-agnostic records.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
	"github.com/joseph-ayodele/contracts-checker/internal/formversion"
	"github.com/joseph-ayodele/contracts-checker/internal/ocr"
	"github.com/joseph-ayodele/contracts-checker/internal/pdfdoc"
)

// FormReader lists the fillable fields of a document.
type FormReader interface {
	FormFields(doc []byte) ([]pdfdoc.Field, error)
}

// VersionDetector identifies the form and revision of a document.
type VersionDetector interface {
	Detect(doc []byte) formversion.Detection
}

// Options are supplied per call.
type Options struct {
	// Recognizer is required only when the document has no meaningful fields.
	Recognizer ocr.Recognizer
}

// Result is the raw record plus how it was obtained.
type Result struct {
	Raw    entity.RawContract
	Meta   entity.ExtractionMeta
	Fields entity.RawFieldMap
}

type Extractor struct {
	forms    FormReader
	detector VersionDetector
	fieldMap []FieldMapping
	patterns []Pattern
	logger   *slog.Logger
}

type ExtractorOption func(*Extractor)

// WithFieldMap swaps the structured field table for another document family.
func WithFieldMap(table []FieldMapping) ExtractorOption {
	return func(e *Extractor) { e.fieldMap = table }
}

// WithPatterns swaps the OCR regex battery for another document family.
func WithPatterns(patterns []Pattern) ExtractorOption {
	return func(e *Extractor) { e.patterns = patterns }
}

func NewExtractor(forms FormReader, detector VersionDetector, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		forms:    forms,
		detector: detector,
		fieldMap: DefaultFieldMap,
		patterns: DefaultPatterns,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewPDFExtractor wires the production PDF reader and version detector.
func NewPDFExtractor(logger *slog.Logger) *Extractor {
	r := pdfdoc.NewReader(logger)
	return NewExtractor(r, formversion.NewDetector(r, logger), logger)
}

// Extract reads structured fields when the document has meaningful ones and
// otherwise falls back to recognizing its text.
func (e *Extractor) Extract(ctx context.Context, doc []byte, opts Options) (Result, error) {
	start := time.Now()
	fields := e.readFields(doc)
	if len(meaningful(fields)) > 0 {
		res, err := e.structured(doc, fields)
		if err != nil {
			return Result{}, err
		}
		e.logger.Info("extract.ok", "mode", res.Meta.Mode, "fields", len(fields),
			"version", res.Meta.DetectedVersion, "duration_ms", time.Since(start).Milliseconds())
		return res, nil
	}

	if opts.Recognizer == nil {
		return Result{}, common.NewAppError(common.CodeConfig,
			"document has no fillable fields and no OCR recognizer was supplied", common.ErrConfiguration)
	}
	res, err := e.recognized(ctx, doc, opts.Recognizer)
	if err != nil {
		return Result{}, err
	}
	e.logger.Info("extract.ok", "mode", res.Meta.Mode,
		"version", res.Meta.DetectedVersion, "duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (e *Extractor) readFields(doc []byte) entity.RawFieldMap {
	if e.forms == nil {
		return nil
	}
	list, err := e.forms.FormFields(doc)
	if err != nil {
		e.logger.Warn("extract: form fields unreadable", "error", err)
		return nil
	}
	out := make(entity.RawFieldMap, len(list))
	for _, f := range list {
		out[f.Name] = f.Value
	}
	return out
}

func (e *Extractor) structured(doc []byte, fields entity.RawFieldMap) (Result, error) {
	tree := rawTree{}
	applyFieldMap(e.fieldMap, fields, tree)

	meta := entity.ExtractionMeta{Mode: constants.ModeStructured}
	if e.detector != nil {
		det := e.detector.Detect(doc)
		meta.DetectedVersion = det.Version
		meta.DetectedForm = det.Form
		if det.Version != "" && tree.blank("form_version") {
			tree.set("form_version", nil, det.Version)
		}
		if det.Known() {
			tree.set("form_code", nil, det.Form)
		}
	}

	raw, err := tree.decode()
	if err != nil {
		return Result{}, common.NewAppError(common.CodeExtraction, "structured extraction", err)
	}
	return Result{Raw: raw, Meta: meta, Fields: fields}, nil
}

func (e *Extractor) recognized(ctx context.Context, doc []byte, rec ocr.Recognizer) (Result, error) {
	out, err := rec.Recognize(ctx, doc)
	if err != nil {
		return Result{}, common.NewAppError(common.CodeExtraction, "text recognition", err)
	}
	text := ocr.Normalize(out.FullText)

	tree := rawTree{}
	hits := applyPatterns(e.patterns, text, tree)

	meta := entity.ExtractionMeta{Mode: constants.ModeOCRFallback}
	det := formversion.DetectText(text)
	if v, ok := formversion.DetectFromText(text); ok {
		meta.DetectedVersion = v
		tree.set("form_version", nil, v)
	}
	if det.Known() {
		meta.DetectedForm = det.Form
		tree.set("form_code", nil, det.Form)
	} else {
		meta.DetectedForm = constants.FormUnknown
	}
	e.logger.Debug("extract: pattern battery", "matched", hits, "chars", len(text))

	raw, err := tree.decode()
	if err != nil {
		return Result{}, common.NewAppError(common.CodeExtraction, "ocr extraction", fmt.Errorf("%d patterns matched: %w", len(hits), err))
	}
	return Result{Raw: raw, Meta: meta}, nil
}
