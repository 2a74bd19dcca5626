// Package ocr defines the text-recognition capability the extractor falls back
// to when a document carries no usable form fields, plus a Tesseract-backed
// implementation and a fixed-text one.
package ocr

import (
	"context"
	"time"
)

// Result is the output of a recognition call.
type Result struct {
	FullText   string
	Pages      int
	Confidence float32
	Duration   time.Duration
	Warnings   []string
}

// Recognizer turns document bytes into text. Implementations must be safe
// for concurrent use; callers own timeout and retry policy.
type Recognizer interface {
	Recognize(ctx context.Context, doc []byte) (Result, error)
}

// StaticRecognizer returns the same text for every document. It serves tests
// and callers replaying a cached recognition result.
type StaticRecognizer struct {
	Text string
}

// NewStaticRecognizer returns a Recognizer that always yields text.
func NewStaticRecognizer(text string) StaticRecognizer {
	return StaticRecognizer{Text: text}
}

func (s StaticRecognizer) Recognize(ctx context.Context, _ []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		FullText:   s.Text,
		Pages:      1,
		Confidence: HeuristicConfidence(s.Text),
	}, nil
}
