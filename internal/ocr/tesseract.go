package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/contracts-checker/constants"
)

// ErrUnsupportedDocument is returned for bytes that are neither PDF nor a supported image.
var ErrUnsupportedDocument = errors.New("unsupported document format")

type Config struct {
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	Language    string // default "eng"
	TessdataDir string
	DPI         int // rasterization DPI for scanned PDFs, default 300
	MaxPages    int // 0 = no limit
	PSM         int // e.g., 6 is good for uniform block of text
}

// ImageRecognizer recognizes a single encoded image.
type ImageRecognizer func(img []byte) (string, error)

// Tesseract implements Recognizer with gosseract. PDFs are rasterized page by
// page with pdftoppm first.
type Tesseract struct {
	cfg            Config
	runner         Runner
	recognizeImage ImageRecognizer
	logger         *slog.Logger
}

type Option func(*Tesseract)

// WithRunner replaces the command runner used for rasterization.
func WithRunner(r Runner) Option {
	return func(t *Tesseract) {
		if r != nil {
			t.runner = r
		}
	}
}

// WithImageRecognizer replaces the per-image engine.
func WithImageRecognizer(fn ImageRecognizer) Option {
	return func(t *Tesseract) {
		if fn != nil {
			t.recognizeImage = fn
		}
	}
}

func NewTesseract(cfg Config, logger *slog.Logger, opts ...Option) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	t := &Tesseract{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	t.recognizeImage = t.gosseractImage
	for _, o := range opts {
		o(t)
	}
	return t
}

// Recognize picks a strategy based on the document's leading bytes.
func (t *Tesseract) Recognize(ctx context.Context, doc []byte) (Result, error) {
	start := time.Now()
	format := constants.SniffFormat(doc)
	t.logger.Debug("starting ocr", "format", format, "bytes", len(doc))

	var (
		res Result
		err error
	)
	switch format {
	case constants.PDF:
		res, err = t.recognizePDF(ctx, doc)
	case constants.IMAGE:
		var txt string
		txt, err = t.recognizeImage(doc)
		if err == nil {
			res = Result{FullText: txt, Pages: 1}
		}
	default:
		return Result{}, ErrUnsupportedDocument
	}
	if err != nil {
		t.logger.Error("ocr failed", "format", format, "error", err)
		return res, fmt.Errorf("ocr: %w", err)
	}
	res.FullText = Normalize(res.FullText)
	res.Confidence = HeuristicConfidence(res.FullText)
	res.Duration = time.Since(start)
	t.logger.Info("ocr.ok",
		"format", format,
		"pages", res.Pages,
		"chars", len(res.FullText),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (t *Tesseract) recognizePDF(ctx context.Context, doc []byte) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "cc-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			t.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(in, doc, 0o600); err != nil {
		return Result{}, err
	}
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", t.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (page-1.png, page-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if t.cfg.MaxPages > 0 && len(matches) > t.cfg.MaxPages {
		matches = matches[:t.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		data, err := os.ReadFile(img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		txt, err := t.recognizeImage(data)
		if err != nil {
			warns = append(warns, fmt.Sprintf("%s: %v", filepath.Base(img), err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return Result{FullText: b.String(), Pages: len(matches), Warnings: warns}, nil
}

func (t *Tesseract) gosseractImage(img []byte) (string, error) {
	c := gosseract.NewClient()
	defer func() {
		if err := c.Close(); err != nil {
			t.logger.Warn("closing tesseract client", "error", err)
		}
	}()
	if t.cfg.TessdataDir != "" {
		c.TessdataPrefix = t.cfg.TessdataDir
	}
	if err := c.SetLanguage(t.cfg.Language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if t.cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(t.cfg.PSM)); err != nil {
			return "", fmt.Errorf("set psm: %w", err)
		}
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
