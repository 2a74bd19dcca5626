package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/suite"
)

type fakeRunner struct {
	pages int
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte(fmt.Sprintf("img%d", i)), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func echoImages(img []byte) (string, error) {
	return "text of " + string(img), nil
}

type OCRSuite struct {
	suite.Suite
	ctx context.Context
}

func TestOCRSuite(t *testing.T) {
	suite.Run(t, new(OCRSuite))
}

func (s *OCRSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *OCRSuite) TestStaticRecognizer() {
	s.Run("returns fixed text", func() {
		res, err := NewStaticRecognizer("Seller: Jane Roe").Recognize(s.ctx, []byte("anything"))
		s.Require().NoError(err)
		s.Equal("Seller: Jane Roe", res.FullText)
		s.Equal(1, res.Pages)
	})

	s.Run("honours cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		_, err := NewStaticRecognizer("x").Recognize(ctx, nil)
		s.ErrorIs(err, context.Canceled)
	})
}

func (s *OCRSuite) TestTesseractPDF() {
	s.Run("rasterizes and joins pages in order", func() {
		runner := &fakeRunner{pages: 2}
		t := NewTesseract(Config{DPI: 200}, nil, WithRunner(runner), WithImageRecognizer(echoImages))

		res, err := t.Recognize(s.ctx, []byte("%PDF-1.7 fake"))
		s.Require().NoError(err)
		s.Equal(2, res.Pages)
		s.Equal("text of img1\n\ntext of img2", res.FullText)
		s.Require().Len(runner.calls, 1)
		s.Equal("pdftoppm", runner.calls[0][0])
		s.Contains(runner.calls[0], "200")
	})

	s.Run("respects max pages", func() {
		runner := &fakeRunner{pages: 3}
		t := NewTesseract(Config{MaxPages: 1}, nil, WithRunner(runner), WithImageRecognizer(echoImages))

		res, err := t.Recognize(s.ctx, []byte("%PDF-1.4"))
		s.Require().NoError(err)
		s.Equal(1, res.Pages)
		s.Equal("text of img1", res.FullText)
	})

	s.Run("propagates rasterizer failure", func() {
		runner := &fakeRunner{err: errors.New("exit status 1")}
		t := NewTesseract(Config{}, nil, WithRunner(runner), WithImageRecognizer(echoImages))

		_, err := t.Recognize(s.ctx, []byte("%PDF-1.4"))
		s.Require().Error(err)
		s.Contains(err.Error(), "pdftoppm")
	})

	s.Run("fails when nothing was rendered", func() {
		t := NewTesseract(Config{}, nil, WithRunner(&fakeRunner{}), WithImageRecognizer(echoImages))

		_, err := t.Recognize(s.ctx, []byte("%PDF-1.4"))
		s.Require().Error(err)
	})
}

func (s *OCRSuite) TestTesseractImageAndUnknown() {
	t := NewTesseract(Config{}, nil, WithImageRecognizer(echoImages))

	res, err := t.Recognize(s.ctx, []byte("\x89PNG\r\n\x1a\nrest"))
	s.Require().NoError(err)
	s.Equal(1, res.Pages)
	s.Contains(res.FullText, "text of")

	_, err = t.Recognize(s.ctx, []byte("plain text"))
	s.ErrorIs(err, ErrUnsupportedDocument)
}

func (s *OCRSuite) TestNormalize() {
	in := "Sales Price:\t\tS 300,000.00\r\n\r\n\r\n\r\n-----\nBuyer:   John   Doe   \n"
	s.Equal("Sales Price: $300,000.00\n\nBuyer: John Doe", Normalize(in))
	s.Equal("", Normalize(""))
}

func (s *OCRSuite) TestHeuristicConfidence() {
	low := HeuristicConfidence("hello")
	high := HeuristicConfidence("TREC NO. 20-18 Seller and Buyer agree on 02/01/2025 for $300,000.00")
	s.InDelta(0.2, low, 0.0001)
	s.Greater(high, low)
	s.LessOrEqual(high, float32(1.0))
}

// TestTesseractEngine exercises the real engine when it is installed.
func TestTesseractEngine(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
	_, err := NewTesseract(Config{}, nil).Recognize(context.Background(), []byte("not an image"))
	if !errors.Is(err, ErrUnsupportedDocument) {
		t.Fatalf("expected ErrUnsupportedDocument, got %v", err)
	}
}
