// Package formversion identifies which promulgated form a document is and
// which revision of it was used.
package formversion

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/contracts-checker/constants"
)

// Detection is a soft signal: an unknown form is a normal outcome.
type Detection struct {
	Form              string `json:"form"`
	Version           string `json:"version,omitempty"`
	EffectiveDateText string `json:"effective_date_text,omitempty"`
}

// Known reports whether a form family was identified.
func (d Detection) Known() bool {
	return d.Form != "" && d.Form != constants.FormUnknown
}

// TextReader extracts the plain text of every page of a document.
type TextReader interface {
	PageText(doc []byte) (string, error)
}

var (
	// Info-dictionary entries written by our own form templates and test fixtures.
	reMarkerCode      = regexp.MustCompile(`/FormCode\s*\(([^)]*)\)`)
	reMarkerVersion   = regexp.MustCompile(`/FormVersion\s*\(([^)]*)\)`)
	reMarkerEffective = regexp.MustCompile(`/FormEffectiveDate\s*\(([^)]*)\)`)

	reFormID = regexp.MustCompile(`(?i)\bTREC\s+NO\.?\s*(\d{1,2})\s*-\s*(\d{1,2})\b`)

	effectiveDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bform\s+effective\s*:?\s*(\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)\beffective\s+((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},\s*\d{4})`),
		regexp.MustCompile(`(?i)\bpromulgated\b[^\n]*?(\d{2}-\d{2}-\d{2,4})`),
		regexp.MustCompile(`(?m)^\s*(\d{2}-\d{2}-\d{4})\s*$`),
	}
)

type Detector struct {
	text   TextReader
	logger *slog.Logger
}

func NewDetector(text TextReader, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{text: text, logger: logger}
}

// Detect inspects document bytes. Embedded markers win; otherwise the page
// text is searched for the form identifier.
func (d *Detector) Detect(doc []byte) Detection {
	if det, ok := detectMarkers(doc); ok {
		d.logger.Debug("form version from markers", "form", det.Form, "version", det.Version)
		return det
	}
	if d.text == nil {
		return Detection{Form: constants.FormUnknown}
	}
	txt, err := d.text.PageText(doc)
	if err != nil {
		d.logger.Warn("form version: page text unavailable", "error", err)
		return Detection{Form: constants.FormUnknown}
	}
	return DetectText(txt)
}

// DetectText runs the text patterns over already-extracted text.
func DetectText(text string) Detection {
	m := reFormID.FindStringSubmatch(text)
	if m == nil {
		return Detection{Form: constants.FormUnknown}
	}
	det := Detection{
		Form:    "TREC-" + m[1],
		Version: m[1] + "-" + m[2],
	}
	for _, re := range effectiveDatePatterns {
		if em := re.FindStringSubmatch(text); em != nil {
			det.EffectiveDateText = strings.TrimSpace(em[1])
			break
		}
	}
	return det
}

// DetectFromText returns only the version string, as the OCR path needs.
func DetectFromText(text string) (string, bool) {
	det := DetectText(text)
	if det.Version == "" {
		return "", false
	}
	return det.Version, true
}

func detectMarkers(doc []byte) (Detection, bool) {
	vm := reMarkerVersion.FindSubmatch(doc)
	em := reMarkerEffective.FindSubmatch(doc)
	if vm == nil && em == nil {
		return Detection{}, false
	}
	det := Detection{Form: constants.FormUnknown}
	if cm := reMarkerCode.FindSubmatch(doc); cm != nil && strings.TrimSpace(string(cm[1])) != "" {
		det.Form = strings.TrimSpace(string(cm[1]))
	}
	if vm != nil {
		det.Version = strings.TrimSpace(string(vm[1]))
	}
	if em != nil {
		det.EffectiveDateText = strings.TrimSpace(string(em[1]))
	}
	if det.Form == constants.FormUnknown && det.Version != "" {
		if parts := strings.SplitN(det.Version, "-", 2); len(parts) == 2 {
			det.Form = "TREC-" + parts[0]
		}
	}
	return det, true
}
