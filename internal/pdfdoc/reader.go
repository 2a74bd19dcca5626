// Package pdfdoc reads interactive form fields and page text out of PDF bytes.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when the bytes cannot be opened as a PDF.
var ErrNotPDF = errors.New("not a readable pdf")

// Field is one terminal AcroForm field. Name is the fully qualified
// (dot-joined) field name.
type Field struct {
	Name  string
	Value string
}

// Reader is stateless; one value can serve concurrent callers.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// FormFields returns every terminal field of the document's AcroForm in
// document order. A PDF without a form yields an empty slice.
func (r *Reader) FormFields(doc []byte) (fields []Field, err error) {
	defer recoverParse(&err)

	pr, err := open(doc)
	if err != nil {
		return nil, err
	}
	root := pr.Trailer().Key("Root")
	list := root.Key("AcroForm").Key("Fields")
	if list.Kind() != pdf.Array {
		return nil, nil
	}
	for i := 0; i < list.Len(); i++ {
		fields = walkField(list.Index(i), "", fields, 0)
	}
	r.logger.Debug("pdf form fields read", "count", len(fields))
	return fields, nil
}

// PageText returns the plain text of all pages joined by form feeds.
func (r *Reader) PageText(doc []byte) (text string, err error) {
	defer recoverParse(&err)

	pr, err := open(doc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= pr.NumPage(); i++ {
		p := pr.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			r.logger.Warn("pdf page text failed", "page", i, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\f")
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

func open(doc []byte) (*pdf.Reader, error) {
	if len(doc) == 0 {
		return nil, ErrNotPDF
	}
	pr, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return pr, nil
}

// The pdf package panics on some malformed inputs.
func recoverParse(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("%w: %v", ErrNotPDF, rec)
	}
}

const maxFieldDepth = 32

func walkField(v pdf.Value, parent string, acc []Field, depth int) []Field {
	if depth > maxFieldDepth || v.Kind() != pdf.Dict {
		return acc
	}
	name := parent
	if t := v.Key("T"); t.Kind() == pdf.String {
		if parent == "" {
			name = t.Text()
		} else {
			name = parent + "." + t.Text()
		}
	}

	kids := v.Key("Kids")
	if kids.Kind() == pdf.Array && hasNamedKid(kids) {
		for i := 0; i < kids.Len(); i++ {
			acc = walkField(kids.Index(i), name, acc, depth+1)
		}
		return acc
	}
	if name == "" {
		return acc
	}
	return append(acc, Field{Name: name, Value: fieldValue(v.Key("V"))})
}

// Kids without /T are widget annotations of the same field, not sub-fields.
func hasNamedKid(kids pdf.Value) bool {
	for i := 0; i < kids.Len(); i++ {
		if kids.Index(i).Key("T").Kind() == pdf.String {
			return true
		}
	}
	return false
}

func fieldValue(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		name := v.Name()
		if name == "Off" {
			return ""
		}
		return name
	case pdf.Integer:
		return strconv.FormatInt(v.Int64(), 10)
	case pdf.Real:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case pdf.Bool:
		return strconv.FormatBool(v.Bool())
	case pdf.Array:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if s := fieldValue(v.Index(i)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
