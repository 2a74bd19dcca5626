// Package registry holds the expected current version of each promulgated
// form, keyed by form code.
package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is read-only to the pipeline.
type Entry struct {
	ExpectedVersion string  `json:"expected_version"`
	EffectiveDate   *string `json:"effective_date,omitempty"`
}

// Row is one record of an external registry source.
type Row struct {
	FormCode        string
	ExpectedVersion string
	EffectiveDate   *string
}

// Registry maps a form code to its expected version. The zero value is an
// empty registry.
type Registry map[string]Entry

// FromRows builds a registry. Codes and versions are trimmed; a blank code or
// version, or the same code twice, is rejected.
func FromRows(rows []Row) (Registry, error) {
	reg := make(Registry, len(rows))
	for i, r := range rows {
		code := strings.TrimSpace(r.FormCode)
		version := strings.TrimSpace(r.ExpectedVersion)
		if code == "" {
			return nil, fmt.Errorf("row %d: form code is blank", i+1)
		}
		if version == "" {
			return nil, fmt.Errorf("row %d (%s): expected version is blank", i+1, code)
		}
		if _, dup := reg[code]; dup {
			return nil, fmt.Errorf("row %d: duplicate form code %q", i+1, code)
		}
		e := Entry{ExpectedVersion: version}
		if r.EffectiveDate != nil {
			if d := strings.TrimSpace(*r.EffectiveDate); d != "" {
				e.EffectiveDate = &d
			}
		}
		reg[code] = e
	}
	return reg, nil
}

// Lookup is safe on a nil registry.
func (r Registry) Lookup(formCode string) (Entry, bool) {
	e, ok := r[strings.TrimSpace(formCode)]
	return e, ok
}

// Rows returns the registry as rows ordered by form code.
func (r Registry) Rows() []Row {
	out := make([]Row, 0, len(r))
	for code, e := range r {
		out = append(out, Row{FormCode: code, ExpectedVersion: e.ExpectedVersion, EffectiveDate: e.EffectiveDate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FormCode < out[j].FormCode })
	return out
}
