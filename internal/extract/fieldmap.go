package extract

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/contracts-checker/internal/entity"
)

// FieldMapping binds one structured field name to a raw record path.
// Index, when set, addresses a slot of an array path.
type FieldMapping struct {
	Field string
	Path  string
	Index *int
}

func slot(i int) *int { return &i }

// DefaultFieldMap covers the fillable resale contract.
var DefaultFieldMap = []FieldMapping{
	{Field: "Seller Name 1", Path: "sellers", Index: slot(0)},
	{Field: "Seller Name 2", Path: "sellers", Index: slot(1)},
	{Field: "Buyer Name 1", Path: "buyers", Index: slot(0)},
	{Field: "Buyer Name 2", Path: "buyers", Index: slot(1)},
	{Field: "Property Street", Path: "property.street"},
	{Field: "Property City", Path: "property.city"},
	{Field: "Property State", Path: "property.state"},
	{Field: "Property Zip", Path: "property.zip"},
	{Field: "Cash Portion", Path: "price.cash"},
	{Field: "Financed Portion", Path: "price.financed"},
	{Field: "Sales Price", Path: "price.total"},
	{Field: "Financing Type", Path: "financing_type"},
	{Field: "Earnest Money", Path: "earnest_money"},
	{Field: "Escrow Agent", Path: "escrow_agent"},
	{Field: "Option Fee", Path: "option_fee"},
	{Field: "Option Period Days", Path: "option_period_days"},
	{Field: "Title Company", Path: "title_company"},
	{Field: "Closing Date", Path: "closing_date"},
	{Field: "Special Provisions", Path: "special_provisions"},
	{Field: "Effective Date", Path: "effective_date"},
	{Field: "Form Version", Path: "form_version"},
}

// IsSignatureField reports whether a field name denotes a signature or
// initials box, which never carries business data. Names are split on
// punctuation, digit runs and camelCase humps before matching, so
// Buyer_Initials, BuyerInitials and Sig1 all qualify while Initiative
// does not.
func IsSignatureField(name string) bool {
	words := nameWords(name)
	for i, w := range words {
		switch w {
		case "sig", "sigs", "signature", "signatures", "initial", "initials", "initialed", "signhere":
			return true
		case "sign":
			if i+1 < len(words) && words[i+1] == "here" {
				return true
			}
		}
		if strings.Contains(w, "signature") || strings.HasSuffix(w, "initials") {
			return true
		}
	}
	return false
}

// nameWords lowercases a field name and splits it into words.
func nameWords(name string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(name)
	for i, r := range rs {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case len(cur) > 0:
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// meaningful drops signature and initials fields.
func meaningful(fields entity.RawFieldMap) entity.RawFieldMap {
	out := make(entity.RawFieldMap, len(fields))
	for name, v := range fields {
		if IsSignatureField(name) {
			continue
		}
		out[name] = v
	}
	return out
}

// applyFieldMap interprets the mapping table against the field map. Fields
// are matched by full name first, then by their terminal name segment.
// Fields absent from the document are omitted; present-but-blank is kept.
func applyFieldMap(table []FieldMapping, fields entity.RawFieldMap, tree rawTree) int {
	byTerminal := make(map[string]string, len(fields))
	for name, v := range fields {
		if i := strings.LastIndex(name, "."); i >= 0 {
			byTerminal[name[i+1:]] = v
		}
	}
	mapped := 0
	for _, m := range table {
		v, ok := fields[m.Field]
		if !ok {
			v, ok = byTerminal[m.Field]
		}
		if !ok {
			continue
		}
		tree.set(m.Path, m.Index, strings.TrimSpace(v))
		mapped++
	}
	return mapped
}
