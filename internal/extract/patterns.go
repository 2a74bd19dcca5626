package extract

import (
	"regexp"
	"strings"
)

// Pattern populates one or more raw paths from recognized text. Each
// alternative is tried in order and the first match wins; capture group i
// feeds Paths[i]. A path already written by an earlier pattern is kept.
type Pattern struct {
	Name         string
	Paths        []string
	Alternatives []*regexp.Regexp
	// List splits the single capture into a name array.
	List bool
}

const money = `([0-9][0-9,]*(?:\.[0-9]{1,2})?)`
const usDate = `(\d{2}/\d{2}/\d{4})`

// DefaultPatterns targets the resale contract text layout.
var DefaultPatterns = []Pattern{
	{
		Name:  "sellers",
		Paths: []string{"sellers"},
		List:  true,
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?is)PARTIES:.*?contract\s+are\s+(.+?)\s*\(\s*Seller\s*\)`),
			regexp.MustCompile(`(?im)^\s*Sellers?\s*:\s*(.+)$`),
		},
	},
	{
		Name:  "buyers",
		Paths: []string{"buyers"},
		List:  true,
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?is)\(\s*Seller\s*\)\s*and\s+(.+?)\s*\(\s*Buyer\s*\)`),
			regexp.MustCompile(`(?im)^\s*Buyers?\s*:\s*(.+)$`),
		},
	},
	{
		Name:  "address",
		Paths: []string{"property.street", "property.city", "property.state", "property.zip"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)known\s+as\s+([^,\n]+),\s*([A-Za-z .'-]+?),\s*([A-Za-z]{2})\s+(\d{5}(?:-\d{4})?)`),
			regexp.MustCompile(`(?im)^\s*Property\s+Address\s*:\s*([^,\n]+),\s*([A-Za-z .'-]+?),\s*([A-Za-z]{2})\s+(\d{5}(?:-\d{4})?)`),
		},
	},
	{
		Name:  "city",
		Paths: []string{"property.city"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)City\s+of\s+([A-Za-z .'-]+?)\s*,`),
		},
	},
	{
		Name:  "cash portion",
		Paths: []string{"price.cash"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)cash\s+portion[^$\n]*\$\s*` + money),
			regexp.MustCompile(`(?im)^\s*Cash\s+Portion\s*:\s*\$?\s*` + money),
		},
	},
	{
		Name:  "financed portion",
		Paths: []string{"price.financed"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)sum\s+of\s+all\s+financing[^$\n]*\$\s*` + money),
			regexp.MustCompile(`(?im)^\s*Financed\s+Portion\s*:\s*\$?\s*` + money),
		},
	},
	{
		Name:  "sales price",
		Paths: []string{"price.total"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)sales\s+price\s*\(\s*sum\s+of\s+A\s+and\s+B\s*\)[^$\n]*\$\s*` + money),
			regexp.MustCompile(`(?im)^\s*(?:Total\s+)?Sales\s+Price\s*:\s*\$?\s*` + money),
		},
	},
	{
		Name:  "financing type",
		Paths: []string{"financing_type"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*Financing(?:\s+Type)?\s*:\s*(.+)$`),
			regexp.MustCompile(`(?i)\[\s*[xX✓]\s*\]\s*(Third\s+Party\s+Financing|Loan\s+Assumption|Seller\s+Financing|FHA\s+Insured|VA\s+Guaranteed|USDA\s+Guaranteed)`),
			regexp.MustCompile(`(?i)\b(all\s+cash)\b`),
		},
	},
	{
		Name:  "earnest money",
		Paths: []string{"earnest_money"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)earnest\s+money\s+of\s+\$\s*` + money),
			regexp.MustCompile(`(?im)^\s*Earnest\s+Money\s*:\s*\$?\s*` + money),
		},
	},
	{
		Name:  "option fee",
		Paths: []string{"option_fee"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Option\s+Fee\s+of\s+\$\s*` + money),
			regexp.MustCompile(`(?im)^\s*Option\s+Fee\s*:\s*\$?\s*` + money),
		},
	},
	{
		Name:  "option period",
		Paths: []string{"option_period_days"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)within\s+(\d{1,3})\s+days\s+after\s+the\s+effective\s+date`),
			regexp.MustCompile(`(?im)^\s*Option\s+Period(?:\s+Days)?\s*:\s*(\d{1,3})`),
		},
	},
	{
		Name:  "escrow agent",
		Paths: []string{"escrow_agent"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?is)deliver\b.{0,200}?\bto\s+([^,\n]+?),\s*as\s+escrow\s+agent`),
			regexp.MustCompile(`(?im)^\s*Escrow\s+Agent\s*:\s*(.+)$`),
		},
	},
	{
		Name:  "title company",
		Paths: []string{"title_company"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?is)issued\s+by\s+([^\n(]+?)\s*\(\s*Title\s+Company\s*\)`),
			regexp.MustCompile(`(?im)^\s*Title\s+Company\s*:\s*(.+)$`),
		},
	},
	{
		Name:  "special provisions",
		Paths: []string{"special_provisions"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?is)SPECIAL\s+PROVISIONS:?\s*(.+?)(?:\n\s*\d{1,2}\.\s+[A-Z]|\z)`),
		},
	},
	{
		Name:  "effective date",
		Paths: []string{"effective_date"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?im)^\s*Effective\s+Date\s*:\s*` + usDate),
			regexp.MustCompile(`(?i)` + usDate + `\s*\(\s*Effective\s+Date\s*\)`),
		},
	},
	{
		Name:  "closing date",
		Paths: []string{"closing_date"},
		Alternatives: []*regexp.Regexp{
			regexp.MustCompile(`(?i)closing\s+of\s+the\s+sale\s+will\s+be\s+on\s+or\s+before\s+` + usDate),
			regexp.MustCompile(`(?im)^\s*Closing\s+Date\s*:\s*` + usDate),
		},
	},
}

var reNameSplit = regexp.MustCompile(`(?i)\s*(?:;|&|\band\b)\s*`)

// applyPatterns runs the battery over text and returns the names of the
// patterns that matched.
func applyPatterns(patterns []Pattern, text string, tree rawTree) []string {
	var hits []string
	for _, p := range patterns {
		if allSet(tree, p.Paths) {
			continue
		}
		for _, re := range p.Alternatives {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if p.List {
				for i, name := range splitNames(m[1]) {
					tree.set(p.Paths[0], slot(i), name)
				}
			} else {
				for i, path := range p.Paths {
					if i+1 >= len(m) || tree.has(path) {
						continue
					}
					tree.set(path, nil, cleanCapture(m[i+1]))
				}
			}
			hits = append(hits, p.Name)
			break
		}
	}
	return hits
}

func allSet(tree rawTree, paths []string) bool {
	for _, p := range paths {
		if !tree.has(p) {
			return false
		}
	}
	return true
}

func splitNames(s string) []string {
	var out []string
	for _, part := range reNameSplit.Split(cleanCapture(s), -1) {
		if part = strings.Trim(part, " ,."); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cleanCapture(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
