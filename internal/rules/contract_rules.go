package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
	"github.com/joseph-ayodele/contracts-checker/internal/normalize"
	"github.com/joseph-ayodele/contracts-checker/internal/registry"
)

const (
	// PriceToleranceCents is the largest cash+financed vs total discrepancy
	// that is not reported.
	PriceToleranceCents int64 = 100
	// ProvisionsLengthThreshold is the special provisions size, in
	// characters, above which the text is flagged for review.
	ProvisionsLengthThreshold = 1500
)

const (
	citeParties    = "Para. 1 (Parties)"
	citeProperty   = "Para. 2 (Property)"
	citePrice      = "Para. 3 (Sales Price)"
	citeFinancing  = "Para. 4 (Financing)"
	citeEarnest    = "Para. 5 (Earnest Money and Termination Option)"
	citeClosing    = "Para. 9 (Closing)"
	citeProvisions = "Para. 11 (Special Provisions)"
	citeExecution  = "Para. 23 (Execution)"
)

var reZip = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

func always(pred func(c entity.Contract) bool) func(entity.Contract) (bool, error) {
	return func(c entity.Contract) (bool, error) { return pred(c), nil }
}

// ContractRules returns the ordered rule set for a resale contract. The
// expected form version is resolved from reg once, here.
func ContractRules(reg registry.Registry, formCode string) []Rule {
	entry, hasEntry := reg.Lookup(formCode)
	expected := entry.ExpectedVersion

	rs := []Rule{
		{
			ID: "parties.buyers.missing", Severity: constants.SeverityCritical, Cite: citeParties,
			Description: "No buyer is named.",
			Predicate:   always(func(c entity.Contract) bool { return len(c.Buyers) == 0 }),
		},
		{
			ID: "parties.sellers.missing", Severity: constants.SeverityCritical, Cite: citeParties,
			Description: "No seller is named.",
			Predicate:   always(func(c entity.Contract) bool { return len(c.Sellers) == 0 }),
		},
		addressRule("property.street.missing", "Property street address is missing.", func(a entity.Address) string { return a.Street }),
		addressRule("property.city.missing", "Property city is missing.", func(a entity.Address) string { return a.City }),
		addressRule("property.state.missing", "Property state is missing.", func(a entity.Address) string { return a.State }),
		addressRule("property.zip.missing", "Property ZIP code is missing.", func(a entity.Address) string { return a.Zip }),
		{
			ID: "property.zip.format", Severity: constants.SeverityLow, Cite: citeProperty,
			Description: "Property ZIP code is not in 12345 or 12345-6789 form.",
			Predicate: always(func(c entity.Contract) bool {
				z := strings.TrimSpace(c.Property.Zip)
				return z != "" && !reZip.MatchString(z)
			}),
			Build: func(c entity.Contract) Override {
				return Override{Data: map[string]any{"zip": c.Property.Zip}}
			},
		},
		{
			ID: "property.state.case", Severity: constants.SeverityInfo, Cite: citeProperty,
			Description: "State abbreviation is not uppercase.",
			Predicate: always(func(c entity.Contract) bool {
				s := strings.TrimSpace(c.Property.State)
				return s != "" && s != strings.ToUpper(s)
			}),
		},
		{
			ID: "price.total.missing", Severity: constants.SeverityCritical, Cite: citePrice,
			Description: "Sales price is missing or zero.",
			Predicate:   always(func(c entity.Contract) bool { return c.Price.TotalCents == 0 }),
		},
		{
			ID: "price.negative", Severity: constants.SeverityCritical, Cite: citePrice,
			Description: "A monetary amount is negative.",
			Predicate:   always(func(c entity.Contract) bool { return len(negativeAmounts(c)) > 0 }),
			Build: func(c entity.Contract) Override {
				fields := negativeAmounts(c)
				return Override{
					Message: fmt.Sprintf("Negative amounts: %s.", strings.Join(fields, ", ")),
					Data:    map[string]any{"fields": fields},
				}
			},
		},
		{
			ID: "price.mismatch", Severity: constants.SeverityHigh, Cite: citePrice,
			Description: "Cash and financed portions do not add up to the sales price.",
			Predicate: always(func(c entity.Contract) bool {
				if !hasPortions(c) || c.Price.TotalCents <= 0 {
					return false
				}
				return abs(portionSum(c)-c.Price.TotalCents) > PriceToleranceCents
			}),
			Build: func(c entity.Contract) Override {
				sum := portionSum(c)
				return Override{
					Message: fmt.Sprintf("Cash plus financed portions total $%s but the sales price is $%s.",
						normalize.FormatCents(sum), normalize.FormatCents(c.Price.TotalCents)),
					Data: map[string]any{
						"total_cents":     c.Price.TotalCents,
						"sum_cents":       sum,
						"difference":      sum - c.Price.TotalCents,
						"tolerance_cents": PriceToleranceCents,
					},
				}
			},
			Debug: func(c entity.Contract) map[string]any {
				return map[string]any{"has_portions": hasPortions(c), "sum_cents": portionSum(c), "total_cents": c.Price.TotalCents}
			},
		},
		{
			ID: "price.financed_exceeds_total", Severity: constants.SeverityHigh, Cite: citePrice,
			Description: "Financed portion exceeds the sales price.",
			Predicate: always(func(c entity.Contract) bool {
				return c.Price.FinancedCents != nil && c.Price.TotalCents > 0 && *c.Price.FinancedCents > c.Price.TotalCents
			}),
		},
		{
			ID: "financing.type.missing", Severity: constants.SeverityMedium, Cite: citeFinancing,
			Description: "Financing type is not specified.",
			Predicate: always(func(c entity.Contract) bool {
				return c.FinancingType == "" || c.FinancingType == constants.FinancingUnspecified
			}),
		},
		{
			ID: "financing.cash_with_loan", Severity: constants.SeverityHigh, Cite: citeFinancing,
			Description: "Cash transaction lists a financed portion.",
			Predicate: always(func(c entity.Contract) bool {
				return c.FinancingType == constants.FinancingCash && c.Price.FinancedCents != nil && *c.Price.FinancedCents > 0
			}),
			Build: func(c entity.Contract) Override {
				return Override{Data: map[string]any{"financed_cents": *c.Price.FinancedCents}}
			},
		},
		{
			ID: "financing.missing", Severity: constants.SeverityHigh, Cite: citeFinancing,
			Description: "Financed transaction has no financed portion.",
			Predicate: always(func(c entity.Contract) bool {
				financed := c.FinancingType != "" && c.FinancingType.IsFinanced()
				return financed && (c.Price.FinancedCents == nil || *c.Price.FinancedCents == 0)
			}),
			Build: func(c entity.Contract) Override {
				return Override{
					Message: fmt.Sprintf("Financing type is %q but no financed portion is stated.", c.FinancingType),
					Data:    map[string]any{"financing_type": string(c.FinancingType)},
				}
			},
		},
		{
			ID: "dates.effective.missing", Severity: constants.SeverityMedium, Cite: citeExecution,
			Description: "Effective date is missing.",
			Predicate:   always(func(c entity.Contract) bool { return c.EffectiveDate == "" }),
		},
		{
			ID: "dates.closing.missing", Severity: constants.SeverityMedium, Cite: citeClosing,
			Description: "Closing date is missing.",
			Predicate:   always(func(c entity.Contract) bool { return c.ClosingDate == "" }),
		},
		{
			ID: "dates.order", Severity: constants.SeverityHigh, Cite: citeClosing,
			Description: "Closing date is before the effective date.",
			Predicate: func(c entity.Contract) (bool, error) {
				if c.EffectiveDate == "" || c.ClosingDate == "" {
					return false, nil
				}
				eff, err := parseISO(c.EffectiveDate)
				if err != nil {
					return false, err
				}
				closing, err := parseISO(c.ClosingDate)
				if err != nil {
					return false, err
				}
				return eff.After(closing), nil
			},
			Build: func(c entity.Contract) Override {
				return Override{
					Message: fmt.Sprintf("Closing date %s is before the effective date %s.", c.ClosingDate, c.EffectiveDate),
					Data:    map[string]any{"effective_date": c.EffectiveDate, "closing_date": c.ClosingDate},
				}
			},
		},
		{
			ID: "option.period_after_closing", Severity: constants.SeverityMedium, Cite: citeEarnest,
			Description: "Option period does not end before closing.",
			Predicate: func(c entity.Contract) (bool, error) {
				end, ok, err := optionEnd(c)
				if err != nil || !ok {
					return false, err
				}
				closing, err := parseISO(c.ClosingDate)
				if err != nil {
					return false, err
				}
				return !end.Before(closing), nil
			},
			Build: func(c entity.Contract) Override {
				end, _, _ := optionEnd(c)
				return Override{
					Message: fmt.Sprintf("Option period of %d days ends %s, which is not before closing on %s.",
						*c.OptionPeriodDays, end.Format(time.DateOnly), c.ClosingDate),
					Data: map[string]any{"option_end": end.Format(time.DateOnly), "closing_date": c.ClosingDate},
				}
			},
		},
		{
			ID: "option.fee.missing", Severity: constants.SeverityLow, Cite: citeEarnest,
			Description: "Option period is granted without an option fee.",
			Predicate: always(func(c entity.Contract) bool {
				return c.OptionPeriodDays != nil && *c.OptionPeriodDays > 0 && c.OptionFeeCents == nil
			}),
		},
		{
			ID: "closing.weekend", Severity: constants.SeverityLow, Cite: citeClosing,
			Description: "Closing date falls on a weekend.",
			Predicate: func(c entity.Contract) (bool, error) {
				if c.ClosingDate == "" {
					return false, nil
				}
				d, err := parseISO(c.ClosingDate)
				if err != nil {
					return false, err
				}
				return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday, nil
			},
			Build: func(c entity.Contract) Override {
				d, _ := parseISO(c.ClosingDate)
				return Override{
					Message: fmt.Sprintf("Closing date %s is a %s.", c.ClosingDate, d.Weekday()),
					Data:    map[string]any{"weekday": d.Weekday().String()},
				}
			},
		},
		{
			ID: "earnest.missing", Severity: constants.SeverityMedium, Cite: citeEarnest,
			Description: "Earnest money is missing.",
			Predicate: always(func(c entity.Contract) bool {
				return c.EarnestMoneyCents == nil || *c.EarnestMoneyCents == 0
			}),
		},
		{
			ID: "earnest.exceeds_total", Severity: constants.SeverityHigh, Cite: citeEarnest,
			Description: "Earnest money exceeds the sales price.",
			Predicate: always(func(c entity.Contract) bool {
				return c.EarnestMoneyCents != nil && c.Price.TotalCents > 0 && *c.EarnestMoneyCents > c.Price.TotalCents
			}),
		},
		{
			ID: "escrow.agent.missing", Severity: constants.SeverityLow, Cite: citeEarnest,
			Description: "Escrow agent is not named.",
			Predicate:   always(func(c entity.Contract) bool { return strings.TrimSpace(c.EscrowAgent) == "" }),
		},
		{
			ID: "provisions.length", Severity: constants.SeverityInfo, Cite: citeProvisions,
			Description: "Special provisions are unusually long; review for business details that belong in an addendum.",
			Predicate: always(func(c entity.Contract) bool {
				return utf8.RuneCountInString(c.SpecialProvisions) > ProvisionsLengthThreshold
			}),
			Build: func(c entity.Contract) Override {
				return Override{Data: map[string]any{
					"length":    utf8.RuneCountInString(c.SpecialProvisions),
					"threshold": ProvisionsLengthThreshold,
				}}
			},
		},
		{
			ID: "parties.overlap", Severity: constants.SeverityMedium, Cite: citeParties,
			Description: "The same name appears as both buyer and seller.",
			Predicate:   always(func(c entity.Contract) bool { return len(overlap(c.Buyers, c.Sellers)) > 0 }),
			Build: func(c entity.Contract) Override {
				names := overlap(c.Buyers, c.Sellers)
				return Override{
					Message: fmt.Sprintf("Named as both buyer and seller: %s.", strings.Join(names, ", ")),
					Data:    map[string]any{"names": names},
				}
			},
		},
		{
			ID: "form.outdated", Severity: constants.SeverityMedium,
			Description: "Contract was prepared on an outdated form version.",
			Predicate: always(func(c entity.Contract) bool {
				return hasEntry && c.FormVersion != "" && c.FormVersion != expected
			}),
			Build: func(c entity.Contract) Override {
				data := map[string]any{"found": c.FormVersion, "expected": expected, "form_code": formCode}
				if entry.EffectiveDate != nil {
					data["expected_effective_date"] = *entry.EffectiveDate
				}
				return Override{
					Message: fmt.Sprintf("Form version %s is outdated; the current version is %s.", c.FormVersion, expected),
					Data:    data,
				}
			},
			Debug: func(c entity.Contract) map[string]any {
				return map[string]any{"form_code": formCode, "registry_entry": hasEntry, "expected": expected, "found": c.FormVersion}
			},
		},
		{
			ID: "form.version.missing", Severity: constants.SeverityInfo,
			Description: "Form version could not be determined.",
			Predicate:   always(func(c entity.Contract) bool { return c.FormVersion == "" }),
		},
	}
	return rs
}

func addressRule(id, description string, get func(entity.Address) string) Rule {
	return Rule{
		ID: id, Severity: constants.SeverityHigh, Cite: citeProperty,
		Description: description,
		Predicate: always(func(c entity.Contract) bool {
			return strings.TrimSpace(get(c.Property)) == ""
		}),
	}
}

func negativeAmounts(c entity.Contract) []string {
	var out []string
	check := func(name string, v *int64) {
		if v != nil && *v < 0 {
			out = append(out, name)
		}
	}
	total := c.Price.TotalCents
	check("price.total", &total)
	check("price.cash", c.Price.CashCents)
	check("price.financed", c.Price.FinancedCents)
	check("option_fee", c.OptionFeeCents)
	check("earnest_money", c.EarnestMoneyCents)
	return out
}

func hasPortions(c entity.Contract) bool {
	return c.Price.CashCents != nil || c.Price.FinancedCents != nil
}

func portionSum(c entity.Contract) int64 {
	var sum int64
	if c.Price.CashCents != nil {
		sum += *c.Price.CashCents
	}
	if c.Price.FinancedCents != nil {
		sum += *c.Price.FinancedCents
	}
	return sum
}

func optionEnd(c entity.Contract) (time.Time, bool, error) {
	if c.EffectiveDate == "" || c.ClosingDate == "" || c.OptionPeriodDays == nil {
		return time.Time{}, false, nil
	}
	eff, err := parseISO(c.EffectiveDate)
	if err != nil {
		return time.Time{}, false, err
	}
	return eff.AddDate(0, 0, *c.OptionPeriodDays), true, nil
}

func overlap(buyers, sellers []string) []string {
	seen := make(map[string]struct{}, len(sellers))
	for _, s := range sellers {
		seen[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	var out []string
	for _, b := range buyers {
		if _, ok := seen[strings.ToLower(strings.TrimSpace(b))]; ok {
			out = append(out, b)
		}
	}
	sort.Strings(out)
	return out
}

func parseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not yyyy-mm-dd: %w", s, err)
	}
	return t, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
