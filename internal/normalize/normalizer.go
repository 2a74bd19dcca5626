// Package normalize converts raw extracted strings into a validated
// entity.Contract.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
	"github.com/joseph-ayodele/contracts-checker/internal/entity"
)

// ValidationError aggregates every problem found in one record.
type ValidationError struct {
	Problems []common.ValidationError
}

func (e *ValidationError) Error() string {
	v := common.NewValidator().Merge(e.Problems...)
	return "contract validation failed: " + v.ErrorMessage()
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// Normalize coerces raw into a typed record. Either every field converts
// and the record passes structural validation, or a *ValidationError is
// returned and no record is.
func Normalize(raw entity.RawContract) (entity.Contract, error) {
	v := common.NewValidator()

	c := entity.Contract{
		Buyers:  names(raw.Buyers),
		Sellers: names(raw.Sellers),
		Property: entity.Address{
			Street: strings.TrimSpace(raw.Property.Street),
			City:   strings.TrimSpace(raw.Property.City),
			State:  strings.ToUpper(strings.TrimSpace(raw.Property.State)),
			Zip:    strings.TrimSpace(raw.Property.Zip),
		},
		EscrowAgent:       text(raw.EscrowAgent),
		TitleCompany:      text(raw.TitleCompany),
		SpecialProvisions: text(raw.SpecialProvisions),
		FormVersion:       text(raw.FormVersion),
		FormCode:          text(raw.FormCode),
	}

	if total := strings.TrimSpace(raw.Price.Total); total != "" {
		cents, err := ParseCurrencyToCents(total)
		if err != nil {
			v.Add("price.total", total, err.Error())
		}
		c.Price.TotalCents = cents
	}
	c.Price.CashCents = optionalCents(v, "price.cash", raw.Price.Cash)
	c.Price.FinancedCents = optionalCents(v, "price.financed", raw.Price.Financed)
	c.OptionFeeCents = optionalCents(v, "option_fee", raw.OptionFee)
	c.EarnestMoneyCents = optionalCents(v, "earnest_money", raw.EarnestMoney)
	c.OptionPeriodDays = optionalDays(v, "option_period_days", raw.OptionPeriodDays)
	c.EffectiveDate = optionalDate(v, "effective_date", raw.EffectiveDate)
	c.ClosingDate = optionalDate(v, "closing_date", raw.ClosingDate)

	ft, ok := constants.CanonicalizeFinancing(text(raw.FinancingType))
	if !ok {
		v.Add("financing_type", text(raw.FinancingType), "unrecognized financing type")
	}
	c.FinancingType = ft

	if v.HasErrors() {
		return entity.Contract{}, &ValidationError{Problems: v.Errors()}
	}
	problems, err := validateStructure(c)
	if err != nil {
		return entity.Contract{}, err
	}
	if len(problems) > 0 {
		return entity.Contract{}, &ValidationError{Problems: problems}
	}
	return c, nil
}

func validateStructure(c entity.Contract) ([]common.ValidationError, error) {
	schema, err := contractSchema()
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "contract schema", err)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal contract: %w", err)
	}
	return common.ValidateWithSchema(schema, b)
}

func names(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// present reports whether an optional raw value was found and is not blank.
func present(p *string) (string, bool) {
	s := text(p)
	return s, s != ""
}

func optionalCents(v *common.Validator, field string, p *string) *int64 {
	s, ok := present(p)
	if !ok {
		return nil
	}
	cents, err := ParseCurrencyToCents(s)
	if err != nil {
		v.Add(field, s, err.Error())
		return nil
	}
	return &cents
}

func optionalDays(v *common.Validator, field string, p *string) *int {
	s, ok := present(p)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		v.Add(field, s, "must be a whole number of days")
		return nil
	}
	return &n
}

func optionalDate(v *common.Validator, field string, p *string) string {
	s, ok := present(p)
	if !ok {
		return ""
	}
	iso, err := ParseUSDate(s)
	if err != nil {
		v.Add(field, s, err.Error())
		return ""
	}
	return iso
}
