package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNegativeAmount        = errors.New("negative amount")
	ErrMalformedGrouping     = errors.New("malformed thousands grouping")
	ErrMultipleDecimalPoints = errors.New("multiple decimal points")
	ErrNonNumeric            = errors.New("non-numeric amount")
)

// maxIntegerDigits keeps dollar amounts well inside int64 cents.
const maxIntegerDigits = 15

// negative reports a leading minus or accounting parentheses.
func negative(s string) bool {
	return strings.HasPrefix(s, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))
}

// ParseCurrencyToCents parses "$1,234.56" style amounts into integer cents.
// Fractions beyond the cent are rounded half-up without floating point.
func ParseCurrencyToCents(in string) (int64, error) {
	s := strings.TrimSpace(in)
	if negative(s) {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, in)
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if negative(s) {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, in)
	}
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, in)
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrMultipleDecimalPoints, in)
	}
	intPart := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if intPart == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, in)
	}
	if !digitsOr(intPart, ',') || !digitsOr(frac, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, in)
	}
	if strings.Contains(intPart, ",") {
		if !wellGrouped(intPart) {
			return 0, fmt.Errorf("%w: %q", ErrMalformedGrouping, in)
		}
		intPart = strings.ReplaceAll(intPart, ",", "")
	}
	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > maxIntegerDigits {
		return 0, fmt.Errorf("%w: %q is too large", ErrNonNumeric, in)
	}

	var dollars int64
	if intPart != "" {
		d, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNonNumeric, in)
		}
		dollars = d
	}

	padded := frac + "00"
	cents := int64(padded[0]-'0')*10 + int64(padded[1]-'0')
	if len(frac) > 2 && frac[2] >= '5' {
		cents++
	}
	return dollars*100 + cents, nil
}

// FormatCents renders cents as "1,234.56" so that parsing the result
// returns the same value.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s.%02d", sign, b.String(), cents%100)
}

func digitsOr(s string, extra byte) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (extra == 0 || c != extra) {
			return false
		}
	}
	return true
}

// wellGrouped checks "1,234,567": a leading group of 1-3 digits followed by
// groups of exactly three.
func wellGrouped(s string) bool {
	groups := strings.Split(s, ",")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
