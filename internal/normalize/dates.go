package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrDateFormat  = errors.New("date must be MM/DD/YYYY")
	ErrDateInvalid = errors.New("not a calendar date")
)

var reUSDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// ISODate is the output layout of ParseUSDate.
const ISODate = "2006-01-02"

// ParseUSDate converts MM/DD/YYYY into yyyy-mm-dd.
func ParseUSDate(in string) (string, error) {
	m := reUSDate.FindStringSubmatch(strings.TrimSpace(in))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrDateFormat, in)
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return "", fmt.Errorf("%w: %q", ErrDateInvalid, in)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (02/30 -> 03/02); a real date survives unchanged.
	if t.Day() != day || int(t.Month()) != month {
		return "", fmt.Errorf("%w: %q", ErrDateInvalid, in)
	}
	return t.Format(ISODate), nil
}
