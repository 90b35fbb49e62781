package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OrderNumber is the human-facing identifier, e.g. ORD-202403-007.
type OrderNumber string

const orderNumberPrefix = "ORD-"

var ErrInvalidOrderNumber = errors.New("order number is malformed")

// Period is the calendar month an order number sequence is scoped to.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the local calendar month containing t.
func PeriodOf(t time.Time) Period {
	local := t.In(time.Local)
	return Period{Year: local.Year(), Month: local.Month()}
}

// Key renders the period as YYYYMM.
func (p Period) Key() string {
	return fmt.Sprintf("%04d%02d", p.Year, int(p.Month))
}

// FormatOrderNumber renders ORD-YYYYMM-NNN; sequences above 999 keep all digits.
func FormatOrderNumber(p Period, seq int64) OrderNumber {
	return OrderNumber(fmt.Sprintf("%s%s-%03d", orderNumberPrefix, p.Key(), seq))
}

// ParseOrderNumber splits an order number back into its period and sequence.
func ParseOrderNumber(raw string) (Period, int64, error) {
	if !strings.HasPrefix(raw, orderNumberPrefix) {
		return Period{}, 0, ErrInvalidOrderNumber
	}
	parts := strings.SplitN(strings.TrimPrefix(raw, orderNumberPrefix), "-", 2)
	if len(parts) != 2 || len(parts[0]) != 6 || len(parts[1]) < 3 {
		return Period{}, 0, ErrInvalidOrderNumber
	}
	year, err := strconv.Atoi(parts[0][:4])
	if err != nil {
		return Period{}, 0, ErrInvalidOrderNumber
	}
	month, err := strconv.Atoi(parts[0][4:])
	if err != nil || month < 1 || month > 12 {
		return Period{}, 0, ErrInvalidOrderNumber
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || seq <= 0 {
		return Period{}, 0, ErrInvalidOrderNumber
	}
	return Period{Year: year, Month: time.Month(month)}, seq, nil
}

func (n OrderNumber) String() string { return string(n) }
