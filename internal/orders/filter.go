package orders

import (
	"strings"
	"time"

	"github.com/kapilraj10/pos-storefront/pkg/backend"
	"github.com/kapilraj10/pos-storefront/pkg/errors"
)

// Period selects a date window for the admin order table. Windows are
// calendar-based and anchored on the reference time's location.
type Period string

const (
	PeriodToday  Period = "today"
	Period7Days  Period = "7d"
	Period15Days Period = "15d"
	PeriodMonth  Period = "month"
	PeriodAll    Period = "all"
)

// ParsePeriod maps a raw query value to a Period. An empty value means
// no date filtering.
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodToday:
		return PeriodToday, nil
	case Period7Days:
		return Period7Days, nil
	case Period15Days:
		return Period15Days, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", errors.New(errors.CodeValidation, "unknown period: "+raw)
	}
}

// Filters is the conjunction applied to a bulk-fetched order list.
// Zero values match everything, so an empty Filters is a no-op.
type Filters struct {
	Period        Period
	Status        string
	PaymentMethod string
	Query         string
}

// Apply returns the orders matching every set predicate, preserving the
// input order. The input slice is never mutated.
func (f Filters) Apply(now time.Time, records []backend.OrderRecord) []backend.OrderRecord {
	out := make([]backend.OrderRecord, 0, len(records))
	for _, record := range records {
		if f.matches(now, record) {
			out = append(out, record)
		}
	}
	return out
}

func (f Filters) matches(now time.Time, record backend.OrderRecord) bool {
	if !inPeriod(f.Period, now, record.CreatedAt) {
		return false
	}
	if status := strings.TrimSpace(f.Status); status != "" && !strings.EqualFold(status, record.Status) {
		return false
	}
	if method := strings.TrimSpace(f.PaymentMethod); method != "" && !strings.EqualFold(method, record.PaymentMethod) {
		return false
	}
	if query := strings.ToLower(strings.TrimSpace(f.Query)); query != "" {
		haystack := strings.ToLower(record.ID + " " + record.CustomerName + " " + record.Mobile)
		if !strings.Contains(haystack, query) {
			return false
		}
	}
	return true
}

func inPeriod(period Period, now, createdAt time.Time) bool {
	createdAt = createdAt.In(now.Location())
	switch period {
	case PeriodToday:
		y1, m1, d1 := now.Date()
		y2, m2, d2 := createdAt.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case Period7Days:
		return !createdAt.Before(startOfDay(now).AddDate(0, 0, -6)) && !createdAt.After(now)
	case Period15Days:
		return !createdAt.Before(startOfDay(now).AddDate(0, 0, -14)) && !createdAt.After(now)
	case PeriodMonth:
		y1, m1, _ := now.Date()
		y2, m2, _ := createdAt.Date()
		return y1 == y2 && m1 == m2
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
