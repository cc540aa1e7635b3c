package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kapilraj10/pos-storefront/pkg/backend"
)

var now = time.Date(2026, time.March, 18, 14, 30, 0, 0, time.UTC)

func order(id, customer, mobile, status, method string, createdAt time.Time) backend.OrderRecord {
	return backend.OrderRecord{
		ID:            id,
		CustomerName:  customer,
		Mobile:        mobile,
		Status:        status,
		PaymentMethod: method,
		CreatedAt:     createdAt,
	}
}

func sample() []backend.OrderRecord {
	return []backend.OrderRecord{
		order("ord-1", "Ram Thapa", "9841000001", backend.OrderStatusPending, "cash", now.Add(-2*time.Hour)),
		order("ord-2", "Sita Sharma", "9841000002", backend.OrderStatusCompleted, "wallet", now.AddDate(0, 0, -3)),
		order("ord-3", "Hari Gurung", "9841000003", backend.OrderStatusCancelled, "cash", now.AddDate(0, 0, -10)),
		order("ord-4", "Gita Rai", "9841000004", backend.OrderStatusCompleted, "wallet", now.AddDate(0, 0, -40)),
	}
}

func ids(records []backend.OrderRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestParsePeriod(t *testing.T) {
	for raw, want := range map[string]Period{
		"":      PeriodAll,
		"all":   PeriodAll,
		"today": PeriodToday,
		"7d":    Period7Days,
		" 15D ": Period15Days,
		"month": PeriodMonth,
	} {
		got, err := ParsePeriod(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParsePeriod("fortnight")
	require.Error(t, err)
}

func TestApplyEmptyFiltersReturnsEverything(t *testing.T) {
	got := Filters{}.Apply(now, sample())
	require.Equal(t, []string{"ord-1", "ord-2", "ord-3", "ord-4"}, ids(got))
}

func TestApplyPeriodWindows(t *testing.T) {
	cases := map[Period][]string{
		PeriodToday:  {"ord-1"},
		Period7Days:  {"ord-1", "ord-2"},
		Period15Days: {"ord-1", "ord-2", "ord-3"},
		PeriodMonth:  {"ord-1", "ord-2", "ord-3"},
		PeriodAll:    {"ord-1", "ord-2", "ord-3", "ord-4"},
	}
	for period, want := range cases {
		got := Filters{Period: period}.Apply(now, sample())
		require.Equal(t, want, ids(got), string(period))
	}
}

func TestApplyPeriodMonthExcludesSameMonthLastYear(t *testing.T) {
	records := []backend.OrderRecord{
		order("ord-old", "Ram", "9841", backend.OrderStatusCompleted, "cash", now.AddDate(-1, 0, 0)),
	}
	got := Filters{Period: PeriodMonth}.Apply(now, records)
	require.Empty(t, got)
}

func TestApplyStatusAndMethod(t *testing.T) {
	got := Filters{Status: "completed"}.Apply(now, sample())
	require.Equal(t, []string{"ord-2", "ord-4"}, ids(got))

	got = Filters{PaymentMethod: "WALLET"}.Apply(now, sample())
	require.Equal(t, []string{"ord-2", "ord-4"}, ids(got))

	got = Filters{Status: backend.OrderStatusCompleted, PaymentMethod: "cash"}.Apply(now, sample())
	require.Empty(t, got)
}

func TestApplyFreeTextMatchesIDCustomerAndPhone(t *testing.T) {
	got := Filters{Query: "ord-3"}.Apply(now, sample())
	require.Equal(t, []string{"ord-3"}, ids(got))

	got = Filters{Query: "sita"}.Apply(now, sample())
	require.Equal(t, []string{"ord-2"}, ids(got))

	got = Filters{Query: "9841000004"}.Apply(now, sample())
	require.Equal(t, []string{"ord-4"}, ids(got))

	got = Filters{Query: "nobody"}.Apply(now, sample())
	require.Empty(t, got)
}

func TestApplyConjunction(t *testing.T) {
	got := Filters{
		Period:        Period15Days,
		Status:        backend.OrderStatusCompleted,
		PaymentMethod: "wallet",
		Query:         "sharma",
	}.Apply(now, sample())
	require.Equal(t, []string{"ord-2"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := sample()
	Filters{Status: backend.OrderStatusPending}.Apply(now, records)
	require.Equal(t, []string{"ord-1", "ord-2", "ord-3", "ord-4"}, ids(records))
}
