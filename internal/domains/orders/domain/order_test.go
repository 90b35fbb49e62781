package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleCustomer() Customer {
	return Customer{ID: "u-1", Name: "Lan", Email: "lan@example.com", Phone: "0900"}
}

func TestNewOrder_DefaultsToPendingUnpaidCash(t *testing.T) {
	order, err := NewOrder("o-1", sampleCustomer(), []Item{{PetID: "p1", Name: "Milo", Price: 100}}, 100, "", "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentUnpaid, order.PaymentStatus)
	require.Equal(t, PaymentCash, order.PaymentMethod)
}

func TestNewOrder_RejectsInvalidInput(t *testing.T) {
	items := []Item{{PetID: "p1", Name: "Milo", Price: 100}}
	cases := []struct {
		name   string
		items  []Item
		total  float64
		method PaymentMethod
		want   error
	}{
		{name: "no items", items: nil, total: 10, want: ErrNoItems},
		{name: "zero total", items: items, total: 0, want: ErrInvalidTotal},
		{name: "negative total", items: items, total: -5, want: ErrInvalidTotal},
		{name: "duplicate pet", items: append(items, Item{PetID: "p1", Name: "Milo", Price: 1}), total: 101, want: ErrDuplicatePet},
		{name: "missing pet id", items: []Item{{Name: "Milo", Price: 1}}, total: 1, want: ErrInvalidItem},
		{name: "unknown method", items: items, total: 100, method: "crypto", want: ErrInvalidPaymentMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder("o-1", sampleCustomer(), tc.items, tc.total, tc.method, "")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewOrder_NormalizesLegacyCreditCard(t *testing.T) {
	order, err := NewOrder("o-1", sampleCustomer(), []Item{{PetID: "p1", Name: "Milo", Price: 100}}, 100, "credit_card", PaymentPaid)
	require.NoError(t, err)
	require.Equal(t, PaymentCard, order.PaymentMethod)
	require.Equal(t, PaymentPaid, order.PaymentStatus)
}

func TestTransitionTo_CancelledIsTerminal(t *testing.T) {
	order := &Order{Status: StatusPending}

	changed, err := order.TransitionTo(StatusProcessing)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = order.TransitionTo(StatusProcessing)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = order.TransitionTo(StatusCancelled)
	require.NoError(t, err)
	require.True(t, order.Status.IsTerminal())

	for _, next := range AllStatuses() {
		_, err = order.TransitionTo(next)
		require.ErrorIs(t, err, ErrInvalidTransition)
		var transitionErr *TransitionError
		require.True(t, errors.As(err, &transitionErr))
		require.Equal(t, StatusCancelled, transitionErr.From)
	}
}

func TestTransitionTo_UnknownStatus(t *testing.T) {
	order := &Order{Status: StatusPending}
	_, err := order.TransitionTo("shipped")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTotalMatchesItems(t *testing.T) {
	order := &Order{Items: []Item{{Price: 10.10}, {Price: 20.20}}, Total: 30.30}
	require.True(t, order.TotalMatchesItems())
	order.Total = 31
	require.False(t, order.TotalMatchesItems())
}

func TestOrderNumber_FormatAndParse(t *testing.T) {
	p := Period{Year: 2024, Month: time.March}
	require.Equal(t, OrderNumber("ORD-202403-007"), FormatOrderNumber(p, 7))
	require.Equal(t, OrderNumber("ORD-202403-1234"), FormatOrderNumber(p, 1234))

	period, seq, err := ParseOrderNumber("ORD-202403-007")
	require.NoError(t, err)
	require.Equal(t, p, period)
	require.Equal(t, int64(7), seq)

	for _, bad := range []string{"", "ORD-2024-001", "ORD-202413-001", "INV-202403-001", "ORD-202403-01"} {
		_, _, err := ParseOrderNumber(bad)
		require.ErrorIs(t, err, ErrInvalidOrderNumber, bad)
	}
}

func TestNewRevenueChange(t *testing.T) {
	change := NewRevenueChange(150, 100)
	require.InDelta(t, 50.0, change.ChangePercentage, 1e-9)
	require.False(t, change.PreviousWasZero)

	change = NewRevenueChange(150, 0)
	require.Zero(t, change.ChangePercentage)
	require.True(t, change.PreviousWasZero)
}

func TestMonthBounds_December(t *testing.T) {
	start, end := MonthBounds(2024, time.December)
	require.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local), end)
}
