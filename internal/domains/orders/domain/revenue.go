package domain

import "time"

// MonthlyRevenue is the non-cancelled sales total of one calendar month.
type MonthlyRevenue struct {
	Month time.Month
	Sales float64
}

// RevenueChange compares the current month with the previous one.
// PreviousWasZero marks that ChangePercentage is 0 by policy, not by measurement.
type RevenueChange struct {
	Current          float64
	Previous         float64
	ChangePercentage float64
	PreviousWasZero  bool
}

// NewRevenueChange derives the percentage change between two months.
func NewRevenueChange(current, previous float64) RevenueChange {
	change := RevenueChange{Current: current, Previous: previous}
	if previous == 0 {
		change.PreviousWasZero = true
		return change
	}
	change.ChangePercentage = (current - previous) / previous * 100
	return change
}

// MonthBounds returns the half-open [start, end) range of a local calendar month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

// YearBounds returns the half-open [start, end) range of a local calendar year.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(1, 0, 0)
}

// OrderStats summarises orders for the admin dashboard.
type OrderStats struct {
	Total    int64
	ByStatus map[Status]int64
	Revenue  float64
	Change   RevenueChange
}
