package views

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

// Stats are the headline numbers for one day.
type Stats struct {
	Day       string
	Total     int
	Pending   int
	Picked    int
	Completed int
	// Revenue sums the totals of completed orders.
	Revenue float64
}

// DayStats counts the orders created on day in loc.
func DayStats(orders []order.Order, day string, loc *time.Location) Stats {
	s := Stats{Day: day}
	revenue := decimal.Zero

	for _, o := range FilterDay(orders, day, loc) {
		s.Total++
		switch {
		case o.Status == order.StatusPending:
			s.Pending++
		case o.Status == order.StatusPicked:
			s.Picked++
		case o.Status.IsCompleted():
			s.Completed++
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		}
	}

	s.Revenue, _ = revenue.Round(2).Float64()
	return s
}
