package views

import (
	"sync"
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

// Cursor is the completed column's day and page selection.
type Cursor struct {
	mu   sync.Mutex
	day  string
	page int
	size int
	loc  *time.Location
}

// NewCursor starts on today's date in loc, page 0.
func NewCursor(loc *time.Location, size int, now time.Time) *Cursor {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Cursor{
		day:  DayKey(now, loc),
		size: size,
		loc:  loc,
	}
}

// Day returns the selected day.
func (c *Cursor) Day() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// Page returns the selected page.
func (c *Cursor) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetDay selects another day and goes back to the first page.
func (c *Cursor) SetDay(day string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if day != c.day {
		c.day = day
		c.page = 0
	}
}

// SetPage selects a page; it is clamped on the next View or Clamp.
func (c *Cursor) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
}

// Clamp pulls the page back into range for n filtered items.
func (c *Cursor) Clamp(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = ClampPage(c.page, n, c.size)
	return c.page
}

// View projects orders through the cursor: completed, filtered to the
// selected day, and paginated. The cursor keeps the clamped page.
func (c *Cursor) View(orders []order.Order) Page {
	c.mu.Lock()
	day := c.day
	c.mu.Unlock()

	filtered := FilterDay(Completed(orders), day, c.loc)
	page := c.Clamp(len(filtered))

	p := Paginate(filtered, page, c.size)
	p.Day = day
	return p
}
