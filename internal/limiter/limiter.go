// Package limiter trims candidate lists: record limits for the filter
// command and the scrolling window of the dropdown.
package limiter

import "fmt"

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate rejects negative values and Limit combined with Tail. Offset is
// ignored when Tail is set.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the [start, end) range Config selects from length records.
func (c Config) Bounds(length int) (start, end int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start = min(c.Offset, length)
	end = length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Apply returns the selected subrange of list. The result shares list's
// backing array.
func Apply[T any](c Config, list []T) []T {
	if !c.IsActive() {
		return list
	}
	start, end := c.Bounds(len(list))
	return list[start:end]
}

// Window is the visible slice of a dropdown holding more rows than fit.
// Top is the first visible row.
type Window struct {
	Rows int
	Top  int
}

// Follow scrolls the window the least amount that brings highlighted into
// view, the way a list scrolls an item "into the nearest edge". A negative
// highlight leaves the window where it is, clamped to total.
func (w Window) Follow(highlighted, total int) Window {
	if w.Rows <= 0 || total <= w.Rows {
		w.Top = 0
		return w
	}
	if highlighted >= 0 && highlighted < total {
		if highlighted < w.Top {
			w.Top = highlighted
		} else if highlighted >= w.Top+w.Rows {
			w.Top = highlighted - w.Rows + 1
		}
	}
	w.Top = min(max(w.Top, 0), total-w.Rows)
	return w
}

// Range returns the visible [start, end) for total rows.
func (w Window) Range(total int) (start, end int) {
	if w.Rows <= 0 {
		return 0, total
	}
	start = min(max(w.Top, 0), total)
	end = min(start+w.Rows, total)
	return start, end
}

// Above and Below report how many rows are scrolled out of view.
func (w Window) Above(total int) int {
	start, _ := w.Range(total)
	return start
}

func (w Window) Below(total int) int {
	_, end := w.Range(total)
	return total - end
}
