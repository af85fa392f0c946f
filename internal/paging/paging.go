// Package paging builds the pagination control shown under every list: a
// Previous and Next button, the first and last page, a window of pages
// centered on the current one and ellipsis markers for collapsed ranges.
//
// The model is pure. It trusts the page numbers the server reported and only
// disables Previous on the first page and Next on the last.
package paging

import "strconv"

// DefaultWindow is the number of middle pages shown around the current page.
const DefaultWindow = 5

// Kind identifies a slot in the control.
type Kind int

const (
	KindPrev Kind = iota
	KindPage
	KindEllipsis
	KindNext
)

// Slot is one control in visual order.
type Slot struct {
	Kind     Kind
	Page     int
	Current  bool
	Disabled bool
}

// Label returns the text of the slot.
func (s Slot) Label() string {
	switch s.Kind {
	case KindPrev:
		return "Previous"
	case KindNext:
		return "Next"
	case KindEllipsis:
		return "…"
	default:
		return strconv.Itoa(s.Page)
	}
}

// Options tune the control.
type Options struct {
	// Window is the number of pages shown between the first and last page.
	// Zero means DefaultWindow.
	Window int
	// RTL mirrors the visual order so Next sits on the left.
	RTL bool
}

// Control is the computed pagination model.
type Control struct {
	Current int
	Total   int
	RTL     bool
	// Slots are in visual left-to-right order.
	Slots []Slot
}

// Build computes the control for current of total pages.
func Build(current, total int, opts Options) Control {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	slots := []Slot{{Kind: KindPrev, Page: current - 1, Disabled: current <= 1}}
	for _, p := range pages(current, total, window) {
		if p == 0 {
			slots = append(slots, Slot{Kind: KindEllipsis, Disabled: true})
			continue
		}
		slots = append(slots, Slot{Kind: KindPage, Page: p, Current: p == current})
	}
	slots = append(slots, Slot{Kind: KindNext, Page: current + 1, Disabled: current >= total})

	if opts.RTL {
		for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
			slots[i], slots[j] = slots[j], slots[i]
		}
	}
	return Control{Current: current, Total: total, RTL: opts.RTL, Slots: slots}
}

// pages returns the page numbers to show in ascending order, with 0 marking
// an ellipsis.
func pages(current, total, window int) []int {
	if total <= window+2 {
		out := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, p)
		}
		return out
	}

	start := max(2, current-window/2)
	end := min(total-1, start+window-1)
	start = max(2, end-window+1)

	out := []int{1}
	if start > 2 {
		out = append(out, 0)
	}
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	if end < total-1 {
		out = append(out, 0)
	}
	return append(out, total)
}

// Prev returns the Previous slot.
func (c Control) Prev() Slot {
	return c.find(KindPrev)
}

// Next returns the Next slot.
func (c Control) Next() Slot {
	return c.find(KindNext)
}

// Pages returns the numbered slots in visual order.
func (c Control) Pages() []Slot {
	var out []Slot
	for _, s := range c.Slots {
		if s.Kind == KindPage {
			out = append(out, s)
		}
	}
	return out
}

// HasEllipsis reports whether any range was collapsed.
func (c Control) HasEllipsis() bool {
	for _, s := range c.Slots {
		if s.Kind == KindEllipsis {
			return true
		}
	}
	return false
}

// Target returns the page a slot navigates to. Disabled slots, ellipses and
// the current page yield false.
func (c Control) Target(s Slot) (int, bool) {
	if s.Disabled || s.Kind == KindEllipsis || s.Current {
		return 0, false
	}
	return s.Page, true
}

// Left and Right return the slot at the visual edge, which is Previous and
// Next in left-to-right order and swapped when mirrored.
func (c Control) Left() Slot {
	if c.RTL {
		return c.Next()
	}
	return c.Prev()
}

func (c Control) Right() Slot {
	if c.RTL {
		return c.Prev()
	}
	return c.Next()
}

func (c Control) find(kind Kind) Slot {
	for _, s := range c.Slots {
		if s.Kind == kind {
			return s
		}
	}
	return Slot{Kind: kind, Disabled: true}
}
