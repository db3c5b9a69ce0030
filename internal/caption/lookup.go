package caption

import "math"

// ActiveAt returns the first segment in sequence order whose range contains
// t (both ends inclusive). Overlapping segments resolve to the earliest one in
// the slice, never the latest or the longest.
func ActiveAt(segs []Segment, t float64) (Segment, bool) {
	if i := indexAt(segs, t); i >= 0 {
		return segs[i], true
	}
	return Segment{}, false
}

func indexAt(segs []Segment, t float64) int {
	for i := range segs {
		if segs[i].Start <= t && t <= segs[i].End {
			return i
		}
	}
	return -1
}

// Cursor speeds up ActiveAt for a render loop whose time mostly moves
// forward. Its answers are always identical to ActiveAt over the same slice;
// going backwards or jumping simply costs a full scan.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	segs []Segment
	t    float64
	// lo is the number of leading segments known to end before t.
	lo int
}

// NewCursor binds a cursor to segs. The slice must not be mutated while the
// cursor is in use.
func NewCursor(segs []Segment) *Cursor {
	return &Cursor{segs: segs, t: math.Inf(-1)}
}

// At returns the active segment at t.
func (c *Cursor) At(t float64) (Segment, bool) {
	i := c.index(t)
	if i < 0 {
		return Segment{}, false
	}
	return c.segs[i], true
}

func (c *Cursor) index(t float64) int {
	if !(t >= c.t) {
		// Scrubbed backwards, or either time is NaN: forget everything
		// learned so far.
		c.lo = 0
	}
	c.t = t

	// Segments ending before t can never match at a later t either, so the
	// prefix of such segments is skipped. Only a contiguous prefix is
	// skipped, which keeps first-match order intact.
	for c.lo < len(c.segs) && c.segs[c.lo].End < t {
		c.lo++
	}

	for i := c.lo; i < len(c.segs); i++ {
		if c.segs[i].Start <= t && t <= c.segs[i].End {
			return i
		}
	}
	return -1
}
