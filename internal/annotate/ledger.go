// Package annotate holds the in-memory segment ledger for the currently
// loaded video. Segments are not persisted: switching videos discards the
// ledger, so segments must be exported first.
package annotate

import (
	"errors"
)

var (
	ErrNoStartMarked  = errors.New("no start time marked")
	ErrInvalidRange   = errors.New("end time must be after start time")
	ErrNothingToClear = errors.New("no segments to clear")
	ErrNoSegments     = errors.New("no segments marked")
)

// Segment is a user-marked (start, end) time range in seconds, start < end.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Ledger is the ordered list of segments for one video plus the optional
// pending start mark. Append order is preserved; segments may overlap or be
// out of chronological order relative to each other.
type Ledger struct {
	segments   []Segment
	pending    float64
	hasPending bool
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// MarkStart records t as the pending start, silently overwriting any
// previous pending mark.
func (l *Ledger) MarkStart(t float64) {
	l.pending = t
	l.hasPending = true
}

// MarkEnd closes the pending mark at t and appends the segment.
func (l *Ledger) MarkEnd(t float64) (Segment, error) {
	if !l.hasPending {
		return Segment{}, ErrNoStartMarked
	}
	if t <= l.pending {
		return Segment{}, ErrInvalidRange
	}

	seg := Segment{Start: l.pending, End: t}
	l.segments = append(l.segments, seg)
	l.pending = 0
	l.hasPending = false
	return seg, nil
}

// ClearLast removes the most recently appended segment.
func (l *Ledger) ClearLast() (Segment, error) {
	if len(l.segments) == 0 {
		return Segment{}, ErrNothingToClear
	}
	last := l.segments[len(l.segments)-1]
	l.segments = l.segments[:len(l.segments)-1]
	return last, nil
}

// ClearAll empties the ledger and drops any pending mark. Returns the number
// of segments removed; ErrNothingToClear if there was nothing to remove.
func (l *Ledger) ClearAll() (int, error) {
	count := len(l.segments)
	if count == 0 && !l.hasPending {
		return 0, ErrNothingToClear
	}
	l.segments = nil
	l.pending = 0
	l.hasPending = false
	return count, nil
}

// Pending returns the pending start mark, if any.
func (l *Ledger) Pending() (float64, bool) {
	return l.pending, l.hasPending
}

// Segments returns a copy of the ledger in append order.
func (l *Ledger) Segments() []Segment {
	out := make([]Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

func (l *Ledger) Len() int {
	return len(l.segments)
}
