package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkEnd_WithoutStart(t *testing.T) {
	l := NewLedger()

	_, err := l.MarkEnd(5.0)
	assert.ErrorIs(t, err, ErrNoStartMarked)
	assert.Equal(t, 0, l.Len())
}

func TestMarkEnd_EndBeforeStart(t *testing.T) {
	l := NewLedger()
	l.MarkStart(10.0)

	_, err := l.MarkEnd(10.0)
	assert.ErrorIs(t, err, ErrInvalidRange, "equal times must be rejected")

	_, err = l.MarkEnd(3.0)
	assert.ErrorIs(t, err, ErrInvalidRange)

	// Pending mark survives a failed MarkEnd.
	pending, ok := l.Pending()
	require.True(t, ok)
	assert.Equal(t, 10.0, pending)
}

func TestMarkStart_OverwritesPending(t *testing.T) {
	l := NewLedger()
	l.MarkStart(2.0)
	l.MarkStart(7.0)

	seg, err := l.MarkEnd(9.0)
	require.NoError(t, err)
	assert.Equal(t, Segment{Start: 7.0, End: 9.0}, seg)

	_, ok := l.Pending()
	assert.False(t, ok, "pending mark must clear on successful MarkEnd")
}

func TestLedger_AppendOrderAndClearLast(t *testing.T) {
	l := NewLedger()
	marks := []Segment{
		{Start: 1.0, End: 2.0},
		{Start: 3.0, End: 4.5},
		{Start: 6.0, End: 9.0},
	}
	for _, m := range marks {
		l.MarkStart(m.Start)
		_, err := l.MarkEnd(m.End)
		require.NoError(t, err)
	}

	require.Equal(t, 3, l.Len())

	removed, err := l.ClearLast()
	require.NoError(t, err)
	assert.Equal(t, marks[2], removed)

	got := l.Segments()
	require.Len(t, got, 2)
	assert.Equal(t, marks[:2], got)
}

func TestLedger_OverlapAllowed(t *testing.T) {
	l := NewLedger()

	l.MarkStart(5.0)
	_, err := l.MarkEnd(10.0)
	require.NoError(t, err)

	// Overlapping and out-of-order segments are valid.
	l.MarkStart(2.0)
	_, err = l.MarkEnd(7.0)
	require.NoError(t, err)

	segs := l.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, 5.0, segs[0].Start)
	assert.Equal(t, 2.0, segs[1].Start)
}

func TestClearLast_Empty(t *testing.T) {
	l := NewLedger()
	_, err := l.ClearLast()
	assert.ErrorIs(t, err, ErrNothingToClear)
}

func TestClearAll(t *testing.T) {
	l := NewLedger()

	_, err := l.ClearAll()
	assert.ErrorIs(t, err, ErrNothingToClear)

	l.MarkStart(1.0)
	_, err = l.MarkEnd(2.0)
	require.NoError(t, err)
	l.MarkStart(3.0)

	count, err := l.ClearAll()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, l.Len())

	_, ok := l.Pending()
	assert.False(t, ok, "ClearAll must drop the pending mark")
}

func TestClearAll_PendingOnly(t *testing.T) {
	l := NewLedger()
	l.MarkStart(4.0)

	count, err := l.ClearAll()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSegments_ReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.MarkStart(1.0)
	_, err := l.MarkEnd(2.0)
	require.NoError(t, err)

	segs := l.Segments()
	segs[0].Start = 99.0

	assert.Equal(t, 1.0, l.Segments()[0].Start)
}

func TestSegment_Duration(t *testing.T) {
	assert.Equal(t, 2.5, Segment{Start: 1.5, End: 4.0}.Duration())
}
