package grid

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/textgrid/errs"
)

func TestRing(t *testing.T) {
	r := newRing(3)
	for i := range 5 {
		_, evicted := r.push(newEntry(RenameTierChange{OldName: fmt.Sprint(i)}))
		require.Equal(t, i >= 3, evicted, "push %d", i)
	}

	require.Equal(t, 3, r.len())
	require.Equal(t, "2", r.at(0).Change.(RenameTierChange).OldName)
	require.Equal(t, "4", r.at(2).Change.(RenameTierChange).OldName)

	for _, want := range []string{"4", "3", "2"} {
		e, ok := r.pop()
		require.True(t, ok)
		require.Equal(t, want, e.Change.(RenameTierChange).OldName)
	}
	_, ok := r.pop()
	require.False(t, ok)

	r.push(newEntry(RenameTierChange{OldName: "x"}))
	r.clear()
	require.Zero(t, r.len())
}

func TestUndoRedoEmpty(t *testing.T) {
	doc, err := New(0, 1)
	require.NoError(t, err)

	require.ErrorIs(t, doc.Undo(), errs.ErrNothingToUndo)
	require.ErrorIs(t, doc.Redo(), errs.ErrNothingToRedo)
}

func TestHelloWorldScenario(t *testing.T) {
	doc, err := New(0, 2)
	require.NoError(t, err)
	require.NoError(t, doc.AddTier(NewIntervalTier("words", 0, 2)))

	_, err = doc.AddInterval("words", Interval{XMin: 0, XMax: 1, Text: "Hello"})
	require.NoError(t, err)
	_, err = doc.AddInterval("words", Interval{XMin: 1, XMax: 2, Text: "World"})
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	require.NoError(t, doc.SplitInterval("words", 0, 0.5))
	tier, _ := doc.TierByName("words")
	require.Len(t, tier.Intervals, 3)

	require.NoError(t, doc.Undo())
	tier, _ = doc.TierByName("words")
	require.Equal(t, []Interval{
		{XMin: 0, XMax: 1, Text: "Hello"},
		{XMin: 1, XMax: 2, Text: "World"},
	}, tier.Intervals)

	require.NoError(t, doc.Redo())
	tier, _ = doc.TierByName("words")
	require.Len(t, tier.Intervals, 3)
	require.Equal(t, Interval{XMin: 0, XMax: 0.5, Text: "Hello"}, tier.Intervals[0])
}

// mixedEdits applies one edit of every kind and returns how many it made.
func mixedEdits(t *testing.T, doc *Document) int {
	t.Helper()

	steps := []func() error{
		func() error { return doc.AddTier(NewIntervalTier("phones", 0, 2)) },
		func() error { _, err := doc.AddInterval("phones", Interval{XMin: 0, XMax: 2, Text: "a"}); return err },
		func() error { return doc.SplitInterval("phones", 0, 1) },
		func() error { return doc.SplitInterval("phones", 1, 1.5) },
		func() error { return doc.MergeIntervals("phones") },
		func() error { return doc.RemoveInterval("words", 1) },
		func() error { _, err := doc.AddInterval("words", Interval{XMin: 1, XMax: 2, Text: "there"}); return err },
		func() error { _, err := doc.AddPoint("marks", Point{Time: 1.5, Mark: "q"}); return err },
		func() error { return doc.RemovePoint("marks", 0) },
		func() error { return doc.RenameTier("marks", "events") },
		func() error { return doc.InsertSilence("words", 0.25, 0.75) },
		func() error { return doc.MergeTiers("words", "phones", "combined") },
		func() error { return doc.AdjustBounds(-1, 4) },
		func() error { return doc.RemoveTier(0) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
	}

	return len(steps)
}

func TestUndoRedoInverseLaw(t *testing.T) {
	doc := newWordsDoc(t)
	initial := doc.Clone()

	n := mixedEdits(t, doc)
	final := doc.Clone()
	require.Equal(t, n, doc.UndoCount())

	for i := range n {
		require.NoError(t, doc.Undo(), "undo %d", i)
	}
	require.True(t, initial.Equal(doc))
	require.ErrorIs(t, doc.Undo(), errs.ErrNothingToUndo)
	require.Equal(t, n, doc.RedoCount())

	for i := range n {
		require.NoError(t, doc.Redo(), "redo %d", i)
	}
	require.True(t, final.Equal(doc))
	require.Equal(t, final.Fingerprint(), doc.Fingerprint())
	require.ErrorIs(t, doc.Redo(), errs.ErrNothingToRedo)
	require.Equal(t, n, doc.UndoCount())
}

func TestNewEditClearsRedo(t *testing.T) {
	doc := newWordsDoc(t)

	require.NoError(t, doc.RenameTier("words", "a"))
	require.NoError(t, doc.RenameTier("a", "b"))
	require.NoError(t, doc.Undo())
	require.NoError(t, doc.Undo())
	require.Equal(t, 2, doc.RedoCount())

	require.NoError(t, doc.Redo())
	require.Equal(t, 1, doc.RedoCount())

	require.NoError(t, doc.RenameTier("marks", "events"))
	require.False(t, doc.CanRedo())
}

func TestHistoryBound(t *testing.T) {
	const capacity = 100

	doc, err := New(0, 1000)
	require.NoError(t, err)
	require.NoError(t, doc.AddTier(NewPointTier("marks", 0, 1000)))
	doc.ClearHistory()

	for i := range capacity + 1 {
		_, err := doc.AddPoint("marks", Point{Time: float64(i)})
		require.NoError(t, err)
	}
	require.Equal(t, capacity, doc.UndoCount())

	for i := range capacity {
		require.NoError(t, doc.Undo(), "undo %d", i)
	}
	require.ErrorIs(t, doc.Undo(), errs.ErrNothingToUndo)

	// the first point was evicted from history and stays
	tier, _ := doc.TierByName("marks")
	require.Equal(t, []Point{{Time: 0}}, tier.Points)
}

func TestHistoryCapacityOption(t *testing.T) {
	doc, err := New(0, 10, WithHistoryCapacity(2))
	require.NoError(t, err)
	require.NoError(t, doc.AddTier(NewPointTier("marks", 0, 10)))

	for i := range 3 {
		_, err := doc.AddPoint("marks", Point{Time: float64(i)})
		require.NoError(t, err)
	}

	info := doc.UndoHistory()
	require.Len(t, info, 2)
	require.Equal(t, KindAddPoint, info[0].Kind)
	require.Contains(t, info[0].Description, "@1")
	require.Contains(t, info[1].Description, "@2")
	require.NotEqual(t, info[0].ID, info[1].ID)
}

func TestUndoFailureKeepsEntry(t *testing.T) {
	doc := newWordsDoc(t)
	require.NoError(t, doc.RenameTier("words", "phones"))

	// simulate an out-of-band edit the history does not know about
	doc.tiers[0].Name = "elsewhere"

	err := doc.Undo()
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, 1, doc.UndoCount())
	require.Equal(t, "elsewhere", doc.TierNames()[0])
	require.False(t, doc.CanRedo())
}

func TestRedoFailureKeepsEntry(t *testing.T) {
	doc := newWordsDoc(t)
	require.NoError(t, doc.RemoveTier(1))
	require.NoError(t, doc.Undo())

	doc.tiers[1].Name = "moved"

	err := doc.Redo()
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, 1, doc.RedoCount())
	require.Equal(t, 2, doc.NumTiers())
}

func TestRedoHistoryOrder(t *testing.T) {
	doc := newWordsDoc(t)
	require.NoError(t, doc.RenameTier("words", "a"))
	require.NoError(t, doc.RenameTier("marks", "b"))
	require.NoError(t, doc.Undo())
	require.NoError(t, doc.Undo())

	info := doc.RedoHistory()
	require.Len(t, info, 2)
	require.Contains(t, info[0].Description, `"marks" to "b"`)
	require.Contains(t, info[1].Description, `"words" to "a"`)
}
