package grid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/textgrid/errs"
)

func TestAddTier(t *testing.T) {
	doc, err := New(0, 2)
	require.NoError(t, err)

	require.NoError(t, doc.AddTier(NewIntervalTier("words", 0, 2)))
	require.Equal(t, 1, doc.UndoCount())

	cases := []struct {
		name string
		tier Tier
		want error
	}{
		{"duplicate name", NewPointTier("words", 0, 2), errs.ErrDuplicateTier},
		{"inverted bounds", NewIntervalTier("a", 1, 1), errs.ErrInvalidRange},
		{"outside document", NewIntervalTier("b", 0, 3), errs.ErrOutOfBounds},
		{"unknown kind", Tier{Name: "c", XMin: 0, XMax: 1}, errs.ErrKindMismatch},
		{"points on interval tier", Tier{Name: "d", Kind: IntervalTier, XMax: 1, Points: []Point{{Time: 0}}}, errs.ErrKindMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, doc.AddTier(tc.tier), tc.want)
			require.Equal(t, 1, doc.NumTiers())
			require.Equal(t, 1, doc.UndoCount())
		})
	}
}

func TestRemoveTier(t *testing.T) {
	doc := newWordsDoc(t)

	require.ErrorIs(t, doc.RemoveTier(2), errs.ErrIndexOutOfRange)
	require.NoError(t, doc.RemoveTier(0))
	require.Equal(t, []string{"marks"}, doc.TierNames())

	require.NoError(t, doc.Undo())
	require.Equal(t, []string{"words", "marks"}, doc.TierNames())
}

func TestRenameTier(t *testing.T) {
	doc := newWordsDoc(t)

	require.ErrorIs(t, doc.RenameTier("missing", "x"), errs.ErrNotFound)
	require.ErrorIs(t, doc.RenameTier("words", "marks"), errs.ErrDuplicateTier)
	require.False(t, doc.CanUndo())

	require.NoError(t, doc.RenameTier("words", "phones"))
	require.Equal(t, []string{"phones", "marks"}, doc.TierNames())

	require.NoError(t, doc.Undo())
	require.Equal(t, []string{"words", "marks"}, doc.TierNames())
}

func TestDocumentIntervalEdits(t *testing.T) {
	t.Run("Unknown tier", func(t *testing.T) {
		doc := newWordsDoc(t)

		_, err := doc.AddInterval("missing", Interval{XMin: 0, XMax: 1})
		require.ErrorIs(t, err, errs.ErrNotFound)
		require.ErrorIs(t, doc.RemoveInterval("missing", 0), errs.ErrNotFound)
		require.ErrorIs(t, doc.SplitInterval("missing", 0, 0.5), errs.ErrNotFound)
		require.ErrorIs(t, doc.MergeIntervals("missing"), errs.ErrNotFound)
		require.False(t, doc.CanUndo())
	})

	t.Run("Split records one change", func(t *testing.T) {
		doc := newWordsDoc(t)

		require.NoError(t, doc.SplitInterval("words", 0, 0.5))
		tier, _ := doc.TierByName("words")
		require.Equal(t, []Interval{
			{XMin: 0, XMax: 0.5, Text: "hello"},
			{XMin: 0.5, XMax: 1, Text: "hello"},
			{XMin: 1, XMax: 2, Text: "world"},
		}, tier.Intervals)
		require.Equal(t, 1, doc.UndoCount())
		require.NoError(t, doc.Validate())
	})

	t.Run("Failed split leaves document unchanged", func(t *testing.T) {
		doc := newWordsDoc(t)
		before := doc.Clone()

		require.ErrorIs(t, doc.SplitInterval("words", 0, 1), errs.ErrInvalidRange)
		require.ErrorIs(t, doc.SplitInterval("marks", 0, 1), errs.ErrKindMismatch)
		require.True(t, before.Equal(doc))
		require.False(t, doc.CanUndo())
	})

	t.Run("Add returns sorted index", func(t *testing.T) {
		doc := newWordsDoc(t)
		require.NoError(t, doc.RemoveInterval("words", 0))

		idx, err := doc.AddInterval("words", Interval{XMin: 0, XMax: 1, Text: "hi"})
		require.NoError(t, err)
		require.Equal(t, 0, idx)

		idx, err = doc.AddPoint("marks", Point{Time: 1.5, Mark: "q"})
		require.NoError(t, err)
		require.Equal(t, 1, idx)
	})

	t.Run("No-op merge is still recorded", func(t *testing.T) {
		doc := newWordsDoc(t)

		require.NoError(t, doc.MergeIntervals("words"))
		require.Equal(t, 1, doc.UndoCount())
		require.Equal(t, KindMergeIntervals, doc.UndoHistory()[0].Kind)
	})
}

func TestAdjustBounds(t *testing.T) {
	t.Run("Widens document and tiers", func(t *testing.T) {
		doc, err := New(0, 1)
		require.NoError(t, err)
		require.NoError(t, doc.AddTier(NewPointTier("marks", 0.2, 0.8, Point{Time: 0.5})))

		require.NoError(t, doc.AdjustBounds(-1, 3))
		require.Equal(t, Bounds{XMin: -1, XMax: 3}, doc.Bounds())
		tier, _ := doc.TierAt(0)
		require.Equal(t, Bounds{XMin: -1, XMax: 3}, tier.Bounds())

		require.NoError(t, doc.Undo())
		require.Equal(t, Bounds{XMin: 0, XMax: 1}, doc.Bounds())
		tier, _ = doc.TierAt(0)
		require.Equal(t, Bounds{XMin: 0.2, XMax: 0.8}, tier.Bounds())
	})

	t.Run("Rejects inverted range", func(t *testing.T) {
		doc := newWordsDoc(t)
		require.ErrorIs(t, doc.AdjustBounds(1, 1), errs.ErrInvalidRange)
	})

	t.Run("Rejects cutting into content", func(t *testing.T) {
		doc := newWordsDoc(t)

		require.ErrorIs(t, doc.AdjustBounds(0, 1.5), errs.ErrInvalidRange)
		require.ErrorIs(t, doc.AdjustBounds(0.6, 2), errs.ErrInvalidRange)
		require.Equal(t, Bounds{XMin: 0, XMax: 2}, doc.Bounds())
		require.False(t, doc.CanUndo())
	})
}

func TestInsertSilence(t *testing.T) {
	t.Run("Truncates crossing intervals", func(t *testing.T) {
		doc := newWordsDoc(t)

		require.NoError(t, doc.InsertSilence("words", 0.5, 1.5))

		tier, _ := doc.TierByName("words")
		require.Equal(t, []Interval{
			{XMin: 0, XMax: 0.5, Text: "hello"},
			{XMin: 0.5, XMax: 1.5, Text: ""},
			{XMin: 1.5, XMax: 2, Text: "world"},
		}, tier.Intervals)
		require.NoError(t, doc.Validate())
	})

	t.Run("Splits a covering interval in three", func(t *testing.T) {
		doc, err := New(0, 3)
		require.NoError(t, err)
		require.NoError(t, doc.AddTier(NewIntervalTier("words", 0, 3, Interval{XMin: 0, XMax: 3, Text: "long"})))

		require.NoError(t, doc.InsertSilence("words", 1, 2))

		tier, _ := doc.TierByName("words")
		require.Equal(t, []Interval{
			{XMin: 0, XMax: 1, Text: "long"},
			{XMin: 1, XMax: 2, Text: ""},
			{XMin: 2, XMax: 3, Text: "long"},
		}, tier.Intervals)
	})

	t.Run("Replaces covered intervals", func(t *testing.T) {
		doc := newWordsDoc(t)

		require.NoError(t, doc.InsertSilence("words", 0, 2))

		tier, _ := doc.TierByName("words")
		require.Equal(t, []Interval{{XMin: 0, XMax: 2}}, tier.Intervals)
	})

	t.Run("Rejects bad input", func(t *testing.T) {
		doc := newWordsDoc(t)

		require.ErrorIs(t, doc.InsertSilence("words", 1, 1), errs.ErrInvalidRange)
		require.ErrorIs(t, doc.InsertSilence("words", -1, 1), errs.ErrInvalidRange)
		require.ErrorIs(t, doc.InsertSilence("words", 1, 3), errs.ErrInvalidRange)
		require.ErrorIs(t, doc.InsertSilence("marks", 0, 1), errs.ErrKindMismatch)
		require.ErrorIs(t, doc.InsertSilence("missing", 0, 1), errs.ErrNotFound)
		require.False(t, doc.CanUndo())
	})
}

func TestMergeTiers(t *testing.T) {
	newDoc := func(t *testing.T) *Document {
		t.Helper()

		doc, err := New(0, 3)
		require.NoError(t, err)
		require.NoError(t, doc.AddTier(NewIntervalTier("a", 0, 3,
			Interval{XMin: 0, XMax: 1, Text: "x"},
			Interval{XMin: 1, XMax: 2, Text: ""},
			Interval{XMin: 2, XMax: 3, Text: "z"},
		)))
		require.NoError(t, doc.AddTier(NewIntervalTier("b", 0, 3,
			Interval{XMin: 0, XMax: 1.5, Text: "x"},
			Interval{XMin: 1.5, XMax: 3, Text: "y"},
		)))
		require.NoError(t, doc.AddTier(NewPointTier("p", 0, 3)))
		doc.ClearHistory()

		return doc
	}

	t.Run("Default strategy", func(t *testing.T) {
		doc := newDoc(t)

		require.NoError(t, doc.MergeTiers("a", "b", "ab"))

		merged, ok := doc.TierByName("ab")
		require.True(t, ok)
		require.Equal(t, Bounds{XMin: 0, XMax: 3}, merged.Bounds())
		// union sorted: [0,1]x [0,1.5]x [1,2]"" [1.5,3]y [2,3]z
		require.Equal(t, []Interval{
			{XMin: 0, XMax: 2, Text: "x"},
			{XMin: 1.5, XMax: 3, Text: "y"},
			{XMin: 2, XMax: 3, Text: "z"},
		}, merged.Intervals)
		require.Equal(t, []string{"a", "b", "p", "ab"}, doc.TierNames())
		// [0,2]x and [1.5,3]y overlap and are kept as is
		require.ErrorIs(t, doc.Validate(), errs.ErrValidation)

		require.NoError(t, doc.Undo())
		require.Equal(t, []string{"a", "b", "p"}, doc.TierNames())
	})

	t.Run("Custom strategy", func(t *testing.T) {
		doc := newDoc(t)
		never := func(Interval, Interval) (Interval, bool) { return Interval{}, false }

		require.NoError(t, doc.MergeTiersWithStrategy("a", "b", "ab", never))

		merged, _ := doc.TierByName("ab")
		require.Len(t, merged.Intervals, 5)
	})

	t.Run("Touching intervals stay separate", func(t *testing.T) {
		doc, err := New(0, 2)
		require.NoError(t, err)
		require.NoError(t, doc.AddTier(NewIntervalTier("a", 0, 2,
			Interval{XMin: 0, XMax: 1, Text: "x"},
			Interval{XMin: 1, XMax: 2, Text: "x"},
		)))
		require.NoError(t, doc.AddTier(NewIntervalTier("b", 0, 2)))

		require.NoError(t, doc.MergeTiers("a", "b", "ab"))

		merged, _ := doc.TierByName("ab")
		require.Equal(t, []Interval{
			{XMin: 0, XMax: 1, Text: "x"},
			{XMin: 1, XMax: 2, Text: "x"},
		}, merged.Intervals)
		require.NoError(t, doc.Validate())
	})

	t.Run("Strategy only sees overlapping pairs", func(t *testing.T) {
		doc, err := New(0, 4)
		require.NoError(t, err)
		require.NoError(t, doc.AddTier(NewIntervalTier("a", 0, 3,
			Interval{XMin: 0, XMax: 1, Text: "a"},
			Interval{XMin: 1, XMax: 3, Text: "b"},
		)))
		require.NoError(t, doc.AddTier(NewIntervalTier("b", 3, 4,
			Interval{XMin: 3, XMax: 4, Text: "c"},
		)))

		calls := 0
		always := func(current, next Interval) (Interval, bool) {
			calls++
			return Interval{XMin: current.XMin, XMax: max(current.XMax, next.XMax), Text: current.Text + next.Text}, true
		}
		require.NoError(t, doc.MergeTiersWithStrategy("a", "b", "ab", always))

		merged, _ := doc.TierByName("ab")
		require.Zero(t, calls)
		require.Len(t, merged.Intervals, 3)
	})

	t.Run("Rejects bad input", func(t *testing.T) {
		doc := newDoc(t)

		require.ErrorIs(t, doc.MergeTiers("a", "missing", "ab"), errs.ErrNotFound)
		require.ErrorIs(t, doc.MergeTiers("a", "p", "ab"), errs.ErrKindMismatch)
		require.ErrorIs(t, doc.MergeTiers("a", "b", "b"), errs.ErrDuplicateTier)
		require.Equal(t, 3, doc.NumTiers())
		require.False(t, doc.CanUndo())
	})
}

func TestDefaultMergeStrategy(t *testing.T) {
	iv, ok := DefaultMergeStrategy(Interval{XMin: 0, XMax: 1, Text: ""}, Interval{XMin: 1, XMax: 2, Text: "b"})
	require.True(t, ok)
	require.Equal(t, Interval{XMin: 0, XMax: 2, Text: "b"}, iv)

	iv, ok = DefaultMergeStrategy(Interval{XMin: 0, XMax: 3, Text: "a"}, Interval{XMin: 1, XMax: 2, Text: "a"})
	require.True(t, ok)
	require.Equal(t, Interval{XMin: 0, XMax: 3, Text: "a"}, iv)

	_, ok = DefaultMergeStrategy(Interval{XMin: 0, XMax: 1, Text: "a"}, Interval{XMin: 1, XMax: 2, Text: "b"})
	require.False(t, ok)
}

func TestQueries(t *testing.T) {
	doc := newWordsDoc(t)

	matches := doc.QueryIntervalsByTime(1)
	require.Len(t, matches, 1)
	require.Equal(t, "words", matches[0].Tier)
	require.Equal(t, 0, matches[0].Index)
	require.Len(t, matches[0].Matches, 2)

	textMatches := doc.QueryIntervalsByText("wor")
	require.Len(t, textMatches, 1)
	require.Equal(t, "world", textMatches[0].Matches[0].Text)

	points := doc.QueryPointsByTime(0.5)
	require.Len(t, points, 1)
	require.Equal(t, "marks", points[0].Tier)
	require.Equal(t, 1, points[0].Index)

	require.Empty(t, doc.QueryPointsByTime(0.75))
	require.Empty(t, doc.QueryIntervalsByText("nothing"))
}
