package grid

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/textgrid/errs"
)

func newWordsDoc(t *testing.T, opts ...Option) *Document {
	t.Helper()

	doc, err := New(0, 2, opts...)
	require.NoError(t, err)
	require.NoError(t, doc.AddTier(NewIntervalTier("words", 0, 2,
		Interval{XMin: 0, XMax: 1, Text: "hello"},
		Interval{XMin: 1, XMax: 2, Text: "world"},
	)))
	require.NoError(t, doc.AddTier(NewPointTier("marks", 0, 2, Point{Time: 0.5, Mark: "p"})))
	doc.ClearHistory()

	return doc
}

func TestNew(t *testing.T) {
	t.Run("Creates empty document", func(t *testing.T) {
		doc, err := New(0, 1.5)
		require.NoError(t, err)
		require.Equal(t, 0.0, doc.XMin())
		require.Equal(t, 1.5, doc.XMax())
		require.Zero(t, doc.NumTiers())
		require.Equal(t, DefaultHistoryCapacity, doc.HistoryCapacity())
		require.False(t, doc.CanUndo())
		require.False(t, doc.CanRedo())
	})

	t.Run("Rejects empty or inverted span", func(t *testing.T) {
		_, err := New(1, 1)
		require.ErrorIs(t, err, errs.ErrInvalidRange)

		_, err = New(2, 1)
		require.ErrorIs(t, err, errs.ErrInvalidRange)
	})

	t.Run("Rejects non-positive history capacity", func(t *testing.T) {
		_, err := New(0, 1, WithHistoryCapacity(0))
		require.ErrorIs(t, err, errs.ErrInvalidRange)
	})

	t.Run("Seeds tiers without history", func(t *testing.T) {
		doc, err := New(0, 1, WithTiers(NewIntervalTier("a", 0, 1), NewPointTier("b", 0, 1)))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, doc.TierNames())
		require.False(t, doc.CanUndo())
	})
}

func TestDocumentAccessorsReturnCopies(t *testing.T) {
	doc := newWordsDoc(t)

	tiers := doc.Tiers()
	tiers[0].Intervals[0].Text = "mutated"
	tiers[0].Name = "renamed"

	tier, err := doc.TierAt(0)
	require.NoError(t, err)
	require.Equal(t, "words", tier.Name)
	require.Equal(t, "hello", tier.Intervals[0].Text)

	tier, ok := doc.TierByName("words")
	require.True(t, ok)
	tier.Intervals[1].Text = "mutated"

	tier, _ = doc.TierByName("words")
	require.Equal(t, "world", tier.Intervals[1].Text)

	_, err = doc.TierAt(2)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	_, ok = doc.TierByName("missing")
	require.False(t, ok)
	require.Equal(t, -1, doc.TierIndex("missing"))
	require.Equal(t, 1, doc.TierIndex("marks"))
}

func TestDocumentEqualAndFingerprint(t *testing.T) {
	a := newWordsDoc(t)
	b := newWordsDoc(t)

	require.True(t, a.Equal(b))
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	_, err := b.AddPoint("marks", Point{Time: 1, Mark: "q"})
	require.NoError(t, err)
	require.False(t, a.Equal(b))
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	require.NoError(t, b.Undo())
	require.True(t, a.Equal(b))
	require.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestDocumentFingerprintSeparatesFields(t *testing.T) {
	a, err := New(0, 1, WithTiers(NewIntervalTier("ab", 0, 1, Interval{XMin: 0, XMax: 1, Text: "c"})))
	require.NoError(t, err)
	b, err := New(0, 1, WithTiers(NewIntervalTier("a", 0, 1, Interval{XMin: 0, XMax: 1, Text: "bc"})))
	require.NoError(t, err)

	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDocumentClone(t *testing.T) {
	doc := newWordsDoc(t, WithHistoryCapacity(5))
	require.NoError(t, doc.RenameTier("words", "w"))

	clone := doc.Clone()
	require.True(t, doc.Equal(clone))
	require.False(t, clone.CanUndo())
	require.Equal(t, 5, clone.HistoryCapacity())

	require.NoError(t, clone.RenameTier("w", "x"))
	require.Equal(t, "w", doc.TierNames()[0])
}

func TestDocumentLogsEdits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	doc, err := New(0, 1, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, doc.AddTier(NewIntervalTier("words", 0, 1)))

	require.Contains(t, buf.String(), "recorded change")
	require.Contains(t, buf.String(), "kind=AddTier")
}
