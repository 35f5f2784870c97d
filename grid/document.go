package grid

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/arloliu/textgrid/endian"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/internal/hash"
	"github.com/arloliu/textgrid/internal/options"
)

// Document is an annotation over the time span [XMin, XMax] holding an
// ordered list of tiers and its own edit history.
//
// All edits go through Document methods so that each one is recorded and can
// be undone. Accessors return copies; mutating a returned Tier never changes
// the document. A Document is not safe for concurrent use.
type Document struct {
	xmin  float64
	xmax  float64
	tiers []Tier

	capacity int
	history  *history
	logger   *slog.Logger
}

// Option configures a Document at construction.
type Option = options.Option[*Document]

// WithHistoryCapacity sets the number of undo entries kept. The oldest entry
// is evicted once the capacity is exceeded.
func WithHistoryCapacity(n int) Option {
	return options.New(func(d *Document) error {
		if n <= 0 {
			return fmt.Errorf("%w: history capacity must be positive, got %d", errs.ErrInvalidRange, n)
		}
		d.capacity = n

		return nil
	})
}

// WithLogger sets the logger that receives edit and history events at debug
// level. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	})
}

// WithTiers seeds the document with copies of tiers, in order, without
// recording history or checking invariants. Decoders use it to build a
// document as read; call Validate to check the result.
func WithTiers(tiers ...Tier) Option {
	return options.NoError(func(d *Document) {
		d.tiers = make([]Tier, len(tiers))
		for i, t := range tiers {
			d.tiers[i] = t.Clone()
		}
	})
}

// New creates an empty document over [xmin, xmax].
//
// Returns errs.ErrInvalidRange if xmin >= xmax.
func New(xmin, xmax float64, opts ...Option) (*Document, error) {
	if !(xmin < xmax) {
		return nil, fmt.Errorf("%w: document xmin %v must be less than xmax %v", errs.ErrInvalidRange, xmin, xmax)
	}

	d := &Document{
		xmin:     xmin,
		xmax:     xmax,
		capacity: DefaultHistoryCapacity,
		logger:   slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}
	d.history = newHistory(d.capacity)

	return d, nil
}

// XMin returns the document start time.
func (d *Document) XMin() float64 { return d.xmin }

// XMax returns the document end time.
func (d *Document) XMax() float64 { return d.xmax }

// Bounds returns the document span.
func (d *Document) Bounds() Bounds {
	return Bounds{XMin: d.xmin, XMax: d.xmax}
}

// NumTiers returns the number of tiers.
func (d *Document) NumTiers() int {
	return len(d.tiers)
}

// Tiers returns deep copies of all tiers in order.
func (d *Document) Tiers() []Tier {
	out := make([]Tier, len(d.tiers))
	for i, t := range d.tiers {
		out[i] = t.Clone()
	}

	return out
}

// TierAt returns a copy of the tier at index.
func (d *Document) TierAt(index int) (Tier, error) {
	if index < 0 || index >= len(d.tiers) {
		return Tier{}, fmt.Errorf("%w: tier %d of %d", errs.ErrIndexOutOfRange, index, len(d.tiers))
	}

	return d.tiers[index].Clone(), nil
}

// TierByName returns a copy of the first tier named name.
func (d *Document) TierByName(name string) (Tier, bool) {
	idx := d.TierIndex(name)
	if idx < 0 {
		return Tier{}, false
	}

	return d.tiers[idx].Clone(), true
}

// TierIndex returns the index of the first tier named name, or -1.
func (d *Document) TierIndex(name string) int {
	return slices.IndexFunc(d.tiers, func(t Tier) bool { return t.Name == name })
}

// TierNames returns the tier names in order.
func (d *Document) TierNames() []string {
	names := make([]string, len(d.tiers))
	for i, t := range d.tiers {
		names[i] = t.Name
	}

	return names
}

// Equal reports whether d and o have the same bounds and tiers. History is
// not compared.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}

	return d.xmin == o.xmin &&
		d.xmax == o.xmax &&
		slices.EqualFunc(d.tiers, o.tiers, Tier.Equal)
}

// Clone returns a deep copy of the content with an empty history of the same
// capacity and the same logger.
func (d *Document) Clone() *Document {
	c := &Document{
		xmin:     d.xmin,
		xmax:     d.xmax,
		tiers:    d.Tiers(),
		capacity: d.capacity,
		history:  newHistory(d.capacity),
		logger:   d.logger,
	}

	return c
}

// Fingerprint returns an xxHash64 of the document content. Equal documents
// have equal fingerprints.
func (d *Document) Fingerprint() uint64 {
	engine := endian.GetLittleEndianEngine()
	digest := hash.NewDigest()
	buf := make([]byte, 0, 64)

	writeString := func(s string) {
		buf = engine.AppendUint32(buf[:0], uint32(len(s)))
		digest.Write(buf)
		digest.WriteString(s)
	}
	writeFloats := func(vs ...float64) {
		buf = buf[:0]
		for _, v := range vs {
			buf = endian.AppendFloat64(engine, buf, v)
		}
		digest.Write(buf)
	}

	writeFloats(d.xmin, d.xmax)
	for _, t := range d.tiers {
		digest.Write([]byte{byte(t.Kind)})
		writeString(t.Name)
		writeFloats(t.XMin, t.XMax)

		buf = engine.AppendUint32(buf[:0], uint32(t.Len()))
		digest.Write(buf)
		for _, iv := range t.Intervals {
			writeFloats(iv.XMin, iv.XMax)
			writeString(iv.Text)
		}
		for _, p := range t.Points {
			writeFloats(p.Time)
			writeString(p.Mark)
		}
	}

	return digest.Sum64()
}

// Validate checks the document invariants. See the package-level Validate.
func (d *Document) Validate() error {
	return Validate(d)
}

// CanUndo reports whether Undo has an entry to reverse.
func (d *Document) CanUndo() bool { return d.history.undo.len() > 0 }

// CanRedo reports whether Redo has an entry to re-apply.
func (d *Document) CanRedo() bool { return len(d.history.redo) > 0 }

// UndoCount returns the number of undoable entries.
func (d *Document) UndoCount() int { return d.history.undo.len() }

// RedoCount returns the number of redoable entries.
func (d *Document) RedoCount() int { return len(d.history.redo) }

// HistoryCapacity returns the maximum number of undo entries kept.
func (d *Document) HistoryCapacity() int { return d.capacity }

// UndoHistory describes the undoable entries, oldest first.
func (d *Document) UndoHistory() []EntryInfo { return d.history.undoInfo() }

// RedoHistory describes the redoable entries; the last one is redone first.
func (d *Document) RedoHistory() []EntryInfo { return d.history.redoInfo() }

// ClearHistory drops all undo and redo entries.
func (d *Document) ClearHistory() {
	d.history.undo.clear()
	d.history.redo = nil
}

// commit records ch after a successful edit and clears the redo stack.
func (d *Document) commit(ch Change, err error) error {
	if err != nil {
		return err
	}
	d.record(ch)

	return nil
}

func (d *Document) record(ch Change) {
	d.history.redo = nil
	d.push(newEntry(ch))
}

func (d *Document) push(e Entry) {
	if old, evicted := d.history.undo.push(e); evicted {
		d.logger.Debug("history full, evicted oldest entry", "id", old.ID, "kind", old.Change.Kind())
	}
	d.logger.Debug("recorded change", "kind", e.Change.Kind(), "change", e.Change.Describe(), "undo", d.history.undo.len())
}
