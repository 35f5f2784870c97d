package grid

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/arloliu/textgrid/errs"
)

// TierKind selects which element list of a Tier is populated.
type TierKind uint8

const (
	IntervalTier TierKind = 0x1 // IntervalTier holds contiguous labeled intervals.
	PointTier    TierKind = 0x2 // PointTier holds time-stamped marks (Praat "TextTier").
)

// Praat class names as they appear in the serialized formats.
const (
	ClassIntervalTier = "IntervalTier"
	ClassTextTier     = "TextTier"
)

func (k TierKind) String() string {
	switch k {
	case IntervalTier:
		return "IntervalTier"
	case PointTier:
		return "PointTier"
	default:
		return "Unknown"
	}
}

// ClassName returns the Praat class name written for this kind.
func (k TierKind) ClassName() string {
	switch k {
	case IntervalTier:
		return ClassIntervalTier
	case PointTier:
		return ClassTextTier
	default:
		return ""
	}
}

// ParseClassName maps a Praat class name to a TierKind.
func ParseClassName(name string) (TierKind, bool) {
	switch name {
	case ClassIntervalTier:
		return IntervalTier, true
	case ClassTextTier:
		return PointTier, true
	default:
		return 0, false
	}
}

// Tier is a named timeline of a Document.
//
// Exactly one of Intervals and Points is used, selected by Kind. A Tier value
// is a plain entity: its methods keep their own preconditions but do not
// record history. Edits that must be undoable go through the Document.
type Tier struct {
	Name      string
	Kind      TierKind
	XMin      float64
	XMax      float64
	Intervals []Interval
	Points    []Point
}

// NewIntervalTier creates an interval tier holding a copy of intervals.
func NewIntervalTier(name string, xmin, xmax float64, intervals ...Interval) Tier {
	return Tier{
		Name:      name,
		Kind:      IntervalTier,
		XMin:      xmin,
		XMax:      xmax,
		Intervals: slices.Clone(intervals),
	}
}

// NewPointTier creates a point tier holding a copy of points.
func NewPointTier(name string, xmin, xmax float64, points ...Point) Tier {
	return Tier{
		Name:   name,
		Kind:   PointTier,
		XMin:   xmin,
		XMax:   xmax,
		Points: slices.Clone(points),
	}
}

// Clone returns a deep copy of t.
func (t Tier) Clone() Tier {
	t.Intervals = slices.Clone(t.Intervals)
	t.Points = slices.Clone(t.Points)

	return t
}

// Equal reports whether t and o carry the same name, kind, bounds and elements.
func (t Tier) Equal(o Tier) bool {
	return t.Name == o.Name &&
		t.Kind == o.Kind &&
		t.XMin == o.XMin &&
		t.XMax == o.XMax &&
		slices.Equal(t.Intervals, o.Intervals) &&
		slices.Equal(t.Points, o.Points)
}

// Len returns the number of elements of the tier's kind.
func (t Tier) Len() int {
	if t.Kind == PointTier {
		return len(t.Points)
	}

	return len(t.Intervals)
}

// Bounds returns the tier span.
func (t Tier) Bounds() Bounds {
	return Bounds{XMin: t.XMin, XMax: t.XMax}
}

// AddInterval inserts iv at its position by start time and returns that index.
// An interval whose start equals existing starts goes after them.
func (t *Tier) AddInterval(iv Interval) (int, error) {
	if t.Kind != IntervalTier {
		return -1, fmt.Errorf("%w: cannot add interval to %s %q", errs.ErrKindMismatch, t.Kind, t.Name)
	}
	if !(iv.XMin < iv.XMax) {
		return -1, fmt.Errorf("%w: interval %v has xmin >= xmax", errs.ErrInvalidRange, iv)
	}
	if iv.XMin < t.XMin || iv.XMax > t.XMax {
		return -1, fmt.Errorf("%w: interval %v outside tier %q [%v, %v]", errs.ErrOutOfBounds, iv, t.Name, t.XMin, t.XMax)
	}

	idx := sort.Search(len(t.Intervals), func(i int) bool { return t.Intervals[i].XMin > iv.XMin })
	t.Intervals = slices.Insert(t.Intervals, idx, iv)

	return idx, nil
}

// AddPoint inserts p at its position by time and returns that index.
func (t *Tier) AddPoint(p Point) (int, error) {
	if t.Kind != PointTier {
		return -1, fmt.Errorf("%w: cannot add point to %s %q", errs.ErrKindMismatch, t.Kind, t.Name)
	}
	if !(p.Time >= t.XMin && p.Time <= t.XMax) {
		return -1, fmt.Errorf("%w: point %v outside tier %q [%v, %v]", errs.ErrOutOfBounds, p, t.Name, t.XMin, t.XMax)
	}

	idx := sort.Search(len(t.Points), func(i int) bool { return t.Points[i].Time > p.Time })
	t.Points = slices.Insert(t.Points, idx, p)

	return idx, nil
}

// RemoveInterval removes and returns the interval at index.
func (t *Tier) RemoveInterval(index int) (Interval, error) {
	if t.Kind != IntervalTier {
		return Interval{}, fmt.Errorf("%w: cannot remove interval from %s %q", errs.ErrKindMismatch, t.Kind, t.Name)
	}
	if index < 0 || index >= len(t.Intervals) {
		return Interval{}, fmt.Errorf("%w: interval %d of %d in tier %q", errs.ErrIndexOutOfRange, index, len(t.Intervals), t.Name)
	}

	removed := t.Intervals[index]
	t.Intervals = slices.Delete(t.Intervals, index, index+1)

	return removed, nil
}

// RemovePoint removes and returns the point at index.
func (t *Tier) RemovePoint(index int) (Point, error) {
	if t.Kind != PointTier {
		return Point{}, fmt.Errorf("%w: cannot remove point from %s %q", errs.ErrKindMismatch, t.Kind, t.Name)
	}
	if index < 0 || index >= len(t.Points) {
		return Point{}, fmt.Errorf("%w: point %d of %d in tier %q", errs.ErrIndexOutOfRange, index, len(t.Points), t.Name)
	}

	removed := t.Points[index]
	t.Points = slices.Delete(t.Points, index, index+1)

	return removed, nil
}

// SplitInterval replaces the interval at index by its two halves split at
// time, stored at index and index+1. It returns the halves.
func (t *Tier) SplitInterval(index int, time float64) (Interval, Interval, error) {
	if t.Kind != IntervalTier {
		return Interval{}, Interval{}, fmt.Errorf("%w: cannot split interval of %s %q", errs.ErrKindMismatch, t.Kind, t.Name)
	}
	if index < 0 || index >= len(t.Intervals) {
		return Interval{}, Interval{}, fmt.Errorf("%w: interval %d of %d in tier %q", errs.ErrIndexOutOfRange, index, len(t.Intervals), t.Name)
	}

	left, right, err := t.Intervals[index].Split(time)
	if err != nil {
		return Interval{}, Interval{}, err
	}

	t.Intervals[index] = left
	t.Intervals = slices.Insert(t.Intervals, index+1, right)

	return left, right, nil
}

// MergeIntervals sorts the intervals by start time and coalesces every run of
// adjacent intervals (a.XMax == b.XMin) with equal text into one interval.
// It returns the sequence as it was before the call.
func (t *Tier) MergeIntervals() ([]Interval, error) {
	if t.Kind != IntervalTier {
		return nil, fmt.Errorf("%w: cannot merge intervals of %s %q", errs.ErrKindMismatch, t.Kind, t.Name)
	}

	before := slices.Clone(t.Intervals)
	if len(t.Intervals) <= 1 {
		return before, nil
	}

	sorted := slices.Clone(t.Intervals)
	sortIntervals(sorted)

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.XMax == next.XMin && current.Text == next.Text {
			current.XMax = next.XMax
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	t.Intervals = merged

	return before, nil
}

// FindIntervalsByTime returns the intervals with XMin <= time <= XMax.
// At a shared boundary both neighbors match.
func (t Tier) FindIntervalsByTime(time float64) []Interval {
	if t.Kind != IntervalTier {
		return nil
	}

	var out []Interval
	for _, iv := range t.Intervals {
		if iv.Contains(time) {
			out = append(out, iv)
		}
	}

	return out
}

// FindPointsByTime returns the points whose time equals time exactly.
func (t Tier) FindPointsByTime(time float64) []Point {
	if t.Kind != PointTier {
		return nil
	}

	var out []Point
	for _, p := range t.Points {
		if p.Time == time {
			out = append(out, p)
		}
	}

	return out
}

// FindIntervalsByText returns the intervals whose text contains substr.
func (t Tier) FindIntervalsByText(substr string) []Interval {
	if t.Kind != IntervalTier {
		return nil
	}

	var out []Interval
	for _, iv := range t.Intervals {
		if strings.Contains(iv.Text, substr) {
			out = append(out, iv)
		}
	}

	return out
}

// extent returns the outermost times covered by the tier's elements.
func (t Tier) extent() (lo, hi float64, ok bool) {
	switch t.Kind {
	case IntervalTier:
		if len(t.Intervals) == 0 {
			return 0, 0, false
		}
		lo, hi = t.Intervals[0].XMin, t.Intervals[0].XMax
		for _, iv := range t.Intervals[1:] {
			lo = min(lo, iv.XMin)
			hi = max(hi, iv.XMax)
		}
	case PointTier:
		if len(t.Points) == 0 {
			return 0, 0, false
		}
		lo, hi = t.Points[0].Time, t.Points[0].Time
		for _, p := range t.Points[1:] {
			lo = min(lo, p.Time)
			hi = max(hi, p.Time)
		}
	default:
		return 0, 0, false
	}

	return lo, hi, true
}

func sortIntervals(intervals []Interval) {
	slices.SortStableFunc(intervals, func(a, b Interval) int {
		return cmp.Compare(a.XMin, b.XMin)
	})
}
