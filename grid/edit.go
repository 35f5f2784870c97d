package grid

import (
	"fmt"
	"slices"

	"github.com/arloliu/textgrid/errs"
)

// Every exported edit below is validate-then-mutate: on error the document is
// unchanged and nothing is recorded. On success exactly one Change is pushed
// to the undo history and the redo history is cleared.

// AddTier appends a copy of t.
//
// The tier must have a unique name, a known kind whose element list matches
// it, XMin < XMax, and bounds inside the document bounds.
func (d *Document) AddTier(t Tier) error {
	return d.commit(d.addTier(t))
}

// RemoveTier removes the tier at index.
func (d *Document) RemoveTier(index int) error {
	return d.commit(d.removeTier(index))
}

// AddInterval inserts iv into the interval tier named tierName at its sorted
// position and returns that position.
func (d *Document) AddInterval(tierName string, iv Interval) (int, error) {
	ch, err := d.addInterval(tierName, iv)
	if err != nil {
		return -1, err
	}
	d.record(ch)

	return ch.(AddIntervalChange).Index, nil
}

// RemoveInterval removes the interval at index from tier tierName.
func (d *Document) RemoveInterval(tierName string, index int) error {
	return d.commit(d.removeInterval(tierName, index))
}

// AddPoint inserts p into the point tier named tierName at its sorted
// position and returns that position.
func (d *Document) AddPoint(tierName string, p Point) (int, error) {
	ch, err := d.addPoint(tierName, p)
	if err != nil {
		return -1, err
	}
	d.record(ch)

	return ch.(AddPointChange).Index, nil
}

// RemovePoint removes the point at index from tier tierName.
func (d *Document) RemovePoint(tierName string, index int) error {
	return d.commit(d.removePoint(tierName, index))
}

// SplitInterval splits the interval at index of tier tierName at time.
func (d *Document) SplitInterval(tierName string, index int, time float64) error {
	return d.commit(d.splitInterval(tierName, index, time))
}

// MergeIntervals coalesces adjacent equal-text intervals of tier tierName.
// A merge that changes nothing is still recorded.
func (d *Document) MergeIntervals(tierName string) error {
	return d.commit(d.mergeIntervals(tierName))
}

// RenameTier renames the tier oldName to newName.
func (d *Document) RenameTier(oldName, newName string) error {
	return d.commit(d.renameTier(oldName, newName))
}

// AdjustBounds sets the document bounds and every tier's bounds to
// [xmin, xmax]. It fails with errs.ErrInvalidRange if xmin >= xmax or if any
// existing interval or point would fall outside the new span.
func (d *Document) AdjustBounds(xmin, xmax float64) error {
	return d.commit(d.adjustBounds(xmin, xmax))
}

// InsertSilence carves [start, end] out of tier tierName and fills it with a
// single interval with empty text. Intervals crossing start or end are
// truncated at the boundary and keep their text.
func (d *Document) InsertSilence(tierName string, start, end float64) error {
	return d.commit(d.insertSilence(tierName, start, end))
}

func (d *Document) tierRef(name string) (*Tier, error) {
	idx := d.TierIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: tier %q", errs.ErrNotFound, name)
	}

	return &d.tiers[idx], nil
}

func (d *Document) checkTier(t Tier) error {
	if d.TierIndex(t.Name) >= 0 {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateTier, t.Name)
	}

	switch t.Kind {
	case IntervalTier:
		if len(t.Points) > 0 {
			return fmt.Errorf("%w: interval tier %q holds points", errs.ErrKindMismatch, t.Name)
		}
	case PointTier:
		if len(t.Intervals) > 0 {
			return fmt.Errorf("%w: point tier %q holds intervals", errs.ErrKindMismatch, t.Name)
		}
	default:
		return fmt.Errorf("%w: tier %q has unknown kind %d", errs.ErrKindMismatch, t.Name, t.Kind)
	}

	if !(t.XMin < t.XMax) {
		return fmt.Errorf("%w: tier %q xmin %v must be less than xmax %v", errs.ErrInvalidRange, t.Name, t.XMin, t.XMax)
	}
	if t.XMin < d.xmin || t.XMax > d.xmax {
		return fmt.Errorf("%w: tier %q [%v, %v] outside document [%v, %v]", errs.ErrOutOfBounds, t.Name, t.XMin, t.XMax, d.xmin, d.xmax)
	}

	return nil
}

func (d *Document) addTier(t Tier) (Change, error) {
	if err := d.checkTier(t); err != nil {
		return nil, err
	}

	d.tiers = append(d.tiers, t.Clone())

	return AddTierChange{Index: len(d.tiers) - 1, Tier: t.Clone()}, nil
}

func (d *Document) removeTier(index int) (Change, error) {
	if index < 0 || index >= len(d.tiers) {
		return nil, fmt.Errorf("%w: tier %d of %d", errs.ErrIndexOutOfRange, index, len(d.tiers))
	}

	removed := d.tiers[index]
	d.tiers = slices.Delete(d.tiers, index, index+1)

	// removed owns its slices now that it left the document
	return RemoveTierChange{Index: index, Tier: removed}, nil
}

func (d *Document) addInterval(tierName string, iv Interval) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}

	idx, err := tier.AddInterval(iv)
	if err != nil {
		return nil, err
	}

	return AddIntervalChange{TierName: tierName, Index: idx, Interval: iv}, nil
}

func (d *Document) removeInterval(tierName string, index int) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}

	removed, err := tier.RemoveInterval(index)
	if err != nil {
		return nil, err
	}

	return RemoveIntervalChange{TierName: tierName, Index: index, Interval: removed}, nil
}

func (d *Document) addPoint(tierName string, p Point) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}

	idx, err := tier.AddPoint(p)
	if err != nil {
		return nil, err
	}

	return AddPointChange{TierName: tierName, Index: idx, Point: p}, nil
}

func (d *Document) removePoint(tierName string, index int) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}

	removed, err := tier.RemovePoint(index)
	if err != nil {
		return nil, err
	}

	return RemovePointChange{TierName: tierName, Index: index, Point: removed}, nil
}

func (d *Document) splitInterval(tierName string, index int, time float64) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}

	var original Interval
	if index >= 0 && index < len(tier.Intervals) {
		original = tier.Intervals[index]
	}

	left, _, err := tier.SplitInterval(index, time)
	if err != nil {
		return nil, err
	}

	return SplitIntervalChange{TierName: tierName, Index: index, Original: original, Left: left}, nil
}

func (d *Document) mergeIntervals(tierName string) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}

	before, err := tier.MergeIntervals()
	if err != nil {
		return nil, err
	}

	return MergeIntervalsChange{
		TierName: tierName,
		Before:   before,
		After:    slices.Clone(tier.Intervals),
	}, nil
}

func (d *Document) renameTier(oldName, newName string) (Change, error) {
	tier, err := d.tierRef(oldName)
	if err != nil {
		return nil, err
	}
	if newName != oldName && d.TierIndex(newName) >= 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateTier, newName)
	}

	tier.Name = newName

	return RenameTierChange{OldName: oldName, NewName: newName}, nil
}

func (d *Document) adjustBounds(xmin, xmax float64) (Change, error) {
	if !(xmin < xmax) {
		return nil, fmt.Errorf("%w: xmin %v must be less than xmax %v", errs.ErrInvalidRange, xmin, xmax)
	}
	for _, t := range d.tiers {
		lo, hi, ok := t.extent()
		if ok && (lo < xmin || hi > xmax) {
			return nil, fmt.Errorf("%w: tier %q content [%v, %v] falls outside [%v, %v]", errs.ErrInvalidRange, t.Name, lo, hi, xmin, xmax)
		}
	}

	ch := AdjustBoundsChange{
		Old:        d.Bounds(),
		New:        Bounds{XMin: xmin, XMax: xmax},
		TierBounds: make([]Bounds, len(d.tiers)),
	}

	d.xmin, d.xmax = xmin, xmax
	for i := range d.tiers {
		ch.TierBounds[i] = d.tiers[i].Bounds()
		d.tiers[i].XMin, d.tiers[i].XMax = xmin, xmax
	}

	return ch, nil
}

func (d *Document) insertSilence(tierName string, start, end float64) (Change, error) {
	tier, err := d.tierRef(tierName)
	if err != nil {
		return nil, err
	}
	if tier.Kind != IntervalTier {
		return nil, fmt.Errorf("%w: cannot insert silence into %s %q", errs.ErrKindMismatch, tier.Kind, tier.Name)
	}
	if !(start < end) || start < tier.XMin || end > tier.XMax {
		return nil, fmt.Errorf("%w: silence [%v, %v] in tier %q [%v, %v]", errs.ErrInvalidRange, start, end, tier.Name, tier.XMin, tier.XMax)
	}

	before := slices.Clone(tier.Intervals)
	after := make([]Interval, 0, len(before)+2)
	for _, iv := range before {
		if iv.XMax <= start || iv.XMin >= end {
			after = append(after, iv)
			continue
		}
		if iv.XMin < start {
			after = append(after, Interval{XMin: iv.XMin, XMax: start, Text: iv.Text})
		}
		if iv.XMax > end {
			after = append(after, Interval{XMin: end, XMax: iv.XMax, Text: iv.Text})
		}
	}
	after = append(after, Interval{XMin: start, XMax: end})
	sortIntervals(after)

	tier.Intervals = after

	return InsertSilenceChange{
		TierName: tierName,
		Start:    start,
		End:      end,
		Before:   before,
		After:    slices.Clone(after),
	}, nil
}
