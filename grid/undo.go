package grid

import (
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/textgrid/errs"
)

// Undo reverses the most recent recorded edit and moves it to the redo
// history.
//
// Returns errs.ErrNothingToUndo when the undo history is empty. If the
// recorded target cannot be located the entry stays on the undo history, the
// document is unchanged and the error wraps errs.ErrNotFound.
func (d *Document) Undo() error {
	e, ok := d.history.undo.pop()
	if !ok {
		return errs.ErrNothingToUndo
	}

	if err := d.revert(e.Change); err != nil {
		d.history.undo.push(e)
		d.logger.Debug("undo failed", "kind", e.Change.Kind(), "error", err)

		return fmt.Errorf("undo %s: %w", e.Change.Kind(), err)
	}

	d.history.pushRedo(e)
	d.logger.Debug("undone", "kind", e.Change.Kind(), "change", e.Change.Describe())

	return nil
}

// Redo re-applies the most recently undone edit through the same path as the
// original call and records it again. Entries still waiting on the redo
// history are kept.
//
// Returns errs.ErrNothingToRedo when the redo history is empty. A failed redo
// leaves the entry on the redo history and the document unchanged.
func (d *Document) Redo() error {
	e, ok := d.history.popRedo()
	if !ok {
		return errs.ErrNothingToRedo
	}

	ch, err := d.reapply(e.Change)
	if err != nil {
		d.history.pushRedo(e)
		d.logger.Debug("redo failed", "kind", e.Change.Kind(), "error", err)

		return fmt.Errorf("redo %s: %w", e.Change.Kind(), err)
	}

	e.Change = ch
	e.Recorded = time.Now()
	d.push(e)

	return nil
}

// revert applies the inverse of ch. It checks every precondition before it
// mutates anything.
func (d *Document) revert(ch Change) error {
	switch c := ch.(type) {
	case AddTierChange:
		idx, err := d.locateTier(c.Index, c.Tier.Name)
		if err != nil {
			return err
		}
		d.tiers = slices.Delete(d.tiers, idx, idx+1)

	case RemoveTierChange:
		if c.Index < 0 || c.Index > len(d.tiers) {
			return fmt.Errorf("%w: tier slot %d of %d", errs.ErrNotFound, c.Index, len(d.tiers))
		}
		if d.TierIndex(c.Tier.Name) >= 0 {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateTier, c.Tier.Name)
		}
		d.tiers = slices.Insert(d.tiers, c.Index, c.Tier.Clone())

	case AddIntervalChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		idx := locate(tier.Intervals, c.Index, c.Interval)
		if idx < 0 {
			return fmt.Errorf("%w: interval %v in tier %q", errs.ErrNotFound, c.Interval, c.TierName)
		}
		tier.Intervals = slices.Delete(tier.Intervals, idx, idx+1)

	case RemoveIntervalChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		if c.Index < 0 || c.Index > len(tier.Intervals) {
			return fmt.Errorf("%w: interval slot %d in tier %q", errs.ErrNotFound, c.Index, c.TierName)
		}
		tier.Intervals = slices.Insert(tier.Intervals, c.Index, c.Interval)

	case AddPointChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		idx := locate(tier.Points, c.Index, c.Point)
		if idx < 0 {
			return fmt.Errorf("%w: point %v in tier %q", errs.ErrNotFound, c.Point, c.TierName)
		}
		tier.Points = slices.Delete(tier.Points, idx, idx+1)

	case RemovePointChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		if c.Index < 0 || c.Index > len(tier.Points) {
			return fmt.Errorf("%w: point slot %d in tier %q", errs.ErrNotFound, c.Index, c.TierName)
		}
		tier.Points = slices.Insert(tier.Points, c.Index, c.Point)

	case SplitIntervalChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		if c.Index < 0 || c.Index+1 >= len(tier.Intervals) ||
			tier.Intervals[c.Index] != c.Left ||
			tier.Intervals[c.Index+1].XMin != c.Left.XMax {
			return fmt.Errorf("%w: split halves at %d in tier %q", errs.ErrNotFound, c.Index, c.TierName)
		}
		tier.Intervals[c.Index] = c.Original
		tier.Intervals = slices.Delete(tier.Intervals, c.Index+1, c.Index+2)

	case MergeIntervalsChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		tier.Intervals = slices.Clone(c.Before)

	case RenameTierChange:
		tier, err := d.tierRef(c.NewName)
		if err != nil {
			return err
		}
		if c.OldName != c.NewName && d.TierIndex(c.OldName) >= 0 {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateTier, c.OldName)
		}
		tier.Name = c.OldName

	case MergeTiersChange:
		idx, err := d.locateTier(c.Index, c.NewName)
		if err != nil {
			return err
		}
		d.tiers = slices.Delete(d.tiers, idx, idx+1)

	case AdjustBoundsChange:
		if len(c.TierBounds) != len(d.tiers) {
			return fmt.Errorf("%w: bounds recorded for %d tiers, document has %d", errs.ErrNotFound, len(c.TierBounds), len(d.tiers))
		}
		d.xmin, d.xmax = c.Old.XMin, c.Old.XMax
		for i, b := range c.TierBounds {
			d.tiers[i].XMin, d.tiers[i].XMax = b.XMin, b.XMax
		}

	case InsertSilenceChange:
		tier, err := d.tierRef(c.TierName)
		if err != nil {
			return err
		}
		tier.Intervals = slices.Clone(c.Before)

	default:
		return fmt.Errorf("unknown change %T", ch)
	}

	return nil
}

// reapply runs the forward edit described by ch and returns the change it
// records this time.
func (d *Document) reapply(ch Change) (Change, error) {
	switch c := ch.(type) {
	case AddTierChange:
		return d.addTier(c.Tier)
	case RemoveTierChange:
		idx, err := d.locateTier(c.Index, c.Tier.Name)
		if err != nil {
			return nil, err
		}
		return d.removeTier(idx)
	case AddIntervalChange:
		return d.addInterval(c.TierName, c.Interval)
	case RemoveIntervalChange:
		return d.removeInterval(c.TierName, c.Index)
	case AddPointChange:
		return d.addPoint(c.TierName, c.Point)
	case RemovePointChange:
		return d.removePoint(c.TierName, c.Index)
	case SplitIntervalChange:
		return d.splitInterval(c.TierName, c.Index, c.Left.XMax)
	case MergeIntervalsChange:
		return d.mergeIntervals(c.TierName)
	case RenameTierChange:
		return d.renameTier(c.OldName, c.NewName)
	case MergeTiersChange:
		return d.reinsertMergedTier(c)
	case AdjustBoundsChange:
		return d.adjustBounds(c.New.XMin, c.New.XMax)
	case InsertSilenceChange:
		return d.insertSilence(c.TierName, c.Start, c.End)
	default:
		return nil, fmt.Errorf("unknown change %T", ch)
	}
}

// locateTier finds the tier named name, trying the recorded index first.
func (d *Document) locateTier(index int, name string) (int, error) {
	if index >= 0 && index < len(d.tiers) && d.tiers[index].Name == name {
		return index, nil
	}
	if idx := d.TierIndex(name); idx >= 0 {
		return idx, nil
	}

	return -1, fmt.Errorf("%w: tier %q", errs.ErrNotFound, name)
}

// locate finds v in s, trying the recorded index first.
func locate[T comparable](s []T, index int, v T) int {
	if index >= 0 && index < len(s) && s[index] == v {
		return index
	}

	return slices.Index(s, v)
}
