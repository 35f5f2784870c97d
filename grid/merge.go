package grid

import (
	"fmt"

	"github.com/arloliu/textgrid/errs"
)

// MergeStrategy decides whether next folds into current during a tier merge.
// It returns the combined interval and true to fold, or false to keep next as
// a separate interval.
type MergeStrategy func(current, next Interval) (Interval, bool)

// DefaultMergeStrategy folds two intervals when their texts are equal or
// either text is empty. The result spans from current.XMin to the larger
// XMax and keeps the non-empty text, preferring current's.
func DefaultMergeStrategy(current, next Interval) (Interval, bool) {
	if current.Text != next.Text && current.Text != "" && next.Text != "" {
		return Interval{}, false
	}

	text := current.Text
	if text == "" {
		text = next.Text
	}

	return Interval{
		XMin: current.XMin,
		XMax: max(current.XMax, next.XMax),
		Text: text,
	}, true
}

// MergeTiers appends a new interval tier named newName that combines the
// intervals of first and second using DefaultMergeStrategy. The source tiers
// are left in place.
func (d *Document) MergeTiers(first, second, newName string) error {
	return d.MergeTiersWithStrategy(first, second, newName, DefaultMergeStrategy)
}

// MergeTiersWithStrategy is MergeTiers with a caller-supplied strategy.
// A nil strategy selects DefaultMergeStrategy.
//
// The union of both tiers' intervals is stably sorted by start time and swept
// once: a next interval that overlaps the interval being built is offered to
// strategy, any other next interval starts a new one. The new tier spans the
// document bounds.
func (d *Document) MergeTiersWithStrategy(first, second, newName string, strategy MergeStrategy) error {
	if strategy == nil {
		strategy = DefaultMergeStrategy
	}

	return d.commit(d.mergeTiers(first, second, newName, strategy))
}

func (d *Document) mergeTiers(first, second, newName string, strategy MergeStrategy) (Change, error) {
	t1, err := d.tierRef(first)
	if err != nil {
		return nil, err
	}
	t2, err := d.tierRef(second)
	if err != nil {
		return nil, err
	}
	if t1.Kind != IntervalTier || t2.Kind != IntervalTier {
		return nil, fmt.Errorf("%w: can only merge interval tiers, got %s %q and %s %q",
			errs.ErrKindMismatch, t1.Kind, t1.Name, t2.Kind, t2.Name)
	}
	if d.TierIndex(newName) >= 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateTier, newName)
	}

	union := make([]Interval, 0, len(t1.Intervals)+len(t2.Intervals))
	union = append(union, t1.Intervals...)
	union = append(union, t2.Intervals...)
	sortIntervals(union)

	var merged []Interval
	if len(union) > 0 {
		merged = make([]Interval, 0, len(union))
		current := union[0]
		for _, next := range union[1:] {
			// only overlapping pairs are offered; touching intervals stay apart
			if current.XMax > next.XMin {
				if combined, ok := strategy(current, next); ok {
					current = combined
					continue
				}
			}
			merged = append(merged, current)
			current = next
		}
		merged = append(merged, current)
	}

	tier := Tier{
		Name:      newName,
		Kind:      IntervalTier,
		XMin:      d.xmin,
		XMax:      d.xmax,
		Intervals: merged,
	}
	d.tiers = append(d.tiers, tier)

	return MergeTiersChange{
		First:   first,
		Second:  second,
		NewName: newName,
		Index:   len(d.tiers) - 1,
		Tier:    tier.Clone(),
	}, nil
}

// reinsertMergedTier re-applies a recorded merge from its snapshot.
func (d *Document) reinsertMergedTier(c MergeTiersChange) (Change, error) {
	if d.TierIndex(c.NewName) >= 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateTier, c.NewName)
	}

	d.tiers = append(d.tiers, c.Tier.Clone())
	c.Index = len(d.tiers) - 1
	c.Tier = c.Tier.Clone()

	return c, nil
}
