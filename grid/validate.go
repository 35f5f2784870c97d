package grid

import (
	"fmt"

	"github.com/arloliu/textgrid/errs"
)

// Validate checks doc against the TextGrid invariants and returns the first
// violation as a *errs.ValidationError, or nil.
//
// Checks run in this order and stop at the first failure:
//   - the document span has XMin < XMax
//   - per tier, in order: bounds inside the document, XMin < XMax, a unique
//     name, and an element list matching the kind
//   - an interval tier's intervals are valid, sorted and chain from the tier
//     start to the tier end with no gap or overlap
//   - a point tier's points lie inside the tier bounds
//
// An interval tier with no intervals is valid.
func Validate(doc *Document) error {
	if !(doc.xmin < doc.xmax) {
		return invalid("", -1, "document xmin %v must be less than xmax %v", doc.xmin, doc.xmax)
	}

	seen := make(map[string]struct{}, len(doc.tiers))
	for _, t := range doc.tiers {
		if err := validateTierHeader(doc, t, seen); err != nil {
			return err
		}

		var err error
		switch t.Kind {
		case IntervalTier:
			err = validateIntervals(t)
		case PointTier:
			err = validatePoints(t)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func validateTierHeader(doc *Document, t Tier, seen map[string]struct{}) error {
	if t.XMin < doc.xmin || t.XMax > doc.xmax {
		return invalid(t.Name, -1, "bounds [%v, %v] outside document [%v, %v]", t.XMin, t.XMax, doc.xmin, doc.xmax)
	}
	if !(t.XMin < t.XMax) {
		return invalid(t.Name, -1, "xmin %v must be less than xmax %v", t.XMin, t.XMax)
	}
	if _, dup := seen[t.Name]; dup {
		return invalid(t.Name, -1, "duplicate tier name")
	}
	seen[t.Name] = struct{}{}

	switch t.Kind {
	case IntervalTier:
		if len(t.Points) > 0 {
			return invalid(t.Name, -1, "interval tier holds %d points", len(t.Points))
		}
	case PointTier:
		if len(t.Intervals) > 0 {
			return invalid(t.Name, -1, "point tier holds %d intervals", len(t.Intervals))
		}
	default:
		return invalid(t.Name, -1, "unknown tier kind %d", t.Kind)
	}

	return nil
}

func validateIntervals(t Tier) error {
	if len(t.Intervals) == 0 {
		return nil
	}

	cursor := t.XMin
	for i, iv := range t.Intervals {
		if !(iv.XMin < iv.XMax) {
			return invalid(t.Name, i, "interval %v has xmin >= xmax", iv)
		}
		if i > 0 && iv.XMin < t.Intervals[i-1].XMin {
			return invalid(t.Name, i, "interval %v is out of order", iv)
		}
		if iv.XMin < cursor {
			return invalid(t.Name, i, "interval %v overlaps the previous interval ending at %v", iv, cursor)
		}
		if iv.XMin > cursor {
			return invalid(t.Name, i, "gap between %v and %v", cursor, iv.XMin)
		}
		cursor = iv.XMax
	}

	last := len(t.Intervals) - 1
	if cursor < t.XMax {
		return invalid(t.Name, last, "intervals end at %v before tier end %v", cursor, t.XMax)
	}
	if cursor > t.XMax {
		return invalid(t.Name, last, "intervals end at %v after tier end %v", cursor, t.XMax)
	}

	return nil
}

func validatePoints(t Tier) error {
	for i, p := range t.Points {
		if !(p.Time >= t.XMin && p.Time <= t.XMax) {
			return invalid(t.Name, i, "point %v outside tier [%v, %v]", p, t.XMin, t.XMax)
		}
	}

	return nil
}

func invalid(tier string, index int, format string, args ...any) error {
	return &errs.ValidationError{
		Tier:   tier,
		Index:  index,
		Reason: fmt.Sprintf(format, args...),
	}
}
