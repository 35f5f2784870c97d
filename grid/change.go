package grid

import "fmt"

// ChangeKind identifies the variant of a Change.
type ChangeKind uint8

const (
	KindAddTier ChangeKind = iota + 1
	KindRemoveTier
	KindAddInterval
	KindRemoveInterval
	KindAddPoint
	KindRemovePoint
	KindSplitInterval
	KindMergeIntervals
	KindRenameTier
	KindMergeTiers
	KindAdjustBounds
	KindInsertSilence
)

func (k ChangeKind) String() string {
	switch k {
	case KindAddTier:
		return "AddTier"
	case KindRemoveTier:
		return "RemoveTier"
	case KindAddInterval:
		return "AddInterval"
	case KindRemoveInterval:
		return "RemoveInterval"
	case KindAddPoint:
		return "AddPoint"
	case KindRemovePoint:
		return "RemovePoint"
	case KindSplitInterval:
		return "SplitInterval"
	case KindMergeIntervals:
		return "MergeIntervals"
	case KindRenameTier:
		return "RenameTier"
	case KindMergeTiers:
		return "MergeTiers"
	case KindAdjustBounds:
		return "AdjustBounds"
	case KindInsertSilence:
		return "InsertSilence"
	default:
		return "Unknown"
	}
}

// Change is the record of one successful edit, carrying enough data to
// reverse it exactly. The set of implementations is closed: only the types
// declared in this file satisfy it.
//
// Slices and tiers held by a Change are private copies and never alias the
// live document.
type Change interface {
	Kind() ChangeKind
	Describe() string
	isChange()
}

// AddTierChange records a tier appended at Index.
type AddTierChange struct {
	Index int
	Tier  Tier
}

// RemoveTierChange records the tier that was removed from Index.
type RemoveTierChange struct {
	Index int
	Tier  Tier
}

// AddIntervalChange records an interval inserted at Index of tier TierName.
type AddIntervalChange struct {
	TierName string
	Index    int
	Interval Interval
}

// RemoveIntervalChange records an interval removed from Index of tier TierName.
type RemoveIntervalChange struct {
	TierName string
	Index    int
	Interval Interval
}

// AddPointChange records a point inserted at Index of tier TierName.
type AddPointChange struct {
	TierName string
	Index    int
	Point    Point
}

// RemovePointChange records a point removed from Index of tier TierName.
type RemovePointChange struct {
	TierName string
	Index    int
	Point    Point
}

// SplitIntervalChange records that Original at Index was replaced by Left
// (at Index) and a right half starting at Left.XMax (at Index+1).
type SplitIntervalChange struct {
	TierName string
	Index    int
	Original Interval
	Left     Interval
}

// MergeIntervalsChange holds the interval sequence around a merge.
type MergeIntervalsChange struct {
	TierName string
	Before   []Interval
	After    []Interval
}

// RenameTierChange records a tier rename.
type RenameTierChange struct {
	OldName string
	NewName string
}

// MergeTiersChange records the tier produced by merging First and Second.
// Tier is a snapshot of the merged tier as appended at Index.
type MergeTiersChange struct {
	First   string
	Second  string
	NewName string
	Index   int
	Tier    Tier
}

// AdjustBoundsChange records document and per-tier bounds around an adjust.
// TierBounds[i] holds the old bounds of tier i.
type AdjustBoundsChange struct {
	Old        Bounds
	New        Bounds
	TierBounds []Bounds
}

// InsertSilenceChange holds the interval sequence around a silence insert.
type InsertSilenceChange struct {
	TierName string
	Start    float64
	End      float64
	Before   []Interval
	After    []Interval
}

func (AddTierChange) Kind() ChangeKind        { return KindAddTier }
func (RemoveTierChange) Kind() ChangeKind     { return KindRemoveTier }
func (AddIntervalChange) Kind() ChangeKind    { return KindAddInterval }
func (RemoveIntervalChange) Kind() ChangeKind { return KindRemoveInterval }
func (AddPointChange) Kind() ChangeKind       { return KindAddPoint }
func (RemovePointChange) Kind() ChangeKind    { return KindRemovePoint }
func (SplitIntervalChange) Kind() ChangeKind  { return KindSplitInterval }
func (MergeIntervalsChange) Kind() ChangeKind { return KindMergeIntervals }
func (RenameTierChange) Kind() ChangeKind     { return KindRenameTier }
func (MergeTiersChange) Kind() ChangeKind     { return KindMergeTiers }
func (AdjustBoundsChange) Kind() ChangeKind   { return KindAdjustBounds }
func (InsertSilenceChange) Kind() ChangeKind  { return KindInsertSilence }

func (AddTierChange) isChange()        {}
func (RemoveTierChange) isChange()     {}
func (AddIntervalChange) isChange()    {}
func (RemoveIntervalChange) isChange() {}
func (AddPointChange) isChange()       {}
func (RemovePointChange) isChange()    {}
func (SplitIntervalChange) isChange()  {}
func (MergeIntervalsChange) isChange() {}
func (RenameTierChange) isChange()     {}
func (MergeTiersChange) isChange()     {}
func (AdjustBoundsChange) isChange()   {}
func (InsertSilenceChange) isChange()  {}

func (c AddTierChange) Describe() string {
	return fmt.Sprintf("add tier %q at %d", c.Tier.Name, c.Index)
}

func (c RemoveTierChange) Describe() string {
	return fmt.Sprintf("remove tier %q from %d", c.Tier.Name, c.Index)
}

func (c AddIntervalChange) Describe() string {
	return fmt.Sprintf("add interval %v to %q", c.Interval, c.TierName)
}

func (c RemoveIntervalChange) Describe() string {
	return fmt.Sprintf("remove interval %d %v from %q", c.Index, c.Interval, c.TierName)
}

func (c AddPointChange) Describe() string {
	return fmt.Sprintf("add point %v to %q", c.Point, c.TierName)
}

func (c RemovePointChange) Describe() string {
	return fmt.Sprintf("remove point %d %v from %q", c.Index, c.Point, c.TierName)
}

func (c SplitIntervalChange) Describe() string {
	return fmt.Sprintf("split interval %d of %q at %v", c.Index, c.TierName, c.Left.XMax)
}

func (c MergeIntervalsChange) Describe() string {
	return fmt.Sprintf("merge intervals of %q (%d -> %d)", c.TierName, len(c.Before), len(c.After))
}

func (c RenameTierChange) Describe() string {
	return fmt.Sprintf("rename tier %q to %q", c.OldName, c.NewName)
}

func (c MergeTiersChange) Describe() string {
	return fmt.Sprintf("merge tiers %q and %q into %q", c.First, c.Second, c.NewName)
}

func (c AdjustBoundsChange) Describe() string {
	return fmt.Sprintf("adjust bounds [%v, %v] -> [%v, %v]", c.Old.XMin, c.Old.XMax, c.New.XMin, c.New.XMax)
}

func (c InsertSilenceChange) Describe() string {
	return fmt.Sprintf("insert silence [%v, %v] into %q", c.Start, c.End, c.TierName)
}
