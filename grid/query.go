package grid

// TierMatch groups the elements of one tier that matched a query.
type TierMatch[T any] struct {
	Tier    string
	Index   int // tier position in the document
	Matches []T
}

// QueryIntervalsByTime returns, per interval tier with at least one hit, the
// intervals containing time. Boundaries are inclusive.
func (d *Document) QueryIntervalsByTime(time float64) []TierMatch[Interval] {
	return collect(d, func(t Tier) []Interval { return t.FindIntervalsByTime(time) })
}

// QueryIntervalsByText returns, per interval tier with at least one hit, the
// intervals whose text contains substr.
func (d *Document) QueryIntervalsByText(substr string) []TierMatch[Interval] {
	return collect(d, func(t Tier) []Interval { return t.FindIntervalsByText(substr) })
}

// QueryPointsByTime returns, per point tier with at least one hit, the points
// at exactly time.
func (d *Document) QueryPointsByTime(time float64) []TierMatch[Point] {
	return collect(d, func(t Tier) []Point { return t.FindPointsByTime(time) })
}

func collect[T any](d *Document, find func(Tier) []T) []TierMatch[T] {
	var out []TierMatch[T]
	for i, t := range d.tiers {
		if found := find(t); len(found) > 0 {
			out = append(out, TierMatch[T]{Tier: t.Name, Index: i, Matches: found})
		}
	}

	return out
}
