package grid

import (
	"fmt"

	"github.com/arloliu/textgrid/errs"
)

// Interval is a labeled span [XMin, XMax] of an interval tier.
//
// A valid interval has XMin < XMax. Ordering among intervals is a tier-level
// invariant and is not enforced here.
type Interval struct {
	XMin float64
	XMax float64
	Text string
}

// Point is a time-stamped mark of a point tier.
type Point struct {
	Time float64
	Mark string
}

// Bounds is a closed time span.
type Bounds struct {
	XMin float64
	XMax float64
}

// Duration returns XMax - XMin.
func (iv Interval) Duration() float64 {
	return iv.XMax - iv.XMin
}

// Contains reports whether t lies in [XMin, XMax], both ends included.
func (iv Interval) Contains(t float64) bool {
	return iv.XMin <= t && t <= iv.XMax
}

// Split partitions the interval at t into [XMin, t] and [t, XMax].
// Both halves keep the original text.
//
// Returns errs.ErrInvalidRange unless XMin < t < XMax.
func (iv Interval) Split(t float64) (Interval, Interval, error) {
	if !(t > iv.XMin && t < iv.XMax) {
		return Interval{}, Interval{}, fmt.Errorf("%w: split time %v not inside (%v, %v)", errs.ErrInvalidRange, t, iv.XMin, iv.XMax)
	}

	return Interval{XMin: iv.XMin, XMax: t, Text: iv.Text},
		Interval{XMin: t, XMax: iv.XMax, Text: iv.Text},
		nil
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%v, %v] %q", iv.XMin, iv.XMax, iv.Text)
}

func (p Point) String() string {
	return fmt.Sprintf("@%v %q", p.Time, p.Mark)
}
