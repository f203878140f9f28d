package environment

import "sort"

type Keyframe struct {
	T     float64
	Value float64
}

// Curve is a piecewise-linear function through its keyframes, held flat
// before the first and after the last key.
type Curve struct {
	keys []Keyframe
}

func NewCurve(keys ...Keyframe) Curve {
	sorted := append([]Keyframe(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })
	return Curve{keys: sorted}
}

// LinearCurve is the straight line from (t0,v0) to (t1,v1).
func LinearCurve(t0, v0, t1, v1 float64) Curve {
	return NewCurve(Keyframe{T: t0, Value: v0}, Keyframe{T: t1, Value: v1})
}

func (c Curve) Keys() []Keyframe {
	return append([]Keyframe(nil), c.keys...)
}

func (c Curve) At(t float64) float64 {
	if len(c.keys) == 0 {
		return 0
	}
	first, last := c.keys[0], c.keys[len(c.keys)-1]
	if t <= first.T {
		return first.Value
	}
	if t >= last.T {
		return last.Value
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].T > t })
	a, b := c.keys[i-1], c.keys[i]
	span := b.T - a.T
	if span <= 0 {
		return b.Value
	}
	return a.Value + (b.Value-a.Value)*(t-a.T)/span
}
