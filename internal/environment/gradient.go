package environment

import (
	"fmt"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BlendSpace selects the color space gradients interpolate in.
type BlendSpace string

const (
	BlendRGB BlendSpace = "rgb"
	BlendLab BlendSpace = "lab"
	BlendHcl BlendSpace = "hcl"
)

func ParseBlendSpace(s string) (BlendSpace, error) {
	switch BlendSpace(strings.ToLower(strings.TrimSpace(s))) {
	case "", BlendRGB:
		return BlendRGB, nil
	case BlendLab:
		return BlendLab, nil
	case BlendHcl:
		return BlendHcl, nil
	}
	return "", fmt.Errorf("unknown blend space %q (want rgb, lab or hcl)", s)
}

type GradientStop struct {
	T     float64
	Color colorful.Color
}

// Gradient maps t in [0,1] to a color by interpolating between stops.
type Gradient struct {
	stops []GradientStop
	space BlendSpace
}

// NewGradient copies and orders the stops by T.
func NewGradient(space BlendSpace, stops ...GradientStop) Gradient {
	if space == "" {
		space = BlendRGB
	}
	sorted := append([]GradientStop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })
	return Gradient{stops: sorted, space: space}
}

// SolidGradient evaluates to c everywhere.
func SolidGradient(c colorful.Color) Gradient {
	return NewGradient(BlendRGB, GradientStop{T: 0, Color: c})
}

func (g Gradient) Stops() []GradientStop {
	return append([]GradientStop(nil), g.stops...)
}

// At samples the gradient. An empty gradient is white; t outside the stop
// range takes the nearest end color.
func (g Gradient) At(t float64) colorful.Color {
	if len(g.stops) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	t = clamp01(t)
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if t <= first.T {
		return first.Color
	}
	if t >= last.T {
		return last.Color
	}
	i := sort.Search(len(g.stops), func(i int) bool { return g.stops[i].T > t })
	a, b := g.stops[i-1], g.stops[i]
	span := b.T - a.T
	if span <= 0 {
		return b.Color
	}
	return g.blend(a.Color, b.Color, (t-a.T)/span)
}

func (g Gradient) blend(a, b colorful.Color, k float64) colorful.Color {
	switch g.space {
	case BlendLab:
		return a.BlendLab(b, k).Clamped()
	case BlendHcl:
		return a.BlendHcl(b, k).Clamped()
	default:
		return a.BlendRgb(b, k)
	}
}
