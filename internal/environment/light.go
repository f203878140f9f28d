package environment

// Euler is an orientation in degrees around the X, Y and Z axes.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LightOrientation places the directional light on a full daily arc:
// elevation runs from -90 at midnight through 90 at noon, with a fixed
// azimuth around Y.
func LightOrientation(dayFraction, azimuth float64) Euler {
	return Euler{X: dayFraction*360 - 90, Y: azimuth, Z: 0}
}
