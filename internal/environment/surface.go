package environment

import colorful "github.com/lucasb-eyer/go-colorful"

// SkySurface displays two blended panoramas.
type SkySurface interface {
	SetTextures(a, b string)
	SetBlend(factor float64)
	SetRotation(degrees float64)
}

// LightSurface is the directional light driven by the cycle.
type LightSurface interface {
	SetColor(c colorful.Color)
	SetIntensity(v float64)
	SetOrientation(e Euler)
}

// FogSurface receives the ambient fog color, which tracks the light color.
type FogSurface interface {
	SetFogColor(c colorful.Color)
}
