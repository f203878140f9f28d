package environment

import colorful "github.com/lucasb-eyer/go-colorful"

// Default anchors in minutes of day. The dusk window opens at 16:00, which
// gives the cycle a long golden afternoon before sunset.
const (
	DawnStart    = 6 * 60
	MorningStart = 8 * 60
	DuskStart    = 16 * 60
	NightStart   = 22 * 60

	DefaultWindowMinutes = 30
)

func DefaultTextures() Textures {
	return Textures{
		PhaseNight:   "sky_night",
		PhaseSunrise: "sky_sunrise",
		PhaseDay:     "sky_day",
		PhaseSunset:  "sky_sunset",
	}
}

var (
	nightBlue    = rgb(0x1b, 0x23, 0x40)
	sunriseAmber = rgb(0xf4, 0xa2, 0x61)
	noonWhite    = rgb(0xff, 0xf6, 0xe5)
	sunsetRed    = rgb(0xe7, 0x6f, 0x51)
)

// DefaultWindows returns the four transitions of the standard cycle in
// evaluation order.
func DefaultWindows() []Window {
	return []Window{
		{
			Name: "dawn", Start: DawnStart, Duration: DefaultWindowMinutes,
			From: PhaseNight, To: PhaseSunrise,
			Gradient: NewGradient(BlendRGB, GradientStop{0, nightBlue}, GradientStop{1, sunriseAmber}),
		},
		{
			Name: "morning", Start: MorningStart, Duration: DefaultWindowMinutes,
			From: PhaseSunrise, To: PhaseDay,
			Gradient: NewGradient(BlendRGB, GradientStop{0, sunriseAmber}, GradientStop{1, noonWhite}),
		},
		{
			Name: "dusk", Start: DuskStart, Duration: DefaultWindowMinutes,
			From: PhaseDay, To: PhaseSunset,
			Gradient: NewGradient(BlendRGB, GradientStop{0, noonWhite}, GradientStop{1, sunsetRed}),
		},
		{
			Name: "night", Start: NightStart, Duration: DefaultWindowMinutes,
			From: PhaseSunset, To: PhaseNight,
			Gradient: NewGradient(BlendRGB, GradientStop{0, sunsetRed}, GradientStop{1, nightBlue}),
		},
	}
}

func DefaultIntensity() Curve {
	return LinearCurve(0, 0.8, 1, 1.2)
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
