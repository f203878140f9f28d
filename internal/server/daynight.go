package server

import (
	"math"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"skycycle/internal/environment"
)

// DayNightState is what the board last received from the engine, in a shape
// that clients can render without knowing about the engine.
type DayNightState struct {
	Tick           uint64     `json:"tick"`
	TimeOfDay      float64    `json:"timeOfDay"`
	Progress       float64    `json:"progress"`
	Hours          int        `json:"hours"`
	Minutes        int        `json:"minutes"`
	Days           int        `json:"days"`
	Phase          string     `json:"phase"`
	Window         string     `json:"window,omitempty"`
	WindowProgress float64    `json:"windowProgress"`
	Sky            SkyState   `json:"sky"`
	Light          LightState `json:"light"`
	FogColor       string     `json:"fogColor"`
	SunPosition    Vector3    `json:"sunPosition"`
}

type SkyState struct {
	TextureA string  `json:"textureA"`
	TextureB string  `json:"textureB"`
	Blend    float64 `json:"blend"`
	Rotation float64 `json:"rotation"`
}

type LightState struct {
	Color       string            `json:"color"`
	Intensity   float64           `json:"intensity"`
	Orientation environment.Euler `json:"orientation"`
}

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// dayNightBoard stands in for the sky, light and fog of a renderer. The tick
// loop writes it, HTTP and UDP handlers read snapshots.
type dayNightBoard struct {
	mu          sync.RWMutex
	state       DayNightState
	frame       environment.Frame
	orbitRadius float64
}

func newDayNightBoard() *dayNightBoard {
	return &dayNightBoard{orbitRadius: 2000}
}

func (b *dayNightBoard) SetTextures(a, c string) {
	b.mu.Lock()
	b.state.Sky.TextureA, b.state.Sky.TextureB = a, c
	b.mu.Unlock()
}

func (b *dayNightBoard) SetBlend(f float64) {
	b.mu.Lock()
	b.state.Sky.Blend = f
	b.mu.Unlock()
}

func (b *dayNightBoard) SetRotation(deg float64) {
	b.mu.Lock()
	b.state.Sky.Rotation = deg
	b.mu.Unlock()
}

func (b *dayNightBoard) SetColor(c colorful.Color) {
	b.mu.Lock()
	b.state.Light.Color = c.Hex()
	b.mu.Unlock()
}

func (b *dayNightBoard) SetIntensity(v float64) {
	b.mu.Lock()
	b.state.Light.Intensity = v
	b.mu.Unlock()
}

func (b *dayNightBoard) SetOrientation(e environment.Euler) {
	b.mu.Lock()
	b.state.Light.Orientation = e
	b.state.SunPosition = sunPosition(e, b.orbitRadius)
	b.mu.Unlock()
}

func (b *dayNightBoard) SetFogColor(c colorful.Color) {
	b.mu.Lock()
	b.state.FogColor = c.Hex()
	b.mu.Unlock()
}

// observe records the clock side of a frame after the surfaces were updated.
func (b *dayNightBoard) observe(tick uint64, f environment.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = f
	b.state.Tick = tick
	b.state.TimeOfDay = f.MinuteOfDay / 60
	b.state.Progress = f.DayFraction
	b.state.Hours = f.Hours
	b.state.Minutes = f.Minutes
	b.state.Days = f.Days
	b.state.Phase = f.Phase.String()
	b.state.Window = f.Window
	b.state.WindowProgress = f.Progress
}

func (b *dayNightBoard) State() DayNightState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *dayNightBoard) Frame() (uint64, environment.Frame) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state.Tick, b.frame
}

// sunPosition places the light on a sphere: X is the elevation, Y the
// azimuth. Noon puts the sun straight up.
func sunPosition(e environment.Euler, radius float64) Vector3 {
	elev := e.X * math.Pi / 180
	az := e.Y * math.Pi / 180
	return Vector3{
		X: math.Cos(elev) * math.Sin(az) * radius,
		Y: math.Sin(elev) * radius,
		Z: math.Cos(elev) * math.Cos(az) * radius,
	}
}
