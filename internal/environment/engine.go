package environment

import (
	"log"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Config is the immutable description of a cycle. It is read once when the
// engine is built.
type Config struct {
	MinutesPerRealSecond float64
	StartHour            int
	Textures             Textures
	Windows              []Window
	Intensity            Curve
	LightAzimuth         float64
	RotationEnabled      bool
	RotationSpeed        float64 // degrees per real second
}

// Frame is the visual output of one tick. It is pushed to the surfaces and
// handed back to the caller; the engine never reads it again.
type Frame struct {
	Hours       int     `json:"hours"`
	Minutes     int     `json:"minutes"`
	Days        int     `json:"days"`
	MinuteOfDay float64 `json:"minuteOfDay"`
	DayFraction float64 `json:"dayFraction"`
	Phase       Phase   `json:"phase"`
	Window      string  `json:"window,omitempty"`
	Progress    float64 `json:"progress"`
	Blend
	LightColor       colorful.Color `json:"lightColor"`
	LightIntensity   float64        `json:"lightIntensity"`
	LightOrientation Euler          `json:"lightOrientation"`
	Rotation         float64        `json:"skyRotation"`
	RotationEnabled  bool           `json:"rotationEnabled"`
}

type Engine struct {
	cfg      Config
	clock    Clock
	rotation float64

	sky    SkySurface
	light  LightSurface
	fog    FogSurface
	logger *log.Logger
}

type Option func(*Engine)

func WithSky(s SkySurface) Option     { return func(e *Engine) { e.sky = s } }
func WithLight(l LightSurface) Option { return func(e *Engine) { e.light = l } }
func WithFog(f FogSurface) Option     { return func(e *Engine) { e.fog = f } }
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithRotation sets the starting sky rotation in degrees.
func WithRotation(angle float64) Option {
	return func(e *Engine) { e.rotation = AdvanceRotation(angle, 0, 0) }
}

func New(cfg Config, opts ...Option) *Engine {
	cfg = applyDefaults(cfg)
	e := &Engine{
		cfg:   cfg,
		clock: NewClock(cfg.StartHour),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(log.Writer(), "cycle ", log.LstdFlags|log.Lmicroseconds)
	}
	if e.sky == nil {
		e.logger.Printf("no sky surface attached, sky updates disabled")
	}
	if e.light == nil {
		e.logger.Printf("no light surface attached, light updates disabled")
	}
	if e.fog == nil {
		e.logger.Printf("no fog surface attached, fog updates disabled")
	}
	for _, overlap := range Overlaps(cfg.Windows) {
		e.logger.Printf("warning: window %s, the earlier window wins", overlap)
	}
	return e
}

func applyDefaults(cfg Config) Config {
	if cfg.MinutesPerRealSecond <= 0 {
		cfg.MinutesPerRealSecond = 1
	}
	if cfg.Textures == (Textures{}) {
		cfg.Textures = DefaultTextures()
	}
	if len(cfg.Windows) == 0 {
		cfg.Windows = DefaultWindows()
	} else {
		cfg.Windows = append([]Window(nil), cfg.Windows...)
	}
	if len(cfg.Intensity.keys) == 0 {
		cfg.Intensity = DefaultIntensity()
	}
	return cfg
}

// Start pushes a coherent frame for the current clock without advancing it.
func (e *Engine) Start() Frame {
	f := e.frameAt(e.clock)
	e.push(f)
	return f
}

// Tick advances the clock by delta of real time, recomputes the visual state,
// pushes it to the attached surfaces and returns it.
func (e *Engine) Tick(delta time.Duration) Frame {
	if delta < 0 {
		delta = 0
	}
	dt := delta.Seconds()
	e.clock.Advance(dt, e.cfg.MinutesPerRealSecond)
	if e.cfg.RotationEnabled {
		e.rotation = AdvanceRotation(e.rotation, e.cfg.RotationSpeed, dt)
	}
	f := e.frameAt(e.clock)
	e.push(f)
	return f
}

// Evaluate computes the frame for an arbitrary minute of day using the
// current day count and rotation. It does not touch the surfaces.
func (e *Engine) Evaluate(minuteOfDay float64) Frame {
	m := math.Mod(minuteOfDay, DayMinutes)
	if math.IsNaN(m) {
		m = 0
	}
	if m < 0 {
		m += DayMinutes
	}
	whole := int(m)
	c := Clock{
		minutes:     whole % minutesPerHour,
		hours:       whole / minutesPerHour,
		days:        e.clock.days,
		accumulator: m - float64(whole),
	}
	return e.frameAt(c)
}

func (e *Engine) frameAt(c Clock) Frame {
	now := c.MinuteOfDay()
	dayT := now / DayMinutes
	ev := Evaluate(now, e.cfg.Windows)
	f := Frame{
		Hours:            c.hours,
		Minutes:          c.minutes,
		Days:             c.days,
		MinuteOfDay:      now,
		DayFraction:      dayT,
		Phase:            ev.Phase,
		Progress:         ev.Progress,
		Blend:            Resolve(ev, e.cfg.Textures),
		LightColor:       ev.Window.Gradient.At(ev.Progress),
		LightIntensity:   e.cfg.Intensity.At(dayT),
		LightOrientation: LightOrientation(dayT, e.cfg.LightAzimuth),
		Rotation:         e.rotation,
		RotationEnabled:  e.cfg.RotationEnabled,
	}
	if ev.Active {
		f.Window = ev.Window.Name
	}
	return f
}

func (e *Engine) push(f Frame) {
	if e.sky != nil {
		e.sky.SetTextures(f.TextureA, f.TextureB)
		e.sky.SetBlend(f.Factor)
		if f.RotationEnabled {
			e.sky.SetRotation(f.Rotation)
		}
	}
	if e.light != nil {
		e.light.SetColor(f.LightColor)
		e.light.SetIntensity(f.LightIntensity)
		e.light.SetOrientation(f.LightOrientation)
	}
	if e.fog != nil {
		e.fog.SetFogColor(f.LightColor)
	}
}

func (e *Engine) Hours() int           { return e.clock.Hours() }
func (e *Engine) Minutes() int         { return e.clock.Minutes() }
func (e *Engine) Days() int            { return e.clock.Days() }
func (e *Engine) MinuteOfDay() float64 { return e.clock.MinuteOfDay() }
func (e *Engine) Rotation() float64    { return e.rotation }
