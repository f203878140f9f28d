package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"skycycle/internal/environment"
)

type Config struct {
	ListenAddress string        `yaml:"listen_address" json:"listen_address"`
	HTTPPort      int           `yaml:"http_port" json:"http_port"`
	TickRate      string        `yaml:"tick_rate" json:"tick_rate"`
	Cycle         CycleConfig   `yaml:"cycle" json:"cycle"`
	Network       NetworkConfig `yaml:"network" json:"network"`
	Trace         TraceConfig   `yaml:"trace" json:"trace"`
}

type CycleConfig struct {
	MinutesPerRealSecond float64          `yaml:"minutes_per_real_second" json:"minutes_per_real_second"`
	StartHour            int              `yaml:"start_hour" json:"start_hour"`
	LightAzimuth         float64          `yaml:"light_azimuth" json:"light_azimuth"`
	GradientBlend        string           `yaml:"gradient_blend" json:"gradient_blend"`
	Textures             TextureConfig    `yaml:"textures" json:"textures"`
	Windows              []WindowConfig   `yaml:"windows" json:"windows"`
	IntensityCurve       []KeyframeConfig `yaml:"intensity_curve" json:"intensity_curve"`
	Rotation             RotationConfig   `yaml:"rotation" json:"rotation"`
}

type TextureConfig struct {
	Night   string `yaml:"night" json:"night"`
	Sunrise string `yaml:"sunrise" json:"sunrise"`
	Day     string `yaml:"day" json:"day"`
	Sunset  string `yaml:"sunset" json:"sunset"`
}

type WindowConfig struct {
	Name            string            `yaml:"name" json:"name"`
	Start           string            `yaml:"start" json:"start"` // "HH:MM"
	DurationMinutes float64           `yaml:"duration_minutes" json:"duration_minutes"`
	From            string            `yaml:"from" json:"from"`
	To              string            `yaml:"to" json:"to"`
	Gradient        []ColorStopConfig `yaml:"gradient" json:"gradient"`
}

type ColorStopConfig struct {
	T     float64 `yaml:"t" json:"t"`
	Color string  `yaml:"color" json:"color"`
}

type KeyframeConfig struct {
	T     float64 `yaml:"t" json:"t"`
	Value float64 `yaml:"value" json:"value"`
}

type RotationConfig struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Speed   float64 `yaml:"speed" json:"speed"` // degrees per real second
}

type NetworkConfig struct {
	Enabled              bool     `yaml:"enabled" json:"enabled"`
	ListenUDP            string   `yaml:"listen_udp" json:"listen_udp"`
	Endpoints            []string `yaml:"endpoints" json:"endpoints"`
	StreamRate           string   `yaml:"stream_rate" json:"stream_rate"`
	MaxDatagramSizeBytes int      `yaml:"max_datagram_size_bytes" json:"max_datagram_size_bytes"`
}

type TraceConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse checks a YAML document against the configuration schema, decodes it
// and validates it.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := checkSchema(doc); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		c.ListenAddress = "0.0.0.0"
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 28090
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port %d out of range", c.HTTPPort)
	}
	if c.TickRate == "" {
		c.TickRate = "33ms"
	}
	if err := positiveDuration("tick_rate", c.TickRate); err != nil {
		return err
	}
	if err := c.Cycle.validate(); err != nil {
		return err
	}
	if c.Network.ListenUDP == "" {
		c.Network.ListenUDP = ":29000"
	}
	if c.Network.StreamRate == "" {
		c.Network.StreamRate = "200ms"
	}
	if err := positiveDuration("network.stream_rate", c.Network.StreamRate); err != nil {
		return err
	}
	if c.Network.MaxDatagramSizeBytes <= 0 {
		c.Network.MaxDatagramSizeBytes = 1 << 16
	}
	for i, ep := range c.Network.Endpoints {
		if strings.TrimSpace(ep) == "" {
			return fmt.Errorf("network.endpoints[%d] must be set", i)
		}
	}
	if c.Trace.Dir == "" {
		c.Trace.Dir = "./data/trace"
	}
	return nil
}

func (c *CycleConfig) validate() error {
	if c.MinutesPerRealSecond <= 0 {
		c.MinutesPerRealSecond = 1
	}
	if _, err := environment.ParseBlendSpace(c.GradientBlend); err != nil {
		return fmt.Errorf("cycle.gradient_blend: %w", err)
	}
	if c.GradientBlend == "" {
		c.GradientBlend = string(environment.BlendRGB)
	}
	defaults := Default().Cycle
	if c.Textures.Night == "" {
		c.Textures.Night = defaults.Textures.Night
	}
	if c.Textures.Sunrise == "" {
		c.Textures.Sunrise = defaults.Textures.Sunrise
	}
	if c.Textures.Day == "" {
		c.Textures.Day = defaults.Textures.Day
	}
	if c.Textures.Sunset == "" {
		c.Textures.Sunset = defaults.Textures.Sunset
	}
	if len(c.Windows) == 0 {
		c.Windows = defaults.Windows
	}
	seen := make(map[string]bool, len(c.Windows))
	for i, w := range c.Windows {
		if w.Name == "" {
			return fmt.Errorf("cycle.windows[%d].name must be set", i)
		}
		if seen[w.Name] {
			return fmt.Errorf("cycle.windows[%d].name %q is duplicated", i, w.Name)
		}
		seen[w.Name] = true
		if _, err := ParseClock(w.Start); err != nil {
			return fmt.Errorf("cycle.windows[%d].start: %w", i, err)
		}
		from, err := environment.ParsePhase(w.From)
		if err != nil {
			return fmt.Errorf("cycle.windows[%d].from: %w", i, err)
		}
		to, err := environment.ParsePhase(w.To)
		if err != nil {
			return fmt.Errorf("cycle.windows[%d].to: %w", i, err)
		}
		if from == to {
			return fmt.Errorf("cycle.windows[%d] must change phase, got %s -> %s", i, from, to)
		}
		for j, stop := range w.Gradient {
			if stop.T < 0 || stop.T > 1 {
				return fmt.Errorf("cycle.windows[%d].gradient[%d].t must be within [0,1]", i, j)
			}
			if _, err := colorful.Hex(stop.Color); err != nil {
				return fmt.Errorf("cycle.windows[%d].gradient[%d].color must be a hex RGB value", i, j)
			}
		}
	}
	if len(c.IntensityCurve) == 0 {
		c.IntensityCurve = defaults.IntensityCurve
	}
	for i, k := range c.IntensityCurve {
		if k.Value < 0 {
			return fmt.Errorf("cycle.intensity_curve[%d].value cannot be negative", i)
		}
	}
	return nil
}

// TickInterval is the period of the engine loop.
func (c *Config) TickInterval() time.Duration {
	d, _ := time.ParseDuration(c.TickRate)
	return d
}

// StreamInterval is the period between UDP frame broadcasts.
func (c *Config) StreamInterval() time.Duration {
	d, _ := time.ParseDuration(c.Network.StreamRate)
	return d
}

// Environment converts the validated cycle section into the engine's
// immutable configuration.
func (c CycleConfig) Environment() (environment.Config, error) {
	space, err := environment.ParseBlendSpace(c.GradientBlend)
	if err != nil {
		return environment.Config{}, err
	}
	out := environment.Config{
		MinutesPerRealSecond: c.MinutesPerRealSecond,
		StartHour:            c.StartHour,
		LightAzimuth:         c.LightAzimuth,
		RotationEnabled:      c.Rotation.Enabled,
		RotationSpeed:        c.Rotation.Speed,
		Textures: environment.Textures{
			environment.PhaseNight:   c.Textures.Night,
			environment.PhaseSunrise: c.Textures.Sunrise,
			environment.PhaseDay:     c.Textures.Day,
			environment.PhaseSunset:  c.Textures.Sunset,
		},
	}
	for i, wc := range c.Windows {
		w, err := wc.window(space)
		if err != nil {
			return environment.Config{}, fmt.Errorf("cycle.windows[%d]: %w", i, err)
		}
		out.Windows = append(out.Windows, w)
	}
	keys := make([]environment.Keyframe, 0, len(c.IntensityCurve))
	for _, k := range c.IntensityCurve {
		keys = append(keys, environment.Keyframe{T: k.T, Value: k.Value})
	}
	out.Intensity = environment.NewCurve(keys...)
	return out, nil
}

func (wc WindowConfig) window(space environment.BlendSpace) (environment.Window, error) {
	start, err := ParseClock(wc.Start)
	if err != nil {
		return environment.Window{}, err
	}
	from, err := environment.ParsePhase(wc.From)
	if err != nil {
		return environment.Window{}, err
	}
	to, err := environment.ParsePhase(wc.To)
	if err != nil {
		return environment.Window{}, err
	}
	stops := make([]environment.GradientStop, 0, len(wc.Gradient))
	for _, s := range wc.Gradient {
		c, err := colorful.Hex(s.Color)
		if err != nil {
			return environment.Window{}, fmt.Errorf("gradient color %q: %w", s.Color, err)
		}
		stops = append(stops, environment.GradientStop{T: s.T, Color: c})
	}
	return environment.Window{
		Name:     wc.Name,
		Start:    start,
		Duration: wc.DurationMinutes,
		From:     from,
		To:       to,
		Gradient: environment.NewGradient(space, stops...),
	}, nil
}

// ParseClock reads "HH:MM" into a minute of day.
func ParseClock(s string) (float64, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("time %q must be HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time %q has an invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q has an invalid minute", s)
	}
	return float64(h*60 + m), nil
}

// FormatClock renders a minute of day as "HH:MM".
func FormatClock(minute float64) string {
	m := int(minute) % environment.DayMinutes
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func positiveDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}
