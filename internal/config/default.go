package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"skycycle/internal/environment"
)

// Default returns a configuration populated with the standard cycle so that a
// server can be started without any prior configuration.
func Default() Config {
	textures := environment.DefaultTextures()
	var windows []WindowConfig
	for _, w := range environment.DefaultWindows() {
		wc := WindowConfig{
			Name:            w.Name,
			Start:           FormatClock(w.Start),
			DurationMinutes: w.Duration,
			From:            w.From.String(),
			To:              w.To.String(),
		}
		for _, stop := range w.Gradient.Stops() {
			wc.Gradient = append(wc.Gradient, ColorStopConfig{T: stop.T, Color: stop.Color.Hex()})
		}
		windows = append(windows, wc)
	}
	var curve []KeyframeConfig
	for _, k := range environment.DefaultIntensity().Keys() {
		curve = append(curve, KeyframeConfig{T: k.T, Value: k.Value})
	}
	return Config{
		ListenAddress: "0.0.0.0",
		HTTPPort:      28090,
		TickRate:      "33ms",
		Cycle: CycleConfig{
			MinutesPerRealSecond: 1,
			StartHour:            5,
			LightAzimuth:         30,
			GradientBlend:        string(environment.BlendRGB),
			Textures: TextureConfig{
				Night:   textures[environment.PhaseNight],
				Sunrise: textures[environment.PhaseSunrise],
				Day:     textures[environment.PhaseDay],
				Sunset:  textures[environment.PhaseSunset],
			},
			Windows:        windows,
			IntensityCurve: curve,
			Rotation: RotationConfig{
				Enabled: true,
				Speed:   0.5,
			},
		},
		Network: NetworkConfig{
			Enabled:              false,
			ListenUDP:            ":29000",
			Endpoints:            []string{},
			StreamRate:           "200ms",
			MaxDatagramSizeBytes: 1 << 16,
		},
		Trace: TraceConfig{
			Enabled: false,
			Dir:     "./data/trace",
		},
	}
}

// WriteDefault writes the default configuration to the provided path.
func WriteDefault(path string) error {
	cfg := Default()
	return Write(path, &cfg)
}

// Write stores cfg as YAML at path, creating the directory when needed.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
