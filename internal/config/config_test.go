package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skycycle/internal/environment"
)

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := &Config{}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	if got := cfg.ListenAddress; got != "0.0.0.0" {
		t.Fatalf("ListenAddress = %q, want %q", got, "0.0.0.0")
	}
	if got := cfg.HTTPPort; got != 28090 {
		t.Fatalf("HTTPPort = %d, want %d", got, 28090)
	}
	if got := cfg.TickInterval().Milliseconds(); got != 33 {
		t.Fatalf("TickInterval() = %dms, want 33ms", got)
	}
	if got := cfg.Cycle.MinutesPerRealSecond; got != 1 {
		t.Fatalf("MinutesPerRealSecond = %v, want 1", got)
	}
	if got := len(cfg.Cycle.Windows); got != 4 {
		t.Fatalf("len(Windows) = %d, want 4", got)
	}
	if got := cfg.Cycle.Textures.Sunset; got != "sky_sunset" {
		t.Fatalf("Textures.Sunset = %q, want sky_sunset", got)
	}
	if got := cfg.Network.ListenUDP; got != ":29000" {
		t.Fatalf("Network.ListenUDP = %q, want :29000", got)
	}
	if got := cfg.Trace.Dir; got != "./data/trace" {
		t.Fatalf("Trace.Dir = %q, want ./data/trace", got)
	}
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	window := func(mutate func(*WindowConfig)) *Config {
		cfg := Default()
		mutate(&cfg.Cycle.Windows[1])
		return &cfg
	}
	tests := map[string]*Config{
		"bad port":           {HTTPPort: 70000},
		"bad tick rate":      {TickRate: "fast"},
		"zero tick rate":     {TickRate: "0s"},
		"bad stream rate":    {Network: NetworkConfig{StreamRate: "-1s"}},
		"empty endpoint":     {Network: NetworkConfig{Endpoints: []string{"127.0.0.1:1", " "}}},
		"bad blend space":    {Cycle: CycleConfig{GradientBlend: "cmyk"}},
		"negative intensity": {Cycle: CycleConfig{IntensityCurve: []KeyframeConfig{{T: 0, Value: -1}}}},
		"missing name":       window(func(w *WindowConfig) { w.Name = "" }),
		"duplicate name":     window(func(w *WindowConfig) { w.Name = "dawn" }),
		"bad start":          window(func(w *WindowConfig) { w.Start = "25:00" }),
		"bad from":           window(func(w *WindowConfig) { w.From = "noon" }),
		"same phases":        window(func(w *WindowConfig) { w.To = w.From }),
		"bad color":          window(func(w *WindowConfig) { w.Gradient[0].Color = "orange" }),
		"stop outside range": window(func(w *WindowConfig) { w.Gradient[0].T = 1.5 }),
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateSuggestsPhaseNames(t *testing.T) {
	cfg := Default()
	cfg.Cycle.Windows[0].To = "sunrize"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), "cycle.windows[0].to") || !strings.Contains(err.Error(), `"sunrise"`) {
		t.Fatalf("error %q should point at the field and suggest sunrise", err)
	}
}

func TestLoadReadsYAMLAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skycycle.yml")
	if err := os.WriteFile(path, []byte(`
listen_address: ""
http_port: 0
cycle:
  minutes_per_real_second: 2
  start_hour: 7
  windows:
    - name: dawn
      start: "05:30"
      duration_minutes: 45
      from: night
      to: day
      gradient:
        - {t: 0, color: "#000000"}
        - {t: 1, color: "#ffffff"}
    - name: dusk
      start: "18:00"
      duration_minutes: 60
      from: day
      to: night
  rotation:
    enabled: true
    speed: 2
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ListenAddress != "0.0.0.0" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0", cfg.ListenAddress)
	}
	if cfg.HTTPPort != 28090 {
		t.Errorf("HTTPPort = %d, want 28090", cfg.HTTPPort)
	}

	env, err := cfg.Cycle.Environment()
	if err != nil {
		t.Fatalf("Environment() returned error: %v", err)
	}
	if env.MinutesPerRealSecond != 2 || env.StartHour != 7 {
		t.Errorf("rate/start = %v/%d, want 2/7", env.MinutesPerRealSecond, env.StartHour)
	}
	if len(env.Windows) != 2 {
		t.Fatalf("len(Windows) = %d, want 2", len(env.Windows))
	}
	dawn := env.Windows[0]
	if dawn.Start != 330 || dawn.Duration != 45 || dawn.From != environment.PhaseNight || dawn.To != environment.PhaseDay {
		t.Errorf("dawn window = %+v", dawn)
	}
	if mid := dawn.Gradient.At(0.5); math.Abs(mid.R-0.5) > 1e-9 {
		t.Errorf("dawn gradient midpoint = %v, want grey", mid)
	}
	if !env.RotationEnabled || env.RotationSpeed != 2 {
		t.Errorf("rotation = %v/%v, want enabled at 2", env.RotationEnabled, env.RotationSpeed)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skycycle.yml")
	if err := os.WriteFile(path, []byte("cycle:\n  minutes_per_real_sec: 3\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load() = nil, want schema error")
	}
	if !strings.Contains(err.Error(), "config document") {
		t.Fatalf("error %q should come from the schema check", err)
	}
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	_, err := Parse([]byte("http_port: \"eighty\"\n"))
	if err == nil {
		t.Fatalf("Parse() = nil, want schema error")
	}
}

func TestLoadPropagatesReadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatalf("Load() = nil, want error")
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "skycycle.yml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() returned error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	env, err := cfg.Cycle.Environment()
	if err != nil {
		t.Fatalf("Environment() returned error: %v", err)
	}
	want := environment.DefaultWindows()
	if len(env.Windows) != len(want) {
		t.Fatalf("len(Windows) = %d, want %d", len(env.Windows), len(want))
	}
	for i, w := range env.Windows {
		if w.Name != want[i].Name || w.Start != want[i].Start || w.Duration != want[i].Duration {
			t.Fatalf("window %d = %s@%v+%v, want %s@%v+%v", i, w.Name, w.Start, w.Duration, want[i].Name, want[i].Start, want[i].Duration)
		}
		if got, exp := w.Gradient.At(1).Hex(), want[i].Gradient.At(1).Hex(); got != exp {
			t.Fatalf("window %d gradient end = %s, want %s", i, got, exp)
		}
	}
	if env.Intensity.At(0.5) != environment.DefaultIntensity().At(0.5) {
		t.Fatalf("intensity curve differs from default")
	}
	if env.StartHour != 5 || env.LightAzimuth != 30 || !env.RotationEnabled || env.RotationSpeed != 0.5 {
		t.Fatalf("cycle = %+v, want default start/azimuth/rotation", env)
	}
}

func TestParseClock(t *testing.T) {
	tests := map[string]float64{
		"00:00": 0,
		"06:00": 360,
		"16:00": 960,
		"23:59": 1439,
		" 8:05": 485,
	}
	for in, want := range tests {
		got, err := ParseClock(in)
		if err != nil || got != want {
			t.Fatalf("ParseClock(%q) = %v, %v, want %v", in, got, err, want)
		}
		if in == "06:00" && FormatClock(got) != in {
			t.Fatalf("FormatClock(%v) = %q, want %q", got, FormatClock(got), in)
		}
	}
	for _, bad := range []string{"", "6", "24:00", "10:60", "aa:bb"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) = nil error, want failure", bad)
		}
	}
}
