package environment

import (
	"math"
	"testing"
)

func TestInWindowBoundaries(t *testing.T) {
	tests := map[string]struct {
		now  float64
		want bool
	}{
		"before":       {now: 359.999, want: false},
		"at start":     {now: 360, want: true},
		"inside":       {now: 375, want: true},
		"just inside":  {now: 389.999, want: true},
		"end excluded": {now: 390, want: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := InWindow(tc.now, 360, 30); got != tc.want {
				t.Fatalf("InWindow(%v, 360, 30) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestWindowProgressMidpoint(t *testing.T) {
	if got := WindowProgress(375, 360, 30); got != 0.5 {
		t.Fatalf("WindowProgress(375, 360, 30) = %v, want 0.5", got)
	}
}

func TestWindowProgressStaysInUnitRange(t *testing.T) {
	durations := []float64{-10, 0, 0.5, 30, 600}
	for _, d := range durations {
		for now := 0.0; now < DayMinutes; now += 7.3 {
			p := WindowProgress(now, 360, d)
			if p < 0 || p > 1 || math.IsNaN(p) {
				t.Fatalf("WindowProgress(%v, 360, %v) = %v, want [0,1]", now, d, p)
			}
		}
	}
}

func TestZeroDurationWindowIsInstant(t *testing.T) {
	if InWindow(360, 360, 0) {
		t.Fatalf("zero duration window should never be active")
	}
	if got := WindowProgress(360.01, 360, 0); got != 1 {
		t.Fatalf("progress past a zero window = %v, want 1", got)
	}

	windows := DefaultWindows()
	windows[0].Duration = 0
	if ev := Evaluate(360, windows); ev.Active || ev.Phase != PhaseSunrise {
		t.Fatalf("Evaluate(360) = %+v, want stable sunrise", ev)
	}
}

func TestEvaluateActiveWindow(t *testing.T) {
	ev := Evaluate(375, DefaultWindows())
	if !ev.Active {
		t.Fatalf("Evaluate(375) not active")
	}
	if ev.Window.Name != "dawn" {
		t.Fatalf("window = %q, want dawn", ev.Window.Name)
	}
	if ev.Progress != 0.5 {
		t.Fatalf("progress = %v, want 0.5", ev.Progress)
	}
	if ev.Window.From != PhaseNight || ev.Window.To != PhaseSunrise {
		t.Fatalf("window phases = %v -> %v, want night -> sunrise", ev.Window.From, ev.Window.To)
	}
}

func TestEvaluateStableBands(t *testing.T) {
	tests := []struct {
		now    float64
		phase  Phase
		leadBy string
	}{
		{now: 0, phase: PhaseNight, leadBy: "night"},
		{now: 300, phase: PhaseNight, leadBy: "night"},
		{now: 400, phase: PhaseSunrise, leadBy: "dawn"},
		{now: 479.5, phase: PhaseSunrise, leadBy: "dawn"},
		{now: 600, phase: PhaseDay, leadBy: "morning"},
		{now: 959, phase: PhaseDay, leadBy: "morning"},
		{now: 1000, phase: PhaseSunset, leadBy: "dusk"},
		{now: 1319, phase: PhaseSunset, leadBy: "dusk"},
		{now: 1400, phase: PhaseNight, leadBy: "night"},
		{now: 1439.99, phase: PhaseNight, leadBy: "night"},
	}
	windows := DefaultWindows()
	for _, tc := range tests {
		ev := Evaluate(tc.now, windows)
		if ev.Active {
			t.Fatalf("Evaluate(%v) active in %q, want stable", tc.now, ev.Window.Name)
		}
		if ev.Phase != tc.phase {
			t.Fatalf("Evaluate(%v).Phase = %v, want %v", tc.now, ev.Phase, tc.phase)
		}
		if ev.Window.Name != tc.leadBy {
			t.Fatalf("Evaluate(%v) led by %q, want %q", tc.now, ev.Window.Name, tc.leadBy)
		}
		blend := Resolve(ev, DefaultTextures())
		if blend.Factor != 0 || blend.TextureA != blend.TextureB {
			t.Fatalf("stable blend at %v = %+v, want single texture and zero blend", tc.now, blend)
		}
	}
}

func TestEvaluateExactlyOneOutcome(t *testing.T) {
	windows := DefaultWindows()
	for now := 0.0; now < DayMinutes; now += 0.25 {
		ev := Evaluate(now, windows)
		matches := 0
		for _, w := range windows {
			if InWindow(now, w.Start, w.Duration) {
				matches++
			}
		}
		if ev.Active != (matches == 1) {
			t.Fatalf("Evaluate(%v).Active = %v with %d matching windows", now, ev.Active, matches)
		}
		if !ev.Phase.Valid() {
			t.Fatalf("Evaluate(%v) produced invalid phase %v", now, ev.Phase)
		}
	}
}

func TestEvaluateFirstMatchWinsOnOverlap(t *testing.T) {
	windows := DefaultWindows()
	windows[1].Start = 370
	ev := Evaluate(380, windows)
	if ev.Window.Name != "dawn" {
		t.Fatalf("window = %q, want dawn to win the overlap", ev.Window.Name)
	}

	overlaps := Overlaps(windows)
	if len(overlaps) != 1 {
		t.Fatalf("Overlaps() = %v, want one overlap", overlaps)
	}
	if overlaps[0].First != "dawn" || overlaps[0].Second != "morning" {
		t.Fatalf("overlap = %v, want dawn/morning", overlaps[0])
	}
}

func TestDefaultWindowsDoNotOverlap(t *testing.T) {
	if got := Overlaps(DefaultWindows()); len(got) != 0 {
		t.Fatalf("Overlaps(DefaultWindows()) = %v, want none", got)
	}
}

func TestWindowsDoNotWrapPastMidnight(t *testing.T) {
	windows := []Window{
		{Name: "late", Start: 1430, Duration: 30, From: PhaseSunset, To: PhaseNight},
		{Name: "early", Start: 5, Duration: 10, From: PhaseNight, To: PhaseSunrise},
	}
	if InWindow(10, 1430, 30) {
		t.Fatalf("InWindow(10, 1430, 30) = true, want the span truncated at midnight")
	}
	if got := Overlaps(windows); len(got) != 0 {
		t.Fatalf("Overlaps() = %v, want none", got)
	}
	if ev := Evaluate(10, windows); ev.Window.Name != "early" {
		t.Fatalf("Evaluate(10) window = %q, want early", ev.Window.Name)
	}
	if ev := Evaluate(1435, windows); !ev.Active || ev.Window.Name != "late" {
		t.Fatalf("Evaluate(1435) = %+v, want late active", ev)
	}
}

func TestEvaluateWithoutWindows(t *testing.T) {
	ev := Evaluate(720, nil)
	if ev.Active || ev.Phase != PhaseNight {
		t.Fatalf("Evaluate without windows = %+v, want stable night", ev)
	}
}
