package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skycycle/internal/config"
	"skycycle/internal/environment"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	srv, err := New(&cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.handleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestHandleTimeReflectsLastTick(t *testing.T) {
	srv := newTestServer(t)
	// Default start is 05:00 at one game minute per real second.
	srv.step(60*time.Second, time.Now())

	rr := httptest.NewRecorder()
	srv.handleTime(rr, httptest.NewRequest(http.MethodGet, "/time", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var state DayNightState
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Tick != 1 {
		t.Fatalf("Tick = %d, want 1", state.Tick)
	}
	if state.Hours != 6 || state.Minutes != 0 {
		t.Fatalf("time = %02d:%02d, want 06:00", state.Hours, state.Minutes)
	}
	if state.Window != "dawn" || state.Phase != "night" {
		t.Fatalf("window/phase = %s/%s, want dawn/night", state.Window, state.Phase)
	}
	if state.Sky.TextureA != "sky_night" || state.Sky.TextureB != "sky_sunrise" || state.Sky.Blend != 0 {
		t.Fatalf("sky = %+v, want sky_night -> sky_sunrise at 0", state.Sky)
	}
	if state.Light.Color == "" || state.FogColor != state.Light.Color {
		t.Fatalf("light color %q, fog %q", state.Light.Color, state.FogColor)
	}
	for _, key := range []string{"sunPosition", "timeOfDay", "windowProgress"} {
		if !strings.Contains(rr.Body.String(), key) {
			t.Fatalf("body missing %q: %s", key, rr.Body.String())
		}
	}
}

func TestHandlePhaseEvaluatesWithoutAdvancing(t *testing.T) {
	srv := newTestServer(t)
	before := srv.engine.MinuteOfDay()

	for _, query := range []string{"375", "06:15", "1815"} {
		rr := httptest.NewRecorder()
		srv.handlePhase(rr, httptest.NewRequest(http.MethodGet, "/phase?minute="+query, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("minute=%s: status = %d, want %d", query, rr.Code, http.StatusOK)
		}
		var f environment.Frame
		if err := json.Unmarshal(rr.Body.Bytes(), &f); err != nil {
			t.Fatalf("minute=%s: decode: %v", query, err)
		}
		if f.Window != "dawn" {
			t.Fatalf("minute=%s: Window = %q, want dawn", query, f.Window)
		}
		if math.Abs(f.Factor-0.5) > 1e-9 {
			t.Fatalf("minute=%s: blend = %v, want 0.5", query, f.Factor)
		}
		if f.TextureA != "sky_night" || f.TextureB != "sky_sunrise" {
			t.Fatalf("minute=%s: textures = %s/%s", query, f.TextureA, f.TextureB)
		}
	}

	if got := srv.engine.MinuteOfDay(); got != before {
		t.Fatalf("MinuteOfDay() = %v after /phase, want %v", got, before)
	}
}

func TestHandlePhaseRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)
	cases := map[string]string{
		"missing":   "/phase",
		"garbage":   "/phase?minute=dusk",
		"bad clock": "/phase?minute=25:00",
		"nan":       "/phase?minute=NaN",
		"infinite":  "/phase?minute=Inf",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.handlePhase(rr, httptest.NewRequest(http.MethodGet, target, nil))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestNewRejectsBadCycle(t *testing.T) {
	cfg := config.Default()
	cfg.Cycle.GradientBlend = "cmyk"
	if _, err := New(&cfg); err == nil {
		t.Fatal("expected error for unknown gradient blend")
	}
}
