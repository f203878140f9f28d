package environment

import (
	"fmt"
	"math"
)

// progressEpsilon floors window durations so a zero-length window divides
// cleanly and reads as an instantaneous transition.
const progressEpsilon = 0.0001

// Window is a span of game minutes during which From cross-blends into To.
type Window struct {
	Name     string
	Start    float64 // minute of day
	Duration float64 // game minutes
	From     Phase
	To       Phase
	Gradient Gradient
}

func (w Window) End() float64 { return w.Start + w.Duration }

// InWindow reports whether start <= now < start+duration. Spans do not wrap:
// the part of a window past minute 1440 never matches.
func InWindow(now, start, duration float64) bool {
	return now >= start && now < start+duration
}

// WindowProgress is the normalised position of now inside the window.
func WindowProgress(now, start, duration float64) float64 {
	return clamp01((now - start) / math.Max(progressEpsilon, duration))
}

// Evaluation is the outcome of matching a minute of day against the windows.
type Evaluation struct {
	Active   bool
	Window   Window // the matched window, or the one that led into the stable phase
	Phase    Phase
	Progress float64
}

// Evaluate picks the first window in order that contains now. Outside every
// window the stable phase is the To phase of the latest window starting at or
// before now, wrapping to the latest window of the day when none has started.
func Evaluate(now float64, windows []Window) Evaluation {
	for _, w := range windows {
		if InWindow(now, w.Start, w.Duration) {
			p := WindowProgress(now, w.Start, w.Duration)
			phase := w.From
			if p >= 1 {
				phase = w.To
			}
			return Evaluation{Active: true, Window: w, Phase: phase, Progress: p}
		}
	}
	lead, ok := leadingWindow(now, windows)
	if !ok {
		return Evaluation{Phase: PhaseNight, Progress: 1}
	}
	return Evaluation{Window: lead, Phase: lead.To, Progress: 1}
}

func leadingWindow(now float64, windows []Window) (Window, bool) {
	if len(windows) == 0 {
		return Window{}, false
	}
	var (
		best   Window
		found  bool
		latest = windows[0]
	)
	for _, w := range windows {
		if w.Start > latest.Start {
			latest = w
		}
		if w.Start <= now && (!found || w.Start > best.Start) {
			best, found = w, true
		}
	}
	if !found {
		return latest, true
	}
	return best, true
}

// WindowOverlap names two windows whose spans intersect.
type WindowOverlap struct {
	First  string
	Second string
}

func (o WindowOverlap) String() string {
	return fmt.Sprintf("%s overlaps %s", o.First, o.Second)
}

// Overlaps reports every pair of windows whose [start, start+duration) spans
// intersect, in configuration order. Like InWindow it does not wrap past
// midnight. Evaluation still resolves such pairs by
// order; this is only used to warn about a suspicious cycle.
func Overlaps(windows []Window) []WindowOverlap {
	var out []WindowOverlap
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			a, b := windows[i], windows[j]
			if a.Duration <= 0 || b.Duration <= 0 {
				continue
			}
			if a.Start < b.End() && b.Start < a.End() {
				out = append(out, WindowOverlap{First: a.Name, Second: b.Name})
			}
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
