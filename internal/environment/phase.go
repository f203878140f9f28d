package environment

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Phase is one of the four stable sky appearances.
type Phase int

const (
	PhaseNight Phase = iota
	PhaseSunrise
	PhaseDay
	PhaseSunset
)

var phaseNames = [...]string{
	PhaseNight:   "night",
	PhaseSunrise: "sunrise",
	PhaseDay:     "day",
	PhaseSunset:  "sunset",
}

// Phases lists every phase in cycle order.
func Phases() []Phase {
	return []Phase{PhaseNight, PhaseSunrise, PhaseDay, PhaseSunset}
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) Valid() bool {
	return p >= PhaseNight && p <= PhaseSunset
}

// Next returns the phase that follows p in the cycle.
func (p Phase) Next() Phase {
	return (p + 1) % Phase(len(phaseNames))
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	parsed, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase maps a case-insensitive phase name to a Phase. Unknown names
// that are close to a real one produce a suggestion in the error.
func ParsePhase(name string) (Phase, error) {
	in := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range phaseNames {
		if in == candidate {
			return Phase(i), nil
		}
	}
	if suggestion, ok := closestPhase(in); ok {
		return 0, fmt.Errorf("unknown phase %q (did you mean %q?)", name, suggestion)
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

func closestPhase(in string) (string, bool) {
	if in == "" {
		return "", false
	}
	best := ""
	bestDist := -1
	for _, candidate := range phaseNames {
		dist := levenshtein.ComputeDistance(in, candidate)
		if dist > suggestionLimit(len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return best, bestDist >= 0
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
