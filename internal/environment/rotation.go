package environment

import "math"

// AdvanceRotation moves angle by speed*dt degrees and wraps into [0,360).
func AdvanceRotation(angle, speed, dt float64) float64 {
	next := math.Mod(angle+speed*dt, 360)
	if next < 0 {
		next += 360
	}
	return next
}
