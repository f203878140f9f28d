package environment

import "math"

const (
	minutesPerHour = 60
	hoursPerDay    = 24
	// DayMinutes is the length of one in-game day in game minutes.
	DayMinutes = minutesPerHour * hoursPerDay
)

// Clock tracks in-game time. Whole minutes are counted explicitly and the
// fraction of the next minute is kept in an accumulator so that variable frame
// times never skip or double count a minute.
type Clock struct {
	minutes     int
	hours       int
	days        int
	accumulator float64
}

// NewClock returns a clock positioned at startHour:00 on day zero.
func NewClock(startHour int) Clock {
	var c Clock
	c.SetStartHour(startHour)
	return c
}

// SetStartHour clamps h to [0,23] and resets minutes and the accumulator.
// The day counter is left alone.
func (c *Clock) SetStartHour(h int) {
	if h < 0 {
		h = 0
	}
	if h > hoursPerDay-1 {
		h = hoursPerDay - 1
	}
	c.hours = h
	c.minutes = 0
	c.accumulator = 0
}

// Advance adds realSeconds*minutesPerRealSecond game minutes. Negative or
// non-finite products are ignored.
func (c *Clock) Advance(realSeconds, minutesPerRealSecond float64) {
	step := realSeconds * minutesPerRealSecond
	if !(step > 0) || math.IsInf(step, 0) {
		return
	}
	c.accumulator += step
	for c.accumulator >= 1 {
		c.accumulator -= 1
		c.tickMinute()
	}
}

func (c *Clock) tickMinute() {
	c.minutes++
	if c.minutes < minutesPerHour {
		return
	}
	c.minutes = 0
	c.hours++
	if c.hours < hoursPerDay {
		return
	}
	c.hours = 0
	c.days++
}

// MinuteOfDay returns the continuous minute of day in [0,1440).
func (c Clock) MinuteOfDay() float64 {
	m := math.Mod(float64(c.hours*minutesPerHour+c.minutes)+c.accumulator, DayMinutes)
	if m < 0 {
		m += DayMinutes
	}
	return m
}

// DayFraction is MinuteOfDay normalised to [0,1).
func (c Clock) DayFraction() float64 {
	return c.MinuteOfDay() / DayMinutes
}

func (c Clock) Hours() int   { return c.hours }
func (c Clock) Minutes() int { return c.minutes }
func (c Clock) Days() int    { return c.days }
