package trace

import "skycycle/internal/environment"

// Summary aggregates a run of records.
type Summary struct {
	Records   int
	FirstTick uint64
	LastTick  uint64
	FirstDay  int
	LastDay   int
	Phases    map[environment.Phase]int
	Windows   map[string]int
}

func NewSummary() *Summary {
	return &Summary{
		Phases:  make(map[environment.Phase]int),
		Windows: make(map[string]int),
	}
}

func (s *Summary) Add(rec Record) error {
	if s.Records == 0 {
		s.FirstTick = rec.Tick
		s.FirstDay = rec.Frame.Days
	}
	s.Records++
	s.LastTick = rec.Tick
	s.LastDay = rec.Frame.Days
	s.Phases[rec.Frame.Phase]++
	if rec.Frame.Window != "" {
		s.Windows[rec.Frame.Window]++
	}
	return nil
}

// DaysSpanned is the number of day rollovers seen between the first and
// last record.
func (s *Summary) DaysSpanned() int {
	return s.LastDay - s.FirstDay
}

// Summarize reads every file in order into one summary.
func Summarize(paths []string) (*Summary, error) {
	sum := NewSummary()
	for _, p := range paths {
		if err := ReadFile(p, sum.Add); err != nil {
			return nil, err
		}
	}
	return sum, nil
}
