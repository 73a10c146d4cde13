// Package profile collects named timing and size statistics.
//
// Stats replaces a process-wide table: each document gets its own Stats
// through engine.WithProfile, and the front-end can print a report.
package profile

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	"github.com/dustin/go-humanize"
)

// Bleed is the weight of the newest sample in a running delta.
const Bleed = 0.501

// Option configures Stats.
type Option func(*Stats)

// WithClock sets the time source used for deltas.
func WithClock(now func() time.Time) Option {
	return func(s *Stats) {
		if now != nil {
			s.now = now
		}
	}
}

// Stats is a set of named values. It is safe for concurrent use.
type Stats struct {
	mu      sync.Mutex
	values  map[string]float64
	running map[string]ewma.MovingAverage
	now     func() time.Time
}

// New creates an empty Stats.
func New(opts ...Option) *Stats {
	s := &Stats{
		values:  make(map[string]float64),
		running: make(map[string]ewma.MovingAverage),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start returns the current time, to be passed to a delta method later.
func (s *Stats) Start() time.Time {
	return s.now()
}

// Current sets key to v.
func (s *Stats) Current(key string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// Highest sets key to v if v is larger than the stored value.
func (s *Stats) Highest(key string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; !ok || v > old {
		s.values[key] = v
	}
}

// Lowest sets key to v if v is smaller than the stored value.
func (s *Stats) Lowest(key string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; !ok || v < old {
		s.values[key] = v
	}
}

// HighestDelta records the seconds since start if larger than the stored
// value.
func (s *Stats) HighestDelta(key string, start time.Time) {
	s.Highest(key, s.now().Sub(start).Seconds())
}

// RunningDelta blends the seconds since start into a running average that
// gives the newest sample a weight of Bleed.
func (s *Stats) RunningDelta(key string, start time.Time) {
	delta := s.now().Sub(start).Seconds()

	s.mu.Lock()
	defer s.mu.Unlock()
	avg, ok := s.running[key]
	if !ok {
		// age chosen so that the decay equals Bleed
		avg = ewma.NewMovingAverage(2/Bleed - 1)
		avg.Set(delta)
		s.running[key] = avg
	} else {
		avg.Add(delta)
	}
	s.values[key] = avg.Value()
}

// Get returns the value of key.
func (s *Stats) Get(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the recorded keys in sorted order.
func (s *Stats) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset removes every value.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.values)
	clear(s.running)
}

// Report formats every value on its own line, sorted by key.
func (s *Stats) Report() string {
	var sb strings.Builder
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		fmt.Fprintf(&sb, "%s: %s\n", k, humanize.Ftoa(v))
	}
	return sb.String()
}
