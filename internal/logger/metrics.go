package logger

import (
	"sync"
	"time"
)

// Metrics tracks counters and timings. All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

// TimingStats summarizes the recorded durations of one timing
type TimingStats struct {
	Count   int           `json:"count"`
	Total   time.Duration `json:"total"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
}

// Snapshot is a point-in-time copy of all metrics
type Snapshot struct {
	Counters map[string]int64       `json:"counters"`
	Timings  map[string]TimingStats `json:"timings"`
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// AddCounter adds delta to a counter, creating it at zero if needed
func (m *Metrics) AddCounter(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// IncrCounter increments a counter by 1
func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

// RecordTiming records one duration measurement
func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], d)
}

// GetSnapshot returns a deep copy of the current metrics
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}

	for k, v := range m.counters {
		snap.Counters[k] = v
	}

	for name, durations := range m.timings {
		if len(durations) == 0 {
			continue
		}

		stats := TimingStats{Count: len(durations), Min: durations[0], Max: durations[0]}
		for _, d := range durations {
			stats.Total += d
			if d < stats.Min {
				stats.Min = d
			}
			if d > stats.Max {
				stats.Max = d
			}
		}
		stats.Average = stats.Total / time.Duration(len(durations))
		snap.Timings[name] = stats
	}

	return snap
}

// Reset clears all counters and timings
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int64)
	m.timings = make(map[string][]time.Duration)
}

// AddCounter adds delta to a counter on the default tracker
func AddCounter(name string, delta int64) {
	defaultMetrics.AddCounter(name, delta)
}

// IncrCounter increments a counter on the default tracker
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// RecordTiming records a timing on the default tracker
func RecordTiming(name string, d time.Duration) {
	defaultMetrics.RecordTiming(name, d)
}

// GetMetricsSnapshot returns a snapshot of the default tracker
func GetMetricsSnapshot() Snapshot {
	return defaultMetrics.GetSnapshot()
}
