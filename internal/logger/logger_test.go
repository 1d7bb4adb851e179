package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "fetched listing",
			fields:  Fields{"entries": 3},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "fetch failed",
			err:     errors.New("connection refused"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			if logged := buf.Len() > 0; logged != tt.want {
				t.Fatalf("log() logged = %v, want %v", logged, tt.want)
			}
			if !tt.want {
				return
			}

			var entry LogEntry
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
			}
			if entry.Message != tt.message {
				t.Errorf("Message = %q, want %q", entry.Message, tt.message)
			}
			if entry.Level != string(tt.level) {
				t.Errorf("Level = %q, want %q", entry.Level, tt.level)
			}
			if tt.err != nil && entry.Error != tt.err.Error() {
				t.Errorf("Error = %q, want %q", entry.Error, tt.err.Error())
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(tt.minLevel, &buf).log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	previous := Default()
	defer SetDefault(previous)

	var buf bytes.Buffer
	SetDefault(New(LevelDebug, &buf))

	Debug("via default", Fields{"k": "v"})
	Warn("warned", nil)
	Error("failed", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], `"error":"boom"`) {
		t.Errorf("error line = %s, want error field", lines[2])
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("listing.fetches")
	m.IncrCounter("listing.fetches")
	m.AddCounter("listing.entries", 12)

	snapshot := m.GetSnapshot()
	if snapshot.Counters["listing.fetches"] != 2 {
		t.Errorf("Counter = %v, want 2", snapshot.Counters["listing.fetches"])
	}
	if snapshot.Counters["listing.entries"] != 12 {
		t.Errorf("Counter = %v, want 12", snapshot.Counters["listing.entries"])
	}

	m.Reset()
	if len(m.GetSnapshot().Counters) != 0 {
		t.Error("Reset() should clear counters")
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("detail.fetch", 100*time.Millisecond)
	m.RecordTiming("detail.fetch", 200*time.Millisecond)
	m.RecordTiming("detail.fetch", 150*time.Millisecond)

	stats := m.GetSnapshot().Timings["detail.fetch"]
	if stats.Count != 3 {
		t.Errorf("Timing count = %v, want 3", stats.Count)
	}
	if stats.Min != 100*time.Millisecond {
		t.Errorf("Min timing = %v, want 100ms", stats.Min)
	}
	if stats.Max != 200*time.Millisecond {
		t.Errorf("Max timing = %v, want 200ms", stats.Max)
	}
	if stats.Average != 150*time.Millisecond {
		t.Errorf("Average timing = %v, want 150ms", stats.Average)
	}
}

func TestPackageLevelMetrics(t *testing.T) {
	IncrCounter("test")
	AddCounter("test", 2)
	RecordTiming("test", time.Second)

	snapshot := GetMetricsSnapshot()
	if snapshot.Counters["test"] < 3 {
		t.Errorf("Counter = %d, want at least 3", snapshot.Counters["test"])
	}
	if snapshot.Timings["test"].Count < 1 {
		t.Error("timing was not recorded")
	}
}
