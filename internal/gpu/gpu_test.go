package gpu_test

import (
	"testing"
	"time"

	"github.com/vuebench/vuebench/internal/gpu"
)

func TestParseSample(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		util     float64
		memoryMB float64
		wantErr  bool
	}{
		{"plain", "85, 12345\n", 85, 12345, false},
		{"no trailing newline", "3, 512", 3, 512, false},
		{"first gpu of several", "10, 100\n90, 9000\n", 10, 100, false},
		{"not available fields", "[N/A], [N/A]", 0, 0, false},
		{"empty", "", 0, 0, true},
		{"wrong field count", "85\n", 0, 0, true},
		{"garbage", "hot, dog", 0, 0, true},
	}
	for _, tt := range tests {
		util, mem, err := gpu.ParseSample(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: ParseSample failed: %v", tt.name, err)
			continue
		}
		if util != tt.util || mem != tt.memoryMB {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tt.name, util, mem, tt.util, tt.memoryMB)
		}
	}
}

func TestCollectorStopWithoutSamples(t *testing.T) {
	// A span shorter than the polling interval collects nothing; that is
	// a zero Metrics, not a failure.
	c := gpu.Start(time.Hour)
	m := c.Stop()
	if m.Samples != 0 {
		t.Errorf("expected 0 samples, got %d", m.Samples)
	}
	if m.AvgUtilization != 0 || m.PeakMemoryMB != 0 {
		t.Errorf("expected zero metrics, got %+v", m)
	}
}
