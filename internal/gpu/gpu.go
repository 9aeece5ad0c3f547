// Package gpu samples nvidia-smi while model inference runs, so results
// can carry utilization and VRAM figures alongside throughput. Machines
// without nvidia-smi simply record no GPU metrics.
package gpu

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics aggregates the samples collected over one monitored span.
type Metrics struct {
	AvgUtilization  float64 `json:"avg_utilization"`
	PeakUtilization float64 `json:"peak_utilization"`
	AvgMemoryMB     float64 `json:"avg_memory_mb"`
	PeakMemoryMB    float64 `json:"peak_memory_mb"`
	Samples         int     `json:"samples"`
}

// Available reports whether nvidia-smi can be invoked.
func Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "nvidia-smi", "--version").Run() == nil
}

// ParseSample reads one line of `nvidia-smi
// --query-gpu=utilization.gpu,memory.used --format=csv,noheader,nounits`
// output. Multi-GPU hosts report one line per device; the first is used.
// Fields reported as [N/A] parse as 0.
func ParseSample(output string) (utilization, memoryMB float64, err error) {
	line := strings.TrimSpace(output)
	if line == "" {
		return 0, 0, fmt.Errorf("empty nvidia-smi output")
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected nvidia-smi output %q", line)
	}
	if utilization, err = parseField(parts[0]); err != nil {
		return 0, 0, err
	}
	if memoryMB, err = parseField(parts[1]); err != nil {
		return 0, 0, err
	}
	return utilization, memoryMB, nil
}

func parseField(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "[N/A]" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing nvidia-smi field %q: %w", s, err)
	}
	return v, nil
}

// Collector polls nvidia-smi in the background until stopped.
type Collector struct {
	interval time.Duration

	mu      sync.Mutex
	utils   []float64
	memory  []float64
	stop    chan struct{}
	stopped sync.Once
	done    chan struct{}
}

// Start begins polling at the given interval (0 means 500ms).
func Start(interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	c := &Collector{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.poll()
	return c
}

func (c *Collector) poll() {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *Collector) sample() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=utilization.gpu,memory.used",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		log.Printf("warning: polling nvidia-smi: %v", err)
		return
	}
	util, mem, err := ParseSample(string(out))
	if err != nil {
		log.Printf("warning: %v", err)
		return
	}
	c.mu.Lock()
	c.utils = append(c.utils, util)
	c.memory = append(c.memory, mem)
	c.mu.Unlock()
}

// Stop ends polling and returns the aggregated metrics. A span too short
// to collect any sample yields zero metrics, not an error.
func (c *Collector) Stop() Metrics {
	c.stopped.Do(func() {
		close(c.stop)
	})
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.utils) == 0 {
		return Metrics{}
	}
	m := Metrics{Samples: len(c.utils)}
	for i := range c.utils {
		m.AvgUtilization += c.utils[i]
		m.AvgMemoryMB += c.memory[i]
		if c.utils[i] > m.PeakUtilization {
			m.PeakUtilization = c.utils[i]
		}
		if c.memory[i] > m.PeakMemoryMB {
			m.PeakMemoryMB = c.memory[i]
		}
	}
	m.AvgUtilization /= float64(m.Samples)
	m.AvgMemoryMB /= float64(m.Samples)
	return m
}
