// Package loadprobe samples host load before a timed pair of runs. A busy
// host makes the measured speedup ratio unreliable, so the harness marks it
// approximate instead of pretending it is exact.
package loadprobe

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
)

// Sample is one observation of the host.
type Sample struct {
	Load1 float64
	CPUs  int
}

// PerCPU is the one-minute load average divided by the logical CPU count.
func (s Sample) PerCPU() float64 {
	if s.CPUs <= 0 {
		return s.Load1
	}
	return s.Load1 / float64(s.CPUs)
}

// SampleFunc reads the current host load.
type SampleFunc func(ctx context.Context) (Sample, error)

// Probe reports whether the host is too busy for trustworthy timings.
type Probe struct {
	// Threshold is the per-CPU load above which the host counts as busy.
	// Zero disables the probe.
	Threshold float64
	Sample    SampleFunc
	Logger    *slog.Logger
}

// New returns a Probe backed by gopsutil. threshold 0 disables it.
func New(threshold float64, logger *slog.Logger) *Probe {
	return &Probe{Threshold: threshold, Sample: HostSample, Logger: logger}
}

// Enabled reports whether the probe takes samples at all.
func (p *Probe) Enabled() bool {
	return p != nil && p.Threshold > 0
}

// Busy samples the host and compares its per-CPU load with the threshold.
// Sampling failures are logged and treated as quiet.
func (p *Probe) Busy(ctx context.Context) bool {
	if !p.Enabled() {
		return false
	}
	sample := p.Sample
	if sample == nil {
		sample = HostSample
	}
	s, err := sample(ctx)
	if err != nil {
		p.logger().Warn("failed to sample host load", slog.String("error", err.Error()))
		return false
	}
	busy := s.PerCPU() > p.Threshold
	p.logger().Debug("host load sampled",
		slog.Float64("load1", s.Load1),
		slog.Int("cpus", s.CPUs),
		slog.Bool("busy", busy))
	return busy
}

func (p *Probe) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// HostSample reads the load average and logical CPU count via gopsutil.
func HostSample(ctx context.Context) (Sample, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}
	cpus, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		// Load alone is still a usable signal.
		cpus = 0
	}
	return Sample{Load1: avg.Load1, CPUs: cpus}, nil
}
