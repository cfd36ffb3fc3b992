package loadprobe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixed(s Sample, err error) SampleFunc {
	return func(context.Context) (Sample, error) { return s, err }
}

func TestProbe_Busy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold float64
		sample    Sample
		err       error
		want      bool
	}{
		{"disabled never samples", 0, Sample{Load1: 100, CPUs: 1}, nil, false},
		{"quiet host", 0.5, Sample{Load1: 1, CPUs: 4}, nil, false},
		{"busy host", 0.5, Sample{Load1: 6, CPUs: 4}, nil, true},
		{"exactly at threshold is quiet", 1, Sample{Load1: 4, CPUs: 4}, nil, false},
		{"unknown cpu count uses raw load", 1, Sample{Load1: 2}, nil, true},
		{"sampling error is treated as quiet", 0.1, Sample{}, errors.New("no /proc"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &Probe{Threshold: tt.threshold, Sample: fixed(tt.sample, tt.err)}
			assert.Equal(t, tt.want, p.Busy(context.Background()))
		})
	}
}

func TestProbe_NilIsDisabled(t *testing.T) {
	t.Parallel()

	var p *Probe
	assert.False(t, p.Enabled())
	assert.False(t, p.Busy(context.Background()))
}

func TestNew_UsesHostSample(t *testing.T) {
	t.Parallel()

	p := New(0.75, nil)
	assert.True(t, p.Enabled())
	assert.NotNil(t, p.Sample)
}
