package learn

import (
	"math"

	"myrmex/internal/snn"
)

// STDPParams configures the two-sided exponential learning kernel. The
// window widths and the decay constant are independent knobs.
type STDPParams struct {
	LearningRate     float64 `json:"learning_rate"`
	PositiveWindowMS float64 `json:"positive_window_ms"`
	NegativeWindowMS float64 `json:"negative_window_ms"`
	TimeConstantMS   float64 `json:"time_constant_ms"`
}

func DefaultSTDPParams() STDPParams {
	return STDPParams{
		LearningRate:     0.01,
		PositiveWindowMS: 20.0,
		NegativeWindowMS: 20.0,
		TimeConstantMS:   20.0,
	}
}

type STDP struct {
	Params STDPParams
}

func NewSTDP(params STDPParams) *STDP {
	return &STDP{Params: params}
}

// WeightChange computes the weight delta for dt = t_post - t_pre.
// Post-after-pre within the positive window potentiates; pre-after-post
// within the negative window depresses; outside both windows the delta
// is exactly zero.
func (s *STDP) WeightChange(dtMS float64) float64 {
	if dtMS > 0 {
		if dtMS < s.Params.PositiveWindowMS {
			return s.Params.LearningRate * math.Exp(-dtMS/s.Params.TimeConstantMS)
		}
		return 0
	}
	if -dtMS < s.Params.NegativeWindowMS {
		return -s.Params.LearningRate * math.Exp(dtMS/s.Params.TimeConstantMS)
	}
	return 0
}

// UpdateWeight applies the timing-derived delta and clamps to [-1, 1].
func (s *STDP) UpdateWeight(currentWeight, tPreMS, tPostMS float64) float64 {
	next := currentWeight + s.WeightChange(tPostMS-tPreMS)
	if next > 1.0 {
		return 1.0
	}
	if next < -1.0 {
		return -1.0
	}
	return next
}

// Window exposes the raw unscaled kernel shape for diagnostics.
func Window(dtMS float64, params STDPParams) float64 {
	if dtMS > 0 && dtMS < params.PositiveWindowMS {
		return math.Exp(-dtMS / params.TimeConstantMS)
	}
	if dtMS < 0 && -dtMS < params.NegativeWindowMS {
		return -math.Exp(dtMS / params.TimeConstantMS)
	}
	return 0
}

// ApplyOnline performs one trace-driven STDP pass over a network.
// A freshly marked trace is exactly 1, so a post-side mark potentiates
// by the pre trace and a pre-side mark depresses by the post trace,
// giving timing sensitivity without absolute spike times.
func ApplyOnline(net *snn.Network, params STDPParams) {
	for _, layer := range net.Layers {
		for i := range layer.Synapses {
			syn := &layer.Synapses[i]
			if syn.TracePost == 1.0 {
				syn.Weight += params.LearningRate * syn.TracePre
			}
			if syn.TracePre == 1.0 {
				syn.Weight -= params.LearningRate * syn.TracePost
			}
			syn.ClampWeight()
		}
	}
}
