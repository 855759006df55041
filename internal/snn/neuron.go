package snn

import (
	"math/rand"
)

const (
	defaultThreshold       = 0.2
	defaultRestPotential   = -0.7
	defaultLeakConductance = 0.1
	defaultTimeConstantMS  = 20.0
	defaultRefractoryMS    = 2.0

	// Nominal membrane capacitance used by the Euler step. The model is
	// normalized, not biophysical.
	nominalCapacitance = 20.0

	hyperpolarizeOffset = 0.05
)

// Neuron is a leaky integrate-and-fire unit. Time is local to the unit:
// every Integrate call advances its clock by the caller-supplied dt, so
// the same step function works for variable timestep schedules.
type Neuron struct {
	ID              int     `json:"id"`
	Potential       float64 `json:"potential"`
	Threshold       float64 `json:"threshold"`
	RestPotential   float64 `json:"rest_potential"`
	LeakConductance float64 `json:"leak_conductance"`
	TimeConstantMS  float64 `json:"time_constant_ms"`
	RefractoryMS    float64 `json:"refractory_ms"`
	ClockMS         float64 `json:"clock_ms"`
	LastSpikeMS     float64 `json:"last_spike_ms"`
	SpikeCount      int     `json:"spike_count"`
}

func NewNeuron(id int) Neuron {
	return Neuron{
		ID:              id,
		Potential:       defaultRestPotential,
		Threshold:       defaultThreshold,
		RestPotential:   defaultRestPotential,
		LeakConductance: defaultLeakConductance,
		TimeConstantMS:  defaultTimeConstantMS,
		RefractoryMS:    defaultRefractoryMS,
	}
}

// Integrate advances the membrane potential by one Euler step of
// dV/dt = (-g_leak*(V - V_rest) + I) / C and reports whether the unit
// spiked. A unit in its refractory window is held hyperpolarized and
// cannot spike.
func (n *Neuron) Integrate(inputCurrent, dtMS float64) bool {
	n.ClockMS += dtMS

	if n.InRefractory(n.ClockMS) {
		n.Potential = n.RestPotential - hyperpolarizeOffset
		return false
	}

	leakCurrent := n.LeakConductance * (n.Potential - n.RestPotential)
	dvdt := (-leakCurrent + inputCurrent) / nominalCapacitance
	n.Potential += dvdt * dtMS

	if n.Potential > n.Threshold {
		n.Potential = n.RestPotential
		n.LastSpikeMS = n.ClockMS
		n.SpikeCount++
		return true
	}
	return false
}

func (n *Neuron) InRefractory(nowMS float64) bool {
	if n.SpikeCount == 0 {
		return false
	}
	return nowMS-n.LastSpikeMS < n.RefractoryMS
}

func (n *Neuron) Reset() {
	n.Potential = n.RestPotential
	n.ClockMS = 0
	n.LastSpikeMS = 0
	n.SpikeCount = 0
}

// PoissonSource emits stimulus spikes at a target rate. The generator is
// explicitly seeded by the caller so stimulus trains are reproducible.
type PoissonSource struct {
	RateHz float64
	rng    *rand.Rand
}

func NewPoissonSource(rateHz float64, rng *rand.Rand) *PoissonSource {
	return &PoissonSource{RateHz: rateHz, rng: rng}
}

func (p *PoissonSource) Spike(dtMS float64) bool {
	prob := p.RateHz / 1000.0 * dtMS
	return p.rng.Float64() < prob
}
