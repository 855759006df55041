package snn

import "math"

const (
	defaultSynapseWeight  = 0.5
	defaultSynapseDelayMS = 1.0
)

// Synapse is a weighted, delayed link between two units. Polarity is
// structural: it is fixed at creation and determines the sign of the
// delivered current regardless of the weight's own sign, which leaves
// plasticity free to explore both weight polarities.
type Synapse struct {
	ID         int     `json:"id"`
	From       int     `json:"from"`
	FromLayer  int     `json:"from_layer"`
	To         int     `json:"to"`
	Weight     float64 `json:"weight"`
	DelayMS    float64 `json:"delay_ms"`
	Excitatory bool    `json:"excitatory"`
	TracePre   float64 `json:"trace_pre"`
	TracePost  float64 `json:"trace_post"`

	line DelayLine
}

func NewSynapse(id, from, to int, excitatory bool) Synapse {
	return Synapse{
		ID:         id,
		From:       from,
		To:         to,
		Weight:     defaultSynapseWeight,
		DelayMS:    defaultSynapseDelayMS,
		Excitatory: excitatory,
	}
}

// Transmit returns the current delivered by one presynaptic spike.
func (s *Synapse) Transmit() float64 {
	if s.Excitatory {
		return s.Weight
	}
	return -s.Weight
}

// DecayTraces applies exponential decay to both eligibility traces.
func (s *Synapse) DecayTraces(dtMS, tauMS float64) {
	decay := math.Exp(-dtMS / tauMS)
	s.TracePre *= decay
	s.TracePost *= decay
}

func (s *Synapse) MarkPreSpike() {
	s.TracePre = 1.0
}

func (s *Synapse) MarkPostSpike() {
	s.TracePost = 1.0
}

func (s *Synapse) ClampWeight() {
	if s.Weight > 1.0 {
		s.Weight = 1.0
	} else if s.Weight < -1.0 {
		s.Weight = -1.0
	}
}

type delayedCurrent struct {
	DeliverAtMS float64 `json:"deliver_at_ms"`
	Current     float64 `json:"current"`
}

// DelayLine queues delivered currents tagged with a future delivery
// time. Entries release strictly in enqueue order once due; there is no
// reordering by priority.
type DelayLine struct {
	DelayMS float64          `json:"delay_ms"`
	NowMS   float64          `json:"now_ms"`
	Pending []delayedCurrent `json:"pending,omitempty"`
}

func NewDelayLine(delayMS float64) DelayLine {
	return DelayLine{DelayMS: delayMS}
}

func (d *DelayLine) Enqueue(current float64) {
	d.Pending = append(d.Pending, delayedCurrent{
		DeliverAtMS: d.NowMS + d.DelayMS,
		Current:     current,
	})
}

// Deliver advances the line to nowMS and returns the summed current of
// every entry whose delivery time has arrived.
func (d *DelayLine) Deliver(nowMS float64) float64 {
	d.NowMS = nowMS

	total := 0.0
	released := 0
	for _, entry := range d.Pending {
		if entry.DeliverAtMS > nowMS {
			break
		}
		total += entry.Current
		released++
	}
	if released > 0 {
		d.Pending = d.Pending[released:]
	}
	return total
}
