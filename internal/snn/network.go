package snn

import (
	"math/rand"

	"myrmex/internal/telemetry"
)

const (
	defaultTraceTauMS    = 20.0
	inhibitoryInitWeight = -0.3
	excitatoryInitWeight = 0.5
	defaultStepMS        = 1.0
)

// Layer holds its units and the synapses terminating on them. Synapses
// reference unit ids, never unit handles, so a layer can be serialized
// or mutated independently of its peers.
type Layer struct {
	ID       int       `json:"id"`
	Neurons  []Neuron  `json:"neurons"`
	Synapses []Synapse `json:"synapses"`
	ClockMS  float64   `json:"clock_ms"`

	inputs map[int]float64
}

func NewLayer(id, neuronCount int) *Layer {
	neurons := make([]Neuron, 0, neuronCount)
	for i := 0; i < neuronCount; i++ {
		neurons = append(neurons, NewNeuron(i))
	}
	return &Layer{
		ID:      id,
		Neurons: neurons,
		inputs:  make(map[int]float64),
	}
}

// Inject adds input current for one unit, consumed by the next Step.
func (l *Layer) Inject(neuronID int, current float64) {
	if l.inputs == nil {
		l.inputs = make(map[int]float64)
	}
	l.inputs[neuronID] += current
}

// Step advances every unit by dt and returns the ids that spiked.
// Pending inputs are consumed and cleared.
func (l *Layer) Step(dtMS, traceTauMS float64) []int {
	l.ClockMS += dtMS

	for i := range l.Synapses {
		s := &l.Synapses[i]
		s.DecayTraces(dtMS, traceTauMS)
		if due := s.line.Deliver(l.ClockMS); due != 0 {
			l.Inject(s.To, due)
		}
	}

	var spiked []int
	for i := range l.Neurons {
		n := &l.Neurons[i]
		if n.Integrate(l.inputs[n.ID], dtMS) {
			spiked = append(spiked, n.ID)
		}
	}

	for _, id := range spiked {
		for i := range l.Synapses {
			if l.Synapses[i].To == id {
				l.Synapses[i].MarkPostSpike()
			}
		}
	}

	l.inputs = make(map[int]float64)
	return spiked
}

func (l *Layer) Reset() {
	for i := range l.Neurons {
		l.Neurons[i].Reset()
	}
	l.ClockMS = 0
	l.inputs = make(map[int]float64)
}

// ActivityLevel reports how many units have spiked at least once.
func (l *Layer) ActivityLevel() int {
	active := 0
	for i := range l.Neurons {
		if l.Neurons[i].SpikeCount > 0 {
			active++
		}
	}
	return active
}

// Network is an ordered stack of layers driven in lockstep.
type Network struct {
	ID         int      `json:"id"`
	Layers     []*Layer `json:"layers"`
	TraceTauMS float64  `json:"trace_tau_ms"`

	Faults *telemetry.Counters `json:"-"`

	nextSynapseID int
}

func NewNetwork(id int) *Network {
	return &Network{ID: id, TraceTauMS: defaultTraceTauMS}
}

func (n *Network) AddLayer(layer *Layer) {
	n.Layers = append(n.Layers, layer)
}

// ConnectLayers wires the two layers with the given per-pair
// probability. Out-of-range indices are absorbed as a counted no-op.
// All randomness comes from the supplied generator.
func (n *Network) ConnectLayers(fromIdx, toIdx int, probability float64, rng *rand.Rand) {
	if fromIdx < 0 || fromIdx >= len(n.Layers) || toIdx < 0 || toIdx >= len(n.Layers) {
		if n.Faults != nil {
			n.Faults.InvalidLayerIndex()
		}
		return
	}

	from := n.Layers[fromIdx]
	to := n.Layers[toIdx]
	for i := range from.Neurons {
		for j := range to.Neurons {
			if rng.Float64() >= probability {
				continue
			}
			excitatory := rng.Intn(2) == 0
			syn := NewSynapse(n.nextSynapseID, from.Neurons[i].ID, to.Neurons[j].ID, excitatory)
			syn.FromLayer = fromIdx
			if excitatory {
				syn.Weight = excitatoryInitWeight
			} else {
				syn.Weight = inhibitoryInitWeight
			}
			syn.line = NewDelayLine(syn.DelayMS)
			to.Synapses = append(to.Synapses, syn)
			n.nextSynapseID++
		}
	}
}

// Step advances every layer by dt and propagates the resulting spikes
// through their delay lines for delivery on later steps. The flattened
// spike id list across layers is returned.
func (n *Network) Step(dtMS float64) []int {
	tau := n.TraceTauMS
	if tau <= 0 {
		tau = defaultTraceTauMS
	}

	spikesByLayer := make([][]int, len(n.Layers))
	var all []int
	for i, layer := range n.Layers {
		spikes := layer.Step(dtMS, tau)
		spikesByLayer[i] = spikes
		all = append(all, spikes...)
	}

	for _, layer := range n.Layers {
		for i := range layer.Synapses {
			s := &layer.Synapses[i]
			if s.FromLayer < 0 || s.FromLayer >= len(spikesByLayer) {
				continue
			}
			for _, id := range spikesByLayer[s.FromLayer] {
				if id == s.From {
					s.MarkPreSpike()
					s.line.Enqueue(s.Transmit())
					break
				}
			}
		}
	}

	return all
}

// Run drives the network for the requested number of 1 ms steps and
// returns the spike ids observed at each step.
func (n *Network) Run(steps int) [][]int {
	history := make([][]int, 0, steps)
	for i := 0; i < steps; i++ {
		history = append(history, n.Step(defaultStepMS))
	}
	return history
}

func (n *Network) Reset() {
	for _, layer := range n.Layers {
		layer.Reset()
	}
}

// ActivityLevel sums per-layer activity for diagnostics.
func (n *Network) ActivityLevel() int {
	total := 0
	for _, layer := range n.Layers {
		total += layer.ActivityLevel()
	}
	return total
}
