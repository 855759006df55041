package snn

import (
	"math/rand"
	"testing"
)

func TestNeuronDefaultsBelowThreshold(t *testing.T) {
	n := NewNeuron(1)
	if n.ID != 1 {
		t.Fatalf("id=%d want=1", n.ID)
	}
	if n.Potential >= n.Threshold {
		t.Fatalf("resting potential %f should be below threshold %f", n.Potential, n.Threshold)
	}
}

func TestNeuronSpikesUnderSustainedCurrent(t *testing.T) {
	n := NewNeuron(1)

	spiked := false
	for i := 0; i < 100; i++ {
		if n.Integrate(0.5, 1.0) {
			spiked = true
			break
		}
	}
	if !spiked {
		t.Fatal("expected a spike within 100 steps of supra-threshold current")
	}
	if n.Potential != n.RestPotential {
		t.Fatalf("potential after spike=%f want reset to rest=%f", n.Potential, n.RestPotential)
	}
}

func TestNeuronIntegrationStepScale(t *testing.T) {
	n := NewNeuron(1)

	// At rest the leak term is zero, so one 1 ms step under 0.1 input
	// moves the membrane by exactly I/C * dt = 0.1/20 * 1.0. The step
	// is taken in milliseconds; there is no ms-to-s rescaling.
	if n.Integrate(0.1, 1.0) {
		t.Fatal("unexpected spike on first step")
	}
	want := -0.7 + 0.005
	if n.Potential != want {
		t.Fatalf("potential after one step=%v want=%v", n.Potential, want)
	}
}

func TestNeuronRefractoryBlocksSecondSpike(t *testing.T) {
	n := NewNeuron(1)

	first := -1
	for i := 0; i < 200; i++ {
		if n.Integrate(0.5, 1.0) {
			first = i
			break
		}
	}
	if first < 0 {
		t.Fatal("expected an initial spike")
	}

	// Refractory period is 2 ms; the next two 1 ms steps cannot spike no
	// matter the drive.
	for i := 0; i < 2; i++ {
		if n.Integrate(10.0, 1.0) {
			t.Fatalf("spike %d ms after first spike, inside refractory window", i)
		}
	}
}

func TestNeuronRefractoryHyperpolarizes(t *testing.T) {
	n := NewNeuron(1)
	n.SpikeCount = 1
	n.LastSpikeMS = n.ClockMS

	n.Integrate(5.0, 1.0)
	if n.Potential >= n.RestPotential {
		t.Fatalf("refractory potential=%f want below rest=%f", n.Potential, n.RestPotential)
	}
}

func TestNeuronReset(t *testing.T) {
	n := NewNeuron(1)
	for i := 0; i < 100; i++ {
		n.Integrate(0.5, 1.0)
	}
	n.Reset()

	if n.Potential != n.RestPotential || n.SpikeCount != 0 || n.ClockMS != 0 {
		t.Fatalf("unexpected state after reset: %+v", n)
	}
}

func TestPoissonSourceRate(t *testing.T) {
	src := NewPoissonSource(100.0, rand.New(rand.NewSource(7)))

	spikes := 0
	for i := 0; i < 1000; i++ {
		if src.Spike(1.0) {
			spikes++
		}
	}
	// 100 Hz over 1000 ms should land near 100 events.
	if spikes < 50 || spikes > 150 {
		t.Fatalf("spike count=%d want within [50,150]", spikes)
	}
}

func TestPoissonSourceReproducible(t *testing.T) {
	a := NewPoissonSource(50.0, rand.New(rand.NewSource(11)))
	b := NewPoissonSource(50.0, rand.New(rand.NewSource(11)))

	for i := 0; i < 500; i++ {
		if a.Spike(1.0) != b.Spike(1.0) {
			t.Fatalf("diverged at step %d with identical seeds", i)
		}
	}
}
