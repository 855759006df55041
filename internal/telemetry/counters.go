package telemetry

import (
	"sync"

	"myrmex/internal/model"
)

// Counters accumulates locally-absorbed fault conditions. None of these
// are fatal; the simulation loop degrades to a no-op and the condition
// is surfaced here instead.
type Counters struct {
	mu sync.Mutex

	emptyCollective   int
	unknownAgent      int
	invalidLayerIndex int
	divisionGuard     int
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) EmptyCollective() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emptyCollective++
}

func (c *Counters) UnknownAgent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unknownAgent++
}

func (c *Counters) InvalidLayerIndex() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidLayerIndex++
}

func (c *Counters) DivisionGuard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.divisionGuard++
}

func (c *Counters) Snapshot() model.FaultCounters {
	c.mu.Lock()
	defer c.mu.Unlock()

	return model.FaultCounters{
		EmptyCollective:   c.emptyCollective,
		UnknownAgent:      c.unknownAgent,
		InvalidLayerIndex: c.invalidLayerIndex,
		DivisionGuard:     c.divisionGuard,
	}
}

func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.emptyCollective = 0
	c.unknownAgent = 0
	c.invalidLayerIndex = 0
	c.divisionGuard = 0
}
