package sim

import (
	"myrmex/internal/learn"
)

const (
	EventAgentMoves    = "agent_moves"
	EventWaterApplied  = "water_applied"
	EventTreeSprout    = "tree_sprout"
	EventWildfire      = "wildfire"
	EventSensorReading = "sensor_reading"
)

// Event is one scheduled ecological occurrence. Only the fields
// relevant to the kind are set.
type Event struct {
	TimeS      float64 `json:"time_s"`
	Kind       string  `json:"kind"`
	ZoneID     int     `json:"zone_id"`
	AgentID    string  `json:"agent_id,omitempty"`
	DistanceM  float64 `json:"distance_m,omitempty"`
	Liters     float64 `json:"liters,omitempty"`
	Count      int     `json:"count,omitempty"`
	Severity   float64 `json:"severity,omitempty"`
	SoilHealth float64 `json:"soil_health,omitempty"`
}

// ZoneState is the recovering-ecosystem view of one zone.
type ZoneState struct {
	ZoneID       int     `json:"zone_id"`
	TreeDensity  float64 `json:"tree_density"`
	SoilHealth   float64 `json:"soil_health"`
	WaterContent float64 `json:"water_content"`
	WildfireRisk float64 `json:"wildfire_risk"`
}

// Event processing constants: applied water retains a tenth of its
// volume as soil water, a hundred sprouts make one density unit, and
// fire scorches soil health to sixty percent.
const (
	waterRetention    = 0.1
	waterSoilBoost    = 0.05
	sproutsPerDensity = 100.0
	fireSoilFactor    = 0.6
)

// Engine is a FIFO discrete-event harness over zone states. It sits
// outside the decision core: it consumes scheduled events, mutates
// zones, and emits reward signals from the ecological deltas so a
// caller can close the reinforcement loop.
type Engine struct {
	CurrentTimeS float64
	zones        map[int]*ZoneState
	queue        []Event
	rewards      []learn.RewardSignal
}

func NewEngine() *Engine {
	return &Engine{zones: make(map[int]*ZoneState)}
}

func (e *Engine) AddZone(zone ZoneState) {
	z := zone
	e.zones[z.ZoneID] = &z
}

func (e *Engine) Zone(zoneID int) (ZoneState, bool) {
	z, ok := e.zones[zoneID]
	if !ok {
		return ZoneState{}, false
	}
	return *z, true
}

func (e *Engine) Enqueue(event Event) {
	e.queue = append(e.queue, event)
}

func (e *Engine) Pending() int {
	return len(e.queue)
}

// Step pops and processes the next event, advancing the clock to its
// timestamp. Returns false when the queue is empty. Events addressed
// to unknown zones advance the clock but change nothing.
func (e *Engine) Step() (Event, bool) {
	if len(e.queue) == 0 {
		return Event{}, false
	}
	event := e.queue[0]
	e.queue = e.queue[1:]
	e.CurrentTimeS = event.TimeS

	zone := e.zones[event.ZoneID]

	switch event.Kind {
	case EventWaterApplied:
		if zone != nil {
			zone.WaterContent += event.Liters * waterRetention
			zone.SoilHealth += waterSoilBoost
			e.rewards = append(e.rewards, learn.RewardSignal{
				Kind:   learn.RewardWaterConservation,
				Amount: waterSoilBoost,
			})
		}
	case EventTreeSprout:
		if zone != nil {
			delta := float64(event.Count) / sproutsPerDensity
			zone.TreeDensity += delta
			e.rewards = append(e.rewards, learn.RewardSignal{
				Kind:   learn.RewardTreeGrowth,
				Amount: delta,
			})
		}
	case EventWildfire:
		if zone != nil {
			factor := 1.0 - event.Severity
			if factor < 0 {
				factor = 0
			}
			zone.TreeDensity *= factor
			zone.SoilHealth *= fireSoilFactor
			zone.WildfireRisk = event.Severity
			e.rewards = append(e.rewards, learn.RewardSignal{
				Kind:   learn.RewardPenalty,
				Amount: event.Severity,
			})
		}
	case EventSensorReading:
		// Ground truth calibration: trust the reported value.
		if zone != nil {
			zone.SoilHealth = event.SoilHealth
		}
	}

	return event, true
}

// Run drains events until the queue empties or the clock passes
// maxTimeS, returning the number processed.
func (e *Engine) Run(maxTimeS float64) int {
	processed := 0
	for e.CurrentTimeS < maxTimeS {
		if _, ok := e.Step(); !ok {
			break
		}
		processed++
	}
	return processed
}

// DrainRewards hands accumulated reward signals to the caller and
// clears the buffer.
func (e *Engine) DrainRewards() []learn.RewardSignal {
	out := e.rewards
	e.rewards = nil
	return out
}
