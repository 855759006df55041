package engine

import (
	"sync"

	"myrmex/internal/learn"
	"myrmex/internal/model"
	"myrmex/internal/sim"
	"myrmex/internal/swarm"
	"myrmex/internal/telemetry"
)

// Config fixes the per-tick parameters of the decision loop.
type Config struct {
	TickSeconds      float64
	NeighborRadiusKm float64
	MinSeparationKm  float64
	// Workers caps the goroutines used for the per-agent phase.
	// Zero or one runs the phase inline.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		TickSeconds:      1.0,
		NeighborRadiusKm: 5.0,
		MinSeparationKm:  0.05,
		Workers:          1,
	}
}

// Engine runs the fixed-timestep decision loop over a collective. Each
// tick executes three strict phases: per-agent sense/decide, collective
// aggregation with flocking, then planning. Rewards computed by outside
// collaborators are fed in between ticks via FeedRewards.
type Engine struct {
	cfg        Config
	collective *swarm.Collective
	decisions  *swarm.DecisionSystem
	rewards    *learn.RewardPool
	field      *sim.Field
	faults     *telemetry.Counters

	// TargetForZone resolves a mission target zone to coordinates so
	// allocated agents can steer toward it. Optional.
	TargetForZone func(zoneID int) (lat, lon float64, ok bool)

	tick       int
	allocation map[string]model.MissionObjective
	actions    map[string]string
	consensus  []model.ConsensusEvent
}

func New(cfg Config, collective *swarm.Collective, decisions *swarm.DecisionSystem, rewards *learn.RewardPool, field *sim.Field, faults *telemetry.Counters) *Engine {
	collective.Faults = faults
	rewards.Faults = faults
	return &Engine{
		cfg:        cfg,
		collective: collective,
		decisions:  decisions,
		rewards:    rewards,
		field:      field,
		faults:     faults,
		allocation: make(map[string]model.MissionObjective),
		actions:    make(map[string]string),
	}
}

func (e *Engine) Collective() *swarm.Collective     { return e.collective }
func (e *Engine) Decisions() *swarm.DecisionSystem  { return e.decisions }
func (e *Engine) Rewards() *learn.RewardPool        { return e.rewards }
func (e *Engine) Consensus() []model.ConsensusEvent { return e.consensus }

// Tick advances the loop by one step and returns its telemetry record.
func (e *Engine) Tick() model.TickTelemetry {
	e.tick++

	// Phase 1: per-agent sense and decide. Workers write to private
	// slots; shared state is untouched until every agent finishes.
	ids := e.collective.AgentIDs()
	actions := e.decidePhase(ids)

	e.actions = make(map[string]string, len(ids))
	for i, id := range ids {
		e.actions[id] = actions[i]
	}

	// Phase 2: flocking, then movement and aggregation.
	e.collective.Align(e.cfg.NeighborRadiusKm)
	e.collective.Separate(e.cfg.MinSeparationKm)

	previousConsensus := e.collective.Consensus
	e.collective.Step(e.cfg.TickSeconds)
	if e.collective.Consensus != previousConsensus {
		e.consensus = append(e.consensus, model.ConsensusEvent{Tick: e.tick, Decision: e.collective.Consensus})
		e.collective.Coordination.TimeSinceDecisionS = 0
	}

	// Phase 3: planning. Replanning adjusts urgencies before the
	// allocation is rebuilt wholesale.
	e.decisions.Replan(e.collective)
	e.allocation = e.decisions.Allocate(e.collective)
	e.steerAllocated(ids)

	spikeTotal := 0
	for _, id := range ids {
		spikeTotal += e.collective.Agents[id].Decision.RecentSpikes
	}

	return model.TickTelemetry{
		Tick:         e.tick,
		Coordination: e.collective.Coordination,
		Consensus:    e.collective.Consensus,
		SpikeTotal:   spikeTotal,
		Allocated:    len(e.allocation),
		Faults:       e.faults.Snapshot(),
	}
}

// decidePhase refreshes each agent's sensors from the field and runs
// its decision function, fanning out across workers when configured.
// Each worker touches only its own agent and result slot.
func (e *Engine) decidePhase(ids []string) []string {
	actions := make([]string, len(ids))

	decideOne := func(idx int) {
		agent := e.collective.Agents[ids[idx]]
		if e.field != nil {
			threats := agent.Sensors.ThreatsDetected
			agent.Sensors = e.field.ReadingsAt(agent.Lat, agent.Lon, e.tick)
			agent.Sensors.ThreatsDetected = threats
		}
		actions[idx] = agent.Decide()
	}

	workerCount := e.cfg.Workers
	if workerCount > len(ids) {
		workerCount = len(ids)
	}
	if workerCount <= 1 {
		for i := range ids {
			decideOne(i)
		}
		return actions
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				decideOne(idx)
			}
		}()
	}

	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return actions
}

// steerAllocated points agents with a mission at their target zone.
func (e *Engine) steerAllocated(ids []string) {
	if e.TargetForZone == nil {
		return
	}
	for _, id := range ids {
		objective, ok := e.allocation[id]
		if !ok {
			continue
		}
		if lat, lon, ok := e.TargetForZone(objective.TargetZoneID); ok {
			e.collective.Agents[id].MoveToward(lat, lon)
		}
	}
}

// FeedRewards distributes externally computed reward signals across
// the pool in shared mode.
func (e *Engine) FeedRewards(signals []learn.RewardSignal) {
	for _, signal := range signals {
		e.rewards.DistributeShared(signal)
	}
}

// Action reports the latest decided action for an agent id.
func (e *Engine) Action(agentID string) (string, bool) {
	action, ok := e.actions[agentID]
	return action, ok
}

// MissionAction reports the mission-level action for an agent given
// the current allocation.
func (e *Engine) MissionAction(agentID string) string {
	return e.decisions.NextAction(agentID, e.allocation)
}

// Allocation returns the current assignment as sorted entries.
func (e *Engine) Allocation() []model.AllocationEntry {
	return swarm.AllocationEntries(e.allocation)
}

// Snapshots returns the serializable per-agent view in id order.
func (e *Engine) Snapshots() []model.AgentSnapshot {
	ids := e.collective.AgentIDs()
	out := make([]model.AgentSnapshot, 0, len(ids))
	for _, id := range ids {
		agent := e.collective.Agents[id]
		out = append(out, agent.Snapshot(e.actions[id]))
	}
	return out
}
