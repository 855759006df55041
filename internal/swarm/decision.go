package swarm

import (
	"fmt"
	"sort"

	"myrmex/internal/model"
)

const (
	replanCohesionFloor = 0.3
	replanArousalFloor  = 0.2
	replanUrgencyCutoff = 0.5
	replanUrgencyDecay  = 0.5
)

// DecisionSystem holds the mission objectives and plans agent
// assignments over a collective.
type DecisionSystem struct {
	Objectives []model.MissionObjective `json:"objectives"`
}

func NewDecisionSystem() *DecisionSystem {
	return &DecisionSystem{}
}

// AddObjective validates and appends a mission objective. A zero agent
// requirement or an out-of-range urgency would corrupt allocation and
// feasibility math, so both fail hard here.
func (d *DecisionSystem) AddObjective(obj model.MissionObjective) error {
	if obj.RequiredAgents < 1 {
		return fmt.Errorf("objective %s: required agents %d, need at least 1", obj.ID, obj.RequiredAgents)
	}
	if obj.Urgency < 0 || obj.Urgency > 1 {
		return fmt.Errorf("objective %s: urgency %f outside [0, 1]", obj.ID, obj.Urgency)
	}
	d.Objectives = append(d.Objectives, obj)
	return nil
}

// Prioritize returns the objectives ranked by descending urgency.
// Equal-urgency objectives keep their insertion order.
func (d *DecisionSystem) Prioritize() []model.MissionObjective {
	ranked := make([]model.MissionObjective, len(d.Objectives))
	copy(ranked, d.Objectives)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Urgency > ranked[j].Urgency
	})
	return ranked
}

// Allocate assigns agents to ranked objectives greedily: each
// objective takes up to its required count from the collective's
// sorted agent ids before the next objective is considered. The
// returned map replaces any previous allocation wholesale.
func (d *DecisionSystem) Allocate(collective *Collective) map[string]model.MissionObjective {
	allocation := make(map[string]model.MissionObjective)
	agentIDs := collective.AgentIDs()
	next := 0

	for _, objective := range d.Prioritize() {
		for taken := 0; taken < objective.RequiredAgents; taken++ {
			if next >= len(agentIDs) {
				return allocation
			}
			allocation[agentIDs[next]] = objective
			next++
		}
	}
	return allocation
}

// AllocationEntries flattens an allocation into sorted serializable
// records.
func AllocationEntries(allocation map[string]model.MissionObjective) []model.AllocationEntry {
	entries := make([]model.AllocationEntry, 0, len(allocation))
	for agentID, obj := range allocation {
		entries = append(entries, model.AllocationEntry{AgentID: agentID, ObjectiveID: obj.ID})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AgentID < entries[j].AgentID })
	return entries
}

// Feasibility scores an objective against the collective's current
// size, cohesion, and arousal, capped at 1.
func (d *DecisionSystem) Feasibility(collective *Collective, obj model.MissionObjective) float64 {
	if len(collective.Agents) == 0 {
		return 0.0
	}

	resources := float64(len(collective.Agents)) / float64(obj.RequiredAgents)
	if resources > 1.0 {
		resources = 1.0
	}

	score := resources*0.4 +
		collective.Coordination.GroupCohesion*0.3 +
		collective.Coordination.AverageArousal*0.3
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Replan halves the urgency of every sub-cutoff objective when the
// swarm is scattered, lethargic, or threatened. Each trigger compounds
// the decay; urgency is never restored.
func (d *DecisionSystem) Replan(collective *Collective) bool {
	lowCohesion := collective.Coordination.GroupCohesion < replanCohesionFloor
	lowArousal := collective.Coordination.AverageArousal < replanArousalFloor

	threats := false
	for _, agent := range collective.Agents {
		if agent.Sensors.ThreatsDetected > 0 {
			threats = true
			break
		}
	}

	if !lowCohesion && !lowArousal && !threats {
		return false
	}

	for i := range d.Objectives {
		if d.Objectives[i].Urgency < replanUrgencyCutoff {
			d.Objectives[i].Urgency *= replanUrgencyDecay
		}
	}
	return true
}

// NextAction maps an agent's allocated objective kind to a mission
// action. Unallocated agents explore.
func (d *DecisionSystem) NextAction(agentID string, allocation map[string]model.MissionObjective) string {
	objective, ok := allocation[agentID]
	if !ok {
		return model.MissionActionExplore
	}

	switch objective.Kind {
	case model.ObjectiveSurvey:
		return model.MissionActionSurvey
	case model.ObjectiveWaterDelivery:
		return model.MissionActionDeliver
	case model.ObjectiveSoilAmendment:
		return model.MissionActionAmend
	case model.ObjectiveWildlifeMonitoring:
		return model.MissionActionMonitor
	case model.ObjectiveFireSuppression:
		return model.MissionActionRetreat
	default:
		return model.MissionActionExplore
	}
}
