package swarm

import (
	"math"
	"sort"

	"myrmex/internal/model"
	"myrmex/internal/telemetry"
)

const kmPerDegree = 111.0

const (
	concentrateThreshold = 0.7
	retreatThreshold     = 0.3
	cohesionDecay        = 10.0
	alignmentRetention   = 0.8
	alignmentBlend       = 0.2
	separationGain       = 0.1
	separationMinDistKm  = 0.001
)

// Collective aggregates a set of agents into swarm-level state:
// centroid, cohesion, average arousal, and the majority consensus.
type Collective struct {
	SwarmID      int                     `json:"swarm_id"`
	Agents       map[string]*Agent       `json:"agents"`
	Consensus    string                  `json:"consensus"`
	Coordination model.CoordinationState `json:"coordination"`
	Faults       *telemetry.Counters     `json:"-"`
}

func NewCollective(swarmID int) *Collective {
	return &Collective{
		SwarmID:   swarmID,
		Agents:    make(map[string]*Agent),
		Consensus: model.ConsensusExplore,
		Coordination: model.CoordinationState{
			AverageArousal: 0.5,
			GroupCohesion:  0.5,
		},
	}
}

func (c *Collective) AddAgent(agent *Agent) {
	c.Agents[agent.ID] = agent
}

// AgentIDs returns the ids in sorted order. Every routine that walks
// the agent map goes through this so results do not depend on map
// iteration order.
func (c *Collective) AgentIDs() []string {
	ids := make([]string, 0, len(c.Agents))
	for id := range c.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UpdateCentroid recomputes the mean position and arousal. An empty
// collective leaves the previous centroid in place.
func (c *Collective) UpdateCentroid() {
	if len(c.Agents) == 0 {
		if c.Faults != nil {
			c.Faults.EmptyCollective()
		}
		return
	}

	var sumLat, sumLon, sumArousal float64
	for _, agent := range c.Agents {
		sumLat += agent.Lat
		sumLon += agent.Lon
		sumArousal += agent.Decision.Arousal
	}

	n := float64(len(c.Agents))
	c.Coordination.CentroidLat = sumLat / n
	c.Coordination.CentroidLon = sumLon / n
	c.Coordination.AverageArousal = sumArousal / n
}

// UpdateCohesion maps the average distance to centroid onto (0, 1]
// with an exponential falloff.
func (c *Collective) UpdateCohesion() {
	if len(c.Agents) == 0 {
		if c.Faults != nil {
			c.Faults.EmptyCollective()
		}
		c.Coordination.GroupCohesion = 0.0
		return
	}

	distanceSum := 0.0
	for _, agent := range c.Agents {
		dlat := agent.Lat - c.Coordination.CentroidLat
		dlon := agent.Lon - c.Coordination.CentroidLon
		distanceSum += math.Sqrt(dlat*dlat + dlon*dlon)
	}

	avgDistance := distanceSum / float64(len(c.Agents))
	c.Coordination.GroupCohesion = clamp01(math.Exp(-avgDistance * cohesionDecay))
}

// UpdateConsensus buckets each agent by task priority and takes the
// majority. The tie-break order is fixed (explore, concentrate,
// retreat) so identical inputs always elect the same winner.
func (c *Collective) UpdateConsensus() {
	if len(c.Agents) == 0 {
		if c.Faults != nil {
			c.Faults.EmptyCollective()
		}
		return
	}

	var explore, concentrate, retreat int
	for _, agent := range c.Agents {
		switch p := agent.Decision.TaskPriority; {
		case p > concentrateThreshold:
			concentrate++
		case p < retreatThreshold:
			retreat++
		default:
			explore++
		}
	}

	winner := model.ConsensusExplore
	best := explore
	if concentrate > best {
		winner = model.ConsensusConcentrate
		best = concentrate
	}
	if retreat > best {
		winner = model.ConsensusRetreat
	}
	c.Consensus = winner
}

// Align blends each agent's heading toward its neighborhood average,
// self included. Deltas are computed against a snapshot of headings
// taken before any mutation, then applied in a second pass.
func (c *Collective) Align(neighborRadiusKm float64) {
	ids := c.AgentIDs()
	next := make(map[string]float64, len(ids))

	for _, id := range ids {
		agent := c.Agents[id]
		avgHeading := agent.Heading
		neighbors := 0

		for _, otherID := range ids {
			if otherID == id {
				continue
			}
			other := c.Agents[otherID]
			dlat := other.Lat - agent.Lat
			dlon := other.Lon - agent.Lon
			distKm := math.Sqrt(dlat*dlat+dlon*dlon) * kmPerDegree
			if distKm < neighborRadiusKm {
				avgHeading += other.Heading
				neighbors++
			}
		}

		if neighbors > 0 {
			avgHeading /= float64(neighbors + 1)
			next[id] = alignmentRetention*agent.Heading + alignmentBlend*avgHeading
		} else {
			next[id] = agent.Heading
		}
	}

	for _, id := range ids {
		c.Agents[id].Heading = next[id]
	}
}

// Separate pushes agents apart with an inverse-square repulsion from
// any neighbor inside the minimum distance. Same two-phase shape as
// Align: all corrections are derived from pre-update positions.
func (c *Collective) Separate(minDistanceKm float64) {
	ids := c.AgentIDs()
	type correction struct{ lat, lon float64 }
	deltas := make(map[string]correction, len(ids))

	for _, id := range ids {
		agent := c.Agents[id]
		var repLat, repLon float64

		for _, otherID := range ids {
			if otherID == id {
				continue
			}
			other := c.Agents[otherID]
			dlat := agent.Lat - other.Lat
			dlon := agent.Lon - other.Lon
			distKm := math.Sqrt(dlat*dlat+dlon*dlon) * kmPerDegree
			if distKm < minDistanceKm {
				if distKm <= separationMinDistKm {
					// Coincident pair: the inverse-square term would
					// blow up, so skip it and count the guard.
					if c.Faults != nil {
						c.Faults.DivisionGuard()
					}
					continue
				}
				repLat += dlat / (distKm * distKm)
				repLon += dlon / (distKm * distKm)
			}
		}
		deltas[id] = correction{lat: repLat, lon: repLon}
	}

	for _, id := range ids {
		c.Agents[id].VelLat += deltas[id].lat * separationGain
		c.Agents[id].VelLon += deltas[id].lon * separationGain
	}
}

// Step advances every agent and refreshes the aggregate state in a
// fixed order: move, centroid, cohesion, consensus.
func (c *Collective) Step(dtSeconds float64) {
	for _, id := range c.AgentIDs() {
		c.Agents[id].Move(dtSeconds)
	}

	c.UpdateCentroid()
	c.UpdateCohesion()
	c.UpdateConsensus()

	c.Coordination.TimeSinceDecisionS += dtSeconds
}
