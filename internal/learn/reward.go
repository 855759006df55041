package learn

import (
	"sort"

	"myrmex/internal/model"
	"myrmex/internal/telemetry"
)

const (
	RewardTreeGrowth        = "tree_growth"
	RewardSoilHealth        = "soil_health"
	RewardWildlifeReturn    = "wildlife_return"
	RewardWaterConservation = "water_conservation"
	RewardFireRiskReduction = "fire_risk_reduction"
	RewardPenalty           = "penalty"
)

// RewardSignal is a tagged ecological outcome. Penalties carry a
// positive magnitude and are negated on conversion.
type RewardSignal struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

func (r RewardSignal) Value() float64 {
	if r.Kind == RewardPenalty {
		return -r.Amount
	}
	return r.Amount
}

const (
	defaultValueEstimate  = 0.5
	defaultLearningRate   = 0.1
	defaultDiscountFactor = 0.99
)

// RewardLearner tracks one agent's reinforcement state. The value
// estimate persists across ticks and episodes; only the per-episode
// reward list is cleared at an episode boundary.
type RewardLearner struct {
	AgentID          string    `json:"agent_id"`
	CumulativeReward float64   `json:"cumulative_reward"`
	EpisodeRewards   []float64 `json:"episode_rewards"`
	ValueEstimate    float64   `json:"value_estimate"`
	LearningRate     float64   `json:"learning_rate"`
	DiscountFactor   float64   `json:"discount_factor"`
}

func NewRewardLearner(agentID string) *RewardLearner {
	return &RewardLearner{
		AgentID:        agentID,
		ValueEstimate:  defaultValueEstimate,
		LearningRate:   defaultLearningRate,
		DiscountFactor: defaultDiscountFactor,
	}
}

// Receive folds one reward into the cumulative total, the episode
// list, and the value estimate. The TD update deliberately uses the
// learner's own estimate for both current and successor state:
// V += alpha * (r + gamma*V - V). Do not "correct" this to TD(0).
func (l *RewardLearner) Receive(signal RewardSignal) {
	l.receiveValue(signal.Value())
}

func (l *RewardLearner) receiveValue(r float64) {
	l.CumulativeReward += r
	l.EpisodeRewards = append(l.EpisodeRewards, r)

	tdError := r + l.DiscountFactor*l.ValueEstimate - l.ValueEstimate
	l.ValueEstimate += l.LearningRate * tdError
}

func (l *RewardLearner) AverageEpisodeReward() float64 {
	if len(l.EpisodeRewards) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range l.EpisodeRewards {
		sum += r
	}
	return sum / float64(len(l.EpisodeRewards))
}

// Advantage is A(s,a) = Q(s,a) - V(s).
func (l *RewardLearner) Advantage(actionValue float64) float64 {
	return actionValue - l.ValueEstimate
}

// StartEpisode clears the episode reward list only; cumulative reward
// and the value estimate carry over.
func (l *RewardLearner) StartEpisode() {
	l.EpisodeRewards = l.EpisodeRewards[:0]
}

// RewardPool owns the learners for a swarm, keyed by agent id.
type RewardPool struct {
	PoolID           int
	CollectiveReward float64
	Faults           *telemetry.Counters

	learners map[string]*RewardLearner
}

func NewRewardPool(poolID int) *RewardPool {
	return &RewardPool{
		PoolID:   poolID,
		learners: make(map[string]*RewardLearner),
	}
}

func (p *RewardPool) Register(learner *RewardLearner) {
	p.learners[learner.AgentID] = learner
}

func (p *RewardPool) Learner(agentID string) (*RewardLearner, bool) {
	l, ok := p.learners[agentID]
	return l, ok
}

func (p *RewardPool) Size() int {
	return len(p.learners)
}

// DistributeShared splits a collective reward equally across every
// registered learner (cooperative mode).
func (p *RewardPool) DistributeShared(signal RewardSignal) {
	r := signal.Value()
	p.CollectiveReward += r

	if len(p.learners) == 0 {
		if p.Faults != nil {
			p.Faults.DivisionGuard()
		}
		return
	}

	share := r / float64(len(p.learners))
	for _, learner := range p.learners {
		learner.receiveValue(share)
	}
}

// RewardAgent delivers an individual reward. Unknown agent ids are
// absorbed as a counted no-op.
func (p *RewardPool) RewardAgent(agentID string, signal RewardSignal) {
	learner, ok := p.learners[agentID]
	if !ok {
		if p.Faults != nil {
			p.Faults.UnknownAgent()
		}
		return
	}
	learner.Receive(signal)
}

func (p *RewardPool) AverageValueEstimate() float64 {
	if len(p.learners) == 0 {
		return 0
	}
	sum := 0.0
	for _, learner := range p.learners {
		sum += learner.ValueEstimate
	}
	return sum / float64(len(p.learners))
}

// Summaries returns per-learner records in agent-id order.
func (p *RewardPool) Summaries() []model.RewardSummary {
	ids := make([]string, 0, len(p.learners))
	for id := range p.learners {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]model.RewardSummary, 0, len(ids))
	for _, id := range ids {
		learner := p.learners[id]
		out = append(out, model.RewardSummary{
			AgentID:          id,
			CumulativeReward: learner.CumulativeReward,
			ValueEstimate:    learner.ValueEstimate,
			EpisodeRewards:   len(learner.EpisodeRewards),
		})
	}
	return out
}
