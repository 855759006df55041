package learn

import (
	"math"
	"testing"

	"myrmex/internal/telemetry"
)

func TestRewardSignalValue(t *testing.T) {
	cases := map[RewardSignal]float64{
		{Kind: RewardTreeGrowth, Amount: 5.0}: 5.0,
		{Kind: RewardSoilHealth, Amount: 1.5}: 1.5,
		{Kind: RewardPenalty, Amount: 2.0}:    -2.0,
	}
	for signal, want := range cases {
		if got := signal.Value(); got != want {
			t.Fatalf("value(%s,%f)=%f want=%f", signal.Kind, signal.Amount, got, want)
		}
	}
}

func TestRewardLearnerTDUpdate(t *testing.T) {
	learner := NewRewardLearner("a1")
	if learner.ValueEstimate != 0.5 {
		t.Fatalf("initial value=%f want=0.5", learner.ValueEstimate)
	}

	learner.Receive(RewardSignal{Kind: RewardTreeGrowth, Amount: 1.0})

	if learner.CumulativeReward != 1.0 {
		t.Fatalf("cumulative=%f want=1.0", learner.CumulativeReward)
	}
	// V += alpha*(r + gamma*V - V) with the single-state approximation:
	// 0.5 + 0.1*(1 + 0.99*0.5 - 0.5) = 0.5995.
	if math.Abs(learner.ValueEstimate-0.5995) > 1e-12 {
		t.Fatalf("value=%f want=0.5995", learner.ValueEstimate)
	}
}

func TestRewardLearnerEpisodeBoundary(t *testing.T) {
	learner := NewRewardLearner("a1")
	learner.Receive(RewardSignal{Kind: RewardTreeGrowth, Amount: 2.0})
	learner.Receive(RewardSignal{Kind: RewardPenalty, Amount: 1.0})

	if got := learner.AverageEpisodeReward(); got != 0.5 {
		t.Fatalf("avg episode reward=%f want=0.5", got)
	}

	valueBefore := learner.ValueEstimate
	cumulativeBefore := learner.CumulativeReward
	learner.StartEpisode()

	if len(learner.EpisodeRewards) != 0 {
		t.Fatalf("episode rewards=%d want cleared", len(learner.EpisodeRewards))
	}
	if learner.ValueEstimate != valueBefore || learner.CumulativeReward != cumulativeBefore {
		t.Fatal("episode boundary must not touch value estimate or cumulative reward")
	}
}

func TestRewardLearnerAdvantage(t *testing.T) {
	learner := NewRewardLearner("a1")
	if got := learner.Advantage(0.8); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("advantage=%f want=0.3", got)
	}
}

func TestRewardPoolSharedDistribution(t *testing.T) {
	pool := NewRewardPool(1)
	pool.Register(NewRewardLearner("a1"))
	pool.Register(NewRewardLearner("a2"))

	pool.DistributeShared(RewardSignal{Kind: RewardTreeGrowth, Amount: 10.0})

	if pool.CollectiveReward != 10.0 {
		t.Fatalf("collective=%f want=10.0", pool.CollectiveReward)
	}
	for _, id := range []string{"a1", "a2"} {
		learner, ok := pool.Learner(id)
		if !ok {
			t.Fatalf("learner %s missing", id)
		}
		if learner.CumulativeReward != 5.0 {
			t.Fatalf("learner %s cumulative=%f want=5.0", id, learner.CumulativeReward)
		}
	}
}

func TestRewardPoolSharedPenaltyNotDoubleNegated(t *testing.T) {
	pool := NewRewardPool(1)
	pool.Register(NewRewardLearner("a1"))

	pool.DistributeShared(RewardSignal{Kind: RewardPenalty, Amount: 4.0})

	learner, _ := pool.Learner("a1")
	if learner.CumulativeReward != -4.0 {
		t.Fatalf("cumulative=%f want=-4.0", learner.CumulativeReward)
	}
}

func TestRewardPoolUnknownAgentNoop(t *testing.T) {
	counters := telemetry.NewCounters()
	pool := NewRewardPool(1)
	pool.Faults = counters
	pool.Register(NewRewardLearner("a1"))

	pool.RewardAgent("ghost", RewardSignal{Kind: RewardTreeGrowth, Amount: 1.0})

	if got := counters.Snapshot().UnknownAgent; got != 1 {
		t.Fatalf("unknown_agent=%d want=1", got)
	}
	learner, _ := pool.Learner("a1")
	if learner.CumulativeReward != 0 {
		t.Fatalf("registered learner touched by unknown-agent reward: %f", learner.CumulativeReward)
	}
}

func TestRewardPoolEmptyShareGuard(t *testing.T) {
	counters := telemetry.NewCounters()
	pool := NewRewardPool(1)
	pool.Faults = counters

	pool.DistributeShared(RewardSignal{Kind: RewardTreeGrowth, Amount: 1.0})

	if got := counters.Snapshot().DivisionGuard; got != 1 {
		t.Fatalf("division_guard=%d want=1", got)
	}
}

func TestRewardPoolAverageValueEstimate(t *testing.T) {
	pool := NewRewardPool(1)
	if got := pool.AverageValueEstimate(); got != 0 {
		t.Fatalf("empty pool average=%f want=0", got)
	}

	a := NewRewardLearner("a1")
	a.ValueEstimate = 0.2
	b := NewRewardLearner("a2")
	b.ValueEstimate = 0.8
	pool.Register(a)
	pool.Register(b)

	if got := pool.AverageValueEstimate(); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("average=%f want=0.5", got)
	}
}

func TestRewardPoolSummariesSorted(t *testing.T) {
	pool := NewRewardPool(1)
	pool.Register(NewRewardLearner("b"))
	pool.Register(NewRewardLearner("a"))

	summaries := pool.Summaries()
	if len(summaries) != 2 || summaries[0].AgentID != "a" || summaries[1].AgentID != "b" {
		t.Fatalf("unexpected summary order: %+v", summaries)
	}
}
