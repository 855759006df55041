package storage

import (
	"context"
	"sort"
	"sync"

	"myrmex/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	telemetry   map[string]model.TelemetryHistory
	consensus   map[string][]model.ConsensusEvent
	rewards     map[string][]model.RewardSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.telemetry = make(map[string]model.TelemetryHistory)
	s.consensus = make(map[string][]model.ConsensusEvent)
	s.rewards = make(map[string][]model.RewardSummary)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC })
	return runs, nil
}

func (s *MemoryStore) SaveTelemetry(_ context.Context, history model.TelemetryHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := history
	copied.Ticks = make([]model.TickTelemetry, len(history.Ticks))
	copy(copied.Ticks, history.Ticks)
	s.telemetry[history.RunID] = copied
	return nil
}

func (s *MemoryStore) GetTelemetry(_ context.Context, runID string) (model.TelemetryHistory, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.telemetry[runID]
	if !ok {
		return model.TelemetryHistory{}, false, nil
	}
	copied := history
	copied.Ticks = make([]model.TickTelemetry, len(history.Ticks))
	copy(copied.Ticks, history.Ticks)
	return copied, true, nil
}

func (s *MemoryStore) SaveConsensusEvents(_ context.Context, runID string, events []model.ConsensusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.ConsensusEvent, len(events))
	copy(copied, events)
	s.consensus[runID] = copied
	return nil
}

func (s *MemoryStore) GetConsensusEvents(_ context.Context, runID string) ([]model.ConsensusEvent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.consensus[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.ConsensusEvent, len(events))
	copy(copied, events)
	return copied, true, nil
}

func (s *MemoryStore) SaveRewardSummaries(_ context.Context, runID string, summaries []model.RewardSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.RewardSummary, len(summaries))
	copy(copied, summaries)
	s.rewards[runID] = copied
	return nil
}

func (s *MemoryStore) GetRewardSummaries(_ context.Context, runID string) ([]model.RewardSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries, ok := s.rewards[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.RewardSummary, len(summaries))
	copy(copied, summaries)
	return copied, true, nil
}
