package storage

import (
	"context"

	"myrmex/internal/model"
)

// Store defines persistence operations for run observability records.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveTelemetry(ctx context.Context, history model.TelemetryHistory) error
	GetTelemetry(ctx context.Context, runID string) (model.TelemetryHistory, bool, error)
	SaveConsensusEvents(ctx context.Context, runID string, events []model.ConsensusEvent) error
	GetConsensusEvents(ctx context.Context, runID string) ([]model.ConsensusEvent, bool, error)
	SaveRewardSummaries(ctx context.Context, runID string, summaries []model.RewardSummary) error
	GetRewardSummaries(ctx context.Context, runID string) ([]model.RewardSummary, bool, error)
}
