package myrmex

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"myrmex/internal/model"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: t.TempDir(),
		ExportsDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func smallRun() RunRequest {
	return RunRequest{
		Agents:      6,
		Ticks:       10,
		TickSeconds: 1.0,
		Seed:        42,
		Workers:     2,
		Objectives: []model.MissionObjective{
			{ID: "m1", Kind: model.ObjectiveWaterDelivery, TargetZoneID: 3, Urgency: 0.8, RequiredAgents: 2},
		},
	}
}

func TestRunProducesSummaryAndArtifacts(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, smallRun())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("empty run id")
	}
	if summary.Ticks != 10 {
		t.Fatalf("ticks=%d want=10", summary.Ticks)
	}
	if summary.FinalConsensus != model.ConsensusRetreat {
		t.Fatalf("consensus=%s want=%s", summary.FinalConsensus, model.ConsensusRetreat)
	}

	for _, file := range []string{"config.json", "telemetry.json", "summary.json", "telemetry_series.csv"} {
		if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}

	ticks, err := client.Telemetry(ctx, TelemetryRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("Telemetry: %v", err)
	}
	if len(ticks) != 10 || ticks[0].Tick != 1 {
		t.Fatalf("telemetry len=%d first=%+v", len(ticks), ticks[0])
	}
}

func TestRunRejectsInvalidObjective(t *testing.T) {
	client := newTestClient(t)

	req := smallRun()
	req.Objectives = []model.MissionObjective{{ID: "bad", Urgency: 0.5, RequiredAgents: 0}}
	if _, err := client.Run(context.Background(), req); err == nil {
		t.Fatal("expected error for objective without agents")
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	first := newTestClient(t)
	second := newTestClient(t)

	a, err := first.Run(ctx, smallRun())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	b, err := second.Run(ctx, smallRun())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	ticksA, err := first.Telemetry(ctx, TelemetryRequest{RunID: a.RunID})
	if err != nil {
		t.Fatal(err)
	}
	ticksB, err := second.Telemetry(ctx, TelemetryRequest{RunID: b.RunID})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ticksA, ticksB) {
		t.Fatal("identical seeds diverged")
	}
	if a.CollectiveReward != b.CollectiveReward {
		t.Fatalf("rewards diverged: %f vs %f", a.CollectiveReward, b.CollectiveReward)
	}
}

func TestRunsNewestFirstWithLimit(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Run(ctx, smallRun()); err != nil {
		t.Fatal(err)
	}
	latest, err := client.Run(ctx, smallRun())
	if err != nil {
		t.Fatal(err)
	}

	items, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(items) != 2 || items[0].RunID != latest.RunID {
		t.Fatalf("unexpected listing: %+v", items)
	}

	limited, err := client.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].RunID != latest.RunID {
		t.Fatalf("limit ignored: %+v", limited)
	}
}

func TestTelemetryLatestWithLimit(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Run(ctx, smallRun()); err != nil {
		t.Fatal(err)
	}

	ticks, err := client.Telemetry(ctx, TelemetryRequest{Latest: true, Limit: 3})
	if err != nil {
		t.Fatalf("Telemetry latest: %v", err)
	}
	if len(ticks) != 3 || ticks[2].Tick != 10 {
		t.Fatalf("tail window wrong: %+v", ticks)
	}
}

func TestTelemetryRequiresRunSelector(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Telemetry(context.Background(), TelemetryRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
}

func TestExportLatestRun(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, smallRun())
	if err != nil {
		t.Fatal(err)
	}

	export, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.RunID != summary.RunID {
		t.Fatalf("exported run=%s want=%s", export.RunID, summary.RunID)
	}
	if _, err := os.Stat(filepath.Join(export.Directory, "telemetry.json")); err != nil {
		t.Fatalf("exported telemetry missing: %v", err)
	}
}
