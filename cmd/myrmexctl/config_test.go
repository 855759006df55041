package main

import (
	"os"
	"path/filepath"
	"testing"

	myrmexapi "myrmex/pkg/myrmex"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"agents": 24,
		"aerial_fraction": 0.25,
		"ticks": 200,
		"tick_seconds": 0.5,
		"seed": 7,
		"workers": 8,
		"neighbor_radius_km": 3.0,
		"min_separation_km": 0.1,
		"objectives": [
			{"id": "m1", "kind": "water_delivery", "target_zone_id": 3, "urgency": 0.8, "required_agents": 2},
			{"id": "m2", "kind": "survey", "target_zone_id": 5, "urgency": 0.4, "required_agents": 1, "deadline_seconds": 600}
		]
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("loadRunRequestFromConfig: %v", err)
	}

	if req.Agents != 24 || req.Ticks != 200 || req.Seed != 7 || req.Workers != 8 {
		t.Fatalf("scalar fields lost: %+v", req)
	}
	if req.AerialFraction != 0.25 || req.TickSeconds != 0.5 || req.NeighborRadiusKm != 3.0 {
		t.Fatalf("float fields lost: %+v", req)
	}
	if len(req.Objectives) != 2 {
		t.Fatalf("objectives=%d want=2", len(req.Objectives))
	}
	if req.Objectives[0].Kind != "water_delivery" || req.Objectives[0].RequiredAgents != 2 {
		t.Fatalf("first objective lost: %+v", req.Objectives[0])
	}
	if req.Objectives[1].DeadlineSeconds != 600 {
		t.Fatalf("deadline lost: %+v", req.Objectives[1])
	}
}

func TestLoadRunRequestPartialConfig(t *testing.T) {
	path := writeConfig(t, `{"agents": 6}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("loadRunRequestFromConfig: %v", err)
	}
	if req.Agents != 6 || req.Ticks != 0 || len(req.Objectives) != 0 {
		t.Fatalf("partial config misread: %+v", req)
	}
}

func TestLoadRunRequestRejectsBadObjective(t *testing.T) {
	path := writeConfig(t, `{"objectives": ["not-an-object"]}`)

	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected error for malformed objective")
	}
}

func TestLoadOrDefaultRunRequestEmptyPath(t *testing.T) {
	req, err := loadOrDefaultRunRequest("")
	if err != nil {
		t.Fatalf("loadOrDefaultRunRequest: %v", err)
	}
	if req.Agents != 0 {
		t.Fatalf("expected zero request, got %+v", req)
	}
}

func TestOverrideFromFlagsOnlySetFlags(t *testing.T) {
	req := myrmexapi.RunRequest{Agents: 24, Ticks: 200, Seed: 7}

	overrideFromFlags(&req, map[string]bool{"agents": true, "seed": true}, map[string]any{
		"agents": 10,
		"ticks":  999,
		"seed":   int64(42),
	})

	if req.Agents != 10 || req.Seed != 42 {
		t.Fatalf("set flags not applied: %+v", req)
	}
	if req.Ticks != 200 {
		t.Fatalf("unset flag overrode config: ticks=%d", req.Ticks)
	}
}
