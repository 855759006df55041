package main

import (
	"encoding/json"
	"fmt"
	"os"

	"myrmex/internal/model"
	myrmexapi "myrmex/pkg/myrmex"
)

func loadRunRequestFromConfig(path string) (myrmexapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return myrmexapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return myrmexapi.RunRequest{}, err
	}

	var req myrmexapi.RunRequest
	if v, ok := asInt(raw["agents"]); ok {
		req.Agents = v
	}
	if v, ok := asFloat64(raw["aerial_fraction"]); ok {
		req.AerialFraction = v
	}
	if v, ok := asInt(raw["ticks"]); ok {
		req.Ticks = v
	}
	if v, ok := asFloat64(raw["tick_seconds"]); ok {
		req.TickSeconds = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asFloat64(raw["neighbor_radius_km"]); ok {
		req.NeighborRadiusKm = v
	}
	if v, ok := asFloat64(raw["min_separation_km"]); ok {
		req.MinSeparationKm = v
	}

	if rawObjectives, ok := raw["objectives"].([]any); ok {
		for i, item := range rawObjectives {
			entry, ok := item.(map[string]any)
			if !ok {
				return myrmexapi.RunRequest{}, fmt.Errorf("objective %d is not an object", i)
			}
			var objective model.MissionObjective
			if v, ok := asString(entry["id"]); ok {
				objective.ID = v
			}
			if v, ok := asString(entry["kind"]); ok {
				objective.Kind = v
			}
			if v, ok := asInt(entry["target_zone_id"]); ok {
				objective.TargetZoneID = v
			}
			if v, ok := asFloat64(entry["urgency"]); ok {
				objective.Urgency = v
			}
			if v, ok := asInt(entry["required_agents"]); ok {
				objective.RequiredAgents = v
			}
			if v, ok := asInt(entry["deadline_seconds"]); ok {
				objective.DeadlineSeconds = v
			}
			req.Objectives = append(req.Objectives, objective)
		}
	}

	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (myrmexapi.RunRequest, error) {
	if configPath == "" {
		return myrmexapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return myrmexapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *myrmexapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "agents":
			req.Agents = v.(int)
		case "aerial-fraction":
			req.AerialFraction = v.(float64)
		case "ticks":
			req.Ticks = v.(int)
		case "tick-seconds":
			req.TickSeconds = v.(float64)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "neighbor-radius-km":
			req.NeighborRadiusKm = v.(float64)
		case "min-separation-km":
			req.MinSeparationKm = v.(float64)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
