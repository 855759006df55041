package sim

import (
	"math"
	"testing"

	"myrmex/internal/learn"
)

func TestEngineStepEmpty(t *testing.T) {
	engine := NewEngine()
	if _, ok := engine.Step(); ok {
		t.Fatal("empty queue returned an event")
	}
}

func TestEngineTreeSprout(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1, TreeDensity: 10.0, SoilHealth: 0.5})
	engine.Enqueue(Event{TimeS: 5.0, Kind: EventTreeSprout, ZoneID: 1, Count: 100})

	event, ok := engine.Step()
	if !ok {
		t.Fatal("queued event not processed")
	}
	if event.Kind != EventTreeSprout {
		t.Fatalf("kind=%s want=%s", event.Kind, EventTreeSprout)
	}
	if engine.CurrentTimeS != 5.0 {
		t.Fatalf("clock=%f want=5.0", engine.CurrentTimeS)
	}

	zone, _ := engine.Zone(1)
	if zone.TreeDensity != 11.0 {
		t.Fatalf("density=%f want=11.0", zone.TreeDensity)
	}
}

func TestEngineWaterApplied(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1, SoilHealth: 0.5})
	engine.Enqueue(Event{TimeS: 1.0, Kind: EventWaterApplied, ZoneID: 1, Liters: 100.0})

	engine.Step()

	zone, _ := engine.Zone(1)
	if zone.WaterContent != 10.0 {
		t.Fatalf("water=%f want=10.0", zone.WaterContent)
	}
	if math.Abs(zone.SoilHealth-0.55) > 1e-12 {
		t.Fatalf("soil=%f want=0.55", zone.SoilHealth)
	}
}

func TestEngineWildfire(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1, TreeDensity: 100.0, SoilHealth: 1.0})
	engine.Enqueue(Event{TimeS: 1.0, Kind: EventWildfire, ZoneID: 1, Severity: 0.4})

	engine.Step()

	zone, _ := engine.Zone(1)
	if math.Abs(zone.TreeDensity-60.0) > 1e-9 {
		t.Fatalf("density=%f want=60.0", zone.TreeDensity)
	}
	if math.Abs(zone.SoilHealth-0.6) > 1e-12 {
		t.Fatalf("soil=%f want=0.6", zone.SoilHealth)
	}
	if zone.WildfireRisk != 0.4 {
		t.Fatalf("risk=%f want=0.4", zone.WildfireRisk)
	}
}

func TestEngineTotalBurnFloorsAtZero(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1, TreeDensity: 100.0, SoilHealth: 1.0})
	engine.Enqueue(Event{TimeS: 1.0, Kind: EventWildfire, ZoneID: 1, Severity: 1.5})

	engine.Step()

	zone, _ := engine.Zone(1)
	if zone.TreeDensity != 0 {
		t.Fatalf("density=%f want=0 after total burn", zone.TreeDensity)
	}
}

func TestEngineSensorReadingCalibrates(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1, SoilHealth: 0.9})
	engine.Enqueue(Event{TimeS: 1.0, Kind: EventSensorReading, ZoneID: 1, SoilHealth: 0.4})

	engine.Step()

	zone, _ := engine.Zone(1)
	if zone.SoilHealth != 0.4 {
		t.Fatalf("soil=%f want=0.4 after calibration", zone.SoilHealth)
	}
}

func TestEngineUnknownZoneAdvancesClockOnly(t *testing.T) {
	engine := NewEngine()
	engine.Enqueue(Event{TimeS: 3.0, Kind: EventWaterApplied, ZoneID: 9, Liters: 50.0})

	if _, ok := engine.Step(); !ok {
		t.Fatal("event not consumed")
	}
	if engine.CurrentTimeS != 3.0 {
		t.Fatalf("clock=%f want=3.0", engine.CurrentTimeS)
	}
	if len(engine.DrainRewards()) != 0 {
		t.Fatal("unknown zone produced a reward")
	}
}

func TestEngineRunStopsAtMaxTime(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1})
	for i := 1; i <= 5; i++ {
		engine.Enqueue(Event{TimeS: float64(i * 10), Kind: EventTreeSprout, ZoneID: 1, Count: 10})
	}

	processed := engine.Run(35.0)

	// Events at t=10,20,30 run; the t=30 step pushes the clock past 35
	// only after t=40 has also been popped.
	if processed != 4 {
		t.Fatalf("processed=%d want=4", processed)
	}
	if engine.Pending() != 1 {
		t.Fatalf("pending=%d want=1", engine.Pending())
	}
}

func TestEngineRewardDerivation(t *testing.T) {
	engine := NewEngine()
	engine.AddZone(ZoneState{ZoneID: 1, TreeDensity: 50.0, SoilHealth: 1.0})
	engine.Enqueue(Event{TimeS: 1.0, Kind: EventTreeSprout, ZoneID: 1, Count: 200})
	engine.Enqueue(Event{TimeS: 2.0, Kind: EventWildfire, ZoneID: 1, Severity: 0.3})

	engine.Run(100.0)

	rewards := engine.DrainRewards()
	if len(rewards) != 2 {
		t.Fatalf("rewards=%d want=2", len(rewards))
	}
	if rewards[0].Kind != learn.RewardTreeGrowth || rewards[0].Amount != 2.0 {
		t.Fatalf("first reward=%+v want tree_growth 2.0", rewards[0])
	}
	if rewards[1].Kind != learn.RewardPenalty || rewards[1].Amount != 0.3 {
		t.Fatalf("second reward=%+v want penalty 0.3", rewards[1])
	}

	if len(engine.DrainRewards()) != 0 {
		t.Fatal("drain did not clear the buffer")
	}
}
