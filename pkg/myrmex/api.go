// Package myrmex exposes the swarm decision engine as an embeddable
// client: configure a run, execute it, inspect its artifacts.
package myrmex

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"myrmex/internal/engine"
	"myrmex/internal/learn"
	"myrmex/internal/model"
	"myrmex/internal/sim"
	"myrmex/internal/stats"
	"myrmex/internal/storage"
	"myrmex/internal/swarm"
	"myrmex/internal/telemetry"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "myrmex.db"

	// Base coordinate for agent placement; the recovering plot sits in
	// central Arizona.
	baseLat = 33.0
	baseLon = -112.0

	placementJitterDeg = 0.02
	zoneGridSpacingDeg = 0.01
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
}

type Client struct {
	store storage.Store

	artifactsDir string
	exportsDir   string
}

type RunRequest struct {
	Agents           int
	AerialFraction   float64
	Ticks            int
	TickSeconds      float64
	Seed             int64
	Workers          int
	NeighborRadiusKm float64
	MinSeparationKm  float64
	Objectives       []model.MissionObjective
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	Ticks            int
	FinalConsensus   string
	FinalCohesion    float64
	CollectiveReward float64
	Faults           model.FaultCounters
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	Agents         int
	Ticks          int
	FinalConsensus string
}

type TelemetryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run builds a swarm from the request, executes the decision loop for
// the requested ticks, persists the observability records, and writes
// the run's artifact directory.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Agents <= 0 {
		req.Agents = 12
	}
	if req.AerialFraction <= 0 || req.AerialFraction > 1 {
		req.AerialFraction = 0.5
	}
	if req.Ticks <= 0 {
		req.Ticks = 100
	}
	if req.TickSeconds <= 0 {
		req.TickSeconds = 1.0
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.NeighborRadiusKm <= 0 {
		req.NeighborRadiusKm = 5.0
	}
	if req.MinSeparationKm <= 0 {
		req.MinSeparationKm = 0.05
	}

	if err := c.store.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	faults := telemetry.NewCounters()
	collective := swarm.NewCollective(1)
	pool := learn.NewRewardPool(1)
	decisions := swarm.NewDecisionSystem()

	for _, objective := range req.Objectives {
		if err := decisions.AddObjective(objective); err != nil {
			return RunSummary{}, fmt.Errorf("run request: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(req.Seed))
	if err := populateSwarm(collective, pool, req, rng); err != nil {
		return RunSummary{}, err
	}

	field := sim.NewField(req.Seed)
	ecology := buildEcology(req.Objectives, req.Ticks, req.TickSeconds)

	cfg := engine.Config{
		TickSeconds:      req.TickSeconds,
		NeighborRadiusKm: req.NeighborRadiusKm,
		MinSeparationKm:  req.MinSeparationKm,
		Workers:          req.Workers,
	}
	loop := engine.New(cfg, collective, decisions, pool, field, faults)
	loop.TargetForZone = zoneTarget

	history := make([]model.TickTelemetry, 0, req.Ticks)
	for tick := 1; tick <= req.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return RunSummary{}, err
		}
		history = append(history, loop.Tick())

		ecology.Run(float64(tick) * req.TickSeconds)
		loop.FeedRewards(ecology.DrainRewards())
	}

	now := time.Now().UTC()
	runID := uuid.NewString()

	run := model.RunRecord{
		VersionedRecord:  storage.Stamp(),
		RunID:            runID,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
		Seed:             req.Seed,
		Agents:           req.Agents,
		Ticks:            req.Ticks,
		FinalConsensus:   collective.Consensus,
		FinalCoordinate:  collective.Coordination,
		CollectiveReward: pool.CollectiveReward,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveTelemetry(ctx, model.TelemetryHistory{
		VersionedRecord: storage.Stamp(),
		RunID:           runID,
		Ticks:           history,
	}); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveConsensusEvents(ctx, runID, loop.Consensus()); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveRewardSummaries(ctx, runID, pool.Summaries()); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:            runID,
			Agents:           req.Agents,
			AerialFraction:   req.AerialFraction,
			Ticks:            req.Ticks,
			TickSeconds:      req.TickSeconds,
			Seed:             req.Seed,
			Workers:          req.Workers,
			NeighborRadiusKm: req.NeighborRadiusKm,
			MinSeparationKm:  req.MinSeparationKm,
			Objectives:       req.Objectives,
		},
		Telemetry:         history,
		ConsensusTimeline: loop.Consensus(),
		FinalAllocation:   loop.Allocation(),
		RewardSummaries:   pool.Summaries(),
		FinalCoordination: collective.Coordination,
		FinalConsensus:    collective.Consensus,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:          runID,
		Agents:         req.Agents,
		Ticks:          req.Ticks,
		Seed:           req.Seed,
		Workers:        req.Workers,
		FinalConsensus: collective.Consensus,
		FinalCohesion:  collective.Coordination.GroupCohesion,
		CreatedAtUTC:   now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		Ticks:            req.Ticks,
		FinalConsensus:   collective.Consensus,
		FinalCohesion:    collective.Coordination.GroupCohesion,
		CollectiveReward: pool.CollectiveReward,
		Faults:           faults.Snapshot(),
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}

	// Newest first.
	items := make([]RunItem, 0, len(runs))
	for i := len(runs) - 1; i >= 0 && len(items) < req.Limit; i-- {
		run := runs[i]
		items = append(items, RunItem{
			RunID:          run.RunID,
			CreatedAtUTC:   run.CreatedAtUTC,
			Seed:           run.Seed,
			Agents:         run.Agents,
			Ticks:          run.Ticks,
			FinalConsensus: run.FinalConsensus,
		})
	}
	return items, nil
}

// Telemetry returns the last Limit per-tick records of a run.
func (c *Client) Telemetry(ctx context.Context, req TelemetryRequest) ([]model.TickTelemetry, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetTelemetry(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no telemetry for run %s", runID)
	}

	ticks := history.Ticks
	if req.Limit > 0 && len(ticks) > req.Limit {
		ticks = ticks[len(ticks)-req.Limit:]
	}
	return ticks, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}

	dst, err := stats.ExportRunArtifacts(c.artifactsDir, runID, outDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(dst)}, nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", fmt.Errorf("run id or latest is required")
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no runs recorded")
	}
	return entries[0].RunID, nil
}

// populateSwarm places the requested mix of agents around the base
// coordinate with seeded jitter. The aerial fraction is honored first;
// the remainder splits ground-heavy with one sensor per four units.
func populateSwarm(collective *swarm.Collective, pool *learn.RewardPool, req RunRequest, rng *rand.Rand) error {
	aerialCount := int(float64(req.Agents) * req.AerialFraction)

	for i := 0; i < req.Agents; i++ {
		kind := model.AgentKindAerial
		if i >= aerialCount {
			if (i-aerialCount)%4 == 3 {
				kind = model.AgentKindSensor
			} else {
				kind = model.AgentKindGround
			}
		}

		id := fmt.Sprintf("agent-%03d", i)
		agent, err := swarm.NewAgent(id, kind)
		if err != nil {
			return err
		}
		lat := baseLat + (rng.Float64()*2-1)*placementJitterDeg
		lon := baseLon + (rng.Float64()*2-1)*placementJitterDeg
		if err := agent.SetPosition(lat, lon, 0); err != nil {
			return err
		}

		collective.AddAgent(agent)
		pool.Register(learn.NewRewardLearner(id))
	}
	return nil
}

// zoneTarget lays mission zones out on a fixed grid near the base
// coordinate, so a zone id always resolves to the same point.
func zoneTarget(zoneID int) (float64, float64, bool) {
	if zoneID < 0 {
		return 0, 0, false
	}
	lat := baseLat + float64(zoneID%10)*zoneGridSpacingDeg
	lon := baseLon + float64((zoneID/10)%10)*zoneGridSpacingDeg
	return lat, lon, true
}

// buildEcology schedules a scripted event stream over the run's
// mission zones: sprouts on a steady cadence, plus kind-specific
// events per objective.
func buildEcology(objectives []model.MissionObjective, ticks int, tickSeconds float64) *sim.Engine {
	ecology := sim.NewEngine()

	for _, objective := range objectives {
		ecology.AddZone(sim.ZoneState{
			ZoneID:      objective.TargetZoneID,
			TreeDensity: 25.0,
			SoilHealth:  0.5,
		})
	}
	if len(objectives) == 0 {
		return ecology
	}

	horizon := float64(ticks) * tickSeconds
	for _, objective := range objectives {
		for t := 10.0; t < horizon; t += 25.0 {
			ecology.Enqueue(sim.Event{TimeS: t, Kind: sim.EventTreeSprout, ZoneID: objective.TargetZoneID, Count: 20})
		}
		switch objective.Kind {
		case model.ObjectiveWaterDelivery:
			for t := 5.0; t < horizon; t += 20.0 {
				ecology.Enqueue(sim.Event{TimeS: t, Kind: sim.EventWaterApplied, ZoneID: objective.TargetZoneID, Liters: 50.0})
			}
		case model.ObjectiveFireSuppression:
			ecology.Enqueue(sim.Event{TimeS: horizon / 2, Kind: sim.EventWildfire, ZoneID: objective.TargetZoneID, Severity: objective.Urgency})
		case model.ObjectiveSurvey, model.ObjectiveWildlifeMonitoring:
			for t := 15.0; t < horizon; t += 30.0 {
				ecology.Enqueue(sim.Event{TimeS: t, Kind: sim.EventSensorReading, ZoneID: objective.TargetZoneID, SoilHealth: 0.6})
			}
		}
	}
	return ecology
}
