package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"myrmex/internal/storage"
	myrmexapi "myrmex/pkg/myrmex"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "telemetry":
		return runTelemetry(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: myrmexctl <init|run|runs|telemetry|export> [flags]", msg)
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.StoreKindMemory, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "myrmex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	agents := fs.Int("agents", 12, "swarm size")
	aerialFraction := fs.Float64("aerial-fraction", 0.5, "fraction of aerial units")
	ticks := fs.Int("ticks", 100, "tick count")
	tickSeconds := fs.Float64("tick-seconds", 1.0, "simulated seconds per tick")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "decide-phase worker count")
	neighborRadiusKm := fs.Float64("neighbor-radius-km", 5.0, "alignment neighbor radius in km")
	minSeparationKm := fs.Float64("min-separation-km", 0.05, "separation distance in km")
	storeKind := fs.String("store", storage.StoreKindMemory, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "myrmex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = myrmexapi.RunRequest{
			Agents:           *agents,
			AerialFraction:   *aerialFraction,
			Ticks:            *ticks,
			TickSeconds:      *tickSeconds,
			Seed:             *seed,
			Workers:          *workers,
			NeighborRadiusKm: *neighborRadiusKm,
			MinSeparationKm:  *minSeparationKm,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"agents":             *agents,
			"aerial-fraction":    *aerialFraction,
			"ticks":              *ticks,
			"tick-seconds":       *tickSeconds,
			"seed":               *seed,
			"workers":            *workers,
			"neighbor-radius-km": *neighborRadiusKm,
			"min-separation-km":  *minSeparationKm,
		})
	}

	client, err := myrmexapi.New(myrmexapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: runsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	ticksOut, err := client.Telemetry(ctx, myrmexapi.TelemetryRequest{RunID: summary.RunID})
	if err != nil {
		return err
	}
	var totalSpikes int64
	for _, t := range ticksOut {
		totalSpikes += int64(t.SpikeTotal)
	}

	fmt.Printf("run completed run_id=%s agents=%d ticks=%d seed=%d\n", summary.RunID, req.Agents, summary.Ticks, req.Seed)
	fmt.Printf("final_consensus=%s final_cohesion=%.4f collective_reward=%.4f\n", summary.FinalConsensus, summary.FinalCohesion, summary.CollectiveReward)
	fmt.Printf("total_spikes=%s faults_empty_collective=%d faults_unknown_agent=%d faults_division_guard=%d\n",
		humanize.Comma(totalSpikes),
		summary.Faults.EmptyCollective,
		summary.Faults.UnknownAgent,
		summary.Faults.DivisionGuard,
	)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.StoreKindMemory, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "myrmex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := myrmexapi.New(myrmexapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: runsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, myrmexapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s seed=%d agents=%d ticks=%d consensus=%s\n",
			item.RunID,
			item.CreatedAtUTC,
			item.Seed,
			item.Agents,
			item.Ticks,
			item.FinalConsensus,
		)
	}
	return nil
}

func runTelemetry(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("telemetry", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show telemetry for the most recent run")
	limit := fs.Int("limit", 50, "max ticks to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit telemetry as JSON")
	storeKind := fs.String("store", storage.StoreKindMemory, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "myrmex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("telemetry requires --run-id or --latest")
	}

	client, err := myrmexapi.New(myrmexapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: runsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ticks, err := client.Telemetry(ctx, myrmexapi.TelemetryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		fmt.Println("no telemetry records")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ticks)
	}

	for _, t := range ticks {
		fmt.Printf("tick=%d consensus=%s cohesion=%.4f arousal=%.4f spikes=%s allocated=%d\n",
			t.Tick,
			t.Consensus,
			t.Coordination.GroupCohesion,
			t.Coordination.AverageArousal,
			humanize.Comma(int64(t.SpikeTotal)),
			t.Allocated,
		)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "destination directory")
	storeKind := fs.String("store", storage.StoreKindMemory, "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "myrmex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := myrmexapi.New(myrmexapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: runsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	export, err := client.Export(ctx, myrmexapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s dir=%s\n", export.RunID, export.Directory)
	return nil
}
