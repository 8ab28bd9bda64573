package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/automation"
	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/export"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/optim"
	"github.com/san-kum/fieldsim/internal/storage"
	"github.com/san-kum/fieldsim/internal/viz"
	"github.com/san-kum/fieldsim/internal/world"
)

var (
	dataDir    string
	configFile string
	verbose    bool

	ticks        int
	spawnPerTick int
	seed         int64
	schedule     string
	policy       string
	workers      int

	frameRate int
	burst     int
	theme     string

	snapshotOut string
	initOut     string
	svgFile     string
	scale       float64

	benchTicks int

	exportOut   string
	sweepParams []string
	sweepMetric string
	sweepMax    bool
	sweepTop    int
)

var logger = slog.New(slog.DiscardHandler)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fieldsim",
		Short:         "particle force-field simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fieldsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().IntVar(&burst, "burst", viz.DefaultBurst, "particles spawned per space press")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeEmber.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset]",
		Short: "simulate and write an SVG of the final world",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSnapshot,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "snapshot.svg", "output file")
	snapshotCmd.Flags().Float64Var(&scale, "scale", 1, "pixels per world unit")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the population curve as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run with its per-tick data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-tick data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "list available field types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListFields() {
				fmt.Println(name)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [preset]",
		Short: "write a config file to start from",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVarP(&initOut, "out", "o", "fieldsim.yaml", "output file")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark world updates",
		Args:  cobra.NoArgs,
		RunE:  benchWorld,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 100, "ticks per measurement")

	sweepCmd := &cobra.Command{
		Use:     "sweep [preset]",
		Short:   "run a grid of field parameters and rank them by a metric",
		Example: "  fieldsim sweep wells --param 0.strength=0.1,0.3,0.6 --param 1.layers=2,4 --metric population --max",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "<field>.<name>=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "population", "metric to rank by")
	sweepCmd.Flags().BoolVar(&sweepMax, "max", false, "higher is better")
	sweepCmd.Flags().IntVar(&sweepTop, "top", 10, "rows to print")
	_ = sweepCmd.MarkFlagRequired("param")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of sequential simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, liveCmd, snapshotCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd, fieldsCmd, initCmd, benchCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")
	cmd.Flags().IntVar(&spawnPerTick, "spawn", config.DefaultSpawnPerTick, "particles spawned per tick")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&schedule, "schedule", "", "field schedule (all, round_robin)")
	cmd.Flags().StringVar(&policy, "policy", "", "boundary policy (kill, bounce)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines per tick (0 = GOMAXPROCS)")
}

// loadConfig resolves --config, then the preset argument, then defaults, and
// applies any flags the user set on top.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			logger.Warn("preset ignored in favor of config file", "preset", args[0], "config", configFile)
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("spawn") {
		cfg.Run.SpawnPerTick = spawnPerTick
	}
	if flags.Changed("seed") {
		cfg.Spawn.Seed = seed
	}
	if flags.Changed("schedule") {
		cfg.World.Schedule = schedule
	}
	if flags.Changed("policy") {
		cfg.World.Policy = policy
	}
	if flags.Changed("workers") {
		cfg.World.Workers = workers
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %d ticks...\n", cfg.Name, cfg.Run.Ticks)
	result, runErr := exp.Run(ctx)
	if runErr != nil && result == nil {
		return runErr
	}

	st := storage.New(dataDir)
	meta := storage.NewMetadata(cfg)
	meta.Ticks = result.Ticks
	meta.Elapsed = result.Elapsed
	meta.Metrics = result.Metrics
	runID, err := st.Save(meta, cfg, result.Samples)
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Printf("alive: %d (store %d)\n", final.Alive, final.Total)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	// the viewer owns the terminal; keep logs out of it unless asked
	exp, err := experiment.New(cfg, nil, liveLogger())
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	opts := viz.DefaultOptions()
	opts.Burst = burst
	if frameRate > 0 {
		opts.FrameRate = time.Second / time.Duration(frameRate)
	}

	p := tea.NewProgram(viz.NewModel(exp, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func liveLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	f, err := os.OpenFile(fmt.Sprintf("fieldsim-live-%d.log", os.Getpid()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	if _, err := exp.Run(cmd.Context()); err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.Scale = scale
	w := exp.World()
	if err := export.SaveSVG(snapshotOut, export.WorldToSVG(w, opts)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d particles, %d wells) at tick %d\n", snapshotOut, w.Alive(), len(w.Overlays()), w.Ticks())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTICKS\tSPAWN\tSCHEDULE\tPOLICY\tFIELDS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.SpawnPerTick,
			run.Schedule,
			run.Policy,
			strings.Join(run.Fields, ","),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("fields: %s\n", strings.Join(meta.Fields, ", "))
	fmt.Printf("samples: %d\n\n", len(samples))

	alive := make([]float64, len(samples))
	speed := make([]float64, len(samples))
	energy := make([]float64, len(samples))
	for i, s := range samples {
		alive[i] = float64(s.Alive)
		speed[i] = s.MeanSpeed
		energy[i] = s.KineticEnergy
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"alive particles", alive},
		{"mean speed", speed},
		{"kinetic energy", energy},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgFile != "" {
		if err := export.SaveSVG(svgFile, export.SeriesToSVG(alive, 800, 300, "#00ff88")); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	data := export.NewRunData(*meta, samples)
	if exportOut == "" {
		return export.WriteJSON(os.Stdout, data)
	}
	if err := export.ExportJSON(exportOut, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", exportOut)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, st, logger)
	for i, r := range results {
		fmt.Printf("%d/%d %-20s alive %-6d peak %-8.0f %s\n",
			i+1, len(sc.Steps), r.Name, r.Final.Alive, r.Metrics["peak_population"], r.RunID)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	params := make([]optim.Param, len(sweepParams))
	for i, raw := range sweepParams {
		if params[i], err = optim.ParseParam(raw); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(params)
	logger.Info("sweep started", "name", cfg.Name, "trials", g.Size(), "metric", sweepMetric)
	start := time.Now()
	trials, err := g.Search(ctx, cfg, sweepMetric, sweepMax)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(params)+2)
	header = append(header, "RANK")
	for _, p := range params {
		header = append(header, strings.ToUpper(p.Key()))
	}
	header = append(header, strings.ToUpper(sweepMetric))
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for i, t := range trials[:min(sweepTop, len(trials))] {
		row := []string{fmt.Sprint(i + 1)}
		for _, p := range params {
			row = append(row, fmt.Sprintf("%g", t.Params[p.Key()]))
		}
		row = append(row, fmt.Sprintf("%.4f", t.Score(sweepMetric)))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	samples, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}
	return gocsv.Marshal(&samples, os.Stdout)
}

func listPresets(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSCHEDULE\tPOLICY\tFIELDS")

	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		bounds, _ := cfg.Bounds()
		fields, err := reg.BuildFields(cfg.Fields, bounds.Center())
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		desc := make([]string, len(fields))
		for i, f := range fields {
			desc[i] = describeField(f)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, cfg.World.Schedule, cfg.World.Policy, strings.Join(desc, ", "))
	}
	return w.Flush()
}

func describeField(f field.Field) string {
	params := field.ParamsOf(f)
	if len(params) == 0 {
		return f.Name()
	}
	parts := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		parts = append(parts, fmt.Sprintf("%s=%g", k, params[k]))
	}
	return fmt.Sprintf("%s(%s)", f.Name(), strings.Join(parts, " "))
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		if cfg = config.GetPreset(args[0]); cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}
	if err := config.Save(initOut, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", initOut)
	return nil
}

// benchWorld times Update over growing populations, serially and in parallel.
// Bounce keeps the population constant; lifetimes outlast the measurement.
func benchWorld(cmd *cobra.Command, args []string) error {
	counts := []int{1_000, 10_000, 100_000}
	workerCounts := []int{1, runtime.GOMAXPROCS(0)}

	fmt.Printf("benchmarking %d ticks per run\n\n", benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tWORKERS\tTIME\tTICKS/SEC\tUPDATES/SEC")

	for _, n := range counts {
		for _, wk := range workerCounts {
			cfg := config.GetPreset("windy")
			cfg.World.Policy = boundary.Bounce.String()
			cfg.World.Workers = wk
			cfg.Spawn.Lifetime = config.IntRange{Min: benchTicks + 1, Max: benchTicks + 1}

			wld, err := experiment.Build(cfg, nil, logger)
			if err != nil {
				return err
			}
			wld.Spawn(n)

			elapsed := timeUpdates(wld, benchTicks)
			tps := float64(benchTicks) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\t%.0f\n", n, wk, elapsed, tps, tps*float64(n))
		}
	}

	return w.Flush()
}

func timeUpdates(w *world.World, n int) time.Duration {
	start := time.Now()
	for i := 0; i < n; i++ {
		w.Update()
	}
	return time.Since(start)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
