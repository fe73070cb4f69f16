package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/physanim/internal/config"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/experiment"
	"github.com/san-kum/physanim/internal/sim"
	"github.com/san-kum/physanim/internal/storage"
	"github.com/san-kum/physanim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "physanim"})
	registry = experiment.NewRegistry()
)

// runFlags are the scene settings shared by run, live, ensemble and the
// study commands.
type runFlags struct {
	duration   float64
	frameMs    float64
	speed      float64
	seed       int64
	width      float64
	height     float64
	params     []string
	configFile string
	preset     string
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().Float64Var(&f.duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&f.frameMs, "frame", config.DefaultFrameMs, "frame length in ms")
	cmd.Flags().Float64Var(&f.speed, "speed", config.DefaultSpeed, "speed multiplier")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&f.width, "width", config.DefaultWidth, "canvas width")
	cmd.Flags().Float64Var(&f.height, "height", config.DefaultHeight, "canvas height")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "scene parameter name=value (repeatable)")
	cmd.Flags().StringVar(&f.configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "use preset configuration")
}

// resolve layers defaults, preset, config file, changed flags and --param
// values, in that order.
func (f *runFlags) resolve(cmd *cobra.Command, kind string) (*config.Config, error) {
	if _, err := registry.Lookup(kind); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(kind, f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets(kind))
		}
	}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		params := cfg.Params
		cfg = loaded
		cfg.Params = params
		cfg.Apply(loaded.Params)
	}
	cfg.Kind = kind

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = f.duration
	}
	if flags.Changed("frame") {
		cfg.FrameMs = f.frameMs
	}
	if flags.Changed("speed") {
		cfg.Speed = f.speed
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("width") {
		cfg.Width = f.width
	}
	if flags.Changed("height") {
		cfg.Height = f.height
	}

	params, err := parseParams(f.params)
	if err != nil {
		return nil, err
	}
	cfg.Apply(params)
	return cfg, nil
}

func parseParams(pairs []string) (map[string]float64, error) {
	params := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("param %q: expected name=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", pair, err)
		}
		params[strings.TrimSpace(name)] = v
	}
	return params, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var fps int
	rootCmd := &cobra.Command{
		Use:           "physanim",
		Short:         "2D physics teaching animations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			log.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			factory := func(k dynamo.Kind, vp *dynamo.Viewport) (dynamo.Scene, error) {
				return registry.New(k, vp, time.Now().UnixNano())
			}
			return viz.RunApp(cmd.Context(), viz.NewApp(registry.Kinds(), factory, fps))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physanim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().IntVar(&fps, "fps", 30, "frame rate")

	var runOpts runFlags
	runCmd := &cobra.Command{
		Use:   "run [kind]",
		Short: "run a scene headless and save its stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(cmd, args[0], &runOpts)
		},
	}
	addRunFlags(runCmd, &runOpts)

	var liveOpts runFlags
	var liveFPS int
	liveCmd := &cobra.Command{
		Use:   "live [kind]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := dynamo.KindPendulum.String()
			if len(args) > 0 {
				kind = args[0]
			}
			return runLive(cmd, kind, &liveOpts, liveFPS)
		},
	}
	addRunFlags(liveCmd, &liveOpts)
	liveCmd.Flags().IntVar(&liveFPS, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [stat...]",
		Short: "plot stats of a run",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotRun,
	}

	var exportJSON bool
	var exportOut string
	exportCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run stats to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportRun(args[0], exportJSON, exportOut)
		},
	}
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "export JSON instead of CSV")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list scene kinds and their parameters",
		Args:  cobra.NoArgs,
		RunE:  listKinds,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets for a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for kind: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	var ensOpts runFlags
	var ensRuns int
	ensembleCmd := &cobra.Command{
		Use:   "ensemble [kind]",
		Short: "run one scene under many seeds in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnsemble(cmd, args[0], &ensOpts, ensRuns)
		},
	}
	addRunFlags(ensembleCmd, &ensOpts)
	ensembleCmd.Flags().IntVar(&ensRuns, "runs", 8, "number of seeds")

	var profileDir string
	benchCmd := &cobra.Command{
		Use:   "bench [kind]",
		Short: "benchmark a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchScene(args[0], profileDir)
		},
	}
	benchCmd.Flags().StringVar(&profileDir, "profile", "", "write a CPU profile to this directory")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, exportCmd, kindsCmd, presetsCmd, ensembleCmd, benchCmd)
	rootCmd.AddCommand(analysisCommands()...)
	rootCmd.AddCommand(scenarioCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newExperiment(cfg *config.Config) (*experiment.Experiment, error) {
	expCfg, err := cfg.Experiment()
	if err != nil {
		return nil, err
	}
	exp := experiment.New(expCfg, registry)
	exp.SetLogger(logger)
	return exp, nil
}

func runScene(cmd *cobra.Command, kind string, opts *runFlags) error {
	cfg, err := opts.resolve(cmd, kind)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}
	if err := exp.Setup(nil); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", kind)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted, saving partial result", "err", err)
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	runID, err := st.Save(storage.RunMetadata{
		Seed:     cfg.Seed,
		FrameMs:  cfg.FrameMs,
		Duration: cfg.Duration,
		Speed:    cfg.Speed,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Params:   exp.Scene().GetParams(),
	}, result)
	if err != nil {
		return err
	}
	logger.Debug("run saved", "id", runID, "dir", st.Dir())

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Frames)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, kind string, opts *runFlags, fps int) error {
	cfg, err := opts.resolve(cmd, kind)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}
	if err := exp.Setup([]sim.Metric{}); err != nil {
		return err
	}
	scene := exp.Scene()
	if err := scene.SetParam("speed", cfg.Speed); err != nil {
		return err
	}
	return viz.RunLive(cmd.Context(), scene, exp.Viewport(), fps)
}

func runEnsemble(cmd *cobra.Command, kind string, opts *runFlags, runs int) error {
	cfg, err := opts.resolve(cmd, kind)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %d seeds of %s...\n\n", runs, kind)
	start := time.Now()
	results, err := exp.Ensemble(cmd.Context(), runs)
	if err != nil {
		return err
	}
	logger.Debug("ensemble finished", "runs", len(results), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, s := range sim.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\t%.6g\t%.6g\n", s.Name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tKIND\tTIME\tDURATION\tFRAME\tSPEED\tSEED\tFRAMES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.2fms\t%.2fx\t%d\t%d\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FrameMs,
			run.Speed,
			run.Seed,
			run.Frames,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// dropNaN keeps the recorded frames of a series; keys a scene only reports
// in some modes are NaN elsewhere.
func dropNaN(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	keys := args[1:]
	if len(keys) == 0 {
		keys = sortedKeys(series)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d\n\n", len(times))

	for _, key := range keys {
		vs, ok := series[key]
		if !ok {
			return fmt.Errorf("run %s has no stat %q (have %v)", runID, key, sortedKeys(series))
		}
		data := dropNaN(vs)
		if !viz.Plottable(data) {
			fmt.Printf("%s: constant %s\n\n", key, formatConst(data))
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(key),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func formatConst(data []float64) string {
	if len(data) == 0 {
		return "(no samples)"
	}
	return strconv.FormatFloat(data[0], 'g', 6, 64)
}

func sortedKeys(series map[string][]float64) []string {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func exportRun(runID string, asJSON bool, out string) error {
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	st := storage.New(dataDir)
	if asJSON {
		return st.ExportJSON(runID, w)
	}
	return st.ExportCSV(runID, w)
}

func listKinds(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tPRESETS\tPARAMS")
	for _, k := range registry.Kinds() {
		scene, err := registry.New(k, nil, 1)
		if err != nil {
			return err
		}
		params := scene.GetParams()
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, fmt.Sprintf("%s=%g", name, params[name]))
		}
		sort.Strings(names)
		fmt.Fprintf(w, "%s\t%s\t%s\n", k, strings.Join(config.ListPresets(k.String()), ","), strings.Join(names, " "))
	}
	return w.Flush()
}

func benchScene(name, profileDir string) error {
	kind, err := registry.Lookup(name)
	if err != nil {
		return err
	}
	if profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
		logger.Info("profiling", "dir", profileDir)
	}

	frameSizes := []float64{8, 1000.0 / 60, 1000.0 / 30}
	durations := []float64{1, 10, 60}

	fmt.Printf("benchmarking %s\n\n", kind)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tFRAME\tFRAMES\tTIME\tFRAMES/SEC")

	for _, dur := range durations {
		for _, frameMs := range frameSizes {
			scene, err := registry.New(kind, nil, 42)
			if err != nil {
				return err
			}
			frames := int(dur * 1000 / frameMs)

			start := time.Now()
			for i := 0; i < frames; i++ {
				scene.Update(frameMs)
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.0fs\t%.2fms\t%d\t%v\t%.0f\n",
				dur, frameMs, frames, elapsed, float64(frames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
