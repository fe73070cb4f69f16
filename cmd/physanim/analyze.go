package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/analysis"
	"github.com/san-kum/physanim/internal/config"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/experiment"
	"github.com/san-kum/physanim/internal/export"
	"github.com/san-kum/physanim/internal/sim"
	"github.com/san-kum/physanim/internal/storage"
	"github.com/san-kum/physanim/internal/viz"
)

func analysisCommands() []*cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id] [stat]",
		Short: "frequency analysis of a stat",
		Args:  cobra.ExactArgs(2),
		RunE:  analyzeRun,
	}

	var phaseSVG string
	phaseCmd := &cobra.Command{
		Use:   "phase [run_id] [x_stat] [y_stat]",
		Short: "phase space plot of two stats",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return phasePlot(args[0], args[1], args[2], phaseSVG)
		},
	}
	phaseCmd.Flags().StringVar(&phaseSVG, "svg", "", "also write the portrait as SVG")

	var frameOpts runFlags
	var frameOut string
	var frameBraille bool
	frameCmd := &cobra.Command{
		Use:   "frame [kind]",
		Short: "run a scene and write its last frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := frameOpts.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			return writeFrame(cmd, cfg, frameOut, frameBraille)
		},
	}
	addRunFlags(frameCmd, &frameOpts)
	frameCmd.Flags().StringVarP(&frameOut, "output", "o", "frame.svg", "output file")
	frameCmd.Flags().BoolVar(&frameBraille, "braille", false, "export the terminal canvas instead of scene pixels")

	var sweepOpts runFlags
	var sweepParam, sweepStat string
	var sweepFrom, sweepTo float64
	var sweepSteps, sweepTransient, sweepRecord int
	sweepCmd := &cobra.Command{
		Use:   "sweep [kind]",
		Short: "sweep one parameter and summarise a stat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sweepOpts.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			values := analysis.Linspace(sweepFrom, sweepTo, sweepSteps)
			return runSweep(cmd, cfg, sweepParam, sweepStat, values, sweepTransient, sweepRecord)
		},
	}
	addRunFlags(sweepCmd, &sweepOpts)
	sweepCmd.Flags().StringVar(&sweepParam, "sweep", "", "parameter to sweep")
	sweepCmd.Flags().StringVar(&sweepStat, "stat", "", "stat to summarise")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().IntVar(&sweepTransient, "transient", 120, "frames to skip before recording")
	sweepCmd.Flags().IntVar(&sweepRecord, "record", 240, "frames to record")
	sweepCmd.MarkFlagRequired("sweep")
	sweepCmd.MarkFlagRequired("stat")

	var chaosOpts runFlags
	var chaosParam string
	var chaosEps, chaosLimit float64
	chaosCmd := &cobra.Command{
		Use:   "chaos [kind]",
		Short: "estimate divergence of two nearby runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := chaosOpts.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			return runChaos(cfg, chaosParam, chaosEps, chaosLimit)
		},
	}
	addRunFlags(chaosCmd, &chaosOpts)
	chaosCmd.Flags().StringVar(&chaosParam, "perturb", "amplitude", "parameter to perturb")
	chaosCmd.Flags().Float64Var(&chaosEps, "eps", 1e-3, "perturbation size")
	chaosCmd.Flags().Float64Var(&chaosLimit, "limit", 50, "separation in px where fitting stops")

	return []*cobra.Command{analyzeCmd, phaseCmd, frameCmd, sweepCmd, chaosCmd}
}

// newStudyExperiment copies cfg with param overridden to v.
func newStudyExperiment(cfg experiment.Config, param string, v float64) *experiment.Experiment {
	params := make(map[string]float64, len(cfg.Params)+1)
	for k, pv := range cfg.Params {
		params[k] = pv
	}
	params[param] = v
	cfg.Params = params

	exp := experiment.New(cfg, registry)
	exp.SetLogger(logger)
	return exp
}

func loadStat(st *storage.Store, runID, key string) ([]float64, []float64, error) {
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	vs, ok := series[key]
	if !ok {
		return nil, nil, fmt.Errorf("run %s has no stat %q (have %v)", runID, key, sortedKeys(series))
	}
	return times, vs, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID, key := args[0], args[1]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, data, err := loadStat(st, runID, key)
	if err != nil {
		return err
	}
	if len(times) < 4 || times[len(times)-1] <= times[0] {
		return fmt.Errorf("not enough data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("kind: %s\n\n", meta.Kind)

	// frames are evenly spaced in scene time
	sampleRate := float64(len(times)-1) / (times[len(times)-1] - times[0])

	if ps := analysis.PowerSpectrum(data); len(ps) > 0 && viz.Plottable(ps[:len(ps)/4+1]) {
		graph := asciigraph.Plot(ps[:len(ps)/4+1],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", key)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq := analysis.DominantFrequency(data, sampleRate)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	clean := dropNaN(data)
	if len(clean) > 0 {
		mean := stat.Mean(clean, nil)
		if p := analysis.MeanPeriod(analysis.Crossings(times, data, mean)); p > 0 {
			fmt.Printf("period from mean crossings: %.3f s\n", p)
		}
	}
	return nil
}

func phasePlot(runID, xKey, yKey, svgPath string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, xs, err := loadStat(st, runID, xKey)
	if err != nil {
		return err
	}
	_, ys, err := loadStat(st, runID, yKey)
	if err != nil {
		return err
	}

	p := analysis.NewPhasePortrait(xKey, xs, yKey, ys)
	if len(p.Points) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", xKey, yKey)
	fmt.Print(p.ASCII(70, 20))

	if svgPath == "" {
		return nil
	}
	return os.WriteFile(svgPath, []byte(export.TrajectorySVG(p.Points, 600, 400, "#00ff00")), 0644)
}

// writeFrame drives a scene through a renderer so trails accumulate, then
// exports the final frame.
func writeFrame(cmd *cobra.Command, cfg *config.Config, out string, braille bool) error {
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}
	if err := exp.Setup([]sim.Metric{}); err != nil {
		return err
	}

	r := viz.NewRenderer(100, 40)
	exp.GetSimulator().AddObserver(sim.ObserverFunc(func(snap dynamo.Snapshot, _ dynamo.Stats) {
		r.Render(snap)
	}))
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	var svg string
	if braille {
		svg = export.CanvasSVG(r.Canvas(), 4)
	} else {
		svg = export.SnapshotSVG(result.Final, r.Trail)
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("frame written", "kind", cfg.Kind, "time", result.Final.Time, "file", out)
	return nil
}

func runSweep(cmd *cobra.Command, cfg *config.Config, param, key string, values []float64, transient, record int) error {
	expCfg, err := cfg.Experiment()
	if err != nil {
		return err
	}

	build := func(v float64) (dynamo.Scene, error) {
		exp := newStudyExperiment(expCfg, param, v)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		scene := exp.Scene()
		return scene, scene.SetParam("speed", cfg.Speed)
	}

	logger.Info("sweeping", "kind", cfg.Kind, "param", param, "values", len(values))
	points, err := analysis.Sweep(cmd.Context(), build, values, key, transient, record, cfg.FrameMs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN\tMIN\tMAX\n", param)
	means := make([]float64, len(points))
	for i, pt := range points {
		means[i] = pt.Mean
		fmt.Fprintf(w, "%.4g\t%.6g\t%.6g\t%.6g\n", pt.Value, pt.Mean, pt.Min, pt.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if viz.Plottable(means) {
		fmt.Println()
		fmt.Println(asciigraph.Plot(means,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("mean %s vs %s", key, param)),
		))
	}
	return nil
}

func runChaos(cfg *config.Config, param string, eps, limit float64) error {
	expCfg, err := cfg.Experiment()
	if err != nil {
		return err
	}

	base := expCfg.Params[param]
	if _, ok := expCfg.Params[param]; !ok {
		scene, err := registry.New(expCfg.Kind, nil, expCfg.Seed)
		if err != nil {
			return err
		}
		v, ok := scene.GetParams()[param]
		if !ok {
			return fmt.Errorf("%s has no parameter %q", expCfg.Kind, param)
		}
		base = v
	}

	scenes := make([]dynamo.Scene, 2)
	for i, v := range []float64{base, base + eps} {
		exp := newStudyExperiment(expCfg, param, v)
		if err := exp.Setup(nil); err != nil {
			return err
		}
		scenes[i] = exp.Scene()
		if err := scenes[i].SetParam("speed", cfg.Speed); err != nil {
			return err
		}
	}

	frames := int(cfg.Duration * 1000 / cfg.FrameMs)
	est := analysis.Divergence(scenes[0], scenes[1], frames, cfg.FrameMs, limit)

	fmt.Printf("divergence of %s with %s=%g vs %g\n\n", cfg.Kind, param, base, base+eps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "exponent\t%.4f 1/s\n", est.Exponent)
	fmt.Fprintf(w, "initial separation\t%.3g px\n", est.Initial)
	fmt.Fprintf(w, "final separation\t%.3g px\n", est.Final)
	fmt.Fprintf(w, "samples\t%d\n", est.Samples)
	fmt.Fprintf(w, "saturated\t%v\n", est.Saturated)
	return w.Flush()
}
