package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/soapsort/internal/automation"
	"github.com/san-kum/soapsort/internal/config"
	"github.com/san-kum/soapsort/internal/experiment"
	"github.com/san-kum/soapsort/internal/optim"
	"github.com/san-kum/soapsort/internal/soap"
	"github.com/san-kum/soapsort/internal/storage"
	"github.com/san-kum/soapsort/internal/viz"
)

var (
	dataDir string
	verbose bool
	// Sorter parameters
	energy          float64
	beta            float64
	threshold       float64
	maxInteractions int
	seed            int64
	// Input selection
	generator string
	size      int
	// History sampling stride
	stride int
	// Config file
	configFile string
	// Preset name
	preset string
	// Frame rate for live view
	frameRate int
	// Ensemble
	numRuns int
	workers int
	// Output path for exports, stdout when empty
	outPath string
	// Sweep grid
	energies   []float64
	betas      []float64
	thresholds []float64
	objective  string
	// Linear scan
	scanParam string
	scanFrom  float64
	scanTo    float64
	scanSteps int
)

var demoValues = []int{4, 3, 2, 6, 5, 7, 8, 1}

// main wires the soapsort commands and runs the root command under an
// interrupt-aware context. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "soapsort",
		Short:         "physics-driven sorting lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: runDemo,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".soapsort", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	runCmd := &cobra.Command{
		Use:   "run [values...]",
		Short: "sort values (or a generated array) and save the run",
		RunE:  runSort,
	}
	addSortFlags(runCmd)
	runCmd.Flags().IntVar(&stride, "stride", 1, "record inversions every n interactions (0 disables)")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "sort the demonstration array and print it before and after",
		RunE:  runDemo,
	}
	demoCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot inversions and swaps of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run history to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and history to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the inversion history as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "sort the same input under consecutive seeds",
		RunE:  benchSort,
	}
	addSortFlags(benchCmd)
	benchCmd.Flags().IntVar(&numRuns, "runs", 10, "number of seeds")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search energy, beta and threshold",
		RunE:  sweepParams,
	}
	addSortFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&energies, "energies", []float64{50, 100, 200}, "energies to try")
	sweepCmd.Flags().Float64SliceVar(&betas, "betas", []float64{0.1, 0.5, 1}, "betas to try")
	sweepCmd.Flags().Float64SliceVar(&thresholds, "thresholds", []float64{0.01, 0.1, 1}, "thresholds to try")
	sweepCmd.Flags().StringVar(&objective, "objective", "interactions", "score to minimise (interactions or a metric name)")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "vary one parameter linearly and report each point",
		RunE:  scanParamRange,
	}
	addSortFlags(scanCmd)
	scanCmd.Flags().StringVar(&scanParam, "param", "energy", "parameter to vary (energy, beta, threshold)")
	scanCmd.Flags().Float64Var(&scanFrom, "from", 10, "first value")
	scanCmd.Flags().Float64Var(&scanTo, "to", 200, "last value")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 10, "number of points")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML batch of sorts and save each one",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	liveCmd := &cobra.Command{
		Use:   "live [values...]",
		Short: "animate a sort in the terminal",
		RunE:  runLive,
	}
	addSortFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINPUT\tENERGY\tBETA\tTHRESHOLD\tCAP")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%d\n",
					name, describeInput(p.Input), describeEnergy(p.Energy), p.Beta, p.Threshold, p.MaxInteractions)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "soapsort.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, demoCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, benchCmd, sweepCmd, scanCmd, scenarioCmd, liveCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func addSortFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&energy, "energy", 0, "interaction energy (0 = array length)")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "deceleration magnitude")
	cmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "speed below which motion stops")
	cmd.Flags().IntVar(&maxInteractions, "max-interactions", 0, "give up after n interactions (0 = never)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&generator, "generator", config.DefaultGenerator, "input generator")
	cmd.Flags().IntVar(&size, "size", config.DefaultSize, "generated array length")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers the preset, the config file, explicitly set flags and
// positional values, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("energy") {
		cfg.Energy = energy
	}
	if flags.Changed("beta") {
		cfg.Beta = beta
	}
	if flags.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if flags.Changed("max-interactions") {
		cfg.MaxInteractions = maxInteractions
	}
	if flags.Changed("generator") {
		cfg.Input.Generator = generator
		cfg.Input.Values = nil
	}
	if flags.Changed("size") {
		cfg.Input.Size = size
		cfg.Input.Values = nil
	}
	if cfg.Seed == 0 || flags.Changed("seed") {
		cfg.Seed = seed
	}

	if len(args) > 0 {
		values, err := parseValues(args)
		if err != nil {
			return nil, err
		}
		cfg.Input.Values = values
	}

	return cfg, nil
}

// parseValues accepts whitespace or comma separated numbers.
func parseValues(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q: %w", field, err)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func experimentConfig(cfg *config.Config, historyStride int) experiment.Config {
	return experiment.Config{
		Generator:     cfg.Input.Generator,
		Size:          cfg.Input.Size,
		Values:        cfg.Input.Values,
		Sort:          cfg.Sort(),
		Seed:          cfg.Seed,
		HistoryStride: historyStride,
	}
}

func describeInput(in config.InputConfig) string {
	if len(in.Values) > 0 {
		return formatValues(in.Values)
	}
	return fmt.Sprintf("%s(%d)", in.Generator, in.Size)
}

func describeEnergy(e float64) string {
	if e <= 0 {
		return "n"
	}
	return strconv.FormatFloat(e, 'g', -1, 64)
}

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func runDemo(cmd *cobra.Command, args []string) error {
	arr := append([]int(nil), demoValues...)
	cfg := soap.Config{Energy: 100, Beta: 1, Threshold: 1}

	fmt.Println("Original:", arr)
	if err := soap.Sort(arr, rand.New(rand.NewSource(seed)), cfg); err != nil {
		return err
	}
	fmt.Println("Sorted:  ", arr)
	return nil
}

func runSort(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	expCfg := experimentConfig(cfg, stride)
	exp := experiment.New(expCfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Printf("sorting %d values...\n", len(exp.Input()))
	result, runErr := exp.Run(cmd.Context())
	if result == nil {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, soap.ErrInteractionLimit) && !errors.Is(runErr, soap.ErrCanceled) {
		return runErr
	}

	runID, err := st.Save(expCfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("input:  %s\n", formatValues(result.Input))
	fmt.Printf("output: %s\n", formatValues(result.Output))
	fmt.Printf("interactions: %d  swaps: %d  steps: %d  bounces: %d  stalls: %d\n",
		result.Sort.Interactions, result.Sort.Swaps, result.Sort.Steps, result.Sort.Bounces, result.Sort.Stalls)
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Sort.Metrics)) {
		fmt.Printf("  %s: %.6f\n", name, result.Sort.Metrics[name])
	}

	if runErr != nil {
		slog.Warn("run incomplete, partial result saved", "run", runID, "err", runErr)
	}
	return runErr
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
	fmt.Fprintln(w, "ID\tINPUT\tTIME\tN\tENERGY\tBETA\tTHRESH\tINTERACTIONS\tSWAPS\tSORTED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%g\t%d\t%d\t%t\n",
			run.ID,
			run.Generator,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Input),
			run.Energy,
			run.Beta,
			run.Threshold,
			run.Interactions,
			run.Swaps,
			run.Sorted,
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

	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		return fmt.Errorf("no history to plot (run with --stride > 0)")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("input: %s\n", formatValues(meta.Input))
	fmt.Printf("samples: %d\n\n", len(history))

	inversions := make([]float64, len(history))
	swaps := make([]float64, len(history))
	for i, h := range history {
		inversions[i] = float64(h.Inversions)
		swaps[i] = float64(h.Swaps)
	}

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{inversions, "inversions vs interaction"},
		{swaps, "cumulative swaps vs interaction"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	if len(history) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write([]string{"interaction", "inversions", "swaps"}); err != nil {
		return err
	}
	for _, h := range history {
		row := []string{strconv.Itoa(h.Interaction), strconv.Itoa(h.Inversions), strconv.Itoa(h.Swaps)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		return st.WriteJSON(args[0], os.Stdout)
	}
	if err := st.ExportJSON(args[0], outPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	svg := storage.HistoryToSVG(history, 800, 400, "#00d7ff")
	if svg == "" {
		return fmt.Errorf("not enough history to draw")
	}

	if outPath == "" {
		_, err := fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func benchSort(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	ens := experiment.NewEnsemble(experimentConfig(cfg, 0), experiment.NewRegistry(), numRuns, cfg.Seed)
	ens.SetWorkers(workers)

	fmt.Printf("benchmarking %s over %d seeds\n\n", describeInput(cfg.Input), numRuns)
	start := time.Now()
	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}
	wall := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tINTERACTIONS\tSWAPS\tSTEPS\tSTALLS\tTIME")

	minI, maxI, total := math.MaxInt, 0, 0
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%v\n",
			cfg.Seed+int64(i), r.Sort.Interactions, r.Sort.Swaps, r.Sort.Steps, r.Sort.Stalls, r.Elapsed)
		minI = min(minI, r.Sort.Interactions)
		maxI = max(maxI, r.Sort.Interactions)
		total += r.Sort.Interactions
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ninteractions: min %d  mean %.1f  max %d\n", minI, float64(total)/float64(len(results)), maxI)
	fmt.Printf("wall time: %v\n", wall)
	return nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	var score optim.Objective = optim.Interactions
	if objective != "interactions" {
		score = optim.Metric(objective)
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		expCfg := experimentConfig(cfg, 0)
		expCfg.Sort.Energy = params["energy"]
		expCfg.Sort.Beta = params["beta"]
		expCfg.Sort.Threshold = params["threshold"]
		exp := experiment.New(expCfg)
		if err := exp.Setup(registry); err != nil {
			return nil, err
		}
		return exp, nil
	}

	gs := optim.NewGridSearch(
		[]string{"energy", "beta", "threshold"},
		[][]float64{energies, betas, thresholds},
	)

	points := len(energies) * len(betas) * len(thresholds)
	fmt.Printf("sweeping %d grid points on %s\n", points, describeInput(cfg.Input))
	if cfg.MaxInteractions == 0 {
		slog.Warn("no interaction cap set; some parameter combinations never finish", "hint", "--max-interactions")
	}

	params, best, err := gs.Search(cmd.Context(), build, score)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated: %d/%d\n", gs.Evaluated(), points)
	fmt.Printf("best %s: %g\n", objective, best)
	fmt.Printf("  energy:    %g\n", params["energy"])
	fmt.Printf("  beta:      %g\n", params["beta"])
	fmt.Printf("  threshold: %g\n", params["threshold"])
	return nil
}

func scanParamRange(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Base:      experimentConfig(cfg, 0),
		ParamName: scanParam,
		ParamMin:  scanFrom,
		ParamMax:  scanTo,
		NumSteps:  scanSteps,
	}

	fmt.Printf("scanning %s from %g to %g on %s\n\n", scanParam, scanFrom, scanTo, describeInput(cfg.Input))
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tINTERACTIONS\tSWAPS\tSTALLS\tSORTED\n", strings.ToUpper(scanParam))
	for _, r := range results {
		status := strconv.FormatBool(r.Sorted)
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%d\t%d\t%d\t%s\n", r.ParamValue, r.Interactions, r.Swaps, r.Stalls, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sorted, unsorted := automation.SweepStats(results)
	fmt.Printf("\nsorted: %d  unsorted: %d\n", sorted, unsorted)
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

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}

	results, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry())
	for i, result := range results {
		runID, err := st.Save(sc.Steps[i].Config(), result)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s %s  interactions: %d  swaps: %d\n",
			sc.Steps[i].Name, runID, result.Sort.Interactions, result.Sort.Swaps)
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(experimentConfig(cfg, 0))
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	return viz.Run(exp.Input(), cfg.Sort(), cfg.Seed, frameRate)
}
