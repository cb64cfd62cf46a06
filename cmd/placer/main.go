// Placer anneals the placement of a problem file and writes the resulting
// .place file, reports and a JSON summary.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sugawarayuuta/sonnet"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/api"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/store"
	"github.com/sarchlab/fplace/util"
)

var (
	problemFlag     = flag.String("problem", "", "Problem file (.yaml, .yml or .json).")
	optionsFlag     = flag.String("options", "", "Placer options file (.yaml, .yml or .json).")
	seedFlag        = flag.Int64("seed", 0, "Overrides the seed of the options when not zero.")
	outFlag         = flag.String("out", "", "Output .place file. Defaults to <name>.place.")
	reportFlag      = flag.String("report", "", "Writes the placement report to this file.")
	summaryFlag     = flag.String("summary", "", "Writes a JSON summary to this file.")
	logFlag         = flag.String("log", "", "Writes JSON logs to this file instead of stderr.")
	logLevelFlag    = flag.String("log-level", "info", "One of debug, info, trace, warn, error.")
	traceSwapsFlag  = flag.Bool("trace-swaps", false, "Traces every swap.")
	storeDriverFlag = flag.String("store-driver", "sqlite3", "Store driver, sqlite3 or mysql.")
	storeDSNFlag    = flag.String("store", "", "Records the run in this database.")
	monitorFlag     = flag.Bool("monitor", false, "Starts the akita web monitor.")
)

type summary struct {
	RunID string `json:"run_id"`
	anneal.Summary
	Temperatures []tempSummary `json:"temperatures"`
}

type tempSummary struct {
	Iteration   int     `json:"iteration"`
	Temperature float64 `json:"temperature"`
	AvCost      float64 `json:"av_cost"`
	SuccessRate float64 `json:"success_rate"`
	CPD         float64 `json:"cpd"`
}

func main() {
	flag.Parse()

	setupLogging()

	if *problemFlag == "" {
		fatalf("-problem is required")
	}

	opts := config.DefaultOptions()
	if *optionsFlag != "" {
		var err error
		opts, err = config.LoadOptions(*optionsFlag)
		if err != nil {
			fatalf("load options: %v", err)
		}
	}

	if *seedFlag != 0 {
		opts.Seed = *seedFlag
	}

	if err := opts.Validate(); err != nil {
		fatalf("invalid options: %v", err)
	}

	prob, err := config.LoadProblem(*problemFlag)
	if err != nil {
		fatalf("load problem: %v", err)
	}

	inst, err := prob.Build(rng.New(opts.Seed))
	if err != nil {
		fatalf("build problem: %v", err)
	}

	st := placement.NewState(inst.Grid, inst.Netlist)
	if err := inst.PlaceFixed(st); err != nil {
		fatalf("place fixed blocks: %v", err)
	}

	placer, err := anneal.MakeBuilder().
		WithOptions(opts).
		WithFlows(inst.Flows).
		Build(inst.Name, st)
	if err != nil {
		fatalf("build placer: %v", err)
	}

	if util.TraceEnabled() {
		placer.AcceptHook(anneal.TraceHook{Swaps: *traceSwapsFlag})
	}

	runID := xid.New().String()
	if *storeDSNFlag != "" {
		runID = setupStore(placer)
	}

	engine := sim.NewSerialEngine()
	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.Hz).
		WithPlacer(placer).
		Build("Driver")

	if *monitorFlag {
		monitor := monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(driver)
		monitor.StartServer()
	}

	if err := opts.WriteTable(os.Stdout); err != nil {
		fatalf("write options: %v", err)
	}

	if err := driver.Run(); err != nil {
		fatalf("placement failed: %v", err)
	}

	writeOutputs(placer, inst.Name, runID)

	atexit.Exit(0)
}

// fatalf logs the failure and exits through the registered handlers.
func fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Error("Fatal", "Error", msg)
	atexit.Fatalf("%s", msg)
}

func setupLogging() {
	level := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"trace": util.LevelTrace,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	l, ok := level[strings.ToLower(*logLevelFlag)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevelFlag)
		os.Exit(2)
	}

	out := os.Stderr
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}

		atexit.Register(func() { f.Close() })
		out = f
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}

func setupStore(placer *anneal.Placer) string {
	rec, err := store.NewRecorder(*storeDriverFlag, *storeDSNFlag)
	if err != nil {
		fatalf("open store: %v", err)
	}

	atexit.Register(func() {
		if err := rec.Close(); err != nil {
			slog.Warn("Close store", "Error", err)
		}
	})

	if err := rec.StartRun(placer.Name(), placer.Options().Seed); err != nil {
		fatalf("%v", err)
	}

	placer.AcceptHook(rec)

	atexit.Register(func() {
		if placer.Phase() != anneal.PhaseDone {
			return
		}

		if err := rec.RecordPlacement(placer.Placement()); err != nil {
			slog.Warn("Store placement", "Error", err)
		}
	})

	return rec.RunID()
}

func writeOutputs(placer *anneal.Placer, name, runID string) {
	out := *outFlag
	if out == "" {
		out = name + ".place"
	}

	if err := writeFile(out, func(f *os.File) error {
		return placer.Placement().WritePlace(f, name)
	}); err != nil {
		fatalf("write placement: %v", err)
	}

	if *reportFlag != "" {
		if err := writeFile(*reportFlag, func(f *os.File) error {
			return placer.WriteReport(f)
		}); err != nil {
			fatalf("write report: %v", err)
		}
	} else {
		fmt.Println(placer.StatusTable().Render())
	}

	if *summaryFlag != "" {
		s := summary{RunID: runID, Summary: placer.Summary()}
		for _, r := range placer.StatusTable().Rows {
			s.Temperatures = append(s.Temperatures, tempSummary{
				Iteration:   r.Iteration,
				Temperature: r.Temperature,
				AvCost:      r.AvCost,
				SuccessRate: r.SuccessRate,
				CPD:         r.CPD,
			})
		}

		data, err := sonnet.Marshal(s)
		if err != nil {
			fatalf("encode summary: %v", err)
		}

		if err := os.WriteFile(*summaryFlag, data, 0644); err != nil {
			fatalf("write summary: %v", err)
		}
	}

	slog.Info("Placement written",
		"Run", runID,
		"Place", filepath.Clean(out))
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
