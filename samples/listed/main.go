package main

import (
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/api"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
)

//go:embed problem.yaml
var problemYAML []byte

//go:embed options.yaml
var optionsYAML []byte

var monitorFlag = flag.Bool("monitor", false, "Serve the akita monitor")

func main() {
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	opts, err := config.ParseOptions(optionsYAML, config.YAML)
	if err != nil {
		atexit.Fatalf("options: %v", err)
	}

	var prob config.Problem
	if err := config.Decode(problemYAML, config.YAML, &prob); err != nil {
		atexit.Fatalf("problem: %v", err)
	}

	inst, err := prob.Build(rng.New(opts.Seed))
	if err != nil {
		atexit.Fatalf("problem: %v", err)
	}

	st := placement.NewState(inst.Grid, inst.Netlist)
	if err := inst.PlaceFixed(st); err != nil {
		atexit.Fatalf("fixed blocks: %v", err)
	}

	placer, err := anneal.MakeBuilder().
		WithOptions(opts).
		WithFlows(inst.Flows).
		Build(inst.Name, st)
	if err != nil {
		atexit.Fatalf("placer: %v", err)
	}

	engine := sim.NewSerialEngine()
	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithPlacer(placer).
		Build("Driver")

	if *monitorFlag {
		monitor := monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(driver)
		monitor.StartServer()
	}

	if err := driver.Run(); err != nil {
		atexit.Fatalf("placement: %v", err)
	}

	if err := st.WritePlace(os.Stdout, inst.Name); err != nil {
		atexit.Fatalf("write: %v", err)
	}

	fmt.Printf("\n%d steps, cost %.4f\n", driver.Steps(), placer.Summary().Cost)

	atexit.Exit(0)
}
