package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/api"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/synth"
	"github.com/sarchlab/fplace/util"
)

func main() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: util.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	grid, err := synth.Device(synth.DeviceConfig{
		Width:      20,
		Height:     20,
		ChanWidth:  8,
		IOCapacity: 4,
		MemStartX:  5,
		MemRepeatX: 8,
	})
	if err != nil {
		atexit.Fatalf("device: %v", err)
	}

	nl, err := synth.Netlist(grid, synth.NetlistConfig{
		CLBs:               180,
		IOs:                40,
		Mems:               8,
		Nets:               260,
		MaxFanout:          6,
		Macros:             4,
		MacroSize:          3,
		SequentialFraction: 0.25,
		GlobalNets:         1,
		PinsPerBlock:       4,
	}, rng.New(2024))
	if err != nil {
		atexit.Fatalf("netlist: %v", err)
	}

	opts := config.DefaultOptions()
	opts.PlaceAlgorithm = cost.CriticalityTiming
	opts.InnerNum = 1

	placer, err := anneal.MakeBuilder().
		WithOptions(opts).
		Build("synthetic", placement.NewState(grid, nl))
	if err != nil {
		atexit.Fatalf("placer: %v", err)
	}

	placer.AcceptHook(anneal.TraceHook{})

	engine := sim.NewSerialEngine()
	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.Hz).
		WithPlacer(placer).
		Build("Driver")

	if err := driver.Run(); err != nil {
		atexit.Fatalf("placement: %v", err)
	}

	if err := placer.WriteReport(os.Stdout); err != nil {
		atexit.Fatalf("report: %v", err)
	}

	s := placer.Summary()
	fmt.Printf("cost %.4f, bb %.2f, cpd %.3f, %d temperatures, digest %s\n",
		s.Cost, s.BBCost, s.CPD, s.NumTemps, s.Digest)

	atexit.Exit(0)
}
