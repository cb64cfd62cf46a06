// Package api drives placers on an akita simulation engine.
package api

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
)

// Placer is what a driver advances. Step runs one phase of the placement
// and reports true once there is nothing left to do.
type Placer interface {
	Name() string
	Step() (bool, error)
}

// Driver runs placers, one placement phase per tick.
type Driver interface {
	sim.Component

	// Placer returns the placer being driven.
	Placer() Placer

	// Steps returns the number of placement steps taken so far.
	Steps() int

	// Run ticks the driver until the placement is done or fails.
	Run() error
}

type driverImpl struct {
	*sim.TickingComponent

	placer Placer
	steps  int
	done   bool
	err    error
}

// Tick runs one step of the placer.
func (d *driverImpl) Tick() (madeProgress bool) {
	if d.done {
		return false
	}

	done, err := d.placer.Step()
	d.steps++

	if err != nil {
		d.err = err
		d.done = true

		slog.Error("Placement step failed",
			"Driver", d.Name(),
			"Placer", d.placer.Name(),
			"Step", d.steps,
			"Error", err)

		return false
	}

	d.done = done

	return true
}

func (d *driverImpl) Placer() Placer {
	return d.placer
}

func (d *driverImpl) Steps() int {
	return d.steps
}

// Run ticks the driver and runs the engine until the placer is done.
func (d *driverImpl) Run() error {
	d.TickNow()

	if err := d.Engine.Run(); err != nil {
		return err
	}

	return d.err
}
