package api

import "github.com/sarchlab/akita/v4/sim"

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine sim.Engine
	freq   sim.Freq
	placer Placer
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the driver.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithPlacer sets the placer to drive.
func (b DriverBuilder) WithPlacer(p Placer) DriverBuilder {
	b.placer = p
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	if b.placer == nil {
		panic("driver needs a placer")
	}

	d := &driverImpl{
		placer: b.placer,
	}

	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	return d
}
