package api

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/sram"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine  sim.Engine
	freq    sim.Freq
	memSize int
}

// NewDriverBuilder returns a builder with default parameters.
func NewDriverBuilder() DriverBuilder {
	return DriverBuilder{
		freq:    1 * sim.GHz,
		memSize: 1024,
	}
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

// WithMemSize sets the driver-side memory depth.
func (b DriverBuilder) WithMemSize(size int) DriverBuilder {
	b.memSize = size
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build(name string) Driver {
	d := &driverImpl{
		mem: sram.NewMemory(b.memSize),
	}

	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)
	d.port = npu.NewStreamPort(d, 8, 8, name+".Port")
	d.AddPort("Port", d.port)

	return d
}
