package api

import (
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/hazard/core"
	"github.com/sarchlab/hazard/isa"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	table        *isa.ISA
	numRegisters int
	logger       log.FieldLogger
}

// WithISA sets the operation table used to assemble, decode and track.
func (b DriverBuilder) WithISA(table *isa.ISA) DriverBuilder {
	b.table = table
	return b
}

// WithRegisters sets the size of the tracked register file.
func (b DriverBuilder) WithRegisters(n int) DriverBuilder {
	b.numRegisters = n
	return b
}

// WithLogger sets the logger of the driver and its tracker.
func (b DriverBuilder) WithLogger(logger log.FieldLogger) DriverBuilder {
	b.logger = logger
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	if b.table == nil {
		b.table = isa.MIPS()
	}

	if b.logger == nil {
		b.logger = log.StandardLogger()
	}

	tb := core.NewBuilder().
		WithISA(b.table).
		WithLogger(b.logger)
	if b.numRegisters != 0 {
		tb = tb.WithRegisters(b.numRegisters)
	}

	return &driverImpl{
		name:    name,
		table:   b.table,
		tracker: tb.Build(name + ".Tracker"),
		logger:  b.logger,
	}
}
