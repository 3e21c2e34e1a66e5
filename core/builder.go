package core

import (
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/hazard/isa"
)

// Builder can create new trackers.
type Builder struct {
	numRegisters int
	table        isa.Table
	logger       log.FieldLogger
}

// NewBuilder returns a builder for a 32-register tracker over the MIPS
// table.
func NewBuilder() Builder {
	return Builder{
		numRegisters: DefaultNumRegisters,
	}
}

// WithRegisters sets the size of the register file.
func (b Builder) WithRegisters(n int) Builder {
	if n <= 0 {
		panic("Need at least 1 register")
	}
	b.numRegisters = n
	return b
}

// WithISA sets the operation table.
func (b Builder) WithISA(table isa.Table) Builder {
	b.table = table
	return b
}

// WithLogger sets the logger diagnostics go to.
func (b Builder) WithLogger(logger log.FieldLogger) Builder {
	b.logger = logger
	return b
}

// Build creates a tracker.
func (b Builder) Build(name string) *Tracker {
	n := b.numRegisters
	if n == 0 {
		n = DefaultNumRegisters
	}

	t, err := NewTracker(n, b.table)
	if err != nil {
		panic(err)
	}

	t.name = name
	if b.logger != nil {
		t.logger = b.logger
	}

	return t
}
