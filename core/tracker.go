// Package core tracks register accesses of an in-order instruction stream
// and classifies RAW, WAW and WAR data dependences as instructions arrive.
package core

import (
	"slices"

	"github.com/sarchlab/akita/v4/sim"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/instr"
	"github.com/sarchlab/hazard/isa"
)

// DefaultNumRegisters is the size of the MIPS integer register file.
const DefaultNumRegisters = 32

// HookPosInstRecorded marks when an instruction is appended to the log. The
// hook item is the instruction, the detail is its index.
var HookPosInstRecorded = &sim.HookPos{Name: "Inst Recorded"}

// HookPosDependence marks when a dependence is discovered. The hook item is
// the Dependence, the detail is the consumer instruction.
var HookPosDependence = &sim.HookPos{Name: "Dependence Found"}

// Tracker owns the instruction log, the dependence log and the register
// state. It is not safe for concurrent use; callers that ingest from several
// producers must serialize calls to Record.
type Tracker struct {
	sim.HookableBase

	name   string
	table  isa.Table
	regs   *RegisterState
	logger log.FieldLogger

	insts []instr.Inst
	deps  []Dependence
}

// NewTracker creates a tracker over numRegisters registers. A nil table
// selects the default MIPS table.
func NewTracker(numRegisters int, table isa.Table) (*Tracker, error) {
	regs, err := NewRegisterState(numRegisters)
	if err != nil {
		return nil, err
	}

	if table == nil {
		table = isa.MIPS()
	}

	return &Tracker{
		name:   "Tracker",
		table:  table,
		regs:   regs,
		logger: log.StandardLogger(),
	}, nil
}

// Name returns the name of the tracker.
func (t *Tracker) Name() string {
	return t.name
}

// NumRegisters returns the size of the tracked register file.
func (t *Tracker) NumRegisters() int {
	return t.regs.Count()
}

// Len returns the number of recorded instructions.
func (t *Tracker) Len() int {
	return len(t.insts)
}

// State exposes the register state for inspection.
func (t *Tracker) State() *RegisterState {
	return t.regs
}

// Record appends inst to the log and records every dependence it creates
// against earlier instructions.
//
// Register accesses outside the register file and operations missing from
// the table are skipped and reported in the returned error; the instruction
// is still logged. ErrUninitialized is returned, with nothing logged, when
// the tracker was not built through NewTracker or a Builder.
func (t *Tracker) Record(inst instr.Inst) error {
	if !t.regs.Initialized() || t.table == nil {
		return ErrUninitialized
	}

	idx := len(t.insts)

	reads, writes, err := t.operands(inst, idx)
	reads = t.keepValid(reads, idx, &err)
	writes = t.keepValid(writes, idx, &err)

	var found []Dependence

	// Every check sees the state from before this instruction.
	for _, r := range reads {
		prev, kind, _ := t.regs.LastAccess(r)
		if kind == AccessWrite {
			found = append(found, Dependence{Kind: RAW, Reg: r, Producer: prev, Consumer: idx})
		}
	}

	for _, w := range writes {
		prev, kind, _ := t.regs.LastAccess(w)
		switch kind {
		case AccessWrite:
			found = append(found, Dependence{Kind: WAW, Reg: w, Producer: prev, Consumer: idx})
		case AccessRead:
			found = append(found, Dependence{Kind: WAR, Reg: w, Producer: prev, Consumer: idx})
		}
	}

	for _, r := range reads {
		_ = t.regs.RecordAccess(r, idx, AccessRead)
	}

	for _, w := range writes {
		_ = t.regs.RecordAccess(w, idx, AccessWrite)
	}

	t.insts = append(t.insts, inst)
	t.deps = append(t.deps, found...)

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Pos:    HookPosInstRecorded,
		Item:   inst,
		Detail: idx,
	})

	for _, d := range found {
		t.logger.WithFields(log.Fields{
			"tracker":  t.name,
			"kind":     d.Kind.String(),
			"reg":      d.Reg,
			"producer": d.Producer,
			"consumer": d.Consumer,
		}).Debug("dependence")

		t.InvokeHook(sim.HookCtx{
			Domain: t,
			Pos:    HookPosDependence,
			Item:   d,
			Detail: inst,
		})
	}

	return err
}

// operands splits the registers inst touches into reads and writes, using
// the operation table for field presence and category.
func (t *Tracker) operands(inst instr.Inst, idx int) (reads, writes []int, err error) {
	if inst.Format == instr.FormatJ {
		return nil, nil, nil
	}

	info, ok := t.table.Lookup(inst.Opcode)
	if !ok || info.Format != inst.Format {
		err = &UnknownOpcodeError{Opcode: inst.Opcode, Format: inst.Format, Inst: idx}
		t.logger.WithFields(log.Fields{
			"tracker": t.name,
			"inst":    idx,
			"opcode":  inst.Opcode,
		}).Warn("unknown opcode, register accesses skipped")
		return nil, nil, err
	}

	switch inst.Format {
	case instr.FormatR:
		if info.Fields.Has(isa.FieldRS) {
			reads = appendUnique(reads, inst.RS)
		}
		if info.Fields.Has(isa.FieldRT) {
			reads = appendUnique(reads, inst.RT)
		}
		if info.Fields.Has(isa.FieldRD) {
			writes = append(writes, inst.RD)
		}
	case instr.FormatI:
		reads = append(reads, inst.RS)
		if info.Category.WritesRT() {
			writes = append(writes, inst.RT)
		} else {
			reads = appendUnique(reads, inst.RT)
		}
	}

	return reads, writes, nil
}

func (t *Tracker) keepValid(regs []int, idx int, err *error) []int {
	kept := regs[:0]

	for _, r := range regs {
		if t.regs.Valid(r) {
			kept = append(kept, r)
			continue
		}

		*err = multierr.Append(*err, &InvalidRegisterError{
			Reg:   r,
			Count: t.regs.Count(),
			Inst:  idx,
		})
		t.logger.WithFields(log.Fields{
			"tracker": t.name,
			"inst":    idx,
			"reg":     r,
		}).Warn("register out of range, access skipped")
	}

	return kept
}

func appendUnique(regs []int, r int) []int {
	if slices.Contains(regs, r) {
		return regs
	}
	return append(regs, r)
}

// Dependences returns the dependences found so far, in discovery order.
func (t *Tracker) Dependences() []Dependence {
	return slices.Clone(t.deps)
}

// Instructions returns the recorded instructions, in insertion order.
func (t *Tracker) Instructions() []instr.Inst {
	return slices.Clone(t.insts)
}
