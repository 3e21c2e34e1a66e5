package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/hazard/instr"
)

// ErrUninitialized is returned by any operation on a register state or
// tracker that was never initialized.
var ErrUninitialized = errors.New("register state not initialized")

// ErrInvalidRegister is wrapped by InvalidRegisterError.
var ErrInvalidRegister = errors.New("invalid register index")

// InvalidRegisterError reports a register index outside [0, Count).
type InvalidRegisterError struct {
	Reg   int
	Count int
	Inst  int // index of the offending instruction, -1 if unknown
}

func (e *InvalidRegisterError) Error() string {
	if e.Inst < 0 {
		return fmt.Sprintf("register $%d out of range [0, %d)", e.Reg, e.Count)
	}
	return fmt.Sprintf("instruction %d: register $%d out of range [0, %d)",
		e.Inst, e.Reg, e.Count)
}

func (e *InvalidRegisterError) Unwrap() error {
	return ErrInvalidRegister
}

// ErrUnknownOpcode is wrapped by UnknownOpcodeError.
var ErrUnknownOpcode = errors.New("unknown opcode")

// UnknownOpcodeError reports an operation the table does not describe.
type UnknownOpcodeError struct {
	Opcode string
	Format instr.Format
	Inst   int
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("instruction %d: unknown %s-form opcode %q",
		e.Inst, e.Format, e.Opcode)
}

func (e *UnknownOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}
