// Package instr defines decoded MIPS instructions as consumed by the
// dependence tracker.
package instr

import "fmt"

// Format is the encoding category of an instruction.
type Format int

const (
	FormatR Format = iota // register-register
	FormatI               // register-immediate
	FormatJ               // jump
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatJ:
		return "J"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Inst is a decoded instruction. Which of RS, RT and RD are meaningful
// depends on the operation, not on their values; ask the operation table.
type Inst struct {
	Format Format
	Opcode string // operation name, e.g. "add"

	RS    int
	RT    int
	RD    int
	Shamt int

	Imm    int32  // sign-extended immediate (FormatI)
	Target uint32 // jump target, word index (FormatJ)
	Label  string // symbolic branch or jump target, if any

	// The raw text of the instruction.
	Raw string
}

// NewR creates a register-form instruction.
func NewR(op string, rd, rs, rt int) Inst {
	return Inst{Format: FormatR, Opcode: op, RS: rs, RT: rt, RD: rd}
}

// NewI creates an immediate-form instruction.
func NewI(op string, rt, rs int, imm int32) Inst {
	return Inst{Format: FormatI, Opcode: op, RS: rs, RT: rt, Imm: imm}
}

// NewJ creates a jump-form instruction.
func NewJ(op string, target uint32) Inst {
	return Inst{Format: FormatJ, Opcode: op, Target: target}
}

// WithRaw returns a copy of the instruction carrying the given source text.
func (i Inst) WithRaw(raw string) Inst {
	i.Raw = raw
	return i
}

// Assembly returns the source text, or a generic rendering when the
// instruction was built without one.
func (i Inst) Assembly() string {
	if i.Raw != "" {
		return i.Raw
	}

	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%s rd=$%d rs=$%d rt=$%d", i.Opcode, i.RD, i.RS, i.RT)
	case FormatI:
		return fmt.Sprintf("%s rt=$%d rs=$%d imm=%d", i.Opcode, i.RT, i.RS, i.Imm)
	case FormatJ:
		if i.Label != "" {
			return fmt.Sprintf("%s %s", i.Opcode, i.Label)
		}
		return fmt.Sprintf("%s %d", i.Opcode, i.Target)
	default:
		return i.Opcode
	}
}

func (i Inst) String() string {
	return fmt.Sprintf("Inst{%s %s}", i.Format, i.Assembly())
}
