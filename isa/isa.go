// Package isa describes operations: which register fields each one uses, its
// semantic category and its encoding.
package isa

import (
	"fmt"
	"sort"

	"github.com/sarchlab/hazard/instr"
)

// Field is a set of register fields an operation uses.
type Field uint8

const (
	FieldRS Field = 1 << iota
	FieldRT
	FieldRD

	FieldNone Field = 0
)

// Has reports whether all fields in o are present in f.
func (f Field) Has(o Field) bool {
	return f&o == o
}

func (f Field) String() string {
	s := ""
	for _, p := range []struct {
		f    Field
		name string
	}{{FieldRS, "rs"}, {FieldRT, "rt"}, {FieldRD, "rd"}} {
		if f.Has(p.f) {
			if s != "" {
				s += "|"
			}
			s += p.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Category is the semantic class of an operation.
type Category int

const (
	CategoryArith Category = iota
	CategoryLogic
	CategoryShift
	CategoryCompare
	CategoryMulDiv
	CategoryMove
	CategoryLoad
	CategoryStore
	CategoryBranch
	CategoryJump
	CategorySystem
)

var categoryNames = map[Category]string{
	CategoryArith:   "arith",
	CategoryLogic:   "logic",
	CategoryShift:   "shift",
	CategoryCompare: "compare",
	CategoryMulDiv:  "muldiv",
	CategoryMove:    "move",
	CategoryLoad:    "load",
	CategoryStore:   "store",
	CategoryBranch:  "branch",
	CategoryJump:    "jump",
	CategorySystem:  "system",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// WritesRT reports whether an immediate-form operation of this category
// writes its rt field. Branches compare rs with rt and stores read rt as the
// value to store; neither has a destination register.
func (c Category) WritesRT() bool {
	return c != CategoryBranch && c != CategoryStore
}

// Syntax is the assembly operand layout of an operation.
type Syntax int

const (
	SyntaxNone       Syntax = iota // syscall
	SyntaxRdRsRt                   // add $rd, $rs, $rt
	SyntaxRdRtShamt                // sll $rd, $rt, shamt
	SyntaxRdRtRs                   // sllv $rd, $rt, $rs
	SyntaxRs                       // jr $rs
	SyntaxRdRs                     // jalr $rd, $rs
	SyntaxRsRt                     // mult $rs, $rt
	SyntaxRd                       // mfhi $rd
	SyntaxRtRsImm                  // addi $rt, $rs, imm
	SyntaxRtImm                    // lui $rt, imm
	SyntaxRtOffsetRs               // lw $rt, imm($rs)
	SyntaxRsRtLabel                // beq $rs, $rt, label
	SyntaxTarget                   // j target
)

// OpInfo describes one operation.
type OpInfo struct {
	Name     string
	Format   instr.Format
	Fields   Field
	Category Category
	Syntax   Syntax

	Opcode uint8 // primary opcode, bits 31..26
	Funct  uint8 // function code, bits 5..0, FormatR only
}

// Table answers operation lookups by name.
type Table interface {
	Lookup(name string) (OpInfo, bool)
}

// ISA is a struct that represents an Instruction Set Architecture.
type ISA struct {
	name       string
	byName     map[string]OpInfo
	byEncoding map[uint16]string
}

// NewISA creates an empty ISA.
func NewISA(name string) *ISA {
	return &ISA{
		name:       name,
		byName:     make(map[string]OpInfo),
		byEncoding: make(map[uint16]string),
	}
}

// Name returns the name of the ISA.
func (isa *ISA) Name() string {
	return isa.name
}

// Register adds an operation. Registering a name or an encoding twice
// panics.
func (isa *ISA) Register(info OpInfo) {
	if _, ok := isa.byName[info.Name]; ok {
		panic(fmt.Sprintf("operation %s registered twice", info.Name))
	}

	key := encodingKey(info.Format, info.Opcode, info.Funct)
	if prev, ok := isa.byEncoding[key]; ok {
		panic(fmt.Sprintf("operation %s reuses the encoding of %s",
			info.Name, prev))
	}

	isa.byName[info.Name] = info
	isa.byEncoding[key] = info.Name
}

// Lookup returns the operation with the given name.
func (isa *ISA) Lookup(name string) (OpInfo, bool) {
	info, ok := isa.byName[name]
	return info, ok
}

// ByEncoding returns the operation with the given primary opcode and, for
// register-form operations (opcode 0), function code.
func (isa *ISA) ByEncoding(opcode, funct uint8) (OpInfo, bool) {
	format := instr.FormatI
	if opcode == 0 {
		format = instr.FormatR
	}

	name, ok := isa.byEncoding[encodingKey(format, opcode, funct)]
	if !ok {
		return OpInfo{}, false
	}

	return isa.byName[name], true
}

// Names lists the registered operations in alphabetical order.
func (isa *ISA) Names() []string {
	names := make([]string, 0, len(isa.byName))
	for n := range isa.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func encodingKey(format instr.Format, opcode, funct uint8) uint16 {
	if format != instr.FormatR {
		funct = 0
	}
	return uint16(opcode)<<8 | uint16(funct)
}
