package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/instr"
	"github.com/sarchlab/hazard/isa"
)

// ErrUnknownEncoding is wrapped when a machine word matches no operation.
var ErrUnknownEncoding = errors.New("unknown encoding")

// EncodingTable is an operation table that can also be searched by
// encoding.
type EncodingTable interface {
	isa.Table
	ByEncoding(opcode, funct uint8) (isa.OpInfo, bool)
}

// Decode turns a 32-bit machine word into an instruction. Raw is set to the
// disassembly.
func Decode(word uint32, table EncodingTable) (instr.Inst, error) {
	info, ok := table.ByEncoding(uint8(word>>26), uint8(word&0x3f))
	if !ok {
		return instr.Inst{}, fmt.Errorf("%w: 0x%08x", ErrUnknownEncoding, word)
	}

	inst := instr.Inst{Format: info.Format, Opcode: info.Name}

	switch info.Format {
	case instr.FormatR:
		inst.RS = int(word >> 21 & 0x1f)
		inst.RT = int(word >> 16 & 0x1f)
		inst.RD = int(word >> 11 & 0x1f)
		inst.Shamt = int(word >> 6 & 0x1f)
	case instr.FormatI:
		inst.RS = int(word >> 21 & 0x1f)
		inst.RT = int(word >> 16 & 0x1f)
		if info.Category == isa.CategoryLogic {
			inst.Imm = int32(uint16(word))
		} else {
			inst.Imm = int32(int16(uint16(word)))
		}
	case instr.FormatJ:
		inst.Target = word & 0x3ffffff
	}

	inst.Raw = Disassemble(inst, info)

	return inst, nil
}

// Encode produces the machine word of inst.
func Encode(inst instr.Inst, table isa.Table) (uint32, error) {
	info, ok := table.Lookup(inst.Opcode)
	if !ok || info.Format != inst.Format {
		return 0, fmt.Errorf("%w %q", ErrUnknownMnemonic, inst.Opcode)
	}

	for _, r := range []int{inst.RS, inst.RT, inst.RD, inst.Shamt} {
		if r < 0 || r > 31 {
			return 0, fmt.Errorf("%w: field value %d does not fit in 5 bits",
				ErrSyntax, r)
		}
	}

	word := uint32(info.Opcode) << 26

	switch info.Format {
	case instr.FormatR:
		word |= uint32(inst.RS)<<21 | uint32(inst.RT)<<16 |
			uint32(inst.RD)<<11 | uint32(inst.Shamt)<<6 | uint32(info.Funct)
	case instr.FormatI:
		word |= uint32(inst.RS)<<21 | uint32(inst.RT)<<16 | uint32(uint16(inst.Imm))
	case instr.FormatJ:
		word |= inst.Target & 0x3ffffff
	}

	return word, nil
}

// Disassemble prints inst in the operand order of its operation.
func Disassemble(inst instr.Inst, info isa.OpInfo) string {
	r := RegisterName
	name := info.Name

	switch info.Syntax {
	case isa.SyntaxRdRsRt:
		return fmt.Sprintf("%s %s, %s, %s", name, r(inst.RD), r(inst.RS), r(inst.RT))
	case isa.SyntaxRdRtShamt:
		return fmt.Sprintf("%s %s, %s, %d", name, r(inst.RD), r(inst.RT), inst.Shamt)
	case isa.SyntaxRdRtRs:
		return fmt.Sprintf("%s %s, %s, %s", name, r(inst.RD), r(inst.RT), r(inst.RS))
	case isa.SyntaxRs:
		return fmt.Sprintf("%s %s", name, r(inst.RS))
	case isa.SyntaxRdRs:
		return fmt.Sprintf("%s %s, %s", name, r(inst.RD), r(inst.RS))
	case isa.SyntaxRsRt:
		return fmt.Sprintf("%s %s, %s", name, r(inst.RS), r(inst.RT))
	case isa.SyntaxRd:
		return fmt.Sprintf("%s %s", name, r(inst.RD))
	case isa.SyntaxRtRsImm:
		return fmt.Sprintf("%s %s, %s, %d", name, r(inst.RT), r(inst.RS), inst.Imm)
	case isa.SyntaxRtImm:
		return fmt.Sprintf("%s %s, %d", name, r(inst.RT), inst.Imm)
	case isa.SyntaxRtOffsetRs:
		return fmt.Sprintf("%s %s, %d(%s)", name, r(inst.RT), inst.Imm, r(inst.RS))
	case isa.SyntaxRsRtLabel:
		if inst.Label != "" {
			return fmt.Sprintf("%s %s, %s, %s", name, r(inst.RS), r(inst.RT), inst.Label)
		}
		return fmt.Sprintf("%s %s, %s, %d", name, r(inst.RS), r(inst.RT), inst.Imm)
	case isa.SyntaxTarget:
		if inst.Label != "" {
			return fmt.Sprintf("%s %s", name, inst.Label)
		}
		return fmt.Sprintf("%s %d", name, inst.Target)
	default:
		return name
	}
}

// ParseHex reads one machine word per line, written in hexadecimal (with or
// without 0x) or as 32 binary digits. Blank lines and # comments are
// skipped.
func ParseHex(r io.Reader) ([]uint32, error) {
	var (
		words []uint32
		errs  error
	)

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(stripComment(scanner.Text()))
		if text == "" {
			continue
		}

		w, err := parseWord(text)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		words = append(words, w)
	}

	if err := scanner.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}

	return words, errs
}

func parseWord(s string) (uint32, error) {
	base := 16
	if len(s) == 32 && strings.Trim(s, "01") == "" {
		base = 2
	} else {
		s = strings.TrimPrefix(strings.ToLower(s), "0x")
	}

	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: machine word %q", ErrSyntax, s)
	}
	return uint32(n), nil
}
