// Package asm turns MIPS assembly text and machine words into decoded
// instructions, and back.
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/instr"
	"github.com/sarchlab/hazard/isa"
)

// ErrSyntax is wrapped by every assembly syntax error.
var ErrSyntax = errors.New("syntax error")

// ErrUnknownMnemonic is wrapped when the table has no such operation.
var ErrUnknownMnemonic = errors.New("unknown mnemonic")

var (
	labelRe  = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	memoryRe = regexp.MustCompile(`^([^()]*)\(\s*(\$\w+)\s*\)$`)
)

// Program is a parsed assembly source.
type Program struct {
	Insts  []instr.Inst
	Labels map[string]int // label to instruction index
}

// ParseLine parses a single instruction. Comments starting with # are
// ignored. Branch and jump targets may be labels; they are left unresolved.
func ParseLine(line string, table isa.Table) (instr.Inst, error) {
	text := strings.TrimSpace(stripComment(line))
	if text == "" {
		return instr.Inst{}, fmt.Errorf("%w: empty line", ErrSyntax)
	}

	mnemonic, rest := text, ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		mnemonic, rest = text[:i], text[i+1:]
	}
	mnemonic = strings.ToLower(mnemonic)

	var tokens []string
	if rest = strings.TrimSpace(rest); rest != "" {
		tokens = strings.Split(rest, ",")
		for i := range tokens {
			tokens[i] = strings.TrimSpace(tokens[i])
		}
	}

	info, ok := table.Lookup(mnemonic)
	if !ok {
		return instr.Inst{}, fmt.Errorf("%w %q", ErrUnknownMnemonic, mnemonic)
	}

	inst, err := parseOperands(info, tokens)
	if err != nil {
		return instr.Inst{}, fmt.Errorf("%s: %w", mnemonic, err)
	}

	inst.Format = info.Format
	inst.Opcode = info.Name
	inst.Raw = normalize(text)

	return inst, nil
}

func parseOperands(info isa.OpInfo, tokens []string) (instr.Inst, error) {
	var (
		inst instr.Inst
		err  error
	)

	want := operandCount[info.Syntax]
	if len(tokens) != want {
		return inst, fmt.Errorf("%w: want %d operands, got %d",
			ErrSyntax, want, len(tokens))
	}

	switch info.Syntax {
	case isa.SyntaxNone:
	case isa.SyntaxRdRsRt:
		err = parseRegs(tokens, &inst.RD, &inst.RS, &inst.RT)
	case isa.SyntaxRdRtShamt:
		if err = parseRegs(tokens[:2], &inst.RD, &inst.RT); err == nil {
			inst.Shamt, err = parseShamt(tokens[2])
		}
	case isa.SyntaxRdRtRs:
		err = parseRegs(tokens, &inst.RD, &inst.RT, &inst.RS)
	case isa.SyntaxRs:
		err = parseRegs(tokens, &inst.RS)
	case isa.SyntaxRdRs:
		err = parseRegs(tokens, &inst.RD, &inst.RS)
	case isa.SyntaxRsRt:
		err = parseRegs(tokens, &inst.RS, &inst.RT)
	case isa.SyntaxRd:
		err = parseRegs(tokens, &inst.RD)
	case isa.SyntaxRtRsImm:
		if err = parseRegs(tokens[:2], &inst.RT, &inst.RS); err == nil {
			inst.Imm, err = parseImm(tokens[2])
		}
	case isa.SyntaxRtImm:
		if err = parseRegs(tokens[:1], &inst.RT); err == nil {
			inst.Imm, err = parseImm(tokens[1])
		}
	case isa.SyntaxRtOffsetRs:
		if err = parseRegs(tokens[:1], &inst.RT); err == nil {
			inst.Imm, inst.RS, err = parseMemory(tokens[1])
		}
	case isa.SyntaxRsRtLabel:
		if err = parseRegs(tokens[:2], &inst.RS, &inst.RT); err == nil {
			inst.Imm, inst.Label, err = parseBranchTarget(tokens[2])
		}
	case isa.SyntaxTarget:
		inst.Target, inst.Label, err = parseJumpTarget(tokens[0])
	default:
		err = fmt.Errorf("%w: no syntax for %s", ErrSyntax, info.Name)
	}

	return inst, err
}

var operandCount = map[isa.Syntax]int{
	isa.SyntaxNone:       0,
	isa.SyntaxRdRsRt:     3,
	isa.SyntaxRdRtShamt:  3,
	isa.SyntaxRdRtRs:     3,
	isa.SyntaxRs:         1,
	isa.SyntaxRdRs:       2,
	isa.SyntaxRsRt:       2,
	isa.SyntaxRd:         1,
	isa.SyntaxRtRsImm:    3,
	isa.SyntaxRtImm:      2,
	isa.SyntaxRtOffsetRs: 2,
	isa.SyntaxRsRtLabel:  3,
	isa.SyntaxTarget:     1,
}

func parseRegs(tokens []string, dsts ...*int) error {
	for i, dst := range dsts {
		n, err := RegisterNumber(tokens[i])
		if err != nil {
			return err
		}
		*dst = n
	}
	return nil
}

func parseShamt(s string) (int, error) {
	n, err := strconv.ParseUint(s, 0, 5)
	if err != nil {
		return 0, fmt.Errorf("%w: shift amount %q", ErrSyntax, s)
	}
	return int(n), nil
}

// parseImm accepts signed and unsigned 16-bit values.
func parseImm(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil || n < -0x8000 || n > 0xffff {
		return 0, fmt.Errorf("%w: immediate %q", ErrSyntax, s)
	}
	return int32(n), nil
}

func parseMemory(s string) (int32, int, error) {
	m := memoryRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: memory operand %q", ErrSyntax, s)
	}

	var imm int32
	if off := strings.TrimSpace(m[1]); off != "" {
		var err error
		if imm, err = parseImm(off); err != nil {
			return 0, 0, err
		}
	}

	rs, err := RegisterNumber(m[2])
	if err != nil {
		return 0, 0, err
	}

	return imm, rs, nil
}

func parseBranchTarget(s string) (int32, string, error) {
	if labelRe.MatchString(s) {
		return 0, s, nil
	}

	imm, err := parseImm(s)
	return imm, "", err
}

func parseJumpTarget(s string) (uint32, string, error) {
	if labelRe.MatchString(s) {
		return 0, s, nil
	}

	n, err := strconv.ParseUint(s, 0, 26)
	if err != nil {
		return 0, "", fmt.Errorf("%w: jump target %q", ErrSyntax, s)
	}
	return uint32(n), "", nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// normalize collapses runs of blanks so the same instruction always prints
// the same way.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ParseProgram parses a whole source. Blank lines, comments and label
// definitions ("loop:") are accepted; label targets are resolved once the
// whole source is read. Errors are collected per line and returned together
// with every instruction that parsed.
func ParseProgram(r io.Reader, table isa.Table) (*Program, error) {
	prog := &Program{Labels: make(map[string]int)}

	var errs error
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(stripComment(scanner.Text()))

		for {
			name, rest, found := strings.Cut(text, ":")
			if !found || !labelRe.MatchString(strings.TrimSpace(name)) {
				break
			}
			name = strings.TrimSpace(name)
			if _, dup := prog.Labels[name]; dup {
				errs = multierr.Append(errs,
					fmt.Errorf("line %d: %w: label %q defined twice", lineNum, ErrSyntax, name))
			}
			prog.Labels[name] = len(prog.Insts)
			text = strings.TrimSpace(rest)
		}

		if text == "" || strings.HasPrefix(text, ".") {
			continue
		}

		inst, err := ParseLine(text, table)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		prog.Insts = append(prog.Insts, inst)
	}

	if err := scanner.Err(); err != nil {
		return prog, multierr.Append(errs, err)
	}

	return prog, multierr.Append(errs, prog.resolve())
}

// resolve fills branch offsets and jump targets from labels.
func (p *Program) resolve() error {
	var errs error

	for i := range p.Insts {
		inst := &p.Insts[i]
		if inst.Label == "" {
			continue
		}

		target, ok := p.Labels[inst.Label]
		if !ok {
			errs = multierr.Append(errs,
				fmt.Errorf("instruction %d: %w: undefined label %q", i, ErrSyntax, inst.Label))
			continue
		}

		switch inst.Format {
		case instr.FormatI:
			inst.Imm = int32(target - (i + 1))
		case instr.FormatJ:
			inst.Target = uint32(target)
		}
	}

	return errs
}
