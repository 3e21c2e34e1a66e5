package isa

import "github.com/sarchlab/hazard/instr"

func rOp(name string, funct uint8, fields Field, cat Category, syn Syntax) OpInfo {
	return OpInfo{
		Name:     name,
		Format:   instr.FormatR,
		Fields:   fields,
		Category: cat,
		Syntax:   syn,
		Funct:    funct,
	}
}

func iOp(name string, opcode uint8, cat Category, syn Syntax) OpInfo {
	return OpInfo{
		Name:     name,
		Format:   instr.FormatI,
		Fields:   FieldRS | FieldRT,
		Category: cat,
		Syntax:   syn,
		Opcode:   opcode,
	}
}

func jOp(name string, opcode uint8) OpInfo {
	return OpInfo{
		Name:     name,
		Format:   instr.FormatJ,
		Fields:   FieldNone,
		Category: CategoryJump,
		Syntax:   SyntaxTarget,
		Opcode:   opcode,
	}
}

const all = FieldRS | FieldRT | FieldRD

var mipsOps = []OpInfo{
	rOp("sll", 0x00, FieldRT|FieldRD, CategoryShift, SyntaxRdRtShamt),
	rOp("srl", 0x02, FieldRT|FieldRD, CategoryShift, SyntaxRdRtShamt),
	rOp("sra", 0x03, FieldRT|FieldRD, CategoryShift, SyntaxRdRtShamt),
	rOp("sllv", 0x04, all, CategoryShift, SyntaxRdRtRs),
	rOp("srlv", 0x06, all, CategoryShift, SyntaxRdRtRs),
	rOp("srav", 0x07, all, CategoryShift, SyntaxRdRtRs),
	rOp("jr", 0x08, FieldRS, CategoryJump, SyntaxRs),
	rOp("jalr", 0x09, FieldRS|FieldRD, CategoryJump, SyntaxRdRs),
	rOp("syscall", 0x0c, FieldNone, CategorySystem, SyntaxNone),
	rOp("mfhi", 0x10, FieldRD, CategoryMove, SyntaxRd),
	rOp("mthi", 0x11, FieldRS, CategoryMove, SyntaxRs),
	rOp("mflo", 0x12, FieldRD, CategoryMove, SyntaxRd),
	rOp("mtlo", 0x13, FieldRS, CategoryMove, SyntaxRs),
	rOp("mult", 0x18, FieldRS|FieldRT, CategoryMulDiv, SyntaxRsRt),
	rOp("multu", 0x19, FieldRS|FieldRT, CategoryMulDiv, SyntaxRsRt),
	rOp("div", 0x1a, FieldRS|FieldRT, CategoryMulDiv, SyntaxRsRt),
	rOp("divu", 0x1b, FieldRS|FieldRT, CategoryMulDiv, SyntaxRsRt),
	rOp("add", 0x20, all, CategoryArith, SyntaxRdRsRt),
	rOp("addu", 0x21, all, CategoryArith, SyntaxRdRsRt),
	rOp("sub", 0x22, all, CategoryArith, SyntaxRdRsRt),
	rOp("subu", 0x23, all, CategoryArith, SyntaxRdRsRt),
	rOp("and", 0x24, all, CategoryLogic, SyntaxRdRsRt),
	rOp("or", 0x25, all, CategoryLogic, SyntaxRdRsRt),
	rOp("xor", 0x26, all, CategoryLogic, SyntaxRdRsRt),
	rOp("nor", 0x27, all, CategoryLogic, SyntaxRdRsRt),
	rOp("slt", 0x2a, all, CategoryCompare, SyntaxRdRsRt),
	rOp("sltu", 0x2b, all, CategoryCompare, SyntaxRdRsRt),

	jOp("j", 0x02),
	jOp("jal", 0x03),

	iOp("beq", 0x04, CategoryBranch, SyntaxRsRtLabel),
	iOp("bne", 0x05, CategoryBranch, SyntaxRsRtLabel),
	iOp("addi", 0x08, CategoryArith, SyntaxRtRsImm),
	iOp("addiu", 0x09, CategoryArith, SyntaxRtRsImm),
	iOp("slti", 0x0a, CategoryCompare, SyntaxRtRsImm),
	iOp("sltiu", 0x0b, CategoryCompare, SyntaxRtRsImm),
	iOp("andi", 0x0c, CategoryLogic, SyntaxRtRsImm),
	iOp("ori", 0x0d, CategoryLogic, SyntaxRtRsImm),
	iOp("xori", 0x0e, CategoryLogic, SyntaxRtRsImm),
	iOp("lui", 0x0f, CategoryLogic, SyntaxRtImm),
	iOp("lb", 0x20, CategoryLoad, SyntaxRtOffsetRs),
	iOp("lh", 0x21, CategoryLoad, SyntaxRtOffsetRs),
	iOp("lw", 0x23, CategoryLoad, SyntaxRtOffsetRs),
	iOp("lbu", 0x24, CategoryLoad, SyntaxRtOffsetRs),
	iOp("lhu", 0x25, CategoryLoad, SyntaxRtOffsetRs),
	iOp("sb", 0x28, CategoryStore, SyntaxRtOffsetRs),
	iOp("sh", 0x29, CategoryStore, SyntaxRtOffsetRs),
	iOp("sw", 0x2b, CategoryStore, SyntaxRtOffsetRs),
}

// MIPS returns a fresh table holding the MIPS-I integer subset.
func MIPS() *ISA {
	isa := NewISA("MIPS-I")
	for _, op := range mipsOps {
		isa.Register(op)
	}
	return isa
}
