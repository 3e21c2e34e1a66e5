package core_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hazard/core"
	"github.com/sarchlab/hazard/instr"
)

var _ = Describe("Builder", func() {
	It("should default to 32 registers and the MIPS table", func() {
		t := core.NewBuilder().Build("T")

		Expect(t.Name()).To(Equal("T"))
		Expect(t.NumRegisters()).To(Equal(core.DefaultNumRegisters))
		Expect(t.Record(instr.NewR("add", 3, 1, 2))).To(Succeed())
	})

	It("should honor the register count", func() {
		t := core.NewBuilder().WithRegisters(8).Build("T")

		Expect(t.NumRegisters()).To(Equal(8))
		Expect(t.Record(instr.NewR("add", 8, 1, 2))).
			To(MatchError(core.ErrInvalidRegister))
	})

	It("should panic on an empty register file", func() {
		Expect(func() { core.NewBuilder().WithRegisters(0) }).To(Panic())
	})
})

var _ = Describe("PrintState", func() {
	It("should list accessed registers", func() {
		t := core.NewBuilder().Build("T")
		Expect(t.Record(instr.NewR("add", 3, 1, 2))).To(Succeed())

		var buf bytes.Buffer
		core.PrintState(&buf, t.State(), false)

		out := buf.String()
		Expect(out).To(ContainSubstring("$3"))
		Expect(out).To(ContainSubstring("write"))
		Expect(out).To(ContainSubstring("read"))
		Expect(out).NotTo(ContainSubstring("$4 "))
	})
})

var _ = Describe("Dependence", func() {
	It("should print kind, register and the instruction pair", func() {
		d := core.Dependence{Kind: core.WAR, Reg: 7, Producer: 2, Consumer: 5}
		Expect(d.String()).To(Equal("WAR $7 (2, 5)"))
		Expect(core.DepKind(7).String()).To(Equal("DepKind(7)"))
	})
})
