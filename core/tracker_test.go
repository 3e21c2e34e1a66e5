package core_test

import (
	"errors"
	"math/rand"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/core"
	"github.com/sarchlab/hazard/instr"
	"github.com/sarchlab/hazard/isa"
)

func dep(kind core.DepKind, reg, producer, consumer int) core.Dependence {
	return core.Dependence{Kind: kind, Reg: reg, Producer: producer, Consumer: consumer}
}

var _ = Describe("Tracker", func() {
	var (
		logger  *log.Logger
		logHook *logtest.Hook
		tracker *core.Tracker
	)

	record := func(insts ...instr.Inst) {
		for _, i := range insts {
			Expect(tracker.Record(i)).To(Succeed())
		}
	}

	BeforeEach(func() {
		logger, logHook = logtest.NewNullLogger()
		logger.SetLevel(log.DebugLevel)

		tracker = core.NewBuilder().
			WithISA(isa.MIPS()).
			WithLogger(logger).
			Build("Tracker")
	})

	Context("single dependences", func() {
		It("should detect RAW", func() {
			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 4, 3, 0),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.RAW, 3, 0, 1),
			}))
		})

		It("should detect WAW", func() {
			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 3, 4, 5),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.WAW, 3, 0, 1),
			}))
		})

		It("should detect WAR", func() {
			record(
				instr.NewR("add", 5, 3, 4),
				instr.NewR("add", 3, 1, 2),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.WAR, 3, 0, 1),
			}))
		})

		It("should log dependences at debug level", func() {
			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 4, 3, 0),
			)

			entry := logHook.LastEntry()
			Expect(entry).NotTo(BeNil())
			Expect(entry.Level).To(Equal(log.DebugLevel))
			Expect(entry.Data).To(HaveKeyWithValue("kind", "RAW"))
			Expect(entry.Data).To(HaveKeyWithValue("reg", 3))
		})
	})

	Context("an instruction that reads and writes the same register", func() {
		It("should not depend on itself", func() {
			record(instr.NewR("add", 3, 3, 4))

			Expect(tracker.Dependences()).To(BeEmpty())

			inst, kind, err := tracker.State().LastAccess(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst).To(Equal(0))
			Expect(kind).To(Equal(core.AccessWrite))
		})

		It("should compare both the read and the write with the old state", func() {
			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 3, 3, 4),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.RAW, 3, 0, 1),
				dep(core.WAW, 3, 0, 1),
			}))
		})

		It("should report a register read twice only once", func() {
			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 5, 3, 3),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.RAW, 3, 0, 1),
			}))
		})
	})

	It("should order RAWs by operand before the write dependence", func() {
		record(
			instr.NewR("add", 1, 0, 0),
			instr.NewR("add", 2, 0, 0),
			instr.NewR("add", 7, 9, 9),
			instr.NewR("add", 9, 2, 1),
		)

		Expect(tracker.Dependences()).To(Equal([]core.Dependence{
			dep(core.RAW, 2, 1, 3),
			dep(core.RAW, 1, 0, 3),
			dep(core.WAR, 9, 2, 3),
		}))
	})

	It("should link readers only to the most recent writer", func() {
		record(
			instr.NewI("addi", 3, 0, 1),
			instr.NewI("addi", 3, 0, 2),
			instr.NewI("addi", 3, 0, 3),
			instr.NewR("add", 4, 3, 3),
		)

		Expect(tracker.Dependences()).To(Equal([]core.Dependence{
			dep(core.WAW, 3, 0, 1),
			dep(core.WAW, 3, 1, 2),
			dep(core.RAW, 3, 2, 3),
		}))
	})

	It("should keep reporting WAR against the latest reader", func() {
		record(
			instr.NewR("add", 5, 3, 0),
			instr.NewR("add", 6, 3, 0),
			instr.NewI("addi", 3, 0, 1),
		)

		Expect(tracker.Dependences()).To(Equal([]core.Dependence{
			dep(core.WAR, 3, 1, 2),
		}))
	})

	Context("field presence", func() {
		It("should ignore rs for shifts by a constant", func() {
			sll := instr.NewR("sll", 3, 7, 4)
			sll.Shamt = 2

			record(
				instr.NewR("add", 7, 1, 2),
				sll,
			)

			Expect(tracker.Dependences()).To(BeEmpty())
		})

		It("should ignore unused fields of mfhi and jr", func() {
			record(
				instr.NewR("add", 1, 2, 3),
				instr.NewR("mfhi", 4, 1, 1),
				instr.NewR("jr", 1, 31, 0),
			)

			Expect(tracker.Dependences()).To(BeEmpty())
		})

		It("should treat the rt of a branch as a read", func() {
			record(
				instr.NewI("addi", 3, 0, 1),
				instr.NewI("beq", 3, 4, 8),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.RAW, 3, 0, 1),
			}))
		})

		It("should treat the rt of a store as a read", func() {
			record(
				instr.NewI("lw", 3, 29, 0),
				instr.NewI("sw", 3, 29, 4),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.RAW, 3, 0, 1),
			}))
		})

		It("should treat the rt of an immediate op as a write whatever the immediate", func() {
			record(
				instr.NewR("add", 5, 3, 0),
				instr.NewI("addi", 3, 1, -1),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.WAR, 3, 0, 1),
			}))
		})
	})

	It("should never involve jump-form instructions", func() {
		record(
			instr.NewR("add", 3, 1, 2),
			instr.NewJ("j", 3),
			instr.NewJ("jal", 3),
			instr.NewR("add", 4, 3, 0),
		)

		Expect(tracker.Dependences()).To(Equal([]core.Dependence{
			dep(core.RAW, 3, 0, 3),
		}))
		for _, d := range tracker.Dependences() {
			Expect(d.Producer).NotTo(BeElementOf(1, 2))
			Expect(d.Consumer).NotTo(BeElementOf(1, 2))
		}
	})

	It("should return the same logs on repeated queries", func() {
		record(
			instr.NewR("add", 3, 1, 2),
			instr.NewR("sub", 1, 3, 3),
		)

		deps := tracker.Dependences()
		insts := tracker.Instructions()

		Expect(tracker.Dependences()).To(Equal(deps))
		Expect(tracker.Instructions()).To(Equal(insts))
		Expect(insts).To(HaveLen(2))

		deps[0].Reg = 99
		Expect(tracker.Dependences()[0].Reg).To(Equal(3))
	})

	Context("invalid input", func() {
		It("should skip out-of-range registers and keep going", func() {
			err := tracker.Record(instr.NewR("add", 40, 1, 2))

			Expect(err).To(MatchError(core.ErrInvalidRegister))
			var regErr *core.InvalidRegisterError
			Expect(errors.As(err, &regErr)).To(BeTrue())
			Expect(regErr.Reg).To(Equal(40))
			Expect(regErr.Inst).To(Equal(0))
			Expect(tracker.Len()).To(Equal(1))
			Expect(tracker.State().Count()).To(Equal(32))
			Expect(logHook.LastEntry().Level).To(Equal(log.WarnLevel))

			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 4, 3, 0),
			)
			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.RAW, 3, 1, 2),
			}))
		})

		It("should report every bad register of one instruction", func() {
			err := tracker.Record(instr.NewR("add", 33, 34, -1))

			Expect(multierr.Errors(err)).To(HaveLen(3))
			Expect(tracker.Dependences()).To(BeEmpty())
		})

		It("should report unknown opcodes", func() {
			err := tracker.Record(instr.NewR("madd", 3, 1, 2))
			Expect(err).To(MatchError(core.ErrUnknownOpcode))

			err = tracker.Record(instr.NewI("add", 3, 1, 0))
			Expect(err).To(MatchError(core.ErrUnknownOpcode))

			Expect(tracker.Len()).To(Equal(2))
			Expect(tracker.Dependences()).To(BeEmpty())
		})

		It("should refuse to run uninitialized", func() {
			var zero core.Tracker

			Expect(zero.Record(instr.NewR("add", 3, 1, 2))).
				To(MatchError(core.ErrUninitialized))
			Expect(zero.Len()).To(Equal(0))
		})
	})

	It("should emit at most one RAW per read and one of WAW or WAR per write", func() {
		rng := rand.New(rand.NewSource(42))
		ops := []string{"add", "sub", "and", "or", "slt"}

		for i := 0; i < 500; i++ {
			inst := instr.NewR(ops[rng.Intn(len(ops))],
				rng.Intn(8), rng.Intn(8), rng.Intn(8))
			Expect(tracker.Record(inst)).To(Succeed())
		}

		type key struct{ consumer, reg int }
		raws := map[key]int{}
		writes := map[key]int{}
		for _, d := range tracker.Dependences() {
			Expect(d.Producer).To(BeNumerically("<", d.Consumer))
			k := key{d.Consumer, d.Reg}
			if d.Kind == core.RAW {
				raws[k]++
			} else {
				writes[k]++
			}
		}

		for _, n := range raws {
			Expect(n).To(Equal(1))
		}
		for _, n := range writes {
			Expect(n).To(Equal(1))
		}
	})

	Context("with a mocked operation table", func() {
		var (
			mockCtrl  *gomock.Controller
			mockTable *MockTable
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			mockTable = NewMockTable(mockCtrl)
			tracker = core.NewBuilder().
				WithISA(mockTable).
				WithLogger(logger).
				Build("Tracker")
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should take field presence from the table", func() {
			mockTable.EXPECT().
				Lookup("movz").
				Return(isa.OpInfo{
					Name:   "movz",
					Format: instr.FormatR,
					Fields: isa.FieldRT | isa.FieldRD,
				}, true).
				Times(2)

			record(
				instr.NewR("movz", 3, 1, 2),
				instr.NewR("movz", 1, 3, 5),
			)

			Expect(tracker.Dependences()).To(BeEmpty())
		})

		It("should take the rt role from the category", func() {
			mockTable.EXPECT().
				Lookup("bgtzl").
				Return(isa.OpInfo{
					Name:     "bgtzl",
					Format:   instr.FormatI,
					Category: isa.CategoryBranch,
				}, true)
			mockTable.EXPECT().
				Lookup("addi").
				Return(isa.OpInfo{
					Name:     "addi",
					Format:   instr.FormatI,
					Category: isa.CategoryArith,
				}, true)

			record(
				instr.NewI("bgtzl", 3, 4, 0),
				instr.NewI("addi", 3, 4, 0),
			)

			Expect(tracker.Dependences()).To(Equal([]core.Dependence{
				dep(core.WAR, 3, 0, 1),
			}))
		})

		It("should not consult the table for jumps", func() {
			record(instr.NewJ("j", 0), instr.NewJ("whatever", 1))
			Expect(tracker.Len()).To(Equal(2))
		})
	})

	Context("hooks", func() {
		var (
			mockCtrl *gomock.Controller
			hook     *MockHook
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			hook = NewMockHook(mockCtrl)
			tracker.AcceptHook(hook)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should invoke hooks for every instruction and dependence", func() {
			var ctxs []sim.HookCtx
			hook.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx sim.HookCtx) { ctxs = append(ctxs, ctx) }).
				Times(3)

			record(
				instr.NewR("add", 3, 1, 2),
				instr.NewR("add", 4, 3, 0),
			)

			Expect(ctxs[0].Pos).To(Equal(core.HookPosInstRecorded))
			Expect(ctxs[0].Detail).To(Equal(0))
			Expect(ctxs[1].Pos).To(Equal(core.HookPosInstRecorded))
			Expect(ctxs[2].Pos).To(Equal(core.HookPosDependence))
			Expect(ctxs[2].Item).To(Equal(dep(core.RAW, 3, 0, 1)))
			Expect(ctxs[2].Domain).To(BeIdenticalTo(tracker))
		})
	})
})
