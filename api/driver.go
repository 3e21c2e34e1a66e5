// Package api defines the driver API that feeds instruction streams into a
// dependence tracker.
package api

import (
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/asm"
	"github.com/sarchlab/hazard/core"
	"github.com/sarchlab/hazard/instr"
	"github.com/sarchlab/hazard/isa"
)

// Driver provides the interface to feed a tracker.
type Driver interface {
	// FeedIn queues instructions. Instructions of one call keep their order
	// and are never interleaved with those of another call. FeedIn may be
	// called from several goroutines.
	FeedIn(insts ...instr.Inst)

	// MapProgram assembles the source read from r and queues every
	// instruction that assembled.
	MapProgram(r io.Reader) error

	// MapBinary decodes machine words and queues every instruction that
	// decoded.
	MapBinary(words []uint32) error

	// Run records all queued instructions in the order they were queued and
	// returns the diagnostics the tracker reported.
	Run() error

	// Tracker returns the tracker the driver feeds.
	Tracker() *core.Tracker
}

type driverImpl struct {
	name    string
	table   *isa.ISA
	tracker *core.Tracker
	logger  log.FieldLogger

	lock        sync.Mutex
	feedInTasks []*feedInTask
}

type feedInTask struct {
	insts []instr.Inst
	round int
}

func (t *feedInTask) isFinished() bool {
	return t.round >= len(t.insts)
}

func (d *driverImpl) Tracker() *core.Tracker {
	return d.tracker
}

func (d *driverImpl) FeedIn(insts ...instr.Inst) {
	if len(insts) == 0 {
		return
	}

	task := &feedInTask{
		insts: append([]instr.Inst(nil), insts...),
	}

	d.lock.Lock()
	d.feedInTasks = append(d.feedInTasks, task)
	d.lock.Unlock()
}

// MapProgram queues an assembly program.
func (d *driverImpl) MapProgram(r io.Reader) error {
	prog, err := asm.ParseProgram(r, d.table)
	if prog != nil {
		d.FeedIn(prog.Insts...)
	}

	if err != nil {
		return fmt.Errorf("failed to map program: %w", err)
	}

	return nil
}

// MapBinary queues machine code.
func (d *driverImpl) MapBinary(words []uint32) error {
	var errs error

	insts := make([]instr.Inst, 0, len(words))
	for i, w := range words {
		inst, err := asm.Decode(w, d.table)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("word %d (0x%08x): %w", i, w, err))
			continue
		}
		insts = append(insts, inst)
	}

	d.FeedIn(insts...)

	if errs != nil {
		return fmt.Errorf("failed to map binary: %w", errs)
	}

	return nil
}

// Run drains the queue into the tracker. Tasks queued while Run is working
// are drained too.
func (d *driverImpl) Run() error {
	var errs error

	for {
		task := d.nextFeedInTask()
		if task == nil {
			break
		}

		errs = multierr.Append(errs, d.doOneFeedInTask(task))
	}

	d.logger.WithFields(log.Fields{
		"driver":       d.name,
		"instructions": d.tracker.Len(),
		"dependences":  len(d.tracker.Dependences()),
	}).Debug("run finished")

	return errs
}

func (d *driverImpl) nextFeedInTask() *feedInTask {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.removeFinishedFeedInTasks()

	if len(d.feedInTasks) == 0 {
		return nil
	}

	return d.feedInTasks[0]
}

func (d *driverImpl) removeFinishedFeedInTasks() {
	for i := len(d.feedInTasks) - 1; i >= 0; i-- {
		if d.feedInTasks[i].isFinished() {
			d.feedInTasks = append(
				d.feedInTasks[:i], d.feedInTasks[i+1:]...)
		}
	}
}

func (d *driverImpl) doOneFeedInTask(task *feedInTask) error {
	var errs error

	for !task.isFinished() {
		err := d.tracker.Record(task.insts[task.round])
		errs = multierr.Append(errs, err)
		task.round++
	}

	return errs
}
