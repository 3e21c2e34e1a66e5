// Package report formats the instruction and dependence logs of a tracker.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/core"
	"github.com/sarchlab/hazard/instr"
)

// Source is anything that exposes an instruction log and a dependence log.
type Source interface {
	Instructions() []instr.Inst
	Dependences() []core.Dependence
}

// Report is a snapshot of a tracking session.
type Report struct {
	Name         string
	Instructions []instr.Inst
	Dependences  []core.Dependence
	Diagnostics  []error
	Counts       map[core.DepKind]int
}

// GenerateReport snapshots src. diagnostics may be nil or an error built
// with multierr; each wrapped error becomes one diagnostic line.
func GenerateReport(name string, src Source, diagnostics error) *Report {
	r := &Report{
		Name:         name,
		Instructions: src.Instructions(),
		Dependences:  src.Dependences(),
		Diagnostics:  multierr.Errors(diagnostics),
		Counts:       make(map[core.DepKind]int),
	}

	for _, d := range r.Dependences {
		r.Counts[d.Kind]++
	}

	return r
}

// WriteText writes the canonical report: the numbered instructions, then
// one line per dependence.
func (r *Report) WriteText(w io.Writer) {
	fmt.Fprintln(w, "INSTRUCTIONS:")
	for i, inst := range r.Instructions {
		fmt.Fprintf(w, "%d: %s\n", i, inst.Assembly())
	}

	fmt.Fprintln(w, "DEPENDENCES: \nType Register (FirstInstr#, SecondInstr#) ")
	for _, d := range r.Dependences {
		fmt.Fprintf(w, "%s \t$%d \t(%d, %d)\n", d.Kind, d.Reg, d.Producer, d.Consumer)
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w, "DIAGNOSTICS:")
		for _, err := range r.Diagnostics {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}
}

// WriteTable renders the report as tables.
func (r *Report) WriteTable(w io.Writer) {
	instTable := table.NewWriter()
	instTable.SetOutputMirror(w)
	instTable.SetStyle(table.StyleLight)
	instTable.SetTitle(r.title("Instructions"))
	instTable.AppendHeader(table.Row{"#", "Format", "Assembly"})
	for i, inst := range r.Instructions {
		instTable.AppendRow(table.Row{i, inst.Format, inst.Assembly()})
	}
	instTable.Render()

	fmt.Fprintln(w)

	depTable := table.NewWriter()
	depTable.SetOutputMirror(w)
	depTable.SetStyle(table.StyleLight)
	depTable.SetTitle(r.title("Dependences"))
	depTable.AppendHeader(table.Row{"Type", "Register", "First", "Second", "First Instr", "Second Instr"})
	for _, d := range r.Dependences {
		depTable.AppendRow(table.Row{
			d.Kind, fmt.Sprintf("$%d", d.Reg),
			d.Producer, d.Consumer,
			r.assembly(d.Producer), r.assembly(d.Consumer),
		})
	}
	depTable.AppendFooter(table.Row{"", "", "", "", "", r.Summary()})
	depTable.Render()

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "⚠ %d diagnostics:\n", len(r.Diagnostics))
		for _, err := range r.Diagnostics {
			fmt.Fprintf(w, "  - %v\n", err)
		}
	}
}

// Summary returns the dependence counts per kind.
func (r *Report) Summary() string {
	return fmt.Sprintf("RAW %d  WAW %d  WAR %d",
		r.Counts[core.RAW], r.Counts[core.WAW], r.Counts[core.WAR])
}

func (r *Report) title(section string) string {
	if r.Name == "" {
		return section
	}
	return r.Name + " " + strings.ToLower(section)
}

func (r *Report) assembly(i int) string {
	if i < 0 || i >= len(r.Instructions) {
		return "?"
	}
	return r.Instructions[i].Assembly()
}

// SaveReportToFile writes the text report to filename.
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteText(file)
	return nil
}
