package core

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintState renders the register state as a table. Registers that were
// never accessed are skipped unless all is set.
func PrintState(w io.Writer, s *RegisterState, all bool) {
	regTable := table.NewWriter()
	regTable.SetOutputMirror(w)
	regTable.SetTitle(fmt.Sprintf("Registers (%d)", s.Count()))
	regTable.AppendHeader(table.Row{"Reg", "Last Inst", "Access"})

	for r := 0; r < s.Count(); r++ {
		inst, kind, _ := s.LastAccess(r)
		if kind == AccessNone {
			if !all {
				continue
			}
			regTable.AppendRow(table.Row{fmt.Sprintf("$%d", r), "-", kind})
			continue
		}

		regTable.AppendRow(table.Row{fmt.Sprintf("$%d", r), inst, kind})
	}

	regTable.Render()
}
