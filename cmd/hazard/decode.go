package main

import (
	"bytes"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/asm"
	"github.com/sarchlab/hazard/config"
	"github.com/sarchlab/hazard/isa"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [flags] [file...]",
		Short: "Disassemble machine words.",
		Long: `Disassemble machine words, one hexadecimal or binary word per line.
	Standard input is read when no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return runDecode(cmd, cfg, inputs(args))
		},
	}
}

func runDecode(cmd *cobra.Command, cfg config.Config, files []string) error {
	ops := isa.MIPS()
	out := cmd.OutOrStdout()
	useTable := resolveFormat(cfg, out) == config.FormatTable

	var errs error
	for _, file := range files {
		data, err := readInput(cmd, file)
		if err != nil {
			return err
		}

		words, err := asm.ParseHex(bytes.NewReader(data))
		errs = multierr.Append(errs, err)

		rows := make([][2]string, 0, len(words))
		for i, w := range words {
			text := "<unknown>"
			inst, err := asm.Decode(w, ops)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: word %d: %w", file, i, err))
			} else {
				text = inst.Raw
			}
			rows = append(rows, [2]string{fmt.Sprintf("0x%08x", w), text})
		}

		if useTable {
			writeDecodeTable(cmd, file, rows)
			continue
		}

		for _, r := range rows {
			fmt.Fprintf(out, "%s  %s\n", r[0], r[1])
		}
	}

	return errs
}

func writeDecodeTable(cmd *cobra.Command, title string, rows [][2]string) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Word", "Assembly"})
	for i, r := range rows {
		t.AppendRow(table.Row{i, r[0], r[1]})
	}
	t.Render()
}
