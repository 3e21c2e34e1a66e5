package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/sarchlab/hazard/api"
	"github.com/sarchlab/hazard/asm"
	"github.com/sarchlab/hazard/config"
	"github.com/sarchlab/hazard/core"
	"github.com/sarchlab/hazard/instr"
	"github.com/sarchlab/hazard/report"
)

var errDiagnostics = errors.New("diagnostics reported")

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check [flags] [file...]",
		Short: "Report the dependences of assembly or machine code.",
		Long: `Report the dependences of assembly or machine code.
	Files ending in .hex hold one machine word per line, any other file is
	read as assembly. Standard input is read when no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return runCheck(cmd, cfg, inputs(args))
		},
	}

	checkCmd.Flags().Bool("strict", false, "fail when any diagnostic is reported")

	return checkCmd
}

func runCheck(cmd *cobra.Command, cfg config.Config, files []string) error {
	logger := newLogger(cmd, cfg)
	out := cmd.OutOrStdout()
	format := resolveFormat(cfg, out)

	var failed bool
	for _, file := range files {
		r, err := checkFile(cmd, cfg, logger, file)
		if r == nil {
			return err
		}

		if format == config.FormatTable {
			r.WriteTable(out)
		} else {
			r.WriteText(out)
		}

		if len(r.Diagnostics) > 0 {
			failed = true
		}
	}

	if failed && cfg.Strict {
		return errDiagnostics
	}

	return nil
}

// checkFile feeds one file through a fresh driver. A nil report means the
// file could not be read at all.
func checkFile(
	cmd *cobra.Command,
	cfg config.Config,
	logger *log.Logger,
	file string,
) (*report.Report, error) {
	data, err := readInput(cmd, file)
	if err != nil {
		return nil, err
	}

	name := file
	if file == "-" {
		name = "stdin"
	}

	driver := api.DriverBuilder{}.
		WithRegisters(cfg.Registers).
		WithLogger(logger).
		Build(name)

	if cfg.Verbose {
		driver.Tracker().AcceptHook(&traceHook{logger: logger.WithField("file", name)})
	}

	var diags error
	if strings.EqualFold(filepath.Ext(file), ".hex") {
		words, err := asm.ParseHex(bytes.NewReader(data))
		diags = multierr.Append(diags, err)
		diags = multierr.Append(diags, driver.MapBinary(words))
	} else {
		diags = multierr.Append(diags, driver.MapProgram(bytes.NewReader(data)))
	}

	diags = multierr.Append(diags, driver.Run())

	return report.GenerateReport(name, driver.Tracker(), diags), nil
}

// traceHook logs what the tracker records.
type traceHook struct {
	logger log.FieldLogger
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case core.HookPosInstRecorded:
		inst := ctx.Item.(instr.Inst)
		h.logger.Debugf("inst %d: %s", ctx.Detail.(int), inst.Assembly())
	case core.HookPosDependence:
		dep := ctx.Item.(core.Dependence)
		inst := ctx.Detail.(instr.Inst)
		h.logger.WithField("inst", inst.Assembly()).Info(dep.String())
	}
}
