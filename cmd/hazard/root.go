package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sarchlab/hazard/config"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "hazard",
		Short:        "Report data dependences between MIPS instructions.",
		Long:         "Report RAW, WAW and WAR dependences between the instructions of MIPS assembly or machine code.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "read settings from a YAML file")
	rootCmd.PersistentFlags().Int("registers", 0, "size of the register file (default 32)")
	rootCmd.PersistentFlags().String("format", "", "report format, text or table (default table on terminals)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every recorded instruction and dependence")

	rootCmd.AddCommand(newCheckCmd(), newDecodeCmd())

	return rootCmd
}

// loadConfig layers the settings: defaults, then the config file, then the
// environment, then the flags given on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}

	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}

	cfg = cfg.FromEnv()

	flags := cmd.Flags()
	if flags.Changed("registers") {
		cfg.Registers, _ = flags.GetInt("registers")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Lookup("strict") != nil && flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// resolveFormat picks the table format for terminals when none is set.
func resolveFormat(cfg config.Config, w io.Writer) string {
	if cfg.Format != "" {
		return cfg.Format
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return config.FormatTable
	}

	return config.FormatText
}

func newLogger(cmd *cobra.Command, cfg config.Config) *log.Logger {
	logger := log.New()
	logger.SetOutput(cmd.ErrOrStderr())

	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return data, nil
}

func inputs(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}

	return args
}
