package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/njchilds90/polynom/internal/config"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	point      float64
	dir        string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "polynom [P1 P2 P3 P4 P5 P6]",
		Short: "Compose six polynomials and evaluate the result",
		Long: `polynom reads six polynomials, one "<exponent> <coefficient>" term per line,
computes ∫(P1 + P2·P3) + (P4' + P5'')·P6 and prints it with its value at a point.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 6 {
				return fmt.Errorf("expected 0 or 6 input files, got %d", len(args))
			}
			return nil
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 6 {
				a.cfg.Inputs = args
				a.cfg.Dir = ""
			}
			return a.compose(a.cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default "+config.DefaultPath+" if present)")
	flags.Float64VarP(&a.point, "point", "x", 2, "evaluation point")
	flags.StringVarP(&a.dir, "dir", "d", "", "directory holding the input files")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	showCmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print a polynomial with its derivatives and integral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.show(args[0])
		},
	}

	evalCmd := &cobra.Command{
		Use:   "eval FILE X...",
		Short: "Evaluate a polynomial at one or more points",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xs := make([]float64, 0, len(args)-1)
			for _, s := range args[1:] {
				x, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("invalid point %q: %w", s, err)
				}
				xs = append(xs, x)
			}
			return a.eval(args[0], xs)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute the composition whenever an input file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), a.cfg)
		},
	}

	rootCmd.AddCommand(showCmd, evalCmd, watchCmd)
	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("point") {
		cfg.Point = a.point
	}
	if flags.Changed("dir") {
		cfg.Dir = a.dir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	a.log.Debug("configuration loaded", "inputs", cfg.Paths(), "point", cfg.Point)
	return nil
}
