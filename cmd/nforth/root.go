package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jcorbin/nforth"
	"github.com/jcorbin/nforth/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// app carries settings shared by every command.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	var a app
	rootCmd := &cobra.Command{
		Use:   "nforth",
		Short: "nforth - a small extensible Forth",
		Long: `nforth reads Forth source a line at a time, printing "ok" after each.

Run without arguments it reads standard input, with line editing and
history when that is a terminal.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.load(cmd)
		},
		RunE:          a.runConsole,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	flags.Int("stack-size", nforth.DefaultStackSize, "data stack capacity in cells")
	flags.Int("rstack-size", nforth.DefaultRStackSize, "return stack capacity in cells")
	flags.Int("heap-size", nforth.DefaultHeapSize, "heap capacity in cells")
	flags.Duration("timeout", 0, "stop running after this long (0 for no limit)")
	flags.Bool("trace", false, "log every step of the inner interpreter")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("history", "", "console history file")
	flags.Bool("banner", true, "print a banner on interactive start")

	rootCmd.AddCommand(newRunCmd(&a))
	rootCmd.AddCommand(newWordsCmd(&a))
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cmd.ErrOrStderr(), cfg)
	if cfg.File != "" {
		a.log.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, _ := cfg.Level()
	if cfg.Trace {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})).With("session", uuid.NewString())
}

// newVM builds a VM from the loaded settings plus opts.
func (a *app) newVM(opts ...nforth.VMOption) *nforth.VM {
	all := a.cfg.VMOptions()
	if a.cfg.Trace {
		log := a.log.With("vm", uuid.NewString())
		all = append(all, nforth.WithLogf(func(mess string, args ...interface{}) {
			log.Debug(fmt.Sprintf(mess, args...))
		}))
	}
	return nforth.New(append(all, opts...)...)
}

// context applies the configured timeout.
func (a *app) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// runVM runs vm to completion, resuming it whenever the program yields.
func (a *app) runVM(ctx context.Context, vm *nforth.VM) error {
	for {
		err := vm.Run(ctx)
		if !errors.Is(err, nforth.ErrYield) {
			if err != nil {
				return fmt.Errorf("vm halted: %w", err)
			}
			return nil
		}
		a.log.Debug("vm yielded", "stack", vm.Stack())
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error:")+" "+err.Error())
}
