package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jcorbin/nforth"
)

func (a *app) runConsole(cmd *cobra.Command, _ []string) error {
	ctx, cancel := a.context(cmd.Context())
	defer cancel()

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		vm := a.newVM(
			nforth.WithInput(in),
			nforth.WithOutput(cmd.OutOrStdout()),
		)
		defer vm.Close()
		return a.runVM(ctx, vm)
	}

	con := &console{}
	vm := a.newVM(
		nforth.WithLines(con),
		nforth.WithOutput(cmd.OutOrStdout()),
	)
	defer vm.Close()
	con.words = func() []string {
		var names []string
		for _, w := range vm.Words() {
			if !w.Hidden {
				names = append(names, w.Name)
			}
		}
		return names
	}
	if err := con.open(a.cfg.History); err != nil {
		return err
	}
	if a.cfg.Banner {
		fmt.Fprintln(cmd.OutOrStdout(), bannerStyle.Render("nforth "+Version)+"  ctrl-d to exit")
	}
	a.log.Debug("console started", "history", a.cfg.History)
	return a.runVM(ctx, vm)
}

// console is a line source reading from the terminal with line editing,
// history, and word completion.
type console struct {
	rl    *readline.Instance
	words func() []string
}

func (con *console) open(history string) error {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:     history,
		AutoComplete:    wordCompleter{con},
		InterruptPrompt: "^C",
		EOFPrompt:       "bye",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize console: %w", err)
	}
	con.rl = rl
	return nil
}

// ReadLine returns the next line typed; an interrupt abandons the line being
// edited and returns an empty one.
func (con *console) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := con.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}
	return line, err
}

func (con *console) Close() error {
	if con.rl == nil {
		return nil
	}
	return con.rl.Close()
}

// wordCompleter completes the token under the cursor from the dictionary.
type wordCompleter struct{ con *console }

func (wc wordCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if wc.con.words == nil {
		return nil, 0
	}
	start := pos
	for start > 0 && line[start-1] != ' ' {
		start--
	}
	prefix := string(line[start:pos])
	seen := make(map[string]bool)
	var names []string
	for _, name := range wc.con.words() {
		if !seen[name] && strings.HasPrefix(name, prefix) {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		newLine = append(newLine, []rune(name[len(prefix):]+" "))
	}
	return newLine, len([]rune(prefix))
}
