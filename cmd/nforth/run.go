package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/nforth"
	"github.com/jcorbin/nforth/internal/lineio"
)

// feedBuffer bounds how many lines the reader may get ahead of the VM.
const feedBuffer = 64

// firstFileSourceID is the source id of the first script file; the console
// and standard input are 0.
const firstFileSourceID = 1

func newRunCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Run script files in one VM",
		Long: `Run interprets each file in turn, as if its lines were typed into one
session. Definitions made by earlier files are visible to later ones.

With --watch it keeps running, starting over in a fresh VM whenever one of
the files changes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()
			out := cmd.OutOrStdout()
			_, err := a.runFiles(ctx, out, args)
			if !watch {
				return err
			}
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
			}
			return a.watch(ctx, cmd.ErrOrStderr(), out, args)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rerun when a file changes")
	return cmd
}

// runFiles runs the files through a fresh VM. One goroutine reads lines and
// posts them to the VM, which runs in another, as a message channel host
// would.
func (a *app) runFiles(ctx context.Context, out io.Writer, paths []string) (*nforth.VM, error) {
	ch := lineio.NewChan(feedBuffer)
	vm := a.newVM(nforth.WithLines(ch), nforth.WithOutput(out))
	defer vm.Close()

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer ch.Close()
		return a.feed(egctx, ch, paths)
	})
	eg.Go(func() error {
		return a.runVM(egctx, vm)
	})
	return vm, eg.Wait()
}

// feed sends every line of the files to ch, tagged with the file's source id.
func (a *app) feed(ctx context.Context, ch *lineio.Chan, paths []string) error {
	q := lineio.NewQueue()
	q.FirstSourceID = firstFileSourceID
	defer q.Close()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		q.Push(f)
	}
	for {
		line, err := q.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		a.log.Debug("feed", "at", q.Location().String(), "source", q.SourceID())
		if err := ch.Send(ctx, lineio.Line{Text: line, SourceID: q.SourceID()}); err != nil {
			return err
		}
	}
}

// watch reruns the files whenever one of them is written, until ctx is done.
func (a *app) watch(ctx context.Context, errOut, out io.Writer, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// watch directories, since editors often replace files rather than write them
	want := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		want[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			dirs[dir] = true
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %v: %w", dir, err)
			}
		}
	}

	rerun := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !want[filepath.Clean(event.Name)] {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			a.log.Info("file changed, rerunning", "files", paths)
			if _, err := a.runFiles(ctx, out, paths); err != nil {
				printError(errOut, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Error("watcher error", "error", err)
		}
	}
}
