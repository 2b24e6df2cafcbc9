package nforth

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrYield is returned by Run when a program executes yield; calling Run
	// again resumes where it left off.
	ErrYield = errors.New("yield")

	// ErrDivisionByZero halts the VM.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrHeapExhausted halts the VM when compiling past the heap capacity.
	ErrHeapExhausted = errors.New("heap exhausted")

	// The remaining errors abort the current input line only.
	ErrNoName       = errors.New("missing name")
	ErrNoDefinition = errors.New("no definition")

	// ErrDoesWithoutCreate is raised by does> when the latest word was not made
	// by create. A does> compiled into a definition is also rejected unless a
	// reference to create precedes it in that definition's thread.
	ErrDoesWithoutCreate = errors.New("does> without create")

	ErrCompileOnly = errors.New("compile only word")
	ErrUnbalanced  = errors.New("unbalanced control structure")
	ErrNoLoop      = errors.New("not inside a loop")
	ErrBadBase     = errors.New("invalid number base")
)

// UnknownTokenError is the error for a token that names no word and is not a
// numeral in the current base.
type UnknownTokenError string

func (tok UnknownTokenError) Error() string { return fmt.Sprintf("unknown word %q", string(tok)) }

type addrError int
type codeError int

func (addr addrError) Error() string { return fmt.Sprintf("invalid address %v", int(addr)) }
func (code codeError) Error() string { return fmt.Sprintf("invalid execution token %v", int(code)) }

type heapError struct {
	addr int
	err  error
}

func (he heapError) Error() string {
	return fmt.Sprintf("%v @%v: %v", ErrHeapExhausted, he.addr, he.err)
}
func (he heapError) Unwrap() error { return ErrHeapExhausted }

//// Halting and aborting

// haltError carries the reason the VM stopped running; it is panicked by halt
// and recovered by Run.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

// abortError abandons the rest of the current input line; it is panicked by
// abort and recovered by the exec loop.
type abortError struct{ error }

func (err abortError) Unwrap() error { return err.error }

func (vm *VM) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if vm.out != nil {
			if ferr := vm.out.Flush(); err == nil {
				err = ferr
			}
		}
	}()

	if err == nil || errors.Is(err, io.EOF) {
		vm.logf("#", "halt")
	} else {
		vm.logf("#", "halt error: %v", err)
	}
	panic(haltError{err})
}

func (vm *VM) abort(err error) { panic(abortError{err}) }

func (vm *VM) abortif(err error) {
	if err != nil {
		vm.abort(err)
	}
}

// catchAbort runs f, returning the error of any abort raised inside it; all
// other panics pass through.
func catchAbort(f func()) (err error) {
	defer func() {
		if e := recover(); e != nil {
			ae, ok := e.(abortError)
			if !ok {
				panic(e)
			}
			err = ae.error
		}
	}()
	f()
	return nil
}

//// Output

func (vm *VM) write(s string) {
	if _, err := io.WriteString(vm.out, s); err != nil {
		vm.halt(err)
	}
}

func (vm *VM) writeByte(b byte) {
	if _, err := vm.out.Write([]byte{b}); err != nil {
		vm.halt(err)
	}
}

func (vm *VM) flush() {
	if err := vm.out.Flush(); err != nil {
		vm.halt(err)
	}
}

//// Logging

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	if logfn == nil {
		return func() {}
	}
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
