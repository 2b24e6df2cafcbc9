package nforth

import (
	"io"

	"github.com/jcorbin/nforth/internal/flushio"
	"github.com/jcorbin/nforth/internal/lineio"
)

// VMOption customizes a VM under construction.
type VMOption interface{ apply(vm *VM) }

var defaults = []VMOption{
	withOutput(io.Discard),
}

func (vm *VM) apply(opts ...VMOption) {
	for _, opt := range defaults {
		if opt != nil {
			opt.apply(vm)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

// WithInput reads input lines from r; the VM closes r on Close if it is an
// io.Closer.
func WithInput(r io.Reader) VMOption { return withLines{lineio.NewReader(r)} }

// WithLines reads input lines from a LineSource.
func WithLines(src LineSource) VMOption { return withLines{src} }

// WithOutput directs output to w, which is flushed after every numeral and
// before every input line.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies output to w as well.
func WithTee(w io.Writer) VMOption { return teeOption{w} }

// WithStackSize sets the data stack capacity in cells.
func WithStackSize(n int) VMOption { return stackSizeOption(n) }

// WithRStackSize sets the return stack capacity in cells.
func WithRStackSize(n int) VMOption { return rstackSizeOption(n) }

// WithHeapSize sets the heap capacity in cells, including the reserved cells
// at its bottom.
func WithHeapSize(n int) VMOption { return heapSizeOption(n) }

// WithSourceID sets the source id reported for lines from sources that do
// not identify themselves.
func WithSourceID(id int) VMOption { return sourceIDOption(id) }

// WithLogf enables trace logging of every step and definition.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type withLines struct{ LineSource }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type stackSizeOption int
type rstackSizeOption int
type heapSizeOption int
type sourceIDOption int

func withOutput(w io.Writer) outputOption { return outputOption{w} }

func (src withLines) apply(vm *VM) {
	vm.lines = src.LineSource
	if cl, ok := src.LineSource.(closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (n stackSizeOption) apply(vm *VM)  { vm.stack.Limit = int(n) }
func (n rstackSizeOption) apply(vm *VM) { vm.rstack.Limit = int(n) }
func (n sourceIDOption) apply(vm *VM)   { vm.defSrcID = int(n) }

func (n heapSizeOption) apply(vm *VM) {
	if n < heapBase+1 {
		n = heapBase + 1
	}
	vm.heap.Limit = uint(n)
}
