package nforth

import (
	"context"

	"github.com/jcorbin/nforth/internal/flushio"
	"github.com/jcorbin/nforth/internal/mem"
)

//// Environment

// VM is one interpreter instance. The machine has three chunks of memory: the
// data stack, the return stack, and the heap. Only the heap is addressable by
// programs; the stacks are reached through primitives alone.
//
// Every piece of interpreter state lives here, so a host may create as many
// independent instances as it likes. A VM is not safe for concurrent use.
type VM struct {
	logging

	lines    LineSource
	out      flushio.WriteFlusher
	closers  []closer
	ctx      context.Context
	sourceID int
	defSrcID int

	// The data stack carries operands between words; the return stack carries
	// call return addresses and loop-control triples.
	stack  mem.Stack
	rstack mem.Stack

	// The heap is a contiguous, append-only run of cells holding compiled
	// threads, data fields, and the reserved system cells below bootAddr+2.
	heap mem.Cells
	here int

	// The dictionary is an ordered list of words; a word's index is its
	// execution token. Builtins come first, user words are appended.
	dict   []word
	latest int

	ip        int  // instruction pointer into the heap
	compiling bool // compile mode

	// ctl holds compile-time control-flow marks while compiling, kept apart
	// from the data stack.
	ctl []mark

	// loops records the return stack depth of each live loop-control triple,
	// innermost last.
	loops []int

	// Input line state for the outer interpreter.
	line     string
	in       int
	lineRead bool

	yielded bool
}

type closer interface{ Close() error }

// Reserved heap cells.
const (
	bootAddr = 0 // boot thread: a lone reference to quit
	baseAddr = 1 // number base cell
	heapBase = 2 // initial value of here
)

// Default capacities, in cells.
const (
	DefaultStackSize  = 1024 * 1024 / 8
	DefaultRStackSize = 1024 * 1024 / 8
	DefaultHeapSize   = 10 * 1024 * 1024 / 8
)

func (vm *VM) init() {
	if vm.stack.Limit == 0 {
		vm.stack.Limit = DefaultStackSize
	}
	if vm.rstack.Limit == 0 {
		vm.rstack.Limit = DefaultRStackSize
	}
	if vm.heap.Limit == 0 {
		vm.heap.Limit = DefaultHeapSize
	}
	vm.stack.Name = "data stack"
	vm.rstack.Name = "return stack"

	vm.here = heapBase
	vm.latest = -1
	vm.dict = vm.dict[:0]
	for _, b := range builtins {
		vm.dict = append(vm.dict, word{
			name:  b.name,
			code:  b.code,
			flags: b.flags,
		})
	}
	vm.stor(bootAddr, int(codeQuit))
	vm.stor(baseAddr, 10)
	vm.ip = bootAddr
}

//// Data stack

func (vm *VM) push(val int) { vm.abortif(vm.stack.Push(val)) }

func (vm *VM) pop() int {
	val, err := vm.stack.Pop()
	vm.abortif(err)
	return val
}

//// Return stack

func (vm *VM) pushr(val int) { vm.abortif(vm.rstack.Push(val)) }

func (vm *VM) popr() int {
	val, err := vm.rstack.Pop()
	vm.abortif(err)
	vm.trimLoops()
	return val
}

// trimLoops forgets any loop frames whose triple no longer lies wholly on the
// return stack, e.g. after an exit out of a loop body that skipped unloop.
func (vm *VM) trimLoops() {
	depth := vm.rstack.Len()
	for i := len(vm.loops) - 1; i >= 0 && vm.loops[i]+3 > depth; i-- {
		vm.loops = vm.loops[:i]
	}
}

//// Heap

// load reads a cell; addresses outside the heap abort the current line.
func (vm *VM) load(addr int) int {
	if addr < 0 {
		vm.abort(addrError(addr))
	}
	val, err := vm.heap.Load(uint(addr))
	if err != nil {
		vm.abort(addrError(addr))
	}
	return val
}

// stor writes a cell; addresses outside the heap abort the current line.
func (vm *VM) stor(addr, val int) {
	if addr < 0 {
		vm.abort(addrError(addr))
	}
	if err := vm.heap.Stor(uint(addr), val); err != nil {
		vm.abort(addrError(addr))
	}
}

// compile appends a cell to the heap, returning the address written. Running
// out of heap halts the VM.
func (vm *VM) compile(val int) int {
	addr := vm.here
	if err := vm.heap.Stor(uint(addr), val); err != nil {
		vm.halt(heapError{addr, err})
	}
	vm.here++
	return addr
}

// fetch reads the cell at the instruction pointer and advances past it.
func (vm *VM) fetch() int {
	val := vm.load(vm.ip)
	vm.ip++
	return val
}

func (vm *VM) base() int {
	base := vm.load(baseAddr)
	if base < 2 || base > 36 {
		vm.abort(ErrBadBase)
	}
	return base
}
