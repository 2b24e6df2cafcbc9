package nforth

import (
	"context"
	"errors"
	"io"

	"github.com/jcorbin/nforth/internal/panicerr"
)

// LineSource supplies input lines to the outer interpreter, without their
// line terminators. It returns io.EOF once input is exhausted, which ends Run
// without error.
//
// A LineSource may also implement SourceID() int, to tell the source-id word
// where the most recent line came from.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// New creates a VM ready to run the outer interpreter.
func New(opts ...VMOption) *VM {
	var vm VM
	vm.apply(opts...)
	vm.init()
	return &vm
}

// Run interprets input until it is exhausted, the program yields, or the VM
// halts. Running out of input returns nil. A yield returns ErrYield, after
// which calling Run again resumes the program. Any other error is fatal.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
	var halt haltError
	if errors.As(err, &halt) {
		err = halt.error
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Close closes any inputs that the VM opened or was given to own.
func (vm *VM) Close() (err error) {
	for i := len(vm.closers) - 1; i >= 0; i-- {
		if cerr := vm.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	vm.closers = nil
	return err
}

// Stack returns a copy of the data stack, bottom first.
func (vm *VM) Stack() []int {
	return append([]int{}, vm.stack.Values()...)
}

// Compiling reports whether the VM is in compile mode.
func (vm *VM) Compiling() bool { return vm.compiling }

// SetSourceID sets the source id reported for lines from sources that do not
// identify themselves.
func (vm *VM) SetSourceID(id int) { vm.defSrcID = id }

// WordInfo describes a dictionary entry.
type WordInfo struct {
	Name      string
	XT        int
	Kind      string
	Immediate bool
	Builtin   bool
	Hidden    bool
}

// Words lists the dictionary in lookup order: user words newest first, then
// builtins. Shadowed words are included.
func (vm *VM) Words() []WordInfo {
	infos := make([]WordInfo, 0, len(vm.dict))
	add := func(xt int) {
		w := vm.dict[xt]
		info := WordInfo{
			Name:      w.name,
			XT:        xt,
			Kind:      wordKind(w),
			Immediate: w.immediate(),
			Builtin:   w.flags&flagLinked == 0,
			Hidden:    w.flags&flagSmudge != 0,
		}
		infos = append(infos, info)
	}
	for xt := len(vm.dict) - 1; xt >= len(builtins); xt-- {
		add(xt)
	}
	for xt := 0; xt < len(builtins) && xt < len(vm.dict); xt++ {
		add(xt)
	}
	return infos
}

func wordKind(w word) string {
	switch w.code {
	case codeEnter:
		return "colon"
	case codeEnterCreate:
		return "create"
	case codeEnterDoes:
		return "does"
	case codeEnterConstant:
		return "constant"
	}
	return "builtin"
}

// Dump writes a human readable description of the VM state: registers,
// stacks, and dictionary with decoded threads.
func (vm *VM) Dump(w io.Writer) error {
	return vmDumper{vm: vm, out: w}.dump()
}
