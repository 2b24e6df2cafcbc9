package nforth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/nforth/internal/panicerr"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	for _, vmt := range vmts {
		t.Run(vmt.name, vmt.run)
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

type vmTestCase struct {
	name    string
	opts    []VMOption
	ops     []func(vm *VM)
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration
	wantErr error
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	vmt.opts = append(vmt.opts, opts...)
	return vmt
}

func (vmt vmTestCase) withStack(values ...int) vmTestCase {
	vmt.opts = append(vmt.opts, optFunc(func(vm *VM) {
		for _, val := range values {
			vm.stack.Push(val)
		}
	}))
	return vmt
}

func (vmt vmTestCase) withInput(lines ...string) vmTestCase {
	vmt.opts = append(vmt.opts, WithInput(strings.NewReader(strings.Join(lines, "\n"))))
	return vmt
}

// do runs ops directly against the VM rather than running the outer
// interpreter; an abort raised by an op ends the test with its error.
func (vmt vmTestCase) do(ops ...func(vm *VM)) vmTestCase {
	vmt.ops = append(vmt.ops, ops...)
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectStack(values ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int{}
		}
		assert.Equal(t, values, vm.Stack(), "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectRStack(values ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int{}
		}
		assert.Equal(t, values, append([]int{}, vm.rstack.Values()...), "expected return stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectMemAt(addr int, values ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		buf := make([]int, len(values))
		vm.heap.LoadInto(uint(addr), buf)
		assert.Equal(t, values, buf, "expected memory values @%v", addr)
	})
	return vmt
}

func (vmt vmTestCase) expectHere(here int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, here, vm.here, "expected here")
	})
	return vmt
}

func (vmt vmTestCase) expectCompiling(compiling bool) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, compiling, vm.Compiling(), "expected compile mode")
	})
	return vmt
}

// expectWord checks that name resolves, and to a word with the given body.
func (vmt vmTestCase) expectWord(name string, code ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		xt, found, _ := vm.find(name)
		if !assert.True(t, found, "expected word %q to be defined", name) {
			return
		}
		w := vm.dict[xt]
		buf := make([]int, len(code))
		vm.heap.LoadInto(uint(w.body), buf)
		assert.Equal(t, code, buf, "expected %q @%v code", name, w.body)
	})
	return vmt
}

func (vmt vmTestCase) expectNoWord(name string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		_, found, _ := vm.find(name)
		assert.False(t, found, "expected word %q to not be found", name)
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectOutputContains(sub string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithTee(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Contains(t, out.String(), sub, "expected output to contain")
	})
	return vmt
}

// then runs more checks; they may run the VM further.
func (vmt vmTestCase) then(f func(t *testing.T, vm *VM)) vmTestCase {
	vmt.expect = append(vmt.expect, f)
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	var trace strings.Builder
	vm := vmt.buildVM(WithLogf(func(mess string, args ...interface{}) {
		fmt.Fprintf(&trace, mess+"\n", args...)
	}))
	defer vm.Close()
	defer func() {
		if t.Failed() {
			t.Logf("trace:\n%v", trace.String())
			var dump strings.Builder
			vmDumper{vm: vm, out: &dump, rawWords: true}.dump()
			t.Logf("%v", dump.String())
		}
	}()

	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := vmt.runVM(ctx, vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM) error {
	if len(vmt.ops) == 0 {
		return vm.Run(ctx)
	}
	vm.ctx = ctx
	return panicerr.Recover("vmTestCase.ops", func() error {
		for _, op := range vmt.ops {
			if err := catchAbort(func() { op(vm) }); err != nil {
				return err
			}
		}
		return nil
	})
}

func (vmt vmTestCase) buildVM(opts ...VMOption) *VM {
	var vm VM
	vm.apply(append(vmt.opts[:len(vmt.opts):len(vmt.opts)], opts...)...)
	vm.init()
	return &vm
}

//// op helpers

// exec dispatches the named words in turn.
func exec(names ...string) func(vm *VM) {
	return func(vm *VM) {
		for _, name := range names {
			xt, found, _ := vm.find(name)
			if !found {
				vm.abort(UnknownTokenError(name))
			}
			vm.dispatch(xt)
		}
	}
}

// thread compiles a thread of words and literal numbers, then runs it until
// it returns.
func thread(tokens ...string) func(vm *VM) {
	return func(vm *VM) {
		start := vm.here
		for _, tok := range tokens {
			if xt, found, _ := vm.find(tok); found {
				vm.compile(xt)
			} else if n, ok := parseCell(tok, 10); ok {
				vm.compile(int(codeLit))
				vm.compile(n)
			} else {
				vm.abort(UnknownTokenError(tok))
			}
		}
		vm.compile(int(codeExit))
		runThread(vm, start)
	}
}

// cells compiles the cells built for the current heap cursor, then runs them
// as a thread until it returns.
func cells(build func(at int) []int) func(vm *VM) {
	return func(vm *VM) {
		start := vm.here
		for _, val := range build(start) {
			vm.compile(val)
		}
		runThread(vm, start)
	}
}

func runThread(vm *VM, start int) {
	depth := vm.rstack.Len()
	vm.pushr(bootAddr)
	vm.ip = start
	for vm.rstack.Len() > depth {
		vm.step()
	}
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
