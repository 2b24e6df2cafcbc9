package nforth

import "fmt"

//// Compiler

// mark is a compile-time control-flow record: the kind of construct that
// opened it and the heap address it refers to, either a forward branch cell
// awaiting its target, or a backward branch target.
type mark struct {
	kind markKind
	addr int
}

type markKind uint8

const (
	markIf    markKind = iota + 1 // forward: (0branch) or (jump) target cell
	markBegin                     // backward: loop start
	markWhile                     // forward: (0branch) target cell
	markDo                        // forward: (do) exit cell; backward: body at addr+1
)

func (k markKind) String() string {
	switch k {
	case markIf:
		return "if"
	case markBegin:
		return "begin"
	case markWhile:
		return "while"
	case markDo:
		return "do"
	}
	return fmt.Sprintf("mark#%d", uint8(k))
}

func (vm *VM) pushMark(kind markKind, addr int) {
	vm.ctl = append(vm.ctl, mark{kind, addr})
}

func (vm *VM) popMark(kind markKind) mark {
	i := len(vm.ctl) - 1
	if i < 0 {
		vm.abort(fmt.Errorf("%w: missing %v", ErrUnbalanced, kind))
	}
	m := vm.ctl[i]
	if m.kind != kind {
		vm.abort(fmt.Errorf("%w: expected %v, have %v", ErrUnbalanced, kind, m.kind))
	}
	vm.ctl = vm.ctl[:i]
	return m
}

// forward compiles a branch whose target is not yet known, returning the
// address of its target cell for later patching.
func (vm *VM) forward(c code) int {
	vm.compile(int(c))
	return vm.compile(0)
}

// compileWord runs the compiler and defining builtins.
func (vm *VM) compileWord(c code) {
	switch c {

	// defining words
	case codeColon:
		vm.define(vm.scanName(), codeEnter, flagSmudge)
		vm.compiling = true
	case codeSemicolon:
		if len(vm.ctl) > 0 {
			vm.abort(fmt.Errorf("%w: open %v", ErrUnbalanced, vm.ctl[len(vm.ctl)-1].kind))
		}
		vm.compile(int(codeExit))
		vm.compiling = false
		if vm.latest >= 0 {
			vm.dict[vm.latest].flags &^= flagSmudge
		}
	case codeImmediate:
		vm.latestWord().flags |= flagImmediate
	case codeLBracket:
		vm.compiling = false
	case codeRBracket:
		vm.compiling = true
	case codeCreate:
		vm.define(vm.scanName(), codeEnterCreate, 0)
	case codeVariable:
		vm.define(vm.scanName(), codeEnterCreate, 0)
		vm.compile(0)
	case codeConstant:
		name := vm.scanName()
		val := vm.pop()
		vm.define(name, codeEnterConstant, 0)
		vm.compile(val)
	case codeDoesDef:
		if vm.compiling {
			if w := vm.latestWord(); w.code == codeEnter && !vm.threadRefers(w.body, vm.here, codeCreate) {
				vm.abort(ErrDoesWithoutCreate)
			}
			// (lit) <thread> (does) exit <thread...>
			vm.compile(int(codeLit))
			vm.compile(vm.here + 3)
			vm.compile(int(codeDoes))
			vm.compile(int(codeExit))
		} else {
			vm.attachDoes(vm.here)
			vm.compiling = true
		}
	case codeDoes:
		vm.attachDoes(vm.pop())
	case codeLiteral:
		vm.compile(int(codeLit))
		vm.compile(vm.pop())

	// control flow
	case codeIf:
		vm.compileOnly(c)
		vm.pushMark(markIf, vm.forward(codeZBranch))
	case codeElse:
		vm.compileOnly(c)
		at := vm.forward(codeJump)
		vm.stor(vm.popMark(markIf).addr, vm.here)
		vm.pushMark(markIf, at)
	case codeThen:
		vm.compileOnly(c)
		vm.stor(vm.popMark(markIf).addr, vm.here)

	case codeBegin:
		vm.compileOnly(c)
		vm.pushMark(markBegin, vm.here)
	case codeAgain:
		vm.compileOnly(c)
		vm.compile(int(codeJump))
		vm.compile(vm.popMark(markBegin).addr)
	case codeUntil:
		vm.compileOnly(c)
		vm.compile(int(codeZBranch))
		vm.compile(vm.popMark(markBegin).addr)
	case codeWhile:
		vm.compileOnly(c)
		vm.pushMark(markWhile, vm.forward(codeZBranch))
	case codeRepeat:
		vm.compileOnly(c)
		w := vm.popMark(markWhile)
		b := vm.popMark(markBegin)
		vm.compile(int(codeJump))
		vm.compile(b.addr)
		vm.stor(w.addr, vm.here)

	case codeDoDef:
		vm.compileOnly(c)
		vm.pushMark(markDo, vm.forward(codeDo))
	case codeQDoDef:
		vm.compileOnly(c)
		vm.pushMark(markDo, vm.forward(codeQDo))
	case codeLoopDef:
		vm.compileOnly(c)
		vm.closeLoop(codeLoop)
	case codePlusLoopDef:
		vm.compileOnly(c)
		vm.closeLoop(codePlusLoop)

	default:
		vm.abort(codeError(c))
	}
}

// closeLoop compiles the loop step with a back-branch to just past the (do)
// exit cell, then patches that cell to fall out after the loop.
func (vm *VM) closeLoop(step code) {
	m := vm.popMark(markDo)
	vm.compile(int(step))
	vm.compile(m.addr + 1)
	vm.stor(m.addr, vm.here)
}

func (vm *VM) compileOnly(c code) {
	if !vm.compiling {
		vm.abort(fmt.Errorf("%w: %v", ErrCompileOnly, c))
	}
}

// threadRefers reports whether the thread in [addr, end) references c,
// skipping inline operands.
func (vm *VM) threadRefers(addr, end int, c code) bool {
	for addr < end {
		xt := code(vm.load(addr))
		if xt == c {
			return true
		}
		addr++
		if xt.hasOperand() {
			addr++
		}
	}
	return false
}

// attachDoes turns the latest create-based word into a does-word running the
// thread at addr.
func (vm *VM) attachDoes(addr int) {
	w := vm.latestWord()
	if w.code != codeEnterCreate && w.code != codeEnterDoes {
		vm.abort(ErrDoesWithoutCreate)
	}
	w.code = codeEnterDoes
	w.does = addr
	vm.logf("+", "does %q @%v", w.name, addr)
}
