package nforth

import "context"

//// Inner interpreter

// run drives the dispatch loop until the program yields or the VM halts,
// recovering from line aborts along the way.
func (vm *VM) run(ctx context.Context) error {
	vm.ctx = ctx
	vm.yielded = false
	for {
		err := vm.exec(ctx)
		if err == nil {
			vm.logf("#", "yield @%v", vm.ip)
			return ErrYield
		}
		vm.recoverLine(err)
		if err := ctx.Err(); err != nil {
			vm.halt(err)
		}
	}
}

// exec steps until yield, returning nil, or until a line abort, returning
// its error.
func (vm *VM) exec(ctx context.Context) error {
	defer vm.withLogPrefix("	")()
	return catchAbort(func() {
		for !vm.yielded {
			vm.step()
			if err := ctx.Err(); err != nil {
				vm.halt(err)
			}
		}
	})
}

// step fetches the execution token at the instruction pointer, advances past
// it, and dispatches it.
func (vm *VM) step() {
	at := vm.ip
	xt := vm.fetch()
	if vm.logfn != nil && xt != int(codeQuit) {
		vm.logf(">", "@%v %v -- r:%v s:%v", at, vm.wordName(xt), vm.rstack.Values(), vm.stack.Values())
	}
	vm.dispatch(xt)
}

func (vm *VM) dispatch(xt int) {
	if xt < 0 || xt >= len(vm.dict) {
		vm.abort(codeError(xt))
	}
	w := &vm.dict[xt]

	switch w.code {

	// user word behaviors
	case codeEnter:
		vm.pushr(vm.ip)
		vm.ip = w.body
	case codeEnterCreate:
		vm.push(w.body)
	case codeEnterDoes:
		vm.pushr(vm.ip)
		vm.push(w.body)
		vm.ip = w.does
	case codeEnterConstant:
		vm.push(vm.load(w.body))

	// threading
	case codeLit:
		vm.push(vm.fetch())
	case codeJump:
		vm.ip = vm.load(vm.ip)
	case codeZBranch:
		if vm.pop() == 0 {
			vm.ip = vm.load(vm.ip)
		} else {
			vm.ip++
		}
	case codeExit:
		vm.ip = vm.popr()
	case codeExecute:
		vm.dispatch(vm.pop())
	case codeQuit:
		vm.quit()
	case codeYield:
		vm.yielded = true

	// loops
	case codeDo:
		exit := vm.fetch()
		index, limit := vm.pop(), vm.pop()
		vm.enterLoop(exit, index, limit)
	case codeQDo:
		exit := vm.fetch()
		index, limit := vm.pop(), vm.pop()
		// both operands are consumed even when the loop is skipped
		if index == limit {
			vm.ip = exit
		} else {
			vm.enterLoop(exit, index, limit)
		}
	case codeLoop:
		vm.stepLoop(1)
	case codePlusLoop:
		vm.stepLoop(vm.pop())
	case codeI:
		vm.push(vm.loopIndex(1))
	case codeJ:
		vm.push(vm.loopIndex(2))
	case codeLeave:
		base := vm.loopFrame(1)
		exit, _ := vm.rstack.At(base)
		vm.exitLoop(base)
		vm.ip = exit
	case codeUnloop:
		vm.exitLoop(vm.loopFrame(1))

	// return stack
	case codeToR:
		vm.pushr(vm.pop())
	case codeFromR:
		vm.push(vm.popr())

	// arithmetic
	case codeAdd:
		b, a := vm.pop(), vm.pop()
		vm.push(a + b)
	case codeSub:
		b, a := vm.pop(), vm.pop()
		vm.push(a - b)
	case codeMul:
		b, a := vm.pop(), vm.pop()
		vm.push(a * b)
	case codeDiv:
		b, a := vm.pop(), vm.pop()
		if b == 0 {
			vm.halt(ErrDivisionByZero)
		}
		vm.push(a / b)

	// comparison
	case codeEq:
		b, a := vm.pop(), vm.pop()
		vm.push(boolInt(a == b))
	case codeNe:
		b, a := vm.pop(), vm.pop()
		vm.push(boolInt(a != b))
	case codeLt:
		b, a := vm.pop(), vm.pop()
		vm.push(boolInt(a < b))
	case codeLe:
		b, a := vm.pop(), vm.pop()
		vm.push(boolInt(a <= b))
	case codeGt:
		b, a := vm.pop(), vm.pop()
		vm.push(boolInt(a > b))
	case codeGe:
		b, a := vm.pop(), vm.pop()
		vm.push(boolInt(a >= b))
	case codeMin:
		b, a := vm.pop(), vm.pop()
		if b < a {
			a = b
		}
		vm.push(a)
	case codeMax:
		b, a := vm.pop(), vm.pop()
		if b > a {
			a = b
		}
		vm.push(a)

	// memory
	case codeLoad:
		vm.push(vm.load(vm.pop()))
	case codeStore:
		addr, val := vm.pop(), vm.pop()
		if addr < baseAddr {
			vm.abort(addrError(addr))
		}
		vm.stor(addr, val)
	case codeComma, codeCompile:
		vm.compile(vm.pop())
	case codeHere:
		vm.push(vm.here)

	// stack
	case codeDup:
		a := vm.pop()
		vm.push(a)
		vm.push(a)
	case codeDrop:
		vm.pop()
	case codeSwap:
		b, a := vm.pop(), vm.pop()
		vm.push(b)
		vm.push(a)
	case codeOver:
		b, a := vm.pop(), vm.pop()
		vm.push(a)
		vm.push(b)
		vm.push(a)

	// output
	case codeDot:
		vm.printCell(vm.pop())
	case codeEmit:
		vm.writeByte(byte(vm.pop()))
	case codeCR:
		vm.writeByte('\n')

	// number base and input source
	case codeBase:
		vm.push(baseAddr)
	case codeDecimal:
		vm.stor(baseAddr, 10)
	case codeHex:
		vm.stor(baseAddr, 16)
	case codeSourceID:
		vm.push(vm.sourceID)
	case codeFind:
		vm.findCounted()

	default:
		vm.compileWord(w.code)
	}
}

//// Loop control

// enterLoop pushes a loop-control triple: exit address, index, limit.
func (vm *VM) enterLoop(exit, index, limit int) {
	vm.pushr(exit)
	vm.pushr(index)
	vm.pushr(limit)
	vm.loops = append(vm.loops, vm.rstack.Len()-3)
}

// loopFrame returns the return stack position of the n-th innermost live
// loop-control triple.
func (vm *VM) loopFrame(n int) int {
	i := len(vm.loops) - n
	if i < 0 {
		vm.abort(ErrNoLoop)
	}
	return vm.loops[i]
}

func (vm *VM) loopIndex(n int) int {
	index, err := vm.rstack.At(vm.loopFrame(n) + 1)
	vm.abortif(err)
	return index
}

func (vm *VM) exitLoop(base int) {
	vm.rstack.Truncate(base)
	vm.trimLoops()
}

// stepLoop advances the innermost loop; on reaching the limit it discards the
// triple and falls through past the back-branch address, otherwise it
// branches back to the loop body.
func (vm *VM) stepLoop(by int) {
	base := vm.loopFrame(1)
	index, err := vm.rstack.At(base + 1)
	vm.abortif(err)
	limit, err := vm.rstack.At(base + 2)
	vm.abortif(err)
	index += by
	if index == limit {
		vm.exitLoop(base)
		vm.ip++
	} else {
		vm.abortif(vm.rstack.SetAt(base+1, index))
		vm.ip = vm.load(vm.ip)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
