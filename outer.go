package nforth

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

//// Outer interpreter

const okMessage = "  ok\n"

// quit is the outer interpreter. The boot thread is a lone reference to it,
// and it resets the instruction pointer back there every time, so each pass
// through the dispatch loop handles one token of input.
func (vm *VM) quit() {
	vm.ip = bootAddr
	if token := vm.scan(); token != "" {
		vm.interpret(token)
		return
	}
	if vm.lineRead {
		vm.write(okMessage)
	}
	vm.readLine()
}

// interpret executes or compiles a single token.
func (vm *VM) interpret(token string) {
	if xt, found, immediate := vm.find(token); found {
		if immediate || !vm.compiling {
			vm.dispatch(xt)
		} else {
			vm.compile(xt)
		}
		return
	}

	n, ok := parseCell(token, vm.base())
	if !ok {
		vm.abort(UnknownTokenError(token))
	}
	if vm.compiling {
		vm.compile(int(codeLit))
		vm.compile(n)
	} else {
		vm.push(n)
	}
}

// readLine flushes output, then waits for the next input line; running out
// of input halts the VM.
func (vm *VM) readLine() {
	vm.flush()
	if vm.lines == nil {
		vm.halt(io.EOF)
	}
	line, err := vm.lines.ReadLine(vm.ctx)
	if err != nil {
		vm.halt(err)
	}
	vm.line, vm.in, vm.lineRead = line, 0, true
	vm.sourceID = vm.defSrcID
	if ids, ok := vm.lines.(sourceIDer); ok {
		vm.sourceID = ids.SourceID()
	}
	vm.logf("<", "%q", line)
}

type sourceIDer interface{ SourceID() int }

// scan skips leading blanks, then returns the token up to the next blank,
// consuming that one delimiter. Returns "" at end of line.
func (vm *VM) scan() string {
	line, i := vm.line, vm.in
	for i < len(line) && isBlank(line[i]) {
		i++
	}
	start := i
	for i < len(line) && !isBlank(line[i]) {
		i++
	}
	token := line[start:i]
	if i < len(line) {
		i++
	}
	vm.in = i
	return token
}

func isBlank(c byte) bool { return c == ' ' }

// recoverLine reports an aborted line, discards the rest of it, and resets
// execution to the outer interpreter. The data stack is left as it was. A
// definition that was open stays hidden.
func (vm *VM) recoverLine(err error) {
	var unknown UnknownTokenError
	if errors.As(err, &unknown) {
		vm.write("Unknown word\n")
	} else {
		vm.write(err.Error() + "\n")
	}
	vm.logf("!", "abort: %v", err)

	vm.in = len(vm.line)
	vm.rstack.Truncate(0)
	vm.loops = vm.loops[:0]
	vm.ctl = vm.ctl[:0]
	vm.compiling = false
	vm.ip = bootAddr
	if errors.Is(err, ErrBadBase) {
		vm.stor(baseAddr, 10)
	}
	vm.flush()
}

//// Numerals

// parseCell parses an optionally negative numeral in the given base. Digits
// beyond 9 are letters, in either case. Overflow wraps.
func parseCell(s string, base int) (int, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		d := digitValue(s[i])
		if d < 0 || d >= base {
			return 0, false
		}
		n = n*base + d
	}
	if neg {
		n = -n
	}
	return n, true
}

func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func formatCell(n, base int) string {
	return strings.ToUpper(strconv.FormatInt(int64(n), base))
}

// printCell writes a space then the numeral, and flushes.
func (vm *VM) printCell(n int) {
	vm.write(" " + formatCell(n, vm.base()))
	vm.flush()
}

//// Lookup from programs

// findCounted implements find: ( c-addr -- c-addr 0 | xt 1 | xt -1 ). The
// counted string is a length cell followed by one character per cell.
func (vm *VM) findCounted() {
	addr := vm.pop()
	n := vm.load(addr)
	if n < 0 {
		vm.abort(addrError(addr))
	}
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteByte(byte(vm.load(addr + i)))
	}
	xt, found, immediate := vm.find(sb.String())
	switch {
	case !found:
		vm.push(addr)
		vm.push(0)
	case immediate:
		vm.push(xt)
		vm.push(1)
	default:
		vm.push(xt)
		vm.push(-1)
	}
}
