package nforth

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type vmDumper struct {
	vm  *VM
	out io.Writer

	addrWidth int
	rawWords  bool

	buf strings.Builder
	err error
}

func (dump vmDumper) dump() error {
	vm := dump.vm
	dump.printf("# VM Dump\n")
	dump.printf("  ip: %v\n", vm.ip)
	dump.printf("  here: %v\n", vm.here)
	dump.printf("  base: %v\n", vm.loadRaw(baseAddr))
	dump.printf("  compiling: %v\n", vm.compiling)
	dump.printf("  stack: %v\n", vm.stack.Values())
	dump.printf("  rstack: %v\n", vm.rstack.Values())
	if len(vm.loops) > 0 {
		dump.printf("  loops: %v\n", vm.loops)
	}
	if len(vm.ctl) > 0 {
		dump.printf("  control: %v\n", vm.ctl)
	}
	dump.dumpWords()
	return dump.err
}

func (dump *vmDumper) printf(format string, args ...interface{}) {
	if dump.err == nil {
		_, dump.err = fmt.Fprintf(dump.out, format, args...)
	}
}

// flushLine writes out the buffered line.
func (dump *vmDumper) flushLine() {
	dump.buf.WriteByte('\n')
	if dump.err == nil {
		_, dump.err = io.WriteString(dump.out, dump.buf.String())
	}
	dump.buf.Reset()
}

func (dump *vmDumper) dumpWords() {
	vm := dump.vm
	if len(vm.dict) <= len(builtins) {
		return
	}
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(vm.here)) + 1
	}

	dump.printf("# Dictionary\n")
	for xt := len(builtins); xt < len(vm.dict); xt++ {
		w := vm.dict[xt]
		end := vm.here
		if xt+1 < len(vm.dict) {
			end = vm.dict[xt+1].body
		}

		fmt.Fprintf(&dump.buf, "  @% *v : %v", dump.addrWidth, w.body, w.name)
		if w.immediate() {
			dump.buf.WriteString(" immediate")
		}
		if w.flags&flagSmudge != 0 {
			dump.buf.WriteString(" hidden")
		}

		switch w.code {
		case codeEnter:
			dump.formatThread(w.body, end)
		case codeEnterDoes:
			fmt.Fprintf(&dump.buf, " does>@%v", w.does)
			dump.formatData(w.body, end)
		default:
			dump.buf.WriteByte(' ')
			dump.buf.WriteString(wordKind(w))
			dump.formatData(w.body, end)
		}

		if dump.rawWords && end > w.body {
			code := make([]int, end-w.body)
			vm.heap.LoadInto(uint(w.body), code)
			fmt.Fprintf(&dump.buf, "\n %*v %v", dump.addrWidth, "", code)
		}
		dump.flushLine()
	}
}

func (dump *vmDumper) formatData(addr, end int) {
	for ; addr < end; addr++ {
		dump.buf.WriteByte(' ')
		dump.buf.WriteString(strconv.Itoa(dump.vm.loadRaw(addr)))
	}
}

// formatThread decodes the thread in [addr, end), naming each reference and
// showing inline operands in parens.
func (dump *vmDumper) formatThread(addr, end int) {
	for addr < end {
		xt := dump.vm.loadRaw(addr)
		addr++
		dump.buf.WriteByte(' ')
		name := dump.vm.wordName(xt)
		if name == "" {
			fmt.Fprintf(&dump.buf, "?%v", xt)
			continue
		}
		dump.buf.WriteString(name)
		if code(xt).hasOperand() && addr < end {
			fmt.Fprintf(&dump.buf, "(%v)", dump.vm.loadRaw(addr))
			addr++
		}
	}
}

// loadRaw reads a cell for inspection, yielding 0 for unreadable addresses.
func (vm *VM) loadRaw(addr int) int {
	if addr < 0 {
		return 0
	}
	val, _ := vm.heap.Load(uint(addr))
	return val
}
