package nforth

//// Dictionary

// The dictionary is a list of words. Each word has a name, flags, a code that
// names which behavior runs when the word is executed, and for user words the
// heap address of its body: a thread for colon definitions, a data field for
// create-based words. Words built by create/does> also carry the address of
// their does-thread.
type word struct {
	name  string
	code  code
	flags flag
	body  int
	does  int
}

type flag uint8

const (
	flagImmediate flag = 1 << iota // executes even while compiling
	flagLinked                     // user defined
	flagSmudge                     // hidden from lookup while being defined
)

func (w word) immediate() bool { return w.flags&flagImmediate != 0 }

// find looks a name up: user words newest first, then builtins in
// registration order. Smudged words are invisible. Names match exactly.
func (vm *VM) find(name string) (xt int, found, immediate bool) {
	nb := len(builtins)
	for xt := len(vm.dict) - 1; xt >= nb; xt-- {
		if w := vm.dict[xt]; w.flags&flagSmudge == 0 && w.name == name {
			return xt, true, w.immediate()
		}
	}
	for xt := 0; xt < nb; xt++ {
		if w := vm.dict[xt]; w.flags&flagSmudge == 0 && w.name == name {
			return xt, true, w.immediate()
		}
	}
	return 0, false, false
}

// define appends a user word whose body starts at the current heap cursor,
// making it the latest definition.
func (vm *VM) define(name string, c code, flags flag) int {
	xt := len(vm.dict)
	vm.dict = append(vm.dict, word{
		name:  name,
		code:  c,
		flags: flags | flagLinked,
		body:  vm.here,
	})
	vm.latest = xt
	vm.logf("+", "define %q xt:%v @%v", name, xt, vm.here)
	return xt
}

// latestWord returns the most recent user definition.
func (vm *VM) latestWord() *word {
	if vm.latest < 0 {
		vm.abort(ErrNoDefinition)
	}
	return &vm.dict[vm.latest]
}

// scanName reads the name for a defining word from the current line.
func (vm *VM) scanName() string {
	name := vm.scan()
	if name == "" {
		vm.abort(ErrNoName)
	}
	return name
}

func (vm *VM) wordName(xt int) string {
	if xt >= 0 && xt < len(vm.dict) {
		return vm.dict[xt].name
	}
	return ""
}
