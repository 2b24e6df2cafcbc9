package nforth

// code names one behavior of the inner interpreter. Builtin words are
// registered in code order, so a builtin's execution token equals its code.
type code int

const (
	// Internal words come first, at predictable locations.
	codeLit      code = iota // (lit)    push the next thread cell
	codeJump                 // (jump)   continue at the address in the next cell
	codeZBranch              // (0branch) pop; jump when zero, else skip the address
	codeExit                 // exit     return from the current thread
	codeDo                   // (do)     push a loop-control triple
	codeQDo                  // (?do)    like (do), but skip the loop when limit = index
	codeLoop                 // (loop)   step the innermost loop by one
	codePlusLoop             // (+loop)  step the innermost loop by a popped amount
	codeDoes                 // (does)   attach the popped thread to the latest word
	codeQuit                 // quit     the outer interpreter

	codeToR   // >r
	codeFromR // r>

	codeAdd // +
	codeSub // -
	codeMul // *
	codeDiv // /

	codeEq // =
	codeNe // <>
	codeLt // <
	codeLe // <=
	codeGt // >
	codeGe // >=

	codeMin // min
	codeMax // max

	codeLoad  // @
	codeStore // !

	codeDup  // dup
	codeDrop // drop
	codeSwap // swap
	codeOver // over

	codeComma // ,
	codeHere  // here

	codeDot  // .
	codeEmit // emit
	codeCR   // cr

	codeColon     // :
	codeSemicolon // ;
	codeImmediate // immediate
	codeLBracket  // [
	codeRBracket  // ]

	codeCreate   // create
	codeDoesDef  // does>
	codeVariable // variable
	codeConstant // constant

	codeIf   // if
	codeElse // else
	codeThen // then

	codeBegin  // begin
	codeAgain  // again
	codeUntil  // until
	codeWhile  // while
	codeRepeat // repeat

	codeDoDef       // do
	codeQDoDef      // ?do
	codeLoopDef     // loop
	codePlusLoopDef // +loop

	codeI      // i
	codeJ      // j
	codeLeave  // leave
	codeUnloop // unloop

	codeLiteral // literal
	codeCompile // compile,
	codeFind    // find
	codeExecute // execute

	codeBase     // base
	codeDecimal  // decimal
	codeHex      // hex
	codeSourceID // source-id

	codeYield // yield

	numBuiltins

	// Behaviors of user words; these have no dictionary entries.
	codeEnter         // run the body thread
	codeEnterCreate   // push the data field address
	codeEnterDoes     // push the data field address, run the does-thread
	codeEnterConstant // push the data field value
)

var builtins = [numBuiltins]struct {
	name  string
	code  code
	flags flag
}{
	{"(lit)", codeLit, 0},
	{"(jump)", codeJump, 0},
	{"(0branch)", codeZBranch, 0},
	{"exit", codeExit, 0},
	{"(do)", codeDo, 0},
	{"(?do)", codeQDo, 0},
	{"(loop)", codeLoop, 0},
	{"(+loop)", codePlusLoop, 0},
	{"(does)", codeDoes, 0},
	{"quit", codeQuit, 0},

	{">r", codeToR, 0},
	{"r>", codeFromR, 0},
	{"+", codeAdd, 0},
	{"-", codeSub, 0},
	{"*", codeMul, 0},
	{"/", codeDiv, 0},
	{"=", codeEq, 0},
	{"<>", codeNe, 0},
	{"<", codeLt, 0},
	{"<=", codeLe, 0},
	{">", codeGt, 0},
	{">=", codeGe, 0},
	{"min", codeMin, 0},
	{"max", codeMax, 0},
	{"@", codeLoad, 0},
	{"!", codeStore, 0},
	{"dup", codeDup, 0},
	{"drop", codeDrop, 0},
	{"swap", codeSwap, 0},
	{"over", codeOver, 0},
	{",", codeComma, 0},
	{"here", codeHere, 0},
	{".", codeDot, 0},
	{"emit", codeEmit, 0},
	{"cr", codeCR, 0},

	{":", codeColon, 0},
	{";", codeSemicolon, flagImmediate},
	{"immediate", codeImmediate, 0},
	{"[", codeLBracket, flagImmediate},
	{"]", codeRBracket, flagImmediate},
	{"create", codeCreate, 0},
	{"does>", codeDoesDef, flagImmediate},
	{"variable", codeVariable, 0},
	{"constant", codeConstant, 0},

	{"if", codeIf, flagImmediate},
	{"else", codeElse, flagImmediate},
	{"then", codeThen, flagImmediate},
	{"begin", codeBegin, flagImmediate},
	{"again", codeAgain, flagImmediate},
	{"until", codeUntil, flagImmediate},
	{"while", codeWhile, flagImmediate},
	{"repeat", codeRepeat, flagImmediate},
	{"do", codeDoDef, flagImmediate},
	{"?do", codeQDoDef, flagImmediate},
	{"loop", codeLoopDef, flagImmediate},
	{"+loop", codePlusLoopDef, flagImmediate},

	{"i", codeI, 0},
	{"j", codeJ, 0},
	{"leave", codeLeave, 0},
	{"unloop", codeUnloop, 0},

	{"literal", codeLiteral, flagImmediate},
	{"compile,", codeCompile, 0},
	{"find", codeFind, 0},
	{"execute", codeExecute, 0},

	{"base", codeBase, 0},
	{"decimal", codeDecimal, 0},
	{"hex", codeHex, 0},
	{"source-id", codeSourceID, 0},

	{"yield", codeYield, 0},
}

// hasOperand reports whether a thread reference to c is followed by an
// inline operand cell.
func (c code) hasOperand() bool {
	switch c {
	case codeLit, codeJump, codeZBranch, codeDo, codeQDo, codeLoop, codePlusLoop:
		return true
	}
	return false
}

func (c code) String() string {
	switch c {
	case codeEnter:
		return "enter"
	case codeEnterCreate:
		return "enter-create"
	case codeEnterDoes:
		return "enter-does"
	case codeEnterConstant:
		return "enter-constant"
	}
	if c >= 0 && c < numBuiltins {
		return builtins[c].name
	}
	return "invalid"
}
