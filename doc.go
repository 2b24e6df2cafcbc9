/* Package nforth implements a small, extensible Forth.

Forth programs are sequences of space-delimited words. Each word is
looked up in a dictionary and either executed now or, while a definition is
open, compiled onto the end of the heap as a reference to be executed later.
Words that are not in the dictionary are read as numerals in the current base.
Built-in primitives are indistinguishable from user-defined words: both are
dictionary entries, and a user word may shadow any builtin.

The machine has three areas of memory:

	data stack    operands passed between words
	return stack  call return addresses and loop-control triples
	heap          an append-only run of cells: compiled threads,
	              data fields, and two reserved cells

Every value is a cell: a signed machine word. Truth is 1, falsehood 0.

A compiled thread is a sequence of execution tokens; a few primitives such as
(lit), (jump), (0branch), and (do) take the cell after them as an operand. The
inner interpreter fetches the token at the instruction pointer, advances past
it, and dispatches on the behavior of the word it names.

The outer interpreter is itself a builtin word, quit. Heap cell 0 holds a
reference to it, the boot thread, and quit resets the instruction pointer
back there after each token, so interpreting and running compiled code share
one dispatch loop. Heap cell 1 holds the number base.

Defining words:

	: name ... ;           colon definition; hidden until closed
	create name            data field at here
	variable name          one-cell data field
	n constant name        pushes n
	create ... does> ...   attach behavior to the latest created word
	immediate              mark the latest word immediate
	[ ]                    leave or re-enter compile mode
	literal compile,       compile a number or an execution token

Control flow, only while compiling:

	if ... [else ...] then
	begin ... until
	begin ... again
	begin ... while ... repeat
	limit index do ... loop        also ?do, +loop, i, j, leave, unloop

Errors abort the rest of the input line: an unknown word prints
"Unknown word", anything else prints its message. The return stack, loop
state, and compile mode are reset, but the data stack is kept. Division by
zero and running out of heap halt the VM, failing Run.

A program may execute yield to return control to its host; Run then returns
ErrYield, and calling it again resumes.
*/
package nforth
