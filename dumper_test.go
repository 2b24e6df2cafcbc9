package nforth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_dumpRawWords(t *testing.T) {
	vm := New(WithInput(strings.NewReader(": sq dup * ;\n7 constant seven\n")))
	require.NoError(t, vm.Run(context.Background()))

	var out strings.Builder
	require.NoError(t, vmDumper{vm: vm, out: &out, rawWords: true}.dump())
	dump := out.String()

	width := len(fmt.Sprint(vm.here)) + 1
	assert.Contains(t, dump, fmt.Sprintf(": sq dup * exit\n %*v %v\n",
		width, "", []int{int(codeDup), int(codeMul), int(codeExit)}))
	assert.Contains(t, dump, fmt.Sprintf(": seven constant 7\n %*v [7]\n", width, ""))

	out.Reset()
	require.NoError(t, vm.Dump(&out))
	assert.NotContains(t, out.String(), "[7]")
}
