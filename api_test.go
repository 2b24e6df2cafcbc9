package nforth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/nforth"
	"github.com/jcorbin/nforth/internal/lineio"
)

func TestRun(t *testing.T) {
	var out strings.Builder
	vm := nforth.New(
		nforth.WithInput(strings.NewReader(": sq dup * ;\n5 sq .\n")),
		nforth.WithOutput(&out),
	)
	defer vm.Close()
	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, "  ok\n 25  ok\n", out.String())
	assert.Equal(t, []int{}, vm.Stack())
}

func TestRun_tee(t *testing.T) {
	var out, tee strings.Builder
	vm := nforth.New(
		nforth.WithInput(strings.NewReader("1 .")),
		nforth.WithOutput(&out),
		nforth.WithTee(&tee),
	)
	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, " 1  ok\n", out.String())
	assert.Equal(t, out.String(), tee.String())
}

func TestRun_independent(t *testing.T) {
	ctx := context.Background()
	var outA, outB strings.Builder
	a := nforth.New(
		nforth.WithInput(strings.NewReader(": x 1 ;\nx .")),
		nforth.WithOutput(&outA),
	)
	b := nforth.New(
		nforth.WithInput(strings.NewReader("x .")),
		nforth.WithOutput(&outB),
	)
	require.NoError(t, a.Run(ctx))
	require.NoError(t, b.Run(ctx))
	assert.Equal(t, "  ok\n 1  ok\n", outA.String())
	assert.Equal(t, "Unknown word\n  ok\n", outB.String())
}

func TestRun_chan(t *testing.T) {
	ctx := context.Background()
	ch := lineio.NewChan(4)
	var out strings.Builder
	vm := nforth.New(nforth.WithLines(ch), nforth.WithOutput(&out))

	require.NoError(t, ch.Send(ctx, lineio.Line{Text: "source-id .", SourceID: 3}))
	require.NoError(t, ch.Send(ctx, lineio.Line{Text: "1 yield 2", SourceID: 4}))
	require.ErrorIs(t, vm.Run(ctx), nforth.ErrYield)
	assert.Equal(t, " 3  ok\n", out.String())
	assert.Equal(t, []int{1}, vm.Stack())

	require.NoError(t, ch.Send(ctx, lineio.Line{Text: "source-id", SourceID: 5}))
	require.NoError(t, ch.Close())
	require.NoError(t, vm.Run(ctx))
	assert.Equal(t, []int{1, 2, 5}, vm.Stack())
}

func TestRun_queue(t *testing.T) {
	q := lineio.NewQueue(
		strings.NewReader(": two 2 ;"),
		strings.NewReader("two source-id"),
	)
	q.FirstSourceID = 1
	vm := nforth.New(nforth.WithLines(q))
	defer vm.Close()
	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, []int{2, 2}, vm.Stack())
}

func TestRun_heapExhausted(t *testing.T) {
	vm := nforth.New(
		nforth.WithInput(strings.NewReader(": a 1 2 3 4 5 6 7 ;")),
		nforth.WithHeapSize(16),
	)
	assert.ErrorIs(t, vm.Run(context.Background()), nforth.ErrHeapExhausted)
}

func TestWords(t *testing.T) {
	vm := nforth.New(nforth.WithInput(strings.NewReader(
		": sq dup * ; immediate\nvariable v\n3 constant three\n: k create does> ;\nk kk\n: open")))
	require.NoError(t, vm.Run(context.Background()))

	words := vm.Words()
	require.NotEmpty(t, words)
	var names []string
	for _, w := range words[:5] {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"open", "kk", "k", "three", "v"}, names)
	assert.True(t, words[0].Hidden, "open definition is hidden")
	assert.Equal(t, "does", words[1].Kind)
	assert.Equal(t, "colon", words[2].Kind)
	assert.Equal(t, "constant", words[3].Kind)
	assert.Equal(t, "create", words[4].Kind)
	assert.True(t, words[5].Immediate, "sq is immediate")

	last := words[len(words)-1]
	assert.Equal(t, "yield", last.Name)
	assert.True(t, last.Builtin)
	assert.Equal(t, "builtin", last.Kind)
}

func TestDump(t *testing.T) {
	vm := nforth.New(nforth.WithInput(strings.NewReader(
		": sq dup * ;\n: t 3 0 do i sq . loop ;\n7 constant seven\n1 2")))
	require.NoError(t, vm.Run(context.Background()))

	var out strings.Builder
	require.NoError(t, vm.Dump(&out))
	dump := out.String()
	assert.Contains(t, dump, "# VM Dump\n")
	assert.Contains(t, dump, "  stack: [1 2]\n")
	assert.Contains(t, dump, ": sq dup * exit\n")
	assert.Contains(t, dump, ": t (lit)(3) (lit)(0) (do)(")
	assert.Contains(t, dump, ": seven constant 7\n")
}
