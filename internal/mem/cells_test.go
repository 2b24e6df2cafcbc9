package mem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcorbin/nforth/internal/mem"
	"github.com/jcorbin/nforth/internal/panicerr"
)

func Test_Cells(t *testing.T) {
	for _, tc := range []cellsTestCase{
		cellsTest("basic",
			"init", func(t *testing.T, m *mem.Cells) {
				m.PageSize = 4
				expectMemValueAt(t, m, 0, 0)
				require.Equal(t, uint(0), m.Size(), "expected 0 initial size")
			},

			"9 -> 0", func(t *testing.T, m *mem.Cells) {
				require.NoError(t, m.Stor(0, 9), "must stor @0")
				expectMemValueAt(t, m, 0, 9)
				require.Equal(t, uint(4), m.Size(), "expected one page")
				//  0  1  2  3  :  9  0  0  0
				//  4  5  6  7  :  -  -  -  -
				expectMemValuesAt(t, m, 0,
					9, 0, 0, 0,
					0, 0, 0, 0)
			},

			"{1, 2, 3, 4, 5, 6} -> 0x9", func(t *testing.T, m *mem.Cells) {
				require.NoError(t, m.Stor(0x9, 1, 2, 3, 4, 5, 6), "must stor @0x9")
				require.Equal(t, uint(0x10), m.Size(), "expected a page hole")
				//  0  1  2  3  :  9  0  0  0
				//  4  5  6  7  :  -  -  -  -
				//  8  9  a  b  :  0  1  2  3
				//  c  d  e  f  :  4  5  6  0
				expectMemValuesAt(t, m, 6,
					0, 0,
					0, 1, 2, 3,
					4, 5, 6, 0,
					0, 0)
			},

			"7 -> 0xf", func(t *testing.T, m *mem.Cells) {
				require.NoError(t, m.Stor(0xf, 7), "must stor @0xf")
				expectMemValueAt(t, m, 0xf, 7)
				expectMemValueAt(t, m, 0xe, 6)
			},
		),

		cellsTest("limit",
			"init", func(t *testing.T, m *mem.Cells) {
				m.PageSize = 8
				m.Limit = 10
			},

			"last cell", func(t *testing.T, m *mem.Cells) {
				require.NoError(t, m.Stor(9, 42), "must stor @9")
				expectMemValueAt(t, m, 9, 42)
			},

			"past limit", func(t *testing.T, m *mem.Cells) {
				require.Equal(t, mem.LimitError{Addr: 10, Op: "stor"}, m.Stor(10, 1))
				_, err := m.Load(10)
				require.Equal(t, mem.LimitError{Addr: 10, Op: "load"}, err)
			},

			"no partial store", func(t *testing.T, m *mem.Cells) {
				require.Error(t, m.Stor(8, 1, 2, 3), "expected store across limit to fail")
				expectMemValuesAt(t, m, 8, 0, 42)
			},
		),
	} {
		t.Run(tc.name, func(t *testing.T) {
			var m mem.Cells
			for _, step := range tc.steps {
				if !t.Run(step.name, func(t *testing.T) {
					isolateTest(t, func(t *testing.T) { step.f(t, &m) })
				}) {
					break
				}
			}
		})
	}
}

func Test_Stack(t *testing.T) {
	s := mem.Stack{Name: "data stack", Limit: 3}

	_, err := s.Pop()
	require.EqualError(t, err, "data stack underflow")

	for _, v := range []int{1, 2, 3} {
		require.NoError(t, s.Push(v))
	}
	require.EqualError(t, s.Push(4), "data stack overflow")
	require.Equal(t, []int{1, 2, 3}, s.Values())

	require.NoError(t, s.SetAt(1, 20))
	v, err := s.At(1)
	require.NoError(t, err)
	require.Equal(t, 20, v)
	_, err = s.At(3)
	require.Error(t, err)

	v, err = s.Pop()
	require.NoError(t, err)
	require.Equal(t, 3, v)

	s.Truncate(0)
	require.Equal(t, 0, s.Len())
}

func isolateTest(t *testing.T, f func(t *testing.T)) {
	if err := panicerr.Recover(t.Name(), func() error {
		f(t)
		return nil
	}); err != nil {
		t.Logf("%+v", err)
		t.Fail()
	}
}

func expectMemValueAt(t *testing.T, m *mem.Cells, addr uint, value int) {
	val, err := m.Load(addr)
	require.NoError(t, err, "unexpected load @0x%x error", addr)
	require.Equal(t, value, val, "expected value @0x%x", addr)
}

func expectMemValuesAt(t *testing.T, m *mem.Cells, addr uint, values ...int) {
	buf := make([]int, len(values))
	require.NoError(t, m.LoadInto(addr, buf),
		"must load %v values from @0x%x", len(values), addr)
	require.Equal(t, values, buf, "expected values @0x%x", addr)
}

func cellsTest(name string, args ...interface{}) (tc cellsTestCase) {
	tc.name = name
	for i := 0; i < len(args); i++ {
		var step cellsTestStep
		step.name = args[i].(string)
		if i++; i >= len(args) {
			panic("cellsTest: missing function argument after name")
		}
		step.f = args[i].(func(t *testing.T, m *mem.Cells))
		tc.steps = append(tc.steps, step)
	}
	return tc
}

type cellsTestCase struct {
	name  string
	steps []cellsTestStep
}

type cellsTestStep struct {
	name string
	f    func(t *testing.T, m *mem.Cells)
}
