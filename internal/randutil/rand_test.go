package randutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}

	c := New(43)
	assert.NotEqual(t, New(42).Uint64(), c.Uint64())
}

func TestShuffledLeavesInputAlone(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := Shuffled(New(7), in)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, in)
	sorted := slices.Clone(out)
	slices.Sort(sorted)
	assert.Equal(t, in, sorted)
}

func TestSample(t *testing.T) {
	_, ok := Sample[string](New(1), nil)
	assert.False(t, ok)

	v, ok := Sample(New(1), []string{"only"})
	require.True(t, ok)
	assert.Equal(t, "only", v)
}

func TestRange(t *testing.T) {
	out := Range(New(3), 104)
	require.Len(t, out, 104)
	slices.Sort(out)
	for i, v := range out {
		assert.Equal(t, i, v)
	}
}

func TestPop(t *testing.T) {
	tests := []struct {
		name  string
		pile  []int
		n     int
		taken []int
		rest  []int
	}{
		{"takes from the top", []int{1, 2, 3, 4}, 2, []int{3, 4}, []int{1, 2}},
		{"caps at pile size", []int{1, 2}, 5, []int{1, 2}, []int{}},
		{"zero takes nothing", []int{1, 2}, 0, nil, []int{1, 2}},
		{"empty pile", nil, 1, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken, rest := Pop(tt.pile, tt.n)
			assert.Equal(t, tt.taken, taken)
			assert.Equal(t, len(tt.rest), len(rest))
			if len(tt.rest) > 0 {
				assert.Equal(t, tt.rest, rest)
			}
		})
	}
}
