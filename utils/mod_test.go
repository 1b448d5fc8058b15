package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"Red", "Blue"}, "Blue"))
	require.Equal(t, -1, FindIndex([]string{"Red", "Blue"}, "Green"))
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[int]struct{}{9: {}, 2: {}, 5: {}})
	require.Equal(t, []int{2, 5, 9}, got)
	require.Empty(t, SortedKeys(map[string]int(nil)))
}

func TestNewRand(t *testing.T) {
	t.Run("same seed gives the same sequence", func(t *testing.T) {
		a, b := NewRand(42), NewRand(42)
		for i := 0; i < 100; i++ {
			require.Equal(t, a.Intn(1000), b.Intn(1000))
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a, b := NewRand(1), NewRand(2)
		same := true
		for i := 0; i < 20; i++ {
			if a.Uint64() != b.Uint64() {
				same = false
			}
		}
		require.False(t, same)
	})
}
