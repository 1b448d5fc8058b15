package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		_, err := New(0, 5, Clamped)
		require.ErrorIs(t, err, ErrInvalidSize)

		_, err = New(5, -1, Toroidal)
		require.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("creates an empty grid", func(t *testing.T) {
		g, err := New(4, 3, Toroidal)
		require.NoError(t, err)
		require.Equal(t, 4, g.Width())
		require.Equal(t, 3, g.Height())
		require.Equal(t, Toroidal, g.Topology())
		require.Zero(t, g.Len())
	})
}

func TestPlace(t *testing.T) {
	t.Run("clamped grid rejects outside coordinates", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)

		require.ErrorIs(t, g.Place(1, Coord{X: 3, Y: 0}), ErrOutOfBounds)
		require.ErrorIs(t, g.Place(1, Coord{X: 0, Y: -1}), ErrOutOfBounds)
		require.Zero(t, g.Len(), "Failed placement should not register occupancy")
	})

	t.Run("toroidal grid wraps outside coordinates", func(t *testing.T) {
		g, _ := New(3, 3, Toroidal)

		require.NoError(t, g.Place(1, Coord{X: -1, Y: 4}))
		require.Equal(t, []int{1}, g.Occupants(Coord{X: 2, Y: 1}))
	})

	t.Run("multiple agents share a cell", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)
		c := Coord{X: 1, Y: 1}

		require.NoError(t, g.Place(7, c))
		require.NoError(t, g.Place(2, c))
		require.NoError(t, g.Place(5, c))

		require.Equal(t, []int{2, 5, 7}, g.Occupants(c), "Occupants should be sorted by id")
	})
}

func TestRemove(t *testing.T) {
	g, _ := New(3, 3, Clamped)
	c := Coord{X: 0, Y: 2}
	require.NoError(t, g.Place(1, c))

	require.True(t, g.Remove(1, c))
	require.False(t, g.Remove(1, c), "Second removal should be a no-op")
	require.False(t, g.Remove(9, Coord{X: 5, Y: 5}), "Removing outside the grid should be a no-op")
	require.Empty(t, g.Occupants(c))
	require.Zero(t, g.Len())
}

func TestMove(t *testing.T) {
	t.Run("leaves no stale entry", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)
		from, to := Coord{X: 0, Y: 0}, Coord{X: 1, Y: 1}
		require.NoError(t, g.Place(4, from))

		require.NoError(t, g.Move(4, from, to))

		require.Empty(t, g.Occupants(from))
		require.Equal(t, []int{4}, g.Occupants(to))
		require.Equal(t, 1, g.Len())
	})

	t.Run("failed move keeps the agent in place", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)
		from := Coord{X: 2, Y: 2}
		require.NoError(t, g.Place(4, from))

		err := g.Move(4, from, Coord{X: 3, Y: 2})

		require.ErrorIs(t, err, ErrOutOfBounds)
		require.Equal(t, []int{4}, g.Occupants(from))
	})

	t.Run("wrong origin is rejected", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)
		at := Coord{X: 1, Y: 0}
		require.NoError(t, g.Place(4, at))

		err := g.Move(4, Coord{X: 0, Y: 0}, Coord{X: 2, Y: 2})

		require.ErrorIs(t, err, ErrNotOccupant)
		require.Equal(t, []int{4}, g.Occupants(at))
		require.Empty(t, g.Occupants(Coord{X: 2, Y: 2}))
		require.Equal(t, 1, g.Len())
	})
}

func TestNeighborhood(t *testing.T) {
	t.Run("moore ring in the interior", func(t *testing.T) {
		g, _ := New(5, 5, Clamped)

		got := g.Neighborhood(Coord{X: 2, Y: 2}, 1)

		require.Equal(t, []Coord{
			{1, 1}, {2, 1}, {3, 1},
			{1, 2}, {3, 2},
			{1, 3}, {2, 3}, {3, 3},
		}, got)
	})

	t.Run("clamped corner is clipped", func(t *testing.T) {
		g, _ := New(5, 5, Clamped)

		got := g.Neighborhood(Coord{X: 0, Y: 0}, 1)

		require.Equal(t, []Coord{{1, 0}, {0, 1}, {1, 1}}, got)
	})

	t.Run("toroidal corner wraps", func(t *testing.T) {
		g, _ := New(5, 5, Toroidal)

		got := g.Neighborhood(Coord{X: 0, Y: 0}, 1)

		require.Len(t, got, 8)
		require.Contains(t, got, Coord{X: 4, Y: 4})
		require.Contains(t, got, Coord{X: 4, Y: 0})
		require.Contains(t, got, Coord{X: 0, Y: 4})
		require.NotContains(t, got, Coord{X: 0, Y: 0})
	})

	t.Run("radius counts chebyshev distance", func(t *testing.T) {
		g, _ := New(9, 9, Clamped)

		got := g.Neighborhood(Coord{X: 4, Y: 4}, 2)

		require.Len(t, got, 24)
		for _, c := range got {
			require.LessOrEqual(t, abs(c.X-4), 2)
			require.LessOrEqual(t, abs(c.Y-4), 2)
		}
	})

	t.Run("small torus has no duplicates", func(t *testing.T) {
		g, _ := New(2, 2, Toroidal)

		got := g.Neighborhood(Coord{X: 0, Y: 0}, 1)

		require.ElementsMatch(t, []Coord{{1, 0}, {0, 1}, {1, 1}}, got)
	})

	t.Run("single cell torus has no candidates", func(t *testing.T) {
		g, _ := New(1, 1, Toroidal)

		require.Empty(t, g.Neighborhood(Coord{X: 0, Y: 0}, 1),
			"Every neighbor wraps back onto the center, which is excluded")
	})

	t.Run("zero radius is empty", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)

		require.Empty(t, g.Neighborhood(Coord{X: 1, Y: 1}, 0))
	})

	t.Run("huge radius covers the torus once", func(t *testing.T) {
		g, _ := New(5, 5, Toroidal)

		got := g.Neighborhood(Coord{X: 2, Y: 2}, 1_000_000_000)

		require.Len(t, got, 24)
		require.NotContains(t, got, Coord{X: 2, Y: 2})
	})

	t.Run("huge radius covers the clamped grid once", func(t *testing.T) {
		g, _ := New(3, 3, Clamped)

		got := g.Neighborhood(Coord{X: 0, Y: 0}, 1_000_000_000)

		require.Len(t, got, 8)
	})

	t.Run("matches a full scan of every offset", func(t *testing.T) {
		for _, topology := range []Topology{Clamped, Toroidal} {
			g, _ := New(5, 4, topology)
			for radius := 1; radius <= 9; radius++ {
				for _, c := range []Coord{{0, 0}, {2, 1}, {4, 3}} {
					require.Equal(t, fullScan(g, c, radius), g.Neighborhood(c, radius),
						"%s grid, radius %d around %v", topology, radius, c)
				}
			}
		}
	})
}

// fullScan walks every offset up to radius, the slow way.
func fullScan(g *Grid, c Coord, radius int) []Coord {
	seen := map[Coord]bool{}
	var out []Coord
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			n := Coord{X: c.X + dx, Y: c.Y + dy}
			if g.Topology() == Toroidal {
				n = Coord{X: wrap(n.X, g.Width()), Y: wrap(n.Y, g.Height())}
			} else if !g.Contains(n) {
				continue
			}
			if n == c || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func TestEach(t *testing.T) {
	g, _ := New(3, 3, Clamped)
	require.NoError(t, g.Place(3, Coord{X: 2, Y: 0}))
	require.NoError(t, g.Place(1, Coord{X: 0, Y: 1}))
	require.NoError(t, g.Place(2, Coord{X: 0, Y: 1}))

	var cells []Coord
	var ids [][]int
	g.Each(func(c Coord, occupants []int) {
		cells = append(cells, c)
		ids = append(ids, occupants)
	})

	require.Equal(t, []Coord{{2, 0}, {0, 1}}, cells, "Cells should be visited row by row")
	require.Equal(t, [][]int{{3}, {1, 2}}, ids)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
