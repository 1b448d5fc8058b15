package grid

import (
	"errors"
	"fmt"

	"battle/utils"
)

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the grid after normalization.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidSize is returned when a grid is created with non-positive dimensions.
	ErrInvalidSize = errors.New("grid dimensions must be positive")
	// ErrNotOccupant is returned when a move names a cell the id does not occupy.
	ErrNotOccupant = errors.New("id does not occupy cell")
)

type Topology int

const (
	Clamped Topology = iota
	Toroidal
)

func (t Topology) String() string {
	switch t {
	case Clamped:
		return "clamped"
	case Toroidal:
		return "toroidal"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// Coord is a cell coordinate, X in [0,width) and Y in [0,height).
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid is the spatial index of a simulation: which agent ids occupy which cell.
// Several agents may share a cell. Grid is not safe for concurrent mutation.
type Grid struct {
	width    int
	height   int
	topology Topology
	cells    map[Coord]map[int]struct{}
}

// New creates an empty grid of the given size and topology.
func New(width, height int, topology Topology) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Grid{
		width:    width,
		height:   height,
		topology: topology,
		cells:    make(map[Coord]map[int]struct{}),
	}, nil
}

func (g *Grid) Width() int         { return g.width }
func (g *Grid) Height() int        { return g.height }
func (g *Grid) Topology() Topology { return g.topology }

// Contains reports whether c is a valid cell without any wrapping.
func (g *Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// Normalize wraps c onto the torus for toroidal grids. Clamped grids only
// accept coordinates that are already inside.
func (g *Grid) Normalize(c Coord) (Coord, error) {
	if g.topology == Toroidal {
		return Coord{X: wrap(c.X, g.width), Y: wrap(c.Y, g.height)}, nil
	}
	if !g.Contains(c) {
		return c, fmt.Errorf("%w: %v on %dx%d grid", ErrOutOfBounds, c, g.width, g.height)
	}
	return c, nil
}

// Place registers id at c.
func (g *Grid) Place(id int, c Coord) error {
	c, err := g.Normalize(c)
	if err != nil {
		return err
	}
	cell, ok := g.cells[c]
	if !ok {
		cell = make(map[int]struct{})
		g.cells[c] = cell
	}
	cell[id] = struct{}{}
	return nil
}

// Remove deregisters id at c. Removing an absent id is a no-op; the return
// value reports whether an entry was actually removed.
func (g *Grid) Remove(id int, c Coord) bool {
	c, err := g.Normalize(c)
	if err != nil {
		return false
	}
	cell, ok := g.cells[c]
	if !ok {
		return false
	}
	if _, ok := cell[id]; !ok {
		return false
	}
	delete(cell, id)
	if len(cell) == 0 {
		delete(g.cells, c)
	}
	return true
}

// Move relocates id from one cell to another. Both cells are checked before
// anything is mutated, so a failed move leaves the grid unchanged.
func (g *Grid) Move(id int, from, to Coord) error {
	to, err := g.Normalize(to)
	if err != nil {
		return err
	}
	from, err = g.Normalize(from)
	if err != nil {
		return err
	}
	if _, ok := g.cells[from][id]; !ok {
		return fmt.Errorf("%w: %d at %v", ErrNotOccupant, id, from)
	}
	g.Remove(id, from)
	return g.Place(id, to)
}

// Occupants returns the ids at c in ascending order. The slice is a copy.
func (g *Grid) Occupants(c Coord) []int {
	c, err := g.Normalize(c)
	if err != nil {
		return nil
	}
	return utils.SortedKeys(g.cells[c])
}

// Neighborhood returns every cell within Chebyshev distance radius of c,
// excluding c itself, in row-major order. Cells outside a clamped grid are
// dropped; a toroidal grid wraps them and drops duplicates, including any
// that wrap back onto c. The work is bounded by the grid size, not radius.
func (g *Grid) Neighborhood(c Coord, radius int) []Coord {
	if radius < 1 {
		return nil
	}
	center, err := g.Normalize(c)
	if err != nil {
		return nil
	}

	minX, maxX := g.span(center.X, g.width, radius)
	minY, maxY := g.span(center.Y, g.height, radius)

	seen := make(map[Coord]bool)
	var out []Coord
	for dy := minY; dy <= maxY; dy++ {
		for dx := minX; dx <= maxX; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Coord{X: center.X + dx, Y: center.Y + dy}
			if g.topology == Toroidal {
				n = Coord{X: wrap(n.X, g.width), Y: wrap(n.Y, g.height)}
			} else if !g.Contains(n) {
				continue
			}
			if n == center || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Each calls fn for every occupied cell in row-major order.
func (g *Grid) Each(fn func(c Coord, ids []int)) {
	coords := make([]Coord, 0, len(g.cells))
	for c := range g.cells {
		coords = append(coords, c)
	}
	utils.SortFunc(coords, func(a, b Coord) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	for _, c := range coords {
		fn(c, utils.SortedKeys(g.cells[c]))
	}
}

// Len returns the total number of occupancy entries.
func (g *Grid) Len() int {
	n := 0
	for _, cell := range g.cells {
		n += len(cell)
	}
	return n
}

// span returns the offsets along one axis that can yield a new cell. On a
// torus any size consecutive offsets starting at -radius reach every
// wrapped position in first-seen order; later offsets only repeat them.
func (g *Grid) span(pos, size, radius int) (lo, hi int) {
	if g.topology == Toroidal {
		return -radius, min(radius, size-1-radius)
	}
	return max(-radius, -pos), min(radius, size-1-pos)
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
