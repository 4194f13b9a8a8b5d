package world

import (
	"math"

	"github.com/tgarena/survivor/internal/vmath"
)

// Grid is a uniform-cell spatial hash used as the broadphase for
// bullet-zombie collisions. It is rebuilt every step; entries keep
// insertion order inside a cell so queries are reproducible.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]uint64
	maxR     float64
}

type cellKey struct {
	cx int32
	cy int32
}

func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]uint64),
	}
}

func (g *Grid) cell(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

// Clear empties every cell but keeps the allocations.
func (g *Grid) Clear() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
	g.maxR = 0
}

// Insert adds an entity whose centre is p and radius r.
func (g *Grid) Insert(id uint64, p vmath.Vec2, r float64) {
	k := cellKey{cx: g.cell(p.X), cy: g.cell(p.Y)}
	g.cells[k] = append(g.cells[k], id)
	if r > g.maxR {
		g.maxR = r
	}
}

// Query appends to dst every id whose cell overlaps the square of half-size
// reach (plus the largest inserted radius) around p. Callers do the exact
// distance test.
func (g *Grid) Query(dst []uint64, p vmath.Vec2, reach float64) []uint64 {
	reach += g.maxR
	x0, x1 := g.cell(p.X-reach), g.cell(p.X+reach)
	y0, y1 := g.cell(p.Y-reach), g.cell(p.Y+reach)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			dst = append(dst, g.cells[cellKey{cx: cx, cy: cy}]...)
		}
	}
	return dst
}
