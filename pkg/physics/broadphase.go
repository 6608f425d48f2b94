package physics

import (
	"math"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

type cell struct {
	X, Z int
}

// spatialGrid buckets static boxes by the ground cells their footprint
// covers. Static geometry only changes on rebuild, so the grid is updated
// incrementally on add and remove.
type spatialGrid struct {
	cells    map[cell][]BodyID
	cellSize float64
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	return &spatialGrid{
		cells:    make(map[cell][]BodyID),
		cellSize: cellSize,
	}
}

func (sg *spatialGrid) getCell(x, z float64) cell {
	return cell{
		X: int(math.Floor(x / sg.cellSize)),
		Z: int(math.Floor(z / sg.cellSize)),
	}
}

func (sg *spatialGrid) span(b geo.AABB) (cell, cell) {
	return sg.getCell(b.Min.X, b.Min.Z), sg.getCell(b.Max.X, b.Max.Z)
}

func (sg *spatialGrid) insert(id BodyID, b geo.AABB) {
	lo, hi := sg.span(b)
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			c := cell{X: x, Z: z}
			sg.cells[c] = append(sg.cells[c], id)
		}
	}
}

func (sg *spatialGrid) remove(id BodyID, b geo.AABB) {
	lo, hi := sg.span(b)
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			c := cell{X: x, Z: z}
			ids := sg.cells[c]
			for i, other := range ids {
				if other == id {
					ids = append(ids[:i], ids[i+1:]...)
					break
				}
			}
			if len(ids) == 0 {
				delete(sg.cells, c)
			} else {
				sg.cells[c] = ids
			}
		}
	}
}

// query returns the distinct ids whose cells overlap b.
func (sg *spatialGrid) query(b geo.AABB) []BodyID {
	lo, hi := sg.span(b)
	var out []BodyID
	seen := make(map[BodyID]bool)
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			for _, id := range sg.cells[cell{X: x, Z: z}] {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	}
	return out
}

func (sg *spatialGrid) len() int {
	return len(sg.cells)
}
