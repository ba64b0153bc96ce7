package geometry

import (
	"iter"
	"slices"
)

// rowKey identifies one scanline of a region.
type rowKey struct {
	Y, Z int
}

func (k rowKey) less(o rowKey) bool {
	if k.Z != o.Z {
		return k.Z < o.Z
	}
	return k.Y < o.Y
}

// span is a half-open interval [start, end) on the x axis.
type span struct {
	start, end int
}

// Region is an ordered, deduplicated set of coordinates. Internally each
// scanline holds a sorted list of maximal, non-adjacent spans, so the
// streak decomposition is canonical: no two streaks on the same scanline
// could be merged.
//
// Size, bounding box, streak list and planes are cached and recomputed
// lazily after a mutation. A Region is not safe for concurrent mutation;
// concurrent readers must call Streaks or Planes once before sharing it so
// that the cache is warm.
type Region struct {
	rows map[rowKey][]span

	tainted     bool
	size        int
	boundingBox CoordBox
	streaks     []Streak
	planes      [][]Streak
}

// NewRegion returns an empty region.
func NewRegion() *Region {
	return &Region{rows: make(map[rowKey][]span)}
}

// RegionFromBox returns a region containing every coordinate of box.
func RegionFromBox(box CoordBox) *Region {
	r := NewRegion()
	r.InsertBox(box)
	return r
}

// Clone returns a deep copy of r.
func (r *Region) Clone() *Region {
	out := NewRegion()
	for k, spans := range r.rows {
		out.rows[k] = slices.Clone(spans)
	}
	out.tainted = true
	return out
}

// Insert adds a single coordinate.
func (r *Region) Insert(c Coord) {
	r.InsertStreak(Streak{Origin: c, EndX: c.X + 1})
}

// InsertStreak adds all coordinates of s, merging with touching or
// overlapping spans on the same scanline.
func (r *Region) InsertStreak(s Streak) {
	if s.Length() == 0 {
		return
	}
	r.ensure()
	k := rowKey{Y: s.Origin.Y, Z: s.Origin.Z}
	r.rows[k] = insertSpan(r.rows[k], span{start: s.Origin.X, end: s.EndX})
	r.tainted = true
}

// InsertBox adds all coordinates of box.
func (r *Region) InsertBox(box CoordBox) {
	for s := range box.Streaks() {
		r.InsertStreak(s)
	}
}

// RemoveStreak removes all coordinates of s that are in the region.
func (r *Region) RemoveStreak(s Streak) {
	if s.Length() == 0 || r.rows == nil {
		return
	}
	k := rowKey{Y: s.Origin.Y, Z: s.Origin.Z}
	spans, ok := r.rows[k]
	if !ok {
		return
	}
	spans = removeSpan(spans, span{start: s.Origin.X, end: s.EndX})
	if len(spans) == 0 {
		delete(r.rows, k)
	} else {
		r.rows[k] = spans
	}
	r.tainted = true
}

// Remove deletes a single coordinate.
func (r *Region) Remove(c Coord) {
	r.RemoveStreak(Streak{Origin: c, EndX: c.X + 1})
}

// Union adds all coordinates of o to r.
func (r *Region) Union(o *Region) {
	for _, s := range o.Streaks() {
		r.InsertStreak(s)
	}
}

// Subtract removes all coordinates of o from r.
func (r *Region) Subtract(o *Region) {
	for _, s := range o.Streaks() {
		r.RemoveStreak(s)
	}
}

// Intersect returns a new region holding the coordinates present in
// both r and o.
func (r *Region) Intersect(o *Region) *Region {
	out := NewRegion()
	for k, spans := range r.rows {
		other, ok := o.rows[k]
		if !ok {
			continue
		}
		for _, a := range spans {
			for _, b := range other {
				lo, hi := max(a.start, b.start), min(a.end, b.end)
				if lo < hi {
					out.InsertStreak(Streak{Origin: Coord{X: lo, Y: k.Y, Z: k.Z}, EndX: hi})
				}
			}
		}
	}
	return out
}

// Expand returns a new region grown by radius along the first dim axes,
// i.e. the union of r shifted by every offset of a Moore stencil.
func (r *Region) Expand(radius, dim int) *Region {
	out := NewRegion()
	ry, rz := 0, 0
	if dim > 1 {
		ry = radius
	}
	if dim > 2 {
		rz = radius
	}
	for _, s := range r.Streaks() {
		for dz := -rz; dz <= rz; dz++ {
			for dy := -ry; dy <= ry; dy++ {
				origin := Coord{X: s.Origin.X - radius, Y: s.Origin.Y + dy, Z: s.Origin.Z + dz}
				out.InsertStreak(Streak{Origin: origin, EndX: s.EndX + radius})
			}
		}
	}
	return out
}

// Contains reports whether c is in the region.
func (r *Region) Contains(c Coord) bool {
	spans := r.rows[rowKey{Y: c.Y, Z: c.Z}]
	_, found := slices.BinarySearchFunc(spans, c.X, func(s span, x int) int {
		switch {
		case s.end <= x:
			return -1
		case s.start > x:
			return 1
		default:
			return 0
		}
	})
	return found
}

// Empty reports whether the region holds no coordinates.
func (r *Region) Empty() bool {
	return len(r.rows) == 0
}

// Size returns the number of coordinates.
func (r *Region) Size() int {
	r.refresh()
	return r.size
}

// BoundingBox returns the smallest box containing the region. An empty
// region has a zero-sized box.
func (r *Region) BoundingBox() CoordBox {
	r.refresh()
	return r.boundingBox
}

// Streaks returns the canonical streak decomposition in strictly
// increasing scan order. The returned slice must not be modified.
func (r *Region) Streaks() []Streak {
	r.refresh()
	return r.streaks
}

// NumPlanes returns the number of planes. Streaks within one plane are
// never read by an update of another plane's streaks in the new-generation
// grid, so planes may be updated concurrently.
func (r *Region) NumPlanes() int {
	r.refresh()
	return len(r.planes)
}

// Plane returns the streaks of plane i.
func (r *Region) Plane(i int) []Streak {
	r.refresh()
	return r.planes[i]
}

// Planes returns all planes. Streaks are grouped by z when the bounding
// box is deeper than one layer, otherwise by y.
func (r *Region) Planes() [][]Streak {
	r.refresh()
	return r.planes
}

// Coords yields every coordinate in strictly increasing scan order.
func (r *Region) Coords() iter.Seq[Coord] {
	streaks := r.Streaks()
	return func(yield func(Coord) bool) {
		for _, s := range streaks {
			for c := range s.Coords() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Equal reports whether both regions hold the same coordinates.
func (r *Region) Equal(o *Region) bool {
	return slices.Equal(r.Streaks(), o.Streaks())
}

func (r *Region) ensure() {
	if r.rows == nil {
		r.rows = make(map[rowKey][]span)
	}
}

func (r *Region) refresh() {
	if !r.tainted && r.streaks != nil {
		return
	}
	r.tainted = false

	keys := make([]rowKey, 0, len(r.rows))
	for k := range r.rows {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b rowKey) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		default:
			return 0
		}
	})

	r.size = 0
	r.streaks = make([]Streak, 0, len(keys))
	var lo, hi Coord
	for i, k := range keys {
		for j, sp := range r.rows[k] {
			r.streaks = append(r.streaks, Streak{Origin: Coord{X: sp.start, Y: k.Y, Z: k.Z}, EndX: sp.end})
			r.size += sp.end - sp.start
			if i == 0 && j == 0 {
				lo = Coord{X: sp.start, Y: k.Y, Z: k.Z}
				hi = Coord{X: sp.end, Y: k.Y + 1, Z: k.Z + 1}
				continue
			}
			lo = Coord{X: min(lo.X, sp.start), Y: min(lo.Y, k.Y), Z: min(lo.Z, k.Z)}
			hi = Coord{X: max(hi.X, sp.end), Y: max(hi.Y, k.Y+1), Z: max(hi.Z, k.Z+1)}
		}
	}
	if len(r.streaks) == 0 {
		r.boundingBox = CoordBox{}
	} else {
		r.boundingBox = CoordBox{Origin: lo, Dimensions: hi.Sub(lo)}
	}

	r.planes = nil
	byZ := r.boundingBox.Dimensions.Z > 1
	for i := 0; i < len(r.streaks); {
		j := i + 1
		for j < len(r.streaks) && samePlane(r.streaks[i], r.streaks[j], byZ) {
			j++
		}
		r.planes = append(r.planes, r.streaks[i:j:j])
		i = j
	}
}

func samePlane(a, b Streak, byZ bool) bool {
	if byZ {
		return a.Origin.Z == b.Origin.Z
	}
	return a.Origin.Z == b.Origin.Z && a.Origin.Y == b.Origin.Y
}

// insertSpan merges s into the sorted, non-adjacent span list.
func insertSpan(spans []span, s span) []span {
	out := make([]span, 0, len(spans)+1)
	i := 0
	for ; i < len(spans) && spans[i].end < s.start; i++ {
		out = append(out, spans[i])
	}
	for ; i < len(spans) && spans[i].start <= s.end; i++ {
		s.start = min(s.start, spans[i].start)
		s.end = max(s.end, spans[i].end)
	}
	out = append(out, s)
	return append(out, spans[i:]...)
}

// removeSpan cuts s out of the sorted span list.
func removeSpan(spans []span, s span) []span {
	out := make([]span, 0, len(spans)+1)
	for _, sp := range spans {
		if sp.end <= s.start || sp.start >= s.end {
			out = append(out, sp)
			continue
		}
		if sp.start < s.start {
			out = append(out, span{start: sp.start, end: s.start})
		}
		if sp.end > s.end {
			out = append(out, span{start: s.end, end: sp.end})
		}
	}
	return out
}
