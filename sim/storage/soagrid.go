package storage

import (
	"fmt"
	"reflect"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// SoAGrid stores every top-level member of C in its own column
// (struct-of-arrays). Array members [N]E are stored as N consecutive
// sub-columns of length volume, so slot j of cell i lives at
// i + j*volume. Coordinates outside the box read as the edge cell.
//
// Cells are assembled and disassembled by reflection, which makes single
// cell access slower than DenseGrid; bulk member I/O on top-level members
// bypasses the cells entirely.
type SoAGrid[C any] struct {
	box     geometry.CoordBox
	volume  int
	columns []reflect.Value
	arities []int
	edge    C
}

// NewSoAGrid allocates a grid for box with every cell set to defaultCell.
// Panics if C is not a struct with only exported fields.
func NewSoAGrid[C any](box geometry.CoordBox, defaultCell, edge C) *SoAGrid[C] {
	t := reflect.TypeFor[C]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("NewSoAGrid: %s is not a struct type", t))
	}
	volume := box.Size()
	g := &SoAGrid[C]{box: box, volume: volume, edge: edge}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			panic(fmt.Sprintf("NewSoAGrid: field %s of %s is unexported", sf.Name, t))
		}
		elem, arity := sf.Type, 1
		if elem.Kind() == reflect.Array {
			elem, arity = elem.Elem(), elem.Len()
		}
		g.columns = append(g.columns, reflect.MakeSlice(reflect.SliceOf(elem), arity*volume, arity*volume))
		g.arities = append(g.arities, arity)
	}
	for i := 0; i < volume; i++ {
		g.store(i, defaultCell)
	}
	return g
}

func (g *SoAGrid[C]) index(c geometry.Coord) (int, bool) {
	if !g.box.Inside(c) {
		return 0, false
	}
	rel := c.Sub(g.box.Origin)
	d := g.box.Dimensions
	return (rel.Z*d.Y+rel.Y)*d.X + rel.X, true
}

func (g *SoAGrid[C]) load(i int) C {
	var cell C
	v := reflect.ValueOf(&cell).Elem()
	for k, col := range g.columns {
		if g.arities[k] == 1 {
			v.Field(k).Set(col.Index(i))
			continue
		}
		f := v.Field(k)
		for j := 0; j < g.arities[k]; j++ {
			f.Index(j).Set(col.Index(i + j*g.volume))
		}
	}
	return cell
}

func (g *SoAGrid[C]) store(i int, cell C) {
	v := reflect.ValueOf(&cell).Elem()
	for k, col := range g.columns {
		if g.arities[k] == 1 {
			col.Index(i).Set(v.Field(k))
			continue
		}
		f := v.Field(k)
		for j := 0; j < g.arities[k]; j++ {
			col.Index(i + j*g.volume).Set(f.Index(j))
		}
	}
}

func (g *SoAGrid[C]) Get(c geometry.Coord) C {
	i, ok := g.index(c)
	if !ok {
		return g.edge
	}
	return g.load(i)
}

// Set writes cell at c. Writes outside the box are ignored.
func (g *SoAGrid[C]) Set(c geometry.Coord, cell C) {
	if i, ok := g.index(c); ok {
		g.store(i, cell)
	}
}

func (g *SoAGrid[C]) GetStreak(s geometry.Streak, cells []C) {
	i := 0
	for c := range s.Coords() {
		cells[i] = g.Get(c)
		i++
	}
}

func (g *SoAGrid[C]) SetStreak(s geometry.Streak, cells []C) {
	i := 0
	for c := range s.Coords() {
		g.Set(c, cells[i])
		i++
	}
}

func (g *SoAGrid[C]) SetEdge(cell C)                  { g.edge = cell }
func (g *SoAGrid[C]) Edge() C                         { return g.edge }
func (g *SoAGrid[C]) BoundingBox() geometry.CoordBox { return g.box }

// column returns the storage of the selected member if it can be accessed
// directly: a top-level member and a region that lies inside the box.
func (g *SoAGrid[C]) column(selector *Selector[C], region *geometry.Region) (reflect.Value, bool) {
	idx := selector.Member().Index
	if len(idx) != 1 || region.Empty() {
		return reflect.Value{}, false
	}
	bbox := region.BoundingBox()
	last := bbox.Origin.Add(bbox.Dimensions).Sub(geometry.Diagonal(1))
	if !g.box.Inside(bbox.Origin) || !g.box.Inside(last) {
		return reflect.Value{}, false
	}
	return g.columns[idx[0]], true
}

// SaveMember copies the selected member straight out of its column.
func (g *SoAGrid[C]) SaveMember(target any, targetLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	col, ok := g.column(selector, region)
	if !ok {
		return saveMemberByCells[C](g, target, targetLocation, selector, region)
	}
	arity := selector.Arity()
	if err := checkBufferLen(target, region.Size()*arity, "target"); err != nil {
		return err
	}
	offset := 0
	for _, s := range region.Streaks() {
		i, _ := g.index(s.Origin)
		src := col.Slice(i, col.Len()).Interface()
		if err := selector.CopyStreakOut(src, Host, subSlice(target, offset*arity), targetLocation, s.Length(), g.volume); err != nil {
			return err
		}
		offset += s.Length()
	}
	return nil
}

// LoadMember copies the selected member straight into its column.
func (g *SoAGrid[C]) LoadMember(source any, sourceLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	col, ok := g.column(selector, region)
	if !ok {
		return loadMemberByCells[C](g, source, sourceLocation, selector, region)
	}
	arity := selector.Arity()
	if err := checkBufferLen(source, region.Size()*arity, "source"); err != nil {
		return err
	}
	offset := 0
	for _, s := range region.Streaks() {
		i, _ := g.index(s.Origin)
		dst := col.Slice(i, col.Len()).Interface()
		if err := selector.CopyStreakIn(subSlice(source, offset*arity), sourceLocation, dst, Host, s.Length(), g.volume); err != nil {
			return err
		}
		offset += s.Length()
	}
	return nil
}
