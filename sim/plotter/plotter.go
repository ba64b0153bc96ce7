package plotter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// NewCellToColor returns a one-way filter mapping a numeric member of C to
// its palette color. The inbound directions fail with
// storage.ErrUnsupportedDirection.
func NewCellToColor[C any, M Number](palette *Palette[M]) *storage.ArrayFilter[C, M, color.RGBA] {
	return storage.NewOutFilter[C, M, color.RGBA](1, palette.Color)
}

// Painter receives filled rectangles.
type Painter interface {
	FillRect(r image.Rectangle, c color.RGBA)
}

// ImagePainter paints into an RGBA image.
type ImagePainter struct {
	Image *image.RGBA
}

// NewImagePainter allocates an image large enough for box with cells of
// cellDim pixels. Only the x and y axes are drawn.
func NewImagePainter(box geometry.CoordBox, cellDim image.Point) *ImagePainter {
	r := image.Rect(0, 0, box.Dimensions.X*cellDim.X, box.Dimensions.Y*cellDim.Y)
	return &ImagePainter{Image: image.NewRGBA(r)}
}

func (p *ImagePainter) FillRect(r image.Rectangle, c color.RGBA) {
	draw.Draw(p.Image, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// SimpleCellPlotter draws every cell as a solid rectangle in the color its
// selector yields.
type SimpleCellPlotter[C any] struct {
	selector *storage.Selector[C]
	cellDim  image.Point
}

// NewSimpleCellPlotter creates a plotter. The selector must produce
// color.RGBA values; cellDim is the size of one cell in pixels.
func NewSimpleCellPlotter[C any](selector *storage.Selector[C], cellDim image.Point) (*SimpleCellPlotter[C], error) {
	if !storage.CheckTypeID[color.RGBA](selector) {
		return nil, fmt.Errorf("%w: plotter needs a color.RGBA selector, %s yields %s",
			storage.ErrTypeMismatch, selector.Name(), selector.TypeName())
	}
	if cellDim.X <= 0 || cellDim.Y <= 0 {
		return nil, fmt.Errorf("cell dimensions must be positive, got %v", cellDim)
	}
	return &SimpleCellPlotter[C]{selector: selector, cellDim: cellDim}, nil
}

// CellDim returns the size of one cell in pixels.
func (p *SimpleCellPlotter[C]) CellDim() image.Point { return p.cellDim }

// PlotCell draws cell with its upper left corner at origin.
func (p *SimpleCellPlotter[C]) PlotCell(painter Painter, origin image.Point, cell C) error {
	var out [1]color.RGBA
	if err := p.selector.CopyMemberOut([]C{cell}, storage.Host, out[:], storage.Host, 1); err != nil {
		return err
	}
	painter.FillRect(image.Rectangle{Min: origin, Max: origin.Add(p.cellDim)}, out[0])
	return nil
}

// PlotGrid draws every cell of region relative to the grid's origin. The
// member is converted once per streak. Regions spanning several z layers
// are drawn layer by layer, later layers on top.
func PlotGrid[C any](grid storage.GridBase[C], region *geometry.Region, plotter *SimpleCellPlotter[C], painter Painter) error {
	origin := grid.BoundingBox().Origin
	var cells []C
	var colors []color.RGBA
	for _, s := range region.Streaks() {
		n := s.Length()
		if cap(cells) < n {
			cells = make([]C, n)
			colors = make([]color.RGBA, n)
		}
		cells, colors = cells[:n], colors[:n]
		grid.GetStreak(s, cells)
		if err := plotter.selector.CopyMemberOut(cells, storage.Host, colors, storage.Host, n); err != nil {
			return err
		}
		rel := s.Origin.Sub(origin)
		for i, c := range colors {
			at := image.Pt((rel.X+i)*plotter.cellDim.X, rel.Y*plotter.cellDim.Y)
			painter.FillRect(image.Rectangle{Min: at, Max: at.Add(plotter.cellDim)}, c)
		}
	}
	return nil
}
