// Package plotter turns cell members into colors and draws grids into
// images. The member to color mapping is a one-way storage filter, so
// plotting goes through the same selector machinery as every other bulk
// member access.
package plotter

import (
	"image/color"
	"sort"
)

// Number is the constraint for members a Palette can map.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type stop struct {
	value float64
	color color.RGBA
}

// Palette maps values to colors by linear interpolation between stops.
// Values below the first stop or above the last one get that stop's
// color. An empty palette maps everything to transparent black.
type Palette[V Number] struct {
	stops []stop
}

// AddColor adds a stop. Adding a value twice replaces its color.
func (p *Palette[V]) AddColor(v V, c color.RGBA) *Palette[V] {
	s := stop{value: float64(v), color: c}
	i := sort.Search(len(p.stops), func(i int) bool { return p.stops[i].value >= s.value })
	if i < len(p.stops) && p.stops[i].value == s.value {
		p.stops[i] = s
		return p
	}
	p.stops = append(p.stops, stop{})
	copy(p.stops[i+1:], p.stops[i:])
	p.stops[i] = s
	return p
}

// Color returns the color for v.
func (p *Palette[V]) Color(v V) color.RGBA {
	if len(p.stops) == 0 {
		return color.RGBA{}
	}
	x := float64(v)
	if x <= p.stops[0].value {
		return p.stops[0].color
	}
	last := p.stops[len(p.stops)-1]
	if x >= last.value {
		return last.color
	}
	i := sort.Search(len(p.stops), func(i int) bool { return p.stops[i].value > x })
	lo, hi := p.stops[i-1], p.stops[i]
	return blend(lo.color, hi.color, (x-lo.value)/(hi.value-lo.value))
}

// Len returns the number of stops.
func (p *Palette[V]) Len() int { return len(p.stops) }

func blend(base, overlay color.RGBA, w float64) color.RGBA {
	if w <= 0 {
		return base
	}
	if w >= 1 {
		return overlay
	}
	inv := 1 - w
	mix := func(a, b uint8) uint8 { return uint8(float64(a)*inv + float64(b)*w + 0.5) }
	return color.RGBA{
		R: mix(base.R, overlay.R),
		G: mix(base.G, overlay.G),
		B: mix(base.B, overlay.B),
		A: mix(base.A, overlay.A),
	}
}
