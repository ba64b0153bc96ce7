// Package storage holds the grid contract, the concrete grid layouts,
// the filter/selector mechanism for typed member access, and the patch
// providers used for ghost-zone synchronization.
//
// # Grids
//
// GridBase is the only interface exposed to writers and steerers. Bulk
// member access goes through SaveMember/LoadMember, which pick a
// layout-specific implementation when the grid provides one (SoAGrid) and
// otherwise move whole cells streak by streak.
//
// # Errors
//
// Type mismatches return ErrTypeMismatch, unsupported filter directions
// ErrUnsupportedDirection, and patch protocol violations ErrNoNanoStep or
// a *NanoStepError. None of them are retried.
package storage

import (
	"fmt"
	"reflect"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// GridBase is the contract every grid layout implements.
type GridBase[C any] interface {
	Set(c geometry.Coord, cell C)
	// SetStreak writes len(cells) >= s.Length() cells along s.
	SetStreak(s geometry.Streak, cells []C)
	Get(c geometry.Coord) C
	// GetStreak reads s.Length() cells into cells.
	GetStreak(s geometry.Streak, cells []C)
	SetEdge(cell C)
	Edge() C
	BoundingBox() geometry.CoordBox
}

// MemberSaver is implemented by grids with a faster layout-specific way of
// extracting members than reading whole cells.
type MemberSaver[C any] interface {
	SaveMember(target any, targetLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error
}

// MemberLoader is the counterpart of MemberSaver.
type MemberLoader[C any] interface {
	LoadMember(source any, sourceLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error
}

// Dimensions returns the extent of g's bounding box.
func Dimensions[C any](g GridBase[C]) geometry.Coord {
	return g.BoundingBox().Dimensions
}

// SaveMember extracts the selected member of every cell in region into
// target, in region iteration order. target must hold
// region.Size()*selector.Arity() values. Fails with ErrTypeMismatch if the
// selector's external type is not E.
func SaveMember[E, C any](g GridBase[C], target []E, targetLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	if !CheckTypeID[E](selector) {
		return fmt.Errorf("%w: cannot save member as selector %q was created for type %s, not %v",
			ErrTypeMismatch, selector.Name(), selector.TypeName(), reflect.TypeFor[E]())
	}
	return SaveMemberUnchecked(g, target, targetLocation, selector, region)
}

// SaveMemberUnchecked is SaveMember for callers that only hold a
// type-erased buffer. The selector check is skipped; the filter still
// rejects a buffer of the wrong type.
func SaveMemberUnchecked[C any](g GridBase[C], target any, targetLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	if saver, ok := g.(MemberSaver[C]); ok {
		return saver.SaveMember(target, targetLocation, selector, region)
	}
	return saveMemberByCells(g, target, targetLocation, selector, region)
}

// LoadMember writes the selected member of every cell in region from
// source, in region iteration order. Fails with ErrTypeMismatch if the
// selector's external type is not E.
func LoadMember[E, C any](g GridBase[C], source []E, sourceLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	if !CheckTypeID[E](selector) {
		return fmt.Errorf("%w: cannot load member as selector %q was created for type %s, not %v",
			ErrTypeMismatch, selector.Name(), selector.TypeName(), reflect.TypeFor[E]())
	}
	return LoadMemberUnchecked(g, source, sourceLocation, selector, region)
}

// LoadMemberUnchecked is LoadMember without the selector check.
func LoadMemberUnchecked[C any](g GridBase[C], source any, sourceLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	if loader, ok := g.(MemberLoader[C]); ok {
		return loader.LoadMember(source, sourceLocation, selector, region)
	}
	return loadMemberByCells(g, source, sourceLocation, selector, region)
}

func saveMemberByCells[C any](g GridBase[C], target any, targetLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	arity := selector.Arity()
	if err := checkBufferLen(target, region.Size()*arity, "target"); err != nil {
		return err
	}
	var buf []C
	offset := 0
	for _, s := range region.Streaks() {
		n := s.Length()
		buf = resize(buf, n)
		g.GetStreak(s, buf)
		if err := selector.CopyMemberOut(buf, Host, subSlice(target, offset*arity), targetLocation, n); err != nil {
			return err
		}
		offset += n
	}
	return nil
}

func loadMemberByCells[C any](g GridBase[C], source any, sourceLocation MemoryLocation, selector *Selector[C], region *geometry.Region) error {
	arity := selector.Arity()
	if err := checkBufferLen(source, region.Size()*arity, "source"); err != nil {
		return err
	}
	var buf []C
	offset := 0
	for _, s := range region.Streaks() {
		n := s.Length()
		buf = resize(buf, n)
		g.GetStreak(s, buf)
		if err := selector.CopyMemberIn(subSlice(source, offset*arity), sourceLocation, buf, Host, n); err != nil {
			return err
		}
		g.SetStreak(s, buf)
		offset += n
	}
	return nil
}

// Equal reports whether a and b have equal edges, equal bounding boxes
// and equal cells at every coordinate of the bounding box. O(volume).
func Equal[C comparable](a, b GridBase[C]) bool {
	return EqualFunc(a, b, func(x, y C) bool { return x == y })
}

// EqualFunc is Equal with a custom cell comparison.
func EqualFunc[C any](a, b GridBase[C], eq func(x, y C) bool) bool {
	if !eq(a.Edge(), b.Edge()) {
		return false
	}
	box := a.BoundingBox()
	if box != b.BoundingBox() {
		return false
	}
	for c := range box.All() {
		if !eq(a.Get(c), b.Get(c)) {
			return false
		}
	}
	return true
}

// checkBufferLen verifies that buf is a slice with at least n elements.
func checkBufferLen(buf any, n int, what string) error {
	v := reflect.ValueOf(buf)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("%w: %s buffer is %T, not a slice", ErrTypeMismatch, what, buf)
	}
	if v.Len() < n {
		return fmt.Errorf("%w: %s holds %d elements, need %d", ErrBufferTooSmall, what, v.Len(), n)
	}
	return nil
}

// subSlice returns buf[offset:] for a type-erased slice.
func subSlice(buf any, offset int) any {
	if offset == 0 {
		return buf
	}
	v := reflect.ValueOf(buf)
	return v.Slice(offset, v.Len()).Interface()
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
