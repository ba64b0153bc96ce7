package storage

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Filter converts between a cell member (element type M, Arity slots per
// cell) and an external element type E. Buffers are passed type-erased and
// asserted against the filter's own types, so a wrong buffer is reported as
// ErrTypeMismatch instead of being reinterpreted.
//
// Layouts:
//   - external buffers are dense: slot j of element i is at i*Arity+j.
//   - streak-side member buffers are struct-of-arrays: slot j of element i
//     is at i+j*stride.
//   - member-side cell buffers are whole cells; the member is located with
//     the Field descriptor.
type Filter[C any] interface {
	MemberType() reflect.Type
	ExternalType() reflect.Type
	Arity() int
	// SizeOf is the number of bytes one cell's member occupies in the
	// external representation.
	SizeOf() uintptr
	TypeName() string
	CheckExternalType(t reflect.Type) bool

	// CopyStreakIn copies num external values into SoA member storage.
	CopyStreakIn(source any, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num, stride int) error
	// CopyStreakOut copies num members from SoA member storage into
	// external values.
	CopyStreakOut(source any, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num, stride int) error
	// CopyMemberIn writes num external values into the member of num
	// consecutive cells.
	CopyMemberIn(source any, sourceLocation MemoryLocation, target []C, targetLocation MemoryLocation, num int, member Field) error
	// CopyMemberOut reads the member of num consecutive cells into
	// external values.
	CopyMemberOut(source []C, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num int, member Field) error
}

// ArrayFilter is the standard Filter implementation. load converts an
// external value to a member value, save does the reverse; a nil
// conversion marks that direction as unsupported.
type ArrayFilter[C, M, E any] struct {
	arity int
	load  func(E) M
	save  func(M) E
}

// NewArrayFilter creates a filter for members with the given arity.
// Panics if arity < 1.
func NewArrayFilter[C, M, E any](arity int, load func(E) M, save func(M) E) *ArrayFilter[C, M, E] {
	if arity < 1 {
		panic(fmt.Sprintf("NewArrayFilter: arity must be >= 1, got %d", arity))
	}
	return &ArrayFilter[C, M, E]{arity: arity, load: load, save: save}
}

// NewFilter creates a filter for scalar members.
func NewFilter[C, M, E any](load func(E) M, save func(M) E) *ArrayFilter[C, M, E] {
	return NewArrayFilter[C](1, load, save)
}

// NewOutFilter creates a one-way filter that can only extract members.
func NewOutFilter[C, M, E any](arity int, save func(M) E) *ArrayFilter[C, M, E] {
	return NewArrayFilter[C, M, E](arity, nil, save)
}

// NewDefaultFilter creates an identity filter, exposing the member
// unchanged.
func NewDefaultFilter[C, M any](arity int) *ArrayFilter[C, M, M] {
	identity := func(v M) M { return v }
	return NewArrayFilter[C](arity, identity, identity)
}

func (f *ArrayFilter[C, M, E]) MemberType() reflect.Type   { return reflect.TypeFor[M]() }
func (f *ArrayFilter[C, M, E]) ExternalType() reflect.Type { return reflect.TypeFor[E]() }
func (f *ArrayFilter[C, M, E]) Arity() int                 { return f.arity }
func (f *ArrayFilter[C, M, E]) TypeName() string           { return reflect.TypeFor[E]().String() }

func (f *ArrayFilter[C, M, E]) SizeOf() uintptr {
	var zero E
	return uintptr(f.arity) * unsafe.Sizeof(zero)
}

// CheckExternalType reports whether t is the filter's external type.
func (f *ArrayFilter[C, M, E]) CheckExternalType(t reflect.Type) bool {
	return t == reflect.TypeFor[E]()
}

func (f *ArrayFilter[C, M, E]) CopyStreakIn(source any, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num, stride int) error {
	if f.load == nil {
		return f.unsupported("streak-in")
	}
	if err := checkLocations(sourceLocation, targetLocation); err != nil {
		return err
	}
	src, err := asSlice[E](source, num*f.arity, "source")
	if err != nil {
		return err
	}
	dst, err := asSlice[M](target, soaLen(num, f.arity, stride), "target")
	if err != nil {
		return err
	}
	for i := 0; i < num; i++ {
		for j := 0; j < f.arity; j++ {
			dst[i+j*stride] = f.load(src[i*f.arity+j])
		}
	}
	return nil
}

func (f *ArrayFilter[C, M, E]) CopyStreakOut(source any, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num, stride int) error {
	if f.save == nil {
		return f.unsupported("streak-out")
	}
	if err := checkLocations(sourceLocation, targetLocation); err != nil {
		return err
	}
	src, err := asSlice[M](source, soaLen(num, f.arity, stride), "source")
	if err != nil {
		return err
	}
	dst, err := asSlice[E](target, num*f.arity, "target")
	if err != nil {
		return err
	}
	for i := 0; i < num; i++ {
		for j := 0; j < f.arity; j++ {
			dst[i*f.arity+j] = f.save(src[i+j*stride])
		}
	}
	return nil
}

func (f *ArrayFilter[C, M, E]) CopyMemberIn(source any, sourceLocation MemoryLocation, target []C, targetLocation MemoryLocation, num int, member Field) error {
	if f.load == nil {
		return f.unsupported("member-in")
	}
	if err := f.checkMember(member, sourceLocation, targetLocation); err != nil {
		return err
	}
	src, err := asSlice[E](source, num*f.arity, "source")
	if err != nil {
		return err
	}
	if len(target) < num {
		return fmt.Errorf("%w: target holds %d cells, need %d", ErrBufferTooSmall, len(target), num)
	}
	for i := 0; i < num; i++ {
		for j := 0; j < f.arity; j++ {
			*memberSlot[C, M](&target[i], member, j) = f.load(src[i*f.arity+j])
		}
	}
	return nil
}

func (f *ArrayFilter[C, M, E]) CopyMemberOut(source []C, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num int, member Field) error {
	if f.save == nil {
		return f.unsupported("member-out")
	}
	if err := f.checkMember(member, sourceLocation, targetLocation); err != nil {
		return err
	}
	if len(source) < num {
		return fmt.Errorf("%w: source holds %d cells, need %d", ErrBufferTooSmall, len(source), num)
	}
	dst, err := asSlice[E](target, num*f.arity, "target")
	if err != nil {
		return err
	}
	for i := 0; i < num; i++ {
		for j := 0; j < f.arity; j++ {
			dst[i*f.arity+j] = f.save(*memberSlot[C, M](&source[i], member, j))
		}
	}
	return nil
}

func (f *ArrayFilter[C, M, E]) checkMember(member Field, source, target MemoryLocation) error {
	if err := checkLocations(source, target); err != nil {
		return err
	}
	if member.Type != reflect.TypeFor[M]() || member.Arity != f.arity {
		return fmt.Errorf("%w: member %q is [%d]%v, filter expects [%d]%v",
			ErrTypeMismatch, member.Name, member.Arity, member.Type, f.arity, reflect.TypeFor[M]())
	}
	return nil
}

func (f *ArrayFilter[C, M, E]) unsupported(direction string) error {
	return fmt.Errorf("%w: %s on filter %v -> %v", ErrUnsupportedDirection, direction, reflect.TypeFor[M](), reflect.TypeFor[E]())
}

// asSlice asserts that buf is a []T with at least n elements.
func asSlice[T any](buf any, n int, what string) ([]T, error) {
	s, ok := buf.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: %s buffer is %T, want []%v", ErrTypeMismatch, what, buf, reflect.TypeFor[T]())
	}
	if len(s) < n {
		return nil, fmt.Errorf("%w: %s holds %d elements, need %d", ErrBufferTooSmall, what, len(s), n)
	}
	return s, nil
}

// soaLen is the minimum length of a struct-of-arrays buffer holding num
// elements of the given arity with the given stride.
func soaLen(num, arity, stride int) int {
	if num == 0 {
		return 0
	}
	if arity == 1 {
		return num
	}
	return (arity-1)*stride + num
}
