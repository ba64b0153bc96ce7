package storage

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// Field describes one member of a cell type: where it lives inside the
// cell, what type its elements have and how many of them there are. It is
// resolved once and reused for every copy.
//
// A member of array type [N]E has Type E and Arity N; any other member has
// Arity 1.
type Field struct {
	Name   string
	Index  []int
	Offset uintptr
	Type   reflect.Type
	Arity  int
}

// FieldByName resolves a member of C. Nested members are addressed with a
// dotted path such as "Pos.X"; promoted fields of embedded structs resolve
// as usual. Only exported members can be bound.
func FieldByName[C any](name string) (Field, error) {
	t := reflect.TypeFor[C]()
	if t.Kind() != reflect.Struct {
		return Field{}, fmt.Errorf("%w: %s is not a struct type", ErrUnknownMember, t)
	}

	f := Field{Name: name}
	cur := t
	for _, part := range strings.Split(name, ".") {
		if cur.Kind() != reflect.Struct {
			return Field{}, fmt.Errorf("%w: %q of %s: %s is not a struct", ErrUnknownMember, name, t, cur)
		}
		sf, ok := cur.FieldByName(part)
		if !ok {
			return Field{}, fmt.Errorf("%w: %q of %s", ErrUnknownMember, name, t)
		}
		if !sf.IsExported() {
			return Field{}, fmt.Errorf("%w: %q of %s is unexported", ErrUnknownMember, name, t)
		}
		off, ok := fieldOffset(cur, sf.Index)
		if !ok {
			return Field{}, fmt.Errorf("%w: %q of %s is promoted through a pointer", ErrUnknownMember, name, t)
		}
		f.Index = append(f.Index, sf.Index...)
		f.Offset += off
		cur = sf.Type
	}

	f.Type = cur
	f.Arity = 1
	if cur.Kind() == reflect.Array {
		f.Type = cur.Elem()
		f.Arity = cur.Len()
	}
	return f, nil
}

// fieldOffset sums the offsets along an index path through embedded
// structs. It fails if the path leaves the cell's own memory.
func fieldOffset(t reflect.Type, index []int) (uintptr, bool) {
	var off uintptr
	for _, i := range index {
		if t.Kind() != reflect.Struct {
			return 0, false
		}
		sf := t.Field(i)
		off += sf.Offset
		t = sf.Type
	}
	return off, true
}

// memberSlot returns a pointer to slot j of the member f inside cell.
// The caller guarantees that f.Type is the reflect type of M.
func memberSlot[C, M any](cell *C, f Field, j int) *M {
	var zero M
	base := unsafe.Add(unsafe.Pointer(cell), f.Offset)
	return (*M)(unsafe.Add(base, uintptr(j)*unsafe.Sizeof(zero)))
}
