package storage

import (
	"fmt"
	"reflect"
)

// Selector binds a member of C, a human-readable name and a Filter. It is
// created once per member of interest and reused for every bulk copy.
type Selector[C any] struct {
	member Field
	name   string
	filter Filter[C]
}

// NewSelector resolves member on C and binds it to filter. It fails with
// ErrUnknownMember if the member does not exist and with ErrTypeMismatch
// if the filter was built for a different member type or arity.
func NewSelector[C any](member, name string, filter Filter[C]) (*Selector[C], error) {
	if filter == nil {
		panic("NewSelector: filter is nil")
	}
	f, err := FieldByName[C](member)
	if err != nil {
		return nil, err
	}
	if f.Type != filter.MemberType() || f.Arity != filter.Arity() {
		return nil, fmt.Errorf("%w: member %q is [%d]%v, filter expects [%d]%v",
			ErrTypeMismatch, member, f.Arity, f.Type, filter.Arity(), filter.MemberType())
	}
	if name == "" {
		name = member
	}
	return &Selector[C]{member: f, name: name, filter: filter}, nil
}

// NewDefaultSelector binds member to an identity filter. M is the member
// type, or the element type for array members.
func NewDefaultSelector[C, M any](member string) (*Selector[C], error) {
	f, err := FieldByName[C](member)
	if err != nil {
		return nil, err
	}
	return NewSelector[C](member, member, NewDefaultFilter[C, M](f.Arity))
}

// MustSelector is like NewSelector but panics on error. Intended for
// package-level selector variables.
func MustSelector[C any](member, name string, filter Filter[C]) *Selector[C] {
	s, err := NewSelector(member, name, filter)
	if err != nil {
		panic(fmt.Sprintf("MustSelector: %v", err))
	}
	return s
}

// CheckTypeID reports whether the selector's external type is E.
func CheckTypeID[E, C any](s *Selector[C]) bool {
	return s.CheckExternalType(reflect.TypeFor[E]())
}

func (s *Selector[C]) Name() string      { return s.name }
func (s *Selector[C]) Member() Field     { return s.member }
func (s *Selector[C]) Filter() Filter[C] { return s.filter }
func (s *Selector[C]) Arity() int        { return s.filter.Arity() }
func (s *Selector[C]) SizeOf() uintptr   { return s.filter.SizeOf() }
func (s *Selector[C]) TypeName() string  { return s.filter.TypeName() }

// CheckExternalType reports whether t is the external type of the bound
// filter.
func (s *Selector[C]) CheckExternalType(t reflect.Type) bool {
	return s.filter.CheckExternalType(t)
}

// CopyMemberIn writes num external values into the selected member of
// the first num cells of target.
func (s *Selector[C]) CopyMemberIn(source any, sourceLocation MemoryLocation, target []C, targetLocation MemoryLocation, num int) error {
	return s.filter.CopyMemberIn(source, sourceLocation, target, targetLocation, num, s.member)
}

// CopyMemberOut extracts the selected member of the first num cells of
// source.
func (s *Selector[C]) CopyMemberOut(source []C, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num int) error {
	return s.filter.CopyMemberOut(source, sourceLocation, target, targetLocation, num, s.member)
}

// CopyStreakIn writes num external values into struct-of-arrays member
// storage.
func (s *Selector[C]) CopyStreakIn(source any, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num, stride int) error {
	return s.filter.CopyStreakIn(source, sourceLocation, target, targetLocation, num, stride)
}

// CopyStreakOut extracts num values from struct-of-arrays member storage.
func (s *Selector[C]) CopyStreakOut(source any, sourceLocation MemoryLocation, target any, targetLocation MemoryLocation, num, stride int) error {
	return s.filter.CopyStreakOut(source, sourceLocation, target, targetLocation, num, stride)
}

func (s *Selector[C]) String() string {
	return fmt.Sprintf("Selector(%s: %s -> %s x%d)", s.name, s.member.Type, s.filter.TypeName(), s.filter.Arity())
}
