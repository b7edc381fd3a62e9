package models

import "errors"

var (
	// ErrDuplicateComponent is returned by Add when the member is already held.
	// It is a soft failure: nothing is mutated.
	ErrDuplicateComponent = errors.New("entity already has component")
	// ErrMissingComponent is returned by Remove when the member is not held.
	ErrMissingComponent = errors.New("entity does not have component")
	// ErrUnhashableMember is returned for members that cannot be compared by identity.
	ErrUnhashableMember = errors.New("component is not comparable")
	ErrNilComponent     = errors.New("nil component")
	ErrNilKind          = errors.New("leaf has no kind")
)
