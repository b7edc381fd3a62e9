package fields

import "errors"

var (
	ErrNoAttribute = errors.New("fields: no such attribute")
	ErrInvalidKind = errors.New("fields: kind must be non-nil and named")
	ErrKindExists  = errors.New("fields: kind already registered")
)
