package schema

import "errors"

var (
	ErrInvalidDocument  = errors.New("invalid template document")
	ErrDuplicateName    = errors.New("name already registered")
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownTemplate  = errors.New("unknown entity template")
	ErrTemplateCycle    = errors.New("entity template mixes itself in")
)
