package feeders

import "errors"

var (
	ErrInvalidStructure = errors.New("structure must be a non-nil struct pointer")
	ErrEnvConversion    = errors.New("cannot convert environment value")
)
