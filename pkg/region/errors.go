package region

import "errors"

var (
	ErrUnknownRegion = errors.New("unknown region")
	ErrUnknownNode   = errors.New("unknown node")
	ErrZeroDiagonal  = errors.New("zero Jacobian diagonal")
)
