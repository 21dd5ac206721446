package grid

import "errors"

var (
	ErrGridNotFound      = errors.New("grid not found")
	ErrDuplicateCode     = errors.New("duplicate grid code")
	ErrUnknownSupplyLine = errors.New("unknown supply line")
	ErrVersionConflict   = errors.New("grid was modified concurrently")
)
