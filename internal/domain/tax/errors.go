package tax

import "errors"

var (
	ErrNoBracket           = errors.New("no applicable tax bracket")
	ErrMissingDeduction    = errors.New("standard deduction not configured")
	ErrInvalidTable        = errors.New("invalid tax table")
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrRentUnavailable     = errors.New("rent data unavailable")
	ErrDataNotFound        = errors.New("tax data not found")
)
