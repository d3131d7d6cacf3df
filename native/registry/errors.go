package registry

import "errors"

var (
	ErrOwnerOnly         = errors.New("registry: owner only")
	ErrNotFound          = errors.New("registry: not found")
	ErrAlreadyExists     = errors.New("registry: already exists")
	ErrInvalidInput      = errors.New("registry: invalid input")
	ErrUnauthorized      = errors.New("registry: unauthorized")
	ErrInsufficientFunds = errors.New("registry: insufficient balance")
	ErrNilState          = errors.New("registry: state not configured")
	ErrTreasuryNotSet    = errors.New("registry: platform treasury not configured")
)
