package gateway

import "errors"

var (
	ErrOwnerOnly         = errors.New("gateway: owner only")
	ErrNotFound          = errors.New("gateway: not found")
	ErrInvalidInput      = errors.New("gateway: invalid input")
	ErrUnauthorized      = errors.New("gateway: unauthorized")
	ErrAlreadyAccessed   = errors.New("gateway: already accessed")
	ErrInsufficientFunds = errors.New("gateway: insufficient balance")
	ErrNilState          = errors.New("gateway: state not configured")
	ErrTreasuryNotSet    = errors.New("gateway: platform treasury not configured")
	ErrGiftVaultNotSet   = errors.New("gateway: gift vault not configured")
)
