package subscription

import "errors"

var (
	ErrOwnerOnly           = errors.New("subscription: owner only")
	ErrNotFound            = errors.New("subscription: not found")
	ErrAlreadyExists       = errors.New("subscription: already exists")
	ErrInvalidInput        = errors.New("subscription: invalid input")
	ErrTierFull            = errors.New("subscription: tier at capacity")
	ErrSubscriptionExpired = errors.New("subscription: expired or missing")
	ErrInsufficientFunds   = errors.New("subscription: insufficient balance")
	ErrNilState            = errors.New("subscription: state not configured")
	ErrTreasuryNotSet      = errors.New("subscription: platform treasury not configured")
)
