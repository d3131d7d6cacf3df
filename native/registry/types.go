package registry

import "math/big"

// Profile captures the on-platform identity of a creator. One profile per
// address, keyed by the registering address, never deleted.
type Profile struct {
	Address           [20]byte `json:"address"`
	Username          string   `json:"username"`
	Bio               string   `json:"bio"`
	AvatarURL         string   `json:"avatarUrl"`
	Category          string   `json:"category"`
	Verified          bool     `json:"verified"`
	ReputationScore   uint64   `json:"reputationScore"`
	TotalContent      uint64   `json:"totalContent"`
	TotalRevenue      *big.Int `json:"totalRevenue"`
	RegisteredAt      int64    `json:"registeredAt"`
	VerificationStake *big.Int `json:"verificationStake"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	if p.TotalRevenue != nil {
		clone.TotalRevenue = new(big.Int).Set(p.TotalRevenue)
	}
	if p.VerificationStake != nil {
		clone.VerificationStake = new(big.Int).Set(p.VerificationStake)
	}
	return &clone
}

// Content is a catalog entry published by a creator. Title, description,
// hash, and price are immutable after creation; only the active flag and the
// access metrics change.
type Content struct {
	Creator     [20]byte `json:"creator"`
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hash        [32]byte `json:"hash"`
	Price       *big.Int `json:"price"`
	Active      bool     `json:"active"`
	AccessCount uint64   `json:"accessCount"`
	Revenue     *big.Int `json:"revenue"`
}

// Clone returns a deep copy of the content record.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Price != nil {
		clone.Price = new(big.Int).Set(c.Price)
	}
	if c.Revenue != nil {
		clone.Revenue = new(big.Int).Set(c.Revenue)
	}
	return &clone
}

// Counters aggregates the module-wide sequence state. Badge ids are global
// and allocated from 1; a badge is never reassigned or burned.
type Counters struct {
	TotalCreators uint64 `json:"totalCreators"`
	LastBadgeID   uint64 `json:"lastBadgeId"`
}
