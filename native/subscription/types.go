package subscription

import "math/big"

// Tier is a creator-defined recurring access level. Level is derived from the
// monthly price band, not chosen by the creator.
type Tier struct {
	Creator            [20]byte `json:"creator"`
	Name               string   `json:"name"`
	Level              uint8    `json:"level"`
	MonthlyPrice       *big.Int `json:"monthlyPrice"`
	Description        string   `json:"description"`
	MaxSubscribers     uint64   `json:"maxSubscribers"`
	CurrentSubscribers uint64   `json:"currentSubscribers"`
	Active             bool     `json:"active"`
	CreatedAt          int64    `json:"createdAt"`
}

// Clone returns a deep copy of the tier.
func (t *Tier) Clone() *Tier {
	if t == nil {
		return nil
	}
	clone := *t
	if t.MonthlyPrice != nil {
		clone.MonthlyPrice = new(big.Int).Set(t.MonthlyPrice)
	}
	return &clone
}

// Subscription records one subscriber's standing with a creator. Price is a
// snapshot of the tier's monthly price at the time of subscribing so later
// tier edits never reprice an existing subscription.
type Subscription struct {
	Subscriber   [20]byte `json:"subscriber"`
	Creator      [20]byte `json:"creator"`
	TierName     string   `json:"tierName"`
	TierLevel    uint8    `json:"tierLevel"`
	MonthlyPrice *big.Int `json:"monthlyPrice"`
	Active       bool     `json:"active"`
	AutoRenew    bool     `json:"autoRenew"`
	Referrer     [20]byte `json:"referrer"`
	StartedAt    int64    `json:"startedAt"`
}

// Clone returns a deep copy of the subscription.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	clone := *s
	if s.MonthlyPrice != nil {
		clone.MonthlyPrice = new(big.Int).Set(s.MonthlyPrice)
	}
	return &clone
}

// CreatorStats aggregates a creator's subscription business. TotalSubscribers
// counts lifetime subscriptions and never decreases on cancellation.
type CreatorStats struct {
	TotalSubscribers  uint64   `json:"totalSubscribers"`
	ActiveSubscribers uint64   `json:"activeSubscribers"`
	TotalRevenue      *big.Int `json:"totalRevenue"`
	TiersCreated      uint64   `json:"tiersCreated"`
}

// Clone returns a deep copy of the stats row.
func (s *CreatorStats) Clone() *CreatorStats {
	if s == nil {
		return nil
	}
	clone := *s
	if s.TotalRevenue != nil {
		clone.TotalRevenue = new(big.Int).Set(s.TotalRevenue)
	}
	return &clone
}

// ReferralStats tracks a referrer's cumulative earnings.
type ReferralStats struct {
	Referrals uint64   `json:"referrals"`
	Earned    *big.Int `json:"earned"`
}

// Clone returns a deep copy of the referral row.
func (s *ReferralStats) Clone() *ReferralStats {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Earned != nil {
		clone.Earned = new(big.Int).Set(s.Earned)
	}
	return &clone
}
