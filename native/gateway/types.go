package gateway

import "math/big"

// AccessToken grants one purchaser access to one creator content item until
// revoked. Token ids are global and sequential starting at 0.
type AccessToken struct {
	ID          uint64   `json:"id"`
	Purchaser   [20]byte `json:"purchaser"`
	Creator     [20]byte `json:"creator"`
	ContentID   uint64   `json:"contentId"`
	Active      bool     `json:"active"`
	Price       *big.Int `json:"price"`
	PurchasedAt int64    `json:"purchasedAt"`
}

// Clone returns a deep copy of the token.
func (t *AccessToken) Clone() *AccessToken {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Price != nil {
		clone.Price = new(big.Int).Set(t.Price)
	}
	return &clone
}

// AccessGrant indexes an access token by (purchaser, creator, content) for
// constant-time duplicate detection and access lookups.
type AccessGrant struct {
	Purchaser [20]byte `json:"purchaser"`
	Creator   [20]byte `json:"creator"`
	ContentID uint64   `json:"contentId"`
	TokenID   uint64   `json:"tokenId"`
	GrantedAt int64    `json:"grantedAt"`
}

// Transaction is an append-only ledger row for a settled purchase or batch.
// Ids are global and sequential starting at 0.
type Transaction struct {
	ID         uint64   `json:"id"`
	Buyer      [20]byte `json:"buyer"`
	Creator    [20]byte `json:"creator"`
	ContentIDs []uint64 `json:"contentIds"`
	Total      *big.Int `json:"total"`
	IsBatch    bool     `json:"isBatch"`
	Timestamp  int64    `json:"timestamp"`
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	clone.ContentIDs = append([]uint64(nil), t.ContentIDs...)
	if t.Total != nil {
		clone.Total = new(big.Int).Set(t.Total)
	}
	return &clone
}

// Bundle groups two or more content items at a discounted aggregate price.
// Bundle ids are sequential per creator starting at 1. Bundles are only ever
// deactivated, never removed or reactivated.
type Bundle struct {
	Creator     [20]byte `json:"creator"`
	ID          uint64   `json:"id"`
	ContentIDs  []uint64 `json:"contentIds"`
	Price       *big.Int `json:"price"`
	DiscountBps uint64   `json:"discountBps"`
	Active      bool     `json:"active"`
}

// Clone returns a deep copy of the bundle.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	clone := *b
	clone.ContentIDs = append([]uint64(nil), b.ContentIDs...)
	if b.Price != nil {
		clone.Price = new(big.Int).Set(b.Price)
	}
	return &clone
}

// Gift is a pending transfer of content access. The price is escrowed when
// the gift is sent and settled to the creator when claimed. Gift ids are
// sequential per sender starting at 1.
type Gift struct {
	Sender    [20]byte `json:"sender"`
	Recipient [20]byte `json:"recipient"`
	ID        uint64   `json:"id"`
	Creator   [20]byte `json:"creator"`
	ContentID uint64   `json:"contentId"`
	Price     *big.Int `json:"price"`
	Claimed   bool     `json:"claimed"`
	SentAt    int64    `json:"sentAt"`
}

// Clone returns a deep copy of the gift.
func (g *Gift) Clone() *Gift {
	if g == nil {
		return nil
	}
	clone := *g
	if g.Price != nil {
		clone.Price = new(big.Int).Set(g.Price)
	}
	return &clone
}

// Stats aggregates gateway-wide counters. Sequence counters advance exactly
// once per successful creating operation.
type Stats struct {
	TotalTransactions uint64   `json:"totalTransactions"`
	TotalVolume       *big.Int `json:"totalVolume"`
	NextTokenID       uint64   `json:"nextTokenId"`
	NextTransactionID uint64   `json:"nextTransactionId"`
}

// Clone returns a deep copy of the stats.
func (s *Stats) Clone() *Stats {
	if s == nil {
		return nil
	}
	clone := *s
	if s.TotalVolume != nil {
		clone.TotalVolume = new(big.Int).Set(s.TotalVolume)
	}
	return &clone
}

// CreatorStats tracks per-creator payment aggregates.
type CreatorStats struct {
	Transactions uint64   `json:"transactions"`
	Revenue      *big.Int `json:"revenue"`
	ContentSold  uint64   `json:"contentSold"`
	LastBundleID uint64   `json:"lastBundleId"`
}

// Clone returns a deep copy of the creator stats.
func (s *CreatorStats) Clone() *CreatorStats {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Revenue != nil {
		clone.Revenue = new(big.Int).Set(s.Revenue)
	}
	return &clone
}

// UserStats tracks per-buyer aggregates and the sender-scoped gift sequence.
type UserStats struct {
	Transactions uint64 `json:"transactions"`
	LastGiftID   uint64 `json:"lastGiftId"`
}
