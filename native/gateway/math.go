package gateway

import (
	"math/big"

	"stackstream/native/params"
)

// SplitPayment divides a gross price between the creator and the platform.
// The creator share truncates on integer division so any remainder settles
// to the treasury.
func SplitPayment(price *big.Int, creatorShareBps uint64) (creatorShare, platformShare *big.Int) {
	if price == nil || price.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}
	creatorShare = new(big.Int).Mul(price, new(big.Int).SetUint64(creatorShareBps))
	creatorShare = creatorShare.Div(creatorShare, big.NewInt(params.BpsDenominator))
	platformShare = new(big.Int).Sub(price, creatorShare)
	return creatorShare, platformShare
}

// BatchPrice computes the total for a batch of identically priced items. The
// batch discount is a step function: it applies in full once the item count
// reaches the threshold and not at all below it.
func BatchPrice(count uint64, unitPrice *big.Int, p params.Params) *big.Int {
	if unitPrice == nil || count == 0 {
		return big.NewInt(0)
	}
	total := new(big.Int).Mul(unitPrice, new(big.Int).SetUint64(count))
	if count < p.BatchDiscountMinItems {
		return total
	}
	discount := new(big.Int).Mul(total, new(big.Int).SetUint64(p.BatchDiscountBps))
	discount = discount.Div(discount, big.NewInt(params.BpsDenominator))
	return total.Sub(total, discount)
}
