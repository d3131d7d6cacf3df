package types

import "math/big"

// Account tracks the spendable balance for an address. Balances are kept in
// micro-STX, the smallest settlement unit.
type Account struct {
	Nonce      uint64   `json:"nonce"`
	BalanceSTX *big.Int `json:"balanceSTX"`
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.BalanceSTX != nil {
		clone.BalanceSTX = new(big.Int).Set(a.BalanceSTX)
	}
	return &clone
}
