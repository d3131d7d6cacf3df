package gateway

import (
	"encoding/hex"
	"math/big"
	"time"

	"stackstream/core/events"
	"stackstream/core/types"
	"stackstream/native/params"
)

type engineState interface {
	GatewayTokenGet(id uint64) (*AccessToken, bool, error)
	GatewayTokenPut(token *AccessToken) error
	GatewayGrantGet(user, creator [20]byte, contentID uint64) (*AccessGrant, bool, error)
	GatewayGrantPut(grant *AccessGrant) error
	GatewayTransactionGet(id uint64) (*Transaction, bool, error)
	GatewayTransactionPut(tx *Transaction) error
	GatewayBundleGet(creator [20]byte, id uint64) (*Bundle, bool, error)
	GatewayBundlePut(bundle *Bundle) error
	GatewayGiftGet(sender, recipient [20]byte, id uint64) (*Gift, bool, error)
	GatewayGiftPut(gift *Gift) error
	GatewayStatsGet() (*Stats, error)
	GatewayStatsPut(stats *Stats) error
	GatewayCreatorStatsGet(creator [20]byte) (*CreatorStats, error)
	GatewayCreatorStatsPut(creator [20]byte, stats *CreatorStats) error
	GatewayUserStatsGet(user [20]byte) (*UserStats, error)
	GatewayUserStatsPut(user [20]byte, stats *UserStats) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine implements the micropayment gateway transitions: purchases, batches,
// bundles, gifts, and access-token management.
type Engine struct {
	state     engineState
	emitter   events.Emitter
	nowFn     func() int64
	params    params.Params
	owner     [20]byte
	treasury  [20]byte
	giftVault [20]byte
}

// NewEngine constructs a gateway engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
		params: params.Default(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetParams overrides the economic constants.
func (e *Engine) SetParams(p params.Params) { e.params = p }

// SetOwner configures the contract owner identity for admin operations.
func (e *Engine) SetOwner(addr [20]byte) { e.owner = addr }

// SetTreasury configures the platform treasury destination.
func (e *Engine) SetTreasury(addr [20]byte) { e.treasury = addr }

// SetGiftVault configures the holding account for unclaimed gift escrows.
func (e *Engine) SetGiftVault(addr [20]byte) { e.giftVault = addr }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{BalanceSTX: big.NewInt(0)}
	}
	if acc.BalanceSTX == nil {
		acc.BalanceSTX = big.NewInt(0)
	}
	return acc
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func (e *Engine) stats() (*Stats, error) {
	stats, err := e.state.GatewayStatsGet()
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &Stats{TotalVolume: big.NewInt(0)}
	}
	if stats.TotalVolume == nil {
		stats.TotalVolume = big.NewInt(0)
	}
	return stats, nil
}

func (e *Engine) creatorStats(creator [20]byte) (*CreatorStats, error) {
	stats, err := e.state.GatewayCreatorStatsGet(creator)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &CreatorStats{Revenue: big.NewInt(0)}
	}
	if stats.Revenue == nil {
		stats.Revenue = big.NewInt(0)
	}
	return stats, nil
}

func (e *Engine) userStats(user [20]byte) (*UserStats, error) {
	stats, err := e.state.GatewayUserStatsGet(user)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &UserStats{}
	}
	return stats, nil
}

// debit verifies the payer can cover the amount and moves it off their
// balance. Called only after every other validation has passed.
func (e *Engine) debit(payer [20]byte, amount *big.Int) error {
	acc, err := e.state.GetAccount(payer[:])
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	if acc.BalanceSTX.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	acc.BalanceSTX = new(big.Int).Sub(acc.BalanceSTX, amount)
	return e.state.PutAccount(payer[:], acc)
}

func (e *Engine) credit(payee [20]byte, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	acc, err := e.state.GetAccount(payee[:])
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	acc.BalanceSTX = new(big.Int).Add(acc.BalanceSTX, amount)
	return e.state.PutAccount(payee[:], acc)
}

// settle moves price from the payer and splits it between creator and
// treasury using the configured creator share.
func (e *Engine) settle(payer, creator [20]byte, price *big.Int) (*big.Int, error) {
	if isZeroAddress(e.treasury) {
		return nil, ErrTreasuryNotSet
	}
	creatorShare, platformShare := SplitPayment(price, e.params.CreatorShareBps)
	if err := e.debit(payer, price); err != nil {
		return nil, err
	}
	if err := e.credit(creator, creatorShare); err != nil {
		return nil, err
	}
	if err := e.credit(e.treasury, platformShare); err != nil {
		return nil, err
	}
	return creatorShare, nil
}

// priceInBand reports whether a content price sits inside the allowed band.
func (e *Engine) priceInBand(price *big.Int) bool {
	if price == nil {
		return false
	}
	min := new(big.Int).SetUint64(e.params.MinContentPrice)
	max := new(big.Int).SetUint64(e.params.MaxContentPrice)
	return price.Cmp(min) >= 0 && price.Cmp(max) <= 0
}

// recordTransaction appends a ledger row and bumps the global counters.
func (e *Engine) recordTransaction(stats *Stats, buyer, creator [20]byte, contentIDs []uint64, total *big.Int, isBatch bool) (uint64, error) {
	txID := stats.NextTransactionID
	tx := &Transaction{
		ID:         txID,
		Buyer:      buyer,
		Creator:    creator,
		ContentIDs: append([]uint64(nil), contentIDs...),
		Total:      new(big.Int).Set(total),
		IsBatch:    isBatch,
		Timestamp:  e.now(),
	}
	if err := e.state.GatewayTransactionPut(tx); err != nil {
		return 0, err
	}
	stats.NextTransactionID++
	stats.TotalTransactions++
	stats.TotalVolume = new(big.Int).Add(stats.TotalVolume, total)
	return txID, nil
}

// PurchaseContent settles a single content purchase and issues an access
// token plus its grant index entry.
func (e *Engine) PurchaseContent(buyer, creator [20]byte, contentID uint64, price *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if !e.priceInBand(price) {
		return 0, ErrInvalidInput
	}
	if grant, ok, err := e.state.GatewayGrantGet(buyer, creator, contentID); err != nil {
		return 0, err
	} else if ok && grant != nil {
		token, tokOK, err := e.state.GatewayTokenGet(grant.TokenID)
		if err != nil {
			return 0, err
		}
		if tokOK && token != nil && token.Active {
			return 0, ErrAlreadyAccessed
		}
	}
	stats, err := e.stats()
	if err != nil {
		return 0, err
	}
	creatorShare, err := e.settle(buyer, creator, price)
	if err != nil {
		return 0, err
	}
	tokenID := stats.NextTokenID
	token := &AccessToken{
		ID:          tokenID,
		Purchaser:   buyer,
		Creator:     creator,
		ContentID:   contentID,
		Active:      true,
		Price:       new(big.Int).Set(price),
		PurchasedAt: e.now(),
	}
	if err := e.state.GatewayTokenPut(token); err != nil {
		return 0, err
	}
	stats.NextTokenID++
	grant := &AccessGrant{
		Purchaser: buyer,
		Creator:   creator,
		ContentID: contentID,
		TokenID:   tokenID,
		GrantedAt: e.now(),
	}
	if err := e.state.GatewayGrantPut(grant); err != nil {
		return 0, err
	}
	if _, err := e.recordTransaction(stats, buyer, creator, []uint64{contentID}, price, false); err != nil {
		return 0, err
	}
	if err := e.state.GatewayStatsPut(stats); err != nil {
		return 0, err
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return 0, err
	}
	cStats.Transactions++
	cStats.Revenue = new(big.Int).Add(cStats.Revenue, creatorShare)
	cStats.ContentSold++
	if err := e.state.GatewayCreatorStatsPut(creator, cStats); err != nil {
		return 0, err
	}
	uStats, err := e.userStats(buyer)
	if err != nil {
		return 0, err
	}
	uStats.Transactions++
	if err := e.state.GatewayUserStatsPut(buyer, uStats); err != nil {
		return 0, err
	}
	e.emit(ContentPurchasedEvent(hexAddr(buyer), hexAddr(creator), formatUint(contentID), formatUint(tokenID), price.String()))
	return tokenID, nil
}

// PurchaseBatch settles a multi-item purchase as one ledger row. The caller
// supplies the total computed via BatchPrice.
func (e *Engine) PurchaseBatch(buyer, creator [20]byte, contentIDs []uint64, totalPrice *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if len(contentIDs) == 0 {
		return 0, ErrInvalidInput
	}
	if totalPrice == nil || totalPrice.Sign() <= 0 {
		return 0, ErrInvalidInput
	}
	stats, err := e.stats()
	if err != nil {
		return 0, err
	}
	creatorShare, err := e.settle(buyer, creator, totalPrice)
	if err != nil {
		return 0, err
	}
	txID, err := e.recordTransaction(stats, buyer, creator, contentIDs, totalPrice, true)
	if err != nil {
		return 0, err
	}
	if err := e.state.GatewayStatsPut(stats); err != nil {
		return 0, err
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return 0, err
	}
	cStats.Transactions++
	cStats.Revenue = new(big.Int).Add(cStats.Revenue, creatorShare)
	cStats.ContentSold += uint64(len(contentIDs))
	if err := e.state.GatewayCreatorStatsPut(creator, cStats); err != nil {
		return 0, err
	}
	uStats, err := e.userStats(buyer)
	if err != nil {
		return 0, err
	}
	uStats.Transactions++
	if err := e.state.GatewayUserStatsPut(buyer, uStats); err != nil {
		return 0, err
	}
	e.emit(&types.Event{Type: EventTypeBatchPurchased, Attributes: map[string]string{
		"buyer":   hexAddr(buyer),
		"creator": hexAddr(creator),
		"txId":    formatUint(txID),
		"items":   formatUint(uint64(len(contentIDs))),
		"total":   totalPrice.String(),
	}})
	return txID, nil
}

// CalculateBatchPrice is the pure pricing function behind PurchaseBatch.
func (e *Engine) CalculateBatchPrice(count uint64, unitPrice *big.Int) *big.Int {
	return BatchPrice(count, unitPrice, e.params)
}

// CreateBundle registers a discounted group of content items for the caller.
func (e *Engine) CreateBundle(creator [20]byte, contentIDs []uint64, price *big.Int, discountBps uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if len(contentIDs) < e.params.MinBundleItems {
		return 0, ErrInvalidInput
	}
	if discountBps > e.params.MaxBundleDiscountBps {
		return 0, ErrInvalidInput
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidInput
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return 0, err
	}
	bundleID := cStats.LastBundleID + 1
	bundle := &Bundle{
		Creator:     creator,
		ID:          bundleID,
		ContentIDs:  append([]uint64(nil), contentIDs...),
		Price:       new(big.Int).Set(price),
		DiscountBps: discountBps,
		Active:      true,
	}
	if err := e.state.GatewayBundlePut(bundle); err != nil {
		return 0, err
	}
	cStats.LastBundleID = bundleID
	if err := e.state.GatewayCreatorStatsPut(creator, cStats); err != nil {
		return 0, err
	}
	e.emit(&types.Event{Type: EventTypeBundleCreated, Attributes: map[string]string{
		"creator":  hexAddr(creator),
		"bundleId": formatUint(bundleID),
		"price":    price.String(),
	}})
	return bundleID, nil
}

// PurchaseBundle settles an active bundle at its configured price.
func (e *Engine) PurchaseBundle(buyer, creator [20]byte, bundleID uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	bundle, ok, err := e.state.GatewayBundleGet(creator, bundleID)
	if err != nil {
		return 0, err
	}
	if !ok || bundle == nil || !bundle.Active {
		return 0, ErrInvalidInput
	}
	stats, err := e.stats()
	if err != nil {
		return 0, err
	}
	creatorShare, err := e.settle(buyer, creator, bundle.Price)
	if err != nil {
		return 0, err
	}
	txID, err := e.recordTransaction(stats, buyer, creator, bundle.ContentIDs, bundle.Price, true)
	if err != nil {
		return 0, err
	}
	if err := e.state.GatewayStatsPut(stats); err != nil {
		return 0, err
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return 0, err
	}
	cStats.Transactions++
	cStats.Revenue = new(big.Int).Add(cStats.Revenue, creatorShare)
	cStats.ContentSold += uint64(len(bundle.ContentIDs))
	if err := e.state.GatewayCreatorStatsPut(creator, cStats); err != nil {
		return 0, err
	}
	uStats, err := e.userStats(buyer)
	if err != nil {
		return 0, err
	}
	uStats.Transactions++
	if err := e.state.GatewayUserStatsPut(buyer, uStats); err != nil {
		return 0, err
	}
	e.emit(&types.Event{Type: EventTypeBundlePurchased, Attributes: map[string]string{
		"buyer":    hexAddr(buyer),
		"creator":  hexAddr(creator),
		"bundleId": formatUint(bundleID),
		"txId":     formatUint(txID),
		"total":    bundle.Price.String(),
	}})
	return txID, nil
}

// DeactivateBundle switches a bundle off permanently. Owner only.
func (e *Engine) DeactivateBundle(caller, creator [20]byte, bundleID uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if caller != e.owner {
		return ErrOwnerOnly
	}
	bundle, ok, err := e.state.GatewayBundleGet(creator, bundleID)
	if err != nil {
		return err
	}
	if !ok || bundle == nil {
		return ErrNotFound
	}
	bundle.Active = false
	if err := e.state.GatewayBundlePut(bundle); err != nil {
		return err
	}
	e.emit(&types.Event{Type: EventTypeBundleDeactivated, Attributes: map[string]string{
		"creator":  hexAddr(creator),
		"bundleId": formatUint(bundleID),
	}})
	return nil
}

// GiftContent escrows a content purchase for another user to claim.
func (e *Engine) GiftContent(sender, recipient, creator [20]byte, contentID uint64, price *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if sender == recipient {
		return 0, ErrInvalidInput
	}
	if !e.priceInBand(price) {
		return 0, ErrInvalidInput
	}
	if isZeroAddress(e.giftVault) {
		return 0, ErrGiftVaultNotSet
	}
	if err := e.debit(sender, price); err != nil {
		return 0, err
	}
	if err := e.credit(e.giftVault, price); err != nil {
		return 0, err
	}
	sStats, err := e.userStats(sender)
	if err != nil {
		return 0, err
	}
	giftID := sStats.LastGiftID + 1
	gift := &Gift{
		Sender:    sender,
		Recipient: recipient,
		ID:        giftID,
		Creator:   creator,
		ContentID: contentID,
		Price:     new(big.Int).Set(price),
		SentAt:    e.now(),
	}
	if err := e.state.GatewayGiftPut(gift); err != nil {
		return 0, err
	}
	sStats.LastGiftID = giftID
	if err := e.state.GatewayUserStatsPut(sender, sStats); err != nil {
		return 0, err
	}
	e.emit(GiftSentEvent(hexAddr(sender), hexAddr(recipient), hexAddr(gift.Creator), formatUint(giftID), price.String()))
	return giftID, nil
}

// ClaimGift settles an escrowed gift to its creator and issues the recipient
// a fresh access token. Claimable exactly once, by the recipient only.
func (e *Engine) ClaimGift(caller, sender [20]byte, giftID uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	gift, ok, err := e.state.GatewayGiftGet(sender, caller, giftID)
	if err != nil {
		return 0, err
	}
	if !ok || gift == nil {
		return 0, ErrNotFound
	}
	if gift.Claimed {
		return 0, ErrAlreadyAccessed
	}
	if isZeroAddress(e.treasury) {
		return 0, ErrTreasuryNotSet
	}
	stats, err := e.stats()
	if err != nil {
		return 0, err
	}
	creatorShare, platformShare := SplitPayment(gift.Price, e.params.CreatorShareBps)
	if err := e.debit(e.giftVault, gift.Price); err != nil {
		return 0, err
	}
	if err := e.credit(gift.Creator, creatorShare); err != nil {
		return 0, err
	}
	if err := e.credit(e.treasury, platformShare); err != nil {
		return 0, err
	}
	gift.Claimed = true
	if err := e.state.GatewayGiftPut(gift); err != nil {
		return 0, err
	}
	tokenID := stats.NextTokenID
	token := &AccessToken{
		ID:          tokenID,
		Purchaser:   caller,
		Creator:     gift.Creator,
		ContentID:   gift.ContentID,
		Active:      true,
		Price:       new(big.Int).Set(gift.Price),
		PurchasedAt: e.now(),
	}
	if err := e.state.GatewayTokenPut(token); err != nil {
		return 0, err
	}
	stats.NextTokenID++
	grant := &AccessGrant{
		Purchaser: caller,
		Creator:   gift.Creator,
		ContentID: gift.ContentID,
		TokenID:   tokenID,
		GrantedAt: e.now(),
	}
	if err := e.state.GatewayGrantPut(grant); err != nil {
		return 0, err
	}
	if err := e.state.GatewayStatsPut(stats); err != nil {
		return 0, err
	}
	e.emit(GiftClaimedEvent(hexAddr(sender), hexAddr(caller), formatUint(giftID), formatUint(tokenID)))
	return tokenID, nil
}

// VerifyAccess confirms the caller owns an active access token.
func (e *Engine) VerifyAccess(caller [20]byte, tokenID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	token, ok, err := e.state.GatewayTokenGet(tokenID)
	if err != nil {
		return false, err
	}
	if !ok || token == nil {
		return false, ErrNotFound
	}
	if token.Purchaser != caller {
		return false, ErrUnauthorized
	}
	return token.Active, nil
}

// RevokeAccess deactivates a token. Permitted for the token's creator and the
// contract owner; the grant index entry is left in place.
func (e *Engine) RevokeAccess(caller [20]byte, tokenID uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	token, ok, err := e.state.GatewayTokenGet(tokenID)
	if err != nil {
		return err
	}
	if !ok || token == nil {
		return ErrNotFound
	}
	if caller != token.Creator && caller != e.owner {
		return ErrUnauthorized
	}
	token.Active = false
	if err := e.state.GatewayTokenPut(token); err != nil {
		return err
	}
	e.emit(AccessRevokedEvent(hexAddr(caller), formatUint(tokenID)))
	return nil
}

// HasValidAccess reports whether a user holds an active grant for the
// content item.
func (e *Engine) HasValidAccess(user, creator [20]byte, contentID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	grant, ok, err := e.state.GatewayGrantGet(user, creator, contentID)
	if err != nil || !ok || grant == nil {
		return false, err
	}
	token, ok, err := e.state.GatewayTokenGet(grant.TokenID)
	if err != nil || !ok || token == nil {
		return false, err
	}
	return token.Active, nil
}

// GetUserAccessToken resolves the access token a user holds for a content
// item, reporting absence rather than an error.
func (e *Engine) GetUserAccessToken(user, creator [20]byte, contentID uint64) (*AccessToken, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	grant, ok, err := e.state.GatewayGrantGet(user, creator, contentID)
	if err != nil || !ok || grant == nil {
		return nil, false, err
	}
	return e.state.GatewayTokenGet(grant.TokenID)
}

// GetAccessToken returns a token by id.
func (e *Engine) GetAccessToken(tokenID uint64) (*AccessToken, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.GatewayTokenGet(tokenID)
}

// GetTransaction returns a ledger row by id.
func (e *Engine) GetTransaction(txID uint64) (*Transaction, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.GatewayTransactionGet(txID)
}

// GetBundle returns a bundle by creator and id.
func (e *Engine) GetBundle(creator [20]byte, bundleID uint64) (*Bundle, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.GatewayBundleGet(creator, bundleID)
}

// GetGift returns a gift by its (sender, recipient, id) key.
func (e *Engine) GetGift(sender, recipient [20]byte, giftID uint64) (*Gift, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.GatewayGiftGet(sender, recipient, giftID)
}

// TotalTransactions reports the number of settled ledger rows.
func (e *Engine) TotalTransactions() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	stats, err := e.stats()
	if err != nil {
		return 0, err
	}
	return stats.TotalTransactions, nil
}

// TotalVolume reports the cumulative settled value.
func (e *Engine) TotalVolume() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stats, err := e.stats()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(stats.TotalVolume), nil
}

// CreatorPaymentStats returns the per-creator payment aggregates.
func (e *Engine) CreatorPaymentStats(creator [20]byte) (*CreatorStats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.creatorStats(creator)
}

// UserTransactionCount reports how many purchases a buyer has settled.
func (e *Engine) UserTransactionCount(user [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	stats, err := e.userStats(user)
	if err != nil {
		return 0, err
	}
	return stats.Transactions, nil
}

// SetPlatformTreasury points the gateway at a new treasury address. Owner only.
func (e *Engine) SetPlatformTreasury(caller, treasury [20]byte) error {
	if e == nil {
		return ErrNilState
	}
	if caller != e.owner {
		return ErrOwnerOnly
	}
	e.treasury = treasury
	return nil
}
