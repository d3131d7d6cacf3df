package subscription

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"time"

	"stackstream/core/events"
	"stackstream/core/types"
	"stackstream/native/params"
)

type engineState interface {
	SubscriptionTierGet(creator [20]byte, name string) (*Tier, bool, error)
	SubscriptionTierPut(tier *Tier) error
	SubscriptionGet(subscriber, creator [20]byte) (*Subscription, bool, error)
	SubscriptionPut(sub *Subscription) error
	SubscriptionCreatorStatsGet(creator [20]byte) (*CreatorStats, error)
	SubscriptionCreatorStatsPut(creator [20]byte, stats *CreatorStats) error
	SubscriptionReferralStatsGet(referrer [20]byte) (*ReferralStats, error)
	SubscriptionReferralStatsPut(referrer [20]byte, stats *ReferralStats) error
	SubscriptionCountsGet() (total uint64, active uint64, err error)
	SubscriptionCountsPut(total uint64, active uint64) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine implements the recurring-revenue transitions: tier management,
// subscribing with optional referrals, cancellation, and upgrades.
type Engine struct {
	state    engineState
	emitter  events.Emitter
	nowFn    func() int64
	params   params.Params
	owner    [20]byte
	treasury [20]byte
}

// NewEngine constructs a subscription engine with default dependencies.
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

func normalizeTierName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (e *Engine) creatorStats(creator [20]byte) (*CreatorStats, error) {
	stats, err := e.state.SubscriptionCreatorStatsGet(creator)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &CreatorStats{TotalRevenue: big.NewInt(0)}
	}
	if stats.TotalRevenue == nil {
		stats.TotalRevenue = big.NewInt(0)
	}
	return stats, nil
}

func (e *Engine) referralStats(referrer [20]byte) (*ReferralStats, error) {
	stats, err := e.state.SubscriptionReferralStatsGet(referrer)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &ReferralStats{Earned: big.NewInt(0)}
	}
	if stats.Earned == nil {
		stats.Earned = big.NewInt(0)
	}
	return stats, nil
}

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

// splitMonthly carves a monthly price into creator, referrer, and treasury
// cuts. The referral share comes out of the creator side so the treasury cut
// is stable whether or not a referrer is present. Truncation remainders go to
// the creator.
func (e *Engine) splitMonthly(price *big.Int, withReferrer bool) (creatorCut, referralCut, platformCut *big.Int) {
	denom := big.NewInt(params.BpsDenominator)
	platformBps := params.BpsDenominator - e.params.CreatorShareBps
	platformCut = new(big.Int).Mul(price, new(big.Int).SetUint64(platformBps))
	platformCut = platformCut.Div(platformCut, denom)
	referralCut = big.NewInt(0)
	if withReferrer {
		referralCut = new(big.Int).Mul(price, new(big.Int).SetUint64(e.params.ReferralBps))
		referralCut = referralCut.Div(referralCut, denom)
	}
	creatorCut = new(big.Int).Sub(price, platformCut)
	creatorCut = creatorCut.Sub(creatorCut, referralCut)
	return creatorCut, referralCut, platformCut
}

// settleMonthly debits the subscriber and distributes the monthly price.
func (e *Engine) settleMonthly(subscriber, creator, referrer [20]byte, price *big.Int) (*big.Int, error) {
	if isZeroAddress(e.treasury) {
		return nil, ErrTreasuryNotSet
	}
	withReferrer := !isZeroAddress(referrer)
	creatorCut, referralCut, platformCut := e.splitMonthly(price, withReferrer)
	if err := e.debit(subscriber, price); err != nil {
		return nil, err
	}
	if err := e.credit(creator, creatorCut); err != nil {
		return nil, err
	}
	if err := e.credit(e.treasury, platformCut); err != nil {
		return nil, err
	}
	if withReferrer {
		if err := e.credit(referrer, referralCut); err != nil {
			return nil, err
		}
		rStats, err := e.referralStats(referrer)
		if err != nil {
			return nil, err
		}
		rStats.Referrals++
		rStats.Earned = new(big.Int).Add(rStats.Earned, referralCut)
		if err := e.state.SubscriptionReferralStatsPut(referrer, rStats); err != nil {
			return nil, err
		}
		e.emit(ReferralPaidEvent(hexAddr(referrer), hexAddr(subscriber), referralCut.String()))
	}
	return creatorCut, nil
}

// CreateTier defines a subscription tier for the caller. The tier level is
// derived from the monthly price band; prices outside every band are rejected.
func (e *Engine) CreateTier(creator [20]byte, name string, monthlyPrice *big.Int, description string, maxSubscribers uint64) (uint8, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	name = normalizeTierName(name)
	if name == "" {
		return 0, ErrInvalidInput
	}
	if monthlyPrice == nil || monthlyPrice.Sign() <= 0 || !monthlyPrice.IsUint64() {
		return 0, ErrInvalidInput
	}
	level := e.params.TierLevel(monthlyPrice.Uint64())
	if level == 0 {
		return 0, ErrInvalidInput
	}
	if _, ok, err := e.state.SubscriptionTierGet(creator, name); err != nil {
		return 0, err
	} else if ok {
		return 0, ErrAlreadyExists
	}
	tier := &Tier{
		Creator:        creator,
		Name:           name,
		Level:          level,
		MonthlyPrice:   new(big.Int).Set(monthlyPrice),
		Description:    description,
		MaxSubscribers: maxSubscribers,
		Active:         true,
		CreatedAt:      e.now(),
	}
	if err := e.state.SubscriptionTierPut(tier); err != nil {
		return 0, err
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return 0, err
	}
	cStats.TiersCreated++
	if err := e.state.SubscriptionCreatorStatsPut(creator, cStats); err != nil {
		return 0, err
	}
	e.emit(TierCreatedEvent(hexAddr(creator), name, level, monthlyPrice.String()))
	return level, nil
}

// Subscribe settles the first monthly charge and opens a subscription at the
// named tier. The optional referrer earns the configured referral cut out of
// the creator's share.
func (e *Engine) Subscribe(subscriber, creator [20]byte, tierName string, referrer [20]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	tierName = normalizeTierName(tierName)
	if subscriber == creator || referrer == subscriber {
		return ErrInvalidInput
	}
	tier, ok, err := e.state.SubscriptionTierGet(creator, tierName)
	if err != nil {
		return err
	}
	if !ok || tier == nil || !tier.Active {
		return ErrNotFound
	}
	if tier.MaxSubscribers > 0 && tier.CurrentSubscribers >= tier.MaxSubscribers {
		return ErrTierFull
	}
	if existing, ok, err := e.state.SubscriptionGet(subscriber, creator); err != nil {
		return err
	} else if ok && existing != nil && existing.Active {
		return ErrAlreadyExists
	}
	creatorCut, err := e.settleMonthly(subscriber, creator, referrer, tier.MonthlyPrice)
	if err != nil {
		return err
	}
	sub := &Subscription{
		Subscriber:   subscriber,
		Creator:      creator,
		TierName:     tier.Name,
		TierLevel:    tier.Level,
		MonthlyPrice: new(big.Int).Set(tier.MonthlyPrice),
		Active:       true,
		AutoRenew:    true,
		Referrer:     referrer,
		StartedAt:    e.now(),
	}
	if err := e.state.SubscriptionPut(sub); err != nil {
		return err
	}
	tier.CurrentSubscribers++
	if err := e.state.SubscriptionTierPut(tier); err != nil {
		return err
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return err
	}
	cStats.TotalSubscribers++
	cStats.ActiveSubscribers++
	cStats.TotalRevenue = new(big.Int).Add(cStats.TotalRevenue, creatorCut)
	if err := e.state.SubscriptionCreatorStatsPut(creator, cStats); err != nil {
		return err
	}
	total, active, err := e.state.SubscriptionCountsGet()
	if err != nil {
		return err
	}
	if err := e.state.SubscriptionCountsPut(total+1, active+1); err != nil {
		return err
	}
	e.emit(SubscribedEvent(hexAddr(subscriber), hexAddr(creator), tier.Name, tier.MonthlyPrice.String()))
	return nil
}

// CancelSubscription deactivates the caller's subscription immediately. No
// refund is issued for the remainder of the period.
func (e *Engine) CancelSubscription(subscriber, creator [20]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	sub, ok, err := e.state.SubscriptionGet(subscriber, creator)
	if err != nil {
		return err
	}
	if !ok || sub == nil || !sub.Active {
		return ErrSubscriptionExpired
	}
	sub.Active = false
	sub.AutoRenew = false
	if err := e.state.SubscriptionPut(sub); err != nil {
		return err
	}
	if tier, ok, err := e.state.SubscriptionTierGet(creator, sub.TierName); err != nil {
		return err
	} else if ok && tier != nil && tier.CurrentSubscribers > 0 {
		tier.CurrentSubscribers--
		if err := e.state.SubscriptionTierPut(tier); err != nil {
			return err
		}
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return err
	}
	if cStats.ActiveSubscribers > 0 {
		cStats.ActiveSubscribers--
	}
	if err := e.state.SubscriptionCreatorStatsPut(creator, cStats); err != nil {
		return err
	}
	total, active, err := e.state.SubscriptionCountsGet()
	if err != nil {
		return err
	}
	if active > 0 {
		active--
	}
	if err := e.state.SubscriptionCountsPut(total, active); err != nil {
		return err
	}
	e.emit(CancelledEvent(hexAddr(subscriber), hexAddr(creator), sub.TierName))
	return nil
}

// UpgradeSubscription moves an active subscription to a strictly higher tier,
// charging the full new-tier monthly price at upgrade time. The referrer on
// record keeps earning on the upgraded charge.
func (e *Engine) UpgradeSubscription(subscriber, creator [20]byte, newTierName string) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	newTierName = normalizeTierName(newTierName)
	sub, ok, err := e.state.SubscriptionGet(subscriber, creator)
	if err != nil {
		return err
	}
	if !ok || sub == nil || !sub.Active {
		return ErrSubscriptionExpired
	}
	newTier, ok, err := e.state.SubscriptionTierGet(creator, newTierName)
	if err != nil {
		return err
	}
	if !ok || newTier == nil || !newTier.Active {
		return ErrNotFound
	}
	if newTier.Level <= sub.TierLevel {
		return ErrInvalidInput
	}
	if newTier.MaxSubscribers > 0 && newTier.CurrentSubscribers >= newTier.MaxSubscribers {
		return ErrTierFull
	}
	creatorCut, err := e.settleMonthly(subscriber, creator, sub.Referrer, newTier.MonthlyPrice)
	if err != nil {
		return err
	}
	oldTierName := sub.TierName
	if oldTier, ok, err := e.state.SubscriptionTierGet(creator, oldTierName); err != nil {
		return err
	} else if ok && oldTier != nil && oldTier.CurrentSubscribers > 0 {
		oldTier.CurrentSubscribers--
		if err := e.state.SubscriptionTierPut(oldTier); err != nil {
			return err
		}
	}
	newTier.CurrentSubscribers++
	if err := e.state.SubscriptionTierPut(newTier); err != nil {
		return err
	}
	sub.TierName = newTier.Name
	sub.TierLevel = newTier.Level
	sub.MonthlyPrice = new(big.Int).Set(newTier.MonthlyPrice)
	if err := e.state.SubscriptionPut(sub); err != nil {
		return err
	}
	cStats, err := e.creatorStats(creator)
	if err != nil {
		return err
	}
	cStats.TotalRevenue = new(big.Int).Add(cStats.TotalRevenue, creatorCut)
	if err := e.state.SubscriptionCreatorStatsPut(creator, cStats); err != nil {
		return err
	}
	e.emit(UpgradedEvent(hexAddr(subscriber), hexAddr(creator), oldTierName, newTier.Name))
	return nil
}

// ToggleAutoRenew flips the renewal flag on an active subscription and
// reports the new value.
func (e *Engine) ToggleAutoRenew(subscriber, creator [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	sub, ok, err := e.state.SubscriptionGet(subscriber, creator)
	if err != nil {
		return false, err
	}
	if !ok || sub == nil || !sub.Active {
		return false, ErrNotFound
	}
	sub.AutoRenew = !sub.AutoRenew
	if err := e.state.SubscriptionPut(sub); err != nil {
		return false, err
	}
	e.emit(&types.Event{Type: EventTypeAutoRenewToggled, Attributes: map[string]string{
		"subscriber": hexAddr(subscriber),
		"creator":    hexAddr(creator),
		"autoRenew":  strconv.FormatBool(sub.AutoRenew),
	}})
	return sub.AutoRenew, nil
}

// CheckSubscriptionAccess is the error-signalling access gate: it succeeds
// only when the subscriber holds an active subscription to the creator.
func (e *Engine) CheckSubscriptionAccess(subscriber, creator [20]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	sub, ok, err := e.state.SubscriptionGet(subscriber, creator)
	if err != nil {
		return err
	}
	if !ok || sub == nil || !sub.Active {
		return ErrSubscriptionExpired
	}
	return nil
}

// IsSubscriptionActive is the boolean variant of CheckSubscriptionAccess.
func (e *Engine) IsSubscriptionActive(subscriber, creator [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	sub, ok, err := e.state.SubscriptionGet(subscriber, creator)
	if err != nil {
		return false, err
	}
	return ok && sub != nil && sub.Active, nil
}

// DeactivateTier switches a tier off so it accepts no new subscribers.
// Existing subscriptions keep running. Owner only.
func (e *Engine) DeactivateTier(caller, creator [20]byte, name string) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if caller != e.owner {
		return ErrOwnerOnly
	}
	name = normalizeTierName(name)
	tier, ok, err := e.state.SubscriptionTierGet(creator, name)
	if err != nil {
		return err
	}
	if !ok || tier == nil {
		return ErrNotFound
	}
	tier.Active = false
	if err := e.state.SubscriptionTierPut(tier); err != nil {
		return err
	}
	e.emit(&types.Event{Type: EventTypeTierDeactivated, Attributes: map[string]string{
		"creator": hexAddr(creator),
		"tier":    name,
	}})
	return nil
}

// GetSubscription returns the subscription row for a (subscriber, creator)
// pair.
func (e *Engine) GetSubscription(subscriber, creator [20]byte) (*Subscription, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.SubscriptionGet(subscriber, creator)
}

// GetTier returns a tier by creator and normalized name.
func (e *Engine) GetTier(creator [20]byte, name string) (*Tier, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.SubscriptionTierGet(creator, normalizeTierName(name))
}

// CreatorSubscriptionStats returns the per-creator subscription aggregates.
func (e *Engine) CreatorSubscriptionStats(creator [20]byte) (*CreatorStats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.creatorStats(creator)
}

// ReferralEarnings returns a referrer's cumulative referral aggregates.
func (e *Engine) ReferralEarnings(referrer [20]byte) (*ReferralStats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.referralStats(referrer)
}

// TotalSubscriptions reports how many subscriptions have ever been opened.
func (e *Engine) TotalSubscriptions() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	total, _, err := e.state.SubscriptionCountsGet()
	return total, err
}

// TotalActiveSubscriptions reports the current number of active
// subscriptions.
func (e *Engine) TotalActiveSubscriptions() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	_, active, err := e.state.SubscriptionCountsGet()
	return active, err
}

// SetPlatformTreasury points the manager at a new treasury address. Owner
// only.
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
