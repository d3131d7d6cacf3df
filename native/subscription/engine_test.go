package subscription

import (
	"errors"
	"math/big"
	"testing"

	"stackstream/core/types"
)

type mockState struct {
	tiers         map[string]*Tier
	subs          map[string]*Subscription
	creatorStats  map[string]*CreatorStats
	referralStats map[string]*ReferralStats
	total         uint64
	active        uint64
	accounts      map[string]*types.Account
}

func newMockState() *mockState {
	return &mockState{
		tiers:         make(map[string]*Tier),
		subs:          make(map[string]*Subscription),
		creatorStats:  make(map[string]*CreatorStats),
		referralStats: make(map[string]*ReferralStats),
		accounts:      make(map[string]*types.Account),
	}
}

func tierKey(creator [20]byte, name string) string {
	return string(creator[:]) + name
}

func subKey(subscriber, creator [20]byte) string {
	return string(subscriber[:]) + string(creator[:])
}

func (m *mockState) SubscriptionTierGet(creator [20]byte, name string) (*Tier, bool, error) {
	tier, ok := m.tiers[tierKey(creator, name)]
	if !ok {
		return nil, false, nil
	}
	return tier.Clone(), true, nil
}

func (m *mockState) SubscriptionTierPut(tier *Tier) error {
	if tier == nil {
		return nil
	}
	m.tiers[tierKey(tier.Creator, tier.Name)] = tier.Clone()
	return nil
}

func (m *mockState) SubscriptionGet(subscriber, creator [20]byte) (*Subscription, bool, error) {
	sub, ok := m.subs[subKey(subscriber, creator)]
	if !ok {
		return nil, false, nil
	}
	return sub.Clone(), true, nil
}

func (m *mockState) SubscriptionPut(sub *Subscription) error {
	if sub == nil {
		return nil
	}
	m.subs[subKey(sub.Subscriber, sub.Creator)] = sub.Clone()
	return nil
}

func (m *mockState) SubscriptionCreatorStatsGet(creator [20]byte) (*CreatorStats, error) {
	if stats, ok := m.creatorStats[string(creator[:])]; ok {
		return stats.Clone(), nil
	}
	return nil, nil
}

func (m *mockState) SubscriptionCreatorStatsPut(creator [20]byte, stats *CreatorStats) error {
	m.creatorStats[string(creator[:])] = stats.Clone()
	return nil
}

func (m *mockState) SubscriptionReferralStatsGet(referrer [20]byte) (*ReferralStats, error) {
	if stats, ok := m.referralStats[string(referrer[:])]; ok {
		return stats.Clone(), nil
	}
	return nil, nil
}

func (m *mockState) SubscriptionReferralStatsPut(referrer [20]byte, stats *ReferralStats) error {
	m.referralStats[string(referrer[:])] = stats.Clone()
	return nil
}

func (m *mockState) SubscriptionCountsGet() (uint64, uint64, error) {
	return m.total, m.active, nil
}

func (m *mockState) SubscriptionCountsPut(total, active uint64) error {
	m.total = total
	m.active = active
	return nil
}

func (m *mockState) GetAccount(addr []byte) (*types.Account, error) {
	if acc, ok := m.accounts[string(addr)]; ok {
		return acc.Clone(), nil
	}
	return nil, nil
}

func (m *mockState) PutAccount(addr []byte, account *types.Account) error {
	if account == nil {
		delete(m.accounts, string(addr))
		return nil
	}
	m.accounts[string(addr)] = account.Clone()
	return nil
}

func (m *mockState) setBalance(addr [20]byte, amount int64) {
	m.accounts[string(addr[:])] = &types.Account{BalanceSTX: big.NewInt(amount)}
}

func (m *mockState) balance(addr [20]byte) *big.Int {
	if acc, ok := m.accounts[string(addr[:])]; ok {
		return new(big.Int).Set(acc.BalanceSTX)
	}
	return big.NewInt(0)
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

var (
	testOwner    = addr(0xF0)
	testTreasury = addr(0xFE)
	noReferrer   [20]byte
)

func newTestEngine(state *mockState) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetNowFunc(func() int64 { return 42 })
	engine.SetOwner(testOwner)
	engine.SetTreasury(testTreasury)
	return engine
}

func mustCreateTier(t *testing.T, engine *Engine, creator [20]byte, name string, price int64) uint8 {
	t.Helper()
	level, err := engine.CreateTier(creator, name, big.NewInt(price), "tier "+name, 0)
	if err != nil {
		t.Fatalf("create tier %s: %v", name, err)
	}
	return level
}

func TestCreateTierLevels(t *testing.T) {
	engine := newTestEngine(newMockState())
	creator := addr(0x01)

	if level := mustCreateTier(t, engine, creator, "Bronze", 5_000_000); level != 1 {
		t.Fatalf("5 STX must land in level 1, got %d", level)
	}
	if level := mustCreateTier(t, engine, creator, "Silver", 30_000_000); level != 2 {
		t.Fatalf("30 STX must land in level 2, got %d", level)
	}
	if level := mustCreateTier(t, engine, creator, "Gold", 100_000_000); level != 3 {
		t.Fatalf("100 STX must land in level 3, got %d", level)
	}

	if _, err := engine.CreateTier(creator, "cheap", big.NewInt(1_000_000), "", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected below-band rejection, got %v", err)
	}
	if _, err := engine.CreateTier(creator, "rich", big.NewInt(200_000_000), "", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected above-band rejection, got %v", err)
	}
	if _, err := engine.CreateTier(creator, "BRONZE", big.NewInt(6_000_000), "", 0); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("tier names are case-insensitive, got %v", err)
	}

	tier, ok, _ := engine.GetTier(creator, "bronze")
	if !ok || tier.Level != 1 || !tier.Active {
		t.Fatalf("tier lookup wrong: %+v", tier)
	}
	cStats, _ := engine.CreatorSubscriptionStats(creator)
	if cStats.TiersCreated != 3 {
		t.Fatalf("expected 3 tiers created, got %d", cStats.TiersCreated)
	}
}

func TestSubscribeSplitsMonthlyPrice(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 50_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := state.balance(creator); got.Cmp(big.NewInt(9_500_000)) != 0 {
		t.Fatalf("creator cut: want 9500000, got %s", got)
	}
	if got := state.balance(testTreasury); got.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("platform cut: want 500000, got %s", got)
	}
	sub, ok, _ := engine.GetSubscription(subscriber, creator)
	if !ok || !sub.Active || !sub.AutoRenew {
		t.Fatalf("subscription row wrong: %+v", sub)
	}
	if sub.TierLevel != 1 || sub.MonthlyPrice.Cmp(big.NewInt(10_000_000)) != 0 {
		t.Fatalf("subscription snapshot wrong: %+v", sub)
	}
	tier, _, _ := engine.GetTier(creator, "basic")
	if tier.CurrentSubscribers != 1 {
		t.Fatalf("tier subscriber count wrong: %d", tier.CurrentSubscribers)
	}
	total, _ := engine.TotalSubscriptions()
	active, _ := engine.TotalActiveSubscriptions()
	if total != 1 || active != 1 {
		t.Fatalf("global counts wrong: total=%d active=%d", total, active)
	}

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected duplicate subscription rejection, got %v", err)
	}
	if err := engine.Subscribe(subscriber, creator, "missing", noReferrer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected missing tier rejection, got %v", err)
	}
}

func TestSubscribeWithReferral(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	referrer := addr(0x04)
	state.setBalance(subscriber, 50_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)

	if err := engine.Subscribe(subscriber, creator, "basic", referrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := state.balance(referrer); got.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("referral cut: want 500000, got %s", got)
	}
	if got := state.balance(creator); got.Cmp(big.NewInt(9_000_000)) != 0 {
		t.Fatalf("creator keeps the rest of their share, got %s", got)
	}
	if got := state.balance(testTreasury); got.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("platform cut is unchanged by referrals, got %s", got)
	}
	rStats, _ := engine.ReferralEarnings(referrer)
	if rStats.Referrals != 1 || rStats.Earned.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("referral stats wrong: %+v", rStats)
	}

	// Self-referral is rejected before any settlement.
	other := addr(0x05)
	state.setBalance(other, 50_000_000)
	if err := engine.Subscribe(other, creator, "basic", other); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected self-referral rejection, got %v", err)
	}
}

func TestTierCapacity(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	if _, err := engine.CreateTier(creator, "small", big.NewInt(10_000_000), "", 1); err != nil {
		t.Fatalf("create tier: %v", err)
	}
	first := addr(0x03)
	second := addr(0x04)
	state.setBalance(first, 50_000_000)
	state.setBalance(second, 50_000_000)

	if err := engine.Subscribe(first, creator, "small", noReferrer); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if err := engine.Subscribe(second, creator, "small", noReferrer); !errors.Is(err, ErrTierFull) {
		t.Fatalf("expected capacity rejection, got %v", err)
	}
	// A cancellation frees the slot.
	if err := engine.CancelSubscription(first, creator); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := engine.Subscribe(second, creator, "small", noReferrer); err != nil {
		t.Fatalf("subscribe after slot freed: %v", err)
	}
}

func TestCancelAndResubscribe(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 100_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := engine.CancelSubscription(subscriber, creator); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	sub, _, _ := engine.GetSubscription(subscriber, creator)
	if sub.Active || sub.AutoRenew {
		t.Fatalf("cancel must deactivate and clear auto-renew: %+v", sub)
	}
	if err := engine.CancelSubscription(subscriber, creator); !errors.Is(err, ErrSubscriptionExpired) {
		t.Fatalf("expected double-cancel rejection, got %v", err)
	}
	active, _ := engine.TotalActiveSubscriptions()
	if active != 0 {
		t.Fatalf("active count must return to 0, got %d", active)
	}

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	total, _ := engine.TotalSubscriptions()
	active, _ = engine.TotalActiveSubscriptions()
	if total != 2 || active != 1 {
		t.Fatalf("resubscribe counts wrong: total=%d active=%d", total, active)
	}
}

func TestCreatorStatsKeepLifetimeSubscribers(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	other := addr(0x02)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 100_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)
	mustCreateTier(t, engine, other, "basic", 10_000_000)

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := engine.CancelSubscription(subscriber, creator); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	cStats, err := engine.CreatorSubscriptionStats(creator)
	if err != nil {
		t.Fatalf("creator stats: %v", err)
	}
	if cStats.TotalSubscribers != 1 {
		t.Fatalf("cancellation must not erase lifetime subscribers, got %d", cStats.TotalSubscribers)
	}
	if cStats.ActiveSubscribers != 0 {
		t.Fatalf("expected 0 active after cancel, got %d", cStats.ActiveSubscribers)
	}
	untouched, err := engine.CreatorSubscriptionStats(other)
	if err != nil {
		t.Fatalf("creator stats: %v", err)
	}
	if untouched.TotalSubscribers != 0 || untouched.ActiveSubscribers != 0 {
		t.Fatalf("creator with no subscribers must stay at zero: %+v", untouched)
	}

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	cStats, _ = engine.CreatorSubscriptionStats(creator)
	if cStats.TotalSubscribers != 2 || cStats.ActiveSubscribers != 1 {
		t.Fatalf("resubscribe stats wrong: total=%d active=%d", cStats.TotalSubscribers, cStats.ActiveSubscribers)
	}
}

func TestUpgradeSubscription(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 100_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)
	mustCreateTier(t, engine, creator, "premium", 30_000_000)

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := engine.UpgradeSubscription(subscriber, creator, "premium"); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	sub, _, _ := engine.GetSubscription(subscriber, creator)
	if sub.TierName != "premium" || sub.TierLevel != 2 {
		t.Fatalf("upgrade must move the row: %+v", sub)
	}
	if sub.MonthlyPrice.Cmp(big.NewInt(30_000_000)) != 0 {
		t.Fatalf("upgrade must resnapshot the price: %s", sub.MonthlyPrice)
	}
	basic, _, _ := engine.GetTier(creator, "basic")
	premium, _, _ := engine.GetTier(creator, "premium")
	if basic.CurrentSubscribers != 0 || premium.CurrentSubscribers != 1 {
		t.Fatalf("tier counters must move: basic=%d premium=%d", basic.CurrentSubscribers, premium.CurrentSubscribers)
	}
	// 10 STX then 30 STX, both at the 95% creator share.
	if got := state.balance(creator); got.Cmp(big.NewInt(38_000_000)) != 0 {
		t.Fatalf("creator balance after upgrade: want 38000000, got %s", got)
	}

	if err := engine.UpgradeSubscription(subscriber, creator, "basic"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected downgrade rejection, got %v", err)
	}
	if err := engine.UpgradeSubscription(addr(0x09), creator, "premium"); !errors.Is(err, ErrSubscriptionExpired) {
		t.Fatalf("expected no-subscription rejection, got %v", err)
	}
}

func TestToggleAutoRenew(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 50_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)
	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	renew, err := engine.ToggleAutoRenew(subscriber, creator)
	if err != nil || renew {
		t.Fatalf("first toggle must switch off, got renew=%v err=%v", renew, err)
	}
	renew, err = engine.ToggleAutoRenew(subscriber, creator)
	if err != nil || !renew {
		t.Fatalf("second toggle must switch back on, got renew=%v err=%v", renew, err)
	}
	if _, err := engine.ToggleAutoRenew(addr(0x09), creator); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no-subscription rejection, got %v", err)
	}
}

func TestSubscriptionAccessChecks(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 50_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)

	if err := engine.CheckSubscriptionAccess(subscriber, creator); !errors.Is(err, ErrSubscriptionExpired) {
		t.Fatalf("expected access rejection before subscribing, got %v", err)
	}
	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := engine.CheckSubscriptionAccess(subscriber, creator); err != nil {
		t.Fatalf("expected access while active, got %v", err)
	}
	active, err := engine.IsSubscriptionActive(subscriber, creator)
	if err != nil || !active {
		t.Fatalf("boolean check must agree, active=%v err=%v", active, err)
	}
	if err := engine.CancelSubscription(subscriber, creator); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := engine.CheckSubscriptionAccess(subscriber, creator); !errors.Is(err, ErrSubscriptionExpired) {
		t.Fatalf("expected access rejection after cancel, got %v", err)
	}
}

func TestDeactivateTier(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 100_000_000)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)
	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := engine.DeactivateTier(creator, creator, "basic"); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected owner-only rejection, got %v", err)
	}
	if err := engine.DeactivateTier(testOwner, creator, "basic"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := engine.DeactivateTier(testOwner, creator, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected missing tier rejection, got %v", err)
	}

	// Existing subscriptions keep running; new ones are refused.
	if err := engine.CheckSubscriptionAccess(subscriber, creator); err != nil {
		t.Fatalf("existing subscription must survive deactivation: %v", err)
	}
	other := addr(0x04)
	state.setBalance(other, 100_000_000)
	if err := engine.Subscribe(other, creator, "basic", noReferrer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected inactive tier rejection, got %v", err)
	}
}

func TestSubscribeInsufficientFunds(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	subscriber := addr(0x03)
	state.setBalance(subscriber, 100)
	mustCreateTier(t, engine, creator, "basic", 10_000_000)

	if err := engine.Subscribe(subscriber, creator, "basic", noReferrer); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, ok, _ := engine.GetSubscription(subscriber, creator); ok {
		t.Fatalf("failed subscribe must not create a row")
	}
	tier, _, _ := engine.GetTier(creator, "basic")
	if tier.CurrentSubscribers != 0 {
		t.Fatalf("failed subscribe must not bump tier counters")
	}
}

func TestTreasuryAdmin(t *testing.T) {
	engine := newTestEngine(newMockState())
	if err := engine.SetPlatformTreasury(addr(0x03), addr(0x07)); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected owner-only rejection, got %v", err)
	}
	if err := engine.SetPlatformTreasury(testOwner, addr(0x07)); err != nil {
		t.Fatalf("owner treasury update: %v", err)
	}
}
