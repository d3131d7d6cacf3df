package state

import (
	"math/big"
	"testing"

	"stackstream/core/types"
	"stackstream/native/gateway"
	"stackstream/native/registry"
	"stackstream/native/subscription"
	"stackstream/storage"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func fund(t *testing.T, m *Manager, a [20]byte, amount int64) {
	t.Helper()
	if err := m.PutAccount(a[:], &types.Account{BalanceSTX: big.NewInt(amount)}); err != nil {
		t.Fatalf("fund %x: %v", a, err)
	}
}

func balance(t *testing.T, m *Manager, a [20]byte) *big.Int {
	t.Helper()
	acc, err := m.GetAccount(a[:])
	if err != nil {
		t.Fatalf("load %x: %v", a, err)
	}
	if acc == nil || acc.BalanceSTX == nil {
		return big.NewInt(0)
	}
	return acc.BalanceSTX
}

// The manager must round-trip every record type the engines persist, so the
// test drives real engine flows against a MemDB-backed manager.
func TestManagerBacksAllEngines(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	owner := addr(0xF0)
	treasury := addr(0xFE)
	vault := addr(0xFD)
	creator := addr(0x01)
	fan := addr(0x03)
	fund(t, manager, creator, 20_000_000)
	fund(t, manager, fan, 100_000_000)

	reg := registry.NewEngine()
	reg.SetState(manager)
	reg.SetOwner(owner)
	reg.SetTreasury(treasury)
	reg.SetNowFunc(func() int64 { return 42 })

	if _, err := reg.RegisterCreator(creator, "alice", "bio", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	profile, ok, err := reg.GetCreator(creator)
	if err != nil || !ok {
		t.Fatalf("profile round-trip failed: ok=%v err=%v", ok, err)
	}
	if profile.Username != "alice" || profile.ReputationScore != 100 {
		t.Fatalf("profile fields lost in storage: %+v", profile)
	}
	if resolved, ok, _ := reg.GetCreatorByUsername("alice"); !ok || resolved.Address != creator {
		t.Fatalf("username index lost in storage")
	}
	contentID, err := reg.AddContent(creator, "post", "desc", [32]byte{1}, big.NewInt(1_000_000))
	if err != nil || contentID != 1 {
		t.Fatalf("add content: id=%d err=%v", contentID, err)
	}
	badgeID, err := reg.VerifyIdentity(creator)
	if err != nil || badgeID != 1 {
		t.Fatalf("verify: badge=%d err=%v", badgeID, err)
	}
	if ownerAddr, ok, _ := reg.BadgeOwner(1); !ok || ownerAddr != creator {
		t.Fatalf("badge record lost in storage")
	}

	gw := gateway.NewEngine()
	gw.SetState(manager)
	gw.SetOwner(owner)
	gw.SetTreasury(treasury)
	gw.SetGiftVault(vault)
	gw.SetNowFunc(func() int64 { return 42 })

	tokenID, err := gw.PurchaseContent(fan, creator, contentID, big.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if hasAccess, _ := gw.HasValidAccess(fan, creator, contentID); !hasAccess {
		t.Fatalf("grant lost in storage")
	}
	if token, ok, _ := gw.GetAccessToken(tokenID); !ok || !token.Active {
		t.Fatalf("token lost in storage")
	}
	volume, _ := gw.TotalVolume()
	if volume.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("stats lost in storage: %s", volume)
	}

	subs := subscription.NewEngine()
	subs.SetState(manager)
	subs.SetOwner(owner)
	subs.SetTreasury(treasury)
	subs.SetNowFunc(func() int64 { return 42 })

	if _, err := subs.CreateTier(creator, "basic", big.NewInt(10_000_000), "", 0); err != nil {
		t.Fatalf("create tier: %v", err)
	}
	if err := subs.Subscribe(fan, creator, "basic", [20]byte{}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if active, _ := subs.IsSubscriptionActive(fan, creator); !active {
		t.Fatalf("subscription lost in storage")
	}
	total, _ := subs.TotalSubscriptions()
	if total != 1 {
		t.Fatalf("counts lost in storage: %d", total)
	}

	// Treasury collected the registration fee plus its cut of the purchase
	// and the subscription. The verification stake stays locked.
	want := big.NewInt(1_000_000 + 50_000 + 500_000)
	if got := balance(t, manager, treasury); got.Cmp(want) != 0 {
		t.Fatalf("treasury balance: want %s, got %s", want, got)
	}
}
