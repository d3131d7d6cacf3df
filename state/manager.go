package state

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"stackstream/core/types"
	"stackstream/native/gateway"
	"stackstream/native/registry"
	"stackstream/native/subscription"
	"stackstream/storage"
)

// Manager persists every module's records in the key-value backend and
// exposes the accessor surface the native engines are wired against. Records
// are stored as JSON under per-module key prefixes.
type Manager struct {
	db storage.Database
}

// NewManager wraps a storage backend.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func addrHex(addr [20]byte) string {
	return hex.EncodeToString(addr[:])
}

func contentKey(creator [20]byte, id uint64) []byte {
	return []byte("registry/content/" + addrHex(creator) + "/" + strconv.FormatUint(id, 10))
}

func (m *Manager) getJSON(key []byte, out any) (bool, error) {
	raw, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Manager) putJSON(key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state: encode %s: %w", key, err)
	}
	return m.db.Put(key, raw)
}

// GetAccount loads an account, reporting nil for addresses never seen.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	key := []byte("acct/" + hex.EncodeToString(addr))
	acc := new(types.Account)
	ok, err := m.getJSON(key, acc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return acc, nil
}

// PutAccount stores an account record.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	key := []byte("acct/" + hex.EncodeToString(addr))
	if account == nil {
		return m.db.Delete(key)
	}
	return m.putJSON(key, account)
}

func (m *Manager) RegistryProfileGet(addr [20]byte) (*registry.Profile, bool, error) {
	profile := new(registry.Profile)
	ok, err := m.getJSON([]byte("registry/profile/"+addrHex(addr)), profile)
	if err != nil || !ok {
		return nil, false, err
	}
	return profile, true, nil
}

func (m *Manager) RegistryProfilePut(profile *registry.Profile) error {
	if profile == nil {
		return nil
	}
	return m.putJSON([]byte("registry/profile/"+addrHex(profile.Address)), profile)
}

func (m *Manager) RegistryUsernameGet(username string) ([20]byte, bool, error) {
	var addr [20]byte
	raw, err := m.db.Get([]byte("registry/username/" + username))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return addr, false, nil
	}
	if err != nil {
		return addr, false, err
	}
	if len(raw) != len(addr) {
		return addr, false, fmt.Errorf("state: username index entry for %q is malformed", username)
	}
	copy(addr[:], raw)
	return addr, true, nil
}

func (m *Manager) RegistryUsernamePut(username string, addr [20]byte) error {
	return m.db.Put([]byte("registry/username/"+username), addr[:])
}

func (m *Manager) RegistryContentGet(creator [20]byte, id uint64) (*registry.Content, bool, error) {
	content := new(registry.Content)
	ok, err := m.getJSON(contentKey(creator, id), content)
	if err != nil || !ok {
		return nil, false, err
	}
	return content, true, nil
}

func (m *Manager) RegistryContentPut(content *registry.Content) error {
	if content == nil {
		return nil
	}
	return m.putJSON(contentKey(content.Creator, content.ID), content)
}

func (m *Manager) RegistryBadgeGet(id uint64) ([20]byte, bool, error) {
	var owner [20]byte
	raw, err := m.db.Get([]byte("registry/badge/" + strconv.FormatUint(id, 10)))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return owner, false, nil
	}
	if err != nil {
		return owner, false, err
	}
	if len(raw) != len(owner) {
		return owner, false, fmt.Errorf("state: badge record %d is malformed", id)
	}
	copy(owner[:], raw)
	return owner, true, nil
}

func (m *Manager) RegistryBadgePut(id uint64, owner [20]byte) error {
	return m.db.Put([]byte("registry/badge/"+strconv.FormatUint(id, 10)), owner[:])
}

func (m *Manager) RegistryCountersGet() (*registry.Counters, error) {
	counters := new(registry.Counters)
	ok, err := m.getJSON([]byte("registry/counters"), counters)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return counters, nil
}

func (m *Manager) RegistryCountersPut(counters *registry.Counters) error {
	if counters == nil {
		return nil
	}
	return m.putJSON([]byte("registry/counters"), counters)
}

func (m *Manager) GatewayTokenGet(id uint64) (*gateway.AccessToken, bool, error) {
	token := new(gateway.AccessToken)
	ok, err := m.getJSON([]byte("gateway/token/"+strconv.FormatUint(id, 10)), token)
	if err != nil || !ok {
		return nil, false, err
	}
	return token, true, nil
}

func (m *Manager) GatewayTokenPut(token *gateway.AccessToken) error {
	if token == nil {
		return nil
	}
	return m.putJSON([]byte("gateway/token/"+strconv.FormatUint(token.ID, 10)), token)
}

func grantKey(user, creator [20]byte, contentID uint64) []byte {
	return []byte("gateway/grant/" + addrHex(user) + "/" + addrHex(creator) + "/" + strconv.FormatUint(contentID, 10))
}

func (m *Manager) GatewayGrantGet(user, creator [20]byte, contentID uint64) (*gateway.AccessGrant, bool, error) {
	grant := new(gateway.AccessGrant)
	ok, err := m.getJSON(grantKey(user, creator, contentID), grant)
	if err != nil || !ok {
		return nil, false, err
	}
	return grant, true, nil
}

func (m *Manager) GatewayGrantPut(grant *gateway.AccessGrant) error {
	if grant == nil {
		return nil
	}
	return m.putJSON(grantKey(grant.Purchaser, grant.Creator, grant.ContentID), grant)
}

func (m *Manager) GatewayTransactionGet(id uint64) (*gateway.Transaction, bool, error) {
	tx := new(gateway.Transaction)
	ok, err := m.getJSON([]byte("gateway/tx/"+strconv.FormatUint(id, 10)), tx)
	if err != nil || !ok {
		return nil, false, err
	}
	return tx, true, nil
}

func (m *Manager) GatewayTransactionPut(tx *gateway.Transaction) error {
	if tx == nil {
		return nil
	}
	return m.putJSON([]byte("gateway/tx/"+strconv.FormatUint(tx.ID, 10)), tx)
}

func bundleKey(creator [20]byte, id uint64) []byte {
	return []byte("gateway/bundle/" + addrHex(creator) + "/" + strconv.FormatUint(id, 10))
}

func (m *Manager) GatewayBundleGet(creator [20]byte, id uint64) (*gateway.Bundle, bool, error) {
	bundle := new(gateway.Bundle)
	ok, err := m.getJSON(bundleKey(creator, id), bundle)
	if err != nil || !ok {
		return nil, false, err
	}
	return bundle, true, nil
}

func (m *Manager) GatewayBundlePut(bundle *gateway.Bundle) error {
	if bundle == nil {
		return nil
	}
	return m.putJSON(bundleKey(bundle.Creator, bundle.ID), bundle)
}

func giftKey(sender, recipient [20]byte, id uint64) []byte {
	return []byte("gateway/gift/" + addrHex(sender) + "/" + addrHex(recipient) + "/" + strconv.FormatUint(id, 10))
}

func (m *Manager) GatewayGiftGet(sender, recipient [20]byte, id uint64) (*gateway.Gift, bool, error) {
	gift := new(gateway.Gift)
	ok, err := m.getJSON(giftKey(sender, recipient, id), gift)
	if err != nil || !ok {
		return nil, false, err
	}
	return gift, true, nil
}

func (m *Manager) GatewayGiftPut(gift *gateway.Gift) error {
	if gift == nil {
		return nil
	}
	return m.putJSON(giftKey(gift.Sender, gift.Recipient, gift.ID), gift)
}

func (m *Manager) GatewayStatsGet() (*gateway.Stats, error) {
	stats := new(gateway.Stats)
	ok, err := m.getJSON([]byte("gateway/stats"), stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return stats, nil
}

func (m *Manager) GatewayStatsPut(stats *gateway.Stats) error {
	if stats == nil {
		return nil
	}
	return m.putJSON([]byte("gateway/stats"), stats)
}

func (m *Manager) GatewayCreatorStatsGet(creator [20]byte) (*gateway.CreatorStats, error) {
	stats := new(gateway.CreatorStats)
	ok, err := m.getJSON([]byte("gateway/creator/"+addrHex(creator)), stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return stats, nil
}

func (m *Manager) GatewayCreatorStatsPut(creator [20]byte, stats *gateway.CreatorStats) error {
	if stats == nil {
		return nil
	}
	return m.putJSON([]byte("gateway/creator/"+addrHex(creator)), stats)
}

func (m *Manager) GatewayUserStatsGet(user [20]byte) (*gateway.UserStats, error) {
	stats := new(gateway.UserStats)
	ok, err := m.getJSON([]byte("gateway/user/"+addrHex(user)), stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return stats, nil
}

func (m *Manager) GatewayUserStatsPut(user [20]byte, stats *gateway.UserStats) error {
	if stats == nil {
		return nil
	}
	return m.putJSON([]byte("gateway/user/"+addrHex(user)), stats)
}

func tierKey(creator [20]byte, name string) []byte {
	return []byte("sub/tier/" + addrHex(creator) + "/" + name)
}

func (m *Manager) SubscriptionTierGet(creator [20]byte, name string) (*subscription.Tier, bool, error) {
	tier := new(subscription.Tier)
	ok, err := m.getJSON(tierKey(creator, name), tier)
	if err != nil || !ok {
		return nil, false, err
	}
	return tier, true, nil
}

func (m *Manager) SubscriptionTierPut(tier *subscription.Tier) error {
	if tier == nil {
		return nil
	}
	return m.putJSON(tierKey(tier.Creator, tier.Name), tier)
}

func subKey(subscriber, creator [20]byte) []byte {
	return []byte("sub/row/" + addrHex(subscriber) + "/" + addrHex(creator))
}

func (m *Manager) SubscriptionGet(subscriber, creator [20]byte) (*subscription.Subscription, bool, error) {
	sub := new(subscription.Subscription)
	ok, err := m.getJSON(subKey(subscriber, creator), sub)
	if err != nil || !ok {
		return nil, false, err
	}
	return sub, true, nil
}

func (m *Manager) SubscriptionPut(sub *subscription.Subscription) error {
	if sub == nil {
		return nil
	}
	return m.putJSON(subKey(sub.Subscriber, sub.Creator), sub)
}

func (m *Manager) SubscriptionCreatorStatsGet(creator [20]byte) (*subscription.CreatorStats, error) {
	stats := new(subscription.CreatorStats)
	ok, err := m.getJSON([]byte("sub/creator/"+addrHex(creator)), stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return stats, nil
}

func (m *Manager) SubscriptionCreatorStatsPut(creator [20]byte, stats *subscription.CreatorStats) error {
	if stats == nil {
		return nil
	}
	return m.putJSON([]byte("sub/creator/"+addrHex(creator)), stats)
}

func (m *Manager) SubscriptionReferralStatsGet(referrer [20]byte) (*subscription.ReferralStats, error) {
	stats := new(subscription.ReferralStats)
	ok, err := m.getJSON([]byte("sub/referral/"+addrHex(referrer)), stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return stats, nil
}

func (m *Manager) SubscriptionReferralStatsPut(referrer [20]byte, stats *subscription.ReferralStats) error {
	if stats == nil {
		return nil
	}
	return m.putJSON([]byte("sub/referral/"+addrHex(referrer)), stats)
}

type subscriptionCounts struct {
	Total  uint64 `json:"total"`
	Active uint64 `json:"active"`
}

func (m *Manager) SubscriptionCountsGet() (uint64, uint64, error) {
	counts := new(subscriptionCounts)
	if _, err := m.getJSON([]byte("sub/counts"), counts); err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Active, nil
}

func (m *Manager) SubscriptionCountsPut(total, active uint64) error {
	return m.putJSON([]byte("sub/counts"), subscriptionCounts{Total: total, Active: active})
}
