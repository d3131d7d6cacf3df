package registry

import (
	"encoding/hex"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"stackstream/core/events"
	"stackstream/core/types"
	"stackstream/native/params"
)

type engineState interface {
	RegistryProfileGet(addr [20]byte) (*Profile, bool, error)
	RegistryProfilePut(profile *Profile) error
	RegistryUsernameGet(username string) ([20]byte, bool, error)
	RegistryUsernamePut(username string, addr [20]byte) error
	RegistryContentGet(creator [20]byte, id uint64) (*Content, bool, error)
	RegistryContentPut(content *Content) error
	RegistryBadgeGet(id uint64) ([20]byte, bool, error)
	RegistryBadgePut(id uint64, owner [20]byte) error
	RegistryCountersGet() (*Counters, error)
	RegistryCountersPut(counters *Counters) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine implements the creator registry state transitions: registration,
// profile management, verification staking, and the content catalog.
type Engine struct {
	state    engineState
	emitter  events.Emitter
	nowFn    func() int64
	params   params.Params
	owner    [20]byte
	treasury [20]byte
	gateway  [20]byte
}

// NewEngine constructs a registry engine with default dependencies.
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

// SetGateway restricts RecordContentAccess to the supplied gateway identity.
// A zero address leaves the call open to any caller.
func (e *Engine) SetGateway(addr [20]byte) { e.gateway = addr }

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

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// chargeFee moves a fixed fee from the caller to the platform treasury. The
// caller's balance is checked before any write.
func (e *Engine) chargeFee(caller [20]byte, fee uint64) error {
	if isZeroAddress(e.treasury) {
		return ErrTreasuryNotSet
	}
	amount := new(big.Int).SetUint64(fee)
	callerAcc, err := e.state.GetAccount(caller[:])
	if err != nil {
		return err
	}
	callerAcc = ensureAccount(callerAcc)
	if callerAcc.BalanceSTX.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	treasuryAcc, err := e.state.GetAccount(e.treasury[:])
	if err != nil {
		return err
	}
	treasuryAcc = ensureAccount(treasuryAcc)
	callerAcc.BalanceSTX = new(big.Int).Sub(callerAcc.BalanceSTX, amount)
	treasuryAcc.BalanceSTX = new(big.Int).Add(treasuryAcc.BalanceSTX, amount)
	if err := e.state.PutAccount(caller[:], callerAcc); err != nil {
		return err
	}
	return e.state.PutAccount(e.treasury[:], treasuryAcc)
}

// RegisterCreator creates a profile for the caller. Usernames are globally
// unique and at least MinUsernameLength characters; one profile per address.
func (e *Engine) RegisterCreator(caller [20]byte, username, bio, avatarURL string) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	normalized := normalizeUsername(username)
	if utf8.RuneCountInString(normalized) < e.params.MinUsernameLength {
		return nil, ErrInvalidInput
	}
	if _, ok, err := e.state.RegistryProfileGet(caller); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyExists
	}
	if _, ok, err := e.state.RegistryUsernameGet(normalized); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyExists
	}
	if err := e.chargeFee(caller, e.params.RegistrationFee); err != nil {
		return nil, err
	}
	profile := &Profile{
		Address:           caller,
		Username:          normalized,
		Bio:               strings.TrimSpace(bio),
		AvatarURL:         strings.TrimSpace(avatarURL),
		ReputationScore:   e.params.InitialReputation,
		TotalRevenue:      big.NewInt(0),
		RegisteredAt:      e.now(),
		VerificationStake: big.NewInt(0),
	}
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return nil, err
	}
	if err := e.state.RegistryUsernamePut(normalized, caller); err != nil {
		return nil, err
	}
	counters, err := e.state.RegistryCountersGet()
	if err != nil {
		return nil, err
	}
	if counters == nil {
		counters = &Counters{}
	}
	counters.TotalCreators++
	if err := e.state.RegistryCountersPut(counters); err != nil {
		return nil, err
	}
	e.emit(CreatorRegisteredEvent(hexAddr(caller), normalized))
	return profile.Clone(), nil
}

// UpdateProfile replaces the caller's bio and avatar for a small fee.
func (e *Engine) UpdateProfile(caller [20]byte, bio, avatarURL string) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	profile, ok, err := e.state.RegistryProfileGet(caller)
	if err != nil {
		return nil, err
	}
	if !ok || profile == nil {
		return nil, ErrNotFound
	}
	if err := e.chargeFee(caller, e.params.ProfileUpdateFee); err != nil {
		return nil, err
	}
	profile.Bio = strings.TrimSpace(bio)
	profile.AvatarURL = strings.TrimSpace(avatarURL)
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return nil, err
	}
	e.emit(&types.Event{Type: EventTypeProfileUpdated, Attributes: map[string]string{"creator": hexAddr(caller)}})
	return profile.Clone(), nil
}

// UpdateCategory replaces the caller's category for the same update fee.
func (e *Engine) UpdateCategory(caller [20]byte, category string) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	profile, ok, err := e.state.RegistryProfileGet(caller)
	if err != nil {
		return nil, err
	}
	if !ok || profile == nil {
		return nil, ErrNotFound
	}
	if err := e.chargeFee(caller, e.params.ProfileUpdateFee); err != nil {
		return nil, err
	}
	profile.Category = strings.TrimSpace(category)
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return nil, err
	}
	e.emit(&types.Event{Type: EventTypeProfileUpdated, Attributes: map[string]string{"creator": hexAddr(caller)}})
	return profile.Clone(), nil
}

// VerifyIdentity locks the verification stake, flags the profile verified,
// awards the reputation bonus, and mints the next sequential badge.
func (e *Engine) VerifyIdentity(caller [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	profile, ok, err := e.state.RegistryProfileGet(caller)
	if err != nil {
		return 0, err
	}
	if !ok || profile == nil {
		return 0, ErrNotFound
	}
	if profile.Verified {
		return 0, ErrAlreadyExists
	}
	stake := new(big.Int).SetUint64(e.params.VerificationStake)
	callerAcc, err := e.state.GetAccount(caller[:])
	if err != nil {
		return 0, err
	}
	callerAcc = ensureAccount(callerAcc)
	if callerAcc.BalanceSTX.Cmp(stake) < 0 {
		return 0, ErrInsufficientFunds
	}
	callerAcc.BalanceSTX = new(big.Int).Sub(callerAcc.BalanceSTX, stake)
	if err := e.state.PutAccount(caller[:], callerAcc); err != nil {
		return 0, err
	}
	profile.Verified = true
	profile.VerificationStake = stake
	profile.ReputationScore += e.params.VerificationRepBonus
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return 0, err
	}
	counters, err := e.state.RegistryCountersGet()
	if err != nil {
		return 0, err
	}
	if counters == nil {
		counters = &Counters{}
	}
	counters.LastBadgeID++
	badgeID := counters.LastBadgeID
	if err := e.state.RegistryBadgePut(badgeID, caller); err != nil {
		return 0, err
	}
	if err := e.state.RegistryCountersPut(counters); err != nil {
		return 0, err
	}
	e.emit(IdentityVerifiedEvent(hexAddr(caller), formatUint(badgeID), stake.String()))
	return badgeID, nil
}

// RefundVerificationStake returns the locked stake and clears the verified
// flag. The reputation bonus and the minted badge are retained.
func (e *Engine) RefundVerificationStake(caller [20]byte) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	profile, ok, err := e.state.RegistryProfileGet(caller)
	if err != nil {
		return nil, err
	}
	if !ok || profile == nil {
		return nil, ErrNotFound
	}
	if !profile.Verified {
		return nil, ErrNotFound
	}
	refund := new(big.Int).Set(profile.VerificationStake)
	callerAcc, err := e.state.GetAccount(caller[:])
	if err != nil {
		return nil, err
	}
	callerAcc = ensureAccount(callerAcc)
	callerAcc.BalanceSTX = new(big.Int).Add(callerAcc.BalanceSTX, refund)
	if err := e.state.PutAccount(caller[:], callerAcc); err != nil {
		return nil, err
	}
	profile.Verified = false
	profile.VerificationStake = big.NewInt(0)
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return nil, err
	}
	e.emit(StakeRefundedEvent(hexAddr(caller), refund.String()))
	return profile.Clone(), nil
}

// AddContent publishes a catalog entry. Content ids are allocated per
// creator starting at 1 and the publication bumps the creator's reputation.
func (e *Engine) AddContent(caller [20]byte, title, description string, hash [32]byte, price *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidInput
	}
	profile, ok, err := e.state.RegistryProfileGet(caller)
	if err != nil {
		return 0, err
	}
	if !ok || profile == nil {
		return 0, ErrNotFound
	}
	contentID := profile.TotalContent + 1
	content := &Content{
		Creator:     caller,
		ID:          contentID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Hash:        hash,
		Price:       new(big.Int).Set(price),
		Active:      true,
		Revenue:     big.NewInt(0),
	}
	if err := e.state.RegistryContentPut(content); err != nil {
		return 0, err
	}
	profile.TotalContent = contentID
	profile.ReputationScore += e.params.ContentRepBonus
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return 0, err
	}
	e.emit(ContentAddedEvent(hexAddr(caller), formatUint(contentID), price.String()))
	return contentID, nil
}

// ToggleContentStatus flips the active flag on content owned by the caller.
func (e *Engine) ToggleContentStatus(caller [20]byte, contentID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	content, ok, err := e.state.RegistryContentGet(caller, contentID)
	if err != nil {
		return false, err
	}
	if !ok || content == nil {
		return false, ErrNotFound
	}
	content.Active = !content.Active
	if err := e.state.RegistryContentPut(content); err != nil {
		return false, err
	}
	e.emit(&types.Event{Type: EventTypeContentToggled, Attributes: map[string]string{
		"creator":   hexAddr(caller),
		"contentId": formatUint(contentID),
	}})
	return content.Active, nil
}

// RecordContentAccess credits a settlement share against a content item and
// its creator's lifetime revenue. When a gateway identity is configured only
// that identity may record access.
func (e *Engine) RecordContentAccess(caller, creator [20]byte, contentID uint64, creatorShare *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if creatorShare == nil || creatorShare.Sign() < 0 {
		return ErrInvalidInput
	}
	if !isZeroAddress(e.gateway) && caller != e.gateway {
		return ErrUnauthorized
	}
	content, ok, err := e.state.RegistryContentGet(creator, contentID)
	if err != nil {
		return err
	}
	if !ok || content == nil {
		return ErrNotFound
	}
	profile, ok, err := e.state.RegistryProfileGet(creator)
	if err != nil {
		return err
	}
	if !ok || profile == nil {
		return ErrNotFound
	}
	content.AccessCount++
	content.Revenue = new(big.Int).Add(content.Revenue, creatorShare)
	if err := e.state.RegistryContentPut(content); err != nil {
		return err
	}
	profile.TotalRevenue = new(big.Int).Add(profile.TotalRevenue, creatorShare)
	if err := e.state.RegistryProfilePut(profile); err != nil {
		return err
	}
	e.emit(ContentAccessedEvent(hexAddr(creator), formatUint(contentID), creatorShare.String()))
	return nil
}

// AdjustCreatorReputation sets a creator's reputation score directly. Owner only.
func (e *Engine) AdjustCreatorReputation(caller, creator [20]byte, score uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if caller != e.owner {
		return ErrOwnerOnly
	}
	profile, ok, err := e.state.RegistryProfileGet(creator)
	if err != nil {
		return err
	}
	if !ok || profile == nil {
		return ErrNotFound
	}
	profile.ReputationScore = score
	return e.state.RegistryProfilePut(profile)
}

// SetPlatformTreasury points the registry at a new treasury address. Owner only.
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

// GetCreator returns the profile stored for an address.
func (e *Engine) GetCreator(addr [20]byte) (*Profile, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.RegistryProfileGet(addr)
}

// GetCreatorByUsername resolves a username to its profile. Unknown usernames
// report absence rather than an error.
func (e *Engine) GetCreatorByUsername(username string) (*Profile, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	addr, ok, err := e.state.RegistryUsernameGet(normalizeUsername(username))
	if err != nil || !ok {
		return nil, false, err
	}
	return e.state.RegistryProfileGet(addr)
}

// GetContent returns a catalog entry.
func (e *Engine) GetContent(creator [20]byte, contentID uint64) (*Content, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.RegistryContentGet(creator, contentID)
}

// TotalCreators reports the number of registered profiles.
func (e *Engine) TotalCreators() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	counters, err := e.state.RegistryCountersGet()
	if err != nil {
		return 0, err
	}
	if counters == nil {
		return 0, nil
	}
	return counters.TotalCreators, nil
}

// CreatorContentCount reports how many items a creator has published.
func (e *Engine) CreatorContentCount(creator [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	profile, ok, err := e.state.RegistryProfileGet(creator)
	if err != nil {
		return 0, err
	}
	if !ok || profile == nil {
		return 0, ErrNotFound
	}
	return profile.TotalContent, nil
}

// BadgeOwner resolves the owner of a verification badge.
func (e *Engine) BadgeOwner(badgeID uint64) ([20]byte, bool, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, false, ErrNilState
	}
	return e.state.RegistryBadgeGet(badgeID)
}
