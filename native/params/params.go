package params

import "fmt"

// Basis-point denominator shared by every fee computation.
const BpsDenominator = 10_000

// Default economic constants, denominated in micro-STX unless stated
// otherwise. These mirror the deployed platform configuration.
const (
	DefaultRegistrationFee   = 1_000_000
	DefaultProfileUpdateFee  = 100_000
	DefaultVerificationStake = 10_000_000

	DefaultInitialReputation     = 100
	DefaultVerificationRepBonus  = 500
	DefaultContentRepBonus       = 10
	DefaultMinUsernameLength     = 3
	DefaultMinContentPrice       = 100_000
	DefaultMaxContentPrice       = 10_000_000
	DefaultCreatorShareBps       = 9_500
	DefaultBatchDiscountMinItems = 10
	DefaultBatchDiscountBps      = 1_000
	DefaultMaxBundleDiscountBps  = 5_000
	DefaultMinBundleItems        = 2
	DefaultReferralBps           = 500

	DefaultTier1MinPrice = 5_000_000
	DefaultTier1MaxPrice = 25_000_000
	DefaultTier2MaxPrice = 50_000_000
	DefaultTier3MaxPrice = 100_000_000
)

// Params bundles every tunable constant consumed by the settlement engines.
// All values have working defaults; a zero-value Params is not usable and
// must be seeded through Default.
type Params struct {
	RegistrationFee   uint64 `toml:"RegistrationFee" json:"registrationFee"`
	ProfileUpdateFee  uint64 `toml:"ProfileUpdateFee" json:"profileUpdateFee"`
	VerificationStake uint64 `toml:"VerificationStake" json:"verificationStake"`

	InitialReputation    uint64 `toml:"InitialReputation" json:"initialReputation"`
	VerificationRepBonus uint64 `toml:"VerificationRepBonus" json:"verificationRepBonus"`
	ContentRepBonus      uint64 `toml:"ContentRepBonus" json:"contentRepBonus"`
	MinUsernameLength    int    `toml:"MinUsernameLength" json:"minUsernameLength"`

	MinContentPrice uint64 `toml:"MinContentPrice" json:"minContentPrice"`
	MaxContentPrice uint64 `toml:"MaxContentPrice" json:"maxContentPrice"`
	CreatorShareBps uint64 `toml:"CreatorShareBps" json:"creatorShareBps"`

	BatchDiscountMinItems uint64 `toml:"BatchDiscountMinItems" json:"batchDiscountMinItems"`
	BatchDiscountBps      uint64 `toml:"BatchDiscountBps" json:"batchDiscountBps"`
	MaxBundleDiscountBps  uint64 `toml:"MaxBundleDiscountBps" json:"maxBundleDiscountBps"`
	MinBundleItems        int    `toml:"MinBundleItems" json:"minBundleItems"`

	ReferralBps uint64 `toml:"ReferralBps" json:"referralBps"`

	Tier1MinPrice uint64 `toml:"Tier1MinPrice" json:"tier1MinPrice"`
	Tier1MaxPrice uint64 `toml:"Tier1MaxPrice" json:"tier1MaxPrice"`
	Tier2MaxPrice uint64 `toml:"Tier2MaxPrice" json:"tier2MaxPrice"`
	Tier3MaxPrice uint64 `toml:"Tier3MaxPrice" json:"tier3MaxPrice"`
}

// Default returns the platform defaults.
func Default() Params {
	return Params{
		RegistrationFee:       DefaultRegistrationFee,
		ProfileUpdateFee:      DefaultProfileUpdateFee,
		VerificationStake:     DefaultVerificationStake,
		InitialReputation:     DefaultInitialReputation,
		VerificationRepBonus:  DefaultVerificationRepBonus,
		ContentRepBonus:       DefaultContentRepBonus,
		MinUsernameLength:     DefaultMinUsernameLength,
		MinContentPrice:       DefaultMinContentPrice,
		MaxContentPrice:       DefaultMaxContentPrice,
		CreatorShareBps:       DefaultCreatorShareBps,
		BatchDiscountMinItems: DefaultBatchDiscountMinItems,
		BatchDiscountBps:      DefaultBatchDiscountBps,
		MaxBundleDiscountBps:  DefaultMaxBundleDiscountBps,
		MinBundleItems:        DefaultMinBundleItems,
		ReferralBps:           DefaultReferralBps,
		Tier1MinPrice:         DefaultTier1MinPrice,
		Tier1MaxPrice:         DefaultTier1MaxPrice,
		Tier2MaxPrice:         DefaultTier2MaxPrice,
		Tier3MaxPrice:         DefaultTier3MaxPrice,
	}
}

// Validate rejects configurations the engines cannot operate under.
func (p Params) Validate() error {
	if p.RegistrationFee == 0 {
		return fmt.Errorf("params: registration fee must be positive")
	}
	if p.ProfileUpdateFee == 0 {
		return fmt.Errorf("params: profile update fee must be positive")
	}
	if p.VerificationStake == 0 {
		return fmt.Errorf("params: verification stake must be positive")
	}
	if p.MinUsernameLength < 1 {
		return fmt.Errorf("params: minimum username length must be at least 1")
	}
	if p.MinContentPrice == 0 || p.MinContentPrice >= p.MaxContentPrice {
		return fmt.Errorf("params: content price band [%d, %d] is invalid", p.MinContentPrice, p.MaxContentPrice)
	}
	if p.CreatorShareBps == 0 || p.CreatorShareBps > BpsDenominator {
		return fmt.Errorf("params: creator share %d bps out of range", p.CreatorShareBps)
	}
	if p.BatchDiscountBps > BpsDenominator {
		return fmt.Errorf("params: batch discount %d bps out of range", p.BatchDiscountBps)
	}
	if p.BatchDiscountMinItems == 0 {
		return fmt.Errorf("params: batch discount threshold must be positive")
	}
	if p.MaxBundleDiscountBps > BpsDenominator {
		return fmt.Errorf("params: bundle discount cap %d bps out of range", p.MaxBundleDiscountBps)
	}
	if p.MinBundleItems < 2 {
		return fmt.Errorf("params: bundles require at least 2 items")
	}
	if p.ReferralBps > p.CreatorShareBps {
		return fmt.Errorf("params: referral share %d bps exceeds creator share", p.ReferralBps)
	}
	if p.Tier1MinPrice == 0 || p.Tier1MinPrice >= p.Tier1MaxPrice {
		return fmt.Errorf("params: tier 1 price band is invalid")
	}
	if p.Tier1MaxPrice >= p.Tier2MaxPrice || p.Tier2MaxPrice >= p.Tier3MaxPrice {
		return fmt.Errorf("params: tier price bands must be strictly increasing")
	}
	return nil
}

// TierLevel resolves the tier level for a monthly price, returning 0 when the
// price falls outside every configured band.
func (p Params) TierLevel(monthlyPrice uint64) uint8 {
	switch {
	case monthlyPrice >= p.Tier1MinPrice && monthlyPrice <= p.Tier1MaxPrice:
		return 1
	case monthlyPrice > p.Tier1MaxPrice && monthlyPrice <= p.Tier2MaxPrice:
		return 2
	case monthlyPrice > p.Tier2MaxPrice && monthlyPrice <= p.Tier3MaxPrice:
		return 3
	default:
		return 0
	}
}
