package types

import (
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "policy"
	StoreKey   = ModuleName
)

// Params are the system-wide economic knobs consulted by the fund module.
// All rates are basis points over PercentageBase.
type Params struct {
	PendingPenaltyRate int64 `json:"pending_penalty_rate"`
	ExecutionFeeRate   int64 `json:"execution_fee_rate"`
	ValueTolerance     int64 `json:"value_tolerance"`
	AssetCapacity      int   `json:"asset_capacity"`
	PendingExpiration  int64 `json:"pending_expiration"`
}

// PercentageBase mirrors the fund module's basis-point denominator.
const PercentageBase = int64(10000)

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		PendingPenaltyRate: 100,
		ExecutionFeeRate:   20,
		ValueTolerance:     9000,
		AssetCapacity:      64,
		PendingExpiration:  4 * 7 * 24 * 3600,
	}
}

// Validate checks every parameter range.
func (p Params) Validate() error {
	if p.PendingPenaltyRate < 0 || p.PendingPenaltyRate >= PercentageBase {
		return ErrInvalidParams.Wrapf("pending penalty rate %d", p.PendingPenaltyRate)
	}
	if p.ExecutionFeeRate < 0 || p.ExecutionFeeRate >= PercentageBase {
		return ErrInvalidParams.Wrapf("execution fee rate %d", p.ExecutionFeeRate)
	}
	if p.ValueTolerance < 0 || p.ValueTolerance > PercentageBase {
		return ErrInvalidParams.Wrapf("value tolerance %d", p.ValueTolerance)
	}
	if p.AssetCapacity <= 0 {
		return ErrInvalidParams.Wrapf("asset capacity %d", p.AssetCapacity)
	}
	if p.PendingExpiration <= 0 {
		return ErrInvalidParams.Wrapf("pending expiration %d", p.PendingExpiration)
	}
	return nil
}

// AssetPermission whitelists one asset at one fund level.
type AssetPermission struct {
	Level uint32 `json:"level"`
	Asset string `json:"asset"`
}

// CallPermission whitelists one target/signature pair at one fund level. The
// same shape serves both handler calls and delegate calls.
type CallPermission struct {
	Level  uint32 `json:"level"`
	Target string `json:"target"`
	Sig    string `json:"sig"`
}

// DenominationConfig marks a denomination usable by new funds and carries its
// dust threshold.
type DenominationConfig struct {
	Denom         string         `json:"denom"`
	DustThreshold math.LegacyDec `json:"dust_threshold"`
}
