package types

import (
	"time"

	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "fund"
	StoreKey   = ModuleName
)

// FundState is the lifecycle state of a fund.
type FundState uint8

// Lifecycle states, in transition order.
const (
	StateInitializing FundState = iota
	StateReviewing
	StateExecuting
	StatePending
	StateLiquidating
	StateClosed
)

// String returns the human-readable state name.
func (s FundState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReviewing:
		return "reviewing"
	case StateExecuting:
		return "executing"
	case StatePending:
		return "pending"
	case StateLiquidating:
		return "liquidating"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Percentage and share constants
var (
	// PercentageBase is the basis-point denominator for all rates.
	PercentageBase = int64(10000)

	// MinimumShare is burned on the first purchase of a fund to pin the
	// initial share price against manipulation with near-zero deposits.
	MinimumShare = math.LegacyNewDec(1000)

	// OneYear is the fee-accrual year in seconds (365.25 days).
	OneYear = int64(31557600)

	// MinCrystallizationPeriod floors the performance fee period.
	MinCrystallizationPeriod = int64(3600)
)

// Asset resolver kinds
const (
	AssetKindCanonical = "canonical"
	AssetKindDebt      = "debt"
)

// Fund is the complete state of a single fund instance. It is the exclusive
// owner of all share, fee, asset and pending-round bookkeeping; the policy
// gate is consulted read-only and never mutated from here.
type Fund struct {
	FundID       string    `json:"fund_id"`
	State        FundState `json:"state"`
	Level        uint32    `json:"level"`
	Manager      string    `json:"manager"`
	Denomination string    `json:"denomination"`

	// AssetList is the ordered set of held assets; the denomination is the
	// first member from finalize until close.
	AssetList []string `json:"asset_list"`

	// Share accounting. TotalShare counts investor, manager and burned
	// minimum shares plus shares parked in an open pending round; the
	// performance-fee outstanding buffer is tracked separately.
	TotalShare math.LegacyDec `json:"total_share"`

	// ClaimableReserve is denomination cash earmarked for resolved pending
	// rounds; it is excluded from gross asset value and from the liquid
	// reserve available to redemptions and execution.
	ClaimableReserve math.LegacyDec `json:"claimable_reserve"`

	LastGrossAssetValue  math.LegacyDec `json:"last_gross_asset_value"`
	ReserveExecutionBps  int64          `json:"reserve_execution_bps"`
	PendingStartTime     int64          `json:"pending_start_time"`
	CurrentPendingRound  int64          `json:"current_pending_round"`

	ManagementFee  ManagementFeeState  `json:"management_fee"`
	PerformanceFee PerformanceFeeState `json:"performance_fee"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewFund creates a fund in the Initializing state.
func NewFund(fundID string) *Fund {
	now := time.Now().Unix()
	return &Fund{
		FundID:              fundID,
		State:               StateInitializing,
		AssetList:           nil,
		TotalShare:          math.LegacyZeroDec(),
		ClaimableReserve:    math.LegacyZeroDec(),
		LastGrossAssetValue: math.LegacyZeroDec(),
		ManagementFee:       NewManagementFeeState(),
		PerformanceFee:      NewPerformanceFeeState(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// GrossTotalShare is the share supply including the performance-fee
// outstanding buffer; it is the denominator of the gross share price.
func (f *Fund) GrossTotalShare() math.LegacyDec {
	return f.TotalShare.Add(f.PerformanceFee.OutstandingShare)
}

// GrossSharePrice returns gav / gross total share, or 1.0 for an empty fund.
func (f *Fund) GrossSharePrice(gav math.LegacyDec) math.LegacyDec {
	total := f.GrossTotalShare()
	if total.IsZero() {
		return math.LegacyOneDec()
	}
	return gav.QuoTruncate(total)
}

// ShareToBalance converts a share amount to denomination value at the
// current gross share price. Rounds down.
func (f *Fund) ShareToBalance(share, gav math.LegacyDec) math.LegacyDec {
	total := f.GrossTotalShare()
	if total.IsZero() {
		return math.LegacyZeroDec()
	}
	return share.MulTruncate(gav).QuoTruncate(total)
}

// CalculateShare converts a deposit amount to shares minted at the current
// gross share price, before the deposit enters the denominator. The first
// purchase burns MinimumShare permanently.
func (f *Fund) CalculateShare(amount, gav math.LegacyDec) (math.LegacyDec, error) {
	if amount.IsZero() {
		return math.LegacyZeroDec(), nil
	}
	if f.TotalShare.IsZero() {
		if amount.LTE(MinimumShare) {
			return math.LegacyZeroDec(), ErrZeroShare
		}
		return amount.Sub(MinimumShare), nil
	}
	if gav.IsZero() || gav.IsNegative() {
		return math.LegacyZeroDec(), ErrZeroShare
	}
	share := amount.MulTruncate(f.GrossTotalShare()).QuoTruncate(gav)
	if share.IsZero() {
		return math.LegacyZeroDec(), ErrZeroShare
	}
	return share, nil
}

// HasAsset reports whether addr is a member of the asset list.
func (f *Fund) HasAsset(addr string) bool {
	for _, a := range f.AssetList {
		if a == addr {
			return true
		}
	}
	return false
}

// AddAsset appends addr if absent.
func (f *Fund) AddAsset(addr string) {
	if !f.HasAsset(addr) {
		f.AssetList = append(f.AssetList, addr)
	}
}

// RemoveAsset drops addr from the asset list if present.
func (f *Fund) RemoveAsset(addr string) {
	for i, a := range f.AssetList {
		if a == addr {
			f.AssetList = append(f.AssetList[:i], f.AssetList[i+1:]...)
			return
		}
	}
}

// OnlyDenominationLeft reports whether the asset list is fully drained down
// to the denomination, the precondition for closing.
func (f *Fund) OnlyDenominationLeft() bool {
	return len(f.AssetList) == 1 && f.AssetList[0] == f.Denomination
}

// PendingRound batches redemption claims awaiting vault liquidity.
// TotalPendingShare is the penalized share amount owed to redeemers;
// BonusPool holds the withheld penalty shares still grantable to purchasers
// who supply resolving liquidity.
type PendingRound struct {
	Round             int64          `json:"round"`
	TotalPendingShare math.LegacyDec `json:"total_pending_share"`
	TotalPenalty      math.LegacyDec `json:"total_penalty"`
	BonusPool         math.LegacyDec `json:"bonus_pool"`
	TotalRedemption   math.LegacyDec `json:"total_redemption"`
	UnclaimedShare    math.LegacyDec `json:"unclaimed_share"`
	StartTime         int64          `json:"start_time"`
	Resolved          bool           `json:"resolved"`
	ResolvedAt        int64          `json:"resolved_at"`
}

// NewPendingRound opens round n at the given block time.
func NewPendingRound(n, startTime int64) *PendingRound {
	return &PendingRound{
		Round:             n,
		TotalPendingShare: math.LegacyZeroDec(),
		TotalPenalty:      math.LegacyZeroDec(),
		BonusPool:         math.LegacyZeroDec(),
		TotalRedemption:   math.LegacyZeroDec(),
		UnclaimedShare:    math.LegacyZeroDec(),
		StartTime:         startTime,
	}
}

// ClaimAmount apportions the round's redemption value pro-rata to a claim's
// pending share. Rounds down.
func (r *PendingRound) ClaimAmount(pendingShare math.LegacyDec) math.LegacyDec {
	if !r.Resolved || r.TotalPendingShare.IsZero() {
		return math.LegacyZeroDec()
	}
	return pendingShare.MulTruncate(r.TotalRedemption).QuoTruncate(r.TotalPendingShare)
}

// PendingClaim is one investor's stake in a pending round. It is destroyed
// once claimed.
type PendingClaim struct {
	Investor     string         `json:"investor"`
	Round        int64          `json:"round"`
	PendingShare math.LegacyDec `json:"pending_share"`
	CreatedAt    int64          `json:"created_at"`
}

// SharePricePoint is a historical gross-share-price observation recorded at
// end of block.
type SharePricePoint struct {
	FundID          string         `json:"fund_id"`
	GrossAssetValue math.LegacyDec `json:"gross_asset_value"`
	SharePrice      math.LegacyDec `json:"share_price"`
	Timestamp       int64          `json:"timestamp"`
}

// BpsToDec converts a basis-point rate to its decimal fraction.
func BpsToDec(bps int64) math.LegacyDec {
	return math.LegacyNewDec(bps).QuoInt64(PercentageBase)
}
