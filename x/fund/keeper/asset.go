package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// AddAsset registers an asset in the fund's tracked list. Canonical assets
// below the dust threshold are skipped rather than rejected so that handler
// sweeps can call this unconditionally.
func (k *Keeper) AddAsset(ctx sdk.Context, fundID, asset string) error {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
	if err != nil {
		return err
	}
	if fund.HasAsset(asset) {
		return nil
	}
	if !k.policy.IsAssetPermitted(ctx, fund.Level, asset) {
		return types.ErrPolicyViolation.Wrapf("asset %s not permitted at level %d", asset, fund.Level)
	}
	if len(fund.AssetList) >= k.policy.AssetCapacity(ctx) {
		return types.ErrCapacityExceeded.Wrapf("asset list at capacity %d", len(fund.AssetList))
	}

	kind := k.resolver.Kind(ctx, asset)
	if kind == types.AssetKindCanonical {
		value, err := k.assetValue(ctx, fund, asset)
		if err != nil {
			return err
		}
		// dust is configured per denomination, not per asset
		if value.LT(k.policy.DustThreshold(ctx, fund.Denomination)) {
			return nil
		}
	}

	fund.AddAsset(asset)
	fund.UpdatedAt = ctx.BlockTime().Unix()
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeAssetAdded,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
		sdk.NewAttribute(types.AttributeKeyAsset, asset),
	))
	return nil
}

// RemoveAsset drops an asset from the tracked list. Removals that cannot
// happen yet are silent no-ops rather than errors so handler sweeps can call
// this unconditionally: the denomination while other assets remain, and
// canonical assets still at or above dust. Unsettled debt is the one hard
// failure.
func (k *Keeper) RemoveAsset(ctx sdk.Context, fundID, asset string) error {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
	if err != nil {
		return err
	}
	if !fund.HasAsset(asset) {
		return nil
	}
	if asset == fund.Denomination && !fund.OnlyDenominationLeft() {
		return nil
	}

	switch k.resolver.Kind(ctx, asset) {
	case types.AssetKindDebt:
		if !k.resolver.SignedBalance(ctx, fundID, asset).IsZero() {
			return types.ErrInvalidAmount.Wrapf("debt asset %s not settled", asset)
		}
	default:
		value, err := k.assetValue(ctx, fund, asset)
		if err != nil {
			return err
		}
		if value.GTE(k.policy.DustThreshold(ctx, fund.Denomination)) {
			return nil
		}
	}

	fund.RemoveAsset(asset)
	fund.UpdatedAt = ctx.BlockTime().Unix()
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeAssetRemoved,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
		sdk.NewAttribute(types.AttributeKeyAsset, asset),
	))
	return nil
}

// assetValue prices a single tracked asset in the fund denomination. Debt
// assets carry a signed balance and value in as a negative contribution.
func (k *Keeper) assetValue(ctx sdk.Context, fund *types.Fund, asset string) (math.LegacyDec, error) {
	if k.resolver.Kind(ctx, asset) == types.AssetKindDebt {
		balance := k.resolver.SignedBalance(ctx, fund.FundID, asset)
		if balance.IsZero() {
			return math.LegacyZeroDec(), nil
		}
		value, err := k.oracle.ValueOf(ctx, asset, balance.Abs(), fund.Denomination)
		if err != nil {
			return math.LegacyDec{}, err
		}
		return value.Neg(), nil
	}
	balance := k.vault.Balance(ctx, fund.FundID, asset)
	if asset == fund.Denomination {
		// claimable reserve is earmarked for resolved pending claims and
		// no longer belongs to shareholders
		balance = balance.Sub(fund.ClaimableReserve)
		if balance.IsNegative() {
			balance = math.LegacyZeroDec()
		}
		return balance, nil
	}
	if balance.IsZero() {
		return math.LegacyZeroDec(), nil
	}
	return k.oracle.ValueOf(ctx, asset, balance, fund.Denomination)
}

// GetGrossAssetValue sums the value of every tracked asset, floored at zero.
func (k *Keeper) GetGrossAssetValue(ctx sdk.Context, fund *types.Fund) (math.LegacyDec, error) {
	total := math.LegacyZeroDec()
	for _, asset := range fund.AssetList {
		value, err := k.assetValue(ctx, fund, asset)
		if err != nil {
			return math.LegacyDec{}, err
		}
		total = total.Add(value)
	}
	if total.IsNegative() {
		return math.LegacyZeroDec(), nil
	}
	return total, nil
}

// LiquidReserve returns the spendable denomination balance, net of the
// claimable reserve.
func (k *Keeper) LiquidReserve(ctx sdk.Context, fund *types.Fund) math.LegacyDec {
	balance := k.vault.Balance(ctx, fund.FundID, fund.Denomination).Sub(fund.ClaimableReserve)
	if balance.IsNegative() {
		return math.LegacyZeroDec()
	}
	return balance
}
