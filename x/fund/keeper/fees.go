package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// ClaimManagementFee accrues the management fee since the last claim and
// mints the dilution shares to the manager. Safe to call repeatedly; the
// second call in the same second is a no-op.
func (k *Keeper) ClaimManagementFee(ctx sdk.Context, fundID string) (math.LegacyDec, error) {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
	if err != nil {
		return math.LegacyDec{}, err
	}
	minted := k.accrueManagementFee(ctx, fund)
	k.SetFund(ctx, fund)

	if minted.IsPositive() {
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeManagementFee,
			sdk.NewAttribute(types.AttributeKeyFundID, fundID),
			sdk.NewAttribute(types.AttributeKeyManager, fund.Manager),
			sdk.NewAttribute(types.AttributeKeyShare, minted.String()),
		))
	}
	return minted, nil
}

// accrueManagementFee mints dilution shares to the manager in-place on fund.
// Callers persist the fund.
func (k *Keeper) accrueManagementFee(ctx sdk.Context, fund *types.Fund) math.LegacyDec {
	minted := fund.ManagementFee.Accrue(ctx.BlockTime().Unix(), fund.TotalShare)
	if !minted.IsPositive() {
		return math.LegacyZeroDec()
	}
	fund.TotalShare = fund.TotalShare.Add(minted)
	k.AddBalance(ctx, fund.FundID, fund.Manager, minted)
	return minted
}

// updatePerformanceFee refreshes the outstanding share buffer against the
// current gross asset value. Must run after management fee accrual so the
// net share base is current.
func (k *Keeper) updatePerformanceFee(ctx sdk.Context, fund *types.Fund, gav math.LegacyDec) {
	fund.PerformanceFee.Update(gav, fund.TotalShare)
	fund.LastGrossAssetValue = gav
}

// Crystallize converts the outstanding performance fee buffer into real
// manager shares and resets the high-water mark. Only callable once the
// crystallization boundary has passed; a single call catches up all missed
// periods.
func (k *Keeper) Crystallize(ctx sdk.Context, fundID string) (math.LegacyDec, error) {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
	if err != nil {
		return math.LegacyDec{}, err
	}
	if err := k.checkPolicyActive(ctx, fundID); err != nil {
		return math.LegacyDec{}, err
	}

	k.accrueManagementFee(ctx, fund)

	gav, err := k.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return math.LegacyDec{}, err
	}
	harvest, err := fund.PerformanceFee.Crystallize(gav, fund.TotalShare, ctx.BlockTime().Unix())
	if err != nil {
		return math.LegacyDec{}, err
	}
	if harvest.IsPositive() {
		fund.TotalShare = fund.TotalShare.Add(harvest)
		k.AddBalance(ctx, fundID, fund.Manager, harvest)
	}
	fund.LastGrossAssetValue = gav
	fund.UpdatedAt = ctx.BlockTime().Unix()
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeCrystallized,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
		sdk.NewAttribute(types.AttributeKeyManager, fund.Manager),
		sdk.NewAttribute(types.AttributeKeyHarvest, harvest.String()),
		sdk.NewAttribute(types.AttributeKeyGAV, gav.String()),
	))
	return harvest, nil
}
