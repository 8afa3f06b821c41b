package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// Execute runs a whitelisted adapter operation for the fund manager. The
// gross asset value is snapshotted around the call and a drop past the
// policy tolerance reverts the whole operation. Both hooks fire on every
// path that reaches the adapter. Delegated calls are gated by the delegate
// table instead of the handler table. Value gained by the call is charged
// the policy's execution fee, minted as shares to the protocol authority.
func (k *Keeper) Execute(ctx sdk.Context, fundID, sender, target, sig string, data []byte, delegated bool) ([]byte, error) {
	var result []byte
	err := k.enter(func() error {
		fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
		if err != nil {
			return err
		}
		if err := k.checkPolicyActive(ctx, fundID); err != nil {
			return err
		}
		if sender != fund.Manager {
			return types.ErrUnauthorized.Wrapf("sender %s is not the manager", sender)
		}
		if delegated {
			if !k.policy.IsDelegateCallPermitted(ctx, fund.Level, target, sig) {
				return types.ErrPolicyViolation.Wrapf("delegate call %s %s not permitted at level %d", target, sig, fund.Level)
			}
		} else if !k.policy.IsHandlerPermitted(ctx, fund.Level, target, sig) {
			return types.ErrPolicyViolation.Wrapf("handler %s %s not permitted at level %d", target, sig, fund.Level)
		}

		valueBefore, err := k.beforeExecute(ctx, fund)
		if err != nil {
			return err
		}

		result, err = k.adapter.Perform(ctx, fundID, target, sig, data)
		if err != nil {
			return err
		}

		valueAfter, err := k.afterExecute(ctx, fund)
		if err != nil {
			return err
		}

		tolerance := types.BpsToDec(k.policy.ValueTolerance(ctx))
		if valueAfter.LT(valueBefore.MulTruncate(tolerance)) {
			return types.ErrToleranceExceeded.Wrapf("value %s fell below %s of %s",
				valueAfter, tolerance, valueBefore)
		}
		if err := k.checkReserveRatio(ctx, fund, valueAfter); err != nil {
			return err
		}
		k.chargeExecutionFee(ctx, fund, valueBefore, valueAfter)

		fund.UpdatedAt = ctx.BlockTime().Unix()
		k.SetFund(ctx, fund)

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeExecuted,
			sdk.NewAttribute(types.AttributeKeyFundID, fundID),
			sdk.NewAttribute(types.AttributeKeyTarget, target),
			sdk.NewAttribute(types.AttributeKeyGAV, valueAfter.String()),
		))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// beforeExecute claims the accrued management fee and snapshots value.
func (k *Keeper) beforeExecute(ctx sdk.Context, fund *types.Fund) (math.LegacyDec, error) {
	k.accrueManagementFee(ctx, fund)
	value, err := k.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return math.LegacyDec{}, err
	}
	k.logger.Debug("execute begin", "fund", fund.FundID, "value", value)
	return value, nil
}

// afterExecute revalues the fund and refreshes the performance fee buffer.
func (k *Keeper) afterExecute(ctx sdk.Context, fund *types.Fund) (math.LegacyDec, error) {
	value, err := k.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return math.LegacyDec{}, err
	}
	k.updatePerformanceFee(ctx, fund, value)
	k.logger.Debug("execute end", "fund", fund.FundID, "value", value)
	return value, nil
}

// chargeExecutionFee takes the policy's cut of the value an execution gained,
// minted as dilution shares to the protocol authority. Loss-making calls pay
// nothing. Mutates fund in-place; callers persist it.
func (k *Keeper) chargeExecutionFee(ctx sdk.Context, fund *types.Fund, valueBefore, valueAfter math.LegacyDec) {
	rate := k.policy.ExecutionFeeRate(ctx)
	if rate <= 0 || fund.TotalShare.IsZero() {
		return
	}
	gain := valueAfter.Sub(valueBefore)
	if !gain.IsPositive() {
		return
	}
	feeValue := gain.MulTruncate(types.BpsToDec(rate))
	base := valueAfter.Sub(feeValue)
	if !base.IsPositive() {
		return
	}
	feeShare := feeValue.MulTruncate(fund.TotalShare).QuoTruncate(base)
	if !feeShare.IsPositive() {
		return
	}
	fund.TotalShare = fund.TotalShare.Add(feeShare)
	k.AddBalance(ctx, fund.FundID, k.authority, feeShare)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeExecutionFee,
		sdk.NewAttribute(types.AttributeKeyFundID, fund.FundID),
		sdk.NewAttribute(types.AttributeKeyShare, feeShare.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, feeValue.String()),
	))
}

// checkReserveRatio enforces the slice of gross value the manager must keep
// liquid after an execution.
func (k *Keeper) checkReserveRatio(ctx sdk.Context, fund *types.Fund, gav math.LegacyDec) error {
	if fund.ReserveExecutionBps == 0 {
		return nil
	}
	required := gav.MulTruncate(types.BpsToDec(fund.ReserveExecutionBps))
	if k.LiquidReserve(ctx, fund).LT(required) {
		return types.ErrInsufficientReserve.Wrapf("reserve below required %s", required)
	}
	return nil
}
