package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundchain/x/fund/types"
)

// CreateFund initializes a new fund from its configuration and moves it to
// Reviewing. One-time only per fund id.
func (k *Keeper) CreateFund(ctx sdk.Context, cfg *types.FundConfig) (*types.Fund, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if k.GetFund(ctx, cfg.FundID) != nil {
		return nil, types.ErrConfigInvalid.Wrapf("fund %s already initialized", cfg.FundID)
	}
	if !k.policy.IsDenominationPermitted(ctx, cfg.Denomination) {
		return nil, types.ErrPolicyViolation.Wrapf("denomination %s not permitted", cfg.Denomination)
	}

	now := ctx.BlockTime().Unix()
	fund := types.NewFund(cfg.FundID)
	fund.Manager = cfg.Manager
	fund.Denomination = cfg.Denomination
	fund.Level = cfg.Level
	fund.ReserveExecutionBps = cfg.ReserveExecutionBps
	fund.CreatedAt = now
	fund.UpdatedAt = now
	if err := fund.ManagementFee.SetRate(cfg.ManagementFeeBps); err != nil {
		return nil, err
	}
	if err := fund.PerformanceFee.SetRate(cfg.PerformanceFeeBps); err != nil {
		return nil, err
	}
	if err := fund.PerformanceFee.SetCrystallizationPeriod(cfg.CrystallizationPeriod); err != nil {
		return nil, err
	}
	fund.State = types.StateReviewing
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeFundCreated,
		sdk.NewAttribute(types.AttributeKeyFundID, fund.FundID),
		sdk.NewAttribute(types.AttributeKeyManager, fund.Manager),
		sdk.NewAttribute(types.AttributeKeyState, fund.State.String()),
	))
	k.logger.Info("fund created", "fund", fund.FundID, "manager", fund.Manager)
	return fund, nil
}

// SetManagementFeeRate updates the management fee rate. Reviewing only.
func (k *Keeper) SetManagementFeeRate(ctx sdk.Context, fundID, sender string, bps int64) error {
	fund, err := k.requireManagerInReview(ctx, fundID, sender)
	if err != nil {
		return err
	}
	if err := fund.ManagementFee.SetRate(bps); err != nil {
		return err
	}
	k.SetFund(ctx, fund)
	return nil
}

// SetPerformanceFeeRate updates the performance fee rate. Reviewing only.
func (k *Keeper) SetPerformanceFeeRate(ctx sdk.Context, fundID, sender string, bps int64) error {
	fund, err := k.requireManagerInReview(ctx, fundID, sender)
	if err != nil {
		return err
	}
	if err := fund.PerformanceFee.SetRate(bps); err != nil {
		return err
	}
	k.SetFund(ctx, fund)
	return nil
}

// SetCrystallizationPeriod updates the performance fee period. Reviewing only.
func (k *Keeper) SetCrystallizationPeriod(ctx sdk.Context, fundID, sender string, seconds int64) error {
	fund, err := k.requireManagerInReview(ctx, fundID, sender)
	if err != nil {
		return err
	}
	if err := fund.PerformanceFee.SetCrystallizationPeriod(seconds); err != nil {
		return err
	}
	k.SetFund(ctx, fund)
	return nil
}

func (k *Keeper) requireManagerInReview(ctx sdk.Context, fundID, sender string) (*types.Fund, error) {
	fund, err := k.requireState(ctx, fundID, types.StateReviewing)
	if err != nil {
		return nil, err
	}
	if sender != fund.Manager {
		return nil, types.ErrUnauthorized.Wrapf("sender %s is not the manager", sender)
	}
	return fund, nil
}

// Finalize moves a reviewed fund into Executing. The denomination must still
// be policy-permitted at this moment; both fee clocks start here and the
// denomination becomes the head of the asset list.
func (k *Keeper) Finalize(ctx sdk.Context, fundID, sender string) error {
	fund, err := k.requireManagerInReview(ctx, fundID, sender)
	if err != nil {
		return err
	}
	if !k.policy.IsDenominationPermitted(ctx, fund.Denomination) {
		return types.ErrPolicyViolation.Wrapf("denomination %s no longer permitted", fund.Denomination)
	}

	now := ctx.BlockTime().Unix()
	fund.ManagementFee.Initialize(now)
	fund.PerformanceFee.Initialize(now)
	fund.AssetList = []string{fund.Denomination}
	fund.State = types.StateExecuting
	fund.UpdatedAt = now
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeFundFinalized,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
		sdk.NewAttribute(types.AttributeKeyState, fund.State.String()),
	))
	k.logger.Info("fund finalized", "fund", fundID)
	return nil
}

// Liquidate hands a stuck fund to the liquidator. A Pending fund can only be
// liquidated after the pending expiration window has elapsed unresolved; an
// Executing fund requires the governance authority.
func (k *Keeper) Liquidate(ctx sdk.Context, fundID, sender, liquidator string) error {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
	if err != nil {
		return err
	}
	if fund.State == types.StatePending {
		deadline := fund.PendingStartTime + k.policy.PendingExpiration(ctx)
		if ctx.BlockTime().Unix() < deadline {
			return types.ErrInvalidState.Wrapf("pending round not expired until %d", deadline)
		}
	} else if sender != k.authority {
		return types.ErrUnauthorized.Wrap("only the authority liquidates an executing fund")
	}

	// collect what is owed before ownership changes hands
	k.accrueManagementFee(ctx, fund)

	fund.State = types.StateLiquidating
	fund.Manager = liquidator
	fund.UpdatedAt = ctx.BlockTime().Unix()
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeFundLiquidating,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
		sdk.NewAttribute(types.AttributeKeyManager, liquidator),
	))
	k.logger.Info("fund liquidating", "fund", fundID, "liquidator", liquidator)
	return nil
}

// Close terminates the fund. Every non-denomination asset must already be
// drained; residual positions make the close fail rather than silently
// stripping them.
func (k *Keeper) Close(ctx sdk.Context, fundID, sender string) error {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StateLiquidating)
	if err != nil {
		return err
	}
	if sender != fund.Manager && sender != k.authority {
		return types.ErrUnauthorized.Wrapf("sender %s may not close fund %s", sender, fundID)
	}
	if !fund.OnlyDenominationLeft() {
		return types.ErrInvalidState.Wrapf("fund %s still holds %d assets", fundID, len(fund.AssetList))
	}

	fund.State = types.StateClosed
	fund.UpdatedAt = ctx.BlockTime().Unix()
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeFundClosed,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
	))
	k.logger.Info("fund closed", "fund", fundID)
	return nil
}
