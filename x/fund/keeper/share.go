package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// Purchase deposits denomination into the fund and mints shares at the
// current gross share price. Fees accrue before pricing so the purchaser
// does not capture value created before entry. In the Pending state the
// purchase earns a bonus from the open round's penalty pool and may resolve
// the round entirely.
func (k *Keeper) Purchase(ctx sdk.Context, fundID, investor string, amount math.LegacyDec) (math.LegacyDec, error) {
	var minted math.LegacyDec
	err := k.enter(func() error {
		fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
		if err != nil {
			return err
		}
		if err := k.checkPolicyActive(ctx, fundID); err != nil {
			return err
		}
		if !amount.IsPositive() {
			return types.ErrInvalidAmount.Wrap("purchase amount must be positive")
		}

		k.accrueManagementFee(ctx, fund)

		gav, err := k.GetGrossAssetValue(ctx, fund)
		if err != nil {
			return err
		}
		k.updatePerformanceFee(ctx, fund, gav)

		firstPurchase := fund.TotalShare.IsZero()
		share, err := fund.CalculateShare(amount, gav)
		if err != nil {
			return err
		}

		if err := k.vault.PullFromInvestor(ctx, fundID, investor, fund.Denomination, amount); err != nil {
			return err
		}

		if firstPurchase {
			// the burned minimum share stays in the supply with no owner
			fund.TotalShare = fund.TotalShare.Add(share).Add(types.MinimumShare)
		} else {
			fund.TotalShare = fund.TotalShare.Add(share)
		}
		k.AddBalance(ctx, fundID, investor, share)

		bonus := math.LegacyZeroDec()
		if fund.State == types.StatePending {
			bonus = k.grantPendingBonus(ctx, fund, investor, share)
			share = share.Add(bonus)
		}

		fund.UpdatedAt = ctx.BlockTime().Unix()
		k.SetFund(ctx, fund)

		if fund.State == types.StatePending {
			if err := k.resolvePendingRounds(ctx, fund); err != nil {
				return err
			}
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypePurchased,
			sdk.NewAttribute(types.AttributeKeyFundID, fundID),
			sdk.NewAttribute(types.AttributeKeyInvestor, investor),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyShare, share.String()),
			sdk.NewAttribute(types.AttributeKeyBonus, bonus.String()),
		))
		minted = share
		return nil
	})
	if err != nil {
		return math.LegacyDec{}, err
	}
	return minted, nil
}

// Redeem exchanges shares for denomination at the current gross share price.
// When the liquid reserve cannot cover the redemption the whole amount is
// queued into the open pending round with a penalty, provided the redeemer
// accepts pending settlement.
func (k *Keeper) Redeem(ctx sdk.Context, fundID, investor string, share math.LegacyDec, acceptPending bool) (math.LegacyDec, error) {
	var paid math.LegacyDec
	err := k.enter(func() error {
		fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StatePending)
		if err != nil {
			return err
		}
		if err := k.checkPolicyActive(ctx, fundID); err != nil {
			return err
		}
		if !share.IsPositive() {
			return types.ErrInvalidAmount.Wrap("redeem share must be positive")
		}
		if k.GetBalance(ctx, fundID, investor).LT(share) {
			return types.ErrInsufficientShare.Wrapf("investor %s", investor)
		}

		k.accrueManagementFee(ctx, fund)

		gav, err := k.GetGrossAssetValue(ctx, fund)
		if err != nil {
			return err
		}
		k.updatePerformanceFee(ctx, fund, gav)

		owed := fund.ShareToBalance(share, gav)
		if owed.IsZero() {
			return types.ErrZeroShare
		}

		if fund.State == types.StateExecuting && k.LiquidReserve(ctx, fund).GTE(owed) {
			if err := k.SubBalance(ctx, fundID, investor, share); err != nil {
				return err
			}
			fund.TotalShare = fund.TotalShare.Sub(share)
			if err := k.vault.PayToInvestor(ctx, fundID, investor, fund.Denomination, owed); err != nil {
				return err
			}
			fund.UpdatedAt = ctx.BlockTime().Unix()
			k.SetFund(ctx, fund)

			ctx.EventManager().EmitEvent(sdk.NewEvent(
				types.EventTypeRedeemed,
				sdk.NewAttribute(types.AttributeKeyFundID, fundID),
				sdk.NewAttribute(types.AttributeKeyInvestor, investor),
				sdk.NewAttribute(types.AttributeKeyShare, share.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, owed.String()),
			))
			paid = owed
			return nil
		}

		if !acceptPending {
			return types.ErrPendingNotAccepted.Wrapf("reserve %s below owed %s", k.LiquidReserve(ctx, fund), owed)
		}
		if err := k.queuePendingRedemption(ctx, fund, investor, share); err != nil {
			return err
		}
		paid = math.LegacyZeroDec()
		return nil
	})
	if err != nil {
		return math.LegacyDec{}, err
	}
	return paid, nil
}
