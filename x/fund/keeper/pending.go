package keeper

import (
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// queuePendingRedemption moves a redemption into the open pending round,
// applying the penalty split. The shares leave the investor's balance but
// stay in the total supply, parked in the round until resolution. Opening
// the first round flips the fund into the Pending state.
func (k *Keeper) queuePendingRedemption(ctx sdk.Context, fund *types.Fund, investor string, share math.LegacyDec) error {
	if err := k.SubBalance(ctx, fund.FundID, investor, share); err != nil {
		return err
	}

	now := ctx.BlockTime().Unix()
	if fund.State == types.StateExecuting {
		fund.State = types.StatePending
		fund.PendingStartTime = now
		fund.CurrentPendingRound++
		k.SetPendingRound(ctx, fund.FundID, types.NewPendingRound(fund.CurrentPendingRound, now))
	}
	round := k.GetPendingRound(ctx, fund.FundID, fund.CurrentPendingRound)
	if round == nil || round.Resolved {
		return types.ErrInvalidState.Wrapf("pending round %d not open", fund.CurrentPendingRound)
	}

	penaltyRate := k.policy.PendingPenaltyRate(ctx)
	penalty := share.MulTruncate(types.BpsToDec(penaltyRate))
	penalized := share.Sub(penalty)

	round.TotalPendingShare = round.TotalPendingShare.Add(penalized)
	round.TotalPenalty = round.TotalPenalty.Add(penalty)
	round.BonusPool = round.BonusPool.Add(penalty)
	k.SetPendingRound(ctx, fund.FundID, round)

	claim := k.GetPendingClaim(ctx, fund.FundID, investor, round.Round)
	if claim == nil {
		claim = &types.PendingClaim{
			Investor:     investor,
			Round:        round.Round,
			PendingShare: math.LegacyZeroDec(),
			CreatedAt:    now,
		}
	}
	claim.PendingShare = claim.PendingShare.Add(penalized)
	k.SetPendingClaim(ctx, fund.FundID, claim)

	fund.UpdatedAt = now
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRedemptionQueued,
		sdk.NewAttribute(types.AttributeKeyFundID, fund.FundID),
		sdk.NewAttribute(types.AttributeKeyInvestor, investor),
		sdk.NewAttribute(types.AttributeKeyShare, share.String()),
		sdk.NewAttribute(types.AttributeKeyPenalty, penalty.String()),
		sdk.NewAttribute(types.AttributeKeyRound, strconv.FormatInt(round.Round, 10)),
	))
	return nil
}

// grantPendingBonus transfers penalty shares from the open round's bonus
// pool to a purchaser supplying resolving liquidity. Purchases landing in
// the same block the round opened earn nothing, which closes the
// redeem-then-purchase sandwich.
func (k *Keeper) grantPendingBonus(ctx sdk.Context, fund *types.Fund, investor string, share math.LegacyDec) math.LegacyDec {
	round := k.GetPendingRound(ctx, fund.FundID, fund.CurrentPendingRound)
	if round == nil || round.Resolved || !round.BonusPool.IsPositive() {
		return math.LegacyZeroDec()
	}
	if ctx.BlockTime().Unix() == round.StartTime {
		return math.LegacyZeroDec()
	}

	penaltyRate := k.policy.PendingPenaltyRate(ctx)
	base := math.LegacyNewDec(types.PercentageBase)
	rate := math.LegacyNewDec(penaltyRate)
	bonus := share.MulTruncate(rate).QuoTruncate(base.Sub(rate))
	bonus = math.LegacyMinDec(bonus, round.BonusPool)
	if !bonus.IsPositive() {
		return math.LegacyZeroDec()
	}

	round.BonusPool = round.BonusPool.Sub(bonus)
	k.SetPendingRound(ctx, fund.FundID, round)
	k.AddBalance(ctx, fund.FundID, investor, bonus)
	return bonus
}

// resolvePendingRounds settles open rounds strictly FIFO while the liquid
// reserve covers each round's full redemption value. A resolved round's
// value moves into the claimable reserve, its parked shares burn (leftover
// bonus included), and clearing the last round returns the fund to
// Executing.
func (k *Keeper) resolvePendingRounds(ctx sdk.Context, fund *types.Fund) error {
	now := ctx.BlockTime().Unix()
	allResolved := true

	for _, round := range k.GetPendingRounds(ctx, fund.FundID) {
		if round.Resolved {
			continue
		}
		gav, err := k.GetGrossAssetValue(ctx, fund)
		if err != nil {
			return err
		}
		owed := fund.ShareToBalance(round.TotalPendingShare, gav)
		if k.LiquidReserve(ctx, fund).LT(owed) {
			allResolved = false
			break
		}

		round.TotalRedemption = owed
		round.UnclaimedShare = round.TotalPendingShare
		round.Resolved = true
		round.ResolvedAt = now

		fund.ClaimableReserve = fund.ClaimableReserve.Add(owed)
		fund.TotalShare = fund.TotalShare.Sub(round.TotalPendingShare).Sub(round.BonusPool)
		round.BonusPool = math.LegacyZeroDec()
		k.SetPendingRound(ctx, fund.FundID, round)

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypePendingResolved,
			sdk.NewAttribute(types.AttributeKeyFundID, fund.FundID),
			sdk.NewAttribute(types.AttributeKeyRound, strconv.FormatInt(round.Round, 10)),
			sdk.NewAttribute(types.AttributeKeyAmount, owed.String()),
		))
	}

	if allResolved && fund.State == types.StatePending {
		fund.State = types.StateExecuting
		fund.PendingStartTime = 0
	}
	fund.UpdatedAt = now
	k.SetFund(ctx, fund)
	return nil
}

// ClaimPendingRedemption pays out an investor's resolved claims from the
// claimable reserve and destroys them. Fully claimed rounds are pruned.
func (k *Keeper) ClaimPendingRedemption(ctx sdk.Context, fundID, investor string) (math.LegacyDec, error) {
	fund, err := k.requireState(ctx, fundID, types.StateExecuting, types.StateClosed)
	if err != nil {
		return math.LegacyDec{}, err
	}

	total := math.LegacyZeroDec()
	for _, claim := range k.GetInvestorClaims(ctx, fundID, investor) {
		round := k.GetPendingRound(ctx, fundID, claim.Round)
		if round == nil || !round.Resolved {
			continue
		}
		amount := round.ClaimAmount(claim.PendingShare)
		total = total.Add(amount)

		round.UnclaimedShare = round.UnclaimedShare.Sub(claim.PendingShare)
		k.DeletePendingClaim(ctx, fundID, investor, claim.Round)
		if round.UnclaimedShare.IsPositive() {
			k.SetPendingRound(ctx, fundID, round)
		} else {
			k.DeletePendingRound(ctx, fundID, claim.Round)
		}
	}
	if !total.IsPositive() {
		return math.LegacyDec{}, types.ErrNotClaimable.Wrapf("investor %s has no resolved claim", investor)
	}

	fund.ClaimableReserve = fund.ClaimableReserve.Sub(total)
	if fund.ClaimableReserve.IsNegative() {
		fund.ClaimableReserve = math.LegacyZeroDec()
	}
	if err := k.vault.PayToInvestor(ctx, fundID, investor, fund.Denomination, total); err != nil {
		return math.LegacyDec{}, err
	}
	fund.UpdatedAt = ctx.BlockTime().Unix()
	k.SetFund(ctx, fund)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypePendingClaimed,
		sdk.NewAttribute(types.AttributeKeyFundID, fundID),
		sdk.NewAttribute(types.AttributeKeyInvestor, investor),
		sdk.NewAttribute(types.AttributeKeyAmount, total.String()),
	))
	return total, nil
}
