package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// FundInfo is the aggregate read model served to queries and the API.
type FundInfo struct {
	Fund             *types.Fund    `json:"fund"`
	GrossAssetValue  math.LegacyDec `json:"gross_asset_value"`
	SharePrice       math.LegacyDec `json:"share_price"`
	LiquidReserve    math.LegacyDec `json:"liquid_reserve"`
	OutstandingShare math.LegacyDec `json:"outstanding_share"`
	NextCrystallize  int64          `json:"next_crystallize"`
}

// InvestorPosition is one investor's view of a fund.
type InvestorPosition struct {
	FundID        string                `json:"fund_id"`
	Investor      string                `json:"investor"`
	Share         math.LegacyDec        `json:"share"`
	Value         math.LegacyDec        `json:"value"`
	PendingClaims []*types.PendingClaim `json:"pending_claims,omitempty"`
}

// GetFundInfo assembles the fund read model.
func (k *Keeper) GetFundInfo(ctx sdk.Context, fundID string) (*FundInfo, error) {
	fund := k.GetFund(ctx, fundID)
	if fund == nil {
		return nil, types.ErrFundNotFound.Wrap(fundID)
	}
	gav, err := k.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return nil, err
	}
	return &FundInfo{
		Fund:             fund,
		GrossAssetValue:  gav,
		SharePrice:       fund.GrossSharePrice(gav),
		LiquidReserve:    k.LiquidReserve(ctx, fund),
		OutstandingShare: fund.PerformanceFee.OutstandingShare,
		NextCrystallize:  fund.PerformanceFee.NextCrystallizationTime(),
	}, nil
}

// GetInvestorPosition returns an investor's share, its current value and any
// open pending claims.
func (k *Keeper) GetInvestorPosition(ctx sdk.Context, fundID, investor string) (*InvestorPosition, error) {
	fund := k.GetFund(ctx, fundID)
	if fund == nil {
		return nil, types.ErrFundNotFound.Wrap(fundID)
	}
	gav, err := k.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return nil, err
	}
	share := k.GetBalance(ctx, fundID, investor)
	return &InvestorPosition{
		FundID:        fundID,
		Investor:      investor,
		Share:         share,
		Value:         fund.ShareToBalance(share, gav),
		PendingClaims: k.GetInvestorClaims(ctx, fundID, investor),
	}, nil
}
