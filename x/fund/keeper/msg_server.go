package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

type msgServer struct {
	*Keeper
}

// NewMsgServerImpl returns the fund MsgServer.
func NewMsgServerImpl(keeper *Keeper) msgServer {
	return msgServer{Keeper: keeper}
}

func (m msgServer) CreateFund(goCtx context.Context, msg *types.MsgCreateFund) (*types.MsgCreateFundResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	fund, err := m.Keeper.CreateFund(ctx, &types.FundConfig{
		FundID:                msg.FundID,
		Manager:               msg.Manager,
		Denomination:          msg.Denomination,
		Level:                 msg.Level,
		ManagementFeeBps:      msg.ManagementFeeBps,
		PerformanceFeeBps:     msg.PerformanceFeeBps,
		CrystallizationPeriod: msg.CrystallizationPeriod,
		ReserveExecutionBps:   msg.ReserveExecutionBps,
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgCreateFundResponse{State: fund.State.String()}, nil
}

func (m msgServer) SetManagementFee(goCtx context.Context, msg *types.MsgSetManagementFee) (*types.MsgSetManagementFeeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.Keeper.SetManagementFeeRate(ctx, msg.FundID, msg.Manager, msg.RateBps); err != nil {
		return nil, err
	}
	return &types.MsgSetManagementFeeResponse{}, nil
}

func (m msgServer) SetPerformanceFee(goCtx context.Context, msg *types.MsgSetPerformanceFee) (*types.MsgSetPerformanceFeeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.Keeper.SetPerformanceFeeRate(ctx, msg.FundID, msg.Manager, msg.RateBps); err != nil {
		return nil, err
	}
	return &types.MsgSetPerformanceFeeResponse{}, nil
}

func (m msgServer) SetCrystallizationPeriod(goCtx context.Context, msg *types.MsgSetCrystallizationPeriod) (*types.MsgSetCrystallizationPeriodResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.Keeper.SetCrystallizationPeriod(ctx, msg.FundID, msg.Manager, msg.Seconds); err != nil {
		return nil, err
	}
	return &types.MsgSetCrystallizationPeriodResponse{}, nil
}

func (m msgServer) Finalize(goCtx context.Context, msg *types.MsgFinalize) (*types.MsgFinalizeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.Keeper.Finalize(ctx, msg.FundID, msg.Manager); err != nil {
		return nil, err
	}
	return &types.MsgFinalizeResponse{State: types.StateExecuting.String()}, nil
}

func (m msgServer) Purchase(goCtx context.Context, msg *types.MsgPurchase) (*types.MsgPurchaseResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	amount, err := math.LegacyNewDecFromStr(msg.Amount)
	if err != nil {
		return nil, types.ErrInvalidAmount.Wrap(msg.Amount)
	}
	share, err := m.Keeper.Purchase(ctx, msg.FundID, msg.Investor, amount)
	if err != nil {
		return nil, err
	}
	fund := m.GetFund(ctx, msg.FundID)
	gav, err := m.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return nil, err
	}
	return &types.MsgPurchaseResponse{
		Share:      share.String(),
		SharePrice: fund.GrossSharePrice(gav).String(),
		State:      fund.State.String(),
	}, nil
}

func (m msgServer) Redeem(goCtx context.Context, msg *types.MsgRedeem) (*types.MsgRedeemResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	share, err := math.LegacyNewDecFromStr(msg.Share)
	if err != nil {
		return nil, types.ErrInvalidAmount.Wrap(msg.Share)
	}
	paid, err := m.Keeper.Redeem(ctx, msg.FundID, msg.Investor, share, msg.AcceptPending)
	if err != nil {
		return nil, err
	}
	fund := m.GetFund(ctx, msg.FundID)
	resp := &types.MsgRedeemResponse{
		Paid:  paid.String(),
		State: fund.State.String(),
	}
	if fund.State == types.StatePending {
		if claim := m.GetPendingClaim(ctx, msg.FundID, msg.Investor, fund.CurrentPendingRound); claim != nil {
			resp.PendingShare = claim.PendingShare.String()
			resp.PendingRound = claim.Round
		}
	}
	return resp, nil
}

func (m msgServer) ClaimPending(goCtx context.Context, msg *types.MsgClaimPending) (*types.MsgClaimPendingResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	paid, err := m.Keeper.ClaimPendingRedemption(ctx, msg.FundID, msg.Investor)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimPendingResponse{Paid: paid.String()}, nil
}

func (m msgServer) Execute(goCtx context.Context, msg *types.MsgExecute) (*types.MsgExecuteResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	fund := m.GetFund(ctx, msg.FundID)
	if fund == nil {
		return nil, types.ErrFundNotFound.Wrap(msg.FundID)
	}
	valueBefore, err := m.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return nil, err
	}
	result, err := m.Keeper.Execute(ctx, msg.FundID, msg.Manager, msg.Target, msg.Sig, msg.Data, msg.Delegated)
	if err != nil {
		return nil, err
	}
	fund = m.GetFund(ctx, msg.FundID)
	valueAfter, err := m.GetGrossAssetValue(ctx, fund)
	if err != nil {
		return nil, err
	}
	return &types.MsgExecuteResponse{
		ValueBefore: valueBefore.String(),
		ValueAfter:  valueAfter.String(),
		Result:      result,
	}, nil
}

func (m msgServer) ClaimManagementFee(goCtx context.Context, msg *types.MsgClaimManagementFee) (*types.MsgClaimManagementFeeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	minted, err := m.Keeper.ClaimManagementFee(ctx, msg.FundID)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimManagementFeeResponse{FeeShare: minted.String()}, nil
}

func (m msgServer) Crystallize(goCtx context.Context, msg *types.MsgCrystallize) (*types.MsgCrystallizeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	harvest, err := m.Keeper.Crystallize(ctx, msg.FundID)
	if err != nil {
		return nil, err
	}
	fund := m.GetFund(ctx, msg.FundID)
	return &types.MsgCrystallizeResponse{
		HarvestedShare: harvest.String(),
		HighWaterMark:  fund.PerformanceFee.HighWaterMark.String(),
	}, nil
}

func (m msgServer) Liquidate(goCtx context.Context, msg *types.MsgLiquidate) (*types.MsgLiquidateResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.Keeper.Liquidate(ctx, msg.FundID, msg.Authority, msg.Liquidator); err != nil {
		return nil, err
	}
	return &types.MsgLiquidateResponse{State: types.StateLiquidating.String()}, nil
}

func (m msgServer) Close(goCtx context.Context, msg *types.MsgClose) (*types.MsgCloseResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := m.Keeper.Close(ctx, msg.FundID, msg.Manager); err != nil {
		return nil, err
	}
	return &types.MsgCloseResponse{State: types.StateClosed.String()}, nil
}
