package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/metrics"
	"github.com/openalpha/fundchain/x/fund/types"
)

// EndBlocker records a share price observation for every live fund and
// refreshes the monitoring gauges. Oracle failures are logged and skipped so
// one stale feed cannot stall the block.
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	now := ctx.BlockTime().Unix()
	mc := metrics.GetCollector()

	for _, fund := range k.GetAllFunds(ctx) {
		if fund.State != types.StateExecuting && fund.State != types.StatePending {
			continue
		}
		gav, err := k.GetGrossAssetValue(ctx, fund)
		if err != nil {
			k.logger.Error("share price snapshot failed", "fund", fund.FundID, "err", err)
			continue
		}
		price := fund.GrossSharePrice(gav)
		k.AddSharePricePoint(ctx, &types.SharePricePoint{
			FundID:          fund.FundID,
			GrossAssetValue: gav,
			SharePrice:      price,
			Timestamp:       now,
		})

		mc.UpdateFundGauges(
			fund.FundID,
			fund.Denomination,
			float64(fund.State),
			decToFloat(gav),
			decToFloat(price),
			decToFloat(fund.TotalShare),
			decToFloat(k.LiquidReserve(ctx, fund)),
			decToFloat(fund.PerformanceFee.HighWaterMark),
			decToFloat(fund.PerformanceFee.OutstandingShare),
		)
	}
	mc.BlockHeight.Set(float64(ctx.BlockHeight()))
	return nil
}

func decToFloat(d math.LegacyDec) float64 {
	f, err := d.Float64()
	if err != nil {
		return 0
	}
	return f
}
