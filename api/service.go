package api

import (
	"github.com/openalpha/fundchain/api/types"
)

// Re-export types for convenience
type (
	Fund                = types.Fund
	AssetEntry          = types.AssetEntry
	Position            = types.Position
	PendingClaim        = types.PendingClaim
	SharePricePoint     = types.SharePricePoint
	PurchaseRequest     = types.PurchaseRequest
	PurchaseResponse    = types.PurchaseResponse
	RedeemRequest       = types.RedeemRequest
	RedeemResponse      = types.RedeemResponse
	ClaimRequest        = types.ClaimRequest
	ClaimResponse       = types.ClaimResponse
	ListFundsRequest    = types.ListFundsRequest
	ListFundsResponse   = types.ListFundsResponse
	PriceHistoryRequest = types.PriceHistoryRequest
	FundService         = types.FundService
	InvestorService     = types.InvestorService
	TradeService        = types.TradeService
)

// nowMillis returns current timestamp in milliseconds
func nowMillis() int64 {
	return types.NowMillis()
}
