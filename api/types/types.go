package types

import (
	"context"
	"time"
)

// Fund represents a fund in the API response
type Fund struct {
	FundID                string `json:"fund_id"`
	Manager               string `json:"manager"`
	Denomination          string `json:"denomination"`
	Level                 uint32 `json:"level"`
	State                 string `json:"state"`
	ManagementFeeBps      uint32 `json:"management_fee_bps"`
	PerformanceFeeBps     uint32 `json:"performance_fee_bps"`
	CrystallizationPeriod int64  `json:"crystallization_period"`
	GrossAssetValue       string `json:"gross_asset_value"`
	SharePrice            string `json:"share_price"`
	TotalShare            string `json:"total_share"`
	LiquidReserve         string `json:"liquid_reserve"`
	HighWaterMark         string `json:"high_water_mark"`
	NextCrystallize       int64  `json:"next_crystallize"`
	CreatedAt             int64  `json:"created_at"`
	UpdatedAt             int64  `json:"updated_at"`
}

// AssetEntry represents one asset tracked by a fund
type AssetEntry struct {
	Asset   string `json:"asset"`
	Kind    string `json:"kind"` // "canonical" or "debt"
	Balance string `json:"balance"`
	Value   string `json:"value"`
}

// Position represents an investor position in the API response
type Position struct {
	FundID     string `json:"fund_id"`
	Investor   string `json:"investor"`
	Share      string `json:"share"`
	Value      string `json:"value"`
	SharePrice string `json:"share_price"`
	UpdatedAt  int64  `json:"updated_at"`
}

// PendingClaim represents a queued redemption claim
type PendingClaim struct {
	FundID       string `json:"fund_id"`
	Investor     string `json:"investor"`
	Round        uint64 `json:"round"`
	PendingShare string `json:"pending_share"`
	Claimable    string `json:"claimable"`
	Resolved     bool   `json:"resolved"`
	QueuedAt     int64  `json:"queued_at"`
}

// SharePricePoint represents one point of share price history
type SharePricePoint struct {
	FundID     string `json:"fund_id"`
	SharePrice string `json:"share_price"`
	GrossValue string `json:"gross_value"`
	TotalShare string `json:"total_share"`
	Timestamp  int64  `json:"timestamp"`
}

// PurchaseRequest represents the request to purchase fund shares
type PurchaseRequest struct {
	FundID   string `json:"fund_id"`
	Investor string `json:"investor"`
	Amount   string `json:"amount"`
}

// PurchaseResponse represents the response after a purchase
type PurchaseResponse struct {
	FundID     string `json:"fund_id"`
	Investor   string `json:"investor"`
	Share      string `json:"share"`
	Bonus      string `json:"bonus,omitempty"`
	SharePrice string `json:"share_price"`
	State      string `json:"state"`
}

// RedeemRequest represents the request to redeem fund shares
type RedeemRequest struct {
	FundID        string `json:"fund_id"`
	Investor      string `json:"investor"`
	Share         string `json:"share"`
	AcceptPending bool   `json:"accept_pending"`
}

// RedeemResponse represents the response after a redemption
type RedeemResponse struct {
	FundID       string `json:"fund_id"`
	Investor     string `json:"investor"`
	Paid         string `json:"paid"`
	PendingShare string `json:"pending_share,omitempty"`
	PendingRound uint64 `json:"pending_round,omitempty"`
	State        string `json:"state"`
}

// ClaimRequest represents the request to claim resolved redemptions
type ClaimRequest struct {
	FundID   string `json:"fund_id"`
	Investor string `json:"investor"`
}

// ClaimResponse represents the response after claiming
type ClaimResponse struct {
	FundID   string `json:"fund_id"`
	Investor string `json:"investor"`
	Paid     string `json:"paid"`
}

// ListFundsRequest represents the request to list funds
type ListFundsRequest struct {
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// ListFundsResponse represents the response for listing funds
type ListFundsResponse struct {
	Funds      []*Fund `json:"funds"`
	NextCursor string  `json:"next_cursor,omitempty"`
	Total      int     `json:"total"`
}

// PriceHistoryRequest represents the request for share price history
type PriceHistoryRequest struct {
	FundID string `json:"fund_id"`
	From   int64  `json:"from,omitempty"`
	To     int64  `json:"to,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// FundService defines the interface for fund queries
type FundService interface {
	GetFund(ctx context.Context, fundID string) (*Fund, error)
	ListFunds(ctx context.Context, req *ListFundsRequest) (*ListFundsResponse, error)
	GetAssets(ctx context.Context, fundID string) ([]*AssetEntry, error)
	GetPriceHistory(ctx context.Context, req *PriceHistoryRequest) ([]*SharePricePoint, error)
}

// InvestorService defines the interface for investor queries
type InvestorService interface {
	GetPosition(ctx context.Context, fundID, investor string) (*Position, error)
	ListPositions(ctx context.Context, investor string) ([]*Position, error)
	GetClaims(ctx context.Context, fundID, investor string) ([]*PendingClaim, error)
}

// TradeService defines the interface for share operations submitted through the gateway
type TradeService interface {
	Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseResponse, error)
	Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResponse, error)
	ClaimPending(ctx context.Context, req *ClaimRequest) (*ClaimResponse, error)
}

// Helper function to get current timestamp in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
