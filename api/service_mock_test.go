package api

import (
	"context"
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/api/types"
)

func dec(s string) math.LegacyDec {
	return math.LegacyMustNewDecFromStr(s)
}

// TestMockPurchaseMintsAtSharePrice tests that purchases mint shares at the
// current price and move both value and reserve
func TestMockPurchaseMintsAtSharePrice(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	resp, err := ms.Purchase(ctx, &types.PurchaseRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Amount: "1000",
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// first purchase mints at price 1
	if resp.Share != dec("1000").String() {
		t.Errorf("expected 1000 shares, got %s", resp.Share)
	}

	fund, err := ms.GetFund(ctx, "alpha-usdc")
	if err != nil {
		t.Fatalf("get fund: %v", err)
	}
	if fund.GrossAssetValue != dec("1000").String() {
		t.Errorf("expected gross value 1000, got %s", fund.GrossAssetValue)
	}
	if fund.LiquidReserve != dec("1000").String() {
		t.Errorf("expected reserve 1000, got %s", fund.LiquidReserve)
	}

	// simulate a 10% gain, the next purchase mints fewer shares
	ms.funds["alpha-usdc"].grossValue = dec("1100")
	resp, err = ms.Purchase(ctx, &types.PurchaseRequest{
		FundID: "alpha-usdc", Investor: "inv-2", Amount: "220",
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if resp.Share != dec("200").String() {
		t.Errorf("expected 200 shares at price 1.1, got %s", resp.Share)
	}
}

// TestMockPurchaseRejectsBadInput tests input validation
func TestMockPurchaseRejectsBadInput(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	if _, err := ms.Purchase(ctx, &types.PurchaseRequest{FundID: "nope", Investor: "inv", Amount: "10"}); err == nil {
		t.Error("expected error for unknown fund")
	}
	if _, err := ms.Purchase(ctx, &types.PurchaseRequest{FundID: "alpha-usdc", Investor: "inv", Amount: "abc"}); err == nil {
		t.Error("expected error for malformed amount")
	}
	if _, err := ms.Purchase(ctx, &types.PurchaseRequest{FundID: "alpha-usdc", Investor: "inv", Amount: "-5"}); err == nil {
		t.Error("expected error for negative amount")
	}
}

// TestMockRedeemPaysFromReserve tests the liquid redemption path
func TestMockRedeemPaysFromReserve(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	if _, err := ms.Purchase(ctx, &types.PurchaseRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Amount: "1000",
	}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	resp, err := ms.Redeem(ctx, &types.RedeemRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Share: "400",
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if resp.Paid != dec("400").String() {
		t.Errorf("expected payout 400, got %s", resp.Paid)
	}

	pos, err := ms.GetPosition(ctx, "alpha-usdc", "inv-1")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if pos.Share != dec("600").String() {
		t.Errorf("expected remaining share 600, got %s", pos.Share)
	}

	// redeeming more than held fails
	if _, err := ms.Redeem(ctx, &types.RedeemRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Share: "601",
	}); err == nil {
		t.Error("expected error for oversized redemption")
	}
}

// TestMockRedeemQueuesWhenIlliquid tests the pending queue path
func TestMockRedeemQueuesWhenIlliquid(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	if _, err := ms.Purchase(ctx, &types.PurchaseRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Amount: "1000",
	}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// most of the value is deployed, only 100 stays liquid
	ms.funds["alpha-usdc"].reserve = dec("100")

	// without accept_pending the redemption is refused outright
	if _, err := ms.Redeem(ctx, &types.RedeemRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Share: "500",
	}); err == nil {
		t.Error("expected error without accept_pending")
	}

	resp, err := ms.Redeem(ctx, &types.RedeemRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Share: "500", AcceptPending: true,
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if resp.Paid != "0" {
		t.Errorf("queued redemption pays nothing now, got %s", resp.Paid)
	}
	if resp.PendingRound != 1 {
		t.Errorf("expected round 1, got %d", resp.PendingRound)
	}
	if resp.State != "pending" {
		t.Errorf("expected pending state, got %s", resp.State)
	}

	// the whole share amount leaves the position
	pos, err := ms.GetPosition(ctx, "alpha-usdc", "inv-1")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if pos.Share != dec("500").String() {
		t.Errorf("expected remaining share 500, got %s", pos.Share)
	}

	claims, err := ms.GetClaims(ctx, "alpha-usdc", "inv-1")
	if err != nil {
		t.Fatalf("get claims: %v", err)
	}
	if len(claims) != 1 || claims[0].PendingShare != dec("500").String() {
		t.Fatalf("expected one claim of 500 shares, got %+v", claims)
	}
	if claims[0].Resolved {
		t.Error("fresh claim must not be resolved")
	}
}

// TestMockClaimPaysOnlyResolved tests claim semantics: unresolved claims are
// kept, resolved ones pay out and disappear
func TestMockClaimPaysOnlyResolved(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	if _, err := ms.Purchase(ctx, &types.PurchaseRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Amount: "1000",
	}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	ms.funds["alpha-usdc"].reserve = dec("100")
	if _, err := ms.Redeem(ctx, &types.RedeemRequest{
		FundID: "alpha-usdc", Investor: "inv-1", Share: "500", AcceptPending: true,
	}); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	// an unresolved claim pays nothing
	if _, err := ms.ClaimPending(ctx, &types.ClaimRequest{
		FundID: "alpha-usdc", Investor: "inv-1",
	}); err == nil {
		t.Error("expected error claiming unresolved round")
	}

	// resolve the round out of band
	key := positionKey("alpha-usdc", "inv-1")
	ms.claims[key][0].Resolved = true
	ms.claims[key][0].Claimable = "495"

	resp, err := ms.ClaimPending(ctx, &types.ClaimRequest{
		FundID: "alpha-usdc", Investor: "inv-1",
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if resp.Paid != dec("495").String() {
		t.Errorf("expected payout 495, got %s", resp.Paid)
	}

	// claimed entries are gone, a second claim finds nothing
	if _, err := ms.ClaimPending(ctx, &types.ClaimRequest{
		FundID: "alpha-usdc", Investor: "inv-1",
	}); err == nil {
		t.Error("expected error on double claim")
	}
	claims, _ := ms.GetClaims(ctx, "alpha-usdc", "inv-1")
	if len(claims) != 0 {
		t.Errorf("expected no remaining claims, got %d", len(claims))
	}
}

// TestMockPriceHistoryOrderedAndWindowed tests that history points come back
// in time order and honor the from/to window and limit
func TestMockPriceHistoryOrderedAndWindowed(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := ms.Purchase(ctx, &types.PurchaseRequest{
			FundID: "alpha-usdc", Investor: "inv-1", Amount: "100",
		}); err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
	}

	points, err := ms.GetPriceHistory(ctx, &types.PriceHistoryRequest{FundID: "alpha-usdc"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp < points[i-1].Timestamp {
			t.Fatal("points must ascend by timestamp")
		}
	}

	limited, err := ms.GetPriceHistory(ctx, &types.PriceHistoryRequest{FundID: "alpha-usdc", Limit: 2})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 limited points, got %d", len(limited))
	}
	// limit keeps the newest points
	if limited[len(limited)-1].Timestamp != points[len(points)-1].Timestamp {
		t.Error("limit must keep the tail of the series")
	}

	// a window past the last point returns nothing
	after, err := ms.GetPriceHistory(ctx, &types.PriceHistoryRequest{
		FundID: "alpha-usdc", From: points[len(points)-1].Timestamp + 1,
	})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(after) != 0 {
		t.Errorf("expected empty window, got %d points", len(after))
	}

	if _, err := ms.GetPriceHistory(ctx, &types.PriceHistoryRequest{FundID: "nope"}); err == nil {
		t.Error("expected error for unknown fund")
	}
}

// TestMockListFundsFilters tests state filtering and ordering
func TestMockListFundsFilters(t *testing.T) {
	ms := NewMockService()
	ctx := context.Background()

	resp, err := ms.ListFunds(ctx, &types.ListFundsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 seeded funds, got %d", resp.Total)
	}
	if resp.Funds[0].FundID != "alpha-usdc" || resp.Funds[1].FundID != "beta-usdc" {
		t.Error("funds must come back sorted by id")
	}

	ms.funds["beta-usdc"].info.State = "pending"
	resp, err = ms.ListFunds(ctx, &types.ListFundsRequest{State: "executing"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 1 || resp.Funds[0].FundID != "alpha-usdc" {
		t.Errorf("state filter failed: %+v", resp)
	}
}
