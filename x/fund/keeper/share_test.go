package keeper

import (
	"testing"

	"github.com/openalpha/fundchain/x/fund/types"
)

func TestPurchaseFirstDeposit(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	share, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000"))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// 1000 burned on the first deposit
	if !share.Equal(mustDec("9000")) {
		t.Errorf("expected 9000 shares, got %s", share)
	}

	fund := f.keeper.GetFund(f.ctx, "alpha")
	// burned shares stay in the supply
	if !fund.TotalShare.Equal(mustDec("10000")) {
		t.Errorf("expected total share 10000, got %s", fund.TotalShare)
	}
	if got := f.keeper.GetBalance(f.ctx, "alpha", testInvestor); !got.Equal(mustDec("9000")) {
		t.Errorf("expected investor balance 9000, got %s", got)
	}
	if got := f.vault.Balance(f.ctx, "alpha", testDenom); !got.Equal(mustDec("10000")) {
		t.Errorf("expected vault balance 10000, got %s", got)
	}
}

func TestPurchaseAtAppreciatedPrice(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// fund doubles in value: price 2.0, so 1000 buys 500 shares
	f.vault.set("alpha", testDenom, mustDec("20000"))
	share, err := f.keeper.Purchase(f.ctx, "alpha", "second-investor", mustDec("1000"))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !share.Equal(mustDec("500")) {
		t.Errorf("expected 500 shares at price 2.0, got %s", share)
	}
}

func TestPurchaseRejectsBadInput(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("0")); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("-5")); err == nil {
		t.Error("expected error for negative amount")
	}
	// below the burned minimum on the first deposit
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("1000")); err == nil {
		t.Error("expected error for deposit at the burn minimum")
	}
}

func TestPurchaseBlockedByPolicy(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	f.policy.halted = true
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("5000")); err == nil {
		t.Error("expected error while halted")
	}
	f.policy.halted = false

	f.policy.banned["alpha"] = true
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("5000")); err == nil {
		t.Error("expected error while banned")
	}
}

func TestRedeemAgainstReserve(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	paid, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("2000"), false)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	// price 1.0: 2000 shares pay 2000
	if !paid.Equal(mustDec("2000")) {
		t.Errorf("expected payout 2000, got %s", paid)
	}

	fund := f.keeper.GetFund(f.ctx, "alpha")
	if !fund.TotalShare.Equal(mustDec("8000")) {
		t.Errorf("expected total share 8000, got %s", fund.TotalShare)
	}
	if got := f.keeper.GetBalance(f.ctx, "alpha", testInvestor); !got.Equal(mustDec("7000")) {
		t.Errorf("expected balance 7000, got %s", got)
	}
	if got := f.vault.Balance(f.ctx, "alpha", testDenom); !got.Equal(mustDec("8000")) {
		t.Errorf("expected vault 8000, got %s", got)
	}
	if fund.State != types.StateExecuting {
		t.Errorf("covered redemption must not flip the state, got %s", fund.State)
	}
}

func TestRedeemInsufficientBalance(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// investor owns 9000, not 10000
	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("9001"), false); err == nil {
		t.Error("expected error redeeming more than owned")
	}
}

func TestRedeemWithoutAcceptingPending(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// drain the reserve into a tracked side asset
	f.vault.set("alpha", testDenom, mustDec("100"))
	f.vault.set("alpha", "atom", mustDec("990"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	_, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("5000"), false)
	if err == nil {
		t.Fatal("expected refusal without pending acceptance")
	}
	// fund untouched
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if fund.State != types.StateExecuting {
		t.Errorf("refused redemption must not change state, got %s", fund.State)
	}
	if got := f.keeper.GetBalance(f.ctx, "alpha", testInvestor); !got.Equal(mustDec("9000")) {
		t.Errorf("refused redemption must not touch balance, got %s", got)
	}
}

func TestPurchaseRedeemRoundTrip(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	// triple the share price so the round trip exercises truncation
	f.vault.set("alpha", testDenom, mustDec("30000"))

	share, err := f.keeper.Purchase(f.ctx, "alpha", "second", mustDec("1000"))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	paid, err := f.keeper.Redeem(f.ctx, "alpha", "second", share, false)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}

	// round-down losses stay under one part in a billion
	diff := mustDec("1000").Sub(paid)
	if diff.IsNegative() || diff.GT(mustDec("0.000001")) {
		t.Errorf("round trip of 1000 returned %s", paid)
	}
}
