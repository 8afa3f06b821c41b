package keeper

import (
	"bytes"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

func TestExecute(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	var sawData []byte
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		sawData = data
		return []byte("ok"), nil
	}

	result, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", []byte("payload"), false)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !bytes.Equal(result, []byte("ok")) {
		t.Errorf("expected adapter result, got %q", result)
	}
	if !bytes.Equal(sawData, []byte("payload")) {
		t.Errorf("adapter did not receive call data, got %q", sawData)
	}
}

func TestExecuteRequiresManager(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if _, err := f.keeper.Execute(f.ctx, "alpha", testInvestor, "dex", "swap", nil, false); err == nil {
		t.Error("expected error for non-manager sender")
	}
}

func TestExecuteUnpermittedHandler(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "cex", "trade", nil, false); err == nil {
		t.Error("expected error for unpermitted handler")
	}
}

func TestExecuteToleranceBreach(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// the handler burns 20% of value, past the 90% tolerance floor
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		f.vault.set(fundID, testDenom, mustDec("8000"))
		return nil, nil
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err == nil {
		t.Error("expected tolerance error")
	}

	// a loss inside the tolerance passes
	f.vault.set("alpha", testDenom, mustDec("10000"))
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		f.vault.set(fundID, testDenom, mustDec("9500"))
		return nil, nil
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err != nil {
		t.Errorf("execute within tolerance: %v", err)
	}
}

func TestExecuteReserveRatio(t *testing.T) {
	f := setupKeeper(t)
	fund := f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	fund = f.keeper.GetFund(f.ctx, "alpha")
	fund.ReserveExecutionBps = 5000
	f.keeper.SetFund(f.ctx, fund)

	// the swap leaves 4000 liquid against a 10000 gross value, under the
	// required half
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		f.vault.set(fundID, testDenom, mustDec("4000"))
		f.vault.set(fundID, "atom", mustDec("600"))
		if err := f.keeper.AddAsset(ctx, fundID, "atom"); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err == nil {
		t.Error("expected reserve ratio error")
	}

	// trimming the position back to 60/40 satisfies the ratio
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		f.vault.set(fundID, testDenom, mustDec("6000"))
		f.vault.set(fundID, "atom", mustDec("400"))
		return nil, nil
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err != nil {
		t.Errorf("execute with healthy reserve: %v", err)
	}
}

func TestExecuteDelegateCallTable(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// lens:read is only on the delegate table
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "lens", "read", nil, true); err != nil {
		t.Errorf("delegated call to delegate target: %v", err)
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "lens", "read", nil, false); err == nil {
		t.Error("handler table must not admit delegate-only targets")
	}
	// dex:swap is only on the handler table
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, true); err == nil {
		t.Error("delegate table must not admit handler-only targets")
	}
}

func TestExecuteFeeOnGain(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// the swap gains 1000 of value; 20 bps of the gain accrues to the
	// authority as dilution shares
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		f.vault.set(fundID, testDenom, mustDec("11000"))
		return nil, nil
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err != nil {
		t.Fatalf("execute: %v", err)
	}

	// fee value 1000 * 0.002 = 2, minted at the post-fee share price
	expected := mustDec("2").MulTruncate(mustDec("10000")).QuoTruncate(mustDec("10998"))
	if got := f.keeper.GetBalance(f.ctx, "alpha", testAuthority); !got.Equal(expected) {
		t.Errorf("expected authority fee share %s, got %s", expected, got)
	}
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if !fund.TotalShare.Equal(mustDec("10000").Add(expected)) {
		t.Errorf("fee shares must dilute the supply, got %s", fund.TotalShare)
	}

	// a losing call pays no fee
	f.adapter.perform = func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
		f.vault.set(fundID, testDenom, mustDec("10500"))
		return nil, nil
	}
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := f.keeper.GetBalance(f.ctx, "alpha", testAuthority); !got.Equal(expected) {
		t.Errorf("loss-making call must not charge, got %s", got)
	}
}

func TestExecuteBlockedWhenHalted(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	f.policy.halted = true
	if _, err := f.keeper.Execute(f.ctx, "alpha", testManager, "dex", "swap", nil, false); err == nil {
		t.Error("expected error while halted")
	}
}
