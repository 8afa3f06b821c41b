package keeper

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

func TestAddAsset(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", "atom", mustDec("5"))

	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if !fund.HasAsset("atom") {
		t.Error("atom missing from asset list")
	}
	// re-adding is a no-op
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Errorf("re-add must be a no-op, got %v", err)
	}
	if len(fund.AssetList) != 2 {
		t.Errorf("expected 2 tracked assets, got %d", len(fund.AssetList))
	}
}

func TestAddAssetNotPermitted(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", "doge", mustDec("5"))

	if err := f.keeper.AddAsset(f.ctx, "alpha", "doge"); err == nil {
		t.Error("expected error for unpermitted asset")
	}
}

func TestAddAssetCapacity(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.policy.capacity = 1 // denomination already occupies the single slot
	f.vault.set("alpha", "atom", mustDec("5"))

	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err == nil {
		t.Error("expected capacity error")
	}
}

func TestAddAssetBelowDustSkipped(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", "atom", mustDec("0.00000001"))

	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("dust add must not error: %v", err)
	}
	if f.keeper.GetFund(f.ctx, "alpha").HasAsset("atom") {
		t.Error("dust-level asset must not be tracked")
	}
}

func TestAddDebtAssetSkipsDustCheck(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.policy.permittedAssets["debt-atom"] = true

	// zero-balance debt assets register so borrow handlers can track them
	// before the first draw
	if err := f.keeper.AddAsset(f.ctx, "alpha", "debt-atom"); err != nil {
		t.Fatalf("add debt asset: %v", err)
	}
	if !f.keeper.GetFund(f.ctx, "alpha").HasAsset("debt-atom") {
		t.Error("debt asset missing from asset list")
	}
}

func TestRemoveAssetAboveDust(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", "atom", mustDec("5"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	// removal of an asset still above dust is a silent no-op
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("remove above dust must not error: %v", err)
	}
	if !f.keeper.GetFund(f.ctx, "alpha").HasAsset("atom") {
		t.Error("atom must stay tracked while above dust")
	}

	// drained positions come off the list
	f.vault.set("alpha", "atom", math.LegacyZeroDec())
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("remove drained asset: %v", err)
	}
	if f.keeper.GetFund(f.ctx, "alpha").HasAsset("atom") {
		t.Error("atom still tracked after removal")
	}
}

func TestRemoveDrainedAssetUnblocksClose(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", "atom", mustDec("5"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	// the dust table only knows the denomination; a drained side asset must
	// still come off the list under the denomination's threshold
	f.vault.set("alpha", "atom", math.LegacyZeroDec())
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("remove drained asset: %v", err)
	}
	if f.keeper.GetFund(f.ctx, "alpha").HasAsset("atom") {
		t.Fatal("drained asset must not stay tracked")
	}

	if err := f.keeper.Close(f.ctx, "alpha", testManager); err != nil {
		t.Fatalf("close after sweep: %v", err)
	}
	if f.keeper.GetFund(f.ctx, "alpha").State != types.StateClosed {
		t.Error("fund must close once only the denomination remains")
	}
}

func TestRemoveDebtAssetRequiresSettlement(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.policy.permittedAssets["debt-atom"] = true
	if err := f.keeper.AddAsset(f.ctx, "alpha", "debt-atom"); err != nil {
		t.Fatalf("add debt asset: %v", err)
	}

	f.resolver.debts["alpha:debt-atom"] = mustDec("3")
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", "debt-atom"); err == nil {
		t.Error("expected error removing unsettled debt")
	}

	f.resolver.debts["alpha:debt-atom"] = math.LegacyZeroDec()
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", "debt-atom"); err != nil {
		t.Fatalf("remove settled debt: %v", err)
	}
}

func TestRemoveDenominationGuard(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", "atom", mustDec("5"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	// removing the denomination while other assets remain is a silent no-op
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", testDenom); err != nil {
		t.Fatalf("denomination removal must not error: %v", err)
	}
	if !f.keeper.GetFund(f.ctx, "alpha").HasAsset(testDenom) {
		t.Error("denomination must stay tracked while other assets remain")
	}

	f.vault.set("alpha", "atom", math.LegacyZeroDec())
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("remove atom: %v", err)
	}
	// last asset standing, and the vault holds no denomination
	if err := f.keeper.RemoveAsset(f.ctx, "alpha", testDenom); err != nil {
		t.Fatalf("remove denomination: %v", err)
	}
}

func TestGrossAssetValue(t *testing.T) {
	f := setupKeeper(t)
	fund := f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", testDenom, mustDec("100"))
	f.vault.set("alpha", "atom", mustDec("7"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	fund = f.keeper.GetFund(f.ctx, "alpha")
	gav, err := f.keeper.GetGrossAssetValue(f.ctx, fund)
	if err != nil {
		t.Fatalf("gross asset value: %v", err)
	}
	// 100 usdc + 7 atom at price 10
	if !gav.Equal(mustDec("170")) {
		t.Errorf("expected gav 170, got %s", gav)
	}
}

func TestGrossAssetValueDebtAndFloor(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", testDenom, mustDec("50"))
	f.policy.permittedAssets["debt-atom"] = true
	f.oracle.prices["debt-atom"] = mustDec("10")
	if err := f.keeper.AddAsset(f.ctx, "alpha", "debt-atom"); err != nil {
		t.Fatalf("add debt asset: %v", err)
	}

	// 3 units of debt at price 10 against 50 of cash
	f.resolver.debts["alpha:debt-atom"] = mustDec("3")
	fund := f.keeper.GetFund(f.ctx, "alpha")
	gav, err := f.keeper.GetGrossAssetValue(f.ctx, fund)
	if err != nil {
		t.Fatalf("gross asset value: %v", err)
	}
	if !gav.Equal(mustDec("20")) {
		t.Errorf("expected gav 20, got %s", gav)
	}

	// debt beyond assets floors at zero rather than going negative
	f.resolver.debts["alpha:debt-atom"] = mustDec("9")
	gav, err = f.keeper.GetGrossAssetValue(f.ctx, fund)
	if err != nil {
		t.Fatalf("gross asset value: %v", err)
	}
	if !gav.IsZero() {
		t.Errorf("expected floored gav 0, got %s", gav)
	}
}

func TestStaleOraclePropagates(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	f.vault.set("alpha", "atom", mustDec("5"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	f.oracle.stale = true
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if _, err := f.keeper.GetGrossAssetValue(f.ctx, fund); err == nil {
		t.Error("expected stale oracle error from valuation")
	}
	// any priced operation refuses to run on stale data
	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("100")); err == nil {
		t.Error("expected stale oracle error from purchase")
	}
	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("100"), false); err == nil {
		t.Error("expected stale oracle error from redeem")
	}
}

func TestLiquidReserveNetsClaimable(t *testing.T) {
	f := setupKeeper(t)
	fund := f.createExecutingFund(t, "alpha")
	f.vault.set("alpha", testDenom, mustDec("1000"))

	fund.ClaimableReserve = mustDec("300")
	f.keeper.SetFund(f.ctx, fund)

	fund = f.keeper.GetFund(f.ctx, "alpha")
	if got := f.keeper.LiquidReserve(f.ctx, fund); !got.Equal(mustDec("700")) {
		t.Errorf("expected reserve 700, got %s", got)
	}
	// the earmarked portion is also out of the gross value
	gav, err := f.keeper.GetGrossAssetValue(f.ctx, fund)
	if err != nil {
		t.Fatalf("gross asset value: %v", err)
	}
	if !gav.Equal(mustDec("700")) {
		t.Errorf("expected gav 700, got %s", gav)
	}
}
