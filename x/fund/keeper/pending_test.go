package keeper

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/fundchain/x/fund/types"
)

// seedPendingFund builds a fund whose reserve cannot cover redemptions:
// 10000 purchased, 500 kept liquid, 9500 of value parked in atom.
func seedPendingFund(t *testing.T, f *testFixture, fundID string) {
	t.Helper()
	f.createExecutingFund(t, fundID)
	if _, err := f.keeper.Purchase(f.ctx, fundID, testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	f.vault.set(fundID, testDenom, mustDec("500"))
	f.vault.set(fundID, "atom", mustDec("950"))
	if err := f.keeper.AddAsset(f.ctx, fundID, "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
}

func TestQueuePendingRedemption(t *testing.T) {
	f := setupKeeper(t)
	seedPendingFund(t, f, "alpha")

	paid, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("1000"), true)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !paid.IsZero() {
		t.Errorf("queued redemption pays nothing now, got %s", paid)
	}

	fund := f.keeper.GetFund(f.ctx, "alpha")
	if fund.State != types.StatePending {
		t.Fatalf("expected pending state, got %s", fund.State)
	}
	if fund.CurrentPendingRound != 1 {
		t.Errorf("expected round 1, got %d", fund.CurrentPendingRound)
	}
	// the whole amount leaves the balance, parked shares stay in the supply
	if got := f.keeper.GetBalance(f.ctx, "alpha", testInvestor); !got.Equal(mustDec("8000")) {
		t.Errorf("expected balance 8000, got %s", got)
	}
	if !fund.TotalShare.Equal(mustDec("10000")) {
		t.Errorf("parked shares must stay in supply, got %s", fund.TotalShare)
	}

	// 1% penalty split: 990 owed to the redeemer, 10 withheld as bonus
	round := f.keeper.GetPendingRound(f.ctx, "alpha", 1)
	if round == nil {
		t.Fatal("round 1 missing")
	}
	if !round.TotalPendingShare.Equal(mustDec("990")) {
		t.Errorf("expected pending share 990, got %s", round.TotalPendingShare)
	}
	if !round.TotalPenalty.Equal(mustDec("10")) {
		t.Errorf("expected penalty 10, got %s", round.TotalPenalty)
	}
	if !round.BonusPool.Equal(mustDec("10")) {
		t.Errorf("expected bonus pool 10, got %s", round.BonusPool)
	}

	claim := f.keeper.GetPendingClaim(f.ctx, "alpha", testInvestor, 1)
	if claim == nil || !claim.PendingShare.Equal(mustDec("990")) {
		t.Errorf("expected claim of 990 penalized shares, got %+v", claim)
	}
}

func TestPurchaseResolvesPendingRound(t *testing.T) {
	f := setupKeeper(t)
	seedPendingFund(t, f, "alpha")

	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	f.advance(60)

	minted, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("600"))
	if err != nil {
		t.Fatalf("rescue purchase: %v", err)
	}
	// 600 shares at price 1 plus the bonus 600 * 100/9900 from the pool
	expectedBonus := mustDec("600").MulTruncate(math.LegacyNewDec(100)).
		QuoTruncate(math.LegacyNewDec(9900))
	if !minted.Equal(mustDec("600").Add(expectedBonus)) {
		t.Errorf("expected minted %s, got %s", mustDec("600").Add(expectedBonus), minted)
	}
	if got := f.keeper.GetBalance(f.ctx, "alpha", "rescuer"); !got.Equal(mustDec("600").Add(expectedBonus)) {
		t.Errorf("expected rescuer balance with bonus, got %s", got)
	}

	// the 600 of fresh cash covers the 990 owed
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if fund.State != types.StateExecuting {
		t.Errorf("resolution must return the fund to executing, got %s", fund.State)
	}
	if fund.PendingStartTime != 0 {
		t.Error("pending clock must reset after resolution")
	}
	if !fund.ClaimableReserve.Equal(mustDec("990")) {
		t.Errorf("expected claimable reserve 990, got %s", fund.ClaimableReserve)
	}

	round := f.keeper.GetPendingRound(f.ctx, "alpha", 1)
	if round == nil || !round.Resolved {
		t.Fatal("round must be resolved")
	}
	if !round.TotalRedemption.Equal(mustDec("990")) {
		t.Errorf("expected redemption value 990, got %s", round.TotalRedemption)
	}
	if !round.BonusPool.IsZero() {
		t.Error("leftover bonus must burn at resolution")
	}

	// supply: 10000 + 600 purchased - 990 parked - leftover bonus burn
	leftover := mustDec("10").Sub(expectedBonus)
	expectedSupply := mustDec("10600").Sub(mustDec("990")).Sub(leftover)
	if !fund.TotalShare.Equal(expectedSupply) {
		t.Errorf("expected supply %s, got %s", expectedSupply, fund.TotalShare)
	}
}

func TestSameBlockPurchaseEarnsNoBonus(t *testing.T) {
	f := setupKeeper(t)
	seedPendingFund(t, f, "alpha")

	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	// no time passes between the queue and the purchase
	minted, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("600"))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !minted.Equal(mustDec("600")) {
		t.Errorf("same-block purchase must earn no bonus, got %s", minted)
	}
}

func TestPartialLiquidityLeavesRoundOpen(t *testing.T) {
	f := setupKeeper(t)
	seedPendingFund(t, f, "alpha")

	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	f.advance(60)

	// 200 of fresh cash still leaves the reserve at 700, below the 990 owed
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("200")); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	fund := f.keeper.GetFund(f.ctx, "alpha")
	if fund.State != types.StatePending {
		t.Errorf("underfunded round must stay pending, got %s", fund.State)
	}
	round := f.keeper.GetPendingRound(f.ctx, "alpha", 1)
	if round.Resolved {
		t.Error("round must not resolve on partial liquidity")
	}

	// claims are not payable while the fund is pending
	if _, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", testInvestor); err == nil {
		t.Error("expected error claiming while pending")
	}
}

func TestClaimPendingRedemption(t *testing.T) {
	f := setupKeeper(t)
	seedPendingFund(t, f, "alpha")

	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	f.advance(60)
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("600")); err != nil {
		t.Fatalf("rescue purchase: %v", err)
	}

	paid, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", testInvestor)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !paid.Equal(mustDec("990")) {
		t.Errorf("expected payout 990, got %s", paid)
	}

	fund := f.keeper.GetFund(f.ctx, "alpha")
	if !fund.ClaimableReserve.IsZero() {
		t.Errorf("claimable reserve must drain, got %s", fund.ClaimableReserve)
	}
	// fully claimed round is pruned
	if f.keeper.GetPendingRound(f.ctx, "alpha", 1) != nil {
		t.Error("fully claimed round must be pruned")
	}
	// second claim finds nothing
	if _, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", testInvestor); err == nil {
		t.Error("expected error on double claim")
	}
}

func TestProRataClaims(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	f.advance(10)
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "second", mustDec("3000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// drain liquidity
	f.vault.set("alpha", testDenom, mustDec("100"))
	f.vault.set("alpha", "atom", mustDec("1290"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	// both investors queue into the same round
	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("3000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := f.keeper.Redeem(f.ctx, "alpha", "second", mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if fund.CurrentPendingRound != 1 {
		t.Fatalf("both redemptions must share round 1, got %d", fund.CurrentPendingRound)
	}

	// a large rescue purchase resolves the round
	f.advance(60)
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("5000")); err != nil {
		t.Fatalf("rescue purchase: %v", err)
	}
	if f.keeper.GetFund(f.ctx, "alpha").State != types.StateExecuting {
		t.Fatal("round must resolve")
	}

	first, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", testInvestor)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	second, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", "second")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}

	// 3000 vs 1000 queued shares: payouts split 3:1
	ratio := first.Quo(second)
	if ratio.Sub(mustDec("3")).Abs().GT(mustDec("0.001")) {
		t.Errorf("expected 3:1 payout split, got %s : %s", first, second)
	}
}

func TestFailedClaimOnCacheContextLeavesRoundIntact(t *testing.T) {
	f := setupKeeper(t)
	f.createExecutingFund(t, "alpha")

	if _, err := f.keeper.Purchase(f.ctx, "alpha", testInvestor, mustDec("10000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	f.advance(10)
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "second", mustDec("3000")); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	f.vault.set("alpha", testDenom, mustDec("100"))
	f.vault.set("alpha", "atom", mustDec("1290"))
	if err := f.keeper.AddAsset(f.ctx, "alpha", "atom"); err != nil {
		t.Fatalf("add asset: %v", err)
	}

	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("3000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := f.keeper.Redeem(f.ctx, "alpha", "second", mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	f.advance(60)
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("5000")); err != nil {
		t.Fatalf("rescue purchase: %v", err)
	}
	round := f.keeper.GetPendingRound(f.ctx, "alpha", 1)
	if round == nil || !round.Resolved {
		t.Fatal("round must resolve before claiming")
	}
	unclaimed := round.UnclaimedShare
	reserve := f.keeper.GetFund(f.ctx, "alpha").ClaimableReserve

	// a claim whose payout fails must leave no trace once the delivery
	// context is discarded
	f.vault.set("alpha", testDenom, mustDec("1"))
	cacheCtx, _ := f.ctx.CacheContext()
	if _, err := f.keeper.ClaimPendingRedemption(cacheCtx, "alpha", testInvestor); err == nil {
		t.Fatal("expected claim to fail on drained vault")
	}

	round = f.keeper.GetPendingRound(f.ctx, "alpha", 1)
	if round == nil {
		t.Fatal("aborted claim must not prune the round")
	}
	if !round.UnclaimedShare.Equal(unclaimed) {
		t.Errorf("aborted claim must not debit unclaimed share: want %s, got %s",
			unclaimed, round.UnclaimedShare)
	}
	if got := f.keeper.GetFund(f.ctx, "alpha").ClaimableReserve; !got.Equal(reserve) {
		t.Errorf("aborted claim must not touch the reserve: want %s, got %s", reserve, got)
	}
	if f.keeper.GetPendingClaim(f.ctx, "alpha", testInvestor, 1) == nil {
		t.Fatal("aborted claim must keep the investor's claim")
	}

	// both claims still pay in full once liquidity returns
	f.vault.set("alpha", testDenom, mustDec("5100"))
	first, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", testInvestor)
	if err != nil {
		t.Fatalf("retried claim: %v", err)
	}
	second, err := f.keeper.ClaimPendingRedemption(f.ctx, "alpha", "second")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if !first.Add(second).Equal(reserve) {
		t.Errorf("claims must drain the reserve: %s + %s != %s", first, second, reserve)
	}
	if !f.keeper.GetFund(f.ctx, "alpha").ClaimableReserve.IsZero() {
		t.Error("claimable reserve must reach zero")
	}
	if f.keeper.GetPendingRound(f.ctx, "alpha", 1) != nil {
		t.Error("fully claimed round must be pruned")
	}
}

func TestSecondRoundOpensAfterResolution(t *testing.T) {
	f := setupKeeper(t)
	seedPendingFund(t, f, "alpha")

	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("1000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	f.advance(60)
	if _, err := f.keeper.Purchase(f.ctx, "alpha", "rescuer", mustDec("600")); err != nil {
		t.Fatalf("rescue purchase: %v", err)
	}
	if f.keeper.GetFund(f.ctx, "alpha").State != types.StateExecuting {
		t.Fatal("round 1 must resolve")
	}

	// the reserve is thin again; a new redemption opens round 2
	f.advance(60)
	if _, err := f.keeper.Redeem(f.ctx, "alpha", testInvestor, mustDec("2000"), true); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	fund := f.keeper.GetFund(f.ctx, "alpha")
	if fund.CurrentPendingRound != 2 {
		t.Errorf("expected round 2, got %d", fund.CurrentPendingRound)
	}
	if fund.State != types.StatePending {
		t.Errorf("expected pending state, got %s", fund.State)
	}
}
