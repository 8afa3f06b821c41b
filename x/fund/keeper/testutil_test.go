package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundchain/x/fund/types"

	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
)

const (
	testAuthority = "authority"
	testManager   = "manager"
	testInvestor  = "investor"
	testDenom     = "usdc"
)

// mockPolicy is a configurable in-memory policy gate
type mockPolicy struct {
	permittedAssets  map[string]bool
	permittedDenoms  map[string]bool
	permittedTargets map[string]bool
	delegateTargets  map[string]bool
	dust             map[string]math.LegacyDec
	penaltyBps       int64
	executionFeeBps  int64
	toleranceBps     int64
	capacity         int
	expiration       int64
	halted           bool
	banned           map[string]bool
}

func newMockPolicy() *mockPolicy {
	return &mockPolicy{
		permittedAssets:  map[string]bool{testDenom: true, "atom": true},
		permittedDenoms:  map[string]bool{testDenom: true},
		permittedTargets: map[string]bool{"dex:swap": true},
		delegateTargets:  map[string]bool{"lens:read": true},
		dust:             map[string]math.LegacyDec{testDenom: math.LegacyMustNewDecFromStr("0.000001")},
		penaltyBps:       100,
		executionFeeBps:  20,
		toleranceBps:     9000,
		capacity:         64,
		expiration:       4 * 7 * 24 * 3600,
		banned:           make(map[string]bool),
	}
}

func (m *mockPolicy) IsAssetPermitted(ctx sdk.Context, level uint32, asset string) bool {
	return m.permittedAssets[asset]
}
func (m *mockPolicy) IsDenominationPermitted(ctx sdk.Context, denom string) bool {
	return m.permittedDenoms[denom]
}
// DustThreshold mirrors the policy keeper: only registered denominations
// carry a threshold, everything else reads as zero.
func (m *mockPolicy) DustThreshold(ctx sdk.Context, denom string) math.LegacyDec {
	if d, ok := m.dust[denom]; ok {
		return d
	}
	return math.LegacyZeroDec()
}
func (m *mockPolicy) IsDelegateCallPermitted(ctx sdk.Context, level uint32, target, sig string) bool {
	return m.delegateTargets[target+":"+sig]
}
func (m *mockPolicy) IsHandlerPermitted(ctx sdk.Context, level uint32, target, sig string) bool {
	return m.permittedTargets[target+":"+sig]
}
func (m *mockPolicy) PendingPenaltyRate(ctx sdk.Context) int64      { return m.penaltyBps }
func (m *mockPolicy) ExecutionFeeRate(ctx sdk.Context) int64        { return m.executionFeeBps }
func (m *mockPolicy) ValueTolerance(ctx sdk.Context) int64          { return m.toleranceBps }
func (m *mockPolicy) AssetCapacity(ctx sdk.Context) int             { return m.capacity }
func (m *mockPolicy) PendingExpiration(ctx sdk.Context) int64       { return m.expiration }
func (m *mockPolicy) IsHalted(ctx sdk.Context) bool                 { return m.halted }
func (m *mockPolicy) IsBanned(ctx sdk.Context, fundID string) bool  { return m.banned[fundID] }

// mockVault tracks per-fund asset balances in memory
type mockVault struct {
	balances map[string]math.LegacyDec // fundID:asset
}

func newMockVault() *mockVault {
	return &mockVault{balances: make(map[string]math.LegacyDec)}
}

func (m *mockVault) key(fundID, asset string) string { return fundID + ":" + asset }

func (m *mockVault) set(fundID, asset string, amount math.LegacyDec) {
	m.balances[m.key(fundID, asset)] = amount
}

func (m *mockVault) Balance(ctx sdk.Context, fundID, asset string) math.LegacyDec {
	if b, ok := m.balances[m.key(fundID, asset)]; ok {
		return b
	}
	return math.LegacyZeroDec()
}

func (m *mockVault) PullFromInvestor(ctx sdk.Context, fundID, investor, asset string, amount math.LegacyDec) error {
	m.set(fundID, asset, m.Balance(ctx, fundID, asset).Add(amount))
	return nil
}

func (m *mockVault) PayToInvestor(ctx sdk.Context, fundID, investor, asset string, amount math.LegacyDec) error {
	current := m.Balance(ctx, fundID, asset)
	if current.LT(amount) {
		return types.ErrInsufficientReserve.Wrapf("vault has %s, need %s", current, amount)
	}
	m.set(fundID, asset, current.Sub(amount))
	return nil
}

// mockOracle prices assets from a fixed table; same-asset is always 1:1
type mockOracle struct {
	prices map[string]math.LegacyDec // asset -> price in testDenom
	stale  bool
}

func newMockOracle() *mockOracle {
	return &mockOracle{prices: map[string]math.LegacyDec{
		"atom": math.LegacyNewDec(10),
	}}
}

func (m *mockOracle) ValueOf(ctx sdk.Context, fromAsset string, amount math.LegacyDec, toAsset string) (math.LegacyDec, error) {
	if fromAsset == toAsset {
		return amount, nil
	}
	if m.stale {
		return math.LegacyDec{}, types.ErrStaleOracle.Wrap(fromAsset)
	}
	price, ok := m.prices[fromAsset]
	if !ok {
		return math.LegacyDec{}, types.ErrStaleOracle.Wrap(fromAsset)
	}
	return amount.MulTruncate(price), nil
}

func (m *mockOracle) Convert(ctx sdk.Context, fromAsset string, amount math.LegacyDec, toAsset string) (math.LegacyDec, error) {
	return m.ValueOf(ctx, fromAsset, amount, toAsset)
}

// mockResolver classifies assets and reads balances off the vault
type mockResolver struct {
	vault *mockVault
	debts map[string]math.LegacyDec // fundID:asset -> outstanding debt
}

func newMockResolver(vault *mockVault) *mockResolver {
	return &mockResolver{vault: vault, debts: make(map[string]math.LegacyDec)}
}

func (m *mockResolver) Kind(ctx sdk.Context, asset string) string {
	if len(asset) > 5 && asset[:5] == "debt-" {
		return types.AssetKindDebt
	}
	return types.AssetKindCanonical
}

func (m *mockResolver) SignedBalance(ctx sdk.Context, fundID, asset string) math.LegacyDec {
	if m.Kind(ctx, asset) == types.AssetKindDebt {
		if d, ok := m.debts[fundID+":"+asset]; ok {
			return d.Neg()
		}
		return math.LegacyZeroDec()
	}
	return m.vault.Balance(ctx, fundID, asset)
}

// mockAdapter runs an arbitrary hook so tests can move vault balances
// mid-execution
type mockAdapter struct {
	perform func(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error)
}

func (m *mockAdapter) Perform(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
	if m.perform == nil {
		return []byte("ok"), nil
	}
	return m.perform(ctx, fundID, target, sig, data)
}

type testFixture struct {
	keeper   *Keeper
	ctx      sdk.Context
	vault    *mockVault
	policy   *mockPolicy
	oracle   *mockOracle
	resolver *mockResolver
	adapter  *mockAdapter
}

// setupKeeper creates a fund keeper over an in-memory store
func setupKeeper(tb testing.TB) *testFixture {
	tb.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		tb.Fatalf("failed to load store: %v", err)
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockTime(time.Unix(1_700_000_000, 0))

	interfaceRegistry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(interfaceRegistry)

	vault := newMockVault()
	policy := newMockPolicy()
	oracle := newMockOracle()
	resolver := newMockResolver(vault)
	adapter := &mockAdapter{}

	keeper := NewKeeper(cdc, storeKey, oracle, policy, vault, resolver, adapter, testAuthority, log.NewNopLogger())

	return &testFixture{
		keeper:   keeper,
		ctx:      ctx,
		vault:    vault,
		policy:   policy,
		oracle:   oracle,
		resolver: resolver,
		adapter:  adapter,
	}
}

func testConfig(fundID string) *types.FundConfig {
	return &types.FundConfig{
		FundID:                fundID,
		Manager:               testManager,
		Denomination:          testDenom,
		Level:                 1,
		ManagementFeeBps:      0,
		PerformanceFeeBps:     0,
		CrystallizationPeriod: 86400,
	}
}

// createExecutingFund creates and finalizes a fund ready for purchases
func (f *testFixture) createExecutingFund(tb testing.TB, fundID string) *types.Fund {
	tb.Helper()
	if _, err := f.keeper.CreateFund(f.ctx, testConfig(fundID)); err != nil {
		tb.Fatalf("create fund: %v", err)
	}
	if err := f.keeper.Finalize(f.ctx, fundID, testManager); err != nil {
		tb.Fatalf("finalize fund: %v", err)
	}
	return f.keeper.GetFund(f.ctx, fundID)
}

// advance moves the block time forward
func (f *testFixture) advance(seconds int64) {
	f.ctx = f.ctx.WithBlockTime(f.ctx.BlockTime().Add(time.Duration(seconds) * time.Second))
}

func mustDec(s string) math.LegacyDec {
	return math.LegacyMustNewDecFromStr(s)
}
