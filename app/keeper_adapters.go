package app

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"

	fundkeeper "github.com/openalpha/fundchain/x/fund/keeper"
	fundtypes "github.com/openalpha/fundchain/x/fund/types"
)

// fundVaultAddress derives the vault account holding one fund's assets.
func fundVaultAddress(fundID string) sdk.AccAddress {
	return authtypes.NewModuleAddress(fundtypes.ModuleName + "/" + fundID)
}

// bankVaultAdapter backs the fund Vault interface with the bank module. Each
// fund gets its own derived module account; share amounts are decimals but
// bank balances are integers, so transfers truncate to base units.
type bankVaultAdapter struct {
	bank bankkeeper.BaseKeeper
}

func newBankVaultAdapter(bank bankkeeper.BaseKeeper) fundkeeper.Vault {
	return bankVaultAdapter{bank: bank}
}

func (a bankVaultAdapter) Balance(ctx sdk.Context, fundID, asset string) math.LegacyDec {
	coin := a.bank.GetBalance(ctx, fundVaultAddress(fundID), asset)
	return math.LegacyNewDecFromInt(coin.Amount)
}

func (a bankVaultAdapter) PullFromInvestor(ctx sdk.Context, fundID, investor, asset string, amount math.LegacyDec) error {
	addr, err := sdk.AccAddressFromBech32(investor)
	if err != nil {
		return err
	}
	coins := sdk.NewCoins(sdk.NewCoin(asset, amount.TruncateInt()))
	return a.bank.SendCoins(ctx, addr, fundVaultAddress(fundID), coins)
}

func (a bankVaultAdapter) PayToInvestor(ctx sdk.Context, fundID, investor, asset string, amount math.LegacyDec) error {
	addr, err := sdk.AccAddressFromBech32(investor)
	if err != nil {
		return err
	}
	coins := sdk.NewCoins(sdk.NewCoin(asset, amount.TruncateInt()))
	return a.bank.SendCoins(ctx, fundVaultAddress(fundID), addr, coins)
}

// priceTableOracle is a block-time-aware price table implementing the fund
// PriceOracle. Prices are posted by the oracle feeder and considered stale
// past maxAge seconds. Same-asset conversions are always 1:1 and never stale.
type priceTableOracle struct {
	prices map[string]oracleEntry
	maxAge int64
}

type oracleEntry struct {
	price     math.LegacyDec
	updatedAt int64
}

func newPriceTableOracle(maxAge int64) *priceTableOracle {
	return &priceTableOracle{
		prices: make(map[string]oracleEntry),
		maxAge: maxAge,
	}
}

// SetPrice posts the price of one unit of base expressed in quote.
func (o *priceTableOracle) SetPrice(ctx sdk.Context, base, quote string, price math.LegacyDec) {
	o.prices[base+"/"+quote] = oracleEntry{price: price, updatedAt: ctx.BlockTime().Unix()}
}

func (o *priceTableOracle) rate(ctx sdk.Context, from, to string) (math.LegacyDec, error) {
	if from == to {
		return math.LegacyOneDec(), nil
	}
	entry, ok := o.prices[from+"/"+to]
	if !ok {
		return math.LegacyDec{}, fundtypes.ErrStaleOracle.Wrapf("no feed for %s/%s", from, to)
	}
	if o.maxAge > 0 && ctx.BlockTime().Unix()-entry.updatedAt > o.maxAge {
		return math.LegacyDec{}, fundtypes.ErrStaleOracle.Wrapf("feed %s/%s aged out", from, to)
	}
	return entry.price, nil
}

func (o *priceTableOracle) ValueOf(ctx sdk.Context, fromAsset string, amount math.LegacyDec, toAsset string) (math.LegacyDec, error) {
	rate, err := o.rate(ctx, fromAsset, toAsset)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return amount.MulTruncate(rate), nil
}

func (o *priceTableOracle) Convert(ctx sdk.Context, fromAsset string, amount math.LegacyDec, toAsset string) (math.LegacyDec, error) {
	return o.ValueOf(ctx, fromAsset, amount, toAsset)
}

// assetResolverAdapter classifies assets for the fund ledger. Assets are
// canonical bank denoms unless registered as debt; debt balances are looked
// up in the negative ledger the handler maintains.
type assetResolverAdapter struct {
	vault     fundkeeper.Vault
	debtKinds map[string]bool
}

func newAssetResolverAdapter(vault fundkeeper.Vault) *assetResolverAdapter {
	return &assetResolverAdapter{
		vault:     vault,
		debtKinds: make(map[string]bool),
	}
}

// RegisterDebtAsset marks an asset as a debt position.
func (a *assetResolverAdapter) RegisterDebtAsset(asset string) {
	a.debtKinds[asset] = true
}

func (a *assetResolverAdapter) Kind(ctx sdk.Context, asset string) string {
	if a.debtKinds[asset] {
		return fundtypes.AssetKindDebt
	}
	return fundtypes.AssetKindCanonical
}

func (a *assetResolverAdapter) SignedBalance(ctx sdk.Context, fundID, asset string) math.LegacyDec {
	balance := a.vault.Balance(ctx, fundID, asset)
	if a.debtKinds[asset] {
		return balance.Neg()
	}
	return balance
}

// HandlerFunc performs one whitelisted operation for a fund.
type HandlerFunc func(ctx sdk.Context, fundID string, data []byte) ([]byte, error)

// executionRouter dispatches whitelisted adapter calls to registered
// handlers by target and signature.
type executionRouter struct {
	handlers map[string]HandlerFunc
}

func newExecutionRouter() *executionRouter {
	return &executionRouter{handlers: make(map[string]HandlerFunc)}
}

// Register installs a handler for a target/signature pair.
func (r *executionRouter) Register(target, sig string, fn HandlerFunc) {
	r.handlers[target+":"+sig] = fn
}

func (r *executionRouter) Perform(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error) {
	fn, ok := r.handlers[target+":"+sig]
	if !ok {
		return nil, fundtypes.ErrPolicyViolation.Wrapf("no handler for %s %s", target, sig)
	}
	return fn(ctx, fundID, data)
}
