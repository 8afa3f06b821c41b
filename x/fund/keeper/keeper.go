package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundchain/x/fund/types"
)

// Store key prefixes
var (
	FundKeyPrefix         = []byte{0x01}
	BalanceKeyPrefix      = []byte{0x02}
	PendingRoundKeyPrefix = []byte{0x03}
	PendingClaimKeyPrefix = []byte{0x04}
	SharePriceKeyPrefix   = []byte{0x05}
)

// PriceOracle is the external price feed the fund values assets against.
// Implementations must fail with ErrStaleOracle when the feed is older than
// the configured staleness window.
type PriceOracle interface {
	ValueOf(ctx sdk.Context, fromAsset string, amount math.LegacyDec, toAsset string) (math.LegacyDec, error)
	Convert(ctx sdk.Context, fromAsset string, amount math.LegacyDec, toAsset string) (math.LegacyDec, error)
}

// PolicyGate is the read-only comptroller view consulted before every fund
// operation. The fund never mutates it.
type PolicyGate interface {
	IsAssetPermitted(ctx sdk.Context, level uint32, asset string) bool
	IsDenominationPermitted(ctx sdk.Context, denom string) bool
	DustThreshold(ctx sdk.Context, denom string) math.LegacyDec
	IsDelegateCallPermitted(ctx sdk.Context, level uint32, target, sig string) bool
	IsHandlerPermitted(ctx sdk.Context, level uint32, target, sig string) bool
	PendingPenaltyRate(ctx sdk.Context) int64
	ExecutionFeeRate(ctx sdk.Context) int64
	ValueTolerance(ctx sdk.Context) int64
	AssetCapacity(ctx sdk.Context) int
	PendingExpiration(ctx sdk.Context) int64
	IsHalted(ctx sdk.Context) bool
	IsBanned(ctx sdk.Context, fundID string) bool
}

// Vault abstracts the account holding the fund's actual asset balances. The
// fund only reads balances and instructs transfers; custody mechanics live
// behind this interface.
type Vault interface {
	Balance(ctx sdk.Context, fundID, asset string) math.LegacyDec
	PullFromInvestor(ctx sdk.Context, fundID, investor, asset string, amount math.LegacyDec) error
	PayToInvestor(ctx sdk.Context, fundID, investor, asset string, amount math.LegacyDec) error
}

// AssetResolver classifies assets and reports their signed balances; debt
// assets resolve to non-positive balances.
type AssetResolver interface {
	Kind(ctx sdk.Context, asset string) string
	SignedBalance(ctx sdk.Context, fundID, asset string) math.LegacyDec
}

// ExecutionAdapter performs a whitelisted operation on behalf of the fund.
type ExecutionAdapter interface {
	Perform(ctx sdk.Context, fundID, target, sig string, data []byte) ([]byte, error)
}

// Keeper manages the fund module state.
type Keeper struct {
	cdc      codec.BinaryCodec
	storeKey storetypes.StoreKey
	logger   log.Logger

	oracle   PriceOracle
	policy   PolicyGate
	vault    Vault
	resolver AssetResolver
	adapter  ExecutionAdapter

	authority string

	// entered guards the execute/purchase/redeem critical sections against
	// re-entry through collaborator callbacks.
	entered bool
}

// NewKeeper creates a new fund keeper.
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	oracle PriceOracle,
	policy PolicyGate,
	vault Vault,
	resolver AssetResolver,
	adapter ExecutionAdapter,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:       cdc,
		storeKey:  storeKey,
		oracle:    oracle,
		policy:    policy,
		vault:     vault,
		resolver:  resolver,
		adapter:   adapter,
		authority: authority,
		logger:    logger.With("module", "x/fund"),
	}
}

// Logger returns the module logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address.
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore.
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// enter acquires the non-reentrant guard for the duration of fn. Collaborator
// calls inside purchase/redeem/execute can in principle call back into the
// fund; the guard turns that into a hard failure instead of state corruption.
func (k *Keeper) enter(fn func() error) error {
	if k.entered {
		return types.ErrReentrantCall
	}
	k.entered = true
	defer func() { k.entered = false }()
	return fn()
}

// ============ Fund storage ============

func fundKey(fundID string) []byte {
	return append(FundKeyPrefix, []byte(fundID)...)
}

// SetFund saves a fund to the store.
func (k *Keeper) SetFund(ctx sdk.Context, fund *types.Fund) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(fund)
	store.Set(fundKey(fund.FundID), bz)
}

// GetFund retrieves a fund from the store.
func (k *Keeper) GetFund(ctx sdk.Context, fundID string) *types.Fund {
	store := k.GetStore(ctx)
	bz := store.Get(fundKey(fundID))
	if bz == nil {
		return nil
	}
	var fund types.Fund
	if err := json.Unmarshal(bz, &fund); err != nil {
		return nil
	}
	return &fund
}

// GetAllFunds returns all funds.
func (k *Keeper) GetAllFunds(ctx sdk.Context) []*types.Fund {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, FundKeyPrefix)
	defer iterator.Close()

	var funds []*types.Fund
	for ; iterator.Valid(); iterator.Next() {
		var fund types.Fund
		if err := json.Unmarshal(iterator.Value(), &fund); err != nil {
			continue
		}
		funds = append(funds, &fund)
	}
	return funds
}

// ============ Share balances ============

func balanceKey(fundID, account string) []byte {
	return append(BalanceKeyPrefix, []byte(fundID+":"+account)...)
}

// GetBalance returns an account's share balance in a fund.
func (k *Keeper) GetBalance(ctx sdk.Context, fundID, account string) math.LegacyDec {
	store := k.GetStore(ctx)
	bz := store.Get(balanceKey(fundID, account))
	if bz == nil {
		return math.LegacyZeroDec()
	}
	var d math.LegacyDec
	if err := json.Unmarshal(bz, &d); err != nil {
		return math.LegacyZeroDec()
	}
	return d
}

// SetBalance writes an account's share balance; zero balances are deleted.
func (k *Keeper) SetBalance(ctx sdk.Context, fundID, account string, share math.LegacyDec) {
	store := k.GetStore(ctx)
	key := balanceKey(fundID, account)
	if share.IsZero() {
		store.Delete(key)
		return
	}
	bz, _ := json.Marshal(share)
	store.Set(key, bz)
}

// AddBalance credits shares to an account.
func (k *Keeper) AddBalance(ctx sdk.Context, fundID, account string, share math.LegacyDec) {
	k.SetBalance(ctx, fundID, account, k.GetBalance(ctx, fundID, account).Add(share))
}

// SubBalance debits shares from an account; fails on insufficient balance.
func (k *Keeper) SubBalance(ctx sdk.Context, fundID, account string, share math.LegacyDec) error {
	current := k.GetBalance(ctx, fundID, account)
	if current.LT(share) {
		return types.ErrInsufficientShare.Wrapf("have %s, need %s", current, share)
	}
	k.SetBalance(ctx, fundID, account, current.Sub(share))
	return nil
}

// ============ Pending rounds ============

func pendingRoundKey(fundID string, round int64) []byte {
	return append(PendingRoundKeyPrefix, []byte(fmt.Sprintf("%s:%020d", fundID, round))...)
}

// SetPendingRound saves a round. The store is the only source of truth for
// rounds: writes on a cache-wrapped context must discard with it, so no
// keeper-level caching is allowed here.
func (k *Keeper) SetPendingRound(ctx sdk.Context, fundID string, round *types.PendingRound) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(round)
	store.Set(pendingRoundKey(fundID, round.Round), bz)
}

// GetPendingRound retrieves a round from the store; nil if absent.
func (k *Keeper) GetPendingRound(ctx sdk.Context, fundID string, round int64) *types.PendingRound {
	store := k.GetStore(ctx)
	bz := store.Get(pendingRoundKey(fundID, round))
	if bz == nil {
		return nil
	}
	var r types.PendingRound
	if err := json.Unmarshal(bz, &r); err != nil {
		return nil
	}
	return &r
}

// DeletePendingRound prunes a fully claimed round.
func (k *Keeper) DeletePendingRound(ctx sdk.Context, fundID string, round int64) {
	store := k.GetStore(ctx)
	store.Delete(pendingRoundKey(fundID, round))
}

// GetPendingRounds returns a fund's rounds in FIFO order; the zero-padded
// round number in the key makes the prefix scan ascend by round.
func (k *Keeper) GetPendingRounds(ctx sdk.Context, fundID string) []*types.PendingRound {
	store := k.GetStore(ctx)
	prefix := append(PendingRoundKeyPrefix, []byte(fundID+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var out []*types.PendingRound
	for ; iterator.Valid(); iterator.Next() {
		var r types.PendingRound
		if err := json.Unmarshal(iterator.Value(), &r); err != nil {
			continue
		}
		out = append(out, &r)
	}
	return out
}

// ============ Pending claims ============

func pendingClaimKey(fundID, investor string, round int64) []byte {
	return append(PendingClaimKeyPrefix, []byte(fmt.Sprintf("%s:%s:%020d", fundID, investor, round))...)
}

// SetPendingClaim saves an investor's claim against a round.
func (k *Keeper) SetPendingClaim(ctx sdk.Context, fundID string, claim *types.PendingClaim) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(claim)
	store.Set(pendingClaimKey(fundID, claim.Investor, claim.Round), bz)
}

// GetPendingClaim retrieves one claim; nil if absent.
func (k *Keeper) GetPendingClaim(ctx sdk.Context, fundID, investor string, round int64) *types.PendingClaim {
	store := k.GetStore(ctx)
	bz := store.Get(pendingClaimKey(fundID, investor, round))
	if bz == nil {
		return nil
	}
	var c types.PendingClaim
	if err := json.Unmarshal(bz, &c); err != nil {
		return nil
	}
	return &c
}

// DeletePendingClaim destroys a claim after payout.
func (k *Keeper) DeletePendingClaim(ctx sdk.Context, fundID, investor string, round int64) {
	store := k.GetStore(ctx)
	store.Delete(pendingClaimKey(fundID, investor, round))
}

// GetInvestorClaims returns an investor's claims in round order.
func (k *Keeper) GetInvestorClaims(ctx sdk.Context, fundID, investor string) []*types.PendingClaim {
	store := k.GetStore(ctx)
	prefix := append(PendingClaimKeyPrefix, []byte(fundID+":"+investor+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var out []*types.PendingClaim
	for ; iterator.Valid(); iterator.Next() {
		var c types.PendingClaim
		if err := json.Unmarshal(iterator.Value(), &c); err != nil {
			continue
		}
		out = append(out, &c)
	}
	return out
}

// ============ Share price history ============

func sharePriceKey(fundID string, ts int64) []byte {
	return append(SharePriceKeyPrefix, []byte(fmt.Sprintf("%s:%020d", fundID, ts))...)
}

// AddSharePricePoint appends a share price observation.
func (k *Keeper) AddSharePricePoint(ctx sdk.Context, point *types.SharePricePoint) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(point)
	store.Set(sharePriceKey(point.FundID, point.Timestamp), bz)
}

// GetSharePriceHistory returns observations within [fromTime, toTime];
// zero bounds are open.
func (k *Keeper) GetSharePriceHistory(ctx sdk.Context, fundID string, fromTime, toTime int64) []*types.SharePricePoint {
	store := k.GetStore(ctx)
	prefix := append(SharePriceKeyPrefix, []byte(fundID+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var out []*types.SharePricePoint
	for ; iterator.Valid(); iterator.Next() {
		var p types.SharePricePoint
		if err := json.Unmarshal(iterator.Value(), &p); err != nil {
			continue
		}
		if (fromTime == 0 || p.Timestamp >= fromTime) && (toTime == 0 || p.Timestamp <= toTime) {
			out = append(out, &p)
		}
	}
	return out
}

// ============ Common guards ============

// requireState loads the fund and checks its state against the legal set.
func (k *Keeper) requireState(ctx sdk.Context, fundID string, legal ...types.FundState) (*types.Fund, error) {
	fund := k.GetFund(ctx, fundID)
	if fund == nil {
		return nil, types.ErrFundNotFound.Wrap(fundID)
	}
	for _, s := range legal {
		if fund.State == s {
			return fund, nil
		}
	}
	return nil, types.ErrInvalidState.Wrapf("fund %s is %s", fundID, fund.State)
}

// checkPolicyActive rejects operations while halted or banned.
func (k *Keeper) checkPolicyActive(ctx sdk.Context, fundID string) error {
	if k.policy.IsHalted(ctx) {
		return types.ErrPolicyViolation.Wrap("system halted")
	}
	if k.policy.IsBanned(ctx, fundID) {
		return types.ErrPolicyViolation.Wrapf("fund %s banned", fundID)
	}
	return nil
}
