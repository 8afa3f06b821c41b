package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundchain/x/policy/types"
)

// Store key prefixes
var (
	ParamsKey               = []byte{0x01}
	AssetPermissionPrefix   = []byte{0x02}
	HandlerPermissionPrefix = []byte{0x03}
	DelegatePermissionPrefix = []byte{0x04}
	DenominationPrefix      = []byte{0x05}
	HaltKey                 = []byte{0x06}
	BanPrefix               = []byte{0x07}
)

// Keeper manages the comptroller state: permission tables, denominations,
// economic parameters and the halt/ban switches. Every mutation is gated on
// the governance authority.
type Keeper struct {
	cdc       codec.BinaryCodec
	storeKey  storetypes.StoreKey
	logger    log.Logger
	authority string
}

// NewKeeper creates a new policy keeper.
func NewKeeper(cdc codec.BinaryCodec, storeKey storetypes.StoreKey, authority string, logger log.Logger) *Keeper {
	return &Keeper{
		cdc:       cdc,
		storeKey:  storeKey,
		authority: authority,
		logger:    logger.With("module", "x/policy"),
	}
}

// GetAuthority returns the governance authority address.
func (k *Keeper) GetAuthority() string {
	return k.authority
}

func (k *Keeper) store(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func (k *Keeper) requireAuthority(sender string) error {
	if sender != k.authority {
		return types.ErrUnauthorized.Wrapf("sender %s is not the authority", sender)
	}
	return nil
}

// ============ Params ============

// GetParams returns the current parameters, falling back to defaults.
func (k *Keeper) GetParams(ctx sdk.Context) types.Params {
	bz := k.store(ctx).Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}
	var p types.Params
	if err := json.Unmarshal(bz, &p); err != nil {
		return types.DefaultParams()
	}
	return p
}

// SetParams validates and stores new parameters.
func (k *Keeper) SetParams(ctx sdk.Context, sender string, p types.Params) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	bz, _ := json.Marshal(p)
	k.store(ctx).Set(ParamsKey, bz)
	k.logger.Info("policy params updated", "params", p)
	return nil
}

// PendingPenaltyRate returns the pending redemption penalty in bps.
func (k *Keeper) PendingPenaltyRate(ctx sdk.Context) int64 {
	return k.GetParams(ctx).PendingPenaltyRate
}

// ExecutionFeeRate returns the execution fee in bps.
func (k *Keeper) ExecutionFeeRate(ctx sdk.Context) int64 {
	return k.GetParams(ctx).ExecutionFeeRate
}

// ValueTolerance returns the minimum post-execution value retention in bps.
func (k *Keeper) ValueTolerance(ctx sdk.Context) int64 {
	return k.GetParams(ctx).ValueTolerance
}

// AssetCapacity returns the maximum tracked asset count per fund.
func (k *Keeper) AssetCapacity(ctx sdk.Context) int {
	return k.GetParams(ctx).AssetCapacity
}

// PendingExpiration returns the seconds a pending round may stay unresolved
// before the fund becomes liquidatable.
func (k *Keeper) PendingExpiration(ctx sdk.Context) int64 {
	return k.GetParams(ctx).PendingExpiration
}

// ============ Permission tables ============

func levelKey(prefix []byte, level uint32, rest string) []byte {
	return append(prefix, []byte(fmt.Sprintf("%d:%s", level, rest))...)
}

// PermitAsset whitelists an asset for funds at the given level.
func (k *Keeper) PermitAsset(ctx sdk.Context, sender string, level uint32, asset string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Set(levelKey(AssetPermissionPrefix, level, asset), []byte{1})
	return nil
}

// ForbidAsset removes an asset from the level whitelist.
func (k *Keeper) ForbidAsset(ctx sdk.Context, sender string, level uint32, asset string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Delete(levelKey(AssetPermissionPrefix, level, asset))
	return nil
}

// IsAssetPermitted reports whether a level may hold an asset.
func (k *Keeper) IsAssetPermitted(ctx sdk.Context, level uint32, asset string) bool {
	return k.store(ctx).Has(levelKey(AssetPermissionPrefix, level, asset))
}

// PermitHandler whitelists an adapter target/signature for a level.
func (k *Keeper) PermitHandler(ctx sdk.Context, sender string, level uint32, target, sig string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Set(levelKey(HandlerPermissionPrefix, level, target+":"+sig), []byte{1})
	return nil
}

// ForbidHandler removes an adapter target/signature from the whitelist.
func (k *Keeper) ForbidHandler(ctx sdk.Context, sender string, level uint32, target, sig string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Delete(levelKey(HandlerPermissionPrefix, level, target+":"+sig))
	return nil
}

// IsHandlerPermitted reports whether a level may call a handler.
func (k *Keeper) IsHandlerPermitted(ctx sdk.Context, level uint32, target, sig string) bool {
	return k.store(ctx).Has(levelKey(HandlerPermissionPrefix, level, target+":"+sig))
}

// PermitDelegateCall whitelists a delegated call for a level.
func (k *Keeper) PermitDelegateCall(ctx sdk.Context, sender string, level uint32, target, sig string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Set(levelKey(DelegatePermissionPrefix, level, target+":"+sig), []byte{1})
	return nil
}

// ForbidDelegateCall removes a delegated call from the whitelist.
func (k *Keeper) ForbidDelegateCall(ctx sdk.Context, sender string, level uint32, target, sig string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Delete(levelKey(DelegatePermissionPrefix, level, target+":"+sig))
	return nil
}

// IsDelegateCallPermitted reports whether a level may delegate to target.
func (k *Keeper) IsDelegateCallPermitted(ctx sdk.Context, level uint32, target, sig string) bool {
	return k.store(ctx).Has(levelKey(DelegatePermissionPrefix, level, target+":"+sig))
}

// ============ Denominations ============

// PermitDenomination registers a denomination with its dust threshold.
func (k *Keeper) PermitDenomination(ctx sdk.Context, sender, denom string, dust math.LegacyDec) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	if dust.IsNegative() {
		return types.ErrInvalidParams.Wrapf("negative dust threshold for %s", denom)
	}
	cfg := types.DenominationConfig{Denom: denom, DustThreshold: dust}
	bz, _ := json.Marshal(cfg)
	k.store(ctx).Set(append(DenominationPrefix, []byte(denom)...), bz)
	return nil
}

// ForbidDenomination removes a denomination. Existing finalized funds keep
// operating; only new finalizations are blocked.
func (k *Keeper) ForbidDenomination(ctx sdk.Context, sender, denom string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Delete(append(DenominationPrefix, []byte(denom)...))
	return nil
}

// IsDenominationPermitted reports whether new funds may use a denomination.
func (k *Keeper) IsDenominationPermitted(ctx sdk.Context, denom string) bool {
	return k.store(ctx).Has(append(DenominationPrefix, []byte(denom)...))
}

// DustThreshold returns the dust threshold configured for a denomination, or
// zero when unknown.
func (k *Keeper) DustThreshold(ctx sdk.Context, denom string) math.LegacyDec {
	bz := k.store(ctx).Get(append(DenominationPrefix, []byte(denom)...))
	if bz == nil {
		return math.LegacyZeroDec()
	}
	var cfg types.DenominationConfig
	if err := json.Unmarshal(bz, &cfg); err != nil {
		return math.LegacyZeroDec()
	}
	return cfg.DustThreshold
}

// ============ Halt and ban ============

// Halt stops every fund operation system-wide.
func (k *Keeper) Halt(ctx sdk.Context, sender string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Set(HaltKey, []byte{1})
	k.logger.Info("system halted")
	return nil
}

// Resume lifts a system halt.
func (k *Keeper) Resume(ctx sdk.Context, sender string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Delete(HaltKey)
	k.logger.Info("system resumed")
	return nil
}

// IsHalted reports the system halt switch.
func (k *Keeper) IsHalted(ctx sdk.Context) bool {
	return k.store(ctx).Has(HaltKey)
}

// Ban blocks a single fund from all operations.
func (k *Keeper) Ban(ctx sdk.Context, sender, fundID string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Set(append(BanPrefix, []byte(fundID)...), []byte{1})
	k.logger.Info("fund banned", "fund", fundID)
	return nil
}

// Unban lifts a fund ban.
func (k *Keeper) Unban(ctx sdk.Context, sender, fundID string) error {
	if err := k.requireAuthority(sender); err != nil {
		return err
	}
	k.store(ctx).Delete(append(BanPrefix, []byte(fundID)...))
	k.logger.Info("fund unbanned", "fund", fundID)
	return nil
}

// IsBanned reports whether a fund is banned.
func (k *Keeper) IsBanned(ctx sdk.Context, fundID string) bool {
	return k.store(ctx).Has(append(BanPrefix, []byte(fundID)...))
}
