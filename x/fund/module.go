package fund

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/openalpha/fundchain/x/fund/keeper"
	"github.com/openalpha/fundchain/x/fund/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for fund
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgCreateFund{}, "fund/MsgCreateFund", nil)
	cdc.RegisterConcrete(&types.MsgSetManagementFee{}, "fund/MsgSetManagementFee", nil)
	cdc.RegisterConcrete(&types.MsgSetPerformanceFee{}, "fund/MsgSetPerformanceFee", nil)
	cdc.RegisterConcrete(&types.MsgSetCrystallizationPeriod{}, "fund/MsgSetCrystallizationPeriod", nil)
	cdc.RegisterConcrete(&types.MsgFinalize{}, "fund/MsgFinalize", nil)
	cdc.RegisterConcrete(&types.MsgPurchase{}, "fund/MsgPurchase", nil)
	cdc.RegisterConcrete(&types.MsgRedeem{}, "fund/MsgRedeem", nil)
	cdc.RegisterConcrete(&types.MsgClaimPending{}, "fund/MsgClaimPending", nil)
	cdc.RegisterConcrete(&types.MsgExecute{}, "fund/MsgExecute", nil)
	cdc.RegisterConcrete(&types.MsgClaimManagementFee{}, "fund/MsgClaimManagementFee", nil)
	cdc.RegisterConcrete(&types.MsgCrystallize{}, "fund/MsgCrystallize", nil)
	cdc.RegisterConcrete(&types.MsgLiquidate{}, "fund/MsgLiquidate", nil)
	cdc.RegisterConcrete(&types.MsgClose{}, "fund/MsgClose", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgCreateFund{},
		&types.MsgSetManagementFee{},
		&types.MsgSetPerformanceFee{},
		&types.MsgSetCrystallizationPeriod{},
		&types.MsgFinalize{},
		&types.MsgPurchase{},
		&types.MsgRedeem{},
		&types.MsgClaimPending{},
		&types.MsgExecute{},
		&types.MsgClaimManagementFee{},
		&types.MsgCrystallize{},
		&types.MsgLiquidate{},
		&types.MsgClose{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
	// TODO: Register gRPC gateway routes when proto generation is set up
}

// AppModule implements an application module for the fund module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	_ = keeper.NewMsgServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}

// EndBlocker records per-fund share price history and monitoring gauges.
func (am AppModule) EndBlocker(ctx sdk.Context) error {
	return am.keeper.EndBlocker(ctx)
}
