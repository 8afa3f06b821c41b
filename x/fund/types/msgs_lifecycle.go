package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgClaimManagementFee settles accrued management fee to the manager.
type MsgClaimManagementFee struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
}

// Route implements sdk.Msg
func (msg MsgClaimManagementFee) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgClaimManagementFee) Type() string { return TypeMsgClaimManagementFee }

// ValidateBasic implements sdk.Msg
func (msg MsgClaimManagementFee) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgClaimManagementFee) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgClaimManagementFee) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgClaimManagementFee) Reset() { *msg = MsgClaimManagementFee{} }

// String implements proto.Message
func (msg MsgClaimManagementFee) String() string {
	return fmt.Sprintf("MsgClaimManagementFee{Manager: %s, FundID: %s}", msg.Manager, msg.FundID)
}

// MsgClaimManagementFeeResponse is the ClaimManagementFee response.
type MsgClaimManagementFeeResponse struct {
	FeeShare string `json:"fee_share"`
}

// MsgFinalize moves a reviewed fund into execution.
type MsgFinalize struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
}

// Route implements sdk.Msg
func (msg MsgFinalize) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgFinalize) Type() string { return TypeMsgFinalize }

// ValidateBasic implements sdk.Msg
func (msg MsgFinalize) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgFinalize) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgFinalize) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgFinalize) Reset() { *msg = MsgFinalize{} }

// String implements proto.Message
func (msg MsgFinalize) String() string {
	return fmt.Sprintf("MsgFinalize{Manager: %s, FundID: %s}", msg.Manager, msg.FundID)
}

// MsgFinalizeResponse is the Finalize response.
type MsgFinalizeResponse struct {
	State string `json:"state"`
}

// MsgLiquidate hands an expired pending fund to a liquidator.
type MsgLiquidate struct {
	Authority  string `json:"authority"`
	FundID     string `json:"fund_id"`
	Liquidator string `json:"liquidator"`
}

// Route implements sdk.Msg
func (msg MsgLiquidate) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgLiquidate) Type() string { return TypeMsgLiquidate }

// ValidateBasic implements sdk.Msg
func (msg MsgLiquidate) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Liquidator); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgLiquidate) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgLiquidate) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgLiquidate) Reset() { *msg = MsgLiquidate{} }

// String implements proto.Message
func (msg MsgLiquidate) String() string {
	return fmt.Sprintf("MsgLiquidate{FundID: %s, Liquidator: %s}", msg.FundID, msg.Liquidator)
}

// MsgLiquidateResponse is the Liquidate response.
type MsgLiquidateResponse struct {
	State string `json:"state"`
}

// MsgClose terminates a drained fund.
type MsgClose struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
}

// Route implements sdk.Msg
func (msg MsgClose) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgClose) Type() string { return TypeMsgClose }

// ValidateBasic implements sdk.Msg
func (msg MsgClose) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgClose) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgClose) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgClose) Reset() { *msg = MsgClose{} }

// String implements proto.Message
func (msg MsgClose) String() string {
	return fmt.Sprintf("MsgClose{Manager: %s, FundID: %s}", msg.Manager, msg.FundID)
}

// MsgCloseResponse is the Close response.
type MsgCloseResponse struct {
	State string `json:"state"`
}
