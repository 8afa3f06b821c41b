package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgPurchase            = "purchase"
	TypeMsgRedeem              = "redeem"
	TypeMsgClaimPending        = "claim_pending"
	TypeMsgExecute             = "execute"
	TypeMsgCrystallize         = "crystallize"
	TypeMsgClaimManagementFee  = "claim_management_fee"
	TypeMsgFinalize            = "finalize"
	TypeMsgLiquidate           = "liquidate"
	TypeMsgClose               = "close"
)

// MsgPurchase buys shares with denomination currency.
type MsgPurchase struct {
	Investor string `json:"investor"`
	FundID   string `json:"fund_id"`
	Amount   string `json:"amount"`
}

// Route implements sdk.Msg
func (msg MsgPurchase) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgPurchase) Type() string { return TypeMsgPurchase }

// ValidateBasic implements sdk.Msg
func (msg MsgPurchase) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Investor); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgPurchase) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Investor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgPurchase) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgPurchase) Reset() { *msg = MsgPurchase{} }

// String implements proto.Message
func (msg MsgPurchase) String() string {
	return fmt.Sprintf("MsgPurchase{Investor: %s, FundID: %s, Amount: %s}", msg.Investor, msg.FundID, msg.Amount)
}

// MsgPurchaseResponse is the Purchase response.
type MsgPurchaseResponse struct {
	Share      string `json:"share"`
	Bonus      string `json:"bonus"`
	SharePrice string `json:"share_price"`
	State      string `json:"state"`
}

// MsgRedeem burns shares for denomination currency, optionally accepting a
// pending settlement when the vault reserve is insufficient.
type MsgRedeem struct {
	Investor      string `json:"investor"`
	FundID        string `json:"fund_id"`
	Share         string `json:"share"`
	AcceptPending bool   `json:"accept_pending"`
}

// Route implements sdk.Msg
func (msg MsgRedeem) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgRedeem) Type() string { return TypeMsgRedeem }

// ValidateBasic implements sdk.Msg
func (msg MsgRedeem) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Investor); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgRedeem) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Investor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgRedeem) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgRedeem) Reset() { *msg = MsgRedeem{} }

// String implements proto.Message
func (msg MsgRedeem) String() string {
	return fmt.Sprintf("MsgRedeem{Investor: %s, FundID: %s, Share: %s}", msg.Investor, msg.FundID, msg.Share)
}

// MsgRedeemResponse is the Redeem response.
type MsgRedeemResponse struct {
	Paid         string `json:"paid"`
	PendingShare string `json:"pending_share"`
	PendingRound int64  `json:"pending_round"`
	State        string `json:"state"`
}

// MsgClaimPending pays out resolved pending-round claims.
type MsgClaimPending struct {
	Investor string `json:"investor"`
	FundID   string `json:"fund_id"`
}

// Route implements sdk.Msg
func (msg MsgClaimPending) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgClaimPending) Type() string { return TypeMsgClaimPending }

// ValidateBasic implements sdk.Msg
func (msg MsgClaimPending) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Investor); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgClaimPending) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Investor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgClaimPending) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgClaimPending) Reset() { *msg = MsgClaimPending{} }

// String implements proto.Message
func (msg MsgClaimPending) String() string {
	return fmt.Sprintf("MsgClaimPending{Investor: %s, FundID: %s}", msg.Investor, msg.FundID)
}

// MsgClaimPendingResponse is the ClaimPending response.
type MsgClaimPendingResponse struct {
	Paid string `json:"paid"`
}

// MsgExecute runs a whitelisted adapter operation on behalf of the fund.
// Delegated calls run under the delegate-call permission table instead of
// the handler table.
type MsgExecute struct {
	Manager   string `json:"manager"`
	FundID    string `json:"fund_id"`
	Target    string `json:"target"`
	Sig       string `json:"sig"`
	Data      []byte `json:"data"`
	Delegated bool   `json:"delegated,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgExecute) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgExecute) Type() string { return TypeMsgExecute }

// ValidateBasic implements sdk.Msg
func (msg MsgExecute) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	if msg.Target == "" {
		return ErrPolicyViolation.Wrap("empty execution target")
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgExecute) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgExecute) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgExecute) Reset() { *msg = MsgExecute{} }

// String implements proto.Message
func (msg MsgExecute) String() string {
	return fmt.Sprintf("MsgExecute{Manager: %s, FundID: %s, Target: %s}", msg.Manager, msg.FundID, msg.Target)
}

// MsgExecuteResponse is the Execute response.
type MsgExecuteResponse struct {
	ValueBefore string `json:"value_before"`
	ValueAfter  string `json:"value_after"`
	Result      []byte `json:"result"`
}

// MsgCrystallize converts the outstanding performance-fee buffer into
// manager shares at a period boundary.
type MsgCrystallize struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
}

// Route implements sdk.Msg
func (msg MsgCrystallize) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgCrystallize) Type() string { return TypeMsgCrystallize }

// ValidateBasic implements sdk.Msg
func (msg MsgCrystallize) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgCrystallize) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgCrystallize) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgCrystallize) Reset() { *msg = MsgCrystallize{} }

// String implements proto.Message
func (msg MsgCrystallize) String() string {
	return fmt.Sprintf("MsgCrystallize{Manager: %s, FundID: %s}", msg.Manager, msg.FundID)
}

// MsgCrystallizeResponse is the Crystallize response.
type MsgCrystallizeResponse struct {
	HarvestedShare string `json:"harvested_share"`
	HighWaterMark  string `json:"high_water_mark"`
}
