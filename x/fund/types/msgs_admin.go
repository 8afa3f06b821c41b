package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Admin message types
const (
	TypeMsgCreateFund                 = "create_fund"
	TypeMsgSetManagementFee           = "set_management_fee"
	TypeMsgSetPerformanceFee          = "set_performance_fee"
	TypeMsgSetCrystallizationPeriod   = "set_crystallization_period"
)

// MsgCreateFund initializes a new fund and moves it to review.
type MsgCreateFund struct {
	Manager               string `json:"manager"`
	FundID                string `json:"fund_id"`
	Denomination          string `json:"denomination"`
	Level                 uint32 `json:"level"`
	ManagementFeeBps      int64  `json:"management_fee_bps"`
	PerformanceFeeBps     int64  `json:"performance_fee_bps"`
	CrystallizationPeriod int64  `json:"crystallization_period"`
	ReserveExecutionBps   int64  `json:"reserve_execution_bps"`
}

// Route implements sdk.Msg
func (msg MsgCreateFund) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgCreateFund) Type() string { return TypeMsgCreateFund }

// ValidateBasic implements sdk.Msg
func (msg MsgCreateFund) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	cfg := FundConfig{
		FundID:                msg.FundID,
		Manager:               msg.Manager,
		Denomination:          msg.Denomination,
		Level:                 msg.Level,
		ManagementFeeBps:      msg.ManagementFeeBps,
		PerformanceFeeBps:     msg.PerformanceFeeBps,
		CrystallizationPeriod: msg.CrystallizationPeriod,
		ReserveExecutionBps:   msg.ReserveExecutionBps,
	}
	return cfg.Validate()
}

// GetSigners implements sdk.Msg
func (msg MsgCreateFund) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgCreateFund) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgCreateFund) Reset() { *msg = MsgCreateFund{} }

// String implements proto.Message
func (msg MsgCreateFund) String() string {
	return fmt.Sprintf("MsgCreateFund{Manager: %s, FundID: %s, Denomination: %s}", msg.Manager, msg.FundID, msg.Denomination)
}

// MsgCreateFundResponse is the CreateFund response.
type MsgCreateFundResponse struct {
	State string `json:"state"`
}

// MsgSetManagementFee updates the management fee rate of a fund in review.
type MsgSetManagementFee struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
	RateBps int64  `json:"rate_bps"`
}

// Route implements sdk.Msg
func (msg MsgSetManagementFee) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetManagementFee) Type() string { return TypeMsgSetManagementFee }

// ValidateBasic implements sdk.Msg
func (msg MsgSetManagementFee) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	if msg.RateBps < 0 || msg.RateBps >= PercentageBase {
		return ErrConfigInvalid.Wrapf("management fee rate %d out of range", msg.RateBps)
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetManagementFee) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetManagementFee) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetManagementFee) Reset() { *msg = MsgSetManagementFee{} }

// String implements proto.Message
func (msg MsgSetManagementFee) String() string {
	return fmt.Sprintf("MsgSetManagementFee{FundID: %s, RateBps: %d}", msg.FundID, msg.RateBps)
}

// MsgSetManagementFeeResponse is the SetManagementFee response.
type MsgSetManagementFeeResponse struct{}

// MsgSetPerformanceFee updates the performance fee rate of a fund in review.
type MsgSetPerformanceFee struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
	RateBps int64  `json:"rate_bps"`
}

// Route implements sdk.Msg
func (msg MsgSetPerformanceFee) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetPerformanceFee) Type() string { return TypeMsgSetPerformanceFee }

// ValidateBasic implements sdk.Msg
func (msg MsgSetPerformanceFee) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	if msg.RateBps < 0 || msg.RateBps >= PercentageBase {
		return ErrConfigInvalid.Wrapf("performance fee rate %d out of range", msg.RateBps)
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetPerformanceFee) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetPerformanceFee) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetPerformanceFee) Reset() { *msg = MsgSetPerformanceFee{} }

// String implements proto.Message
func (msg MsgSetPerformanceFee) String() string {
	return fmt.Sprintf("MsgSetPerformanceFee{FundID: %s, RateBps: %d}", msg.FundID, msg.RateBps)
}

// MsgSetPerformanceFeeResponse is the SetPerformanceFee response.
type MsgSetPerformanceFeeResponse struct{}

// MsgSetCrystallizationPeriod updates the crystallization period of a fund
// in review.
type MsgSetCrystallizationPeriod struct {
	Manager string `json:"manager"`
	FundID  string `json:"fund_id"`
	Seconds int64  `json:"seconds"`
}

// Route implements sdk.Msg
func (msg MsgSetCrystallizationPeriod) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetCrystallizationPeriod) Type() string { return TypeMsgSetCrystallizationPeriod }

// ValidateBasic implements sdk.Msg
func (msg MsgSetCrystallizationPeriod) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Manager); err != nil {
		return err
	}
	if msg.FundID == "" {
		return ErrFundNotFound
	}
	if msg.Seconds < MinCrystallizationPeriod {
		return ErrConfigInvalid.Wrapf("crystallization period %d below minimum", msg.Seconds)
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetCrystallizationPeriod) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Manager)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetCrystallizationPeriod) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetCrystallizationPeriod) Reset() { *msg = MsgSetCrystallizationPeriod{} }

// String implements proto.Message
func (msg MsgSetCrystallizationPeriod) String() string {
	return fmt.Sprintf("MsgSetCrystallizationPeriod{FundID: %s, Seconds: %d}", msg.FundID, msg.Seconds)
}

// MsgSetCrystallizationPeriodResponse is the SetCrystallizationPeriod response.
type MsgSetCrystallizationPeriodResponse struct{}
