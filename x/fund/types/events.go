package types

// Event types emitted by the fund module.
const (
	EventTypeFundCreated      = "fund_created"
	EventTypeFundReviewed     = "fund_reviewed"
	EventTypeFundFinalized    = "fund_finalized"
	EventTypeFundLiquidating  = "fund_liquidating"
	EventTypeFundClosed       = "fund_closed"
	EventTypePurchased        = "purchased"
	EventTypeRedeemed         = "redeemed"
	EventTypeRedemptionQueued = "redemption_queued"
	EventTypePendingResolved  = "pending_resolved"
	EventTypePendingClaimed   = "pending_claimed"
	EventTypeExecuted         = "executed"
	EventTypeExecutionFee     = "execution_fee_charged"
	EventTypeAssetAdded       = "asset_added"
	EventTypeAssetRemoved     = "asset_removed"
	EventTypeManagementFee    = "management_fee_claimed"
	EventTypeCrystallized     = "performance_fee_crystallized"
)

// Event attribute keys.
const (
	AttributeKeyFundID      = "fund_id"
	AttributeKeyInvestor    = "investor"
	AttributeKeyManager     = "manager"
	AttributeKeyAsset       = "asset"
	AttributeKeyAmount      = "amount"
	AttributeKeyShare       = "share"
	AttributeKeyBonus       = "bonus"
	AttributeKeyPenalty     = "penalty"
	AttributeKeyRound       = "round"
	AttributeKeyState       = "state"
	AttributeKeyGAV         = "gross_asset_value"
	AttributeKeySharePrice  = "share_price"
	AttributeKeyTarget      = "target"
	AttributeKeyHarvest     = "harvest"
	AttributeKeyGrossProfit = "gross_profit"
)
