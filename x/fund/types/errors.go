package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrFundNotFound         = errors.Register("fund", 1, "fund not found")
	ErrInvalidState         = errors.Register("fund", 2, "operation not allowed in current fund state")
	ErrPolicyViolation      = errors.Register("fund", 3, "rejected by policy")
	ErrZeroShare            = errors.Register("fund", 4, "purchase would mint zero share")
	ErrInsufficientShare    = errors.Register("fund", 5, "insufficient share balance")
	ErrToleranceExceeded    = errors.Register("fund", 6, "execution value loss beyond tolerance")
	ErrInsufficientReserve  = errors.Register("fund", 7, "execution would break reserve requirement")
	ErrStaleOracle          = errors.Register("fund", 8, "oracle price too old")
	ErrNotClaimable         = errors.Register("fund", 9, "no resolved pending claim")
	ErrPendingNotAccepted   = errors.Register("fund", 10, "redemption requires accepting pending settlement")
	ErrNotYetCrystallizable = errors.Register("fund", 11, "crystallization period not reached")
	ErrCapacityExceeded     = errors.Register("fund", 12, "asset list at capacity")
	ErrConfigInvalid        = errors.Register("fund", 13, "invalid fund configuration")
	ErrUnauthorized         = errors.Register("fund", 14, "unauthorized")
	ErrReentrantCall        = errors.Register("fund", 15, "reentrant call")
	ErrInvalidAmount        = errors.Register("fund", 16, "invalid amount")
)
