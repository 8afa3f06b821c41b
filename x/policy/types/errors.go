package types

import (
	"cosmossdk.io/errors"
)

// Policy module errors
var (
	ErrInvalidParams = errors.Register(ModuleName, 1, "invalid policy parameters")
	ErrUnauthorized  = errors.Register(ModuleName, 2, "unauthorized")
	ErrNotFound      = errors.Register(ModuleName, 3, "entry not found")
)
