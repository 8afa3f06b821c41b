package types

// FundConfig carries the one-time parameters fixed at initialization.
// Fee rates and the crystallization period may still be adjusted while the
// fund is under review; after finalize they are frozen, since changing them
// later would retroactively misstate accrued obligations.
type FundConfig struct {
	FundID                string `json:"fund_id"`
	Manager               string `json:"manager"`
	Denomination          string `json:"denomination"`
	Level                 uint32 `json:"level"`
	ManagementFeeBps      int64  `json:"management_fee_bps"`
	PerformanceFeeBps     int64  `json:"performance_fee_bps"`
	CrystallizationPeriod int64  `json:"crystallization_period"`
	ReserveExecutionBps   int64  `json:"reserve_execution_bps"`
}

// Validate checks the static configuration.
func (c *FundConfig) Validate() error {
	if c.FundID == "" {
		return ErrConfigInvalid.Wrap("empty fund id")
	}
	if c.Manager == "" {
		return ErrConfigInvalid.Wrap("empty manager address")
	}
	if c.Denomination == "" {
		return ErrConfigInvalid.Wrap("empty denomination")
	}
	if c.ManagementFeeBps < 0 || c.ManagementFeeBps >= PercentageBase {
		return ErrConfigInvalid.Wrap("management fee rate must be below 100%")
	}
	if c.PerformanceFeeBps < 0 || c.PerformanceFeeBps >= PercentageBase {
		return ErrConfigInvalid.Wrap("performance fee rate must be below 100%")
	}
	if c.CrystallizationPeriod < MinCrystallizationPeriod {
		return ErrConfigInvalid.Wrapf("crystallization period below %d seconds", MinCrystallizationPeriod)
	}
	if c.ReserveExecutionBps < 0 || c.ReserveExecutionBps >= PercentageBase {
		return ErrConfigInvalid.Wrap("reserve execution rate must be below 100%")
	}
	return nil
}
