package types

import (
	"cosmossdk.io/math"
)

// ManagementFeeState accrues a continuously-compounding management fee by
// diluting share supply. The basis-point rate is stored alongside the
// derived per-second growth factor so elapsed-time accrual is a single
// power computation.
type ManagementFeeState struct {
	RateBps       int64          `json:"rate_bps"`
	RatePerSecond math.LegacyDec `json:"rate_per_second"`
	LastClaimTime int64          `json:"last_claim_time"`
}

// NewManagementFeeState returns a zero-rate state.
func NewManagementFeeState() ManagementFeeState {
	return ManagementFeeState{
		RateBps:       0,
		RatePerSecond: math.LegacyOneDec(),
		LastClaimTime: 0,
	}
}

// SetRate sets the annualized rate from basis points. The effective annual
// growth factor is base/(base-rate), so a 2% nominal rate dilutes existing
// holders by exactly 2% of post-dilution supply per year; the stored
// per-second factor is its OneYear-th root.
func (s *ManagementFeeState) SetRate(bps int64) error {
	if bps < 0 || bps >= PercentageBase {
		return ErrConfigInvalid.Wrap("management fee rate must be below 100%")
	}
	if bps == 0 {
		s.RateBps = 0
		s.RatePerSecond = math.LegacyOneDec()
		return nil
	}
	annual := math.LegacyNewDec(PercentageBase).Quo(math.LegacyNewDec(PercentageBase - bps))
	perSecond, err := yearlyRoot(annual)
	if err != nil {
		return ErrConfigInvalid.Wrapf("management fee rate: %v", err)
	}
	s.RateBps = bps
	s.RatePerSecond = perSecond
	return nil
}

// yearlyRoot computes d^(1/OneYear) as a chain of smaller roots over the
// prime factorization of OneYear (31557600 = 2^5 * 3^4 * 5^2 * 487).
// A direct ApproxRoot overflows for large d: its Newton iteration raises
// an early guess near 1+(d-1)/n to the n-1 power, which blows past the
// decimal range once d-1 exceeds a few hundred. Taking the small roots
// first pulls the value toward 1 before the large root runs.
func yearlyRoot(d math.LegacyDec) (math.LegacyDec, error) {
	for _, n := range []uint64{2, 2, 2, 2, 2, 3, 3, 3, 3, 5, 5, 487} {
		root, err := d.ApproxRoot(n)
		if err != nil {
			return math.LegacyDec{}, err
		}
		d = root
	}
	return d, nil
}

// Initialize starts the accrual clock.
func (s *ManagementFeeState) Initialize(now int64) {
	s.LastClaimTime = now
}

// GrowthFactor returns the supply growth factor over elapsed seconds.
func (s *ManagementFeeState) GrowthFactor(elapsed int64) math.LegacyDec {
	if elapsed <= 0 || s.RateBps == 0 {
		return math.LegacyOneDec()
	}
	return s.RatePerSecond.Power(uint64(elapsed))
}

// Accrue advances the clock to now and returns the share amount due to the
// manager: totalShare x (growthFactor(elapsed) - 1). Idempotent when no time
// has elapsed or the rate is zero.
func (s *ManagementFeeState) Accrue(now int64, totalShare math.LegacyDec) math.LegacyDec {
	elapsed := now - s.LastClaimTime
	if elapsed <= 0 {
		return math.LegacyZeroDec()
	}
	s.LastClaimTime = now
	if s.RateBps == 0 || totalShare.IsZero() {
		return math.LegacyZeroDec()
	}
	growth := s.GrowthFactor(elapsed)
	return totalShare.MulTruncate(growth.Sub(math.LegacyOneDec()))
}
