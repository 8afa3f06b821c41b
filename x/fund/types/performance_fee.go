package types

import (
	"cosmossdk.io/math"
)

// PerformanceFeeState tracks a high-water-mark share price and an
// outstanding share buffer holding accrued-but-uncrystallized fees. The
// buffer dilutes the mark-to-market price other holders see, yet is clawed
// back if gains evaporate before the crystallization boundary.
type PerformanceFeeState struct {
	RateBps               int64          `json:"rate_bps"`
	CrystallizationPeriod int64          `json:"crystallization_period"`
	CrystallizationStart  int64          `json:"crystallization_start"`
	LastCrystallization   int64          `json:"last_crystallization"`

	// HighWaterMark and LastGrossSharePrice are gross share prices over net
	// (non-outstanding) shares. The high-water mark moves only at
	// crystallization and never decreases.
	HighWaterMark       math.LegacyDec `json:"high_water_mark"`
	LastGrossSharePrice math.LegacyDec `json:"last_gross_share_price"`

	// FeeSum is the accrued fee value in denomination units, floored at
	// zero; OutstandingShare is its current share-buffer representation.
	FeeSum           math.LegacyDec `json:"fee_sum"`
	OutstandingShare math.LegacyDec `json:"outstanding_share"`
}

// NewPerformanceFeeState returns a zero-rate state.
func NewPerformanceFeeState() PerformanceFeeState {
	return PerformanceFeeState{
		HighWaterMark:       math.LegacyOneDec(),
		LastGrossSharePrice: math.LegacyOneDec(),
		FeeSum:              math.LegacyZeroDec(),
		OutstandingShare:    math.LegacyZeroDec(),
	}
}

// SetRate sets the performance fee rate from basis points.
func (s *PerformanceFeeState) SetRate(bps int64) error {
	if bps < 0 || bps >= PercentageBase {
		return ErrConfigInvalid.Wrap("performance fee rate must be below 100%")
	}
	s.RateBps = bps
	return nil
}

// SetCrystallizationPeriod sets the period, floored at one hour.
func (s *PerformanceFeeState) SetCrystallizationPeriod(seconds int64) error {
	if seconds < MinCrystallizationPeriod {
		return ErrConfigInvalid.Wrapf("crystallization period below %d seconds", MinCrystallizationPeriod)
	}
	s.CrystallizationPeriod = seconds
	return nil
}

// Initialize pins the high-water mark at price 1.0 and starts the
// crystallization clock.
func (s *PerformanceFeeState) Initialize(now int64) {
	s.HighWaterMark = math.LegacyOneDec()
	s.LastGrossSharePrice = math.LegacyOneDec()
	s.FeeSum = math.LegacyZeroDec()
	s.OutstandingShare = math.LegacyZeroDec()
	s.CrystallizationStart = now
	s.LastCrystallization = now
}

// Update accrues performance fee against the current gross asset value.
// netShare is the share supply excluding the outstanding buffer. The wealth
// delta is clamped at the high-water mark on both ends, so a drawdown below
// the mark first unwinds uncrystallized fee (never below zero) and a
// recovery re-accrues it without double counting.
func (s *PerformanceFeeState) Update(gav, netShare math.LegacyDec) {
	if netShare.IsZero() {
		return
	}
	price := gav.QuoTruncate(netShare)
	if s.RateBps == 0 {
		s.LastGrossSharePrice = price
		return
	}
	wealth := math.LegacyMaxDec(price, s.HighWaterMark).
		Sub(math.LegacyMaxDec(s.LastGrossSharePrice, s.HighWaterMark)).
		MulTruncate(netShare)
	s.FeeSum = math.LegacyMaxDec(
		math.LegacyZeroDec(),
		s.FeeSum.Add(wealth.MulTruncate(BpsToDec(s.RateBps))),
	)
	denom := gav.Sub(s.FeeSum)
	if denom.IsPositive() {
		s.OutstandingShare = s.FeeSum.MulTruncate(netShare).QuoTruncate(denom)
	}
	s.LastGrossSharePrice = price
}

// NextCrystallizationTime returns the first period boundary after the last
// crystallization. The boundary itself counts as crystallizable, and a
// single late call catches up any number of missed periods.
func (s *PerformanceFeeState) NextCrystallizationTime() int64 {
	if s.CrystallizationPeriod == 0 {
		return 0
	}
	q := (s.LastCrystallization - s.CrystallizationStart) / s.CrystallizationPeriod
	return s.CrystallizationStart + (q+1)*s.CrystallizationPeriod
}

// IsCrystallizable reports whether now has reached the next boundary.
func (s *PerformanceFeeState) IsCrystallizable(now int64) bool {
	if s.CrystallizationPeriod == 0 {
		return false
	}
	return now >= s.NextCrystallizationTime()
}

// Crystallize converts the outstanding buffer into harvestable manager
// shares. Returns the harvested share amount; the caller must add it to the
// net supply and credit the manager before anything else touches prices.
// The high-water mark ratchets up to the post-harvest gross price.
func (s *PerformanceFeeState) Crystallize(gav, netShare math.LegacyDec, now int64) (math.LegacyDec, error) {
	if !s.IsCrystallizable(now) {
		return math.LegacyZeroDec(), ErrNotYetCrystallizable.Wrapf(
			"crystallizable at %d", s.NextCrystallizationTime())
	}
	s.Update(gav, netShare)
	harvest := s.OutstandingShare
	s.OutstandingShare = math.LegacyZeroDec()
	s.FeeSum = math.LegacyZeroDec()

	newNet := netShare.Add(harvest)
	if !newNet.IsZero() {
		price := gav.QuoTruncate(newNet)
		s.LastGrossSharePrice = price
		if price.GT(s.HighWaterMark) {
			s.HighWaterMark = price
		}
	}
	s.LastCrystallization = now
	return harvest, nil
}
