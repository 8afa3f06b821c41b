package types

import (
	"testing"

	"cosmossdk.io/math"
)

// TestManagementFeeOneYear tests that a 2% rate dilutes existing holders by
// 2% of post-dilution supply over exactly one year
func TestManagementFeeOneYear(t *testing.T) {
	var s ManagementFeeState
	if err := s.SetRate(200); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	s.Initialize(0)

	total := dec("10000")
	minted := s.Accrue(OneYear, total)

	// expected factor 10000/9800, minted = 10000 * (factor - 1) = 204.081...
	expected := total.Mul(dec("10000").Quo(dec("9800")).Sub(math.LegacyOneDec()))
	diff := minted.Sub(expected).Abs()
	// the per-second root-then-power round trip loses a little precision;
	// anything beyond 0.1% of the expected fee is a real bug
	if diff.GT(expected.Mul(dec("0.001"))) {
		t.Errorf("one-year accrual off: expected ~%s, got %s", expected, minted)
	}

	// post-dilution check: minted / (total + minted) ~ 2%
	ratio := minted.Quo(total.Add(minted))
	if ratio.Sub(dec("0.02")).Abs().GT(dec("0.0001")) {
		t.Errorf("post-dilution ratio should be ~2%%, got %s", ratio)
	}
}

// TestManagementFeeIdempotent tests that accrual without elapsed time mints nothing
func TestManagementFeeIdempotent(t *testing.T) {
	var s ManagementFeeState
	if err := s.SetRate(200); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	s.Initialize(1000)

	first := s.Accrue(2000, dec("10000"))
	if !first.IsPositive() {
		t.Fatal("expected positive accrual after elapsed time")
	}

	// same timestamp again mints nothing
	second := s.Accrue(2000, dec("10000"))
	if !second.IsZero() {
		t.Errorf("expected zero on repeat accrual, got %s", second)
	}

	// time going backwards also mints nothing
	if got := s.Accrue(1500, dec("10000")); !got.IsZero() {
		t.Errorf("expected zero for past timestamp, got %s", got)
	}
}

// TestManagementFeeSplitAccrual tests that two half-year accruals compound to
// the same total as a single full-year accrual
func TestManagementFeeSplitAccrual(t *testing.T) {
	var whole, split ManagementFeeState
	if err := whole.SetRate(100); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if err := split.SetRate(100); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	whole.Initialize(0)
	split.Initialize(0)

	total := dec("50000")
	mintedWhole := whole.Accrue(OneYear, total)

	half := OneYear / 2
	m1 := split.Accrue(half, total)
	m2 := split.Accrue(OneYear, total.Add(m1))
	mintedSplit := m1.Add(m2)

	diff := mintedWhole.Sub(mintedSplit).Abs()
	if diff.GT(mintedWhole.Mul(dec("0.001"))) {
		t.Errorf("split accrual drifted: whole %s vs split %s", mintedWhole, mintedSplit)
	}
}

// TestManagementFeeZeroRate tests the disabled fee path
func TestManagementFeeZeroRate(t *testing.T) {
	var s ManagementFeeState
	if err := s.SetRate(0); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	s.Initialize(0)

	if got := s.Accrue(OneYear, dec("10000")); !got.IsZero() {
		t.Errorf("zero rate must mint nothing, got %s", got)
	}
	if !s.GrowthFactor(OneYear).Equal(math.LegacyOneDec()) {
		t.Error("zero rate growth factor must stay 1")
	}
}

// TestManagementFeeRateBounds tests rate validation
func TestManagementFeeRateBounds(t *testing.T) {
	var s ManagementFeeState
	if err := s.SetRate(-1); err == nil {
		t.Error("negative rate must fail")
	}
	if err := s.SetRate(10000); err == nil {
		t.Error("100% rate must fail")
	}
	if err := s.SetRate(9999); err != nil {
		t.Errorf("99.99%% rate should be accepted: %v", err)
	}
}

// TestManagementFeeExtremeRate tests that rates whose annual factor is far
// from 1 still root cleanly and compound back to the right factor
func TestManagementFeeExtremeRate(t *testing.T) {
	var s ManagementFeeState
	if err := s.SetRate(9990); err != nil {
		t.Fatalf("99.9%% rate should be accepted: %v", err)
	}
	if !s.RatePerSecond.GT(math.LegacyOneDec()) {
		t.Fatalf("per-second factor must exceed 1, got %s", s.RatePerSecond)
	}

	// annual factor 10000/10 = 1000; the per-second root raised back over a
	// year must land close to it
	growth := s.GrowthFactor(OneYear)
	if growth.Sub(dec("1000")).Abs().GT(dec("0.5")) {
		t.Errorf("one-year growth should be ~1000, got %s", growth)
	}
}
