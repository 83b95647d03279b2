package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-loudnorm/internal/testutil"
)

func TestCalculateSine(t *testing.T) {
	sig := testutil.DeterministicSine(1000.0, 48000.0, 1.0, 48000)

	s := Calculate(sig)

	if s.Length != len(sig) {
		t.Fatalf("Length = %d, want %d", s.Length, len(sig))
	}

	// Unit sine: RMS 1/sqrt(2), crest factor sqrt(2), zero mean.
	if math.Abs(s.RMS-1/math.Sqrt2) > 1e-3 {
		t.Errorf("RMS = %f, want %f", s.RMS, 1/math.Sqrt2)
	}

	if math.Abs(s.CrestFactor-math.Sqrt2) > 1e-2 {
		t.Errorf("CrestFactor = %f, want %f", s.CrestFactor, math.Sqrt2)
	}

	if math.Abs(s.CrestFactor_dB-3.01) > 0.1 {
		t.Errorf("CrestFactor_dB = %f, want ~3.01", s.CrestFactor_dB)
	}

	if math.Abs(s.DC) > 1e-6 {
		t.Errorf("DC = %g, want ~0", s.DC)
	}

	if math.Abs(s.Variance-0.5) > 1e-3 {
		t.Errorf("Variance = %f, want 0.5", s.Variance)
	}

	if math.Abs(s.Skewness) > 1e-3 {
		t.Errorf("Skewness = %f, want ~0", s.Skewness)
	}

	// A sine has excess kurtosis -1.5.
	if math.Abs(s.Kurtosis+1.5) > 1e-2 {
		t.Errorf("Kurtosis = %f, want -1.5", s.Kurtosis)
	}

	// 1 kHz over one second crosses zero about 2000 times.
	if s.ZeroCrossings < 1990 || s.ZeroCrossings > 2010 {
		t.Errorf("ZeroCrossings = %d, want ~2000", s.ZeroCrossings)
	}
}

func TestCalculateKnownValues(t *testing.T) {
	sig := []float64{1, -1, 1, -1}

	s := Calculate(sig)

	if s.RMS != 1 || s.Peak != 1 || s.CrestFactor != 1 {
		t.Errorf("RMS/Peak/Crest = %f/%f/%f, want 1/1/1", s.RMS, s.Peak, s.CrestFactor)
	}

	if s.Max != 1 || s.MaxPos != 0 || s.Min != -1 || s.MinPos != 1 {
		t.Errorf("extrema: max %f@%d min %f@%d", s.Max, s.MaxPos, s.Min, s.MinPos)
	}

	if s.Range != 2 {
		t.Errorf("Range = %f, want 2", s.Range)
	}

	if s.ZeroCrossings != 3 {
		t.Errorf("ZeroCrossings = %d, want 3", s.ZeroCrossings)
	}

	if s.Energy != 4 || s.Power != 1 {
		t.Errorf("Energy/Power = %f/%f, want 4/1", s.Energy, s.Power)
	}
}

func TestCalculateDCOffset(t *testing.T) {
	sig := make([]float64, 1000)
	for i := range sig {
		sig[i] = 0.25
	}

	s := Calculate(sig)

	if math.Abs(s.DC-0.25) > 1e-12 {
		t.Errorf("DC = %f, want 0.25", s.DC)
	}

	if math.Abs(s.DC_dB+12.04) > 0.01 {
		t.Errorf("DC_dB = %f, want ~-12.04", s.DC_dB)
	}

	if s.ZeroCrossings != 0 {
		t.Errorf("ZeroCrossings = %d, want 0", s.ZeroCrossings)
	}

	if s.Variance != 0 {
		t.Errorf("Variance = %g, want 0", s.Variance)
	}
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)

	if s.Length != 0 {
		t.Fatalf("Length = %d, want 0", s.Length)
	}

	if !math.IsInf(s.RMS_dB, -1) || !math.IsInf(s.Peak_dB, -1) {
		t.Errorf("dB fields should be -Inf for empty input: %+v", s)
	}
}

func TestHelpersMatchCalculate(t *testing.T) {
	sig := testutil.DeterministicNoise(4096, 7)

	s := Calculate(sig)

	if got := RMS(sig); math.Abs(got-s.RMS) > 1e-12 {
		t.Errorf("RMS = %f, Calculate says %f", got, s.RMS)
	}

	if got := Peak(sig); got != s.Peak {
		t.Errorf("Peak = %f, Calculate says %f", got, s.Peak)
	}

	if got := CrestFactor(sig); math.Abs(got-s.CrestFactor) > 1e-12 {
		t.Errorf("CrestFactor = %f, Calculate says %f", got, s.CrestFactor)
	}

	if got := ZeroCrossings(sig); got != s.ZeroCrossings {
		t.Errorf("ZeroCrossings = %d, Calculate says %d", got, s.ZeroCrossings)
	}

	if got := DC(sig); math.Abs(got-s.DC) > 1e-9 {
		t.Errorf("DC = %g, Calculate says %g", got, s.DC)
	}
}

func TestSilenceCrestFactor(t *testing.T) {
	sig := make([]float64, 64)

	if got := CrestFactor(sig); got != 0 {
		t.Errorf("CrestFactor of silence = %f, want 0", got)
	}

	s := Calculate(sig)
	if s.CrestFactor != 0 || s.CrestFactor_dB != 0 {
		t.Errorf("Calculate crest of silence = %f (%f dB), want 0", s.CrestFactor, s.CrestFactor_dB)
	}
}
