package testutil

import "testing"

func TestMaxAbsDiffPicksWorstPair(t *testing.T) {
	a := []float64{0, -1, 2, 0.5}
	b := []float64{0.25, -1, 1.5, 0.5}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}

	// The largest gap is |2 - 1.5|; every value is exactly
	// representable, so the comparison is exact.
	if d != 0.5 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5", d)
	}
}

func TestMaxAbsDiffSignAgnostic(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1, -1}, []float64{0.75, -0.5})
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}

	if d != 0.5 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5 from the negative pair", d)
	}
}

func TestMaxAbsDiffRejectsLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff(make([]float64, 3), make([]float64, 2)); err == nil {
		t.Fatal("length mismatch must error")
	}
}

func TestMaxAbsDiffEmpty(t *testing.T) {
	d, err := MaxAbsDiff(nil, nil)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}

	if d != 0 {
		t.Fatalf("MaxAbsDiff = %v, want 0 for empty input", d)
	}
}
