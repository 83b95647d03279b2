package window

import (
	"math"
	"testing"
)

var allTypes = []struct {
	name string
	typ  Type
}{
	{"rectangular", TypeRectangular},
	{"hann", TypeHann},
	{"hamming", TypeHamming},
	{"blackman", TypeBlackman},
	{"blackman-harris", TypeBlackmanHarris4Term},
	{"flattop", TypeFlatTop},
	{"kaiser", TypeKaiser},
}

func TestGenerateFiniteAndSymmetric(t *testing.T) {
	const size = 64

	for _, tc := range allTypes {
		t.Run(tc.name, func(t *testing.T) {
			w := Generate(tc.typ, size, WithAlpha(8))
			if len(w) != size {
				t.Fatalf("len=%d, want %d", len(w), size)
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}

				mirror := w[size-1-i]
				if !within(v, mirror, 1e-12) {
					t.Fatalf("symmetry broken at %d: %v vs %v", i, v, mirror)
				}
			}
		})
	}
}

func TestPeriodicMatchesLongerSymmetric(t *testing.T) {
	// The periodic form of length N samples the same grid as the
	// symmetric form of length N+1 without its final point.
	per := Generate(TypeHann, 16, WithPeriodic())
	sym := Generate(TypeHann, 17)

	for i := range per {
		if per[i] != sym[i] {
			t.Fatalf("index %d: periodic=%v symmetric=%v", i, per[i], sym[i])
		}
	}

	if per[15] == sym[16] {
		t.Fatal("periodic form should not reach the symmetric endpoint")
	}
}

func TestApply(t *testing.T) {
	buf := []float64{0.25, -0.5, 0.75, -1, 1, -0.75, 0.5, -0.25}

	orig := make([]float64, len(buf))
	copy(orig, buf)

	Apply(TypeRectangular, buf)

	for i := range buf {
		if buf[i] != orig[i] {
			t.Fatalf("rectangular changed sample %d: %v", i, buf[i])
		}
	}

	Apply(TypeHann, buf)

	if buf[0] != 0 || buf[7] != 0 {
		t.Fatalf("hann should zero both ends: %v %v", buf[0], buf[7])
	}

	if math.Abs(buf[3]) >= math.Abs(orig[3]) {
		t.Fatalf("hann should attenuate interior samples: %v", buf[3])
	}
}

func TestEightPointShapes(t *testing.T) {
	cases := []struct {
		name string
		got  []float64
		want []float64
		tol  float64
	}{
		{
			name: "hann",
			got:  Generate(TypeHann, 8),
			want: []float64{
				0.0, 0.1882550990706332, 0.6112604669781572, 0.9504844339512095,
				0.9504844339512095, 0.6112604669781573, 0.1882550990706333, 0.0,
			},
			tol: 1e-10,
		},
		{
			name: "hamming",
			got:  Generate(TypeHamming, 8),
			want: []float64{
				0.08, 0.25319469114498255, 0.6423596296199047, 0.9544456792351128,
				0.9544456792351128, 0.6423596296199048, 0.25319469114498266, 0.08,
			},
			tol: 1e-10,
		},
		{
			name: "blackman-harris",
			got:  Generate(TypeBlackmanHarris4Term, 8),
			want: []float64{
				0.00006, 0.03339172347815117, 0.332833504298565,
				0.8893697722232837, 0.8893697722232838, 0.3328335042985652,
				0.0333917234781512, 0.00006,
			},
			tol: 1e-10,
		},
		{
			name: "flattop",
			got:  Generate(TypeFlatTop, 8),
			want: []float64{
				-0.0004210510000000013, -0.03684077608132298, 0.01070371671636002,
				0.7808739149387524, 0.7808739149387525, 0.010703716716360296,
				-0.03684077608132292, -0.0004210510000000013,
			},
			tol: 1e-8,
		},
		{
			name: "kaiser-beta8",
			got:  Generate(TypeKaiser, 8, WithAlpha(8)),
			want: []float64{
				0.002338830460264423, 0.1091958100155291, 0.4871186737556569, 0.9261577358777303,
				0.9261577358777303, 0.4871186737556569, 0.1091958100155291, 0.002338830460264423,
			},
			tol: 1e-10,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.got) != len(tc.want) {
				t.Fatalf("len=%d, want %d", len(tc.got), len(tc.want))
			}

			for i := range tc.got {
				if !within(tc.got[i], tc.want[i], tc.tol) {
					t.Fatalf("index %d: got=%.16f want=%.16f", i, tc.got[i], tc.want[i])
				}
			}
		})
	}
}

func TestBlackmanEndpointsAndPeak(t *testing.T) {
	w := Generate(TypeBlackman, 9)

	if !within(w[0], 0, 1e-15) || !within(w[8], 0, 1e-15) {
		t.Fatalf("edges %v %v, want ~0", w[0], w[8])
	}

	if !within(w[4], 1, 1e-12) {
		t.Fatalf("center %v, want 1", w[4])
	}

	for i := 1; i < 8; i++ {
		if w[i] > w[4]+1e-12 {
			t.Fatalf("coefficient %d exceeds center: %v > %v", i, w[i], w[4])
		}
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	rect := Generate(TypeRectangular, 512)

	enbw, err := EquivalentNoiseBandwidth(rect)
	if err != nil {
		t.Fatal(err)
	}

	if enbw != 1 {
		t.Fatalf("rectangular ENBW=%v, want exactly 1", enbw)
	}

	hann := Generate(TypeHann, 2048)

	enbw, err = EquivalentNoiseBandwidth(hann)
	if err != nil {
		t.Fatal(err)
	}

	if !within(enbw, 1.5, 0.01) {
		t.Fatalf("hann ENBW=%v, want ~1.5", enbw)
	}
}

func TestNamedConstructors(t *testing.T) {
	constructors := []struct {
		name string
		make func() ([]float64, error)
	}{
		{"hann", func() ([]float64, error) { return Hann(64) }},
		{"hamming", func() ([]float64, error) { return Hamming(64) }},
		{"blackman", func() ([]float64, error) { return Blackman(64) }},
		{"flattop", func() ([]float64, error) { return FlatTop(64) }},
		{"kaiser", func() ([]float64, error) { return Kaiser(64, 8) }},
	}

	for _, tc := range constructors {
		t.Run(tc.name, func(t *testing.T) {
			w, err := tc.make()
			if err != nil {
				t.Fatal(err)
			}

			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}
		})
	}
}

func TestApplyCoefficients(t *testing.T) {
	samples := []float64{2, 4, 8, 16}
	coeffs := []float64{1, 0.5, 0.25, 0.125}

	out, err := ApplyCoefficients(samples, coeffs)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range out {
		if v != 2 {
			t.Fatalf("out[%d]=%v, want 2", i, v)
		}
	}

	if samples[1] != 4 {
		t.Fatal("ApplyCoefficients must not modify its input")
	}

	if err := ApplyCoefficientsInPlace(samples, coeffs); err != nil {
		t.Fatal(err)
	}

	if samples[3] != 2 {
		t.Fatalf("samples[3]=%v, want 2", samples[3])
	}
}

func TestInvalidInputs(t *testing.T) {
	if got := Generate(TypeHann, 0); got != nil {
		t.Fatalf("zero length should yield nil, got %v", got)
	}

	if got := Generate(TypeHann, -3); got != nil {
		t.Fatalf("negative length should yield nil, got %v", got)
	}

	if _, err := Hann(0); err == nil {
		t.Fatal("want size error from Hann(0)")
	}

	if _, err := Kaiser(16, -1); err == nil {
		t.Fatal("want beta error from Kaiser(16, -1)")
	}

	if _, err := Kaiser(0, 8); err == nil {
		t.Fatal("want size error from Kaiser(0, 8)")
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("want error for empty coefficients")
	}

	if _, err := EquivalentNoiseBandwidth([]float64{0, 0, 0}); err == nil {
		t.Fatal("want error for zero coherent gain")
	}

	if _, err := ApplyCoefficients([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("want length mismatch error")
	}

	if err := ApplyCoefficientsInPlace([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("want length mismatch error")
	}
}

func within(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
