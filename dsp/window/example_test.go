package window

import "fmt"

func ExampleGenerate() {
	w := Generate(TypeHann, 5)
	fmt.Printf("%.1f %.1f %.1f %.1f %.1f\n", w[0], w[1], w[2], w[3], w[4])
	// Output:
	// 0.0 0.5 1.0 0.5 0.0
}

func ExampleApply() {
	buf := []float64{1, 1, 1, 1, 1}
	Apply(TypeHamming, buf)
	fmt.Printf("%.2f %.2f %.2f %.2f %.2f\n", buf[0], buf[1], buf[2], buf[3], buf[4])
	// Output:
	// 0.08 0.54 1.00 0.54 0.08
}

func ExampleEquivalentNoiseBandwidth() {
	w := Generate(TypeHann, 1024, WithPeriodic())

	enbw, _ := EquivalentNoiseBandwidth(w)
	fmt.Printf("%.1f\n", enbw)
	// Output:
	// 1.5
}
