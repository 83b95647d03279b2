package window

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the coefficient helpers.
var (
	errEmptyCoeffs      = errors.New("window: no coefficients")
	errZeroCoherentGain = errors.New("window: coherent gain is zero")
	errMismatchedLength = errors.New("window: samples and coefficients differ in length")
)

func validateLength(size int) error {
	if size > 0 {
		return nil
	}

	return fmt.Errorf("window: size %d must be positive", size)
}

func validateKaiser(size int, beta float64) error {
	if err := validateLength(size); err != nil {
		return err
	}

	if beta < 0 {
		return fmt.Errorf("window: kaiser beta %f must be non-negative", beta)
	}

	return nil
}
