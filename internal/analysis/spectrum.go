package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	centered := make([]float64, len(data))
	mean := stat.Mean(data, nil)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fourier.NewFFT(len(centered)).Coefficients(nil, centered)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in values
// sampled every dt. It returns 0 when there is no oscillation to find.
func DominantPeriod(values []float64, dt float64) float64 {
	ps := PowerSpectrum(values)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	peak := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[peak] || peak == 0 {
			peak = k
		}
	}
	if ps[peak] <= 1e-12*float64(len(values)) {
		return 0
	}

	// Parabolic refinement of the peak bin.
	freq := float64(peak)
	if peak > 1 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			offset := 0.5 * (a - c) / denom
			if math.Abs(offset) < 1 {
				freq += offset
			}
		}
	}

	return float64(len(values)) * dt / freq
}
