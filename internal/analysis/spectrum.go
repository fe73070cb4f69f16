package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// clean drops NaN and Inf samples and removes the mean, so the zero bin
// does not swamp the spectrum.
func clean(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return out
	}
	mean := stat.Mean(out, nil)
	for i := range out {
		out[i] -= mean
	}
	return out
}

// PowerSpectrum returns |X_k| for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(series []float64) []float64 {
	data := clean(series)
	if len(data) < 2 {
		return nil
	}
	coeff := fourier.NewFFT(len(data)).Coefficients(nil, data)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency is the frequency in Hz of the strongest non-zero bin,
// for samples taken sampleRate times per second. Zero means no signal.
func DominantFrequency(series []float64, sampleRate float64) float64 {
	data := clean(series)
	if len(data) < 4 || sampleRate <= 0 {
		return 0
	}
	fft := fourier.NewFFT(len(data))
	coeff := fft.Coefficients(nil, data)

	best, bestPower := 0, 0.0
	for i := 1; i < len(coeff); i++ {
		if p := cmplx.Abs(coeff[i]); p > bestPower {
			best, bestPower = i, p
		}
	}
	if best == 0 {
		return 0
	}
	return fft.Freq(best) * sampleRate
}
