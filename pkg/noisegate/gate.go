// Package noisegate implements a spectral noise gate for mono PCM audio.
//
// The gate estimates a per-frequency noise floor from the opening moments of
// a recording (assumed to contain mostly room tone) and attenuates
// short-time spectral bins that never rise above that floor. Speech and
// other foreground energy passes through unchanged.
//
// Processing is a pure function of its input: deterministic, no shared
// state, safe to run concurrently on different buffers. It is CPU-bound —
// callers on a latency-sensitive path should run it on a background
// goroutine.
package noisegate

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// windowSize is the STFT analysis window length in samples.
	windowSize = 2048

	// hopSize is the analysis hop, giving 75% window overlap.
	hopSize = 512

	// noiseProfileWindow is the stretch of leading audio used to estimate
	// the noise floor, in seconds.
	noiseProfileWindow = 0.5

	// thresholdFactor scales the noise profile into the gate threshold.
	thresholdFactor = 1.5

	// attenuation is the gain applied to bins below the threshold.
	attenuation = 0.1

	// normEpsilon floors the overlap-add normalisation divisor.
	normEpsilon = 1e-8
)

// ErrBadSampleRate is returned when the sample rate is not positive.
var ErrBadSampleRate = errors.New("noisegate: sample rate must be positive")

// Process denoises mono PCM samples in the range [-1, 1] and returns a new
// buffer of exactly the same length. The input is never modified.
//
// Inputs shorter than one analysis window are returned as an unmodified
// copy — there is not enough signal to estimate a noise floor.
func Process(samples []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, ErrBadSampleRate
	}
	out := make([]float64, len(samples))
	if len(samples) < windowSize {
		copy(out, samples)
		return out, nil
	}

	window := hannWindow(windowSize)
	fft := fourier.NewFFT(windowSize)
	bins := windowSize/2 + 1
	frameCount := 1 + (len(samples)-windowSize)/hopSize

	// Frames whose start lies inside the opening noiseProfileWindow seconds
	// contribute to the noise estimate. Always at least one frame.
	profileFrames := int(noiseProfileWindow*float64(sampleRate))/hopSize + 1
	if profileFrames > frameCount {
		profileFrames = frameCount
	}

	// Pass 1: noise magnitude profile over the opening frames.
	profile := make([]float64, bins)
	frame := make([]float64, windowSize)
	coeffs := make([]complex128, bins)
	for f := 0; f < profileFrames; f++ {
		windowed(frame, samples[f*hopSize:], window)
		fft.Coefficients(coeffs, frame)
		for b, c := range coeffs {
			profile[b] += cmplx.Abs(c)
		}
	}
	for b := range profile {
		profile[b] /= float64(profileFrames)
	}

	// Pass 2: gate every frame and overlap-add the resynthesised signal.
	norm := make([]float64, len(samples))
	synth := make([]float64, windowSize)
	for f := 0; f < frameCount; f++ {
		start := f * hopSize
		windowed(frame, samples[start:], window)
		fft.Coefficients(coeffs, frame)

		for b, c := range coeffs {
			if cmplx.Abs(c) < profile[b]*thresholdFactor {
				coeffs[b] = c * complex(attenuation, 0)
			}
		}

		// gonum's real FFT round trip scales by the sequence length.
		fft.Sequence(synth, coeffs)
		for i := range synth {
			v := synth[i] / windowSize * window[i]
			out[start+i] += v
			norm[start+i] += window[i] * window[i]
		}
	}

	// Normalise by the accumulated synthesis-window energy. The divisor is
	// clamped so sparsely covered edges are not amplified, and floored to
	// stay away from zero.
	covered := (frameCount-1)*hopSize + windowSize
	steady := 0.0
	for _, n := range norm[:covered] {
		if n > steady {
			steady = n
		}
	}
	halfSteady := steady * 0.5
	for i := range out[:covered] {
		div := norm[i]
		if div < halfSteady {
			div = halfSteady
		}
		if div < normEpsilon {
			div = normEpsilon
		}
		out[i] /= div
	}

	// The frames tile [0, covered); the remainder is shorter than one hop
	// and cannot be windowed, so it passes through ungated.
	copy(out[covered:], samples[covered:])
	return out, nil
}

// windowed fills dst with src[:len(dst)] multiplied by the analysis window.
func windowed(dst, src, window []float64) {
	for i := range dst {
		dst[i] = src[i] * window[i]
	}
}

// hannWindow returns a periodic Hann window of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}
