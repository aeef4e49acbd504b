package noisegate_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/akemper/kineto/pkg/noisegate"
)

const testRate = 48000

func TestProcessRejectsBadSampleRate(t *testing.T) {
	_, err := noisegate.Process(make([]float64, 4096), 0)
	if !errors.Is(err, noisegate.ErrBadSampleRate) {
		t.Fatalf("err = %v, want ErrBadSampleRate", err)
	}
	_, err = noisegate.Process(make([]float64, 4096), -48000)
	if !errors.Is(err, noisegate.ErrBadSampleRate) {
		t.Fatalf("err = %v, want ErrBadSampleRate", err)
	}
}

func TestProcessShortInputPassthrough(t *testing.T) {
	in := []float64{0.5, -0.25, 0.125}
	out, err := noisegate.Process(in, testRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d = %f, want %f", i, out[i], in[i])
		}
	}
	// Output must be a copy, not an alias.
	out[0] = 99
	if in[0] != 0.5 {
		t.Error("output aliases input buffer")
	}
}

func TestProcessPreservesLength(t *testing.T) {
	for _, n := range []int{2048, 2049, 4096, 48000, 48001} {
		in := make([]float64, n)
		out, err := noisegate.Process(in, testRate)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if len(out) != n {
			t.Errorf("n=%d: output len = %d", n, len(out))
		}
	}
}

func TestProcessPassesUncoveredTailThrough(t *testing.T) {
	// 2048 + 300 samples: a single analysis window covers [0, 2048), the
	// 300-sample remainder is too short to window and must come out exactly
	// as it went in — not as silence.
	const n = 2048 + 300
	in := make([]float64, n)
	for i := range in {
		in[i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/testRate)
	}

	out, err := noisegate.Process(in, testRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != n {
		t.Fatalf("output len = %d, want %d", len(out), n)
	}
	for i := 2048; i < n; i++ {
		if out[i] != in[i] {
			t.Fatalf("tail sample %d = %g, want %g unmodified", i, out[i], in[i])
		}
	}
}

func TestProcessSilenceStaysQuiet(t *testing.T) {
	in := make([]float64, testRate) // one second of digital silence
	out, err := noisegate.Process(in, testRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := rms(out); r > 1e-6 {
		t.Errorf("silence rms = %g after gating, want ~0", r)
	}
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := make([]float64, 8192)
	for i := range in {
		in[i] = rng.Float64()*0.02 - 0.01
	}
	snapshot := append([]float64(nil), in...)

	if _, err := noisegate.Process(in, testRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if in[i] != snapshot[i] {
			t.Fatalf("input modified at sample %d", i)
		}
	}
}

func TestProcessAttenuatesSteadyNoise(t *testing.T) {
	// Two seconds of low-level white noise: the opening profile should gate
	// the rest of the signal well below its original level.
	rng := rand.New(rand.NewSource(42))
	in := make([]float64, 2*testRate)
	for i := range in {
		in[i] = rng.Float64()*0.02 - 0.01
	}

	out, err := noisegate.Process(in, testRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Compare away from the edges where overlap-add coverage ramps up.
	inMid := rms(in[testRate/2 : 3*testRate/2])
	outMid := rms(out[testRate/2 : 3*testRate/2])
	if outMid > inMid*0.5 {
		t.Errorf("noise rms %g -> %g, want at least 2x reduction", inMid, outMid)
	}
}

func TestProcessKeepsForegroundTone(t *testing.T) {
	// Quiet noise opening, then a loud 440 Hz tone: the tone must survive
	// mostly intact.
	rng := rand.New(rand.NewSource(7))
	in := make([]float64, 2*testRate)
	for i := range in {
		in[i] = rng.Float64()*0.002 - 0.001
	}
	toneStart := testRate
	for i := toneStart; i < len(in); i++ {
		in[i] += 0.5 * math.Sin(2*math.Pi*440*float64(i)/testRate)
	}

	out, err := noisegate.Process(in, testRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toneIn := rms(in[toneStart+4096 : len(in)-4096])
	toneOut := rms(out[toneStart+4096 : len(out)-4096])
	if toneOut < toneIn*0.7 {
		t.Errorf("tone rms %g -> %g, foreground was gated", toneIn, toneOut)
	}
}

func rms(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}
