package ta

import (
	"math"
	"testing"
)

func seq(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestSMAInsufficientData(t *testing.T) {
	if !math.IsNaN(SMA([]float64{1, 2, 3}, 5)) {
		t.Error("Expected NaN for series shorter than window")
	}
	if got := SMA([]float64{1, 2, 3, 4}, 4); got != 2.5 {
		t.Errorf("Expected 2.5, got %f", got)
	}
}

func TestRSIUptrendSaturates(t *testing.T) {
	closes := seq(100, 1, 30) // strictly rising, zero losses
	rsi := RSI(closes, 14)
	if rsi != 100.0 {
		t.Errorf("Expected RSI 100 on constant uptrend, got %f", rsi)
	}
}

func TestRSIDowntrendApproachesZero(t *testing.T) {
	closes := seq(100, -1, 30)
	rsi := RSI(closes, 14)
	if rsi != 0.0 {
		t.Errorf("Expected RSI 0 on constant downtrend, got %f", rsi)
	}
}

func TestRSIBounds(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19}
	rsi := RSI(closes, 14)
	if rsi < 0 || rsi > 100 {
		t.Errorf("RSI out of [0,100]: %f", rsi)
	}
	if !math.IsNaN(RSI(closes[:10], 14)) {
		t.Error("Expected NaN when series shorter than period+1")
	}
}

func TestOBVSignConventions(t *testing.T) {
	closes := []float64{10, 11, 11, 9, 12}
	vols := []float64{100, 200, 300, 400, 500}
	// +200 (up), 0 (flat), -400 (down), +500 (up)
	if got := OBV(closes, vols); got != 300 {
		t.Errorf("Expected OBV 300, got %f", got)
	}
}

func TestOBVSignSymmetry(t *testing.T) {
	closes := []float64{10, 12, 11, 14, 13}
	vols := []float64{100, 150, 200, 250, 300}
	obv := OBV(closes, vols)

	// Mirror the price path around a constant: every up-move becomes an
	// equally sized down-move, so OBV must negate exactly.
	mirrored := make([]float64, len(closes))
	for i, c := range closes {
		mirrored[i] = 24 - c
	}
	if got := OBV(mirrored, vols); got != -obv {
		t.Errorf("Expected mirrored OBV %f, got %f", -obv, got)
	}
}

func TestOBVDegenerateInput(t *testing.T) {
	if got := OBV([]float64{10}, []float64{100}); got != 0 {
		t.Errorf("Expected 0 for single bar, got %f", got)
	}
	if got := OBV([]float64{10, 11}, []float64{100}); got != 0 {
		t.Errorf("Expected 0 for mismatched lengths, got %f", got)
	}
}

func TestVolumeRatio(t *testing.T) {
	if got := VolumeRatio([]float64{100, 100, 100, 300}); got != 2.0 {
		t.Errorf("Expected 2.0, got %f", got)
	}
	if got := VolumeRatio([]float64{0, 0, 0}); got != 0 {
		t.Errorf("Expected 0 for zero-mean volume, got %f", got)
	}
	if got := VolumeRatio(nil); got != 0 {
		t.Errorf("Expected 0 for empty series, got %f", got)
	}
}

func TestBollingerWidth(t *testing.T) {
	flat := seq(100, 0, 25)
	if got := BollingerWidth(flat, 20, 2); got != 0 {
		t.Errorf("Expected zero width on flat series, got %f", got)
	}
	noisy := []float64{100, 104, 98, 105, 97, 106, 96, 107, 95, 108,
		94, 109, 93, 110, 92, 111, 91, 112, 90, 113}
	w := BollingerWidth(noisy, 20, 2)
	if w <= 0 {
		t.Errorf("Expected positive width on volatile series, got %f", w)
	}
	if !math.IsNaN(BollingerWidth(noisy[:5], 20, 2)) {
		t.Error("Expected NaN when series shorter than window")
	}
}

func TestChangePct(t *testing.T) {
	if got := ChangePct([]float64{100, 103}); got != 3.0 {
		t.Errorf("Expected 3.0, got %f", got)
	}
	if got := ChangePct([]float64{100}); got != 0 {
		t.Errorf("Expected 0 for single close, got %f", got)
	}
}
