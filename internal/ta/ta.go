package ta

import "math"

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// RSI is the Wilder relative strength index over the trailing period.
// A flat loss leg saturates the oscillator at 100 instead of dividing by zero.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// BollingerWidth is (upper-lower)/middle, a unitless volatility signal.
func BollingerWidth(closes []float64, n int, k float64) float64 {
	mid, up, low := Bollinger(closes, n, k)
	if math.IsNaN(mid) || mid == 0 {
		return math.NaN()
	}
	return (up - low) / mid
}

// OBV is the cumulative on-balance volume, starting at 0. Flat closes
// contribute nothing (sign(0) = 0).
func OBV(closes, vols []float64) float64 {
	if len(closes) != len(vols) || len(closes) < 2 {
		return 0
	}
	obv := 0.0
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += vols[i]
		case closes[i] < closes[i-1]:
			obv -= vols[i]
		}
	}
	return obv
}

// VolumeRatio compares the latest volume against its trailing mean.
// Returns 0 when the mean is 0 so a dead series never divides by zero.
func VolumeRatio(vols []float64) float64 {
	if len(vols) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vols {
		sum += v
	}
	mean := sum / float64(len(vols))
	if mean == 0 {
		return 0
	}
	return vols[len(vols)-1] / mean
}

// ChangePct is the percent change of the last close versus the previous one.
func ChangePct(closes []float64) float64 {
	if len(closes) < 2 || closes[len(closes)-2] == 0 {
		return 0
	}
	prev := closes[len(closes)-2]
	return (closes[len(closes)-1] - prev) / prev * 100
}
