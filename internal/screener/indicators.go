package screener

import (
	"math"

	"emitscan/internal/ta"
	"emitscan/internal/types"
)

// Indicators is the per-ticker technical snapshot derived from one candle
// series. All fields are computed once, before pillar evaluation.
type Indicators struct {
	Price       float64
	ChangePct   float64
	MA5         float64
	MA20        float64
	MA50        float64
	RSI         float64
	VolumeRatio float64
	BollWidth   float64
	Trend       types.Trend
}

// ComputeIndicators derives the full indicator set from a candle series.
// Short series leave the affected moving averages at NaN; trend derivation
// treats a NaN leg as unaligned.
func ComputeIndicators(candles []types.Candle) Indicators {
	closes := make([]float64, len(candles))
	vols := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		vols[i] = c.Vol
	}

	ind := Indicators{
		MA5:         ta.SMA(closes, 5),
		MA20:        ta.SMA(closes, 20),
		MA50:        ta.SMA(closes, 50),
		RSI:         ta.RSI(closes, 14),
		VolumeRatio: ta.VolumeRatio(vols),
		BollWidth:   ta.BollingerWidth(closes, 20, 2),
		ChangePct:   ta.ChangePct(closes),
	}
	if len(closes) > 0 {
		ind.Price = closes[len(closes)-1]
	}
	ind.Trend = deriveTrend(ind)
	return ind
}

// deriveTrend maps the moving-average stack to a coarse direction. UP needs
// the full MA5 > MA20 > MA50 alignment with price above MA20; DOWN is the
// mirror image; anything else, NaN legs included, is SIDEWAYS.
func deriveTrend(ind Indicators) types.Trend {
	if math.IsNaN(ind.MA5) || math.IsNaN(ind.MA20) || math.IsNaN(ind.MA50) {
		return types.TrendSideways
	}
	switch {
	case ind.MA5 > ind.MA20 && ind.MA20 > ind.MA50 && ind.Price > ind.MA20:
		return types.TrendUp
	case ind.MA5 < ind.MA20 && ind.MA20 < ind.MA50 && ind.Price < ind.MA20:
		return types.TrendDown
	default:
		return types.TrendSideways
	}
}

// rangeTightnessPct is the high-low spread of the trailing window as a
// percent of its low. Used by the admission filter to spot consolidations.
func rangeTightnessPct(candles []types.Candle, window int) float64 {
	if len(candles) < window || window <= 0 {
		return math.NaN()
	}
	tail := candles[len(candles)-window:]
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range tail {
		if c.Low > 0 && c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	if math.IsInf(lo, 1) || lo == 0 {
		return math.NaN()
	}
	return (hi - lo) / lo * 100
}
