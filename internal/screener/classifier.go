package screener

import (
	"math"

	"emitscan/internal/types"
)

// Thresholds holds the tunable cutoffs behind the pillar signals. One
// canonical set lives in config; nothing in here hardcodes a cutoff.
type Thresholds struct {
	PBVMax            float64
	VolumeRatioBig    float64
	VolumeRatioWhale  float64
	VolumeRatioWatch  float64
	MaxChangePctBig   float64
	SentimentScoreMin int
	SocialBuzzMin     int
	RSIOverbought     float64
	ExtensionOverMA20 float64
}

// Pillars are the independently evaluated boolean signals the classifier
// decides on. Each is computed once per ticker, then Classify is pure.
type Pillars struct {
	Undervalued  bool // valuation ratio below cutoff
	TrendAligned bool // MA5 > MA20 > MA50 and price above MA20
	BigPlayer    bool // volume ratio over the big-player cutoff with bounded price change
	Whale        bool // stricter volume ratio, same bounded change
	Sentiment    bool // news score or social buzz over cutoff
	Elevated     bool // volume ratio over the lower watchlist cutoff
	Overbought   bool // RSI or extension over MA20 past the risk cutoff
}

// Classify maps a pillar tuple to a status. Evaluation order is part of the
// contract: the first matching rule wins, and the risk override is applied
// last so it can demote any buy-class outcome.
func Classify(p Pillars) types.Status {
	var status types.Status
	switch {
	case p.TrendAligned && p.Undervalued && p.Whale:
		status = types.StatusWhaleAccumulation
	case p.TrendAligned && p.Undervalued && p.Sentiment:
		status = types.StatusStrongBuy
	case p.BigPlayer && p.TrendAligned:
		status = types.StatusBigPlayerEntry
	case p.Undervalued || p.Sentiment || p.Elevated:
		status = types.StatusWatchlist
	default:
		status = types.StatusHold
	}

	if p.Overbought && status.IsBuyClass() {
		return types.StatusHighRiskOverbought
	}
	return status
}

// EvaluatePillars derives the pillar tuple from one ticker's computed
// indicators, fundamentals and sentiment. An unknown valuation (sentinel 0)
// never counts as undervalued.
func EvaluatePillars(t Thresholds, ind Indicators, f types.Fundamentals, s types.SentimentResult) Pillars {
	boundedMove := math.Abs(ind.ChangePct) < t.MaxChangePctBig

	extended := false
	if !math.IsNaN(ind.MA20) && ind.MA20 > 0 {
		extended = ind.Price > ind.MA20*t.ExtensionOverMA20
	}

	return Pillars{
		Undervalued:  f.PriceToBook > 0 && f.PriceToBook < t.PBVMax,
		TrendAligned: ind.Trend == types.TrendUp,
		BigPlayer:    ind.VolumeRatio > t.VolumeRatioBig && boundedMove,
		Whale:        ind.VolumeRatio > t.VolumeRatioWhale && boundedMove,
		Sentiment:    s.Score >= t.SentimentScoreMin || s.SocialBuzz >= t.SocialBuzzMin,
		Elevated:     ind.VolumeRatio > t.VolumeRatioWatch,
		Overbought:   ind.RSI >= t.RSIOverbought || extended,
	}
}
