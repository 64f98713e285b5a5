package screener

import (
	"context"
	"math"
	"sync"

	"emitscan/internal/fetch"
	"emitscan/internal/logger"
	"emitscan/internal/news"
	"emitscan/internal/store"
	"emitscan/internal/types"
)

// Phase1Thresholds bound the cheap admission filter.
type Phase1Thresholds struct {
	VolumeRatioMin    float64
	RangeTightnessPct float64
	UltraTightPct     float64
	SqueezeWidthMax   float64
}

// Options carries every tunable the pipeline depends on. One canonical set
// comes out of config; tests construct their own.
type Options struct {
	Workers       int
	MinHistoryLen int
	Phase1        Phase1Thresholds
	Thresholds    Thresholds
}

// OptionsFromConfig maps the loaded config onto pipeline options.
func OptionsFromConfig(cfg *store.Config) Options {
	return Options{
		Workers:       cfg.Screener.Workers,
		MinHistoryLen: cfg.Screener.MinHistoryLen,
		Phase1: Phase1Thresholds{
			VolumeRatioMin:    cfg.Screener.Phase1.VolumeRatioMin,
			RangeTightnessPct: cfg.Screener.Phase1.RangeTightnessPct,
			UltraTightPct:     cfg.Screener.Phase1.UltraTightPct,
			SqueezeWidthMax:   cfg.Screener.Phase1.SqueezeWidthMax,
		},
		Thresholds: Thresholds{
			PBVMax:            cfg.Screener.Pillars.PBVMax,
			VolumeRatioBig:    cfg.Screener.Pillars.VolumeRatioBig,
			VolumeRatioWhale:  cfg.Screener.Pillars.VolumeRatioWhale,
			VolumeRatioWatch:  cfg.Screener.Pillars.VolumeRatioWatch,
			MaxChangePctBig:   cfg.Screener.Pillars.MaxChangePctBig,
			SentimentScoreMin: cfg.Screener.Pillars.SentimentScoreMin,
			SocialBuzzMin:     cfg.Screener.Pillars.SocialBuzzMin,
			RSIOverbought:     cfg.Screener.Pillars.RSIOverbought,
			ExtensionOverMA20: cfg.Screener.Pillars.ExtensionOverMA20,
		},
	}
}

// Pipeline runs the two-tier scan: a cheap technical pre-filter over the
// whole universe, then a bounded worker pool doing the expensive per-ticker
// deep dive. Per-ticker failures drop that ticker, never the run.
type Pipeline struct {
	market fetch.MarketData
	news   news.Extractor
	opts   Options
}

func New(market fetch.MarketData, extractor news.Extractor, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 25
	}
	return &Pipeline{market: market, news: extractor, opts: opts}
}

// candidate is a ticker that survived Phase 1, with its already-fetched
// series so Phase 2 never refetches history.
type candidate struct {
	ticker  string
	candles []types.Candle
	ind     Indicators
}

// RunScan screens the universe and returns results in completion order.
// An empty universe yields an empty result set without error.
func (p *Pipeline) RunScan(ctx context.Context, universe []string) ([]types.AnalysisResult, error) {
	timer := logger.StartOperation(ctx, "run_scan", "universe_size", len(universe))
	ctx = timer.GetContext()

	candidates := p.phase1(ctx, universe)
	logger.Info(ctx, "Admission filter complete",
		"universe_size", len(universe), "admitted", len(candidates))

	results := p.phase2(ctx, candidates)
	if err := ctx.Err(); err != nil {
		timer.EndWithError(err)
		return results, err
	}

	timer.End("results", len(results))
	return results, nil
}

// phase1 admits a ticker when at least two of three cheap conditions hold
// (trend alignment, elevated volume, tight trailing range), or when the
// range alone is ultra tight. Series shorter than the minimum window are
// excluded outright.
func (p *Pipeline) phase1(ctx context.Context, universe []string) []candidate {
	admitted := []candidate{}
	for _, ticker := range universe {
		if ctx.Err() != nil {
			break
		}
		candles, err := p.market.History(ctx, ticker)
		if err != nil {
			logger.Warn(ctx, "History fetch failed, skipping ticker",
				"ticker", ticker, "kind", fetch.KindOf(err).String(), "error", err)
			continue
		}
		if len(candles) < p.opts.MinHistoryLen {
			logger.Debug(ctx, "Insufficient history, skipping ticker",
				"ticker", ticker, "bars", len(candles), "min", p.opts.MinHistoryLen)
			continue
		}

		ind := ComputeIndicators(candles)
		if p.admit(candles, ind) {
			admitted = append(admitted, candidate{ticker: ticker, candles: candles, ind: ind})
		}
	}
	return admitted
}

func (p *Pipeline) admit(candles []types.Candle, ind Indicators) bool {
	tightness := rangeTightnessPct(candles, 10)

	if !math.IsNaN(tightness) && tightness < p.opts.Phase1.UltraTightPct {
		return true
	}

	hits := 0
	if ind.Trend == types.TrendUp {
		hits++
	}
	if ind.VolumeRatio > p.opts.Phase1.VolumeRatioMin {
		hits++
	}
	if p.consolidating(tightness, ind.BollWidth) {
		hits++
	}
	return hits >= 2
}

// consolidating reports a tight trailing range or a Bollinger squeeze;
// either volatility signal marks a base worth a deep dive.
func (p *Pipeline) consolidating(tightness, bollWidth float64) bool {
	if !math.IsNaN(tightness) && tightness < p.opts.Phase1.RangeTightnessPct {
		return true
	}
	return !math.IsNaN(bollWidth) && bollWidth < p.opts.Phase1.SqueezeWidthMax
}

// phase2 fans the candidates out over a bounded worker pool. The semaphore
// is the only backpressure; results arrive in completion order.
func (p *Pipeline) phase2(ctx context.Context, candidates []candidate) []types.AnalysisResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []types.AnalysisResult
	)
	sem := make(chan struct{}, p.opts.Workers)

	for _, cand := range candidates {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(cand candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			res, ok := p.analyze(ctx, cand)
			if !ok {
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(cand)
	}

	wg.Wait()
	return results
}

// analyze is one Phase-2 unit: fundamentals, sentiment, pillar evaluation,
// classification. Any fetch or parse failure drops the ticker.
func (p *Pipeline) analyze(ctx context.Context, cand candidate) (types.AnalysisResult, bool) {
	fund, err := p.market.Fundamentals(ctx, cand.ticker)
	if err != nil {
		logger.Warn(ctx, "Fundamentals fetch failed, dropping ticker",
			"ticker", cand.ticker, "kind", fetch.KindOf(err).String(), "error", err)
		return types.AnalysisResult{}, false
	}

	sentiment := p.news.Extract(ctx, cand.ticker)

	pillars := EvaluatePillars(p.opts.Thresholds, cand.ind, fund, sentiment)
	status := Classify(pillars)

	logger.Screen(ctx, cand.ticker, string(status),
		"trend", string(cand.ind.Trend),
		"volume_ratio", cand.ind.VolumeRatio,
		"rsi", cand.ind.RSI,
		"sentiment_score", sentiment.Score)

	displayName := fund.LongName
	if displayName == "" {
		displayName = cand.ticker
	}

	return types.AnalysisResult{
		Ticker:         cand.ticker,
		DisplayName:    displayName,
		Price:          cand.ind.Price,
		ChangePct:      cand.ind.ChangePct,
		Status:         status,
		Trend:          cand.ind.Trend,
		VolumeRatio:    cand.ind.VolumeRatio,
		PriceToBook:    fund.PriceToBook,
		ROEPct:         fund.ReturnOnEquity * 100,
		DebtToEquity:   fund.DebtToEquity,
		RSI:            cand.ind.RSI,
		SentimentScore: sentiment.Score,
		SocialBuzz:     sentiment.SocialBuzz,
		Impact:         sentiment.Impact,
		Headline:       sentiment.Headline,
		News:           sentiment.News,
		Narrative:      sentiment.Narrative,
	}, true
}
