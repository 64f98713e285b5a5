package types

// Candle is one bar of the daily price/volume history.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Status is the discrete recommendation produced by the classifier.
type Status string

const (
	StatusHold               Status = "HOLD"
	StatusWatchlist          Status = "WATCHLIST"
	StatusBigPlayerEntry     Status = "BIG_PLAYER_ENTRY"
	StatusStrongBuy          Status = "STRONG_BUY"
	StatusWhaleAccumulation  Status = "WHALE_ACCUMULATION"
	StatusHighRiskOverbought Status = "HIGH_RISK_OVERBOUGHT"
)

// IsBuyClass reports whether the status recommends opening a position.
func (s Status) IsBuyClass() bool {
	return s == StatusStrongBuy || s == StatusWhaleAccumulation || s == StatusBigPlayerEntry
}

type Trend string

const (
	TrendUp       Trend = "UP"
	TrendDown     Trend = "DOWN"
	TrendSideways Trend = "SIDEWAYS"
)

type Impact string

const (
	ImpactLow    Impact = "LOW"
	ImpactMedium Impact = "MEDIUM"
	ImpactHigh   Impact = "HIGH"
)

// Fundamentals is a best-effort snapshot; zero values mean "unknown".
type Fundamentals struct {
	PriceToBook       float64 `json:"price_to_book"`
	ReturnOnEquity    float64 `json:"return_on_equity"`
	DebtToEquity      float64 `json:"debt_to_equity"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	FreeCashFlow      float64 `json:"free_cash_flow"`
	LongName          string  `json:"long_name"`
}

// NewsItem is a single scraped headline, deduplicated per ticker by title.
type NewsItem struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// SentimentResult aggregates the scraped news for one ticker.
type SentimentResult struct {
	Label      string     `json:"label"`
	Score      int        `json:"score"`       // 0-100, 50 neutral
	SocialBuzz int        `json:"social_buzz"` // 0-95
	Impact     Impact     `json:"impact"`
	Headline   string     `json:"headline"`
	News       []NewsItem `json:"news"`
	Narrative  string     `json:"narrative"`
}

// AnalysisResult is the pipeline's sole output unit, one per surviving ticker.
type AnalysisResult struct {
	Ticker         string     `json:"ticker"`
	DisplayName    string     `json:"display_name"`
	Price          float64    `json:"price"`
	ChangePct      float64    `json:"change_pct"`
	Status         Status     `json:"status"`
	Trend          Trend      `json:"trend"`
	VolumeRatio    float64    `json:"volume_ratio"`
	PriceToBook    float64    `json:"price_to_book"`
	ROEPct         float64    `json:"roe_pct"`
	DebtToEquity   float64    `json:"debt_to_equity"`
	RSI            float64    `json:"rsi"`
	SentimentScore int        `json:"sentiment_score"`
	SocialBuzz     int        `json:"social_buzz"`
	Impact         Impact     `json:"impact"`
	Headline       string     `json:"headline"`
	News           []NewsItem `json:"news"`
	Narrative      string     `json:"narrative"`
}
