package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange string   `yaml:"exchange"`
	Universe []string `yaml:"universe"`

	Fetch struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MinDelayMs     int     `yaml:"min_delay_ms"`
		MaxDelayMs     int     `yaml:"max_delay_ms"`
		MaxRetries     int     `yaml:"max_retries"`
		RatePerSecond  float64 `yaml:"rate_per_second"`
	} `yaml:"fetch"`

	Screener struct {
		Workers       int `yaml:"workers"`
		MinHistoryLen int `yaml:"min_history_len"`
		Phase1        struct {
			VolumeRatioMin    float64 `yaml:"volume_ratio_min"`
			RangeTightnessPct float64 `yaml:"range_tightness_pct"`
			UltraTightPct     float64 `yaml:"ultra_tight_pct"`
			SqueezeWidthMax   float64 `yaml:"squeeze_width_max"`
		} `yaml:"phase1"`
		Pillars struct {
			PBVMax            float64 `yaml:"pbv_max"`
			VolumeRatioBig    float64 `yaml:"volume_ratio_big"`
			VolumeRatioWhale  float64 `yaml:"volume_ratio_whale"`
			VolumeRatioWatch  float64 `yaml:"volume_ratio_watch"`
			MaxChangePctBig   float64 `yaml:"max_change_pct_big"`
			SentimentScoreMin int     `yaml:"sentiment_score_min"`
			SocialBuzzMin     int     `yaml:"social_buzz_min"`
			RSIOverbought     float64 `yaml:"rsi_overbought"`
			ExtensionOverMA20 float64 `yaml:"extension_over_ma20"`
		} `yaml:"pillars"`
	} `yaml:"screener"`

	News struct {
		MaxItems        int      `yaml:"max_items"`
		MinTitleLen     int      `yaml:"min_title_len"`
		MaxOtherTickers int      `yaml:"max_other_tickers"`
		NoisePhrases    []string `yaml:"noise_phrases"`
	} `yaml:"news"`

	Cache struct {
		Path       string `yaml:"path"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`
}

func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.Screener.Workers <= 0 {
		return fmt.Errorf("screener.workers must be positive, got %d", c.Screener.Workers)
	}
	if c.Fetch.MinDelayMs > c.Fetch.MaxDelayMs {
		return fmt.Errorf("fetch.min_delay_ms %d exceeds max_delay_ms %d", c.Fetch.MinDelayMs, c.Fetch.MaxDelayMs)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.Universe = Dedupe(c.Universe)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = "IDX"
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = 5
	}
	if c.Fetch.MaxDelayMs == 0 {
		c.Fetch.MinDelayMs = 300
		c.Fetch.MaxDelayMs = 1200
	}
	if c.Fetch.MaxRetries == 0 {
		c.Fetch.MaxRetries = 2
	}
	if c.Fetch.RatePerSecond == 0 {
		c.Fetch.RatePerSecond = 4
	}
	if c.Screener.Workers == 0 {
		c.Screener.Workers = 25
	}
	if c.Screener.MinHistoryLen == 0 {
		c.Screener.MinHistoryLen = 20
	}
	p1 := &c.Screener.Phase1
	if p1.VolumeRatioMin == 0 {
		p1.VolumeRatioMin = 1.5
	}
	if p1.RangeTightnessPct == 0 {
		p1.RangeTightnessPct = 6
	}
	if p1.UltraTightPct == 0 {
		p1.UltraTightPct = 3
	}
	if p1.SqueezeWidthMax == 0 {
		p1.SqueezeWidthMax = 0.08
	}
	p := &c.Screener.Pillars
	if p.PBVMax == 0 {
		p.PBVMax = 1.2
	}
	if p.VolumeRatioBig == 0 {
		p.VolumeRatioBig = 2.0
	}
	if p.VolumeRatioWhale == 0 {
		p.VolumeRatioWhale = 2.5
	}
	if p.VolumeRatioWatch == 0 {
		p.VolumeRatioWatch = 1.5
	}
	if p.MaxChangePctBig == 0 {
		p.MaxChangePctBig = 4
	}
	if p.SentimentScoreMin == 0 {
		p.SentimentScoreMin = 55
	}
	if p.SocialBuzzMin == 0 {
		p.SocialBuzzMin = 60
	}
	if p.RSIOverbought == 0 {
		p.RSIOverbought = 70
	}
	if p.ExtensionOverMA20 == 0 {
		p.ExtensionOverMA20 = 1.15
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 6
	}
	if c.News.MinTitleLen == 0 {
		c.News.MinTitleLen = 12
	}
	if c.News.MaxOtherTickers == 0 {
		c.News.MaxOtherTickers = 2
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "scan_cache.json"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
}

// Dedupe removes duplicate tickers while preserving first-seen order.
func Dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
