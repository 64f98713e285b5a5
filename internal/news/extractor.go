package news

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"emitscan/internal/fetch"
	"emitscan/internal/logger"
	"emitscan/internal/types"
)

// Extractor produces a bounded sentiment read for one ticker. The pipeline
// depends on this interface so tests can substitute fixed results.
type Extractor interface {
	Extract(ctx context.Context, ticker string) types.SentimentResult
}

// Config tunes the noise filters of the extractor.
type Config struct {
	MaxItems        int           // cap on accepted items per ticker
	MinTitleLen     int           // reject shorter titles (runes)
	MaxOtherTickers int           // reject roundups naming more peers than this
	NoisePhrases    []string      // reject titles containing any of these
	SourcePause     time.Duration // courtesy pause between sources
}

// DefaultConfig returns the canonical extractor settings.
func DefaultConfig() Config {
	return Config{
		MaxItems:        6,
		MinTitleLen:     12,
		MaxOtherTickers: 2,
		NoisePhrases:    DefaultNoisePhrases(),
		SourcePause:     300 * time.Millisecond,
	}
}

// Service aggregates the configured sources, filters the listings down to
// ticker-specific items and scores them with the keyword vocabulary.
type Service struct {
	sources  []Source
	cfg      Config
	universe []string
}

// NewService creates an extractor over the default news sources.
func NewService(client *fetch.Client, cfg Config, universe []string) *Service {
	if cfg.MaxItems == 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		sources: []Source{
			newCNBCSource(5*time.Second, client.NextUserAgent),
			newCNNSource(client),
		},
		cfg:      cfg,
		universe: universe,
	}
}

// NewServiceWithSources creates an extractor over explicit sources.
func NewServiceWithSources(sources []Source, cfg Config, universe []string) *Service {
	return &Service{sources: sources, cfg: cfg, universe: universe}
}

// Extract fetches, filters and scores news for one ticker. It never returns
// an error: total retrieval failure yields the neutral default so sentiment
// absence cannot abort the pipeline.
func (s *Service) Extract(ctx context.Context, ticker string) types.SentimentResult {
	collected := []types.NewsItem{}
	for i, src := range s.sources {
		items, err := src.Fetch(ctx, ticker)
		if err != nil {
			logger.Warn(ctx, "News source failed", "source", src.Name(), "ticker", ticker, "error", err)
			continue
		}
		collected = append(collected, items...)

		if i < len(s.sources)-1 && s.cfg.SourcePause > 0 {
			select {
			case <-ctx.Done():
				return NeutralResult()
			case <-time.After(s.cfg.SourcePause):
			}
		}
	}

	accepted := s.filter(ticker, collected)
	if len(accepted) == 0 {
		return NeutralResult()
	}
	if len(accepted) > s.cfg.MaxItems {
		accepted = accepted[:s.cfg.MaxItems]
	}
	return s.score(accepted)
}

// filter applies the noise rules: dedupe by title, minimum length, noise
// phrases, roundup articles and passing mentions.
func (s *Service) filter(ticker string, items []types.NewsItem) []types.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]types.NewsItem, 0, len(items))
	for _, item := range items {
		norm := strings.ToLower(strings.TrimSpace(item.Title))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		if s.reject(ticker, norm) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Service) reject(ticker, title string) bool {
	if utf8.RuneCountInString(title) < s.cfg.MinTitleLen {
		return true
	}
	for _, phrase := range s.cfg.NoisePhrases {
		if strings.Contains(title, strings.ToLower(phrase)) {
			return true
		}
	}
	if s.countOtherTickers(ticker, title) > s.cfg.MaxOtherTickers {
		return true // roundup article, no per-ticker signal
	}
	return isPassingMention(ticker, title)
}

func (s *Service) countOtherTickers(ticker, title string) int {
	self := strings.ToLower(cleanTicker(ticker))
	count := 0
	for _, sym := range s.universe {
		code := strings.ToLower(cleanTicker(sym))
		if code == self || code == "" {
			continue
		}
		if containsWord(title, code) {
			count++
		}
	}
	return count
}

// isPassingMention reports whether the ticker only shows up in the trailing
// third of the title, which marks it as an aside rather than the subject.
func isPassingMention(ticker, title string) bool {
	code := strings.ToLower(cleanTicker(ticker))
	idx := strings.Index(title, code)
	if idx < 0 {
		return false
	}
	return idx >= len(title)*2/3
}

// containsWord matches a ticker code on word boundaries so "ANTM" does not
// fire inside "santai".
func containsWord(text, word string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		beforeOK := idx == 0 || !isAlnum(text[idx-1])
		afterOK := end == len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// score walks the accepted items and derives the bounded sentiment result.
func (s *Service) score(items []types.NewsItem) types.SentimentResult {
	total := 0
	buzzHits := 0
	for _, item := range items {
		title := strings.ToLower(item.Title)
		itemScore := 50

		for _, kw := range loadPositiveStrong() {
			if strings.Contains(title, kw) {
				itemScore += weightStrong
			}
		}
		for _, kw := range loadPositivePlain() {
			if strings.Contains(title, kw) {
				itemScore += weightPlain
			}
		}
		for _, kw := range loadPositiveMild() {
			if strings.Contains(title, kw) {
				itemScore += weightMild
			}
		}
		for _, kw := range loadNegativeStrong() {
			if strings.Contains(title, kw) {
				itemScore -= weightStrong
			}
		}
		for _, kw := range loadNegativePlain() {
			if strings.Contains(title, kw) {
				itemScore -= weightPlain
			}
		}
		for _, kw := range loadNegativeMild() {
			if strings.Contains(title, kw) {
				itemScore -= weightMild
			}
		}

		if isFresh(item.Published) {
			itemScore += weightMild
		}
		for _, kw := range loadBuzzWords() {
			if strings.Contains(title, kw) {
				buzzHits++
			}
		}
		total += itemScore
	}

	score := clamp(total/len(items), 0, 100)
	buzz := clamp(len(items)*10+buzzHits*15, 0, 95)
	label := labelFor(score)
	impact := impactFor(score)

	return types.SentimentResult{
		Label:      label,
		Score:      score,
		SocialBuzz: buzz,
		Impact:     impact,
		Headline:   items[0].Title,
		News:       items,
		Narrative:  narrative(len(items), label, score, impact),
	}
}

// isFresh reports whether a published label reads as same-day.
func isFresh(published string) bool {
	p := strings.ToLower(published)
	for _, marker := range loadFreshnessMarkers() {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}

func labelFor(score int) string {
	switch {
	case score >= 70:
		return "VERY POSITIVE"
	case score >= 55:
		return "POSITIVE"
	case score >= 45:
		return "NEUTRAL"
	case score >= 30:
		return "NEGATIVE"
	default:
		return "VERY NEGATIVE"
	}
}

func impactFor(score int) types.Impact {
	switch {
	case score >= 70 || score <= 30:
		return types.ImpactHigh
	case score >= 60 || score <= 40:
		return types.ImpactMedium
	default:
		return types.ImpactLow
	}
}

func narrative(count int, label string, score int, impact types.Impact) string {
	text := fmt.Sprintf("Analysis of %d recent headlines shows %s sentiment with a score of %d/100. ",
		count, strings.ToLower(label), score)
	switch impact {
	case types.ImpactHigh:
		text += "Expected impact on the share price over the next 1-3 sessions: HIGH."
	case types.ImpactMedium:
		text += "Expected impact on the share price: MEDIUM."
	default:
		text += "Expected impact on the share price: LOW."
	}
	return text
}

// NeutralResult is returned when no usable news item could be retrieved.
func NeutralResult() types.SentimentResult {
	return types.SentimentResult{
		Label:     "NEUTRAL",
		Score:     50,
		Impact:    types.ImpactLow,
		Headline:  "No recent news",
		News:      []types.NewsItem{},
		Narrative: "No news coverage available for analysis.",
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
