package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// verdictLine mirrors the scanlog entry shape this package aggregates.
type verdictLine struct {
	Time           string
	Ticker         string
	Status         string
	Trend          string
	Price          float64
	ChangePct      float64 `json:"change_pct"`
	VolumeRatio    float64 `json:"volume_ratio"`
	RSI            float64
	SentimentScore int `json:"sentiment_score"`
}

type aggRow struct {
	Ticker      string
	Scans       int
	BuySignals  int
	LastStatus  string
	LastTrend   string
	LastPrice   float64
	PeakVolume  float64
	LastRSI     float64
	LastScore   int
	LastScanned string
}

func logDir() string {
	if v := os.Getenv("EMITSCAN_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func wibNow() time.Time { return time.Now().In(time.FixedZone("WIB", 25200)) }

func todaysVerdictFile(t time.Time) string {
	d := t.Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func summaryCSVPath(t time.Time) string {
	d := t.Format("2006-01-02")
	return filepath.Join(logDir(), "summary", d+".csv")
}

func isBuyStatus(s string) bool {
	return s == "STRONG_BUY" || s == "WHALE_ACCUMULATION" || s == "BIG_PLAYER_ENTRY"
}

// SummarizeDay folds the day's verdict log into one CSV row per ticker:
// how often it was scanned, how often it fired a buy-class signal, and its
// latest snapshot. Returns "" without error when there is nothing to fold.
func SummarizeDay(t time.Time) (string, error) {
	inPath := todaysVerdictFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var vl verdictLine
		if err := json.Unmarshal(sc.Bytes(), &vl); err != nil {
			continue
		}
		row := aggs[vl.Ticker]
		if row == nil {
			row = &aggRow{Ticker: vl.Ticker}
			aggs[vl.Ticker] = row
		}
		row.Scans++
		if isBuyStatus(vl.Status) {
			row.BuySignals++
		}
		row.LastStatus = vl.Status
		row.LastTrend = vl.Trend
		row.LastPrice = vl.Price
		row.LastRSI = vl.RSI
		row.LastScore = vl.SentimentScore
		row.LastScanned = vl.Time
		if vl.VolumeRatio > row.PeakVolume {
			row.PeakVolume = vl.VolumeRatio
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := summaryCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	headers := []string{"ticker", "scans", "buy_signals", "last_status", "last_trend", "last_price", "peak_volume_ratio", "last_rsi", "last_sentiment", "last_scanned"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	var totalScans, totalBuys int
	for _, k := range keys {
		r := aggs[k]
		rec := []string{
			r.Ticker,
			strconv.Itoa(r.Scans),
			strconv.Itoa(r.BuySignals),
			r.LastStatus,
			r.LastTrend,
			fmt.Sprintf("%.2f", r.LastPrice),
			fmt.Sprintf("%.2f", r.PeakVolume),
			fmt.Sprintf("%.1f", r.LastRSI),
			strconv.Itoa(r.LastScore),
			r.LastScanned,
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalScans += r.Scans
		totalBuys += r.BuySignals
	}
	_ = w.Write([]string{"TOTAL", strconv.Itoa(totalScans), strconv.Itoa(totalBuys), "", "", "", "", "", "", ""})
	return outPath, nil
}

// SummarizeToday summarizes the current exchange-local day.
func SummarizeToday() (string, error) { return SummarizeDay(wibNow()) }
