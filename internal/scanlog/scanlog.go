package scanlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"emitscan/internal/types"
)

var mu sync.Mutex

// Entry is one screening verdict, appended to the daily log so runs can be
// audited after the cache has expired.
type Entry struct {
	Time           string         `json:"time"`
	Ticker         string         `json:"ticker"`
	Status         string         `json:"status"`
	Trend          string         `json:"trend"`
	Price          float64        `json:"price"`
	ChangePct      float64        `json:"change_pct"`
	VolumeRatio    float64        `json:"volume_ratio"`
	RSI            float64        `json:"rsi"`
	SentimentScore int            `json:"sentiment_score"`
	Extra          map[string]any `json:"extra,omitempty"`
}

func logDir() string {
	if v := os.Getenv("EMITSCAN_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// wibNow is the exchange-local clock (WIB, UTC+7).
func wibNow() time.Time { return time.Now().In(time.FixedZone("WIB", 25200)) }

func dailyFilepath(t time.Time) string {
	d := t.Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

// Append writes one verdict line to today's log.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := wibNow()
	e.Time = now.Format("2006-01-02 15:04:05")
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// AppendResults logs every verdict of one completed scan.
func AppendResults(results []types.AnalysisResult) error {
	for _, r := range results {
		e := Entry{
			Ticker:         r.Ticker,
			Status:         string(r.Status),
			Trend:          string(r.Trend),
			Price:          r.Price,
			ChangePct:      r.ChangePct,
			VolumeRatio:    r.VolumeRatio,
			RSI:            r.RSI,
			SentimentScore: r.SentimentScore,
		}
		if err := Append(e); err != nil {
			return err
		}
	}
	return nil
}

// CompressOlder gzips log files older than the retention window.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			// if already gz exists, remove original .txt
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
