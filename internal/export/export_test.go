package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSummarizeDay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EMITSCAN_LOG_DIR", dir)

	day := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	lines := []string{
		`{"time":"2025-06-02 09:15:00","ticker":"BBCA.JK","status":"WHALE_ACCUMULATION","trend":"UP","price":9150,"volume_ratio":2.9,"rsi":66.7,"sentiment_score":80}`,
		`{"time":"2025-06-02 10:30:00","ticker":"BBCA.JK","status":"WATCHLIST","trend":"UP","price":9200,"volume_ratio":1.8,"rsi":64.1,"sentiment_score":60}`,
		`{"time":"2025-06-02 09:15:00","ticker":"TLKM.JK","status":"HOLD","trend":"SIDEWAYS","price":3100,"volume_ratio":1.0,"rsi":50,"sentiment_score":50}`,
		`not json at all`,
	}
	logFile := filepath.Join(dir, day.Format("2006-01-02")+".txt")
	if err := os.WriteFile(logFile, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	outPath, err := SummarizeDay(day)
	if err != nil {
		t.Fatalf("SummarizeDay failed: %v", err)
	}
	if outPath == "" {
		t.Fatal("Expected a summary path")
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + BBCA + TLKM + TOTAL
	if len(records) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(records))
	}
	bbca := records[1]
	if bbca[0] != "BBCA.JK" || bbca[1] != "2" || bbca[2] != "1" {
		t.Errorf("Unexpected BBCA row: %v", bbca)
	}
	if bbca[3] != "WATCHLIST" {
		t.Errorf("Expected last status WATCHLIST, got %s", bbca[3])
	}
	if bbca[6] != "2.90" {
		t.Errorf("Expected peak volume ratio 2.90, got %s", bbca[6])
	}
	total := records[3]
	if total[0] != "TOTAL" || total[1] != "3" || total[2] != "1" {
		t.Errorf("Unexpected TOTAL row: %v", total)
	}
}

func TestSummarizeDayNoLog(t *testing.T) {
	t.Setenv("EMITSCAN_LOG_DIR", t.TempDir())
	outPath, err := SummarizeDay(time.Now())
	if err != nil {
		t.Fatalf("Expected no error for an empty day, got %v", err)
	}
	if outPath != "" {
		t.Errorf("Expected empty path, got %s", outPath)
	}
}
