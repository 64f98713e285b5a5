package fetch

import (
	"errors"
	"testing"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1700000000, 1700086400, 1700172800],
      "indicators": {
        "quote": [{
          "open":   [100.0, 102.0, null],
          "high":   [105.0, 106.0, null],
          "low":    [99.0, 101.0, null],
          "close":  [102.0, 104.0, null],
          "volume": [1000000.0, 2500000.0, null]
        }]
      }
    }],
    "error": null
  }
}`

func TestParseChart(t *testing.T) {
	candles, err := parseChart([]byte(chartFixture))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("Expected 2 usable bars (null bar skipped), got %d", len(candles))
	}
	if candles[0].Close != 102.0 || candles[0].Vol != 1000000.0 {
		t.Errorf("Unexpected first candle: %+v", candles[0])
	}
	if candles[1].Ts != 1700086400 {
		t.Errorf("Expected second timestamp 1700086400, got %d", candles[1].Ts)
	}
}

func TestParseChartErrorPayload(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found"}}}`
	if _, err := parseChart([]byte(body)); err == nil {
		t.Error("Expected error for chart error payload")
	}
}

func TestParseChartAllNull(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"close":[null],"volume":[null]}]}}]}}`
	if _, err := parseChart([]byte(body)); err == nil {
		t.Error("Expected error when every bar is null")
	}
}

const quoteSummaryFixture = `{
  "quoteSummary": {
    "result": [{
      "defaultKeyStatistics": {"priceToBook": {"raw": 0.85, "fmt": "0.85"}},
      "financialData": {
        "returnOnEquity": {"raw": 0.18, "fmt": "18.00%"},
        "debtToEquity": {"raw": 45.2, "fmt": "45.20"},
        "operatingCashflow": {"raw": 1.2e12},
        "freeCashflow": {"raw": 8.0e11}
      },
      "price": {"longName": "PT Bank Example Tbk"}
    }]
  }
}`

func TestParseQuoteSummary(t *testing.T) {
	f, err := parseQuoteSummary([]byte(quoteSummaryFixture))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if f.PriceToBook != 0.85 {
		t.Errorf("Expected PBV 0.85, got %f", f.PriceToBook)
	}
	if f.ReturnOnEquity != 0.18 {
		t.Errorf("Expected ROE 0.18, got %f", f.ReturnOnEquity)
	}
	if f.LongName != "PT Bank Example Tbk" {
		t.Errorf("Unexpected long name %q", f.LongName)
	}
}

func TestParseQuoteSummaryMissingFields(t *testing.T) {
	body := `{"quoteSummary":{"result":[{"price":{"longName":"PT X"}}]}}`
	f, err := parseQuoteSummary([]byte(body))
	if err != nil {
		t.Fatalf("Expected no error for sparse payload, got %v", err)
	}
	if f.PriceToBook != 0 {
		t.Errorf("Expected unknown PBV sentinel 0, got %f", f.PriceToBook)
	}
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("boom")
	err := NewError(KindParse, "history", "BBCA.JK", base)

	if KindOf(err) != KindParse {
		t.Errorf("Expected parse kind, got %v", KindOf(err))
	}
	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to unwrap")
	}
	if KindOf(errors.New("untyped")) != KindTransient {
		t.Error("Expected untyped errors to default to transient")
	}
	if !IsInsufficientData(NewError(KindInsufficientData, "phase1", "X", base)) {
		t.Error("Expected insufficient-data detection")
	}
}
