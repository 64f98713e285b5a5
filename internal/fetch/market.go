package fetch

import (
	"context"
	"errors"
	"fmt"

	"emitscan/internal/types"
)

// MarketData supplies the price history and fundamentals for one ticker.
// The screening pipeline only talks to this interface so tests can
// substitute fixed data.
type MarketData interface {
	History(ctx context.Context, ticker string) ([]types.Candle, error)
	Fundamentals(ctx context.Context, ticker string) (types.Fundamentals, error)
}

// YahooProvider fetches daily candles and key statistics from the Yahoo
// Finance JSON endpoints (the same source the original deployment used).
type YahooProvider struct {
	client  *Client
	baseURL string
	rng     string // chart lookback window
}

// NewYahooProvider creates a provider with a three-month lookback, enough
// bars for the longest moving average downstream.
func NewYahooProvider(client *Client) *YahooProvider {
	return &YahooProvider{
		client:  client,
		baseURL: "https://query1.finance.yahoo.com",
		rng:     "3mo",
	}
}

// History fetches the daily candle series for a ticker.
func (p *YahooProvider) History(ctx context.Context, ticker string) ([]types.Candle, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", p.baseURL, ticker, p.rng)
	resp, err := p.client.GETWithRetry(ctx, url, nil, MarketHeaders())
	if err != nil {
		return nil, NewError(KindTransient, "history", ticker, err)
	}

	candles, err := parseChart(resp.Body)
	if err != nil {
		return nil, NewError(KindParse, "history", ticker, err)
	}
	return candles, nil
}

// Fundamentals fetches a best-effort snapshot of valuation ratios. Missing
// fields stay at their zero value; only a fully failed request is an error.
func (p *YahooProvider) Fundamentals(ctx context.Context, ticker string) (types.Fundamentals, error) {
	url := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics,financialData,price",
		p.baseURL, ticker)
	resp, err := p.client.GETWithRetry(ctx, url, nil, MarketHeaders())
	if err != nil {
		return types.Fundamentals{}, NewError(KindTransient, "fundamentals", ticker, err)
	}

	f, err := parseQuoteSummary(resp.Body)
	if err != nil {
		return types.Fundamentals{}, NewError(KindParse, "fundamentals", ticker, err)
	}
	return f, nil
}

// rawValue is Yahoo's {raw, fmt} number wrapper.
type rawValue struct {
	Raw float64 `json:"raw"`
}

func parseChart(body []byte) ([]types.Candle, error) {
	var data struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open   []*float64 `json:"open"`
						High   []*float64 `json:"high"`
						Low    []*float64 `json:"low"`
						Close  []*float64 `json:"close"`
						Volume []*float64 `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code string `json:"code"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := (&Response{Body: body}).ParseJSON(&data); err != nil {
		return nil, err
	}
	if data.Chart.Error != nil {
		return nil, fmt.Errorf("chart error: %s", data.Chart.Error.Code)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("empty chart result")
	}

	res := data.Chart.Result[0]
	quote := res.Indicators.Quote[0]
	candles := make([]types.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		// Halted sessions come through as nulls; skip the whole bar.
		if i >= len(quote.Close) || quote.Close[i] == nil ||
			i >= len(quote.Volume) || quote.Volume[i] == nil {
			continue
		}
		c := types.Candle{Ts: ts, Close: *quote.Close[i], Vol: *quote.Volume[i]}
		if i < len(quote.Open) && quote.Open[i] != nil {
			c.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			c.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			c.Low = *quote.Low[i]
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, errors.New("no usable bars in chart result")
	}
	return candles, nil
}

func parseQuoteSummary(body []byte) (types.Fundamentals, error) {
	var data struct {
		QuoteSummary struct {
			Result []struct {
				DefaultKeyStatistics struct {
					PriceToBook rawValue `json:"priceToBook"`
				} `json:"defaultKeyStatistics"`
				FinancialData struct {
					ReturnOnEquity    rawValue `json:"returnOnEquity"`
					DebtToEquity      rawValue `json:"debtToEquity"`
					OperatingCashflow rawValue `json:"operatingCashflow"`
					FreeCashflow      rawValue `json:"freeCashflow"`
				} `json:"financialData"`
				Price struct {
					LongName string `json:"longName"`
				} `json:"price"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := (&Response{Body: body}).ParseJSON(&data); err != nil {
		return types.Fundamentals{}, err
	}
	if len(data.QuoteSummary.Result) == 0 {
		return types.Fundamentals{}, errors.New("empty quote summary result")
	}

	r := data.QuoteSummary.Result[0]
	return types.Fundamentals{
		PriceToBook:       r.DefaultKeyStatistics.PriceToBook.Raw,
		ReturnOnEquity:    r.FinancialData.ReturnOnEquity.Raw,
		DebtToEquity:      r.FinancialData.DebtToEquity.Raw,
		OperatingCashFlow: r.FinancialData.OperatingCashflow.Raw,
		FreeCashFlow:      r.FinancialData.FreeCashflow.Raw,
		LongName:          r.Price.LongName,
	}, nil
}
