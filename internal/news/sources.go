package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"emitscan/internal/fetch"
	"emitscan/internal/types"
)

// Source fetches raw news listings for one ticker from one site. Each
// implementation owns its site-specific extraction rules; a failure in one
// source never aborts the others.
type Source interface {
	Name() string
	Fetch(ctx context.Context, ticker string) ([]types.NewsItem, error)
}

// perSourceLimit caps how many listing rows one site may contribute.
const perSourceLimit = 5

// cnbcSource scrapes the CNBC Indonesia search listing.
type cnbcSource struct {
	baseURL string
	timeout time.Duration
	agent   func() string
}

func newCNBCSource(timeout time.Duration, agent func() string) *cnbcSource {
	return &cnbcSource{
		baseURL: "https://www.cnbcindonesia.com",
		timeout: timeout,
		agent:   agent,
	}
}

func (s *cnbcSource) Name() string { return "CNBC Indonesia" }

func (s *cnbcSource) Fetch(ctx context.Context, ticker string) ([]types.NewsItem, error) {
	items := []types.NewsItem{}

	c := colly.NewCollector(
		colly.AllowedDomains(domainOf(s.baseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.agent())
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(items) >= perSourceLimit {
			return
		}
		title := strings.TrimSpace(e.ChildText("h2"))
		if title == "" {
			title = strings.TrimSpace(e.ChildText("h3"))
		}
		if title == "" {
			return
		}
		link := e.ChildAttr("a", "href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = s.baseURL + link
		}
		items = append(items, types.NewsItem{
			Title:     title,
			Source:    s.Name(),
			Link:      link,
			Published: strings.TrimSpace(e.ChildText("span.date")),
		})
	})

	var visitErr error
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	searchURL := fmt.Sprintf("%s/search?query=%s", s.baseURL, url.QueryEscape(cleanTicker(ticker)))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	if visitErr != nil && len(items) == 0 {
		return nil, fmt.Errorf("scrape of %s failed: %w", searchURL, visitErr)
	}
	return items, nil
}

// cnnSource parses the CNN Indonesia search page through the shared
// rate-limited client.
type cnnSource struct {
	baseURL string
	client  *fetch.Client
}

func newCNNSource(client *fetch.Client) *cnnSource {
	return &cnnSource{
		baseURL: "https://www.cnnindonesia.com",
		client:  client,
	}
}

func (s *cnnSource) Name() string { return "CNN Indonesia" }

func (s *cnnSource) Fetch(ctx context.Context, ticker string) ([]types.NewsItem, error) {
	searchURL := fmt.Sprintf("%s/search/?query=%s", s.baseURL, url.QueryEscape(cleanTicker(ticker)))
	resp, err := s.client.GET(ctx, searchURL, fetch.BrowserHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", searchURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", searchURL, err)
	}

	items := []types.NewsItem{}
	doc.Find("article").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find("h2").First().Text())
		if title == "" {
			title = strings.TrimSpace(sel.Find("h3").First().Text())
		}
		if title == "" {
			return true
		}
		link, _ := sel.Find("a").First().Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = s.baseURL + link
		}
		items = append(items, types.NewsItem{
			Title:     title,
			Source:    s.Name(),
			Link:      link,
			Published: strings.TrimSpace(sel.Find("span.date").First().Text()),
		})
		return len(items) < perSourceLimit
	})

	return items, nil
}

// cleanTicker strips the exchange suffix for search queries.
func cleanTicker(ticker string) string {
	if i := strings.IndexByte(ticker, '.'); i > 0 {
		return ticker[:i]
	}
	return ticker
}

func domainOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
