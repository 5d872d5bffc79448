package webSearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"golang.org/x/net/html"
)

// Engine scrapes one search engine's HTML result page.
type Engine interface {
	Name() string
	Search(ctx context.Context, client *http.Client, query string, limit int) ([]commonModels.SearchResult, error)
}

type hit struct {
	title   string
	link    string
	snippet string
}

type DuckDuckGo struct {
	BaseURL string
}

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{BaseURL: config.DuckDuckGoBaseURL}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, client *http.Client, query string, limit int) ([]commonModels.SearchResult, error) {
	doc, err := fetch(ctx, client, d.BaseURL+"/html/?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var hits []hit
	containers := findAll(doc, func(n *html.Node) bool { return isElement(n, "div") && hasClass(n, "result") })
	for _, c := range containers {
		if len(hits) >= limit {
			break
		}
		a := findFirst(c, func(n *html.Node) bool { return isElement(n, "a") && hasClass(n, "result__a") })
		if a == nil {
			continue
		}
		snippet := findFirst(c, func(n *html.Node) bool { return hasClass(n, "result__snippet") })
		if snippet == nil {
			continue
		}
		hits = append(hits, hit{title: textContent(a), link: attr(a, "href"), snippet: textContent(snippet)})
	}
	return toResults(hits, d.Name(), query, 0), nil
}

type Bing struct {
	BaseURL string
}

func NewBing() *Bing {
	return &Bing{BaseURL: config.BingBaseURL}
}

func (b *Bing) Name() string { return "bing" }

// Bing ranks continue after the first engine's page of ten.
const bingRankOffset = 10

func (b *Bing) Search(ctx context.Context, client *http.Client, query string, limit int) ([]commonModels.SearchResult, error) {
	doc, err := fetch(ctx, client, b.BaseURL+"/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var hits []hit
	containers := findAll(doc, func(n *html.Node) bool { return isElement(n, "li") && hasClass(n, "b_algo") })
	for _, c := range containers {
		if len(hits) >= limit {
			break
		}
		h2 := findFirst(c, func(n *html.Node) bool { return isElement(n, "h2") })
		if h2 == nil {
			continue
		}
		a := findFirst(h2, func(n *html.Node) bool { return isElement(n, "a") })
		if a == nil {
			continue
		}
		caption := findFirst(c, func(n *html.Node) bool { return isElement(n, "div") && hasClass(n, "b_caption") })
		if caption == nil {
			continue
		}
		snippet := textContent(caption)
		if p := findFirst(caption, func(n *html.Node) bool { return isElement(n, "p") }); p != nil {
			snippet = textContent(p)
		}
		hits = append(hits, hit{title: textContent(a), link: attr(a, "href"), snippet: snippet})
	}
	return toResults(hits, b.Name(), query, bingRankOffset), nil
}

func fetch(ctx context.Context, client *http.Client, target string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.WebSearchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrSearchStatus, resp.StatusCode)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}
	return doc, nil
}

func toResults(hits []hit, engine, query string, rankOffset int) []commonModels.SearchResult {
	results := make([]commonModels.SearchResult, 0, len(hits))
	for i, h := range hits {
		results = append(results, commonModels.SearchResult{
			Content: strings.TrimSpace(h.title + "\n" + h.snippet),
			Source:  h.link,
			Score:   positionScore(i),
			Metadata: map[string]any{
				"title":         h.title,
				"snippet":       h.snippet,
				"search_engine": engine,
				"search_query":  query,
			},
			SourceType: commonModels.SourceWeb,
			Rank:       rankOffset + i + 1,
		})
	}
	return results
}

func positionScore(i int) float64 {
	return max(0, 1.0-0.1*float64(i))
}
