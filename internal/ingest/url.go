package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"deskrag/internal/apperr"
)

// Page is one crawled (url, text) pair, per spec.md §4.6 and §6's crawl
// contract.
type Page struct {
	URL  string
	Text string
}

// Crawler is the out-of-scope "crawl(url, max_depth, max_pages)" contract
// of spec.md §6, specified only by its shape so the coordinator can
// consume any implementation.
type Crawler interface {
	Crawl(ctx context.Context, startURL string, maxDepth, maxPages int) ([]Page, error)
}

// IngestURL implements spec.md §4.6's ingest_url variant: crawl the given
// URL, then run IngestText once per page with title = page_url.
func (c *Coordinator) IngestURL(ctx context.Context, crawler Crawler, startURL string, maxDepth, maxPages int) (Result, error) {
	if _, err := url.ParseRequestURI(startURL); err != nil {
		return Result{}, apperr.BadInput("ingest.IngestURL", fmt.Errorf("malformed url %q: %w", startURL, err))
	}

	pages, err := crawler.Crawl(ctx, startURL, maxDepth, maxPages)
	if err != nil {
		return Result{}, apperr.BadInput("ingest.IngestURL", err)
	}

	var agg Result
	start := time.Now()
	for _, page := range pages {
		r, err := c.IngestText(ctx, page.URL, page.Text)
		if err != nil {
			return Result{}, err
		}
		agg.DocID = r.DocID // last document wins; per-page doc_ids are the authoritative ids
		agg.Chunks += r.Chunks
		agg.Entities += r.Entities
		agg.VectorCount += r.VectorCount
	}
	agg.Pages = len(pages)
	agg.Ms = time.Since(start).Milliseconds()
	return agg, nil
}

// readabilityCrawler is the concrete default crawler, grounded on the
// teacher's use of go-shiori/go-readability, html-to-markdown/v2, and
// chromedp: pages are fetched over HTTP, or rendered via chromedp instead
// when JS rendering is requested, and extracted with readability.
// Deduplicates by exact URL string (links are resolved against the page
// URL); robots.txt is not consulted, and only maxPages/maxDepth bound the
// crawl.
type readabilityCrawler struct {
	client       *http.Client
	renderJS     bool
	chromeCtx    context.Context
	chromeCancel context.CancelFunc
}

// NewReadabilityCrawler constructs the default crawler. When renderJS is
// true, every page is fetched by rendering it in a headless Chrome instance
// via chromedp instead of a plain HTTP GET.
func NewReadabilityCrawler(renderJS bool) Crawler {
	c := &readabilityCrawler{client: &http.Client{Timeout: 20 * time.Second}, renderJS: renderJS}
	if renderJS {
		ctx, cancel := chromedp.NewContext(context.Background())
		c.chromeCtx, c.chromeCancel = ctx, cancel
	}
	return c
}

func (c *readabilityCrawler) Close() error {
	if c.chromeCancel != nil {
		c.chromeCancel()
	}
	return nil
}

func (c *readabilityCrawler) Crawl(ctx context.Context, startURL string, maxDepth, maxPages int) ([]Page, error) {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	type queued struct {
		url   string
		depth int
	}

	visited := map[string]bool{}
	queue := []queued{{url: startURL, depth: 0}}
	var pages []Page

	for len(queue) > 0 && len(pages) < maxPages {
		item := queue[0]
		queue = queue[1:]
		if visited[item.url] {
			continue
		}
		visited[item.url] = true

		rawHTML, links, err := c.fetch(ctx, item.url)
		if err != nil {
			continue // crawler yields deduplicated, reachable pages; unreachable ones are skipped
		}

		text, err := c.extract(item.url, rawHTML)
		if err == nil && strings.TrimSpace(text) != "" {
			pages = append(pages, Page{URL: item.url, Text: text})
		}

		if item.depth < maxDepth-1 {
			for _, link := range links {
				if !visited[link] {
					queue = append(queue, queued{url: link, depth: item.depth + 1})
				}
			}
		}
	}

	return pages, nil
}

func (c *readabilityCrawler) fetch(ctx context.Context, target string) (string, []string, error) {
	var body string
	if c.renderJS {
		var rendered string
		if err := chromedp.Run(c.chromeCtx,
			chromedp.Navigate(target),
			chromedp.OuterHTML("html", &rendered),
		); err != nil {
			return "", nil, err
		}
		body = rendered
	} else {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return "", nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return "", nil, fmt.Errorf("fetch %s: status %s", target, resp.Status)
		}
		doc, err := html.Parse(resp.Body)
		if err != nil {
			return "", nil, err
		}
		var buf strings.Builder
		_ = html.Render(&buf, doc)
		body = buf.String()
	}
	return body, extractLinks(target, body), nil
}

func (c *readabilityCrawler) extract(pageURL, rawHTML string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return "", err
	}
	text, err := md.ConvertString(article.Content)
	if err != nil {
		return article.TextContent, nil
	}
	return text, nil
}

func extractLinks(base, rawHTML string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					if resolved, err := baseURL.Parse(attr.Val); err == nil {
						links = append(links, resolved.String())
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}
