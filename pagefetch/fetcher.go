// Package pagefetch downloads public pages for competitor metadata and URL-based audits.
package pagefetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"seo_strategist/generator"
)

// FetchError reports a page that could not be downloaded or read.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options configure a Fetcher. Zero values fall back to defaults.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	Client    *http.Client
}

// Fetcher downloads HTML pages with a size cap.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	converter *md.Converter
	logger    *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Fetcher{
		client:    client,
		maxBytes:  maxBytes,
		userAgent: opts.UserAgent,
		converter: converter,
		logger:    logger,
	}
}

// get returns the body of an HTML page at rawURL.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, *url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, nil, &FetchError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, &FetchError{URL: rawURL, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &FetchError{URL: rawURL, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, nil, &FetchError{URL: rawURL, Err: fmt.Errorf("content type %q is not HTML", ct)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, nil, &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, nil, &FetchError{URL: rawURL, Err: fmt.Errorf("page larger than %d bytes", f.maxBytes)}
	}
	f.logger.Debug("fetched page", zap.String("url", rawURL), zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))
	return body, resp.Request.URL, nil
}

// Inspect reads the title, meta description and first H1 of a page.
func (f *Fetcher) Inspect(ctx context.Context, rawURL string) (generator.CompetitorPage, error) {
	body, _, err := f.get(ctx, rawURL)
	if err != nil {
		return generator.CompetitorPage{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return generator.CompetitorPage{}, &FetchError{URL: rawURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}

	description := strings.TrimSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	if description == "" {
		description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).First().AttrOr("content", ""))
	}
	return generator.CompetitorPage{
		URL:             rawURL,
		Title:           collapse(doc.Find("head title").First().Text()),
		MetaDescription: description,
		H1:              collapse(doc.Find("h1").First().Text()),
	}, nil
}

// Article is the main content of a page as Markdown.
type Article struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// Article extracts the readable main content of a page and converts it to Markdown.
func (f *Fetcher) Article(ctx context.Context, rawURL string) (Article, error) {
	body, finalURL, err := f.get(ctx, rawURL)
	if err != nil {
		return Article{}, err
	}
	parser := readability.NewParser()
	parsed, err := parser.Parse(bytes.NewReader(body), finalURL)
	if err != nil {
		return Article{}, &FetchError{URL: rawURL, Err: fmt.Errorf("extract article: %w", err)}
	}
	markdown, err := f.converter.ConvertString(parsed.Content)
	if err != nil {
		return Article{}, &FetchError{URL: rawURL, Err: fmt.Errorf("convert article: %w", err)}
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return Article{}, &FetchError{URL: rawURL, Err: fmt.Errorf("no readable content")}
	}
	return Article{URL: rawURL, Title: collapse(parsed.Title), Markdown: markdown}, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
