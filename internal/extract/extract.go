package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"headliner/internal/core"
	"headliner/internal/logger"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// NoHeadline is the sentinel headline used when a parsed document has
// no usable title.
const NoHeadline = "No headline available"

const (
	userAgent   = "Headliner/1.0"
	maxBodySize = 10 << 20 // 10 MiB cap on fetched documents
)

// FetchError indicates that an article document could not be
// downloaded or parsed. It is a per-URL error, non-fatal to a batch.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch article %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Extractor fetches article documents and extracts cleaned body text,
// a headline, a best-effort publication date, and a normalized source.
type Extractor struct {
	client *http.Client
	now    func() time.Time
	log    *slog.Logger
}

// New creates an Extractor with the given fetch timeout.
func New(timeout time.Duration) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
		log:    logger.Get(),
	}
}

// Extract downloads and parses the document at rawURL and returns its
// metadata. The returned PublicationDate is always populated: the date
// resolution falls through a strategy chain that ends at the current
// processing date.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (core.ArticleMetadata, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return core.ArticleMetadata{}, &FetchError{URL: rawURL, Err: err}
	}

	body, err := e.download(ctx, rawURL)
	if err != nil {
		return core.ArticleMetadata{}, &FetchError{URL: rawURL, Err: err}
	}

	meta, err := e.parse(body, pageURL)
	if err != nil {
		return core.ArticleMetadata{}, &FetchError{URL: rawURL, Err: err}
	}

	return meta, nil
}

// download fetches the raw document bytes.
func (e *Extractor) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// parse turns a fetched document into ArticleMetadata.
func (e *Extractor) parse(body []byte, pageURL *url.URL) (core.ArticleMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return core.ArticleMetadata{}, fmt.Errorf("failed to parse document: %w", err)
	}

	article, readErr := readability.FromReader(bytes.NewReader(body), pageURL)
	text := ""
	if readErr == nil {
		text = strings.TrimSpace(article.TextContent)
	}
	if text == "" {
		// Readability bails on pages without a recognizable article
		// body; fall back to paragraph-level text extraction.
		text = extractParagraphText(doc)
	}
	if text == "" {
		return core.ArticleMetadata{}, fmt.Errorf("no article text extracted")
	}

	headline := extractHeadline(doc)
	if headline == "" && readErr == nil {
		headline = strings.TrimSpace(article.Title)
	}
	if headline == "" {
		headline = NoHeadline
	}

	var published *time.Time
	if readErr == nil {
		published = article.PublishedTime
	}

	date, ok := e.resolveDate(published, doc, text)
	if !ok {
		e.log.Warn("could not extract publication date, using current date", "url", pageURL.String())
	}

	return core.ArticleMetadata{
		URL:             pageURL.String(),
		Text:            text,
		Headline:        headline,
		PublicationDate: date,
		Source:          normalizeSource(pageURL.Hostname()),
	}, nil
}

// extractHeadline tries the usual title carriers in order.
func extractHeadline(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content"); strings.TrimSpace(ogTitle) != "" {
		return strings.TrimSpace(ogTitle)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// extractParagraphText collects text from content-bearing elements.
func extractParagraphText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	var b strings.Builder
	doc.Find("p, h1, h2, h3, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			b.WriteString(t)
			b.WriteString("\n\n")
		}
	})
	return strings.TrimSpace(b.String())
}

// normalizeSource derives the source identity from a URL host: strip a
// leading "www." and collapse multi-label subdomains to the last two
// labels ("news.ithacavoice.com" -> "ithacavoice.com"). Multi-label
// public suffixes are mis-collapsed by this scheme ("co.uk"); kept as
// is so stored Source identities stay stable.
func normalizeSource(host string) string {
	source := strings.TrimPrefix(host, "www.")
	if strings.Count(source, ".") > 1 {
		parts := strings.Split(source, ".")
		source = strings.Join(parts[len(parts)-2:], ".")
	}
	return source
}
