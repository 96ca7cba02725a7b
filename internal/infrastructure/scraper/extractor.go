package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/buybuddy/backend/internal/domain"
	"github.com/doyensec/safeurl"
	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxBodySize = 5 << 20 // 5 MiB
	defaultUserAgent   = "BuyBuddy/1.0 (+https://buybuddy.app)"
	maxImages          = 10
)

// Config holds extractor configuration.
type Config struct {
	Timeout     time.Duration
	MaxBodySize int64
	UserAgent   string
}

// Extractor is the generic, vendor-agnostic ContentExtractor implementation.
// It fetches the page over an SSRF-guarded HTTP client and parses JSON-LD
// product markup first, falling back to Open Graph and plain HTML heuristics.
type Extractor struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
	cfg       Config
}

// New creates an extractor with an SSRF-guarded HTTP client. The safeurl
// client validates resolved IPs at dial time, so private, loopback, and
// metadata addresses are rejected even through DNS rebinding.
func New(cfg Config) *Extractor {
	applyDefaults(&cfg)

	safeConfig := safeurl.GetConfigBuilder().
		SetTimeout(cfg.Timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return NewWithClient(safeurl.Client(safeConfig).Client, cfg)
}

// NewWithClient creates an extractor using the given HTTP client. Used by
// tests and by callers that need a custom transport.
func NewWithClient(client *http.Client, cfg Config) *Extractor {
	applyDefaults(&cfg)
	return &Extractor{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
}

// Extract fetches the product page and parses it into a RawExtraction.
// Missing optional fields degrade to neutral defaults; the extraction fails
// only when neither a title nor a price can be located. No retries: retry
// policy belongs to the caller.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*domain.RawExtraction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", domain.ErrPageBlocked, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", domain.ErrExtractionFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.cfg.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", domain.ErrExtractionFailed, err)
	}

	extraction := e.parse(doc, pageURL)
	if extraction.Title == "" && extraction.Price.Amount == 0 {
		return nil, fmt.Errorf("%w: no title or price on page", domain.ErrExtractionFailed)
	}

	return extraction, nil
}

// classifyTransportError maps fetch failures onto the extraction error kinds:
// deadline overruns become ErrExtractionTimeout, everything else (refused
// connections, DNS failures, SSRF-blocked dials) becomes ErrPageBlocked.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrPageBlocked, err)
}

// parse merges JSON-LD, Open Graph, and heuristic HTML sources. JSON-LD wins
// per field; later sources only fill gaps.
func (e *Extractor) parse(doc *goquery.Document, pageURL string) *domain.RawExtraction {
	extraction := &domain.RawExtraction{
		SourceURL: pageURL,
		Images:    []string{},
	}

	if ld := parseJSONLD(doc); ld != nil {
		mergeExtraction(extraction, ld)
	}
	mergeExtraction(extraction, e.parseOpenGraph(doc))
	mergeExtraction(extraction, e.parseHTMLFallback(doc))

	extraction.Title = strings.TrimSpace(e.sanitizer.Sanitize(extraction.Title))
	extraction.Description = strings.TrimSpace(e.sanitizer.Sanitize(extraction.Description))
	extraction.Images = normalizeImages(extraction.Images, pageURL)

	return extraction
}

// mergeExtraction fills empty fields of dst from src.
func mergeExtraction(dst, src *domain.RawExtraction) {
	if src == nil {
		return
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Price.Amount == 0 && src.Price.Amount > 0 {
		dst.Price = src.Price
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if len(dst.Images) == 0 {
		dst.Images = src.Images
	}
	if dst.Rating == nil {
		dst.Rating = src.Rating
	}
}

// parseOpenGraph reads og: and product: meta properties.
func (e *Extractor) parseOpenGraph(doc *goquery.Document) *domain.RawExtraction {
	extraction := &domain.RawExtraction{}

	meta := func(property string) string {
		value, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
		return strings.TrimSpace(value)
	}

	extraction.Title = meta("og:title")
	extraction.Description = meta("og:description")
	if image := meta("og:image"); image != "" {
		extraction.Images = []string{image}
	}
	if amount := parsePriceAmount(meta("product:price:amount")); amount > 0 {
		extraction.Price = domain.Price{
			Amount:   amount,
			Currency: meta("product:price:currency"),
		}
	}

	return extraction
}

// parseHTMLFallback scrapes plain HTML as a last resort: document title,
// first h1, meta description, and elements with price-looking class names.
func (e *Extractor) parseHTMLFallback(doc *goquery.Document) *domain.RawExtraction {
	extraction := &domain.RawExtraction{}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		extraction.Title = h1
	} else {
		extraction.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		extraction.Description = strings.TrimSpace(desc)
	}

	doc.Find(`[class*="price"], [itemprop="price"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidate := s.AttrOr("content", s.Text())
		if amount := parsePriceAmount(candidate); amount > 0 {
			extraction.Price = domain.Price{Amount: amount, Currency: currencyFromText(candidate)}
			return false
		}
		return true
	})

	return extraction
}

// normalizeImages resolves relative URLs against the page URL, drops
// non-http(s) entries, and deduplicates while preserving order.
func normalizeImages(images []string, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool, len(images))
	normalized := []string{}
	for _, raw := range images {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if base != nil {
			parsed = base.ResolveReference(parsed)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		resolved := parsed.String()
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		normalized = append(normalized, resolved)
		if len(normalized) == maxImages {
			break
		}
	}
	return normalized
}

// parsePriceAmount pulls a decimal amount out of price text like "$19.99",
// "19,99 €", or "1,299.00". Returns 0 when no amount is present.
func parsePriceAmount(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	// Treat a trailing comma group as a decimal separator ("19,99"), and
	// commas followed by three digits as thousands separators ("1,299.00").
	if idx := strings.LastIndex(cleaned, ","); idx != -1 {
		if strings.Contains(cleaned, ".") || len(cleaned)-idx-1 == 3 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned[:idx], ",", "") + "." + cleaned[idx+1:]
		}
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

// currencySymbols maps common price symbols to ISO codes.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

// currencyFromText guesses a currency code from symbols or codes embedded in
// price text. Returns "" when nothing recognizable is present.
func currencyFromText(text string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(text, symbol) {
			return code
		}
	}
	upper := strings.ToUpper(text)
	for _, code := range []string{"USD", "EUR", "GBP", "JPY", "INR", "CAD", "AUD"} {
		if strings.Contains(upper, code) {
			return code
		}
	}
	return ""
}
