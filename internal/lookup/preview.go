package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	gocache "github.com/patrickmn/go-cache"

	"sublookup/internal/httputil"
	"sublookup/internal/logging"
)

const (
	previewTTL     = 10 * time.Minute
	previewCleanup = 30 * time.Minute
	maxPageSize    = 5 * 1024 * 1024
)

// Previewer fetches the lookup page itself and pulls a few translations out
// of it, so the terminal can show them next to the subtitle.
type Previewer struct {
	client   *http.Client
	template string
	selector string
	limit    int
	header   http.Header
	cache    *gocache.Cache
	logger   *slog.Logger
}

// NewPreviewer returns a previewer. An empty selector disables previews.
func NewPreviewer(client *http.Client, template, selector string, limit int, logger *slog.Logger) *Previewer {
	if client == nil {
		client = httputil.NewClient()
	}
	if limit <= 0 {
		limit = 3
	}
	return &Previewer{
		client:   client,
		template: template,
		selector: strings.TrimSpace(selector),
		limit:    limit,
		header:   http.Header{"Accept-Language": {AcceptLanguage(template)}},
		cache:    gocache.New(previewTTL, previewCleanup),
		logger:   logging.NewComponentLogger(logger, "preview"),
	}
}

// Enabled reports whether previews are configured.
func (p *Previewer) Enabled() bool {
	return p != nil && p.selector != ""
}

// Preview returns up to limit distinct snippets matched by the selector on the
// lookup page for text. Results are cached per query.
func (p *Previewer) Preview(ctx context.Context, text string) ([]string, error) {
	if !p.Enabled() {
		return nil, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySelection
	}

	if cached, ok := p.cache.Get(text); ok {
		if snippets, ok := cached.([]string); ok {
			return snippets, nil
		}
	}

	url := BuildURL(p.template, httputil.EncodeQuery(text))
	resp, err := httputil.Get(ctx, p.client, url, p.header)
	if err != nil {
		return nil, fmt.Errorf("fetching preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preview returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parsing preview: %w", err)
	}

	snippets := p.extract(doc)
	p.cache.SetDefault(text, snippets)
	p.logger.Debug("preview fetched", "query", text, "snippets", len(snippets))
	return snippets, nil
}

func (p *Previewer) extract(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var snippets []string

	doc.Find(p.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		snippet := strings.Join(strings.Fields(s.Text()), " ")
		if snippet == "" || seen[snippet] {
			return true
		}
		seen[snippet] = true
		snippets = append(snippets, snippet)
		return len(snippets) < p.limit
	})

	return snippets
}

var languageCodes = map[string]string{
	"arabic": "ar", "chinese": "zh", "dutch": "nl", "english": "en",
	"french": "fr", "german": "de", "hebrew": "he", "italian": "it",
	"japanese": "ja", "polish": "pl", "portuguese": "pt", "romanian": "ro",
	"russian": "ru", "spanish": "es", "turkish": "tr", "ukrainian": "uk",
}

// AcceptLanguage derives an Accept-Language value from a language pair path
// segment such as "spanish-english" in template. Without one it asks for English.
func AcceptLanguage(template string) string {
	for _, segment := range strings.Split(template, "/") {
		from, to, ok := strings.Cut(strings.ToLower(segment), "-")
		if !ok {
			continue
		}
		src, okSrc := languageCodes[from]
		dst, okDst := languageCodes[to]
		if okSrc && okDst {
			return src + ", " + dst + ";q=0.8"
		}
	}
	return "en"
}
