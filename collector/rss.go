package collector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"nexnews/repository"
)

const (
	userAgent = "nexnews-bot/1.0 (news aggregator)"

	// maxEntriesPerFeed caps how many items one feed contributes per cycle.
	maxEntriesPerFeed = 15
	// maxSummaryChars bounds stored summaries.
	maxSummaryChars = 500
)

// Collector polls a fixed list of RSS/Atom feeds and produces raw article
// tuples for the ingestion pipeline. Feed errors are per-feed: one broken
// feed never blocks the others.
type Collector struct {
	feeds  []string
	parser *gofeed.Parser
	seen   *SeenTracker
	logger *zap.Logger
}

// New builds a collector. seen may be nil, in which case every fetched
// entry is handed over and dedupe is left entirely to the article store.
func New(feeds []string, seen *SeenTracker, logger *zap.Logger) *Collector {
	parser := gofeed.NewParser()
	// Reddit returns 403 without a custom User-Agent.
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: 10 * time.Second}

	return &Collector{
		feeds:  feeds,
		parser: parser,
		seen:   seen,
		logger: logger,
	}
}

// Collect fetches all configured feeds and returns the raw articles found.
func (c *Collector) Collect(ctx context.Context) []repository.RawArticle {
	var articles []repository.RawArticle

	for _, feedURL := range c.feeds {
		items, err := c.collectFeed(ctx, feedURL)
		if err != nil {
			c.logger.Warn("feed collection failed",
				zap.String("feed", feedURL),
				zap.Error(err))
			continue
		}
		articles = append(articles, items...)
		c.logger.Info("collected feed",
			zap.String("feed", feedURL),
			zap.Int("articles", len(items)))
	}

	return articles
}

func (c *Collector) collectFeed(ctx context.Context, feedURL string) ([]repository.RawArticle, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	items := feed.Items
	if len(items) > maxEntriesPerFeed {
		items = items[:maxEntriesPerFeed]
	}

	source := sourceLabel(feedURL, feed.Title)

	articles := make([]repository.RawArticle, 0, len(items))
	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" || item.Title == "" {
			continue
		}
		if c.seen != nil {
			if seen, err := c.seen.IsSeen(link); err == nil && seen {
				continue
			}
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = truncate(stripHTML(summary), maxSummaryChars)

		articles = append(articles, repository.RawArticle{
			Title:       stripHTML(item.Title),
			URL:         link,
			Summary:     strings.TrimSpace(summary),
			Source:      source,
			PublishedAt: publishedTime(item),
		})

		if c.seen != nil {
			if err := c.seen.MarkSeen(link); err != nil {
				c.logger.Warn("mark seen failed",
					zap.String("url", link),
					zap.Error(err))
			}
		}
	}

	return articles, nil
}

// publishedTime prefers the published timestamp, falling back to updated
// for Atom entries that carry only the latter.
func publishedTime(item *gofeed.Item) *time.Time {
	ts := item.PublishedParsed
	if ts == nil {
		ts = item.UpdatedParsed
	}
	if ts == nil {
		return nil
	}
	t := ts.UTC()
	return &t
}

// sourceLabel derives a stable source string, with the subreddit form for
// reddit feeds (e.g. "reddit:r/sysadmin").
func sourceLabel(feedURL, feedTitle string) string {
	if idx := strings.Index(feedURL, "reddit.com/r/"); idx >= 0 {
		sub := feedURL[idx+len("reddit.com/r/"):]
		if slash := strings.IndexByte(sub, '/'); slash >= 0 {
			sub = sub[:slash]
		}
		if sub != "" {
			return "reddit:r/" + sub
		}
		return "rss:reddit"
	}
	if feedTitle != "" {
		return "rss:" + feedTitle
	}
	return "rss:unknown"
}

func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
