package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const rssBody = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>First &amp; Foremost</title>
      <link>https://example.org/a</link>
      <description>&lt;p&gt;Plain &lt;b&gt;bold&lt;/b&gt; text&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.org/b</link>
      <description>no markup</description>
    </item>
  </channel>
</rss>`

const atomBody = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>r/sysadmin</title>
  <entry>
    <title>Atom entry</title>
    <link rel="alternate" href="https://example.org/c"/>
    <content>atom content here</content>
    <updated>2006-01-02T15:04:05Z</updated>
  </entry>
</feed>`

func TestCollectParsesRSS(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("missing custom user agent, got %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, nil, zap.NewNop())
	articles := c.Collect(context.Background())

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "First & Foremost" {
		t.Errorf("unexpected title %q", articles[0].Title)
	}
	if articles[0].Summary != "Plain bold text" {
		t.Errorf("expected HTML stripped, got %q", articles[0].Summary)
	}
	if articles[0].Source != "rss:Test Feed" {
		t.Errorf("unexpected source %q", articles[0].Source)
	}
	want := time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)
	if articles[0].PublishedAt == nil || !articles[0].PublishedAt.Equal(want) {
		t.Errorf("expected published date %v, got %v", want, articles[0].PublishedAt)
	}
	if articles[1].PublishedAt != nil {
		t.Error("expected nil published date for item without pubDate")
	}
}

func TestCollectParsesAtom(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomBody)
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, nil, zap.NewNop())
	articles := c.Collect(context.Background())

	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if articles[0].URL != "https://example.org/c" {
		t.Errorf("unexpected link %q", articles[0].URL)
	}
	if articles[0].Summary != "atom content here" {
		t.Errorf("unexpected summary %q", articles[0].Summary)
	}
}

func TestCollectCapsEntriesPerFeed(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Big</title>`)
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, `<item><title>t%d</title><link>https://example.org/%d</link></item>`, i, i)
	}
	sb.WriteString(`</channel></rss>`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sb.String())
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, nil, zap.NewNop())
	articles := c.Collect(context.Background())

	if len(articles) != maxEntriesPerFeed {
		t.Fatalf("expected %d articles, got %d", maxEntriesPerFeed, len(articles))
	}
}

func TestCollectSkipsFailingFeed(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer failing.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer healthy.Close()

	c := New([]string{failing.URL, healthy.URL}, nil, zap.NewNop())
	articles := c.Collect(context.Background())

	if len(articles) != 2 {
		t.Fatalf("expected healthy feed still collected, got %d articles", len(articles))
	}
}

func TestSeenTrackerSkipsRepeatedEntries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	seen, err := OpenSeenTracker(filepath.Join(t.TempDir(), "seen.db"))
	if err != nil {
		t.Fatalf("open tracker: %v", err)
	}
	defer seen.Close()

	c := New([]string{srv.URL}, seen, zap.NewNop())

	first := c.Collect(context.Background())
	if len(first) != 2 {
		t.Fatalf("expected 2 articles on first pass, got %d", len(first))
	}
	second := c.Collect(context.Background())
	if len(second) != 0 {
		t.Fatalf("expected 0 articles on second pass, got %d", len(second))
	}

	ok, err := seen.IsSeen("https://example.org/a")
	if err != nil || !ok {
		t.Errorf("expected url marked seen, ok=%v err=%v", ok, err)
	}
}

func TestSourceLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		feedURL   string
		feedTitle string
		want      string
	}{
		{"https://www.reddit.com/r/sysadmin/new.rss", "ignored", "reddit:r/sysadmin"},
		{"https://feeds.arstechnica.com/arstechnica/index", "Ars Technica", "rss:Ars Technica"},
		{"https://example.org/feed", "", "rss:unknown"},
	}

	for _, tc := range testCases {
		if got := sourceLabel(tc.feedURL, tc.feedTitle); got != tc.want {
			t.Errorf("sourceLabel(%q) = %q, want %q", tc.feedURL, got, tc.want)
		}
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	// "é" is two bytes; cutting at 3 would split the second rune.
	got := truncate("éé", 3)
	if got != "é" {
		t.Errorf("expected cut at rune boundary, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated string is not valid UTF-8: %q", got)
	}
	if truncate("short", 500) != "short" {
		t.Error("expected string under the limit untouched")
	}
}
