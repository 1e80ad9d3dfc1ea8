package feeds_test

import (
	"fmt"
	"testing"
	"time"

	"blogroll/feeds"
	"blogroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newParser() *feeds.Parser {
	return &feeds.Parser{
		DaysLimit:    30,
		SummaryLimit: 100,
		Now:          func() time.Time { return fixedNow },
	}
}

func rssDate(t time.Time) string {
	return t.Format(time.RFC1123Z)
}

func classicFeed(items ...string) []byte {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>A friend</title>
<link>https://friend.example</link>
`
	for _, item := range items {
		doc += item + "\n"
	}
	return []byte(doc + "</channel>\n</rss>")
}

func modernFeed(entries ...string) []byte {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Another friend</title>
<id>urn:uuid:60a76c80-d399-11d9-b93C-0003939e0af6</id>
<updated>2024-06-14T10:00:00Z</updated>
`
	for _, entry := range entries {
		doc += entry + "\n"
	}
	return []byte(doc + "</feed>")
}

func TestParseClassicScenario(t *testing.T) {
	yesterday := fixedNow.Add(-24 * time.Hour)
	raw := classicFeed(fmt.Sprintf(`<item>
  <title>  Hello post  </title>
  <link>https://friend.example/hello</link>
  <pubDate>%s</pubDate>
  <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
</item>`, rssDate(yesterday)))

	entries, err := newParser().ParseDocument("Alice", raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "Hello post", entry.Title)
	assert.Equal(t, "https://friend.example/hello", entry.Link)
	assert.True(t, entry.PublishedAt.Equal(yesterday))
	require.NotNil(t, entry.Summary)
	assert.Equal(t, "Hello world", *entry.Summary)
	assert.Equal(t, "Alice", entry.SourceName)
}

func TestParseClassicCDATADescription(t *testing.T) {
	raw := classicFeed(fmt.Sprintf(`<item>
  <title>CDATA</title>
  <link>https://friend.example/cdata</link>
  <pubDate>%s</pubDate>
  <description><![CDATA[<p>Hello <b>world</b></p><script>alert("x")</script>]]></description>
</item>`, rssDate(fixedNow.Add(-time.Hour))))

	entries := newParser().Parse("Alice", raw)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Summary)
	assert.Equal(t, "Hello world", *entries[0].Summary)
}

func TestParseClassicRecencyFilter(t *testing.T) {
	raw := classicFeed(
		fmt.Sprintf(`<item><title>fresh</title><link>https://f.example/1</link><pubDate>%s</pubDate></item>`, rssDate(fixedNow.Add(-29*24*time.Hour))),
		fmt.Sprintf(`<item><title>stale</title><link>https://f.example/2</link><pubDate>%s</pubDate></item>`, rssDate(fixedNow.Add(-31*24*time.Hour))),
	)

	entries := newParser().Parse("Alice", raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Title)

	cutoff := fixedNow.Add(-30 * 24 * time.Hour)
	for _, entry := range entries {
		assert.False(t, entry.PublishedAt.Before(cutoff))
	}
}

func TestParseRecencyFilterDisabled(t *testing.T) {
	raw := classicFeed(fmt.Sprintf(`<item><title>ancient</title><pubDate>%s</pubDate></item>`, rssDate(fixedNow.AddDate(-5, 0, 0))))

	parser := newParser()
	parser.DaysLimit = 0

	entries := parser.Parse("Alice", raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "ancient", entries[0].Title)
}

func TestParseClassicDateFallbacks(t *testing.T) {
	dcDate := fixedNow.Add(-2 * time.Hour)
	raw := classicFeed(
		fmt.Sprintf(`<item><title>dc</title><dc:date>%s</dc:date></item>`, dcDate.Format(time.RFC3339)),
		`<item><title>garbage</title><pubDate>not a date at all</pubDate></item>`,
		`<item><title>none</title></item>`,
	)

	entries := newParser().Parse("Alice", raw)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].PublishedAt.Equal(dcDate), "dc:date is the alternate date")
	assert.True(t, entries[1].PublishedAt.Equal(fixedNow), "unparsable date falls back to now")
	assert.True(t, entries[2].PublishedAt.Equal(fixedNow), "missing date falls back to now")
}

func TestParseClassicPlaceholders(t *testing.T) {
	raw := classicFeed(`<item><description>only a body</description></item>`)

	entries := newParser().Parse("Alice", raw)
	require.Len(t, entries, 1)
	assert.Equal(t, models.UntitledPlaceholder, entries[0].Title)
	assert.Equal(t, models.LinkPlaceholder, entries[0].Link)
}

func TestParseClassicPermalinkGUID(t *testing.T) {
	raw := classicFeed(`<item><title>guid</title><guid isPermaLink="true">https://friend.example/guid</guid></item>`)

	entries := newParser().Parse("Alice", raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://friend.example/guid", entries[0].Link)
}

func TestParseClassicContentFallback(t *testing.T) {
	raw := classicFeed(`<item><title>encoded</title><content:encoded><![CDATA[<div>From   content</div>]]></content:encoded></item>`)

	entries := newParser().Parse("Alice", raw)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Summary)
	assert.Equal(t, "From content", *entries[0].Summary)
}

func TestParseModernAlternateLink(t *testing.T) {
	raw := modernFeed(`<entry>
  <title>Links</title>
  <id>urn:1</id>
  <link rel="related" href="https://other.example/first"/>
  <link rel="alternate" href="https://friend.example/alternate"/>
  <published>2024-06-14T08:00:00Z</published>
  <summary>plain summary</summary>
</entry>`)

	entries, err := newParser().ParseDocument("Bob", raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://friend.example/alternate", entries[0].Link)
	assert.Equal(t, "Bob", entries[0].SourceName)
	require.NotNil(t, entries[0].Summary)
	assert.Equal(t, "plain summary", *entries[0].Summary)
}

func TestParseModernFirstLinkWithoutAlternate(t *testing.T) {
	raw := modernFeed(`<entry>
  <title>Links</title>
  <id>urn:2</id>
  <link rel="related" href="https://other.example/first"/>
  <link rel="enclosure" href="https://other.example/second"/>
  <updated>2024-06-14T08:00:00Z</updated>
</entry>`)

	entries := newParser().Parse("Bob", raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://other.example/first", entries[0].Link)
}

func TestParseModernDates(t *testing.T) {
	raw := modernFeed(
		`<entry><title>both</title><id>urn:1</id><published>2024-06-10T00:00:00Z</published><updated>2024-06-14T00:00:00Z</updated></entry>`,
		`<entry><title>updated only</title><id>urn:2</id><updated>2024-06-13T00:00:00Z</updated></entry>`,
		`<entry><title>none</title><id>urn:3</id></entry>`,
	)

	entries := newParser().Parse("Bob", raw)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].PublishedAt.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, entries[1].PublishedAt.Equal(time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)))
	assert.True(t, entries[2].PublishedAt.Equal(fixedNow))
	assert.Equal(t, models.LinkPlaceholder, entries[2].Link)
}

func TestParseModernContentFallback(t *testing.T) {
	raw := modernFeed(`<entry>
  <title>Content</title>
  <id>urn:1</id>
  <updated>2024-06-14T08:00:00Z</updated>
  <content type="html">&lt;p&gt;Body &lt;em&gt;text&lt;/em&gt;&lt;/p&gt;</content>
</entry>`)

	entries := newParser().Parse("Bob", raw)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Summary)
	assert.Equal(t, "Body text", *entries[0].Summary)
}

func TestParseZeroSummaryLimit(t *testing.T) {
	raw := classicFeed(
		`<item><title>a</title><description>short</description></item>`,
		`<item><title>b</title><description>a much longer description that would otherwise be truncated</description></item>`,
	)

	parser := newParser()
	parser.SummaryLimit = 0

	entries := parser.Parse("Alice", raw)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Nil(t, entry.Summary)
	}
}

func TestParseEmptyAndUnknownDocuments(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		wantErr bool
	}{
		{name: "classic without items", raw: classicFeed(), wantErr: false},
		{name: "modern without entries", raw: modernFeed(), wantErr: false},
		{name: "unknown root", raw: []byte(`<?xml version="1.0"?><html><body>nope</body></html>`), wantErr: true},
		{name: "json feed", raw: []byte(`{"version": "https://jsonfeed.org/version/1", "items": []}`), wantErr: true},
		{name: "malformed xml", raw: []byte(`<rss><channel><item><title>broken</item></channel></rss>`), wantErr: true},
		{name: "empty body", raw: []byte{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := newParser().ParseDocument("Alice", tt.raw)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
			if tt.wantErr {
				var parseErr *feeds.ParseError
				assert.ErrorAs(t, err, &parseErr)
			} else {
				assert.NoError(t, err)
			}

			// Parse swallows the error
			assert.Empty(t, newParser().Parse("Alice", tt.raw))
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	raw := classicFeed(
		fmt.Sprintf(`<item><title>one</title><link>https://f.example/1</link><pubDate>%s</pubDate><description>first</description></item>`, rssDate(fixedNow.Add(-time.Hour))),
		`<item><title>two</title></item>`,
	)

	parser := newParser()
	assert.Equal(t, parser.Parse("Alice", raw), parser.Parse("Alice", raw))
}

func TestDetect(t *testing.T) {
	doc, err := feeds.Detect(classicFeed())
	require.NoError(t, err)
	assert.Equal(t, feeds.DialectClassic, doc.Dialect())

	doc, err = feeds.Detect(modernFeed())
	require.NoError(t, err)
	assert.Equal(t, feeds.DialectModern, doc.Dialect())

	_, err = feeds.Detect([]byte(`<opml version="2.0"></opml>`))
	var unknown *feeds.UnknownDialectError
	assert.ErrorAs(t, err, &unknown)
}
