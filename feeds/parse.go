package feeds

import (
	"fmt"
	"strings"
	"time"

	"blogroll/models"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
	log "github.com/sirupsen/logrus"
)

// ParseError wraps anything that made a whole document unusable
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing feed of %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser turns raw feed documents into entries. The zero value keeps every
// item regardless of age and suppresses summaries.
type Parser struct {
	// Items older than DaysLimit days are dropped. Zero or less disables the filter.
	DaysLimit int
	// Maximum summary length in characters. Zero or less suppresses summaries.
	SummaryLimit int
	// Clock used for missing dates and the recency cutoff, time.Now when nil
	Now func() time.Time
}

// Parse never fails: documents that cannot be read contribute no entries
func (p *Parser) Parse(sourceName string, raw []byte) []models.Entry {
	entries, err := p.ParseDocument(sourceName, raw)
	if err != nil {
		parseFailures.Inc()
		log.WithFields(log.Fields{
			"source": sourceName,
			"error":  err,
		}).Warn("Could not parse feed, skipping source")
		return []models.Entry{}
	}
	return entries
}

// ParseDocument is Parse with the reason for an empty result exposed
func (p *Parser) ParseDocument(sourceName string, raw []byte) (entries []models.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries = []models.Entry{}
			err = &ParseError{Source: sourceName, Err: fmt.Errorf("panic while parsing: %v", r)}
		}
	}()

	doc, err := Detect(raw)
	if err != nil {
		return []models.Entry{}, &ParseError{Source: sourceName, Err: err}
	}

	now := p.now()
	switch doc := doc.(type) {
	case Classic:
		return p.fromClassic(sourceName, doc, now), nil
	case Modern:
		return p.fromModern(sourceName, doc, now), nil
	default:
		return []models.Entry{}, &ParseError{Source: sourceName, Err: fmt.Errorf("unhandled dialect %T", doc)}
	}
}

func (p *Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Parser) fromClassic(sourceName string, doc Classic, now time.Time) []models.Entry {
	entries := []models.Entry{}
	if doc.Channel == nil {
		return entries
	}

	for _, item := range doc.Channel.Items {
		if item == nil {
			continue
		}

		var alternate string
		if item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0 {
			alternate = item.DublinCoreExt.Date[0]
		}
		publishedAt := resolveDate(now, item.PubDateParsed, item.PubDate, nil, alternate)
		if p.tooOld(publishedAt, now) {
			continue
		}

		entries = append(entries, models.Entry{
			Title:       titleOrPlaceholder(item.Title),
			Link:        classicLink(item),
			PublishedAt: publishedAt,
			Summary: ExtractSummary(SummaryCandidates{
				Description: item.Description,
				Content:     item.Content,
			}, p.SummaryLimit),
			SourceName: sourceName,
		})
	}

	return entries
}

func (p *Parser) fromModern(sourceName string, doc Modern, now time.Time) []models.Entry {
	entries := []models.Entry{}
	if doc.Feed == nil {
		return entries
	}

	for _, entry := range doc.Feed.Entries {
		if entry == nil {
			continue
		}

		publishedAt := resolveDate(now, entry.PublishedParsed, entry.Published, entry.UpdatedParsed, entry.Updated)
		if p.tooOld(publishedAt, now) {
			continue
		}

		var content string
		if entry.Content != nil {
			content = entry.Content.Value
		}

		entries = append(entries, models.Entry{
			Title:       titleOrPlaceholder(entry.Title),
			Link:        modernLink(entry.Links),
			PublishedAt: publishedAt,
			Summary: ExtractSummary(SummaryCandidates{
				Summary: entry.Summary,
				Content: content,
			}, p.SummaryLimit),
			SourceName: sourceName,
		})
	}

	return entries
}

func (p *Parser) tooOld(publishedAt, now time.Time) bool {
	if p.DaysLimit <= 0 {
		return false
	}
	cutoff := now.Add(-time.Duration(p.DaysLimit) * 24 * time.Hour)
	return publishedAt.Before(cutoff)
}

// resolveDate picks the preferred date, then the alternate one, then now
func resolveDate(now time.Time, preferredParsed *time.Time, preferred string, alternateParsed *time.Time, alternate string) time.Time {
	if t, ok := pickDate(preferredParsed, preferred); ok {
		return t
	}
	if t, ok := pickDate(alternateParsed, alternate); ok {
		return t
	}
	return now
}

func pickDate(parsed *time.Time, raw string) (time.Time, bool) {
	if parsed != nil && !parsed.IsZero() {
		return *parsed, true
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

func titleOrPlaceholder(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.UntitledPlaceholder
	}
	return title
}

func classicLink(item *rss.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	// A permalink guid is the item's address when <link> is missing
	if item.GUID != nil && !strings.EqualFold(item.GUID.IsPermalink, "false") {
		guid := strings.TrimSpace(item.GUID.Value)
		if strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
			return guid
		}
	}
	return models.LinkPlaceholder
}

// modernLink prefers the alternate relation, then the first link
func modernLink(links []*atom.Link) string {
	var first string
	for _, link := range links {
		if link == nil {
			continue
		}
		href := strings.TrimSpace(link.Href)
		if href == "" {
			continue
		}
		if strings.EqualFold(link.Rel, "alternate") {
			return href
		}
		if first == "" {
			first = href
		}
	}
	if first != "" {
		return first
	}
	return models.LinkPlaceholder
}
