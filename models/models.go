package models

import (
	"encoding/json"
	"time"
)

const (
	// Placeholder values used when a feed item lacks a title or link
	UntitledPlaceholder = "Untitled"
	LinkPlaceholder     = "#"
)

// Source is a friend site whose feed is aggregated
type Source struct {
	Name    string `json:"name" toml:"name" yaml:"name"`
	FeedURL string `json:"feed_url" toml:"feed_url" yaml:"feed_url"`
	SiteURL string `json:"site_url,omitempty" toml:"site_url,omitempty" yaml:"site_url,omitempty"`
}

// Entry is a normalized post from any feed dialect
type Entry struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Summary     *string
	SourceName  string
}

// EntrySource is the attribution attached to every serialized entry
type EntrySource struct {
	Name string `json:"name"`
}

type entryJSON struct {
	Title   string      `json:"title"`
	Link    string      `json:"link"`
	Date    string      `json:"date"`
	Summary *string     `json:"summary"`
	Source  EntrySource `json:"source"`
}

// MarshalJSON writes the entry in its response shape, date as RFC 3339 in UTC
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Title:   e.Title,
		Link:    e.Link,
		Date:    e.PublishedAt.UTC().Format(time.RFC3339),
		Summary: e.Summary,
		Source:  EntrySource{Name: e.SourceName},
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	publishedAt, err := time.Parse(time.RFC3339, raw.Date)
	if err != nil {
		return err
	}

	*e = Entry{
		Title:       raw.Title,
		Link:        raw.Link,
		PublishedAt: publishedAt,
		Summary:     raw.Summary,
		SourceName:  raw.Source.Name,
	}
	return nil
}

// FetchOutcome is the settled result of one source's fetch and parse task.
// Err is only kept for diagnostics, Entries is empty whenever Err is set.
type FetchOutcome struct {
	Source  Source
	Entries []Entry
	Err     error
}

func (o FetchOutcome) Failed() bool {
	return o.Err != nil
}

// ErrorResponse is the body returned for request-fatal errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
