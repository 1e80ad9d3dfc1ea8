package feeds

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

type Dialect string

const (
	DialectClassic Dialect = "classic" // <rss><channel><item>
	DialectModern  Dialect = "modern"  // <feed><entry>
)

// Document is a parsed feed in exactly one dialect: either Classic or Modern
type Document interface {
	Dialect() Dialect
	isDocument()
}

// Classic is a channel holding a list of items
type Classic struct {
	Channel *rss.Feed
}

func (Classic) Dialect() Dialect { return DialectClassic }
func (Classic) isDocument()      {}

// Modern is a feed holding a list of entries
type Modern struct {
	Feed *atom.Feed
}

func (Modern) Dialect() Dialect { return DialectModern }
func (Modern) isDocument()      {}

// UnknownDialectError is returned for documents that are neither RSS nor Atom
type UnknownDialectError struct {
	Detected gofeed.FeedType
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unsupported feed shape (detected type %d)", e.Detected)
}

// Detect inspects the root element of raw and decodes it into the matching
// dialect.
func Detect(raw []byte) (Document, error) {
	switch feedType := gofeed.DetectFeedType(bytes.NewReader(raw)); feedType {
	case gofeed.FeedTypeRSS:
		parser := rss.Parser{}
		channel, err := parser.Parse(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding rss document: %w", err)
		}
		return Classic{Channel: channel}, nil

	case gofeed.FeedTypeAtom:
		parser := atom.Parser{}
		feed, err := parser.Parse(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding atom document: %w", err)
		}
		return Modern{Feed: feed}, nil

	default:
		return nil, &UnknownDialectError{Detected: feedType}
	}
}
