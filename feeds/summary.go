package feeds

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const ellipsis = "..."

// Strict policy keeps no markup at all. Script and style contents are
// skipped entirely, and a space replaces every stripped tag so block
// boundaries do not glue words together.
var textPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// SummaryCandidates are the content fields an item may carry, in order of
// preference
type SummaryCandidates struct {
	Summary     string
	Description string
	Content     string
}

func (c SummaryCandidates) first() (string, bool) {
	for _, candidate := range []string{c.Summary, c.Description, c.Content} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, true
		}
	}
	return "", false
}

// ExtractSummary returns a plain-text excerpt of at most limit characters
// plus an ellipsis. It returns nil when no candidate is present, when the
// cleaned text is empty or when limit is zero or less.
func ExtractSummary(candidates SummaryCandidates, limit int) *string {
	if limit <= 0 {
		return nil
	}

	source, ok := candidates.first()
	if !ok {
		return nil
	}

	text := PlainText(source)
	if text == "" {
		return nil
	}

	text = Truncate(text, limit)
	return &text
}

// PlainText drops script blocks and markup, unescapes entities and collapses
// whitespace
func PlainText(markup string) string {
	stripped := html.UnescapeString(textPolicy.Sanitize(markup))
	return strings.Join(strings.Fields(stripped), " ")
}

// Truncate cuts text to limit characters and appends an ellipsis when it was
// longer than that
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + ellipsis
}
