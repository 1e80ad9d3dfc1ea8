package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"blogroll/models"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

// AppendToFile adds source to the TOML source list at filePath, creating the
// file when needed. A source whose feed url is already listed is rejected.
func AppendToFile(filePath string, source models.Source) error {
	var doc document

	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("error reading source list: %w", err)
	default:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("error parsing source list: %w", err)
		}
	}

	if lo.ContainsBy(doc.Sources, func(s models.Source) bool { return s.FeedURL == source.FeedURL }) {
		return fmt.Errorf("feed %s is already in the source list", source.FeedURL)
	}

	doc.Sources = append(doc.Sources, source)

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error writing source list: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return fmt.Errorf("error encoding source list: %w", err)
	}

	return nil
}
