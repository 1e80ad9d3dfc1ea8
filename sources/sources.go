package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"blogroll/models"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const maxDocumentBytes = 1 << 20 // 1MiB

type format string

const (
	formatTOML format = "toml"
	formatYAML format = "yaml"
	formatJSON format = "json"
)

// document is the declarative source list. JSON and YAML lists may also be
// given as a bare top-level array.
type document struct {
	Sources []models.Source `json:"sources" toml:"sources" yaml:"sources"`
}

// Loader reads the list of sources from a URL or a local file
type Loader struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewLoader(timeout time.Duration) *Loader {
	return &Loader{Client: &http.Client{}, Timeout: timeout}
}

// Load returns the usable sources of the document at location. Any failure
// is a *models.SourceListError.
func (l *Loader) Load(ctx context.Context, location string) ([]models.Source, error) {
	data, contentType, err := l.read(ctx, location)
	if err != nil {
		return nil, &models.SourceListError{Location: location, Err: err}
	}

	parsed, err := decode(data, detectFormat(location, contentType))
	if err != nil {
		return nil, &models.SourceListError{Location: location, Err: err}
	}

	usable := Sanitize(parsed)
	if len(usable) == 0 {
		return nil, &models.SourceListError{Location: location, Err: errors.New("no usable sources in list")}
	}

	log.WithFields(log.Fields{
		"location": location,
		"sources":  len(usable),
		"skipped":  len(parsed) - len(usable),
	}).Debug("Loaded source list")

	return usable, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, string, error) {
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.readRemote(ctx, location)
	}

	filePath := location
	if err == nil && u.Scheme == "file" {
		filePath = u.Path
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

func (l *Loader) readRemote(ctx context.Context, location string) ([]byte, string, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", err
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading source list: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func detectFormat(location, contentType string) format {
	ext := strings.ToLower(path.Ext(strings.SplitN(location, "?", 2)[0]))
	switch ext {
	case ".toml":
		return formatTOML
	case ".yaml", ".yml":
		return formatYAML
	case ".json":
		return formatJSON
	}

	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "json"):
		return formatJSON
	case strings.Contains(contentType, "yaml"):
		return formatYAML
	case strings.Contains(contentType, "toml"):
		return formatTOML
	}

	return ""
}

func decode(data []byte, f format) ([]models.Source, error) {
	switch f {
	case formatTOML:
		var doc document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding toml source list: %w", err)
		}
		return doc.Sources, nil

	case formatJSON:
		trimmed := bytes.TrimSpace(data)
		if bytes.HasPrefix(trimmed, []byte("[")) {
			var list []models.Source
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("decoding json source list: %w", err)
			}
			return list, nil
		}
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding json source list: %w", err)
		}
		return doc.Sources, nil

	case formatYAML:
		var list []models.Source
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml source list: %w", err)
		}
		return doc.Sources, nil

	default:
		// Unknown format: JSON is valid YAML, so YAML covers both, TOML last
		if list, err := decode(data, formatYAML); err == nil && len(list) > 0 {
			return list, nil
		}
		if list, err := decode(data, formatTOML); err == nil {
			return list, nil
		}
		return nil, errors.New("source list is neither yaml, json nor toml")
	}
}

// Sanitize trims fields, drops sources without a name or feed url and keeps
// only the first source for every feed url
func Sanitize(list []models.Source) []models.Source {
	cleaned := lo.FilterMap(list, func(s models.Source, i int) (models.Source, bool) {
		s = models.Source{
			Name:    strings.TrimSpace(s.Name),
			FeedURL: strings.TrimSpace(s.FeedURL),
			SiteURL: strings.TrimSpace(s.SiteURL),
		}
		if s.Name == "" || s.FeedURL == "" {
			log.WithFields(log.Fields{
				"index": i,
				"name":  s.Name,
				"feed":  s.FeedURL,
			}).Warn("Skipping source without name or feed url")
			return s, false
		}
		return s, true
	})

	return lo.UniqBy(cleaned, func(s models.Source) string { return s.FeedURL })
}
