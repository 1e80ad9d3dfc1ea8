package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"blogroll/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FeedFetcher retrieves the raw document of one feed
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// FeedParser converts a raw document into entries attributed to sourceName
type FeedParser interface {
	ParseDocument(sourceName string, raw []byte) ([]models.Entry, error)
}

type Config struct {
	MaxEntries int
	// Upper bound on tasks running at once. Zero runs one task per source.
	Concurrency int
}

// Aggregator fans out one fetch and parse task per source and merges what
// the successful ones produce.
type Aggregator struct {
	fetcher     FeedFetcher
	parser      FeedParser
	maxEntries  int
	concurrency int
}

func New(fetcher FeedFetcher, parser FeedParser, config Config) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		parser:      parser,
		maxEntries:  config.MaxEntries,
		concurrency: config.Concurrency,
	}
}

// Aggregate runs a full pass: collect every source, then merge, sort and cap.
// It never fails; sources that fail contribute nothing.
func (a *Aggregator) Aggregate(ctx context.Context, sources []models.Source) []models.Entry {
	start := time.Now()

	outcomes := a.Collect(ctx, sources)
	entries := Merge(outcomes, a.maxEntries)

	failed := lo.CountBy(outcomes, func(o models.FetchOutcome) bool { return o.Failed() })
	duration := time.Since(start)

	aggregationDuration.Observe(duration.Seconds())
	aggregatedEntries.Set(float64(len(entries)))

	log.WithFields(log.Fields{
		"sources":  len(sources),
		"failed":   failed,
		"entries":  len(entries),
		"duration": duration,
	}).Info("Aggregation finished")

	return entries
}

// Collect waits for every source task to settle and returns one outcome per
// source, in the order of sources.
func (a *Aggregator) Collect(ctx context.Context, sources []models.Source) []models.FetchOutcome {
	outcomes := make([]models.FetchOutcome, len(sources))
	if len(sources) == 0 {
		return outcomes
	}

	limit := a.concurrency
	if limit <= 0 || limit > len(sources) {
		limit = len(sources)
	}

	// Tasks report failure through their outcome, so the group never cancels
	var g errgroup.Group
	g.SetLimit(limit)

	for i, source := range sources {
		g.Go(func() error {
			outcomes[i] = a.collectOne(ctx, source)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (a *Aggregator) collectOne(ctx context.Context, source models.Source) (outcome models.FetchOutcome) {
	outcome = models.FetchOutcome{Source: source, Entries: []models.Entry{}}

	defer func() {
		if r := recover(); r != nil {
			outcome = models.FetchOutcome{Source: source, Entries: []models.Entry{}, Err: fmt.Errorf("panic in source task: %v", r)}
		}
		if outcome.Err != nil {
			sourceFailures.Inc()
			log.WithFields(log.Fields{
				"source": source.Name,
				"url":    source.FeedURL,
				"error":  outcome.Err,
			}).Warn("Source contributed no entries")
		}
	}()

	raw, err := a.fetcher.Fetch(ctx, source.FeedURL)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	entries, err := a.parser.ParseDocument(source.Name, raw)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Entries = entries
	return outcome
}

// Merge flattens successful outcomes in source order, sorts newest first
// keeping that order on ties, and keeps at most maxEntries entries.
func Merge(outcomes []models.FetchOutcome, maxEntries int) []models.Entry {
	successful := lo.Filter(outcomes, func(o models.FetchOutcome, _ int) bool { return !o.Failed() })
	entries := lo.Flatten(lo.Map(successful, func(o models.FetchOutcome, _ int) []models.Entry { return o.Entries }))

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishedAt.After(entries[j].PublishedAt)
	})

	if maxEntries < 0 {
		maxEntries = 0
	}
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	return entries
}
