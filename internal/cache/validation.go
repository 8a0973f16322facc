// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/studybites/studybites/internal/logging"
	"github.com/studybites/studybites/internal/metrics"
	"github.com/studybites/studybites/internal/models"
)

// Fetcher retrieves an ordered batch of unfiltered candidates for a key.
// One call per cache miss; failures degrade to an empty batch.
type Fetcher interface {
	FetchCandidates(ctx context.Context, key Key) ([]models.Candidate, error)
}

// Classifier judges whether an image depicts an appropriate dining scene.
type Classifier interface {
	Classify(ctx context.Context, imageRef string) (bool, error)
}

// Config tunes the validation cache service.
type Config struct {
	// TotalSize is the batch size requested from the search provider and the
	// cap on how many valid items a page can require.
	TotalSize int

	// PageSize is the number of candidates per page.
	PageSize int

	// Capacity bounds the number of live cache entries.
	Capacity int

	// TTL is how long an entry stays fresh before a re-fetch.
	TTL time.Duration

	// Workers caps how many validation tasks classify concurrently.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.TotalSize <= 0 {
		c.TotalSize = 20
	}
	if c.PageSize <= 0 {
		c.PageSize = 4
	}
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if c.TTL <= 0 {
		c.TTL = 15 * time.Minute
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Service is the progressive validation cache. It owns the key→entry index,
// starts exactly one background validation task per entry, and serves
// validated-first pages to waiting callers.
type Service struct {
	cfg        Config
	fetcher    Fetcher
	classifier Classifier

	group singleflight.Group
	index *entryIndex

	// slots bounds the number of validation tasks talking to the classifier
	// at once, across all keys.
	slots chan struct{}

	// baseCtx outlives any request; validation tasks run on it so they are
	// not torn down when the request that created them returns.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewService creates a validation cache service. Call Close on shutdown to
// stop in-flight validation tasks.
func NewService(cfg Config, fetcher Fetcher, classifier Classifier) *Service {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:        cfg,
		fetcher:    fetcher,
		classifier: classifier,
		index:      newEntryIndex(cfg.Capacity, cfg.TTL),
		slots:      make(chan struct{}, cfg.Workers),
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

// Close stops all background validation work.
func (s *Service) Close() {
	s.cancel()
}

// PageSize returns the configured page size.
func (s *Service) PageSize() int {
	return s.cfg.PageSize
}

// GetOrCreate returns the entry for key, creating it on first use. Under
// racing first-time requests for the same key, at most one provider fetch
// happens and at most one validation task is started; every caller observes
// the same entry. A fetch failure is cached as an empty batch so repeated
// failing fetches do not hammer the provider.
func (s *Service) GetOrCreate(ctx context.Context, key Key) *Entry {
	ks := key.String()
	if e, ok := s.index.Get(ks); ok {
		metrics.ValidationCacheHits.Inc()
		return e
	}
	metrics.ValidationCacheMisses.Inc()

	v, _, _ := s.group.Do(ks, func() (interface{}, error) {
		// A racing caller may have populated the index while we queued.
		if e, ok := s.index.Get(ks); ok {
			return e, nil
		}

		// The fetch runs on the service context, not the caller's: the entry
		// is shared, and a caller that disconnects mid-miss must not poison
		// it with a canceled fetch. The provider client carries its own
		// timeout.
		raw, err := s.fetcher.FetchCandidates(s.baseCtx, key)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("cache_key", ks).
				Msg("Candidate fetch failed; caching empty batch")
			metrics.SearchProviderErrors.Inc()
			raw = nil
		}
		logging.Ctx(ctx).Info().Str("cache_key", ks).Int("candidates", len(raw)).
			Msg("Validation cache entry created")

		e := newEntry(raw)
		s.index.Add(ks, e)
		go s.validate(ks, e)
		return e, nil
	})
	return v.(*Entry)
}

// FetchPage blocks until the entry for key has validated enough candidates to
// satisfy page, validation has finished, or ctx is done; then it assembles the
// validated-first page view. Returns ErrPageOutOfRange when the page lies
// beyond the batch.
func (s *Service) FetchPage(ctx context.Context, key Key, page int) (Page, error) {
	e := s.GetOrCreate(ctx, key)

	required := (page + 1) * s.cfg.PageSize
	if required > s.cfg.TotalSize {
		required = s.cfg.TotalSize
	}

	flags, done, expired := e.Wait(ctx, required)

	p, err := AssemblePage(e.Raw(), flags, page, s.cfg.PageSize)
	if err != nil {
		return Page{}, err
	}
	// Pending flags after done mean the validation task was aborted by
	// shutdown; that view is best-effort, not complete.
	p.Partial = (expired && !done) || (done && hasPending(flags))
	return p, nil
}

func hasPending(flags []Verdict) bool {
	for _, f := range flags {
		if f == VerdictPending {
			return true
		}
	}
	return false
}

// validate is the single background task for one entry. It classifies the
// batch strictly in index order, one image at a time, writing each verdict
// under the entry's lock. A classification failure marks that index Invalid
// and moves on; nothing aborts the batch. The final markDone happens even if
// the service is shutting down so no waiter is left blocked; FetchPage flags
// pages assembled from such an aborted entry as partial.
func (s *Service) validate(key string, e *Entry) {
	defer e.markDone()

	select {
	case s.slots <- struct{}{}:
	case <-s.baseCtx.Done():
		return
	}
	defer func() { <-s.slots }()

	for i, c := range e.Raw() {
		if s.baseCtx.Err() != nil {
			return
		}

		verdict := VerdictInvalid
		if c.Image == "" {
			// Never consult the external classifier for an absent image.
			metrics.ClassifierRequests.WithLabelValues("skipped").Inc()
		} else {
			switch usable, err := s.classifier.Classify(s.baseCtx, c.Image); {
			case err != nil:
				// Fail-closed: a failed classification never counts as valid.
				logging.Warn().Err(err).Str("cache_key", key).Str("image", c.Image).
					Msg("Image classification failed; marking invalid")
				metrics.ClassifierRequests.WithLabelValues("error").Inc()
			case usable:
				verdict = VerdictValid
				metrics.ClassifierRequests.WithLabelValues("valid").Inc()
			default:
				metrics.ClassifierRequests.WithLabelValues("invalid").Inc()
			}
		}

		logging.Debug().Str("cache_key", key).Str("venue", c.Name).
			Str("verdict", verdict.String()).Msg("Candidate image classified")
		e.setVerdict(i, verdict)
	}
}
