package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	"canvas/internal/cache"
	"canvas/internal/domain"
	"canvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Search Service — debounced, cancellable full-text search
// ─────────────────────────────────────────────────────────────

// Result group names, in fixed presentation order. A group is included
// only when non-empty; one document may appear in more than one group.
const (
	GroupDocumentNames   = "Document Names"
	GroupSermonSeries    = "Sermon Series"
	GroupDocumentContent = "Document Content"
)

// DefaultSearchDebounce is the settle delay after the last query change
// before a scan starts.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchResult identifies one matching document.
type SearchResult struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
}

// SearchGroup is one named partition of the result set.
type SearchGroup struct {
	Name    string         `json:"name"`
	Results []SearchResult `json:"results"`
}

// SearchResults is the grouped result set for a single query.
type SearchResults struct {
	Query  string        `json:"query"`
	Groups []SearchGroup `json:"groups"`
}

// SearchService scans the document corpus for case-insensitive
// substring matches against title, subtitle, series name, and element
// contents. Each query is tagged with a generation; a newer query
// cancels the in-flight scan and only the latest generation publishes.
type SearchService struct {
	store   *storage.DocumentStore
	docs    *cache.DocumentCache
	emitter EventEmitter
	log     *zap.Logger

	debounced func(func())
	gen       atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSearchService creates a SearchService. A non-positive debounceAfter
// falls back to DefaultSearchDebounce.
func NewSearchService(
	store *storage.DocumentStore,
	docs *cache.DocumentCache,
	emitter EventEmitter,
	log *zap.Logger,
	debounceAfter time.Duration,
) *SearchService {
	if debounceAfter <= 0 {
		debounceAfter = DefaultSearchDebounce
	}
	return &SearchService{
		store:     store,
		docs:      docs,
		emitter:   emitter,
		log:       log,
		debounced: debounce.New(debounceAfter),
	}
}

// Search schedules a scan for query once input settles. Results arrive
// through the emitter as EventSearchResults; superseded scans are
// cancelled and never publish.
func (s *SearchService) Search(query string) {
	s.debounced(func() { s.start(query) })
}

// Stop cancels any in-flight scan.
func (s *SearchService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SearchService) start(query string) {
	gen := s.gen.Add(1)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		results, err := s.Scan(ctx, query)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Warn("search scan failed",
					zap.String("query", query),
					zap.Error(err))
			}
			return
		}
		s.publish(ctx, gen, results)
	}()
}

// publish emits results only while gen is still the latest generation.
// The check and the emit happen under one lock; a newer query bumps the
// generation before it can publish, so a superseded scan can never land
// its results after its successor's.
func (s *SearchService) publish(ctx context.Context, gen int64, results *SearchResults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() != gen {
		return
	}
	s.emitter.Emit(ctx, EventSearchResults, results)
}

// Scan runs one synchronous scan of the corpus. An empty query returns
// an empty result set without touching the store. Candidates that fail
// to decode are logged and skipped; they never abort the scan.
func (s *SearchService) Scan(ctx context.Context, query string) (*SearchResults, error) {
	results := &SearchResults{Query: query, Groups: []SearchGroup{}}
	if query == "" {
		return results, nil
	}

	ids, err := s.store.EnumerateIDs()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var names, series, content []SearchResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := s.docs.Get(id)
		if !ok {
			doc, err = s.store.Read(id)
			if err != nil {
				s.log.Warn("skipping unreadable search candidate",
					zap.String("documentID", id),
					zap.Error(err))
				continue
			}
		}

		r := SearchResult{DocumentID: doc.ID, Title: doc.Title, Subtitle: doc.Subtitle}
		if containsFold(doc.Title, needle) || containsFold(doc.Subtitle, needle) {
			names = append(names, r)
		}
		if doc.Series != nil && containsFold(doc.Series.Name, needle) {
			series = append(series, r)
		}
		if matchesContent(doc, needle) {
			content = append(content, r)
		}
	}

	for _, g := range []SearchGroup{
		{Name: GroupDocumentNames, Results: names},
		{Name: GroupSermonSeries, Results: series},
		{Name: GroupDocumentContent, Results: content},
	} {
		if len(g.Results) > 0 {
			results.Groups = append(results.Groups, g)
		}
	}
	return results, nil
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func matchesContent(doc *domain.Document, lowerNeedle string) bool {
	for _, el := range doc.Elements {
		if containsFold(el.Content, lowerNeedle) {
			return true
		}
	}
	return false
}
