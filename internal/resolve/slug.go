package resolve

import (
	"context"
	"log"
	"strings"

	"animehub/internal/catalog"
	"animehub/internal/upstream"
	"animehub/pkg/models"
)

// matchFunc is one slug match strategy: does the normalized slug pick out
// this entry. Strategies are pure and evaluated in priority order; a
// strategy is tried against every cached entry before the next strategy is
// tried against any.
type matchFunc func(slug string, e *models.AnimeEntry) bool

func matchExactURL(slug string, e *models.AnimeEntry) bool {
	return models.NormalizeSlug(e.URL) == slug
}

func matchURLContains(slug string, e *models.AnimeEntry) bool {
	u := models.NormalizeSlug(e.URL)
	if u == "" {
		return false
	}
	return strings.Contains(u, slug) || strings.Contains(slug, u)
}

func matchID(slug string, e *models.AnimeEntry) bool {
	id := strings.ToLower(strings.TrimSpace(e.ID))
	return id != "" && id == slug
}

// matchTitleTokens accepts an entry when every dash token of the slug
// longer than two characters appears in the lower-cased title.
func matchTitleTokens(slug string, e *models.AnimeEntry) bool {
	title := strings.ToLower(e.Title)
	if title == "" {
		return false
	}
	matched := false
	for _, tok := range strings.Split(slug, "-") {
		if len(tok) <= 2 {
			continue
		}
		if !strings.Contains(title, tok) {
			return false
		}
		matched = true
	}
	return matched
}

// cacheStrategies is the full cascade run against the catalog cache.
var cacheStrategies = []matchFunc{
	matchExactURL,
	matchURLContains,
	matchID,
	matchTitleTokens,
}

// searchStrategies is the reduced cascade re-applied to upstream search
// results when the cache misses; token matching against arbitrary search
// output is too loose to trust.
var searchStrategies = cacheStrategies[:3]

// SlugResolver answers whether a human-typed slug corresponds to a catalog
// entry, searching the cache first and falling back to an upstream search.
type SlugResolver struct {
	Cache  *catalog.Cache
	Client *upstream.Client
}

func NewSlugResolver(cache *catalog.Cache, client *upstream.Client) *SlugResolver {
	return &SlugResolver{Cache: cache, Client: client}
}

// Resolve returns the first entry any strategy matches, or ok=false when
// every strategy and the search fallback come up empty.
func (r *SlugResolver) Resolve(ctx context.Context, slug string) (*models.AnimeEntry, bool) {
	slug = models.NormalizeSlug(slug)
	if slug == "" {
		return nil, false
	}

	entries := r.Cache.EnsureLoaded(ctx)
	if e, ok := runCascade(cacheStrategies, slug, entries); ok {
		return e, true
	}

	// Cache miss: ask upstream search directly with a spaced-out query.
	query := strings.ReplaceAll(slug, "-", " ")
	results, err := r.Client.Search(ctx, query)
	if err != nil {
		log.Printf("[resolve] search fallback for %q failed: %v", slug, err)
		return nil, false
	}
	return runCascade(searchStrategies, slug, results)
}

func runCascade(strategies []matchFunc, slug string, entries []models.AnimeEntry) (*models.AnimeEntry, bool) {
	for _, match := range strategies {
		for i := range entries {
			if match(slug, &entries[i]) {
				return &entries[i], true
			}
		}
	}
	return nil, false
}
