package catalog

import (
	"context"
	"encoding/json"
	"log"

	"animehub/internal/upstream"
	"animehub/pkg/models"
)

// Fetcher retrieves one listing page at a time from the upstream API and
// normalizes its "no more data" signals: an empty array, a non-array body
// and a fetch failure all come back as an empty page. The loader tells
// genuine end-of-pages apart from hiccups with its consecutive-empty counter.
type Fetcher struct {
	Client *upstream.Client
}

func NewFetcher(client *upstream.Client) *Fetcher {
	return &Fetcher{Client: client}
}

// FetchPage fetches one page of the endpoint listing, or of a genre listing
// when genre is non-empty. The returned slice is empty (never an error) for
// anything that is not a non-empty JSON array.
func (f *Fetcher) FetchPage(ctx context.Context, endpoint, genre string, page int) []models.AnimeEntry {
	u := f.Client.ListURL(endpoint, page)
	if genre != "" {
		u = f.Client.GenreURL(genre, page)
	}

	body, err := f.Client.Get(ctx, u)
	if err != nil {
		log.Printf("[catalog] page fetch failed: %v", err)
		return nil
	}

	var entries []models.AnimeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		// Non-array bodies (error objects, HTML) count as an empty page.
		return nil
	}
	return entries
}

// HasNext probes whether the page after the given one has data. Used by the
// browse layer for pagination flags.
func (f *Fetcher) HasNext(ctx context.Context, endpoint, genre string, page int) bool {
	return len(f.FetchPage(ctx, endpoint, genre, page+1)) > 0
}
