package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"animehub/internal/catalog"
	"animehub/internal/upstream"
	"animehub/pkg/models"
)

// warmedResolver builds a resolver over a cache pre-seeded with entries and
// an upstream stub for the search fallback.
func warmedResolver(t *testing.T, entries []models.AnimeEntry, searchBody string) (*SlugResolver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/anime/search" {
			w.Write([]byte(searchBody))
			return
		}
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := upstream.NewClient(srv.URL, 0, 0)
	cache := catalog.NewCache(catalog.NewLoader(catalog.NewFetcher(client), []string{"latest"}, 1, 1, 1, 0))
	cache.Warm(entries)
	return NewSlugResolver(cache, client), srv
}

func TestResolveExactBeatsContainment(t *testing.T) {
	r, _ := warmedResolver(t, []models.AnimeEntry{
		models.NewAnimeEntry("1", "a-b-c", "", 0), // containment match, listed first
		models.NewAnimeEntry("2", "a-b", "", 0),   // exact match
	}, `{}`)

	e, ok := r.Resolve(context.Background(), "a-b")
	if !ok {
		t.Fatal("expected a match")
	}
	if e.URL != "a-b" {
		t.Fatalf("exact match must win over containment, got %q", e.URL)
	}
}

func TestResolveContainmentBothDirections(t *testing.T) {
	r, _ := warmedResolver(t, []models.AnimeEntry{
		models.NewAnimeEntry("1", "full-metal-alchemist", "", 0),
	}, `{}`)

	// slug inside entry URL
	if e, ok := r.Resolve(context.Background(), "metal-alchemist"); !ok || e.ID != "1" {
		t.Fatalf("substring slug should match, got %v %v", e, ok)
	}
	// entry URL inside slug
	if e, ok := r.Resolve(context.Background(), "full-metal-alchemist-brotherhood"); !ok || e.ID != "1" {
		t.Fatalf("superstring slug should match, got %v %v", e, ok)
	}
}

func TestResolveByID(t *testing.T) {
	r, _ := warmedResolver(t, []models.AnimeEntry{
		models.NewAnimeEntry("4821", "some-show", "Some Show", 0),
	}, `{}`)

	e, ok := r.Resolve(context.Background(), "4821")
	if !ok || e.URL != "some-show" {
		t.Fatalf("id lookup failed: %v %v", e, ok)
	}
}

func TestResolveByTitleTokens(t *testing.T) {
	r, _ := warmedResolver(t, []models.AnimeEntry{
		models.NewAnimeEntry("1", "internal-key-xyz", "Attack on Titan Final Season", 0),
	}, `{}`)

	e, ok := r.Resolve(context.Background(), "attack-titan-final")
	if !ok || e.ID != "1" {
		t.Fatalf("token match failed: %v %v", e, ok)
	}

	// short tokens alone must not match anything
	if _, ok := r.Resolve(context.Background(), "a-b"); ok {
		t.Fatal("two-letter tokens must not produce a title match")
	}
}

func TestResolveNormalizesSlug(t *testing.T) {
	r, _ := warmedResolver(t, []models.AnimeEntry{
		models.NewAnimeEntry("1", "one-piece", "", 0),
	}, `{}`)

	if _, ok := r.Resolve(context.Background(), "/One-Piece/"); !ok {
		t.Fatal("slug normalization failed")
	}
}

func TestResolveFallsBackToSearch(t *testing.T) {
	r, _ := warmedResolver(t,
		[]models.AnimeEntry{models.NewAnimeEntry("1", "unrelated", "Unrelated", 0)},
		`{"data":[{"result":[{"url":"x","id":77}]}]}`,
	)

	e, ok := r.Resolve(context.Background(), "x")
	if !ok {
		t.Fatal("expected search fallback to match")
	}
	if e.URL != "x" || e.ID != "77" {
		t.Fatalf("unexpected fallback entry: %+v", e)
	}
}

func TestResolveMissEverywhere(t *testing.T) {
	r, _ := warmedResolver(t,
		[]models.AnimeEntry{models.NewAnimeEntry("1", "unrelated", "Unrelated", 0)},
		`{"data":[]}`,
	)

	if _, ok := r.Resolve(context.Background(), "nope-nothing"); ok {
		t.Fatal("expected no match")
	}
	if _, ok := r.Resolve(context.Background(), ""); ok {
		t.Fatal("empty slug must not match")
	}
}
