package catalog

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"animehub/pkg/models"
)

// Notifier receives catalog load lifecycle events. Implementations must not
// block; the ops hub fans them out to websocket clients.
type Notifier interface {
	LoadStarted(endpoints []string)
	LoadFinished(total int, elapsed time.Duration)
}

// Loader drives the Fetcher across a bounded page range for each configured
// endpoint and produces the deduplicated catalog. Sequential and parallel
// loading are the same code path; Concurrency 1 is sequential.
type Loader struct {
	Fetcher     *Fetcher
	Endpoints   []string
	MaxPages    int
	Concurrency int
	EmptyStop   int // consecutive empty pages before an endpoint is done

	// Pacer spaces page requests out even when fetching in parallel, to
	// stay under the upstream rate limit. Nil means no pacing.
	Pacer *rate.Limiter

	Notifier Notifier
}

func NewLoader(fetcher *Fetcher, endpoints []string, maxPages, concurrency, emptyStop int, requestDelay time.Duration) *Loader {
	if concurrency < 1 {
		concurrency = 1
	}
	if emptyStop < 1 {
		emptyStop = 1
	}
	var pacer *rate.Limiter
	if requestDelay > 0 {
		pacer = rate.NewLimiter(rate.Every(requestDelay), 1)
	}
	return &Loader{
		Fetcher:     fetcher,
		Endpoints:   endpoints,
		MaxPages:    maxPages,
		Concurrency: concurrency,
		EmptyStop:   emptyStop,
		Pacer:       pacer,
	}
}

// LoadAll fetches every endpoint's pages, deduplicates the accumulated
// entries by identity and returns them in first-seen order. Upstream
// failures degrade to empty pages and are absorbed by the empty-page stop;
// LoadAll itself never fails.
func (l *Loader) LoadAll(ctx context.Context) []models.AnimeEntry {
	started := time.Now()
	if l.Notifier != nil {
		l.Notifier.LoadStarted(l.Endpoints)
	}

	var all []models.AnimeEntry
	for _, endpoint := range l.Endpoints {
		pages := l.loadEndpoint(ctx, endpoint)
		for _, p := range pages {
			all = append(all, p.entries...)
		}
	}

	unique := Dedupe(all)
	log.Printf("[catalog] load finished: %d entries (%d unique) in %s", len(all), len(unique), time.Since(started).Round(time.Millisecond))
	if l.Notifier != nil {
		l.Notifier.LoadFinished(len(unique), time.Since(started))
	}
	return unique
}

type pageResult struct {
	page    int
	entries []models.AnimeEntry
}

// loadEndpoint pages through one endpoint until MaxPages or the empty-page
// stop. Pages are fetched in waves of Concurrency so the stop decision is
// made in page order and the result commits in page order regardless of
// fetch interleaving.
func (l *Loader) loadEndpoint(ctx context.Context, endpoint string) []pageResult {
	log.Printf("[catalog] loading endpoint %q (max %d pages)", endpoint, l.MaxPages)

	var (
		results []pageResult
		empties int
	)
	for first := 1; first <= l.MaxPages; first += l.Concurrency {
		last := first + l.Concurrency - 1
		if last > l.MaxPages {
			last = l.MaxPages
		}

		var (
			waveMu sync.Mutex
			wave   = make([]pageResult, 0, last-first+1)
		)
		p := pool.New().WithMaxGoroutines(l.Concurrency)
		for page := first; page <= last; page++ {
			page := page
			p.Go(func() {
				if l.Pacer != nil {
					_ = l.Pacer.Wait(ctx)
				}
				entries := l.Fetcher.FetchPage(ctx, endpoint, "", page)
				waveMu.Lock()
				wave = append(wave, pageResult{page: page, entries: entries})
				waveMu.Unlock()
			})
		}
		p.Wait()

		sort.Slice(wave, func(i, j int) bool { return wave[i].page < wave[j].page })

		done := false
		for _, r := range wave {
			if len(r.entries) == 0 {
				empties++
				if empties >= l.EmptyStop {
					done = true
					break
				}
				continue
			}
			empties = 0
			results = append(results, r)
		}
		if done {
			break
		}
	}
	return results
}

// Dedupe removes duplicate entries by identity, keeping the first
// occurrence. Entries without an identity are always kept.
func Dedupe(entries []models.AnimeEntry) []models.AnimeEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]models.AnimeEntry, 0, len(entries))
	for _, e := range entries {
		key, ok := e.Identity()
		if !ok {
			out = append(out, e)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
