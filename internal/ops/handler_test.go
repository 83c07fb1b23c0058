package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/catalog"
	"animehub/internal/upstream"
	"animehub/pkg/models"
	"animehub/pkg/utils"
)

func newOpsRig(t *testing.T, warm []models.AnimeEntry) (*gin.Engine, *catalog.Cache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`[{"url":"fresh","id":1}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := upstream.NewClient(srv.URL, 0, 0)
	cache := catalog.NewCache(catalog.NewLoader(catalog.NewFetcher(client), []string{"latest"}, 3, 1, 1, 0))
	if len(warm) > 0 {
		cache.Warm(warm)
	}

	h := NewHandler(cache, client, NewHub(), utils.Config{MaxPages: 100, CacheMaxPages: 50, APIBase: srv.URL})
	router := gin.New()
	h.RegisterRoutes(router)
	h.RegisterReload(router.Group("/"))
	return router, cache
}

func get(t *testing.T, router *gin.Engine, path string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}
	return w.Code, body
}

func TestHealthReportsCacheState(t *testing.T) {
	router, _ := newOpsRig(t, []models.AnimeEntry{models.NewAnimeEntry("1", "a", "", 0)})

	code, body := get(t, router, "/health")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body["cache_status"] != "loaded" || body["cache_size"] != float64(1) {
		t.Fatalf("unexpected health: %v", body)
	}
}

func TestCacheInfoEmpty(t *testing.T) {
	router, _ := newOpsRig(t, nil)

	_, body := get(t, router, "/cache/info")
	info, _ := body["cache_info"].(map[string]any)
	if info["state"] != "empty" || info["size"] != float64(0) {
		t.Fatalf("unexpected cache info: %v", body)
	}
}

func TestReloadSchedulesBackgroundLoad(t *testing.T) {
	router, cache := newOpsRig(t, nil)

	_, body := get(t, router, "/cache/reload")
	if body["reload_started"] != true {
		t.Fatalf("expected reload to start: %v", body)
	}
	if body["job_id"] == "" {
		t.Fatalf("expected a job id: %v", body)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cache.Info().State == "loaded" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("background reload never finished: %+v", cache.Info())
}

func TestStatsIncludesUpstreamCounters(t *testing.T) {
	router, cache := newOpsRig(t, nil)
	cache.EnsureLoaded(context.Background())

	_, body := get(t, router, "/stats")
	up, _ := body["upstream"].(map[string]any)
	if up["attempted_requests"].(float64) < 1 {
		t.Fatalf("expected attempted requests, got %v", body)
	}
}
