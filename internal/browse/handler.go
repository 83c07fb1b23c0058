package browse

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"animehub/internal/catalog"
	"animehub/internal/resolve"
	"animehub/internal/upstream"
	"animehub/pkg/models"
)

const searchPageSize = 20

// maxEpisodeList caps the derived episode list on detail views.
const maxEpisodeList = 99

// Handler serves the browse surface: category listings, genre listings,
// search, detail and watch views, all as JSON for the presentation layer.
type Handler struct {
	Fetcher  *catalog.Fetcher
	Client   *upstream.Client
	Slugs    *resolve.SlugResolver
	Episodes *resolve.EpisodeResolver
	MaxPages int
}

func NewHandler(fetcher *catalog.Fetcher, client *upstream.Client, slugs *resolve.SlugResolver, episodes *resolve.EpisodeResolver, maxPages int) *Handler {
	return &Handler{
		Fetcher:  fetcher,
		Client:   client,
		Slugs:    slugs,
		Episodes: episodes,
		MaxPages: maxPages,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/latest", h.listing("latest"))
	rg.GET("/ongoing", h.listing("ongoing"))
	rg.GET("/completed", h.listing("completed"))
	rg.GET("/movie", h.listing("movie"))
	rg.GET("/genre/:name", h.genre)
	rg.GET("/search", h.search)
	rg.GET("/anime/*slug", h.detail)
	rg.GET("/watch/*slug", h.watch)
}

// listing serves one category page. Categories other than latest fall back
// to latest when upstream has nothing for them, like the original surface.
func (h *Handler) listing(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := h.clampPage(c.Query("page"))
		ctx := c.Request.Context()

		data := h.Fetcher.FetchPage(ctx, endpoint, "", page)
		served := endpoint
		if len(data) == 0 && endpoint != "latest" {
			data = h.Fetcher.FetchPage(ctx, "latest", "", page)
			served = "latest"
		}

		c.JSON(http.StatusOK, gin.H{
			"endpoint":      endpoint,
			"served_from":   served,
			"data":          data,
			"current_page":  page,
			"has_next_page": h.Fetcher.HasNext(ctx, endpoint, "", page),
			"has_prev_page": page > 1,
			"max_pages":     h.MaxPages,
		})
	}
}

func (h *Handler) genre(c *gin.Context) {
	name := c.Param("name")
	page := h.clampPage(c.Query("page"))
	ctx := c.Request.Context()

	data := h.Fetcher.FetchPage(ctx, "", name, page)
	served := "genre"
	if len(data) == 0 {
		data = h.Fetcher.FetchPage(ctx, "latest", "", page)
		served = "latest"
	}

	c.JSON(http.StatusOK, gin.H{
		"genre":         name,
		"served_from":   served,
		"data":          data,
		"current_page":  page,
		"has_next_page": h.Fetcher.HasNext(ctx, "", name, page),
		"has_prev_page": page > 1,
		"max_pages":     h.MaxPages,
	})
}

func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	page := h.clampPage(c.Query("page"))

	if query == "" {
		c.JSON(http.StatusOK, gin.H{
			"query":         "",
			"data":          []models.AnimeEntry{},
			"current_page":  page,
			"total_results": 0,
		})
		return
	}

	results, err := h.Client.Search(c.Request.Context(), query)
	if err != nil {
		results = nil
	}

	// The upstream search endpoint is unpaginated; page it here.
	start := (page - 1) * searchPageSize
	end := start + searchPageSize
	var pageItems []models.AnimeEntry
	if start < len(results) {
		if end > len(results) {
			end = len(results)
		}
		pageItems = results[start:end]
	}

	c.JSON(http.StatusOK, gin.H{
		"query":         query,
		"data":          pageItems,
		"current_page":  page,
		"has_next_page": len(results) > start+searchPageSize,
		"has_prev_page": page > 1,
		"total_results": len(results),
		"max_pages":     h.MaxPages,
	})
}

func (h *Handler) detail(c *gin.Context) {
	slug := strings.Trim(c.Param("slug"), "/")

	entry, ok := h.Slugs.Resolve(c.Request.Context(), slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      fmt.Sprintf("anime %q not found", slug),
			"suggestion": "try the search endpoint",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anime":        entry,
		"episode_list": episodeList(slug, entry.EpisodeCount()),
	})
}

func (h *Handler) watch(c *gin.Context) {
	slug := strings.Trim(c.Param("slug"), "/")

	animeSlug, episode, ok := splitEpisodeSlug(slug)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "invalid watch path",
			"suggestion": "use /watch/anime-slug/episode-N",
		})
		return
	}

	ctx := c.Request.Context()
	entry, found := h.Slugs.Resolve(ctx, animeSlug)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      fmt.Sprintf("anime %q not found", animeSlug),
			"suggestion": "go back to the listing",
		})
		return
	}

	video, hasVideo := h.Episodes.Resolve(ctx, entry, episode)

	resp := gin.H{
		"title":        fmt.Sprintf("%s - Episode %d", entryTitle(entry), episode),
		"anime_url":    animeSlug,
		"anime_title":  entryTitle(entry),
		"episode":      episode,
		"video_data":   video,
		"next_episode": episode + 1,
	}
	if episode > 1 {
		resp["prev_episode"] = episode - 1
	}
	if !hasVideo {
		resp["video_error"] = "no playable video found for this episode"
	}
	c.JSON(http.StatusOK, resp)
}

// clampPage parses a page query param and clamps it to [1, MaxPages].
func (h *Handler) clampPage(raw string) int {
	page := 1
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		page = n
	}
	if page < 1 {
		page = 1
	}
	if page > h.MaxPages {
		page = h.MaxPages
	}
	return page
}

// splitEpisodeSlug parses ".../episode-N" or ".../ep-N" watch paths into the
// anime slug and the episode number.
func splitEpisodeSlug(slug string) (string, int, bool) {
	var animePart, epPart string
	if i := strings.LastIndex(slug, "episode-"); i >= 0 {
		animePart, epPart = slug[:i], slug[i+len("episode-"):]
	} else if i := strings.LastIndex(slug, "ep-"); i >= 0 {
		animePart, epPart = slug[:i], slug[i+len("ep-"):]
	} else {
		return "", 0, false
	}

	episode, err := strconv.Atoi(strings.Trim(epPart, "/"))
	if err != nil || episode < 1 {
		return "", 0, false
	}
	return strings.Trim(animePart, "-/"), episode, true
}

// episodeList derives the per-episode links shown on a detail view from the
// entry's reported total. The total is capped; upstream totals are advisory
// and sometimes absurd.
func episodeList(slug string, total int) []models.EpisodeRef {
	if total > maxEpisodeList {
		total = maxEpisodeList
	}
	out := make([]models.EpisodeRef, 0, total)
	base := strings.TrimRight(slug, "/")
	for i := 1; i <= total; i++ {
		out = append(out, models.EpisodeRef{
			Episode: i,
			URL:     fmt.Sprintf("%s/episode-%d/", base, i),
			Title:   fmt.Sprintf("Episode %d", i),
		})
	}
	return out
}

func entryTitle(e *models.AnimeEntry) string {
	if e.Title != "" {
		return e.Title
	}
	return "Unknown"
}
