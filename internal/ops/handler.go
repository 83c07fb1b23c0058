package ops

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animehub/internal/catalog"
	"animehub/internal/upstream"
	"animehub/pkg/utils"
)

// Handler exposes the operational surface: health, stats, cache status and
// the reload trigger. Every route answers from in-memory state; nothing
// here blocks on upstream I/O.
type Handler struct {
	Cache  *catalog.Cache
	Client *upstream.Client
	Hub    *Hub
	Cfg    utils.Config
}

func NewHandler(cache *catalog.Cache, client *upstream.Client, hub *Hub, cfg utils.Config) *Handler {
	return &Handler{Cache: cache, Client: client, Hub: hub, Cfg: cfg}
}

// RegisterRoutes wires the public ops routes; the reload trigger is wired
// separately so the caller can put auth middleware in front of it.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/stats", h.stats)
	r.GET("/cache/info", h.cacheInfo)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", WSHandler(h.Hub))
}

// RegisterReload wires the reload trigger onto the given (possibly
// auth-protected) group.
func (h *Handler) RegisterReload(rg *gin.RouterGroup) {
	rg.POST("/cache/reload", h.reloadCache)
	rg.GET("/cache/reload", h.reloadCache) // the original surface used GET
}

func (h *Handler) health(c *gin.Context) {
	info := h.Cache.Info()
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      "animehub",
		"timestamp":    time.Now(),
		"cache_status": info.State,
		"cache_size":   info.Size,
	})
}

func (h *Handler) stats(c *gin.Context) {
	info := h.Cache.Info()
	attempted, failed := h.Client.Stats()
	c.JSON(http.StatusOK, gin.H{
		"server": gin.H{
			"max_pages":       h.Cfg.MaxPages,
			"cache_max_pages": h.Cfg.CacheMaxPages,
			"api_base":        h.Cfg.APIBase,
			"server_time":     time.Now(),
		},
		"cache": info,
		"upstream": gin.H{
			"attempted_requests": attempted,
			"failed_requests":    failed,
		},
		"hub": h.Hub.Stats(),
	})
}

func (h *Handler) cacheInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"cache_info": h.Cache.Info(),
	})
}

func (h *Handler) reloadCache(c *gin.Context) {
	before := h.Cache.Info()
	started := h.Cache.Reload()

	jobID := ""
	if started {
		jobID = uuid.NewString()
		h.Hub.BroadcastJSON(LoadEvent{
			Type:  ReloadEventType,
			JobID: jobID,
			At:    time.Now(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "success",
		"reload_started":    started, // false: a load was already in flight
		"job_id":            jobID,
		"cache_size_before": before.Size,
		"timestamp":         time.Now(),
	})
}
