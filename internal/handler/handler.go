package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"go-reader/internal/model"
	"go-reader/internal/service"
)

type Handler struct {
	feeds     *service.FeedService
	articles  *service.ArticleService
	sync      *service.SyncService
	status    *service.StatusService
	scheduler interface {
		NextSyncTime() time.Time
	}
}

func NewHandler(feeds *service.FeedService, articles *service.ArticleService, sync *service.SyncService, status *service.StatusService) *Handler {
	return &Handler{
		feeds:    feeds,
		articles: articles,
		sync:     sync,
		status:   status,
	}
}

// SetScheduler attaches the scheduler so status can report the next sync.
func (h *Handler) SetScheduler(scheduler interface {
	NextSyncTime() time.Time
}) {
	h.scheduler = scheduler
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Feeds
		api.GET("/feeds", h.ListFeeds)
		api.POST("/feeds", h.CreateFeed)
		api.POST("/feeds/fetch-all", h.FetchAllFeeds)
		api.GET("/feeds/:id", h.GetFeed)
		api.PATCH("/feeds/:id", h.UpdateFeed)
		api.DELETE("/feeds/:id", h.DeleteFeed)
		api.POST("/feeds/:id/fetch", h.FetchFeed)

		// Articles
		api.GET("/articles", h.ListArticles)
		api.PATCH("/articles/:id/read", h.SetArticleRead)
		api.POST("/articles/mark-all-read", h.MarkAllRead)

		// Categories
		api.GET("/categories", h.ListCategories)

		// Status
		api.GET("/status", h.GetStatus)
	}
}

// fail maps service errors onto status codes.
func fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSource):
		code = http.StatusConflict
	case errors.Is(err, service.ErrFeedUnreachable):
		log.WithError(err).Warn("Feed unreachable")
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ===== Feeds =====

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feeds.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

type createFeedRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

func (h *Handler) CreateFeed(c *gin.Context) {
	var req createFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	feed, err := h.feeds.Register(c.Request.Context(), req.URL, req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, feed)
}

func (h *Handler) GetFeed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	feed, err := h.feeds.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	stats, err := h.articles.FeedStats(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.FeedWithStats{Feed: *feed, FeedStats: *stats})
}

func (h *Handler) UpdateFeed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.FeedUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	feed, err := h.feeds.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.feeds.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) FetchFeed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	added, err := h.sync.SyncOne(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "addedCount": added})
}

func (h *Handler) FetchAllFeeds(c *gin.Context) {
	result, err := h.sync.SyncAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"addedCount": result.TotalAdded,
		"feeds":      result.Feeds,
	})
}

// ===== Articles =====

func (h *Handler) ListArticles(c *gin.Context) {
	var filter service.ArticleFilter

	if raw := c.Query("feedId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid feedId")
			return
		}
		feedID := uint(id)
		filter.FeedID = &feedID
	}
	filter.Category = c.Query("category")
	filter.Search = c.Query("search")
	filter.UnreadOnly = c.Query("unreadOnly") == "true"

	var err error
	if filter.Limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultArticleLimit))); err != nil {
		badRequest(c, "invalid limit")
		return
	}
	if filter.Offset, err = strconv.Atoi(c.DefaultQuery("offset", "0")); err != nil {
		badRequest(c, "invalid offset")
		return
	}

	articles, err := h.articles.ListArticles(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

type setReadRequest struct {
	IsRead *bool `json:"isRead"`
}

func (h *Handler) SetArticleRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req setReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.IsRead == nil {
		badRequest(c, "isRead is required")
		return
	}

	article, err := h.articles.SetRead(c.Request.Context(), id, *req.IsRead)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	var scope service.Scope
	if raw := c.Query("feedId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid feedId")
			return
		}
		feedID := uint(id)
		scope.FeedID = &feedID
	}
	scope.Category = c.Query("category")

	updated, err := h.articles.MarkAllRead(c.Request.Context(), scope)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

// ===== Categories =====

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.feeds.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ===== Status =====

func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.status.GetSystemStatus(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	if h.scheduler != nil {
		if next := h.scheduler.NextSyncTime(); !next.IsZero() {
			status.NextSyncTime = &next
		}
	}

	c.JSON(http.StatusOK, status)
}
