package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/velara/internal/auth"
	"github.com/nitesh/velara/internal/llm"
	"github.com/nitesh/velara/internal/media"
	"github.com/nitesh/velara/internal/panel"
	"github.com/nitesh/velara/internal/service"
	"github.com/nitesh/velara/internal/store"
	"github.com/nitesh/velara/pkg/models"
)

// Prompter forwards a raw prompt to the text model.
type Prompter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Deps struct {
	Service  *service.Service
	Media    media.Ingestor
	Verifier auth.Verifier
	// Proxy is nil when no model API key is configured.
	Proxy Prompter
	// Pinger reports store health; nil means the store has nothing to ping.
	Pinger store.Pinger

	ServiceName string
	Version     string
}

type Handler struct {
	svc      *service.Service
	media    media.Ingestor
	verifier auth.Verifier
	proxy    Prompter
	health   *HealthHandler
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		svc:      d.Service,
		media:    d.Media,
		verifier: d.Verifier,
		proxy:    d.Proxy,
		health:   NewHealthHandler(d.ServiceName, d.Version, d.Pinger),
	}
}

// NewRouter builds the engine with recovery, request ids and CORS.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), CORS())
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	h.health.RegisterRoutes(r)

	r.GET("/articles", h.BackendList)
	r.POST("/articles", h.BackendCreate)
	r.OPTIONS("/articles", preflight)
	r.POST("/generate", h.GenerateProxy)
	r.OPTIONS("/generate", preflight)

	v1 := r.Group("/v1")
	v1.POST("/login", h.Login)

	admin := v1.Group("")
	admin.Use(auth.Middleware(h.verifier))
	{
		admin.GET("/articles", h.ListArticles)
		admin.GET("/articles/stats", h.Stats)
		admin.GET("/articles/new", h.NewArticle)
		admin.POST("/articles", h.CreateArticle)
		admin.POST("/articles/generate", h.Generate)
		admin.GET("/articles/:id", h.GetArticle)
		admin.PUT("/articles/:id", h.SaveArticle)
		admin.DELETE("/articles/:id", h.DeleteArticle)
		admin.POST("/media", h.UploadMedia)
	}
}

func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

type loginRequest struct {
	Code string `json:"code"`
}

// Login: POST /v1/login
// Body: {"code": "..."}; answers with the panel state that follows.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if !h.verifier.Verify(c.Request.Context(), strings.TrimSpace(req.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Incorrect Password",
			"state": panel.Reduce(panel.Initial(), panel.Action{Kind: panel.LoginFailed}),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"state":         panel.Reduce(panel.Initial(), panel.Action{Kind: panel.LoginSucceeded}),
	})
}

// ListArticles: GET /v1/articles?q=...
func (h *Handler) ListArticles(c *gin.Context) {
	q := c.Query("q")
	res, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "list articles", err, http.StatusInternalServerError, "failed to load articles")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{
			"query": q,
			"count": len(res),
		},
		"data": res,
	})
}

// Stats: GET /v1/articles/stats
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "stats", err, http.StatusInternalServerError, "failed to load articles")
		return
	}
	c.JSON(http.StatusOK, st)
}

// NewArticle: GET /v1/articles/new
// Returns editor defaults; nothing is stored until the article is saved.
func (h *Handler) NewArticle(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.NewDraft())
}

// GetArticle: GET /v1/articles/:id
func (h *Handler) GetArticle(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		h.fail(c, "get article", err, http.StatusInternalServerError, "failed to load article")
		return
	}
	c.JSON(http.StatusOK, a)
}

// CreateArticle: POST /v1/articles
// Body: full article; an empty id gets a fresh one.
func (h *Handler) CreateArticle(c *gin.Context) {
	var a models.Article
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if strings.TrimSpace(a.ID) == "" {
		a.ID = h.svc.NewDraft().ID
	}
	h.save(c, a, http.StatusCreated)
}

// SaveArticle: PUT /v1/articles/:id
// Body: full article; the path id wins over the body.
func (h *Handler) SaveArticle(c *gin.Context) {
	var a models.Article
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	a.ID = c.Param("id")
	h.save(c, a, http.StatusOK)
}

func (h *Handler) save(c *gin.Context, a models.Article, status int) {
	saved, err := h.svc.Save(c.Request.Context(), a)
	if errors.Is(err, service.ErrInvalidArticle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, "save article", err, http.StatusInternalServerError, "failed to save article")
		return
	}
	c.JSON(status, saved)
}

// DeleteArticle: DELETE /v1/articles/:id
func (h *Handler) DeleteArticle(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete article", err, http.StatusInternalServerError, "failed to delete article")
		return
	}
	c.Status(http.StatusNoContent)
}

type generateRequest struct {
	Topic string         `json:"topic"`
	Draft models.Article `json:"draft"`
}

// Generate: POST /v1/articles/generate
// Body: {"topic": "...", "draft": {...}}; returns the draft with generated
// title, content and excerpt, or the unchanged draft with an error.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": llm.ErrEmptyTopic.Error(), "draft": req.Draft})
		return
	}

	draft, err := h.svc.Generate(c.Request.Context(), req.Draft, req.Topic)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": llm.ErrGenerationFailed.Error(), "draft": draft})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// UploadMedia: POST /v1/media (multipart, field "file")
func (h *Handler) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, "open upload", err, http.StatusInternalServerError, media.ErrUpload.Error())
		return
	}
	defer f.Close()

	ref, err := h.media.Ingest(c.Request.Context(), media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		h.fail(c, "ingest upload", err, http.StatusInternalServerError, media.ErrUpload.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": ref})
}

// fail logs the cause and answers with a generic message.
func (h *Handler) fail(c *gin.Context, op string, err error, status int, msg string) {
	log.Printf("[api] request_id=%s operation=%s error=%v", GetRequestID(c.Request.Context()), op, err)
	c.JSON(status, gin.H{"error": msg})
}
