package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/velara/internal/service"
	"github.com/nitesh/velara/pkg/models"
)

// BackendList: GET /articles
// Returns every article as a backend row, newest first.
func (h *Handler) BackendList(c *gin.Context) {
	all, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.backendFail(c, err)
		return
	}
	rows := make([]models.BackendRow, 0, len(all))
	for _, a := range all {
		rows = append(rows, a.Row())
	}
	c.JSON(http.StatusOK, rows)
}

// BackendCreate: POST /articles
// Body: {"title","content","image_url","category"}
func (h *Handler) BackendCreate(c *gin.Context) {
	var in models.BackendInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing title or content"})
		return
	}
	a, err := h.svc.Create(c.Request.Context(), in)
	if errors.Is(err, service.ErrInvalidArticle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing title or content"})
		return
	}
	if err != nil {
		h.backendFail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a.Row())
}

func (h *Handler) backendFail(c *gin.Context, err error) {
	log.Printf("[api] request_id=%s path=%s error=%v", GetRequestID(c.Request.Context()), c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Database connection failed",
		"details": err.Error(),
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateProxy: POST /generate
// Body: {"prompt": "..."}; forwards the prompt as is and returns {"result"}.
// An unparseable body is a generation failure, a parsed one without prompt a 400.
func (h *Handler) GenerateProxy(c *gin.Context) {
	if h.proxy == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error: model API key is not set"})
		return
	}
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "AI Generation Failed",
			"details": err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'prompt' in request body"})
		return
	}

	text, err := h.proxy.Complete(c.Request.Context(), req.Prompt)
	if err != nil {
		log.Printf("[api] request_id=%s operation=generate_proxy error=%v", GetRequestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "AI Generation Failed",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": text})
}
