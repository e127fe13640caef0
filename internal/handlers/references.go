package handlers

import (
	"net/http"

	"ref-check/internal/services"

	"github.com/gin-gonic/gin"
)

// ReferencesHandler handles HTTP requests for citation edges
type ReferencesHandler struct {
	references *services.ReferencesService
}

// NewReferencesHandler creates a new references handler
func NewReferencesHandler(references *services.ReferencesService) *ReferencesHandler {
	return &ReferencesHandler{references: references}
}

// RegisterRoutes mounts the reference routes on the router. There is no
// delete route: references only disappear when an endpoint article is deleted.
func (h *ReferencesHandler) RegisterRoutes(r *gin.Engine) {
	rg := r.Group("/references")
	rg.POST("/", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.GET("/from/:article_id", h.ListFrom)
	rg.GET("/to/:article_id", h.ListTo)
	rg.PATCH("/:id", h.Patch)
}

// Create handles POST /references/
func (h *ReferencesHandler) Create(c *gin.Context) {
	var in services.ReferenceCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cited_from_id, cited_to_id and content are required"})
		return
	}
	ref, err := h.references.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// GetByID handles GET /references/:id
func (h *ReferencesHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ref, err := h.references.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

// ListFrom handles GET /references/from/:article_id
func (h *ReferencesHandler) ListFrom(c *gin.Context) {
	articleID, ok := parseID(c, "article_id")
	if !ok {
		return
	}
	refs, err := h.references.ListFrom(articleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

// ListTo handles GET /references/to/:article_id
func (h *ReferencesHandler) ListTo(c *gin.Context) {
	articleID, ok := parseID(c, "article_id")
	if !ok {
		return
	}
	refs, err := h.references.ListTo(articleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

// Patch handles PATCH /references/:id
func (h *ReferencesHandler) Patch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindPatchBody(c)
	if !ok {
		return
	}
	ref, err := h.references.Patch(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}
