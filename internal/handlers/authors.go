package handlers

import (
	"net/http"

	"ref-check/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthorsHandler handles HTTP requests for authors
type AuthorsHandler struct {
	authors *services.AuthorsService
}

// NewAuthorsHandler creates a new authors handler
func NewAuthorsHandler(authors *services.AuthorsService) *AuthorsHandler {
	return &AuthorsHandler{authors: authors}
}

// RegisterRoutes mounts the author routes on the router.
func (h *AuthorsHandler) RegisterRoutes(r *gin.Engine) {
	rg := r.Group("/authors")
	rg.POST("/", h.Create)
	rg.GET("/", h.List)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id", h.Patch)
	rg.POST("/by-email", h.GetByEmail)
}

// Create handles POST /authors/
func (h *AuthorsHandler) Create(c *gin.Context) {
	var in services.AuthorCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}
	author, err := h.authors.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

// List handles GET /authors/
func (h *AuthorsHandler) List(c *gin.Context) {
	authors, err := h.authors.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authors)
}

// GetByID handles GET /authors/:id
func (h *AuthorsHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	author, err := h.authors.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// GetByEmail handles POST /authors/by-email
func (h *AuthorsHandler) GetByEmail(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	author, err := h.authors.GetByEmail(in.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// Delete handles DELETE /authors/:id
func (h *AuthorsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.authors.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "author deleted"})
}

// Patch handles PATCH /authors/:id
func (h *AuthorsHandler) Patch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindPatchBody(c)
	if !ok {
		return
	}
	author, err := h.authors.Patch(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}
