package handlers

import (
	"net/http"

	"ref-check/internal/services"

	"github.com/gin-gonic/gin"
)

// ArticlesHandler handles HTTP requests for articles
type ArticlesHandler struct {
	articles *services.ArticlesService
}

// NewArticlesHandler creates a new articles handler
func NewArticlesHandler(articles *services.ArticlesService) *ArticlesHandler {
	return &ArticlesHandler{articles: articles}
}

// RegisterRoutes mounts the article routes on the router. The search and
// lucky routes must be registered before /:id so gin does not swallow them.
func (h *ArticlesHandler) RegisterRoutes(r *gin.Engine) {
	rg := r.Group("/articles")
	rg.POST("/", h.Create)
	rg.GET("/search", h.Search)
	rg.GET("/lucky", h.Lucky)
	rg.GET("/authors/:author_id/articles", h.ListByAuthor)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /articles/
func (h *ArticlesHandler) Create(c *gin.Context) {
	var in services.ArticleCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	article, err := h.articles.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// GetByID handles GET /articles/:id
func (h *ArticlesHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	article, err := h.articles.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /articles/:id
func (h *ArticlesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.articles.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

// ListByAuthor handles GET /articles/authors/:author_id/articles
func (h *ArticlesHandler) ListByAuthor(c *gin.Context) {
	authorID, ok := parseID(c, "author_id")
	if !ok {
		return
	}
	articles, err := h.articles.ListByAuthor(authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Search handles GET /articles/search?title=&subject=&keyword=
func (h *ArticlesHandler) Search(c *gin.Context) {
	articles, err := h.articles.Search(
		c.Query("title"),
		c.Query("subject"),
		c.Query("keyword"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Lucky handles GET /articles/lucky?subject=
func (h *ArticlesHandler) Lucky(c *gin.Context) {
	id, err := h.articles.Random(c.Query("subject"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
