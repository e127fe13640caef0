package handlers

import (
	"net/http"

	"ref-check/internal/auth"
	"ref-check/internal/services"

	"github.com/gin-gonic/gin"
)

// ClientHandler handles the login endpoint used by the web client.
type ClientHandler struct {
	authors *services.AuthorsService
	tokens  *auth.TokenIssuer
}

// NewClientHandler creates a new client handler
func NewClientHandler(authors *services.AuthorsService, tokens *auth.TokenIssuer) *ClientHandler {
	return &ClientHandler{authors: authors, tokens: tokens}
}

// RegisterRoutes mounts the client routes on the router.
func (h *ClientHandler) RegisterRoutes(r *gin.Engine) {
	rg := r.Group("/client")
	rg.POST("/login", h.Login)
}

// Login handles POST /client/login
func (h *ClientHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	author, err := h.authors.Authenticate(in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(author.ID, author.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"author": author,
	})
}
