package ui

import (
	"net/http"

	"gopulse/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", s.newPage(c, "Lessons", "", nil))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleNotFound(c *gin.Context) {
	s.renderError(c, errors.NotFound("page "+c.Request.URL.Path))
}
