package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus returns the native module status
func (s *Server) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.module.Status())
}

// GetReport returns the diagnostics report as HTML, or Markdown with ?format=md
func (s *Server) GetReport(c *gin.Context) {
	rep, err := s.renderer.Generate(s.module.Status())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to render report: " + err.Error(),
		})
		return
	}

	switch c.Query("format") {
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(rep.Markdown))
	case "json":
		c.JSON(http.StatusOK, rep)
	default:
		page := "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>" +
			rep.Title + "</title></head><body>\n" + rep.HTML + "</body></html>\n"
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}
