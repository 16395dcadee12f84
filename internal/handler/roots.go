package handler

import (
	"net/http"
	"os"

	"github.com/CageChen/nativefs/internal/config"
	"github.com/gin-gonic/gin"
)

// GetRoots returns the configured roots and excludes
func (s *Server) GetRoots(c *gin.Context) {
	s.mu.RLock()
	roots := append([]config.Root{}, s.cfg.Roots...)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"roots":   roots,
		"exclude": s.cfg.Exclude,
	})
}

// AddRootRequest represents a request to add a root
type AddRootRequest struct {
	Path  string `json:"path" binding:"required"`
	Alias string `json:"alias"`
}

// AddRoot adds a new root to the configuration
func (s *Server) AddRoot(c *gin.Context) {
	var req AddRootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is required",
		})
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path does not exist: " + req.Path,
		})
		return
	}
	if !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is not a directory",
		})
		return
	}

	s.mu.Lock()
	before := len(s.cfg.Roots)
	if err := s.cfg.AddRoot(req.Path, req.Alias); err != nil {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
		return
	}
	added := len(s.cfg.Roots) > before
	var root config.Root
	if added {
		root = s.cfg.Roots[len(s.cfg.Roots)-1]
	}
	saveErr := s.cfg.Save()
	roots := append([]config.Root{}, s.cfg.Roots...)
	s.mu.Unlock()

	if saveErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to save config: " + saveErr.Error(),
		})
		return
	}
	if added && s.watcher != nil {
		s.watcher.AddRoot(root)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "root added",
		"roots":   roots,
	})
}

// RemoveRootRequest represents a request to remove a root (by index)
type RemoveRootRequest struct {
	Index *int `json:"index" binding:"required"`
}

// RemoveRoot removes a root from the configuration by index
func (s *Server) RemoveRoot(c *gin.Context) {
	var req RemoveRootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "index is required",
		})
		return
	}

	s.mu.Lock()
	if *req.Index < 0 || *req.Index >= len(s.cfg.Roots) {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid root index",
		})
		return
	}
	removed := s.cfg.Roots[*req.Index]
	s.cfg.RemoveRootByIndex(*req.Index)
	saveErr := s.cfg.Save()
	roots := append([]config.Root{}, s.cfg.Roots...)
	s.mu.Unlock()

	if saveErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to save config: " + saveErr.Error(),
		})
		return
	}
	if s.watcher != nil {
		s.watcher.RemoveRoot(removed.Path)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "root removed",
		"roots":   roots,
	})
}
