package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sort"
	"strings"

	nfs "github.com/CageChen/nativefs/internal/fs"
	"github.com/gin-gonic/gin"
)

// InfoResponse is returned by the info endpoint
type InfoResponse struct {
	Path    string       `json:"path"`
	Backend string       `json:"backend"`
	Info    nfs.FileInfo `json:"info"`
}

// ChildrenResponse is returned by the children endpoint
type ChildrenResponse struct {
	Path     string         `json:"path"`
	Backend  string         `json:"backend"`
	Children []nfs.DirEntry `json:"children"`
}

// SymlinkResponse is returned by the symlink endpoint
type SymlinkResponse struct {
	Path    string `json:"path"`
	Backend string `json:"backend"`
	Target  string `json:"target"`
}

// resolvePath splits "{alias}/{relativePath}" and returns the root's FileSystem.
func (s *Server) resolvePath(p string) (nfs.FileSystem, string, error) {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil, "", os.ErrNotExist
	}

	parts := strings.SplitN(p, "/", 2)
	alias := parts[0]
	rel := ""
	if len(parts) > 1 {
		rel = parts[1]
	}

	// Security: prevent path traversal
	for _, seg := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return nil, "", os.ErrPermission
		}
	}

	s.mu.RLock()
	root, ok := s.cfg.RootByAlias(alias)
	s.mu.RUnlock()
	if !ok {
		return nil, "", os.ErrNotExist
	}
	return s.fsFor(root.Path), rel, nil
}

// writeError maps filesystem errors to HTTP statuses
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, os.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, nfs.ErrNotLink):
		c.JSON(http.StatusNotFound, gin.H{"error": "not a symbolic link"})
	case errors.Is(err, os.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "filesystem call timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetInfo returns the metadata of a path
func (s *Server) GetInfo(c *gin.Context) {
	fsys, rel, err := s.resolvePath(c.Param("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	info, err := withTimeout(c.Request.Context(), s.cfg.CallTimeout.Std(), func() (nfs.FileInfo, error) {
		return fsys.Stat(rel)
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		Path:    strings.Trim(c.Param("path"), "/"),
		Backend: fsys.Name(),
		Info:    info,
	})
}

// GetChildren lists a directory, directories first
func (s *Server) GetChildren(c *gin.Context) {
	fsys, rel, err := s.resolvePath(c.Param("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	entries, err := withTimeout(c.Request.Context(), s.cfg.CallTimeout.Std(), func() ([]nfs.DirEntry, error) {
		return fsys.ReadDir(rel)
	})
	if err != nil {
		writeError(c, err)
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	c.JSON(http.StatusOK, ChildrenResponse{
		Path:     strings.Trim(c.Param("path"), "/"),
		Backend:  fsys.Name(),
		Children: entries,
	})
}

// GetSymlink returns the final target of a link
func (s *Server) GetSymlink(c *gin.Context) {
	fsys, rel, err := s.resolvePath(c.Param("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	target, err := withTimeout(c.Request.Context(), s.cfg.CallTimeout.Std(), func() (string, error) {
		return fsys.Readlink(rel)
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SymlinkResponse{
		Path:    strings.Trim(c.Param("path"), "/"),
		Backend: fsys.Name(),
		Target:  target,
	})
}
