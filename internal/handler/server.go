// Package handler provides HTTP handlers for the nativefs inspection API.
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/CageChen/nativefs/internal/config"
	nfs "github.com/CageChen/nativefs/internal/fs"
	"github.com/CageChen/nativefs/internal/nativefs"
	"github.com/CageChen/nativefs/internal/report"
	"github.com/gin-gonic/gin"
)

// RootWatcher is notified when roots are added or removed at runtime
type RootWatcher interface {
	AddRoot(root config.Root)
	RemoveRoot(path string)
}

// Server holds the state shared by the API handlers
type Server struct {
	cfg      *config.Config
	mu       sync.RWMutex // guards cfg.Roots
	module   *nativefs.Module
	fsFor    func(root string) nfs.FileSystem
	renderer *report.Renderer
	watcher  RootWatcher
	ws       *WSHandler
}

// Option configures a Server
type Option func(*Server)

// WithFileSystems overrides how a root's FileSystem is chosen
func WithFileSystems(fn func(root string) nfs.FileSystem) Option {
	return func(s *Server) { s.fsFor = fn }
}

// WithWatcher keeps a watcher in sync with root changes
func WithWatcher(w RootWatcher) Option {
	return func(s *Server) { s.watcher = w }
}

// NewServer creates the API server for module
func NewServer(cfg *config.Config, module *nativefs.Module, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		module:   module,
		renderer: report.NewRenderer(),
		ws:       NewWSHandler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fsFor == nil {
		s.fsFor = nfs.Selector(module)
	}
	return s
}

// WS returns the websocket hub fed by the watcher
func (s *Server) WS() *WSHandler { return s.ws }

// Router builds the gin engine with all API routes
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/status", s.GetStatus)
		api.GET("/report", s.GetReport)

		api.GET("/info/*path", s.GetInfo)
		api.GET("/children/*path", s.GetChildren)
		api.GET("/symlink/*path", s.GetSymlink)

		api.GET("/roots", s.GetRoots)
		api.POST("/roots", s.AddRoot)
		api.DELETE("/roots", s.RemoveRoot)

		api.GET("/ws", s.ws.HandleWS)
	}
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// withTimeout runs fn on its own goroutine and gives up once d elapses.
// The native layer cannot be cancelled, so a timed out call keeps running
// in the background and its result is dropped.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func() (T, error)) (T, error) {
	var cancel context.CancelFunc
	if d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
