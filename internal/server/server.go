// Package server exposes the conversion pipeline over HTTP. It owns the
// routes, request binding, and the mapping from pipeline errors to HTTP
// statuses; everything else is delegated to the htmlpdf package.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	htmlpdf "github.com/porticus-lab/htmlpdf-server"
)

// Pipeline is the conversion surface the server depends on. *htmlpdf.Converter
// implements it; tests substitute a stub.
type Pipeline interface {
	ConvertURL(ctx context.Context, rawURL string) (*htmlpdf.Result, error)
	ConvertHTML(ctx context.Context, html string) (*htmlpdf.Result, error)
	ConvertBase64(ctx context.Context, encoded string) (*htmlpdf.Result, error)
	Closed() bool
}

// Server wires the pipeline to gin routes.
type Server struct {
	pipeline Pipeline
	log      zerolog.Logger
}

// New creates a Server around the given pipeline.
func New(p Pipeline, log zerolog.Logger) *Server {
	return &Server{pipeline: p, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)
	r.POST("/convert", s.handleConvertHTML)
	r.POST("/convert-base64", s.handleConvertBase64)
	r.POST("/convert-url", s.handleConvertURL)
	return r
}

// requestLog emits one structured log line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "HTML to PDF API",
		"endpoints": gin.H{
			"/convert":        "POST - convert HTML to PDF (html_content in JSON)",
			"/convert-base64": "POST - convert base64-encoded HTML to PDF (html_base64 in JSON)",
			"/convert-url":    "POST - convert a web page to PDF (url in JSON, executes JavaScript)",
			"/health":         "GET - service health",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "ok"
	if s.pipeline.Closed() {
		status = "degraded"
	}
	c.JSON(200, gin.H{"status": status})
}
