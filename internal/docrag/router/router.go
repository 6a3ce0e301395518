// Package router wires the HTTP routes of the document service.
package router

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/handler"
)

//go:embed web
var webFS embed.FS

// New builds the gin engine with all routes registered.
func New(mode string, h *handler.Handler) *gin.Engine {
	gin.SetMode(mode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")
	{
		docs := v1.Group("/documents")
		{
			docs.POST("", h.Upload)
			docs.GET("", h.List)
			docs.GET("/:id/markdown", h.Markdown)
			docs.DELETE("/:id", h.Delete)
		}

		v1.POST("/query", h.Query)
		v1.GET("/stats", h.Stats)
		v1.GET("/formats", h.Formats)
	}

	registerWebUI(engine)

	logger.Info("HTTP routes registered")
	return engine
}

// registerWebUI serves the embedded single-page UI at the root.
// http.FileServer redirects index.html requests, so the page is served
// directly from the embedded bytes.
func registerWebUI(engine *gin.Engine) {
	page, err := fs.ReadFile(webFS, "web/index.html")
	if err != nil {
		logger.Warnw("web UI assets unavailable", "error", err)
		return
	}

	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Infow("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}
