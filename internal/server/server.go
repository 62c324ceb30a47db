// Package server wires the HTTP routes for the portfolio backend.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/contact"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Contacts  *contact.Service
	DB        Pinger
	Logger    zerolog.Logger
	StaticDir string
}

// New builds the gin engine. The caller picks the gin mode beforehand.
func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(opts.Logger), gin.Recovery())

	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			r.Static("/static", opts.StaticDir)
		} else {
			opts.Logger.Debug().Str("dir", opts.StaticDir).Msg("static directory not found, skipping")
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		if opts.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.DB.Ping(ctx); err != nil {
				opts.Logger.Error().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		opts.Logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, contact.Result{Message: contact.MsgFailed})
	}))
	api.POST("/contact", contactHandler(opts.Contacts))

	return r
}

// maxBodyBytes caps contact request bodies at 100kb.
const maxBodyBytes = 100 << 10

func contactHandler(svc *contact.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		var in contact.Submission
		if err := c.ShouldBindJSON(&in); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, contact.Result{Message: "Request body too large"})
				return
			}
			res := contact.ResultFor(contact.Message{}, contact.DecodeError(err))
			c.JSON(res.Status, res)
			return
		}

		res := svc.Submit(c.Request.Context(), in)
		c.JSON(res.Status, res)
	}
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
