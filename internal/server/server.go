// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labforms/coc-extractor/internal/common"
)

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(cfg common.ServerConfig, h *Handlers, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(logger))

	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/extract", h.Extract)
		v1.POST("/extract/async", h.ExtractAsync)
		v1.POST("/compare", h.Compare)
		v1.GET("/results", h.ListResults)
		v1.GET("/results/:id", h.GetResult)
		v1.GET("/results/:id/export", h.ExportResult)
	}

	return &Server{
		srv: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
