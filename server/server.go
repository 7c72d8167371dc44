// Package server exposes the translator, usage statistics and per-client
// histories over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/history"
	"github.com/ZaguanLabs/polyglot/logging"
	"github.com/ZaguanLabs/polyglot/metrics"
	"github.com/ZaguanLabs/polyglot/stats"
)

const shutdownTimeout = 10 * time.Second

// Config wires the server's collaborators.
type Config struct {
	Translator  *polyglot.Translator
	Histories   *history.Registry   // nil disables the history endpoints
	Deriver     *stats.Deriver      // default: wall clock, local time
	Metrics     *metrics.Metrics    // optional
	Gatherer    prometheus.Gatherer // serves /metrics when set
	Logger      *zap.Logger         // default: no-op
	CORSOrigins []string            // empty allows all origins
}

// Server is the polyglot HTTP API.
type Server struct {
	translator *polyglot.Translator
	histories  *history.Registry
	deriver    *stats.Deriver
	logger     *zap.Logger
	engine     *gin.Engine
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		translator: cfg.Translator,
		histories:  cfg.Histories,
		deriver:    cfg.Deriver,
		logger:     cfg.Logger,
	}
	if s.deriver == nil {
		s.deriver = stats.NewDeriver()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(logging.GinRecovery(s.logger))
	engine.Use(logging.GinLogger(s.logger))
	engine.Use(cfg.Metrics.HTTPMetrics())
	engine.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	api := engine.Group("/api")
	api.POST("/translate", s.handleTranslate)
	api.POST("/detect-language", s.handleDetectLanguage)
	api.GET("/stats", s.handleStats)
	api.GET("/languages", s.handleLanguages)
	api.GET("/health", s.handleHealth)

	if s.histories != nil {
		h := api.Group("/history", s.clientID())
		h.GET("", s.handleHistoryList)
		h.POST("", s.handleHistoryAppend)
		h.DELETE("", s.handleHistoryClear)
		h.DELETE("/:index", s.handleHistoryRemove)
		h.POST("/restore", s.handleHistoryRestore)
		h.GET("/stats", s.handleHistoryStats)
	}

	if cfg.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	s.engine = engine
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", ClientIDHeader},
		ExposeHeaders: []string{ClientIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
