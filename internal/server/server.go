package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/extractor"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const (
	DefaultListen = ":5000"
	DefaultTopK   = 30

	requestIDHeader    = "X-Request-ID"
	maxMultipartMemory = 32 << 20
	shutdownTimeout    = 10 * time.Second
)

// Config holds the settings of the HTTP server.
type Config struct {
	Listen string `mapstructure:"listen"`
	// Dataset is the resume table used when a request asks for the default dataset.
	Dataset string `mapstructure:"-"`
	// DownloadDir keeps result tables until they are downloaded.
	DownloadDir string `mapstructure:"download-dir"`
	TopK        int    `mapstructure:"-"`
}

// Deps are the collaborators the handlers work with.
type Deps struct {
	Store     *jd.Store
	Extractor *extractor.Extractor
	Scorer    *scoring.Scorer
	Skills    jd.SkillExtractor
	Logger    *zap.Logger
}

type Server struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	engine *gin.Engine
}

func New(cfg Config, deps Deps) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if deps.Extractor == nil {
		deps.Extractor = extractor.New(vocabulary.Default())
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.New()
	}
	if deps.Skills == nil {
		deps.Skills = jd.NewHeuristic(vocabulary.Default().Skills)
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.WithFields(deps.Logger),
	}

	engine := gin.New()
	engine.MaxMultipartMemory = maxMultipartMemory
	engine.Use(gin.Recovery(), requestID(), s.accessLog())

	engine.GET("/jds", s.listJDs)
	engine.POST("/add_jd", s.addJD)
	engine.POST("/analyze", s.analyze)
	engine.GET("/download/:name", s.download)

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done and then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("listen", s.cfg.Listen))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			s.logger.Error("http server error", append(fields, zap.Strings("errors", c.Errors.Errors()))...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("http client error", fields...)
		default:
			s.logger.Info("http request", fields...)
		}
	}
}

func (s *Server) requestLogger(c *gin.Context) *zap.Logger {
	return s.logger.With(zap.String("request_id", c.GetString(requestIDHeader)))
}
