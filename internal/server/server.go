package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/christopherklint97/timecard/internal/report"
	"github.com/christopherklint97/timecard/internal/store"
)

// Server exposes a Repository over HTTP.
type Server struct {
	repo   store.Repository
	logger *slog.Logger
	report report.Options
	now    func() time.Time
	engine *gin.Engine
}

type Options struct {
	Report report.Options
	// Now overrides the clock used to resolve report weeks.
	Now func() time.Time
}

func New(repo store.Repository, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		repo:   repo,
		logger: logger,
		report: opts.Report,
		now:    opts.Now,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// Project codes may contain escaped slashes.
	r.UseRawPath = true
	r.Use(gin.Recovery(), RequestIDMiddleware(), s.accessLog())

	r.GET("/healthz", s.healthz)

	r.POST("/entry", s.createEntry)
	r.GET("/entry/:id", s.getEntry)
	r.GET("/entries_between/:start/:stop", s.entriesBetween)
	r.GET("/last_entry", s.lastEntry)
	r.POST("/update_entry", s.updateEntry)
	r.POST("/delete_entry/:id", s.deleteEntry)
	r.POST("/delete_last_entry", s.deleteLastEntry)

	r.POST("/project", s.createProject)
	r.GET("/project/:id", s.getProject)
	r.GET("/all_projects", s.allProjects)
	r.POST("/update_project", s.updateProject)
	r.POST("/delete_project/:code", s.deleteProject)

	r.GET("/report/:weeks_ago", s.weeklyReport)
	r.GET("/schema/:kind", s.schema)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.repo.Ping(c.Request.Context()); err != nil {
		s.fail(c, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
