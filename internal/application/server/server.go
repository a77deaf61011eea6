package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
	"github.com/penwyp/go-virus-feed/internal/util"
)

const shutdownTimeout = 5 * time.Second

// FeedResponse is the body of the feed, query and select endpoints
type FeedResponse struct {
	Query        string         `json:"query"`
	Selected     model.EntityID `json:"selected"`
	HasSelection bool           `json:"has_selection"`
	Tiles        []feed.Tile    `json:"tiles"`
}

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Query string `json:"query"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// Server exposes one pipeline over HTTP
type Server struct {
	config  *browser.Config
	session *Session
	router  *gin.Engine
}

// New creates a server for details. The config must be validated.
func New(config *browser.Config, details []model.DetailRecord) *Server {
	p := browser.NewPipeline(browser.OptionsFromConfig(config, nil, nil))
	p.Load(details)

	s := &Server{
		config:  config,
		session: NewSession(p),
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	api := router.Group("/api")
	{
		api.GET("/feed", s.getFeed)
		api.GET("/panel", s.getPanel)
		api.POST("/query", s.postQuery)
		api.POST("/select/:id", s.postSelect)
		api.GET("/timeline.svg", s.getTimeline(formatter.FormatSVG))
		api.GET("/timeline.png", s.getTimeline(formatter.FormatPNG))
		api.GET("/timeline.json", s.getTimeline(formatter.FormatJSON))
	}
	return router
}

// Handler returns the HTTP handler. The session must be running for
// requests to complete.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Session returns the session owning the pipeline
func (s *Server) Session() *Session {
	return s.session
}

// Run serves on addr until ctx is done
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.session.Run(ctx)
	})
	g.Go(func() error {
		util.LogInfof("Serving on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) getFeed(c *gin.Context) {
	var resp FeedResponse
	if !s.do(c, func(p *browser.Pipeline) { resp = feedResponse(p) }) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getPanel(c *gin.Context) {
	var (
		panel browser.PanelState
		err   error
	)
	ok := s.do(c, func(p *browser.Pipeline) {
		if _, err = p.Selected(); err == nil {
			panel = p.Snapshot().Panel
		}
	})
	if !ok {
		return
	}
	if err != nil {
		respondError(c, http.StatusNotFound, "empty_dataset", err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

func (s *Server) postQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	var resp FeedResponse
	ok := s.do(c, func(p *browser.Pipeline) {
		p.QueryChanged(req.Query)
		resp = feedResponse(p)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) postSelect(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid id %q", c.Param("id")))
		return
	}

	var resp FeedResponse
	ok := s.do(c, func(p *browser.Pipeline) {
		if err = p.TileClicked(model.EntityID(id)); err == nil {
			resp = feedResponse(p)
		}
	})
	if !ok {
		return
	}
	if err != nil {
		respondError(c, http.StatusNotFound, "unknown_entity", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getTimeline(format formatter.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		width, err := sizeParam(c, "width", s.config.ExportWidth)
		if err != nil {
			respondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		height, err := sizeParam(c, "height", s.config.ExportHeight)
		if err != nil {
			respondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}

		var (
			scene timeline.Scene
			theme timeline.Theme
		)
		ok := s.do(c, func(p *browser.Pipeline) {
			scene, err = p.Layout(width, height)
			theme = p.Theme()
		})
		if !ok {
			return
		}
		if err != nil {
			respondError(c, http.StatusNotFound, "empty_dataset", err)
			return
		}

		var buf bytes.Buffer
		if err := (formatter.Exporter{Format: format, Theme: theme}).Write(&buf, scene); err != nil {
			respondError(c, http.StatusInternalServerError, "render_failed", err)
			return
		}
		c.Data(http.StatusOK, contentType(format), buf.Bytes())
	}
}

// do runs fn on the session and writes an error response when it could not
func (s *Server) do(c *gin.Context, fn func(p *browser.Pipeline)) bool {
	if err := s.session.Do(c.Request.Context(), fn); err != nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", err)
		return false
	}
	return true
}

func feedResponse(p *browser.Pipeline) FeedResponse {
	snap := p.Snapshot()
	return FeedResponse{
		Query:        snap.Query,
		Selected:     snap.Selected,
		HasSelection: snap.HasSelection,
		Tiles:        formatter.SanitizeTiles(snap.Tiles),
	}
}

func sizeParam(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > formatter.MaxExportSide {
		return 0, fmt.Errorf("%s must be an integer in 1..%d, got %q", name, formatter.MaxExportSide, raw)
	}
	return float64(v), nil
}

func contentType(format formatter.Format) string {
	switch format {
	case formatter.FormatSVG:
		return "image/svg+xml"
	case formatter.FormatPNG:
		return "image/png"
	}
	return "application/json; charset=utf-8"
}

func respondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, errorEnvelope{Error: apiError{Message: err.Error(), Code: code}})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		util.LogDebug("HTTP request",
			util.Field{Key: "method", Value: c.Request.Method},
			util.Field{Key: "path", Value: c.Request.URL.Path},
			util.Field{Key: "status", Value: c.Writer.Status()},
			util.Field{Key: "duration", Value: time.Since(start).String()},
		)
	}
}
