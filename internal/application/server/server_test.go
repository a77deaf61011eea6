package server

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
	"github.com/penwyp/go-virus-feed/internal/testing/fixtures"
)

func newTestServer(t *testing.T, details []model.DetailRecord) *Server {
	t.Helper()
	cfg := &browser.Config{}
	require.NoError(t, cfg.Validate())

	s := New(cfg, details)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Session().Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func serve(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeFeed(t *testing.T, rec *httptest.ResponseRecorder) FeedResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp FeedResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestFeedSelectsFirstEntity(t *testing.T) {
	s := newTestServer(t, fixtures.SampleRecords())

	resp := decodeFeed(t, serve(t, s, http.MethodGet, "/api/feed", ""))
	assert.True(t, resp.HasSelection)
	assert.Equal(t, model.EntityID(1), resp.Selected)
	require.Len(t, resp.Tiles, 3)
	assert.Equal(t, "Flu", resp.Tiles[0].Title)
	assert.Equal(t, 1.0, resp.Tiles[0].Opacity)
	assert.Equal(t, 0.5, resp.Tiles[1].Opacity)
}

func TestQueryAndSelect(t *testing.T) {
	s := newTestServer(t, fixtures.SampleRecords())

	resp := decodeFeed(t, serve(t, s, http.MethodPost, "/api/query", `{"query":"co"}`))
	assert.Equal(t, "co", resp.Query)
	require.Len(t, resp.Tiles, 1)
	assert.Equal(t, model.EntityID(2), resp.Selected)

	rec := serve(t, s, http.MethodGet, "/api/panel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var panel browser.PanelState
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &panel))
	assert.Equal(t, "Cold", panel.Title)
	assert.Equal(t, "Tue", panel.Day)

	// an empty result keeps the selection
	resp = decodeFeed(t, serve(t, s, http.MethodPost, "/api/query", `{"query":"zzz"}`))
	assert.Empty(t, resp.Tiles)
	assert.Equal(t, model.EntityID(2), resp.Selected)

	resp = decodeFeed(t, serve(t, s, http.MethodPost, "/api/query", `{"query":""}`))
	require.Len(t, resp.Tiles, 3)
	assert.Equal(t, model.EntityID(1), resp.Selected)

	resp = decodeFeed(t, serve(t, s, http.MethodPost, "/api/select/3", ""))
	assert.Equal(t, model.EntityID(3), resp.Selected)
	assert.True(t, resp.Tiles[2].Selected)
	assert.Equal(t, 1.0, resp.Tiles[2].Opacity)
}

func TestSelectErrors(t *testing.T) {
	s := newTestServer(t, fixtures.SampleRecords())

	assert.Equal(t, http.StatusBadRequest, serve(t, s, http.MethodPost, "/api/select/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, s, http.MethodPost, "/api/select/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, s, http.MethodPost, "/api/query", `{`).Code)
}

func TestTimelineFormats(t *testing.T) {
	s := newTestServer(t, fixtures.SampleRecords())

	rec := serve(t, s, http.MethodGet, "/api/timeline.svg?width=600&height=300", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `width="600" height="300"`)
	assert.Contains(t, rec.Body.String(), ">08:00 radio</text>")

	rec = serve(t, s, http.MethodGet, "/api/timeline.png?width=320&height=200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	rec = serve(t, s, http.MethodGet, "/api/timeline.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc formatter.TimelineDocument
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, 1200.0, doc.Scene.Width)
	assert.Equal(t, []string{"radio", "tv", "web"}, doc.Scene.MediaOrder)

	assert.Equal(t, http.StatusBadRequest, serve(t, s, http.MethodGet, "/api/timeline.svg?width=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, s, http.MethodGet, "/api/timeline.png?height=x", "").Code)
}

func TestEmptyDataset(t *testing.T) {
	s := newTestServer(t, nil)

	resp := decodeFeed(t, serve(t, s, http.MethodGet, "/api/feed", ""))
	assert.False(t, resp.HasSelection)
	assert.Empty(t, resp.Tiles)

	assert.Equal(t, http.StatusNotFound, serve(t, s, http.MethodGet, "/api/panel", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, s, http.MethodGet, "/api/timeline.svg", "").Code)
}

func TestSessionClosed(t *testing.T) {
	cfg := &browser.Config{}
	require.NoError(t, cfg.Validate())
	s := New(cfg, fixtures.SampleRecords())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Session().Run(ctx))

	err := s.Session().Do(context.Background(), func(*browser.Pipeline) {})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "/api/feed", "").Code)
}

func TestSessionSerializesCommands(t *testing.T) {
	s := newTestServer(t, fixtures.SampleRecords())

	const n = 20
	errs := make(chan error, n)
	counter := 0
	for i := 0; i < n; i++ {
		go func() {
			errs <- s.Session().Do(context.Background(), func(*browser.Pipeline) { counter++ })
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, n, counter)
}
