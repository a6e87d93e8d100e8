package serverapp

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskdesk/internal/config"
)

func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	h, err := NewHandler(Options{
		Config:  cfg,
		DataDir: dir,
		Logger:  log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, dir
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, rd))
	return rec
}

func TestNewHandler_RequiresConfig(t *testing.T) {
	if _, err := NewHandler(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRootServesEmbeddedIndex(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, "GET", "/", nil)
	if rec.Code != 200 {
		t.Fatalf("GET /: got %d (Location=%q), want 200", rec.Code, rec.Header().Get("Location"))
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type: %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Fatalf("body is not the index page: %q", rec.Body.String())
	}
}

func TestStaticAssetsServed(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, "GET", "/static/js/app.js", nil)
	if rec.Code != 200 {
		t.Fatalf("GET /static/js/app.js: got %d", rec.Code)
	}
}

func TestConfiguredKnobsReachTaskHandler(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Stats.CompletionWindowDays = 3
	cfg.UI.DefaultSort = "priority-desc"
	cfg.ApplyDefaults()

	h, err := NewHandler(Options{Config: cfg, DataDir: dir, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}

	rec := do(t, h, "GET", "/api/stats/completions", nil)
	var series []struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&series); err != nil {
		t.Fatal(err)
	}
	if len(series) != 3 {
		t.Fatalf("series length = %d, want configured 3", len(series))
	}

	for _, body := range []map[string]string{
		{"text": "low", "priority": "low"},
		{"text": "high", "priority": "high"},
	} {
		if rec := do(t, h, "POST", "/api/tasks", body); rec.Code != 201 {
			t.Fatalf("create: %d", rec.Code)
		}
	}
	rec = do(t, h, "GET", "/api/tasks", nil)
	var list []struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Text != "high" {
		t.Fatalf("default sort not applied: %+v", list)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	if rec := do(t, h, "GET", "/healthz", nil); rec.Code != 200 {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/readyz", nil); rec.Code != 200 {
		t.Fatalf("readyz: %d", rec.Code)
	}
}

func TestTaskLifecycleThroughFullStack(t *testing.T) {
	h, dir := newTestServer(t)

	rec := do(t, h, "POST", "/api/tasks", map[string]string{"text": "end to end", "client": "acme"})
	if rec.Code != 201 {
		t.Fatalf("create: %d: %s", rec.Code, rec.Body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	// mutation must have hit the data directory
	if _, err := os.Stat(filepath.Join(dir, "tasks.json")); err != nil {
		t.Fatalf("tasks.json not written: %v", err)
	}

	if rec := do(t, h, "POST", "/api/tasks/"+created.ID+"/toggle", nil); rec.Code != 200 {
		t.Fatalf("toggle: %d", rec.Code)
	}

	rec = do(t, h, "GET", "/api/stats", nil)
	var stats struct {
		Active         int `json:"active"`
		CompletedToday int `json:"completedToday"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Active != 0 || stats.CompletedToday != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	if rec := do(t, h, "GET", "/api/clients", nil); rec.Code != 200 {
		t.Fatalf("clients: %d", rec.Code)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, "GET", "/api/tasks", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing X-Request-Id header")
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	h.ServeHTTP(rec, req)

	if rec.Code != 204 {
		t.Fatalf("preflight: got %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("missing Access-Control-Allow-Origin")
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	h, dir := newTestServer(t)
	if rec := do(t, h, "POST", "/api/tasks", map[string]string{"text": "durable"}); rec.Code != 201 {
		t.Fatalf("create: %d", rec.Code)
	}

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	h2, err := NewHandler(Options{Config: cfg, DataDir: dir, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}

	rec := do(t, h2, "GET", "/api/load-tasks", nil)
	var out struct {
		Tasks []struct {
			Text string `json:"text"`
		} `json:"tasks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Tasks) != 1 || out.Tasks[0].Text != "durable" {
		t.Fatalf("reloaded: %+v", out.Tasks)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	h, _ := newTestServer(t)
	if rec := do(t, h, "GET", "/definitely/not/here", nil); rec.Code != 404 {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}
