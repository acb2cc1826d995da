package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plumeai/internal/app"
	"plumeai/internal/store"
	"plumeai/pkg/domain"
)

func newTestServer(t *testing.T, dataStore store.Store) *httptest.Server {
	t.Helper()
	cfg := app.Config{Store: dataStore}
	if dataStore != nil {
		cfg.DatabaseURLSet = true
		cfg.DatabaseNameSet = true
	}
	s, err := New(Config{
		App:             app.New(cfg),
		StreamCharDelay: time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestGreetingEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/", "/api/hello"} {
		var body map[string]string
		resp := getJSON(t, srv.URL+path, &body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
		if body["message"] == "" {
			t.Fatalf("GET %s returned no message", path)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := getJSON(t, srv.URL+"/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestEbookSaveCreatedThenUpdated(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore())

	draft := map[string]any{"title": "Guide Go", "content": "v1", "style": "pro", "progress": 10}
	var first app.SaveResult
	resp := postJSON(t, srv.URL+"/api/ebook/save", draft, &first)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first save status = %d, want 200", resp.StatusCode)
	}
	if first.Status != "created" || first.ID == "" {
		t.Fatalf("first save = %+v, want created with id", first)
	}

	draft["content"] = "v2"
	var second app.SaveResult
	postJSON(t, srv.URL+"/api/ebook/save", draft, &second)
	if second.Status != "updated" || second.ID != first.ID {
		t.Fatalf("second save = %+v, want updated with id %q", second, first.ID)
	}

	var list struct {
		Items []domain.EbookDraft `json:"items"`
	}
	getJSON(t, srv.URL+"/api/ebook/list", &list)
	if len(list.Items) != 1 {
		t.Fatalf("len(items) = %d, want exactly one document per title", len(list.Items))
	}
	if list.Items[0].Content != "v2" {
		t.Fatalf("content = %q, want the second save", list.Items[0].Content)
	}
	if list.Items[0].ID != first.ID {
		t.Fatalf("storage id not exposed as id: %+v", list.Items[0])
	}
}

func TestEbookSaveWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil)
	var body map[string]string
	resp := postJSON(t, srv.URL+"/api/ebook/save", map[string]any{"title": "x", "content": "", "style": ""}, &body)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["error"] != "Database not configured" {
		t.Fatalf("error = %q, want Database not configured", body["error"])
	}
}

func TestEbookListWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil)
	var list struct {
		Items []domain.EbookDraft `json:"items"`
	}
	resp := getJSON(t, srv.URL+"/api/ebook/list", &list)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even without store", resp.StatusCode)
	}
	if list.Items == nil || len(list.Items) != 0 {
		t.Fatalf("items = %v, want empty list", list.Items)
	}
}

func TestEbookListHonorsLimit(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore())
	for i := 0; i < 5; i++ {
		draft := map[string]any{"title": fmt.Sprintf("titre-%d", i), "content": "c", "style": "s"}
		resp := postJSON(t, srv.URL+"/api/ebook/save", draft, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("save %d status = %d", i, resp.StatusCode)
		}
		// Distinct updated_at stamps so recency ordering is stable.
		time.Sleep(2 * time.Millisecond)
	}

	var list struct {
		Items []domain.EbookDraft `json:"items"`
	}
	getJSON(t, srv.URL+"/api/ebook/list?limit=3", &list)
	if len(list.Items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(list.Items))
	}
	if list.Items[0].Title != "titre-4" {
		t.Fatalf("first item = %q, want most recently saved", list.Items[0].Title)
	}
	for i := 1; i < len(list.Items); i++ {
		if list.Items[i].UpdatedAt.After(list.Items[i-1].UpdatedAt) {
			t.Fatalf("items not ordered by updated_at descending")
		}
	}
}

func TestEbookListIgnoresMalformedLimit(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore())
	resp := getJSON(t, srv.URL+"/api/ebook/list?limit=banana", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 with default limit", resp.StatusCode)
	}
}

func TestDiagnosticsNeverFails(t *testing.T) {
	for name, dataStore := range map[string]store.Store{
		"without store": nil,
		"with store":    store.NewMemoryStore(),
	} {
		srv := newTestServer(t, dataStore)
		var d app.Diagnostics
		resp := getJSON(t, srv.URL+"/test", &d)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", name, resp.StatusCode)
		}
		if d.Backend != "running" {
			t.Fatalf("%s: backend = %q, want running", name, d.Backend)
		}
		if d.Database == "" {
			t.Fatalf("%s: database tier missing", name)
		}
	}
}

func TestPermissiveCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin = %q, want reflected origin", got)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("credentials not allowed")
	}
	if resp.Header.Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Fatalf("requested headers not allowed: %q", resp.Header.Get("Access-Control-Allow-Headers"))
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := getJSON(t, srv.URL+"/api/hello", nil)
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("response missing X-Request-Id")
	}
}
