package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-api/internal/controller"
)

var testOrigins = []string{"http://localhost:4200", "http://localhost:3000"}

func newTestRouter(origins []string) http.Handler {
	return Router(controller.NewTodoController(nil, nil), origins)
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		reqHeaders  string
		wantStatus  int
		wantAllow   string
		wantHeaders string
	}{
		{"allowed origin", testOrigins, "http://localhost:4200", "Content-Type", http.StatusNoContent, "http://localhost:4200", "Content-Type"},
		{"custom header reflected", testOrigins, "http://localhost:4200", "x-custom-header, content-type", http.StatusNoContent, "http://localhost:4200", "x-custom-header, content-type"},
		{"unknown origin", testOrigins, "http://evil.example", "x-custom-header", http.StatusForbidden, "", ""},
		{"wildcard reflects origin", []string{"*"}, "http://anything.example", "X-Trace", http.StatusNoContent, "http://anything.example", "X-Trace"},
		{"empty allow-list", nil, "http://localhost:4200", "Content-Type", http.StatusForbidden, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", tt.reqHeaders)
			w := httptest.NewRecorder()
			newTestRouter(tt.origins).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin: got %q, want %q", got, tt.wantAllow)
			}
			if got := w.Header().Get("Access-Control-Allow-Headers"); got != tt.wantHeaders {
				t.Errorf("Access-Control-Allow-Headers: got %q, want %q", got, tt.wantHeaders)
			}
			if tt.wantAllow != "" && w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Errorf("Access-Control-Allow-Credentials: got %q, want true", w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORSOnSimpleRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	newTestRouter(testOrigins).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want http://localhost:3000", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(testOrigins).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/todos/", nil))

	if w.Code != http.StatusMovedPermanently {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusMovedPermanently)
	}
	if got := w.Header().Get("Location"); got != "/todos" {
		t.Errorf("Location: got %q, want /todos", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(testOrigins).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	if got, want := w.Body.String(), `{"detail":"Not Found"}`; got != want {
		t.Errorf("body: got %s, want %s", got, want)
	}
}
