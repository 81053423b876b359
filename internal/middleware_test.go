package internal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"asset-angel-api/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	h := cors.Handler(corsOptions("http://localhost:5173, https://assets.example.com"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantCode    int
		wantAllowed string
	}{
		{"allowed origin", http.MethodGet, "http://localhost:5173", false, http.StatusOK, "http://localhost:5173"},
		{"second origin", http.MethodGet, "https://assets.example.com", false, http.StatusOK, "https://assets.example.com"},
		{"foreign origin", http.MethodGet, "https://evil.example.com", false, http.StatusOK, ""},
		{"no origin", http.MethodGet, "", false, http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:5173", true, http.StatusOK, "http://localhost:5173"},
		{"foreign preflight", http.MethodOptions, "https://evil.example.com", true, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/assets", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
				req.Header.Set("Access-Control-Request-Headers", "authorization")
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.preflight {
				assert.NotEqual(t, "ok", w.Body.String(), "preflight must not reach the handler")
			}
			if !tt.preflight && tt.wantAllowed != "" {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Token-Expires-At")
			}
			if tt.preflight && tt.wantAllowed != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	h := cors.Handler(corsOptions("*"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://anywhere.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Token-Expires-At")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug", "json")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Get("/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("handler ran")
		w.WriteHeader(http.StatusTeapot)
	})
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/assets/AST-001", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var handler, access, failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &handler))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &access))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &failed))

	assert.Equal(t, "handler ran", handler["msg"])
	assert.NotEmpty(t, handler["request_id"])
	assert.Equal(t, handler["request_id"], access["request_id"], "handler logs carry the request id")

	assert.Equal(t, "http request", access["msg"])
	assert.Equal(t, "/assets/{id}", access["route"])
	assert.Equal(t, float64(http.StatusTeapot), access["status"])
	assert.Equal(t, slog.LevelInfo.String(), access["level"])

	assert.Equal(t, slog.LevelError.String(), failed["level"])
	assert.NotEqual(t, access["request_id"], failed["request_id"])
}
