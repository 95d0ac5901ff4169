package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"medbook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
)

func TestHealthHandler(t *testing.T) {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Service: "test"})
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := httprouter.New()
	NewHealthHandler(nil, client, log).RegisterRoutes(router)

	tests := []struct {
		name  string
		path  string
		setup func()
		want  int
	}{
		{"liveness", "/health", func() {}, http.StatusOK},
		{"ready with redis up", "/ready", func() {}, http.StatusOK},
		{"not ready with redis down", "/ready", mr.Close, http.StatusServiceUnavailable},
		{"liveness ignores dependencies", "/health", func() {}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
