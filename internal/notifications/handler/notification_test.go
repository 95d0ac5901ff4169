package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"medbook/internal/notifications/repository"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

func TestList(t *testing.T) {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Service: "test"})
	repo := repository.NewMemoryNotificationRepository()
	for i := 0; i < 5; i++ {
		_ = repo.Save(context.Background(), &model.Notification{ID: fmt.Sprintf("n%d", i), Message: fmt.Sprintf("line %d", i)})
	}
	router := httprouter.New()
	NewNotificationHandler(repo, log).RegisterRoutes(router)

	tests := []struct {
		name       string
		query      string
		expectCode int
		expectLen  int
		expectHead string
	}{
		{"default page", "", http.StatusOK, 5, "n4"},
		{"limited", "?limit=2&offset=1", http.StatusOK, 2, "n3"},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
			if tt.expectCode != http.StatusOK {
				return
			}
			var resp struct {
				Data       []model.Notification `json:"data"`
				TotalCount int64                `json:"total_count"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Data) != tt.expectLen || resp.TotalCount != 5 {
				t.Errorf("expected %d of 5, got %d of %d", tt.expectLen, len(resp.Data), resp.TotalCount)
			}
			if resp.Data[0].ID != tt.expectHead {
				t.Errorf("expected newest first %s, got %s", tt.expectHead, resp.Data[0].ID)
			}
		})
	}
}
