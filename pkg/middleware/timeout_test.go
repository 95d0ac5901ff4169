package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		handler    http.HandlerFunc
		wantStatus int
		wantHeader string
	}{
		{
			name:    "fast handler keeps its response",
			timeout: time.Second,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Booking", "c1")
				w.WriteHeader(http.StatusAccepted)
			},
			wantStatus: http.StatusAccepted,
			wantHeader: "c1",
		},
		{
			name:    "implicit ok on write",
			timeout: time.Second,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Booking", "c2")
				_, _ = w.Write([]byte(`{}`))
			},
			wantStatus: http.StatusOK,
			wantHeader: "c2",
		},
		{
			name:    "slow handler gets 504",
			timeout: 20 * time.Millisecond,
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				time.Sleep(10 * time.Millisecond)
				w.Header().Set("X-Booking", "late")
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:    "zero timeout disables the bound",
			timeout: 0,
			handler: func(w http.ResponseWriter, r *http.Request) {
				if _, ok := r.Context().Deadline(); ok {
					t.Error("expected no deadline")
				}
				w.WriteHeader(http.StatusNoContent)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequestTimeout(tt.timeout, testLogger())(tt.handler)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/c1", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("X-Booking"); got != tt.wantHeader {
				t.Errorf("expected X-Booking %q, got %q", tt.wantHeader, got)
			}
		})
	}
}

func TestRequestTimeout_PanicReachesRecovery(t *testing.T) {
	log := testLogger()
	h := Recovery(log)(RequestTimeout(time.Second, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
