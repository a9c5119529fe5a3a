package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type pingFunc func(ctx context.Context, rp *readpref.ReadPref) error

func (f pingFunc) Ping(ctx context.Context, rp *readpref.ReadPref) error { return f(ctx, rp) }

func TestHealthAndReady(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
	}{
		{"liveness ignores database", "/health", errors.New("down"), http.StatusOK},
		{"ready", "/ready", nil, http.StatusOK},
		{"database down", "/ready", errors.New("down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHandler(pingFunc(func(ctx context.Context, rp *readpref.ReadPref) error {
				return tt.pingErr
			}), logger.Discard()).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
