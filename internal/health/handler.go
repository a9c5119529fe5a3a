package health

import (
	"context"
	"net/http"
	"time"

	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 2 * time.Second

type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Handler struct {
	db  Pinger
	log *logger.Logger
}

func NewHandler(db Pinger, log *logger.Logger) *Handler {
	return &Handler{
		db:  db,
		log: log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status, body := http.StatusOK, Response{Status: "ready", Database: "ok"}
	if err := h.db.Ping(ctx, nil); err != nil {
		h.log.Error("Database health check failed", "error", err, "path", r.URL.Path)
		status, body = http.StatusServiceUnavailable, Response{Status: "unavailable", Database: "error"}
	}

	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
