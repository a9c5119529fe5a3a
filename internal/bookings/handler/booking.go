package handler

import (
	"net/http"

	"marketplace/internal/bookings/service"
	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
	"marketplace/pkg/middleware"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, authenticator *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if req.UserID != "" && !middleware.SelfOrAdmin(r, req.UserID) {
		h.writeError(w, "Create", apperrors.Forbidden("You can only book for yourself"))
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Booking created successfully", booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	if !middleware.SelfOrAdmin(r, booking.UserID) {
		h.writeError(w, "GetByID", apperrors.Forbidden("You can only view your own bookings"))
		return
	}

	if err := httputil.WriteSuccess(w, "Booking fetched successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByBuyer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	buyerID := ps.ByName("id")
	if !middleware.SelfOrAdmin(r, buyerID) {
		h.writeError(w, "GetByBuyer", apperrors.Forbidden("You can only view your own bookings"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetByBuyer", err)
		return
	}

	bookings, total, err := h.service.GetByUser(r.Context(), buyerID, limit, offset)
	if err != nil {
		h.writeError(w, "GetByBuyer", err)
		return
	}

	if err := httputil.WritePaginated(w, "Bookings fetched successfully", bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByBuyer", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	authenticated := h.auth.Require()

	router.POST("/api/v1/bookings", authenticated(h.Create))
	router.GET("/api/v1/bookings/id/:id", authenticated(h.GetByID))
	router.GET("/api/v1/buyers/:id/bookings", authenticated(h.GetByBuyer))
}
