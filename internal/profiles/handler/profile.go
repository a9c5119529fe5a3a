package handler

import (
	"net/http"

	"marketplace/internal/profiles/service"
	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
	"marketplace/pkg/middleware"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ProfileHandler struct {
	service service.ProfileService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewProfileHandler(service service.ProfileService, authenticator *middleware.Authenticator, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *ProfileHandler) UpsertBuyer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	buyerID := ps.ByName("id")
	if !middleware.SelfOrAdmin(r, buyerID) {
		h.writeError(w, "UpsertBuyer", apperrors.Forbidden("You can only update your own profile"))
		return
	}

	var input model.BuyerProfileInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "UpsertBuyer", err)
		return
	}

	profile, err := h.service.UpsertBuyer(r.Context(), buyerID, &input)
	if err != nil {
		h.writeError(w, "UpsertBuyer", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Buyer profile updated successfully", profile); err != nil {
		h.log.Error("failed to write success response", "handler", "UpsertBuyer", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) UpsertVendor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vendorID := ps.ByName("id")
	if !middleware.SelfOrAdmin(r, vendorID) {
		h.writeError(w, "UpsertVendor", apperrors.Forbidden("You can only update your own profile"))
		return
	}

	var input model.VendorProfileInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "UpsertVendor", err)
		return
	}

	profile, err := h.service.UpsertVendor(r.Context(), vendorID, &input)
	if err != nil {
		h.writeError(w, "UpsertVendor", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Vendor profile updated successfully", profile); err != nil {
		h.log.Error("failed to write success response", "handler", "UpsertVendor", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) GetDashboard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	buyerID := ps.ByName("id")
	if !middleware.SelfOrAdmin(r, buyerID) {
		h.writeError(w, "GetDashboard", apperrors.Forbidden("You can only view your own dashboard"))
		return
	}

	dashboard, err := h.service.GetDashboard(r.Context(), buyerID)
	if err != nil {
		h.writeError(w, "GetDashboard", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Dashboard fetched successfully", dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDashboard", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	authenticated := h.auth.Require()

	router.POST("/api/v1/buyers/:id/profile", authenticated(h.UpsertBuyer))
	router.PATCH("/api/v1/buyers/:id/profile", authenticated(h.UpsertBuyer))
	router.GET("/api/v1/buyers/:id/dashboard", authenticated(h.GetDashboard))
	router.POST("/api/v1/vendors/:id/profile", authenticated(h.UpsertVendor))
}
