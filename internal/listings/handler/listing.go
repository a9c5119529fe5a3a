package handler

import (
	"net/http"

	"marketplace/internal/listings/service"
	"marketplace/pkg/auth"
	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
	"marketplace/pkg/middleware"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ListingHandler struct {
	service service.ListingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, authenticator *middleware.Authenticator, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Missing bearer token"))
		return
	}

	var input model.ListingInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	listing, err := h.service.Create(r.Context(), claims.Sub, &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Listing created successfully", listing); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) Replace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, "Replace", apperrors.Unauthorized("Missing bearer token"))
		return
	}

	var input model.ListingInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "Replace", err)
		return
	}

	listing, err := h.service.Replace(r.Context(), claims.Sub, ps.ByName("id"), &input)
	if err != nil {
		h.writeError(w, "Replace", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Listing updated successfully", listing); err != nil {
		h.log.Error("failed to write success response", "handler", "Replace", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listing, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Listing fetched successfully", listing); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "GetAll", r.URL.Query().Get("vendorId"))
}

func (h *ListingHandler) GetByVendor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vendorID := ps.ByName("id")
	if vendorID == "" {
		h.writeError(w, "GetByVendor", apperrors.InvalidInput("Invalid vendor ID"))
		return
	}
	h.list(w, r, "GetByVendor", vendorID)
}

func (h *ListingHandler) list(w http.ResponseWriter, r *http.Request, handler, vendorID string) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	listings, total, err := h.service.GetAll(r.Context(), vendorID, limit, offset)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WritePaginated(w, "Listings fetched successfully", listings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "operation", "WritePaginated", "error", err)
	}
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, "Delete", apperrors.Unauthorized("Missing bearer token"))
		return
	}

	if err := h.service.Delete(r.Context(), claims.Sub, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Listing deleted successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	result, err := h.service.Search(r.Context(), &model.ListingSearchQuery{
		Location:   query.Get("location"),
		StartDate:  query.Get("startDate"),
		EndDate:    query.Get("endDate"),
		PriceRange: query.Get("priceRange"),
		Amenities:  query.Get("amenities"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Listings fetched successfully", result); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	vendor := h.auth.Require(model.RoleVendor)

	router.POST("/api/v1/listings", vendor(h.Create))
	router.GET("/api/v1/listings", h.GetAll)
	router.GET("/api/v1/listings/search", h.Search)
	router.GET("/api/v1/listings/id/:id", h.GetByID)
	router.PUT("/api/v1/listings/id/:id", vendor(h.Replace))
	router.DELETE("/api/v1/listings/id/:id", vendor(h.Delete))
	router.GET("/api/v1/vendors/:id/listings", h.GetByVendor)
}
