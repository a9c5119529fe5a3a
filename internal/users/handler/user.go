package handler

import (
	"net/http"

	"marketplace/internal/users/service"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Login successful", resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) PasswordRecovery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.EmailRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "PasswordRecovery", err)
		return
	}

	if err := h.service.RequestPasswordRecovery(r.Context(), &req); err != nil {
		h.writeError(w, "PasswordRecovery", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Password recovery email sent", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "PasswordRecovery", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ResetPassword", err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		h.writeError(w, "ResetPassword", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Password reset successful", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "ResetPassword", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) SendVerification(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.EmailRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SendVerification", err)
		return
	}

	if err := h.service.SendVerification(r.Context(), &req); err != nil {
		h.writeError(w, "SendVerification", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Verification email sent", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "SendVerification", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.VerifyEmailRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "VerifyEmail", err)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), &req); err != nil {
		h.writeError(w, "VerifyEmail", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Email verified successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "VerifyEmail", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/users/login", h.Login)
	router.POST("/api/v1/users/password-recovery", h.PasswordRecovery)
	router.POST("/api/v1/users/reset-password", h.ResetPassword)
	router.POST("/api/v1/users/send-verification", h.SendVerification)
	router.POST("/api/v1/users/verify-email", h.VerifyEmail)
}
