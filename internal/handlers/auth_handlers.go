// Package handlers implements the HTTP layer of the API. Handlers decode and
// validate payloads, call a service and write the response envelope.
package handlers

import (
	"net/http"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/service"
	"github.com/apsx/clinic-api/internal/utils"
)

// AuthHandler handles authentication-related routes.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	resp, err := h.authService.Login(r.Context(), &req, r.RemoteAddr)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout. Tokens are stateless, so the server has
// nothing to revoke here; the endpoint exists so clients have a uniform
// logout call and the event still lands in the audit trail via access logs.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, http.StatusOK, "Logged out")
}

// Verify handles GET /auth/verify. The access guard has already validated
// the token, so this just echoes the identity projection back.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    user.UserID,
		"shop_id":    user.ShopID,
		"user_email": user.Email,
		"role_id":    user.RoleID,
	})
}

// Refresh handles POST /auth/refresh. The refresh guard has already
// validated the token signature and expiry; the service re-checks the user
// row before issuing a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetRefreshClaims(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	resp, err := h.authService.Refresh(r.Context(), claims, r.RemoteAddr)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// ChangePassword handles POST /auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.ChangePasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user.UserID, &req, r.RemoteAddr); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Message(w, http.StatusOK, "Password changed")
}

// EnrollOTP handles POST /auth/otp.
func (h *AuthHandler) EnrollOTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	resp, err := h.authService.EnrollOTP(r.Context(), user.UserID, r.RemoteAddr)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// DisableOTP handles DELETE /auth/otp.
func (h *AuthHandler) DisableOTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.DisableOTPRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.authService.DisableOTP(r.Context(), user.UserID, &req, r.RemoteAddr); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Message(w, http.StatusOK, "OTP disabled")
}
