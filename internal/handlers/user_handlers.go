package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/service"
	"github.com/apsx/clinic-api/internal/utils"
)

// UserHandler handles user-related routes.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	return &UserHandler{userService: userService}
}

// Me handles GET /user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	profile, shops, err := h.userService.GetProfile(r.Context(), user.UserID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"user":  profile,
		"shops": shops,
	})
}

// List handles GET /user/list. Results are limited to the caller's shop.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	p := utils.GetPaginationParams(r)

	users, total, err := h.userService.ListByShop(r.Context(), user.ShopID, p)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"users":     users,
		"total":     total,
		"page":      p.Page,
		"page_size": p.PageSize,
	})
}

// Logins handles GET /user/logins, the caller's recent authentication events.
func (h *UserHandler) Logins(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	limit := constants.DefaultPageSize
	if raw := r.URL.Query().Get(constants.QueryParamLimit); raw != "" {
		if parsed, err := utils.StrToInt(raw); err == nil && parsed > 0 && parsed <= constants.MaxPageSize {
			limit = parsed
		}
	}

	logins, err := h.userService.ListLogins(r.Context(), user.UserID, limit)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, logins)
}

// Get handles GET /user/{id}. The target must share the caller's shop.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	id, err := utils.StrToInt64(chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.BadRequest(w, "Invalid user ID")
		return
	}

	target, err := h.userService.GetByID(r.Context(), user.ShopID, id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, target)
}

// Update handles PUT /user, updating the caller's own profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.UpdateUserRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	updated, err := h.userService.Update(r.Context(), user.UserID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, updated)
}
