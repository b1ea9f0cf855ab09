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

// OrderHandler handles order-related routes. The shop scope always comes
// from the caller's token, never from the request.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// Search handles POST /order/search.
func (h *OrderHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.OrderSearchRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	resp, err := h.orderService.Search(r.Context(), user.ShopID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Get handles GET /order/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	id, err := utils.StrToInt64(chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.BadRequest(w, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(r.Context(), user.ShopID, id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, order)
}

// Create handles POST /order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.CreateOrderRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	order, err := h.orderService.Create(r.Context(), user.ShopID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, order)
}

// Update handles PUT /order/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	id, err := utils.StrToInt64(chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.BadRequest(w, "Invalid order ID")
		return
	}

	var req models.UpdateOrderRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	order, err := h.orderService.Update(r.Context(), user.ShopID, id, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, order)
}

// Delete handles DELETE /order/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthUser(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	id, err := utils.StrToInt64(chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.BadRequest(w, "Invalid order ID")
		return
	}

	if err := h.orderService.Delete(r.Context(), user.ShopID, id); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Message(w, http.StatusOK, "Order deleted")
}
