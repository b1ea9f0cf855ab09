package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/service"
	"github.com/apsx/clinic-api/internal/utils"
)

// CatalogHandler handles the machine-to-machine listing routes. These sit
// behind the API key guards rather than user tokens.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &CatalogHandler{catalogService: catalogService}
}

// GetShop handles GET /public/shops/{id}.
func (h *CatalogHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, err := utils.StrToInt64(chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.BadRequest(w, "Invalid shop ID")
		return
	}

	shop, err := h.catalogService.GetShop(r.Context(), id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, shop)
}

// ListCategories handles GET /public/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	shopID, err := utils.StrToInt64(r.URL.Query().Get(constants.QueryParamShopID))
	if err != nil || shopID <= 0 {
		utils.BadRequest(w, "Invalid shop ID")
		return
	}

	categories, err := h.catalogService.ListCategories(r.Context(), shopID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, categories)
}

// ListProducts handles GET /telemed/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	shopID, err := utils.StrToInt64(r.URL.Query().Get(constants.QueryParamShopID))
	if err != nil || shopID <= 0 {
		utils.BadRequest(w, "Invalid shop ID")
		return
	}

	limit := constants.DefaultPageSize
	if raw := r.URL.Query().Get(constants.QueryParamLimit); raw != "" {
		if parsed, err := utils.StrToInt(raw); err == nil && parsed > 0 && parsed <= constants.MaxPageSize {
			limit = parsed
		}
	}

	products, err := h.catalogService.ListProducts(r.Context(), shopID, limit)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, products)
}
