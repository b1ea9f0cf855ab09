package constants

// Base Routes
const (
	HealthPath = "/health"
)

// Route group prefixes mounted in the server's route tree.
const (
	AuthBasePath    = "/auth"
	UserBasePath    = "/user"
	OrderBasePath   = "/order"
	PublicBasePath  = "/public"
	TelemedBasePath = "/telemed"
)

// URL Parameters
const (
	ParamID = "id"
)

// Query Parameters
const (
	QueryParamShopID = "shop_id"
	QueryParamLimit  = "limit"
)
