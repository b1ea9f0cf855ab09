// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file names the tables and sensitive columns of the
// clinic schema. Query logging uses the column names to redact digests.
package constants

// Table names in the main database.
const (
	TableUsers      = "users"
	TableUserShops  = "user_shops"
	TableShops      = "shops"
	TableShopRoles  = "shop_roles"
	TableOrders     = "orders"
	TableCustomers  = "customers"
	TableProducts   = "products"
	TableCategories = "categories"
)

// Table names in the logging database.
const (
	// TableLoginLogs stores the authentication audit trail.
	TableLoginLogs = "login_logs"
)

// Sensitive column names, used when redacting query logs.
const (
	// ColumnUserPassword holds the bcrypt digest and must never be logged.
	ColumnUserPassword = "user_password"
)

// MySQL error numbers mapped by utils.ParseError.
const (
	// MySQLErrDuplicateEntry is returned on unique constraint violations.
	MySQLErrDuplicateEntry = 1062

	// MySQLErrNoReferencedRow is returned on foreign key violations.
	MySQLErrNoReferencedRow = 1452

	// MySQLErrColumnCannotBeNull is returned on NOT NULL violations.
	MySQLErrColumnCannotBeNull = 1048
)

// Login audit events recorded in login_logs.
const (
	LogEventLogin          = "login"
	LogEventRefresh        = "refresh"
	LogEventChangePassword = "change_password"
	LogEventOTPEnroll      = "otp_enroll"
	LogEventOTPDisable     = "otp_disable"
)
