package migrations

import (
	"context"
	"database/sql"
)

// createUsersTable creates the users table
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS users (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					user_email VARCHAR(255) NOT NULL,
					user_password VARCHAR(255) NOT NULL,
					user_fname VARCHAR(100) NOT NULL,
					user_lname VARCHAR(100) NOT NULL,
					user_tel VARCHAR(30) NOT NULL DEFAULT '',
					user_is_active TINYINT(1) NOT NULL DEFAULT 1,
					user_otp_url VARCHAR(255) NULL,
					password_version BIGINT NOT NULL DEFAULT 1,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					UNIQUE KEY idx_user_email (user_email)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createShopsTable creates the shops table
func createShopsTable() Migration {
	return Migration{
		Name:        "create_shops_table",
		Description: "Creates the shops table",
		TableName:   "shops",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS shops (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					shop_mother_id BIGINT NOT NULL DEFAULT 0,
					shop_name VARCHAR(255) NOT NULL,
					shop_address VARCHAR(255) NOT NULL DEFAULT '',
					shop_tel VARCHAR(30) NOT NULL DEFAULT '',
					shop_is_active TINYINT(1) NOT NULL DEFAULT 1,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					KEY idx_shop_mother (shop_mother_id)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createShopRolesTable creates the shop_roles table
func createShopRolesTable() Migration {
	return Migration{
		Name:        "create_shop_roles_table",
		Description: "Creates the shop_roles table",
		TableName:   "shop_roles",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS shop_roles (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					sr_name VARCHAR(50) NOT NULL,
					sr_discount_type_id BIGINT NOT NULL DEFAULT 0,
					sr_discount DECIMAL(10, 2) NOT NULL DEFAULT 0,
					UNIQUE KEY idx_sr_name (sr_name)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createUserShopsTable creates the user_shops membership table
func createUserShopsTable() Migration {
	return Migration{
		Name:        "create_user_shops_table",
		Description: "Creates the user_shops membership table",
		TableName:   "user_shops",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS user_shops (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					user_id BIGINT NOT NULL,
					shop_id BIGINT NOT NULL,
					role_id BIGINT NOT NULL,
					shop_role_id BIGINT NOT NULL,
					us_invite TINYINT NOT NULL DEFAULT 1,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					CONSTRAINT fk_us_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
					CONSTRAINT fk_us_shop FOREIGN KEY (shop_id) REFERENCES shops(id) ON DELETE CASCADE,
					CONSTRAINT fk_us_shop_role FOREIGN KEY (shop_role_id) REFERENCES shop_roles(id),
					UNIQUE KEY idx_user_shop (user_id, shop_id)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createCustomersTable creates the customers table
func createCustomersTable() Migration {
	return Migration{
		Name:        "create_customers_table",
		Description: "Creates the customers table",
		TableName:   "customers",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS customers (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					shop_id BIGINT NOT NULL,
					customer_fname VARCHAR(100) NOT NULL,
					customer_lname VARCHAR(100) NOT NULL,
					customer_tel VARCHAR(30) NOT NULL DEFAULT '',
					customer_email VARCHAR(255) NOT NULL DEFAULT '',
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					CONSTRAINT fk_customer_shop FOREIGN KEY (shop_id) REFERENCES shops(id) ON DELETE CASCADE,
					KEY idx_customer_shop (shop_id)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createCategoriesTable creates the categories table
func createCategoriesTable() Migration {
	return Migration{
		Name:        "create_categories_table",
		Description: "Creates the categories table",
		TableName:   "categories",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS categories (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					shop_id BIGINT NOT NULL,
					category_name VARCHAR(100) NOT NULL,
					category_is_active TINYINT(1) NOT NULL DEFAULT 1,
					UNIQUE KEY idx_shop_category_name (shop_id, category_name),
					CONSTRAINT fk_categories_shop FOREIGN KEY (shop_id) REFERENCES shops (id)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createProductsTable creates the products table
func createProductsTable() Migration {
	return Migration{
		Name:        "create_products_table",
		Description: "Creates the products table",
		TableName:   "products",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS products (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					shop_id BIGINT NOT NULL,
					category_id BIGINT NOT NULL,
					product_name VARCHAR(255) NOT NULL,
					product_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
					product_is_active TINYINT(1) NOT NULL DEFAULT 1,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					CONSTRAINT fk_product_shop FOREIGN KEY (shop_id) REFERENCES shops(id) ON DELETE CASCADE,
					CONSTRAINT fk_product_category FOREIGN KEY (category_id) REFERENCES categories(id),
					KEY idx_product_shop_active (shop_id, product_is_active)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createOrdersTable creates the orders table
func createOrdersTable() Migration {
	return Migration{
		Name:        "create_orders_table",
		Description: "Creates the orders table",
		TableName:   "orders",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS orders (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					shop_id BIGINT NOT NULL,
					customer_id BIGINT NOT NULL,
					order_code VARCHAR(50) NOT NULL,
					order_date DATE NOT NULL,
					order_total DECIMAL(10, 2) NOT NULL DEFAULT 0,
					order_discount DECIMAL(10, 2) NOT NULL DEFAULT 0,
					order_net DECIMAL(10, 2) NOT NULL DEFAULT 0,
					order_status VARCHAR(20) NOT NULL DEFAULT 'draft',
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
					CONSTRAINT fk_order_shop FOREIGN KEY (shop_id) REFERENCES shops(id),
					CONSTRAINT fk_order_customer FOREIGN KEY (customer_id) REFERENCES customers(id),
					UNIQUE KEY idx_order_code (shop_id, order_code),
					KEY idx_order_shop_date (shop_id, order_date)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createLoginLogsTable creates the login_logs table on the logging cluster.
// No foreign keys: the logging cluster has no users table.
func createLoginLogsTable() Migration {
	return Migration{
		Name:        "create_login_logs_table",
		Description: "Creates the login_logs audit table",
		TableName:   "login_logs",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS login_logs (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					user_id BIGINT NOT NULL,
					user_email VARCHAR(255) NOT NULL,
					event VARCHAR(50) NOT NULL,
					success TINYINT(1) NOT NULL,
					reason VARCHAR(255) NOT NULL DEFAULT '',
					remote_addr VARCHAR(64) NOT NULL DEFAULT '',
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					KEY idx_login_user (user_id, created_at)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
