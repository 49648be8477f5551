package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/food-ordering/internal/utils"
)

// Schema bootstrap. Every statement is idempotent so Migrate can run
// unconditionally at startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('customer','kitchen','admin') NOT NULL,
		kitchen_code VARCHAR(100) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		category VARCHAR(100) NOT NULL,
		image VARCHAR(500) NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		kitchen_code VARCHAR(100) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_menu_items_category (category)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT UNSIGNED NOT NULL,
		status ENUM('pending','confirmed','preparing','ready','delivered','cancelled') NOT NULL DEFAULT 'pending',
		total DECIMAL(10,2) NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(50) NOT NULL,
		customer_address VARCHAR(500) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_orders_customer_id (customer_id),
		KEY idx_orders_status (status),
		KEY idx_orders_created_at (created_at),
		CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES users(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT UNSIGNED NOT NULL,
		menu_item_id BIGINT UNSIGNED NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		KEY idx_order_items_order_id (order_id),
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT fk_order_items_menu_item FOREIGN KEY (menu_item_id) REFERENCES menu_items(id)
	) ENGINE=InnoDB`,
}

// Migrate creates all tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed inserts demo users and a starter menu when the respective
// tables are empty. All demo accounts share the password
// "password123".
func Seed(ctx context.Context, db *sql.DB, bcryptCost int) error {
	var users int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if users == 0 {
		hash, err := utils.HashPassword("password123", bcryptCost)
		if err != nil {
			return fmt.Errorf("seed: hash password: %w", err)
		}
		seedUsers := []struct {
			name, email, role string
			kitchenCode       any
		}{
			{"Admin User", "admin@restaurant.com", "admin", nil},
			{"Kitchen Staff", "kitchen@restaurant.com", "kitchen", "MAIN_KITCHEN"},
			{"John Customer", "john@example.com", "customer", nil},
			{"Jane Customer", "jane@example.com", "customer", nil},
		}
		for _, u := range seedUsers {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO users (name, email, password_hash, role, kitchen_code) VALUES (?,?,?,?,?)`,
				u.name, u.email, hash, u.role, u.kitchenCode); err != nil {
				return fmt.Errorf("seed: insert user %s: %w", u.email, err)
			}
		}
	}

	var items int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&items); err != nil {
		return fmt.Errorf("seed: count menu items: %w", err)
	}
	if items == 0 {
		seedItems := []struct {
			name, description, category string
			price                       float64
		}{
			{"Margherita Pizza", "Classic pizza with tomato sauce, mozzarella, and fresh basil", "Pizza", 12.99},
			{"Pepperoni Pizza", "Traditional pizza with pepperoni and mozzarella cheese", "Pizza", 14.99},
			{"Chicken Caesar Salad", "Fresh romaine lettuce with grilled chicken, parmesan, and caesar dressing", "Salads", 10.99},
			{"Classic Burger", "Beef patty with lettuce, tomato, onion, and our special sauce", "Burgers", 13.99},
			{"Fish & Chips", "Beer-battered cod with crispy fries and tartar sauce", "Main Course", 15.99},
			{"Chocolate Cake", "Rich chocolate cake with chocolate frosting", "Desserts", 6.99},
			{"Pasta Carbonara", "Creamy pasta with bacon, eggs, and parmesan cheese", "Pasta", 14.99},
			{"Greek Salad", "Fresh vegetables with feta cheese and olive oil dressing", "Salads", 9.99},
			{"Chicken Wings", "Spicy buffalo wings with blue cheese dip", "Appetizers", 11.99},
			{"Tiramisu", "Classic Italian dessert with coffee and mascarpone", "Desserts", 7.99},
		}
		for _, it := range seedItems {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO menu_items (name, description, price, category, available, kitchen_code) VALUES (?,?,?,?,TRUE,'MAIN_KITCHEN')`,
				it.name, it.description, it.price, it.category); err != nil {
				return fmt.Errorf("seed: insert menu item %s: %w", it.name, err)
			}
		}
	}
	return nil
}
