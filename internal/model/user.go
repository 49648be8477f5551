package model

import "time"

// Role values stored in users.role. Customers place orders, kitchen
// staff work the order board, admins see everything.
const (
	RoleCustomer = "customer"
	RoleKitchen  = "kitchen"
	RoleAdmin    = "admin"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleCustomer || s == RoleKitchen || s == RoleAdmin
}

// StaffRole reports whether s may manage orders and menu items.
func StaffRole(s string) bool {
	return s == RoleKitchen || s == RoleAdmin
}

// User represents a row of the `users` table. The password hash never
// leaves the repository and auth layers; the json tag strips it from
// every response and pushed event.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name shown on the kitchen board and receipts.
//  Email        – unique login email, stored lowercased.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of customer, kitchen, admin.
//  KitchenCode  – affiliation code grouping kitchen staff (empty when unused).
//  CreatedAt    – timestamp of registration.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	KitchenCode  string    `json:"kitchenCode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored; the raw value is returned to
// the client once and never persisted.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
