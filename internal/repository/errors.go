// Package repository implements data access over database/sql. The
// sentinel errors below let higher layers distinguish failure modes
// without string matching; the workflow maps them onto the client
// error taxonomy.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrOrderNotFound is returned when an order id does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrMenuItemNotFound is returned when a menu item id does not exist.
var ErrMenuItemNotFound = errors.New("menu item not found")

// ErrUserNotFound is returned when a user id or email does not exist.
var ErrUserNotFound = errors.New("user not found")
