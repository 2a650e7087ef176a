// Package models defines the records exchanged between the StockKeeper API
// server and its clients: users, master items, transactions with their line
// items, and the read-only reference lookups.
package models

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the login name of the user.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// Company is the company the user books stock for.
	Company string
}
