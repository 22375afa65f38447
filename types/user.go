package types

import "time"

// UserProfile is the public part of a user account. It is what other
// users see when listing accounts or reading a message.
type UserProfile struct {
	// Username is the unique login name chosen by the user.
	// It is also the primary key of the users table.
	Username string `json:"username" db:"username"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Phone is the user's contact phone number, stored as entered.
	Phone string `json:"phone" db:"phone"`
}

// User represents an account in the system.
// It contains the public profile, the credential hash, and login metadata.
type User struct {
	UserProfile

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// JoinAt is the timestamp when the account was registered.
	// It is set once and never changes.
	JoinAt time.Time `json:"join_at" db:"join_at"`

	// LastLoginAt is the timestamp of the most recent successful login.
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`
}

// Identity is the authenticated principal of a request, extracted from a
// verified bearer token.
type Identity struct {
	Username string `json:"username"`
}
