package services

import "errors"

var (
	// ErrBadCredentials means the username is unknown. A wrong password for
	// a known user is reported as a false result instead.
	ErrBadCredentials = errors.New("invalid username/password")

	// ErrMessageNotCreated means the insert returned no row id.
	ErrMessageNotCreated = errors.New("message was not created")
)
