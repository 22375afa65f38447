// Package authz decides whether a caller may act on a message or a user
// account. It holds no state and performs no I/O.
package authz

import (
	"errors"

	"github.com/messagely/apiserver/types"
)

// ErrUnauthorized is returned when the caller is not allowed to perform the
// requested action.
var ErrUnauthorized = errors.New("unauthorized")

// CanRead allows either party of the message.
func CanRead(caller types.Identity, msg types.MessageDetail) error {
	if caller.Username == "" {
		return ErrUnauthorized
	}
	if caller.Username == msg.FromUser.Username || caller.Username == msg.ToUser.Username {
		return nil
	}
	return ErrUnauthorized
}

// CanSend allows any authenticated caller. Messages are always sent as the
// caller, so there is no sender to compare against.
func CanSend(caller types.Identity) error {
	if caller.Username == "" {
		return ErrUnauthorized
	}
	return nil
}

// CanMarkRead allows only the recipient. The sender is rejected even though
// they may read the message.
func CanMarkRead(caller types.Identity, msg types.MessageDetail) error {
	if caller.Username == "" || caller.Username != msg.ToUser.Username {
		return ErrUnauthorized
	}
	return nil
}

// CanViewUser allows a caller to see only their own account, inbox and outbox.
func CanViewUser(caller types.Identity, username string) error {
	if caller.Username == "" || caller.Username != username {
		return ErrUnauthorized
	}
	return nil
}
