package authn

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrPasswordAlreadySet = errors.New("account already has a password")
	ErrStoreFailure       = errors.New("document store operation failed")
)
