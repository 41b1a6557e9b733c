package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDeviceTokenNotFound  = errors.New("device token not found")
	ErrNotOwner             = errors.New("notification does not belong to this user")
	ErrStoreFailure         = errors.New("document store operation failed")
)
