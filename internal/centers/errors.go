package centers

import "errors"

var (
	ErrCenterNotFound  = errors.New("health center not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrStoreFailure    = errors.New("document store operation failed")
)
