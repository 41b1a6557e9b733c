package appointments

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotOwner            = errors.New("appointment does not belong to this user")
	ErrAlreadyFinal        = errors.New("appointment is already cancelled or completed")
	ErrStoreFailure        = errors.New("document store operation failed")
)
