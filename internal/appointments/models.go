package appointments

import (
	"strings"
	"time"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// CreateAppointmentRequest represents a booking request. The owning user
// is always the authenticated caller.
type CreateAppointmentRequest struct {
	HealthCenterID string `json:"health_center_id"`
	ServiceID      string `json:"service_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Remarks        string `json:"remarks,omitempty"`
}

func (r *CreateAppointmentRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.HealthCenterID) == "" {
		errs["health_center_id"] = "health_center_id is required"
	}
	if strings.TrimSpace(r.ServiceID) == "" {
		errs["service_id"] = "service_id is required"
	}
	if r.Date == "" {
		errs["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs["date"] = "date must be in YYYY-MM-DD format"
	}
	if r.Time == "" {
		errs["time"] = "time is required"
	} else if _, err := time.Parse("15:04", r.Time); err != nil {
		errs["time"] = "time must be in HH:MM format"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateAppointmentRequest carries the fields a patient may change on a
// pending appointment.
type UpdateAppointmentRequest struct {
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

func (r *UpdateAppointmentRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.Date != "" {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			errs["date"] = "date must be in YYYY-MM-DD format"
		}
	}
	if r.Time != "" {
		if _, err := time.Parse("15:04", r.Time); err != nil {
			errs["time"] = "time must be in HH:MM format"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r *UpdateAppointmentRequest) Partial() map[string]interface{} {
	partial := map[string]interface{}{}
	if r.Date != "" {
		partial["date"] = r.Date
	}
	if r.Time != "" {
		partial["time"] = r.Time
	}
	if r.Remarks != "" {
		partial["remarks"] = r.Remarks
	}
	return partial
}

// DecisionRequest carries the optional remarks stamped by a health worker
// when approving, rejecting or completing an appointment.
type DecisionRequest struct {
	Remarks string `json:"remarks,omitempty"`
}

// ListFilter narrows an appointment listing.
type ListFilter struct {
	Status string
	Date   string
}

// PaginatedAppointmentListResponse represents a paginated appointment list
type PaginatedAppointmentListResponse struct {
	Appointments []store.Appointment `json:"appointments"`
	Pagination   pagination.Meta     `json:"pagination"`
}
