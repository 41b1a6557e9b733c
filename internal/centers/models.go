package centers

import (
	"strings"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// CreateHealthCenterRequest represents the request to create a health center
type CreateHealthCenterRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number,omitempty"`
	Email         string `json:"email,omitempty"`
	Description   string `json:"description,omitempty"`
}

func (r *CreateHealthCenterRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(r.Address) == "" {
		errs["address"] = "address is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateHealthCenterRequest represents a partial health center update.
// Empty fields are left untouched.
type UpdateHealthCenterRequest struct {
	Name          string `json:"name,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	Email         string `json:"email,omitempty"`
	Description   string `json:"description,omitempty"`
}

func (r *UpdateHealthCenterRequest) Partial() map[string]interface{} {
	partial := map[string]interface{}{}
	if r.Name != "" {
		partial["name"] = r.Name
	}
	if r.Address != "" {
		partial["address"] = r.Address
	}
	if r.ContactNumber != "" {
		partial["contact_number"] = r.ContactNumber
	}
	if r.Email != "" {
		partial["email"] = r.Email
	}
	if r.Description != "" {
		partial["description"] = r.Description
	}
	return partial
}

// CreateServiceRequest represents the request to create a service under a
// health center. A weekday absent from the schedule means closed that day.
type CreateServiceRequest struct {
	HealthCenterID  string                    `json:"health_center_id"`
	ServiceName     string                    `json:"service_name"`
	Description     string                    `json:"description,omitempty"`
	DurationMinutes int                       `json:"duration_minutes,omitempty"`
	Price           float64                   `json:"price,omitempty"`
	Schedule        map[string]store.DayHours `json:"schedule,omitempty"`
}

func (r *CreateServiceRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.HealthCenterID) == "" {
		errs["health_center_id"] = "health_center_id is required"
	}
	if strings.TrimSpace(r.ServiceName) == "" {
		errs["service_name"] = "service_name is required"
	}
	if r.DurationMinutes < 0 {
		errs["duration_minutes"] = "duration_minutes must not be negative"
	}
	if r.Price < 0 {
		errs["price"] = "price must not be negative"
	}
	for day, hours := range r.Schedule {
		if !weekdays[strings.ToLower(day)] {
			errs["schedule"] = "unknown weekday: " + day
			break
		}
		if hours.Open == "" || hours.Close == "" {
			errs["schedule"] = "open and close times are required for " + day
			break
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateServiceRequest represents a partial service update. The schedule,
// when present, replaces the stored one wholesale.
type UpdateServiceRequest struct {
	ServiceName     string                    `json:"service_name,omitempty"`
	Description     string                    `json:"description,omitempty"`
	DurationMinutes int                       `json:"duration_minutes,omitempty"`
	Price           float64                   `json:"price,omitempty"`
	Schedule        map[string]store.DayHours `json:"schedule,omitempty"`
}

func (r *UpdateServiceRequest) Partial() map[string]interface{} {
	partial := map[string]interface{}{}
	if r.ServiceName != "" {
		partial["service_name"] = r.ServiceName
	}
	if r.Description != "" {
		partial["description"] = r.Description
	}
	if r.DurationMinutes > 0 {
		partial["duration_minutes"] = r.DurationMinutes
	}
	if r.Price > 0 {
		partial["price"] = r.Price
	}
	if r.Schedule != nil {
		sched := make(map[string]interface{}, len(r.Schedule))
		for day, hours := range r.Schedule {
			sched[strings.ToLower(day)] = map[string]interface{}{"open": hours.Open, "close": hours.Close}
		}
		partial["schedule"] = sched
	}
	return partial
}

// PaginatedCenterListResponse represents a paginated list of health centers
type PaginatedCenterListResponse struct {
	HealthCenters []store.HealthCenter `json:"health_centers"`
	Pagination    pagination.Meta      `json:"pagination"`
}
