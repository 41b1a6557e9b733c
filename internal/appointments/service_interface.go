package appointments

import (
	"context"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// ServiceInterface defines the contract for appointment business logic
// operations
type ServiceInterface interface {
	Create(ctx context.Context, actor *store.User, req CreateAppointmentRequest) (*store.Appointment, error)
	Get(ctx context.Context, actor *store.User, id string) (*store.Appointment, error)
	List(ctx context.Context, actor *store.User, filter ListFilter, params pagination.Params, path string) (*PaginatedAppointmentListResponse, error)
	Update(ctx context.Context, actor *store.User, id string, req UpdateAppointmentRequest) (*store.Appointment, error)
	Cancel(ctx context.Context, actor *store.User, id string) (*store.Appointment, error)
	Decide(ctx context.Context, actor *store.User, id, newStatus, remarks string) (*store.Appointment, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
