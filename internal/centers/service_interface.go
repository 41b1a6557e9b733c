package centers

import (
	"context"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// ServiceInterface defines the contract for health center and service
// business logic operations
type ServiceInterface interface {
	CreateCenter(ctx context.Context, req CreateHealthCenterRequest) (*store.HealthCenter, error)
	GetCenter(ctx context.Context, id string) (*store.HealthCenter, error)
	ListCenters(ctx context.Context, params pagination.Params, path string) (*PaginatedCenterListResponse, error)
	UpdateCenter(ctx context.Context, id string, req UpdateHealthCenterRequest) (*store.HealthCenter, error)
	DeleteCenter(ctx context.Context, id string) error

	CreateService(ctx context.Context, req CreateServiceRequest) (*store.Service, error)
	GetService(ctx context.Context, id string) (*store.Service, error)
	ListServices(ctx context.Context, healthCenterID string) ([]store.Service, error)
	UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*store.Service, error)
	DeleteService(ctx context.Context, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
