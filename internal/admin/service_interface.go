package admin

import (
	"context"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// ServiceInterface defines the contract for admin reporting operations
type ServiceInterface interface {
	Stats(ctx context.Context) (*store.AdminStats, error)
	Logs(ctx context.Context, userID string, params pagination.Params, path string) (*PaginatedLogListResponse, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
