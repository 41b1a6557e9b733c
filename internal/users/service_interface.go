package users

import (
	"context"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// ServiceInterface defines the contract for user business logic operations
type ServiceInterface interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*store.User, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
	ListUsers(ctx context.Context, role string, params pagination.Params, path string) (*PaginatedUserListResponse, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*store.User, error)
	SetActive(ctx context.Context, id string, active bool) (*store.User, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, user *store.User, req UpdateUserRequest) (*store.User, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
