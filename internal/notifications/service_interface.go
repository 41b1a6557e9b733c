package notifications

import (
	"context"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// Notifier is the slim surface other services use to raise a notification.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, typ string) (*store.Notification, error)
}

// ServiceInterface defines the contract for notification business logic
// operations
type ServiceInterface interface {
	Notifier
	ListForUser(ctx context.Context, userID string, unreadOnly bool, params pagination.Params, path string) (*PaginatedNotificationListResponse, error)
	MarkRead(ctx context.Context, userID, id string) (*store.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
	Broadcast(ctx context.Context, req BroadcastRequest) (int, error)
	RegisterDeviceToken(ctx context.Context, userID string, req RegisterDeviceTokenRequest) (*store.DeviceToken, error)
	ListDeviceTokens(ctx context.Context, userID string) ([]store.DeviceToken, error)
	DeleteDeviceToken(ctx context.Context, userID, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
