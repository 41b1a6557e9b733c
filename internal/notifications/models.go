package notifications

import (
	"strings"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// RegisterDeviceTokenRequest represents a push token registration. The
// token is the upsert key: re-registering an existing token moves it to
// the calling user.
type RegisterDeviceTokenRequest struct {
	Token      string `json:"token"`
	Platform   string `json:"platform"`
	DeviceName string `json:"device_name,omitempty"`
}

func (r *RegisterDeviceTokenRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Token) == "" {
		errs["token"] = "token is required"
	}
	switch r.Platform {
	case store.PlatformAndroid, store.PlatformIOS, store.PlatformWeb:
	default:
		errs["platform"] = "platform must be one of android, ios, web"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// BroadcastRequest represents an admin-created notification. With a
// user_id it targets one user; without, every active user.
type BroadcastRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

func (r *BroadcastRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(r.Message) == "" {
		errs["message"] = "message is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// PaginatedNotificationListResponse represents a paginated notification list
type PaginatedNotificationListResponse struct {
	Notifications []store.Notification `json:"notifications"`
	Pagination    pagination.Meta      `json:"pagination"`
}
