package activitylog

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/store"
)

// Logger is the write-side contract. Reads over the logs collection live
// directly on the store adapter.
type Logger interface {
	Log(ctx context.Context, userID, action, description, ip, userAgent string)
}

// Service writes append-only audit records. Callers treat it as
// fire-and-forget: failures are logged here and never surfaced.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) Log(ctx context.Context, userID, action, description, ip, userAgent string) {
	entry := store.ActivityLog{
		ID:          uuid.New().String(),
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   ip,
		UserAgent:   userAgent,
		CreatedAt:   store.Now(),
	}

	doc := entry.ToMap()
	if _, err := s.store.Create(ctx, store.CollectionLogs, doc, entry.ID); err != nil {
		log.Printf("[ERROR] failed to write activity log (%s/%s): %v", userID, action, err)
	}
}

var _ Logger = (*Service)(nil)
