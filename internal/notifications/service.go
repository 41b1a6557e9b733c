package notifications

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/messaging"
	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/telemetry"
)

type Service struct {
	records   *store.Records
	gateway   identity.Gateway
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(records *store.Records, gateway identity.Gateway, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		records:   records,
		gateway:   gateway,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Notify writes a notification document for the user and pushes it to the
// user's registered devices. Push and event publishing are best-effort:
// their failures are logged and never surfaced to the caller.
func (s *Service) Notify(ctx context.Context, userID, title, message, typ string) (*store.Notification, error) {
	if typ == "" {
		typ = store.NotificationGeneral
	}

	notif := &store.Notification{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    title,
		Message:  message,
		DateSent: store.Now(),
		IsRead:   false,
		Type:     typ,
	}

	doc := notif.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if _, err := s.records.S.Create(ctx, store.CollectionNotifications, doc, notif.ID); err != nil {
		return nil, ErrStoreFailure
	}

	outcome := s.pushToUser(ctx, userID, title, message, map[string]string{
		"notification_id": notif.ID,
		"type":            typ,
	})

	if s.metrics != nil {
		s.metrics.RecordNotificationOperation(ctx, "create")
	}

	if s.publisher != nil {
		event := messaging.NotificationSentEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventNotificationSent),
			Data: messaging.NotificationSentData{
				NotificationID: notif.ID,
				UserID:         userID,
				Type:           typ,
				PushDelivered:  outcome.Delivered,
				PushFailed:     outcome.Failed,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventNotificationSent, event); err != nil {
			log.Printf("Warning: failed to publish notification.sent event: %v", err)
		}
	}

	return notif, nil
}

func (s *Service) pushToUser(ctx context.Context, userID, title, body string, data map[string]string) identity.PushOutcome {
	tokens := s.records.ListDeviceTokens(ctx, []store.Condition{
		{Field: "user_id", Op: "==", Value: userID},
	})
	if len(tokens) == 0 {
		return identity.PushOutcome{}
	}

	raw := make([]string, 0, len(tokens))
	for _, t := range tokens {
		raw = append(raw, t.Token)
	}

	outcome := s.gateway.SendPush(ctx, raw, title, body, data)
	if outcome.Failed > 0 {
		log.Printf("Push to user %s: %d delivered, %d failed", userID, outcome.Delivered, outcome.Failed)
	}
	if s.metrics != nil {
		s.metrics.RecordPushDelivery(ctx, outcome.Delivered, outcome.Failed)
	}
	return outcome
}

// ListForUser returns a page of the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool, params pagination.Params, path string) (*PaginatedNotificationListResponse, error) {
	params.Validate()

	conditions := []store.Condition{{Field: "user_id", Op: "==", Value: userID}}
	if unreadOnly {
		conditions = append(conditions, store.Condition{Field: "is_read", Op: "==", Value: false})
	}

	all := s.records.ListNotifications(ctx, conditions)
	sortNotificationsNewestFirst(all)
	start, end := params.Slice(len(all))

	return &PaginatedNotificationListResponse{
		Notifications: all[start:end],
		Pagination:    params.Meta(path, len(all)),
	}, nil
}

// owned fetches a notification and checks it belongs to the user.
func (s *Service) owned(ctx context.Context, userID, id string) (*store.Notification, error) {
	notif, err := s.records.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif == nil {
		return nil, ErrNotificationNotFound
	}
	if notif.UserID != userID {
		return nil, ErrNotOwner
	}
	return notif, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) (*store.Notification, error) {
	notif, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !notif.IsRead {
		if !s.records.S.Update(ctx, store.CollectionNotifications, id, map[string]interface{}{"is_read": true}) {
			return nil, ErrStoreFailure
		}
		notif.IsRead = true
	}
	return notif, nil
}

// MarkAllRead marks every unread notification of the user and returns how
// many were updated.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread := s.records.ListNotifications(ctx, []store.Condition{
		{Field: "user_id", Op: "==", Value: userID},
		{Field: "is_read", Op: "==", Value: false},
	})

	updated := 0
	for _, notif := range unread {
		if s.records.S.Update(ctx, store.CollectionNotifications, notif.ID, map[string]interface{}{"is_read": true}) {
			updated++
		}
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if !s.records.S.Delete(ctx, store.CollectionNotifications, id) {
		return ErrStoreFailure
	}
	return nil
}

// Broadcast creates an admin notification for one user or for every active
// user when no user_id is given.
func (s *Service) Broadcast(ctx context.Context, req BroadcastRequest) (int, error) {
	if req.UserID != "" {
		if _, err := s.Notify(ctx, req.UserID, req.Title, req.Message, req.Type); err != nil {
			return 0, err
		}
		return 1, nil
	}

	targets := s.records.ListUsers(ctx, []store.Condition{
		{Field: "is_active", Op: "==", Value: true},
	})

	sent := 0
	for _, user := range targets {
		if _, err := s.Notify(ctx, user.ID, req.Title, req.Message, req.Type); err != nil {
			log.Printf("Warning: broadcast to user %s failed: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// RegisterDeviceToken upserts a push token. A token already on file is
// reassigned to the calling user and its platform refreshed, so a device
// that changes hands follows its current owner.
func (s *Service) RegisterDeviceToken(ctx context.Context, userID string, req RegisterDeviceTokenRequest) (*store.DeviceToken, error) {
	existing, err := s.records.S.FindByField(ctx, store.CollectionDeviceTokens, "token", req.Token)
	if err != nil {
		return nil, ErrStoreFailure
	}

	if existing != nil {
		id, _ := existing["id"].(string)
		partial := map[string]interface{}{
			"user_id":     userID,
			"platform":    req.Platform,
			"device_name": req.DeviceName,
		}
		if !s.records.S.Update(ctx, store.CollectionDeviceTokens, id, partial) {
			return nil, ErrStoreFailure
		}
		doc, err := s.records.S.Get(ctx, store.CollectionDeviceTokens, id)
		if err != nil || doc == nil {
			return nil, ErrStoreFailure
		}
		return store.DeviceTokenFromMap(id, doc), nil
	}

	token := &store.DeviceToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      req.Token,
		Platform:   req.Platform,
		DeviceName: req.DeviceName,
	}

	doc := token.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if _, err := s.records.S.Create(ctx, store.CollectionDeviceTokens, doc, token.ID); err != nil {
		return nil, ErrStoreFailure
	}
	return token, nil
}

func (s *Service) ListDeviceTokens(ctx context.Context, userID string) ([]store.DeviceToken, error) {
	return s.records.ListDeviceTokens(ctx, []store.Condition{
		{Field: "user_id", Op: "==", Value: userID},
	}), nil
}

func (s *Service) DeleteDeviceToken(ctx context.Context, userID, id string) error {
	doc, err := s.records.S.Get(ctx, store.CollectionDeviceTokens, id)
	if err != nil {
		return ErrStoreFailure
	}
	if doc == nil {
		return ErrDeviceTokenNotFound
	}
	if owner, _ := doc["user_id"].(string); owner != userID {
		return ErrNotOwner
	}
	if !s.records.S.Delete(ctx, store.CollectionDeviceTokens, id) {
		return ErrStoreFailure
	}
	return nil
}

// sortNotificationsNewestFirst orders by date_sent descending. The
// timestamp format sorts lexicographically.
func sortNotificationsNewestFirst(notifs []store.Notification) {
	sort.Slice(notifs, func(i, j int) bool {
		return notifs[i].DateSent > notifs[j].DateSent
	})
}
