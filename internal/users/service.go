package users

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/messaging"
	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

type Service struct {
	records   *store.Records
	gateway   identity.Gateway
	publisher messaging.PublisherInterface
}

func NewService(records *store.Records, gateway identity.Gateway, publisher messaging.PublisherInterface) *Service {
	return &Service{
		records:   records,
		gateway:   gateway,
		publisher: publisher,
	}
}

// CreateUser provisions an identity-provider account and the matching
// domain user document. The identity account is rolled back when the
// document write fails.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*store.User, error) {
	if !store.ValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	if existing, _ := s.records.GetUserByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	uid, err := s.gateway.CreateUser(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		if err == identity.ErrEmailExists {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create identity provider user: %w", err)
	}

	user := &store.User{
		ID:            uuid.New().String(),
		FirebaseUID:   uid,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		IsActive:      true,
	}

	doc := user.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if _, err := s.records.S.Create(ctx, store.CollectionUsers, doc, user.ID); err != nil {
		log.Printf("Failed to create user document, rolling back identity user: %s", uid)
		_ = s.gateway.DeleteUser(ctx, uid)
		return nil, ErrStoreFailure
	}

	if s.publisher != nil {
		event := messaging.UserRegisteredEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventUserRegistered),
			Data: messaging.UserRegisteredData{
				UserID:      user.ID,
				FirebaseUID: uid,
				Email:       user.Email,
				Role:        user.Role,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventUserRegistered, event); err != nil {
			log.Printf("Warning: failed to publish user.registered event: %v", err)
		}
	}

	log.Printf("Created user %s (%s, role %s)", user.ID, user.Email, user.Role)
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*store.User, error) {
	user, err := s.records.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns a page of users, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role string, params pagination.Params, path string) (*PaginatedUserListResponse, error) {
	params.Validate()

	var conditions []store.Condition
	if role != "" {
		conditions = append(conditions, store.Condition{Field: "role", Op: "==", Value: role})
	}

	all := s.records.ListUsers(ctx, conditions)
	start, end := params.Slice(len(all))

	return &PaginatedUserListResponse{
		Users:      all[start:end],
		Pagination: params.Meta(path, len(all)),
	}, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*store.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	partial := req.Partial()
	if len(partial) > 0 {
		if !s.records.S.Update(ctx, store.CollectionUsers, id, partial) {
			return nil, ErrStoreFailure
		}
		if req.Name != "" && user.FirebaseUID != "" {
			name := req.Name
			if err := s.gateway.UpdateUser(ctx, user.FirebaseUID, identity.UserUpdate{DisplayName: &name}); err != nil {
				log.Printf("Warning: failed to sync display name to identity provider: %v", err)
			}
		}
	}

	return s.GetUser(ctx, id)
}

// SetActive flips the account's active flag; deactivated accounts are also
// disabled at the identity provider so outstanding refresh tokens die.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*store.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.records.S.Update(ctx, store.CollectionUsers, id, map[string]interface{}{"is_active": active}) {
		return nil, ErrStoreFailure
	}

	if user.FirebaseUID != "" {
		disabled := !active
		if err := s.gateway.UpdateUser(ctx, user.FirebaseUID, identity.UserUpdate{Disabled: &disabled}); err != nil {
			log.Printf("Warning: failed to sync account state to identity provider: %v", err)
		}
		if !active {
			_ = s.gateway.RevokeTokens(ctx, user.FirebaseUID)
		}
	}

	if !active && s.publisher != nil {
		event := messaging.UserDeactivatedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventUserDeactivated),
			Data: messaging.UserDeactivatedData{
				UserID:        id,
				DeactivatedAt: time.Now().UTC(),
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventUserDeactivated, event); err != nil {
			log.Printf("Warning: failed to publish user.deactivated event: %v", err)
		}
	}

	return s.GetUser(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if !s.records.S.Delete(ctx, store.CollectionUsers, id) {
		return ErrStoreFailure
	}

	if user.FirebaseUID != "" {
		if err := s.gateway.DeleteUser(ctx, user.FirebaseUID); err != nil {
			log.Printf("Warning: failed to delete identity provider user %s: %v", user.FirebaseUID, err)
		}
	}

	log.Printf("Deleted user %s (%s)", id, user.Email)
	return nil
}

// UpdateProfile applies a partial update to the authenticated user's own
// record.
func (s *Service) UpdateProfile(ctx context.Context, user *store.User, req UpdateUserRequest) (*store.User, error) {
	return s.UpdateUser(ctx, user.ID, req)
}
