package centers

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

type Service struct {
	records *store.Records
}

func NewService(records *store.Records) *Service {
	return &Service{records: records}
}

func (s *Service) CreateCenter(ctx context.Context, req CreateHealthCenterRequest) (*store.HealthCenter, error) {
	center := &store.HealthCenter{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Description:   req.Description,
		IsActive:      true,
	}

	doc := center.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if _, err := s.records.S.Create(ctx, store.CollectionHealthCenters, doc, center.ID); err != nil {
		return nil, ErrStoreFailure
	}

	log.Printf("Created health center %s (%s)", center.ID, center.Name)
	return center, nil
}

func (s *Service) GetCenter(ctx context.Context, id string) (*store.HealthCenter, error) {
	center, err := s.records.GetHealthCenter(ctx, id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}
	return center, nil
}

func (s *Service) ListCenters(ctx context.Context, params pagination.Params, path string) (*PaginatedCenterListResponse, error) {
	params.Validate()

	all := s.records.ListHealthCenters(ctx, nil)
	start, end := params.Slice(len(all))

	return &PaginatedCenterListResponse{
		HealthCenters: all[start:end],
		Pagination:    params.Meta(path, len(all)),
	}, nil
}

func (s *Service) UpdateCenter(ctx context.Context, id string, req UpdateHealthCenterRequest) (*store.HealthCenter, error) {
	if _, err := s.GetCenter(ctx, id); err != nil {
		return nil, err
	}

	partial := req.Partial()
	if len(partial) > 0 {
		if !s.records.S.Update(ctx, store.CollectionHealthCenters, id, partial) {
			return nil, ErrStoreFailure
		}
	}

	return s.GetCenter(ctx, id)
}

func (s *Service) DeleteCenter(ctx context.Context, id string) error {
	if _, err := s.GetCenter(ctx, id); err != nil {
		return err
	}
	if !s.records.S.Delete(ctx, store.CollectionHealthCenters, id) {
		return ErrStoreFailure
	}
	log.Printf("Deleted health center %s", id)
	return nil
}

// CreateService creates a bookable service under an existing health center.
func (s *Service) CreateService(ctx context.Context, req CreateServiceRequest) (*store.Service, error) {
	if _, err := s.GetCenter(ctx, req.HealthCenterID); err != nil {
		return nil, err
	}

	svc := &store.Service{
		ID:              uuid.New().String(),
		HealthCenterID:  req.HealthCenterID,
		ServiceName:     req.ServiceName,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
		Schedule:        normalizeSchedule(req.Schedule),
	}

	doc := svc.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if _, err := s.records.S.Create(ctx, store.CollectionServices, doc, svc.ID); err != nil {
		return nil, ErrStoreFailure
	}

	log.Printf("Created service %s (%s) under health center %s", svc.ID, svc.ServiceName, svc.HealthCenterID)
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id string) (*store.Service, error) {
	svc, err := s.records.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

// ListServices returns all services, optionally scoped to a single health
// center.
func (s *Service) ListServices(ctx context.Context, healthCenterID string) ([]store.Service, error) {
	var conditions []store.Condition
	if healthCenterID != "" {
		conditions = append(conditions, store.Condition{Field: "health_center_id", Op: "==", Value: healthCenterID})
	}
	return s.records.ListServices(ctx, conditions), nil
}

func (s *Service) UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*store.Service, error) {
	if _, err := s.GetService(ctx, id); err != nil {
		return nil, err
	}

	partial := req.Partial()
	if len(partial) > 0 {
		if !s.records.S.Update(ctx, store.CollectionServices, id, partial) {
			return nil, ErrStoreFailure
		}
	}

	return s.GetService(ctx, id)
}

func (s *Service) DeleteService(ctx context.Context, id string) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	if !s.records.S.Delete(ctx, store.CollectionServices, id) {
		return ErrStoreFailure
	}
	log.Printf("Deleted service %s", id)
	return nil
}

func normalizeSchedule(sched map[string]store.DayHours) map[string]store.DayHours {
	if sched == nil {
		return nil
	}
	out := make(map[string]store.DayHours, len(sched))
	for day, hours := range sched {
		out[strings.ToLower(day)] = hours
	}
	return out
}
