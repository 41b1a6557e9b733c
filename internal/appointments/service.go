package appointments

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/messaging"
	"github.com/salud-red/appointment-service/internal/notifications"
	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/telemetry"
)

type Service struct {
	records   *store.Records
	notifier  notifications.Notifier
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(records *store.Records, notifier notifications.Notifier, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		records:   records,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Create books an appointment for the given user. Snapshots of the user,
// health center and service are embedded at write time. The confirmation
// notification and the published event are best-effort.
func (s *Service) Create(ctx context.Context, actor *store.User, req CreateAppointmentRequest) (*store.Appointment, error) {
	appt := &store.Appointment{
		ID:             uuid.New().String(),
		UserID:         actor.ID,
		HealthCenterID: req.HealthCenterID,
		ServiceID:      req.ServiceID,
		Date:           req.Date,
		Time:           req.Time,
		Status:         store.StatusPending,
		Remarks:        req.Remarks,
	}

	if _, err := s.records.CreateAppointment(ctx, appt); err != nil {
		return nil, ErrStoreFailure
	}

	if s.metrics != nil {
		s.metrics.RecordAppointmentOperation(ctx, "create")
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Your appointment on %s at %s has been received and is pending confirmation.", appt.Date, appt.Time)
		if _, err := s.notifier.Notify(ctx, actor.ID, "Appointment received", msg, store.NotificationAppointment); err != nil {
			log.Printf("Warning: failed to notify user %s about appointment %s: %v", actor.ID, appt.ID, err)
		}
	}

	if s.publisher != nil {
		event := messaging.AppointmentCreatedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventAppointmentCreated),
			Data: messaging.AppointmentCreatedData{
				AppointmentID:  appt.ID,
				UserID:         appt.UserID,
				HealthCenterID: appt.HealthCenterID,
				ServiceID:      appt.ServiceID,
				Date:           appt.Date,
				Time:           appt.Time,
				Status:         appt.Status,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventAppointmentCreated, event); err != nil {
			log.Printf("Warning: failed to publish appointment.created event: %v", err)
		}
	}

	log.Printf("Created appointment %s for user %s (%s %s)", appt.ID, appt.UserID, appt.Date, appt.Time)
	return s.Get(ctx, actor, appt.ID)
}

// Get returns an appointment. Patients only see their own; health workers
// and admins see all.
func (s *Service) Get(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
	appt, err := s.records.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if actor.Role == store.RolePatient && appt.UserID != actor.ID {
		return nil, ErrNotOwner
	}
	return appt, nil
}

// List returns a page of appointments visible to the actor, newest first.
func (s *Service) List(ctx context.Context, actor *store.User, filter ListFilter, params pagination.Params, path string) (*PaginatedAppointmentListResponse, error) {
	params.Validate()

	var conditions []store.Condition
	if actor.Role == store.RolePatient {
		conditions = append(conditions, store.Condition{Field: "user_id", Op: "==", Value: actor.ID})
	}
	if filter.Status != "" {
		conditions = append(conditions, store.Condition{Field: "status", Op: "==", Value: filter.Status})
	}
	if filter.Date != "" {
		conditions = append(conditions, store.Condition{Field: "date", Op: "==", Value: filter.Date})
	}

	all := s.records.ListAppointments(ctx, conditions)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date > all[j].Date
		}
		return all[i].Time > all[j].Time
	})
	start, end := params.Slice(len(all))

	return &PaginatedAppointmentListResponse{
		Appointments: all[start:end],
		Pagination:   params.Meta(path, len(all)),
	}, nil
}

// Update lets the owner adjust date, time or remarks while the appointment
// is still pending. Snapshots are not refreshed.
func (s *Service) Update(ctx context.Context, actor *store.User, id string, req UpdateAppointmentRequest) (*store.Appointment, error) {
	appt, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == store.StatusCancelled || appt.Status == store.StatusCompleted {
		return nil, ErrAlreadyFinal
	}

	partial := req.Partial()
	if len(partial) > 0 {
		if !s.records.S.Update(ctx, store.CollectionAppointments, id, partial) {
			return nil, ErrStoreFailure
		}
	}

	return s.Get(ctx, actor, id)
}

// Cancel cancels the actor's own appointment.
func (s *Service) Cancel(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
	appt, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == store.StatusCancelled || appt.Status == store.StatusCompleted {
		return nil, ErrAlreadyFinal
	}

	if !s.records.S.Update(ctx, store.CollectionAppointments, id, map[string]interface{}{"status": store.StatusCancelled}) {
		return nil, ErrStoreFailure
	}

	if s.metrics != nil {
		s.metrics.RecordAppointmentOperation(ctx, "cancel")
	}

	if s.publisher != nil {
		event := messaging.AppointmentStatusChangedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventAppointmentCancelled),
			Data: messaging.AppointmentStatusChangedData{
				AppointmentID: id,
				UserID:        appt.UserID,
				OldStatus:     appt.Status,
				NewStatus:     store.StatusCancelled,
				ChangedBy:     actor.ID,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventAppointmentCancelled, event); err != nil {
			log.Printf("Warning: failed to publish appointment.cancelled event: %v", err)
		}
	}

	return s.Get(ctx, actor, id)
}

// Decide is the health-worker transition: approve, reject or complete. It
// stamps remarks when given, notifies the patient and publishes a status
// change event.
func (s *Service) Decide(ctx context.Context, actor *store.User, id, newStatus, remarks string) (*store.Appointment, error) {
	appt, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == store.StatusCancelled || appt.Status == store.StatusCompleted {
		return nil, ErrAlreadyFinal
	}

	partial := map[string]interface{}{"status": newStatus}
	if remarks != "" {
		partial["remarks"] = remarks
	}
	if !s.records.S.Update(ctx, store.CollectionAppointments, id, partial) {
		return nil, ErrStoreFailure
	}

	if s.metrics != nil {
		s.metrics.RecordAppointmentOperation(ctx, newStatus)
	}

	if s.notifier != nil {
		title, msg := decisionMessage(newStatus, appt.Date, appt.Time)
		if _, err := s.notifier.Notify(ctx, appt.UserID, title, msg, store.NotificationAppointment); err != nil {
			log.Printf("Warning: failed to notify user %s about appointment %s: %v", appt.UserID, id, err)
		}
	}

	if s.publisher != nil {
		event := messaging.AppointmentStatusChangedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventAppointmentStatusChanged),
			Data: messaging.AppointmentStatusChangedData{
				AppointmentID: id,
				UserID:        appt.UserID,
				OldStatus:     appt.Status,
				NewStatus:     newStatus,
				ChangedBy:     actor.ID,
			},
		}
		if err := s.publisher.Publish(ctx, messaging.EventAppointmentStatusChanged, event); err != nil {
			log.Printf("Warning: failed to publish appointment.status_changed event: %v", err)
		}
	}

	log.Printf("Appointment %s: %s -> %s (by %s)", id, appt.Status, newStatus, actor.ID)
	return s.Get(ctx, actor, id)
}

func decisionMessage(status, date, timeOfDay string) (string, string) {
	switch status {
	case store.StatusConfirmed:
		return "Appointment confirmed", fmt.Sprintf("Your appointment on %s at %s has been confirmed.", date, timeOfDay)
	case store.StatusCancelled:
		return "Appointment rejected", fmt.Sprintf("Your appointment on %s at %s could not be accommodated.", date, timeOfDay)
	case store.StatusCompleted:
		return "Appointment completed", fmt.Sprintf("Your appointment on %s at %s has been marked completed.", date, timeOfDay)
	default:
		return "Appointment updated", fmt.Sprintf("Your appointment on %s at %s was updated.", date, timeOfDay)
	}
}
