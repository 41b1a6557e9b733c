package messaging

import (
	"fmt"
	"time"
)

// Event routing keys as constants
const (
	// Appointment events
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentCancelled     = "appointment.cancelled"

	// User events
	EventUserRegistered  = "user.registered"
	EventUserDeactivated = "user.deactivated"

	// Notification events
	EventNotificationSent = "notification.sent"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// AppointmentCreatedEvent represents an appointment booking
type AppointmentCreatedEvent struct {
	BaseEvent
	Data AppointmentCreatedData `json:"data"`
}

type AppointmentCreatedData struct {
	AppointmentID  string `json:"appointment_id"`
	UserID         string `json:"user_id"`
	HealthCenterID string `json:"health_center_id"`
	ServiceID      string `json:"service_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
}

// AppointmentStatusChangedEvent represents a status transition
type AppointmentStatusChangedEvent struct {
	BaseEvent
	Data AppointmentStatusChangedData `json:"data"`
}

type AppointmentStatusChangedData struct {
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	ChangedBy     string `json:"changed_by"`
}

// UserRegisteredEvent represents a new application user
type UserRegisteredEvent struct {
	BaseEvent
	Data UserRegisteredData `json:"data"`
}

type UserRegisteredData struct {
	UserID      string `json:"user_id"`
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// UserDeactivatedEvent represents an account deactivation
type UserDeactivatedEvent struct {
	BaseEvent
	Data UserDeactivatedData `json:"data"`
}

type UserDeactivatedData struct {
	UserID        string    `json:"user_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

// NotificationSentEvent represents a delivered notification
type NotificationSentEvent struct {
	BaseEvent
	Data NotificationSentData `json:"data"`
}

type NotificationSentData struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Type           string `json:"type"`
	PushDelivered  int    `json:"push_delivered"`
	PushFailed     int    `json:"push_failed"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     fmt.Sprintf("%d", time.Now().UnixNano()),
		Timestamp:   time.Now().UTC(),
		ServiceName: "appointment-service",
	}
}
