package store

import (
	"context"
	"log"
)

// Records exposes domain-specific reads and writes on top of the generic
// Store. Reads run field reconciliation once at this boundary; callers
// only ever see canonical records.
type Records struct {
	S Store
}

func NewRecords(s Store) *Records {
	return &Records{S: s}
}

func (r *Records) GetUser(ctx context.Context, id string) (*User, error) {
	doc, err := r.S.Get(ctx, CollectionUsers, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return UserFromMap(id, doc), nil
}

func (r *Records) GetUserByFirebaseUID(ctx context.Context, uid string) (*User, error) {
	doc, err := r.S.FindByField(ctx, CollectionUsers, "firebase_uid", uid)
	if err != nil || doc == nil {
		return nil, err
	}
	return UserFromMap(asString(doc["id"]), doc), nil
}

func (r *Records) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	doc, err := r.S.FindByField(ctx, CollectionUsers, "email", email)
	if err != nil || doc == nil {
		return nil, err
	}
	return UserFromMap(asString(doc["id"]), doc), nil
}

func (r *Records) ListUsers(ctx context.Context, conditions []Condition) []User {
	docs := r.S.QueryCollection(ctx, CollectionUsers, conditions)
	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, *UserFromMap(asString(doc["id"]), doc))
	}
	return users
}

func (r *Records) GetHealthCenter(ctx context.Context, id string) (*HealthCenter, error) {
	doc, err := r.S.Get(ctx, CollectionHealthCenters, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return HealthCenterFromMap(id, doc), nil
}

func (r *Records) ListHealthCenters(ctx context.Context, conditions []Condition) []HealthCenter {
	docs := r.S.QueryCollection(ctx, CollectionHealthCenters, conditions)
	centers := make([]HealthCenter, 0, len(docs))
	for _, doc := range docs {
		centers = append(centers, *HealthCenterFromMap(asString(doc["id"]), doc))
	}
	return centers
}

func (r *Records) GetService(ctx context.Context, id string) (*Service, error) {
	doc, err := r.S.Get(ctx, CollectionServices, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return ServiceFromMap(id, doc), nil
}

func (r *Records) ListServices(ctx context.Context, conditions []Condition) []Service {
	docs := r.S.QueryCollection(ctx, CollectionServices, conditions)
	services := make([]Service, 0, len(docs))
	for _, doc := range docs {
		services = append(services, *ServiceFromMap(asString(doc["id"]), doc))
	}
	return services
}

func (r *Records) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	doc, err := r.S.Get(ctx, CollectionAppointments, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return AppointmentFromMap(id, doc), nil
}

func (r *Records) ListAppointments(ctx context.Context, conditions []Condition) []Appointment {
	docs := r.S.QueryCollection(ctx, CollectionAppointments, conditions)
	appts := make([]Appointment, 0, len(docs))
	for _, doc := range docs {
		appts = append(appts, *AppointmentFromMap(asString(doc["id"]), doc))
	}
	return appts
}

// CreateAppointment writes a new appointment, embedding snapshots of the
// referenced user, health center and service at creation time so later
// reads need no joins. The three fetches run sequentially. A missing
// referent simply leaves its snapshot out; creation still succeeds
// (best-effort enrichment, not referential integrity).
func (r *Records) CreateAppointment(ctx context.Context, a *Appointment) (string, error) {
	doc := a.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if user, err := r.GetUser(ctx, a.UserID); err == nil && user != nil {
		snap := user.ToMap()
		snap["id"] = user.ID
		doc["user"] = snap
	} else {
		log.Printf("appointment %s: user %s not found, skipping snapshot", a.ID, a.UserID)
	}
	if center, err := r.GetHealthCenter(ctx, a.HealthCenterID); err == nil && center != nil {
		snap := center.ToMap()
		snap["id"] = center.ID
		doc["health_center"] = snap
	} else {
		log.Printf("appointment %s: health center %s not found, skipping snapshot", a.ID, a.HealthCenterID)
	}
	if svc, err := r.GetService(ctx, a.ServiceID); err == nil && svc != nil {
		snap := svc.ToMap()
		snap["id"] = svc.ID
		doc["service"] = snap
	} else {
		log.Printf("appointment %s: service %s not found, skipping snapshot", a.ID, a.ServiceID)
	}

	return r.S.Create(ctx, CollectionAppointments, doc, a.ID)
}

func (r *Records) GetNotification(ctx context.Context, id string) (*Notification, error) {
	doc, err := r.S.Get(ctx, CollectionNotifications, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return NotificationFromMap(id, doc), nil
}

func (r *Records) ListNotifications(ctx context.Context, conditions []Condition) []Notification {
	docs := r.S.QueryCollection(ctx, CollectionNotifications, conditions)
	notifs := make([]Notification, 0, len(docs))
	for _, doc := range docs {
		notifs = append(notifs, *NotificationFromMap(asString(doc["id"]), doc))
	}
	return notifs
}

func (r *Records) ListDeviceTokens(ctx context.Context, conditions []Condition) []DeviceToken {
	docs := r.S.QueryCollection(ctx, CollectionDeviceTokens, conditions)
	tokens := make([]DeviceToken, 0, len(docs))
	for _, doc := range docs {
		tokens = append(tokens, *DeviceTokenFromMap(asString(doc["id"]), doc))
	}
	return tokens
}

func (r *Records) ListActivityLogs(ctx context.Context, conditions []Condition) []ActivityLog {
	docs := r.S.QueryCollection(ctx, CollectionLogs, conditions)
	logs := make([]ActivityLog, 0, len(docs))
	for _, doc := range docs {
		logs = append(logs, *ActivityLogFromMap(asString(doc["id"]), doc))
	}
	return logs
}
