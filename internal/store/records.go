package store

// Domain records are in-process typed projections of stored documents.
// FromMap constructors perform field reconciliation: the backing store has
// no schema and historical writers used inconsistent field names, so legacy
// names are coalesced with the canonical field taking priority and defaults
// substituted when a field is entirely absent.
//
// Field priority per entity:
//
//	User:         contact_number > phone; is_active defaults true
//	HealthCenter: contact_number > phone; is_active defaults true
//	Service:      service_name > name; duration_minutes > duration
//	others:       canonical names only

// User roles.
const (
	RolePatient      = "patient"
	RoleHealthWorker = "health_worker"
	RoleAdmin        = "admin"
)

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleHealthWorker || role == RoleAdmin
}

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Notification types.
const (
	NotificationAppointment = "appointment"
	NotificationService     = "service"
	NotificationAdmin       = "admin"
	NotificationGeneral     = "general"
)

// Device token platforms.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

// User is the application user record. The id is application-assigned and
// distinct from the identity provider uid (firebase_uid).
type User struct {
	ID            string `json:"id"`
	FirebaseUID   string `json:"firebase_uid"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number,omitempty"`
	Address       string `json:"address,omitempty"`
	Provider      string `json:"provider,omitempty"`
	FCMToken      string `json:"fcm_token,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// UserFromMap builds a User from a stored document.
func UserFromMap(id string, doc map[string]interface{}) *User {
	if doc == nil {
		return nil
	}
	return &User{
		ID:            id,
		FirebaseUID:   asString(doc["firebase_uid"]),
		Name:          asString(doc["name"]),
		Email:         asString(doc["email"]),
		Role:          stringOr(doc["role"], RolePatient),
		ContactNumber: coalesceString(doc, "contact_number", "phone"),
		Address:       asString(doc["address"]),
		Provider:      asString(doc["provider"]),
		FCMToken:      asString(doc["fcm_token"]),
		IsActive:      boolOr(doc["is_active"], true),
		CreatedAt:     asString(doc["created_at"]),
		UpdatedAt:     asString(doc["updated_at"]),
	}
}

// ToMap serializes the record with canonical field names only.
func (u *User) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"firebase_uid":   u.FirebaseUID,
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"contact_number": u.ContactNumber,
		"address":        u.Address,
		"provider":       u.Provider,
		"fcm_token":      u.FCMToken,
		"is_active":      u.IsActive,
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}

// HealthCenter is a facility offering services.
type HealthCenter struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number,omitempty"`
	Email         string `json:"email,omitempty"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

func HealthCenterFromMap(id string, doc map[string]interface{}) *HealthCenter {
	if doc == nil {
		return nil
	}
	return &HealthCenter{
		ID:            id,
		Name:          asString(doc["name"]),
		Address:       asString(doc["address"]),
		ContactNumber: coalesceString(doc, "contact_number", "phone"),
		Email:         asString(doc["email"]),
		Description:   asString(doc["description"]),
		IsActive:      boolOr(doc["is_active"], true),
		CreatedAt:     asString(doc["created_at"]),
		UpdatedAt:     asString(doc["updated_at"]),
	}
}

func (h *HealthCenter) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"name":           h.Name,
		"address":        h.Address,
		"contact_number": h.ContactNumber,
		"email":          h.Email,
		"description":    h.Description,
		"is_active":      h.IsActive,
		"created_at":     h.CreatedAt,
		"updated_at":     h.UpdatedAt,
	}
}

// DayHours is an open/close time-of-day pair. A weekday absent from a
// schedule means the service is closed that day.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Service is a bookable service offered by a health center.
type Service struct {
	ID              string              `json:"id"`
	HealthCenterID  string              `json:"health_center_id"`
	ServiceName     string              `json:"service_name"`
	Description     string              `json:"description,omitempty"`
	DurationMinutes int                 `json:"duration_minutes,omitempty"`
	Price           float64             `json:"price,omitempty"`
	IsActive        bool                `json:"is_active"`
	Schedule        map[string]DayHours `json:"schedule,omitempty"`
	CreatedAt       string              `json:"created_at,omitempty"`
	UpdatedAt       string              `json:"updated_at,omitempty"`
}

func ServiceFromMap(id string, doc map[string]interface{}) *Service {
	if doc == nil {
		return nil
	}
	s := &Service{
		ID:             id,
		HealthCenterID: asString(doc["health_center_id"]),
		ServiceName:    coalesceString(doc, "service_name", "name"),
		Description:    asString(doc["description"]),
		Price:          asFloat(doc["price"]),
		IsActive:       boolOr(doc["is_active"], true),
		CreatedAt:      asString(doc["created_at"]),
		UpdatedAt:      asString(doc["updated_at"]),
	}
	if v, ok := doc["duration_minutes"]; ok {
		s.DurationMinutes = asInt(v)
	} else {
		s.DurationMinutes = asInt(doc["duration"])
	}
	if raw, ok := doc["schedule"].(map[string]interface{}); ok {
		s.Schedule = scheduleFromMap(raw)
	}
	return s
}

func (s *Service) ToMap() map[string]interface{} {
	doc := map[string]interface{}{
		"health_center_id": s.HealthCenterID,
		"service_name":     s.ServiceName,
		"description":      s.Description,
		"duration_minutes": s.DurationMinutes,
		"price":            s.Price,
		"is_active":        s.IsActive,
		"created_at":       s.CreatedAt,
		"updated_at":       s.UpdatedAt,
	}
	if s.Schedule != nil {
		sched := make(map[string]interface{}, len(s.Schedule))
		for day, hours := range s.Schedule {
			sched[day] = map[string]interface{}{"open": hours.Open, "close": hours.Close}
		}
		doc["schedule"] = sched
	}
	return doc
}

func scheduleFromMap(raw map[string]interface{}) map[string]DayHours {
	sched := make(map[string]DayHours, len(raw))
	for day, v := range raw {
		hours, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		sched[day] = DayHours{
			Open:  asString(hours["open"]),
			Close: asString(hours["close"]),
		}
	}
	return sched
}

// Appointment links a user to a service at a health center. The user,
// health_center and service snapshots are embedded at creation time
// (snapshot-on-write); they are never synced afterwards.
type Appointment struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	HealthCenterID string        `json:"health_center_id"`
	ServiceID      string        `json:"service_id"`
	Date           string        `json:"date"`
	Time           string        `json:"time"`
	Status         string        `json:"status"`
	Remarks        string        `json:"remarks,omitempty"`
	User           *User         `json:"user,omitempty"`
	HealthCenter   *HealthCenter `json:"health_center,omitempty"`
	Service        *Service      `json:"service,omitempty"`
	CreatedAt      string        `json:"created_at,omitempty"`
	UpdatedAt      string        `json:"updated_at,omitempty"`
}

func AppointmentFromMap(id string, doc map[string]interface{}) *Appointment {
	if doc == nil {
		return nil
	}
	a := &Appointment{
		ID:             id,
		UserID:         asString(doc["user_id"]),
		HealthCenterID: asString(doc["health_center_id"]),
		ServiceID:      asString(doc["service_id"]),
		Date:           asString(doc["date"]),
		Time:           asString(doc["time"]),
		Status:         stringOr(doc["status"], StatusPending),
		Remarks:        asString(doc["remarks"]),
		CreatedAt:      asString(doc["created_at"]),
		UpdatedAt:      asString(doc["updated_at"]),
	}
	if snap, ok := doc["user"].(map[string]interface{}); ok {
		a.User = UserFromMap(asString(snap["id"]), snap)
	}
	if snap, ok := doc["health_center"].(map[string]interface{}); ok {
		a.HealthCenter = HealthCenterFromMap(asString(snap["id"]), snap)
	}
	if snap, ok := doc["service"].(map[string]interface{}); ok {
		a.Service = ServiceFromMap(asString(snap["id"]), snap)
	}
	return a
}

func (a *Appointment) ToMap() map[string]interface{} {
	doc := map[string]interface{}{
		"user_id":          a.UserID,
		"health_center_id": a.HealthCenterID,
		"service_id":       a.ServiceID,
		"date":             a.Date,
		"time":             a.Time,
		"status":           a.Status,
		"remarks":          a.Remarks,
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
	if a.User != nil {
		snap := a.User.ToMap()
		snap["id"] = a.User.ID
		doc["user"] = snap
	}
	if a.HealthCenter != nil {
		snap := a.HealthCenter.ToMap()
		snap["id"] = a.HealthCenter.ID
		doc["health_center"] = snap
	}
	if a.Service != nil {
		snap := a.Service.ToMap()
		snap["id"] = a.Service.ID
		doc["service"] = snap
	}
	return doc
}

// Notification is a per-user message shown in the app.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	DateSent  string `json:"date_sent"`
	IsRead    bool   `json:"is_read"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func NotificationFromMap(id string, doc map[string]interface{}) *Notification {
	if doc == nil {
		return nil
	}
	return &Notification{
		ID:        id,
		UserID:    asString(doc["user_id"]),
		Title:     asString(doc["title"]),
		Message:   asString(doc["message"]),
		DateSent:  asString(doc["date_sent"]),
		IsRead:    boolOr(doc["is_read"], false),
		Type:      stringOr(doc["type"], NotificationGeneral),
		CreatedAt: asString(doc["created_at"]),
		UpdatedAt: asString(doc["updated_at"]),
	}
}

func (n *Notification) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    n.UserID,
		"title":      n.Title,
		"message":    n.Message,
		"date_sent":  n.DateSent,
		"is_read":    n.IsRead,
		"type":       n.Type,
		"created_at": n.CreatedAt,
		"updated_at": n.UpdatedAt,
	}
}

// DeviceToken is a per-device push token. One user may own several.
type DeviceToken struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Token      string `json:"token"`
	Platform   string `json:"platform"`
	DeviceName string `json:"device_name,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func DeviceTokenFromMap(id string, doc map[string]interface{}) *DeviceToken {
	if doc == nil {
		return nil
	}
	return &DeviceToken{
		ID:         id,
		UserID:     asString(doc["user_id"]),
		Token:      asString(doc["token"]),
		Platform:   asString(doc["platform"]),
		DeviceName: asString(doc["device_name"]),
		CreatedAt:  asString(doc["created_at"]),
		UpdatedAt:  asString(doc["updated_at"]),
	}
}

func (d *DeviceToken) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     d.UserID,
		"token":       d.Token,
		"platform":    d.Platform,
		"device_name": d.DeviceName,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}
}

// ActivityLog is one append-only audit record.
type ActivityLog struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	IPAddress   string `json:"ip_address,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func ActivityLogFromMap(id string, doc map[string]interface{}) *ActivityLog {
	if doc == nil {
		return nil
	}
	return &ActivityLog{
		ID:          id,
		UserID:      asString(doc["user_id"]),
		Action:      asString(doc["action"]),
		Description: asString(doc["description"]),
		IPAddress:   asString(doc["ip_address"]),
		UserAgent:   asString(doc["user_agent"]),
		CreatedAt:   asString(doc["created_at"]),
	}
}

func (l *ActivityLog) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     l.UserID,
		"action":      l.Action,
		"description": l.Description,
		"ip_address":  l.IPAddress,
		"user_agent":  l.UserAgent,
		"created_at":  l.CreatedAt,
	}
}

// PasswordResetToken is internal to the password-reset flow. Only the hash
// of the raw token is ever stored.
type PasswordResetToken struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	TokenHash string `json:"token_hash"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
	Used      bool   `json:"used"`
	CreatedAt string `json:"created_at"`
}

func PasswordResetTokenFromMap(id string, doc map[string]interface{}) *PasswordResetToken {
	if doc == nil {
		return nil
	}
	return &PasswordResetToken{
		ID:        id,
		Email:     asString(doc["email"]),
		TokenHash: asString(doc["token_hash"]),
		UserID:    asString(doc["user_id"]),
		ExpiresAt: asString(doc["expires_at"]),
		Used:      boolOr(doc["used"], false),
		CreatedAt: asString(doc["created_at"]),
	}
}

func (t *PasswordResetToken) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"email":      t.Email,
		"token_hash": t.TokenHash,
		"user_id":    t.UserID,
		"expires_at": t.ExpiresAt,
		"used":       t.Used,
		"created_at": t.CreatedAt,
	}
}

// AdminStats is a derived aggregate; it is never persisted.
type AdminStats struct {
	Users                int            `json:"users"`
	HealthCenters        int            `json:"health_centers"`
	Services             int            `json:"services"`
	Appointments         int            `json:"appointments"`
	Notifications        int            `json:"notifications"`
	AppointmentsByStatus map[string]int `json:"appointments_by_status"`
	RecentActivity       []ActivityLog  `json:"recent_activity"`
}

// Coercion helpers. Documents read back from the store may carry numbers
// as int64 or float64 depending on how they were written.

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func stringOr(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func coalesceString(doc map[string]interface{}, canonical, legacy string) string {
	if s := asString(doc[canonical]); s != "" {
		return s
	}
	return asString(doc[legacy])
}

func boolOr(v interface{}, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
