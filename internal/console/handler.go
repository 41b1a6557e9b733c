package console

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/salud-red/appointment-service/internal/activitylog"
	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/session"
	"github.com/salud-red/appointment-service/internal/store"
)

// LoginPath is where unauthenticated console requests are sent.
const LoginPath = "/console/login"

// SessionStore is the full session contract the console needs; the API
// middleware only needs the read side.
type SessionStore interface {
	session.Getter
	Create(ctx context.Context, sess session.Session) (string, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves the server-rendered operational console. Failures
// redirect back to the login form with a flashed error instead of JSON.
type Handler struct {
	records     *store.Records
	gateway     identity.Gateway
	sessions    SessionStore
	permissions auth.Permissions
	audit       activitylog.Logger
}

func NewHandler(records *store.Records, gateway identity.Gateway, sessions SessionStore, permissions auth.Permissions, audit activitylog.Logger) *Handler {
	return &Handler{
		records:     records,
		gateway:     gateway,
		sessions:    sessions,
		permissions: permissions,
		audit:       audit,
	}
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := struct{ Error string }{Error: r.URL.Query().Get("error")}
	if err := templates.ExecuteTemplate(w, "login", data); err != nil {
		log.Printf("Failed to render login form: %v", err)
	}
}

func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, LoginPath+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// Login is the form POST. Only roles granted the console section in the
// permissions file may sign in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "invalid form submission")
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.redirectWithError(w, r, "email and password are required")
		return
	}

	result, err := h.gateway.VerifyPassword(r.Context(), email, password)
	if err != nil {
		h.redirectWithError(w, r, "invalid email or password")
		return
	}

	user, err := h.records.GetUserByFirebaseUID(r.Context(), result.UID)
	if err != nil || user == nil {
		h.redirectWithError(w, r, "account not found")
		return
	}
	if !user.IsActive {
		h.redirectWithError(w, r, "account is deactivated")
		return
	}
	if !h.permissions.Allows(user.Role, "console") {
		h.redirectWithError(w, r, "this account cannot access the console")
		return
	}

	id, err := h.sessions.Create(r.Context(), session.Session{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	})
	if err != nil {
		log.Printf("Failed to create console session: %v", err)
		h.redirectWithError(w, r, "could not start a session, try again")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    id,
		Path:     "/console",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(session.TTL.Seconds()),
	})

	h.audit.Log(r.Context(), user.ID, "console.login", "signed in to console", r.RemoteAddr, r.UserAgent())
	http.Redirect(w, r, "/console/dashboard", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if sess, err := h.sessions.Get(r.Context(), cookie.Value); err == nil && sess != nil {
			h.audit.Log(r.Context(), sess.UserID, "console.logout", "signed out of console", r.RemoteAddr, r.UserAgent())
		}
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Printf("Failed to delete console session: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   auth.SessionCookie,
		Value:  "",
		Path:   "/console",
		MaxAge: -1,
	})
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

type dashboardData struct {
	Name         string
	Role         string
	Stats        *store.AdminStats
	Appointments []store.Appointment
}

// Dashboard renders per-role content: admins get the aggregate stats,
// health workers get the appointment worklist.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	data := dashboardData{Name: sess.Name, Role: sess.Role}

	switch sess.Role {
	case store.RoleAdmin:
		data.Stats = &store.AdminStats{
			Users:         h.records.S.Count(r.Context(), store.CollectionUsers),
			HealthCenters: h.records.S.Count(r.Context(), store.CollectionHealthCenters),
			Services:      h.records.S.Count(r.Context(), store.CollectionServices),
			Appointments:  h.records.S.Count(r.Context(), store.CollectionAppointments),
			Notifications: h.records.S.Count(r.Context(), store.CollectionNotifications),
			AppointmentsByStatus: map[string]int{
				store.StatusPending:   0,
				store.StatusConfirmed: 0,
				store.StatusCancelled: 0,
				store.StatusCompleted: 0,
			},
		}
		for _, appt := range h.records.ListAppointments(r.Context(), nil) {
			data.Stats.AppointmentsByStatus[appt.Status]++
		}
	case store.RoleHealthWorker:
		data.Appointments = h.records.ListAppointments(r.Context(), []store.Condition{
			{Field: "status", Op: "==", Value: store.StatusPending},
		})
	}

	if err := templates.ExecuteTemplate(w, "dashboard", data); err != nil {
		log.Printf("Failed to render dashboard: %v", err)
	}
}
