package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/salud-red/appointment-service/internal/activitylog"
	"github.com/salud-red/appointment-service/internal/admin"
	"github.com/salud-red/appointment-service/internal/appointments"
	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/authn"
	"github.com/salud-red/appointment-service/internal/centers"
	"github.com/salud-red/appointment-service/internal/console"
	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/mailer"
	"github.com/salud-red/appointment-service/internal/messaging"
	"github.com/salud-red/appointment-service/internal/notifications"
	"github.com/salud-red/appointment-service/internal/respond"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/telemetry"
	"github.com/salud-red/appointment-service/internal/users"
)

// Deps carries the process-wide singletons the router wires into
// handlers. Publisher, Mail, Sessions and Metrics may be nil; the
// affected features degrade to no-ops (console routes are skipped
// without a session store).
type Deps struct {
	Records     *store.Records
	Gateway     identity.Gateway
	Sessions    console.SessionStore
	Publisher   messaging.PublisherInterface
	Mail        mailer.Sender
	Metrics     *telemetry.Metrics
	Permissions auth.Permissions
	BaseURL     string
}

// SetupRouter initializes all routes for the application
func SetupRouter(d Deps) *mux.Router {
	audit := activitylog.NewService(d.Records.S)

	userService := users.NewService(d.Records, d.Gateway, d.Publisher)
	userHandler := users.NewHandler(userService, audit)

	centerService := centers.NewService(d.Records)
	centerHandler := centers.NewHandler(centerService, audit)

	notifService := notifications.NewService(d.Records, d.Gateway, d.Publisher, d.Metrics)
	notifHandler := notifications.NewHandler(notifService, audit)

	apptService := appointments.NewService(d.Records, notifService, d.Publisher, d.Metrics)
	apptHandler := appointments.NewHandler(apptService, audit)

	authService := authn.NewService(d.Records, d.Gateway, d.Mail, d.BaseURL, d.Metrics)
	authHandler := authn.NewHandler(authService, userService, audit)

	adminService := admin.NewService(d.Records)
	adminHandler := admin.NewHandler(adminService)

	// A typed nil must not reach the interface-valued parameter.
	var authMetrics auth.MetricsRecorder
	if d.Metrics != nil {
		authMetrics = d.Metrics
	}
	authed := auth.MiddlewareWithMetrics(d.Gateway, d.Records, authMetrics)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("appointment-service"))
	r.Use(CORSMiddleware)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"appointment-service"}`))
	}).Methods("GET")

	// Auth routes (public)
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/firebase-login", authHandler.FirebaseLogin).Methods("POST")
	r.HandleFunc("/auth/google", authHandler.GoogleLogin).Methods("POST")
	r.HandleFunc("/auth/forgot-password", authHandler.ForgotPassword).Methods("POST")
	r.HandleFunc("/auth/verify-reset-token", authHandler.VerifyResetToken).Methods("POST")
	r.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods("POST")

	// Auth routes (authenticated)
	r.Handle("/auth/logout", authed(http.HandlerFunc(authHandler.Logout))).Methods("POST")
	r.Handle("/auth/profile", authed(http.HandlerFunc(authHandler.GetProfile))).Methods("GET")
	r.Handle("/auth/profile", authed(http.HandlerFunc(authHandler.UpdateProfile))).Methods("PUT")
	r.Handle("/auth/change-password", authed(http.HandlerFunc(authHandler.ChangePassword))).Methods("POST")
	r.Handle("/auth/set-password", authed(http.HandlerFunc(authHandler.SetPassword))).Methods("POST")
	r.Handle("/auth/has-password", authed(http.HandlerFunc(authHandler.HasPassword))).Methods("GET")

	// User routes (admin only)
	r.Handle("/users",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.CreateUser),
		)),
	).Methods("POST")

	r.Handle("/users",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.ListUsers),
		)),
	).Methods("GET")

	r.Handle("/users/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.GetUser),
		)),
	).Methods("GET")

	r.Handle("/users/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.UpdateUser),
		)),
	).Methods("PUT")

	r.Handle("/users/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.DeleteUser),
		)),
	).Methods("DELETE")

	r.Handle("/users/{id}/deactivate",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.DeactivateUser),
		)),
	).Methods("POST")

	r.Handle("/users/{id}/activate",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(userHandler.ActivateUser),
		)),
	).Methods("POST")

	// Health center routes (reads authenticated, writes admin only)
	r.Handle("/health-centers",
		authed(http.HandlerFunc(centerHandler.ListCenters)),
	).Methods("GET")

	r.Handle("/health-centers/{id}",
		authed(http.HandlerFunc(centerHandler.GetCenter)),
	).Methods("GET")

	r.Handle("/health-centers",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(centerHandler.CreateCenter),
		)),
	).Methods("POST")

	r.Handle("/health-centers/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(centerHandler.UpdateCenter),
		)),
	).Methods("PUT")

	r.Handle("/health-centers/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(centerHandler.DeleteCenter),
		)),
	).Methods("DELETE")

	// Service routes (reads authenticated, writes admin only)
	r.Handle("/services",
		authed(http.HandlerFunc(centerHandler.ListServices)),
	).Methods("GET")

	r.Handle("/services/{id}",
		authed(http.HandlerFunc(centerHandler.GetService)),
	).Methods("GET")

	r.Handle("/services",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(centerHandler.CreateService),
		)),
	).Methods("POST")

	r.Handle("/services/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(centerHandler.UpdateService),
		)),
	).Methods("PUT")

	r.Handle("/services/{id}",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(centerHandler.DeleteService),
		)),
	).Methods("DELETE")

	// Appointment routes (all roles; visibility enforced in the service)
	r.Handle("/appointments",
		authed(http.HandlerFunc(apptHandler.CreateAppointment)),
	).Methods("POST")

	r.Handle("/appointments",
		authed(http.HandlerFunc(apptHandler.ListAppointments)),
	).Methods("GET")

	r.Handle("/appointments/{id}",
		authed(http.HandlerFunc(apptHandler.GetAppointment)),
	).Methods("GET")

	r.Handle("/appointments/{id}",
		authed(http.HandlerFunc(apptHandler.UpdateAppointment)),
	).Methods("PUT")

	r.Handle("/appointments/{id}/cancel",
		authed(http.HandlerFunc(apptHandler.CancelAppointment)),
	).Methods("POST")

	// Health worker decision routes
	r.Handle("/health-worker/appointments/{id}/approve",
		authed(auth.RequireRoles(store.RoleHealthWorker, store.RoleAdmin)(
			http.HandlerFunc(apptHandler.ApproveAppointment),
		)),
	).Methods("POST")

	r.Handle("/health-worker/appointments/{id}/reject",
		authed(auth.RequireRoles(store.RoleHealthWorker, store.RoleAdmin)(
			http.HandlerFunc(apptHandler.RejectAppointment),
		)),
	).Methods("POST")

	r.Handle("/health-worker/appointments/{id}/complete",
		authed(auth.RequireRoles(store.RoleHealthWorker, store.RoleAdmin)(
			http.HandlerFunc(apptHandler.CompleteAppointment),
		)),
	).Methods("POST")

	// Notification routes
	r.Handle("/notifications",
		authed(http.HandlerFunc(notifHandler.ListNotifications)),
	).Methods("GET")

	r.Handle("/notifications/read-all",
		authed(http.HandlerFunc(notifHandler.MarkAllRead)),
	).Methods("POST")

	r.Handle("/notifications/{id}/read",
		authed(http.HandlerFunc(notifHandler.MarkRead)),
	).Methods("POST")

	r.Handle("/notifications/{id}",
		authed(http.HandlerFunc(notifHandler.DeleteNotification)),
	).Methods("DELETE")

	r.Handle("/notifications/broadcast",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(notifHandler.Broadcast),
		)),
	).Methods("POST")

	// Device token routes
	r.Handle("/device-tokens",
		authed(http.HandlerFunc(notifHandler.RegisterDeviceToken)),
	).Methods("POST")

	r.Handle("/device-tokens",
		authed(http.HandlerFunc(notifHandler.ListDeviceTokens)),
	).Methods("GET")

	r.Handle("/device-tokens/{id}",
		authed(http.HandlerFunc(notifHandler.DeleteDeviceToken)),
	).Methods("DELETE")

	// Admin routes
	r.Handle("/admin/stats",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(adminHandler.GetStats),
		)),
	).Methods("GET")

	r.Handle("/admin/logs",
		authed(auth.RequireRoles(store.RoleAdmin)(
			http.HandlerFunc(adminHandler.ListLogs),
		)),
	).Methods("GET")

	// Web console (session-cookie authenticated, server-rendered)
	if d.Sessions != nil {
		consoleHandler := console.NewHandler(d.Records, d.Gateway, d.Sessions, d.Permissions, audit)
		sessioned := auth.SessionMiddleware(d.Sessions, console.LoginPath)

		r.HandleFunc(console.LoginPath, consoleHandler.LoginForm).Methods("GET")
		r.HandleFunc(console.LoginPath, consoleHandler.Login).Methods("POST")
		r.HandleFunc("/console/logout", consoleHandler.Logout).Methods("POST")
		r.Handle("/console/dashboard",
			sessioned(auth.RequireSessionRoles(console.LoginPath, store.RoleAdmin, store.RoleHealthWorker)(
				http.HandlerFunc(consoleHandler.Dashboard),
			)),
		).Methods("GET")
	}

	return r
}
