package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/config"
	"github.com/salud-red/appointment-service/internal/console"
	"github.com/salud-red/appointment-service/internal/httpapi"
	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/mailer"
	"github.com/salud-red/appointment-service/internal/messaging"
	"github.com/salud-red/appointment-service/internal/session"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/telemetry"
)

func main() {
	// Load .env file if present (development convenience)
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize OpenTelemetry
	telCfg := telemetry.LoadConfig()
	provider, err := telemetry.InitProvider(ctx, telCfg)
	if err != nil {
		log.Printf("Warning: OpenTelemetry init failed: %v", err)
		log.Println("Service will continue without telemetry")
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: metrics init failed: %v", err)
		metrics = nil
	}

	// Document store
	fsClient, err := store.Connect(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer fsClient.Close()
	records := store.NewRecords(fsClient)

	// Identity provider
	gateway, err := identity.NewClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.WebAPIKey, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize identity gateway: %v", err)
	}
	defer gateway.Close()

	// Console session store; the console is skipped when redis is down
	var sessions console.SessionStore
	if cfg.Redis.Addr != "" {
		sessionStore, err := session.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Warning: redis unavailable, web console disabled: %v", err)
		} else {
			sessions = sessionStore
			defer sessionStore.Close()
		}
	}

	// Event publisher is best-effort: the API works without it
	var publisher messaging.PublisherInterface
	if pub, err := messaging.NewPublisher(); err != nil {
		log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	// Outbound email for the password-reset flow
	var mail mailer.Sender
	if cfg.SMTP.Host != "" {
		mail = mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Println("Warning: SMTP not configured, reset emails disabled")
	}

	perms, err := auth.LoadPermissions(cfg.RolesFile)
	if err != nil {
		log.Printf("Warning: could not load %s, console role gating defaults to closed: %v", cfg.RolesFile, err)
	}

	router := httpapi.SetupRouter(httpapi.Deps{
		Records:     records,
		Gateway:     gateway,
		Sessions:    sessions,
		Publisher:   publisher,
		Mail:        mail,
		Metrics:     metrics,
		Permissions: perms,
		BaseURL:     cfg.BaseURL,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("appointment-service listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if provider != nil {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}
	log.Println("Shutdown complete")
}
