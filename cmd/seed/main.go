package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/salud-red/appointment-service/internal/config"
	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/store"
)

// Seeds the initial admin account and a small set of health centers and
// services. Collections that already hold documents are left alone, so
// the job is safe to re-run.
func main() {
	log.Println("Seed Job - Starting")

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := store.Connect(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer client.Close()

	gateway, err := identity.NewClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.WebAPIKey, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize identity gateway: %v", err)
	}
	defer gateway.Close()

	seedAdmin(ctx, client, gateway)
	seedCenters(ctx, client)

	log.Println("Seed Job - Finished")
}

func seedAdmin(ctx context.Context, client *store.Client, gateway identity.Gateway) {
	if client.Count(ctx, store.CollectionUsers) > 0 {
		log.Println("Users collection not empty, skipping admin seed")
		return
	}

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	uid, err := gateway.CreateUser(ctx, email, password, "Administrator")
	if err != nil {
		log.Printf("Failed to create admin identity: %v", err)
		return
	}

	admin := &store.User{
		ID:          uuid.New().String(),
		FirebaseUID: uid,
		Name:        "Administrator",
		Email:       email,
		Role:        store.RoleAdmin,
		IsActive:    true,
	}
	doc := admin.ToMap()
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if _, err := client.Create(ctx, store.CollectionUsers, doc, admin.ID); err != nil {
		log.Printf("Failed to write admin user: %v", err)
		return
	}
	log.Printf("✓ Seeded admin user %s (%s)", admin.ID, email)
}

func seedCenters(ctx context.Context, client *store.Client) {
	if client.Count(ctx, store.CollectionHealthCenters) > 0 {
		log.Println("Health centers collection not empty, skipping center seed")
		return
	}

	weekdays := map[string]interface{}{
		"monday":    map[string]interface{}{"open": "08:00", "close": "17:00"},
		"tuesday":   map[string]interface{}{"open": "08:00", "close": "17:00"},
		"wednesday": map[string]interface{}{"open": "08:00", "close": "17:00"},
		"thursday":  map[string]interface{}{"open": "08:00", "close": "17:00"},
		"friday":    map[string]interface{}{"open": "08:00", "close": "15:00"},
	}

	seedData := []struct {
		center   store.HealthCenter
		services []store.Service
	}{
		{
			center: store.HealthCenter{
				ID:       uuid.New().String(),
				Name:     "City Clinic",
				Address:  "12 Main Street",
				IsActive: true,
			},
			services: []store.Service{
				{ID: uuid.New().String(), ServiceName: "General Consultation", DurationMinutes: 30, Price: 50.00, IsActive: true},
				{ID: uuid.New().String(), ServiceName: "Vaccination", DurationMinutes: 15, Price: 25.00, IsActive: true},
			},
		},
		{
			center: store.HealthCenter{
				ID:       uuid.New().String(),
				Name:     "Riverside Health Center",
				Address:  "3 River Road",
				IsActive: true,
			},
			services: []store.Service{
				{ID: uuid.New().String(), ServiceName: "Dental Checkup", DurationMinutes: 45, Price: 80.00, IsActive: true},
			},
		},
	}

	for _, entry := range seedData {
		doc := entry.center.ToMap()
		delete(doc, "created_at")
		delete(doc, "updated_at")
		if _, err := client.Create(ctx, store.CollectionHealthCenters, doc, entry.center.ID); err != nil {
			log.Printf("Failed to seed health center %s: %v", entry.center.Name, err)
			continue
		}
		log.Printf("✓ Seeded health center %s", entry.center.Name)

		for _, svc := range entry.services {
			svc.HealthCenterID = entry.center.ID
			svcDoc := svc.ToMap()
			delete(svcDoc, "created_at")
			delete(svcDoc, "updated_at")
			svcDoc["schedule"] = weekdays
			if _, err := client.Create(ctx, store.CollectionServices, svcDoc, svc.ID); err != nil {
				log.Printf("Failed to seed service %s: %v", svc.ServiceName, err)
				continue
			}
			log.Printf("✓ Seeded service %s", svc.ServiceName)
		}
	}
}
