package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/salud-red/appointment-service/internal/config"
	"github.com/salud-red/appointment-service/internal/store"
)

// Deletes password-reset tokens whose expiry has passed, regardless of
// used status. Meant to run from a scheduler (cron, Cloud Scheduler).
func main() {
	log.Println("Reset Token Cleanup Job - Starting")

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := store.Connect(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer client.Close()

	now := time.Now().Format(store.TimestampFormat)
	expired := client.QueryCollection(ctx, store.CollectionPasswordResets, []store.Condition{
		{Field: "expires_at", Op: "<", Value: now},
	})

	log.Printf("Found %d expired reset tokens", len(expired))
	if len(expired) == 0 {
		log.Println("No cleanup needed. Exiting.")
		return
	}

	deleted := 0
	for _, doc := range expired {
		id, ok := doc["id"].(string)
		if !ok || id == "" {
			continue
		}
		if client.Delete(ctx, store.CollectionPasswordResets, id) {
			deleted++
		}
	}

	log.Printf("✓ Cleanup completed: %d expired reset tokens deleted", deleted)
	log.Println("Cleanup Job - Finished")
}
