package store_test

import (
	"context"
	"testing"

	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/testutil"
)

func seedCenterAndService(t *testing.T, ctx context.Context, fake *testutil.FakeStore) {
	t.Helper()

	center := &store.HealthCenter{ID: "hc1", Name: "City Clinic", Address: "12 Main Street", IsActive: true}
	if _, err := fake.Create(ctx, store.CollectionHealthCenters, center.ToMap(), "hc1"); err != nil {
		t.Fatalf("Failed to seed health center: %v", err)
	}

	svc := &store.Service{ID: "svc1", HealthCenterID: "hc1", ServiceName: "General Consultation", DurationMinutes: 30, Price: 50.00, IsActive: true}
	if _, err := fake.Create(ctx, store.CollectionServices, svc.ToMap(), "svc1"); err != nil {
		t.Fatalf("Failed to seed service: %v", err)
	}

	user := &store.User{ID: "u1", FirebaseUID: "fb-1", Name: "Ana", Email: "ana@example.com", Role: store.RolePatient, IsActive: true}
	if _, err := fake.Create(ctx, store.CollectionUsers, user.ToMap(), "u1"); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
}

// TestCreateAppointment_EmbedsSnapshots tests that creating an appointment
// embeds the referenced records and the snapshots keep creation-time
// values after the referents change
func TestCreateAppointment_EmbedsSnapshots(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeStore()
	records := store.NewRecords(fake)
	seedCenterAndService(t, ctx, fake)

	appt := &store.Appointment{
		ID:             "ap1",
		UserID:         "u1",
		HealthCenterID: "hc1",
		ServiceID:      "svc1",
		Date:           "2026-09-10",
		Time:           "10:00",
		Status:         store.StatusPending,
	}
	if _, err := records.CreateAppointment(ctx, appt); err != nil {
		t.Fatalf("Failed to create appointment: %v", err)
	}

	got, err := records.GetAppointment(ctx, "ap1")
	if err != nil {
		t.Fatalf("Failed to fetch appointment: %v", err)
	}
	if got.HealthCenter == nil || got.HealthCenter.Name != "City Clinic" {
		t.Fatalf("Expected embedded health center 'City Clinic', got %+v", got.HealthCenter)
	}
	if got.Service == nil || got.Service.Price != 50.00 {
		t.Fatalf("Expected embedded service price 50.00, got %+v", got.Service)
	}

	// Mutate the referents; the snapshots must not follow.
	if !fake.Update(ctx, store.CollectionHealthCenters, "hc1", map[string]interface{}{"name": "Renamed Clinic"}) {
		t.Fatal("Failed to update health center")
	}
	if !fake.Update(ctx, store.CollectionServices, "svc1", map[string]interface{}{"price": 999.0}) {
		t.Fatal("Failed to update service")
	}

	got, err = records.GetAppointment(ctx, "ap1")
	if err != nil {
		t.Fatalf("Failed to re-fetch appointment: %v", err)
	}
	if got.HealthCenter.Name != "City Clinic" {
		t.Errorf("Expected snapshot name 'City Clinic' after referent update, got '%s'", got.HealthCenter.Name)
	}
	if got.Service.Price != 50.00 {
		t.Errorf("Expected snapshot price 50.00 after referent update, got %v", got.Service.Price)
	}
}

// TestCreateAppointment_MissingReferent tests that creation succeeds with
// the snapshot left out when a referent does not exist
func TestCreateAppointment_MissingReferent(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeStore()
	records := store.NewRecords(fake)
	seedCenterAndService(t, ctx, fake)

	appt := &store.Appointment{
		ID:             "ap2",
		UserID:         "u1",
		HealthCenterID: "hc-missing",
		ServiceID:      "svc1",
		Date:           "2026-09-11",
		Time:           "09:00",
		Status:         store.StatusPending,
	}
	if _, err := records.CreateAppointment(ctx, appt); err != nil {
		t.Fatalf("Expected creation to succeed with missing referent, got: %v", err)
	}

	got, err := records.GetAppointment(ctx, "ap2")
	if err != nil {
		t.Fatalf("Failed to fetch appointment: %v", err)
	}
	if got.HealthCenter != nil {
		t.Errorf("Expected no health center snapshot, got %+v", got.HealthCenter)
	}
	if got.Service == nil {
		t.Error("Expected service snapshot to be present")
	}
}

// TestGetUserByEmail tests the typed reader lookups
func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeStore()
	records := store.NewRecords(fake)
	seedCenterAndService(t, ctx, fake)

	user, err := records.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("Expected user u1, got %+v", user)
	}

	missing, err := records.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("Expected no error for missing user, got: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing user, got %+v", missing)
	}
}
