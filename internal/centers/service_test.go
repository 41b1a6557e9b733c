package centers

import (
	"context"
	"testing"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/testutil"
)

func centersFixture(t *testing.T) (*Service, *testutil.FakeStore) {
	t.Helper()
	fs := testutil.NewFakeStore()
	return NewService(store.NewRecords(fs)), fs
}

// Test health center create, read, update and delete.
func TestCenterLifecycle(t *testing.T) {
	svc, _ := centersFixture(t)
	ctx := context.Background()

	center, err := svc.CreateCenter(ctx, CreateHealthCenterRequest{
		Name:    "City Clinic",
		Address: "12 Main Street",
		Email:   "clinic@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	if !center.IsActive {
		t.Error("Expected new center to be active")
	}

	got, err := svc.GetCenter(ctx, center.ID)
	if err != nil {
		t.Fatalf("GetCenter failed: %v", err)
	}
	if got.Name != "City Clinic" {
		t.Errorf("Expected City Clinic, got %q", got.Name)
	}

	updated, err := svc.UpdateCenter(ctx, center.ID, UpdateHealthCenterRequest{Address: "99 River Road"})
	if err != nil {
		t.Fatalf("UpdateCenter failed: %v", err)
	}
	if updated.Address != "99 River Road" || updated.Name != "City Clinic" {
		t.Errorf("Expected partial update, got %+v", updated)
	}

	if err := svc.DeleteCenter(ctx, center.ID); err != nil {
		t.Fatalf("DeleteCenter failed: %v", err)
	}
	if _, err := svc.GetCenter(ctx, center.ID); err != ErrCenterNotFound {
		t.Errorf("Expected ErrCenterNotFound after delete, got %v", err)
	}
}

// Test that center listings paginate.
func TestListCenters(t *testing.T) {
	svc, _ := centersFixture(t)
	ctx := context.Background()

	for _, name := range []string{"City Clinic", "Riverside Health Center", "Hillside Practice"} {
		if _, err := svc.CreateCenter(ctx, CreateHealthCenterRequest{Name: name, Address: "somewhere"}); err != nil {
			t.Fatalf("CreateCenter failed: %v", err)
		}
	}

	page, err := svc.ListCenters(ctx, pagination.Params{Page: 1, PerPage: 2}, "/health-centers")
	if err != nil {
		t.Fatalf("ListCenters failed: %v", err)
	}
	if len(page.HealthCenters) != 2 {
		t.Errorf("Expected 2 centers on the first page, got %d", len(page.HealthCenters))
	}
	if page.Pagination.Total != 3 || page.Pagination.LastPage != 2 {
		t.Errorf("Expected total 3 over 2 pages, got %+v", page.Pagination)
	}
}

// Test that a service cannot be created under a missing health center.
func TestCreateServiceRequiresCenter(t *testing.T) {
	svc, _ := centersFixture(t)
	ctx := context.Background()

	_, err := svc.CreateService(ctx, CreateServiceRequest{
		HealthCenterID: "missing",
		ServiceName:    "General Consultation",
	})
	if err != ErrCenterNotFound {
		t.Errorf("Expected ErrCenterNotFound, got %v", err)
	}
}

// Test that schedule day names are lowercased on write.
func TestCreateServiceNormalizesSchedule(t *testing.T) {
	svc, _ := centersFixture(t)
	ctx := context.Background()

	center, err := svc.CreateCenter(ctx, CreateHealthCenterRequest{Name: "City Clinic", Address: "12 Main Street"})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}

	created, err := svc.CreateService(ctx, CreateServiceRequest{
		HealthCenterID:  center.ID,
		ServiceName:     "General Consultation",
		DurationMinutes: 30,
		Price:           50.00,
		Schedule: map[string]store.DayHours{
			"Monday": {Open: "08:00", Close: "17:00"},
			"FRIDAY": {Open: "08:00", Close: "12:00"},
		},
	})
	if err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	got, err := svc.GetService(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if _, ok := got.Schedule["monday"]; !ok {
		t.Errorf("Expected lowercase monday key, got %v", got.Schedule)
	}
	if hours, ok := got.Schedule["friday"]; !ok || hours.Close != "12:00" {
		t.Errorf("Expected friday hours to survive, got %v", got.Schedule)
	}
}

// Test that service listings scope to a health center.
func TestListServicesByCenter(t *testing.T) {
	svc, _ := centersFixture(t)
	ctx := context.Background()

	first, err := svc.CreateCenter(ctx, CreateHealthCenterRequest{Name: "City Clinic", Address: "a"})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	second, err := svc.CreateCenter(ctx, CreateHealthCenterRequest{Name: "Riverside", Address: "b"})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}

	if _, err := svc.CreateService(ctx, CreateServiceRequest{HealthCenterID: first.ID, ServiceName: "General Consultation"}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	if _, err := svc.CreateService(ctx, CreateServiceRequest{HealthCenterID: first.ID, ServiceName: "Vaccination"}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	if _, err := svc.CreateService(ctx, CreateServiceRequest{HealthCenterID: second.ID, ServiceName: "Dental Checkup"}); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	scoped, err := svc.ListServices(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("Expected 2 services for the first center, got %d", len(scoped))
	}

	all, err := svc.ListServices(ctx, "")
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 services overall, got %d", len(all))
	}
}

// Test service update and delete paths.
func TestServiceUpdateAndDelete(t *testing.T) {
	svc, _ := centersFixture(t)
	ctx := context.Background()

	center, err := svc.CreateCenter(ctx, CreateHealthCenterRequest{Name: "City Clinic", Address: "a"})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	created, err := svc.CreateService(ctx, CreateServiceRequest{HealthCenterID: center.ID, ServiceName: "General Consultation", Price: 50.00})
	if err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	updated, err := svc.UpdateService(ctx, created.ID, UpdateServiceRequest{Price: 65.00})
	if err != nil {
		t.Fatalf("UpdateService failed: %v", err)
	}
	if updated.Price != 65.00 || updated.ServiceName != "General Consultation" {
		t.Errorf("Expected price-only update, got %+v", updated)
	}

	if err := svc.DeleteService(ctx, created.ID); err != nil {
		t.Fatalf("DeleteService failed: %v", err)
	}
	if _, err := svc.GetService(ctx, created.ID); err != ErrServiceNotFound {
		t.Errorf("Expected ErrServiceNotFound after delete, got %v", err)
	}
	if err := svc.DeleteService(ctx, created.ID); err != ErrServiceNotFound {
		t.Errorf("Expected ErrServiceNotFound on double delete, got %v", err)
	}
}
