package appointments

import (
	"context"
	"testing"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/testutil"
)

type notifyCall struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

type capturedNotifier struct {
	calls []notifyCall
}

func (n *capturedNotifier) Notify(ctx context.Context, userID, title, message, typ string) (*store.Notification, error) {
	n.calls = append(n.calls, notifyCall{UserID: userID, Title: title, Message: message, Type: typ})
	return &store.Notification{ID: "n1", UserID: userID, Title: title, Message: message, Type: typ}, nil
}

func patient(id string) *store.User {
	return &store.User{ID: id, Role: store.RolePatient, IsActive: true}
}

func healthWorker() *store.User {
	return &store.User{ID: "hw1", Role: store.RoleHealthWorker, IsActive: true}
}

func apptFixture(t *testing.T) (*Service, *testutil.FakeStore, *capturedNotifier) {
	t.Helper()
	fs := testutil.NewFakeStore()
	ctx := context.Background()

	center := &store.HealthCenter{Name: "City Clinic", Address: "1 Main St"}
	if _, err := fs.Create(ctx, store.CollectionHealthCenters, center.ToMap(), "hc1"); err != nil {
		t.Fatalf("Failed to seed health center: %v", err)
	}
	svcDoc := &store.Service{HealthCenterID: "hc1", ServiceName: "General Consultation", DurationMinutes: 30, Price: 50.00, IsActive: true}
	if _, err := fs.Create(ctx, store.CollectionServices, svcDoc.ToMap(), "svc1"); err != nil {
		t.Fatalf("Failed to seed service: %v", err)
	}

	notifier := &capturedNotifier{}
	return NewService(store.NewRecords(fs), notifier, nil, nil), fs, notifier
}

func createRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		HealthCenterID: "hc1",
		ServiceID:      "svc1",
		Date:           "2026-09-15",
		Time:           "10:30",
	}
}

// Test that creating an appointment stores it pending and notifies the patient.
func TestCreateAppointment(t *testing.T) {
	svc, _, notifier := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if appt.Status != store.StatusPending {
		t.Errorf("Expected status pending, got %q", appt.Status)
	}
	if appt.Service == nil || appt.Service.ServiceName != "General Consultation" {
		t.Errorf("Expected service snapshot, got %+v", appt.Service)
	}
	if appt.HealthCenter == nil || appt.HealthCenter.Name != "City Clinic" {
		t.Errorf("Expected center snapshot, got %+v", appt.HealthCenter)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifier.calls))
	}
	if notifier.calls[0].UserID != "u1" || notifier.calls[0].Title != "Appointment received" {
		t.Errorf("Expected receipt notification for u1, got %+v", notifier.calls[0])
	}
}

// Test that a patient cannot read another patient's appointment.
func TestGetAppointmentOwnership(t *testing.T) {
	svc, _, _ := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctx, patient("u2"), appt.ID); err != ErrNotOwner {
		t.Errorf("Expected ErrNotOwner for other patient, got %v", err)
	}
	if _, err := svc.Get(ctx, patient("u1"), appt.ID); err != nil {
		t.Errorf("Expected owner to read the appointment, got %v", err)
	}
	if _, err := svc.Get(ctx, healthWorker(), appt.ID); err != nil {
		t.Errorf("Expected health worker to read any appointment, got %v", err)
	}
	if _, err := svc.Get(ctx, healthWorker(), "missing"); err != ErrAppointmentNotFound {
		t.Errorf("Expected ErrAppointmentNotFound, got %v", err)
	}
}

// Test that patients list only their own appointments while staff see all.
func TestListAppointmentsVisibility(t *testing.T) {
	svc, _, _ := apptFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, patient("u1"), createRequest()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	other := createRequest()
	other.Date = "2026-09-16"
	if _, err := svc.Create(ctx, patient("u2"), other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	params := pagination.Params{Page: 1, PerPage: 15}
	mine, err := svc.List(ctx, patient("u1"), ListFilter{}, params, "/appointments")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine.Appointments) != 1 || mine.Appointments[0].UserID != "u1" {
		t.Errorf("Expected only u1's appointment, got %+v", mine.Appointments)
	}

	all, err := svc.List(ctx, healthWorker(), ListFilter{}, params, "/appointments")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all.Appointments) != 2 {
		t.Errorf("Expected staff to see 2 appointments, got %d", len(all.Appointments))
	}
}

// Test that the status filter narrows a staff listing.
func TestListAppointmentsStatusFilter(t *testing.T) {
	svc, _, _ := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second := createRequest()
	second.Date = "2026-09-17"
	if _, err := svc.Create(ctx, patient("u1"), second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Decide(ctx, healthWorker(), appt.ID, store.StatusConfirmed, ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	params := pagination.Params{Page: 1, PerPage: 15}
	confirmed, err := svc.List(ctx, healthWorker(), ListFilter{Status: store.StatusConfirmed}, params, "/appointments")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(confirmed.Appointments) != 1 || confirmed.Appointments[0].ID != appt.ID {
		t.Errorf("Expected only the confirmed appointment, got %+v", confirmed.Appointments)
	}
}

// Test that approving an appointment notifies the patient, not the approver.
func TestDecideApprovalNotifiesPatient(t *testing.T) {
	svc, _, notifier := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	notifier.calls = nil

	updated, err := svc.Decide(ctx, healthWorker(), appt.ID, store.StatusConfirmed, "bring your card")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if updated.Status != store.StatusConfirmed {
		t.Errorf("Expected status confirmed, got %q", updated.Status)
	}
	if updated.Remarks != "bring your card" {
		t.Errorf("Expected remarks to be stamped, got %q", updated.Remarks)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifier.calls))
	}
	if notifier.calls[0].UserID != "u1" {
		t.Errorf("Expected notification for the patient, got %+v", notifier.calls[0])
	}
}

// Test that a final appointment rejects further transitions.
func TestDecideFinalStatus(t *testing.T) {
	svc, _, _ := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Decide(ctx, healthWorker(), appt.ID, store.StatusCancelled, ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	if _, err := svc.Decide(ctx, healthWorker(), appt.ID, store.StatusConfirmed, ""); err != ErrAlreadyFinal {
		t.Errorf("Expected ErrAlreadyFinal, got %v", err)
	}
	if _, err := svc.Cancel(ctx, patient("u1"), appt.ID); err != ErrAlreadyFinal {
		t.Errorf("Expected ErrAlreadyFinal on cancel, got %v", err)
	}
}

// Test that a patient can cancel their own pending appointment.
func TestCancelAppointment(t *testing.T) {
	svc, _, _ := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, patient("u1"), appt.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != store.StatusCancelled {
		t.Errorf("Expected status cancelled, got %q", cancelled.Status)
	}
}

// Test that updates are limited to pending appointments owned by the actor.
func TestUpdateAppointment(t *testing.T) {
	svc, _, _ := apptFixture(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, patient("u1"), createRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(ctx, patient("u1"), appt.ID, UpdateAppointmentRequest{Time: "14:00"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Time != "14:00" {
		t.Errorf("Expected rescheduled time, got %q", updated.Time)
	}

	if _, err := svc.Update(ctx, patient("u2"), appt.ID, UpdateAppointmentRequest{Time: "15:00"}); err != ErrNotOwner {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}

	if _, err := svc.Cancel(ctx, patient("u1"), appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := svc.Update(ctx, patient("u1"), appt.ID, UpdateAppointmentRequest{Time: "16:00"}); err != ErrAlreadyFinal {
		t.Errorf("Expected ErrAlreadyFinal after cancellation, got %v", err)
	}
}
