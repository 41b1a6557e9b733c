package appointments

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/testutil"
)

type mockService struct {
	createFunc func(ctx context.Context, actor *store.User, req CreateAppointmentRequest) (*store.Appointment, error)
	getFunc    func(ctx context.Context, actor *store.User, id string) (*store.Appointment, error)
	listFunc   func(ctx context.Context, actor *store.User, filter ListFilter, params pagination.Params, path string) (*PaginatedAppointmentListResponse, error)
	updateFunc func(ctx context.Context, actor *store.User, id string, req UpdateAppointmentRequest) (*store.Appointment, error)
	cancelFunc func(ctx context.Context, actor *store.User, id string) (*store.Appointment, error)
	decideFunc func(ctx context.Context, actor *store.User, id, newStatus, remarks string) (*store.Appointment, error)
}

func (m *mockService) Create(ctx context.Context, actor *store.User, req CreateAppointmentRequest) (*store.Appointment, error) {
	return m.createFunc(ctx, actor, req)
}

func (m *mockService) Get(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockService) List(ctx context.Context, actor *store.User, filter ListFilter, params pagination.Params, path string) (*PaginatedAppointmentListResponse, error) {
	return m.listFunc(ctx, actor, filter, params, path)
}

func (m *mockService) Update(ctx context.Context, actor *store.User, id string, req UpdateAppointmentRequest) (*store.Appointment, error) {
	return m.updateFunc(ctx, actor, id, req)
}

func (m *mockService) Cancel(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
	return m.cancelFunc(ctx, actor, id)
}

func (m *mockService) Decide(ctx context.Context, actor *store.User, id, newStatus, remarks string) (*store.Appointment, error) {
	return m.decideFunc(ctx, actor, id, newStatus, remarks)
}

type auditEntry struct {
	UserID string
	Action string
}

type mockAudit struct {
	entries []auditEntry
}

func (m *mockAudit) Log(ctx context.Context, userID, action, description, ip, userAgent string) {
	m.entries = append(m.entries, auditEntry{UserID: userID, Action: action})
}

func authedRequest(t *testing.T, method, target string, body interface{}, actor *store.User) *http.Request {
	req := testutil.JSONRequest(t, method, target, body)
	return req.WithContext(auth.ContextWithUser(req.Context(), actor))
}

// TestHandlerCreateAppointment_Success tests successful appointment creation
func TestHandlerCreateAppointment_Success(t *testing.T) {
	service := &mockService{
		createFunc: func(ctx context.Context, actor *store.User, req CreateAppointmentRequest) (*store.Appointment, error) {
			return &store.Appointment{
				ID:             "ap-123",
				UserID:         actor.ID,
				HealthCenterID: req.HealthCenterID,
				ServiceID:      req.ServiceID,
				Date:           req.Date,
				Time:           req.Time,
				Status:         store.StatusPending,
			}, nil
		},
	}
	audit := &mockAudit{}
	handler := NewHandler(service, audit)

	req := authedRequest(t, http.MethodPost, "/appointments", CreateAppointmentRequest{
		HealthCenterID: "hc1",
		ServiceID:      "svc1",
		Date:           "2026-09-15",
		Time:           "10:30",
	}, patient("u1"))
	rec := httptest.NewRecorder()

	handler.CreateAppointment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}
	var response struct {
		Success bool `json:"success"`
	}
	testutil.DecodeBody(t, rec, &response)
	if !response.Success {
		t.Error("Expected success to be true")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "appointment.create" {
		t.Errorf("Expected an appointment.create audit entry, got %v", audit.entries)
	}
}

// TestHandlerCreateAppointment_ValidationError tests a malformed date
func TestHandlerCreateAppointment_ValidationError(t *testing.T) {
	handler := NewHandler(&mockService{}, &mockAudit{})

	req := authedRequest(t, http.MethodPost, "/appointments", CreateAppointmentRequest{
		HealthCenterID: "hc1",
		ServiceID:      "svc1",
		Date:           "15-09-2026",
		Time:           "10:30",
	}, patient("u1"))
	rec := httptest.NewRecorder()

	handler.CreateAppointment(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rec.Code)
	}
	var response struct {
		Errors map[string]string `json:"errors"`
	}
	testutil.DecodeBody(t, rec, &response)
	if _, ok := response.Errors["date"]; !ok {
		t.Errorf("Expected a date validation error, got %v", response.Errors)
	}
}

// TestHandlerCreateAppointment_Unauthenticated tests the missing-user guard
func TestHandlerCreateAppointment_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{}, &mockAudit{})

	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	handler.CreateAppointment(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// TestHandlerGetAppointment_NotFound tests the sentinel-to-status mapping
func TestHandlerGetAppointment_NotFound(t *testing.T) {
	service := &mockService{
		getFunc: func(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
			return nil, ErrAppointmentNotFound
		},
	}
	handler := NewHandler(service, &mockAudit{})

	req := authedRequest(t, http.MethodGet, "/appointments/missing", nil, patient("u1"))
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.GetAppointment(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

// TestHandlerGetAppointment_Forbidden tests the ownership rejection mapping
func TestHandlerGetAppointment_Forbidden(t *testing.T) {
	service := &mockService{
		getFunc: func(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
			return nil, ErrNotOwner
		},
	}
	handler := NewHandler(service, &mockAudit{})

	req := authedRequest(t, http.MethodGet, "/appointments/ap-1", nil, patient("u2"))
	req = mux.SetURLVars(req, map[string]string{"id": "ap-1"})
	rec := httptest.NewRecorder()

	handler.GetAppointment(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

// TestHandlerListAppointments_Filters tests that query filters reach the service
func TestHandlerListAppointments_Filters(t *testing.T) {
	var gotFilter ListFilter
	service := &mockService{
		listFunc: func(ctx context.Context, actor *store.User, filter ListFilter, params pagination.Params, path string) (*PaginatedAppointmentListResponse, error) {
			gotFilter = filter
			return &PaginatedAppointmentListResponse{
				Appointments: []store.Appointment{},
				Pagination:   params.Meta(path, 0),
			}, nil
		},
	}
	handler := NewHandler(service, &mockAudit{})

	req := authedRequest(t, http.MethodGet, "/appointments?status=pending&date=2026-09-15", nil, healthWorker())
	rec := httptest.NewRecorder()

	handler.ListAppointments(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if gotFilter.Status != "pending" || gotFilter.Date != "2026-09-15" {
		t.Errorf("Expected filters from the query string, got %+v", gotFilter)
	}
}

// TestHandlerApproveAppointment_NoBody tests that a missing body means no remarks
func TestHandlerApproveAppointment_NoBody(t *testing.T) {
	var gotStatus, gotRemarks string
	service := &mockService{
		decideFunc: func(ctx context.Context, actor *store.User, id, newStatus, remarks string) (*store.Appointment, error) {
			gotStatus, gotRemarks = newStatus, remarks
			return &store.Appointment{ID: id, Status: newStatus}, nil
		},
	}
	audit := &mockAudit{}
	handler := NewHandler(service, audit)

	req := authedRequest(t, http.MethodPut, "/health-worker/appointments/ap-1/approve", nil, healthWorker())
	req = mux.SetURLVars(req, map[string]string{"id": "ap-1"})
	rec := httptest.NewRecorder()

	handler.ApproveAppointment(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if gotStatus != store.StatusConfirmed {
		t.Errorf("Expected confirmed status, got %q", gotStatus)
	}
	if gotRemarks != "" {
		t.Errorf("Expected empty remarks, got %q", gotRemarks)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "appointment.approve" {
		t.Errorf("Expected an appointment.approve audit entry, got %v", audit.entries)
	}
}

// TestHandlerCancelAppointment_Conflict tests the final-status mapping
func TestHandlerCancelAppointment_Conflict(t *testing.T) {
	service := &mockService{
		cancelFunc: func(ctx context.Context, actor *store.User, id string) (*store.Appointment, error) {
			return nil, ErrAlreadyFinal
		},
	}
	handler := NewHandler(service, &mockAudit{})

	req := authedRequest(t, http.MethodPut, "/appointments/ap-1/cancel", nil, patient("u1"))
	req = mux.SetURLVars(req, map[string]string{"id": "ap-1"})
	rec := httptest.NewRecorder()

	handler.CancelAppointment(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}
