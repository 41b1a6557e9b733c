package admin

import (
	"context"
	"sort"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

const recentActivityLimit = 10

type Service struct {
	records *store.Records
}

func NewService(records *store.Records) *Service {
	return &Service{records: records}
}

// Stats aggregates collection counts, the appointment status breakdown and
// the most recent activity. Everything is derived on demand; nothing is
// persisted.
func (s *Service) Stats(ctx context.Context) (*store.AdminStats, error) {
	stats := &store.AdminStats{
		Users:         s.records.S.Count(ctx, store.CollectionUsers),
		HealthCenters: s.records.S.Count(ctx, store.CollectionHealthCenters),
		Services:      s.records.S.Count(ctx, store.CollectionServices),
		Appointments:  s.records.S.Count(ctx, store.CollectionAppointments),
		Notifications: s.records.S.Count(ctx, store.CollectionNotifications),
		AppointmentsByStatus: map[string]int{
			store.StatusPending:   0,
			store.StatusConfirmed: 0,
			store.StatusCancelled: 0,
			store.StatusCompleted: 0,
		},
	}

	for _, appt := range s.records.ListAppointments(ctx, nil) {
		stats.AppointmentsByStatus[appt.Status]++
	}

	recent := s.records.ListActivityLogs(ctx, nil)
	sortLogsNewestFirst(recent)
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	stats.RecentActivity = recent

	return stats, nil
}

// PaginatedLogListResponse represents a paginated activity log listing
type PaginatedLogListResponse struct {
	Logs       []store.ActivityLog `json:"logs"`
	Pagination pagination.Meta     `json:"pagination"`
}

// Logs returns a page of the activity log, newest first, optionally
// filtered to one user.
func (s *Service) Logs(ctx context.Context, userID string, params pagination.Params, path string) (*PaginatedLogListResponse, error) {
	params.Validate()

	var conditions []store.Condition
	if userID != "" {
		conditions = append(conditions, store.Condition{Field: "user_id", Op: "==", Value: userID})
	}

	all := s.records.ListActivityLogs(ctx, conditions)
	sortLogsNewestFirst(all)
	start, end := params.Slice(len(all))

	return &PaginatedLogListResponse{
		Logs:       all[start:end],
		Pagination: params.Meta(path, len(all)),
	}, nil
}

// sortLogsNewestFirst orders by created_at descending. The timestamp
// format sorts lexicographically.
func sortLogsNewestFirst(logs []store.ActivityLog) {
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt > logs[j].CreatedAt
	})
}
