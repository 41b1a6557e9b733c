package notifications

import (
	"context"
	"testing"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/testutil"
)

func notifFixture(t *testing.T) (*Service, *testutil.FakeStore, *testutil.FakeGateway) {
	t.Helper()
	fs := testutil.NewFakeStore()
	gw := testutil.NewFakeGateway()
	return NewService(store.NewRecords(fs), gw, nil, nil), fs, gw
}

func seedUser(t *testing.T, fs *testutil.FakeStore, id, email string, active bool) {
	t.Helper()
	user := &store.User{ID: id, Name: "User " + id, Email: email, Role: store.RolePatient, IsActive: active}
	if _, err := fs.Create(context.Background(), store.CollectionUsers, user.ToMap(), id); err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}

// Test that Notify stores the notification and pushes to registered devices.
func TestNotifyPushesToDevices(t *testing.T) {
	svc, _, gw := notifFixture(t)
	ctx := context.Background()

	if _, err := svc.RegisterDeviceToken(ctx, "u1", RegisterDeviceTokenRequest{Token: "tok-a", Platform: "android"}); err != nil {
		t.Fatalf("RegisterDeviceToken failed: %v", err)
	}
	if _, err := svc.RegisterDeviceToken(ctx, "u1", RegisterDeviceTokenRequest{Token: "tok-b", Platform: "web"}); err != nil {
		t.Fatalf("RegisterDeviceToken failed: %v", err)
	}

	notif, err := svc.Notify(ctx, "u1", "Reminder", "Your appointment is tomorrow", "")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if notif.Type != store.NotificationGeneral {
		t.Errorf("Expected default type general, got %q", notif.Type)
	}
	if notif.IsRead {
		t.Error("Expected new notification to be unread")
	}

	pushed := gw.Pushed()
	if len(pushed) != 1 {
		t.Fatalf("Expected 1 push batch, got %d", len(pushed))
	}
	if len(pushed[0].Tokens) != 2 {
		t.Errorf("Expected push to 2 device tokens, got %v", pushed[0].Tokens)
	}
	if pushed[0].Title != "Reminder" {
		t.Errorf("Expected push title Reminder, got %q", pushed[0].Title)
	}
}

// Test that Notify without device tokens still stores the notification.
func TestNotifyWithoutDevices(t *testing.T) {
	svc, fs, gw := notifFixture(t)
	ctx := context.Background()

	if _, err := svc.Notify(ctx, "u1", "Hello", "No devices here", store.NotificationAppointment); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if n := fs.Count(ctx, store.CollectionNotifications); n != 1 {
		t.Errorf("Expected 1 stored notification, got %d", n)
	}
	if len(gw.Pushed()) != 0 {
		t.Errorf("Expected no push attempts, got %d", len(gw.Pushed()))
	}
}

// Test that the unread filter hides notifications already read.
func TestListForUserUnreadFilter(t *testing.T) {
	svc, _, _ := notifFixture(t)
	ctx := context.Background()

	first, err := svc.Notify(ctx, "u1", "One", "first", "")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if _, err := svc.Notify(ctx, "u1", "Two", "second", ""); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if _, err := svc.Notify(ctx, "u2", "Other", "not yours", ""); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if _, err := svc.MarkRead(ctx, "u1", first.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	params := pagination.Params{Page: 1, PerPage: 15}
	all, err := svc.ListForUser(ctx, "u1", false, params, "/notifications")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(all.Notifications) != 2 {
		t.Errorf("Expected 2 notifications for u1, got %d", len(all.Notifications))
	}

	unread, err := svc.ListForUser(ctx, "u1", true, params, "/notifications")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(unread.Notifications) != 1 || unread.Notifications[0].Title != "Two" {
		t.Errorf("Expected only the unread notification, got %+v", unread.Notifications)
	}
}

// Test that MarkRead rejects a notification owned by someone else.
func TestMarkReadOwnership(t *testing.T) {
	svc, _, _ := notifFixture(t)
	ctx := context.Background()

	notif, err := svc.Notify(ctx, "u1", "One", "first", "")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if _, err := svc.MarkRead(ctx, "u2", notif.ID); err != ErrNotOwner {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.MarkRead(ctx, "u1", "missing"); err != ErrNotificationNotFound {
		t.Errorf("Expected ErrNotificationNotFound, got %v", err)
	}

	read, err := svc.MarkRead(ctx, "u1", notif.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !read.IsRead {
		t.Error("Expected notification to be marked read")
	}
}

// Test that MarkAllRead returns how many notifications it flipped.
func TestMarkAllRead(t *testing.T) {
	svc, _, _ := notifFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Notify(ctx, "u1", "Title", "body", ""); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}
	if _, err := svc.Notify(ctx, "u2", "Title", "body", ""); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	count, err := svc.MarkAllRead(ctx, "u1")
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 notifications marked, got %d", count)
	}

	count, err = svc.MarkAllRead(ctx, "u1")
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no unread notifications left, got %d", count)
	}
}

// Test that a broadcast without a target reaches every active user.
func TestBroadcastToActiveUsers(t *testing.T) {
	svc, fs, _ := notifFixture(t)
	ctx := context.Background()

	seedUser(t, fs, "u1", "u1@example.com", true)
	seedUser(t, fs, "u2", "u2@example.com", true)
	seedUser(t, fs, "u3", "u3@example.com", false)

	sent, err := svc.Broadcast(ctx, BroadcastRequest{Title: "Maintenance", Message: "Saturday downtime"})
	if err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if sent != 2 {
		t.Errorf("Expected broadcast to 2 active users, got %d", sent)
	}
	if n := fs.Count(ctx, store.CollectionNotifications); n != 2 {
		t.Errorf("Expected 2 stored notifications, got %d", n)
	}
}

// Test that a targeted broadcast reaches only the named user.
func TestBroadcastToSingleUser(t *testing.T) {
	svc, fs, _ := notifFixture(t)
	ctx := context.Background()

	seedUser(t, fs, "u1", "u1@example.com", true)
	seedUser(t, fs, "u2", "u2@example.com", true)

	sent, err := svc.Broadcast(ctx, BroadcastRequest{UserID: "u2", Title: "Hi", Message: "just you"})
	if err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if sent != 1 {
		t.Errorf("Expected 1 notification, got %d", sent)
	}

	params := pagination.Params{Page: 1, PerPage: 15}
	page, err := svc.ListForUser(ctx, "u2", false, params, "/notifications")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(page.Notifications) != 1 {
		t.Errorf("Expected u2 to have 1 notification, got %d", len(page.Notifications))
	}
}

// Test that re-registering a known token reassigns it to the caller.
func TestRegisterDeviceTokenUpsert(t *testing.T) {
	svc, fs, _ := notifFixture(t)
	ctx := context.Background()

	first, err := svc.RegisterDeviceToken(ctx, "u1", RegisterDeviceTokenRequest{Token: "tok-a", Platform: "android", DeviceName: "Pixel"})
	if err != nil {
		t.Fatalf("RegisterDeviceToken failed: %v", err)
	}

	second, err := svc.RegisterDeviceToken(ctx, "u2", RegisterDeviceTokenRequest{Token: "tok-a", Platform: "ios", DeviceName: "iPhone"})
	if err != nil {
		t.Fatalf("RegisterDeviceToken failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected the same token record, got %s and %s", first.ID, second.ID)
	}
	if second.UserID != "u2" || second.Platform != "ios" {
		t.Errorf("Expected token reassigned to u2 on ios, got %+v", second)
	}
	if n := fs.Count(ctx, store.CollectionDeviceTokens); n != 1 {
		t.Errorf("Expected a single token record, got %d", n)
	}

	mine, err := svc.ListDeviceTokens(ctx, "u1")
	if err != nil {
		t.Fatalf("ListDeviceTokens failed: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("Expected u1 to have no tokens left, got %+v", mine)
	}
}

// Test that deleting a device token enforces ownership.
func TestDeleteDeviceToken(t *testing.T) {
	svc, _, _ := notifFixture(t)
	ctx := context.Background()

	token, err := svc.RegisterDeviceToken(ctx, "u1", RegisterDeviceTokenRequest{Token: "tok-a", Platform: "android"})
	if err != nil {
		t.Fatalf("RegisterDeviceToken failed: %v", err)
	}

	if err := svc.DeleteDeviceToken(ctx, "u2", token.ID); err != ErrNotOwner {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
	if err := svc.DeleteDeviceToken(ctx, "u1", "missing"); err != ErrDeviceTokenNotFound {
		t.Errorf("Expected ErrDeviceTokenNotFound, got %v", err)
	}
	if err := svc.DeleteDeviceToken(ctx, "u1", token.ID); err != nil {
		t.Errorf("Expected owner delete to succeed, got %v", err)
	}
}
