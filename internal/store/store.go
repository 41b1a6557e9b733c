package store

import (
	"context"
	"errors"
	"time"
)

// Collection names in the document store. Records are flat documents with
// no enforced schema; legacy field names are tolerated at read time.
const (
	CollectionUsers          = "users"
	CollectionHealthCenters  = "health_centers"
	CollectionServices       = "services"
	CollectionAppointments   = "appointments"
	CollectionNotifications  = "notifications"
	CollectionDeviceTokens   = "device_tokens"
	CollectionLogs           = "logs"
	CollectionPasswordResets = "password_resets"
)

// TimestampFormat is the fixed serialized date-time format stamped on
// created_at/updated_at fields.
const TimestampFormat = "2006-01-02 15:04:05"

var (
	ErrNotFound = errors.New("document not found")
)

// Condition is a single equality/comparison filter. Conditions passed to
// QueryCollection are combined as a conjunction.
type Condition struct {
	Field string
	Op    string // "==", "!=", "<", "<=", ">", ">="
	Value interface{}
}

// Store is the generic document-store contract. The firestore-backed
// Client implements it; tests substitute an in-memory fake.
type Store interface {
	// Create writes a new document and returns its id. When id is empty a
	// new one is generated. created_at and updated_at are stamped.
	Create(ctx context.Context, collection string, data map[string]interface{}, id string) (string, error)

	// Get returns the document data, or nil with no error when absent.
	Get(ctx context.Context, collection, id string) (map[string]interface{}, error)

	// Update merges partial into an existing document and stamps
	// updated_at. Returns false on failure (logged, not raised).
	Update(ctx context.Context, collection, id string, partial map[string]interface{}) bool

	// Delete removes a document. Returns false on failure.
	Delete(ctx context.Context, collection, id string) bool

	// FindByField returns the first document whose field equals value, or
	// nil when there is none. Ordering among duplicates is undefined.
	FindByField(ctx context.Context, collection, field string, value interface{}) (map[string]interface{}, error)

	// QueryCollection returns all documents matching every condition.
	// Query failures are caught internally and yield an empty result.
	QueryCollection(ctx context.Context, collection string, conditions []Condition) []map[string]interface{}

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) int
}

// Now returns the current time serialized in the store's timestamp format.
func Now() string {
	return time.Now().Format(TimestampFormat)
}
