package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/store"
)

// FakeStore is an in-memory document store for tests. It mirrors the
// adapter's behavior: documents are flat maps, created_at/updated_at are
// stamped, reads of absent documents return nil without error.
type FakeStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}

	// FailWrites makes Create/Update/Delete report failure, for testing
	// the error paths.
	FailWrites bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{collections: make(map[string]map[string]map[string]interface{})}
}

func (f *FakeStore) coll(name string) map[string]map[string]interface{} {
	c, ok := f.collections[name]
	if !ok {
		c = make(map[string]map[string]interface{})
		f.collections[name] = c
	}
	return c
}

func clone(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (f *FakeStore) Create(ctx context.Context, collection string, data map[string]interface{}, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWrites {
		return "", fmt.Errorf("write failure injected")
	}
	if id == "" {
		id = uuid.New().String()
	}

	doc := clone(data)
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = store.Now()
	}
	if _, ok := doc["updated_at"]; !ok {
		doc["updated_at"] = store.Now()
	}
	f.coll(collection)[id] = doc
	return id, nil
}

func (f *FakeStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	doc, ok := f.coll(collection)[id]
	if !ok {
		return nil, nil
	}
	out := clone(doc)
	out["id"] = id
	return out, nil
}

func (f *FakeStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWrites {
		return false
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		return false
	}
	for k, v := range partial {
		doc[k] = v
	}
	doc["updated_at"] = store.Now()
	return true
}

func (f *FakeStore) Delete(ctx context.Context, collection, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWrites {
		return false
	}
	if _, ok := f.coll(collection)[id]; !ok {
		return false
	}
	delete(f.coll(collection), id)
	return true
}

func (f *FakeStore) FindByField(ctx context.Context, collection, field string, value interface{}) (map[string]interface{}, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	// Deterministic iteration keeps tests stable even though duplicate
	// ordering is undefined in the real adapter.
	ids := make([]string, 0, len(f.coll(collection)))
	for id := range f.coll(collection) {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		doc := f.coll(collection)[id]
		if doc[field] == value {
			out := clone(doc)
			out["id"] = id
			return out, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) QueryCollection(ctx context.Context, collection string, conditions []store.Condition) []map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := make([]string, 0, len(f.coll(collection)))
	for id := range f.coll(collection) {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []map[string]interface{}
	for _, id := range ids {
		doc := f.coll(collection)[id]
		if matches(doc, conditions) {
			out := clone(doc)
			out["id"] = id
			results = append(results, out)
		}
	}
	return results
}

func (f *FakeStore) Count(ctx context.Context, collection string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.coll(collection))
}

func matches(doc map[string]interface{}, conditions []store.Condition) bool {
	for _, c := range conditions {
		got := doc[c.Field]
		switch c.Op {
		case "", "==":
			if got != c.Value {
				return false
			}
		case "!=":
			if got == c.Value {
				return false
			}
		case "<", "<=", ">", ">=":
			gs, ok1 := got.(string)
			ws, ok2 := c.Value.(string)
			if !ok1 || !ok2 {
				return false
			}
			switch c.Op {
			case "<":
				if !(gs < ws) {
					return false
				}
			case "<=":
				if !(gs <= ws) {
					return false
				}
			case ">":
				if !(gs > ws) {
					return false
				}
			case ">=":
				if !(gs >= ws) {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

var _ store.Store = (*FakeStore)(nil)
