package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/session"
)

// FakeSessions is an in-memory console session store.
type FakeSessions struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

func NewFakeSessions() *FakeSessions {
	return &FakeSessions{sessions: make(map[string]session.Session)}
}

func (f *FakeSessions) Create(ctx context.Context, sess session.Session) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New().String()
	f.sessions[id] = sess
	return id, nil
}

func (f *FakeSessions) Get(ctx context.Context, id string) (*session.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	out := sess
	return &out, nil
}

func (f *FakeSessions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

var _ session.Getter = (*FakeSessions)(nil)
