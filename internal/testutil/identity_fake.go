package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/identity"
)

type fakeAccount struct {
	Email       string
	Password    string
	DisplayName string
	Disabled    bool
}

// FakeGateway is an in-memory identity provider for tests. It stores
// accounts in a map and never makes network calls. Tokens are opaque
// strings registered up front with RegisterToken.
type FakeGateway struct {
	mu       sync.RWMutex
	accounts map[string]*fakeAccount          // uid -> account
	tokens   map[string]*identity.TokenClaims // raw token -> claims
	pushed   []PushRecord
}

// PushRecord captures one SendPush call.
type PushRecord struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		accounts: make(map[string]*fakeAccount),
		tokens:   make(map[string]*identity.TokenClaims),
	}
}

// RegisterToken makes VerifyIDToken accept raw and return the claims.
func (g *FakeGateway) RegisterToken(raw string, claims *identity.TokenClaims) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens[raw] = claims
}

// Pushed returns the SendPush calls seen so far.
func (g *FakeGateway) Pushed() []PushRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]PushRecord, len(g.pushed))
	copy(out, g.pushed)
	return out
}

func (g *FakeGateway) CreateUser(ctx context.Context, email, password, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, acc := range g.accounts {
		if acc.Email == email {
			return "", identity.ErrEmailExists
		}
	}
	uid := uuid.New().String()
	g.accounts[uid] = &fakeAccount{Email: email, Password: password, DisplayName: name}
	return uid, nil
}

func (g *FakeGateway) VerifyIDToken(tokenString string) (*identity.TokenClaims, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	claims, ok := g.tokens[tokenString]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return claims, nil
}

func (g *FakeGateway) VerifyPassword(ctx context.Context, email, password string) (*identity.SignInResult, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for uid, acc := range g.accounts {
		if acc.Email == email {
			if acc.Password != password || acc.Disabled {
				return nil, identity.ErrInvalidCredentials
			}
			return &identity.SignInResult{UID: uid, IDToken: "idtoken-" + uid, Email: email}, nil
		}
	}
	return nil, identity.ErrInvalidCredentials
}

func (g *FakeGateway) RevokeTokens(ctx context.Context, uid string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.accounts[uid]; !ok {
		return identity.ErrUserNotFound
	}
	return nil
}

func (g *FakeGateway) DeleteUser(ctx context.Context, uid string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.accounts[uid]; !ok {
		return identity.ErrUserNotFound
	}
	delete(g.accounts, uid)
	return nil
}

func (g *FakeGateway) UpdateUser(ctx context.Context, uid string, props identity.UserUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	if props.Email != nil {
		acc.Email = *props.Email
	}
	if props.Password != nil {
		acc.Password = *props.Password
	}
	if props.DisplayName != nil {
		acc.DisplayName = *props.DisplayName
	}
	if props.Disabled != nil {
		acc.Disabled = *props.Disabled
	}
	return nil
}

func (g *FakeGateway) UserHasPassword(ctx context.Context, uid string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	acc, ok := g.accounts[uid]
	if !ok {
		return false, identity.ErrUserNotFound
	}
	return acc.Password != "", nil
}

func (g *FakeGateway) SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) identity.PushOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pushed = append(g.pushed, PushRecord{Tokens: tokens, Title: title, Body: body, Data: data})
	return identity.PushOutcome{Delivered: len(tokens)}
}

var _ identity.Gateway = (*FakeGateway)(nil)
