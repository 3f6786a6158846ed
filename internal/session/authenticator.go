package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/google/uuid"
)

// Result carries the outcome of a credential check. A mismatch is OK=false
// with a user-facing Reason, not an error; errors are reserved for transport
// failures of a real backend.
type Result struct {
	OK     bool
	User   User
	Reason string
}

// Authenticator is the credential-check boundary. The store treats it as
// opaque so a real backend can replace the stub without touching the state
// machine.
type Authenticator interface {
	Verify(ctx context.Context, email, password string) (Result, error)
}

// StubAuthenticator checks credentials against an in-memory account table
// with bcrypt hashes. It stands in for the missing backend.
type StubAuthenticator struct {
	mu       sync.RWMutex
	accounts map[string]account
}

type account struct {
	user         User
	passwordHash string
}

func NewStubAuthenticator() *StubAuthenticator {
	return &StubAuthenticator{accounts: make(map[string]account)}
}

// Seed registers an account the stub will accept.
func (a *StubAuthenticator) Seed(name, email, password string) error {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[email] = account{
		user:         User{ID: uuid.NewString(), Name: name, Email: email},
		passwordHash: pwHash,
	}
	return nil
}

func (a *StubAuthenticator) Verify(ctx context.Context, email, password string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	a.mu.RLock()
	acc, ok := a.accounts[email]
	a.mu.RUnlock()

	if !ok || !hash.CheckPassword(acc.passwordHash, password) {
		return Result{OK: false, Reason: "Invalid credentials"}, nil
	}
	return Result{OK: true, User: acc.user}, nil
}
