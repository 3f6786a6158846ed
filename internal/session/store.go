package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Skotchmaster/storefront/internal/kvstore"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/google/uuid"
)

var (
	// ErrSessionBusy rejects a login or register call while another auth
	// attempt is still in flight. The pending attempt is unaffected.
	ErrSessionBusy = errors.New("auth attempt already in flight")

	// ErrValidation rejects a register call with empty fields.
	ErrValidation = errors.New("validation")

	// ErrPersistence reports a failed identity write-through. The in-memory
	// session change is kept.
	ErrPersistence = errors.New("session persistence write failed")
)

const sessionKey = "session"

type Observer func(Session)

type Store struct {
	mu        sync.Mutex
	session   Session
	inFlight  bool
	kv        kvstore.Adapter
	auth      Authenticator
	secret    []byte
	log       *slog.Logger
	observers []Observer
}

// NewStore hydrates from the persisted identity token. A missing, expired or
// tampered token starts the session unauthenticated; hydration never fails.
func NewStore(ctx context.Context, kv kvstore.Adapter, auth Authenticator, secret []byte, log *slog.Logger) *Store {
	s := &Store{
		session: Session{Status: StatusIdle},
		kv:      kv,
		auth:    auth,
		secret:  secret,
		log:     log,
	}

	raw, err := kv.Read(ctx, sessionKey)
	if err != nil || raw == "" {
		if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			log.Warn("session_hydrate_failed", "error", err)
		}
		return s
	}

	claims, err := tokens.IdentityFromToken(raw, secret)
	if err != nil {
		log.Warn("discarding malformed persisted session", "error", err)
		return s
	}

	s.session = Session{
		User:          &User{ID: claims.Subject, Name: claims.Name, Email: claims.Email},
		Authenticated: true,
		Status:        StatusIdle,
	}
	return s
}

// Login drives idle/error -> loading -> authenticated|error. The credential
// check runs outside the lock; only one attempt may be in flight at a time
// and a concurrent call is rejected with ErrSessionBusy.
//
// A credential mismatch is not returned as an error: it lands in the
// snapshot's Status/LastError so the caller can render it.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	if err := s.begin(); err != nil {
		return s.Snapshot(), err
	}

	res, err := s.auth.Verify(ctx, email, password)

	s.mu.Lock()
	s.inFlight = false

	var persistErr error
	switch {
	case err != nil:
		s.log.Error("login_error", "error", err)
		s.session = Session{Status: StatusError, LastError: err.Error()}
	case !res.OK:
		s.log.Warn("login_failed", "email", email, "reason", res.Reason)
		s.session = Session{Status: StatusError, LastError: res.Reason}
	default:
		user := res.User
		s.session = Session{User: &user, Authenticated: true, Status: StatusIdle}
		persistErr = s.persistLocked(ctx)
	}

	return s.finish(persistErr)
}

// Register always succeeds once all fields are present; there is no
// duplicate-account check. The new identity gets a fresh id.
func (s *Store) Register(ctx context.Context, name, email, password string) (Session, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return s.Snapshot(), fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}

	if err := s.begin(); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.inFlight = false
	s.session = Session{
		User:          &User{ID: uuid.NewString(), Name: name, Email: email},
		Authenticated: true,
		Status:        StatusIdle,
	}
	persistErr := s.persistLocked(ctx)

	return s.finish(persistErr)
}

// Logout clears the identity and the persisted copy.
func (s *Store) Logout(ctx context.Context) (Session, error) {
	s.mu.Lock()
	s.session = Session{Status: StatusIdle}

	var persistErr error
	if err := s.kv.Write(ctx, sessionKey, ""); err != nil {
		s.log.Error("session_persist_failed", "error", err)
		persistErr = fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return s.finish(persistErr)
}

// ClearError dismisses an error banner without starting a new attempt.
func (s *Store) ClearError() Session {
	s.mu.Lock()
	if s.session.Status == StatusError {
		s.session.Status = StatusIdle
		s.session.LastError = ""
	}
	snap, _ := s.finish(nil)
	return snap
}

func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.session)
}

// Subscribe registers an observer called synchronously with each new
// snapshot, including the intermediate loading state.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// begin claims the single in-flight slot and publishes the loading state.
func (s *Store) begin() error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	s.inFlight = true
	s.session.Status = StatusLoading
	s.session.LastError = ""
	_, _ = s.finish(nil)
	return nil
}

// finish copies the snapshot and observer list, unlocks, then notifies.
// Callers must hold the lock.
func (s *Store) finish(err error) (Session, error) {
	snap := snapshotOf(s.session)
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshotOf(snap))
	}
	return snap, err
}

func (s *Store) persistLocked(ctx context.Context) error {
	u := s.session.User
	token, err := tokens.NewIdentityToken(u.ID, u.Name, u.Email, s.secret)
	if err == nil {
		err = s.kv.Write(ctx, sessionKey, token)
	}
	if err != nil {
		s.log.Error("session_persist_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func snapshotOf(sess Session) Session {
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	return sess
}
