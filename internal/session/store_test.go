package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/kvstore"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateAuth blocks Verify until release is closed, so tests can observe the
// loading state and poke at the store mid-flight.
type gateAuth struct {
	release chan struct{}
	result  Result
	err     error
}

func (g *gateAuth) Verify(ctx context.Context, _, _ string) (Result, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return g.result, g.err
}

func newSeededAuth(t *testing.T) *StubAuthenticator {
	t.Helper()
	auth := NewStubAuthenticator()
	require.NoError(t, auth.Seed("Demo User", "user@example.com", "password"))
	return auth
}

func newTestStore(t *testing.T, kv kvstore.Adapter, auth Authenticator) *Store {
	t.Helper()
	return NewStore(context.Background(), kv, auth, []byte("test-session-secret"), slog.Default())
}

func TestStore_Login_Succeeds(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, kvstore.NewMemory(), newSeededAuth(t))

	sess, err := s.Login(context.Background(), "user@example.com", "password")
	require.NoError(t, err)

	assert.True(t, sess.Authenticated)
	assert.Equal(t, StatusIdle, sess.Status)
	require.NotNil(t, sess.User)
	assert.Equal(t, "user@example.com", sess.User.Email)
	assert.Equal(t, "Demo User", sess.User.Name)
	assert.NotEmpty(t, sess.User.ID)
}

func TestStore_Login_WrongPasswordSetsErrorStatus(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, kvstore.NewMemory(), newSeededAuth(t))

	sess, err := s.Login(context.Background(), "user@example.com", "wrong")

	// Credential mismatch is rendered from the snapshot, not returned.
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
	assert.Nil(t, sess.User)
	assert.Equal(t, StatusError, sess.Status)
	assert.Equal(t, "Invalid credentials", sess.LastError)
}

func TestStore_Login_PassesThroughLoadingState(t *testing.T) {
	t.Parallel()

	auth := &gateAuth{
		release: make(chan struct{}),
		result:  Result{OK: true, User: User{ID: "1", Name: "Demo User", Email: "user@example.com"}},
	}
	s := newTestStore(t, kvstore.NewMemory(), auth)

	var statuses []Status
	s.Subscribe(func(sess Session) { statuses = append(statuses, sess.Status) })

	done := make(chan Session, 1)
	go func() {
		sess, _ := s.Login(context.Background(), "user@example.com", "password")
		done <- sess
	}()

	require.Eventually(t, func() bool {
		return s.Snapshot().Status == StatusLoading
	}, time.Second, 5*time.Millisecond)

	close(auth.release)
	sess := <-done

	assert.True(t, sess.Authenticated)
	assert.Equal(t, []Status{StatusLoading, StatusIdle}, statuses)
}

func TestStore_Login_SecondCallWhileLoadingIsRejected(t *testing.T) {
	t.Parallel()

	auth := &gateAuth{
		release: make(chan struct{}),
		result:  Result{OK: true, User: User{ID: "1", Name: "Demo User", Email: "user@example.com"}},
	}
	s := newTestStore(t, kvstore.NewMemory(), auth)

	done := make(chan Session, 1)
	go func() {
		sess, _ := s.Login(context.Background(), "user@example.com", "password")
		done <- sess
	}()

	require.Eventually(t, func() bool {
		return s.Snapshot().Status == StatusLoading
	}, time.Second, 5*time.Millisecond)

	_, err := s.Login(context.Background(), "user@example.com", "password")
	assert.ErrorIs(t, err, ErrSessionBusy)

	_, err = s.Register(context.Background(), "Other", "other@example.com", "secret")
	assert.ErrorIs(t, err, ErrSessionBusy)

	// The pending attempt still resolves on its own terms.
	close(auth.release)
	sess := <-done
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "user@example.com", sess.User.Email)
}

func TestStore_Login_AuthenticatorErrorSetsErrorStatus(t *testing.T) {
	t.Parallel()

	auth := &gateAuth{release: make(chan struct{}), err: context.DeadlineExceeded}
	close(auth.release)
	s := newTestStore(t, kvstore.NewMemory(), auth)

	sess, err := s.Login(context.Background(), "user@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, StatusError, sess.Status)
	assert.NotEmpty(t, sess.LastError)
	assert.False(t, sess.Authenticated)
}

func TestStore_ClearError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, kvstore.NewMemory(), newSeededAuth(t))

	sess, err := s.Login(context.Background(), "user@example.com", "wrong")
	require.NoError(t, err)
	require.Equal(t, StatusError, sess.Status)

	sess = s.ClearError()
	assert.Equal(t, StatusIdle, sess.Status)
	assert.Empty(t, sess.LastError)
}

func TestStore_Register(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, kvstore.NewMemory(), newSeededAuth(t))

	sess, err := s.Register(context.Background(), "New User", "new@example.com", "secret")
	require.NoError(t, err)

	assert.True(t, sess.Authenticated)
	require.NotNil(t, sess.User)
	assert.Equal(t, "new@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.User.ID)
}

func TestStore_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, userName, email, password string
	}{
		{name: "empty name", userName: "", email: "a@b.c", password: "x"},
		{name: "empty email", userName: "A", email: "", password: "x"},
		{name: "empty password", userName: "A", email: "a@b.c", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStore(t, kvstore.NewMemory(), newSeededAuth(t))
			sess, err := s.Register(context.Background(), tt.userName, tt.email, tt.password)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.False(t, sess.Authenticated)
			assert.Equal(t, StatusIdle, sess.Status)
		})
	}
}

func TestStore_IdentityPersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	s1 := newTestStore(t, kv, newSeededAuth(t))

	sess, err := s1.Login(context.Background(), "user@example.com", "password")
	require.NoError(t, err)
	require.True(t, sess.Authenticated)

	s2 := newTestStore(t, kv, newSeededAuth(t))
	restored := s2.Snapshot()

	assert.True(t, restored.Authenticated)
	require.NotNil(t, restored.User)
	assert.Equal(t, sess.User.ID, restored.User.ID)
	assert.Equal(t, "user@example.com", restored.User.Email)
}

func TestStore_Logout_ClearsPersistedIdentity(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	s := newTestStore(t, kv, newSeededAuth(t))

	_, err := s.Login(context.Background(), "user@example.com", "password")
	require.NoError(t, err)

	sess, err := s.Logout(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
	assert.Nil(t, sess.User)
	assert.Equal(t, StatusIdle, sess.Status)

	restored := newTestStore(t, kv, newSeededAuth(t)).Snapshot()
	assert.False(t, restored.Authenticated)
}

func TestStore_TamperedPersistedTokenStartsUnauthenticated(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	ctx := context.Background()

	// Sign with a different secret to simulate tampering.
	token, err := tokens.NewIdentityToken("1", "Mallory", "m@example.com", []byte("other-secret"))
	require.NoError(t, err)
	require.NoError(t, kv.Write(ctx, "session", token))

	sess := newTestStore(t, kv, newSeededAuth(t)).Snapshot()
	assert.False(t, sess.Authenticated)
	assert.Nil(t, sess.User)
	assert.Equal(t, StatusIdle, sess.Status)
}

func TestStore_MalformedPersistedSessionStartsUnauthenticated(t *testing.T) {
	t.Parallel()

	kv := kvstore.NewMemory()
	require.NoError(t, kv.Write(context.Background(), "session", "not-a-token"))

	sess := newTestStore(t, kv, newSeededAuth(t)).Snapshot()
	assert.False(t, sess.Authenticated)
	assert.Equal(t, StatusIdle, sess.Status)
}
