package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/jobfilter"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore(time.Hour)
	return NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestManager_GetCreatesUnsavedSession(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	first, err := m.Get(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Authenticated())
	assert.Equal(t, 0, store.Len())

	second, err := m.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, "unknown", second.ID)
}

func TestManager_LoginPersistsTokenAndUser(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	var changes []Change
	m.Subscribe(func(ctx context.Context, c Change) { changes = append(changes, c) })

	sess, err := m.Get(ctx, "")
	require.NoError(t, err)
	sess.Registration = &workflow.Registration{Step: workflow.RegistrationAuthenticated}

	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 4, Email: "maya@example.com"}))

	loaded, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "tok", loaded.Token)
	assert.Equal(t, "maya@example.com", loaded.User.Email)
	assert.Nil(t, loaded.Registration)
	assert.True(t, loaded.Authenticated())

	require.Len(t, changes, 1)
	assert.Equal(t, Change{Kind: LoggedIn, SessionID: sess.ID, User: domain.User{ID: 4, Email: "maya@example.com"}}, changes[0])
}

func TestManager_LoginRequiresToken(t *testing.T) {
	m, store := newTestManager()
	sess, _ := m.Get(context.Background(), "")

	assert.Error(t, m.Login(context.Background(), sess, "", domain.User{ID: 1}))
	assert.Equal(t, 0, store.Len())
}

func TestManager_LogoutClearsEverything(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	sess, _ := m.Get(ctx, "")
	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 4}))
	require.NoError(t, m.MarkApplied(ctx, sess, 7))
	require.NoError(t, m.Modify(ctx, sess, func(s *Session) error {
		s.PasswordReset = workflow.NewPasswordReset()
		return nil
	}))

	var kinds []ChangeKind
	m.Subscribe(func(ctx context.Context, c Change) { kinds = append(kinds, c.Kind) })

	require.NoError(t, m.Logout(ctx, sess))

	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.Token)
	assert.Nil(t, sess.User)
	assert.Empty(t, sess.AppliedJobs)
	assert.Nil(t, sess.PasswordReset)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []ChangeKind{LoggedOut}, kinds)

	// anonymous logout is silent
	require.NoError(t, m.Logout(ctx, sess))
	assert.Len(t, kinds, 1)
}

func TestManager_MarkAppliedIsIdempotent(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	sess, _ := m.Get(ctx, "")
	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 4}))
	require.NoError(t, m.MarkApplied(ctx, sess, 7))
	require.NoError(t, m.MarkApplied(ctx, sess, 7))
	require.NoError(t, m.MarkApplied(ctx, sess, 9))

	loaded, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 9}, loaded.AppliedJobs)
	assert.True(t, loaded.HasApplied(7))
	assert.False(t, loaded.HasApplied(8))
}

func TestManager_UpdateUser(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	sess, _ := m.Get(ctx, "")
	err := m.UpdateUser(ctx, sess, domain.User{ID: 1})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 1, FirstName: "Old"}))

	var got Change
	m.Subscribe(func(ctx context.Context, c Change) { got = c })
	require.NoError(t, m.UpdateUser(ctx, sess, domain.User{ID: 1, FirstName: "New"}))

	assert.Equal(t, ProfileUpdated, got.Kind)
	assert.Equal(t, "New", got.User.FirstName)
	assert.Equal(t, "New", sess.User.FirstName)
}

func TestManager_Unsubscribe(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	calls := 0
	unsubscribe := m.Subscribe(func(ctx context.Context, c Change) { calls++ })

	sess, _ := m.Get(ctx, "")
	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 1}))
	unsubscribe()
	require.NoError(t, m.Logout(ctx, sess))

	assert.Equal(t, 1, calls)
}

type failingStore struct {
	MemoryStore
	err error
}

func (f *failingStore) Load(ctx context.Context, id string) (*Session, error) { return nil, f.err }
func (f *failingStore) Create(ctx context.Context, sess *Session) error       { return f.err }
func (f *failingStore) Modify(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	return nil, f.err
}

func TestManager_StoreFailures(t *testing.T) {
	storeErr := errors.New("connection refused")
	m := NewManager(&failingStore{err: storeErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, storeErr)

	notified := false
	m.Subscribe(func(ctx context.Context, c Change) { notified = true })
	err = m.Login(context.Background(), &Session{ID: "abc"}, "tok", domain.User{ID: 1})
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, notified)
}

func TestManager_ModifyMergesConcurrentCopies(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	sess, _ := m.Get(ctx, "")
	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 4}))

	// two requests holding copies loaded before either one saved
	listing, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	applying, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)

	require.NoError(t, m.MarkApplied(ctx, applying, 7))
	require.NoError(t, m.Modify(ctx, listing, func(s *Session) error {
		s.JobsView = &jobfilter.ViewState{Page: 2}
		return nil
	}))

	assert.True(t, listing.HasApplied(7), "the saving copy is refreshed from the store")

	loaded, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, loaded.AppliedJobs)
	require.NotNil(t, loaded.JobsView)
	assert.Equal(t, 2, loaded.JobsView.Page)
	assert.Equal(t, "tok", loaded.Token)
}

func TestManager_ModifyAfterLogoutKeepsSessionEnded(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	sess, _ := m.Get(ctx, "")
	require.NoError(t, m.Login(ctx, sess, "tok", domain.User{ID: 4}))

	inFlight, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, sess))

	err = m.Modify(ctx, inFlight, func(s *Session) error {
		s.JobsView = &jobfilter.ViewState{Page: 3}
		return nil
	})
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.ErrorIs(t, m.MarkApplied(ctx, inFlight, 9), ErrSessionEnded)
	assert.ErrorIs(t, m.UpdateUser(ctx, inFlight, domain.User{ID: 4}), ErrSessionEnded)
	assert.Equal(t, 0, store.Len())

	again, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, again.Authenticated())
	assert.NotEqual(t, sess.ID, again.ID)
}

func TestManager_LoginAfterConcurrentLogout(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	sess, _ := m.Get(ctx, "")
	require.NoError(t, m.Login(ctx, sess, "old", domain.User{ID: 4}))

	stale, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, sess))

	require.NoError(t, m.Login(ctx, stale, "new", domain.User{ID: 5}))

	loaded, err := m.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Token)
	assert.Equal(t, 5, loaded.User.ID)
	assert.Empty(t, loaded.AppliedJobs)
}
