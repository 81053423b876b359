package auth

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestGate(t *testing.T, opts ...GateOption) (*Gate, *store.Store) {
	t.Helper()
	seed, err := store.DefaultSeed()
	require.NoError(t, err)
	st, err := store.NewFromSeed(seed)
	require.NoError(t, err)

	creds, err := NewCredentials(map[models.Role]string{
		models.RoleAdmin:    "admin123",
		models.RoleEmployee: "employee123",
	}, bcrypt.MinCost)
	require.NoError(t, err)

	tokens := NewJWTManager(testSecret, "asset-angel", "asset-angel-dashboard", time.Hour)
	require.NoError(t, tokens.ValidateConfig())

	opts = append([]GateOption{WithLoginDelay(0)}, opts...)
	return NewGate(st, creds, tokens, opts...), st
}

// editUser rewrites a stored user through fn
func editUser(t *testing.T, st *store.Store, id string, fn func(*models.UserInput)) {
	t.Helper()
	u, ok := st.GetUser(id)
	require.True(t, ok)
	active := u.IsActive
	in := models.UserInput{
		Email: u.Email, Name: u.Name, Role: u.Role, Department: u.Department,
		Phone: u.Phone, Avatar: u.Avatar, IsActive: &active,
	}
	fn(&in)
	_, err := st.UpdateUser(id, in)
	require.NoError(t, err)
}

func deactivate(t *testing.T, st *store.Store, id string) {
	t.Helper()
	editUser(t, st, id, func(in *models.UserInput) {
		inactive := false
		in.IsActive = &inactive
	})
}

func TestLogin(t *testing.T) {
	gate, st := newTestGate(t)
	deactivate(t, st, "4")

	tests := []struct {
		name     string
		email    string
		password string
		wantKind AuthErrorKind
		wantErr  error
		wantRole models.Role
	}{
		{"admin", "admin@company.com", "admin123", "", nil, models.RoleAdmin},
		{"employee", "employee@company.com", "employee123", "", nil, models.RoleEmployee},
		{"email case ignored", "Admin@Company.COM", "admin123", "", nil, models.RoleAdmin},
		{"wrong password", "admin@company.com", "wrong", InvalidPassword, ErrInvalidPassword, ""},
		{"other role's password", "admin@company.com", "employee123", InvalidPassword, ErrInvalidPassword, ""},
		{"unknown user", " unknown@x.com", "x", UserNotFound, ErrUserNotFound, ""},
		{"deactivated", "emily.davis@company.com", "employee123", AccountDeactivated, ErrAccountDeactivated, ""},
		{"deactivated with wrong password", "emily.davis@company.com", "nope", InvalidPassword, ErrInvalidPassword, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := gate.Len()
			session, token, err := gate.Login(context.Background(), tt.email, tt.password)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				assert.Empty(t, token)
				assert.Equal(t, before, gate.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Authenticated, session.State)
			assert.Equal(t, tt.wantRole, session.User.Role)
			assert.NotEmpty(t, token)
			assert.Equal(t, before+1, gate.Len())

			live, ok := gate.Session(session.ID)
			require.True(t, ok)
			assert.Equal(t, session.User, live.User)
		})
	}
}

func TestAuthErrorMessages(t *testing.T) {
	assert.Equal(t, "User not found", (&AuthError{Kind: UserNotFound}).Error())
	assert.Equal(t, "Invalid password", (&AuthError{Kind: InvalidPassword}).Error())
	assert.Equal(t, "Account is deactivated", (&AuthError{Kind: AccountDeactivated}).Error())
	assert.False(t, errors.Is(&AuthError{Kind: UserNotFound}, &AuthError{Kind: InvalidPassword}))
}

func TestLoginHonoursDelayAndCancellation(t *testing.T) {
	var mu sync.Mutex
	var results []LoginResult
	gate, _ := newTestGate(t,
		WithLoginDelay(time.Hour),
		WithLoginHook(func(r LoginResult) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := gate.Login(ctx, "admin@company.com", "admin123")
		done <- err
	}()

	// The attempt is tracked while it waits
	require.Eventually(t, func() bool { return gate.Len() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("login did not return after cancellation")
	}
	assert.Equal(t, 0, gate.Len())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []LoginResult{LoginCanceled}, results)
}

func TestLoginWaitsForDelay(t *testing.T) {
	gate, _ := newTestGate(t, WithLoginDelay(20*time.Millisecond))

	start := time.Now()
	_, _, err := gate.Login(context.Background(), "nobody@company.com", "x")
	assert.Equal(t, UserNotFound, KindOf(err))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestLogout(t *testing.T) {
	gate, _ := newTestGate(t)

	session, _, err := gate.Login(context.Background(), "admin@company.com", "admin123")
	require.NoError(t, err)

	gate.Logout(session.ID)
	_, ok := gate.Session(session.ID)
	assert.False(t, ok)

	// Unconditional: repeated and unknown ids are fine
	gate.Logout(session.ID)
	gate.Logout("does-not-exist")
	assert.Equal(t, 0, gate.Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	gate, _ := newTestGate(t)

	a, _, err := gate.Login(context.Background(), "admin@company.com", "admin123")
	require.NoError(t, err)
	b, _, err := gate.Login(context.Background(), "employee@company.com", "employee123")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	gate.Logout(a.ID)
	_, ok := gate.Session(b.ID)
	assert.True(t, ok)
}

func TestSessionExpires(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	gate, _ := newTestGate(t, WithGateClock(clock))

	session, _, err := gate.Login(context.Background(), "admin@company.com", "admin123")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, ok := gate.Session(session.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, gate.Len())
}

func TestUpdateProfile(t *testing.T) {
	gate, st := newTestGate(t)

	session, _, err := gate.Login(context.Background(), "employee@company.com", "employee123")
	require.NoError(t, err)

	name := "Demo E. Employee"
	phone := "+1 555-0199"
	merged, err := gate.UpdateProfile(session.ID, models.ProfileUpdate{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, name, merged.Name)
	assert.Equal(t, phone, *merged.Phone)
	assert.Equal(t, session.User.Email, merged.Email)

	live, ok := gate.Session(session.ID)
	require.True(t, ok)
	assert.Equal(t, merged, live.User)

	// Only the session principal changes
	stored, ok := st.GetUser(session.User.ID)
	require.True(t, ok)
	assert.Equal(t, "Demo Employee", stored.Name)

	_, err = gate.UpdateProfile("does-not-exist", models.ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolveToken(t *testing.T) {
	gate, _ := newTestGate(t)

	session, token, err := gate.Login(context.Background(), "admin@company.com", "admin123")
	require.NoError(t, err)

	got, claims, err := gate.ResolveToken(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.ID, claims.SessionID())

	gate.Logout(session.ID)
	_, _, err = gate.ResolveToken(token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionFollowsUserDirectory(t *testing.T) {
	t.Run("directory fields refresh, profile edits stay", func(t *testing.T) {
		gate, st := newTestGate(t)
		session, _, err := gate.Login(context.Background(), "employee@company.com", "employee123")
		require.NoError(t, err)

		name := "Demo E."
		_, err = gate.UpdateProfile(session.ID, models.ProfileUpdate{Name: &name})
		require.NoError(t, err)
		editUser(t, st, session.User.ID, func(in *models.UserInput) { in.Department = "Finance" })

		live, ok := gate.Session(session.ID)
		require.True(t, ok)
		assert.Equal(t, "Finance", live.User.Department)
		assert.Equal(t, name, live.User.Name)
	})

	t.Run("demoted admin loses the session", func(t *testing.T) {
		gate, st := newTestGate(t)
		_, token, err := gate.Login(context.Background(), "james.wilson@company.com", "admin123")
		require.NoError(t, err)

		editUser(t, st, "5", func(in *models.UserInput) { in.Role = models.RoleEmployee })

		_, _, err = gate.ResolveToken(token)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.Equal(t, 0, gate.Len())
	})

	t.Run("deactivated user loses the session", func(t *testing.T) {
		gate, st := newTestGate(t)
		session, token, err := gate.Login(context.Background(), "employee@company.com", "employee123")
		require.NoError(t, err)

		deactivate(t, st, session.User.ID)

		_, _, err = gate.ResolveToken(token)
		assert.ErrorIs(t, err, ErrNoSession)
		_, ok := gate.Session(session.ID)
		assert.False(t, ok)
		assert.Equal(t, 0, gate.Len())
	})

	t.Run("deleted user loses the session", func(t *testing.T) {
		gate, st := newTestGate(t)
		session, token, err := gate.Login(context.Background(), "james.wilson@company.com", "admin123")
		require.NoError(t, err)

		require.NoError(t, st.DeleteUser("5"))

		_, _, err = gate.ResolveToken(token)
		assert.ErrorIs(t, err, ErrNoSession)
		_, err = gate.UpdateProfile(session.ID, models.ProfileUpdate{})
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestDeactivatedLoginLogsWarning(t *testing.T) {
	gate, st := newTestGate(t)
	deactivate(t, st, "4")

	var buf bytes.Buffer
	logger, err := logging.New(&buf, "info", "json")
	require.NoError(t, err)
	ctx := logging.ContextWithLogger(context.Background(), logger)

	_, _, err = gate.Login(ctx, "emily.davis@company.com", "employee123")
	require.ErrorIs(t, err, ErrAccountDeactivated)
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	_, _, err = gate.Login(ctx, "emily.davis@company.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestConcurrentLogins(t *testing.T) {
	gate, _ := newTestGate(t)

	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, _, err := gate.Login(context.Background(), "admin@company.com", "admin123")
			if assert.NoError(t, err) {
				ids <- s.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 20)
	assert.Equal(t, 20, gate.Len())
}

func TestNewCredentials(t *testing.T) {
	_, err := NewCredentials(map[models.Role]string{"owner": "x"}, bcrypt.MinCost)
	assert.Error(t, err)

	_, err = NewCredentials(map[models.Role]string{models.RoleAdmin: ""}, bcrypt.MinCost)
	assert.Error(t, err)

	creds, err := NewCredentials(map[models.Role]string{models.RoleAdmin: "s3cret"}, bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, creds.Check(models.RoleAdmin, "s3cret"))
	assert.False(t, creds.Check(models.RoleAdmin, "S3cret"))
	assert.False(t, creds.Check(models.RoleEmployee, "s3cret"))
}
