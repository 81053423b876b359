package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"

	"github.com/google/uuid"
)

// DefaultLoginDelay is the pause every login attempt takes before it is judged
const DefaultLoginDelay = 800 * time.Millisecond

// State is the lifecycle stage of a session
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session binds a principal to a token. The principal is read from the user
// directory on every lookup; only the profile fields edited through the
// session (name, phone, avatar) are kept from the session itself.
type Session struct {
	ID        string      `json:"id"`
	State     State       `json:"-"`
	User      models.User `json:"user"`
	IssuedAt  time.Time   `json:"issuedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Authenticated reports whether s is a live authenticated session. A nil
// session is anonymous.
func (s *Session) Authenticated() bool {
	return s != nil && s.State == Authenticated
}

// UserDirectory resolves login emails and session principals to users
type UserDirectory interface {
	FindUserByEmail(email string) (models.User, bool)
	GetUser(id string) (models.User, bool)
}

// LoginResult labels login outcomes for the login hook
type LoginResult string

const (
	LoginSuccess  LoginResult = "success"
	LoginCanceled LoginResult = "canceled"
)

// Gate owns the live sessions and decides logins
type Gate struct {
	users  UserDirectory
	creds  *Credentials
	tokens *JWTManager

	delay   time.Duration
	now     func() time.Time
	newID   func() string
	onLogin func(LoginResult)

	mu       sync.Mutex
	sessions map[string]*Session
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithLoginDelay sets the pause before each login is judged
func WithLoginDelay(d time.Duration) GateOption {
	return func(g *Gate) {
		if d >= 0 {
			g.delay = d
		}
	}
}

// WithGateClock replaces time.Now for session expiry
func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLoginHook registers a callback invoked once per finished login attempt
func WithLoginHook(fn func(LoginResult)) GateOption {
	return func(g *Gate) { g.onLogin = fn }
}

// NewGate creates a gate over the user directory and credential table
func NewGate(users UserDirectory, creds *Credentials, tokens *JWTManager, opts ...GateOption) *Gate {
	g := &Gate{
		users:    users,
		creds:    creds,
		tokens:   tokens,
		delay:    DefaultLoginDelay,
		now:      time.Now,
		newID:    uuid.NewString,
		onLogin:  func(LoginResult) {},
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login waits out the login delay, then checks the email, the role password
// and the account's active flag in that order. On success the session is
// registered and a signed token referencing it is returned. A failed or
// canceled attempt leaves no session behind.
func (g *Gate) Login(ctx context.Context, email, password string) (*Session, string, error) {
	logger := logging.FromContext(ctx)

	s := &Session{ID: g.newID(), State: Authenticating}
	g.mu.Lock()
	g.sessions[s.ID] = s
	g.mu.Unlock()

	sess, token, err := g.authenticate(ctx, s, email, password)
	if err != nil {
		g.mu.Lock()
		delete(g.sessions, s.ID)
		g.mu.Unlock()

		result := LoginResult(strings.ToLower(string(KindOf(err))))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result = LoginCanceled
		}
		if result != "" {
			g.onLogin(result)
		}
		level := slog.LevelInfo
		if errors.Is(err, ErrAccountDeactivated) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "login rejected", slog.String("email", strings.TrimSpace(email)), slog.Any("error", err))
		return nil, "", err
	}

	g.onLogin(LoginSuccess)
	logger.Info("login succeeded", slog.String("user_id", sess.User.ID), slog.String("role", string(sess.User.Role)))
	return sess, token, nil
}

func (g *Gate) authenticate(ctx context.Context, s *Session, email, password string) (*Session, string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	user, ok := g.users.FindUserByEmail(strings.TrimSpace(email))
	if !ok {
		return nil, "", &AuthError{Kind: UserNotFound}
	}
	if !g.creds.Check(user.Role, password) {
		return nil, "", &AuthError{Kind: InvalidPassword}
	}
	if !user.IsActive {
		return nil, "", &AuthError{Kind: AccountDeactivated}
	}

	token, expiresAt, err := g.tokens.GenerateToken(s.ID, user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	s.User = user
	s.State = Authenticated
	s.IssuedAt = g.now()
	s.ExpiresAt = expiresAt
	out := *s
	return &out, token, nil
}

// Logout ends the session. Unknown ids are ignored.
func (g *Gate) Logout(sessionID string) {
	g.mu.Lock()
	delete(g.sessions, sessionID)
	g.mu.Unlock()
}

// Session returns a copy of the live authenticated session with the given id.
// Sessions whose user was deleted or deactivated end here.
func (g *Gate) Session(sessionID string) (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[sessionID]
	if !ok || s.State != Authenticated {
		return nil, false
	}
	if !s.ExpiresAt.IsZero() && !g.now().Before(s.ExpiresAt) {
		delete(g.sessions, sessionID)
		return nil, false
	}

	current, ok := g.users.GetUser(s.User.ID)
	if !ok || !current.IsActive {
		delete(g.sessions, sessionID)
		return nil, false
	}
	s.User = refreshPrincipal(s.User, current)

	out := *s
	return &out, true
}

// refreshPrincipal takes everything from the directory record except the
// fields a profile edit may have changed on the session.
func refreshPrincipal(session, current models.User) models.User {
	current.Name = session.Name
	current.Phone = session.Phone
	current.Avatar = session.Avatar
	return current
}

// ResolveToken validates a bearer token and returns the session it
// references. A token issued for a role the user no longer holds ends its
// session.
func (g *Gate) ResolveToken(token string) (*Session, *Claims, error) {
	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		return nil, nil, err
	}
	s, ok := g.Session(claims.SessionID())
	if !ok || s.User.ID != claims.UserID() {
		return nil, claims, ErrNoSession
	}
	if !claims.HasRole(s.User.Role) {
		g.Logout(s.ID)
		return nil, claims, ErrNoSession
	}
	return s, claims, nil
}

// UpdateProfile shallow-merges upd into the session principal and returns the
// merged user. The user directory is not changed.
func (g *Gate) UpdateProfile(sessionID string, upd models.ProfileUpdate) (models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[sessionID]
	if !ok || s.State != Authenticated {
		return models.User{}, ErrNoSession
	}
	s.User = upd.Apply(s.User)
	return s.User, nil
}

// Len returns the number of tracked sessions, including in-flight logins
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// pruneLocked drops expired sessions. Callers hold g.mu.
func (g *Gate) pruneLocked() {
	now := g.now()
	for id, s := range g.sessions {
		if s.State == Authenticated && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
			delete(g.sessions, id)
		}
	}
}
