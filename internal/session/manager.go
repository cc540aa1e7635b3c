package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kapilraj10/pos-storefront/pkg/config"
	"github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/redis"
)

// Roles carried in the session record. The backend is the enforcement
// point for admin operations; the role here only gates routes.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// NormalizeRole collapses the backend's role spellings to the two the
// storefront distinguishes.
func NormalizeRole(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN", "ROLE_ADMIN":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Record is the server-side session state keyed by jti in Redis. The
// backend token never reaches the client.
type Record struct {
	BackendToken string `json:"backend_token"`
	Role         string `json:"role"`
}

// Session is what a successful start hands back to the HTTP layer.
type Session struct {
	ID    string
	Token string
	Role  string
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// Manager issues session JWTs and keeps their server-side records in Redis.
type Manager struct {
	store sessionStore
	cfg   config.SessionConfig
	now   func() time.Time
}

// NewManager constructs a session manager backed by Redis.
func NewManager(store sessionStore, cfg config.SessionConfig) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.TTL() <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: store, cfg: cfg, now: time.Now}, nil
}

// StartGuest creates an anonymous session able to carry a cart and
// place guest-capable payment calls.
func (m *Manager) StartGuest(ctx context.Context) (*Session, error) {
	return m.start(ctx, Record{Role: RoleGuest})
}

// StartAuthenticated creates a session wrapping a backend token
// obtained from login. The raw backend role is normalized.
func (m *Manager) StartAuthenticated(ctx context.Context, backendToken, rawRole string) (*Session, error) {
	if strings.TrimSpace(backendToken) == "" {
		return nil, errors.New(errors.CodeUnauthorized, "backend token is required")
	}
	return m.start(ctx, Record{BackendToken: backendToken, Role: NormalizeRole(rawRole)})
}

func (m *Manager) start(ctx context.Context, record Record) (*Session, error) {
	sessionID := uuid.NewString()

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "encoding session record")
	}
	if err := m.store.Set(ctx, m.store.SessionKey(sessionID), string(encoded), m.cfg.TTL()); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "storing session record")
	}

	token, err := MintToken(m.cfg, m.now(), sessionID, record.Role)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting session token")
	}
	return &Session{ID: sessionID, Token: token, Role: record.Role}, nil
}

// Resolve parses a session JWT and loads its Redis record. A valid JWT
// whose record expired or was revoked is unauthorized.
func (m *Manager) Resolve(ctx context.Context, tokenString string) (string, *Record, error) {
	claims, err := ParseToken(m.cfg, tokenString)
	if err != nil {
		return "", nil, errors.Wrap(errors.CodeUnauthorized, err, "invalid session token")
	}

	raw, err := m.store.Get(ctx, m.store.SessionKey(claims.ID))
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return "", nil, errors.New(errors.CodeUnauthorized, "session expired")
		}
		return "", nil, errors.Wrap(errors.CodeDependency, err, "loading session record")
	}

	record := &Record{}
	if err := json.Unmarshal([]byte(raw), record); err != nil {
		return "", nil, errors.Wrap(errors.CodeInternal, err, "decoding session record")
	}
	return claims.ID, record, nil
}

// Revoke deletes the server-side record, invalidating the JWT early.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.store.SessionKey(sessionID))
}
