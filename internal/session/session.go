// Package session implements server-side sessions stored in Redis, addressed
// by an opaque HMAC-signed token carried in a browser cookie.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
)

const keyPrefix = "session:"

// CookieName is the name of the session cookie.
const CookieName = "session"

// Session is the server-side session record.
type Session struct {
	AccountID int64     `json:"account_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager creates, loads, and destroys sessions. Session state lives in
// Redis; the browser only holds a random identifier signed with the
// configured secret, so cookies cannot be forged or decoded client-side.
type Manager struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager. The secret signs session tokens and
// must be stable across restarts for existing sessions to survive.
func NewManager(client *redis.Client, secret string, ttl time.Duration) *Manager {
	return &Manager{
		client: client,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Create stores a new session for the account and returns the signed cookie
// token.
func (m *Manager) Create(ctx context.Context, accountID int64, username string) (string, error) {
	id, err := randomID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	sess := Session{
		AccountID: accountID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := m.client.Set(ctx, keyPrefix+id, data, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}

	return m.sign(id), nil
}

// Get loads the session referenced by the signed token. A token with a bad
// signature, an unknown session ID, or an expired record all return
// ErrUnauthorized.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	id, ok := m.verify(token)
	if !ok {
		return nil, apperrors.Unauthorized("invalid session token")
	}

	data, err := m.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.Unauthorized("session expired")
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &sess, nil
}

// Destroy removes the session referenced by the token. Unknown or malformed
// tokens are a no-op, so logout is idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	id, ok := m.verify(token)
	if !ok {
		return nil
	}

	if err := m.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}

	return nil
}

// sign produces the cookie token "id.signature" for a session ID.
func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return id + "." + sig
}

// verify checks the token's signature and returns the session ID.
func (m *Manager) verify(token string) (string, bool) {
	id, sig, found := strings.Cut(token, ".")
	if !found || id == "" {
		return "", false
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}

	return id, true
}

// randomID returns a 32-byte random identifier, URL-safe base64 encoded.
func randomID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
