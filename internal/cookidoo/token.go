package cookidoo

import (
	"sync"
	"time"
)

// tokenRefreshSkew is the safety margin applied when judging token validity.
// A token that expires within the skew is treated as stale so it gets renewed
// before an upstream call can fail mid-flight.
const tokenRefreshSkew = 5 * time.Minute

// Token is one issued Cookidoo access token together with its refresh
// companion. ExpiresAt is the absolute expiry derived from the grant
// response; the zero time means the expiry is unknown.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the token can still be used at the given time,
// keeping tokenRefreshSkew as a safety margin. A nil token is never valid.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt.After(now.Add(tokenRefreshSkew))
}

// tokenCache is the process-wide single-slot store for the current token
// pair. The skill serves one Cookidoo account, so one slot is all there is.
type tokenCache struct {
	mu    sync.RWMutex
	token *Token
}

func (c *tokenCache) get() *Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *tokenCache) set(token *Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *tokenCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}
