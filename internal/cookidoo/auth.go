package cookidoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	"github.com/router-for-me/AlexaCookidooSkill/internal/metrics"
	"github.com/router-for-me/AlexaCookidooSkill/internal/shopping"
	"github.com/router-for-me/AlexaCookidooSkill/internal/util"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// TokenManager acquires and caches Cookidoo OAuth tokens. It keeps exactly
// one token pair; concurrent callers that find the cache stale share a
// single in-flight refill through the singleflight group.
type TokenManager struct {
	httpClient *http.Client
	baseURL    string
	creds      *config.Credentials
	metrics    *metrics.Collector

	cache tokenCache
	group singleflight.Group
}

// NewTokenManager creates a token manager for the configured Cookidoo
// account.
func NewTokenManager(cfg *config.Config, creds *config.Credentials, httpClient *http.Client, collector *metrics.Collector) *TokenManager {
	return &TokenManager{
		httpClient: httpClient,
		baseURL:    apiBaseURL(cfg),
		creds:      creds,
		metrics:    collector,
	}
}

// Token returns an access token that is valid for at least the refresh skew.
// A stale or empty cache triggers a refill: one refresh attempt when a
// refresh token exists, then one password login. Refill failures surface as
// *shopping.AuthFailedError.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token := m.cache.get(); token.Valid(time.Now()) {
		m.metrics.RecordTokenCacheEvent("hit")
		logWithRequestID(ctx).WithField("token", util.HideToken(token.AccessToken)).Debug("reusing cached access token")
		return token.AccessToken, nil
	}
	m.metrics.RecordTokenCacheEvent("miss")

	result, err, _ := m.group.Do("token", func() (interface{}, error) {
		return m.refill(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(*Token).AccessToken, nil
}

// Invalidate drops the cached token pair so the next Token call performs a
// fresh login. The refresh token is dropped too: after an unauthorized
// response the whole pair is suspect.
func (m *TokenManager) Invalidate() {
	m.cache.clear()
	m.metrics.RecordTokenCacheEvent("invalidate")
}

func (m *TokenManager) refill(ctx context.Context) (*Token, error) {
	// A caller that waited on the singleflight slot may find the cache
	// already refilled by the winner.
	if token := m.cache.get(); token.Valid(time.Now()) {
		return token, nil
	}

	if stale := m.cache.get(); stale != nil && stale.RefreshToken != "" {
		token, errRefresh := m.refreshGrant(ctx, stale.RefreshToken)
		if errRefresh == nil {
			m.cache.set(token)
			logWithRequestID(ctx).WithFields(log.Fields{
				"grant":      "refresh_token",
				"token":      util.HideToken(token.AccessToken),
				"expires_at": token.ExpiresAt.Format(time.RFC3339),
			}).Info("access token refreshed")
			return token, nil
		}
		logWithRequestID(ctx).WithField("error", errRefresh).Warn("token refresh failed, falling back to password login")
	}

	token, errLogin := m.passwordGrant(ctx)
	if errLogin != nil {
		m.cache.clear()
		logWithRequestID(ctx).WithField("error", errLogin).Error("cookidoo login failed")
		return nil, &shopping.AuthFailedError{Cause: errLogin}
	}
	m.cache.set(token)
	logWithRequestID(ctx).WithFields(log.Fields{
		"grant":      "password",
		"token":      util.HideToken(token.AccessToken),
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	}).Info("logged in to cookidoo")
	return token, nil
}

func (m *TokenManager) refreshGrant(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	token, err := m.requestToken(ctx, form)
	if err != nil {
		m.metrics.RecordAuthRequest("refresh_token", "failure")
		return nil, err
	}
	m.metrics.RecordAuthRequest("refresh_token", "success")
	return token, nil
}

func (m *TokenManager) passwordGrant(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", m.creds.Email)
	form.Set("password", m.creds.Password)
	form.Set("client_id", m.creds.ClientID)

	token, err := m.requestToken(ctx, form)
	if err != nil {
		m.metrics.RecordAuthRequest("password", "failure")
		return nil, err
	}
	m.metrics.RecordAuthRequest("password", "success")
	return token, nil
}

func (m *TokenManager) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("close token response body failed: %v", errClose)
		}
	}()
	m.metrics.RecordUpstreamLatency(time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusErr{code: resp.StatusCode, msg: fmt.Sprintf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	accessToken := gjson.GetBytes(body, "access_token").String()
	if accessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	token := &Token{
		AccessToken:  accessToken,
		RefreshToken: gjson.GetBytes(body, "refresh_token").String(),
	}
	if expiresIn := gjson.GetBytes(body, "expires_in").Int(); expiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return token, nil
}
