// Package cookidoo implements the client side of the Cookidoo mobile API:
// OAuth token acquisition with refresh and password grants, a process-wide
// token cache, and the shopping list repository used by the skill.
package cookidoo

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	"github.com/router-for-me/AlexaCookidooSkill/internal/logging"
	"github.com/router-for-me/AlexaCookidooSkill/internal/util"
	log "github.com/sirupsen/logrus"
)

const (
	// defaultBaseURL is the German Cookidoo mobile API host.
	defaultBaseURL = "https://de.tmmobile.vorwerk-digital.com"

	tokenEndpoint        = "/ciam/auth/token"
	shoppingListEndpoint = "/shopping/de-DE/additional-items/add"

	defaultTimeout = 30 * time.Second

	userAgent = "AlexaCookidooSkill/1.0"
)

// statusErr carries the upstream HTTP status code alongside the message so
// callers can branch on the status without parsing error strings.
type statusErr struct {
	code int
	msg  string
}

func (e statusErr) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return http.StatusText(e.code)
}

func (e statusErr) StatusCode() int { return e.code }

// NewHTTPClient builds the HTTP client shared by all Cookidoo requests,
// applying the configured timeout and optional proxy.
func NewHTTPClient(cfg *config.Config) *http.Client {
	timeout := defaultTimeout
	if cfg.Cookidoo.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Cookidoo.TimeoutSeconds) * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return util.SetProxy(cfg, httpClient)
}

func apiBaseURL(cfg *config.Config) string {
	base := strings.TrimSpace(cfg.Cookidoo.BaseURL)
	if base == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func logWithRequestID(ctx context.Context) *log.Entry {
	if id := logging.GetRequestID(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return log.NewEntry(log.StandardLogger())
}
