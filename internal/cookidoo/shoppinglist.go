package cookidoo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	"github.com/router-for-me/AlexaCookidooSkill/internal/metrics"
	"github.com/router-for-me/AlexaCookidooSkill/internal/shopping"
	"github.com/router-for-me/AlexaCookidooSkill/internal/util"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// ShoppingList is the Cookidoo-backed implementation of shopping.Repository.
type ShoppingList struct {
	httpClient *http.Client
	baseURL    string
	tokens     *TokenManager
	metrics    *metrics.Collector
}

// NewShoppingList creates the shopping list repository on top of the given
// token manager.
func NewShoppingList(cfg *config.Config, tokens *TokenManager, httpClient *http.Client, collector *metrics.Collector) *ShoppingList {
	return &ShoppingList{
		httpClient: httpClient,
		baseURL:    apiBaseURL(cfg),
		tokens:     tokens,
		metrics:    collector,
	}
}

// AddItem appends one item to the Cookidoo shopping list. An unauthorized
// response invalidates the cached token and retries exactly once with a
// freshly issued one; every other failure returns immediately.
func (s *ShoppingList) AddItem(ctx context.Context, item shopping.Item) error {
	accessToken, err := s.tokens.Token(ctx)
	if err != nil {
		s.metrics.RecordAddItem("auth_failed")
		return err
	}

	status, body, err := s.postItem(ctx, accessToken, item.Name())
	if err != nil {
		s.metrics.RecordAddItem("request_failed")
		return &shopping.RequestFailedError{StatusCode: status, Cause: err}
	}

	if status == http.StatusUnauthorized {
		logWithRequestID(ctx).WithField("item", item.Name()).Warn("unauthorized response, renewing token and retrying once")
		s.tokens.Invalidate()
		s.metrics.RecordUnauthorizedRetry()

		accessToken, err = s.tokens.Token(ctx)
		if err != nil {
			s.metrics.RecordAddItem("auth_failed")
			return err
		}
		status, body, err = s.postItem(ctx, accessToken, item.Name())
		if err != nil {
			s.metrics.RecordAddItem("request_failed")
			return &shopping.RequestFailedError{StatusCode: status, Cause: err}
		}
		if status == http.StatusUnauthorized {
			s.metrics.RecordAddItem("auth_failed")
			return &shopping.AuthFailedError{Cause: statusErr{code: status, msg: "shopping list rejected a freshly issued token"}}
		}
	}

	if status < 200 || status >= 300 {
		s.metrics.RecordAddItem("request_failed")
		return &shopping.RequestFailedError{
			StatusCode: status,
			Cause:      statusErr{code: status, msg: strings.TrimSpace(string(body))},
		}
	}

	s.metrics.RecordAddItem("success")
	logWithRequestID(ctx).WithFields(log.Fields{
		"item":   item.Name(),
		"status": status,
	}).Debug("item posted to shopping list")
	return nil
}

// postItem performs one POST against the additional-items endpoint and
// returns the response status and body. A non-nil error means the request
// never completed; HTTP-level failures are reported through the status.
func (s *ShoppingList) postItem(ctx context.Context, accessToken, name string) (int, []byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "name", name)
	if err != nil {
		return 0, nil, fmt.Errorf("encode item payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+shoppingListEndpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("create add-item request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	logWithRequestID(ctx).WithFields(log.Fields{
		"item":          name,
		"authorization": util.MaskAuthorizationHeader(req.Header.Get("Authorization")),
	}).Debug("posting item to shopping list")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("add-item request: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("close add-item response body failed: %v", errClose)
		}
	}()
	s.metrics.RecordUpstreamLatency(time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read add-item response: %w", err)
	}
	return resp.StatusCode, body, nil
}
