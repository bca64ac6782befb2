package cookidoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	"github.com/router-for-me/AlexaCookidooSkill/internal/metrics"
	"github.com/router-for-me/AlexaCookidooSkill/internal/shopping"
	"github.com/tidwall/gjson"
)

func newTestShoppingList(srv *httptest.Server) (*ShoppingList, *TokenManager, *prometheus.Registry) {
	cfg := &config.Config{Cookidoo: config.CookidooConfig{BaseURL: srv.URL, TimeoutSeconds: 5}}
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	manager := NewTokenManager(cfg, testCredentials, srv.Client(), collector)
	return NewShoppingList(cfg, manager, srv.Client(), collector), manager, reg
}

func mustItem(t *testing.T, name string) shopping.Item {
	t.Helper()
	item, err := shopping.NewItem(name)
	if err != nil {
		t.Fatalf("NewItem(%q) error: %v", name, err)
	}
	return item
}

func TestAddItemSendsBearerTokenAndPayload(t *testing.T) {
	var gotAuth, gotContentType, gotName atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/ciam/auth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tokenResponse("access-1", "refresh-1", 3600))
	})
	mux.HandleFunc("/shopping/de-DE/additional-items/add", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotAuth.Store(r.Header.Get("Authorization"))
		gotContentType.Store(r.Header.Get("Content-Type"))
		gotName.Store(gjson.GetBytes(body, "name").String())
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list, _, reg := newTestShoppingList(srv)
	if err := list.AddItem(context.Background(), mustItem(t, "Brot")); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}

	if got := gotAuth.Load(); got != "Bearer access-1" {
		t.Errorf("Authorization = %v, want Bearer access-1", got)
	}
	if got := gotContentType.Load(); got != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", got)
	}
	if got := gotName.Load(); got != "Brot" {
		t.Errorf("payload name = %v, want Brot", got)
	}
	if v := counterValue(t, reg, "skill_add_item_total", map[string]string{"result": "success"}); v != 1 {
		t.Errorf("success counter = %v, want 1", v)
	}
}

func TestAddItemRetriesOnceAfterUnauthorized(t *testing.T) {
	var tokenCalls, addCalls int32
	var mu sync.Mutex
	var seenAuth []string
	var seenGrants []string

	mux := http.NewServeMux()
	mux.HandleFunc("/ciam/auth/token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&tokenCalls, 1)
		mu.Lock()
		seenGrants = append(seenGrants, r.PostFormValue("grant_type"))
		mu.Unlock()
		fmt.Fprint(w, tokenResponse(fmt.Sprintf("access-%d", n), fmt.Sprintf("refresh-%d", n), 3600))
	})
	mux.HandleFunc("/shopping/de-DE/additional-items/add", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seenAuth = append(seenAuth, r.Header.Get("Authorization"))
		mu.Unlock()
		if atomic.AddInt32(&addCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list, _, reg := newTestShoppingList(srv)
	if err := list.AddItem(context.Background(), mustItem(t, "Brot")); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seenAuth) != 2 || seenAuth[0] != "Bearer access-1" || seenAuth[1] != "Bearer access-2" {
		t.Errorf("Authorization sequence = %v, want [Bearer access-1 Bearer access-2]", seenAuth)
	}
	// Invalidation drops the refresh token, so the retry logs in from scratch.
	if len(seenGrants) != 2 || seenGrants[0] != "password" || seenGrants[1] != "password" {
		t.Errorf("grant sequence = %v, want [password password]", seenGrants)
	}
	if v := counterValue(t, reg, "skill_unauthorized_retries_total", nil); v != 1 {
		t.Errorf("retry counter = %v, want 1", v)
	}
}

func TestAddItemFailsAfterSecondUnauthorized(t *testing.T) {
	var tokenCalls, addCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ciam/auth/token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&tokenCalls, 1)
		fmt.Fprint(w, tokenResponse(fmt.Sprintf("access-%d", n), "", 3600))
	})
	mux.HandleFunc("/shopping/de-DE/additional-items/add", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&addCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list, _, _ := newTestShoppingList(srv)
	err := list.AddItem(context.Background(), mustItem(t, "Brot"))
	if err == nil {
		t.Fatal("AddItem() succeeded against an always-unauthorized endpoint")
	}
	var authErr *shopping.AuthFailedError
	if !errors.As(err, &authErr) {
		t.Fatalf("AddItem() error = %T, want *shopping.AuthFailedError", err)
	}
	if n := atomic.LoadInt32(&addCalls); n != 2 {
		t.Errorf("add endpoint called %d times, want exactly 2", n)
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 2 {
		t.Errorf("token endpoint called %d times, want exactly 2", n)
	}
}

func TestAddItemDoesNotRetryServerErrors(t *testing.T) {
	var addCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ciam/auth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tokenResponse("access-1", "refresh-1", 3600))
	})
	mux.HandleFunc("/shopping/de-DE/additional-items/add", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&addCalls, 1)
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list, _, _ := newTestShoppingList(srv)
	err := list.AddItem(context.Background(), mustItem(t, "Brot"))
	if err == nil {
		t.Fatal("AddItem() succeeded against a failing endpoint")
	}
	var reqErr *shopping.RequestFailedError
	if !errors.As(err, &reqErr) {
		t.Fatalf("AddItem() error = %T, want *shopping.RequestFailedError", err)
	}
	if reqErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", reqErr.StatusCode, http.StatusInternalServerError)
	}
	var se interface{ StatusCode() int }
	if !errors.As(reqErr.Cause, &se) || se.StatusCode() != http.StatusInternalServerError {
		t.Errorf("Cause = %v, want an error exposing status %d", reqErr.Cause, http.StatusInternalServerError)
	}
	if n := atomic.LoadInt32(&addCalls); n != 1 {
		t.Errorf("add endpoint called %d times, want exactly 1", n)
	}
}

func TestAddItemReportsTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	srv.Close() // connection refused from here on

	cfg := &config.Config{Cookidoo: config.CookidooConfig{BaseURL: srv.URL, TimeoutSeconds: 1}}
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	httpClient := &http.Client{Timeout: time.Second}
	manager := NewTokenManager(cfg, testCredentials, httpClient, collector)
	manager.cache.set(&Token{AccessToken: "cached", ExpiresAt: time.Now().Add(time.Hour)})
	list := NewShoppingList(cfg, manager, httpClient, collector)

	err := list.AddItem(context.Background(), mustItem(t, "Brot"))
	if err == nil {
		t.Fatal("AddItem() succeeded against a closed server")
	}
	var reqErr *shopping.RequestFailedError
	if !errors.As(err, &reqErr) {
		t.Fatalf("AddItem() error = %T, want *shopping.RequestFailedError", err)
	}
	if reqErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a transport failure", reqErr.StatusCode)
	}
}
