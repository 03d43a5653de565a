package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/territory-leads/internal/api/router"
	"github.com/wolfman30/territory-leads/internal/app/bootstrap"
	appconfig "github.com/wolfman30/territory-leads/internal/config"
	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveRateLimited("places-search")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "territory_ratelimit_rejected_total") {
		t.Fatalf("expected rate limit counter to be exported")
	}
}

func TestBuildRouterConfigInMemory(t *testing.T) {
	logger := logging.Discard()
	cfg := &appconfig.Config{
		SessionSecret:  "secret",
		SessionTTL:     time.Hour,
		PlacesTimeout:  5 * time.Second,
		MapsBrowserKey: "browser-key",
	}
	metricsHandler, m := setupMetrics()
	limiter := bootstrap.BuildRateLimiter(cfg, nil, logger)

	routerCfg := buildRouterConfig(cfg, bootstrap.BuildStores(nil, logger), nil, limiter, metricsHandler, m, logger)
	if routerCfg.PlacesHandler == nil || routerCfg.LeadsHandler == nil || routerCfg.AuthHandler == nil {
		t.Fatalf("expected handlers to be wired")
	}

	srv := httptest.NewServer(router.New(routerCfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/client-config")
	if err != nil {
		t.Fatalf("get client-config: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	leadsResp, err := http.Get(srv.URL + "/leads")
	if err != nil {
		t.Fatalf("get leads: %v", err)
	}
	defer leadsResp.Body.Close()
	if leadsResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", leadsResp.StatusCode)
	}
}

func TestInMemoryModeSeedsLoginableUsers(t *testing.T) {
	logger := logging.Discard()
	cfg := &appconfig.Config{SessionSecret: "secret", SessionTTL: time.Hour}
	stores := bootstrap.BuildStores(nil, logger)
	if err := seedInMemoryUsers(context.Background(), cfg, stores, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}

	metricsHandler, m := setupMetrics()
	limiter := bootstrap.BuildRateLimiter(cfg, nil, logger)
	srv := httptest.NewServer(router.New(buildRouterConfig(cfg, stores, nil, limiter, metricsHandler, m, logger)))
	defer srv.Close()

	for _, acct := range bootstrap.DefaultAccounts {
		body, _ := json.Marshal(map[string]string{"email": acct.Email, "password": acct.Password})
		resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("login %s: %v", acct.Email, err)
		}
		var session struct {
			Token string         `json:"token"`
			Actor identity.Actor `json:"actor"`
		}
		err = json.NewDecoder(resp.Body).Decode(&session)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || err != nil {
			t.Fatalf("login %s: status %d, decode error %v", acct.Email, resp.StatusCode, err)
		}
		if session.Actor.Role != acct.Role || session.Token == "" {
			t.Fatalf("login %s: unexpected session %+v", acct.Email, session)
		}

		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/leads", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		leadsResp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("list leads as %s: %v", acct.Email, err)
		}
		leadsResp.Body.Close()
		if leadsResp.StatusCode != http.StatusOK {
			t.Fatalf("list leads as %s: expected 200, got %d", acct.Email, leadsResp.StatusCode)
		}
	}
}

func TestSeedInMemoryUsersSkippedWithDatabase(t *testing.T) {
	logger := logging.Discard()
	stores := bootstrap.BuildStores(nil, logger)
	cfg := &appconfig.Config{DatabaseURL: "postgres://user@host/db"}

	if err := seedInMemoryUsers(context.Background(), cfg, stores, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := stores.Users.GetByEmail(context.Background(), "admin@territory.local"); err == nil {
		t.Fatalf("expected no users to be seeded when a database is configured")
	}
}
