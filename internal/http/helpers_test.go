package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/elemahana/farm-api/internal/config"
	"github.com/elemahana/farm-api/internal/domain"
	api "github.com/elemahana/farm-api/internal/http"
	"github.com/elemahana/farm-api/internal/log"
	"github.com/elemahana/farm-api/internal/oauth"
	"github.com/elemahana/farm-api/internal/queue"
	"github.com/elemahana/farm-api/internal/repo"
	"github.com/elemahana/farm-api/internal/security"
)

type testEnv struct {
	T      *testing.T
	Ctx    context.Context
	Mongo  *mongodb.MongoDBContainer
	Store  *repo.Store
	Cfg    config.Config
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	mc, err := mongodb.Run(ctx, "mongo:6")
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}
	uri, err := mc.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}

	if _, err := log.Init(false); err != nil {
		t.Fatalf("log init: %v", err)
	}

	store, err := repo.NewStore(ctx, uri, "farm_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.EnsureUserIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		Port: "0",
		Env:  "test",
		Auth: config.AuthConfig{
			JWTSecret:  "test_secret",
			TokenTTL:   15,
			CookieName: "elema_jwt",
			CSRFCookie: "_csrf",
		},
		Google: config.GoogleConfig{SuccessRedirect: "http://localhost:3000"},
		CORS:   config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}

	// Redis and Rabbit are not needed here: nil disables rate limiting and
	// the noop publisher swallows events
	h := api.NewHandler(store, cfg, oauth.NewGoogle("", "", "", "test_state"), nil, queue.NewNoop())

	gin.SetMode(gin.TestMode)
	return &testEnv{T: t, Ctx: ctx, Mongo: mc, Store: store, Cfg: cfg, Router: api.NewRouter(h)}
}

func (e *testEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close(e.Ctx)
	}
	if e.Mongo != nil {
		_ = e.Mongo.Terminate(e.Ctx)
	}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

// csrf fetches a fresh secret cookie and matching derived token.
func (e *testEnv) csrf() (*http.Cookie, string) {
	e.T.Helper()
	w := e.do("GET", "/csrf-token", "", nil)
	if w.Code != http.StatusOK {
		e.T.Fatalf("csrf-token: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			CsrfToken string `json:"csrfToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Data.CsrfToken == "" {
		e.T.Fatalf("csrf-token resp: %v %s", err, w.Body.String())
	}
	var secret *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == e.Cfg.Auth.CSRFCookie {
			secret = ck
		}
	}
	if secret == nil {
		e.T.Fatal("no csrf secret cookie set")
	}
	return secret, resp.Data.CsrfToken
}

// unsafe performs a state-changing request with a valid CSRF pair attached.
func (e *testEnv) unsafe(method, path, body string, hdr map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.T.Helper()
	secret, token := e.csrf()
	if hdr == nil {
		hdr = map[string]string{}
	}
	hdr["X-CSRF-Token"] = token
	return e.do(method, path, body, hdr, append(cookies, secret)...)
}

type authResp struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    struct {
		ID    string   `json:"id"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	} `json:"user"`
}

func (e *testEnv) register(email, password string) authResp {
	e.T.Helper()
	w := e.unsafe("POST", "/auth/register",
		`{"email":"`+email+`","password":"`+password+`","name":"T"}`, nil)
	if w.Code != http.StatusCreated {
		e.T.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	var ar authResp
	if err := json.Unmarshal(w.Body.Bytes(), &ar); err != nil || ar.Token == "" {
		e.T.Fatalf("register resp: %v %s", err, w.Body.String())
	}
	return ar
}

// createUser inserts a user directly and mints a token for it, bypassing the
// HTTP flow; used for role fixtures like admins and managers.
func (e *testEnv) createUser(email string, roles ...domain.Role) (*domain.User, string) {
	e.T.Helper()
	hash, err := security.HashPassword("FixtureP@ss1")
	if err != nil {
		e.T.Fatal(err)
	}
	u := &domain.User{Email: email, PasswordHash: hash, Roles: roles}
	if err := e.Store.CreateUser(e.Ctx, u); err != nil {
		e.T.Fatalf("create user: %v", err)
	}
	tok, err := security.MakeAccess(e.Cfg.Auth.JWTSecret, u, 15*time.Minute)
	if err != nil {
		e.T.Fatal(err)
	}
	return u, tok
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
