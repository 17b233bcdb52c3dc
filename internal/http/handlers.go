package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/elemahana/farm-api/internal/apperr"
	"github.com/elemahana/farm-api/internal/config"
	"github.com/elemahana/farm-api/internal/domain"
	"github.com/elemahana/farm-api/internal/helper"
	"github.com/elemahana/farm-api/internal/log"
	"github.com/elemahana/farm-api/internal/metrics"
	"github.com/elemahana/farm-api/internal/oauth"
	"github.com/elemahana/farm-api/internal/queue"
	"github.com/elemahana/farm-api/internal/repo"
	"github.com/elemahana/farm-api/internal/security"
)

type Handler struct {
	Store  *repo.Store
	Cfg    config.Config
	Google *oauth.GoogleOAuth
	Redis  *repo.Redis
	Events queue.Publisher
}

func NewHandler(store *repo.Store, cfg config.Config, google *oauth.GoogleOAuth, rds *repo.Redis, pub queue.Publisher) *Handler {
	return &Handler{Store: store, Cfg: cfg, Google: google, Redis: rds, Events: pub}
}

func (h *Handler) tokenTTL() time.Duration {
	return time.Duration(h.Cfg.Auth.TokenTTL) * time.Minute
}

func (h *Handler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cfg.Auth.CookieName, token, int(h.tokenTTL().Seconds()), "/", "", h.Cfg.IsProd(), true)
}

func (h *Handler) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cfg.Auth.CookieName, "", -1, "/", "", h.Cfg.IsProd(), true)
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register godoc
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, apperr.Validation("invalid json").WithCause(err))
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		Fail(c, apperr.Validation("Email & password required"))
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	u := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleUser},
	}
	// the unique email index decides duplicate registrations, racing inserts included
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		Fail(c, err)
		return
	}

	tok, err := security.MakeAccess(h.Cfg.Auth.JWTSecret, u, h.tokenTTL())
	if err != nil {
		Fail(c, err)
		return
	}
	h.setAuthCookie(c, tok)

	reqID := ReqID(c)
	go h.Events.Publish(c.Request.Context(), h.Cfg.EventsExchange, "user.registered",
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name}, reqID)

	log.WithDD(c.Request.Context(), log.L()).Info("user registered",
		zap.String("request_id", reqID), zap.String("email_hash", helper.Hash8(u.Email)))

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": tok, "user": u.Public()})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, apperr.Validation("invalid json").WithCause(err))
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		Fail(c, apperr.Validation("Email & password required"))
		return
	}

	u, err := h.Store.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		Fail(c, err)
		return
	}
	// one message for every failure mode: unknown email, federation-only
	// account, wrong password
	if u == nil || u.PasswordHash == "" || !security.CheckPassword(u.PasswordHash, in.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		Fail(c, apperr.Auth("Invalid credentials"))
		return
	}

	tok, err := security.MakeAccess(h.Cfg.Auth.JWTSecret, u, h.tokenTTL())
	if err != nil {
		Fail(c, err)
		return
	}
	h.setAuthCookie(c, tok)
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	go h.Events.Publish(c.Request.Context(), h.Cfg.EventsExchange, "user.loggedin",
		queue.UserLoggedIn{UserID: u.ID, Email: u.Email}, ReqID(c))

	c.JSON(http.StatusOK, gin.H{"success": true, "token": tok, "user": u.Public()})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	tok := h.extractToken(c)
	if tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}
	claims, err := security.ParseAccess(h.Cfg.Auth.JWTSecret, tok)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}
	oid, err := primitive.ObjectIDFromHex(claims.UID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), oid)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// GoogleStart godoc
// @Summary Redirect to the Google consent screen
// @Tags auth
// @Success 307
// @Router /auth/google [get]
func (h *Handler) GoogleStart(c *gin.Context) {
	state := h.Google.MakeState(uuid.NewString())
	c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthURL(state))
}

// GoogleCallback completes the OAuth flow: exchanges the grant, maps the
// Google profile onto a local account (creating or linking as needed), issues
// the session token and bounces to the configured frontend URL. Every failure
// path ends at /auth/google/failure; none falls through authenticated.
func (h *Handler) GoogleCallback(c *gin.Context) {
	fail := func(reason string, err error) {
		log.WithDD(c.Request.Context(), log.L()).Warn("google oauth failed",
			zap.String("request_id", ReqID(c)), zap.String("reason", reason), zap.Error(err))
		c.Redirect(http.StatusFound, "/auth/google/failure")
	}

	if errParam := c.Query("error"); errParam != "" {
		fail("provider error: "+errParam, nil)
		return
	}
	if !h.Google.VerifyState(c.Query("state")) {
		fail("bad state", nil)
		return
	}
	code := c.Query("code")
	if code == "" {
		fail("missing code", nil)
		return
	}

	profile, err := h.Google.ExchangeAndVerify(c.Request.Context(), code)
	if err != nil {
		fail("exchange", err)
		return
	}

	u, err := h.userFromGoogleProfile(c, profile)
	if err != nil {
		fail("user mapping", err)
		return
	}

	tok, err := security.MakeAccess(h.Cfg.Auth.JWTSecret, u, h.tokenTTL())
	if err != nil {
		fail("token", err)
		return
	}
	h.setAuthCookie(c, tok)

	go h.Events.Publish(c.Request.Context(), h.Cfg.EventsExchange, "user.loggedin",
		queue.UserLoggedIn{UserID: u.ID, Email: u.Email}, ReqID(c))

	// success indicator only; the token travels in the cookie, never the URL
	c.Redirect(http.StatusFound, h.Cfg.Google.SuccessRedirect+"?logged_in=true")
}

func (h *Handler) userFromGoogleProfile(c *gin.Context, p *oauth.Profile) (*domain.User, error) {
	ctx := c.Request.Context()
	email := strings.ToLower(p.Email)

	u, err := h.Store.FindUserByProvider(ctx, domain.ProviderGoogle, p.Sub)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	u, err = h.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		// account linking: backfill the federated identity onto the local
		// record; permitted only on an exact match against the email Google
		// asserted for this subject
		if u.Provider == "" {
			if err := h.Store.LinkProvider(ctx, u.ID, domain.ProviderGoogle, p.Sub); err != nil {
				return nil, err
			}
			u.Provider = domain.ProviderGoogle
			u.ProviderID = p.Sub
		}
		return u, nil
	}

	u = &domain.User{
		Email:      email,
		Name:       p.Name,
		Roles:      []domain.Role{domain.RoleUser},
		Provider:   domain.ProviderGoogle,
		ProviderID: p.Sub,
	}
	if err := h.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	go h.Events.Publish(ctx, h.Cfg.EventsExchange, "user.registered",
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name}, ReqID(c))
	return u, nil
}

// GoogleFailure godoc
// @Summary Terminal state for a failed Google login
// @Tags auth
// @Produce json
// @Failure 401 {object} map[string]any
// @Router /auth/google/failure [get]
func (h *Handler) GoogleFailure(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Google authentication failed"})
}

// CSRFToken godoc
// @Summary Fetch a CSRF token for unsafe requests
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /csrf-token [get]
func (h *Handler) CSRFToken(c *gin.Context) {
	secret := c.GetString(csrfSecretKey)
	if secret == "" {
		Fail(c, apperr.New(http.StatusInternalServerError, "CSRF secret unavailable"))
		return
	}
	token, err := security.DeriveCSRFToken(secret)
	if err != nil {
		Fail(c, err)
		return
	}
	// readable mirror for non-AJAX form clients
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("XSRF-TOKEN", token, 0, "/", "", h.Cfg.IsProd(), false)
	Success(c, http.StatusOK, gin.H{"csrfToken": token})
}

// Healthz reports liveness of the service and its mongo dependency.
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
