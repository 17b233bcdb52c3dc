package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/elemahana/farm-api/internal/apperr"
	"github.com/elemahana/farm-api/internal/domain"
	"github.com/elemahana/farm-api/internal/log"
	"github.com/elemahana/farm-api/internal/metrics"
	"github.com/elemahana/farm-api/internal/security"
)

// RequestID assigns a correlation id and echoes it as X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// AccessLog emits one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithDD(c.Request.Context(), log.L()).Info("http request",
			zap.String("request_id", ReqID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// Metrics feeds the prometheus collectors.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).
			Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RateLimit applies a fixed-window per-IP limit on the tagged endpoint group.
// A nil redis client disables limiting (tests, local runs).
func (h *Handler) RateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Redis == nil || h.Cfg.RateLimitPerMin <= 0 {
			c.Next()
			return
		}
		key := "rl:" + scope + ":" + c.ClientIP()
		if !h.Redis.Allow(c.Request.Context(), key, h.Cfg.RateLimitPerMin, time.Minute) {
			Fail(c, apperr.New(http.StatusTooManyRequests, "Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CSRFProtect implements double-submit-cookie protection. The HTTP-only secret
// cookie is planted on first contact; unsafe methods must then echo a token
// derived from it in X-CSRF-Token. Runs before authentication so the auth
// endpoints themselves are covered.
func (h *Handler) CSRFProtect() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, err := c.Cookie(h.Cfg.Auth.CSRFCookie)
		fresh := err != nil || secret == ""
		if fresh {
			secret, err = security.NewCSRFSecret()
			if err != nil {
				Fail(c, err)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(h.Cfg.Auth.CSRFCookie, secret, 0, "/", "", h.Cfg.IsProd(), true)
		}
		c.Set(csrfSecretKey, secret)

		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		token := c.GetHeader("X-CSRF-Token")
		if fresh || token == "" || !security.VerifyCSRFToken(secret, token) {
			metrics.CSRFRejected.Inc()
			Fail(c, apperr.CSRF())
			return
		}
		c.Next()
	}
}

// extractToken prefers the Authorization header and falls back to the session cookie.
func (h *Handler) extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if tok, err := c.Cookie(h.Cfg.Auth.CookieName); err == nil {
		return tok
	}
	return ""
}

// Authenticate verifies the bearer token and attaches the user record to the
// request. Malformed and expired tokens produce the same client-visible 401;
// the distinction only reaches the debug log.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := h.extractToken(c)
		if tok == "" {
			Fail(c, apperr.Auth("Not authenticated"))
			return
		}
		claims, err := security.ParseAccess(h.Cfg.Auth.JWTSecret, tok)
		if err != nil {
			log.L().Debug("token verification failed",
				zap.String("request_id", ReqID(c)), zap.Error(err))
			Fail(c, apperr.Auth("Not authenticated").WithCause(err))
			return
		}
		oid, err := primitive.ObjectIDFromHex(claims.UID)
		if err != nil {
			Fail(c, apperr.Auth("Not authenticated").WithCause(err))
			return
		}
		u, err := h.Store.FindUserByID(c.Request.Context(), oid)
		if err != nil {
			Fail(c, err)
			return
		}
		if u == nil {
			// issued to a user that no longer exists; tokens are not revocable
			Fail(c, apperr.Auth("Not authenticated"))
			return
		}
		c.Set(authUserKey, u)
		c.Next()
	}
}

// Authorize passes when the authenticated identity holds at least one of the
// given roles. Must run after Authenticate.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			Fail(c, apperr.Auth("Not authenticated"))
			return
		}
		if !u.HasAnyRole(roles...) {
			Fail(c, apperr.Forbidden("Forbidden: insufficient role"))
			return
		}
		c.Next()
	}
}

// ResourceOptions describes how ownership is recorded on a resource type.
type ResourceOptions struct {
	OwnerField    string // document field holding the owning user's id
	EmailField    string // document field correlating ownership by email
	AllowManagers bool   // managers may act on resources they do not own
}

// AuthorizeResource gates single-resource operations. Requests without an :id
// parameter pass through (collection-level access is constrained by
// FilterUserResources instead). Admins bypass every check. Otherwise the
// caller must match the resource's owner field or email field, or hold the
// manager role where the options permit it; resources carrying no ownership
// signal at all are manager-only.
func (h *Handler) AuthorizeResource(coll string, opts ResourceOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			Fail(c, apperr.Auth("Not authenticated"))
			return
		}
		idParam := c.Param("id")
		if idParam == "" {
			c.Next()
			return
		}
		id, err := primitive.ObjectIDFromHex(idParam)
		if err != nil {
			Fail(c, apperr.Validation("Invalid ID format"))
			return
		}
		doc, err := h.Store.FindResourceByID(c.Request.Context(), coll, id)
		if err != nil {
			Fail(c, err)
			return
		}
		if doc == nil {
			Fail(c, apperr.NotFound("Resource"))
			return
		}
		if u.IsAdmin() {
			c.Next()
			return
		}

		owned := false
		if opts.OwnerField != "" {
			if owner, ok := doc[opts.OwnerField]; ok {
				owned = true
				if oid, ok := owner.(primitive.ObjectID); ok && oid == u.ID {
					c.Next()
					return
				}
			}
		}
		if opts.EmailField != "" {
			if email, ok := doc[opts.EmailField].(string); ok && email != "" {
				owned = true
				if email == u.Email {
					c.Next()
					return
				}
			}
		}
		if opts.AllowManagers && u.HasRole(domain.RoleManager) {
			c.Next()
			return
		}
		if !owned && u.HasRole(domain.RoleManager) {
			c.Next()
			return
		}
		Fail(c, apperr.Forbidden("Forbidden: not your resource"))
	}
}

// FilterUserResources scopes list endpoints: non-admin callers get an
// ownership filter injected into the context for the handler's query; admins
// see everything.
func FilterUserResources(opts ResourceOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			Fail(c, apperr.Auth("Not authenticated"))
			return
		}
		filter := bson.M{}
		if !u.IsAdmin() {
			switch {
			case opts.OwnerField != "":
				filter[opts.OwnerField] = u.ID
			case opts.EmailField != "":
				filter[opts.EmailField] = u.Email
			}
		}
		c.Set(listFilterKey, filter)
		c.Next()
	}
}
