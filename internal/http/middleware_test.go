package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/elemahana/farm-api/internal/domain"
)

func testCtx(t *testing.T, method string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/x", nil)
	return c, w
}

func TestAuthorize_RequiresIdentity(t *testing.T) {
	c, w := testCtx(t, http.MethodGet)
	Authorize(domain.RoleUser)(c)
	if !c.IsAborted() || w.Code != http.StatusUnauthorized {
		t.Fatalf("want abort 401, got %d", w.Code)
	}
}

func TestAuthorize_RoleIntersection(t *testing.T) {
	u := &domain.User{ID: primitive.NewObjectID(), Roles: []domain.Role{domain.RoleUser}}

	c, _ := testCtx(t, http.MethodGet)
	c.Set(authUserKey, u)
	Authorize(domain.RoleUser, domain.RoleManager)(c)
	if c.IsAborted() {
		t.Fatal("intersecting roles must pass")
	}

	c, w := testCtx(t, http.MethodGet)
	c.Set(authUserKey, u)
	Authorize(domain.RoleAdmin)(c)
	if !c.IsAborted() || w.Code != http.StatusForbidden {
		t.Fatalf("want abort 403, got %d", w.Code)
	}
}

func TestFilterUserResources_ScopesByOwner(t *testing.T) {
	u := &domain.User{ID: primitive.NewObjectID(), Email: "u@example.com", Roles: []domain.Role{domain.RoleUser}}

	c, _ := testCtx(t, http.MethodGet)
	c.Set(authUserKey, u)
	FilterUserResources(ResourceOptions{OwnerField: "userId"})(c)
	f := ListFilter(c)
	if f["userId"] != u.ID {
		t.Fatalf("owner filter missing: %v", f)
	}

	c, _ = testCtx(t, http.MethodGet)
	c.Set(authUserKey, u)
	FilterUserResources(ResourceOptions{EmailField: "email"})(c)
	if f := ListFilter(c); f["email"] != u.Email {
		t.Fatalf("email filter missing: %v", f)
	}
}

func TestFilterUserResources_AdminUnfiltered(t *testing.T) {
	admin := &domain.User{ID: primitive.NewObjectID(), Roles: []domain.Role{domain.RoleAdmin}}
	c, _ := testCtx(t, http.MethodGet)
	c.Set(authUserKey, admin)
	FilterUserResources(ResourceOptions{OwnerField: "userId"})(c)
	if f := ListFilter(c); len(f) != 0 {
		t.Fatalf("admin filter must be empty, got %v", f)
	}
}

func TestRequestID_Assigned(t *testing.T) {
	c, w := testCtx(t, http.MethodGet)
	RequestID()(c)
	if ReqID(c) == "" {
		t.Fatal("request id must be set")
	}
	if w.Header().Get("X-Request-Id") != ReqID(c) {
		t.Fatal("request id must be echoed in the response header")
	}
}

func TestRequestID_PropagatesInbound(t *testing.T) {
	c, _ := testCtx(t, http.MethodGet)
	c.Request.Header.Set("X-Request-Id", "abc-123")
	RequestID()(c)
	if ReqID(c) != "abc-123" {
		t.Fatalf("inbound id must win, got %q", ReqID(c))
	}
}
