package http

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/elemahana/farm-api/internal/domain"
)

// gin context keys
const (
	authUserKey   = "authUser"
	requestIDKey  = "requestID"
	csrfSecretKey = "csrfSecret"
	listFilterKey = "listFilter"
)

// CurrentUser returns the authenticated identity attached by Authenticate,
// or nil when the request is anonymous.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(authUserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// ReqID returns the correlation id assigned by RequestID.
func ReqID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// ListFilter returns the ownership filter injected by FilterUserResources.
// An empty (non-nil) filter means unrestricted.
func ListFilter(c *gin.Context) bson.M {
	if v, ok := c.Get(listFilterKey); ok {
		if f, ok := v.(bson.M); ok {
			return f
		}
	}
	return bson.M{}
}
