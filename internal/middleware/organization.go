package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXOrganizationID = "X-Organization-ID"
	HeaderXUserID         = "X-User-ID"
	ContextOrgID          = "organization_id"
	ContextUserID         = "user_id"
)

// Organization resolves the tenant from the X-Organization-ID header. Every
// route behind this middleware is organization scoped; a missing or
// malformed id fails the request before any handler runs.
func Organization() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderXOrganizationID)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Code:    http.StatusBadRequest,
				Message: "missing " + HeaderXOrganizationID + " header",
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		orgID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Code:    http.StatusBadRequest,
				Message: "invalid " + HeaderXOrganizationID + " header",
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		c.Set(ContextOrgID, orgID)

		// The acting user is optional; identity and access control live in
		// the upstream gateway.
		if raw := c.GetHeader(HeaderXUserID); raw != "" {
			if userID, err := uuid.Parse(raw); err == nil {
				c.Set(ContextUserID, userID)
			}
		}

		c.Next()
	}
}

// OrgID returns the tenant id set by Organization.
func OrgID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextOrgID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// UserID returns the acting user id, or uuid.Nil when the header is absent.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
