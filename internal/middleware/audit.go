package middleware

import (
	"github.com/chinhnt-ps/portfolio-be/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditMiddleware assigns a request id and records every mutating call
// by an authenticated user.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		// reads are not audited
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" {
			return
		}

		var userID *uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = &user.ID
			}
		}
		if userID == nil {
			return
		}

		entry := models.AuditLog{
			UserID:    userID,
			RequestID: requestID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&entry).Error
	}
}
