package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "firebase_uid"
	CtxEmail  = "email"
)

// UserID returns the verified subject id set by the auth middleware, or "".
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}
