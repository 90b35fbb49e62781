package petshopserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/petshop-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/petshop-orders-api/internal/shared/errors"
)

const currentUserKey = "petshop.currentUser"

// RequireUser resolves the bearer token to a user or aborts with 401.
func RequireUser(auth userports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			c.Abort()
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireUser; non-admins get 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("authentication required"))
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c *gin.Context) (*userdomain.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*userdomain.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
