package petshopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/petshop-orders-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/petshop-orders-api/internal/shared/errors"
)

// AuthAPI serves sign-in for the dashboard and customers.
type AuthAPI struct {
	service userports.Service
}

// NewAuthAPI wires dependencies.
func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /api/auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	session, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromSession(session))
}

// Get /api/auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}
