package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"quiz-app-service/internal/app"
)

type authHandler struct {
	auth *app.AuthService
}

func (h *authHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var in app.RegisterInput
	if err := mapInto(&in, &req); err != nil {
		writeError(c, err)
		return
	}

	session, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: session.Token, User: toUserResponse(session.User)})
}

func (h *authHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: session.Token, User: toUserResponse(session.User)})
}

func (h *authHandler) profile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
