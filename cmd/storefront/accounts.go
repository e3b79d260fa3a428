package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/httpx"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

// registerHandler godoc
// @Summary  Register an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body user.RegisterRequest true "account"
// @Success  201 {object} user.AuthResponse
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Router   /auth/register [post]
func registerHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "name, valid email and a password of at least 6 characters are required")
			return
		}
		res, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// loginHandler godoc
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body user.LoginRequest true "credentials"
// @Success  200 {object} user.AuthResponse
// @Failure  401 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /auth/login [post]
func loginHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "email and password are required")
			return
		}
		res, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// getProfileHandler godoc
// @Summary  Get the caller's profile
// @Tags     users
// @Produce  json
// @Success  200 {object} user.User
// @Security BearerAuth
// @Router   /users/profile [get]
func getProfileHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Profile(c.Request.Context(), httpx.AccountID(c))
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// updateProfileHandler godoc
// @Summary  Update the caller's profile
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body user.UpdateProfileRequest true "fields to change"
// @Success  200 {object} user.User
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /users/profile [put]
func updateProfileHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid request body")
			return
		}
		u, err := svc.UpdateProfile(c.Request.Context(), httpx.AccountID(c), req)
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// logoutHandler godoc
// @Summary  Log out
// @Description Tokens are stateless; the client discards its token.
// @Tags     users
// @Produce  json
// @Success  200 {object} map[string]string
// @Security BearerAuth
// @Router   /users/profile [post]
func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// deleteProfileHandler godoc
// @Summary  Delete the caller's account
// @Tags     users
// @Produce  json
// @Success  200 {object} map[string]string
// @Security BearerAuth
// @Router   /users/profile [delete]
func deleteProfileHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), httpx.AccountID(c)); err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
	}
}

// listUsersHandler godoc
// @Summary  List accounts
// @Tags     users
// @Produce  json
// @Success  200 {array} user.User
// @Security BearerAuth
// @Router   /users [get]
func listUsersHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// deleteUserHandler godoc
// @Summary  Delete an account
// @Tags     users
// @Produce  json
// @Param    userId path string true "account id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /users/{userId} [delete]
func deleteUserHandler(svc *user.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("userId")); err != nil {
			httpx.RespondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user removed"})
	}
}
