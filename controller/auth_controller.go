// api/controller/auth_controller.go
package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/auth"
	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/util"
)

// CredentialStore resolves a login email to a user ID and password hash.
type CredentialStore interface {
	LookupByEmail(ctx context.Context, email string) (userID, passwordHash string, err error)
}

// TokenIssuer mints a bearer token for an authenticated user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthController serves the token endpoint. It sits outside the governed
// pipeline (there is no identity yet) behind the auth limiter class.
type AuthController struct {
	credentials CredentialStore
	passwords   auth.PasswordVerifier
	tokens      TokenIssuer
}

func NewAuthController(credentials CredentialStore, passwords auth.PasswordVerifier, tokens TokenIssuer) *AuthController {
	return &AuthController{credentials: credentials, passwords: passwords, tokens: tokens}
}

func (ac *AuthController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/token", ac.IssueToken)
}

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "email and password are required", err)
		return
	}

	userID, hash, err := ac.credentials.LookupByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, fintrack_errors.ErrInvalidCredential) {
			// Same message whether the email or the password is wrong.
			util.RespondWithError(c, http.StatusUnauthorized, "invalid credentials", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to verify credentials", err)
		return
	}
	if err := ac.passwords.Verify(hash, req.Password); err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "invalid credentials", err)
		return
	}

	token, err := ac.tokens.Issue(userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
