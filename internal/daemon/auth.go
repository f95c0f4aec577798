package daemon

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lebrely-io/backend/internal/auth"
	"github.com/lebrely-io/backend/internal/models"
)

const tokenTypeBearer = "bearer"

// postSignUp registers a new account with the identity provider and
// creates the linked local record. When the provider requires email
// confirmation the response carries no tokens but is still a 201.
func (s *Server) postSignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := s.Auth.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response := models.SignUpResponse{
		User:                      result.User,
		EmailConfirmationRequired: result.EmailConfirmationRequired,
		TokenType:                 tokenTypeBearer,
	}

	if result.EmailConfirmationRequired {
		response.Message = "User created successfully. Please check your email to confirm your account."
	} else {
		response.Message = "User created and signed in successfully"
		response.AccessToken = result.Session.AccessToken
		response.RefreshToken = result.Session.RefreshToken
	}

	c.JSON(http.StatusCreated, response)
}

// postSignIn exchanges credentials for a token pair and reconciles the
// provider identity to the local record.
func (s *Server) postSignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, session, err := s.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    tokenTypeBearer,
		User:         user,
	})
}

// postSignOut revokes the current session at the provider.
func (s *Server) postSignOut(c *gin.Context) {
	if err := s.Auth.SignOut(c.Request.Context(), accessToken(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Successfully signed out"})
}

// postRefresh exchanges a refresh token for a new token pair.
func (s *Server) postRefresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, session, err := s.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    tokenTypeBearer,
		User:         user,
	})
}

// postResetPassword asks the provider to send a recovery email.
func (s *Server) postResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.Auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Password reset email sent"})
}

// getMe returns the authenticated local user.
func (s *Server) getMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// getMeProfile returns the profile of the authenticated user, requiring
// an active account.
func (s *Server) getMeProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		unauthorized(c, "Not authenticated")
		return
	}

	if decision := auth.Authorize(user, auth.CapabilityActiveAccount); !decision.Allowed {
		unauthorized(c, decision.Reason)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
