package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and the password recovery flow.
type AuthHandler struct {
	authService     service.AuthService
	recoveryService service.RecoveryService
	userService     service.UserService
	cookieSecure    bool
}

func NewAuthHandler(authService service.AuthService, recoveryService service.RecoveryService, userService service.UserService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		recoveryService: recoveryService,
		userService:     userService,
		cookieSecure:    cookieSecure,
	}
}

// --- Request Structs ---

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Surname      string `json:"surname" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required"`
	DocumentType string `json:"documentType" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

type RecoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code"`
	Password string `json:"password" binding:"required,min=6"`
}

// --- Handler Methods ---

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid registration payload: "+err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Surname:      req.Surname,
		Phone:        req.Phone,
		Email:        req.Email,
		Username:     req.Username,
		DocumentType: domain.DocumentType(req.DocumentType),
		Password:     req.Password,
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "Registration successful", "user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, expiry, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		abortServiceError(c, err)
		return
	}

	// HTTP-only cookie for browsers; the token is also returned for API
	// clients that prefer the Authorization header.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(expiry.Seconds()), "/", "", h.cookieSecure, true)

	ok(c, http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	ok(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the profile behind the current session.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.userService.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User no longer exists")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": user})
}

// Recover issues (or reuses) a password-reset code and queues its email.
func (h *AuthHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "A valid email is required")
		return
	}

	issue, err := h.recoveryService.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "No account exists with that email")
		case errors.Is(err, service.ErrTooManyAttempts):
			abortWithError(c, http.StatusTooManyRequests, "Too many recovery attempts. Please wait before retrying.")
		default:
			abortServiceError(c, err)
		}
		return
	}

	ok(c, http.StatusOK, gin.H{
		"message":     "Recovery code sent",
		"emailQueued": issue.EmailQueued,
		"cooldownMs":  issue.CooldownMs,
	})
}

func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Email and code are required")
		return
	}

	if err := h.recoveryService.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, service.ErrCodeInvalid) {
			abortWithError(c, http.StatusBadRequest, "Invalid or expired code")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Code verified"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Email and a new password of at least 6 characters are required")
		return
	}

	err := h.recoveryService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeInvalid):
			abortWithError(c, http.StatusBadRequest, "Invalid or expired code")
		case errors.Is(err, service.ErrVerificationRequired):
			abortWithError(c, http.StatusBadRequest, "Verify your recovery code before resetting the password")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "No account exists with that email")
		default:
			abortServiceError(c, err)
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Password updated"})
}
