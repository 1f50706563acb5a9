package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the self-service profile endpoints.
type UserHandler struct {
	userService service.UserService
	planService service.PlanService
}

func NewUserHandler(userService service.UserService, planService service.PlanService) *UserHandler {
	return &UserHandler{userService: userService, planService: planService}
}

type UpdateProfileRequest struct {
	Name    string `json:"name" binding:"required"`
	Surname string `json:"surname" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.userService.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Name, surname and phone are required")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.Name, req.Surname, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Account deleted"})
}

// MyPlans lists the plans assigned to the current user.
func (h *UserHandler) MyPlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	assignments, err := h.planService.PlansForUser(c.Request.Context(), userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"plans": assignments})
}
