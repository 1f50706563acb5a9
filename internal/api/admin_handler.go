package api

import (
	"errors"
	"net/http"
	"strconv"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin-side user management and dashboard endpoints.
type AdminHandler struct {
	userService service.UserService
	planService service.PlanService
}

func NewAdminHandler(userService service.UserService, planService service.PlanService) *AdminHandler {
	return &AdminHandler{userService: userService, planService: planService}
}

// AdminUpdateUserRequest is the allow-listed patch body. Absent fields are
// left untouched.
type AdminUpdateUserRequest struct {
	Name         *string `json:"name"`
	Surname      *string `json:"surname"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Username     *string `json:"username"`
	DocumentType *string `json:"documentType"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type AssignPlanRequest struct {
	PlanID uint `json:"planId" binding:"required"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.userService.Stats(c.Request.Context())
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *AdminHandler) Activity(c *gin.Context) {
	items, err := h.userService.Activity(c.Request.Context())
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"activity": items})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := listParams(c, 50)
	users, total, err := h.userService.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"users": users, "pagination": pagination(total, page, limit)})
}

func (h *AdminHandler) SearchUsers(c *gin.Context) {
	users, err := h.userService.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
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

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid update payload")
		return
	}

	update := service.UserAdminUpdate{
		Name:     req.Name,
		Surname:  req.Surname,
		Phone:    req.Phone,
		Email:    req.Email,
		Username: req.Username,
	}
	if req.DocumentType != nil {
		docType := domain.DocumentType(*req.DocumentType)
		update.DocumentType = &docType
	}

	user, err := h.userService.AdminUpdate(c.Request.Context(), id, update)
	if err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "User updated", "user": user})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Role is required")
		return
	}
	user, err := h.userService.SetRole(c.Request.Context(), id, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Role updated", "user": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserMissing) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "User deleted"})
}

// AssignPlan links a plan to a user; re-assigning refreshes the existing link.
func (h *AdminHandler) AssignPlan(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "planId is required")
		return
	}

	assignment, err := h.planService.Assign(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserMissing):
			abortWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "Plan not found")
		default:
			abortServiceError(c, err)
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Plan assigned", "assignment": assignment})
}

func (h *AdminHandler) UnassignPlan(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	planID, valid := parseIDParam(c, "planId")
	if !valid {
		return
	}
	if err := h.planService.Unassign(c.Request.Context(), userID, planID); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan assignment not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Plan unassigned"})
}

// UserPlans lists the plans assigned to a given user.
func (h *AdminHandler) UserPlans(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	assignments, err := h.planService.PlansForUser(c.Request.Context(), userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"plans": assignments})
}
