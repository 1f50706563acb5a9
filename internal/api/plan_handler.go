package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves the plan catalog. Reads are open to authenticated users;
// writes and assignee listings are admin-only (enforced in the route table).
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type PlanRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description *string             `json:"description"`
	Content     string              `json:"content" binding:"required"`
	Schedule    domain.PlanSchedule `json:"schedule"`
	Category    string              `json:"category"`
}

func (r *PlanRequest) toInput() service.PlanInput {
	return service.PlanInput{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Schedule:    r.Schedule,
		Category:    domain.PlanCategory(r.Category),
	}
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Plan title and content are required")
		return
	}

	var createdBy *uint
	if userID, err := getUserIDFromContext(c); err == nil {
		createdBy = &userID
	}

	plan, err := h.planService.Create(c.Request.Context(), req.toInput(), createdBy)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "Plan created", "plan": plan})
}

func (h *PlanHandler) Get(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"plan": plan})
}

func (h *PlanHandler) List(c *gin.Context) {
	page, limit := listParams(c, 50)

	var category *domain.PlanCategory
	if raw := c.Query("category"); raw != "" {
		cat := domain.PlanCategory(raw)
		category = &cat
	}

	plans, total, err := h.planService.List(c.Request.Context(), page, limit, category)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"plans": plans, "pagination": pagination(total, page, limit)})
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Plan title and content are required")
		return
	}
	plan, err := h.planService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Plan updated", "plan": plan})
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	if err := h.planService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Plan deleted"})
}

func (h *PlanHandler) Assignees(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	users, total, err := h.planService.Assignees(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"users": users, "total": total})
}
