package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// WeightsHandler serves per-user exercise weight tracking. Every route is
// scoped to the authenticated user; there is no cross-user access.
type WeightsHandler struct {
	weightsService service.WeightsService
}

func NewWeightsHandler(weightsService service.WeightsService) *WeightsHandler {
	return &WeightsHandler{weightsService: weightsService}
}

type TrackExerciseRequest struct {
	ExerciseID   string  `json:"exerciseId" binding:"required"`
	ExerciseName string  `json:"exerciseName" binding:"required"`
	Weight       float64 `json:"weight"`
}

type UpdateWeightRequest struct {
	Weight float64 `json:"weight"`
}

func (h *WeightsHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	entries, err := h.weightsService.ListMine(c.Request.Context(), userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"exercises": entries})
}

func (h *WeightsHandler) Track(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req TrackExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "exerciseId and exerciseName are required")
		return
	}

	entry, err := h.weightsService.Track(c.Request.Context(), userID, req.ExerciseID, req.ExerciseName, req.Weight)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Exercise tracked", "exercise": entry})
}

func (h *WeightsHandler) UpdateWeight(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req UpdateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "weight is required")
		return
	}

	entry, err := h.weightsService.UpdateWeight(c.Request.Context(), userID, c.Param("exerciseId"), req.Weight)
	if err != nil {
		if errors.Is(err, service.ErrWeightEntryNotFound) {
			abortWithError(c, http.StatusNotFound, "Tracked exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Weight updated", "exercise": entry})
}

// Admin variants operate on an explicit user id instead of the session.

func (h *WeightsHandler) ListForUser(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	entries, err := h.weightsService.ListMine(c.Request.Context(), userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"exercises": entries})
}

func (h *WeightsHandler) TrackForUser(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req TrackExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "exerciseId and exerciseName are required")
		return
	}
	entry, err := h.weightsService.Track(c.Request.Context(), userID, req.ExerciseID, req.ExerciseName, req.Weight)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Exercise tracked", "exercise": entry})
}

func (h *WeightsHandler) UpdateWeightForUser(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req UpdateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "weight is required")
		return
	}
	entry, err := h.weightsService.UpdateWeight(c.Request.Context(), userID, c.Param("exerciseId"), req.Weight)
	if err != nil {
		if errors.Is(err, service.ErrWeightEntryNotFound) {
			abortWithError(c, http.StatusNotFound, "Tracked exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Weight updated", "exercise": entry})
}

func (h *WeightsHandler) UntrackForUser(c *gin.Context) {
	userID, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	if err := h.weightsService.Untrack(c.Request.Context(), userID, c.Param("exerciseId")); err != nil {
		if errors.Is(err, service.ErrWeightEntryNotFound) {
			abortWithError(c, http.StatusNotFound, "Tracked exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Exercise removed"})
}

func (h *WeightsHandler) Untrack(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.weightsService.Untrack(c.Request.Context(), userID, c.Param("exerciseId")); err != nil {
		if errors.Is(err, service.ErrWeightEntryNotFound) {
			abortWithError(c, http.StatusNotFound, "Tracked exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Exercise removed"})
}
