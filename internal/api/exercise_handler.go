package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise catalog. Reads are open to any
// authenticated user; writes are admin-only (enforced in the route table).
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

type ExerciseRequest struct {
	Name              string   `json:"name" binding:"required"`
	Category          *string  `json:"category"`
	Sets              *int     `json:"sets"`
	Reps              *int     `json:"reps"`
	Notes             *string  `json:"notes"`
	YouTubeURL        *string  `json:"youtubeUrl"`
	SuggestedWeight   *float64 `json:"suggestedWeight"`
	VariantExerciseID *uint    `json:"variantExerciseId"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

func (r *ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:              r.Name,
		Category:          r.Category,
		Sets:              r.Sets,
		Reps:              r.Reps,
		Notes:             r.Notes,
		YouTubeURL:        r.YouTubeURL,
		SuggestedWeight:   r.SuggestedWeight,
		VariantExerciseID: r.VariantExerciseID,
	}
}

func (h *ExerciseHandler) Create(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Exercise name is required")
		return
	}

	var createdBy *uint
	if userID, err := getUserIDFromContext(c); err == nil {
		createdBy = &userID
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), req.toInput(), createdBy)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "Exercise created", "exercise": exercise})
}

func (h *ExerciseHandler) Get(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	exercise, err := h.exerciseService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"exercise": exercise})
}

func (h *ExerciseHandler) List(c *gin.Context) {
	page, limit := listParams(c, 100)
	exercises, total, err := h.exerciseService.List(c.Request.Context(), page, limit)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"exercises": exercises, "pagination": pagination(total, page, limit)})
}

func (h *ExerciseHandler) Search(c *gin.Context) {
	exercises, err := h.exerciseService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"exercises": exercises})
}

func (h *ExerciseHandler) Update(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Exercise name is required")
		return
	}
	exercise, err := h.exerciseService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Exercise updated", "exercise": exercise})
}

func (h *ExerciseHandler) Delete(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	if err := h.exerciseService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Exercise deleted"})
}

// CreateVideoUpload returns a presigned PUT URL the admin client uploads the
// demo video to directly.
func (h *ExerciseHandler) CreateVideoUpload(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "contentType is required")
		return
	}

	url, objectKey, err := h.exerciseService.CreateVideoUploadURL(c.Request.Context(), id, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"uploadUrl": url, "objectKey": objectKey})
}

// Video returns a presigned GET URL for the exercise demo video.
func (h *ExerciseHandler) Video(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	url, err := h.exerciseService.VideoDownloadURL(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, "Exercise not found")
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, "Exercise has no demo video")
		default:
			abortServiceError(c, err)
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"videoUrl": url})
}
