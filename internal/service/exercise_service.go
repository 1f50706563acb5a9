package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"
	"figueroa/trainer-backend/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrVideoNotFound    = errors.New("exercise has no demo video")
)

// ExerciseInput carries the writable fields of a catalog exercise.
type ExerciseInput struct {
	Name              string
	Category          *string
	Sets              *int
	Reps              *int
	Notes             *string
	YouTubeURL        *string
	SuggestedWeight   *float64
	VariantExerciseID *uint
}

// ExerciseService manages the admin exercise catalog, including the optional
// S3-hosted demo video per exercise.
type ExerciseService interface {
	Create(ctx context.Context, input ExerciseInput, createdBy *uint) (*domain.Exercise, error)
	Get(ctx context.Context, id uint) (*domain.Exercise, error)
	List(ctx context.Context, page, limit int) ([]domain.Exercise, int64, error)
	Search(ctx context.Context, query string) ([]domain.Exercise, error)
	Update(ctx context.Context, id uint, input ExerciseInput) (*domain.Exercise, error)
	Delete(ctx context.Context, id uint) error

	CreateVideoUploadURL(ctx context.Context, id uint, contentType string) (url, objectKey string, err error)
	VideoDownloadURL(ctx context.Context, id uint) (string, error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	files        storage.FileStorage
}

func NewExerciseService(exerciseRepo repository.ExerciseRepository, files storage.FileStorage) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo, files: files}
}

func (s *exerciseService) validate(ctx context.Context, input *ExerciseInput, selfID uint) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ValidationError("exercise name is required")
	}
	if input.Sets != nil && (*input.Sets < domain.MinSets || *input.Sets > domain.MaxSets) {
		return ValidationError(fmt.Sprintf("sets must be between %d and %d", domain.MinSets, domain.MaxSets))
	}
	if input.Reps != nil && (*input.Reps < domain.MinReps || *input.Reps > domain.MaxReps) {
		return ValidationError(fmt.Sprintf("reps must be between %d and %d", domain.MinReps, domain.MaxReps))
	}
	if input.SuggestedWeight != nil && *input.SuggestedWeight < 0 {
		return ValidationError("suggested weight cannot be negative")
	}
	if input.YouTubeURL != nil && !domain.ValidYouTubeURL(*input.YouTubeURL) {
		return ValidationError("invalid YouTube URL")
	}
	if input.VariantExerciseID != nil {
		if selfID != 0 && *input.VariantExerciseID == selfID {
			return ValidationError("an exercise cannot be a variant of itself")
		}
		if _, err := s.exerciseRepo.GetByID(ctx, *input.VariantExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ValidationError("the referenced variant exercise does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *exerciseService) Create(ctx context.Context, input ExerciseInput, createdBy *uint) (*domain.Exercise, error) {
	if err := s.validate(ctx, &input, 0); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		Name:              input.Name,
		Category:          input.Category,
		Sets:              input.Sets,
		Reps:              input.Reps,
		Notes:             input.Notes,
		YouTubeURL:        input.YouTubeURL,
		SuggestedWeight:   input.SuggestedWeight,
		VariantExerciseID: input.VariantExerciseID,
		CreatedByID:       createdBy,
	}
	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exercise.ID)
}

func (s *exerciseService) Get(ctx context.Context, id uint) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) List(ctx context.Context, page, limit int) ([]domain.Exercise, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 100
	}
	return s.exerciseRepo.List(ctx, page, limit)
}

func (s *exerciseService) Search(ctx context.Context, query string) ([]domain.Exercise, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, ValidationError("search requires at least 2 characters")
	}
	return s.exerciseRepo.SearchByName(ctx, query, 50)
}

func (s *exerciseService) Update(ctx context.Context, id uint, input ExerciseInput) (*domain.Exercise, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &input, id); err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Category = input.Category
	existing.Sets = input.Sets
	existing.Reps = input.Reps
	existing.Notes = input.Notes
	existing.YouTubeURL = input.YouTubeURL
	existing.SuggestedWeight = input.SuggestedWeight
	existing.VariantExerciseID = input.VariantExerciseID

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, id)
}

func (s *exerciseService) Delete(ctx context.Context, id uint) error {
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	// Best effort: the row is gone either way, a stale object only costs
	// storage.
	if exercise.VideoObjectKey != nil && *exercise.VideoObjectKey != "" {
		if err := s.files.DeleteObject(ctx, *exercise.VideoObjectKey); err != nil {
			log.Printf("ERROR: Failed to delete demo video %s for exercise %d: %v", *exercise.VideoObjectKey, id, err)
		}
	}
	return nil
}

// CreateVideoUploadURL issues a presigned PUT URL for the exercise demo video
// and records the object key the client must upload to.
func (s *exerciseService) CreateVideoUploadURL(ctx context.Context, id uint, contentType string) (string, string, error) {
	if !strings.HasPrefix(contentType, "video/") {
		return "", "", ValidationError("content type must be a video format")
	}
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}

	objectKey := fmt.Sprintf("exercises/%d/%s", id, uuid.NewString())
	url, err := s.files.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}
	if err := s.exerciseRepo.SetVideoObjectKey(ctx, id, objectKey); err != nil {
		return "", "", err
	}
	// A replaced video would otherwise be orphaned under its old key.
	if prev := exercise.VideoObjectKey; prev != nil && *prev != "" {
		if err := s.files.DeleteObject(ctx, *prev); err != nil {
			log.Printf("ERROR: Failed to delete replaced demo video %s for exercise %d: %v", *prev, id, err)
		}
	}
	return url, objectKey, nil
}

func (s *exerciseService) VideoDownloadURL(ctx context.Context, id uint) (string, error) {
	exercise, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if exercise.VideoObjectKey == nil || *exercise.VideoObjectKey == "" {
		return "", ErrVideoNotFound
	}
	return s.files.GeneratePresignedDownloadURL(ctx, *exercise.VideoObjectKey, storage.DefaultPresignedURLExpiry)
}
