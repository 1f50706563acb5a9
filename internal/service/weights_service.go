package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"
)

var ErrWeightEntryNotFound = errors.New("tracked exercise not found")

// WeightsService tracks the working weight a user lifts per exercise.
// Each (user, exercise) pair keeps the current weight plus the single value it
// replaced, so clients can show progress since the last update.
type WeightsService interface {
	ListMine(ctx context.Context, userID uint) ([]domain.UserExercise, error)
	Track(ctx context.Context, userID uint, exerciseID, exerciseName string, weight float64) (*domain.UserExercise, error)
	UpdateWeight(ctx context.Context, userID uint, exerciseID string, weight float64) (*domain.UserExercise, error)
	Untrack(ctx context.Context, userID uint, exerciseID string) error
}

type weightsService struct {
	weightRepo repository.UserExerciseRepository
	now        func() time.Time
}

func NewWeightsService(weightRepo repository.UserExerciseRepository) WeightsService {
	return &weightsService{weightRepo: weightRepo, now: time.Now}
}

func (s *weightsService) ListMine(ctx context.Context, userID uint) ([]domain.UserExercise, error) {
	return s.weightRepo.ListByUser(ctx, userID)
}

func (s *weightsService) Track(ctx context.Context, userID uint, exerciseID, exerciseName string, weight float64) (*domain.UserExercise, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	exerciseName = strings.TrimSpace(exerciseName)
	if exerciseID == "" {
		return nil, ValidationError("exercise id is required")
	}
	if exerciseName == "" {
		return nil, ValidationError("exercise name is required")
	}
	if weight < 0 {
		return nil, ValidationError("weight cannot be negative")
	}
	return s.weightRepo.Upsert(ctx, userID, exerciseID, exerciseName, weight, s.now())
}

func (s *weightsService) UpdateWeight(ctx context.Context, userID uint, exerciseID string, weight float64) (*domain.UserExercise, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	if exerciseID == "" {
		return nil, ValidationError("exercise id is required")
	}
	if weight < 0 {
		return nil, ValidationError("weight cannot be negative")
	}
	entry, err := s.weightRepo.UpdateWeight(ctx, userID, exerciseID, weight, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWeightEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *weightsService) Untrack(ctx context.Context, userID uint, exerciseID string) error {
	err := s.weightRepo.Delete(ctx, userID, strings.TrimSpace(exerciseID))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWeightEntryNotFound
	}
	return err
}
