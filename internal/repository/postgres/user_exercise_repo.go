package postgres

import (
	"context"
	"errors"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"gorm.io/gorm"
)

// userExerciseRepository implements repository.UserExerciseRepository.
type userExerciseRepository struct {
	db *gorm.DB
}

func NewUserExerciseRepository(db *gorm.DB) repository.UserExerciseRepository {
	return &userExerciseRepository{db: db}
}

func (r *userExerciseRepository) ListByUser(ctx context.Context, userID uint) ([]domain.UserExercise, error) {
	var rows []domain.UserExercise
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Upsert keeps the depth-1 weight history: on conflict the current weight
// moves into previous_weight before the new value is written. Done inside a
// transaction so the shift and the write cannot interleave.
func (r *userExerciseRepository) Upsert(ctx context.Context, userID uint, exerciseID, exerciseName string, weight float64, at time.Time) (*domain.UserExercise, error) {
	var saved domain.UserExercise

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.UserExercise
		err := tx.Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = domain.UserExercise{
				UserID:          userID,
				ExerciseID:      exerciseID,
				ExerciseName:    exerciseName,
				Weight:          weight,
				WeightUpdatedAt: &at,
			}
			return tx.Create(&saved).Error
		case err != nil:
			return err
		}

		previous := existing.Weight
		res := tx.Model(&domain.UserExercise{}).Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"exercise_name":     exerciseName,
				"previous_weight":   previous,
				"weight":            weight,
				"weight_updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		existing.ExerciseName = exerciseName
		existing.PreviousWeight = &previous
		existing.Weight = weight
		existing.WeightUpdatedAt = &at
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *userExerciseRepository) UpdateWeight(ctx context.Context, userID uint, exerciseID string, weight float64, at time.Time) (*domain.UserExercise, error) {
	var saved domain.UserExercise

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.UserExercise
		err := tx.Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNotFound
			}
			return err
		}

		previous := existing.Weight
		res := tx.Model(&domain.UserExercise{}).Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"previous_weight":   previous,
				"weight":            weight,
				"weight_updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		existing.PreviousWeight = &previous
		existing.Weight = weight
		existing.WeightUpdatedAt = &at
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *userExerciseRepository) Delete(ctx context.Context, userID uint, exerciseID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		Delete(&domain.UserExercise{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
