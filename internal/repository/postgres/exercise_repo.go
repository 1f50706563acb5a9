package postgres

import (
	"context"
	"errors"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"gorm.io/gorm"
)

// exerciseRepository implements repository.ExerciseRepository on Postgres.
type exerciseRepository struct {
	db *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	return translateError(r.db.WithContext(ctx).Create(exercise).Error)
}

func (r *exerciseRepository) GetByID(ctx context.Context, id uint) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("VariantExercise").
		First(&exercise, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *exerciseRepository) List(ctx context.Context, page, limit int) ([]domain.Exercise, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Exercise{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exercises []domain.Exercise
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("VariantExercise").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&exercises).Error
	if err != nil {
		return nil, 0, err
	}
	return exercises, total, nil
}

func (r *exerciseRepository) SearchByName(ctx context.Context, query string, limit int) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+query+"%").
		Order("name").
		Limit(limit).
		Find(&exercises).Error
	return exercises, err
}

func (r *exerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	res := r.db.WithContext(ctx).Model(&domain.Exercise{}).Where("id = ?", exercise.ID).
		Updates(map[string]interface{}{
			"name":                exercise.Name,
			"category":            exercise.Category,
			"sets":                exercise.Sets,
			"reps":                exercise.Reps,
			"notes":               exercise.Notes,
			"youtube_url":         exercise.YouTubeURL,
			"suggested_weight":    exercise.SuggestedWeight,
			"variant_exercise_id": exercise.VariantExerciseID,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *exerciseRepository) SetVideoObjectKey(ctx context.Context, id uint, key string) error {
	res := r.db.WithContext(ctx).Model(&domain.Exercise{}).Where("id = ?", id).
		Update("video_object_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *exerciseRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Exercise{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
