package postgres

import (
	"context"
	"errors"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// planRepository implements repository.PlanRepository on Postgres.
type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	return translateError(r.db.WithContext(ctx).Create(plan).Error)
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.WithContext(ctx).Preload("CreatedBy").First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, page, limit int, category *domain.PlanCategory) ([]domain.Plan, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Plan{})
	if category != nil {
		base = base.Where("category = ?", *category)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var plans []domain.Plan
	err := base.
		Preload("CreatedBy").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&plans).Error
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *planRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Plan{}).Count(&total).Error
	return total, err
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	res := r.db.WithContext(ctx).Model(&domain.Plan{}).Where("id = ?", plan.ID).
		Updates(map[string]interface{}{
			"title":       plan.Title,
			"description": plan.Description,
			"content":     plan.Content,
			"schedule":    plan.Schedule,
			"category":    plan.Category,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Plan{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Assign upserts on the (user_id, plan_id) unique pair: conflicting inserts
// update status and assigned_at in place.
func (r *planRepository) Assign(ctx context.Context, userID, planID uint, status domain.AssignmentStatus, at time.Time) (*domain.UserPlan, error) {
	assignment := &domain.UserPlan{
		UserID:     userID,
		PlanID:     planID,
		Status:     status,
		AssignedAt: at,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "plan_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": status, "assigned_at": at}),
	}).Create(assignment).Error
	if err != nil {
		return nil, translateError(err)
	}

	var saved domain.UserPlan
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *planRepository) Unassign(ctx context.Context, userID, planID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Delete(&domain.UserPlan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *planRepository) PlansForUser(ctx context.Context, userID uint) ([]domain.UserPlan, error) {
	var assignments []domain.UserPlan
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("assigned_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *planRepository) AssignmentCount(ctx context.Context, planID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserPlan{}).
		Where("plan_id = ?", planID).
		Count(&count).Error
	return count, err
}

func (r *planRepository) Assignees(ctx context.Context, planID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_plans ON user_plans.user_id = users.id").
		Where("user_plans.plan_id = ?", planID).
		Order("user_plans.assigned_at DESC").
		Find(&users).Error
	return users, err
}
