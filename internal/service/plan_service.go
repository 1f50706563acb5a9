package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"
)

var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrAssignmentNotFound = errors.New("plan assignment not found")
)

// PlanInput carries the writable fields of a plan.
type PlanInput struct {
	Title       string
	Description *string
	Content     string
	Schedule    domain.PlanSchedule
	Category    domain.PlanCategory
}

// PlanService manages the admin plan catalog and user assignments.
type PlanService interface {
	Create(ctx context.Context, input PlanInput, createdBy *uint) (*domain.Plan, error)
	Get(ctx context.Context, id uint) (*domain.Plan, error)
	List(ctx context.Context, page, limit int, category *domain.PlanCategory) ([]domain.Plan, int64, error)
	Update(ctx context.Context, id uint, input PlanInput) (*domain.Plan, error)
	Delete(ctx context.Context, id uint) error

	Assign(ctx context.Context, userID, planID uint) (*domain.UserPlan, error)
	Unassign(ctx context.Context, userID, planID uint) error
	PlansForUser(ctx context.Context, userID uint) ([]domain.UserPlan, error)
	Assignees(ctx context.Context, planID uint) ([]domain.User, int64, error)
}

type planService struct {
	planRepo repository.PlanRepository
	userRepo repository.UserRepository
}

func NewPlanService(planRepo repository.PlanRepository, userRepo repository.UserRepository) PlanService {
	return &planService{planRepo: planRepo, userRepo: userRepo}
}

func (s *planService) validate(input *PlanInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if input.Title == "" {
		return ValidationError("plan title is required")
	}
	if input.Content == "" {
		return ValidationError("plan content is required")
	}
	if input.Category == "" {
		input.Category = domain.PlanTraining
	}
	if !domain.ValidPlanCategory(input.Category) {
		return ValidationError("category must be training or nutrition")
	}
	return nil
}

func (s *planService) Create(ctx context.Context, input PlanInput, createdBy *uint) (*domain.Plan, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}
	plan := &domain.Plan{
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		Schedule:    input.Schedule,
		Category:    input.Category,
		CreatedByID: createdBy,
	}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, plan.ID)
}

func (s *planService) Get(ctx context.Context, id uint) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) List(ctx context.Context, page, limit int, category *domain.PlanCategory) ([]domain.Plan, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if category != nil && !domain.ValidPlanCategory(*category) {
		return nil, 0, ValidationError("category must be training or nutrition")
	}
	return s.planRepo.List(ctx, page, limit, category)
}

func (s *planService) Update(ctx context.Context, id uint, input PlanInput) (*domain.Plan, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Content = input.Content
	existing.Schedule = input.Schedule
	existing.Category = input.Category

	if err := s.planRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.planRepo.GetByID(ctx, id)
}

func (s *planService) Delete(ctx context.Context, id uint) error {
	err := s.planRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// Assign links a plan to a user. Re-assigning an already linked pair refreshes
// the assignment instead of failing.
func (s *planService) Assign(ctx context.Context, userID, planID uint) (*domain.UserPlan, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	if _, err := s.Get(ctx, planID); err != nil {
		return nil, err
	}

	assignment, err := s.planRepo.Assign(ctx, userID, planID, domain.AssignmentActive, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *planService) Unassign(ctx context.Context, userID, planID uint) error {
	err := s.planRepo.Unassign(ctx, userID, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

func (s *planService) PlansForUser(ctx context.Context, userID uint) ([]domain.UserPlan, error) {
	return s.planRepo.PlansForUser(ctx, userID)
}

func (s *planService) Assignees(ctx context.Context, planID uint) ([]domain.User, int64, error) {
	if _, err := s.Get(ctx, planID); err != nil {
		return nil, 0, err
	}
	users, err := s.planRepo.Assignees(ctx, planID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.planRepo.AssignmentCount(ctx, planID)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}
