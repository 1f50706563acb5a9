package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"
)

type assignmentKey struct {
	userID uint
	planID uint
}

type fakePlanRepo struct {
	mu          sync.Mutex
	plans       map[uint]*domain.Plan
	assignments map[assignmentKey]*domain.UserPlan
	nextID      uint
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:       map[uint]*domain.Plan{},
		assignments: map[assignmentKey]*domain.UserPlan{},
		nextID:      1,
	}
}

func (f *fakePlanRepo) Create(_ context.Context, plan *domain.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan.ID = f.nextID
	f.nextID++
	clone := *plan
	f.plans[plan.ID] = &clone
	return nil
}

func (f *fakePlanRepo) GetByID(_ context.Context, id uint) (*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, found := f.plans[id]
	if !found {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePlanRepo) List(_ context.Context, page, limit int, category *domain.PlanCategory) ([]domain.Plan, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Plan
	for _, p := range f.plans {
		if category != nil && p.Category != *category {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePlanRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.plans)), nil
}

func (f *fakePlanRepo) Update(_ context.Context, plan *domain.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, found := f.plans[plan.ID]; !found {
		return repository.ErrNotFound
	}
	clone := *plan
	f.plans[plan.ID] = &clone
	return nil
}

func (f *fakePlanRepo) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, found := f.plans[id]; !found {
		return repository.ErrNotFound
	}
	delete(f.plans, id)
	return nil
}

func (f *fakePlanRepo) Assign(_ context.Context, userID, planID uint, status domain.AssignmentStatus, at time.Time) (*domain.UserPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, found := f.plans[planID]; !found {
		return nil, repository.ErrForeignKey
	}
	key := assignmentKey{userID, planID}
	if existing, found := f.assignments[key]; found {
		existing.Status = status
		existing.AssignedAt = at
		clone := *existing
		return &clone, nil
	}
	assignment := &domain.UserPlan{UserID: userID, PlanID: planID, Status: status, AssignedAt: at}
	f.assignments[key] = assignment
	clone := *assignment
	return &clone, nil
}

func (f *fakePlanRepo) Unassign(_ context.Context, userID, planID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := assignmentKey{userID, planID}
	if _, found := f.assignments[key]; !found {
		return repository.ErrNotFound
	}
	delete(f.assignments, key)
	return nil
}

func (f *fakePlanRepo) PlansForUser(_ context.Context, userID uint) ([]domain.UserPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.UserPlan
	for key, a := range f.assignments {
		if key.userID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) AssignmentCount(_ context.Context, planID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for key := range f.assignments {
		if key.planID == planID {
			count++
		}
	}
	return count, nil
}

func (f *fakePlanRepo) Assignees(_ context.Context, planID uint) ([]domain.User, error) {
	return nil, nil
}

// --- Tests ---

func newPlanFixture(t *testing.T) (PlanService, *fakePlanRepo, *fakeUserRepo) {
	t.Helper()
	plans := newFakePlanRepo()
	users := newFakeUserRepo()
	err := users.Create(context.Background(), &domain.User{
		Name: "Ana", Surname: "Lopez", Phone: "600111222",
		Email: "ana@example.com", Username: "12345678",
		DocumentType: domain.DocumentDNI, Role: domain.RoleUser, PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return NewPlanService(plans, users), plans, users
}

func TestPlanCreateValidation(t *testing.T) {
	svc, _, _ := newPlanFixture(t)
	ctx := context.Background()

	var validation ValidationError
	if _, err := svc.Create(ctx, PlanInput{Title: " ", Content: "c"}, nil); !errors.As(err, &validation) {
		t.Fatalf("blank title: expected ValidationError, got %v", err)
	}
	if _, err := svc.Create(ctx, PlanInput{Title: "t", Content: ""}, nil); !errors.As(err, &validation) {
		t.Fatalf("blank content: expected ValidationError, got %v", err)
	}
	if _, err := svc.Create(ctx, PlanInput{Title: "t", Content: "c", Category: "yoga"}, nil); !errors.As(err, &validation) {
		t.Fatalf("bad category: expected ValidationError, got %v", err)
	}

	plan, err := svc.Create(ctx, PlanInput{Title: "Hypertrophy Block", Content: "4 days/week"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.Category != domain.PlanTraining {
		t.Errorf("category defaulted to %q, want training", plan.Category)
	}
}

func TestPlanAssignUpserts(t *testing.T) {
	svc, plans, _ := newPlanFixture(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, PlanInput{Title: "Cut", Content: "deficit"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Assign(ctx, 1, plan.ID)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if first.Status != domain.AssignmentActive {
		t.Errorf("status = %q, want active", first.Status)
	}

	// Re-assigning the same pair refreshes, never duplicates.
	if _, err := svc.Assign(ctx, 1, plan.ID); err != nil {
		t.Fatalf("second assign: %v", err)
	}
	count, _ := plans.AssignmentCount(ctx, plan.ID)
	if count != 1 {
		t.Errorf("assignment rows = %d, want 1", count)
	}
}

func TestPlanAssignChecksExistence(t *testing.T) {
	svc, _, _ := newPlanFixture(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, PlanInput{Title: "Cut", Content: "deficit"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Assign(ctx, 999, plan.ID); !errors.Is(err, ErrUserMissing) {
		t.Fatalf("missing user: expected ErrUserMissing, got %v", err)
	}
	if _, err := svc.Assign(ctx, 1, 999); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("missing plan: expected ErrPlanNotFound, got %v", err)
	}
}

func TestPlanUnassign(t *testing.T) {
	svc, _, _ := newPlanFixture(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, PlanInput{Title: "Cut", Content: "deficit"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Assign(ctx, 1, plan.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := svc.Unassign(ctx, 1, plan.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := svc.Unassign(ctx, 1, plan.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("repeat unassign: expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestPlanListCategoryFilter(t *testing.T) {
	svc, _, _ := newPlanFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, PlanInput{Title: "Strength", Content: "x", Category: domain.PlanTraining}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, PlanInput{Title: "Diet", Content: "y", Category: domain.PlanNutrition}, nil); err != nil {
		t.Fatal(err)
	}

	nutrition := domain.PlanNutrition
	plans, total, err := svc.List(ctx, 1, 50, &nutrition)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(plans) != 1 || plans[0].Title != "Diet" {
		t.Errorf("filtered list = %v (total %d), want only the nutrition plan", plans, total)
	}

	bogus := domain.PlanCategory("yoga")
	if _, _, err := svc.List(ctx, 1, 50, &bogus); err == nil {
		t.Error("expected rejection of unknown category filter")
	}
}
