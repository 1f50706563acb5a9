package repository

import (
	"context"
	"errors"
	"time"

	"figueroa/trainer-backend/internal/domain"
)

// Sentinel errors shared by all repositories. Handlers translate these into
// the HTTP taxonomy: ErrNotFound → 404, ErrRateLimited → 429, FieldError → 409.
var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	// ErrForeignKey is returned when an insert or update references a row that
	// does not exist (e.g. assigning a plan to a missing user).
	ErrForeignKey = errors.New("invalid reference")
)

// FieldError reports a unique-constraint violation together with the field
// that caused it, so the API can answer 409 naming the offending field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "duplicate value for field " + e.Field
}

// UserRepository is the data-access surface for user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) ([]domain.User, int64, error)
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// ResetIssue is the outcome of a recovery issuance: either a freshly minted
// row, or the still-cooling previous row whose code is reused.
type ResetIssue struct {
	Reset  *domain.PasswordReset
	Reused bool
}

// IssuePolicy carries the tunables the issuance transaction enforces.
type IssuePolicy struct {
	MaxAttempts   int
	AttemptWindow time.Duration
	Cooldown      time.Duration
	CodeTTL       time.Duration
}

// PasswordResetRepository manages recovery-code rows.
//
// Issue performs the rate-limit count, cooldown lookup and row insertion as a
// single transactional read-modify-write, locking the email's rows so two
// concurrent requests cannot both mint codes inside one cooldown window. It
// returns ErrRateLimited when the trailing-window issuance count has reached
// MaxAttempts; in that case no row is created. The candidate code is only used
// when a new row is minted (it is discarded on cooldown reuse).
type PasswordResetRepository interface {
	Issue(ctx context.Context, userID uint, email, code string, now time.Time, policy IssuePolicy) (*ResetIssue, error)
	FindValid(ctx context.Context, email, code string, now time.Time) (*domain.PasswordReset, error)
	MarkVerified(ctx context.Context, email, code string, now time.Time) (*domain.PasswordReset, error)
	HasVerifiedValid(ctx context.Context, email string, now time.Time) (bool, error)
	Consume(ctx context.Context, email string, now time.Time) error
	CountRecent(ctx context.Context, email string, since time.Time) (int64, error)
}

// ExerciseRepository is the data-access surface for the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id uint) (*domain.Exercise, error)
	List(ctx context.Context, page, limit int) ([]domain.Exercise, int64, error)
	SearchByName(ctx context.Context, query string, limit int) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetVideoObjectKey(ctx context.Context, id uint, key string) error
	Delete(ctx context.Context, id uint) error
}

// PlanRepository covers plans and their user assignments.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id uint) (*domain.Plan, error)
	List(ctx context.Context, page, limit int, category *domain.PlanCategory) ([]domain.Plan, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id uint) error

	// Assign upserts the (user, plan) pair: a second assignment updates
	// status and assigned_at instead of creating another row.
	Assign(ctx context.Context, userID, planID uint, status domain.AssignmentStatus, at time.Time) (*domain.UserPlan, error)
	Unassign(ctx context.Context, userID, planID uint) error
	PlansForUser(ctx context.Context, userID uint) ([]domain.UserPlan, error)
	AssignmentCount(ctx context.Context, planID uint) (int64, error)
	Assignees(ctx context.Context, planID uint) ([]domain.User, error)
}

// UserExerciseRepository tracks per-user working weights.
type UserExerciseRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]domain.UserExercise, error)
	// Upsert inserts the (user, exercise) row or, when it already exists,
	// shifts the stored weight into previous_weight before writing the new one.
	Upsert(ctx context.Context, userID uint, exerciseID, exerciseName string, weight float64, at time.Time) (*domain.UserExercise, error)
	UpdateWeight(ctx context.Context, userID uint, exerciseID string, weight float64, at time.Time) (*domain.UserExercise, error)
	Delete(ctx context.Context, userID uint, exerciseID string) error
}

// ContactRepository stores contact-form messages.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id uint) (*domain.Contact, error)
	List(ctx context.Context, limit int) ([]domain.Contact, error)
	Delete(ctx context.Context, id uint) error
}
