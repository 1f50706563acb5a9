package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"figueroa/trainer-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserNotFound = errors.New("no user exists with that email")
	// ErrTooManyAttempts means the trailing-window issuance limit was hit.
	ErrTooManyAttempts = errors.New("too many recovery attempts, wait before retrying")
	// ErrCodeInvalid covers wrong, expired and already-consumed codes alike.
	ErrCodeInvalid = errors.New("invalid or expired recovery code")
	// ErrVerificationRequired means a reset without a code was attempted while
	// no verified, unconsumed, unexpired code exists for the email.
	ErrVerificationRequired = errors.New("code verification required before resetting the password")
)

// MailEnqueuer is the slice of the mail dispatcher the recovery flow needs.
// Enqueue must never block: it reports whether the task was accepted.
type MailEnqueuer interface {
	Enqueue(to, code string) bool
}

// RecoveryIssue is what a successful recovery request reports back.
type RecoveryIssue struct {
	EmailQueued bool
	CooldownMs  int64
	Reused      bool
}

// RecoveryService implements the password-reset lifecycle: code issuance with
// rate limiting and cooldown reuse, verification, and consumption.
type RecoveryService interface {
	RequestReset(ctx context.Context, email string) (*RecoveryIssue, error)
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type recoveryService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	mail      MailEnqueuer
	policy    repository.IssuePolicy
	now       func() time.Time
}

// NewRecoveryService wires the recovery flow. The clock is injectable so the
// expiry and cooldown boundaries can be pinned down in tests.
func NewRecoveryService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	mail MailEnqueuer,
	policy repository.IssuePolicy,
	now func() time.Time,
) RecoveryService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.AttemptWindow <= 0 {
		policy.AttemptWindow = 10 * time.Minute
	}
	if policy.Cooldown <= 0 {
		policy.Cooldown = 60 * time.Second
	}
	if policy.CodeTTL <= 0 {
		policy.CodeTTL = 10 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &recoveryService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mail:      mail,
		policy:    policy,
		now:       now,
	}
}

// RequestReset issues (or reuses) a recovery code for the email and hands the
// send to the background dispatcher. The caller gets an answer as soon as the
// issuance is committed; delivery success or failure never reaches them.
func (s *recoveryService) RequestReset(ctx context.Context, email string) (*RecoveryIssue, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ValidationError("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	issue, err := s.resetRepo.Issue(ctx, user.ID, email, mintCode(), s.now(), s.policy)
	if err != nil {
		if errors.Is(err, repository.ErrRateLimited) {
			return nil, ErrTooManyAttempts
		}
		return nil, err
	}

	queued := s.mail.Enqueue(email, issue.Reset.Code)
	return &RecoveryIssue{
		EmailQueued: queued,
		CooldownMs:  s.policy.Cooldown.Milliseconds(),
		Reused:      issue.Reused,
	}, nil
}

// VerifyCode marks the matching code verified. Repeating the same correct
// submission succeeds again without creating further state.
func (s *recoveryService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return ValidationError("email and code are required")
	}

	_, err := s.resetRepo.MarkVerified(ctx, email, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	return nil
}

// ResetPassword commits a new password. With a code it verifies in the same
// step; without one a previously verified, still-valid code must exist. The
// password write always precedes marking the code consumed, so a consumed row
// implies the password really changed.
func (s *recoveryService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ValidationError("email is required")
	}
	if len(newPassword) < 6 {
		return ValidationError("password must be at least 6 characters")
	}

	now := s.now()
	if code != "" {
		if _, err := s.resetRepo.MarkVerified(ctx, email, code, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCodeInvalid
			}
			return err
		}
	} else {
		ok, err := s.resetRepo.HasVerifiedValid(ctx, email, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVerificationRequired
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	return s.resetRepo.Consume(ctx, email, s.now())
}

// mintCode draws a 6-digit code uniformly from [100000, 999999].
func mintCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
