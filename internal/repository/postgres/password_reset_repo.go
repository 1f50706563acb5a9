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

// passwordResetRepository implements repository.PasswordResetRepository.
type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

// Issue runs the whole issuance decision in one transaction. The FOR UPDATE
// read serializes concurrent requests for the same email: the second request
// blocks until the first commits and then sees its row, so at most one code is
// minted per cooldown window.
func (r *passwordResetRepository) Issue(ctx context.Context, userID uint, email, code string, now time.Time, policy repository.IssuePolicy) (*repository.ResetIssue, error) {
	var issue *repository.ResetIssue

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recent []domain.PasswordReset
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ? AND created_at > ?", email, now.Add(-policy.AttemptWindow)).
			Order("created_at DESC").
			Find(&recent).Error
		if err != nil {
			return err
		}

		if len(recent) >= policy.MaxAttempts {
			return repository.ErrRateLimited
		}

		if len(recent) > 0 {
			latest := recent[0]
			if now.Sub(latest.CreatedAt) < policy.Cooldown {
				// Reuse keeps the code and its original expiry but still
				// writes a row, so every request consumes an attempt in the
				// trailing window.
				reuse := &domain.PasswordReset{
					UserID:    userID,
					Email:     email,
					Code:      latest.Code,
					ExpiresAt: latest.ExpiresAt,
					CreatedAt: now,
				}
				if err := tx.Create(reuse).Error; err != nil {
					return translateError(err)
				}
				issue = &repository.ResetIssue{Reset: reuse, Reused: true}
				return nil
			}
		}

		reset := &domain.PasswordReset{
			UserID:    userID,
			Email:     email,
			Code:      code,
			ExpiresAt: now.Add(policy.CodeTTL),
			CreatedAt: now,
		}
		if err := tx.Create(reset).Error; err != nil {
			return translateError(err)
		}
		issue = &repository.ResetIssue{Reset: reset}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *passwordResetRepository) FindValid(ctx context.Context, email, code string, now time.Time) (*domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND used_at IS NULL AND expires_at > ?", email, code, now).
		Order("created_at DESC").
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &reset, nil
}

// MarkVerified flips verified on the matching valid row. Re-submitting the
// same correct code matches the already-verified row again, so the call is
// idempotent.
func (r *passwordResetRepository) MarkVerified(ctx context.Context, email, code string, now time.Time) (*domain.PasswordReset, error) {
	reset, err := r.FindValid(ctx, email, code, now)
	if err != nil {
		return nil, err
	}
	if !reset.Verified {
		res := r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
			Where("id = ? AND used_at IS NULL", reset.ID).
			Update("verified", true)
		if res.Error != nil {
			return nil, res.Error
		}
		reset.Verified = true
	}
	return reset, nil
}

func (r *passwordResetRepository) HasVerifiedValid(ctx context.Context, email string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("email = ? AND verified = true AND used_at IS NULL AND expires_at > ?", email, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Consume stamps used_at on every unconsumed row for the email, including
// cooldown-reuse rows that share the verified code. Called only after the new
// password hash has been committed.
func (r *passwordResetRepository) Consume(ctx context.Context, email string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("email = ? AND used_at IS NULL", email).
		Update("used_at", now).Error
}

func (r *passwordResetRepository) CountRecent(ctx context.Context, email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("email = ? AND created_at > ?", email, since).
		Count(&count).Error
	return count, err
}
