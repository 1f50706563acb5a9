package postgres

import (
	"errors"
	"strings"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres error codes we translate into repository sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Connect opens the Postgres connection and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.PasswordReset{},
		&domain.Exercise{},
		&domain.Plan{},
		&domain.UserPlan{},
		&domain.UserExercise{},
		&domain.Contact{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// translateError maps driver errors onto the repository sentinels. Unique
// violations keep the offending field name, derived from the constraint name
// the way the violated index is named in the domain tags.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &repository.FieldError{Field: fieldFromConstraint(pgErr.ConstraintName)}
		case pgForeignKeyViolation:
			return repository.ErrForeignKey
		}
	}
	return err
}

func fieldFromConstraint(constraint string) string {
	for _, field := range []string{"email", "phone", "username"} {
		if strings.Contains(constraint, field) {
			return field
		}
	}
	return "field"
}
