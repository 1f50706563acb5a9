package postgres

import (
	"context"
	"errors"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"gorm.io/gorm"
)

// contactRepository implements repository.ContactRepository on Postgres.
type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).First(&contact, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Contact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
