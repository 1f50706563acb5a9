package service

import (
	"context"
	"errors"
	"strings"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"
)

var ErrContactNotFound = errors.New("contact message not found")

// ContactService handles the public contact form and the admin inbox.
type ContactService interface {
	Submit(ctx context.Context, name, email, message string) (*domain.Contact, error)
	List(ctx context.Context, limit int) ([]domain.Contact, error)
	Get(ctx context.Context, id uint) (*domain.Contact, error)
	Delete(ctx context.Context, id uint) error
}

type contactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

func (s *contactService) Submit(ctx context.Context, name, email, message string) (*domain.Contact, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	message = strings.TrimSpace(message)

	if name == "" {
		return nil, ValidationError("name is required")
	}
	if !domain.ValidEmail(email) {
		return nil, ValidationError("invalid email")
	}
	if len(message) < 10 {
		return nil, ValidationError("message must be at least 10 characters")
	}

	contact := &domain.Contact{Name: name, Email: email, Message: message}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.contactRepo.List(ctx, limit)
}

func (s *contactService) Get(ctx context.Context, id uint) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id uint) error {
	err := s.contactRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}
