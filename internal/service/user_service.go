package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"
)

var ErrUserMissing = errors.New("user not found")

// UserAdminUpdate is the allow-listed field set an administrator may patch on
// a user. Absent pointers leave the field untouched; there is no free-form
// body mutation.
type UserAdminUpdate struct {
	Name         *string
	Surname      *string
	Phone        *string
	Email        *string
	Username     *string
	DocumentType *domain.DocumentType
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers  int64 `json:"totalUsers"`
	ActiveUsers int64 `json:"activeUsers"`
	TotalPlans  int64 `json:"totalPlans"`
}

// ActivityItem is one entry of the admin activity feed.
type ActivityItem struct {
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// UserService covers self-service profile operations and the admin-side user
// management surface.
type UserService interface {
	Profile(ctx context.Context, id uint) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uint, name, surname, phone string) (*domain.User, error)
	DeleteAccount(ctx context.Context, id uint) error

	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error)
	SearchUsers(ctx context.Context, query string) ([]domain.User, error)
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	AdminUpdate(ctx context.Context, id uint, update UserAdminUpdate) (*domain.User, error)
	SetRole(ctx context.Context, id uint, role domain.Role) (*domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
	Activity(ctx context.Context) ([]ActivityItem, error)
}

type userService struct {
	userRepo repository.UserRepository
	planRepo repository.PlanRepository
}

func NewUserService(userRepo repository.UserRepository, planRepo repository.PlanRepository) UserService {
	return &userService{userRepo: userRepo, planRepo: planRepo}
}

func (s *userService) Profile(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile changes the self-service fields only: name, surname, phone.
func (s *userService) UpdateProfile(ctx context.Context, id uint, name, surname, phone string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	phone = strings.TrimSpace(phone)
	if name == "" || surname == "" || phone == "" {
		return nil, ValidationError("name, surname and phone are required")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}

	user.Name = name
	user.Surname = surname
	user.Phone = phone
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, id uint) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserMissing
	}
	return err
}

func (s *userService) Stats(ctx context.Context) (*Stats, error) {
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalPlans, err := s.planRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	// Active means a login within the last 30 days; derived from the most
	// recent page of users, which is enough for the dashboard tile.
	recent, _, err := s.userRepo.List(ctx, 1, 100)
	if err != nil {
		return nil, err
	}
	var active int64
	cutoff := time.Now().AddDate(0, 0, -30)
	for _, u := range recent {
		if u.LastLogin != nil && u.LastLogin.After(cutoff) {
			active++
		}
	}

	return &Stats{TotalUsers: totalUsers, ActiveUsers: active, TotalPlans: totalPlans}, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *userService) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, ValidationError("search requires at least 2 characters")
	}
	users, err := s.userRepo.Search(ctx, query, 20)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.Profile(ctx, id)
}

// AdminUpdate applies the allow-listed patch with full format revalidation.
func (s *userService) AdminUpdate(ctx context.Context, id uint, update UserAdminUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, ValidationError("name cannot be empty")
		}
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Surname != nil {
		if strings.TrimSpace(*update.Surname) == "" {
			return nil, ValidationError("surname cannot be empty")
		}
		user.Surname = strings.TrimSpace(*update.Surname)
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		if !domain.ValidPhone(phone) {
			return nil, ValidationError("invalid phone")
		}
		user.Phone = phone
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if !domain.ValidEmail(email) {
			return nil, ValidationError("invalid email")
		}
		user.Email = email
	}
	if update.DocumentType != nil {
		docType := domain.DocumentType(strings.ToLower(strings.TrimSpace(string(*update.DocumentType))))
		if !domain.ValidDocumentType(docType) {
			return nil, ValidationError("invalid document type")
		}
		user.DocumentType = docType
	}
	if update.Username != nil {
		username, ok := domain.NormalizeUsername(user.DocumentType, *update.Username)
		if !ok {
			return nil, ValidationError("document number does not match document type")
		}
		user.Username = username
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) SetRole(ctx context.Context, id uint, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, ValidationError("role must be user or admin")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserMissing
	}
	return err
}

// Activity surfaces the most recent registrations and logins.
func (s *userService) Activity(ctx context.Context) ([]ActivityItem, error) {
	recent, _, err := s.userRepo.List(ctx, 1, 10)
	if err != nil {
		return nil, err
	}
	items := make([]ActivityItem, 0, len(recent)*2)
	for _, u := range recent {
		items = append(items, ActivityItem{Action: "User registered: " + u.Email, At: u.CreatedAt})
		if u.LastLogin != nil {
			items = append(items, ActivityItem{Action: "Login: " + u.Email, At: *u.LastLogin})
		}
	}
	return items, nil
}
