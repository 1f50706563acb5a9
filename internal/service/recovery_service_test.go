package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// --- Fakes ---

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return &repository.FieldError{Field: "email"}
		}
		if u.Phone == user.Phone {
			return &repository.FieldError{Field: "phone"}
		}
		if u.Username == user.Username {
			return &repository.FieldError{Field: "username"}
		}
	}
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, found := f.users[id]
	if !found {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) getBy(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.getBy(func(u *domain.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	return f.getBy(func(u *domain.User) bool { return u.Phone == phone })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.getBy(func(u *domain.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, found := f.users[user.ID]
	if !found {
		return repository.ErrNotFound
	}
	hash := stored.PasswordHash
	clone := *user
	if clone.PasswordHash == "" {
		clone.PasswordHash = hash
	}
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uint, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, found := f.users[id]
	if !found {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, found := f.users[id]
	if !found {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, found := f.users[id]; !found {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, page, limit int) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Search(_ context.Context, query string, limit int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if strings.Contains(u.Email, query) || strings.Contains(u.Name, query) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// memResetRepo is an in-memory stand-in honoring the same issuance contract as
// the Postgres implementation.
type memResetRepo struct {
	mu     sync.Mutex
	rows   []*domain.PasswordReset
	nextID uint
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{nextID: 1}
}

func (m *memResetRepo) Issue(_ context.Context, userID uint, email, code string, now time.Time, policy repository.IssuePolicy) (*repository.ResetIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recent []*domain.PasswordReset
	for _, row := range m.rows {
		if row.Email == email && row.CreatedAt.After(now.Add(-policy.AttemptWindow)) {
			recent = append(recent, row)
		}
	}
	if len(recent) >= policy.MaxAttempts {
		return nil, repository.ErrRateLimited
	}
	if len(recent) > 0 {
		latest := recent[len(recent)-1]
		if now.Sub(latest.CreatedAt) < policy.Cooldown {
			// Same contract as the Postgres implementation: reuse still
			// persists a row so the window counter advances.
			reuse := &domain.PasswordReset{
				ID:        m.nextID,
				UserID:    userID,
				Email:     email,
				Code:      latest.Code,
				ExpiresAt: latest.ExpiresAt,
				CreatedAt: now,
			}
			m.nextID++
			m.rows = append(m.rows, reuse)
			clone := *reuse
			return &repository.ResetIssue{Reset: &clone, Reused: true}, nil
		}
	}

	reset := &domain.PasswordReset{
		ID:        m.nextID,
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(policy.CodeTTL),
		CreatedAt: now,
	}
	m.nextID++
	m.rows = append(m.rows, reset)
	clone := *reset
	return &repository.ResetIssue{Reset: &clone}, nil
}

func (m *memResetRepo) findValid(email, code string, now time.Time) *domain.PasswordReset {
	for i := len(m.rows) - 1; i >= 0; i-- {
		row := m.rows[i]
		if row.Email == email && row.Code == code && row.UsedAt == nil && row.ExpiresAt.After(now) {
			return row
		}
	}
	return nil
}

func (m *memResetRepo) FindValid(_ context.Context, email, code string, now time.Time) (*domain.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.findValid(email, code, now)
	if row == nil {
		return nil, repository.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (m *memResetRepo) MarkVerified(_ context.Context, email, code string, now time.Time) (*domain.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.findValid(email, code, now)
	if row == nil {
		return nil, repository.ErrNotFound
	}
	row.Verified = true
	clone := *row
	return &clone, nil
}

func (m *memResetRepo) HasVerifiedValid(_ context.Context, email string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email && row.Verified && row.UsedAt == nil && row.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memResetRepo) Consume(_ context.Context, email string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email && row.UsedAt == nil {
			at := now
			row.UsedAt = &at
		}
	}
	return nil
}

func (m *memResetRepo) CountRecent(_ context.Context, email string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, row := range m.rows {
		if row.Email == email && row.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

type fakeMail struct {
	mu     sync.Mutex
	sent   []string // "to:code"
	reject bool
}

func (f *fakeMail) Enqueue(to, code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return false
	}
	f.sent = append(f.sent, to+":"+code)
	return true
}

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Test Setup ---

const testEmail = "ana@example.com"

func newRecoveryFixture(t *testing.T) (RecoveryService, *fakeUserRepo, *memResetRepo, *fakeMail, *fakeClock) {
	t.Helper()
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}
	err = users.Create(context.Background(), &domain.User{
		Name: "Ana", Surname: "Lopez", Phone: "600111222",
		Email: testEmail, Username: "12345678", DocumentType: domain.DocumentDNI,
		Role: domain.RoleUser, PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	resets := newMemResetRepo()
	mailbox := &fakeMail{}
	clock := newFakeClock()
	svc := NewRecoveryService(users, resets, mailbox, repository.IssuePolicy{
		MaxAttempts:   3,
		AttemptWindow: 10 * time.Minute,
		Cooldown:      60 * time.Second,
		CodeTTL:       10 * time.Minute,
	}, clock.Now)
	return svc, users, resets, mailbox, clock
}

func lastCode(t *testing.T, mailbox *fakeMail) string {
	t.Helper()
	mailbox.mu.Lock()
	defer mailbox.mu.Unlock()
	if len(mailbox.sent) == 0 {
		t.Fatal("no recovery email was queued")
	}
	parts := strings.SplitN(mailbox.sent[len(mailbox.sent)-1], ":", 2)
	return parts[1]
}

// --- Tests ---

func TestRequestResetUnknownEmail(t *testing.T) {
	svc, _, _, _, _ := newRecoveryFixture(t)

	_, err := svc.RequestReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequestResetMintsSixDigitCode(t *testing.T) {
	svc, _, _, mailbox, _ := newRecoveryFixture(t)

	issue, err := svc.RequestReset(context.Background(), "  ANA@example.com ")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if !issue.EmailQueued {
		t.Error("expected the email to be queued")
	}
	if issue.Reused {
		t.Error("first issuance must not be a reuse")
	}
	if issue.CooldownMs != 60_000 {
		t.Errorf("cooldownMs = %d, want 60000", issue.CooldownMs)
	}

	code := lastCode(t, mailbox)
	if len(code) != 6 {
		t.Fatalf("code %q is not six digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains a non-digit", code)
		}
	}
}

func TestRequestResetCooldownReusesCode(t *testing.T) {
	svc, _, _, mailbox, clock := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := lastCode(t, mailbox)

	clock.Advance(30 * time.Second)
	issue, err := svc.RequestReset(ctx, testEmail)
	if err != nil {
		t.Fatalf("second request inside cooldown: %v", err)
	}
	if !issue.Reused {
		t.Error("expected cooldown reuse")
	}
	if got := lastCode(t, mailbox); got != first {
		t.Errorf("reused code %q differs from original %q", got, first)
	}
}

func TestRequestResetMintsFreshCodeAfterCooldown(t *testing.T) {
	svc, _, resets, _, clock := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("first request: %v", err)
	}
	clock.Advance(61 * time.Second)
	issue, err := svc.RequestReset(ctx, testEmail)
	if err != nil {
		t.Fatalf("post-cooldown request: %v", err)
	}
	if issue.Reused {
		t.Error("expected a fresh code after the cooldown elapsed")
	}
	count, _ := resets.CountRecent(ctx, testEmail, clock.Now().Add(-10*time.Minute))
	if count != 2 {
		t.Errorf("minted rows = %d, want 2", count)
	}
}

func TestRequestResetRateLimit(t *testing.T) {
	svc, _, _, _, clock := newRecoveryFixture(t)
	ctx := context.Background()

	// Three mints inside the window, each past the previous cooldown.
	for i := 0; i < 3; i++ {
		if _, err := svc.RequestReset(ctx, testEmail); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		clock.Advance(61 * time.Second)
	}

	if _, err := svc.RequestReset(ctx, testEmail); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("fourth request: expected ErrTooManyAttempts, got %v", err)
	}

	// Once the oldest issuance slides out of the window the limit frees up.
	clock.Advance(8 * time.Minute)
	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("request after window slid: %v", err)
	}
}

func TestRequestResetCooldownReuseCountsAgainstLimit(t *testing.T) {
	svc, _, resets, _, clock := newRecoveryFixture(t)
	ctx := context.Background()

	// 40s spacing keeps every request inside the cooldown: the code is
	// reused each time, yet each request still consumes an attempt.
	for i := 0; i < 3; i++ {
		issue, err := svc.RequestReset(ctx, testEmail)
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if i > 0 && !issue.Reused {
			t.Fatalf("request %d: expected cooldown reuse", i+1)
		}
		clock.Advance(40 * time.Second)
	}

	count, _ := resets.CountRecent(ctx, testEmail, clock.Now().Add(-10*time.Minute))
	if count != 3 {
		t.Fatalf("persisted rows = %d, want 3", count)
	}

	if _, err := svc.RequestReset(ctx, testEmail); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("fourth request: expected ErrTooManyAttempts, got %v", err)
	}
}

func TestVerifyCode(t *testing.T) {
	svc, _, _, mailbox, _ := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	code := lastCode(t, mailbox)

	if err := svc.VerifyCode(ctx, testEmail, "000000"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("wrong code: expected ErrCodeInvalid, got %v", err)
	}
	if err := svc.VerifyCode(ctx, testEmail, code); err != nil {
		t.Fatalf("correct code: %v", err)
	}
	// Re-submitting the same correct code succeeds again.
	if err := svc.VerifyCode(ctx, testEmail, code); err != nil {
		t.Fatalf("repeat verification: %v", err)
	}
}

func TestVerifyCodeExpiry(t *testing.T) {
	svc, _, _, mailbox, clock := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	code := lastCode(t, mailbox)

	clock.Advance(10*time.Minute - time.Millisecond)
	if err := svc.VerifyCode(ctx, testEmail, code); err != nil {
		t.Fatalf("just before expiry: %v", err)
	}

	clock.Advance(time.Millisecond)
	if err := svc.VerifyCode(ctx, testEmail, code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("at expiry: expected ErrCodeInvalid, got %v", err)
	}
}

func TestResetPasswordWithInlineCode(t *testing.T) {
	svc, users, _, mailbox, _ := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	code := lastCode(t, mailbox)

	if err := svc.ResetPassword(ctx, testEmail, code, "newsecret"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	user, err := users.GetByEmail(ctx, testEmail)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")) != nil {
		t.Error("password hash was not replaced")
	}

	// The code is consumed: it cannot authorize a second reset.
	if err := svc.ResetPassword(ctx, testEmail, code, "another1"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("reused code: expected ErrCodeInvalid, got %v", err)
	}
}

func TestResetPasswordConsumesReusedRows(t *testing.T) {
	svc, _, _, mailbox, clock := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("first request: %v", err)
	}
	clock.Advance(30 * time.Second)
	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("request inside cooldown: %v", err)
	}
	code := lastCode(t, mailbox)

	if err := svc.ResetPassword(ctx, testEmail, code, "newsecret"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// Every row carrying the code is consumed, not just the verified one.
	if err := svc.ResetPassword(ctx, testEmail, code, "another1"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("reused code after reset: expected ErrCodeInvalid, got %v", err)
	}
	if err := svc.VerifyCode(ctx, testEmail, code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("verify after reset: expected ErrCodeInvalid, got %v", err)
	}
}

func TestResetPasswordRequiresVerification(t *testing.T) {
	svc, _, _, _, _ := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	// No code in the reset call and nothing verified yet.
	err := svc.ResetPassword(ctx, testEmail, "", "newsecret")
	if !errors.Is(err, ErrVerificationRequired) {
		t.Fatalf("expected ErrVerificationRequired, got %v", err)
	}
}

func TestResetPasswordAfterSeparateVerification(t *testing.T) {
	svc, users, resets, mailbox, clock := newRecoveryFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestReset(ctx, testEmail); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	code := lastCode(t, mailbox)

	if err := svc.VerifyCode(ctx, testEmail, code); err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if err := svc.ResetPassword(ctx, testEmail, "", "newsecret"); err != nil {
		t.Fatalf("ResetPassword without inline code: %v", err)
	}

	user, _ := users.GetByEmail(ctx, testEmail)
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")) != nil {
		t.Error("password hash was not replaced")
	}
	verified, _ := resets.HasVerifiedValid(ctx, testEmail, clock.Now())
	if verified {
		t.Error("verified code survived the reset; it must be consumed")
	}
}

func TestResetPasswordValidation(t *testing.T) {
	svc, _, _, _, _ := newRecoveryFixture(t)
	ctx := context.Background()

	var validation ValidationError
	if err := svc.ResetPassword(ctx, testEmail, "", "short"); !errors.As(err, &validation) {
		t.Fatalf("short password: expected ValidationError, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "", "123456", "newsecret"); !errors.As(err, &validation) {
		t.Fatalf("empty email: expected ValidationError, got %v", err)
	}
}

func TestRequestResetReportsQueueSaturation(t *testing.T) {
	svc, _, _, mailbox, _ := newRecoveryFixture(t)
	mailbox.reject = true

	issue, err := svc.RequestReset(context.Background(), testEmail)
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if issue.EmailQueued {
		t.Error("expected emailQueued=false when the dispatcher refuses the task")
	}
}
