package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/diggingboard/diggingboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNameTaken is returned when the display name already exists.
	ErrNameTaken = errors.New("display name already taken")
	// ErrInvalidPIN is returned when the PIN is not exactly four digits.
	ErrInvalidPIN = errors.New("pin must be exactly four digits")
	// ErrInvalidName is returned for empty or whitespace-only names.
	ErrInvalidName = errors.New("display name is required")
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Service encapsulates account-related business logic
type Service struct {
	repo AccountRepository
}

func NewService(r AccountRepository) *Service {
	return &Service{repo: r}
}

// Signup creates an account from a display name and a 4-digit PIN.
// The PIN is bcrypt-hashed before it reaches the repository.
func (s *Service) Signup(ctx context.Context, name, pin string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if !pinPattern.MatchString(pin) {
		return nil, ErrInvalidPIN
	}
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := &models.Account{Name: name, PINHash: string(hash)}
	return s.repo.Create(ctx, a)
}

// Login resolves (name, pin) to an account. Returns (nil, nil) when either
// the name is unknown or the PIN does not verify, so callers cannot
// distinguish the two cases.
func (s *Service) Login(ctx context.Context, name, pin string) (*models.Account, error) {
	a, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PINHash), []byte(pin)); err != nil {
		return nil, nil
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}
