package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/messagely/apiserver/internal/metrics"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	GetPasswordHash(ctx context.Context, username string) (string, error)
	UpdateLoginTimestamp(ctx context.Context, username string) error
	List(ctx context.Context) ([]types.UserProfile, error)
	Get(ctx context.Context, username string) (types.User, error)
	MessagesFrom(ctx context.Context, username string) ([]types.SentMessage, error)
	MessagesTo(ctx context.Context, username string) ([]types.ReceivedMessage, error)
}

// Registration is the input to Register.
type Registration struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo       UserRepository
	bcryptCost int
}

// NewUserService uses bcrypt.DefaultCost when cost is outside bcrypt's range.
func NewUserService(repo UserRepository, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, bcryptCost: bcryptCost}
}

// Register hashes the password and stores a new account. An existing
// username yields store.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, reg Registration) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		UserProfile: types.UserProfile{
			Username:  reg.Username,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Phone:     reg.Phone,
		},
		PasswordHash: string(hashed),
	})
	if err != nil {
		return types.User{}, fmt.Errorf("register %s: %w", reg.Username, err)
	}
	return user, nil
}

// Authenticate reports whether password matches the stored hash.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	hash, err := s.repo.GetPasswordHash(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordLogin("unknown_user")
		return false, ErrBadCredentials
	}
	if err != nil {
		return false, fmt.Errorf("authenticate %s: %w", username, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		metrics.RecordLogin("success")
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		metrics.RecordLogin("bad_password")
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

func (s *UserService) UpdateLoginTimestamp(ctx context.Context, username string) error {
	if err := s.repo.UpdateLoginTimestamp(ctx, username); err != nil {
		return fmt.Errorf("update login timestamp %s: %w", username, err)
	}
	return nil
}

func (s *UserService) All(ctx context.Context) ([]types.UserProfile, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, username string) (types.User, error) {
	return s.repo.Get(ctx, username)
}

// MessagesFrom lists what username sent, oldest first.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]types.SentMessage, error) {
	return s.repo.MessagesFrom(ctx, username)
}

// MessagesTo lists what username received, oldest first.
func (s *UserService) MessagesTo(ctx context.Context, username string) ([]types.ReceivedMessage, error) {
	return s.repo.MessagesTo(ctx, username)
}
