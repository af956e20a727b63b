package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetProfile(ctx context.Context, id int64) (*User, error)
	// UpdateProfile reports whether the password was rotated.
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (bool, error)
}

// TokenIssuer mints a bearer token for a logged-in user.
type TokenIssuer interface {
	Issue(userID int64, email, name string) (string, error)
}

type service struct {
	repo       Repository
	tokens     TokenIssuer
	bcryptCost int
}

func NewService(repo Repository, tokens TokenIssuer, bcryptCost int) Service {
	return &service{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, &ValidationError{Message: "name, email and password are required"}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{Name: in.Name, Email: in.Email, PasswordHash: hash}

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("failed to create user in repository")
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return u, nil
}

// Login answers ErrInvalidCredentials both for an unknown email and for a
// wrong password, so callers cannot tell which accounts exist.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "email and password are required"}
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("failed to get user by email in repository")
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		Token: token,
		User:  User{ID: u.ID, Name: u.Name, Email: u.Email},
	}, nil
}

func (s *service) GetProfile(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("failed to get user by id in repository")
		return nil, fmt.Errorf("failed to get user by id '%d': %w", id, err)
	}

	return &User{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (s *service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (bool, error) {
	if in.Name == "" || in.Email == "" {
		return false, &ValidationError{Message: "name and email are required"}
	}

	if !in.WantsPasswordChange() {
		if err := s.repo.UpdateProfile(ctx, in.UserID, in.Name, in.Email); err != nil {
			return false, s.translateUpdateErr(err, in.UserID)
		}
		return false, nil
	}

	if in.CurrentPassword == "" || in.NewPassword == "" {
		return false, &ValidationError{Message: "both current and new password are required to change it"}
	}

	err := s.repo.RotatePassword(ctx, in.UserID, in.Name, in.Email, func(currentHash string) (string, error) {
		if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(in.CurrentPassword)); err != nil {
			return "", ErrWrongCurrentPassword
		}
		return s.hash(in.NewPassword)
	})
	if err != nil {
		return false, s.translateUpdateErr(err, in.UserID)
	}

	return true, nil
}

func (s *service) translateUpdateErr(err error, id int64) error {
	switch {
	case errors.Is(err, ErrEmailExists), errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidCredentials):
		return err
	default:
		log.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return fmt.Errorf("failed to update user by id '%d': %w", id, err)
	}
}

func (s *service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &ValidationError{Message: "password is longer than 72 bytes"}
		}
		log.Error().Err(err).Msg("failed to generate hash password")
		return "", fmt.Errorf("internal error hashing password: %w", err)
	}
	return string(hashed), nil
}
