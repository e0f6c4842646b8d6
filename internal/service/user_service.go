package service

import (
	"context"
	"strings"

	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/repository"
	"github.com/minasenanami/wonderful-editor/internal/validation"
)

type UserService struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// Register creates an account. The email is stored exactly as given.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewFieldError("name", err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewFieldError("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewFieldError("password", err.Error())
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          in.Email,
		PasswordDigest: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
