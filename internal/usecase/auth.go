package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/utils"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(ur domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: ur}
}

func (uc *authUsecase) Register(ctx context.Context, user *domain.User) error {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = domain.RoleStudent
	}

	switch {
	case user.Name == "":
		return domain.Validationf("name is required")
	case !validEmail(user.Email):
		return domain.Validationf("invalid email %q", user.Email)
	case len(user.Password) < 8:
		return domain.Validationf("password must be at least 8 characters")
	case !user.Role.Valid():
		return domain.Validationf("invalid role %q", user.Role)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		return domain.ErrEmailTaken
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed

	return uc.userRepo.Create(ctx, user)
}

func (uc *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", domain.ErrInvalidCredentials
	}

	return utils.GenerateJWT(user.ID, string(user.Role))
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
