package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

const minPasswordLen = 6

// AuthService implements registration, login and logout.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	avatar ports.AvatarGenerator
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, avatar ports.AvatarGenerator, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, avatar: avatar, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if errs := validateRegistration(in); len(errs) > 0 {
		return "", errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &domain.User{
		ID:           domain.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hash),
		Avatar:       s.avatar.AvatarURL(in.Email),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.tokens.Issue(user.ID)
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var errs domain.ValidationErrors
	if !validEmail(email) {
		errs = append(errs, domain.FieldError{Field: "email", Message: "please include a valid email"})
	}
	if password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "password is required"})
	}
	if len(errs) > 0 {
		return "", errs
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) Logout(ctx context.Context, cred *ports.Credential) error {
	if err := s.tokens.Revoke(ctx, cred); err != nil {
		return err
	}
	s.log.Info().Str("user_id", cred.UserID).Msg("token revoked")
	return nil
}

// emails shares the rule the request binder applies to email fields, so a
// display-name form like "Alice <a@b.io>" is rejected here too.
var emails = validator.New()

func validEmail(email string) bool {
	return emails.Var(email, "required,email") == nil
}

func validateRegistration(in ports.RegisterInput) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if !validEmail(in.Email) {
		errs = append(errs, domain.FieldError{Field: "email", Message: "please include a valid email"})
	}
	if len(in.Password) < minPasswordLen {
		errs = append(errs, domain.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("please enter a password with %d or more characters", minPasswordLen),
		})
	}
	return errs
}
