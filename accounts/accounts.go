// Package accounts registers and authenticates shoppers and administrators.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eshop/models"
	"eshop/store"
	"eshop/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("accounts: email already registered")
	ErrInvalidCredentials = errors.New("accounts: invalid email or password")
	ErrUserNotFound       = errors.New("accounts: user not found")
)

// Mailer sends the welcome email after registration
type Mailer interface {
	SendWelcomeEmail(toEmail, name string) error
}

// RegisterInput is what a visitor submits to create an account
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

// ProfileInput holds the editable profile fields. Phone is optional and
// stored in E.164 form; spaces, dashes and parentheses are stripped first.
type ProfileInput struct {
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Service owns account storage, password hashing and token issuing
type Service struct {
	users    store.Users
	mailer   Mailer
	tokenTTL time.Duration
	logger   *zap.Logger
	validate *validator.Validate
}

// NewService wires the account service
func NewService(users store.Users, mailer Mailer, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		mailer:   mailer,
		tokenTTL: tokenTTL,
		logger:   logger,
		validate: utils.NewValidator(),
	}
}

// Register creates a customer account. A failed welcome email is logged and
// does not undo the registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in, models.RoleUser, true)
}

// Authenticate checks credentials and returns the user with a signed token
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	// Compare the hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a JWT for the user
func (s *Service) IssueToken(user *models.User) (string, error) {
	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// Profile returns the account without its password hash
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile changes the name and phone number
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = phoneSeparators.Replace(strings.TrimSpace(in.Phone))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	err := s.users.UpdateUserProfile(ctx, userID, store.Profile{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Profile(ctx, userID)
}

// EnsureAdmin creates the administrator account if it does not exist yet.
// An existing customer account with the same email is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			s.logger.Warn("admin email belongs to a customer account; not promoting it", zap.String("email", email))
		}
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	_, err = s.create(ctx, RegisterInput{Email: email, Password: password, FirstName: "Admin"}, models.RoleAdmin, false)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err == nil {
		s.logger.Info("admin account created", zap.String("email", email))
	}
	return err
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string, welcome bool) (*models.User, error) {
	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:     in.Email,
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	err = s.users.InsertUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if welcome && s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
			s.logger.Warn("welcome email failed", zap.String("email", user.Email), zap.Error(err))
		}
	}

	user.Password = ""
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
