package controllers

import (
	"errors"
	"net/http"

	"eshop/accounts"
	"eshop/middleware"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UserController handles user-related requests
type UserController struct {
	Accounts *accounts.Service
	Logger   *zap.Logger
}

// NewUserController creates a new UserController
func NewUserController(service *accounts.Service, logger *zap.Logger) *UserController {
	return &UserController{
		Accounts: service,
		Logger:   logger,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	user, err := uc.Accounts.Register(r.Context(), in)
	if err != nil {
		uc.fail(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &creds); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	_, token, err := uc.Accounts.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		uc.fail(w, "login", err)
		return
	}

	// Return the token
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := uc.Accounts.Profile(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		uc.fail(w, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the authenticated user's name and phone number
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in accounts.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	user, err := uc.Accounts.UpdateProfile(r.Context(), middleware.UserID(r.Context()), in)
	if err != nil {
		uc.fail(w, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (uc *UserController) fail(w http.ResponseWriter, op string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidation(w, err)
	case errors.Is(err, accounts.ErrEmailTaken):
		http.Error(w, "User already exists", http.StatusConflict)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, accounts.ErrUserNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	default:
		uc.Logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "Error processing request", http.StatusInternalServerError)
	}
}
