package pages

import (
	"errors"
	"net/http"

	"eshop/accounts"
	"eshop/middleware"
	"eshop/models"
	"eshop/utils"

	"github.com/go-playground/validator/v10"
)

type accountForm struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Initials  string
	Return    string
	Errors    []string
}

// LoginPage shows the login form
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", "Log in", accountForm{
		Return: safeReturn(r.URL.Query().Get("return"), "/"),
	})
}

// Login checks credentials and sets the session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form := accountForm{
		Email:  r.PostFormValue("email"),
		Return: safeReturn(r.PostFormValue("return"), "/"),
	}
	user, token, err := h.Accounts.Authenticate(r.Context(), form.Email, r.PostFormValue("password"))
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		form.Errors = []string{"Invalid email or password"}
		h.render(w, r, http.StatusUnauthorized, "login.html", "Log in", form)
		return
	}
	if err != nil {
		h.serverError(w, r, "login", err)
		return
	}
	h.setSession(w, token)
	h.redirectWithFlash(w, r, form.Return, "success", "Welcome back, "+displayName(user))
}

// RegisterPage shows the registration form
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", "Register", accountForm{})
}

// Register creates the account and logs the new user in
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	in := accounts.RegisterInput{
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
	}
	form := accountForm{Email: in.Email, FirstName: in.FirstName, LastName: in.LastName}
	if in.Password != r.PostFormValue("confirmPassword") {
		form.Errors = []string{"Passwords do not match"}
		h.render(w, r, http.StatusBadRequest, "register.html", "Register", form)
		return
	}

	user, err := h.Accounts.Register(r.Context(), in)
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		form.Errors = utils.ValidationMessages(err)
		h.render(w, r, http.StatusBadRequest, "register.html", "Register", form)
		return
	case errors.Is(err, accounts.ErrEmailTaken):
		form.Errors = []string{"An account with this email already exists"}
		h.render(w, r, http.StatusConflict, "register.html", "Register", form)
		return
	case err != nil:
		h.serverError(w, r, "register", err)
		return
	}

	token, err := h.Accounts.IssueToken(user)
	if err != nil {
		h.serverError(w, r, "register", err)
		return
	}
	h.setSession(w, token)
	h.redirectWithFlash(w, r, "/", "success", "Welcome, "+displayName(user))
}

// Logout clears the session cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.redirectWithFlash(w, r, "/", "info", "You have been logged out")
}

// ProfilePage shows the signed-in user's details
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r, "/account/profile")
	if !ok {
		return
	}
	user, err := h.Accounts.Profile(r.Context(), userID)
	if errors.Is(err, accounts.ErrUserNotFound) {
		h.notFound(w, r, "This account no longer exists.")
		return
	}
	if err != nil {
		h.serverError(w, r, "load profile", err)
		return
	}
	h.render(w, r, http.StatusOK, "profile.html", "Profile", accountForm{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Initials:  user.Initials(),
	})
}

// UpdateProfile saves the name and phone number
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r, "/account/profile")
	if !ok {
		return
	}
	in := accounts.ProfileInput{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Phone:     r.PostFormValue("phone"),
	}
	_, err := h.Accounts.UpdateProfile(r.Context(), userID, in)
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		submitted := models.User{Email: middleware.Email(r.Context()), FirstName: in.FirstName, LastName: in.LastName}
		h.render(w, r, http.StatusBadRequest, "profile.html", "Profile", accountForm{
			Email:     submitted.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			Initials:  submitted.Initials(),
			Errors:    utils.ValidationMessages(err),
		})
		return
	case errors.Is(err, accounts.ErrUserNotFound):
		h.notFound(w, r, "This account no longer exists.")
		return
	case err != nil:
		h.serverError(w, r, "update profile", err)
		return
	}
	h.redirectWithFlash(w, r, "/account/profile", "success", "Profile updated")
}

func (h *Handler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func displayName(user *models.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.Email
}
