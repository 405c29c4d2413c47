package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/trickdeck/trickdeckbackend/services"
)

// AuthHandler serves registration, activation, login and password reset.
type AuthHandler struct {
	Accounts *services.AccountService
	Sessions *SessionManager
	Renderer *Renderer
	Validate *validator.Validate
}

type registerForm struct {
	Username string `validate:"required,min=3,max=30"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
}

type registerView struct {
	Username string
	Email    string
	Errors   []string
}

func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "register", "Register", registerView{})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	view := registerView{Username: form.Username, Email: form.Email}
	if err := h.Validate.Struct(form); err != nil {
		view.Errors = formMessages(err)
		h.Renderer.Render(w, r, "register", "Register", view)
		return
	}

	_, err := h.Accounts.Register(form.Username, form.Email, form.Password)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		view.Errors = []string{"That username is already taken"}
	case errors.Is(err, services.ErrEmailTaken):
		view.Errors = []string{"An account with that email already exists"}
	case err != nil:
		log.Printf("registration failed for %q: %v", form.Username, err)
		view.Errors = []string{"Registration failed, please try again"}
	}
	if len(view.Errors) > 0 {
		h.Renderer.Render(w, r, "register", "Register", view)
		return
	}

	h.Sessions.AddFlash(w, r, "success", "Account created. Check your email for the activation link.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.Accounts.Activate(token); err != nil {
		if !errors.Is(err, services.ErrInvalidToken) {
			log.Printf("activation failed: %v", err)
		}
		h.Sessions.AddFlash(w, r, "danger", "That activation link is not valid")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Sessions.AddFlash(w, r, "success", "Your account is active, you can log in now")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type loginView struct {
	Identity string
	Errors   []string
}

func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, r, "login", "Log in", loginView{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	identity := r.PostFormValue("identity")
	password := r.PostFormValue("password")

	user, err := h.Accounts.Authenticate(identity, password)
	if err != nil {
		view := loginView{Identity: identity}
		switch {
		case errors.Is(err, services.ErrAccountInactive):
			view.Errors = []string{"Your account is not activated yet, check your email"}
		case errors.Is(err, services.ErrInvalidCredentials):
			view.Errors = []string{"Invalid username or password"}
		default:
			log.Printf("login failed for %q: %v", identity, err)
			view.Errors = []string{"Login failed, please try again"}
		}
		h.Renderer.Render(w, r, "login", "Log in", view)
		return
	}

	if err := h.Sessions.SignIn(w, r, user.ID); err != nil {
		log.Printf("failed to start session for user %d: %v", user.ID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		log.Printf("failed to end session: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type forgotView struct {
	Email  string
	Errors []string
}

func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "forgot_password", "Forgot password", forgotView{})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	if err := h.Validate.Var(email, "required,email"); err != nil {
		h.Renderer.Render(w, r, "forgot_password", "Forgot password", forgotView{
			Email:  email,
			Errors: []string{"Enter a valid email address"},
		})
		return
	}

	if err := h.Accounts.StartPasswordReset(email); err != nil {
		log.Printf("password reset request failed for %q: %v", email, err)
	}

	// identical response whether or not the address exists
	h.Sessions.AddFlash(w, r, "info", "If an account exists for that address, a reset link is on its way")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type resetView struct {
	Token  string
	Errors []string
}

func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.Accounts.ResetTokenHolder(token); err != nil {
		h.Sessions.AddFlash(w, r, "danger", "That reset link is invalid or has expired")
		http.Redirect(w, r, "/forgot-password", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, r, "reset_password", "Reset password", resetView{Token: token})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("password_confirm")

	view := resetView{Token: token}
	if err := h.Validate.Var(password, "required,min=8,max=72"); err != nil {
		view.Errors = append(view.Errors, "Password must be between 8 and 72 characters")
	}
	if password != confirm {
		view.Errors = append(view.Errors, "Passwords do not match")
	}
	if len(view.Errors) > 0 {
		h.Renderer.Render(w, r, "reset_password", "Reset password", view)
		return
	}

	if err := h.Accounts.ResetPassword(token, password); err != nil {
		if !errors.Is(err, services.ErrInvalidToken) {
			log.Printf("password reset failed: %v", err)
		}
		h.Sessions.AddFlash(w, r, "danger", "That reset link is invalid or has expired")
		http.Redirect(w, r, "/forgot-password", http.StatusSeeOther)
		return
	}

	h.Sessions.AddFlash(w, r, "success", "Password updated, you can log in now")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
