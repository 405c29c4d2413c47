package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/trickdeck/trickdeckbackend/mailer"
	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/repository"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account has not been activated")
)

const resetTokenTTL = 2 * time.Hour

// AccountService owns the registration, activation, login and password
// reset flows.
type AccountService struct {
	users   repository.UserRepository
	mail    mailer.Mailer
	baseURL string
}

func NewAccountService(users repository.UserRepository, mail mailer.Mailer, baseURL string) *AccountService {
	return &AccountService{users: users, mail: mail, baseURL: baseURL}
}

// Register creates an inactive account holding a fresh activation token and
// mails the activation link. Mail delivery failure does not undo the
// registration; the token can be re-sent.
func (s *AccountService) Register(username, email, password string) (*models.User, error) {
	if _, err := s.users.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	user := &models.User{Username: username, Email: email}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	token := user.IssueActivationToken()

	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}

	if err := s.mail.SendActivation(user.Email, user.Username, s.baseURL+"/activate/"+token); err != nil {
		log.Printf("services: failed to send activation mail to %s: %v", user.Email, err)
	}
	return user, nil
}

// Activate flips the account active and consumes the token. A token that no
// longer resolves, including one already consumed, is ErrInvalidToken.
func (s *AccountService) Activate(token string) error {
	user, err := s.users.GetByActivationToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	user.IsActive = true
	user.ActivationToken = nil
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to activate user %d: %w", user.ID, err)
	}
	return nil
}

// Authenticate resolves the identity as username or email, then checks the
// password and the active flag. Credential failures are indistinguishable.
func (s *AccountService) Authenticate(identity, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(identity)
	if err != nil {
		user, err = s.users.GetByEmail(identity)
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

// StartPasswordReset issues a reset token and mails the link. An unknown
// address is not an error, so the endpoint cannot be used to probe accounts.
func (s *AccountService) StartPasswordReset(email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil
	}
	token := user.IssueResetToken(resetTokenTTL)
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token for user %d: %w", user.ID, err)
	}
	if err := s.mail.SendPasswordReset(user.Email, user.Username, s.baseURL+"/reset-password/"+token); err != nil {
		log.Printf("services: failed to send reset mail to %s: %v", user.Email, err)
	}
	return nil
}

// ResetTokenHolder resolves the user a valid reset token belongs to.
func (s *AccountService) ResetTokenHolder(token string) (*models.User, error) {
	user, err := s.users.GetByResetToken(token)
	if err != nil || !user.ResetTokenValid(token) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ResetPassword sets a new password and consumes the token.
func (s *AccountService) ResetPassword(token, newPassword string) error {
	user, err := s.ResetTokenHolder(token)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.ClearResetToken()
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to store new password for user %d: %w", user.ID, err)
	}
	return nil
}
