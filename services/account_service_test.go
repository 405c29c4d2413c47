package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trickdeck/trickdeckbackend/database"
	"github.com/trickdeck/trickdeckbackend/mailer"
	"github.com/trickdeck/trickdeckbackend/repository"
)

type recordingMailer struct {
	activations []string
	resets      []string
}

func (m *recordingMailer) SendActivation(to, username, activationURL string) error {
	m.activations = append(m.activations, activationURL)
	return nil
}

func (m *recordingMailer) SendPasswordReset(to, username, resetURL string) error {
	m.resets = append(m.resets, resetURL)
	return nil
}

var _ mailer.Mailer = (*recordingMailer)(nil)

func newTestService(t *testing.T) (*AccountService, repository.UserRepository, *recordingMailer) {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))

	users := repository.NewGormUserRepository(db)
	mail := &recordingMailer{}
	return NewAccountService(users, mail, "http://localhost:8080"), users, mail
}

func TestRegisterCreatesInactiveAccountWithToken(t *testing.T) {
	svc, users, mail := newTestService(t)

	user, err := svc.Register("demo_user", "demo@example.com", "long-password")
	require.NoError(t, err)
	require.False(t, user.IsActive)
	require.NotNil(t, user.ActivationToken)
	require.Len(t, mail.activations, 1)
	require.Contains(t, mail.activations[0], "/activate/"+*user.ActivationToken)

	stored, err := users.GetByUsername("demo_user")
	require.NoError(t, err)
	require.False(t, stored.IsActive)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register("demo_user", "demo@example.com", "long-password")
	require.NoError(t, err)

	_, err = svc.Register("demo_user", "other@example.com", "long-password")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register("someone_else", "demo@example.com", "long-password")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestActivateIsSingleUse(t *testing.T) {
	svc, users, _ := newTestService(t)

	user, err := svc.Register("demo_user", "demo@example.com", "long-password")
	require.NoError(t, err)
	token := *user.ActivationToken

	require.NoError(t, svc.Activate(token))

	activated, err := users.GetByUsername("demo_user")
	require.NoError(t, err)
	require.True(t, activated.IsActive)
	require.Nil(t, activated.ActivationToken)

	// the same, now-stale token is a no-op invalid-token path
	require.ErrorIs(t, svc.Activate(token), ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.Register("demo_user", "demo@example.com", "long-password")
	require.NoError(t, err)

	// inactive accounts cannot log in
	_, err = svc.Authenticate("demo_user", "long-password")
	require.ErrorIs(t, err, ErrAccountInactive)

	require.NoError(t, svc.Activate(*user.ActivationToken))

	byUsername, err := svc.Authenticate("demo_user", "long-password")
	require.NoError(t, err)
	require.Equal(t, user.ID, byUsername.ID)

	byEmail, err := svc.Authenticate("demo@example.com", "long-password")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = svc.Authenticate("demo_user", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody", "long-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, users, mail := newTestService(t)

	user, err := svc.Register("demo_user", "demo@example.com", "long-password")
	require.NoError(t, err)
	require.NoError(t, svc.Activate(*user.ActivationToken))

	// unknown addresses are silently accepted
	require.NoError(t, svc.StartPasswordReset("stranger@example.com"))
	require.Empty(t, mail.resets)

	require.NoError(t, svc.StartPasswordReset("demo@example.com"))
	require.Len(t, mail.resets, 1)

	stored, err := users.GetByEmail("demo@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	token := *stored.ResetToken

	require.NoError(t, svc.ResetPassword(token, "new-password"))

	// token consumed, new password in effect
	require.ErrorIs(t, svc.ResetPassword(token, "again"), ErrInvalidToken)
	_, err = svc.Authenticate("demo_user", "long-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("demo_user", "new-password")
	require.NoError(t, err)
}

func TestExpiredResetTokenIsRejected(t *testing.T) {
	svc, users, _ := newTestService(t)

	user, err := svc.Register("demo_user", "demo@example.com", "long-password")
	require.NoError(t, err)
	require.NoError(t, svc.Activate(*user.ActivationToken))
	require.NoError(t, svc.StartPasswordReset("demo@example.com"))

	stored, err := users.GetByEmail("demo@example.com")
	require.NoError(t, err)
	token := *stored.ResetToken

	expired := time.Now().Add(-time.Minute)
	stored.ResetTokenExpiresAt = &expired
	require.NoError(t, users.Update(stored))

	require.ErrorIs(t, svc.ResetPassword(token, "new-password"), ErrInvalidToken)

	// the old password still works
	_, err = svc.Authenticate("demo_user", "long-password")
	require.NoError(t, err)
}
