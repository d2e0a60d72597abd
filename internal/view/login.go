package view

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
)

// SignInner is the write half of the session
type SignInner interface {
	SignIn(ctx context.Context, username, password string) (*model.UserProfile, error)
	SignOut(ctx context.Context) error
}

// Login drives the sign-in form
type Login struct {
	auth   SignInner
	toasts notify.Notifier
}

func NewLogin(auth SignInner, toasts notify.Notifier) *Login {
	return &Login{auth: auth, toasts: toasts}
}

// Submit signs in. The backend's message is not shown to the user.
func (v *Login) Submit(ctx context.Context, username, password string) (*model.UserProfile, error) {
	user, err := v.auth.SignIn(ctx, username, password)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Sign-in failed")
		v.toasts.Show("Invalid username or password", notify.Error)
		return nil, err
	}
	v.toasts.Show("Welcome back!", notify.Success)
	return user, nil
}

// SignOut ends the session; a failure keeps the user signed in
func (v *Login) SignOut(ctx context.Context) error {
	if err := v.auth.SignOut(ctx); err != nil {
		log.Error().Err(err).Msg("Sign-out failed")
		v.toasts.Show("Failed to sign out", notify.Error)
		return err
	}
	return nil
}
