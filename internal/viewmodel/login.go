// Package viewmodel holds the per-screen state machines: one observable
// state snapshot per screen, plus a separate observable ui state where a
// form is involved. Validation is synchronous and field-scoped, and blocks
// any network call until it passes.
package viewmodel

import (
	"context"
	"strings"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/state"
)

const minPasswordLength = 6

// ErrMultipleFailures is surfaced when concurrent sources fail with
// different messages; the individual errors are not preserved.
const ErrMultipleFailures = "multiple errors occurred"

type emailSignIn interface {
	SignInWithEmail(ctx context.Context, email, password string) (*domain.User, error)
}

// LoginUIState carries the form fields and their inline validation errors.
type LoginUIState struct {
	Email         string
	Password      string
	EmailError    string
	PasswordError string
}

// LoginState is the screen-level snapshot.
type LoginState struct {
	Loading      bool
	ErrorMessage string
	SignedIn     bool
	User         *domain.User
}

// LoginViewModel drives the sign-in screen.
type LoginViewModel struct {
	auth  emailSignIn
	state *state.Store[LoginState]
	ui    *state.Store[LoginUIState]
}

// NewLoginViewModel creates a login view model.
func NewLoginViewModel(auth emailSignIn) *LoginViewModel {
	return &LoginViewModel{
		auth:  auth,
		state: state.New(LoginState{}),
		ui:    state.New(LoginUIState{}),
	}
}

// State exposes the observable screen state.
func (vm *LoginViewModel) State() *state.Store[LoginState] { return vm.state }

// UIState exposes the observable form state.
func (vm *LoginViewModel) UIState() *state.Store[LoginUIState] { return vm.ui }

// SetEmail updates the email field and clears its validation error.
func (vm *LoginViewModel) SetEmail(email string) {
	vm.ui.Update(func(ui LoginUIState) LoginUIState {
		ui.Email = email
		ui.EmailError = ""
		return ui
	})
}

// SetPassword updates the password field and clears its validation error.
func (vm *LoginViewModel) SetPassword(password string) {
	vm.ui.Update(func(ui LoginUIState) LoginUIState {
		ui.Password = password
		ui.PasswordError = ""
		return ui
	})
}

// Submit validates the form and, only when it passes, performs the sign-in.
func (vm *LoginViewModel) Submit(ctx context.Context) {
	ui := vm.ui.Get()

	valid := true
	if emailErr := validateEmail(ui.Email); emailErr != "" {
		ui.EmailError = emailErr
		valid = false
	}
	if passwordErr := validatePassword(ui.Password); passwordErr != "" {
		ui.PasswordError = passwordErr
		valid = false
	}
	if !valid {
		vm.ui.Set(ui)
		return
	}

	vm.state.Set(LoginState{Loading: true})

	user, err := vm.auth.SignInWithEmail(ctx, ui.Email, ui.Password)
	if err != nil {
		vm.state.Set(LoginState{ErrorMessage: err.Error()})
		return
	}
	vm.state.Set(LoginState{SignedIn: true, User: user})
}

func validateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "email is required"
	}
	if !strings.Contains(email, "@") {
		return "email must contain @"
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return "password is required"
	}
	if len(password) < minPasswordLength {
		return "password must be at least 6 characters"
	}
	return ""
}
