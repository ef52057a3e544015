package viewmodel

import (
	"context"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/state"
)

type emailSignUp interface {
	SignUpWithEmail(ctx context.Context, email, password string) (*domain.User, error)
}

// SignUpUIState carries the registration form fields and their inline
// validation errors.
type SignUpUIState struct {
	Email           string
	Password        string
	ConfirmPassword string

	EmailError    string
	PasswordError string
	ConfirmError  string
}

// SignUpState is the screen-level snapshot.
type SignUpState struct {
	Loading      bool
	ErrorMessage string
	Registered   bool
	User         *domain.User
}

// SignUpViewModel drives the registration screen.
type SignUpViewModel struct {
	auth  emailSignUp
	state *state.Store[SignUpState]
	ui    *state.Store[SignUpUIState]
}

// NewSignUpViewModel creates a sign-up view model.
func NewSignUpViewModel(auth emailSignUp) *SignUpViewModel {
	return &SignUpViewModel{
		auth:  auth,
		state: state.New(SignUpState{}),
		ui:    state.New(SignUpUIState{}),
	}
}

// State exposes the observable screen state.
func (vm *SignUpViewModel) State() *state.Store[SignUpState] { return vm.state }

// UIState exposes the observable form state.
func (vm *SignUpViewModel) UIState() *state.Store[SignUpUIState] { return vm.ui }

// SetEmail updates the email field and clears its validation error.
func (vm *SignUpViewModel) SetEmail(email string) {
	vm.ui.Update(func(ui SignUpUIState) SignUpUIState {
		ui.Email = email
		ui.EmailError = ""
		return ui
	})
}

// SetPassword updates the password field and clears its validation error.
func (vm *SignUpViewModel) SetPassword(password string) {
	vm.ui.Update(func(ui SignUpUIState) SignUpUIState {
		ui.Password = password
		ui.PasswordError = ""
		return ui
	})
}

// SetConfirmPassword updates the confirmation field and clears its
// validation error.
func (vm *SignUpViewModel) SetConfirmPassword(confirm string) {
	vm.ui.Update(func(ui SignUpUIState) SignUpUIState {
		ui.ConfirmPassword = confirm
		ui.ConfirmError = ""
		return ui
	})
}

// Submit validates all three fields and, only when every check passes,
// performs the registration.
func (vm *SignUpViewModel) Submit(ctx context.Context) {
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
	if ui.ConfirmPassword != ui.Password {
		ui.ConfirmError = "passwords do not match"
		valid = false
	}
	if !valid {
		vm.ui.Set(ui)
		return
	}

	vm.state.Set(SignUpState{Loading: true})

	user, err := vm.auth.SignUpWithEmail(ctx, ui.Email, ui.Password)
	if err != nil {
		vm.state.Set(SignUpState{ErrorMessage: err.Error()})
		return
	}
	vm.state.Set(SignUpState{Registered: true, User: user})
}
