package viewmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/bookclub/internal/domain"
)

type stubAuth struct {
	user   *domain.User
	err    error
	called bool
}

func (s *stubAuth) SignInWithEmail(context.Context, string, string) (*domain.User, error) {
	s.called = true
	return s.user, s.err
}

func (s *stubAuth) SignUpWithEmail(context.Context, string, string) (*domain.User, error) {
	s.called = true
	return s.user, s.err
}

func TestLoginViewModel_ValidationBlocksNetworkCall(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		wantEmailErr  bool
		wantPasswdErr bool
	}{
		{"empty form", "", "", true, true},
		{"email without at-sign", "maryexample.com", "hunter22", true, false},
		{"short password", "mary@example.com", "abc", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuth{}
			vm := NewLoginViewModel(auth)
			vm.SetEmail(tt.email)
			vm.SetPassword(tt.password)

			vm.Submit(context.Background())

			assert.False(t, auth.called, "invalid form must not reach the network")
			ui := vm.UIState().Get()
			assert.Equal(t, tt.wantEmailErr, ui.EmailError != "")
			assert.Equal(t, tt.wantPasswdErr, ui.PasswordError != "")
		})
	}
}

func TestLoginViewModel_SuccessfulSubmit(t *testing.T) {
	auth := &stubAuth{user: &domain.User{ID: "user-1"}}
	vm := NewLoginViewModel(auth)
	vm.SetEmail("mary@example.com")
	vm.SetPassword("hunter22")

	vm.Submit(context.Background())

	st := vm.State().Get()
	assert.True(t, st.SignedIn)
	assert.False(t, st.Loading)
	require.NotNil(t, st.User)
	assert.Equal(t, "user-1", st.User.ID)
}

func TestLoginViewModel_FailureSurfacesMessage(t *testing.T) {
	auth := &stubAuth{err: errors.New("Invalid login credentials")}
	vm := NewLoginViewModel(auth)
	vm.SetEmail("mary@example.com")
	vm.SetPassword("wrongpass")

	vm.Submit(context.Background())

	st := vm.State().Get()
	assert.False(t, st.SignedIn)
	assert.Equal(t, "Invalid login credentials", st.ErrorMessage)
}

func TestLoginViewModel_EditingClearsFieldError(t *testing.T) {
	vm := NewLoginViewModel(&stubAuth{})
	vm.Submit(context.Background())
	require.NotEmpty(t, vm.UIState().Get().EmailError)

	vm.SetEmail("mary@example.com")
	assert.Empty(t, vm.UIState().Get().EmailError)
}

func TestSignUpViewModel_ConfirmMismatch(t *testing.T) {
	auth := &stubAuth{}
	vm := NewSignUpViewModel(auth)
	vm.SetEmail("new@example.com")
	vm.SetPassword("hunter22")
	vm.SetConfirmPassword("hunter23")

	vm.Submit(context.Background())

	assert.False(t, auth.called)
	assert.Equal(t, "passwords do not match", vm.UIState().Get().ConfirmError)
}

func TestSignUpViewModel_SuccessfulSubmit(t *testing.T) {
	auth := &stubAuth{user: &domain.User{ID: "user-2"}}
	vm := NewSignUpViewModel(auth)
	vm.SetEmail("new@example.com")
	vm.SetPassword("hunter22")
	vm.SetConfirmPassword("hunter22")

	vm.Submit(context.Background())

	st := vm.State().Get()
	assert.True(t, st.Registered)
	require.NotNil(t, st.User)
}

func clubDetailsSources(clubErr, sessionErr, membersErr error) ClubDetailsSources {
	return ClubDetailsSources{
		Club: func(context.Context, string) (*domain.Club, error) {
			if clubErr != nil {
				return nil, clubErr
			}
			return &domain.Club{ID: "42", Name: "Graphic Novels"}, nil
		},
		ActiveSession: func(context.Context, string) (*domain.Session, error) {
			if sessionErr != nil {
				return nil, sessionErr
			}
			return &domain.Session{ID: "s-1", ClubID: "42"}, nil
		},
		Members: func(context.Context, string) ([]domain.Member, error) {
			if membersErr != nil {
				return nil, membersErr
			}
			return []domain.Member{{ID: "7", DisplayName: "Mary Jane Watson"}}, nil
		},
	}
}

func TestClubDetailsViewModel_JoinsAllSources(t *testing.T) {
	vm := NewClubDetailsViewModel(clubDetailsSources(nil, nil, nil))

	vm.Load(context.Background(), "42")

	st := vm.State().Get()
	assert.False(t, st.Loading)
	assert.Empty(t, st.ErrorMessage)
	require.NotNil(t, st.Club)
	require.NotNil(t, st.ActiveSession)
	require.Len(t, st.Members, 1)
}

func TestClubDetailsViewModel_SingleFailureSurfacesItsMessage(t *testing.T) {
	vm := NewClubDetailsViewModel(clubDetailsSources(nil, errors.New("session fetch failed"), nil))

	vm.Load(context.Background(), "42")

	assert.Equal(t, "session fetch failed", vm.State().Get().ErrorMessage)
}

func TestClubDetailsViewModel_SameMessageCollapsesToOne(t *testing.T) {
	shared := errors.New("network unreachable")
	vm := NewClubDetailsViewModel(clubDetailsSources(shared, shared, nil))

	vm.Load(context.Background(), "42")

	assert.Equal(t, "network unreachable", vm.State().Get().ErrorMessage)
}

func TestClubDetailsViewModel_DifferentMessagesBecomeGeneric(t *testing.T) {
	vm := NewClubDetailsViewModel(clubDetailsSources(
		errors.New("club fetch failed"),
		errors.New("session fetch failed"),
		nil,
	))

	vm.Load(context.Background(), "42")

	assert.Equal(t, ErrMultipleFailures, vm.State().Get().ErrorMessage)
}
