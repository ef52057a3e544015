package viewmodel

import (
	"context"
	"sync"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/state"
)

// ClubDetailsSources are the independent data loaders the club-details
// screen fans out to. Each is invoked concurrently and the results are
// joined before the state updates once.
type ClubDetailsSources struct {
	Club          func(ctx context.Context, clubID string) (*domain.Club, error)
	ActiveSession func(ctx context.Context, clubID string) (*domain.Session, error)
	Members       func(ctx context.Context, clubID string) ([]domain.Member, error)
}

// ClubDetailsState is the joined screen snapshot.
type ClubDetailsState struct {
	Loading      bool
	ErrorMessage string

	Club          *domain.Club
	ActiveSession *domain.Session
	Members       []domain.Member
}

// ClubDetailsViewModel drives the club-details screen.
type ClubDetailsViewModel struct {
	sources ClubDetailsSources
	state   *state.Store[ClubDetailsState]
}

// NewClubDetailsViewModel creates a club-details view model.
func NewClubDetailsViewModel(sources ClubDetailsSources) *ClubDetailsViewModel {
	return &ClubDetailsViewModel{
		sources: sources,
		state:   state.New(ClubDetailsState{}),
	}
}

// State exposes the observable screen state.
func (vm *ClubDetailsViewModel) State() *state.Store[ClubDetailsState] { return vm.state }

// Load fetches the club, its active session and its members concurrently,
// joins all three results and updates the state exactly once. When several
// sources fail with the same message that message is surfaced; different
// messages collapse to a generic one.
func (vm *ClubDetailsViewModel) Load(ctx context.Context, clubID string) {
	vm.state.Set(ClubDetailsState{Loading: true})

	var (
		wg      sync.WaitGroup
		club    *domain.Club
		session *domain.Session
		members []domain.Member
		errs    = make([]error, 3)
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		club, errs[0] = vm.sources.Club(ctx, clubID)
	}()
	go func() {
		defer wg.Done()
		session, errs[1] = vm.sources.ActiveSession(ctx, clubID)
	}()
	go func() {
		defer wg.Done()
		members, errs[2] = vm.sources.Members(ctx, clubID)
	}()
	wg.Wait()

	if message := joinErrorMessages(errs); message != "" {
		vm.state.Set(ClubDetailsState{ErrorMessage: message})
		return
	}

	vm.state.Set(ClubDetailsState{
		Club:          club,
		ActiveSession: session,
		Members:       members,
	})
}

// joinErrorMessages collapses concurrent failures into a single message:
// identical messages dedupe to one, divergent messages give up on detail.
func joinErrorMessages(errs []error) string {
	unique := make(map[string]struct{})
	first := ""
	for _, err := range errs {
		if err == nil {
			continue
		}
		if len(unique) == 0 {
			first = err.Error()
		}
		unique[err.Error()] = struct{}{}
	}

	switch len(unique) {
	case 0:
		return ""
	case 1:
		return first
	default:
		return ErrMultipleFailures
	}
}
