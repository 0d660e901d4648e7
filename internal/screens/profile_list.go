package screens

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/remote"
	"go.uber.org/zap"
)

// ProfileListScreen shows the registered profiles through a filter.
type ProfileListScreen struct {
	deps    Deps
	guard   inFlight
	deletes inFlight

	mu       sync.Mutex
	profiles []domain.Profile
	filter   domain.Filter
}

// NewProfileListScreen mounts the list with the "all" filter. Call Mount to load it.
func NewProfileListScreen(deps Deps) *ProfileListScreen {
	return &ProfileListScreen{deps: deps, filter: domain.FilterAll}
}

// Route implements Screen.
func (s *ProfileListScreen) Route() navigation.Route { return navigation.ProfileList{} }

// Mount resets the filter and loads the list.
func (s *ProfileListScreen) Mount(ctx context.Context) error {
	s.SetFilter(domain.FilterAll)
	_, err := s.Refresh(ctx)
	return err
}

// Refresh reloads the list. On failure the list is emptied, never left stale.
func (s *ProfileListScreen) Refresh(ctx context.Context) ([]domain.Profile, error) {
	if !s.guard.acquire() {
		return nil, domain.ErrRequestInFlight
	}
	defer s.guard.release()

	profiles, err := s.deps.Service.ListProfiles(ctx)
	if err != nil {
		s.mu.Lock()
		s.profiles = nil
		s.mu.Unlock()

		s.deps.logger().Warn("List profiles failed", zap.Error(err))
		s.deps.Alerts.Alert(TitleServerError, listErrorMessage(err))
		return nil, err
	}

	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()
	return profiles, nil
}

func listErrorMessage(err error) string {
	var serr *remote.ServerError
	if errors.As(err, &serr) && serr.Message == "" {
		return fmt.Sprintf("No se pudo conectar: Error del servidor: %d", serr.Status)
	}
	return remote.UserMessage(err, MsgListFailed)
}

// Loading reports whether the list is being fetched.
func (s *ProfileListScreen) Loading() bool {
	return s.guard.active()
}

// SetFilter changes the active filter.
func (s *ProfileListScreen) SetFilter(f domain.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Filter returns the active filter.
func (s *ProfileListScreen) Filter() domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Profiles returns every loaded profile.
func (s *ProfileListScreen) Profiles() []domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Profile(nil), s.profiles...)
}

// Displayed returns the loaded profiles that pass the active filter.
func (s *ProfileListScreen) Displayed() []domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FilterProfiles(append([]domain.Profile(nil), s.profiles...), s.filter)
}

// Find returns the loaded profile with the given id.
func (s *ProfileListScreen) Find(id string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Profile{}, fmt.Errorf("profile %q: %w", id, domain.ErrProfileNotFound)
}

// Edit opens the edit screen on a copy of p.
func (s *ProfileListScreen) Edit(p domain.Profile) {
	s.deps.Nav.Navigate(navigation.EditProfile{Profile: p})
}

// Delete asks for confirmation and deletes p. Declining sends nothing and returns
// false. After a successful delete the list is reloaded; a reload failure is
// returned alongside deleted == true.
func (s *ProfileListScreen) Delete(ctx context.Context, p domain.Profile) (bool, error) {
	if !s.deletes.acquire() {
		return false, domain.ErrRequestInFlight
	}

	ok, err := s.deps.Confirm.Confirm(ctx, TitleConfirm,
		fmt.Sprintf("¿Estás seguro de que quieres eliminar a %s?", p.FullName()),
		LabelCancel, LabelDelete)
	if err != nil && !errors.Is(err, domain.ErrCancelled) {
		s.deletes.release()
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		s.deletes.release()
		return false, nil
	}

	err = s.deps.Service.DeleteProfile(ctx, p.ID)
	s.deletes.release()
	if err != nil {
		s.deps.logger().Warn("Delete profile failed", zap.String("id", p.ID), zap.Error(err))
		s.deps.Alerts.Alert(failureTitle(err, TitleError), remote.UserMessage(err, MsgDeleteFailed))
		return false, err
	}

	s.deps.logger().Info("Profile deleted", zap.String("id", p.ID))
	s.deps.Alerts.Alert(TitleSuccess, MsgDeleted)
	_, err = s.Refresh(ctx)
	return true, err
}
