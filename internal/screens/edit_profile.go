package screens

import (
	"context"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/remote"
	"go.uber.org/zap"
)

// EditProfileScreen edits a copy of one profile.
type EditProfileScreen struct {
	deps    Deps
	guard   inFlight
	profile domain.Profile

	mu    sync.Mutex
	draft domain.ProfileFields
}

// NewEditProfileScreen mounts the form pre-filled from profile.
func NewEditProfileScreen(deps Deps, profile domain.Profile) *EditProfileScreen {
	return &EditProfileScreen{deps: deps, profile: profile, draft: profile.Fields()}
}

// Route implements Screen.
func (s *EditProfileScreen) Route() navigation.Route {
	return navigation.EditProfile{Profile: s.profile}
}

// Profile returns the profile as it was when the screen was mounted.
func (s *EditProfileScreen) Profile() domain.Profile {
	return s.profile
}

// SetField sets a text field by its wire name.
func (s *EditProfileScreen) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Set(name, value)
}

// SetFlagged sets requisitoriado.
func (s *EditProfileScreen) SetFlagged(flagged bool) {
	s.mu.Lock()
	s.draft.Requisitoriado = flagged
	s.mu.Unlock()
}

// ToggleFlagged flips requisitoriado and returns the new value.
func (s *EditProfileScreen) ToggleFlagged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Requisitoriado = !s.draft.Requisitoriado
	return s.draft.Requisitoriado
}

// Fields returns a copy of the draft.
func (s *EditProfileScreen) Fields() domain.ProfileFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Saving reports whether an update is outstanding.
func (s *EditProfileScreen) Saving() bool {
	return s.guard.active()
}

// Save sends every editable field. On success the app returns to the profile list;
// on failure it stays on this screen.
func (s *EditProfileScreen) Save(ctx context.Context) error {
	if !s.guard.acquire() {
		return domain.ErrRequestInFlight
	}
	defer s.guard.release()

	fields := s.Fields()
	if err := s.deps.Service.UpdateProfile(ctx, s.profile.ID, fields); err != nil {
		s.deps.logger().Warn("Update profile failed", zap.String("id", s.profile.ID), zap.Error(err))
		s.deps.Alerts.Alert(failureTitle(err, TitleError), remote.UserMessage(err, MsgUpdateFailed))
		return err
	}

	s.deps.logger().Info("Profile updated", zap.String("id", s.profile.ID))
	s.deps.Alerts.Alert(TitleSuccess, MsgUpdated)
	s.deps.Nav.Navigate(navigation.ProfileList{})
	return nil
}

// Cancel discards the draft and returns to the profile list.
func (s *EditProfileScreen) Cancel() {
	s.deps.Nav.Navigate(navigation.ProfileList{})
}
