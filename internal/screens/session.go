package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/duynhne/registro-facial/internal/navigation"
)

// Session mounts a fresh screen controller every time the active route changes, so
// form drafts and results never outlive their screen.
type Session struct {
	nav  *navigation.Controller
	deps Deps

	mu      sync.Mutex
	active  Screen
	pending bool
}

// NewSession mounts the controller for the current route of nav and follows its
// changes. deps.Nav is replaced by nav.
func NewSession(nav *navigation.Controller, deps Deps) *Session {
	deps.Nav = nav
	s := &Session{nav: nav, deps: deps}
	s.mount(nav.Current())
	nav.OnChange(func(_, to navigation.Route) {
		s.mount(to)
	})
	return s
}

func (s *Session) mount(route navigation.Route) {
	var screen Screen
	switch r := route.(type) {
	case navigation.Analyze:
		screen = NewAnalyzeScreen(s.deps)
	case navigation.Register:
		screen = NewRegisterScreen(s.deps)
	case navigation.ProfileList:
		screen = NewProfileListScreen(s.deps)
	case navigation.EditProfile:
		screen = NewEditProfileScreen(s.deps, r.Profile)
	default:
		panic(fmt.Sprintf("screens: unhandled route %T", route))
	}

	s.mu.Lock()
	s.active = screen
	_, s.pending = screen.(*ProfileListScreen)
	s.mu.Unlock()
}

// Navigator returns the navigation controller driving the session.
func (s *Session) Navigator() *navigation.Controller {
	return s.nav
}

// Active returns the mounted controller.
func (s *Session) Active() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Activate runs the mount-time load of the active screen once. Only the profile list
// loads on mount.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()
	screen, pending := s.active, s.pending
	s.pending = false
	s.mu.Unlock()

	if !pending {
		return nil
	}
	if list, ok := screen.(*ProfileListScreen); ok {
		return list.Mount(ctx)
	}
	return nil
}
