// Package navigation holds the active screen of the client and the transitions between screens.
package navigation

import (
	"errors"
	"fmt"

	"github.com/duynhne/registro-facial/internal/core/domain"
)

// Screen names the four screens of the client.
type Screen string

const (
	ScreenAnalyze     Screen = "Analyze"
	ScreenRegister    Screen = "Register"
	ScreenProfileList Screen = "ProfileList"
	ScreenEditProfile Screen = "EditProfile"
)

// Screens lists every screen in navigation-bar order, followed by EditProfile.
var Screens = []Screen{ScreenAnalyze, ScreenRegister, ScreenProfileList, ScreenEditProfile}

var (
	// ErrProfileRequired is returned when EditProfile is requested without a profile.
	ErrProfileRequired = errors.New("edit profile requires a profile")

	// ErrUnknownScreen is returned for a screen name outside the closed set.
	ErrUnknownScreen = errors.New("unknown screen")
)

// Route is the active screen together with the data that screen needs.
// The set of implementations is closed: Analyze, Register, ProfileList, EditProfile.
type Route interface {
	Screen() Screen
	route()
}

// Analyze is the photo recognition screen.
type Analyze struct{}

// Register is the new-profile form.
type Register struct{}

// ProfileList is the list of registered profiles.
type ProfileList struct{}

// EditProfile is the edit form for a copy of Profile.
type EditProfile struct {
	Profile domain.Profile
}

func (Analyze) Screen() Screen     { return ScreenAnalyze }
func (Register) Screen() Screen    { return ScreenRegister }
func (ProfileList) Screen() Screen { return ScreenProfileList }
func (EditProfile) Screen() Screen { return ScreenEditProfile }

func (Analyze) route()     {}
func (Register) route()    {}
func (ProfileList) route() {}
func (EditProfile) route() {}

// Params carries optional navigation data for name-based navigation.
type Params struct {
	Profile *domain.Profile
}

// RouteFor builds the route for a screen name.
func RouteFor(screen Screen, params *Params) (Route, error) {
	switch screen {
	case ScreenAnalyze:
		return Analyze{}, nil
	case ScreenRegister:
		return Register{}, nil
	case ScreenProfileList:
		return ProfileList{}, nil
	case ScreenEditProfile:
		if params == nil || params.Profile == nil {
			return nil, ErrProfileRequired
		}
		return EditProfile{Profile: *params.Profile}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, screen)
}

// ParseScreen maps a screen name to a Screen.
func ParseScreen(s string) (Screen, error) {
	for _, sc := range Screens {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScreen, s)
}
