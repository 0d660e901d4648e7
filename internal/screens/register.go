package screens

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/remote"
	"go.uber.org/zap"
)

// Required field names reported by ValidationError.
const (
	RequiredNombre = domain.FieldNombre
	RequiredCodigo = domain.FieldCodigoEstudiante
	RequiredFoto   = "foto"
)

// RegisterScreen is the new-profile form.
type RegisterScreen struct {
	deps  Deps
	guard inFlight

	mu    sync.Mutex
	draft domain.ProfileFields
	image *domain.Image
}

// NewRegisterScreen mounts an empty form.
func NewRegisterScreen(deps Deps) *RegisterScreen {
	return &RegisterScreen{deps: deps}
}

// Route implements Screen.
func (s *RegisterScreen) Route() navigation.Route { return navigation.Register{} }

// SetField sets a text field by its wire name.
func (s *RegisterScreen) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Set(name, value)
}

// SetFlagged sets requisitoriado.
func (s *RegisterScreen) SetFlagged(flagged bool) {
	s.mu.Lock()
	s.draft.Requisitoriado = flagged
	s.mu.Unlock()
}

// Fields returns a copy of the draft.
func (s *RegisterScreen) Fields() domain.ProfileFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// PickImage runs the image selector. A cancelled pick changes nothing.
func (s *RegisterScreen) PickImage(ctx context.Context) error {
	img, err := pickImage(ctx, s.deps)
	if err != nil || img == nil {
		return err
	}
	s.SetImage(img)
	return nil
}

// SetImage sets the profile photo.
func (s *RegisterScreen) SetImage(img *domain.Image) {
	s.mu.Lock()
	s.image = img
	s.mu.Unlock()
}

// Image returns the selected photo, or nil.
func (s *RegisterScreen) Image() *domain.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Submitting reports whether a registration is outstanding.
func (s *RegisterScreen) Submitting() bool {
	return s.guard.active()
}

// Submit registers the draft. Text fields are sent trimmed. When nombre,
// codigo_estudiante or the photo is missing nothing is sent and a
// *domain.ValidationError is returned. On success the app moves to the profile list.
func (s *RegisterScreen) Submit(ctx context.Context) (*domain.Profile, error) {
	s.mu.Lock()
	fields := trimFields(s.draft)
	img := s.image
	s.mu.Unlock()

	if verr := validateRegistration(fields, img); verr != nil {
		s.deps.Alerts.Alert(TitleIncomplete, MsgIncomplete)
		return nil, verr
	}

	if !s.guard.acquire() {
		return nil, domain.ErrRequestInFlight
	}
	defer s.guard.release()

	profile, err := s.deps.Service.RegisterProfile(ctx, fields, *img)
	if err != nil {
		s.deps.logger().Warn("Register failed", zap.String("codigo_estudiante", fields.CodigoEstudiante), zap.Error(err))
		s.deps.Alerts.Alert(failureTitle(err, TitleRegister), remote.UserMessage(err, MsgRegisterFailed))
		return nil, err
	}

	s.deps.logger().Info("Profile registered", zap.String("id", profile.ID))
	s.deps.Alerts.Alert(TitleSuccess, fmt.Sprintf("Perfil para %s registrado.", fields.Nombre))
	s.deps.Nav.Navigate(navigation.ProfileList{})
	return profile, nil
}

func validateRegistration(f domain.ProfileFields, img *domain.Image) *domain.ValidationError {
	var missing []string
	if f.Nombre == "" {
		missing = append(missing, RequiredNombre)
	}
	if f.CodigoEstudiante == "" {
		missing = append(missing, RequiredCodigo)
	}
	if img == nil || img.URI == "" {
		missing = append(missing, RequiredFoto)
	}
	if len(missing) == 0 {
		return nil
	}
	return &domain.ValidationError{Missing: missing}
}

func trimFields(f domain.ProfileFields) domain.ProfileFields {
	f.Nombre = strings.TrimSpace(f.Nombre)
	f.Apellidos = strings.TrimSpace(f.Apellidos)
	f.CodigoEstudiante = strings.TrimSpace(f.CodigoEstudiante)
	f.Correo = strings.TrimSpace(f.Correo)
	return f
}
