// Package screens holds the controllers behind the four client screens. Each
// controller owns its form or result state, calls the backend and reports the outcome
// both as an alert and as a returned error.
package screens

import (
	"context"
	"sync/atomic"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/remote"
	"go.uber.org/zap"
)

// Alert titles and messages shown to the user.
const (
	TitleSuccess     = "Éxito"
	TitleError       = "Error"
	TitleServerError = "Error del Servidor"
	TitleRegister    = "Error de Registro"
	TitleIncomplete  = "Campos incompletos"
	TitlePermission  = "Permiso denegado"
	TitleConfirm     = "Confirmar Eliminación"

	MsgIncomplete     = "Nombre, Código y Foto son obligatorios."
	MsgRegisterFailed = "Ocurrió un error."
	MsgUpdateFailed   = "No se pudo actualizar el perfil."
	MsgDeleteFailed   = "No se pudo eliminar el perfil."
	MsgAnalyzeFailed  = "No se pudo analizar la imagen."
	MsgListFailed     = "No se pudieron cargar los perfiles."
	MsgImageFailed    = "No se pudo obtener la imagen."
	MsgNoMatch        = "El rostro no corresponde a ningún perfil."
	MsgUpdated        = "Perfil actualizado correctamente."
	MsgDeleted        = "Perfil eliminado correctamente."

	LabelCancel = "Cancelar"
	LabelDelete = "Eliminar"
)

// Alerter shows a modal message.
type Alerter interface {
	Alert(title, message string)
}

// Confirmer asks a two-choice question and reports whether the confirm option was
// picked.
type Confirmer interface {
	Confirm(ctx context.Context, title, message, cancelLabel, confirmLabel string) (bool, error)
}

// ImageSelector acquires a photo. A user cancellation is domain.ErrCancelled.
type ImageSelector interface {
	SelectImage(ctx context.Context) (*domain.Image, error)
}

// ProfileService is the backend as seen by the screens.
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	AnalyzePhoto(ctx context.Context, img domain.Image) (*domain.AnalysisResult, error)
	RegisterProfile(ctx context.Context, fields domain.ProfileFields, img domain.Image) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error
	DeleteProfile(ctx context.Context, id string) error
}

// Navigator switches the active route.
type Navigator interface {
	Navigate(route navigation.Route) bool
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Service ProfileService
	Images  ImageSelector
	Alerts  Alerter
	Confirm Confirmer
	Nav     Navigator
	Logger  *zap.Logger
}

// failureTitle is the alert title for a failed request: connection problems get the
// server title, everything else the screen's own.
func failureTitle(err error, title string) string {
	if remote.IsTransport(err) {
		return TitleServerError
	}
	return title
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Screen is a mounted controller.
type Screen interface {
	Route() navigation.Route
}

// inFlight allows one outstanding request per screen.
type inFlight struct {
	busy atomic.Bool
}

func (g *inFlight) acquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *inFlight) release() {
	g.busy.Store(false)
}

func (g *inFlight) active() bool {
	return g.busy.Load()
}
