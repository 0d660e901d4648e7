package screens

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/media"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestAnalyze_NoImageIsNoop(t *testing.T) {
	f, deps := newFixture()
	s := NewAnalyzeScreen(deps)

	result, err := s.Analyze(ctx)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoImage)
	assert.Empty(t, f.svc.analyzeCalls)
	assert.Empty(t, f.alerts.alerts)
}

func TestAnalyze_Match(t *testing.T) {
	f, deps := newFixture()
	f.svc.result = &domain.AnalysisResult{Match: true, Profile: &domain.Profile{ID: "9", Nombre: "Luis"}}
	f.images.img = photo
	s := NewAnalyzeScreen(deps)

	require.NoError(t, s.PickImage(ctx))
	result, err := s.Analyze(ctx)
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Equal(t, result, s.Result())
	assert.Equal(t, []domain.Image{*photo}, f.svc.analyzeCalls)

	s.SetImage(photo)
	assert.Nil(t, s.Result(), "a new photo clears the previous result")
}

func TestAnalyze_ServerFailureAlerts(t *testing.T) {
	f, deps := newFixture()
	f.svc.err = &remote.ServerError{Op: remote.OpAnalyzePhoto, Status: http.StatusInternalServerError}
	s := NewAnalyzeScreen(deps)
	s.SetImage(photo)

	_, err := s.Analyze(ctx)
	assert.True(t, remote.IsServer(err))
	assert.Equal(t, alert{TitleServerError, MsgAnalyzeFailed}, f.alerts.last())
	assert.Nil(t, s.Result())
}

func TestAnalyze_TransportFailureAlerts(t *testing.T) {
	f, deps := newFixture()
	f.svc.err = &remote.TransportError{Op: remote.OpAnalyzePhoto, Err: errors.New("connection refused")}
	s := NewAnalyzeScreen(deps)
	s.SetImage(photo)

	_, err := s.Analyze(ctx)
	assert.True(t, remote.IsTransport(err))
	assert.Equal(t, alert{TitleServerError, "No se pudo conectar: connection refused"}, f.alerts.last())
}

func TestAnalyze_OverlappingRequestIsRejected(t *testing.T) {
	f, deps := newFixture()
	f.svc.result = &domain.AnalysisResult{}
	f.svc.block = make(chan struct{})
	f.svc.started = make(chan struct{}, 1)
	s := NewAnalyzeScreen(deps)
	s.SetImage(photo)

	done := make(chan error)
	go func() {
		_, err := s.Analyze(ctx)
		done <- err
	}()
	<-f.svc.started
	assert.True(t, s.Loading())

	_, err := s.Analyze(ctx)
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)

	close(f.svc.block)
	require.NoError(t, <-done)
	assert.False(t, s.Loading())
	assert.Len(t, f.svc.analyzeCalls, 1)
}

func TestPickImage_CancelIsSilent(t *testing.T) {
	f, deps := newFixture()
	f.images.err = domain.ErrCancelled
	s := NewAnalyzeScreen(deps)

	assert.NoError(t, s.PickImage(ctx))
	assert.Nil(t, s.Image())
	assert.Empty(t, f.alerts.alerts)
}

func TestPickImage_PermissionDeniedAlerts(t *testing.T) {
	f, deps := newFixture()
	f.images.err = &media.PermissionDeniedError{Source: media.SourceCamera, Reason: "no hay una cámara configurada"}
	s := NewRegisterScreen(deps)

	err := s.PickImage(ctx)
	assert.True(t, media.IsPermissionDenied(err))
	assert.Nil(t, s.Image())
	assert.Equal(t, alert{TitlePermission, "no hay una cámara configurada"}, f.alerts.last())
}

func TestPickImage_FailureShowsLocalizedAlert(t *testing.T) {
	f, deps := newFixture()
	f.images.err = errors.New("pick image from gallery: gallery image: stat /x.png: no such file or directory")
	s := NewAnalyzeScreen(deps)

	err := s.PickImage(ctx)
	require.Error(t, err)
	assert.Nil(t, s.Image())
	assert.Equal(t, alert{TitleError, MsgImageFailed}, f.alerts.last())
}

func TestRegister_ValidationBlocksRequest(t *testing.T) {
	cases := map[string]func(s *RegisterScreen){
		"missing nombre": func(s *RegisterScreen) {
			s.SetField(domain.FieldCodigoEstudiante, "S123")
			s.SetImage(photo)
		},
		"blank nombre": func(s *RegisterScreen) {
			s.SetField(domain.FieldNombre, "   ")
			s.SetField(domain.FieldCodigoEstudiante, "S123")
			s.SetImage(photo)
		},
		"missing codigo": func(s *RegisterScreen) {
			s.SetField(domain.FieldNombre, "Ana")
			s.SetImage(photo)
		},
		"missing photo": func(s *RegisterScreen) {
			s.SetField(domain.FieldNombre, "Ana")
			s.SetField(domain.FieldCodigoEstudiante, "S123")
		},
	}

	for name, fill := range cases {
		t.Run(name, func(t *testing.T) {
			f, deps := newFixture()
			s := NewRegisterScreen(deps)
			fill(s)

			profile, err := s.Submit(ctx)
			assert.Nil(t, profile)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Missing, 1)
			assert.Empty(t, f.svc.registers, "no request may be sent")
			assert.Equal(t, alert{TitleIncomplete, MsgIncomplete}, f.alerts.last())
			assert.Empty(t, f.nav.routes)
		})
	}
}

func TestRegister_SuccessNavigatesToList(t *testing.T) {
	f, deps := newFixture()
	nav := navigation.NewController(nil)
	nav.Navigate(navigation.Register{})
	deps.Nav = nav
	s := NewRegisterScreen(deps)

	require.NoError(t, s.SetField(domain.FieldNombre, " Ana "))
	require.NoError(t, s.SetField(domain.FieldCodigoEstudiante, "S123"))
	s.SetFlagged(true)
	s.SetImage(photo)

	profile, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", profile.ID)
	require.Len(t, f.svc.registers, 1)
	assert.Equal(t, domain.ProfileFields{Nombre: "Ana", CodigoEstudiante: "S123", Requisitoriado: true}, f.svc.registers[0].Fields)
	assert.Equal(t, *photo, f.svc.registers[0].Image)
	assert.Equal(t, alert{TitleSuccess, "Perfil para Ana registrado."}, f.alerts.last())
	assert.Equal(t, navigation.ScreenProfileList, nav.Screen())
}

func TestRegister_ServerMessageShownVerbatim(t *testing.T) {
	f, deps := newFixture()
	f.svc.err = &remote.ServerError{Op: remote.OpRegisterProfile, Status: 400, Message: "No se pudo detectar un rostro en la imagen proporcionada."}
	s := NewRegisterScreen(deps)
	s.SetField(domain.FieldNombre, "Ana")
	s.SetField(domain.FieldCodigoEstudiante, "S123")
	s.SetImage(photo)

	_, err := s.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, alert{TitleRegister, "No se pudo detectar un rostro en la imagen proporcionada."}, f.alerts.last())
	assert.Empty(t, f.nav.routes)
	assert.Equal(t, "Ana", s.Fields().Nombre, "the draft survives a failed submit")
}

func TestRegister_FallbackMessage(t *testing.T) {
	f, deps := newFixture()
	f.svc.err = &remote.ServerError{Op: remote.OpRegisterProfile, Status: 500}
	s := NewRegisterScreen(deps)
	s.SetField(domain.FieldNombre, "Ana")
	s.SetField(domain.FieldCodigoEstudiante, "S123")
	s.SetImage(photo)

	_, err := s.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, alert{TitleRegister, MsgRegisterFailed}, f.alerts.last())
}

func TestRegister_UnknownField(t *testing.T) {
	_, deps := newFixture()
	var unknown *domain.UnknownFieldError
	assert.ErrorAs(t, NewRegisterScreen(deps).SetField("telefono", "1"), &unknown)
}

func listFixture() (*fixture, *ProfileListScreen) {
	f, deps := newFixture()
	f.svc.profiles = []domain.Profile{
		{ID: "1", Nombre: "Ana", Apellidos: "Pérez"},
		{ID: "2", Nombre: "Luis", Apellidos: "Soto", Requisitoriado: true},
	}
	return f, NewProfileListScreen(deps)
}

func TestProfileList_MountLoadsAndResetsFilter(t *testing.T) {
	f, s := listFixture()
	s.SetFilter(domain.FilterFlagged)

	require.NoError(t, s.Mount(ctx))
	assert.Equal(t, domain.FilterAll, s.Filter())
	assert.Len(t, s.Displayed(), 2)
	assert.Equal(t, 1, f.svc.listCalls)

	s.SetFilter(domain.FilterFlagged)
	displayed := s.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, "2", displayed[0].ID)
	assert.Len(t, s.Profiles(), 2)
}

func TestProfileList_FailedRefreshEmptiesList(t *testing.T) {
	f, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	require.Len(t, s.Profiles(), 2)

	f.svc.listErr = &remote.ServerError{Op: remote.OpListProfiles, Status: http.StatusBadGateway}
	_, err := s.Refresh(ctx)
	require.Error(t, err)
	assert.Empty(t, s.Profiles())
	assert.Empty(t, s.Displayed())
	assert.Equal(t, alert{TitleServerError, "No se pudo conectar: Error del servidor: 502"}, f.alerts.last())
}

func TestProfileList_ServerMessage(t *testing.T) {
	f, s := listFixture()
	f.svc.listErr = &remote.ServerError{Op: remote.OpListProfiles, Status: 500, Message: "No hay conexión con Firebase."}
	require.Error(t, s.Mount(ctx))
	assert.Equal(t, alert{TitleServerError, "No hay conexión con Firebase."}, f.alerts.last())
}

func TestProfileList_DeleteCancelledSendsNothing(t *testing.T) {
	f, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	f.confirm.answer = false

	deleted, err := s.Delete(ctx, f.svc.profiles[0])
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, f.confirm.calls)
	assert.Equal(t, "¿Estás seguro de que quieres eliminar a Ana Pérez?", f.confirm.message)
	assert.Empty(t, f.svc.deletes)
	assert.Len(t, s.Profiles(), 2)
	assert.Equal(t, 1, f.svc.listCalls)
}

func TestProfileList_DeleteConfirmedRefreshes(t *testing.T) {
	f, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	f.confirm.answer = true
	target, err := s.Find("1")
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, target)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"1"}, f.svc.deletes)
	assert.Equal(t, 2, f.svc.listCalls)
	require.Len(t, s.Profiles(), 1)
	assert.Equal(t, "2", s.Profiles()[0].ID)
	assert.Contains(t, f.alerts.alerts, alert{TitleSuccess, MsgDeleted})
}

func TestProfileList_DeleteFailureKeepsList(t *testing.T) {
	f, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	f.confirm.answer = true
	f.svc.err = &remote.ServerError{Op: remote.OpDeleteProfile, Status: 500}

	deleted, err := s.Delete(ctx, f.svc.profiles[0])
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Len(t, s.Profiles(), 2)
	assert.Equal(t, 1, f.svc.listCalls)
	assert.Equal(t, alert{TitleError, MsgDeleteFailed}, f.alerts.last())
}

func TestConnectionFailuresUseServerTitle(t *testing.T) {
	down := &remote.TransportError{Op: remote.OpDeleteProfile, Err: errors.New("connection refused")}

	f, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	f.confirm.answer = true
	f.svc.err = down
	deleted, err := s.Delete(ctx, f.svc.profiles[0])
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Equal(t, alert{TitleServerError, "No se pudo conectar: connection refused"}, f.alerts.last())

	f, deps := newFixture()
	f.svc.err = down
	edit := NewEditProfileScreen(deps, domain.Profile{ID: "7", Nombre: "Ana"})
	require.Error(t, edit.Save(ctx))
	assert.Equal(t, alert{TitleServerError, "No se pudo conectar: connection refused"}, f.alerts.last())

	f, deps = newFixture()
	f.svc.err = down
	reg := NewRegisterScreen(deps)
	require.NoError(t, reg.SetField(domain.FieldNombre, "Ana"))
	require.NoError(t, reg.SetField(domain.FieldCodigoEstudiante, "S123"))
	reg.SetImage(photo)
	_, err = reg.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, alert{TitleServerError, "No se pudo conectar: connection refused"}, f.alerts.last())
}

func TestProfileList_FindUnknown(t *testing.T) {
	_, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	_, err := s.Find("99")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileList_EditNavigatesWithProfile(t *testing.T) {
	f, s := listFixture()
	require.NoError(t, s.Mount(ctx))
	s.Edit(f.svc.profiles[1])
	require.Len(t, f.nav.routes, 1)
	assert.Equal(t, navigation.EditProfile{Profile: f.svc.profiles[1]}, f.nav.routes[0])
}

func TestEditProfile_ToggleKeepsTextFields(t *testing.T) {
	f, deps := newFixture()
	original := domain.Profile{ID: "7", Nombre: "Ana", Apellidos: "Pérez", CodigoEstudiante: "S123", Correo: "ana@uni.edu"}
	s := NewEditProfileScreen(deps, original)

	assert.True(t, s.ToggleFlagged())
	require.NoError(t, s.Save(ctx))

	require.Len(t, f.svc.updates, 1)
	assert.Equal(t, "7", f.svc.updates[0].ID)
	assert.Equal(t, domain.ProfileFields{
		Nombre:           "Ana",
		Apellidos:        "Pérez",
		CodigoEstudiante: "S123",
		Correo:           "ana@uni.edu",
		Requisitoriado:   true,
	}, f.svc.updates[0].Fields)
	assert.Equal(t, []navigation.Route{navigation.ProfileList{}}, f.nav.routes)
	assert.Equal(t, alert{TitleSuccess, MsgUpdated}, f.alerts.last())
	assert.False(t, s.Profile().Requisitoriado, "the mounted profile is a copy")
}

func TestEditProfile_FailureStays(t *testing.T) {
	f, deps := newFixture()
	f.svc.err = &remote.ServerError{Op: remote.OpUpdateProfile, Status: 404, Message: "Perfil no encontrado."}
	s := NewEditProfileScreen(deps, domain.Profile{ID: "7"})

	require.Error(t, s.Save(ctx))
	assert.Empty(t, f.nav.routes)
	assert.Equal(t, alert{TitleError, "Perfil no encontrado."}, f.alerts.last())
}

func TestEditProfile_FallbackAndCancel(t *testing.T) {
	f, deps := newFixture()
	f.svc.err = &remote.ServerError{Op: remote.OpUpdateProfile, Status: 500}
	s := NewEditProfileScreen(deps, domain.Profile{ID: "7"})

	require.Error(t, s.Save(ctx))
	assert.Equal(t, alert{TitleError, MsgUpdateFailed}, f.alerts.last())

	s.Cancel()
	assert.Equal(t, []navigation.Route{navigation.ProfileList{}}, f.nav.routes)
	assert.Len(t, f.svc.updates, 1)
}

func TestEditProfile_OverlappingSaveIsRejected(t *testing.T) {
	f, deps := newFixture()
	f.svc.block = make(chan struct{})
	f.svc.started = make(chan struct{}, 1)
	s := NewEditProfileScreen(deps, domain.Profile{ID: "7"})

	done := make(chan error)
	go func() { done <- s.Save(ctx) }()
	<-f.svc.started
	assert.True(t, s.Saving())
	assert.ErrorIs(t, s.Save(ctx), domain.ErrRequestInFlight)

	close(f.svc.block)
	require.NoError(t, <-done)
	assert.Len(t, f.svc.updates, 1)
}
