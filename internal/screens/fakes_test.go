package screens

import (
	"context"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
)

type alert struct {
	Title, Message string
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []alert
}

func (f *fakeAlerter) Alert(title, message string) {
	f.mu.Lock()
	f.alerts = append(f.alerts, alert{title, message})
	f.mu.Unlock()
}

func (f *fakeAlerter) last() alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.alerts) == 0 {
		return alert{}
	}
	return f.alerts[len(f.alerts)-1]
}

type fakeConfirmer struct {
	answer  bool
	err     error
	message string
	calls   int
}

func (f *fakeConfirmer) Confirm(_ context.Context, title, message, cancelLabel, confirmLabel string) (bool, error) {
	f.calls++
	f.message = message
	return f.answer, f.err
}

type fakeSelector struct {
	img *domain.Image
	err error
}

func (f *fakeSelector) SelectImage(context.Context) (*domain.Image, error) {
	return f.img, f.err
}

type registerCall struct {
	Fields domain.ProfileFields
	Image  domain.Image
}

type updateCall struct {
	ID     string
	Fields domain.ProfileFields
}

// fakeService records every call. block, when set, holds calls until closed.
type fakeService struct {
	mu sync.Mutex

	profiles []domain.Profile
	listErr  error
	result   *domain.AnalysisResult
	err      error
	block    chan struct{}
	started  chan struct{}

	listCalls    int
	analyzeCalls []domain.Image
	registers    []registerCall
	updates      []updateCall
	deletes      []string
}

func (f *fakeService) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeService) ListProfiles(context.Context) ([]domain.Profile, error) {
	f.mu.Lock()
	f.listCalls++
	profiles, err := append([]domain.Profile(nil), f.profiles...), f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (f *fakeService) AnalyzePhoto(_ context.Context, img domain.Image) (*domain.AnalysisResult, error) {
	f.mu.Lock()
	f.analyzeCalls = append(f.analyzeCalls, img)
	f.mu.Unlock()
	f.wait()
	return f.result, f.err
}

func (f *fakeService) RegisterProfile(_ context.Context, fields domain.ProfileFields, img domain.Image) (*domain.Profile, error) {
	f.mu.Lock()
	f.registers = append(f.registers, registerCall{fields, img})
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Profile{ID: "new", Nombre: fields.Nombre, CodigoEstudiante: fields.CodigoEstudiante}, nil
}

func (f *fakeService) UpdateProfile(_ context.Context, id string, fields domain.ProfileFields) error {
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{id, fields})
	f.mu.Unlock()
	f.wait()
	return f.err
}

func (f *fakeService) DeleteProfile(_ context.Context, id string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	if f.err == nil {
		kept := f.profiles[:0]
		for _, p := range f.profiles {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		f.profiles = kept
	}
	f.mu.Unlock()
	return f.err
}

type fakeNav struct {
	routes []navigation.Route
}

func (f *fakeNav) Navigate(r navigation.Route) bool {
	f.routes = append(f.routes, r)
	return true
}

type fixture struct {
	svc     *fakeService
	alerts  *fakeAlerter
	confirm *fakeConfirmer
	images  *fakeSelector
	nav     *fakeNav
}

func newFixture() (*fixture, Deps) {
	f := &fixture{
		svc:     &fakeService{},
		alerts:  &fakeAlerter{},
		confirm: &fakeConfirmer{},
		images:  &fakeSelector{},
		nav:     &fakeNav{},
	}
	return f, Deps{Service: f.svc, Images: f.images, Alerts: f.alerts, Confirm: f.confirm, Nav: f.nav}
}

var photo = &domain.Image{URI: "file:///tmp/ana.jpg", MimeType: "image/jpeg"}
