package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/media"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/remote"
	"go.uber.org/zap"
)

// AnalyzeScreen submits a photo for recognition and keeps the last result.
type AnalyzeScreen struct {
	deps  Deps
	guard inFlight

	mu     sync.Mutex
	image  *domain.Image
	result *domain.AnalysisResult
}

// NewAnalyzeScreen mounts an empty Analyze screen.
func NewAnalyzeScreen(deps Deps) *AnalyzeScreen {
	return &AnalyzeScreen{deps: deps}
}

// Route implements Screen.
func (s *AnalyzeScreen) Route() navigation.Route { return navigation.Analyze{} }

// PickImage runs the image selector. A cancelled pick changes nothing and returns nil.
func (s *AnalyzeScreen) PickImage(ctx context.Context) error {
	img, err := pickImage(ctx, s.deps)
	if err != nil || img == nil {
		return err
	}
	s.SetImage(img)
	return nil
}

// SetImage replaces the photo and clears the previous result.
func (s *AnalyzeScreen) SetImage(img *domain.Image) {
	s.mu.Lock()
	s.image = img
	s.result = nil
	s.mu.Unlock()
}

// Image returns the selected photo, or nil.
func (s *AnalyzeScreen) Image() *domain.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Result returns the last analysis result, or nil.
func (s *AnalyzeScreen) Result() *domain.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Loading reports whether an analysis is outstanding.
func (s *AnalyzeScreen) Loading() bool {
	return s.guard.active()
}

// Analyze sends the selected photo to the backend. Without a photo it sends nothing
// and returns domain.ErrNoImage.
func (s *AnalyzeScreen) Analyze(ctx context.Context) (*domain.AnalysisResult, error) {
	img := s.Image()
	if img == nil {
		return nil, domain.ErrNoImage
	}
	if !s.guard.acquire() {
		return nil, domain.ErrRequestInFlight
	}
	defer s.guard.release()

	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()

	result, err := s.deps.Service.AnalyzePhoto(ctx, *img)
	if err != nil {
		s.deps.logger().Warn("Analyze failed", zap.Error(err))
		s.deps.Alerts.Alert(TitleServerError, remote.UserMessage(err, MsgAnalyzeFailed))
		return nil, err
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	return result, nil
}

// pickImage runs the selector and turns a permission denial into an alert.
// Cancellation yields (nil, nil).
func pickImage(ctx context.Context, deps Deps) (*domain.Image, error) {
	img, err := deps.Images.SelectImage(ctx)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, domain.ErrCancelled):
		return nil, nil
	}

	var denied *media.PermissionDeniedError
	if errors.As(err, &denied) {
		deps.Alerts.Alert(TitlePermission, denied.Reason)
	} else {
		deps.logger().Warn("Image selection failed", zap.Error(err))
		deps.Alerts.Alert(TitleError, MsgImageFailed)
	}
	return nil, err
}
