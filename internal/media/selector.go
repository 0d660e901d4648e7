// Package media acquires a photo from the gallery or the camera: it asks the user for
// a source, checks access to it, runs the picker and normalizes the result.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"go.uber.org/zap"
)

// Source is where an image comes from.
type Source string

const (
	SourceGallery Source = "gallery"
	SourceCamera  Source = "camera"
)

// Prompt texts of the source dialog.
const (
	PromptTitle   = "Seleccionar Imagen"
	PromptMessage = "Elige una opción"

	OptionGallery = "Galería"
	OptionCamera  = "Cámara"
	OptionCancel  = "Cancelar"
)

// PromptOptions are the dialog choices in display order.
var PromptOptions = []string{OptionGallery, OptionCamera, OptionCancel}

// Options constrain the picked image.
type Options struct {
	// Aspect is the width:height ratio of the final image.
	Aspect [2]int
	// Quality is the JPEG quality between 0 and 1.
	Quality float64
}

// DefaultOptions crops square and re-encodes at quality.
func DefaultOptions(quality float64) Options {
	return Options{Aspect: [2]int{1, 1}, Quality: quality}
}

// Prompter shows a modal choice and returns the index of the picked option.
type Prompter interface {
	Choose(ctx context.Context, title, message string, options []string) (int, error)
}

// Permissions grants or denies access to a source. A denial is a *PermissionDeniedError.
type Permissions interface {
	Request(ctx context.Context, source Source) error
}

// Picker produces one image from a source. A user cancellation is domain.ErrCancelled.
type Picker interface {
	Pick(ctx context.Context, source Source, opts Options) (*domain.Image, error)
}

// Selector runs the full acquisition flow.
type Selector struct {
	prompter    Prompter
	permissions Permissions
	picker      Picker
	opts        Options
	logger      *zap.Logger
}

// NewSelector wires a selector.
func NewSelector(prompter Prompter, permissions Permissions, picker Picker, opts Options, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		prompter:    prompter,
		permissions: permissions,
		picker:      picker,
		opts:        opts,
		logger:      logger,
	}
}

// SelectImage asks for a source and returns the acquired image. It returns
// domain.ErrCancelled when the user backs out at any step and a
// *PermissionDeniedError when access to the source is refused.
func (s *Selector) SelectImage(ctx context.Context) (*domain.Image, error) {
	choice, err := s.prompter.Choose(ctx, PromptTitle, PromptMessage, PromptOptions)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			return nil, domain.ErrCancelled
		}
		return nil, fmt.Errorf("choose image source: %w", err)
	}

	var source Source
	switch choice {
	case 0:
		source = SourceGallery
	case 1:
		source = SourceCamera
	default:
		return nil, domain.ErrCancelled
	}

	if err := s.permissions.Request(ctx, source); err != nil {
		s.logger.Info("Image source not available", zap.String("source", string(source)), zap.Error(err))
		return nil, err
	}

	img, err := s.picker.Pick(ctx, source, s.opts)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			return nil, domain.ErrCancelled
		}
		return nil, fmt.Errorf("pick image from %s: %w", source, err)
	}
	if img == nil {
		return nil, domain.ErrCancelled
	}

	s.logger.Debug("Image selected", zap.String("source", string(source)), zap.String("uri", img.URI))
	return img, nil
}
