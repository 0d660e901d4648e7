package v1

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reasons returned by Analyze when nothing matches.
const (
	ReasonNoProfiles = "No hay perfiles registrados en la base de datos."
	ReasonNoMatch    = "No se encontró ninguna coincidencia."
)

// RegisterInput is one registration: the form fields and the uploaded photo.
type RegisterInput struct {
	Fields   domain.ProfileFields
	Filename string
	Photo    []byte
}

// RegistryService implements the stub backend. It "recognizes" a face only when the
// uploaded bytes are identical to a registered photo.
type RegistryService struct {
	profiles  domain.ProfileRepository
	photos    domain.PhotoStore
	publicURL string
}

// NewRegistryService creates a registry service. publicURL prefixes photo URLs.
func NewRegistryService(profiles domain.ProfileRepository, photos domain.PhotoStore, publicURL string) *RegistryService {
	return &RegistryService{
		profiles:  profiles,
		photos:    photos,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func digest(photo []byte) string {
	sum := sha256.Sum256(photo)
	return hex.EncodeToString(sum[:])
}

// Register stores the photo and creates the profile.
func (s *RegistryService) Register(ctx context.Context, in RegisterInput) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "registry.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("codigo_estudiante", in.Fields.CodigoEstudiante),
		attribute.Int("photo.size", len(in.Photo)),
	))
	defer span.End()

	if len(in.Photo) == 0 {
		return nil, fmt.Errorf("register %q: %w", in.Fields.CodigoEstudiante, ErrNoPhoto)
	}
	base := path.Base(filepath.ToSlash(in.Filename))
	if base == "" || base == "." || base == "/" {
		return nil, fmt.Errorf("register %q: filename %q: %w", in.Fields.CodigoEstudiante, in.Filename, ErrInvalidFilename)
	}

	name := uuid.NewString() + strings.ToLower(path.Ext(base))
	if err := s.photos.Put(ctx, name, in.Photo); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store photo: %w", err)
	}

	stored, err := s.profiles.Create(ctx, domain.StoredProfile{
		Profile: domain.Profile{
			Nombre:           in.Fields.Nombre,
			Apellidos:        in.Fields.Apellidos,
			CodigoEstudiante: in.Fields.CodigoEstudiante,
			Correo:           in.Fields.Correo,
			Requisitoriado:   in.Fields.Requisitoriado,
			PhotoURL:         s.publicURL + "/photos/" + name,
		},
		PhotoDigest: digest(in.Photo),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create profile: %w", err)
	}

	span.SetAttributes(attribute.String("profile.id", stored.ID))
	span.AddEvent("profile.registered")
	return &stored.Profile, nil
}

// Analyze compares photo with every registered photo and returns the first match.
func (s *RegistryService) Analyze(ctx context.Context, photo []byte) (*domain.AnalysisResult, error) {
	ctx, span := middleware.StartSpan(ctx, "registry.analyze", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("photo.size", len(photo)),
	))
	defer span.End()

	if len(photo) == 0 {
		return nil, fmt.Errorf("analyze: %w", ErrNoPhoto)
	}

	stored, err := s.profiles.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if len(stored) == 0 {
		span.SetAttributes(attribute.Bool("analysis.match", false))
		return &domain.AnalysisResult{Match: false, Reason: ReasonNoProfiles}, nil
	}

	want := digest(photo)
	for _, p := range stored {
		if p.PhotoDigest == want {
			profile := p.Profile
			span.SetAttributes(
				attribute.Bool("analysis.match", true),
				attribute.String("profile.id", profile.ID),
			)
			return &domain.AnalysisResult{Match: true, Profile: &profile}, nil
		}
	}

	span.SetAttributes(attribute.Bool("analysis.match", false))
	return &domain.AnalysisResult{Match: false, Reason: ReasonNoMatch}, nil
}

// List returns every profile in registration order.
func (s *RegistryService) List(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "registry.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	stored, err := s.profiles.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]domain.Profile, 0, len(stored))
	for _, p := range stored {
		out = append(out, p.Profile)
	}
	span.SetAttributes(attribute.Int("profiles.count", len(out)))
	return out, nil
}

// Update applies the given fields to profile id.
func (s *RegistryService) Update(ctx context.Context, id string, changes map[string]any) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "registry.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("profile.id", id),
		attribute.Int("changes", len(changes)),
	))
	defer span.End()

	if len(changes) == 0 {
		return nil, fmt.Errorf("update profile %q: %w", id, ErrNoChanges)
	}

	updated, err := s.profiles.Update(ctx, id, changes)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("profile.updated", true))
	return &updated.Profile, nil
}

// Delete removes profile id. Unknown ids succeed.
func (s *RegistryService) Delete(ctx context.Context, id string) error {
	ctx, span := middleware.StartSpan(ctx, "registry.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("profile.id", id),
	))
	defer span.End()

	if err := s.profiles.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	return nil
}

// Photo returns a stored photo by name.
func (s *RegistryService) Photo(ctx context.Context, name string) ([]byte, bool) {
	return s.photos.Get(ctx, name)
}
