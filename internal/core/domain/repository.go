package domain

import "context"

// StoredProfile is a profile as kept by the stub backend, with its photo digest.
type StoredProfile struct {
	Profile
	PhotoDigest string
}

// ProfileRepository defines the interface for the stub backend's profile storage
type ProfileRepository interface {
	Create(ctx context.Context, p StoredProfile) (StoredProfile, error)
	List(ctx context.Context) ([]StoredProfile, error)
	Get(ctx context.Context, id string) (StoredProfile, error)
	Update(ctx context.Context, id string, changes map[string]any) (StoredProfile, error)
	Delete(ctx context.Context, id string) error
}

// PhotoStore keeps uploaded photos for the stub backend.
type PhotoStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, bool)
}
