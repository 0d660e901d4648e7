package media

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// HostPermissions grants a source when the host can actually serve it: the gallery
// when its directory is readable (or unset), the camera when the capture command
// resolves on PATH.
type HostPermissions struct {
	GalleryDir    string
	CameraCommand string

	lookPath func(string) (string, error)
}

// NewHostPermissions checks access against the local machine.
func NewHostPermissions(galleryDir, cameraCommand string) *HostPermissions {
	return &HostPermissions{GalleryDir: galleryDir, CameraCommand: cameraCommand, lookPath: exec.LookPath}
}

// Request implements Permissions.
func (p *HostPermissions) Request(ctx context.Context, source Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch source {
	case SourceGallery:
		if p.GalleryDir == "" {
			return nil
		}
		info, err := os.Stat(p.GalleryDir)
		if err != nil {
			return &PermissionDeniedError{Source: source, Reason: "no se puede acceder a la galería: " + err.Error()}
		}
		if !info.IsDir() {
			return &PermissionDeniedError{Source: source, Reason: "la galería no es un directorio"}
		}
		return nil
	case SourceCamera:
		fields := strings.Fields(p.CameraCommand)
		if len(fields) == 0 {
			return &PermissionDeniedError{Source: source, Reason: "no hay una cámara configurada"}
		}
		lookPath := p.lookPath
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		if _, err := lookPath(fields[0]); err != nil {
			return &PermissionDeniedError{Source: source, Reason: "no se encontró el comando de la cámara: " + fields[0]}
		}
		return nil
	}
	return &PermissionDeniedError{Source: source, Reason: "origen desconocido"}
}
