package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"go.uber.org/zap"
)

// OutputPlaceholder in a camera command is replaced with the capture file path.
const OutputPlaceholder = "{output}"

// LineReader reads one line of user input.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// LocalPicker picks gallery images by path and captures camera images with an
// external command. Every result is cropped and re-encoded by Process.
type LocalPicker struct {
	reader        LineReader
	galleryDir    string
	cameraCommand string
	workDir       string
	logger        *zap.Logger
}

// NewLocalPicker creates a picker. workDir defaults to the system temp dir.
func NewLocalPicker(reader LineReader, galleryDir, cameraCommand, workDir string, logger *zap.Logger) *LocalPicker {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalPicker{
		reader:        reader,
		galleryDir:    galleryDir,
		cameraCommand: cameraCommand,
		workDir:       workDir,
		logger:        logger,
	}
}

// Pick implements Picker.
func (p *LocalPicker) Pick(ctx context.Context, source Source, opts Options) (*domain.Image, error) {
	var src string
	var err error
	switch source {
	case SourceGallery:
		src, err = p.galleryPath(ctx)
	case SourceCamera:
		src, err = p.capture(ctx)
		if err == nil {
			defer os.Remove(src)
		}
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
	if err != nil {
		return nil, err
	}
	return Process(src, p.workDir, opts)
}

// galleryPath asks for a file path. An empty answer cancels.
func (p *LocalPicker) galleryPath(ctx context.Context) (string, error) {
	line, err := p.reader.ReadLine(ctx, "Ruta de la imagen: ")
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", domain.ErrCancelled
	}
	if !filepath.IsAbs(line) && p.galleryDir != "" {
		line = filepath.Join(p.galleryDir, line)
	}
	if _, err := os.Stat(line); err != nil {
		return "", fmt.Errorf("gallery image: %w", err)
	}
	return line, nil
}

// capture runs the camera command into a fresh file. A command that exits cleanly
// without writing anything counts as a cancelled capture.
func (p *LocalPicker) capture(ctx context.Context) (string, error) {
	args := strings.Fields(p.cameraCommand)
	if len(args) == 0 {
		return "", errors.New("no camera command configured")
	}

	f, err := os.CreateTemp(p.workDir, "captura-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	out := f.Name()
	f.Close()

	for i, a := range args {
		args[i] = strings.ReplaceAll(a, OutputPlaceholder, out)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out)
		p.logger.Warn("Camera command failed", zap.Strings("args", args), zap.ByteString("output", output), zap.Error(err))
		return "", fmt.Errorf("run camera command: %w", err)
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		os.Remove(out)
		return "", domain.ErrCancelled
	}
	return out, nil
}
