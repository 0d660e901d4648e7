package media

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/duynhne/registro-facial/internal/core/domain"
)

// Process decodes the image at src, center-crops it to opts.Aspect and writes it as
// JPEG at opts.Quality into dir. The returned handle points at the new file.
func Process(src, dir string, opts Options) (*domain.Image, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(src), err)
	}

	cropped := CenterCrop(img, opts.Aspect)

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out, err := os.CreateTemp(dir, stem+"-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("create output image: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, cropped, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		os.Remove(out.Name())
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := cropped.Bounds()
	return &domain.Image{
		URI:      domain.FileURI(out.Name()),
		MimeType: "image/jpeg",
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// CenterCrop returns the largest centered region of img with the given width:height
// ratio. A zero ratio returns img unchanged.
func CenterCrop(img image.Image, aspect [2]int) image.Image {
	aw, ah := aspect[0], aspect[1]
	b := img.Bounds()
	if aw <= 0 || ah <= 0 || b.Empty() {
		return img
	}

	w, h := b.Dx(), b.Dy()
	if w*ah > h*aw {
		w = h * aw / ah
	} else {
		h = w * ah / aw
	}

	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return dst
}

func jpegQuality(q float64) int {
	switch {
	case q <= 0:
		return jpeg.DefaultQuality
	case q >= 1:
		return 100
	}
	if v := int(math.Round(q * 100)); v > 0 {
		return v
	}
	return 1
}
