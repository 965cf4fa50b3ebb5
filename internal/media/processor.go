package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultCoverDimension = 1600
	defaultJPEGQuality    = 85
)

var ErrUnsupportedType = errors.New("media: unsupported image type")

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Extension   string
	Resized     bool
}

type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

// CoverProcessor downscales trip covers in process. PNG stays PNG to keep
// transparency; JPEG and WebP are written as JPEG.
type CoverProcessor struct {
	maxDimension int
	jpegQuality  int
}

func NewCoverProcessor(maxDimension int) *CoverProcessor {
	if maxDimension <= 0 {
		maxDimension = DefaultCoverDimension
	}
	return &CoverProcessor{maxDimension: maxDimension, jpegQuality: defaultJPEGQuality}
}

func (p *CoverProcessor) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	contentType := NormalizeContentType(upload.ContentType, upload.FileName)
	if _, ok := allowedTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	width, height, format, err := decodeDimensions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode dimensions: %w", err)
	}
	targetMax := maxDimension
	if targetMax <= 0 {
		targetMax = p.maxDimension
	}

	if width <= targetMax && height <= targetMax && format != "webp" {
		return &Result{Bytes: data, ContentType: contentType, Extension: extensionFor(contentType)}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	resized := false
	img := src
	if width > targetMax || height > targetMax {
		targetW, targetH := scaleToFit(width, height, targetMax)
		dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		img = dst
		resized = true
	}

	var buf bytes.Buffer
	outType := "image/jpeg"
	if format == "png" {
		outType = "image/png"
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("media: encode image: %w", err)
	}

	return &Result{
		Bytes:       buf.Bytes(),
		ContentType: outType,
		Extension:   extensionFor(outType),
		Resized:     resized,
	}, nil
}

func decodeDimensions(r io.Reader) (int, int, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, "", fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, format, nil
}

func scaleToFit(width, height, maxDim int) (int, int) {
	if width >= height {
		newH := int(math.Round(float64(height) * float64(maxDim) / float64(width)))
		return ensureMin(maxDim), ensureMin(newH)
	}
	newW := int(math.Round(float64(width) * float64(maxDim) / float64(height)))
	return ensureMin(newW), ensureMin(maxDim)
}

func ensureMin(value int) int {
	if value < 1 {
		return 1
	}
	return value
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// NormalizeContentType prefers the declared type and falls back to the file
// extension.
func NormalizeContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		if ct == "image/jpg" {
			return "image/jpeg"
		}
		return ct
	}
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return "image/jpeg"
}
