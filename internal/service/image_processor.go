package service

import (
	"bytes"
	"context"
	"io"

	"github.com/moptabi/moptabi-backend/internal/media"
)

type preparedImage struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Extension   string
}

func prepareImageForUpload(ctx context.Context, processor media.Processor, upload media.Upload, maxDimension int) (*preparedImage, error) {
	if processor == nil {
		ct := media.NormalizeContentType(upload.ContentType, upload.FileName)
		return &preparedImage{Reader: upload.Reader, Size: upload.Size, ContentType: ct, Extension: extensionFor(ct)}, nil
	}
	result, err := processor.Process(ctx, upload, maxDimension)
	if err != nil {
		return nil, err
	}
	return &preparedImage{
		Reader:      bytes.NewReader(result.Bytes),
		Size:        int64(len(result.Bytes)),
		ContentType: result.ContentType,
		Extension:   result.Extension,
	}, nil
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
