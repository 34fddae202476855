package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// imagesField is the multipart field name carrying file parts.
const imagesField = "images"

// ErrTooManyImages rejects a request whose file part count exceeds the
// configured maximum, before any file is saved.
var ErrTooManyImages = errors.New("too many images")

// Recorder receives the audit trail of written files. Recording must never
// block or fail the request; implementations log their own errors.
type Recorder interface {
	Record(ctx context.Context, baseName string, storedAs string, size int64, contentType string)
}

// UploadStage extracts file parts from the multipart body and persists each to
// temporary storage under a fresh UUID name. Writes are non-transactional:
// files saved here stay behind if a later stage rejects the request.
type UploadStage struct {
	Dir      string
	MaxCount int
	Audit    Recorder // optional
}

func (s *UploadStage) Name() string { return "upload" }

func (s *UploadStage) Run(ctx context.Context, req *Request) error {
	if req.Form == nil {
		return nil
	}
	files := req.Form.File[imagesField]
	if len(files) > s.MaxCount {
		return ErrTooManyImages
	}
	if len(files) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("upload: creating temp dir: %w", err)
	}
	for _, fh := range files {
		base := uuid.New().String()
		name := base + strings.ToLower(filepath.Ext(fh.Filename))
		size, err := s.save(fh, name)
		if err != nil {
			return fmt.Errorf("upload: saving %s: %w", fh.Filename, err)
		}
		req.Uploaded = append(req.Uploaded, name)
		log.Info().Str("file", name).Int64("size", size).
			Msg("upload: file written, not yet attached to a listing")
		if s.Audit != nil {
			s.Audit.Record(ctx, base, name, size, fh.Header.Get("Content-Type"))
		}
	}
	return nil
}

func (s *UploadStage) save(fh *multipart.FileHeader, name string) (int64, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}
