package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swapshop-backend/internal/imaging"
)

// TransformStage normalizes each uploaded file into `<name>_full.jpg` and
// `<name>_thumb.jpg` in the assets dir, deletes the raw original, and records
// the base name as the image identifier. Output order matches input order.
// The stage never consults the store. Any failure discards the artifacts
// already written for this request and fails it.
type TransformStage struct {
	UploadDir string
	AssetsDir string
}

func (s *TransformStage) Name() string { return "transform" }

func (s *TransformStage) Run(ctx context.Context, req *Request) error {
	if len(req.Uploaded) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.AssetsDir, 0o755); err != nil {
		return fmt.Errorf("transform: creating assets dir: %w", err)
	}

	var written []string
	discard := func(err error) error {
		for _, p := range written {
			_ = os.Remove(p)
		}
		req.Images = nil
		return err
	}

	for _, name := range req.Uploaded {
		src := filepath.Join(s.UploadDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			return discard(fmt.Errorf("transform: reading %s: %w", name, err))
		}
		variants, err := imaging.Normalize(data)
		if err != nil {
			return discard(fmt.Errorf("transform: %s: %w", name, err))
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		fullPath := filepath.Join(s.AssetsDir, base+"_full.jpg")
		thumbPath := filepath.Join(s.AssetsDir, base+"_thumb.jpg")
		if err := os.WriteFile(fullPath, variants.Full, 0o644); err != nil {
			return discard(fmt.Errorf("transform: writing %s: %w", fullPath, err))
		}
		written = append(written, fullPath)
		if err := os.WriteFile(thumbPath, variants.Thumb, 0o644); err != nil {
			return discard(fmt.Errorf("transform: writing %s: %w", thumbPath, err))
		}
		written = append(written, thumbPath)

		// The normalized variants replace the raw upload.
		_ = os.Remove(src)
		req.Images = append(req.Images, base)
	}
	return nil
}
