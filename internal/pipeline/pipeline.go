// Package pipeline implements the listing ingestion pipeline: the fixed-order
// sequence of stages that turns a raw multipart request into validated fields
// and normalized image artifacts, ready for enrichment and persistence.
package pipeline

import (
	"context"
	"mime/multipart"

	"swapshop-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Fields holds the validated structured fields of a creation/update request.
type Fields struct {
	Title       string
	Description string
	Price       float64
	CategoryID  uuid.UUID
	UserID      uuid.UUID
	Location    *domain.Location
	OldImages   []string
}

// Request is the mutable state threaded through the stages. Each stage reads
// what earlier stages produced and fills in its own output.
type Request struct {
	Form *multipart.Form

	// Uploaded is the ordered list of temp file names written by the upload
	// stage (raw originals, extension kept).
	Uploaded []string

	// Fields is set by the validate stage.
	Fields Fields

	// Images is the ordered list of normalized base names produced by the
	// transform stage; these are what a listing stores.
	Images []string
}

// Stage is one ordered step with a single input/output contract against
// Request. Failure aborts the remaining stages for the request.
type Stage interface {
	Name() string
	Run(ctx context.Context, req *Request) error
}

// Pipeline runs its stages strictly in order.
type Pipeline struct {
	stages []Stage
}

// New fixes the stage order at construction. Upload must run first: the
// structured fields share the multipart body with the file parts and are not
// available to validate until the files have been consumed. A request that
// fails validation can therefore leave uploaded files behind in temporary
// storage; the upload audit trail exposes those to the external cleanup sweep.
func New(upload *UploadStage, validate *ValidateStage, transform *TransformStage) *Pipeline {
	return &Pipeline{stages: []Stage{upload, validate, transform}}
}

// Run executes the stages in order, stopping at the first failure.
func (p *Pipeline) Run(ctx context.Context, req *Request) error {
	for _, s := range p.stages {
		if err := s.Run(ctx, req); err != nil {
			log.Warn().Str("stage", s.Name()).Err(err).Msg("pipeline: stage failed")
			return err
		}
	}
	return nil
}
