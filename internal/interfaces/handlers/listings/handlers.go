package listings

import (
	"errors"

	listsvc "swapshop-backend/internal/application/listings"
	"swapshop-backend/internal/pipeline"
	"swapshop-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const notFoundMessage = "The listing with the given ID was not found."

type Handlers struct {
	Service       *listsvc.Service
	Pipeline      *pipeline.Pipeline
	AssetsBaseURL string
}

// GET /api/listings — all listings, newest first, reshaped for clients.
func (h *Handlers) GetAllListings(c *fiber.Ctx) error {
	listings, err := h.Service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("listings: list failed")
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	resources := make([]Resource, 0, len(listings))
	for i := range listings {
		resources = append(resources, mapListing(&listings[i], h.AssetsBaseURL))
	}
	return c.JSON(resources)
}

// GET /api/listings/:id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Invalid ID.")
	}
	listing, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, listsvc.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).SendString(notFoundMessage)
		}
		log.Error().Err(err).Str("listing_id", id.String()).Msg("listings: get failed")
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return c.JSON(mapListing(listing, h.AssetsBaseURL))
}

// POST /api/listings — multipart; runs the full ingestion pipeline, then
// enrichment + assembly + persist. 201 with the stored record.
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, "multipart form data expected", 400, nil)
	}
	req := &pipeline.Request{Form: form}
	if err := h.Pipeline.Run(c.Context(), req); err != nil {
		return h.pipelineError(c, err)
	}

	listing, err := h.Service.Create(c.Context(), inputFromRequest(req))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// PUT /api/listings/:id — same pipeline as creation; full-record replace.
func (h *Handlers) UpdateListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Invalid ID.")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, "multipart form data expected", 400, nil)
	}
	req := &pipeline.Request{Form: form}
	if err := h.Pipeline.Run(c.Context(), req); err != nil {
		return h.pipelineError(c, err)
	}

	listing, err := h.Service.Update(c.Context(), id, inputFromRequest(req))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// DELETE /api/listings/:id — 201 with the removed record (kept as-is from the
// original API, not corrected to 200).
func (h *Handlers) DeleteListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Invalid ID.")
	}
	listing, err := h.Service.Delete(c.Context(), id)
	if err != nil {
		if errors.Is(err, listsvc.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).SendString(notFoundMessage)
		}
		log.Error().Err(err).Str("listing_id", id.String()).Msg("listings: delete failed")
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *Handlers) pipelineError(c *fiber.Ctx, err error) error {
	var verr *pipeline.ValidationError
	switch {
	case errors.Is(err, pipeline.ErrTooManyImages):
		return response.Error(c, "Too many images.", 400, nil)
	case errors.As(err, &verr):
		return response.Error(c, "Request validation failed", 400, verr.Details)
	default:
		log.Error().Err(err).Msg("listings: pipeline failed")
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}

func (h *Handlers) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, listsvc.ErrInvalidCategory):
		return c.Status(fiber.StatusBadRequest).SendString("Invalid category.")
	case errors.Is(err, listsvc.ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user.")
	case errors.Is(err, listsvc.ErrListingNotFound):
		return c.Status(fiber.StatusNotFound).SendString(notFoundMessage)
	default:
		log.Error().Err(err).Msg("listings: write failed")
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}

func inputFromRequest(req *pipeline.Request) listsvc.Input {
	f := req.Fields
	return listsvc.Input{
		Title:       f.Title,
		Description: f.Description,
		Price:       f.Price,
		CategoryID:  f.CategoryID,
		UserID:      f.UserID,
		Location:    f.Location,
		NewImages:   req.Images,
		OldImages:   f.OldImages,
	}
}
