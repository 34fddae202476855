package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	listsvc "swapshop-backend/internal/application/listings"
	"swapshop-backend/internal/domain"
	"swapshop-backend/internal/infrastructure/audit"
	"swapshop-backend/internal/pipeline"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAssetsBaseURL = "http://localhost:9000/assets/"

type handlersEnv struct {
	app       *fiber.App
	db        *gorm.DB
	svc       *listsvc.Service
	category  domain.Category
	user      domain.User
	uploadDir string
	assetsDir string
}

func setupHandlersTest(t *testing.T) *handlersEnv {
	t.Helper()
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Listing{}, &domain.Category{}, &domain.User{}, &domain.UploadRecord{}))

	category := domain.Category{Label: "Cameras", Icon: "camera", BackgroundColor: "#fed330"}
	require.NoError(t, db.Create(&category).Error)
	user := domain.User{Name: "Jess Vega", Email: uuid.New().String() + "@example.com"}
	require.NoError(t, db.Create(&user).Error)

	tmp := t.TempDir()
	uploadDir := filepath.Join(tmp, "uploads")
	assetsDir := filepath.Join(tmp, "assets")
	auditStore := &audit.Store{DB: db}
	pl := pipeline.New(
		&pipeline.UploadStage{Dir: uploadDir, MaxCount: 2, Audit: auditStore},
		pipeline.NewValidateStage(),
		&pipeline.TransformStage{UploadDir: uploadDir, AssetsDir: assetsDir},
	)
	svc := &listsvc.Service{DB: db, Audit: auditStore}
	h := &Handlers{Service: svc, Pipeline: pl, AssetsBaseURL: testAssetsBaseURL}

	app := fiber.New()
	g := app.Group("/api/listings")
	g.Get("/", h.GetAllListings)
	g.Get("/:id", h.GetListing)
	g.Post("/", h.CreateListing)
	g.Put("/:id", h.UpdateListing)
	g.Delete("/:id", h.DeleteListing)

	return &handlersEnv{
		app: app, db: db, svc: svc,
		category: category, user: user,
		uploadDir: uploadDir, assetsDir: assetsDir,
	}
}

func (e *handlersEnv) validFields() map[string]string {
	return map[string]string{
		"title":      "Old camera",
		"price":      "150",
		"categoryId": e.category.ID.String(),
		"userId":     e.user.ID.String(),
	}
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, images [][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for i, data := range images {
		fw, err := w.CreateFormFile("images", fmt.Sprintf("photo%d.png", i))
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func decodeListing(t *testing.T, resp *http.Response) domain.Listing {
	t.Helper()
	var listing domain.Listing
	require.NoError(t, json.Unmarshal(readBody(t, resp), &listing))
	return listing
}

func TestCreateListingEndpoint(t *testing.T) {
	env := setupHandlersTest(t)
	req := multipartRequest(t, http.MethodPost, "/api/listings/", env.validFields(), [][]byte{testImage(t)})

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	listing := decodeListing(t, resp)
	assert.Equal(t, "Old camera", listing.Title)
	assert.Equal(t, 150.0, listing.Price)
	assert.Equal(t, "Cameras", listing.Category.Label)
	assert.Equal(t, int64(1), listing.AddedBy.ListingCount)
	require.Len(t, listing.Images, 1)

	base := listing.Images[0].FileName
	assert.FileExists(t, filepath.Join(env.assetsDir, base+"_full.jpg"))
	assert.FileExists(t, filepath.Join(env.assetsDir, base+"_thumb.jpg"))

	var rec domain.UploadRecord
	require.NoError(t, env.db.First(&rec, "file_name = ?", base).Error)
	assert.True(t, rec.Attached)
}

func TestCreateListingValidationError(t *testing.T) {
	env := setupHandlersTest(t)
	fields := env.validFields()
	delete(fields, "title")
	req := multipartRequest(t, http.MethodPost, "/api/listings/", fields, nil)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Error  struct {
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	assert.Equal(t, "error", body.Status)
	assert.Contains(t, body.Error.Details, "title")
}

func TestCreateListingTooManyImages(t *testing.T) {
	env := setupHandlersTest(t)
	images := [][]byte{testImage(t), testImage(t), testImage(t)}
	req := multipartRequest(t, http.MethodPost, "/api/listings/", env.validFields(), images)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(env.uploadDir)
	if err == nil {
		assert.Empty(t, entries, "rejected before anything is saved")
	}
}

func TestCreateListingInvalidCategory(t *testing.T) {
	env := setupHandlersTest(t)
	fields := env.validFields()
	fields["categoryId"] = uuid.New().String()
	req := multipartRequest(t, http.MethodPost, "/api/listings/", fields, nil)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid category.", string(readBody(t, resp)))
}

func TestCreateListingInvalidUser(t *testing.T) {
	env := setupHandlersTest(t)
	fields := env.validFields()
	fields["userId"] = uuid.New().String()
	req := multipartRequest(t, http.MethodPost, "/api/listings/", fields, nil)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user.", string(readBody(t, resp)))
}

func TestCreateListingOrphansUploadOnValidationFailure(t *testing.T) {
	env := setupHandlersTest(t)
	fields := env.validFields()
	delete(fields, "title")
	req := multipartRequest(t, http.MethodPost, "/api/listings/", fields, [][]byte{testImage(t)})

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the raw upload stays behind")

	var rec domain.UploadRecord
	require.NoError(t, env.db.First(&rec).Error)
	assert.False(t, rec.Attached, "the audit row marks it as orphaned")
}

func TestGetListingInvalidID(t *testing.T) {
	env := setupHandlersTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/listings/not-a-uuid", nil)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invalid ID.", string(readBody(t, resp)))
}

func TestGetListingNotFound(t *testing.T) {
	env := setupHandlersTest(t)
	req := httptest.NewRequest(http.MethodGet, "/api/listings/"+uuid.New().String(), nil)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "The listing with the given ID was not found.", string(readBody(t, resp)))
}

func TestGetAllListingsReshapesImages(t *testing.T) {
	env := setupHandlersTest(t)
	_, err := env.svc.Create(context.Background(), listsvc.Input{
		Title:      "Old camera",
		Price:      150,
		CategoryID: env.category.ID,
		UserID:     env.user.ID,
		NewImages:  []string{"img1"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/listings/", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var resources []Resource
	require.NoError(t, json.Unmarshal(readBody(t, resp), &resources))
	require.Len(t, resources, 1)
	require.Len(t, resources[0].Images, 1)
	assert.Equal(t, testAssetsBaseURL+"img1_full.jpg", resources[0].Images[0].URL)
	assert.Equal(t, testAssetsBaseURL+"img1_thumb.jpg", resources[0].Images[0].ThumbnailURL)
	assert.Equal(t, env.user.Email, resources[0].AddedBy.Email)
	assert.Equal(t, int64(1), resources[0].AddedBy.ListingCount)
}

func TestGetAllListingsNewestFirst(t *testing.T) {
	env := setupHandlersTest(t)
	older, err := env.svc.Create(context.Background(), listsvc.Input{
		Title: "First", Price: 10, CategoryID: env.category.ID, UserID: env.user.ID,
	})
	require.NoError(t, err)
	newer, err := env.svc.Create(context.Background(), listsvc.Input{
		Title: "Second", Price: 20, CategoryID: env.category.ID, UserID: env.user.ID,
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&domain.Listing{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/listings/", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var resources []Resource
	require.NoError(t, json.Unmarshal(readBody(t, resp), &resources))
	require.Len(t, resources, 2)
	assert.Equal(t, newer.ID, resources[0].ID)
	assert.Equal(t, older.ID, resources[1].ID)
}

func TestUpdateListingEndpointImageOrder(t *testing.T) {
	env := setupHandlersTest(t)
	created, err := env.svc.Create(context.Background(), listsvc.Input{
		Title:      "Old camera",
		Price:      150,
		CategoryID: env.category.ID,
		UserID:     env.user.ID,
		NewImages:  []string{"a", "b"},
	})
	require.NoError(t, err)

	fields := env.validFields()
	fields["oldImages"] = `["a", "b"]`
	req := multipartRequest(t, http.MethodPut, "/api/listings/"+created.ID.String(), fields, [][]byte{testImage(t)})

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	listing := decodeListing(t, resp)
	require.Len(t, listing.Images, 3)
	assert.NotEqual(t, "a", listing.Images[0].FileName, "the fresh upload leads the list")
	assert.Equal(t, "a", listing.Images[1].FileName)
	assert.Equal(t, "b", listing.Images[2].FileName)
	assert.Equal(t, int64(1), listing.AddedBy.ListingCount, "update does not inflate the count")
}

func TestUpdateListingNotFoundEndpoint(t *testing.T) {
	env := setupHandlersTest(t)
	req := multipartRequest(t, http.MethodPut, "/api/listings/"+uuid.New().String(), env.validFields(), nil)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "The listing with the given ID was not found.", string(readBody(t, resp)))
}

func TestDeleteListingEndpoint(t *testing.T) {
	env := setupHandlersTest(t)
	created, err := env.svc.Create(context.Background(), listsvc.Input{
		Title: "Old camera", Price: 150, CategoryID: env.category.ID, UserID: env.user.ID,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/listings/"+created.ID.String(), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "removal responds 201, matching the original API")

	listing := decodeListing(t, resp)
	assert.Equal(t, created.ID, listing.ID)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/listings/"+created.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
