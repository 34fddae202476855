package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"

	"swapshop-backend/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ValidationError carries per-field failure details back to the caller.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string { return "request validation failed" }

// listingForm is the declared shape of the structured fields. Price arrives as
// a form string and is parsed before struct validation runs.
type listingForm struct {
	Title      string  `form:"title" validate:"required"`
	Price      float64 `form:"price" validate:"gte=1"`
	CategoryID string  `form:"categoryId" validate:"required,uuid"`
	UserID     string  `form:"userId" validate:"required,uuid"`
}

// ValidateStage validates structured fields after the upload stage has
// consumed the multipart body. Rejection stops the pipeline; files already
// written by the upload stage are left for the cleanup sweep.
type ValidateStage struct {
	validate *validator.Validate
}

func NewValidateStage() *ValidateStage {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ValidateStage{validate: v}
}

func (s *ValidateStage) Name() string { return "validate" }

func (s *ValidateStage) Run(ctx context.Context, req *Request) error {
	details := map[string]string{}

	form := listingForm{
		Title:      formValue(req.Form, "title"),
		CategoryID: formValue(req.Form, "categoryId"),
		UserID:     formValue(req.Form, "userId"),
	}

	priceRaw := formValue(req.Form, "price")
	if priceRaw == "" {
		details["price"] = "price is required"
	} else {
		price, err := strconv.ParseFloat(priceRaw, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			details["price"] = "price must be a number"
		} else {
			form.Price = price
		}
	}

	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if _, seen := details[fe.Field()]; !seen {
				details[fe.Field()] = fieldMessage(fe)
			}
		}
	}

	var location *domain.Location
	if raw := formValue(req.Form, "location"); raw != "" {
		var loc domain.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			details["location"] = "location must be an object with numeric latitude and longitude"
		} else {
			location = &loc
		}
	}

	var oldImages []string
	if raw := formValue(req.Form, "oldImages"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &oldImages); err != nil {
			details["oldImages"] = "oldImages must be an array of strings"
		}
	}

	if len(details) > 0 {
		return &ValidationError{Details: details}
	}

	req.Fields = Fields{
		Title:       form.Title,
		Description: formValue(req.Form, "description"),
		Price:       form.Price,
		CategoryID:  uuid.MustParse(form.CategoryID),
		UserID:      uuid.MustParse(form.UserID),
		Location:    location,
		OldImages:   oldImages,
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "uuid":
		return fe.Field() + " must be a valid id"
	default:
		return fe.Field() + " is invalid"
	}
}

func formValue(form *multipart.Form, key string) string {
	if form == nil {
		return ""
	}
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}
