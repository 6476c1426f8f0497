package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

var kioskValidations = []struct {
	tag string
	fn  validator.Func
}{
	{"notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}},
	{"category", func(fl validator.FieldLevel) bool {
		return models.ComplaintCategory(fl.Field().String()).Valid()
	}},
	{"status", func(fl validator.FieldLevel) bool {
		return models.ComplaintStatus(fl.Field().String()).Valid()
	}},
}

// registeredValidators remembers which validators already carry the kiosk tags.
var registeredValidators sync.Map

// RegisterValidations adds the kiosk tags (notblank, category, status) to validate.
// Repeated calls for the same validator are no-ops.
func RegisterValidations(validate *validator.Validate) error {
	if _, loaded := registeredValidators.LoadOrStore(validate, struct{}{}); loaded {
		return nil
	}
	for _, v := range kioskValidations {
		if err := validate.RegisterValidation(v.tag, v.fn); err != nil {
			registeredValidators.Delete(validate)
			return fmt.Errorf("register %s validation: %w", v.tag, err)
		}
	}
	return nil
}

// NewValidator returns a validator carrying the kiosk tags.
func NewValidator() (*validator.Validate, error) {
	validate := validator.New()
	if err := RegisterValidations(validate); err != nil {
		return nil, err
	}
	return validate, nil
}

// mustRegisterValidations backs the service constructors. Registration only fails for
// an empty tag or nil function, so a failure here is a programming error.
func mustRegisterValidations(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	if err := RegisterValidations(validate); err != nil {
		panic(err)
	}
	return validate
}
