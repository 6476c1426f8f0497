package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

func TestNewValidatorKnowsKioskTags(t *testing.T) {
	validate, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, validate.Var(string(models.CategoryFacility), "category"))
	assert.Error(t, validate.Var("전체", "category"))
	assert.NoError(t, validate.Var(string(models.StatusCompleted), "status"))
	assert.Error(t, validate.Var("   ", "notblank"))
}

func TestRegisterValidationsIsIdempotentAcrossServices(t *testing.T) {
	validate := validator.New()
	require.NoError(t, RegisterValidations(validate))
	require.NoError(t, RegisterValidations(validate))

	assert.NotPanics(t, func() {
		NewComplaintService(newFakeComplaintStore(), validate, nil, nil, zap.NewNop())
		NewVerificationService(nil, validate, nil, zap.NewNop())
	})
	assert.NoError(t, validate.Var(string(models.CategoryOther), "category"))
}
