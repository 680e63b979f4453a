package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load upload: %w", ErrInvalidWorkbook)
	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInvalidWorkbook.Code, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Contains(t, appErr.Error(), "boom")
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrValidation, "surveyPeriod is required")
	assert.Equal(t, ErrValidation.Code, clone.Code)
	assert.Equal(t, "surveyPeriod is required", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestHasCodeFollowsWrappedChain(t *testing.T) {
	inner := Wrap(errors.New("zip: not a valid zip file"), ErrInvalidWorkbook.Code, ErrInvalidWorkbook.Status, "open workbook")
	outer := Wrap(inner, ErrInternal.Code, ErrInternal.Status, "ingest failed")
	assert.True(t, HasCode(outer, ErrInvalidWorkbook.Code))
	assert.True(t, HasCode(outer, ErrInternal.Code))
	assert.False(t, HasCode(outer, ErrTemplateUnavailable.Code))
	assert.False(t, HasCode(errors.New("plain"), ErrInternal.Code))
}
