package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_WrapAndMatch(t *testing.T) {
	cause := errors.New("exit status 1")
	err := fmt.Errorf("pipeline: %w", NewDownloadError("video unavailable", cause))

	assert.True(t, HasCode(err, CodeDownloadFailed))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "video unavailable: exit status 1", de.Error())
}

func TestDomainError_MarshalJSONHidesCause(t *testing.T) {
	err := NewInternalError("boom", errors.New("secret detail"))
	b, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"boom"}`, string(b))
}

func TestValidationErrors_Fields(t *testing.T) {
	errs := ValidationErrors{
		NewBlankFieldError("email"),
		NewFieldError("email", "user with this email already exists."),
		NewFieldError("password", "This field is required."),
	}
	fields := errs.Fields()
	assert.Equal(t, []string{"This field may not be blank.", "user with this email already exists."}, fields["email"])
	assert.Equal(t, []string{"This field is required."}, fields["password"])
	assert.Contains(t, errs.Error(), "validation failed")
}
