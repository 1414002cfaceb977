package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "INPUT_ERROR", KindInput.String())
	assert.Equal(t, "VALIDATION_ERROR", KindValidation.String())
	assert.Equal(t, "RESOURCE_UNAVAILABLE", KindResourceUnavailable.String())
	assert.Equal(t, "INTERNAL_ERROR", KindInternal.String())
}

func TestPipelineErrorFormatting(t *testing.T) {
	plain := New(KindInput, "layout file unreadable")
	assert.Equal(t, "[INPUT_ERROR] layout file unreadable", plain.Error())

	cause := stderrors.New("no such file")
	wrapped := Wrap(KindInput, "failed to open layout", cause)
	assert.Equal(t, "[INPUT_ERROR] failed to open layout: no such file", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Newf(KindValidation, "bad value %q", "x")))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("untyped")))

	// The kind survives wrapping with the standard library.
	outer := fmt.Errorf("while filling: %w", New(KindResourceUnavailable, "no font"))
	assert.Equal(t, KindResourceUnavailable, KindOf(outer))
	assert.True(t, IsResourceUnavailable(outer))
	assert.False(t, IsInput(outer))
}
