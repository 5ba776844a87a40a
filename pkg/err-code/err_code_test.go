package err_code

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailKeepsRegisteredErrorIntact(t *testing.T) {
	e := InvalidAudioFormat("text/plain")

	assert.Equal(t, "text/plain", e.Detail())
	assert.Equal(t, "", ErrInvalidAudioFormat.Detail())
	assert.Equal(t, http.StatusBadRequest, e.Status())
	assert.Equal(t, 10400, e.Code())
	assert.Equal(t, "input file format error: text/plain", e.Error())
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", InternalInference("inference failed"))

	assert.True(t, errors.Is(wrapped, ErrAudioModel))
	assert.False(t, errors.Is(wrapped, ErrInvalidAudioFormat))

	var ce *Error
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "audio model error", ce.Msg())
	assert.Equal(t, "inference failed", ce.Detail())
}

func TestDuplicateCodePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewError(10400, http.StatusBadRequest, "dup")
	})
}

func TestNewHTTPErrorDefaultsMessage(t *testing.T) {
	e := NewHTTPError(http.StatusNotFound, "")
	assert.Equal(t, "Not Found", e.Message)
	assert.Equal(t, "404: Not Found", e.Error())
}
