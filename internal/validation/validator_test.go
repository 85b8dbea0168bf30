package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

type searchPayload struct {
	Text string `json:"text" validate:"max=10"`
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=fast slow"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(searchPayload{Text: "dune"}))
}

func TestValidator_FieldErrorsUseJSONNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(searchPayload{Text: "far too long for the limit", Mode: "turbo"})
	require.Error(t, err)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())

	details, ok := de.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must not exceed 10 characters", details["text"])
	assert.Equal(t, "must be one of: fast slow", details["mode"])
}

func TestValidator_Book(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		book  domain.Book
		field string
	}{
		{"zero id", domain.Book{Title: "t", Author: "a", Category: "fiction"}, "id"},
		{"missing title", domain.Book{ID: 1, Author: "a", Category: "fiction"}, "title"},
		{"missing author", domain.Book{ID: 1, Title: "t", Category: "fiction"}, "author"},
		{"missing category", domain.Book{ID: 1, Title: "t", Author: "a"}, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.book)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Details, tt.field)
		})
	}
}

type namePayload struct {
	Name string `json:"name" validate:"notblank"`
}

func TestValidator_NotBlank(t *testing.T) {
	v := validation.New()
	assert.Error(t, v.Validate(namePayload{Name: "   "}))
	assert.NoError(t, v.Validate(namePayload{Name: "x"}))
}
