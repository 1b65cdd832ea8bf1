package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
)

type sampleBody struct {
	Name   string `json:"name" validate:"required,max=5"`
	Rating *int   `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","rating":4}`))
	var body sampleBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "Ada", body.Name)
	assert.Equal(t, 4, *body.Rating)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","extra":1}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","rating":9}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be at most 5", details["rating"])
}

func TestParseQueryHelpers(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&liked=true&exclude="+id.String()+"&bad=x", nil)

	limit, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	liked, err := ParseQueryBool(req, "liked")
	require.NoError(t, err)
	require.NotNil(t, liked)
	assert.True(t, *liked)

	missing, err := ParseQueryBool(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exclude, err := ParseQueryUUID(req, "exclude")
	require.NoError(t, err)
	assert.Equal(t, id, exclude)

	_, err = ParseQueryBool(req, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryInt(req, "limit", 10, 1, 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("spaceId", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := URLParamUUID(req, "spaceId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = URLParamUUID(req, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = BearerToken("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = BearerToken("Bearer   ")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = BearerToken("Basic a b")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "héll", SanitizeString("  héllo ", 4))
	assert.Equal(t, "hi", SanitizeString(" hi ", 0))
}
