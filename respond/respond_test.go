package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/emojicringe-go/apperror"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func serveError(verbose bool, err error) *httptest.ResponseRecorder {
	h := Verbose(verbose)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Error(w, r, err)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestError_ClientError(t *testing.T) {
	rec := serveError(false, apperror.NewNotFoundError("Emoji combo not found", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"error": "Emoji combo not found"}, decodeBody(t, rec))
}

func TestError_TokenCode(t *testing.T) {
	rec := serveError(false, apperror.NewTokenExpiredError("Token expired", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "TOKEN_EXPIRED", body["code"])
}

func TestError_ForeignErrorIsGeneric500(t *testing.T) {
	rec := serveError(false, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": "Something went wrong!"}, decodeBody(t, rec))
}

func TestError_VerboseAddsMessage(t *testing.T) {
	rec := serveError(true, errors.New("pq: connection refused"))
	body := decodeBody(t, rec)
	assert.Equal(t, "Something went wrong!", body["error"])
	assert.Contains(t, body["message"], "connection refused")
}

func TestDecode(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, Decode(r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, Decode(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	err := Decode(r, &dst)
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
}
