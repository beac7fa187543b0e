package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

type searchBody struct {
	Name string `json:"name"`
	Page int    `json:"page"`
}

type trimmedBody struct {
	Name       string `json:"name"`
	normalized bool
}

func (b *trimmedBody) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.normalized = true
}

func (b *trimmedBody) Validate() error {
	if b.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type directionBody struct {
	Direction string `json:"direction"`
}

func (b *directionBody) Validate() error {
	if b.Direction != "next" && b.Direction != "previous" {
		return dErrors.NewField("direction", "direction must be next or previous")
	}
	return nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func post(body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(http.MethodPost, "/", nil)
	}
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes an object", func(t *testing.T) {
		got, ok := DecodeJSON[searchBody](httptest.NewRecorder(), post(`{"name":"Jo","page":2}`), quiet)
		require.True(t, ok)
		assert.Equal(t, searchBody{Name: "Jo", Page: 2}, *got)
	})

	t.Run("empty body is the zero value", func(t *testing.T) {
		got, ok := DecodeJSON[searchBody](httptest.NewRecorder(), post(""), quiet)
		require.True(t, ok)
		assert.Equal(t, searchBody{}, *got)
	})

	rejected := map[string]string{
		"malformed":     `{invalid json}`,
		"unknown field": `{"name":"Jo","is_admin":true}`,
		"trailing data": `{"name":"Jo"} {"name":"Ana"}`,
		"wrong type":    `{"page":"two"}`,
	}
	for name, body := range rejected {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := DecodeJSON[searchBody](w, post(body), quiet)

			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := errorBody(t, w)
			assert.Equal(t, "bad_request", resp.Error)
			assert.Equal(t, "Corpo da requisição inválido.", resp.Message)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := post(`{"name":"` + strings.Repeat("a", 64) + `"}`)
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, ok := DecodeJSON[searchBody](w, r, quiet)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Requisição muito grande.", errorBody(t, w).Message)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		got, ok := DecodeAndPrepare[trimmedBody](httptest.NewRecorder(), post(`{"name":"  Jo  "}`), quiet)
		require.True(t, ok)
		assert.True(t, got.normalized)
		assert.Equal(t, "Jo", got.Name)
	})

	t.Run("whitespace-only name fails after normalizing", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[trimmedBody](w, post(`{"name":"   "}`), quiet)

		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", errorBody(t, w).Message)
	})

	t.Run("keeps domain code and field", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[directionBody](w, post(`{"direction":"up"}`), quiet)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := errorBody(t, w)
		assert.Equal(t, "validation_failed", resp.Error)
		assert.Equal(t, "direction", resp.Field)
	})
}
