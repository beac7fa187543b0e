package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
	"github.com/pk-mender/desafiojr/pkg/requestcontext"
)

// Preparable request bodies are normalized and then validated after decoding.
// Either method may be omitted.
type (
	Normalizable interface{ Normalize() }
	Validatable  interface{ Validate() error }
)

// DecodeJSON reads a single JSON object from the request body. An empty body
// yields the zero value so body-less POSTs (open a blank form, submit) need no
// "{}". Unknown fields and trailing data are rejected. On failure the error
// response is already written and ok is false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req := new(T)
	if err := decodeBody(r.Body, req); err != nil {
		reject(w, r, logger, "undecodable request body", err)
		return nil, false
	}
	return req, true
}

// DecodeAndPrepare is DecodeJSON followed by Normalize and Validate.
// Validation errors that are not domain errors become bad_request.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger)
	if !ok {
		return nil, false
	}
	if n, isN := any(req).(Normalizable); isN {
		n.Normalize()
	}
	if v, isV := any(req).(Validatable); isV {
		if err := v.Validate(); err != nil {
			var domainErr *dErrors.Error
			if !errors.As(err, &domainErr) {
				err = dErrors.New(dErrors.CodeBadRequest, err.Error())
			}
			reject(w, r, logger, "invalid request", err)
			return nil, false
		}
	}
	return req, true
}

func decodeBody(body io.Reader, dst any) error {
	if body == nil || body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &tooLarge):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Requisição muito grande.")
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Corpo da requisição inválido.")
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "Corpo da requisição inválido.")
	}
	return nil
}

func reject(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	ctx := r.Context()
	logger.WarnContext(ctx, msg,
		"error", fmt.Sprint(err),
		"path", r.URL.Path,
		"request_id", requestcontext.RequestID(ctx),
	)
	WriteError(w, err)
}
