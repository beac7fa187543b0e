package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// Notice levels understood by the browser toast renderer.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// ErrorResponse is the body of every non-2xx view response. Message is
// user-facing text; Field names the offending form field, if any.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Level   string `json:"level"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so an encoding error cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates an error into an HTTP status and ErrorResponse.
// Non-domain errors are reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), ErrorBody(err))
}

// ErrorBody builds the response body for err.
func ErrorBody(err error) ErrorResponse {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		return ErrorResponse{Error: string(dErrors.CodeInternal), Message: DefaultMessage(dErrors.CodeInternal), Level: LevelError}
	}

	msg := domainErr.Message
	if msg == "" {
		msg = DefaultMessage(domainErr.Code)
	}
	level := LevelError
	if domainErr.Code == dErrors.CodeNotConfirmed {
		level = LevelInfo
	}
	return ErrorResponse{
		Error:   string(domainErr.Code),
		Message: msg,
		Field:   domainErr.Field,
		Level:   level,
	}
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	return DomainCodeToHTTPStatus(domainErr.Code)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeDuplicate, dErrors.CodeBusy:
		return http.StatusConflict
	case dErrors.CodeNotConfirmed:
		return http.StatusPreconditionRequired
	case dErrors.CodeUnavailable:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DefaultMessage is the user-facing fallback text for a code.
func DefaultMessage(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "Registro não encontrado."
	case dErrors.CodeBadRequest:
		return "Requisição inválida."
	case dErrors.CodeValidation:
		return "Preencha os campos corretamente!"
	case dErrors.CodeDuplicate:
		return "Já existe um cliente cadastrado com este CPF."
	case dErrors.CodeBusy:
		return "Aguarde, operação em andamento."
	case dErrors.CodeNotConfirmed:
		return "Operação não confirmada."
	case dErrors.CodeUnavailable, dErrors.CodeTimeout:
		return "Serviço indisponível. Tente novamente."
	default:
		return "Erro interno."
	}
}
