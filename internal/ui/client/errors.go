package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ClientError represents an error encountered when communicating with the SAM api
// StatusCode 0 = network/connection or internal error, >0 = HTTP response received
type ClientError struct {
	StatusCode  int    `json:"status_code"`
	UserMessage string `json:"user_message"`
	LogMessage  string `json:"log_message"`
	err         error
}

func (e *ClientError) Error() string {
	return e.LogMessage
}

func (e *ClientError) Unwrap() error {
	return e.err
}

// UserError returns the user-friendly message
func (e *ClientError) UserError() string {
	return e.UserMessage
}

// UserMessage returns the message to show for err, with a generic fallback for errors that did not come from the client
func UserMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.UserError()
	}
	return "Ocorreu um erro. Tente novamente."
}

// NewClientConnectionError creates a ClientError for network/connection issues
func NewClientConnectionError(err error) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: "Não foi possível conectar à API. Verifique se a API está rodando.",
		LogMessage:  fmt.Sprintf("network error: %v", err),
		err:         err,
	}
}

// NewClientInternalError creates a ClientError for internal errors, supply the error and an explanation of what was being done when the error occurred
func NewClientInternalError(err error, while string) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: "Ocorreu um erro. Tente novamente mais tarde.",
		LogMessage:  fmt.Sprintf("internal error: %v while %v", err, while),
		err:         err,
	}
}

// NewClientRejectedError creates a ClientError for 2xx responses whose envelope reports success=false
func NewClientRejectedError(path, apiMessage string) *ClientError {
	logMsg := fmt.Sprintf("SAM api reported failure for %s", path)
	if apiMessage != "" {
		logMsg += fmt.Sprintf(" - %s", apiMessage)
	}
	return &ClientError{
		StatusCode:  http.StatusOK,
		UserMessage: "A API não conseguiu carregar os dados. Tente novamente.",
		LogMessage:  logMsg,
	}
}

// NewClientApiError creates a ClientError from a non-2xx HTTP response sent by the SAM api
func NewClientApiError(res *http.Response) *ClientError {
	var serverErr struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	if res.Body != nil {
		_ = json.NewDecoder(res.Body).Decode(&serverErr)
	}

	var userMsg string
	switch res.StatusCode {
	case http.StatusNotFound:
		userMsg = "Registro não encontrado."
	case http.StatusBadRequest:
		userMsg = "Requisição inválida."
	case http.StatusTooManyRequests:
		userMsg = "Muitas requisições. Aguarde alguns instantes e tente novamente."
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		userMsg = "O serviço está temporariamente indisponível. Tente novamente mais tarde."
	default:
		userMsg = "Ocorreu um erro. Tente novamente."
	}

	logMsg := fmt.Sprintf("HTTP %d: %s", res.StatusCode, http.StatusText(res.StatusCode))
	if serverErr.Error != "" {
		logMsg += fmt.Sprintf(" - %s", serverErr.Error)
	}

	return &ClientError{
		StatusCode:  res.StatusCode,
		UserMessage: userMsg,
		LogMessage:  logMsg,
	}
}
